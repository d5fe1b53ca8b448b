package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/market-validator/go-sim/internal/decision"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/logging"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/scenario"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/seed"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/sim"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/store"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/wtp"
)

// #region evidence-file

// evidenceSchemaVersion is the evidence document version this command
// understands. Any other version is rejected rather than best-effort
// parsed.
const evidenceSchemaVersion = 1

// evidenceFile is the JSON input carrying segment evidence and market
// conditions for the WTP stage, plus the externally supplied technical,
// risk and team judgments the matrix requires.
type evidenceFile struct {
	SchemaVersion        int                   `json:"schema_version"`
	Segments             []wtp.SegmentEvidence `json:"segments"`
	Conditions           wtp.MarketConditions  `json:"market_conditions"`
	TechnicalFeasibility float64               `json:"technical_feasibility"`
	RiskExposure         float64               `json:"risk_exposure"`
	TeamCapability       float64               `json:"team_capability"`
}

// parseEvidence decodes an evidence document, rejecting unknown fields and
// unrecognized schema versions.
func parseEvidence(data []byte) (evidenceFile, error) {
	var ev evidenceFile
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ev); err != nil {
		return evidenceFile{}, fmt.Errorf("parse evidence: %w", err)
	}
	if ev.SchemaVersion != evidenceSchemaVersion {
		return evidenceFile{}, fmt.Errorf("unsupported evidence schema version %d, want %d",
			ev.SchemaVersion, evidenceSchemaVersion)
	}
	return ev, nil
}

// #endregion evidence-file

// #region main

func main() {
	dbPath := flag.String("db", "", "SQLite path holding recorded runs")
	runID := flag.String("run", "", "run ID supplying simulation evidence")
	evidencePath := flag.String("evidence", "", "path to evidence JSON (segments, market conditions)")
	defaultsPath := flag.String("defaults", "", "optional YAML overrides for model tunables")
	supersedes := flag.String("supersedes", "", "decision record ID this decision corrects")
	jsonOut := flag.Bool("json", false, "output the record as JSON")
	flag.Parse()

	if *dbPath == "" || *runID == "" || *evidencePath == "" {
		fmt.Fprintln(os.Stderr, "usage: decide --db runs.db --run <run-id> --evidence path/to/evidence.json [--supersedes record-id]")
		os.Exit(2)
	}
	if err := run(*dbPath, *runID, *evidencePath, *defaultsPath, *supersedes, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run

func run(dbPath, runID, evidencePath, defaultsPath, supersedes string, jsonOut bool) error {
	st, err := store.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := st.GetRun(runID)
	if err != nil {
		return err
	}
	if res.Status == sim.StatusFailed {
		return fmt.Errorf("run %s is FAILED; no decision can rest on it", runID)
	}

	data, err := os.ReadFile(evidencePath)
	if err != nil {
		return fmt.Errorf("read evidence: %w", err)
	}
	ev, err := parseEvidence(data)
	if err != nil {
		return err
	}

	defaults := scenario.DefaultDefaults()
	if defaultsPath != "" {
		defaults, err = scenario.LoadDefaults(defaultsPath)
		if err != nil {
			return err
		}
	}

	estimate, err := estimateWTP(defaults.WTP, ev, res)
	if err != nil {
		return err
	}
	if err := st.SaveEstimate(res.ScenarioID, res.RunID, estimate); err != nil {
		return err
	}

	matrix, err := decision.NewMatrix(decision.DefaultWeights())
	if err != nil {
		return err
	}
	scores := decision.ScoresFromEvidence(deriveEvidence(res, estimate, ev))
	rec, err := matrix.Evaluate(res.ScenarioID, res.RunID, scores, supersedes)
	if err != nil {
		return err
	}
	if err := st.SaveDecision(rec); err != nil {
		return err
	}

	action := "decide"
	if supersedes != "" {
		action = "supersede"
	}
	if err := logging.LogAudit(st.DB(), logging.AuditEntry{
		Actor:     "decide",
		Action:    action,
		SubjectID: rec.ID,
		DetailJSON: fmt.Sprintf(`{"run_id":%q,"verdict":%q,"composite":%.4f}`,
			res.RunID, rec.Verdict, rec.Composite),
	}); err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}
	fmt.Printf("record     %s\n", rec.ID)
	fmt.Printf("verdict    %s (composite %.2f, confidence %.2f)\n", rec.Verdict, rec.Composite, rec.Confidence)
	fmt.Printf("wtp P50    %.2f  revenue base %.0f [%.0f, %.0f]\n",
		estimate.PointEstimate, estimate.Revenue.BaseCase,
		estimate.Revenue.WorstCase, estimate.Revenue.BestCase)
	if rec.Supersedes != "" {
		fmt.Printf("supersedes %s\n", rec.Supersedes)
	}
	return nil
}

// estimateWTP runs the estimator with evidence from the file and the
// simulation signal extracted from the run aggregate. The estimator's
// Monte Carlo stream is derived from the run seed, so re-deciding on the
// same run reproduces the same estimate.
func estimateWTP(cfg wtp.Config, ev evidenceFile, res *sim.Result) (*wtp.Estimate, error) {
	signal := simulationSignal(res)
	mgr := seed.NewManager(res.RunSeed)
	stream := mgr.Stream(0, "wtp", cfg.SampleCount*4+64)
	return wtp.NewEstimator(cfg).Estimate(ev.Segments, ev.Conditions, signal, stream)
}

func simulationSignal(res *sim.Result) *wtp.SimulationSignal {
	purchases := res.Aggregate["purchases_total"]
	prospects := res.Aggregate["prospects_total"]
	pricePaid := res.Aggregate["price_paid_sum"]
	if purchases <= 0 || prospects <= 0 {
		return nil
	}
	return &wtp.SimulationSignal{
		AvgPricePaid:   pricePaid / purchases,
		ConversionRate: purchases / prospects,
	}
}

func deriveEvidence(res *sim.Result, est *wtp.Estimate, ev evidenceFile) decision.Evidence {
	agg := res.Aggregate
	conv := 0.0
	if agg["prospects_total"] > 0 {
		conv = agg["purchases_total"] / agg["prospects_total"]
	}
	premium := 0.0
	if ev.Conditions.ReferencePrice > 0 {
		premium = (est.PointEstimate - ev.Conditions.ReferencePrice) / ev.Conditions.ReferencePrice
	}
	revenuePerProspect := 0.0
	if agg["prospects_total"] > 0 {
		revenuePerProspect = agg["revenue_total"] / agg["prospects_total"]
	}
	return decision.Evidence{
		ConversionRate:       conv,
		AdoptionFraction:     agg["adoption_final"],
		WTPPremium:           premium,
		FinalShare:           agg["share_us_final"],
		RevenuePerProspect:   revenuePerProspect,
		ReferencePrice:       ev.Conditions.ReferencePrice,
		RealismWarningRate:   agg["realism_warnings"],
		TechnicalFeasibility: ev.TechnicalFeasibility,
		RiskExposure:         ev.RiskExposure,
		TeamCapability:       ev.TeamCapability,
	}
}

// #endregion run
