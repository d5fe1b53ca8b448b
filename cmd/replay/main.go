package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/market-validator/go-sim/internal/logging"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/replay"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/scenario"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/sim"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/store"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	dbPath := flag.String("db", "", "SQLite path holding recorded runs (DB mode)")
	runID := flag.String("run", "", "run ID to verify (DB mode)")
	scenarioPath := flag.String("scenario", "", "scenario JSON that produced the run (DB mode)")
	defaultsPath := flag.String("defaults", "", "optional YAML overrides for model tunables")
	concurrency := flag.Int("concurrency", 4, "parallel iterations")
	flag.Parse()

	fixtureMode := *fixturePath != ""
	dbMode := *dbPath != "" && *runID != "" && *scenarioPath != ""
	if fixtureMode == dbMode {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json")
		fmt.Fprintln(os.Stderr, "       replay --db runs.db --run <run-id> --scenario path/to/scenario.json")
		os.Exit(2)
	}

	defaults := scenario.DefaultDefaults()
	if *defaultsPath != "" {
		var err error
		defaults, err = scenario.LoadDefaults(*defaultsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
	cfg := sim.DefaultConfig()
	cfg.Concurrency = *concurrency
	harness := replay.NewHarness(cfg, defaults)

	var report *replay.Report
	var err error
	if fixtureMode {
		report, err = runFixtureMode(harness, *fixturePath)
	} else {
		report, err = runDBMode(harness, *dbPath, *runID, *scenarioPath)
	}
	if report != nil {
		printReport(report)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region modes

func runFixtureMode(h *replay.Harness, path string) (*replay.Report, error) {
	f, err := replay.LoadFixture(path)
	if err != nil {
		return nil, err
	}
	return h.Verify(context.Background(), f)
}

func runDBMode(h *replay.Harness, dbPath, runID, scenarioPath string) (*replay.Report, error) {
	st, err := store.NewStore(dbPath)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	recorded, err := st.GetRun(runID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(scenarioPath)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var doc scenario.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	report, err := h.VerifyRun(context.Background(), doc, recorded)
	if report != nil {
		detail := fmt.Sprintf(`{"verified_run":%q,"match":%t}`, runID, report.Match)
		if auditErr := logging.LogAudit(st.DB(), logging.AuditEntry{
			Actor:      "replay",
			Action:     "replay",
			SubjectID:  runID,
			DetailJSON: detail,
		}); auditErr != nil {
			return report, auditErr
		}
	}
	return report, err
}

func printReport(r *replay.Report) {
	verdict := "MATCH"
	if !r.Match {
		verdict = "MISMATCH"
	}
	fmt.Printf("replay run %s: %s\n", r.RunID, verdict)
	fmt.Printf("  content   expected %s\n", r.ExpectedContentHash)
	fmt.Printf("            actual   %s\n", r.ActualContentHash)
	fmt.Printf("  composite expected %s\n", r.ExpectedCompositeHash)
	fmt.Printf("            actual   %s\n", r.ActualCompositeHash)
}

// #endregion modes
