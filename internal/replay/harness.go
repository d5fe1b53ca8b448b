package replay

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/danielpatrickdp/market-validator/go-sim/internal/scenario"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/sim"
)

// #region errors

// ErrDeterminismMismatch means a replay produced different hashes than the
// recorded run. Never auto-resolved: the mismatch is reported with both
// hash pairs and the caller decides what drifted.
var ErrDeterminismMismatch = errors.New("determinism mismatch")

// #endregion

// #region report

// Report is the outcome of one determinism verification.
type Report struct {
	RunID                 string
	Match                 bool
	ExpectedContentHash   string
	ActualContentHash     string
	ExpectedCompositeHash string
	ActualCompositeHash   string
}

// #endregion report

// #region harness

// Harness re-executes recorded runs and compares hashes.
type Harness struct {
	config   sim.Config
	defaults scenario.Defaults
}

// NewHarness builds a harness. The orchestrator config's Timestamp field
// is overridden per verification with the recorded run's value, so the
// composite hash is compared on equal terms.
func NewHarness(config sim.Config, defaults scenario.Defaults) *Harness {
	return &Harness{config: config, defaults: defaults}
}

// Verify replays a fixture and compares hashes. Returns the report and
// ErrDeterminismMismatch when either hash differs.
func (h *Harness) Verify(ctx context.Context, f Fixture) (*Report, error) {
	sc, err := scenario.Validate(f.Scenario)
	if err != nil {
		return nil, fmt.Errorf("fixture scenario: %w", err)
	}
	return h.verify(ctx, sc, f.Timestamp, f.ExpectedContentHash, f.ExpectedCompositeHash)
}

// VerifyRun replays a stored run given the scenario document that produced
// it.
func (h *Harness) VerifyRun(ctx context.Context, doc scenario.Document, recorded *sim.Result) (*Report, error) {
	sc, err := scenario.Validate(doc)
	if err != nil {
		return nil, fmt.Errorf("run scenario: %w", err)
	}
	if sc.ID != recorded.ScenarioID {
		return nil, fmt.Errorf("scenario document does not match run: %s != %s", sc.ID, recorded.ScenarioID)
	}
	return h.verify(ctx, sc, recorded.Timestamp, recorded.ContentHash, recorded.CompositeHash)
}

func (h *Harness) verify(ctx context.Context, sc *scenario.Scenario, timestamp int64, wantContent, wantComposite string) (*Report, error) {
	cfg := h.config
	cfg.Timestamp = timestamp
	res, err := sim.NewRunner(cfg, h.defaults).Run(ctx, sc)
	if err != nil {
		return nil, fmt.Errorf("replay run: %w", err)
	}

	report := &Report{
		RunID:                 res.RunID,
		ExpectedContentHash:   wantContent,
		ActualContentHash:     res.ContentHash,
		ExpectedCompositeHash: wantComposite,
		ActualCompositeHash:   res.CompositeHash,
	}
	report.Match = res.ContentHash == wantContent && res.CompositeHash == wantComposite
	if !report.Match {
		log.Printf("[REPLAY] mismatch: content %s != %s composite %s != %s",
			report.ActualContentHash, report.ExpectedContentHash,
			report.ActualCompositeHash, report.ExpectedCompositeHash)
		return report, fmt.Errorf("run %s: %w", res.RunID, ErrDeterminismMismatch)
	}
	log.Printf("[REPLAY] verified run %s composite=%.12s", res.RunID, res.CompositeHash)
	return report, nil
}

// #endregion harness
