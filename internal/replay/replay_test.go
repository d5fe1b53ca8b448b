package replay

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/market-validator/go-sim/internal/scenario"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/sim"
)

// #region fixtures

func testDoc(seed uint64) scenario.Document {
	return scenario.Document{
		SchemaVersion:  1,
		ScenarioType:   "downturn",
		IterationCount: 4,
		RunSeed:        seed,
		Parameters: map[string]float64{
			"base_price":  80,
			"periods":     5,
			"demand_drop": 0.2,
		},
		RealismBounds: map[string]scenario.Bound{
			"base_price":  {Min: 1, Max: 10000},
			"periods":     {Min: 1, Max: 60},
			"demand_drop": {Min: 0, Max: 0.8},
		},
	}
}

func testDefaults() scenario.Defaults {
	d := scenario.DefaultDefaults()
	for i := range d.Consumer.Segments {
		d.Consumer.Segments[i].Population = 30
	}
	d.Social.Nodes = 60
	return d
}

func testConfig() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Concurrency = 2
	cfg.Timestamp = 1700000000
	return cfg
}

func recordRun(t *testing.T, doc scenario.Document) *sim.Result {
	t.Helper()
	sc, err := scenario.Validate(doc)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	res, err := sim.NewRunner(testConfig(), testDefaults()).Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res
}

// #endregion

// #region verify-tests

func TestVerifyFixtureRoundTrip(t *testing.T) {
	doc := testDoc(7)
	res := recordRun(t, doc)
	f := Export("downturn determinism check", doc, res)

	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := SaveFixture(path, f); err != nil {
		t.Fatalf("SaveFixture: %v", err)
	}
	loaded, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if loaded.ExpectedCompositeHash != res.CompositeHash {
		t.Fatalf("fixture hash drifted on disk")
	}

	report, err := NewHarness(testConfig(), testDefaults()).Verify(context.Background(), loaded)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !report.Match {
		t.Errorf("replay did not reproduce hashes: %+v", report)
	}
}

func TestVerifyDetectsMismatch(t *testing.T) {
	doc := testDoc(7)
	res := recordRun(t, doc)
	f := Export("tampered", doc, res)
	f.ExpectedCompositeHash = "0000"

	report, err := NewHarness(testConfig(), testDefaults()).Verify(context.Background(), f)
	if !errors.Is(err, ErrDeterminismMismatch) {
		t.Fatalf("err = %v, want ErrDeterminismMismatch", err)
	}
	if report == nil || report.Match {
		t.Fatal("mismatch must produce a non-matching report")
	}
	if report.ActualCompositeHash != res.CompositeHash {
		t.Errorf("actual hash = %s, want %s", report.ActualCompositeHash, res.CompositeHash)
	}
}

func TestVerifyRunRejectsWrongScenario(t *testing.T) {
	res := recordRun(t, testDoc(7))
	other := testDoc(7)
	other.Parameters["demand_drop"] = 0.3

	_, err := NewHarness(testConfig(), testDefaults()).VerifyRun(context.Background(), other, res)
	if err == nil {
		t.Fatal("mismatched scenario document must be rejected")
	}
}

func TestVerifyRunStoredResult(t *testing.T) {
	doc := testDoc(9)
	res := recordRun(t, doc)

	report, err := NewHarness(testConfig(), testDefaults()).VerifyRun(context.Background(), doc, res)
	if err != nil {
		t.Fatalf("VerifyRun: %v", err)
	}
	if !report.Match {
		t.Errorf("stored run did not verify: %+v", report)
	}
}

// #endregion
