package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/market-validator/go-sim/internal/scenario"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/sim"
)

// #region fixture-types

// Fixture is a self-contained determinism check: the full scenario
// document plus the hashes the original run produced. Re-running the
// scenario must reproduce them bit-exactly.
type Fixture struct {
	Description           string            `json:"description"`
	Scenario              scenario.Document `json:"scenario"`
	Timestamp             int64             `json:"timestamp"`
	ExpectedContentHash   string            `json:"expected_content_hash"`
	ExpectedCompositeHash string            `json:"expected_composite_hash"`
	ExpectedStatus        sim.Status        `json:"expected_status"`
}

// #endregion fixture-types

// #region export

// Export builds a fixture from a completed run and the scenario document
// that produced it.
func Export(description string, doc scenario.Document, res *sim.Result) Fixture {
	return Fixture{
		Description:           description,
		Scenario:              doc,
		Timestamp:             res.Timestamp,
		ExpectedContentHash:   res.ContentHash,
		ExpectedCompositeHash: res.CompositeHash,
		ExpectedStatus:        res.Status,
	}
}

// SaveFixture writes a fixture as indented JSON.
func SaveFixture(path string, f Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	return nil
}

// LoadFixture reads a fixture from disk.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	return f, nil
}

// #endregion export
