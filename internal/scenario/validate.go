// Package scenario parses and validates external scenario configuration
// documents. All rejection happens here, before any simulation work: unknown
// fields, unrecognized schema versions, missing requirements, and parameter
// values outside their realism bounds.
package scenario

// #region imports
import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// #endregion

// #region parse

// requiredParams lists the parameters every scenario type must provide, on
// top of the common set.
var requiredParams = map[Type][]string{
	TypePriceCut:      {"price_reduction"},
	TypeFeatureLaunch: {"feature_uplift", "launch_period"},
	TypeDownturn:      {"demand_drop"},
	TypeHypeCycle:     {"hype_peak", "hype_decay"},
	TypeSeasonality:   {"amplitude"},
}

// commonParams are required for every scenario type.
var commonParams = []string{"base_price", "periods"}

// Parse decodes and validates a scenario document. Unknown fields are a
// schema violation, not a warning.
func Parse(r io.Reader) (*Scenario, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	return Validate(doc)
}

// ParseBytes is Parse over a byte slice.
func ParseBytes(data []byte) (*Scenario, error) {
	return Parse(bytes.NewReader(data))
}

// #endregion

// #region validate

// Validate checks a decoded document and returns the immutable scenario.
func Validate(doc Document) (*Scenario, error) {
	if doc.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: unsupported schema_version %d (want %d)", ErrSchemaViolation, doc.SchemaVersion, SchemaVersion)
	}

	st := Type(doc.ScenarioType)
	if !knownTypes[st] {
		return nil, fmt.Errorf("%w: unknown scenario_type %q", ErrSchemaViolation, doc.ScenarioType)
	}
	if doc.IterationCount < 1 {
		return nil, fmt.Errorf("%w: iteration_count must be >= 1, got %d", ErrSchemaViolation, doc.IterationCount)
	}
	if len(doc.Parameters) == 0 {
		return nil, fmt.Errorf("%w: parameters missing", ErrSchemaViolation)
	}
	if len(doc.RealismBounds) == 0 {
		return nil, fmt.Errorf("%w: realism_bounds missing", ErrSchemaViolation)
	}

	for _, name := range append(append([]string{}, commonParams...), requiredParams[st]...) {
		if _, ok := doc.Parameters[name]; !ok {
			return nil, fmt.Errorf("%w: required parameter %q missing for %s", ErrSchemaViolation, name, st)
		}
	}

	// Every parameter must carry a bound, and must sit inside it.
	for name, value := range doc.Parameters {
		bound, ok := doc.RealismBounds[name]
		if !ok {
			return nil, fmt.Errorf("%w: parameter %q has no realism bound", ErrSchemaViolation, name)
		}
		if bound.Min > bound.Max {
			return nil, fmt.Errorf("%w: bound for %q has min %v > max %v", ErrSchemaViolation, name, bound.Min, bound.Max)
		}
		if value < bound.Min || value > bound.Max {
			return nil, fmt.Errorf("%w: parameter %s=%v outside [%v, %v]", ErrRealismBound, name, value, bound.Min, bound.Max)
		}
	}

	s := &Scenario{
		Type:           st,
		IterationCount: doc.IterationCount,
		RunSeed:        doc.RunSeed,
		Parameters:     doc.Parameters,
		Bounds:         doc.RealismBounds,
	}
	s.ID = scenarioID(s)
	return s, nil
}

// scenarioID derives a stable content-addressed identifier from the
// scenario's semantic fields. Seed is excluded: the result cache is keyed by
// (scenario_id, seed) separately.
func scenarioID(s *Scenario) string {
	h := sha256.New()
	h.Write([]byte(s.Type))
	var count [8]byte
	binary.BigEndian.PutUint64(count[:], uint64(s.IterationCount))
	h.Write(count[:])

	keys := make([]string, 0, len(s.Parameters))
	for k := range s.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte(strconv.FormatFloat(s.Parameters[k], 'g', -1, 64)))
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// #endregion
