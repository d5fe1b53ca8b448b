package scenario

// #region imports
import "errors"

// #endregion

// #region errors

// ErrSchemaViolation marks malformed input: unknown fields, missing required
// fields, or an unrecognized schema version. Rejected before any run starts.
var ErrSchemaViolation = errors.New("schema violation")

// ErrRealismBound marks a scenario parameter outside its empirical bounds.
// Rejected before any simulation work begins.
var ErrRealismBound = errors.New("realism bound violation")

// #endregion

// #region scenario-type

// Type enumerates the supported scenario families.
type Type string

const (
	TypePriceCut      Type = "price_cut"
	TypeFeatureLaunch Type = "feature_launch"
	TypeDownturn      Type = "downturn"
	TypeHypeCycle     Type = "hype_cycle"
	TypeSeasonality   Type = "seasonality"
)

// knownTypes is the closed scenario-type set.
var knownTypes = map[Type]bool{
	TypePriceCut:      true,
	TypeFeatureLaunch: true,
	TypeDownturn:      true,
	TypeHypeCycle:     true,
	TypeSeasonality:   true,
}

// #endregion

// #region document

// SchemaVersion is the scenario document version this core understands.
// Any other version is rejected rather than best-effort parsed.
const SchemaVersion = 1

// Bound is a min/max realism constraint for one parameter.
type Bound struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Document mirrors the external scenario configuration JSON.
type Document struct {
	SchemaVersion  int                `json:"schema_version"`
	ScenarioType   string             `json:"scenario_type"`
	IterationCount int                `json:"iteration_count"`
	RunSeed        uint64             `json:"run_seed"`
	Parameters     map[string]float64 `json:"parameters"`
	RealismBounds  map[string]Bound   `json:"realism_bounds"`
}

// #endregion

// #region scenario

// Scenario is a validated, immutable scenario. Never mutated during a run.
type Scenario struct {
	ID             string
	Type           Type
	IterationCount int
	RunSeed        uint64
	Parameters     map[string]float64
	Bounds         map[string]Bound
}

// Param returns a parameter value, or fallback if absent.
func (s *Scenario) Param(name string, fallback float64) float64 {
	if v, ok := s.Parameters[name]; ok {
		return v
	}
	return fallback
}

// Periods returns the simulated period count (the "periods" parameter).
func (s *Scenario) Periods() int {
	return int(s.Param("periods", 12))
}

// #endregion
