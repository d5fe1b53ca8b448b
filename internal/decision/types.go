package decision

// #region imports
import "errors"

// #endregion

// #region errors

// ErrInvalidWeights marks a weight table that does not cover the dimension
// set or does not sum to 1.
var ErrInvalidWeights = errors.New("invalid weight table")

// ErrInvalidScore marks a dimension score that is missing or outside
// [0, 100].
var ErrInvalidScore = errors.New("invalid dimension score")

// #endregion

// #region dimensions

// The seven scored dimensions. The set is closed: every evaluation must
// score all of them. Simulation output feeds the first three; the last
// four rest partly or wholly on externally supplied judgments.
const (
	DimMarketOpportunity    = "market_opportunity"
	DimWTPValidation        = "wtp_validation"
	DimCompetitivePosition  = "competitive_position"
	DimTechnicalFeasibility = "technical_feasibility"
	DimFinancialViability   = "financial_viability"
	DimRiskAssessment       = "risk_assessment"
	DimTeamCapability       = "team_capability"
)

// Dimensions lists the scored dimensions in canonical order.
var Dimensions = []string{
	DimMarketOpportunity,
	DimWTPValidation,
	DimCompetitivePosition,
	DimTechnicalFeasibility,
	DimFinancialViability,
	DimRiskAssessment,
	DimTeamCapability,
}

// DefaultWeights returns the standard weight table. Weights sum to 1.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		DimMarketOpportunity:    0.25,
		DimWTPValidation:        0.20,
		DimCompetitivePosition:  0.15,
		DimTechnicalFeasibility: 0.15,
		DimFinancialViability:   0.10,
		DimRiskAssessment:       0.10,
		DimTeamCapability:       0.05,
	}
}

// #endregion

// #region verdict

// Verdict is the three-way recommendation.
type Verdict string

const (
	VerdictGo    Verdict = "GO"
	VerdictPivot Verdict = "PIVOT"
	VerdictKill  Verdict = "KILL"
)

// Composite score thresholds. GO at or above goThreshold, PIVOT at or
// above pivotThreshold, KILL below.
const (
	goThreshold    = 75.0
	pivotThreshold = 45.0
	scoreMax       = 100.0
)

// #endregion

// #region record

// RecordSchemaVersion is the decision record document version this core
// emits.
const RecordSchemaVersion = 1

// Record is one immutable decision. Corrections never mutate a record:
// a new record is appended with Supersedes pointing at the old one.
type Record struct {
	SchemaVersion int                `json:"schema_version"`
	ID            string             `json:"id"`
	ScenarioID    string             `json:"scenario_id"`
	RunID         string             `json:"run_id"`
	Scores        map[string]float64 `json:"scores"`
	Weights       map[string]float64 `json:"weights"`
	Composite     float64            `json:"composite"`
	Verdict       Verdict            `json:"verdict"`
	Confidence    float64            `json:"confidence"`
	ContentHash   string             `json:"content_hash"`
	Supersedes    string             `json:"supersedes,omitempty"`
	CreatedAt     int64              `json:"created_at"`
}

// #endregion
