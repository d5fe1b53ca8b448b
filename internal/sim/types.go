package sim

// #region imports
import (
	"errors"
	"time"

	"github.com/danielpatrickdp/market-validator/go-sim/internal/market"
)

// #endregion

// #region errors

// ErrBudgetExceeded means one iteration hit its compute budget. Local to
// that iteration; the run continues if enough iterations succeed.
var ErrBudgetExceeded = errors.New("iteration budget exceeded")

// ErrRunFailed means the run could not produce a statistically meaningful
// aggregate (successful iterations below the minimum threshold).
var ErrRunFailed = errors.New("run failed")

// #endregion

// #region status

// Status is the run state machine: CONFIGURED → RUNNING →
// {COMPLETE | PARTIAL_FAILURE | FAILED}.
type Status string

const (
	StatusConfigured     Status = "CONFIGURED"
	StatusRunning        Status = "RUNNING"
	StatusComplete       Status = "COMPLETE"
	StatusPartialFailure Status = "PARTIAL_FAILURE"
	StatusFailed         Status = "FAILED"
)

// #endregion

// #region config

// Config holds orchestrator tunables.
type Config struct {
	// Concurrency caps parallel iterations. <= 0 means 1.
	Concurrency int `yaml:"concurrency"`

	// IterationBudget is the per-iteration compute budget; both the budget
	// check and a timeout are expressed through it. Exceeding it aborts only
	// that iteration.
	IterationBudget time.Duration `yaml:"iteration_budget"`

	// MaxFailureFraction: above this aborted-iteration fraction the run is
	// PARTIAL_FAILURE instead of COMPLETE.
	MaxFailureFraction float64 `yaml:"max_failure_fraction"`

	// MinSuccessFraction: below this successful fraction the run is FAILED.
	MinSuccessFraction float64 `yaml:"min_success_fraction"`

	// Timestamp is the logical run timestamp folded into the composite
	// hash. An explicit input so that identical configurations reproduce
	// identical composite hashes; replay reuses the recorded value.
	Timestamp int64 `yaml:"timestamp"`
}

// DefaultConfig returns orchestrator defaults.
func DefaultConfig() Config {
	return Config{
		Concurrency:        4,
		IterationBudget:    5 * time.Second,
		MaxFailureFraction: 0.05,
		MinSuccessFraction: 0.5,
	}
}

// #endregion

// #region results

// IterationResult is one iteration's outcome, delivered to the aggregation
// step over the completion channel.
type IterationResult struct {
	Index   int
	Metrics market.Metrics
	Err     error
}

// ResultSchemaVersion is the simulation result document version this core
// emits.
const ResultSchemaVersion = 1

// Result is the immutable SimulationResult: the unit of truth for
// determinism verification and replay comparison.
type Result struct {
	SchemaVersion int              `json:"schema_version"`
	RunID         string           `json:"run_id"`
	ScenarioID    string           `json:"scenario_id"`
	RunSeed       uint64           `json:"run_seed"`
	ModelVersions []string         `json:"model_versions"`
	PerIteration  []market.Metrics `json:"per_iteration_metrics"`
	Aggregate     market.Metrics   `json:"aggregate_metrics"`
	ContentHash   string           `json:"content_hash"`
	CompositeHash string           `json:"composite_hash"`
	Status        Status           `json:"status"`
	Iterations    int              `json:"iterations"`
	Failed        int              `json:"failed_iterations"`
	Timestamp     int64            `json:"timestamp"`
}

// #endregion
