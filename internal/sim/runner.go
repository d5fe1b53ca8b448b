package sim

// #region imports
import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/market-validator/go-sim/internal/channel"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/competitor"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/consumer"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/market"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/scenario"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/seed"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/social"
)

// #endregion

// #region runner

// Runner executes every iteration of a scenario and folds the results into
// an immutable Result. Iterations are mutually independent: each gets its
// own model instances and its own derived seed streams, so the fold order
// never affects the aggregate.
type Runner struct {
	config   Config
	defaults scenario.Defaults
}

// NewRunner builds a runner with the given orchestrator config and model
// tunables.
func NewRunner(config Config, defaults scenario.Defaults) *Runner {
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	return &Runner{config: config, defaults: defaults}
}

// #endregion

// #region run

// Run executes the scenario. Cancellation is honored at iteration
// boundaries: already-dispatched iterations finish, queued ones are
// discarded, and the run returns ctx.Err without a result.
func (r *Runner) Run(ctx context.Context, sc *scenario.Scenario) (*Result, error) {
	runID := uuid.NewString()
	mgr := seed.NewManager(sc.RunSeed)
	total := sc.IterationCount
	log.Printf("[SIM] run %s scenario=%s seed=%d iterations=%d", runID, sc.ID, sc.RunSeed, total)

	sem := make(chan struct{}, r.config.Concurrency)
	results := make(chan IterationResult, total)

	dispatched := 0
dispatch:
	for i := 0; i < total; i++ {
		select {
		case <-ctx.Done():
			break dispatch
		case sem <- struct{}{}:
		}
		dispatched++
		go func(idx int) {
			defer func() { <-sem }()
			metrics, err := r.runIteration(ctx, sc, mgr, idx)
			results <- IterationResult{Index: idx, Metrics: metrics, Err: err}
		}(i)
	}

	perIteration := make([]market.Metrics, total)
	succeeded, failed := 0, 0
	var fatal error
	for i := 0; i < dispatched; i++ {
		res := <-results
		switch {
		case res.Err == nil:
			perIteration[res.Index] = res.Metrics
			succeeded++
		case errors.Is(res.Err, seed.ErrSeedExhaustion):
			// A draw-budget overrun is a model defect, not statistical
			// noise. Fail the whole run.
			fatal = res.Err
			failed++
		default:
			log.Printf("[SIM] run %s iteration %d aborted: %v", runID, res.Index, res.Err)
			failed++
		}
	}

	if err := ctx.Err(); err != nil {
		log.Printf("[SIM] run %s cancelled after %d/%d iterations", runID, dispatched, total)
		return nil, err
	}
	if fatal != nil {
		return nil, fmt.Errorf("run %s: %w", runID, fatal)
	}

	status := StatusComplete
	successFrac := float64(succeeded) / float64(total)
	failureFrac := float64(failed) / float64(total)
	switch {
	case succeeded == 0 || successFrac < r.config.MinSuccessFraction:
		status = StatusFailed
	case failureFrac > r.config.MaxFailureFraction:
		status = StatusPartialFailure
	}

	result := &Result{
		SchemaVersion: ResultSchemaVersion,
		RunID:         runID,
		ScenarioID:    sc.ID,
		RunSeed:       sc.RunSeed,
		ModelVersions: market.VersionSet(r.models()),
		PerIteration:  perIteration,
		Status:        status,
		Iterations:    total,
		Failed:        failed,
		Timestamp:     r.config.Timestamp,
	}
	if status == StatusFailed {
		log.Printf("[SIM] run %s FAILED: %d/%d iterations succeeded", runID, succeeded, total)
		return result, fmt.Errorf("run %s: %d/%d iterations succeeded: %w", runID, succeeded, total, ErrRunFailed)
	}

	// Fold in iteration-index order, never goroutine-completion order:
	// float64 addition is not associative, so a completion-order fold would
	// make the hash depend on scheduling.
	folded := market.Metrics{}
	for _, metrics := range perIteration {
		if metrics != nil {
			folded.Fold(metrics)
		}
	}

	// Aggregate over successful iterations only, then derive means so the
	// hash input does not depend on which iterations happened to fail.
	aggregate := folded.Scale(1 / float64(succeeded))
	aggregate["iterations_succeeded"] = float64(succeeded)
	aggregate["iterations_failed"] = float64(failed)
	result.Aggregate = aggregate
	result.ContentHash = ContentHash(aggregate)
	result.CompositeHash = CompositeHash(result.ContentHash, result.ModelVersions, sc.RunSeed, r.config.Timestamp)
	log.Printf("[SIM] run %s %s content=%.12s composite=%.12s", runID, status, result.ContentHash, result.CompositeHash)
	return result, nil
}

// RunCached executes the scenario through the shared run cache. Concurrent
// callers for the same (scenario, seed) key block on a single computation;
// the bool reports whether the result came from cache. Failed runs release
// their claim and are never memoized.
func (r *Runner) RunCached(ctx context.Context, sc *scenario.Scenario, cache *Cache) (*Result, bool, error) {
	return cache.GetOrCompute(ctx, CacheKey(sc.ID, sc.RunSeed), func() (*Result, error) {
		return r.Run(ctx, sc)
	})
}

// #endregion

// #region iteration

// models builds the four stage instances in pipeline order. Fresh per
// iteration: model-private state never crosses an iteration boundary.
func (r *Runner) models() []market.Model {
	return []market.Model{
		channel.NewModel(r.defaults.Channel),
		consumer.NewModel(r.defaults.Consumer),
		competitor.NewModel(r.defaults.Competitor),
		social.NewModel(r.defaults.Social),
	}
}

// runIteration simulates every period of one iteration and reduces the
// period trace to iteration metrics.
func (r *Runner) runIteration(ctx context.Context, sc *scenario.Scenario, mgr *seed.Manager, idx int) (market.Metrics, error) {
	deadline := time.Now().Add(r.config.IterationBudget)
	models := r.models()
	streams := make([]*seed.Stream, len(models))
	periods := sc.Periods()
	for i, m := range models {
		streams[i] = mgr.Stream(idx, m.Name(), r.drawBudget(m.Name(), periods))
	}

	metrics := market.Metrics{}
	var prev *market.PeriodState
	for p := 0; p < periods; p++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if r.config.IterationBudget > 0 && time.Now().After(deadline) {
			return nil, fmt.Errorf("iteration %d period %d: %w", idx, p, ErrBudgetExceeded)
		}
		state := &market.PeriodState{Period: p}
		sc.Shape(state, r.defaults.FeatureUtilities)
		if prev != nil {
			prev.CarryForward(state)
		}
		for i, m := range models {
			if err := m.Step(state, streams[i]); err != nil {
				return nil, fmt.Errorf("iteration %d period %d model %s: %w", idx, p, m.Name(), err)
			}
			if err := streams[i].Err(); err != nil {
				return nil, fmt.Errorf("iteration %d period %d model %s: %w", idx, p, m.Name(), err)
			}
		}
		r.foldPeriod(metrics, state, periods)
		prev = state
	}
	return metrics, nil
}

// foldPeriod reduces one period's state into the iteration metrics. Only
// commutative accumulations (sums) plus final-period snapshots, so the
// aggregate fold stays order-independent.
func (r *Runner) foldPeriod(m market.Metrics, state *market.PeriodState, periods int) {
	m.Add("revenue_total", state.Revenue)
	m.Add("purchases_total", float64(state.Purchases))
	m.Add("prospects_total", float64(state.Prospects))
	m.Add("cascades_total", float64(state.CascadeCount))
	m.Add("realism_warnings", float64(state.RealismWarnings))
	m.Add("active_reactions_total", float64(state.ActiveReactions))
	m.Add("competitor_pressure_sum", state.CompetitorPressure)

	if state.Period == periods-1 {
		m["adoption_final"] = state.AdoptionFraction
		m["social_bias_final"] = state.SocialProofBias
		if len(state.MarketShares) > 0 {
			m["share_us_final"] = state.MarketShares[0]
		}
	}
	if state.Purchases > 0 {
		m.Add("price_paid_sum", state.Price*float64(state.Purchases))
	}
}

// drawBudget sizes a model's per-iteration draw allocation. Generous fixed
// allocations per (iteration, model): streams are derived independently,
// so over-allocating one model never starves another.
func (r *Runner) drawBudget(model string, periods int) int {
	switch model {
	case market.ModelConsumer:
		pop := 0
		for _, seg := range r.defaults.Consumer.Segments {
			pop += seg.Population
		}
		return periods * (pop*32 + 64)
	case market.ModelSocial:
		n := r.defaults.Social.Nodes
		return n*(r.defaults.Social.AvgDegree+8) + periods*(n*8+64)
	default:
		return periods * 1024
	}
}

// #endregion
