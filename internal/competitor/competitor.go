// Package competitor models strategic responses with personality-driven
// delay, resource-budget backpressure, and noisy market observation.
package competitor

// #region imports
import (
	"fmt"
	"log"
	"math"

	"github.com/danielpatrickdp/market-validator/go-sim/internal/market"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/seed"
)

// #endregion

// #region model

const modelVersion = "1.1.0"

// Model steps every competitor's state machine once per period.
type Model struct {
	config Config
	agents []*Agent
}

// NewModel creates a competitor model with all agents observing.
func NewModel(config Config) *Model {
	agents := make([]*Agent, len(config.Competitors))
	for i, spec := range config.Competitors {
		agents[i] = &Agent{spec: spec, phase: PhaseObserving}
	}
	return &Model{config: config, agents: agents}
}

// Name implements market.Model.
func (m *Model) Name() string { return market.ModelCompetitor }

// Version implements market.Model.
func (m *Model) Version() string { return modelVersion }

// Agents exposes the agent list for tests and inspection.
func (m *Model) Agents() []*Agent { return m.agents }

// #endregion

// #region step

// Step observes our market performance, advances each competitor's state
// machine, applies active reaction effects, and renormalizes market shares.
func (m *Model) Step(state *market.PeriodState, stream *seed.Stream) error {
	if len(state.MarketShares) == 0 {
		state.MarketShares = m.initialShares()
	}

	signal := m.ourSignal(state)

	pressure := 0.0
	activeTotal := 0

	for _, a := range m.agents {
		// Noisy observation: low intelligence means a distorted signal.
		noise := (1 - a.spec.Intelligence) * 0.1 * stream.NormFloat64()
		observed := signal + noise

		m.advance(a, state.Period, observed, stream)

		for _, act := range a.active {
			activeTotal++
			switch act.reaction {
			case ReactionPriceMatch:
				pressure += 0.15
			case ReactionFeature:
				pressure += 0.10
			case ReactionConsolidation:
				pressure += 0.05
				m.shiftShare(state, a, m.config.ShareShift)
			}
		}
	}

	if pressure > 1 {
		pressure = 1
	}
	state.CompetitorPressure = pressure
	state.ActiveReactions = activeTotal

	m.renormalize(state)
	if err := m.checkShares(state); err != nil {
		return err
	}
	return stream.Err()
}

// advance runs one state-machine tick for a single agent.
func (m *Model) advance(a *Agent, period int, observed float64, stream *seed.Stream) {
	// Retire finished reactions; a freed slot lifts backpressure.
	remaining := a.active[:0]
	for _, act := range a.active {
		if act.until >= period {
			remaining = append(remaining, act)
		}
	}
	a.active = remaining
	if a.phase == PhaseReacting && len(a.active) == 0 && len(a.pending) == 0 {
		m.transition(a, PhaseObserving)
	}

	switch a.phase {
	case PhaseObserving:
		if observed > m.config.TriggerThreshold {
			delay := m.reactionDelay(a.spec, stream)
			a.pending = append(a.pending, pendingReaction{triggerPeriod: period + delay})
			m.transition(a, PhaseDeciding)
		}

	case PhaseDeciding:
		due := false
		for _, p := range a.pending {
			if p.triggerPeriod <= period {
				due = true
				break
			}
		}
		if !due {
			return
		}
		a.pending = a.pending[:0]

		if len(a.active) >= a.spec.ResourceBudget {
			// Backpressure: no valid reaction within budget. Not an error.
			log.Printf("[COMP] %s: budget full, staying put (period=%d)", a.spec.Name, period)
			m.transition(a, PhaseObserving)
			return
		}
		reaction := m.chooseReaction(a.spec, stream)
		a.active = append(a.active, activeReaction{
			reaction: reaction,
			until:    period + m.config.ReactionDuration,
		})
		m.transition(a, PhaseReacting)
		log.Printf("[COMP] %s: %s until period %d", a.spec.Name, reaction, period+m.config.ReactionDuration)

	case PhaseReacting:
		// A reacting competitor with a full budget cannot start anything new.
		// With spare budget it may line up another decision.
		if len(a.active) < a.spec.ResourceBudget && observed > m.config.TriggerThreshold {
			delay := m.reactionDelay(a.spec, stream)
			a.pending = append(a.pending, pendingReaction{triggerPeriod: period + delay})
			m.transition(a, PhaseDeciding)
		}
	}
}

// transition moves an agent between phases, enforcing the transition table.
func (m *Model) transition(a *Agent, to Phase) {
	if !IsValidTransition(a.phase, to) {
		// The advance logic only requests legal transitions; reaching this
		// is a defect worth failing loudly on in development.
		panic(fmt.Sprintf("competitor %s: illegal transition %s -> %s", a.spec.Name, a.phase, to))
	}
	a.phase = to
}

// reactionDelay draws a personality-driven delay, at least one period.
func (m *Model) reactionDelay(spec CompetitorSpec, stream *seed.Stream) int {
	mean := spec.MeanDelay
	if spec.Personality == PersonalityAggressive {
		mean *= 0.5
	}
	d := int(math.Round(mean + stream.NormFloat64()))
	if d < 1 {
		d = 1
	}
	return d
}

// chooseReaction picks from the repertoire with personality weighting.
func (m *Model) chooseReaction(spec CompetitorSpec, stream *seed.Stream) Reaction {
	roll := stream.Float64()
	switch spec.Personality {
	case PersonalityAggressive:
		if roll < 0.6 {
			return ReactionPriceMatch
		}
		if roll < 0.85 {
			return ReactionFeature
		}
		return ReactionConsolidation
	case PersonalityDefensive:
		if roll < 0.3 {
			return ReactionPriceMatch
		}
		if roll < 0.55 {
			return ReactionFeature
		}
		return ReactionConsolidation
	default: // follower
		if roll < 0.5 {
			return ReactionPriceMatch
		}
		return ReactionFeature
	}
}

// #endregion

// #region shares

// initialShares builds [us, competitor...] from the specs.
func (m *Model) initialShares() []float64 {
	shares := make([]float64, 1+len(m.agents))
	shares[0] = m.config.OurInitialShare
	for i, a := range m.agents {
		shares[i+1] = a.spec.InitialShare
	}
	return shares
}

// ourSignal estimates how threatening our period performance looks.
func (m *Model) ourSignal(state *market.PeriodState) float64 {
	momentum := 0.0
	if state.Prospects > 0 {
		momentum = float64(state.Purchases) / float64(state.Prospects)
	}
	discount := 0.0
	if state.BasePrice > 0 && state.Price < state.BasePrice {
		discount = (state.BasePrice - state.Price) / state.BasePrice
	}
	return momentum + 0.5*discount
}

// shiftShare moves share from us to a consolidating competitor.
func (m *Model) shiftShare(state *market.PeriodState, a *Agent, amount float64) {
	idx := 0
	for i, other := range m.agents {
		if other == a {
			idx = i + 1
			break
		}
	}
	if state.MarketShares[0] < amount {
		amount = state.MarketShares[0]
	}
	state.MarketShares[0] -= amount
	state.MarketShares[idx] += amount
}

// renormalize rescales shares to sum to exactly one.
func (m *Model) renormalize(state *market.PeriodState) {
	sum := 0.0
	for _, s := range state.MarketShares {
		sum += s
	}
	if sum <= 0 {
		return
	}
	for i := range state.MarketShares {
		state.MarketShares[i] /= sum
	}
}

// checkShares enforces the shares-sum-to-one invariant within epsilon.
func (m *Model) checkShares(state *market.PeriodState) error {
	sum := 0.0
	for _, s := range state.MarketShares {
		sum += s
	}
	if math.Abs(sum-1) > m.config.ShareEpsilon {
		return fmt.Errorf("market shares sum %.12f deviates from 1.0 beyond epsilon %g", sum, m.config.ShareEpsilon)
	}
	return nil
}

// #endregion
