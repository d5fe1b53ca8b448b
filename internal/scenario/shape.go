package scenario

// #region imports
import (
	"math"

	"github.com/danielpatrickdp/market-validator/go-sim/internal/market"
)

// #endregion

// #region shape

// Shape writes the scenario's per-period inputs into the state: price,
// demand conditions, and the offer's feature utilities. Called by the
// orchestrator before the first model stage of every period.
func (s *Scenario) Shape(state *market.PeriodState, features []float64) {
	base := s.Param("base_price", 100)
	state.BasePrice = base
	state.Price = base
	state.MarketCondition = 1.0
	state.FeatureUtilities = append([]float64(nil), features...)

	period := float64(state.Period)
	periods := float64(s.Periods())

	switch s.Type {
	case TypePriceCut:
		state.Price = base * (1 - s.Param("price_reduction", 0))

	case TypeFeatureLaunch:
		if state.Period >= int(s.Param("launch_period", 0)) {
			uplift := s.Param("feature_uplift", 0)
			state.FeatureUtilities = append(state.FeatureUtilities, uplift)
		}

	case TypeDownturn:
		state.MarketCondition = 1 - s.Param("demand_drop", 0)

	case TypeHypeCycle:
		// Exponential hype decay from an initial peak.
		peak := s.Param("hype_peak", 1)
		decay := s.Param("hype_decay", 0.3)
		state.MarketCondition = 1 + peak*math.Exp(-decay*period)

	case TypeSeasonality:
		amp := s.Param("amplitude", 0.2)
		state.MarketCondition = 1 + amp*math.Sin(2*math.Pi*period/periods)
	}

	if state.MarketCondition < 0 {
		state.MarketCondition = 0
	}
}

// #endregion
