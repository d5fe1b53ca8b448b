// Package consumer models bounded-rationality purchase decisions: capped
// attention over features, bias adjustments, and a satisficing rule instead
// of global optimization.
package consumer

// #region imports
import (
	"math"
	"sort"

	"github.com/danielpatrickdp/market-validator/go-sim/internal/market"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/seed"
)

// #endregion

// #region model

const modelVersion = "1.4.1"

// Model evaluates every agent once per period. Agents are regenerated
// deterministically from the iteration stream; only aggregate statistics
// survive the period.
type Model struct {
	config Config
}

// NewModel creates a consumer model.
func NewModel(config Config) *Model {
	return &Model{config: config}
}

// Name implements market.Model.
func (m *Model) Name() string { return market.ModelConsumer }

// Version implements market.Model.
func (m *Model) Version() string { return modelVersion }

// #endregion

// #region step

// Step runs every agent's purchase decision for this period. Aggregation is
// order-independent: sums and counts only, so agent ordering cannot change
// the statistics.
func (m *Model) Step(state *market.PeriodState, stream *seed.Stream) error {
	state.PurchasesByChannel = make(map[string]int)

	channels := channelOrder(state.ChannelConversion)
	totalExposure := 0.0
	for _, exp := range state.ChannelExposure {
		totalExposure += exp
	}

	for _, segSpec := range m.config.Segments {
		for i := 0; i < segSpec.Population; i++ {
			state.Prospects++
			d := m.decide(segSpec, state, channels, totalExposure, stream)
			if d.Purchased {
				state.Purchases++
				state.Revenue += d.PricePaid
				state.PurchasesByChannel[d.Channel]++
			}
		}
	}

	return stream.Err()
}

// decide evaluates a single agent.
func (m *Model) decide(
	spec SegmentSpec,
	state *market.PeriodState,
	channels []string,
	totalExposure float64,
	stream *seed.Stream,
) AgentDecision {
	d := AgentDecision{Segment: spec.Name}

	// Bounded rationality: evaluate at most AttentionBudget features, in a
	// per-agent random order.
	utility := attendedUtility(state.FeatureUtilities, spec.AttentionBudget, stream)

	// Price term relative to the anchor. Anchoring pulls the perceived price
	// toward the reference; loss aversion punishes prices above it harder.
	rel := 0.0
	if state.BasePrice > 0 {
		rel = (state.Price - state.BasePrice) / state.BasePrice
	}
	perceived := rel * (1 - spec.Anchoring)
	if perceived > 0 {
		perceived *= spec.LossAversion
	}
	utility -= spec.PriceSensitivity * perceived

	// Availability: heavily exposed offers feel more legitimate.
	salience := totalExposure / m.config.ExposureSalienceScale
	if salience > 1 {
		salience = 1
	}
	utility += spec.Availability * salience

	// Social proof carried in from the social model's prior period.
	utility += spec.SocialWeight * state.SocialProofBias

	// Demand conditions scale the whole evaluation.
	utility *= state.MarketCondition

	// Satisficing: take the first channel option that clears the agent's
	// jittered threshold.
	threshold := spec.SatisficingThreshold * (1 + spec.ThresholdJitter*stream.NormFloat64())
	for _, ch := range channels {
		option := utility * channelWeight(state.ChannelConversion[ch], stream)
		if option >= threshold {
			d.Purchased = true
			d.PricePaid = state.Price
			d.Channel = ch
			break
		}
	}
	return d
}

// attendedUtility sums the first budget features of a stream-shuffled order.
func attendedUtility(features []float64, budget int, stream *seed.Stream) float64 {
	if budget <= 0 || len(features) == 0 {
		return 0
	}
	order := make([]int, len(features))
	for i := range order {
		order[i] = i
	}
	for i := len(order) - 1; i > 0; i-- {
		j := stream.IntN(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	if budget > len(order) {
		budget = len(order)
	}
	sum := 0.0
	for _, idx := range order[:budget] {
		sum += features[idx]
	}
	return sum
}

// channelWeight converts a conversion rate into an option multiplier with a
// small per-agent draw, so channel choice varies across agents.
func channelWeight(conversion float64, stream *seed.Stream) float64 {
	return math.Sqrt(conversion) * (0.5 + stream.Float64())
}

// channelOrder returns channel ids sorted for a stable evaluation order.
func channelOrder(conv map[string]float64) []string {
	ids := make([]string, 0, len(conv))
	for id := range conv {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// #endregion
