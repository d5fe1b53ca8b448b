package market

// #region period-state

// PeriodState carries one simulated period's inputs and outputs through the
// fixed model order Channel → Consumer → Competitor → Social. Each model
// reads the fields written by the stages before it and by the previous
// period, and writes only its own output fields.
type PeriodState struct {
	Period int

	// Scenario-shaped inputs, set by the orchestrator before the first stage.
	Price            float64   // our offer price this period
	BasePrice        float64   // reference price agents anchor on
	FeatureUtilities []float64 // per-feature utility values of the offer
	MarketCondition  float64   // demand multiplier (1.0 = neutral)

	// Channel stage outputs.
	ChannelExposure   map[string]float64 // new prospects exposed per channel
	ChannelConversion map[string]float64 // effective conversion rate per channel
	RealismWarnings   int                // virality growth clamps this period

	// Consumer stage outputs.
	Prospects          int
	Purchases          int
	Revenue            float64
	PurchasesByChannel map[string]int

	// Competitor stage outputs. MarketShares[0] is our share.
	MarketShares       []float64
	CompetitorPressure float64 // 0..1, dampens next-period demand
	ActiveReactions    int

	// Social stage outputs, carried into the next period's consumer bias.
	AdoptionFraction float64
	SocialProofBias  float64
	CascadeCount     int
}

// CarryForward copies the fields that feed the next period into a fresh
// state. Model-private state (channel saturation, competitor queues, the
// social graph) lives inside the model instances, not here.
func (s *PeriodState) CarryForward(next *PeriodState) {
	next.MarketShares = append([]float64(nil), s.MarketShares...)
	next.CompetitorPressure = s.CompetitorPressure
	next.AdoptionFraction = s.AdoptionFraction
	next.SocialProofBias = s.SocialProofBias
}

// #endregion

// #region model-names

// Canonical model names used for sub-seed derivation and version reporting.
// The set is closed: the orchestrator steps exactly these four, in order.
const (
	ModelChannel    = "channel"
	ModelConsumer   = "consumer"
	ModelCompetitor = "competitor"
	ModelSocial     = "social"
)

// #endregion
