package consumer

// #region segment-spec

// SegmentSpec configures one consumer segment's bounded-rationality profile.
type SegmentSpec struct {
	Name       string `yaml:"name"`
	Population int    `yaml:"population"` // agents regenerated per iteration

	// AttentionBudget caps how many features an agent evaluates.
	AttentionBudget int `yaml:"attention_budget"`

	// SatisficingThreshold is the adjusted utility an option must clear.
	// Agents take the first clearing option, they do not optimize globally.
	SatisficingThreshold float64 `yaml:"satisficing_threshold"`
	ThresholdJitter      float64 `yaml:"threshold_jitter"` // relative stddev per agent

	// Bias weights. Illustrative defaults, overridable via the defaults file.
	Anchoring        float64 `yaml:"anchoring"`
	Availability     float64 `yaml:"availability"`
	LossAversion     float64 `yaml:"loss_aversion"`
	SocialWeight     float64 `yaml:"social_weight"`
	PriceSensitivity float64 `yaml:"price_sensitivity"`
}

// Config holds tunables for the consumer decision model.
type Config struct {
	Segments []SegmentSpec `yaml:"segments"`

	// ExposureSalienceScale normalizes total exposure for the availability
	// bias term. Must be > 0.
	ExposureSalienceScale float64 `yaml:"exposure_salience_scale"`
}

// DefaultConfig returns the built-in consumer tunables.
func DefaultConfig() Config {
	return Config{
		Segments: []SegmentSpec{
			{
				Name: "early_adopter", Population: 120, AttentionBudget: 4,
				SatisficingThreshold: 0.55, ThresholdJitter: 0.15,
				Anchoring: 0.3, Availability: 0.2, LossAversion: 1.5,
				SocialWeight: 0.5, PriceSensitivity: 0.6,
			},
			{
				Name: "mainstream", Population: 300, AttentionBudget: 2,
				SatisficingThreshold: 0.7, ThresholdJitter: 0.1,
				Anchoring: 0.5, Availability: 0.35, LossAversion: 2.25,
				SocialWeight: 0.8, PriceSensitivity: 1.0,
			},
			{
				Name: "laggard", Population: 180, AttentionBudget: 1,
				SatisficingThreshold: 0.85, ThresholdJitter: 0.1,
				Anchoring: 0.7, Availability: 0.4, LossAversion: 3.0,
				SocialWeight: 1.2, PriceSensitivity: 1.4,
			},
		},
		ExposureSalienceScale: 2000,
	}
}

// #endregion

// #region decision

// AgentDecision is one agent's transient per-period outcome. Discarded after
// aggregation; only summed statistics leave the model.
type AgentDecision struct {
	Segment   string
	Purchased bool
	PricePaid float64
	Channel   string
}

// #endregion
