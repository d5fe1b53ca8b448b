package wtp

// #region imports
import "errors"

// #endregion

// #region errors

// ErrInsufficientEvidence means segment coverage is below the documented
// minimum sample size. Rejected with an explicit reason; no degraded point
// estimate is ever substituted.
var ErrInsufficientEvidence = errors.New("insufficient evidence")

// #endregion

// #region config

// UncertaintyConfig holds the four independent relative error sources,
// combined via root-sum-of-squares.
type UncertaintyConfig struct {
	Measurement       float64 `yaml:"measurement"`
	ModelSpec         float64 `yaml:"model_spec"`
	MarketVariability float64 `yaml:"market_variability"`
	TemporalDrift     float64 `yaml:"temporal_drift"`
}

// Config holds tunables for the WTP estimator.
type Config struct {
	// MinSegmentSampleSize is the documented minimum evidence per segment.
	MinSegmentSampleSize int `yaml:"min_segment_sample_size"`

	// SampleCount is the fixed Monte Carlo draw count.
	SampleCount int `yaml:"sample_count"`

	// AddressableUnits converts the WTP distribution to a revenue range.
	AddressableUnits float64 `yaml:"addressable_units"`

	// SimulationBlend weighs observed price acceptance from the simulation
	// aggregate into the point estimate.
	SimulationBlend float64 `yaml:"simulation_blend"`

	Uncertainty UncertaintyConfig `yaml:"uncertainty"`
}

// DefaultConfig returns the built-in WTP tunables.
func DefaultConfig() Config {
	return Config{
		MinSegmentSampleSize: 30,
		SampleCount:          5000,
		AddressableUnits:     10000,
		SimulationBlend:      0.25,
		Uncertainty: UncertaintyConfig{
			Measurement:       0.08,
			ModelSpec:         0.10,
			MarketVariability: 0.12,
			TemporalDrift:     0.05,
		},
	}
}

// #endregion

// #region evidence

// SegmentEvidence is the persona/market evidence for one consumer segment.
type SegmentEvidence struct {
	Name       string  `json:"name"`
	SampleSize int     `json:"sample_size"`
	BaseValue  float64 `json:"base_value"`

	// Premium factors, each a relative uplift (0.3 = +30%). Illustrative
	// ranges come from configuration, never hard-coded here.
	BrandPremium   float64 `json:"brand_premium"`
	FeaturePremium float64 `json:"feature_premium"`
	QualityPremium float64 `json:"quality_premium"`

	Elasticity float64 `json:"elasticity"` // price-elasticity correction strength
	Population float64 `json:"population"` // weight in the aggregate market
}

// MarketConditions adjusts all segments.
type MarketConditions struct {
	ConditionFactor float64 `json:"condition_factor"` // 1.0 = neutral
	ReferencePrice  float64 `json:"reference_price"`
}

// SimulationSignal carries observed price acceptance out of a completed
// simulation aggregate.
type SimulationSignal struct {
	AvgPricePaid   float64
	ConversionRate float64
}

// #endregion

// #region estimate

// Interval is a confidence interval. Lower <= Point <= Upper always holds.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// DistributionParams describes the sampled aggregate WTP distribution.
type DistributionParams struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Skew   string  `json:"skew"` // "left" | "symmetric" | "right"
}

// SegmentEstimate is the per-segment breakdown entry.
type SegmentEstimate struct {
	Name          string  `json:"name"`
	PointEstimate float64 `json:"point_estimate"`
	Lower         float64 `json:"lower"`
	Upper         float64 `json:"upper"`
	Population    float64 `json:"population"`
}

// RevenueRange is [worst, base, best] at the P10/P50/P90 percentiles.
type RevenueRange struct {
	WorstCase float64 `json:"worst_case"`
	BaseCase  float64 `json:"base_case"`
	BestCase  float64 `json:"best_case"`
}

// EstimateSchemaVersion is the WTP estimate document version this core
// emits.
const EstimateSchemaVersion = 1

// Estimate is the WTPEstimate output document.
type Estimate struct {
	SchemaVersion      int                `json:"schema_version"`
	PointEstimate      float64            `json:"point_estimate"`
	ConfidenceInterval Interval           `json:"confidence_interval"`
	Distribution       DistributionParams `json:"distribution_params"`
	Segments           []SegmentEstimate  `json:"segment_breakdown"`
	Revenue            RevenueRange       `json:"revenue_range"`
	TotalUncertainty   float64            `json:"total_uncertainty"`
}

// #endregion
