package channel

// #region channel-config

// ChannelSpec configures one acquisition channel.
type ChannelSpec struct {
	ID             string  `yaml:"id"`
	BaseReach      float64 `yaml:"base_reach"`      // prospects exposed per period at zero saturation
	BaseConversion float64 `yaml:"base_conversion"` // conversion rate before adjustments
	Reproduction   float64 `yaml:"reproduction"`    // virality R: secondary conversions per conversion
}

// Config holds tunables for the channel dynamics model.
type Config struct {
	Channels []ChannelSpec `yaml:"channels"`

	// SaturationScale controls exposure fatigue: marginal conversion decays
	// as exp(-cumulative_exposure / scale). Must be > 0.
	SaturationScale float64 `yaml:"saturation_scale"`

	// SynergyUplift multiplies conversion when two or more channels were
	// active within the attribution window.
	SynergyUplift float64 `yaml:"synergy_uplift"`

	// AttributionWindow is the co-occurrence window, in periods.
	AttributionWindow int `yaml:"attribution_window"`

	// ReproductionCap clamps virality R. Crossing it records a realism
	// warning instead of failing the run.
	ReproductionCap float64 `yaml:"reproduction_cap"`

	// ReachJitter is the relative stddev of per-period reach noise.
	ReachJitter float64 `yaml:"reach_jitter"`
}

// DefaultConfig returns the built-in channel tunables. Values are
// illustrative defaults and are normally overridden by the defaults file.
func DefaultConfig() Config {
	return Config{
		Channels: []ChannelSpec{
			{ID: "organic", BaseReach: 400, BaseConversion: 0.03, Reproduction: 0.6},
			{ID: "paid", BaseReach: 900, BaseConversion: 0.02, Reproduction: 0.2},
			{ID: "referral", BaseReach: 150, BaseConversion: 0.08, Reproduction: 1.1},
		},
		SaturationScale:   25000,
		SynergyUplift:     1.15,
		AttributionWindow: 2,
		ReproductionCap:   2.5,
		ReachJitter:       0.1,
	}
}

// #endregion

// #region channel-state

// State is the per-channel mutable state, owned by the model and updated
// once per simulated period.
type State struct {
	ID                 string
	ConversionRate     float64
	Reproduction       float64
	CumulativeExposure float64
	LastActivePeriod   int
}

// #endregion
