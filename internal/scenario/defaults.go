package scenario

// #region imports
import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/market-validator/go-sim/internal/channel"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/competitor"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/consumer"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/social"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/wtp"
)

// #endregion

// #region defaults

// Defaults bundles every model's tunables. The illustrative coefficients
// (bias weights, premiums, elasticity) live here as configuration, never in
// model logic.
type Defaults struct {
	FeatureUtilities []float64         `yaml:"feature_utilities"`
	Consumer         consumer.Config   `yaml:"consumer"`
	Channel          channel.Config    `yaml:"channel"`
	Competitor       competitor.Config `yaml:"competitor"`
	Social           social.Config     `yaml:"social"`
	WTP              wtp.Config        `yaml:"wtp"`
}

// DefaultDefaults returns the built-in tunables for all models.
func DefaultDefaults() Defaults {
	return Defaults{
		FeatureUtilities: []float64{0.35, 0.3, 0.25, 0.2},
		Consumer:         consumer.DefaultConfig(),
		Channel:          channel.DefaultConfig(),
		Competitor:       competitor.DefaultConfig(),
		Social:           social.DefaultConfig(),
		WTP:              wtp.DefaultConfig(),
	}
}

// #endregion

// #region load

// LoadDefaults reads a YAML defaults file over the built-in values. Unknown
// keys are rejected: a typo in a tunable name must not silently fall back.
func LoadDefaults(path string) (Defaults, error) {
	defaults := DefaultDefaults()

	f, err := os.Open(path)
	if err != nil {
		return defaults, fmt.Errorf("open defaults: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&defaults); err != nil {
		return defaults, fmt.Errorf("%w: defaults file %s: %v", ErrSchemaViolation, path, err)
	}
	return defaults, nil
}

// #endregion
