package market

// #region imports
import (
	"sort"

	"github.com/danielpatrickdp/market-validator/go-sim/internal/seed"
)

// #endregion

// #region model-interface

// Model is one stage of the per-period simulation pipeline. Step mutates the
// period state in place; all randomness comes from the provided stream. A
// Model may keep private cross-period state, but never cross-iteration state.
type Model interface {
	Name() string
	Version() string
	Step(state *PeriodState, stream *seed.Stream) error
}

// #endregion

// #region version-set

// VersionSet is the canonical, sorted "name/version" list for a model
// pipeline. It participates in the composite hash.
func VersionSet(models []Model) []string {
	vs := make([]string, 0, len(models))
	for _, m := range models {
		vs = append(vs, m.Name()+"/"+m.Version())
	}
	sort.Strings(vs)
	return vs
}

// #endregion
