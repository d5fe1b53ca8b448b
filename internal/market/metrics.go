package market

// #region imports
import (
	"sort"
	"strconv"
	"strings"
)

// #endregion

// #region metrics

// Metrics is a named metric vector. Folding is commutative and associative
// (sums only), so the run aggregate is identical regardless of the order in
// which iterations complete.
type Metrics map[string]float64

// Add accumulates delta into the named metric.
func (m Metrics) Add(name string, delta float64) {
	m[name] += delta
}

// Fold sums another vector into this one, key by key.
func (m Metrics) Fold(other Metrics) {
	for k, v := range other {
		m[k] += v
	}
}

// Scale multiplies every metric by f. Used to turn summed iteration vectors
// into per-iteration means.
func (m Metrics) Scale(f float64) Metrics {
	out := make(Metrics, len(m))
	for k, v := range m {
		out[k] = v * f
	}
	return out
}

// Canonical serializes the vector with sorted keys and exact float encoding.
// Two vectors with identical contents always produce identical bytes; this
// is the hashing input for determinism verification.
func (m Metrics) Canonical() []byte {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(m[k], 'g', -1, 64))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// #endregion
