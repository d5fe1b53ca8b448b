package seed

// #region imports
import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
)

// #endregion

// #region errors

// ErrSeedExhaustion means a model drew more random values than its stream
// budget allows. This is a programming or configuration defect, never a
// retryable condition.
var ErrSeedExhaustion = errors.New("seed stream exhausted")

// #endregion

// #region manager

// Manager derives statistically independent sub-seeds from a single run seed.
// The same (run seed, iteration, model name) always yields the same stream.
type Manager struct {
	runSeed uint64
}

// NewManager creates a derivation manager for the given run seed.
func NewManager(runSeed uint64) *Manager {
	return &Manager{runSeed: runSeed}
}

// RunSeed returns the root seed this manager derives from.
func (m *Manager) RunSeed() uint64 {
	return m.runSeed
}

// #endregion

// #region derive

// Derive computes H(run_seed ‖ iteration ‖ model_name) and returns the two
// leading 64-bit words of the digest. One-way: sub-seeds do not reveal the
// run seed, and distinct inputs map to independent PCG initializations.
func (m *Manager) Derive(iteration int, model string) (uint64, uint64) {
	buf := make([]byte, 16, 16+len(model))
	binary.BigEndian.PutUint64(buf[0:8], m.runSeed)
	binary.BigEndian.PutUint64(buf[8:16], uint64(iteration))
	buf = append(buf, model...)
	sum := sha256.Sum256(buf)
	return binary.BigEndian.Uint64(sum[0:8]), binary.BigEndian.Uint64(sum[8:16])
}

// Stream builds a budgeted random stream for one model within one iteration.
// budget is the maximum number of draws the stream will serve; a model that
// needs more is misconfigured and the stream reports ErrSeedExhaustion.
func (m *Manager) Stream(iteration int, model string, budget int) *Stream {
	hi, lo := m.Derive(iteration, model)
	return &Stream{
		rng:       rand.New(rand.NewPCG(hi, lo)),
		remaining: budget,
		iteration: iteration,
		model:     model,
	}
}

// #endregion

// #region stream

// Stream is a deterministic, draw-budgeted random source for a single model.
// It is not safe for concurrent use; each iteration builds its own streams.
type Stream struct {
	rng       *rand.Rand
	remaining int
	exhausted bool
	iteration int
	model     string
}

// Float64 returns a uniform draw in [0, 1).
func (s *Stream) Float64() float64 {
	if !s.take() {
		return 0
	}
	return s.rng.Float64()
}

// NormFloat64 returns a standard normal draw.
func (s *Stream) NormFloat64() float64 {
	if !s.take() {
		return 0
	}
	return s.rng.NormFloat64()
}

// IntN returns a uniform draw in [0, n).
func (s *Stream) IntN(n int) int {
	if !s.take() {
		return 0
	}
	return s.rng.IntN(n)
}

// Err returns ErrSeedExhaustion (wrapped with the stream identity) once the
// draw budget has been exceeded, nil otherwise. Callers check it after each
// model step; every draw past the budget returns zero values.
func (s *Stream) Err() error {
	if s.exhausted {
		return fmt.Errorf("model %s iteration %d: %w", s.model, s.iteration, ErrSeedExhaustion)
	}
	return nil
}

// take consumes one unit of budget.
func (s *Stream) take() bool {
	if s.remaining <= 0 {
		s.exhausted = true
		return false
	}
	s.remaining--
	return true
}

// #endregion
