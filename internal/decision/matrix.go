package decision

// #region imports
import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// #endregion

// #region matrix

const weightTolerance = 1e-6

// Matrix scores the seven dimensions into a GO / PIVOT / KILL verdict.
type Matrix struct {
	weights map[string]float64
}

// NewMatrix validates the weight table: exactly the canonical dimension
// set, every weight non-negative, sum within 1e-6 of 1.
func NewMatrix(weights map[string]float64) (*Matrix, error) {
	if len(weights) != len(Dimensions) {
		return nil, fmt.Errorf("%w: %d weights, want %d", ErrInvalidWeights, len(weights), len(Dimensions))
	}
	sum := 0.0
	for _, dim := range Dimensions {
		w, ok := weights[dim]
		if !ok {
			return nil, fmt.Errorf("%w: missing dimension %s", ErrInvalidWeights, dim)
		}
		if w < 0 {
			return nil, fmt.Errorf("%w: negative weight for %s", ErrInvalidWeights, dim)
		}
		sum += w
	}
	if math.Abs(sum-1) > weightTolerance {
		return nil, fmt.Errorf("%w: weights sum to %g", ErrInvalidWeights, sum)
	}
	cp := make(map[string]float64, len(weights))
	for k, v := range weights {
		cp[k] = v
	}
	return &Matrix{weights: cp}, nil
}

// #endregion

// #region evaluate

// Evaluate scores one run's evidence. Composite is the exact weighted sum,
// never renormalized; scores must cover every dimension and lie in
// [0, 100].
func (m *Matrix) Evaluate(scenarioID, runID string, scores map[string]float64, supersedes string) (*Record, error) {
	for _, dim := range Dimensions {
		s, ok := scores[dim]
		if !ok {
			return nil, fmt.Errorf("%w: missing %s", ErrInvalidScore, dim)
		}
		if s < 0 || s > scoreMax {
			return nil, fmt.Errorf("%w: %s = %g", ErrInvalidScore, dim, s)
		}
	}

	composite := 0.0
	for _, dim := range Dimensions {
		composite += m.weights[dim] * scores[dim]
	}
	verdict := classify(composite)

	rec := &Record{
		SchemaVersion: RecordSchemaVersion,
		ID:            uuid.NewString(),
		ScenarioID:    scenarioID,
		RunID:         runID,
		Scores:        copyScores(scores),
		Weights:       copyScores(m.weights),
		Composite:     composite,
		Verdict:       verdict,
		Confidence:    confidence(composite, verdict),
		Supersedes:    supersedes,
		CreatedAt:     time.Now().Unix(),
	}
	rec.ContentHash = contentHash(rec)
	return rec, nil
}

// classify applies the thresholds with at-or-above semantics on each
// boundary.
func classify(composite float64) Verdict {
	switch {
	case composite >= goThreshold:
		return VerdictGo
	case composite >= pivotThreshold:
		return VerdictPivot
	default:
		return VerdictKill
	}
}

// confidence is the composite's distance to the nearest edge of its
// verdict band, normalized by the band half-width and scaled to 0..100.
// 0 at a boundary, 100 at the band center.
func confidence(composite float64, verdict Verdict) float64 {
	var lo, hi float64
	switch verdict {
	case VerdictGo:
		lo, hi = goThreshold, scoreMax
	case VerdictPivot:
		lo, hi = pivotThreshold, goThreshold
	default:
		lo, hi = 0, pivotThreshold
	}
	half := (hi - lo) / 2
	c := math.Min(composite-lo, hi-composite) / half * 100
	if c < 0 {
		c = 0
	}
	if c > 100 {
		c = 100
	}
	return c
}

// #endregion

// #region hashing

// contentHash covers the record's decision-relevant content, with map keys
// sorted for a canonical byte stream. ID and CreatedAt are excluded so two
// identical decisions hash identically.
func contentHash(r *Record) string {
	h := sha256.New()
	h.Write([]byte(r.ScenarioID))
	h.Write([]byte{0})
	h.Write([]byte(r.RunID))
	h.Write([]byte{0})
	writeSorted(h, r.Scores)
	writeSorted(h, r.Weights)
	h.Write([]byte(strconv.FormatFloat(r.Composite, 'g', -1, 64)))
	h.Write([]byte{0})
	h.Write([]byte(r.Verdict))
	return hex.EncodeToString(h.Sum(nil))
}

func writeSorted(h io.Writer, m map[string]float64) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte("="))
		h.Write([]byte(strconv.FormatFloat(m[k], 'g', -1, 64)))
		h.Write([]byte{0})
	}
}

func copyScores(m map[string]float64) map[string]float64 {
	cp := make(map[string]float64, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

// #endregion

// #region derive

// ScoresFromEvidence maps simulation outputs and external judgments onto
// the seven dimensions. Each mapping is a bounded linear rescale into
// [0, 100]; the coefficients mirror the tunables' neutral points.
func ScoresFromEvidence(ev Evidence) map[string]float64 {
	opportunity := (rescale(ev.ConversionRate, 0, 0.12) + rescale(ev.AdoptionFraction, 0, 0.5)) / 2
	return map[string]float64{
		DimMarketOpportunity:    opportunity,
		DimWTPValidation:        rescale(ev.WTPPremium, -0.5, 0.5),
		DimCompetitivePosition:  rescale(ev.FinalShare, 0, 0.6),
		DimTechnicalFeasibility: rescale(ev.TechnicalFeasibility, 0, 1),
		DimFinancialViability:   rescale(ev.RevenuePerProspect, 0, ev.ReferencePrice*0.15),
		DimRiskAssessment:       100 - rescale(ev.RiskExposure+ev.RealismWarningRate, 0, 1),
		DimTeamCapability:       rescale(ev.TeamCapability, 0, 1),
	}
}

// Evidence gathers the raw signals behind a decision: simulation and WTP
// outputs plus the externally supplied technical, risk and team judgments.
type Evidence struct {
	ConversionRate     float64 // purchases / prospects
	AdoptionFraction   float64 // network adoption at horizon
	WTPPremium         float64 // (P50 - reference) / reference
	FinalShare         float64 // our market share at horizon
	RevenuePerProspect float64
	ReferencePrice     float64
	RealismWarningRate float64 // virality clamps per period

	TechnicalFeasibility float64 // external judgment, 0..1
	RiskExposure         float64 // external judgment, 0..1
	TeamCapability       float64 // external judgment, 0..1
}

func rescale(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	s := (v - lo) / (hi - lo) * 100
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// #endregion
