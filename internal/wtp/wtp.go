// Package wtp estimates willingness-to-pay with quantified uncertainty:
// multi-factor point estimates per segment, root-sum-of-squares error
// combination, and fixed-count Monte Carlo aggregation.
package wtp

// #region imports
import (
	"fmt"
	"math"
	"sort"

	"github.com/danielpatrickdp/market-validator/go-sim/internal/seed"
)

// #endregion

// #region estimator

// Estimator computes uncertainty-banded WTP estimates. It is stateless; all
// randomness comes from the provided stream.
type Estimator struct {
	config Config
}

// NewEstimator creates an estimator.
func NewEstimator(config Config) *Estimator {
	return &Estimator{config: config}
}

// #endregion

// #region estimate

// Estimate produces the full WTP document. sim may be nil when no simulation
// aggregate is available yet. Returns ErrInsufficientEvidence when any
// segment is below the minimum sample size.
func (e *Estimator) Estimate(
	segments []SegmentEvidence,
	conditions MarketConditions,
	sim *SimulationSignal,
	stream *seed.Stream,
) (*Estimate, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: no segments provided", ErrInsufficientEvidence)
	}
	for _, s := range segments {
		if s.SampleSize < e.config.MinSegmentSampleSize {
			return nil, fmt.Errorf("%w: segment %q has %d samples, minimum is %d",
				ErrInsufficientEvidence, s.Name, s.SampleSize, e.config.MinSegmentSampleSize)
		}
	}

	total := e.totalUncertainty()

	breakdown := make([]SegmentEstimate, 0, len(segments))
	popTotal := 0.0
	weightedPoint := 0.0
	for _, s := range segments {
		point := e.segmentPoint(s, conditions, sim)
		lower, upper := band(point, total)
		breakdown = append(breakdown, SegmentEstimate{
			Name:          s.Name,
			PointEstimate: point,
			Lower:         lower,
			Upper:         upper,
			Population:    s.Population,
		})
		popTotal += s.Population
		weightedPoint += point * s.Population
	}
	if popTotal <= 0 {
		return nil, fmt.Errorf("%w: total segment population is zero", ErrInsufficientEvidence)
	}
	point := weightedPoint / popTotal
	lower, upper := band(point, total)

	dist, revenue := e.monteCarlo(breakdown, popTotal, total, stream)
	if err := stream.Err(); err != nil {
		return nil, err
	}

	return &Estimate{
		SchemaVersion:      EstimateSchemaVersion,
		PointEstimate:      point,
		ConfidenceInterval: Interval{Lower: lower, Upper: upper},
		Distribution:       dist,
		Segments:           breakdown,
		Revenue:            revenue,
		TotalUncertainty:   total,
	}, nil
}

// totalUncertainty combines the four independent error sources by
// root-sum-of-squares.
func (e *Estimator) totalUncertainty() float64 {
	u := e.config.Uncertainty
	return math.Sqrt(u.Measurement*u.Measurement +
		u.ModelSpec*u.ModelSpec +
		u.MarketVariability*u.MarketVariability +
		u.TemporalDrift*u.TemporalDrift)
}

// segmentPoint computes one segment's multi-factor point estimate.
func (e *Estimator) segmentPoint(s SegmentEvidence, conditions MarketConditions, sim *SimulationSignal) float64 {
	factor := conditions.ConditionFactor
	if factor <= 0 {
		factor = 1
	}
	point := s.BaseValue * (1 + s.BrandPremium) * (1 + s.FeaturePremium) * (1 + s.QualityPremium) * factor

	// Price-elasticity correction: overshooting the reference price erodes
	// realizable WTP in proportion to the segment's elasticity.
	if conditions.ReferencePrice > 0 && point > conditions.ReferencePrice {
		overshoot := (point - conditions.ReferencePrice) / conditions.ReferencePrice
		erosion := s.Elasticity * overshoot
		if erosion > 0.5 {
			erosion = 0.5
		}
		point *= 1 - erosion
	}

	// Observed price acceptance from the simulation tempers the estimate.
	if sim != nil && sim.AvgPricePaid > 0 {
		w := e.config.SimulationBlend
		observed := sim.AvgPricePaid * (1 + sim.ConversionRate)
		point = point*(1-w) + observed*w
	}
	return point
}

// band derives the confidence interval point × (1 ± total), floored at zero.
func band(point, total float64) (lower, upper float64) {
	lower = point * (1 - total)
	if lower < 0 {
		lower = 0
	}
	upper = point * (1 + total)
	return lower, upper
}

// #endregion

// #region monte-carlo

// monteCarlo samples the aggregate WTP distribution with a fixed draw count
// and derives distribution parameters and the P10/P50/P90 revenue range.
func (e *Estimator) monteCarlo(
	segments []SegmentEstimate,
	popTotal float64,
	total float64,
	stream *seed.Stream,
) (DistributionParams, RevenueRange) {
	n := e.config.SampleCount
	samples := make([]float64, 0, n)

	// Cumulative population weights for segment selection.
	cum := make([]float64, len(segments))
	acc := 0.0
	for i, s := range segments {
		acc += s.Population / popTotal
		cum[i] = acc
	}

	var sum, sumSq float64
	for i := 0; i < n; i++ {
		roll := stream.Float64()
		idx := sort.SearchFloat64s(cum, roll)
		if idx >= len(segments) {
			idx = len(segments) - 1
		}
		seg := segments[idx]
		v := seg.PointEstimate * (1 + total*stream.NormFloat64())
		if v < 0 {
			v = 0
		}
		samples = append(samples, v)
		sum += v
		sumSq += v * v
	}

	sort.Float64s(samples)
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}

	p10 := percentile(samples, 0.10)
	p50 := percentile(samples, 0.50)
	p90 := percentile(samples, 0.90)

	dist := DistributionParams{
		Mean:   mean,
		StdDev: math.Sqrt(variance),
		Skew:   skewLabel(mean, p50),
	}
	revenue := RevenueRange{
		WorstCase: p10 * e.config.AddressableUnits,
		BaseCase:  p50 * e.config.AddressableUnits,
		BestCase:  p90 * e.config.AddressableUnits,
	}
	return dist, revenue
}

// percentile reads the p-quantile from sorted samples.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

// skewLabel compares mean to median for a coarse skew descriptor.
func skewLabel(mean, median float64) string {
	if median == 0 {
		return "symmetric"
	}
	rel := (mean - median) / median
	switch {
	case rel > 0.02:
		return "right"
	case rel < -0.02:
		return "left"
	default:
		return "symmetric"
	}
}

// #endregion
