package wtp

import (
	"errors"
	"testing"

	"github.com/danielpatrickdp/market-validator/go-sim/internal/seed"
)

func evidence() []SegmentEvidence {
	return []SegmentEvidence{
		{Name: "early_adopter", SampleSize: 80, BaseValue: 50, BrandPremium: 0.4, FeaturePremium: 0.3, QualityPremium: 0.2, Elasticity: 0.5, Population: 1000},
		{Name: "mainstream", SampleSize: 200, BaseValue: 40, BrandPremium: 0.2, FeaturePremium: 0.15, QualityPremium: 0.1, Elasticity: 1.0, Population: 5000},
	}
}

func stream() *seed.Stream {
	return seed.NewManager(42).Stream(0, "wtp", 1<<20)
}

func TestEstimateContainsPoint(t *testing.T) {
	est := NewEstimator(DefaultConfig())

	out, err := est.Estimate(evidence(), MarketConditions{ConditionFactor: 1, ReferencePrice: 60}, nil, stream())
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}

	if out.SchemaVersion != EstimateSchemaVersion {
		t.Errorf("schema version = %d, want %d", out.SchemaVersion, EstimateSchemaVersion)
	}
	ci := out.ConfidenceInterval
	if ci.Lower > out.PointEstimate || out.PointEstimate > ci.Upper {
		t.Fatalf("point %v outside interval [%v, %v]", out.PointEstimate, ci.Lower, ci.Upper)
	}
	for _, s := range out.Segments {
		if s.Lower > s.PointEstimate || s.PointEstimate > s.Upper {
			t.Errorf("segment %s: point %v outside [%v, %v]", s.Name, s.PointEstimate, s.Lower, s.Upper)
		}
	}
	if out.Revenue.WorstCase > out.Revenue.BaseCase || out.Revenue.BaseCase > out.Revenue.BestCase {
		t.Errorf("revenue range not ordered: %+v", out.Revenue)
	}
}

func TestIntervalWidthMonotoneInUncertainty(t *testing.T) {
	narrow := DefaultConfig()
	wide := DefaultConfig()
	wide.Uncertainty.MarketVariability *= 3

	run := func(cfg Config) float64 {
		out, err := NewEstimator(cfg).Estimate(evidence(), MarketConditions{ConditionFactor: 1}, nil, stream())
		if err != nil {
			t.Fatalf("Estimate: %v", err)
		}
		return out.ConfidenceInterval.Upper - out.ConfidenceInterval.Lower
	}

	if wn, ww := run(narrow), run(wide); ww < wn {
		t.Fatalf("interval width %v with higher uncertainty is below %v", ww, wn)
	}
}

func TestInsufficientEvidenceRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinSegmentSampleSize = 30
	est := NewEstimator(cfg)

	thin := evidence()
	thin[1].SampleSize = 5

	_, err := est.Estimate(thin, MarketConditions{ConditionFactor: 1}, nil, stream())
	if !errors.Is(err, ErrInsufficientEvidence) {
		t.Fatalf("expected ErrInsufficientEvidence, got %v", err)
	}

	if _, err := est.Estimate(nil, MarketConditions{}, nil, stream()); !errors.Is(err, ErrInsufficientEvidence) {
		t.Fatalf("expected ErrInsufficientEvidence for empty segments, got %v", err)
	}
}

func TestEstimateDeterministic(t *testing.T) {
	est := NewEstimator(DefaultConfig())

	run := func() *Estimate {
		out, err := est.Estimate(evidence(), MarketConditions{ConditionFactor: 1.1, ReferencePrice: 70}, &SimulationSignal{AvgPricePaid: 55, ConversionRate: 0.04}, stream())
		if err != nil {
			t.Fatalf("Estimate: %v", err)
		}
		return out
	}

	a, b := run(), run()
	if a.PointEstimate != b.PointEstimate {
		t.Fatalf("point estimates diverged: %v vs %v", a.PointEstimate, b.PointEstimate)
	}
	if a.Distribution != b.Distribution {
		t.Fatalf("distributions diverged: %+v vs %+v", a.Distribution, b.Distribution)
	}
	if a.Revenue != b.Revenue {
		t.Fatalf("revenue ranges diverged: %+v vs %+v", a.Revenue, b.Revenue)
	}
}

func TestSimulationSignalTempersEstimate(t *testing.T) {
	est := NewEstimator(DefaultConfig())
	cond := MarketConditions{ConditionFactor: 1}

	plain, err := est.Estimate(evidence(), cond, nil, stream())
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	// Observed acceptance far below the modeled estimate should pull it down.
	tempered, err := est.Estimate(evidence(), cond, &SimulationSignal{AvgPricePaid: 10, ConversionRate: 0.01}, stream())
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if tempered.PointEstimate >= plain.PointEstimate {
		t.Fatalf("tempered estimate %v should be below plain %v", tempered.PointEstimate, plain.PointEstimate)
	}
}
