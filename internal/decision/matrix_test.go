package decision

import (
	"errors"
	"math"
	"testing"
)

// #region fixtures

func uniformScores(v float64) map[string]float64 {
	scores := make(map[string]float64, len(Dimensions))
	for _, dim := range Dimensions {
		scores[dim] = v
	}
	return scores
}

func mustMatrix(t *testing.T) *Matrix {
	t.Helper()
	m, err := NewMatrix(DefaultWeights())
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	return m
}

// #endregion

// #region weight-validation

func TestNewMatrixRejectsBadWeights(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(map[string]float64)
	}{
		{"missing dimension", func(w map[string]float64) { delete(w, DimTeamCapability) }},
		{"sum off by too much", func(w map[string]float64) { w[DimMarketOpportunity] = 0.26 }},
		{"negative weight", func(w map[string]float64) {
			w[DimMarketOpportunity] = -0.05
			w[DimWTPValidation] = 0.50
		}},
	}
	for _, tc := range cases {
		w := DefaultWeights()
		tc.mutate(w)
		if _, err := NewMatrix(w); !errors.Is(err, ErrInvalidWeights) {
			t.Errorf("%s: err = %v, want ErrInvalidWeights", tc.name, err)
		}
	}
}

func TestNewMatrixToleratesRoundoff(t *testing.T) {
	w := DefaultWeights()
	w[DimTeamCapability] += 5e-7
	if _, err := NewMatrix(w); err != nil {
		t.Fatalf("roundoff within tolerance rejected: %v", err)
	}
}

// #endregion

// #region thresholds

func TestVerdictBoundaries(t *testing.T) {
	m := mustMatrix(t)
	cases := []struct {
		score float64
		want  Verdict
	}{
		{75.0, VerdictGo},
		{74.999, VerdictPivot},
		{45.0, VerdictPivot},
		{44.999, VerdictKill},
		{100.0, VerdictGo},
		{0.0, VerdictKill},
	}
	for _, tc := range cases {
		rec, err := m.Evaluate("s", "r", uniformScores(tc.score), "")
		if err != nil {
			t.Fatalf("Evaluate(%g): %v", tc.score, err)
		}
		// Uniform scores make the weighted sum equal the common score.
		if math.Abs(rec.Composite-tc.score) > 1e-9 {
			t.Errorf("composite = %g, want %g", rec.Composite, tc.score)
		}
		if rec.Verdict != tc.want {
			t.Errorf("score %g: verdict = %s, want %s", tc.score, rec.Verdict, tc.want)
		}
	}
}

func TestCompositeIsExactWeightedSum(t *testing.T) {
	m := mustMatrix(t)
	scores := uniformScores(50)
	scores[DimMarketOpportunity] = 90
	rec, err := m.Evaluate("s", "r", scores, "")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	want := 0.25*90 + 0.75*50
	if math.Abs(rec.Composite-want) > 1e-9 {
		t.Errorf("composite = %g, want %g", rec.Composite, want)
	}
}

func TestEvaluateRejectsBadScores(t *testing.T) {
	m := mustMatrix(t)
	missing := uniformScores(50)
	delete(missing, DimRiskAssessment)
	if _, err := m.Evaluate("s", "r", missing, ""); !errors.Is(err, ErrInvalidScore) {
		t.Errorf("missing score: err = %v", err)
	}
	over := uniformScores(50)
	over[DimMarketOpportunity] = 101
	if _, err := m.Evaluate("s", "r", over, ""); !errors.Is(err, ErrInvalidScore) {
		t.Errorf("out-of-range score: err = %v", err)
	}
}

// #endregion

// #region confidence

func TestConfidenceBandDistance(t *testing.T) {
	m := mustMatrix(t)

	boundary, _ := m.Evaluate("s", "r", uniformScores(75), "")
	center, _ := m.Evaluate("s", "r", uniformScores(87.5), "")
	if boundary.Confidence > 1e-7 {
		t.Errorf("boundary confidence = %g, want ~0", boundary.Confidence)
	}
	if math.Abs(center.Confidence-100) > 1e-7 {
		t.Errorf("band-center confidence = %g, want 100", center.Confidence)
	}

	near, _ := m.Evaluate("s", "r", uniformScores(46), "")
	mid, _ := m.Evaluate("s", "r", uniformScores(60), "")
	if near.Confidence >= mid.Confidence {
		t.Errorf("confidence near boundary (%g) should be below band center (%g)", near.Confidence, mid.Confidence)
	}
}

// #endregion

// #region records

func TestRecordHashingAndSupersession(t *testing.T) {
	m := mustMatrix(t)
	a, err := m.Evaluate("s", "r", uniformScores(60), "")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	b, err := m.Evaluate("s", "r", uniformScores(60), a.ID)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if a.SchemaVersion != RecordSchemaVersion {
		t.Errorf("schema version = %d, want %d", a.SchemaVersion, RecordSchemaVersion)
	}
	if a.ID == b.ID {
		t.Error("records must have distinct IDs")
	}
	if a.ContentHash != b.ContentHash {
		t.Error("identical decision content must hash identically")
	}
	if b.Supersedes != a.ID {
		t.Errorf("supersedes = %q, want %q", b.Supersedes, a.ID)
	}

	c, _ := m.Evaluate("s", "r", uniformScores(61), "")
	if c.ContentHash == a.ContentHash {
		t.Error("different scores must change the content hash")
	}
}

// #endregion

// #region evidence

func TestScoresFromEvidenceBounded(t *testing.T) {
	scores := ScoresFromEvidence(Evidence{
		ConversionRate:       0.5, // far above the rescale ceiling
		AdoptionFraction:     0.8, // likewise
		WTPPremium:           -2,
		FinalShare:           0.3,
		RevenuePerProspect:   4,
		ReferencePrice:       100,
		RealismWarningRate:   0,
		TechnicalFeasibility: 0.7,
		RiskExposure:         0.2,
		TeamCapability:       0.8,
	})
	for _, dim := range Dimensions {
		s, ok := scores[dim]
		if !ok {
			t.Fatalf("missing dimension %s", dim)
		}
		if s < 0 || s > 100 {
			t.Errorf("%s = %g, outside [0,100]", dim, s)
		}
	}
	if scores[DimMarketOpportunity] != 100 {
		t.Errorf("saturated demand signals should clamp to 100, got %g", scores[DimMarketOpportunity])
	}
	if scores[DimWTPValidation] != 0 {
		t.Errorf("deeply negative premium should clamp to 0, got %g", scores[DimWTPValidation])
	}
	if scores[DimTeamCapability] != 80 {
		t.Errorf("team capability 0.8 should rescale to 80, got %g", scores[DimTeamCapability])
	}
	if scores[DimRiskAssessment] != 80 {
		t.Errorf("risk exposure 0.2 should score 80, got %g", scores[DimRiskAssessment])
	}
}

// #endregion
