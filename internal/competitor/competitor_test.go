package competitor

import (
	"math"
	"testing"

	"github.com/danielpatrickdp/market-validator/go-sim/internal/market"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/seed"
)

func hotState(period int) *market.PeriodState {
	// Strong discount plus high conversion: every competitor should notice.
	return &market.PeriodState{
		Period:    period,
		Price:     60,
		BasePrice: 100,
		Prospects: 1000,
		Purchases: 300,
	}
}

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from, to Phase
		want     bool
	}{
		{PhaseObserving, PhaseDeciding, true},
		{PhaseDeciding, PhaseReacting, true},
		{PhaseDeciding, PhaseObserving, true},
		{PhaseReacting, PhaseObserving, true},
		{PhaseObserving, PhaseReacting, false},
	}
	for _, c := range cases {
		if got := IsValidTransition(c.from, c.to); got != c.want {
			t.Errorf("IsValidTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestSharesSumToOneEveryPeriod(t *testing.T) {
	cfg := DefaultConfig()
	m := NewModel(cfg)
	stream := seed.NewManager(5).Stream(0, market.ModelCompetitor, 1<<16)

	var shares []float64
	for period := 0; period < 24; period++ {
		state := hotState(period)
		state.MarketShares = shares
		if err := m.Step(state, stream); err != nil {
			t.Fatalf("Step(period=%d): %v", period, err)
		}
		sum := 0.0
		for _, s := range state.MarketShares {
			sum += s
		}
		if math.Abs(sum-1) > cfg.ShareEpsilon {
			t.Fatalf("period %d: shares sum %v beyond epsilon", period, sum)
		}
		shares = state.MarketShares
	}
}

func TestCompetitorsReactToHotSignal(t *testing.T) {
	m := NewModel(DefaultConfig())
	stream := seed.NewManager(9).Stream(0, market.ModelCompetitor, 1<<16)

	var shares []float64
	sawReaction := false
	for period := 0; period < 10; period++ {
		state := hotState(period)
		state.MarketShares = shares
		if err := m.Step(state, stream); err != nil {
			t.Fatalf("Step: %v", err)
		}
		if state.ActiveReactions > 0 {
			sawReaction = true
			if state.CompetitorPressure <= 0 {
				t.Fatal("active reactions should apply pressure")
			}
		}
		shares = state.MarketShares
	}
	if !sawReaction {
		t.Fatal("no competitor ever reacted to a sustained hot signal")
	}
}

func TestBudgetBackpressure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Competitors = []CompetitorSpec{
		{Name: "solo", Personality: PersonalityAggressive, ResourceBudget: 1, Intelligence: 1.0, MeanDelay: 1, InitialShare: 0.5},
	}
	cfg.OurInitialShare = 0.5
	cfg.ReactionDuration = 100 // reaction never completes inside the test
	m := NewModel(cfg)
	stream := seed.NewManager(3).Stream(0, market.ModelCompetitor, 1<<16)

	var shares []float64
	for period := 0; period < 12; period++ {
		state := hotState(period)
		state.MarketShares = shares
		if err := m.Step(state, stream); err != nil {
			t.Fatalf("Step: %v", err)
		}
		if state.ActiveReactions > 1 {
			t.Fatalf("period %d: %d concurrent reactions exceed budget 1", period, state.ActiveReactions)
		}
		shares = state.MarketShares
	}
}

func TestQuietMarketStaysObserving(t *testing.T) {
	cfg := DefaultConfig()
	// Perfect intelligence: no observation noise, so a flat signal can never
	// cross the trigger threshold.
	for i := range cfg.Competitors {
		cfg.Competitors[i].Intelligence = 1.0
	}
	m := NewModel(cfg)
	stream := seed.NewManager(13).Stream(0, market.ModelCompetitor, 1<<16)

	var shares []float64
	for period := 0; period < 6; period++ {
		state := &market.PeriodState{Period: period, Price: 100, BasePrice: 100, MarketShares: shares}
		if err := m.Step(state, stream); err != nil {
			t.Fatalf("Step: %v", err)
		}
		shares = state.MarketShares
	}
	for _, a := range m.Agents() {
		if a.Phase() == PhaseReacting {
			t.Errorf("%s reacting despite a flat signal", a.spec.Name)
		}
	}
}
