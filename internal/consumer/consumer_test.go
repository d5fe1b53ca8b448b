package consumer

import (
	"testing"

	"github.com/danielpatrickdp/market-validator/go-sim/internal/market"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/seed"
)

func baseState() *market.PeriodState {
	return &market.PeriodState{
		Price:             80,
		BasePrice:         100,
		FeatureUtilities:  []float64{0.4, 0.3, 0.25, 0.2},
		MarketCondition:   1.0,
		ChannelExposure:   map[string]float64{"organic": 800, "paid": 1200},
		ChannelConversion: map[string]float64{"organic": 0.04, "paid": 0.02},
	}
}

func TestStepProducesPurchases(t *testing.T) {
	m := NewModel(DefaultConfig())
	stream := seed.NewManager(42).Stream(0, market.ModelConsumer, 1<<20)

	state := baseState()
	state.SocialProofBias = 0.3
	if err := m.Step(state, stream); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if state.Prospects == 0 {
		t.Fatal("no prospects evaluated")
	}
	if state.Purchases == 0 {
		t.Fatal("expected purchases at a discounted price with social proof")
	}
	if state.Revenue != float64(state.Purchases)*state.Price {
		t.Errorf("revenue %v inconsistent with %d purchases at price %v", state.Revenue, state.Purchases, state.Price)
	}

	attributed := 0
	for _, n := range state.PurchasesByChannel {
		attributed += n
	}
	if attributed != state.Purchases {
		t.Errorf("channel attribution %d != purchases %d", attributed, state.Purchases)
	}
}

func TestHigherPriceLowersPurchases(t *testing.T) {
	m := NewModel(DefaultConfig())

	run := func(price float64) int {
		stream := seed.NewManager(42).Stream(0, market.ModelConsumer, 1<<20)
		state := baseState()
		state.Price = price
		if err := m.Step(state, stream); err != nil {
			t.Fatalf("Step(price=%v): %v", price, err)
		}
		return state.Purchases
	}

	cheap, dear := run(70), run(150)
	if dear >= cheap {
		t.Fatalf("purchases at price 150 (%d) should be below purchases at 70 (%d)", dear, cheap)
	}
}

func TestSocialProofRaisesPurchases(t *testing.T) {
	m := NewModel(DefaultConfig())

	run := func(bias float64) int {
		stream := seed.NewManager(7).Stream(0, market.ModelConsumer, 1<<20)
		state := baseState()
		state.SocialProofBias = bias
		if err := m.Step(state, stream); err != nil {
			t.Fatalf("Step(bias=%v): %v", bias, err)
		}
		return state.Purchases
	}

	if with, without := run(0.8), run(0); with <= without {
		t.Fatalf("purchases with social proof (%d) should exceed without (%d)", with, without)
	}
}

func TestStepDeterministic(t *testing.T) {
	m := NewModel(DefaultConfig())

	run := func() (int, float64) {
		stream := seed.NewManager(11).Stream(3, market.ModelConsumer, 1<<20)
		state := baseState()
		if err := m.Step(state, stream); err != nil {
			t.Fatalf("Step: %v", err)
		}
		return state.Purchases, state.Revenue
	}

	p1, r1 := run()
	p2, r2 := run()
	if p1 != p2 || r1 != r2 {
		t.Fatalf("identical streams diverged: (%d, %v) vs (%d, %v)", p1, r1, p2, r2)
	}
}
