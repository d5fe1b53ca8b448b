package social

import (
	"testing"

	"github.com/danielpatrickdp/market-validator/go-sim/internal/market"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/seed"
)

func TestGenerateDeterministic(t *testing.T) {
	for _, topo := range []Topology{TopologySmallWorld, TopologyScaleFree, TopologyRandom} {
		t.Run(string(topo), func(t *testing.T) {
			build := func() *Graph {
				stream := seed.NewManager(42).Stream(0, market.ModelSocial, 1<<20)
				g, err := Generate(topo, 200, 6, 0.1, stream)
				if err != nil {
					t.Fatalf("Generate(%s): %v", topo, err)
				}
				return g
			}
			a, b := build(), build()
			if len(a.Edges) != len(b.Edges) {
				t.Fatalf("edge counts differ: %d vs %d", len(a.Edges), len(b.Edges))
			}
			for i := range a.Edges {
				if a.Edges[i] != b.Edges[i] {
					t.Fatalf("edge %d differs: %+v vs %+v", i, a.Edges[i], b.Edges[i])
				}
			}
		})
	}
}

func TestGenerateRejectsTinyGraph(t *testing.T) {
	stream := seed.NewManager(1).Stream(0, market.ModelSocial, 100)
	if _, err := Generate(TopologyRandom, 1, 4, 0, stream); err == nil {
		t.Fatal("expected generation failure for a 1-node graph")
	}
}

func TestGenerateUnknownTopology(t *testing.T) {
	stream := seed.NewManager(1).Stream(0, market.ModelSocial, 100)
	if _, err := Generate(Topology("lattice"), 50, 4, 0, stream); err == nil {
		t.Fatal("expected generation failure for unknown topology")
	}
}

func TestAdoptionGrowsWithPurchases(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Nodes = 300
	m := NewModel(cfg)
	stream := seed.NewManager(21).Stream(0, market.ModelSocial, 1<<22)

	prev := 0.0
	for period := 0; period < 8; period++ {
		state := &market.PeriodState{Period: period, Purchases: 20}
		if err := m.Step(state, stream); err != nil {
			t.Fatalf("Step(period=%d): %v", period, err)
		}
		if state.AdoptionFraction < prev {
			t.Fatalf("period %d: adoption fraction fell from %v to %v", period, prev, state.AdoptionFraction)
		}
		if state.SocialProofBias < 0 || state.SocialProofBias > 1 {
			t.Fatalf("period %d: social proof bias %v outside [0,1]", period, state.SocialProofBias)
		}
		prev = state.AdoptionFraction
	}
	if prev == 0 {
		t.Fatal("no adoption after 8 periods of steady purchases")
	}
}

func TestCascadeTriggersInDenseNeighborhood(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Nodes = 50
	cfg.ConformityThreshold = 0.2
	m := NewModel(cfg)
	stream := seed.NewManager(8).Stream(0, market.ModelSocial, 1<<22)

	sawCascade := false
	for period := 0; period < 10; period++ {
		state := &market.PeriodState{Period: period, Purchases: 8}
		if err := m.Step(state, stream); err != nil {
			t.Fatalf("Step: %v", err)
		}
		if state.CascadeCount > 0 {
			sawCascade = true
		}
	}
	if !sawCascade {
		t.Fatal("expected a conformity cascade in a small dense network")
	}
}

func TestPropagateScalesWithEdgeWeight(t *testing.T) {
	cfg := DefaultConfig()
	buildLine := func(weight float64) *Model {
		g := &Graph{Topology: TopologySmallWorld, N: 3, Edges: []Edge{
			{From: 0, To: 1, Weight: weight},
			{From: 1, To: 2, Weight: weight},
		}}
		g.buildAdjacency()
		m := NewModel(cfg)
		m.graph = g
		m.adopted = make([]bool, g.N)
		m.influence = make([]float64, g.N)
		return m
	}

	strong := buildLine(1.0)
	weak := buildLine(0.2)
	strong.propagate([]int32{0})
	weak.propagate([]int32{0})

	wantStrong := cfg.DecayFactor
	if diff := strong.influence[1] - wantStrong; diff > 1e-12 || diff < -1e-12 {
		t.Fatalf("full-weight influence = %v, want %v", strong.influence[1], wantStrong)
	}
	wantWeak := cfg.DecayFactor * 0.2
	if diff := weak.influence[1] - wantWeak; diff > 1e-12 || diff < -1e-12 {
		t.Fatalf("weak-edge influence = %v, want %v", weak.influence[1], wantWeak)
	}
	// Weight attenuates along the path, not just at the first hop.
	if weak.influence[2] >= weak.influence[1] {
		t.Fatalf("two-hop influence %v should fall below one-hop %v", weak.influence[2], weak.influence[1])
	}
}
