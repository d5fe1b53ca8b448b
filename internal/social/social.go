// Package social models influence propagation and herd cascades over a
// deterministically generated network. The graph lives in flat index
// tables; propagation is plain adjacency lookups.
package social

// #region imports
import (
	"log"

	"github.com/danielpatrickdp/market-validator/go-sim/internal/market"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/seed"
)

// #endregion

// #region config

// Config holds tunables for the social proof model.
type Config struct {
	Topology  Topology `yaml:"topology"`
	Nodes     int      `yaml:"nodes"`
	AvgDegree int      `yaml:"avg_degree"`
	Rewire    float64  `yaml:"rewire"` // small-world rewiring probability

	// DecayFactor is the per-hop influence retention; influence at hop h is
	// weight * decay^h.
	DecayFactor float64 `yaml:"decay_factor"`

	// ConformityThreshold is the neighborhood adoption fraction beyond which
	// a node cascades into adoption.
	ConformityThreshold float64 `yaml:"conformity_threshold"`

	// MaxHops bounds influence propagation distance.
	MaxHops int `yaml:"max_hops"`
}

// DefaultConfig returns the built-in social tunables.
func DefaultConfig() Config {
	return Config{
		Topology:            TopologySmallWorld,
		Nodes:               600,
		AvgDegree:           6,
		Rewire:              0.1,
		DecayFactor:         0.5,
		ConformityThreshold: 0.35,
		MaxHops:             3,
	}
}

// #endregion

// #region model

const modelVersion = "1.3.0"

// Model owns the iteration's network and per-node adoption state.
type Model struct {
	config    Config
	graph     *Graph
	adopted   []bool
	influence []float64
}

// NewModel creates a social model; the graph is generated lazily on the
// first step so generation draws come from the iteration's social stream.
func NewModel(config Config) *Model {
	return &Model{config: config}
}

// Name implements market.Model.
func (m *Model) Name() string { return market.ModelSocial }

// Version implements market.Model.
func (m *Model) Version() string { return modelVersion }

// Graph exposes the generated network for tests and inspection.
func (m *Model) Graph() *Graph { return m.graph }

// #endregion

// #region step

// Step seeds this period's purchasers onto the network, propagates influence
// with per-hop decay, fires conformity cascades, and writes the adoption
// fraction and social-proof bias consumed by the next period's consumers.
func (m *Model) Step(state *market.PeriodState, stream *seed.Stream) error {
	if m.graph == nil {
		g, err := Generate(m.config.Topology, m.config.Nodes, m.config.AvgDegree, m.config.Rewire, stream)
		if err != nil {
			return err
		}
		m.graph = g
		m.adopted = make([]bool, g.N)
		m.influence = make([]float64, g.N)
	}

	// Seed new adopters: each purchase converts one not-yet-adopted node.
	seeds := m.seedAdopters(state.Purchases, stream)

	// Influence propagation: BFS from the new adopters, decaying per hop.
	m.propagate(seeds)

	// Herd cascades: nodes whose neighborhoods crossed the conformity
	// threshold adopt in an accelerated wave.
	cascades := m.cascade()
	if cascades > 0 {
		log.Printf("[SOC] period %d: %d cascade adoptions", state.Period, cascades)
	}

	adopted := 0
	totalInfluence := 0.0
	for i := range m.adopted {
		if m.adopted[i] {
			adopted++
		}
		totalInfluence += m.influence[i]
	}

	state.CascadeCount = cascades
	state.AdoptionFraction = float64(adopted) / float64(m.graph.N)
	bias := state.AdoptionFraction + totalInfluence/float64(m.graph.N)
	if bias > 1 {
		bias = 1
	}
	state.SocialProofBias = bias

	return stream.Err()
}

// seedAdopters marks up to n non-adopted nodes as adopters, chosen by draw.
func (m *Model) seedAdopters(n int, stream *seed.Stream) []int32 {
	var seeds []int32
	for i := 0; i < n; i++ {
		idx := int32(stream.IntN(m.graph.N))
		if m.adopted[idx] {
			continue // collision draws are skipped, not retried
		}
		m.adopted[idx] = true
		seeds = append(seeds, idx)
	}
	return seeds
}

// propagate runs a bounded BFS from each seed. Influence decays per hop and
// attenuates by each traversed edge's weight.
func (m *Model) propagate(seeds []int32) {
	type frontier struct {
		node int32
		hop  int
		inf  float64
	}
	for _, s := range seeds {
		visited := map[int32]bool{s: true}
		queue := []frontier{{node: s, hop: 0, inf: 1.0}}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			if cur.hop >= m.config.MaxHops {
				continue
			}
			decayed := cur.inf * m.config.DecayFactor
			for _, nb := range m.graph.Adj[cur.node] {
				if visited[nb.Node] {
					continue
				}
				visited[nb.Node] = true
				contribution := decayed * nb.Weight
				m.influence[nb.Node] += contribution
				queue = append(queue, frontier{node: nb.Node, hop: cur.hop + 1, inf: contribution})
			}
		}
	}
}

// cascade adopts every node whose neighborhood adoption fraction exceeds the
// conformity threshold. Evaluation is synchronous: all decisions read the
// same pre-cascade adoption snapshot, so node order cannot matter.
func (m *Model) cascade() int {
	snapshot := make([]bool, len(m.adopted))
	copy(snapshot, m.adopted)

	count := 0
	for i := range m.adopted {
		if snapshot[i] || len(m.graph.Adj[i]) == 0 {
			continue
		}
		adoptedNeighbors := 0
		for _, nb := range m.graph.Adj[i] {
			if snapshot[nb.Node] {
				adoptedNeighbors++
			}
		}
		frac := float64(adoptedNeighbors) / float64(len(m.graph.Adj[i]))
		if frac > m.config.ConformityThreshold {
			m.adopted[i] = true
			count++
		}
	}
	return count
}

// #endregion
