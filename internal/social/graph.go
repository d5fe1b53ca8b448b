package social

// #region imports
import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/market-validator/go-sim/internal/seed"
)

// #endregion

// #region errors

// ErrNetworkGeneration means a topology could not be built within its
// constraints. The generator retries with relaxed parameters up to a fixed
// attempt count before surfacing this.
var ErrNetworkGeneration = errors.New("network generation failed")

// #endregion

// #region graph

// Topology selects the network generation scheme.
type Topology string

const (
	TopologySmallWorld Topology = "small_world"
	TopologyScaleFree  Topology = "scale_free"
	TopologyRandom     Topology = "random"
)

// Edge is one weighted link in the flat edge table.
type Edge struct {
	From   int32
	To     int32
	Weight float64
}

// Neighbor is one adjacency entry: the neighbor's index and the link
// weight of the connecting edge.
type Neighbor struct {
	Node   int32
	Weight float64
}

// Graph is an index-addressed social network: nodes are integer indices into
// flat tables, never mutual object references.
type Graph struct {
	Topology Topology
	N        int
	Edges    []Edge
	Adj      [][]Neighbor // Adj[i] lists neighbors of node i
}

// #endregion

// #region generate

const maxGenAttempts = 3

// Generate builds a graph deterministically from the stream. The same stream
// state and parameters always produce an identical edge list. Undersized
// results are retried with a raised degree, then fail with
// ErrNetworkGeneration.
func Generate(topology Topology, n, avgDegree int, rewire float64, stream *seed.Stream) (*Graph, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 nodes, got %d", ErrNetworkGeneration, n)
	}

	degree := avgDegree
	for attempt := 0; attempt < maxGenAttempts; attempt++ {
		var g *Graph
		switch topology {
		case TopologySmallWorld:
			g = generateSmallWorld(n, degree, rewire, stream)
		case TopologyScaleFree:
			g = generateScaleFree(n, degree, stream)
		case TopologyRandom:
			g = generateRandom(n, degree, stream)
		default:
			return nil, fmt.Errorf("%w: unknown topology %q", ErrNetworkGeneration, topology)
		}
		if err := stream.Err(); err != nil {
			return nil, err
		}

		// Constraint: enough edges that influence can actually move.
		if len(g.Edges) >= n*degree/4 && len(g.Edges) > 0 {
			g.buildAdjacency()
			return g, nil
		}
		degree++ // relax and retry
	}
	return nil, fmt.Errorf("%w: topology %s too sparse after %d attempts", ErrNetworkGeneration, topology, maxGenAttempts)
}

// generateSmallWorld builds a Watts-Strogatz ring lattice with rewiring.
func generateSmallWorld(n, k int, beta float64, stream *seed.Stream) *Graph {
	g := &Graph{Topology: TopologySmallWorld, N: n}
	half := k / 2
	if half < 1 {
		half = 1
	}
	for i := 0; i < n; i++ {
		for j := 1; j <= half; j++ {
			target := (i + j) % n
			if beta > 0 && stream.Float64() < beta {
				target = stream.IntN(n)
				if target == i {
					target = (i + 1) % n
				}
			}
			g.Edges = append(g.Edges, Edge{From: int32(i), To: int32(target), Weight: edgeWeight(stream)})
		}
	}
	return g
}

// generateScaleFree builds a Barabási-Albert preferential-attachment graph.
func generateScaleFree(n, m int, stream *seed.Stream) *Graph {
	g := &Graph{Topology: TopologyScaleFree, N: n}
	if m < 1 {
		m = 1
	}

	// Degree-biased target list: each edge endpoint appears once.
	targets := []int32{0}
	for i := 1; i < n; i++ {
		links := m
		if links > i {
			links = i
		}
		for j := 0; j < links; j++ {
			to := targets[stream.IntN(len(targets))]
			g.Edges = append(g.Edges, Edge{From: int32(i), To: to, Weight: edgeWeight(stream)})
			targets = append(targets, to)
		}
		targets = append(targets, int32(i))
	}
	return g
}

// generateRandom builds an Erdős–Rényi graph with p derived from the degree.
func generateRandom(n, avgDegree int, stream *seed.Stream) *Graph {
	g := &Graph{Topology: TopologyRandom, N: n}
	p := float64(avgDegree) / float64(n-1)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if stream.Float64() < p {
				g.Edges = append(g.Edges, Edge{From: int32(i), To: int32(j), Weight: edgeWeight(stream)})
			}
		}
	}
	return g
}

// edgeWeight draws an influence weight in [0.2, 1.0).
func edgeWeight(stream *seed.Stream) float64 {
	return 0.2 + 0.8*stream.Float64()
}

// buildAdjacency fills the adjacency lists from the undirected edge table.
func (g *Graph) buildAdjacency() {
	g.Adj = make([][]Neighbor, g.N)
	for _, e := range g.Edges {
		g.Adj[e.From] = append(g.Adj[e.From], Neighbor{Node: e.To, Weight: e.Weight})
		g.Adj[e.To] = append(g.Adj[e.To], Neighbor{Node: e.From, Weight: e.Weight})
	}
}

// #endregion
