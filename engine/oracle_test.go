package engine

import (
	"math"
	"math/rand"
	"testing"

	gograph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/onesuperclark/olive/graph"
)

func randomGraph(n int, m int, seed int64) *graph.Graph {
	rng := rand.New(rand.NewSource(seed))
	g := graph.New()
	for v := 0; v < n; v++ {
		g.AddVertex(uint32(v))
	}
	for i := 0; i < m; i++ {
		src := rng.Intn(n)
		dst := rng.Intn(n)
		if src == dst {
			continue
		}
		g.AddEdge(uint32(src), uint32(dst), 1)
	}
	return g
}

func runTraversal(t *testing.T, g *graph.Graph, numParts int, seed uint32) map[uint32]int32 {
	t.Helper()
	e := NewEngine[int32, int32]()
	e.Seed = seed
	if err := e.InitFromGraph(g, numParts); err != nil {
		t.Fatal(err)
	}
	defer e.Free()

	e.VertexMap(func(int32) int32 { return -1 })
	e.VertexFilter(0, func(int32) int32 { return 0 })
	if err := e.Run(bfsProgram()); err != nil {
		t.Fatal(err)
	}

	depths := make(map[uint32]int32)
	e.Gather(func(id uint32, v int32) { depths[id] = v })
	return depths
}

// Hop distances must match an independent oracle, for every partition count.
func TestTraversalAgainstOracle(t *testing.T) {
	const n = 200
	g := randomGraph(n, 600, 3)

	oracle := simple.NewWeightedDirectedGraph(0, math.Inf(1))
	nodes := make([]gograph.Node, n)
	for v := 0; v < n; v++ {
		node, _ := oracle.NodeWithID(int64(v))
		oracle.AddNode(node)
		nodes[v] = node
	}
	for vidx := range g.OutEdges {
		for _, e := range g.OutEdges[vidx] {
			if !oracle.HasEdgeFromTo(int64(vidx), int64(e.Didx)) {
				oracle.SetWeightedEdge(oracle.NewWeightedEdge(nodes[vidx], nodes[e.Didx], 1))
			}
		}
	}
	shortest := path.DijkstraFrom(nodes[0], oracle)

	for _, numParts := range []int{1, 2, 4, 7} {
		depths := runTraversal(t, g, numParts, DefaultSeed)
		for v := 0; v < n; v++ {
			want := shortest.WeightTo(int64(v))
			got := depths[uint32(v)]
			if math.IsInf(want, 1) {
				if got != -1 {
					t.Error("parts=", numParts, " vertex ", v, " should be unreachable, got ", got)
				}
			} else if float64(got) != want {
				t.Error("parts=", numParts, " vertex ", v, " is ", got, " expected ", want)
			}
		}
	}
}

// Repartitioning must not change results: one part and k parts agree per
// global id, for deterministic kernels.
func TestDeterminismAcrossPartitionings(t *testing.T) {
	g := randomGraph(120, 300, 11)
	baseline := runTraversal(t, g, 1, DefaultSeed)

	for _, numParts := range []int{2, 3, 5} {
		depths := runTraversal(t, g, numParts, DefaultSeed)
		for id, want := range baseline {
			if depths[id] != want {
				t.Error("parts=", numParts, " vertex ", id, " is ", depths[id], " expected ", want)
			}
		}
	}
	for _, seed := range []uint32{1, 99} {
		depths := runTraversal(t, g, 4, seed)
		for id, want := range baseline {
			if depths[id] != want {
				t.Error("seed=", seed, " vertex ", id, " is ", depths[id], " expected ", want)
			}
		}
	}
}
