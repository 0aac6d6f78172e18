package engine

import (
	"errors"
	"testing"

	"github.com/onesuperclark/olive/graph"
)

// First-touch traversal used throughout: depth -1 means untouched.
func bfsProgram() Program[int32, int32] {
	return Program[int32, int32]{
		Cond:   func(v int32) bool { return v < 0 },
		Update: func(u int32) int32 { return u + 1 },
		Pack:   func(v int32) int32 { return v },
		Unpack: func(m int32) int32 { return m },
	}
}

func pathGraph(n uint32) *graph.Graph {
	g := graph.New()
	for v := uint32(0); v+1 < n; v++ {
		g.AddEdge(v, v+1, 1)
	}
	return g
}

func newBFSEngine(t *testing.T, g *graph.Graph, subgraphs []graph.Subgraph) *Engine[int32, int32] {
	t.Helper()
	e := NewEngine[int32, int32]()
	if err := e.InitFromSubgraphs(g, subgraphs); err != nil {
		t.Fatal(err)
	}
	e.VertexMap(func(int32) int32 { return -1 })
	return e
}

func checkWorksetZero(t *testing.T, e *Engine[int32, int32]) {
	t.Helper()
	for _, p := range e.partitions {
		for u := range p.Workset {
			if p.Workset[u] != 0 {
				t.Error("partition ", p.PartitionId, " workset bit ", u, " still raised")
			}
		}
	}
}

// A path 0->1->2->3->4 split so every edge crosses the cut: P0={0,2,4},
// P1={1,3}. Each depth rides one exchange; the final probe-only step is not
// counted.
func TestPathTwoPartitions(t *testing.T) {
	g := pathGraph(5)
	subgraphs, err := graph.PartitionBy(g, 2, func(vidx uint32) uint32 { return vidx % 2 })
	if err != nil {
		t.Fatal(err)
	}

	e := newBFSEngine(t, g, subgraphs)
	defer e.Free()
	e.VertexFilter(0, func(int32) int32 { return 0 })
	if err := e.Run(bfsProgram()); err != nil {
		t.Fatal(err)
	}

	e.Gather(func(id uint32, v int32) {
		if v != int32(id) {
			t.Error("vertex ", id, " is ", v, " expected ", id)
		}
	})
	if e.Supersteps() != 5 {
		t.Error("expected 5 completed supersteps, got ", e.Supersteps())
	}
	checkWorksetZero(t, e)
}

// Converged engine: another Run performs only the termination-probe step.
func TestRunAfterConvergence(t *testing.T) {
	g := pathGraph(5)
	subgraphs, _ := graph.PartitionBy(g, 2, func(vidx uint32) uint32 { return vidx % 2 })
	e := newBFSEngine(t, g, subgraphs)
	defer e.Free()
	e.VertexFilter(0, func(int32) int32 { return 0 })
	if err := e.Run(bfsProgram()); err != nil {
		t.Fatal(err)
	}

	if err := e.Run(bfsProgram()); err != nil {
		t.Fatal(err)
	}
	if e.Supersteps() != 0 {
		t.Error("rerun should terminate at the probe, got ", e.Supersteps(), " supersteps")
	}
	e.Gather(func(id uint32, v int32) {
		if v != int32(id) {
			t.Error("rerun changed vertex ", id, " to ", v)
		}
	})
}

// Four isolated vertices, a program that admits nothing: compaction finds
// empty worksets and the engine stops in superstep zero, values untouched.
func TestIsolatedVertices(t *testing.T) {
	g := graph.New()
	for v := uint32(0); v < 4; v++ {
		g.AddVertex(v)
	}
	subgraphs, err := graph.RandomEdgeCut(g, 2, DefaultSeed)
	if err != nil {
		t.Fatal(err)
	}

	e := NewEngine[int32, int32]()
	if err := e.InitFromSubgraphs(g, subgraphs); err != nil {
		t.Fatal(err)
	}
	defer e.Free()
	e.VertexMap(func(int32) int32 { return 7 })

	prog := bfsProgram()
	prog.Cond = func(int32) bool { return false }
	if err := e.Run(prog); err != nil {
		t.Fatal(err)
	}
	if e.Supersteps() != 0 {
		t.Error("expected 0 supersteps, got ", e.Supersteps())
	}
	e.Gather(func(id uint32, v int32) {
		if v != 7 {
			t.Error("vertex ", id, " changed to ", v)
		}
	})
}

// A graph with zero edges terminates in at most one superstep regardless of
// the seed.
func TestZeroEdges(t *testing.T) {
	g := graph.New()
	for v := uint32(0); v < 6; v++ {
		g.AddVertex(v)
	}
	subgraphs, _ := graph.RandomEdgeCut(g, 3, DefaultSeed)
	e := newBFSEngine(t, g, subgraphs)
	defer e.Free()

	e.VertexFilter(2, func(int32) int32 { return 0 })
	if err := e.Run(bfsProgram()); err != nil {
		t.Fatal(err)
	}
	if e.Supersteps() > 1 {
		t.Error("expected at most one superstep, got ", e.Supersteps())
	}
	checkWorksetZero(t, e)
}

// One partition: no exchanges happen and the inboxes stay empty throughout.
func TestSinglePartition(t *testing.T) {
	g := pathGraph(6)
	subgraphs, _ := graph.RandomEdgeCut(g, 1, DefaultSeed)
	e := newBFSEngine(t, g, subgraphs)
	defer e.Free()
	e.VertexFilter(0, func(int32) int32 { return 0 })
	if err := e.Run(bfsProgram()); err != nil {
		t.Fatal(err)
	}

	p := e.partitions[0]
	if p.MsgSend != 0 || p.MsgRecv != 0 {
		t.Error("single partition exchanged messages: ", p.MsgSend, " ", p.MsgRecv)
	}
	for j := range p.Inboxes {
		if p.Inboxes[j].Length() != 0 {
			t.Error("inbox ", j, " not empty")
		}
	}
	e.Gather(func(id uint32, v int32) {
		if v != int32(id) {
			t.Error("vertex ", id, " is ", v, " expected ", id)
		}
	})
}

// Filtering an id that is not in the graph leaves all state unchanged and
// the workset all-zero.
func TestVertexFilterMiss(t *testing.T) {
	g := pathGraph(5)
	subgraphs, _ := graph.RandomEdgeCut(g, 2, DefaultSeed)
	e := newBFSEngine(t, g, subgraphs)
	defer e.Free()

	e.VertexFilter(1234, func(int32) int32 { return 0 })
	checkWorksetZero(t, e)
	if err := e.Run(bfsProgram()); err != nil {
		t.Fatal(err)
	}
	if e.Supersteps() != 0 {
		t.Error("expected immediate termination, got ", e.Supersteps())
	}
	e.Gather(func(id uint32, v int32) {
		if v != -1 {
			t.Error("vertex ", id, " changed to ", v)
		}
	})
}

// Repeated identity maps leave state unchanged.
func TestVertexMapIdentity(t *testing.T) {
	g := pathGraph(5)
	subgraphs, _ := graph.RandomEdgeCut(g, 2, DefaultSeed)
	e := newBFSEngine(t, g, subgraphs)
	defer e.Free()
	e.VertexFilter(0, func(int32) int32 { return 0 })
	if err := e.Run(bfsProgram()); err != nil {
		t.Fatal(err)
	}

	before := make(map[uint32]int32)
	e.Gather(func(id uint32, v int32) { before[id] = v })
	e.VertexMap(func(v int32) int32 { return v })
	e.VertexMap(func(v int32) int32 { return v })
	e.Gather(func(id uint32, v int32) {
		if before[id] != v {
			t.Error("identity map changed vertex ", id, ": ", before[id], " -> ", v)
		}
	})
}

// Every message pushed into an outbox is observed by a scatter before the
// run can terminate.
func TestMessageConservation(t *testing.T) {
	g := pathGraph(40)
	for v := uint32(0); v+5 < 40; v += 3 {
		g.AddEdge(v, v+5, 1)
	}
	subgraphs, _ := graph.RandomEdgeCut(g, 3, DefaultSeed)
	e := newBFSEngine(t, g, subgraphs)
	defer e.Free()
	e.VertexFilter(0, func(int32) int32 { return 0 })
	if err := e.Run(bfsProgram()); err != nil {
		t.Fatal(err)
	}

	sent, received := uint64(0), uint64(0)
	for _, p := range e.partitions {
		sent += p.MsgSend
		received += p.MsgRecv
	}
	if sent == 0 {
		t.Error("expected cross-partition traffic on a 3-way cut")
	}
	if sent != received {
		t.Error("messages sent ", sent, " != received ", received)
	}
	checkWorksetZero(t, e)
}

// Gather visits each global id exactly once, partition-major.
func TestGatherVisitsEachVertexOnce(t *testing.T) {
	g := pathGraph(17)
	subgraphs, _ := graph.RandomEdgeCut(g, 4, DefaultSeed)
	e := newBFSEngine(t, g, subgraphs)
	defer e.Free()

	seen := make(map[uint32]int)
	e.Gather(func(id uint32, v int32) { seen[id]++ })
	if len(seen) != 17 {
		t.Error("expected 17 distinct ids, saw ", len(seen))
	}
	for id, count := range seen {
		if count != 1 {
			t.Error("vertex ", id, " visited ", count, " times")
		}
	}
}

// Lying to the engine about cut counts must surface as a distinguished
// overflow error, not corrupt state.
func TestOutboxOverflow(t *testing.T) {
	g := pathGraph(8)
	subgraphs, err := graph.PartitionBy(g, 2, func(vidx uint32) uint32 { return vidx % 2 })
	if err != nil {
		t.Fatal(err)
	}
	for i := range subgraphs {
		for j := range subgraphs[i].CutCounts {
			subgraphs[i].CutCounts[j] = 0
		}
	}

	e := newBFSEngine(t, g, subgraphs)
	defer e.Free()
	e.VertexFilter(0, func(int32) int32 { return 0 })
	err = e.Run(bfsProgram())
	if !errors.Is(err, ErrMessageBoxOverflow) {
		t.Error("expected ErrMessageBoxOverflow, got ", err)
	}
}
