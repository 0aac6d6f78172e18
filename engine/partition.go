package engine

import (
	"time"

	"github.com/onesuperclark/olive/graph"
)

// Kernel timing event slots.
const (
	evScatter = iota
	evCompact
	evExpand
	numEvents
)

// Partition holds one shard's topology, per-vertex state, worklist
// structures, and its message boxes facing every peer. It exposes state, not
// behavior: the driver reaches in to launch kernels, which keeps the whole
// BSP choreography in one place.
type Partition[V any, M any] struct {
	PartitionId uint32
	DeviceId    int

	VertexCount uint32
	GlobalIds   []uint32
	Vertices    []uint32 // CSR row offsets, len = VertexCount+1.
	Edges       []graph.Dest

	Values        []V
	Workset       []int32 // Dense 0/1 flags; all-zero outside scatter/expand windows.
	Workqueue     []uint32
	WorkqueueSize int64 // Atomic; reset by the driver before each compaction.

	// One box per peer, self slot allocated with zero capacity and never
	// written.
	Outboxes []*MessageBox[M]
	Inboxes  []*MessageBox[M]

	// Streams[1] carries compute kernels and outgoing copies; Streams[0]
	// carries host-side pulls (gather).
	Streams [2]*Stream

	kernelTimes [numEvents]time.Duration

	MsgSend uint64
	MsgRecv uint64
}

// newPartition builds a partition from a partitioner subgraph. inCaps[j] is
// the worst-case number of messages peer j can send here in one superstep
// (its cut-edge count towards this partition); outbox capacities come from
// the subgraph's own cut counts.
func newPartition[V any, M any](sg *graph.Subgraph, inCaps []uint64) *Partition[V, M] {
	numParts := len(sg.CutCounts)
	n := sg.VertexCount()

	p := &Partition[V, M]{
		PartitionId: sg.Pid,
		DeviceId:    int(sg.Pid),
		VertexCount: n,
		GlobalIds:   sg.GlobalIds,
		Vertices:    sg.Vertices,
		Edges:       sg.Edges,
		Values:      make([]V, n),
		Workset:     make([]int32, n),
		Workqueue:   make([]uint32, n),
		Outboxes:    make([]*MessageBox[M], numParts),
		Inboxes:     make([]*MessageBox[M], numParts),
	}
	for j := 0; j < numParts; j++ {
		if uint32(j) == sg.Pid {
			p.Outboxes[j] = NewMessageBox[M](0)
			p.Inboxes[j] = NewMessageBox[M](0)
			continue
		}
		p.Outboxes[j] = NewMessageBox[M](int(sg.CutCounts[j]))
		p.Inboxes[j] = NewMessageBox[M](int(inCaps[j]))
	}
	p.Streams[0] = NewStream()
	p.Streams[1] = NewStream()
	return p
}

func (p *Partition[V, M]) compute() *Stream {
	return p.Streams[1]
}

func (p *Partition[V, M]) resetKernelTimes() {
	for i := range p.kernelTimes {
		p.kernelTimes[i] = 0
	}
}

// compTime is the summed kernel time of the current superstep. Valid only
// after the end-of-step sync.
func (p *Partition[V, M]) compTime() time.Duration {
	var total time.Duration
	for i := range p.kernelTimes {
		total += p.kernelTimes[i]
	}
	return total
}

func (p *Partition[V, M]) free() {
	p.Streams[0].Close()
	p.Streams[1].Close()
}
