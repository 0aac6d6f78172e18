package engine

import (
	"runtime"
	"sync/atomic"

	"github.com/onesuperclark/olive/utils"
)

// Minimum elements per goroutine before a kernel fans out further.
const kernelChunk = 2048

// kernelWidth picks the goroutine fan-out for a data-parallel kernel from
// the problem size, the way a launch config is derived from an element
// count.
func kernelWidth(n int) int {
	return utils.Min(runtime.NumCPU(), (n+kernelChunk-1)/kernelChunk)
}

// scatterKernel folds one inbox into local vertex state: for each message,
// if the receiver still satisfies cond, its value is replaced with
// update(unpack(payload)) and its workset bit raised. Runs sequentially on
// the partition's compute stream; same-receiver messages resolve in queue
// order (last writer wins).
func scatterKernel[V any, M any](p *Partition[V, M], inbox *MessageBox[M], prog Program[V, M]) {
	msgs := inbox.Buffer()
	for i := range msgs {
		inNode := msgs[i].Receiver
		newValue := prog.Unpack(msgs[i].Value)
		if prog.Cond(p.Values[inNode]) {
			p.Values[inNode] = prog.Update(newValue)
			p.Workset[inNode] = 1
		}
	}
	p.MsgRecv += uint64(len(msgs))
}

// compactKernel condenses the workset into the workqueue, clearing flags as
// it goes. Work items own disjoint workset slots; the queue offset is the
// only shared write, reserved with a fetch-and-add. Queue order is
// unspecified.
func compactKernel[V any, M any](p *Partition[V, M]) {
	n := int(p.VertexCount)
	utils.ParallelFor(n, kernelWidth(n), func(start int, end int) {
		for u := start; u < end; u++ {
			if p.Workset[u] == 1 {
				p.Workset[u] = 0
				offset := atomic.AddInt64(&p.WorkqueueSize, 1) - 1
				p.Workqueue[offset] = uint32(u)
			}
		}
	})
}

// expandKernel walks the out-edges of every queued vertex: local
// destinations are updated in place (and flagged), remote destinations get
// a packed message pushed into the peer's outbox. Outboxes must have been
// cleared by the driver beforehand.
func expandKernel[V any, M any](p *Partition[V, M], prog Program[V, M]) {
	n := atomic.LoadInt64(&p.WorkqueueSize)
	for i := int64(0); i < n; i++ {
		outNode := p.Workqueue[i]
		first := p.Vertices[outNode]
		last := p.Vertices[outNode+1]
		for e := first; e < last; e++ {
			dst := p.Edges[e]
			if dst.Pid == p.PartitionId {
				if prog.Cond(p.Values[dst.Lidx]) {
					p.Values[dst.Lidx] = prog.Update(p.Values[outNode])
					p.Workset[dst.Lidx] = 1
				}
			} else {
				msg := Msg[M]{Receiver: dst.Lidx, Value: prog.Pack(p.Values[outNode])}
				if p.Outboxes[dst.Pid].Push(msg) {
					p.MsgSend++
				}
			}
		}
	}
}

// vertexMapKernel applies f to every local vertex value. Work items write
// distinct slots, so the pass fans out freely.
func vertexMapKernel[V any, M any](p *Partition[V, M], f func(V) V) {
	n := int(p.VertexCount)
	utils.ParallelFor(n, kernelWidth(n), func(start int, end int) {
		for u := start; u < end; u++ {
			p.Values[u] = f(p.Values[u])
		}
	})
}

// vertexFilterKernel scans the global-id array for a match; the single
// matching slot gets f applied and its workset bit raised. Intentionally a
// full scan: global ids are not indexed.
func vertexFilterKernel[V any, M any](p *Partition[V, M], id uint32, f func(V) V) {
	n := int(p.VertexCount)
	utils.ParallelFor(n, kernelWidth(n), func(start int, end int) {
		for u := start; u < end; u++ {
			if p.GlobalIds[u] == id {
				p.Values[u] = f(p.Values[u])
				p.Workset[u] = 1
			}
		}
	})
}
