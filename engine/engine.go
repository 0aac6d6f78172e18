package engine

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/onesuperclark/olive/graph"
	"github.com/onesuperclark/olive/utils"
)

// DefaultSeed feeds the random edge-cut hash when Init partitions a graph.
const DefaultSeed = 0x9E3779B9

// Engine drives vertex-centric programs over an edge-cut partitioned graph
// to a fixed point, one bulk-synchronous superstep at a time. It exclusively
// owns its partitions for its lifetime; the sole cross-partition coupling is
// the outbox-to-inbox copy of the exchange phase.
type Engine[V any, M any] struct {
	partitions  []*Partition[V, M]
	g           *graph.Graph
	vertexCount uint32
	supersteps  int
	terminate   bool
	Seed        uint32

	watch utils.Watch
	// Aggregate profiling, milliseconds.
	stepTime float64
	compTime float64
	commTime float64
}

func NewEngine[V any, M any]() *Engine[V, M] {
	return &Engine[V, M]{Seed: DefaultSeed}
}

// Init loads an edge-list file, splits it into numParts subgraphs with the
// random edge-cut strategy, and builds one partition per subgraph.
func (e *Engine[V, M]) Init(path string, numParts int) error {
	g, err := graph.FromEdgeListFile(path)
	if err != nil {
		return err
	}
	return e.InitFromGraph(g, numParts)
}

func (e *Engine[V, M]) InitFromGraph(g *graph.Graph, numParts int) error {
	subgraphs, err := graph.RandomEdgeCut(g, numParts, e.Seed)
	if err != nil {
		return err
	}
	return e.InitFromSubgraphs(g, subgraphs)
}

// InitFromSubgraphs builds partitions from an explicit partitioning. Message
// boxes are sized from the partitioner's cut-edge counts: expand pushes at
// most one message per cut edge per superstep, so the counts are a safe
// upper bound.
func (e *Engine[V, M]) InitFromSubgraphs(g *graph.Graph, subgraphs []graph.Subgraph) error {
	if len(e.partitions) != 0 {
		return fmt.Errorf("engine already initialized")
	}
	if len(subgraphs) == 0 {
		return fmt.Errorf("no subgraphs to build partitions from")
	}
	if len(subgraphs) > runtime.NumCPU() {
		log.Warn().Msg("More partitions (" + utils.V(len(subgraphs)) + ") than CPUs (" + utils.V(runtime.NumCPU()) + ")?")
	}

	e.g = g
	e.vertexCount = g.VertexCount()
	e.partitions = make([]*Partition[V, M], len(subgraphs))

	eg := new(errgroup.Group)
	for i := range subgraphs {
		i := i
		eg.Go(func() error {
			inCaps := make([]uint64, len(subgraphs))
			for j := range subgraphs {
				inCaps[j] = subgraphs[j].CutCounts[i]
			}
			e.partitions[i] = newPartition[V, M](&subgraphs[i], inCaps)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	e.watch.Start()
	return nil
}

// Graph returns the retained logical graph, for translating between raw
// input ids and the dense global ids the engine works with.
func (e *Engine[V, M]) Graph() *graph.Graph {
	return e.g
}

func (e *Engine[V, M]) VertexCount() uint32 {
	return e.vertexCount
}

// Supersteps reports the number of completed supersteps of the last run.
// The step that only observes global quiescence is not counted.
func (e *Engine[V, M]) Supersteps() int {
	return e.supersteps
}

// VertexMap applies f to every vertex value of every partition.
func (e *Engine[V, M]) VertexMap(f func(V) V) {
	for _, p := range e.partitions {
		p := p
		log.Debug().Msg("Partition" + utils.V(p.PartitionId) + " launches a vertexMap kernel on " + utils.V(p.VertexCount) + " elements")
		p.compute().Launch(func() { vertexMapKernel(p, f) })
	}
	for _, p := range e.partitions {
		p.compute().Sync()
	}
}

// VertexFilter applies f to the single vertex with the given global id and
// marks it active. A miss leaves all state untouched.
func (e *Engine[V, M]) VertexFilter(id uint32, f func(V) V) {
	for _, p := range e.partitions {
		p := p
		log.Debug().Msg("Partition" + utils.V(p.PartitionId) + " launches a vertexFilter kernel on " + utils.V(p.VertexCount) + " elements")
		p.compute().Launch(func() { vertexFilterKernel(p, id, f) })
	}
	for _, p := range e.partitions {
		p.compute().Sync()
	}
}

// Run executes supersteps until every partition has drained its work: the
// termination probe observes all workqueues empty, which by phase order
// means the step's inbound messages produced no new work either.
func (e *Engine[V, M]) Run(prog Program[V, M]) error {
	e.supersteps = 0
	algWatch := utils.Watch{}
	algWatch.Start()

	for {
		e.terminate = true
		if err := e.superstep(prog); err != nil {
			return err
		}
		if e.terminate {
			break
		}
	}

	msgSend := make([]uint64, len(e.partitions))
	for i, p := range e.partitions {
		msgSend[i] = p.MsgSend
	}
	log.Info().Msg("Termination: " + utils.V(algWatch.Elapsed().Milliseconds()) +
		" (ms) Total including init: " + utils.V(e.watch.Elapsed().Milliseconds()) +
		" Supersteps: " + utils.V(e.supersteps) + " Messages: " + utils.V(utils.Sum(msgSend)))
	return nil
}

// superstep runs one BSP iteration across all partitions: scatter inbound
// messages, compact worksets, probe for global quiescence, expand, exchange
// outboxes all-to-all, synchronize, and swap inbox buffers. The host blocks
// only at the probe and at the end-of-step sync.
func (e *Engine[V, M]) superstep(prog Program[V, M]) error {
	log.Debug().Msg("************************ Superstep " + utils.V(e.supersteps) + " ************************")
	stepStart := time.Now()

	// Scatter the local state according to the inboxes' messages, one
	// launch per non-empty inbox.
	for _, p := range e.partitions {
		p := p
		p.resetKernelTimes()
		for j := range e.partitions {
			if uint32(j) == p.PartitionId || p.Inboxes[j].Length() == 0 {
				continue
			}
			inbox := p.Inboxes[j]
			log.Debug().Msg("Partition" + utils.V(p.PartitionId) + " launches a scatter kernel on " + utils.V(inbox.Length()) + " elements")
			p.compute().Launch(func() {
				t0 := time.Now()
				scatterKernel(p, inbox, prog)
				p.kernelTimes[evScatter] += time.Since(t0)
			})
		}
	}

	// Compact the worksets back to the workqueues.
	for _, p := range e.partitions {
		p := p
		log.Debug().Msg("Partition" + utils.V(p.PartitionId) + " launches a compaction kernel on " + utils.V(p.VertexCount) + " elements")
		p.compute().Launch(func() {
			atomic.StoreInt64(&p.WorkqueueSize, 0)
			t0 := time.Now()
			compactKernel(p)
			p.kernelTimes[evCompact] += time.Since(t0)
		})
	}

	// Termination probe: pull every workqueue size to the host. As long as
	// one partition has work to do, shall not terminate.
	for _, p := range e.partitions {
		p.compute().Sync()
		qSize := atomic.LoadInt64(&p.WorkqueueSize)
		log.Debug().Msg("Partition" + utils.V(p.PartitionId) + " work queue size=" + utils.V(qSize))
		if qSize != 0 {
			e.terminate = false
		}
	}

	// Returns before expansion and message passing starts.
	if e.terminate {
		return nil
	}

	// Expansion. Every partition clears its outboxes first (delivered
	// messages must never ride a second exchange), then partitions with no
	// work to perform are jumped over.
	for _, p := range e.partitions {
		p := p
		p.compute().Launch(func() {
			for j := range p.Outboxes {
				if uint32(j) == p.PartitionId {
					continue
				}
				p.Outboxes[j].Clear()
			}
		})
		qSize := atomic.LoadInt64(&p.WorkqueueSize)
		if qSize == 0 {
			continue
		}
		log.Debug().Msg("Partition" + utils.V(p.PartitionId) + " launches an expansion kernel on " + utils.V(qSize) + " elements")
		p.compute().Launch(func() {
			t0 := time.Now()
			expandKernel(p, prog)
			p.kernelTimes[evExpand] += time.Since(t0)
		})
	}

	// All-to-all message box transferring. Each copy is enqueued on the
	// source partition's stream, strictly after that partition's expand,
	// so it observes completed outboxes.
	for i := 0; i < len(e.partitions); i++ {
		for j := i + 1; j < len(e.partitions); j++ {
			e.partitions[i].Inboxes[j].RecvMsgs(e.partitions[j].Outboxes[i], e.partitions[j].compute())
			e.partitions[j].Inboxes[i].RecvMsgs(e.partitions[i].Outboxes[j], e.partitions[i].compute())
		}
	}

	// End-of-step synchronization: the global barrier.
	for _, p := range e.partitions {
		p.compute().Sync()
	}

	for _, p := range e.partitions {
		for j := range e.partitions {
			if p.Outboxes[j].Overflowed() || p.Inboxes[j].Overflowed() {
				return fmt.Errorf("partition %d peer %d at superstep %d: %w", p.PartitionId, j, e.supersteps, ErrMessageBoxOverflow)
			}
		}
	}

	// Swap the inboxes before the next superstep begins, so each partition
	// scatters up-to-date data.
	for _, p := range e.partitions {
		for j := range e.partitions {
			if uint32(j) == p.PartitionId {
				continue
			}
			p.Inboxes[j].SwapBuffers()
		}
	}

	// Choose the lagging partition to represent the computation time.
	totalTime := float64(time.Since(stepStart).Microseconds()) / 1000.0
	maxCompTime := 0.0
	for _, p := range e.partitions {
		compTime := float64(p.compTime().Microseconds()) / 1000.0
		if compTime > maxCompTime {
			maxCompTime = compTime
		}
	}
	commTime := totalTime - maxCompTime
	log.Debug().Msg("Superstep" + utils.V(e.supersteps) +
		": total=" + utils.F("%.3f", totalTime) + "ms" +
		", comp=" + utils.F("%.2f", maxCompTime/utils.Max(totalTime, 1e-9)) +
		", comm=" + utils.F("%.2f", commTime/utils.Max(totalTime, 1e-9)))
	e.stepTime += totalTime
	e.compTime += maxCompTime
	e.commTime += commTime

	e.supersteps++
	return nil
}

// Gather pulls every partition's vertex values host-side and hands them to
// f keyed by global id, partition-major, local-index-major. Callers needing
// global-id order must sort afterwards.
func (e *Engine[V, M]) Gather(f func(id uint32, value V)) {
	m0 := time.Now()
	snapshots := make([][]V, len(e.partitions))

	eg := new(errgroup.Group)
	for i, p := range e.partitions {
		i, p := i, p
		eg.Go(func() error {
			p.Streams[0].Launch(func() {
				snap := make([]V, len(p.Values))
				copy(snap, p.Values)
				snapshots[i] = snap
			})
			p.Streams[0].Sync()
			return nil
		})
	}
	_ = eg.Wait()

	for i, p := range e.partitions {
		for j := range snapshots[i] {
			f(p.GlobalIds[j], snapshots[i][j])
		}
	}
	log.Info().Msg("It took " + utils.F("%.3f", float64(time.Since(m0).Microseconds())/1000.0) + "ms to aggregate results.")
}

// Free logs aggregate profiling and releases the partitions' streams. The
// engine must not be used afterwards.
func (e *Engine[V, M]) Free() {
	log.Info().Msg("Profiling: comp=" + utils.F("%.3f", e.compTime) +
		"ms, comm=" + utils.F("%.3f", e.commTime) +
		"ms, all=" + utils.F("%.3f", e.stepTime) + "ms")
	for _, p := range e.partitions {
		p.free()
	}
	e.partitions = nil
}
