package graph

import (
	"encoding/binary"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spaolacci/murmur3"

	"github.com/onesuperclark/olive/utils"
)

// Dest identifies an edge destination after partitioning: which partition
// owns it and its local index there.
type Dest struct {
	Pid  uint32
	Lidx uint32
}

// Subgraph is one partition's slice of the logical graph, handed to the
// engine. Destinations are already remapped to (Pid, Lidx) pairs, so the
// engine never consults the logical graph during a run.
type Subgraph struct {
	Pid       uint32
	GlobalIds []uint32 // Local index to internal (global) id, ascending.
	Vertices  []uint32 // CSR row offsets over local out-edges, len = len(GlobalIds)+1.
	Edges     []Dest
	CutCounts []uint64 // Outbound cut edges per peer partition; self slot stays zero.
}

func (sg *Subgraph) VertexCount() uint32 {
	return uint32(len(sg.GlobalIds))
}

// RandomEdgeCut splits the graph into numParts vertex-disjoint subgraphs,
// assigning each vertex by a seeded hash of its internal id. Deterministic
// for a given (graph, numParts, seed).
func RandomEdgeCut(g *Graph, numParts int, seed uint32) ([]Subgraph, error) {
	return PartitionBy(g, numParts, func(vidx uint32) uint32 {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], vidx)
		return murmur3.Sum32WithSeed(b[:], seed) % uint32(numParts)
	})
}

// PartitionBy splits the graph using an explicit vertex-to-partition
// assignment. Every internal id must map below numParts.
func PartitionBy(g *Graph, numParts int, assign func(vidx uint32) uint32) ([]Subgraph, error) {
	if numParts <= 0 {
		return nil, fmt.Errorf("invalid partition count %d", numParts)
	}
	n := g.VertexCount()

	pidOf := make([]uint32, n)
	lidxOf := make([]uint32, n)
	subgraphs := make([]Subgraph, numParts)
	for i := range subgraphs {
		subgraphs[i].Pid = uint32(i)
		subgraphs[i].CutCounts = make([]uint64, numParts)
	}

	// Local indices follow ascending internal id order within each partition.
	for vidx := uint32(0); vidx < n; vidx++ {
		pid := assign(vidx)
		if pid >= uint32(numParts) {
			return nil, fmt.Errorf("vertex %d assigned to partition %d of %d", vidx, pid, numParts)
		}
		pidOf[vidx] = pid
		sg := &subgraphs[pid]
		lidxOf[vidx] = uint32(len(sg.GlobalIds))
		sg.GlobalIds = append(sg.GlobalIds, vidx)
	}

	cutEdges := uint64(0)
	for i := range subgraphs {
		sg := &subgraphs[i]
		sg.Vertices = make([]uint32, 1, len(sg.GlobalIds)+1)
		for _, vidx := range sg.GlobalIds {
			for _, e := range g.OutEdges[vidx] {
				dpid := pidOf[e.Didx]
				sg.Edges = append(sg.Edges, Dest{Pid: dpid, Lidx: lidxOf[e.Didx]})
				if dpid != sg.Pid {
					sg.CutCounts[dpid]++
					cutEdges++
				}
			}
			sg.Vertices = append(sg.Vertices, uint32(len(sg.Edges)))
		}
	}

	if numParts > 1 {
		log.Debug().Msg("Partitioned " + utils.V(n) + " vertices into " + utils.V(numParts) +
			" parts, cut edges: " + utils.V(cutEdges) + " (" +
			utils.F("%.1f", float64(cutEdges)*100.0/float64(utils.Max(uint64(1), g.EdgeCount))) + "%)")
	}
	return subgraphs, nil
}
