package graph

import (
	"github.com/rs/zerolog/log"

	"github.com/onesuperclark/olive/utils"
)

// Graph is the host-side logical view of a directed graph. Raw vertex ids
// from the input are compacted to dense internal ids in first-seen order;
// the engine and the partitioner deal only in internal ids.
type Graph struct {
	VertexMap map[uint32]uint32 // Raw to internal.
	RawIds    []uint32          // Internal to raw.
	OutEdges  [][]Edge
	EdgeCount uint64
}

// Edge weights come straight from the input file; the engine never reads
// them, applications may.
type Edge struct {
	Didx   uint32
	Weight float64
}

func New() *Graph {
	return &Graph{VertexMap: make(map[uint32]uint32)}
}

func (g *Graph) VertexCount() uint32 {
	return uint32(len(g.RawIds))
}

// AddVertex maps a raw id to an internal id, creating the vertex if it has
// not been seen before.
func (g *Graph) AddVertex(raw uint32) (internal uint32) {
	if idx, ok := g.VertexMap[raw]; ok {
		return idx
	}
	internal = uint32(len(g.RawIds))
	g.VertexMap[raw] = internal
	g.RawIds = append(g.RawIds, raw)
	g.OutEdges = append(g.OutEdges, nil)
	return internal
}

func (g *Graph) AddEdge(srcRaw uint32, dstRaw uint32, weight float64) {
	sidx := g.AddVertex(srcRaw)
	didx := g.AddVertex(dstRaw)
	g.OutEdges[sidx] = append(g.OutEdges[sidx], Edge{Didx: didx, Weight: weight})
	g.EdgeCount++
}

// Internal translates a raw id; ok is false if the id never appeared in the input.
func (g *Graph) Internal(raw uint32) (internal uint32, ok bool) {
	internal, ok = g.VertexMap[raw]
	return internal, ok
}

func (g *Graph) Raw(internal uint32) uint32 {
	return g.RawIds[internal]
}

func (g *Graph) ComputeGraphStats() {
	numSinks := 0
	listOutDegree := make([]int, 0, len(g.OutEdges))
	for vidx := range g.OutEdges {
		deg := len(g.OutEdges[vidx])
		if deg == 0 {
			numSinks++
		}
		listOutDegree = append(listOutDegree, deg)
	}
	maxOutDegree := 0
	if len(listOutDegree) > 0 {
		maxOutDegree = utils.MaxSlice(listOutDegree)
	}
	log.Info().Msg("----GraphStats----")
	log.Info().Msg("Vertices " + utils.V(g.VertexCount()))
	log.Info().Msg("Sinks " + utils.V(numSinks) + " pct: " + utils.F("%.3f", float64(numSinks)*100.0/float64(utils.Max(1, int(g.VertexCount())))))
	log.Info().Msg("Edges " + utils.V(g.EdgeCount))
	log.Info().Msg("MaxOutDeg " + utils.V(maxOutDegree))
	log.Info().Msg("----EndStats----")
}
