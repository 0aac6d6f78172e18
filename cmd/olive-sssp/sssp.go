package main

import (
	"fmt"

	"github.com/onesuperclark/olive/engine"
	"github.com/onesuperclark/olive/graph"
	"github.com/onesuperclark/olive/utils"
)

// Dist is the hop distance on the expanded graph, which equals the weighted
// distance on the input. -1 is unreachable.
type Dist int32

const Unreached = Dist(-1)

func SSSPProgram() engine.Program[Dist, Dist] {
	return engine.Program[Dist, Dist]{
		Cond:   func(v Dist) bool { return v < 0 },
		Update: func(u Dist) Dist { return u + 1 },
		Pack:   func(v Dist) Dist { return v },
		Unpack: func(m Dist) Dist { return m },
	}
}

// ExpandWeighted subdivides every integer-weighted edge into a unit-length
// chain through synthetic vertices, so that first-touch traversal of the
// result yields exact weighted distances. Synthetic raw ids are allocated
// past the largest real id; maxRaw marks the boundary.
func ExpandWeighted(g *graph.Graph) (expanded *graph.Graph, maxRaw uint32, err error) {
	for _, raw := range g.RawIds {
		maxRaw = utils.Max(maxRaw, raw)
	}
	next := maxRaw + 1

	expanded = graph.New()
	for vidx := range g.OutEdges {
		src := g.Raw(uint32(vidx))
		expanded.AddVertex(src)
		for _, e := range g.OutEdges[vidx] {
			w := int64(e.Weight)
			if float64(w) != e.Weight || w < 1 {
				return nil, 0, fmt.Errorf("edge %d->%d: weight %v is not a positive integer", src, g.Raw(e.Didx), e.Weight)
			}
			prev := src
			for hop := int64(1); hop < w; hop++ {
				expanded.AddEdge(prev, next, 1)
				prev = next
				next++
			}
			expanded.AddEdge(prev, g.Raw(e.Didx), 1)
		}
	}
	return expanded, maxRaw, nil
}

// Distances runs the traversal on the expanded graph and reports results for
// the real vertices only.
func Distances(g *graph.Graph, sourceRaw uint32, numParts int, seed uint32) (map[uint32]Dist, error) {
	expanded, _, err := ExpandWeighted(g)
	if err != nil {
		return nil, err
	}

	e := engine.NewEngine[Dist, Dist]()
	e.Seed = seed
	if err := e.InitFromGraph(expanded, numParts); err != nil {
		return nil, err
	}
	defer e.Free()

	source, ok := expanded.Internal(sourceRaw)
	if !ok {
		return nil, fmt.Errorf("source vertex %d not in graph", sourceRaw)
	}
	e.VertexMap(func(Dist) Dist { return Unreached })
	e.VertexFilter(source, func(Dist) Dist { return 0 })
	if err := e.Run(SSSPProgram()); err != nil {
		return nil, err
	}

	distances := make(map[uint32]Dist, g.VertexCount())
	xg := e.Graph()
	e.Gather(func(id uint32, v Dist) {
		raw := xg.Raw(id)
		if _, real := g.VertexMap[raw]; real {
			distances[raw] = v
		}
	})
	return distances, nil
}
