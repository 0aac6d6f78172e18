package engine

// Program is the capability set parameterizing a run: four pure functions
// passed by value into kernel launches. All four must be deterministic and
// free of external state.
//
// Multiple scatter or expand work items may target the same destination
// vertex with different proposed values; the engine does not arbitrate, the
// surviving value is the last writer's. Update must therefore be monotone
// under the algorithm's meet/join semantics (e.g. min for BFS depth) for
// the race to be benign.
type Program[V any, M any] struct {
	// Cond gates updates: a destination is touched only while it holds.
	Cond func(V) bool
	// Update produces the new value from a neighbour's value (expand) or
	// an unpacked message (scatter).
	Update func(V) V
	// Pack serializes a vertex value for cross-partition transmission.
	Pack func(V) M
	// Unpack is the inverse on the receiving side. The engine never
	// mutates the bytes in transit.
	Unpack func(M) V
}
