package main

import (
	"github.com/onesuperclark/olive/engine"
)

// Depth stays -1 until the frontier reaches a vertex; the source starts at 0
// and every hop adds one.
type Depth int32

const Unvisited = Depth(-1)

// BFS fits the engine's first-touch model: Cond admits a vertex only while
// unvisited, so the first arriving frontier wins and later ones are ignored.
func BFSProgram() engine.Program[Depth, Depth] {
	return engine.Program[Depth, Depth]{
		Cond:   func(v Depth) bool { return v < 0 },
		Update: func(u Depth) Depth { return u + 1 },
		Pack:   func(v Depth) Depth { return v },
		Unpack: func(m Depth) Depth { return m },
	}
}
