package main

import (
	"github.com/onesuperclark/olive/engine"
)

// Reached is 0 until the traversal touches a vertex, 1 afterwards.
type Reached uint8

func ReachProgram() engine.Program[Reached, Reached] {
	return engine.Program[Reached, Reached]{
		Cond:   func(v Reached) bool { return v == 0 },
		Update: func(Reached) Reached { return 1 },
		Pack:   func(v Reached) Reached { return v },
		Unpack: func(m Reached) Reached { return m },
	}
}
