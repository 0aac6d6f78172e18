package main

import (
	"github.com/rs/zerolog/log"

	"github.com/onesuperclark/olive/engine"
	"github.com/onesuperclark/olive/utils"
)

// Launch point. Computes the set of vertices reachable from the source.
func main() {
	options := engine.FlagsToOptions()
	if options.Source < 0 {
		log.Fatal().Msg("Reachability requires a source vertex (-src).")
	}

	e := engine.NewEngine[Reached, Reached]()
	e.Seed = options.Seed
	if err := e.Init(options.Name, options.NumParts); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize engine.")
	}
	defer e.Free()

	if options.Stats {
		e.Graph().ComputeGraphStats()
	}

	source, ok := e.Graph().Internal(uint32(options.Source))
	if !ok {
		log.Fatal().Msg("Source vertex not in graph: " + utils.V(options.Source))
	}

	e.VertexFilter(source, func(Reached) Reached { return 1 })

	if err := e.Run(ReachProgram()); err != nil {
		log.Fatal().Err(err).Msg("Run failed.")
	}

	reached := 0
	e.Gather(func(id uint32, v Reached) {
		if v != 0 {
			reached++
		}
	})
	log.Info().Msg("Reachable from " + utils.V(options.Source) + ": " + utils.V(reached) + " of " + utils.V(e.VertexCount()) + " vertices")
}
