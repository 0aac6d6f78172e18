package main

import (
	"bufio"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/onesuperclark/olive/engine"
	"github.com/onesuperclark/olive/utils"
)

// Launch point. Parses command line arguments and runs BFS from the given
// source vertex.
func main() {
	options := engine.FlagsToOptions()
	if options.Source < 0 {
		log.Fatal().Msg("BFS requires a source vertex (-src).")
	}

	e := engine.NewEngine[Depth, Depth]()
	e.Seed = options.Seed
	if err := e.Init(options.Name, options.NumParts); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize engine.")
	}
	defer e.Free()

	if options.Stats {
		e.Graph().ComputeGraphStats()
	}
	if options.Profile {
		utils.MemoryStats()
	}

	source, ok := e.Graph().Internal(uint32(options.Source))
	if !ok {
		log.Fatal().Msg("Source vertex not in graph: " + utils.V(options.Source))
	}

	e.VertexMap(func(Depth) Depth { return Unvisited })
	e.VertexFilter(source, func(Depth) Depth { return 0 })

	if err := e.Run(BFSProgram()); err != nil {
		log.Fatal().Err(err).Msg("Run failed.")
	}

	reached := 0
	maxDepth := Depth(0)
	e.Gather(func(id uint32, v Depth) {
		if v >= 0 {
			reached++
			maxDepth = utils.Max(maxDepth, v)
		}
	})
	log.Info().Msg("Reached " + utils.V(reached) + " of " + utils.V(e.VertexCount()) + " vertices, max depth " + utils.V(maxDepth))

	if options.WriteProps {
		writeDepths(e, options.Name+".bfs")
	}
	if options.Profile {
		utils.MemoryStats()
	}
}

func writeDepths(e *engine.Engine[Depth, Depth], path string) {
	file := utils.CreateFile(path)
	defer file.Close()
	w := bufio.NewWriter(file)
	defer w.Flush()
	g := e.Graph()
	e.Gather(func(id uint32, v Depth) {
		w.WriteString(strconv.FormatUint(uint64(g.Raw(id)), 10) + " " + strconv.FormatInt(int64(v), 10) + "\n")
	})
}
