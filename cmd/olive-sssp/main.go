package main

import (
	"bufio"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/onesuperclark/olive/engine"
	"github.com/onesuperclark/olive/graph"
	"github.com/onesuperclark/olive/utils"
)

// Launch point. Single-source shortest paths over integer edge weights.
func main() {
	options := engine.FlagsToOptions()
	if options.Source < 0 {
		log.Fatal().Msg("SSSP requires a source vertex (-src).")
	}

	g, err := graph.FromEdgeListFile(options.Name)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load graph.")
	}
	if options.Stats {
		g.ComputeGraphStats()
	}

	distances, err := Distances(g, uint32(options.Source), options.NumParts, options.Seed)
	if err != nil {
		log.Fatal().Err(err).Msg("Run failed.")
	}

	reached := 0
	maxDist := Dist(0)
	for _, d := range distances {
		if d >= 0 {
			reached++
			maxDist = utils.Max(maxDist, d)
		}
	}
	log.Info().Msg("Reached " + utils.V(reached) + " of " + utils.V(len(distances)) + " vertices, max distance " + utils.V(maxDist))

	if options.WriteProps {
		file := utils.CreateFile(options.Name + ".sssp")
		defer file.Close()
		w := bufio.NewWriter(file)
		defer w.Flush()
		for raw, d := range distances {
			w.WriteString(strconv.FormatUint(uint64(raw), 10) + " " + strconv.FormatInt(int64(d), 10) + "\n")
		}
	}
}
