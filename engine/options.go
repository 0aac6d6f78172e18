package engine

import (
	"flag"
	"os"
	"runtime"

	"github.com/rs/zerolog/log"

	"github.com/onesuperclark/olive/utils"
)

type Options struct {
	Name       string // Path of the input graph.
	NumParts   int    // Number of partitions to split the graph into.
	Source     int64  // Raw id of the source vertex; -1 when the app takes no source.
	Seed       uint32 // Seed for the random edge-cut hash.
	DebugLevel uint8
	WriteProps bool // Write all vertex properties to disk at the end.
	Stats      bool // Print graph stats after loading.
	Profile    bool // Print memory stats around the run.
}

// Declare your own flags before you call this function.
func FlagsToOptions() (options Options) {
	graphPtr := flag.String("g", "", "Graph file.")
	partsPtr := flag.Int("k", runtime.NumCPU(), "Number of partitions.")
	sourcePtr := flag.Int64("src", -1, "Source vertex (raw id), for algorithms that take one.")
	seedPtr := flag.Uint("seed", DefaultSeed, "Seed for the random edge-cut placement hash.")
	statsPtr := flag.Bool("stat", false, "Print graph stats after loading.")
	propPtr := flag.Bool("p", false, "Save vertex properties to disk at the end.")
	profilePtr := flag.Bool("profile", false, "Print memory stats around the run.")
	debugPtr := flag.Int("debug", 0, "Adds extra debug output. Level 0 for info, 1 for debug, 2+ for trace.")
	colourPtr := flag.Bool("nc", false, "Removes the colouring from the log output.")
	flag.Parse()

	if *colourPtr {
		utils.SetLoggerConsole(true)
	}
	utils.SetLevel(*debugPtr)

	if *graphPtr == "" {
		flag.Usage()
		os.Exit(1)
	}
	if *partsPtr <= 0 {
		log.Panic().Msg("Invalid partition count.")
	}

	options = Options{
		Name:       *graphPtr,
		NumParts:   *partsPtr,
		Source:     *sourcePtr,
		Seed:       uint32(*seedPtr),
		DebugLevel: uint8(*debugPtr),
		WriteProps: *propPtr,
		Stats:      *statsPtr,
		Profile:    *profilePtr,
	}
	return options
}
