package graph

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/onesuperclark/olive/utils"
)

// FromEdgeListFile reads a plain text edge list: one directed edge per line,
// whitespace-separated "src dst [weight]", '#' lines are comments. Vertex ids
// are non-negative integers.
func FromEdgeListFile(path string) (*Graph, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open graph file: %w", err)
	}
	defer file.Close()

	m0 := time.Now()
	g := New()
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		lineText := scanner.Text()
		if strings.HasPrefix(lineText, "#") {
			continue
		}
		stringFields := strings.Fields(lineText)
		if len(stringFields) == 0 {
			continue
		}
		if len(stringFields) != 2 && len(stringFields) != 3 {
			return nil, fmt.Errorf("%s:%d: expected \"src dst [weight]\", got %d fields", path, lineNum, len(stringFields))
		}
		src, err := strconv.ParseUint(stringFields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad source id: %w", path, lineNum, err)
		}
		dst, err := strconv.ParseUint(stringFields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad target id: %w", path, lineNum, err)
		}
		weight := 1.0
		if len(stringFields) == 3 {
			weight, err = strconv.ParseFloat(stringFields[2], 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: bad edge value: %w", path, lineNum, err)
			}
		}
		g.AddEdge(uint32(src), uint32(dst), weight)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read graph file: %w", err)
	}
	if g.VertexCount() == 0 {
		return nil, fmt.Errorf("%s: no vertices found", path)
	}

	log.Info().Msg("Read " + utils.V(g.EdgeCount) + " edges in (ms) " + utils.V(time.Since(m0).Milliseconds()))
	return g, nil
}
