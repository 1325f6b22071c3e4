package gridnav

import (
	"errors"
	"fmt"
)

// MaxWaypoints bounds BuildVisibilityGraph, which checks every pair.
const MaxWaypoints = 1000

var ErrTooManyWaypoints = errors.New("gridnav: too many waypoints")

// HasLineOfSight reports whether b can be seen from a: no cell strictly
// between them on the Bresenham line is opaque.
func HasLineOfSight(a, b Point, m OpacityMap) bool {
	line := Bresenham(a, b)
	if len(line) <= 2 {
		return true
	}
	for _, p := range line[1 : len(line)-1] {
		if m.IsOpaque(m.PointToIndex(p)) {
			return false
		}
	}
	return true
}

// BuildVisibilityGraph connects every pair of mutually visible waypoints with
// a bidirectional edge costing their straight-line distance. Node ids are the
// waypoint positions in the input slice; duplicates share the first id.
func BuildVisibilityGraph(waypoints []Point, m OpacityMap) (*Graph, error) {
	if len(waypoints) > MaxWaypoints {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrTooManyWaypoints, len(waypoints), MaxWaypoints)
	}

	graph := NewGraph()
	seen := make(map[Point]int, len(waypoints))
	ids := make([]int, 0, len(waypoints))
	for i, p := range waypoints {
		// Skip if waypoint is already added
		if _, exists := seen[p]; exists {
			continue
		}
		seen[p] = i
		ids = append(ids, i)
		graph.AddNode(i, p)
	}

	// Build edges: connect nodes that have line-of-sight
	for a := 0; a < len(ids); a++ {
		for b := a + 1; b < len(ids); b++ {
			pa, pb := graph.Nodes[ids[a]], graph.Nodes[ids[b]]
			if HasLineOfSight(pa, pb, m) {
				graph.AddBidirectional(ids[a], ids[b], euclidean(pa, pb))
			}
		}
	}
	return graph, nil
}
