package gridnav

import (
	"maps"
	"slices"

	"github.com/tilekit/gridnav/rng"
)

// BuildRoadmap creates a probabilistic roadmap over m: up to samples distinct
// walkable, transparent cells are sampled at random, and each pair closer than
// radius with a clear straight line between them is connected. Node ids are
// the cells' map indices, so a roadmap path is a list of waypoint cells.
func BuildRoadmap(m *GridMap, samples int, radius float64, r *rng.RandomNumberGenerator) *Graph {
	graph := NewGraph()
	if samples <= 0 || m.Width == 0 || m.Height == 0 {
		return graph
	}

	// Step 1: random sampling (filter out blocked and duplicate cells)
	maxAttempts := samples * 10
	for attempts := 0; len(graph.Nodes) < samples && attempts < maxAttempts; attempts++ {
		p := Point{X: r.Range(0, m.Width), Y: r.Range(0, m.Height)}
		idx := m.PointToIndex(p)
		if !m.IsWalkable(idx) || m.IsOpaque(idx) {
			continue
		}
		graph.AddNode(idx, p)
	}

	// Step 2: connect nearby nodes that can see each other
	ids := slices.Sorted(maps.Keys(graph.Nodes))
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			connect(graph, m, ids[i], ids[j], radius)
		}
	}
	return graph
}

// ConnectPoint adds p to the roadmap and links it to every node within radius
// that it has a clear straight line to. It reports whether at least one edge
// was added.
func ConnectPoint(graph *Graph, m *GridMap, p Point, radius float64) (int, bool) {
	idx := m.PointToIndex(p)
	if idx < 0 {
		return -1, false
	}
	graph.AddNode(idx, p)

	connected := false
	for _, id := range slices.Sorted(maps.Keys(graph.Nodes)) {
		if id != idx && connect(graph, m, idx, id, radius) {
			connected = true
		}
	}
	return idx, connected
}

func connect(graph *Graph, m *GridMap, a, b int, radius float64) bool {
	pa, pb := graph.Nodes[a], graph.Nodes[b]
	dist := euclidean(pa, pb)
	if dist > radius || !isPathClear(pa, pb, m) {
		return false
	}
	if graph.HasEdge(a, b) {
		return true
	}
	graph.AddBidirectional(a, b, dist)
	return true
}

// isPathClear checks that every cell on the straight line is walkable and
// transparent.
func isPathClear(a, b Point, m *GridMap) bool {
	for _, p := range Bresenham(a, b) {
		idx := m.PointToIndex(p)
		if !m.IsWalkable(idx) || m.IsOpaque(idx) {
			return false
		}
	}
	return true
}
