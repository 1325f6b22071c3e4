package gridnav

// Graph is an explicit index graph usable as a PathingMap (waypoint networks,
// roadmaps, hand-built test graphs).
type Graph struct {
	Nodes map[int]Point
	Edges map[int][]Exit
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make(map[int]Point),
		Edges: make(map[int][]Exit),
	}
}

// AddNode places node id at p. Positions feed the heuristic.
func (g *Graph) AddNode(id int, p Point) {
	g.Nodes[id] = p
}

// AddEdge adds a one-way edge.
func (g *Graph) AddEdge(from, to int, cost float64) {
	g.Edges[from] = append(g.Edges[from], Exit{To: to, Cost: cost})
}

// AddBidirectional adds an edge in both directions with the same cost.
func (g *Graph) AddBidirectional(a, b int, cost float64) {
	g.AddEdge(a, b, cost)
	g.AddEdge(b, a, cost)
}

// AvailableExits implements PathingMap.
func (g *Graph) AvailableExits(idx int) []Exit {
	return g.Edges[idx]
}

// PathingDistance is the straight-line distance between the two node
// positions, or 0 when either position is unknown. It is admissible as long
// as no edge is cheaper than the distance it spans.
func (g *Graph) PathingDistance(idx1, idx2 int) float64 {
	a, ok := g.Nodes[idx1]
	if !ok {
		return 0
	}
	b, ok := g.Nodes[idx2]
	if !ok {
		return 0
	}
	return euclidean(a, b)
}

// EdgeCount returns the number of directed edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, edges := range g.Edges {
		n += len(edges)
	}
	return n
}

// Clone returns a deep copy, so callers can add temporary nodes without
// touching a shared graph.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		Nodes: make(map[int]Point, len(g.Nodes)),
		Edges: make(map[int][]Exit, len(g.Edges)),
	}
	for id, p := range g.Nodes {
		c.Nodes[id] = p
	}
	for id, exits := range g.Edges {
		c.Edges[id] = append([]Exit(nil), exits...)
	}
	return c
}

// Lines returns every undirected edge once as a pair of endpoints.
func (g *Graph) Lines() [][2]Point {
	var lines [][2]Point
	for from, exits := range g.Edges {
		for _, e := range exits {
			if e.To < from && g.HasEdge(e.To, from) {
				continue
			}
			lines = append(lines, [2]Point{g.Nodes[from], g.Nodes[e.To]})
		}
	}
	return lines
}

// HasEdge reports whether a direct edge from -> to exists.
func (g *Graph) HasEdge(from, to int) bool {
	for _, e := range g.Edges[from] {
		if e.To == to {
			return true
		}
	}
	return false
}
