package gridnav

// Exit is a traversable edge from a cell to one of its neighbours.
type Exit struct {
	To   int     // Index of the destination cell
	Cost float64 // Cost to enter the destination cell
}

// OpacityMap is the part of a map the field-of-view engine queries.
type OpacityMap interface {
	// PointToIndex maps a coordinate to the map's dense cell index.
	PointToIndex(p Point) int
	// IsOpaque reports whether the cell blocks sight.
	IsOpaque(idx int) bool
}

// PathingMap is the part of a map the A* engine queries.
type PathingMap interface {
	// AvailableExits lists the cells reachable in one step from idx.
	AvailableExits(idx int) []Exit
	// PathingDistance estimates the remaining cost between two cells. It must
	// never overestimate for A* to return optimal paths.
	PathingDistance(idx1, idx2 int) float64
}

// BaseMap is a map usable by both engines.
type BaseMap interface {
	OpacityMap
	PathingMap
}

// Bounded is implemented by maps with a finite extent. Field-of-view rays stop
// at the first cell outside of it.
type Bounded interface {
	InBounds(p Point) bool
}
