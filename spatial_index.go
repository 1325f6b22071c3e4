package gridnav

import (
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// Obstacle is a polygonal region stamped onto a grid with a tile.
type Obstacle struct {
	Polygon orb.Polygon
	Tile    Tile
}

// obstacleEntry wraps an obstacle for R-tree storage
type obstacleEntry struct {
	obstacle Obstacle
	seq      int // Position in the input slice
	bbox     rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *obstacleEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// PolygonIndex answers "which obstacles may cover this cell" queries.
type PolygonIndex struct {
	tree *rtreego.Rtree
}

// NewPolygonIndex indexes obstacles by bounding box. Degenerate polygons
// (zero width or height) are skipped.
func NewPolygonIndex(obstacles []Obstacle) *PolygonIndex {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	for i, obs := range obstacles {
		if len(obs.Polygon) == 0 {
			continue
		}
		bbox, err := boundingRect(obs.Polygon.Bound())
		if err == nil {
			tree.Insert(&obstacleEntry{obstacle: obs, seq: i, bbox: bbox})
		}
	}

	return &PolygonIndex{tree: tree}
}

// Size returns the number of indexed obstacles.
func (si *PolygonIndex) Size() int {
	return si.tree.Size()
}

// QueryCell returns the obstacles whose bounding boxes overlap the centre of
// cell p.
func (si *PolygonIndex) QueryCell(p Point) []Obstacle {
	entries := si.queryCell(p)
	obstacles := make([]Obstacle, 0, len(entries))
	for _, e := range entries {
		obstacles = append(obstacles, e.obstacle)
	}
	return obstacles
}

func (si *PolygonIndex) queryCell(p Point) []*obstacleEntry {
	centre := rtreego.Point{float64(p.X) + 0.5, float64(p.Y) + 0.5}
	results := si.tree.SearchIntersect(centre.ToRect(0.01))

	entries := make([]*obstacleEntry, 0, len(results))
	for _, item := range results {
		entries = append(entries, item.(*obstacleEntry))
	}
	return entries
}

// boundingRect converts an orb bound to an R-tree rectangle
func boundingRect(b orb.Bound) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{b.Min.X(), b.Min.Y()},
		[]float64{b.Max.X() - b.Min.X(), b.Max.Y() - b.Min.Y()},
	)
}
