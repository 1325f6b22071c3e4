package gridnav

import (
	"fmt"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
	"go.uber.org/zap"
)

// simplifyThreshold is the Douglas-Peucker tolerance in cells. Anything finer
// than a tenth of a cell cannot change which cell centres are covered.
const simplifyThreshold = 0.1

// GeoJSONOptions controls how a FeatureCollection is turned into a grid.
type GeoJSONOptions struct {
	Width    int  // 0 derives the width from the obstacle bounds
	Height   int  // 0 derives the height from the obstacle bounds
	Diagonal bool // Allow 8-way movement on the result
}

// LoadGeoJSONMap reads obstacle polygons from a GeoJSON file, in grid units,
// and rasterizes them onto a floor-filled map.
func LoadGeoJSONMap(path string, opts GeoJSONOptions, logger *zap.Logger) (*GridMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	m, err := ParseGeoJSONMap(data, opts, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ParseGeoJSONMap is LoadGeoJSONMap on in-memory data.
//
// Polygon and MultiPolygon features become obstacles. Feature properties
// "opaque" (default true), "walkable" (default false) and "cost" (default 1)
// describe the stamped tile. Other geometry types are ignored.
func ParseGeoJSONMap(data []byte, opts GeoJSONOptions, logger *zap.Logger) (*GridMap, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feature collection: %w", err)
	}

	obstacles := obstaclesFromFeatures(fc, logger)
	obstacles = removeContainedObstacles(obstacles)

	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		bound := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{0, 0}}
		for _, obs := range obstacles {
			bound = bound.Union(obs.Polygon.Bound())
		}
		if width <= 0 {
			width = int(math.Ceil(bound.Max.X()))
		}
		if height <= 0 {
			height = int(math.Ceil(bound.Max.Y()))
		}
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: empty map", ErrInvalidLayout)
	}

	m := NewGridMap(width, height, opts.Diagonal)
	RasterizeObstacles(m, obstacles)

	logger.Info("obstacle map loaded",
		zap.Int("features", len(fc.Features)),
		zap.Int("obstacles", len(obstacles)),
		zap.Int("width", width),
		zap.Int("height", height),
	)
	return m, nil
}

// RasterizeObstacles stamps every cell whose centre lies inside an obstacle.
// When obstacles overlap, the one listed last wins.
func RasterizeObstacles(m *GridMap, obstacles []Obstacle) {
	if len(obstacles) == 0 {
		return
	}

	index := NewPolygonIndex(obstacles)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			p := Point{X: x, Y: y}
			centre := orb.Point{float64(x) + 0.5, float64(y) + 0.5}

			var winner *obstacleEntry
			for _, e := range index.queryCell(p) {
				if winner != nil && e.seq < winner.seq {
					continue
				}
				if planar.PolygonContains(e.obstacle.Polygon, centre) {
					winner = e
				}
			}
			if winner != nil {
				m.tiles[m.PointToIndex(p)] = winner.obstacle.Tile
			}
		}
	}
	m.recomputeMinCost()
}

// obstaclesFromFeatures converts GeoJSON geometry to simplified obstacles
func obstaclesFromFeatures(fc *geojson.FeatureCollection, logger *zap.Logger) []Obstacle {
	var obstacles []Obstacle
	simplifier := simplify.DouglasPeucker(simplifyThreshold)

	for i, feature := range fc.Features {
		tile := Tile{
			Opaque:   feature.Properties.MustBool("opaque", true),
			Walkable: feature.Properties.MustBool("walkable", false),
			Cost:     feature.Properties.MustFloat64("cost", 1),
		}
		if !tile.Walkable {
			tile.Cost = 0
		} else if tile.Cost <= 0 || math.IsNaN(tile.Cost) || math.IsInf(tile.Cost, 0) {
			logger.Warn("skipping feature with invalid cost",
				zap.Int("feature", i), zap.Float64("cost", tile.Cost))
			continue
		}

		var polygons []orb.Polygon
		switch g := feature.Geometry.(type) {
		case orb.Polygon:
			polygons = append(polygons, g)
		case orb.MultiPolygon:
			polygons = append(polygons, g...)
		case nil:
			continue
		default:
			logger.Debug("ignoring feature geometry",
				zap.Int("feature", i), zap.String("type", feature.Geometry.GeoJSONType()))
			continue
		}

		for _, poly := range polygons {
			if len(poly) == 0 {
				continue
			}
			simplified, ok := simplifier.Simplify(poly.Clone()).(orb.Polygon)
			if !ok || len(simplified) == 0 || len(simplified[0]) < 4 {
				simplified = poly
			}
			obstacles = append(obstacles, Obstacle{Polygon: simplified, Tile: tile})
		}
	}
	return obstacles
}

// removeContainedObstacles drops obstacles fully inside a later obstacle with
// the same tile; they cannot change the raster.
func removeContainedObstacles(obstacles []Obstacle) []Obstacle {
	if len(obstacles) <= 1 {
		return obstacles
	}

	result := make([]Obstacle, 0, len(obstacles))
	for i, a := range obstacles {
		contained := false
		for j := i + 1; j < len(obstacles); j++ {
			b := obstacles[j]
			if a.Tile == b.Tile && isPolygonContainedIn(a.Polygon, b.Polygon) {
				contained = true
				break
			}
		}
		if !contained {
			result = append(result, a)
		}
	}
	return result
}

// isPolygonContainedIn checks if polygon a is fully contained within polygon b
func isPolygonContainedIn(a, b orb.Polygon) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}

	// Quick bounding box check first
	ab, bb := a.Bound(), b.Bound()
	if !bb.Contains(ab.Min) || !bb.Contains(ab.Max) {
		return false
	}

	for _, vertex := range a[0] {
		if !planar.PolygonContains(b, vertex) {
			return false
		}
	}

	// A non-convex b can still be left by an edge between two inside vertices
	for _, ringA := range a[:1] {
		for i := 0; i+1 < len(ringA); i++ {
			for _, ringB := range b {
				for j := 0; j+1 < len(ringB); j++ {
					if doSegmentsIntersect(ringA[i], ringA[i+1], ringB[j], ringB[j+1]) {
						return false
					}
				}
			}
		}
	}
	return true
}

// doSegmentsIntersect checks if segments p1-p2 and p3-p4 cross or touch
func doSegmentsIntersect(p1, p2, p3, p4 orb.Point) bool {
	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// Check for collinear cases
	return (d1 == 0 && onSegment(p3, p4, p1)) ||
		(d2 == 0 && onSegment(p3, p4, p2)) ||
		(d3 == 0 && onSegment(p1, p2, p3)) ||
		(d4 == 0 && onSegment(p1, p2, p4))
}

// direction calculates the cross product to determine orientation
func direction(p1, p2, p3 orb.Point) float64 {
	return (p3.X()-p1.X())*(p2.Y()-p1.Y()) - (p2.X()-p1.X())*(p3.Y()-p1.Y())
}

// onSegment checks if point q lies within the bounding box of segment pr
func onSegment(p, r, q orb.Point) bool {
	return q.X() <= math.Max(p.X(), r.X()) && q.X() >= math.Min(p.X(), r.X()) &&
		q.Y() <= math.Max(p.Y(), r.Y()) && q.Y() >= math.Min(p.Y(), r.Y())
}
