package gridnav

import (
	"math"
	"slices"
)

// LineAlg selects the rasterization used by Line2D.
type LineAlg int

const (
	// LineBresenham steps in integers and is exact for every slope.
	LineBresenham LineAlg = iota
	// LineVector walks unit steps along the normalized direction. It is not
	// bit-compatible with LineBresenham near diagonals.
	LineVector
)

// Line2D returns the cells on the line from start to end, start first and end
// last.
func Line2D(alg LineAlg, start, end Point) []Point {
	if alg == LineVector {
		return VectorLine(start, end)
	}
	return Bresenham(start, end)
}

// Bresenham returns the integer points on the line from start to end using
// Bresenham's line algorithm. Both endpoints are included exactly once, and
// swapping them yields the same cells in reverse order.
func Bresenham(start, end Point) []Point {
	if end.X < start.X || (end.X == start.X && end.Y < start.Y) {
		points := bresenham(end, start)
		slices.Reverse(points)
		return points
	}
	return bresenham(start, end)
}

// bresenham steps from start to end. Callers order the endpoints so that
// ties in the error term always resolve the same way.
func bresenham(start, end Point) []Point {
	dx := abs(end.X - start.X)
	dy := -abs(end.Y - start.Y)
	sx := 1
	if start.X > end.X {
		sx = -1
	}
	sy := 1
	if start.Y > end.Y {
		sy = -1
	}
	err := dx + dy
	x, y := start.X, start.Y

	points := make([]Point, 0, max(dx, -dy)+1)
	for {
		points = append(points, Point{X: x, Y: y})
		if x == end.X && y == end.Y {
			return points
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// VectorLine walks from the centre of start towards the centre of end in unit
// steps, flooring each position to a cell. Consecutive duplicates are dropped
// and end is always the last element.
func VectorLine(start, end Point) []Point {
	if start == end {
		return []Point{start}
	}

	x := float64(start.X) + 0.5
	y := float64(start.Y) + 0.5
	dx := float64(end.X - start.X)
	dy := float64(end.Y - start.Y)
	length := math.Hypot(dx, dy)
	dx /= length
	dy /= length

	// Rounding can step past end without ever landing on it.
	limit := int(math.Ceil(length)) + 1

	points := []Point{start}
	for i := 0; i < limit; i++ {
		x += dx
		y += dy
		p := Point{X: int(math.Floor(x)), Y: int(math.Floor(y))}
		if p == end {
			break
		}
		if p != points[len(points)-1] {
			points = append(points, p)
		}
	}
	return append(points, end)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
