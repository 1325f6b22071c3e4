package gridnav

import "math"

// Point is an integer grid coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Point3 is an integer coordinate in a layered (3D) grid.
type Point3 struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Add returns the component-wise sum of two points.
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// DistanceAlg selects how the distance between two points is measured.
type DistanceAlg int

const (
	Pythagoras DistanceAlg = iota
	PythagorasSquared
	Manhattan
	Chebyshev
)

// Distance2D measures the distance between two points with the given algorithm.
func Distance2D(alg DistanceAlg, start, end Point) float64 {
	dx := math.Abs(float64(start.X - end.X))
	dy := math.Abs(float64(start.Y - end.Y))

	switch alg {
	case PythagorasSquared:
		return dx*dx + dy*dy
	case Manhattan:
		return dx + dy
	case Chebyshev:
		return math.Max(dx, dy)
	default:
		return math.Sqrt(dx*dx + dy*dy)
	}
}

// Distance3D measures the distance between two 3D points. Chebyshev falls
// back to Pythagoras.
func Distance3D(alg DistanceAlg, start, end Point3) float64 {
	dx := math.Abs(float64(start.X - end.X))
	dy := math.Abs(float64(start.Y - end.Y))
	dz := math.Abs(float64(start.Z - end.Z))

	switch alg {
	case PythagorasSquared:
		return dx*dx + dy*dy + dz*dz
	case Manhattan:
		return dx + dy + dz
	default:
		return math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
}

// ProjectAngle projects radius units from start at the given angle.
// 0 radians is north (negative Y), π/2 is east (positive X).
func ProjectAngle(start Point, radius, angleRadians float64) Point {
	dx := radius * math.Sin(angleRadians)
	dy := -radius * math.Cos(angleRadians)
	return Point{
		X: start.X + int(math.Round(dx)),
		Y: start.Y + int(math.Round(dy)),
	}
}

// euclidean is the straight-line distance between two points.
func euclidean(a, b Point) float64 {
	return Distance2D(Pythagoras, a, b)
}
