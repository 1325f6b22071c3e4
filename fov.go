package gridnav

import (
	"cmp"
	"slices"
	"sync"

	"github.com/zyedidia/generic/mapset"
	"golang.org/x/sync/errgroup"
)

// FieldOfView returns the cells visible from origin within radius.
//
// A ray is cast from origin to every cell on the perimeter of the square of
// half-width radius around it. Each ray stops at the first cell further than
// radius, or just after the first opaque cell: walls are visible, what lies
// behind them is not. The result has no defined iteration order.
func FieldOfView(origin Point, radius int, m OpacityMap) mapset.Set[Point] {
	visible := mapset.New[Point]()
	for _, target := range perimeter(origin, radius) {
		scanLine(origin, target, radius, m, visible.Put)
	}
	return visible
}

// FieldOfViewConcurrent computes the same set as FieldOfView, casting the rays
// on up to workers goroutines. The map's query methods must be safe for
// concurrent use.
func FieldOfViewConcurrent(origin Point, radius int, m OpacityMap, workers int) mapset.Set[Point] {
	targets := perimeter(origin, radius)
	if workers <= 1 || len(targets) < 2*workers {
		return FieldOfView(origin, radius, m)
	}

	var (
		mu      sync.Mutex
		visible = mapset.New[Point]()
		g       errgroup.Group
	)
	g.SetLimit(workers)

	chunk := (len(targets) + workers - 1) / workers
	for lo := 0; lo < len(targets); lo += chunk {
		batch := targets[lo:min(lo+chunk, len(targets))]
		g.Go(func() error {
			var seen []Point
			for _, target := range batch {
				scanLine(origin, target, radius, m, func(p Point) {
					seen = append(seen, p)
				})
			}
			mu.Lock()
			for _, p := range seen {
				visible.Put(p)
			}
			mu.Unlock()
			return nil
		})
	}
	// Workers never return an error; Wait only joins them.
	_ = g.Wait()
	return visible
}

// VisiblePoints flattens a visibility set into a slice ordered by row, then
// column.
func VisiblePoints(visible mapset.Set[Point]) []Point {
	points := make([]Point, 0, visible.Size())
	visible.Each(func(p Point) {
		points = append(points, p)
	})
	slices.SortFunc(points, func(a, b Point) int {
		if c := cmp.Compare(a.Y, b.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.X, b.X)
	})
	return points
}

// perimeter lists the ray targets: top and bottom edges in full, left and
// right edges without the corners.
func perimeter(origin Point, radius int) []Point {
	left, right := origin.X-radius, origin.X+radius
	top, bottom := origin.Y-radius, origin.Y+radius
	if radius < 0 {
		return []Point{origin}
	}

	targets := make([]Point, 0, 8*radius+1)
	for x := left; x <= right; x++ {
		targets = append(targets, Point{X: x, Y: top})
		if bottom != top {
			targets = append(targets, Point{X: x, Y: bottom})
		}
	}
	for y := top + 1; y < bottom; y++ {
		targets = append(targets, Point{X: left, Y: y}, Point{X: right, Y: y})
	}
	return targets
}

// scanLine walks one ray, reporting every visible cell to emit.
func scanLine(origin, target Point, radius int, m OpacityMap, emit func(Point)) {
	bounded, _ := m.(Bounded)
	rangeSquared := float64(radius) * float64(radius)

	for _, p := range Bresenham(origin, target) {
		if Distance2D(PythagorasSquared, origin, p) > rangeSquared {
			return
		}
		if bounded != nil && !bounded.InBounds(p) {
			return
		}
		emit(p)
		if m.IsOpaque(m.PointToIndex(p)) {
			return
		}
	}
}
