package gridnav

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBresenham_Straight(t *testing.T) {
	assert.Equal(t,
		[]Point{{0, 0}, {1, 0}, {2, 0}, {3, 0}},
		Bresenham(Point{0, 0}, Point{3, 0}))
	assert.Equal(t,
		[]Point{{2, 2}, {2, 1}, {2, 0}},
		Bresenham(Point{2, 2}, Point{2, 0}))
	assert.Equal(t,
		[]Point{{0, 0}, {1, 1}, {2, 2}},
		Bresenham(Point{0, 0}, Point{2, 2}))
}

func TestBresenham_SinglePoint(t *testing.T) {
	assert.Equal(t, []Point{{4, -2}}, Bresenham(Point{4, -2}, Point{4, -2}))
}

func TestBresenham_Properties(t *testing.T) {
	ends := []Point{
		{7, 3}, {-7, 3}, {7, -3}, {-7, -3},
		{3, 7}, {-3, 7}, {3, -7}, {-3, -7},
		{5, 5}, {-5, 0}, {0, -6}, {1, 9},
	}
	start := Point{0, 0}

	for _, end := range ends {
		line := Bresenham(start, end)
		require.NotEmpty(t, line)
		assert.Equal(t, start, line[0], "end %v", end)
		assert.Equal(t, end, line[len(line)-1], "end %v", end)

		// One cell per step along the major axis.
		major := max(abs(end.X), abs(end.Y))
		assert.Len(t, line, major+1, "end %v", end)

		// Consecutive cells are 8-connected and never repeated.
		for i := 1; i < len(line); i++ {
			assert.LessOrEqual(t, abs(line[i].X-line[i-1].X), 1)
			assert.LessOrEqual(t, abs(line[i].Y-line[i-1].Y), 1)
			assert.NotEqual(t, line[i], line[i-1])
		}
	}
}

func TestBresenham_SwappedEndpointsReverse(t *testing.T) {
	for _, a := range []Point{{0, 0}, {3, -2}} {
		for y := -6; y <= 6; y++ {
			for x := -6; x <= 6; x++ {
				b := Point{X: a.X + x, Y: a.Y + y}
				backward := Bresenham(b, a)
				slices.Reverse(backward)
				assert.Equal(t, Bresenham(a, b), backward, "%v -> %v", a, b)
			}
		}
	}
}

func TestVectorLine(t *testing.T) {
	assert.Equal(t, []Point{{3, 3}}, VectorLine(Point{3, 3}, Point{3, 3}))
	assert.Equal(t,
		[]Point{{0, 0}, {1, 0}, {2, 0}, {3, 0}},
		VectorLine(Point{0, 0}, Point{3, 0}))

	for _, end := range []Point{{6, 2}, {-4, 5}, {-3, -8}, {0, -5}} {
		line := VectorLine(Point{0, 0}, end)
		require.NotEmpty(t, line)
		assert.Equal(t, Point{0, 0}, line[0])
		assert.Equal(t, end, line[len(line)-1])
		// end appears exactly once
		assert.Equal(t, 1, len(slices.DeleteFunc(slices.Clone(line), func(p Point) bool { return p != end })))
	}
}

func TestLine2D(t *testing.T) {
	a, b := Point{0, 0}, Point{4, 1}
	assert.Equal(t, Bresenham(a, b), Line2D(LineBresenham, a, b))
	assert.Equal(t, VectorLine(a, b), Line2D(LineVector, a, b))
}
