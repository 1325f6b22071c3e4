package gridnav

import "github.com/tilekit/gridnav/rng"

// GenerateScatterMap builds a walled map and scatters obstacles over roughly
// density of its interior cells. One in four obstacles is water, the rest are
// walls. The same generator state always yields the same map.
func GenerateScatterMap(width, height int, density float64, diagonal bool, r *rng.RandomNumberGenerator) *GridMap {
	m := NewGridMap(width, height, diagonal)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				m.tiles[idx] = Wall
				continue
			}
			if r.Float64() >= density {
				continue
			}
			if r.RollDice(1, 4) == 1 {
				m.tiles[idx] = Water
			} else {
				m.tiles[idx] = Wall
			}
		}
	}
	m.recomputeMinCost()
	return m
}
