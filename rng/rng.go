// Package rng provides a seedable random number generator with dice helpers,
// used to sample roadmaps and generate test maps reproducibly.
package rng

import (
	"math/rand/v2"
)

// RandomNumberGenerator wraps a PCG source. It is not safe for concurrent use.
type RandomNumberGenerator struct {
	rng *rand.Rand
}

// New creates a generator seeded from the runtime's entropy source.
func New() *RandomNumberGenerator {
	return &RandomNumberGenerator{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// Seeded creates a generator that always produces the same sequence for seed.
func Seeded(seed uint64) *RandomNumberGenerator {
	return &RandomNumberGenerator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Range returns a value in [min, max). It returns min when the range is empty.
func (r *RandomNumberGenerator) Range(min, max int) int {
	if max <= min {
		return min
	}
	return min + r.rng.IntN(max-min)
}

// Float64 returns a value in [0, 1).
func (r *RandomNumberGenerator) Float64() float64 {
	return r.rng.Float64()
}

// NextUint64 returns the next raw 64-bit value.
func (r *RandomNumberGenerator) NextUint64() uint64 {
	return r.rng.Uint64()
}

// RollDice rolls n dice with dieType faces each and sums them.
func (r *RandomNumberGenerator) RollDice(n, dieType int) int {
	total := 0
	for i := 0; i < n; i++ {
		total += r.Range(1, dieType+1)
	}
	return total
}

// Roll rolls dice and applies its bonus.
func (r *RandomNumberGenerator) Roll(dice DiceType) int {
	return r.RollDice(dice.NDice, dice.DieType) + dice.Bonus
}

// RollStr parses a dice expression such as "3d6+1" and rolls it.
func (r *RandomNumberGenerator) RollStr(expr string) (int, error) {
	dice, err := ParseDiceString(expr)
	if err != nil {
		return 0, err
	}
	return r.Roll(dice), nil
}
