package engine

import "math/rand/v2"

// Random is the source of uniformity for allocation and dice.
// Float64 returns a value in [0, 1).
type Random interface {
	Float64() float64
}

// NewRandom returns the production random source
func NewRandom() Random {
	return platformRandom{}
}

type platformRandom struct{}

func (platformRandom) Float64() float64 {
	return rand.Float64()
}

// LCG parameters for the seeded generator
const (
	lcgMultiplier = 9301
	lcgIncrement  = 49297
	lcgModulus    = 233280
)

// LCG is a linear-congruential generator used for reproducible games and tests.
// Each call advances value = (value*9301 + 49297) mod 233280 and returns value/233280.
type LCG struct {
	value int64
}

// NewLCG creates a seeded generator. Seeds are reduced into [0, 233280) so that
// negative seeds still produce outputs in [0, 1).
func NewLCG(seed int64) *LCG {
	v := seed % lcgModulus
	if v < 0 {
		v += lcgModulus
	}
	return &LCG{value: v}
}

// Float64 advances the generator and returns the next value
func (g *LCG) Float64() float64 {
	g.value = (g.value*lcgMultiplier + lcgIncrement) % lcgModulus
	return float64(g.value) / lcgModulus
}

// randomIndex returns an index in [0, n)
func randomIndex(rng Random, n int) int {
	i := int(rng.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// randomCount draws an integer uniformly from [min, max]
func randomCount(rng Random, min, max int) int {
	return randomIndex(rng, max-min+1) + min
}
