// Package rng provides the explicitly seeded random stream shared by design
// generation and choice simulation.
package rng

import "math/rand/v2"

// streamTweak separates the two PCG words so seed 0 still yields a usable stream.
const streamTweak = 0x9e3779b97f4a7c15

// New returns a generator whose output depends only on seed.
func New(seed int64) *rand.Rand {
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s^streamTweak))
}

// Between draws uniformly from the closed range [1, n]. n must be positive.
func Between(r *rand.Rand, n int) int {
	return r.IntN(n) + 1
}
