package horoscope

import (
	"hash/fnv"
	"math/rand/v2"
)

// PickRandom returns an element of pool chosen with rng. It reports false for
// an empty pool.
func PickRandom[T any](rng *rand.Rand, pool []T) (T, bool) {
	if len(pool) == 0 {
		var zero T
		return zero, false
	}
	return pool[rng.IntN(len(pool))], true
}

// SeededRand returns a generator seeded from the given parts, so the same
// parts always produce the same sequence.
func SeededRand(parts ...string) *rand.Rand {
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	seed := h.Sum64()

	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
