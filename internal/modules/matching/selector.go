// README: Uniform random selection over a candidate pool (trips, drivers).
package matching

import "math/rand/v2"

// Rand is the randomness source used by PickOne. It need not be cryptographically secure.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand draws from the runtime's goroutine-safe generator.
var DefaultRand Rand = globalRand{}

// PickOne returns one element of pool chosen with probability 1/len(pool).
//
// pool must be non-empty: callers treat an empty candidate set as a domain failure
// before selecting. PickOne panics on an empty pool.
func PickOne[T any](r Rand, pool []T) T {
	if len(pool) == 0 {
		panic("matching: PickOne called with an empty pool")
	}
	if r == nil {
		r = DefaultRand
	}
	return pool[r.IntN(len(pool))]
}
