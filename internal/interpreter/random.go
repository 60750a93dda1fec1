package interpreter

import (
	"math/rand/v2"
	"sync"
	"time"
)

// RandomSource provides the uniformly distributed bytes used by the
// random byte instruction.
type RandomSource interface {
	Byte() uint8
}

// RandomFunc adapts a function to the RandomSource interface.
type RandomFunc func() uint8

// Byte returns the next random byte.
func (f RandomFunc) Byte() uint8 {
	return f()
}

// lockedRandom is a time seeded generator that can be shared by all
// interpreters of the process.
type lockedRandom struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (r *lockedRandom) Byte() uint8 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return uint8(r.rng.UintN(256))
}

// processRandom returns the process wide random source, it is seeded once
// from the current time on first use.
var processRandom = sync.OnceValue(func() RandomSource {
	seed := uint64(time.Now().UnixNano())
	return &lockedRandom{
		rng: rand.New(rand.NewPCG(seed, seed>>32|seed<<32)),
	}
})
