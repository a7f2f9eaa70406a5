// Package dice resolves the randomized checks that gate dialogue branches.
package dice

import (
	"math/rand/v2"
	"time"
)

// Sides is the size of the die every check is rolled on.
const Sides = 20

// Source supplies random integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// Resolver rolls a d20 against a target number.
type Resolver struct {
	src Source
}

// NewResolver creates a resolver that draws from src.
func NewResolver(src Source) *Resolver {
	return &Resolver{src: src}
}

// NewSeededResolver creates a resolver whose rolls repeat for the same seed.
func NewSeededResolver(seed uint64) *Resolver {
	return NewResolver(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// NewTimeSeededResolver seeds from the wall clock, for interactive play.
func NewTimeSeededResolver() *Resolver {
	return NewSeededResolver(uint64(time.Now().UnixNano()))
}

// Roll draws an outcome in [1, Sides] and reports whether it meets target.
func (r *Resolver) Roll(target int) (outcome int, success bool) {
	outcome = r.Natural()
	return outcome, Succeeds(outcome, target)
}

// Natural draws an unmodified face in [1, Sides].
func (r *Resolver) Natural() int {
	return r.src.IntN(Sides) + 1
}

// Succeeds is the success rule shared by every check: meet or beat the target.
func Succeeds(outcome, target int) bool {
	return outcome >= target
}
