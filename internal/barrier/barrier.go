// Package barrier provides a reusable cyclic barrier, the Go-native
// equivalent of the construction engine's "#pragma omp barrier" phase
// boundaries: a fixed set of worker goroutines synchronise exclusively
// through Wait calls, never through repeated spawn/join.
package barrier

import "sync"

// Barrier blocks n parties at Wait until all n have arrived, then releases
// them together and resets for the next round. It is safe to reuse across
// any number of rounds for the lifetime of the parallel region.
type Barrier struct {
	n     int
	mu    sync.Mutex
	cond  *sync.Cond
	count int
	round int
}

// New creates a Barrier for exactly n parties. n must be >= 1.
func New(n int) *Barrier {
	b := &Barrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks the calling goroutine until n goroutines have called Wait in
// the current round, then releases all of them.
func (b *Barrier) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()

	round := b.round
	b.count++

	if b.count == b.n {
		b.count = 0
		b.round++
		b.cond.Broadcast()
		return
	}

	for b.round == round {
		b.cond.Wait()
	}
}
