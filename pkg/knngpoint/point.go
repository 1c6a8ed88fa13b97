// Package knngpoint owns the in-memory dataset: a dense array of points,
// each carrying its immutable coordinates, a bounded neighbor heap, and the
// per-point mutex TD refinement locks while updating that heap
// concurrently from many worker goroutines.
package knngpoint

import (
	"sync"

	"github.com/therealutkarshpriyadarshi/vector/pkg/neighborheap"
)

// Point is a single dataset record. id doubles as its dense index into the
// owning VectorStore; a Point is never copied, only referenced by index.
type Point struct {
	id     uint32
	coords []float32
	heap   *neighborheap.Heap
	mu     sync.Mutex
}

// ID returns the point's unique identifier.
func (p *Point) ID() uint32 { return p.id }

// Coords returns the point's coordinates. The returned slice must not be
// mutated: coordinates are immutable after load.
func (p *Point) Coords() []float32 { return p.coords }

// Heap returns the point's neighbor heap. Callers performing concurrent
// writes must hold the point's lock (Lock/Unlock) first.
func (p *Point) Heap() *neighborheap.Heap { return p.heap }

// Lock acquires the point's mutual-exclusion token, used only during
// concurrent neighbor-heap updates.
func (p *Point) Lock() { p.mu.Lock() }

// Unlock releases the point's mutual-exclusion token.
func (p *Point) Unlock() { p.mu.Unlock() }

// OfferLocked is a convenience wrapper that locks, offers, and unlocks in
// one call - the shape every TD cross-product scan needs.
func (p *Point) OfferLocked(pair neighborheap.Pair) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.heap.Offer(pair)
}

// VectorStore owns the N x D dataset and every point's neighbor heap. It is
// allocated once by the driver and never resized during construction.
type VectorStore struct {
	points []Point
	dim    int
	k      int
}

// NewVectorStore allocates a store for n points of dimension dim, each with
// a neighbor heap of capacity k.
func NewVectorStore(n, dim, k int) *VectorStore {
	vs := &VectorStore{
		points: make([]Point, n),
		dim:    dim,
		k:      k,
	}
	for i := range vs.points {
		vs.points[i].id = uint32(i)
		vs.points[i].heap = neighborheap.New(uint32(i), k)
	}
	return vs
}

// SetCoords installs the coordinates for point i. It must be called exactly
// once per point, before construction begins; coordinates are immutable
// thereafter.
func (vs *VectorStore) SetCoords(i int, coords []float32) {
	vs.points[i].coords = coords
}

// Len returns the number of points in the store (N).
func (vs *VectorStore) Len() int { return len(vs.points) }

// Dim returns the fixed coordinate dimension (D).
func (vs *VectorStore) Dim() int { return vs.dim }

// K returns the per-point neighbor heap capacity.
func (vs *VectorStore) K() int { return vs.k }

// At returns a pointer to point i. The point is never copied by the store;
// callers receive a stable reference into the backing array.
func (vs *VectorStore) At(i uint32) *Point { return &vs.points[int(i)] }
