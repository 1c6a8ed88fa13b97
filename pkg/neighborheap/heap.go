// Package neighborheap implements the bounded max-heap of candidate
// neighbors that every point in the dataset maintains during k-NNG
// construction.
package neighborheap

// Pair is a single candidate neighbor edge discovered during construction.
// Distance is the comparison-only squared-Euclidean value; it is never
// square-rooted and never surfaced as a reported metric.
type Pair struct {
	FromID   uint32
	ToID     uint32
	Distance float32
}

// Heap is a fixed-capacity max-heap of Pairs, keyed by Distance, owned by
// exactly one point (Pair.FromID). The root is always the currently
// farthest retained neighbor, so that Offer can cheaply test whether an
// incoming candidate beats the worst retained one.
type Heap struct {
	ownerID  uint32
	capacity int
	items    []Pair
	present  map[uint32]struct{} // de-duplicates ToID admissions
}

// New creates an empty heap of the given capacity owned by ownerID.
func New(ownerID uint32, capacity int) *Heap {
	return &Heap{
		ownerID:  ownerID,
		capacity: capacity,
		items:    make([]Pair, 0, capacity),
		present:  make(map[uint32]struct{}, capacity),
	}
}

// Len returns the current number of retained neighbors.
func (h *Heap) Len() int { return len(h.items) }

// Full reports whether the heap has reached capacity.
func (h *Heap) Full() bool { return len(h.items) >= h.capacity }

// Offer tries to admit pair, whether or not the heap is currently full. It
// is the single entry point construction code should call: below capacity
// it behaves like an insert, at capacity it replaces the root only if pair
// improves on it. It refuses a self-pair (ToID == ownerID) and a pair whose
// ToID is already retained, returning false in both cases.
func (h *Heap) Offer(pair Pair) bool {
	if pair.ToID == h.ownerID {
		return false
	}
	if _, dup := h.present[pair.ToID]; dup {
		return false
	}

	if len(h.items) < h.capacity {
		h.items = append(h.items, pair)
		h.present[pair.ToID] = struct{}{}
		h.siftUp(len(h.items) - 1)
		return true
	}

	if pair.Distance >= h.items[0].Distance {
		return false
	}

	delete(h.present, h.items[0].ToID)
	h.items[0] = pair
	h.present[pair.ToID] = struct{}{}
	h.siftDown(0)
	return true
}

// Drain returns the retained ToIDs in pop order (farthest-first, per the
// k-NNG output contract) and empties the heap.
func (h *Heap) Drain() []uint32 {
	out := make([]uint32, 0, len(h.items))
	for len(h.items) > 0 {
		out = append(out, h.pop().ToID)
	}
	return out
}

// Snapshot returns the retained Pairs without modifying the heap, in
// arbitrary (array) order. Used by TD refinement to reseed candidate
// heaps from a representative's existing neighbors without draining them.
func (h *Heap) Snapshot() []Pair {
	out := make([]Pair, len(h.items))
	copy(out, h.items)
	return out
}

func (h *Heap) pop() Pair {
	root := h.items[0]
	delete(h.present, root.ToID)

	last := len(h.items) - 1
	h.items[0] = h.items[last]
	h.items = h.items[:last]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return root
}

func (h *Heap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].Distance <= h.items[parent].Distance {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *Heap) siftDown(i int) {
	n := len(h.items)
	for {
		largest := i
		left := 2*i + 1
		right := 2*i + 2

		if left < n && h.items[left].Distance > h.items[largest].Distance {
			largest = left
		}
		if right < n && h.items[right].Distance > h.items[largest].Distance {
			largest = right
		}
		if largest == i {
			return
		}
		h.items[i], h.items[largest] = h.items[largest], h.items[i]
		i = largest
	}
}
