package td

// boundedPairHeap is a fixed-capacity max-heap of Pairs keyed by Distance,
// used for the worker-local topP / thr_heap bookkeeping. Unlike
// neighborheap.Heap it admits duplicate ToIDs and self-pairs: it ranks
// representative-to-representative edges, not a single point's candidate
// neighbors.
type boundedPairHeap struct {
	capacity int
	items    []Pair
}

func newBoundedPairHeap(capacity int) *boundedPairHeap {
	return &boundedPairHeap{capacity: capacity, items: make([]Pair, 0, capacity)}
}

func (h *boundedPairHeap) offer(p Pair) {
	if len(h.items) < h.capacity {
		h.items = append(h.items, p)
		h.siftUp(len(h.items) - 1)
		return
	}
	if p.Distance >= h.items[0].Distance {
		return
	}
	h.items[0] = p
	h.siftDown(0)
}

// snapshot returns a copy of the retained pairs in arbitrary order.
func (h *boundedPairHeap) snapshot() []Pair {
	out := make([]Pair, len(h.items))
	copy(out, h.items)
	return out
}

func (h *boundedPairHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].Distance <= h.items[parent].Distance {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *boundedPairHeap) siftDown(i int) {
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
