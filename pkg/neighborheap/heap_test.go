package neighborheap

import "testing"

func TestOfferBelowCapacity(t *testing.T) {
	h := New(0, 4)

	for i, d := range []float32{5, 1, 3, 2} {
		if !h.Offer(Pair{FromID: 0, ToID: uint32(i + 1), Distance: d}) {
			t.Fatalf("Offer(%d) rejected below capacity", i)
		}
	}

	if h.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", h.Len())
	}
	if !h.Full() {
		t.Fatal("expected heap to be full")
	}
}

func TestOfferRejectsSelfPair(t *testing.T) {
	h := New(7, 4)
	if h.Offer(Pair{FromID: 7, ToID: 7, Distance: 0}) {
		t.Fatal("self-pair must not be admitted")
	}
	if h.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", h.Len())
	}
}

func TestOfferRejectsDuplicateToID(t *testing.T) {
	h := New(0, 4)
	h.Offer(Pair{ToID: 1, Distance: 5})
	if h.Offer(Pair{ToID: 1, Distance: 1}) {
		t.Fatal("duplicate ToID must not be admitted")
	}
	if h.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", h.Len())
	}
}

func TestOfferReplacesRootWhenBetter(t *testing.T) {
	h := New(0, 2)
	h.Offer(Pair{ToID: 1, Distance: 10})
	h.Offer(Pair{ToID: 2, Distance: 20})

	if !h.Offer(Pair{ToID: 3, Distance: 5}) {
		t.Fatal("expected improving candidate to be admitted")
	}
	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}

	drained := h.Drain()
	// Farthest-first drain order; the worst of the two retained
	// neighbors (10) must come out before the best (5).
	if drained[0] != 1 || drained[1] != 3 {
		t.Fatalf("drain order = %v, want [1 3]", drained)
	}
}

func TestOfferIgnoresWorseThanRootWhenFull(t *testing.T) {
	h := New(0, 2)
	h.Offer(Pair{ToID: 1, Distance: 1})
	h.Offer(Pair{ToID: 2, Distance: 2})

	if h.Offer(Pair{ToID: 3, Distance: 99}) {
		t.Fatal("candidate worse than root must be rejected")
	}
	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}
}

func TestDrainIsMonotoneNonIncreasing(t *testing.T) {
	h := New(0, 5)
	distances := []float32{3, 1, 4, 1, 5}
	for i, d := range distances {
		h.Offer(Pair{ToID: uint32(i + 1), Distance: d})
	}

	drained := h.Drain()
	for i := 1; i < len(drained); i++ {
		// ToID i+1 was offered at distances[i], so each drained id maps
		// back to its distance.
		prev, cur := distances[drained[i-1]-1], distances[drained[i]-1]
		if cur > prev {
			t.Fatalf("drain order %v is not farthest-first: %v before %v", drained, prev, cur)
		}
	}
	if h.Len() != 0 {
		t.Fatalf("heap should be empty after Drain, Len() = %d", h.Len())
	}
	if len(drained) != 5 {
		t.Fatalf("len(drained) = %d, want 5", len(drained))
	}
}
