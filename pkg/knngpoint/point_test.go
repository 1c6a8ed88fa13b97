package knngpoint

import (
	"sync"
	"testing"

	"github.com/therealutkarshpriyadarshi/vector/pkg/neighborheap"
)

func TestVectorStoreBasics(t *testing.T) {
	vs := NewVectorStore(3, 2, 2)
	vs.SetCoords(0, []float32{0, 0})
	vs.SetCoords(1, []float32{1, 0})
	vs.SetCoords(2, []float32{0, 1})

	if vs.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", vs.Len())
	}
	if vs.At(1).ID() != 1 {
		t.Fatalf("At(1).ID() = %d, want 1", vs.At(1).ID())
	}
	if len(vs.At(2).Coords()) != 2 {
		t.Fatalf("Coords length = %d, want 2", len(vs.At(2).Coords()))
	}
}

func TestOfferLockedConcurrent(t *testing.T) {
	vs := NewVectorStore(1, 2, 100)
	p := vs.At(0)

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p.OfferLocked(neighborheap.Pair{FromID: 0, ToID: uint32(i + 1), Distance: float32(i)})
		}(i)
	}
	wg.Wait()

	if p.Heap().Len() != 100 {
		t.Fatalf("Heap().Len() = %d, want 100", p.Heap().Len())
	}
}
