package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/therealutkarshpriyadarshi/vector/pkg/datasetio"
	"github.com/therealutkarshpriyadarshi/vector/pkg/knngpoint"
)

func buildLineStore(n, dim, k int) *knngpoint.VectorStore {
	vs := knngpoint.NewVectorStore(n, dim, k)
	for i := 0; i < n; i++ {
		coords := make([]float32, dim)
		coords[0] = float32(i)
		vs.SetCoords(i, coords)
	}
	return vs
}

func TestRunStrategyAProducesFullKNNGWithoutSelfLoops(t *testing.T) {
	const n, dim, k = 20, 4, 5
	store := buildLineStore(n, dim, k)

	d := New(store, Params{
		Strategy:         StrategyA,
		NumWorkers:       3,
		Seed:             1,
		NClusters:        4,
		NIters:           10,
		NNearestClusters: 2,
	}, nil, nil)

	if err := d.Run(); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	out := filepath.Join(t.TempDir(), "out.knng")
	if err := d.Emit(out); err != nil {
		t.Fatalf("Emit() returned error: %v", err)
	}
	if d.Phase() != PhaseDone {
		t.Fatalf("Phase() after Emit = %v, want PhaseDone", d.Phase())
	}

	neighbors, err := datasetio.ReadKNNG(out, n, k)
	if err != nil {
		t.Fatalf("ReadKNNG returned error: %v", err)
	}
	if len(neighbors) != n {
		t.Fatalf("len(neighbors) = %d, want %d", len(neighbors), n)
	}
	for i, nbrs := range neighbors {
		if len(nbrs) != k {
			t.Fatalf("point %d has %d neighbors, want %d", i, len(nbrs), k)
		}
		for _, id := range nbrs {
			if int(id) == i {
				t.Fatalf("point %d lists itself as a neighbor", i)
			}
		}
	}
}

func TestRunStrategyBProducesFullKNNGWithoutSelfLoops(t *testing.T) {
	const n, dim, k = 30, 4, 4
	store := buildLineStore(n, dim, k)

	d := New(store, Params{
		Strategy:      StrategyB,
		NumWorkers:    3,
		Seed:          1,
		PartitionSize: 4,
		NClustersB:    2,
		TopP:          3,
	}, nil, nil)

	if err := d.Run(); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	out := filepath.Join(t.TempDir(), "out.knng")
	if err := d.Emit(out); err != nil {
		t.Fatalf("Emit() returned error: %v", err)
	}

	neighbors, err := datasetio.ReadKNNG(out, n, k)
	if err != nil {
		t.Fatalf("ReadKNNG returned error: %v", err)
	}
	for i, nbrs := range neighbors {
		if len(nbrs) != k {
			t.Fatalf("point %d has %d neighbors, want %d", i, len(nbrs), k)
		}
		for _, id := range nbrs {
			if int(id) == i {
				t.Fatalf("point %d lists itself as a neighbor", i)
			}
		}
	}
}

func TestRunRejectsUnknownStrategy(t *testing.T) {
	store := buildLineStore(5, 2, 2)
	d := New(store, Params{Strategy: 'Z', NumWorkers: 1}, nil, nil)
	if err := d.Run(); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestEmitRejectsIncompleteNeighborSets(t *testing.T) {
	// A point left with fewer than K neighbors: emit must fail loudly
	// rather than write a short file.
	store := buildLineStore(3, 2, 2)
	d := New(store, Params{
		Strategy:         StrategyA,
		NumWorkers:       1,
		Seed:             1,
		NClusters:        1,
		NIters:           1,
		NNearestClusters: 1,
	}, nil, nil)

	if err := d.Run(); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	// Clear one point's heap artificially to simulate a point that never
	// reached K neighbors (can't happen via Run() with this dataset shape,
	// but Emit's invariant check must still catch it).
	store.At(0).Heap().Drain()

	out := filepath.Join(t.TempDir(), "out.knng")
	if err := d.Emit(out); err == nil {
		t.Fatal("expected Emit to reject a point with fewer than K neighbors")
	}
	if _, statErr := os.Stat(out); statErr == nil {
		t.Fatal("Emit must not leave a partial output file on invariant violation")
	}
}
