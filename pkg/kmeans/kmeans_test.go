package kmeans

import (
	"testing"

	"github.com/therealutkarshpriyadarshi/vector/internal/distance"
	"github.com/therealutkarshpriyadarshi/vector/pkg/knngpoint"
)

func buildStore(points [][]float32, k int) *knngpoint.VectorStore {
	vs := knngpoint.NewVectorStore(len(points), len(points[0]), k)
	for i, p := range points {
		vs.SetCoords(i, p)
	}
	return vs
}

func TestRunSeparatesObviousClusters(t *testing.T) {
	points := [][]float32{
		{0, 0}, {0, 1}, {1, 0}, // cluster near origin
		{100, 100}, {100, 101}, {101, 100}, // cluster far away
	}
	store := buildStore(points, 2)

	idx, err := Run(store, 2, 10, 1, 1)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(idx.Clusters) != 2 {
		t.Fatalf("len(Clusters) = %d, want 2", len(idx.Clusters))
	}

	clusterOf := func(id uint32) uint32 {
		for _, c := range idx.Clusters {
			for _, m := range c.Members {
				if m == id {
					return c.ID
				}
			}
		}
		t.Fatalf("point %d not assigned to any cluster", id)
		return 0
	}

	if clusterOf(0) != clusterOf(1) || clusterOf(1) != clusterOf(2) {
		t.Fatal("origin-side points split across clusters")
	}
	if clusterOf(3) != clusterOf(4) || clusterOf(4) != clusterOf(5) {
		t.Fatal("far-side points split across clusters")
	}
	if clusterOf(0) == clusterOf(3) {
		t.Fatal("the two obviously separate groups ended up in the same cluster")
	}
}

func TestRunEveryPointAssignedExactlyOnce(t *testing.T) {
	points := make([][]float32, 20)
	for i := range points {
		points[i] = []float32{float32(i), float32(i * 2)}
	}
	store := buildStore(points, 5)

	idx, err := Run(store, 4, 10, 2, 42)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	seen := make(map[uint32]bool)
	for _, c := range idx.Clusters {
		for _, m := range c.Members {
			if seen[m] {
				t.Fatalf("point %d assigned to more than one cluster", m)
			}
			seen[m] = true
		}
	}
	if len(seen) != len(points) {
		t.Fatalf("assigned %d of %d points", len(seen), len(points))
	}
}

func TestRunNearestByPointHasRequestedSizeNearestFirst(t *testing.T) {
	points := [][]float32{
		{0, 0}, {10, 0}, {20, 0}, {30, 0},
	}
	store := buildStore(points, 3)

	idx, err := Run(store, 4, 5, 3, 7)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	nearest := idx.NearestByPoint[0]
	if len(nearest) != 3 {
		t.Fatalf("len(nearest) = %d, want 3", len(nearest))
	}

	prev := float32(-1)
	for _, c := range nearest {
		d := distance.SquaredEuclidean(idx.Clusters[c].Centroid, points[0])
		if d < prev {
			t.Fatalf("NearestByPoint[0] = %v is not nearest-first", nearest)
		}
		prev = d
	}
}

func TestRunRejectsInvalidParameters(t *testing.T) {
	store := buildStore([][]float32{{0, 0}, {1, 1}}, 1)

	if _, err := Run(store, 0, 5, 1, 1); err == nil {
		t.Fatal("expected error for nClusters=0")
	}
	if _, err := Run(store, 3, 5, 1, 1); err == nil {
		t.Fatal("expected error for nClusters exceeding point count")
	}
	if _, err := Run(store, 2, 5, 3, 1); err == nil {
		t.Fatal("expected error for nNearest exceeding nClusters")
	}
}
