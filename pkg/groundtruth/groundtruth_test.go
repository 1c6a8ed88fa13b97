package groundtruth

import (
	"math/rand"
	"testing"
)

func TestComputeFindsExactNearestNeighborsOnALine(t *testing.T) {
	// Points on a line: point i at (i, 0). The k nearest of point 5 among
	// 11 points (k=4) are 3,4,6,7 in some order, always excluding 5 itself.
	points := make([][]float32, 11)
	for i := range points {
		points[i] = []float32{float32(i), 0}
	}

	samples, err := Compute(points, []uint32{5}, 4)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("len(samples) = %d, want 1", len(samples))
	}
	if samples[0].SampleID != 5 {
		t.Fatalf("SampleID = %d, want 5", samples[0].SampleID)
	}
	if len(samples[0].Neighbors) != 4 {
		t.Fatalf("len(Neighbors) = %d, want 4", len(samples[0].Neighbors))
	}
	for _, n := range samples[0].Neighbors {
		if n == 5 {
			t.Fatal("query's own id must never appear in its neighbor list")
		}
	}
	want := map[uint32]bool{3: true, 4: true, 6: true, 7: true}
	for _, n := range samples[0].Neighbors {
		if !want[n] {
			t.Fatalf("Neighbors = %v, want the set {3 4 6 7}", samples[0].Neighbors)
		}
		delete(want, n)
	}
}

func TestComputeDropsSelfEvenAtDuplicateCoordinates(t *testing.T) {
	// Two points share identical coordinates; self must still be excluded
	// by id, not by distance tie-breaking.
	points := [][]float32{
		{0, 0}, {0, 0}, {5, 5}, {10, 10},
	}
	samples, err := Compute(points, []uint32{0}, 2)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	for _, n := range samples[0].Neighbors {
		if n == 0 {
			t.Fatal("self id leaked into neighbor list despite a coincident duplicate")
		}
	}
}

func TestSampleIndicesZeroMeansFull(t *testing.T) {
	indices, err := SampleIndices(10, 0, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("SampleIndices returned error: %v", err)
	}
	if len(indices) != 10 {
		t.Fatalf("len(indices) = %d, want 10", len(indices))
	}
}

func TestSampleIndicesRejectsTooManySamples(t *testing.T) {
	if _, err := SampleIndices(5, 6, rand.New(rand.NewSource(1))); err == nil {
		t.Fatal("expected error when n-samples exceeds dataset cardinality")
	}
}

func TestSampleIndicesReturnsDistinctSubset(t *testing.T) {
	indices, err := SampleIndices(100, 10, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("SampleIndices returned error: %v", err)
	}
	if len(indices) != 10 {
		t.Fatalf("len(indices) = %d, want 10", len(indices))
	}
	seen := make(map[uint32]bool)
	for _, idx := range indices {
		if seen[idx] {
			t.Fatalf("duplicate index %d in sample", idx)
		}
		seen[idx] = true
	}
}
