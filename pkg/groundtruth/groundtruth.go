// Package groundtruth computes exhaustive nearest-neighbor lists used as
// the evaluator's reference answer.
package groundtruth

import (
	"math/rand"

	"github.com/therealutkarshpriyadarshi/vector/internal/distance"
	"github.com/therealutkarshpriyadarshi/vector/pkg/datasetio"
	"github.com/therealutkarshpriyadarshi/vector/pkg/knngerr"
)

// Compute finds the exhaustive k nearest neighbors of every index in
// sampleIndices against the full points set, dropping each query's own id
// from its k+1 nearest by id equality rather than assuming the self-entry
// always sorts first.
func Compute(points [][]float32, sampleIndices []uint32, k uint32) ([]datasetio.GroundTruthSample, error) {
	samples := make([]datasetio.GroundTruthSample, len(sampleIndices))

	for i, queryIdx := range sampleIndices {
		neighbors, err := knnOfPoint(points, queryIdx, k)
		if err != nil {
			return nil, err
		}
		samples[i] = datasetio.GroundTruthSample{SampleID: queryIdx, Neighbors: neighbors}
	}
	return samples, nil
}

// SampleIndices returns every point's index if n == 0 (full ground
// truth), or a uniformly-random subset of size n otherwise.
func SampleIndices(nPoints int, n uint32, rng *rand.Rand) ([]uint32, error) {
	if int(n) > nPoints {
		return nil, knngerr.New(knngerr.Domain, "n-samples=%d exceeds dataset cardinality %d", n, nPoints)
	}

	indices := make([]uint32, nPoints)
	for i := range indices {
		indices[i] = uint32(i)
	}
	if n == 0 {
		return indices, nil
	}

	rng.Shuffle(len(indices), func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })
	return indices[:n], nil
}

// candidate is a single scored point during exhaustive search.
type candidate struct {
	id       uint32
	distance float32
}

// knnOfPoint finds the k nearest neighbors of points[queryIdx], scanning
// every other point exhaustively and keeping a bounded max-heap of the
// best k+1 candidates so the query's own entry can be dropped by id
// rather than by assumed position.
func knnOfPoint(points [][]float32, queryIdx uint32, k uint32) ([]uint32, error) {
	heap := make([]candidate, 0, k+1)
	query := points[queryIdx]

	for idx := range points {
		id := uint32(idx)
		d := distance.SquaredEuclidean(query, points[idx])

		if uint32(len(heap)) < k+1 {
			heap = append(heap, candidate{id: id, distance: d})
			siftUp(heap, len(heap)-1)
			continue
		}
		if d < heap[0].distance {
			heap[0] = candidate{id: id, distance: d}
			siftDown(heap, 0)
		}
	}

	// Drain farthest-first, then reverse to nearest-first, then drop the
	// query's own id wherever it appears.
	drained := make([]candidate, 0, len(heap))
	for len(heap) > 0 {
		drained = append(drained, heap[0])
		last := len(heap) - 1
		heap[0] = heap[last]
		heap = heap[:last]
		if len(heap) > 0 {
			siftDown(heap, 0)
		}
	}

	out := make([]uint32, 0, k)
	for i := len(drained) - 1; i >= 0 && uint32(len(out)) < k; i-- {
		if drained[i].id == queryIdx {
			continue
		}
		out = append(out, drained[i].id)
	}

	if uint32(len(out)) != k {
		return nil, knngerr.New(knngerr.Internal, "ground truth for point %d produced %d neighbors, want %d", queryIdx, len(out), k)
	}
	return out, nil
}

func siftUp(heap []candidate, i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if heap[i].distance <= heap[parent].distance {
			break
		}
		heap[i], heap[parent] = heap[parent], heap[i]
		i = parent
	}
}

func siftDown(heap []candidate, i int) {
	n := len(heap)
	for {
		largest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && heap[left].distance > heap[largest].distance {
			largest = left
		}
		if right < n && heap[right].distance > heap[largest].distance {
			largest = right
		}
		if largest == i {
			return
		}
		heap[i], heap[largest] = heap[largest], heap[i]
		i = largest
	}
}
