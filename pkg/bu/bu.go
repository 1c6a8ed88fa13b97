// Package bu builds each worker's bottom-up hierarchy of partition-local
// k-medoids summarisations. Workers operate entirely independently during
// this phase: no cross-worker communication happens until top-down
// refinement begins.
package bu

import (
	"github.com/therealutkarshpriyadarshi/vector/internal/distance"
	"github.com/therealutkarshpriyadarshi/vector/pkg/kmedoids"
	"github.com/therealutkarshpriyadarshi/vector/pkg/knngpoint"
	"github.com/therealutkarshpriyadarshi/vector/pkg/neighborheap"
	"github.com/therealutkarshpriyadarshi/vector/pkg/partition"
)

// Level maps a representative (medoid) global id to the global ids it
// represents. The implicit base level, where every point represents
// itself, is never materialised.
type Level map[uint32][]uint32

// Hierarchy is one worker's ordered list of BU levels, base level first.
// LevelOrder[L] holds level L's representative (medoid) ids in the
// deterministic cluster-partition order they were produced, for callers
// (TD) that need a stable ordering a map cannot provide.
type Hierarchy struct {
	Levels     []Level
	LevelOrder [][]uint32
}

// LastLevelOrder returns the deterministic representative order of the
// hierarchy's last BU level, or nil if the worker's chunk never exceeded
// partitionSize and no BU level was built.
func (h *Hierarchy) LastLevelOrder() []uint32 {
	if len(h.LevelOrder) == 0 {
		return nil
	}
	return h.LevelOrder[len(h.LevelOrder)-1]
}

// BuildHierarchy runs BU levels over chunk (the worker's assigned global
// ids) until the level size drops to partitionSize or below, or a level
// fails to shrink (the fixed-point guard, treated as terminal). Each level
// partitions the current index buffer via partition.Split, computes
// pairwise distances per partition - bootstrap-offering every pair
// symmetrically into both endpoints' neighbor heaps - and clusters each
// partition with kmedoids.Run.
func BuildHierarchy(store *knngpoint.VectorStore, chunk []uint32, partitionSize, nClusters uint32) (*Hierarchy, error) {
	buIndices := make([]uint32, len(chunk))
	copy(buIndices, chunk)
	buSize := uint32(len(buIndices))

	hierarchy := &Hierarchy{}

	for buSize > partitionSize {
		nParts := ceilDiv(buSize, partitionSize)
		partSizes := partition.Split(buSize, nParts)

		level := make(Level, nParts*nClusters)
		nextIndices := make([]uint32, 0, nParts*nClusters)

		for _, pr := range partSizes {
			if pr.Size == 0 {
				continue
			}
			members := buIndices[pr.Start:pr.End()]
			distances := computePartitionDistances(store, members)

			result, err := kmedoids.Run(members, distances, nClusters)
			if err != nil {
				return nil, err
			}
			for medoid, represented := range result.MedoidToMembers {
				level[medoid] = represented
			}
			nextIndices = append(nextIndices, result.MedoidIDs...)
		}

		hierarchy.Levels = append(hierarchy.Levels, level)
		hierarchy.LevelOrder = append(hierarchy.LevelOrder, nextIndices)

		prevSize := buSize
		buIndices = nextIndices
		buSize = uint32(len(buIndices))
		if buSize == prevSize {
			break
		}
	}

	return hierarchy, nil
}

// computePartitionDistances fills a partition's flattened upper-triangular
// distance table and, while doing so, offers every computed pair
// symmetrically to both endpoints' neighbor heaps - this is how BU
// bootstraps k-NN candidates purely from local geometry.
func computePartitionDistances(store *knngpoint.VectorStore, members []uint32) []float32 {
	size := uint32(len(members))
	distances := make([]float32, size*(size-1)/2)

	for i := uint32(0); i < size; i++ {
		from := store.At(members[i])
		for j := i + 1; j < size; j++ {
			to := store.At(members[j])
			d := distance.SquaredEuclidean(from.Coords(), to.Coords())
			distances[kmedoids.Triu(i, j, size)] = d

			from.OfferLocked(neighborheap.Pair{FromID: from.ID(), ToID: to.ID(), Distance: d})
			to.OfferLocked(neighborheap.Pair{FromID: to.ID(), ToID: from.ID(), Distance: d})
		}
	}
	return distances
}

func ceilDiv(a, b uint32) uint32 {
	return (a + b - 1) / b
}
