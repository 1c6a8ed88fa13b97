// Package kmedoids implements the partition-local k-medoids clustering
// primitive used by Strategy B's bottom-up (BU) hierarchy build. Each call
// clusters one partition of one BU level and hands back the chosen
// medoids together with their represented members.
package kmedoids

import "fmt"

// Triu maps a pair (i, j) with i < j, drawn from a partition of the given
// size, to its offset into a flattened upper-triangular distance table.
// Callers must ensure i < j; it is an internal invariant violation
// otherwise, since the formula is only valid above the diagonal.
func Triu(i, j, size uint32) uint32 {
	if i >= j {
		panic(fmt.Sprintf("kmedoids: Triu requires i < j, got i=%d j=%d", i, j))
	}
	return i*(size-1) - (i-1)*i/2 + j - i - 1
}

// Result is the outcome of clustering one partition: the global ids chosen
// as medoids (in cluster order) and, for each, the global ids of every
// member it represents.
type Result struct {
	MedoidIDs       []uint32
	MedoidToMembers map[uint32][]uint32
}

// Run clusters a partition of members (global ids, partition-local order)
// into nClusters groups using running medoid-distance bookkeeping.
// distances must be the partition's flattened upper-triangular pairwise
// distance table, indexed via Triu over local (within-partition) positions.
//
// The first nClusters members seed the clusters, one each; every
// subsequent member joins the cluster whose current medoid is nearest,
// ties broken by lowest cluster index. Determinism follows directly from
// the input ordering: identical ids and distances always produce identical
// output.
func Run(members []uint32, distances []float32, nClusters uint32) (Result, error) {
	partSize := uint32(len(members))
	if nClusters == 0 || nClusters > partSize {
		return Result{}, fmt.Errorf("kmedoids: nClusters=%d invalid for partition of size %d", nClusters, partSize)
	}

	// medoidRaw[c] is the partition-local position of cluster c's current
	// medoid. medoidDistances[c][m] is the running sum of distances from
	// local member m (in join order within cluster c) to every other
	// member already in cluster c.
	medoidRaw := make([]uint32, nClusters)
	medoidDistances := make([][]float32, nClusters)
	membersRaw := make([][]uint32, nClusters)
	nMembers := make([]uint32, nClusters)

	for c := uint32(0); c < nClusters; c++ {
		medoidRaw[c] = c
		medoidDistances[c] = make([]float32, partSize)
		membersRaw[c] = make([]uint32, partSize)
		membersRaw[c][0] = c
		nMembers[c] = 1
	}

	dist := func(a, b uint32) float32 {
		if a < b {
			return distances[Triu(a, b, partSize)]
		}
		return distances[Triu(b, a, partSize)]
	}

	for point := nClusters; point < partSize; point++ {
		bestCluster := uint32(0)
		bestDistance := dist(medoidRaw[0], point)

		for c := uint32(1); c < nClusters; c++ {
			if d := dist(medoidRaw[c], point); d < bestDistance {
				bestCluster = c
				bestDistance = d
			}
		}

		n := nMembers[bestCluster]
		membersRaw[bestCluster][n] = point

		// Extend every existing member's running sum by its distance to
		// the newly joined point, and accumulate the new point's own sum
		// in the same pass.
		bestMedoidIndex := uint32(0)
		newMemberSum := float32(0)
		for m := uint32(0); m < n; m++ {
			d := dist(membersRaw[bestCluster][m], point)
			medoidDistances[bestCluster][m] += d
			newMemberSum += d
			if medoidDistances[bestCluster][m] < medoidDistances[bestCluster][bestMedoidIndex] {
				bestMedoidIndex = m
			}
		}
		medoidDistances[bestCluster][n] = newMemberSum
		if newMemberSum < medoidDistances[bestCluster][bestMedoidIndex] {
			bestMedoidIndex = n
		}

		medoidRaw[bestCluster] = membersRaw[bestCluster][bestMedoidIndex]
		nMembers[bestCluster] = n + 1
	}

	result := Result{
		MedoidIDs:       make([]uint32, nClusters),
		MedoidToMembers: make(map[uint32][]uint32, nClusters),
	}
	for c := uint32(0); c < nClusters; c++ {
		medoidGlobal := members[medoidRaw[c]]
		represented := make([]uint32, nMembers[c])
		for m := uint32(0); m < nMembers[c]; m++ {
			represented[m] = members[membersRaw[c][m]]
		}
		result.MedoidIDs[c] = medoidGlobal
		result.MedoidToMembers[medoidGlobal] = represented
	}
	return result, nil
}
