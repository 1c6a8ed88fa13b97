// Package td implements top-down refinement: having built per-worker
// bottom-up hierarchies, workers cooperate through a shared topP pair set
// to discover long-range neighbors that local geometry alone (BU's
// bootstrap phase) would miss.
//
// RunWorker is meant to be called once per worker goroutine, all sharing
// the same *SharedState and barrier, while BuildHierarchy has already
// populated each worker's *bu.Hierarchy. partition.Split only bounds
// worker chunk sizes to within one of each other; a chunk that straddles
// partitionSize can still produce a different BU level *count* than a
// same-sized neighbor. RunWorker therefore takes the run's maxLevels (the
// largest level count across all workers) and loops every worker over
// that many rounds, aligned on the base level at round 0: a worker with
// fewer levels than maxLevels passes an empty level map for its leading
// rounds, still joining every barrier, until round catches up to a level
// it actually built.
package td

import (
	"github.com/therealutkarshpriyadarshi/vector/internal/barrier"
	"github.com/therealutkarshpriyadarshi/vector/internal/distance"
	"github.com/therealutkarshpriyadarshi/vector/pkg/bu"
	"github.com/therealutkarshpriyadarshi/vector/pkg/knngpoint"
	"github.com/therealutkarshpriyadarshi/vector/pkg/neighborheap"
	"github.com/therealutkarshpriyadarshi/vector/pkg/partition"
)

// Pair is a candidate representative-to-representative edge tracked during
// refinement. Unlike neighborheap.Pair it carries no self/duplicate
// admission rules: the topP set is a distance ranking of pairs, not a
// per-point neighbor list, and the same pair may appear in it more than once.
type Pair struct {
	FromID   uint32
	ToID     uint32
	Distance float32
}

// SharedState is the cross-worker state for one construction run's TD
// phase: the concatenated last-BU-level representative buffer, and the
// per-worker topP pair sets that are read and overwritten once per
// descending level.
type SharedState struct {
	topP    int
	barrier *barrier.Barrier

	repBuffer []uint32
	offsets   []int
	sizes     []int

	topPPairs [][]Pair
	fromCands [][]uint32
	toCands   [][]uint32
}

// NewSharedState allocates shared TD state for a construction run with the
// given per-worker last-BU-level sizes (these can differ widely: a worker
// that built no BU level contributes its whole chunk) and topP pairs
// retained per worker per round.
func NewSharedState(lastLevelSizes []int, topP int, b *barrier.Barrier) *SharedState {
	offsets := make([]int, len(lastLevelSizes))
	total := 0
	for i, s := range lastLevelSizes {
		offsets[i] = total
		total += s
	}
	return &SharedState{
		topP:      topP,
		barrier:   b,
		repBuffer: make([]uint32, total),
		offsets:   offsets,
		sizes:     lastLevelSizes,
		topPPairs: make([][]Pair, len(lastLevelSizes)),
	}
}

// RunWorker executes workerID's share of TD refinement against store,
// using hierarchy's BU levels and lastLevelOrder (the deterministic,
// cluster-order list of the worker's last BU level's representative ids,
// as produced by bu.BuildHierarchy). maxLevels is the largest BU level
// count across every worker sharing this run; it must be invoked
// concurrently by every worker sharing shared and shared's barrier, all
// passing the same maxLevels.
func RunWorker(store *knngpoint.VectorStore, shared *SharedState, workerID int, hierarchy *bu.Hierarchy, lastLevelOrder []uint32, maxLevels int) {
	offset := shared.offsets[workerID]
	copy(shared.repBuffer[offset:offset+shared.sizes[workerID]], lastLevelOrder)
	shared.barrier.Wait()

	seedWorkerTopP(store, shared, workerID)
	shared.barrier.Wait()

	for round := maxLevels - 1; round >= 0; round-- {
		level := bu.Level{}
		if round < len(hierarchy.Levels) {
			level = hierarchy.Levels[round]
		}
		runLevel(store, shared, workerID, level, round == 0)
	}
}

// seedWorkerTopP performs the initial weighted head/tail cross-product
// over the full concatenated last-level representative buffer, seeding
// this worker's topP heap with its P locally-best pairs.
func seedWorkerTopP(store *knngpoint.VectorStore, shared *SharedState, workerID int) {
	total := uint32(len(shared.repBuffer))
	nWorkers := uint32(len(shared.sizes))
	divisor := nWorkers * 2

	chunks := partition.Split(total, divisor)
	headChunk := chunks[workerID]
	tailChunk := chunks[divisor-1-uint32(workerID)]

	heap := newBoundedPairHeap(shared.topP)
	scan := func(c partition.Range) {
		for i := c.Start; i < c.End(); i++ {
			fromID := shared.repBuffer[i]
			fromCoords := store.At(fromID).Coords()
			for j := i + 1; j < total; j++ {
				toID := shared.repBuffer[j]
				d := distance.SquaredEuclidean(fromCoords, store.At(toID).Coords())
				heap.offer(Pair{FromID: fromID, ToID: toID, Distance: d})
			}
		}
	}
	scan(headChunk)
	scan(tailChunk)

	shared.topPPairs[workerID] = heap.snapshot()
}

// runLevel performs one descending level's worth of candidate gathering
// and cross-product refinement.
func runLevel(store *knngpoint.VectorStore, shared *SharedState, workerID int, level bu.Level, isBaseLevel bool) {
	allPairs, myStart, myCount := flattenTopP(shared.topPPairs, workerID)

	if workerID == 0 {
		shared.fromCands = make([][]uint32, len(allPairs))
		shared.toCands = make([][]uint32, len(allPairs))
	}
	shared.barrier.Wait()

	// Step a: claim every topP pair endpoint this worker's level owns. ids
	// are worker-exclusive (BU chunks partition the dataset), so at most
	// one worker ever writes a given index - concurrent writes never
	// target the same slot.
	for i, pair := range allPairs {
		if members, ok := level[pair.FromID]; ok {
			shared.fromCands[i] = members
			delete(level, pair.FromID)
		}
		if members, ok := level[pair.ToID]; ok {
			shared.toCands[i] = members
			delete(level, pair.ToID)
		}
	}
	shared.barrier.Wait()

	var thrHeap *boundedPairHeap
	if !isBaseLevel {
		// Step c: seed next round's candidate heap from whichever
		// representatives were NOT claimed as topP endpoints above, using
		// their members' already-discovered neighbors.
		thrHeap = newBoundedPairHeap(shared.topP)
		for _, members := range level {
			for _, representee := range members {
				for _, cand := range store.At(representee).Heap().Snapshot() {
					thrHeap.offer(Pair{FromID: representee, ToID: cand.ToID, Distance: cand.Distance})
				}
			}
		}
	}

	// Step d: this worker performs the three all-pairs scans only for the
	// topP pairs it itself produced last round.
	for i := myStart; i < myStart+myCount; i++ {
		from := shared.fromCands[i]
		to := shared.toCands[i]

		scanCrossProduct(store, from, from, true, thrHeap)
		scanCrossProduct(store, from, to, false, thrHeap)
		scanCrossProduct(store, to, to, true, thrHeap)
	}

	if !isBaseLevel {
		shared.topPPairs[workerID] = thrHeap.snapshot()
	}
	shared.barrier.Wait()
}

// scanCrossProduct computes squared-Euclidean distances across candidate
// ids a and b, offering every discovered pair into thrHeap (if non-nil)
// and, symmetrically and under per-point locking, into both endpoints'
// neighbor heaps. When triangular is true, a and b are the same
// underlying slice and only the upper triangle (i < j) is visited.
func scanCrossProduct(store *knngpoint.VectorStore, a, b []uint32, triangular bool, thrHeap *boundedPairHeap) {
	for i := 0; i < len(a); i++ {
		from := store.At(a[i])
		jStart := 0
		if triangular {
			jStart = i + 1
		}
		for j := jStart; j < len(b); j++ {
			to := store.At(b[j])
			d := distance.SquaredEuclidean(from.Coords(), to.Coords())

			if thrHeap != nil {
				thrHeap.offer(Pair{FromID: a[i], ToID: b[j], Distance: d})
			}

			from.OfferLocked(neighborheap.Pair{FromID: a[i], ToID: b[j], Distance: d})
			to.OfferLocked(neighborheap.Pair{FromID: b[j], ToID: a[i], Distance: d})
		}
	}
}

// flattenTopP concatenates every worker's current topP pairs in worker
// order, returning the concatenation along with the contiguous range that
// belongs to workerID.
func flattenTopP(topPPairs [][]Pair, workerID int) (all []Pair, myStart, myCount int) {
	for w, pairs := range topPPairs {
		if w == workerID {
			myStart = len(all)
			myCount = len(pairs)
		}
		all = append(all, pairs...)
	}
	return all, myStart, myCount
}
