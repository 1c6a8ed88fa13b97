// Package kmeans implements Strategy A's clustering primitive: a uniform
// k-means pass over the whole dataset followed by an m-nearest-cluster
// assignment per point.
package kmeans

import (
	"fmt"
	"math/rand"

	"github.com/therealutkarshpriyadarshi/vector/internal/distance"
	"github.com/therealutkarshpriyadarshi/vector/pkg/knngpoint"
)

// Cluster is one k-means cluster: its current centroid and the ids of the
// points currently assigned to it.
type Cluster struct {
	ID       uint32
	Centroid []float32
	Members  []uint32
}

// ClusterIndex is the "cluster index (A)" component handed to the
// exhaustive-search phase: the clusters themselves, plus, per point, the
// ids of its m nearest clusters ordered nearest-first.
type ClusterIndex struct {
	Clusters       []Cluster
	NearestByPoint [][]uint32
}

// Run clusters store's points into nClusters groups, iterating at most
// nIters times (terminating early once no point changes cluster), then
// assigns each point its nNearest nearest clusters. seed controls the
// uniform-random distinct-point initialisation so runs are reproducible.
func Run(store *knngpoint.VectorStore, nClusters, nIters, nNearest uint32, seed int64) (*ClusterIndex, error) {
	n := uint32(store.Len())
	if nClusters == 0 || nClusters > n {
		return nil, fmt.Errorf("kmeans: nClusters=%d invalid for %d points", nClusters, n)
	}
	if nNearest == 0 || nNearest > nClusters {
		return nil, fmt.Errorf("kmeans: nNearest=%d invalid for %d clusters", nNearest, nClusters)
	}

	rng := rand.New(rand.NewSource(seed))
	clusters := initCentroids(store, nClusters, rng)
	assignment := make([]uint32, n) // assignment[i] = cluster id of point i

	// First pass is unconditional: every point starts unassigned, so there
	// is no "did anything change" question to ask yet.
	for i := uint32(0); i < n; i++ {
		assignment[i] = nearestCluster(clusters, store.At(i).Coords())
	}
	recenter(clusters, store, assignment)

	for iter := uint32(1); iter < nIters; iter++ {
		changed := false
		for i := uint32(0); i < n; i++ {
			best := nearestCluster(clusters, store.At(i).Coords())
			if best != assignment[i] {
				assignment[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}
		recenter(clusters, store, assignment)
	}

	// Final membership lists, in assignment order.
	for c := range clusters {
		clusters[c].Members = clusters[c].Members[:0]
	}
	for i := uint32(0); i < n; i++ {
		c := assignment[i]
		clusters[c].Members = append(clusters[c].Members, i)
	}

	nearestByPoint := make([][]uint32, n)
	for i := uint32(0); i < n; i++ {
		nearestByPoint[i] = findMNearestClusters(clusters, store.At(i).Coords(), nNearest)
	}

	return &ClusterIndex{Clusters: clusters, NearestByPoint: nearestByPoint}, nil
}

func initCentroids(store *knngpoint.VectorStore, nClusters uint32, rng *rand.Rand) []Cluster {
	n := store.Len()
	used := make(map[int]bool, nClusters)
	clusters := make([]Cluster, 0, nClusters)

	for uint32(len(clusters)) < nClusters {
		idx := rng.Intn(n)
		if used[idx] {
			continue
		}
		used[idx] = true

		coords := store.At(uint32(idx)).Coords()
		centroid := make([]float32, len(coords))
		copy(centroid, coords)
		clusters = append(clusters, Cluster{
			ID:       uint32(len(clusters)),
			Centroid: centroid,
		})
	}
	return clusters
}

// nearestCluster returns the id of the cluster whose centroid is closest to
// coords, ties broken by lowest cluster id (clusters is already in id
// order, so the first strictly-improving match wins).
func nearestCluster(clusters []Cluster, coords []float32) uint32 {
	best := uint32(0)
	bestDistance := distance.SquaredEuclidean(clusters[0].Centroid, coords)
	for c := 1; c < len(clusters); c++ {
		d := distance.SquaredEuclidean(clusters[c].Centroid, coords)
		if d < bestDistance {
			best = uint32(c)
			bestDistance = d
		}
	}
	return best
}

// findMNearestClusters returns the m nearest cluster ids to coords, ordered
// furthest-first-then-reversed to nearest-first, matching the bounded-heap
// drain convention used throughout construction.
func findMNearestClusters(clusters []Cluster, coords []float32, m uint32) []uint32 {
	type candidate struct {
		id       uint32
		distance float32
	}
	top := make([]candidate, 0, m)

	for c := range clusters {
		d := distance.SquaredEuclidean(clusters[c].Centroid, coords)
		if uint32(len(top)) < m {
			top = append(top, candidate{id: clusters[c].ID, distance: d})
			continue
		}
		worst := 0
		for i := 1; i < len(top); i++ {
			if top[i].distance > top[worst].distance {
				worst = i
			}
		}
		if d < top[worst].distance {
			top[worst] = candidate{id: clusters[c].ID, distance: d}
		}
	}

	// Sort furthest-first, matching the max-heap drain order the rest of
	// the system uses, then the caller reads it as nearest-first.
	for i := 1; i < len(top); i++ {
		for j := i; j > 0 && top[j].distance > top[j-1].distance; j-- {
			top[j], top[j-1] = top[j-1], top[j]
		}
	}

	out := make([]uint32, len(top))
	for i, c := range top {
		// Reverse while copying: furthest-first storage, nearest-first output.
		out[len(top)-1-i] = c.id
	}
	return out
}

func recenter(clusters []Cluster, store *knngpoint.VectorStore, assignment []uint32) {
	dim := store.Dim()
	sums := make([][]float64, len(clusters))
	counts := make([]int, len(clusters))
	for c := range clusters {
		sums[c] = make([]float64, dim)
	}

	for i := uint32(0); i < uint32(store.Len()); i++ {
		c := assignment[i]
		coords := store.At(i).Coords()
		counts[c]++
		for d := 0; d < dim; d++ {
			sums[c][d] += float64(coords[d])
		}
	}

	for c := range clusters {
		if counts[c] == 0 {
			// An empty cluster keeps its previous centroid rather than
			// reseeding it.
			continue
		}
		for d := 0; d < dim; d++ {
			clusters[c].Centroid[d] = float32(sums[c][d] / float64(counts[c]))
		}
	}
}
