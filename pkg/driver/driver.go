// Package driver assembles one construction run's strategy pipeline: it
// owns the worker goroutines and the
// Loaded -> Clustering/BU -> TD -> Emitting -> Done lifecycle. Strategy B
// runs BU and TD as two separate sets of goroutines: the BU goroutines are
// joined before the TD goroutines start, and only TD's sub-phases are
// separated by a shared barrier.
package driver

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/therealutkarshpriyadarshi/vector/internal/barrier"
	"github.com/therealutkarshpriyadarshi/vector/internal/distance"
	"github.com/therealutkarshpriyadarshi/vector/pkg/bu"
	"github.com/therealutkarshpriyadarshi/vector/pkg/kmeans"
	"github.com/therealutkarshpriyadarshi/vector/pkg/knngerr"
	"github.com/therealutkarshpriyadarshi/vector/pkg/knngpoint"
	"github.com/therealutkarshpriyadarshi/vector/pkg/neighborheap"
	"github.com/therealutkarshpriyadarshi/vector/pkg/observability"
	"github.com/therealutkarshpriyadarshi/vector/pkg/partition"
	"github.com/therealutkarshpriyadarshi/vector/pkg/td"
)

// Phase is a driver lifecycle state.
type Phase int

const (
	PhaseLoaded Phase = iota
	PhaseClustering
	PhaseBU
	PhaseTD
	PhaseEmitting
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseLoaded:
		return "loaded"
	case PhaseClustering:
		return "clustering"
	case PhaseBU:
		return "bu"
	case PhaseTD:
		return "td"
	case PhaseEmitting:
		return "emitting"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// StrategyA selects the nearest-clusters construction strategy; StrategyB
// selects near-neighbor-join.
const (
	StrategyA = 'A'
	StrategyB = 'B'
)

// Params configures one construction run.
type Params struct {
	Strategy   byte
	NumWorkers int
	Seed       int64

	// Strategy A (kmeans + m-nearest-cluster exhaustive search).
	NClusters        uint32
	NIters           uint32
	NNearestClusters uint32

	// Strategy B (NNJ: BU hierarchy + TD refinement).
	PartitionSize uint32
	NClustersB    uint32
	TopP          int
}

// Driver runs a single construction pass over a VectorStore and tracks its
// own lifecycle phase for an attached status server to poll.
type Driver struct {
	store   *knngpoint.VectorStore
	params  Params
	logger  *observability.Logger
	metrics *observability.Metrics
	limiter *rate.Limiter

	mu         sync.Mutex
	phase      Phase
	phaseStart time.Time
}

// New creates a Driver for store under params. logger and metrics may be
// nil, in which case the corresponding observability calls are skipped.
func New(store *knngpoint.VectorStore, params Params, logger *observability.Logger, metrics *observability.Metrics) *Driver {
	if params.NumWorkers < 1 {
		params.NumWorkers = 1
	}
	return &Driver{
		store:   store,
		params:  params,
		logger:  logger,
		metrics: metrics,
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
		phase:   PhaseLoaded,
	}
}

// Phase returns the driver's current lifecycle phase. Safe to call
// concurrently with Run, typically from a status server goroutine.
func (d *Driver) Phase() Phase {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase
}

func (d *Driver) setPhase(p Phase) {
	d.mu.Lock()
	now := time.Now()
	prev, prevStart := d.phase, d.phaseStart
	d.phase = p
	d.phaseStart = now
	d.mu.Unlock()

	if d.metrics != nil {
		if !prevStart.IsZero() {
			d.metrics.RecordPhase(prev.String(), int(p), now.Sub(prevStart))
		} else {
			d.metrics.CurrentPhase.Set(float64(p))
		}
	}
	if d.logger != nil {
		d.logger.Info("phase transition", map[string]interface{}{"phase": p.String()})
	}
}

func (d *Driver) logProgress(phase string, processed, total int) {
	if d.metrics != nil {
		d.metrics.RecordPointsProcessed(1)
	}
	if d.logger == nil || !d.limiter.Allow() {
		return
	}
	d.logger.Info("progress", map[string]interface{}{
		"phase":     phase,
		"processed": processed,
		"total":     total,
	})
}

// Run executes the construction pipeline selected by Params.Strategy. It
// does not write the output file; call Emit afterward.
func (d *Driver) Run() error {
	if d.metrics != nil {
		d.metrics.SetPointsTotal(d.store.Len())
	}
	switch d.params.Strategy {
	case StrategyA:
		return d.runStrategyA()
	case StrategyB:
		return d.runStrategyB()
	default:
		return knngerr.New(knngerr.Config, "unknown strategy %q", string(d.params.Strategy))
	}
}

// runStrategyA clusters the dataset once, then has every worker search its
// assigned points' m nearest clusters exhaustively.
func (d *Driver) runStrategyA() error {
	d.setPhase(PhaseClustering)

	idx, err := kmeans.Run(d.store, d.params.NClusters, d.params.NIters, d.params.NNearestClusters, d.params.Seed)
	if err != nil {
		return knngerr.Wrap(knngerr.Domain, err, "strategy A clustering failed")
	}

	n := uint32(d.store.Len())
	chunks := partition.Split(n, uint32(d.params.NumWorkers))

	var wg sync.WaitGroup
	for _, c := range chunks {
		if c.Size == 0 {
			continue
		}
		wg.Add(1)
		go func(c partition.Range) {
			defer wg.Done()
			d.searchAssignedClusters(idx, c, int(n))
		}(c)
	}
	wg.Wait()

	return nil
}

// searchAssignedClusters computes the exact k-NN of every point in r
// within its own m nearest clusters. Each point's heap is written only by
// the worker that owns r, so no locking is needed here.
func (d *Driver) searchAssignedClusters(idx *kmeans.ClusterIndex, r partition.Range, total int) {
	processed := 0
	for i := r.Start; i < r.End(); i++ {
		point := d.store.At(i)
		coords := point.Coords()

		for _, clusterID := range idx.NearestByPoint[i] {
			for _, candidate := range idx.Clusters[clusterID].Members {
				if candidate == i {
					continue
				}
				dist := distance.SquaredEuclidean(coords, d.store.At(candidate).Coords())
				point.Heap().Offer(neighborheap.Pair{FromID: i, ToID: candidate, Distance: dist})
			}
		}

		processed++
		d.logProgress("clustering", processed, total)
	}
}

// runStrategyB builds each worker's BU hierarchy independently, then runs
// TD refinement cooperatively across workers through a shared barrier.
func (d *Driver) runStrategyB() error {
	d.setPhase(PhaseBU)

	n := uint32(d.store.Len())
	w := uint32(d.params.NumWorkers)
	chunks := partition.Split(n, w)

	hierarchies := make([]*bu.Hierarchy, w)
	chunkIDs := make([][]uint32, w)
	errs := make([]error, w)

	var wg sync.WaitGroup
	for i, c := range chunks {
		wg.Add(1)
		go func(i int, c partition.Range) {
			defer wg.Done()

			ids := make([]uint32, c.Size)
			for j := range ids {
				ids[j] = c.Start + uint32(j)
			}
			chunkIDs[i] = ids

			h, err := bu.BuildHierarchy(d.store, ids, d.params.PartitionSize, d.params.NClustersB)
			if err != nil {
				errs[i] = err
				return
			}
			hierarchies[i] = h
			if d.metrics != nil {
				d.metrics.RecordBULevel(len(h.Levels), int(d.params.PartitionSize))
			}
		}(i, c)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return knngerr.Wrap(knngerr.Domain, err, "BU hierarchy build failed")
		}
	}

	d.setPhase(PhaseTD)

	lastLevelSizes := make([]int, w)
	lastLevelOrders := make([][]uint32, w)
	for i := range hierarchies {
		order := hierarchies[i].LastLevelOrder()
		if order == nil {
			// This worker's chunk never exceeded partitionSize, so it
			// built no BU level at all: its own chunk is its last level.
			order = chunkIDs[i]
		}
		lastLevelOrders[i] = order
		lastLevelSizes[i] = len(order)
	}

	maxLevels := 0
	for _, h := range hierarchies {
		if len(h.Levels) > maxLevels {
			maxLevels = len(h.Levels)
		}
	}

	b := barrier.New(int(w))
	shared := td.NewSharedState(lastLevelSizes, d.params.TopP, b)

	var tdWg sync.WaitGroup
	for i := 0; i < int(w); i++ {
		tdWg.Add(1)
		go func(workerID int) {
			defer tdWg.Done()
			td.RunWorker(d.store, shared, workerID, hierarchies[workerID], lastLevelOrders[workerID], maxLevels)
		}(i)
	}
	tdWg.Wait()

	if d.metrics != nil {
		d.metrics.RecordTDLevelsRemaining(0)
	}

	return nil
}
