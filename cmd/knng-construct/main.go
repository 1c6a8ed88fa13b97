// Command knng-construct builds an approximate k-nearest-neighbor graph
// over a dataset binary using either Strategy A (nearest-clusters) or
// Strategy B (near-neighbor-join), then writes the result to a k-NNG
// binary.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/therealutkarshpriyadarshi/vector/pkg/config"
	"github.com/therealutkarshpriyadarshi/vector/pkg/datasetio"
	"github.com/therealutkarshpriyadarshi/vector/pkg/driver"
	"github.com/therealutkarshpriyadarshi/vector/pkg/knngerr"
	"github.com/therealutkarshpriyadarshi/vector/pkg/knngpoint"
	"github.com/therealutkarshpriyadarshi/vector/pkg/observability"
	"github.com/therealutkarshpriyadarshi/vector/pkg/statusserver"
)

const program = "knng-clusters"

func main() {
	var (
		datasetPath = flag.String("dataset", "", "dataset binary path (required)")
		outputPath  = flag.String("output", "", "k-NNG output path, must not exist (required)")
		dim         = flag.Int("dim", 0, "vector dimensionality (required)")
		k           = flag.Int("k", 0, "neighbors per point (required)")
		strategy    = flag.String("strategy", "", "construction strategy: a|b (required)")
		numWorkers  = flag.Int("num-workers", 0, "worker count, 0 = NUM_CORES or all cores")
		seed        = flag.Int64("seed", 0, "RNG seed, 0 = time-derived")

		nClusters        = flag.Uint("n-clusters", 0, "cluster count (both strategies)")
		nIters           = flag.Uint("n-iters", 0, "k-means iteration cap (strategy A)")
		nNearestClusters = flag.Uint("n-nearest-clusters", 1, "clusters searched per point (strategy A)")
		partitionSize    = flag.Uint("partition-size", 0, "BU partition size (strategy B)")
		topP             = flag.Int("top-p", 0, "TD representative pair count (strategy B)")

		statusAddr        = flag.String("status-addr", "", "optional HTTP address for /healthz,/status,/metrics")
		statusTokenSecret = flag.String("status-token-secret", "", "optional bearer-token secret guarding /status,/metrics")
		logLevel          = flag.String("log-level", "info", "log level: debug|info|warn|error")
	)
	flag.Parse()

	logger := observability.NewLogger(observability.ParseLogLevel(*logLevel), os.Stderr)

	if *datasetPath == "" || *outputPath == "" || *dim <= 0 || *k <= 0 {
		knngerr.Die(program, "--dataset, --output, --dim and --k are all required")
	}
	if _, err := os.Stat(*outputPath); err == nil {
		knngerr.Die(program, fmt.Sprintf("output path %s already exists", *outputPath))
	}

	var strategyByte byte
	switch *strategy {
	case "a", "A":
		strategyByte = driver.StrategyA
		if *nClusters == 0 || *nIters == 0 {
			knngerr.Die(program, "strategy A requires --n-clusters and --n-iters")
		}
	case "b", "B":
		strategyByte = driver.StrategyB
		if *partitionSize == 0 || *nClusters == 0 || *topP == 0 {
			knngerr.Die(program, "strategy B requires --partition-size, --n-clusters and --top-p")
		}
	default:
		knngerr.Die(program, fmt.Sprintf("--strategy must be a or b, got %q", *strategy))
	}

	records, err := datasetio.ReadDataset(*datasetPath, *dim)
	if err != nil {
		knngerr.Die(program, err.Error())
	}
	if *k > len(records)-1 {
		knngerr.Die(program, fmt.Sprintf("--k=%d exceeds N-1=%d: every point needs at least k distinct other points to neighbor", *k, len(records)-1))
	}

	store := knngpoint.NewVectorStore(len(records), *dim, *k)
	for i, coords := range records {
		store.SetCoords(i, coords)
	}

	cfg := config.LoadFromEnv()
	if *numWorkers > 0 {
		cfg.Workers.NumCores = *numWorkers
	}
	cfg.Workers.Dimensions = *dim
	if *statusAddr != "" {
		host, portStr, err := net.SplitHostPort(*statusAddr)
		if err != nil {
			knngerr.Die(program, fmt.Sprintf("--status-addr %q: %v", *statusAddr, err))
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			knngerr.Die(program, fmt.Sprintf("--status-addr %q: invalid port %q", *statusAddr, portStr))
		}
		cfg.Server.Host = host
		cfg.Server.Port = port
	}
	if *statusTokenSecret != "" {
		cfg.Server.JWTSecret = *statusTokenSecret
	}
	if err := cfg.Validate(); err != nil {
		knngerr.Die(program, err.Error())
	}
	resolvedWorkers := cfg.Workers.ResolvedWorkerCount()

	runSeed := *seed
	if runSeed == 0 {
		runSeed = rand.New(rand.NewSource(time.Now().UnixNano())).Int63()
	}

	metrics := observability.NewMetrics()

	d := driver.New(store, driver.Params{
		Strategy:         strategyByte,
		NumWorkers:       resolvedWorkers,
		Seed:             runSeed,
		NClusters:        uint32(*nClusters),
		NIters:           uint32(*nIters),
		NNearestClusters: uint32(*nNearestClusters),
		PartitionSize:    uint32(*partitionSize),
		NClustersB:       uint32(*nClusters),
		TopP:             *topP,
	}, logger, metrics)

	var status *statusserver.Server
	if *statusAddr != "" {
		status = statusserver.New(statusserver.Config{
			HTTPAddr:       cfg.Server.Address(),
			JWTSecret:      cfg.Server.JWTSecret,
			RequestTimeout: cfg.Server.RequestTimeout,
			PhaseFunc:      func() string { return d.Phase().String() },
			Logger:         logger,
		})
		if err := status.Start(); err != nil {
			knngerr.Die(program, fmt.Sprintf("starting status server: %v", err))
		}
		logger.Info("status server listening", map[string]interface{}{"addr": cfg.Server.Address()})
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			status.Stop(ctx)
		}()
	}

	logger.Info("construction started", map[string]interface{}{
		"dataset":     *datasetPath,
		"n":           len(records),
		"dim":         *dim,
		"k":           *k,
		"strategy":    *strategy,
		"num_workers": resolvedWorkers,
		"seed":        runSeed,
	})

	if err := d.Run(); err != nil {
		knngerr.Die(program, err.Error())
	}
	if err := d.Emit(*outputPath); err != nil {
		knngerr.Die(program, err.Error())
	}

	logger.Info("construction finished", map[string]interface{}{"output": *outputPath})
}
