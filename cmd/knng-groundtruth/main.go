// Command knng-groundtruth computes exhaustive nearest-neighbor lists for
// a sample of a dataset, used as the reference answer for recall scoring.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/therealutkarshpriyadarshi/vector/pkg/datasetio"
	"github.com/therealutkarshpriyadarshi/vector/pkg/groundtruth"
	"github.com/therealutkarshpriyadarshi/vector/pkg/knngerr"
)

const program = "evaluator"

func main() {
	var (
		datasetPath = flag.String("dataset-path", "", "dataset binary path (required)")
		outputPath  = flag.String("output-path", "", "ground-truth output path, must not exist (required)")
		dim         = flag.Int("dim", 0, "vector dimensionality (required)")
		k           = flag.Uint("k", 0, "neighbors per sample (required)")
		nSamples    = flag.Uint("n-samples", 0, "sample count, 0 = full ground truth")
		seed        = flag.Int64("seed", 0, "RNG seed, 0 = time-derived")
	)
	flag.Parse()

	if *datasetPath == "" || *outputPath == "" || *dim <= 0 || *k == 0 {
		knngerr.Die(program, "--dataset-path, --output-path, --dim and --k are all required")
	}
	if _, err := os.Stat(*outputPath); err == nil {
		knngerr.Die(program, fmt.Sprintf("output path %s already exists", *outputPath))
	}

	points, err := datasetio.ReadDataset(*datasetPath, *dim)
	if err != nil {
		knngerr.Die(program, err.Error())
	}

	runSeed := *seed
	if runSeed == 0 {
		runSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(runSeed))

	sampleIndices, err := groundtruth.SampleIndices(len(points), uint32(*nSamples), rng)
	if err != nil {
		knngerr.Die(program, err.Error())
	}

	samples, err := groundtruth.Compute(points, sampleIndices, uint32(*k))
	if err != nil {
		knngerr.Die(program, err.Error())
	}

	if err := datasetio.WriteGroundTruth(*outputPath, samples); err != nil {
		knngerr.Die(program, err.Error())
	}

	fmt.Printf("wrote %d ground-truth samples to %s\n", len(samples), *outputPath)
}
