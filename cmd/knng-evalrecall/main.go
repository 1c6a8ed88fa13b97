// Command knng-evalrecall scores a constructed k-NNG against an
// exhaustive ground-truth sample, reporting mean recall.
package main

import (
	"flag"
	"fmt"

	"github.com/therealutkarshpriyadarshi/vector/pkg/datasetio"
	"github.com/therealutkarshpriyadarshi/vector/pkg/knngerr"
	"github.com/therealutkarshpriyadarshi/vector/pkg/recall"
)

const program = "evaluator"

func main() {
	var (
		trueKNNGPath = flag.String("true-knng-path", "", "ground-truth file path (required)")
		evalKNNGPath = flag.String("eval-knng-path", "", "constructed k-NNG path (required)")
		n            = flag.Int("n", 0, "dataset cardinality (required)")
		k            = flag.Int("k", 0, "neighbors per point (required)")
	)
	flag.Parse()

	if *trueKNNGPath == "" || *evalKNNGPath == "" || *n <= 0 || *k <= 0 {
		knngerr.Die(program, "--true-knng-path, --eval-knng-path, --n and --k are all required")
	}

	samples, err := datasetio.ReadGroundTruth(*trueKNNGPath, *k)
	if err != nil {
		knngerr.Die(program, err.Error())
	}

	evalKNNG, err := datasetio.ReadKNNG(*evalKNNGPath, *n, *k)
	if err != nil {
		knngerr.Die(program, err.Error())
	}

	score := recall.OfDataset(evalKNNG, samples)
	fmt.Printf("recall: %.6f (%d samples)\n", score, len(samples))
}
