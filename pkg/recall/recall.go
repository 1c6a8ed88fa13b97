// Package recall scores an evaluated k-NNG against a ground-truth sample,
// matching the conventional recall_of_point / recall_of_points pairing.
package recall

import "github.com/therealutkarshpriyadarshi/vector/pkg/datasetio"

// OfPoint returns the fraction of trueKNN present in evalKNN. Both slices
// must hold exactly k entries.
func OfPoint(evalKNN, trueKNN []uint32) float64 {
	present := make(map[uint32]bool, len(evalKNN))
	for _, id := range evalKNN {
		present[id] = true
	}

	correct := 0
	for _, id := range trueKNN {
		if present[id] {
			correct++
		}
	}
	return float64(correct) / float64(len(trueKNN))
}

// OfDataset scores evalKNG (indexed by point id) against every sample in
// the ground-truth set, returning the mean per-point recall.
func OfDataset(evalKNG [][]uint32, samples []datasetio.GroundTruthSample) float64 {
	if len(samples) == 0 {
		return 0
	}

	var total float64
	for _, s := range samples {
		total += OfPoint(evalKNG[s.SampleID], s.Neighbors)
	}
	return total / float64(len(samples))
}
