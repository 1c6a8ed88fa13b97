package driver

import (
	"github.com/therealutkarshpriyadarshi/vector/pkg/datasetio"
	"github.com/therealutkarshpriyadarshi/vector/pkg/knngerr"
)

// Emit drains every point's neighbor heap (farthest-first, per the k-NNG
// output contract) and writes the result to outputPath. Call it after Run
// has completed; draining is destructive, so Run must not be called again
// afterward.
func (d *Driver) Emit(outputPath string) error {
	d.setPhase(PhaseEmitting)

	n := d.store.Len()
	neighbors := make([][]uint32, n)
	for i := 0; i < n; i++ {
		drained := d.store.At(uint32(i)).Heap().Drain()
		if len(drained) != d.store.K() {
			return knngerr.New(knngerr.Domain, "point %d has %d neighbors at emit time, want %d", i, len(drained), d.store.K())
		}
		neighbors[i] = drained
	}

	if err := datasetio.WriteKNNG(outputPath, neighbors); err != nil {
		return err
	}
	if d.metrics != nil {
		d.metrics.RecordOutputEdges(n * d.store.K())
	}

	d.setPhase(PhaseDone)
	return nil
}
