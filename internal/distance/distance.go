// Package distance implements the comparison-only distance kernel used to
// order candidate neighbors during k-NNG construction.
package distance

// SquaredEuclidean returns the sum of squared per-dimension differences
// between a and b. It is never square-rooted: the result is used only to
// order candidates by distance, never surfaced as a reported metric.
//
// a and b must have equal length; this is a build-time invariant of the
// dataset (fixed dimension D) and is not checked on the hot path.
func SquaredEuclidean(a, b []float32) float32 {
	var sum float32

	n := len(a)
	i := 0
	for ; i+4 <= n; i += 4 {
		d0 := a[i] - b[i]
		d1 := a[i+1] - b[i+1]
		d2 := a[i+2] - b[i+2]
		d3 := a[i+3] - b[i+3]
		sum += d0*d0 + d1*d1 + d2*d2 + d3*d3
	}
	for ; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}

	return sum
}
