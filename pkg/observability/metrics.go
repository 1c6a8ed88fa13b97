package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors exported by a construction run.
type Metrics struct {
	// Phase metrics
	PhaseDuration *prometheus.HistogramVec
	CurrentPhase  prometheus.Gauge

	// BU/TD progress metrics
	BULevel           prometheus.Gauge
	BUPartitionSize   prometheus.Gauge
	TDLevelsRemaining prometheus.Gauge

	// Throughput metrics
	PointsProcessed prometheus.Counter
	PointsTotal     prometheus.Gauge
	NeighborOffers  prometheus.Counter

	// Output metrics
	RecallScore     prometheus.Gauge
	OutputEdges     prometheus.Counter
	ConstructErrors *prometheus.CounterVec

	// System metrics
	GoroutinesCount prometheus.Gauge
	MemoryUsage     prometheus.Gauge
}

// NewMetrics creates and registers every construction-run collector.
func NewMetrics() *Metrics {
	return &Metrics{
		PhaseDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "knng_phase_duration_seconds",
				Help:    "Duration of each construction phase in seconds",
				Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"phase"},
		),
		CurrentPhase: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "knng_current_phase",
				Help: "Numeric code of the phase currently executing (see driver.Phase)",
			},
		),

		BULevel: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "knng_bu_level",
				Help: "Number of bottom-up hierarchy levels built by the most recently finished worker",
			},
		),
		BUPartitionSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "knng_bu_partition_size",
				Help: "Configured bottom-up partition size",
			},
		),
		TDLevelsRemaining: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "knng_td_levels_remaining",
				Help: "Number of top-down refinement levels still to process",
			},
		),

		PointsProcessed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "knng_points_processed_total",
				Help: "Total number of points that have completed neighbor assignment",
			},
		),
		PointsTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "knng_points_total",
				Help: "Total number of points in the dataset being processed",
			},
		),
		NeighborOffers: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "knng_neighbor_offers_total",
				Help: "Total number of candidate neighbor offers made to per-point heaps",
			},
		),

		RecallScore: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "knng_recall_score",
				Help: "Most recent recall score computed against a ground-truth sample",
			},
		),
		OutputEdges: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "knng_output_edges_total",
				Help: "Total number of k-NNG edges written to the output file",
			},
		),
		ConstructErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "knng_construct_errors_total",
				Help: "Total number of errors by kind encountered during construction",
			},
			[]string{"kind"},
		),

		GoroutinesCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "knng_goroutines",
				Help: "Current number of goroutines",
			},
		),
		MemoryUsage: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "knng_memory_bytes",
				Help: "Memory usage in bytes",
			},
		),
	}
}

// RecordPhase records a completed phase's duration and advances CurrentPhase.
func (m *Metrics) RecordPhase(phase string, phaseCode int, duration time.Duration) {
	m.PhaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
	m.CurrentPhase.Set(float64(phaseCode))
}

// RecordBULevel sets the bottom-up gauges to a worker's built level count
// and the configured partition size.
func (m *Metrics) RecordBULevel(level int, partitionSize int) {
	m.BULevel.Set(float64(level))
	m.BUPartitionSize.Set(float64(partitionSize))
}

// RecordTDLevelsRemaining updates the top-down progress gauge.
func (m *Metrics) RecordTDLevelsRemaining(remaining int) {
	m.TDLevelsRemaining.Set(float64(remaining))
}

// RecordPointsProcessed adds to the processed-points counter.
func (m *Metrics) RecordPointsProcessed(count int) {
	m.PointsProcessed.Add(float64(count))
}

// SetPointsTotal sets the dataset's total point count.
func (m *Metrics) SetPointsTotal(count int) {
	m.PointsTotal.Set(float64(count))
}

// RecordNeighborOffers adds to the neighbor-offer counter.
func (m *Metrics) RecordNeighborOffers(count int) {
	m.NeighborOffers.Add(float64(count))
}

// SetRecallScore records the most recent recall evaluation.
func (m *Metrics) SetRecallScore(score float64) {
	m.RecallScore.Set(score)
}

// RecordOutputEdges adds to the emitted-edge counter.
func (m *Metrics) RecordOutputEdges(count int) {
	m.OutputEdges.Add(float64(count))
}

// RecordError records an error by kind.
func (m *Metrics) RecordError(kind string) {
	m.ConstructErrors.WithLabelValues(kind).Inc()
}

// UpdateGoroutineCount updates the goroutine gauge.
func (m *Metrics) UpdateGoroutineCount(count int) {
	m.GoroutinesCount.Set(float64(count))
}

// UpdateMemoryUsage updates the memory-usage gauge.
func (m *Metrics) UpdateMemoryUsage(bytes uint64) {
	m.MemoryUsage.Set(float64(bytes))
}
