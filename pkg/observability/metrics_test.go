package observability

import (
	"testing"
	"time"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	t.Run("NewMetrics", func(t *testing.T) {
		if m == nil {
			t.Fatal("NewMetrics returned nil")
		}
		if m.PhaseDuration == nil {
			t.Error("PhaseDuration not initialized")
		}
		if m.BULevel == nil {
			t.Error("BULevel not initialized")
		}
		if m.PointsProcessed == nil {
			t.Error("PointsProcessed not initialized")
		}
		if m.RecallScore == nil {
			t.Error("RecallScore not initialized")
		}
	})

	t.Run("RecordPhase", func(t *testing.T) {
		m.RecordPhase("clustering", 1, 2*time.Second)
		m.RecordPhase("bottom_up", 2, 5*time.Second)
		m.RecordPhase("top_down", 3, 10*time.Second)
	})

	t.Run("RecordBULevel", func(t *testing.T) {
		m.RecordBULevel(0, 10000)
		m.RecordBULevel(1, 500)
		m.RecordBULevel(2, 25)
	})

	t.Run("RecordTDLevelsRemaining", func(t *testing.T) {
		m.RecordTDLevelsRemaining(3)
		m.RecordTDLevelsRemaining(2)
		m.RecordTDLevelsRemaining(0)
	})

	t.Run("RecordPointsProcessed", func(t *testing.T) {
		m.RecordPointsProcessed(1)
		for i := 0; i < 100; i++ {
			m.RecordPointsProcessed(1)
		}
	})

	t.Run("SetPointsTotal", func(t *testing.T) {
		m.SetPointsTotal(1000000)
	})

	t.Run("RecordNeighborOffers", func(t *testing.T) {
		m.RecordNeighborOffers(50)
		m.RecordNeighborOffers(75)
	})

	t.Run("SetRecallScore", func(t *testing.T) {
		m.SetRecallScore(0.94)
		m.SetRecallScore(0.97)
	})

	t.Run("RecordOutputEdges", func(t *testing.T) {
		m.RecordOutputEdges(1000)
	})

	t.Run("RecordError", func(t *testing.T) {
		m.RecordError("config")
		m.RecordError("io")
		m.RecordError("domain")
	})

	t.Run("UpdateSystemMetrics", func(t *testing.T) {
		m.UpdateGoroutineCount(100)
		m.UpdateMemoryUsage(1024 * 1024 * 512)

		for i := 0; i < 10; i++ {
			m.UpdateGoroutineCount(100 + i*10)
			m.UpdateMemoryUsage(uint64(1024 * 1024 * (500 + i*100)))
		}
	})
}

func TestConcurrentMetricUpdates(t *testing.T) {
	m := NewMetrics()
	done := make(chan bool, 10)

	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 10; j++ {
				m.RecordPointsProcessed(1)
				m.RecordNeighborOffers(1)
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
