package metrics

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// RunStats keeps in-process totals for recommendation runs, served as JSON
// next to the Prometheus endpoint.
type RunStats struct {
	RunCount               int64
	RankedCount            int64
	NotFoundCount          int64
	NoRecommendationsCount int64
	ErrorCount             int64
	TotalRecommendations   int64

	// Durations in milliseconds
	TotalRunTime int64
	MaxRunTime   int64
	MinRunTime   int64

	mu             sync.RWMutex
	runTimings     []int64 // ring of recent timings for percentiles
	next           int
	maxTimingsSize int
}

// RunMetric describes one finished run. Outcome is empty when Err is set.
type RunMetric struct {
	Outcome         string
	Recommendations int
	Duration        time.Duration
	Err             bool
}

var (
	runStats     *RunStats
	runStatsOnce sync.Once
)

// GetRunStats returns the process-wide RunStats
func GetRunStats() *RunStats {
	runStatsOnce.Do(func() {
		runStats = NewRunStats(1000)
	})
	return runStats
}

// NewRunStats creates a tracker that keeps the last window timings
func NewRunStats(window int) *RunStats {
	if window <= 0 {
		window = 1000
	}
	return &RunStats{
		runTimings:     make([]int64, 0, window),
		maxTimingsSize: window,
	}
}

// RecordRun records a finished run
func (rs *RunStats) RecordRun(m RunMetric) {
	atomic.AddInt64(&rs.RunCount, 1)

	if m.Err {
		atomic.AddInt64(&rs.ErrorCount, 1)
	} else {
		switch m.Outcome {
		case "ranked":
			atomic.AddInt64(&rs.RankedCount, 1)
		case "not_found":
			atomic.AddInt64(&rs.NotFoundCount, 1)
		case "no_recommendations":
			atomic.AddInt64(&rs.NoRecommendationsCount, 1)
		}
		atomic.AddInt64(&rs.TotalRecommendations, int64(m.Recommendations))
	}

	durationMs := m.Duration.Milliseconds()
	atomic.AddInt64(&rs.TotalRunTime, durationMs)
	rs.updateMinMax(durationMs)

	rs.mu.Lock()
	if len(rs.runTimings) < rs.maxTimingsSize {
		rs.runTimings = append(rs.runTimings, durationMs)
	} else {
		rs.runTimings[rs.next] = durationMs
		rs.next = (rs.next + 1) % rs.maxTimingsSize
	}
	rs.mu.Unlock()
}

// updateMinMax updates min and max run times. MinRunTime of 0 means unset.
func (rs *RunStats) updateMinMax(duration int64) {
	for {
		oldMin := atomic.LoadInt64(&rs.MinRunTime)
		if oldMin != 0 && duration >= oldMin {
			break
		}
		if atomic.CompareAndSwapInt64(&rs.MinRunTime, oldMin, duration) {
			break
		}
	}

	for {
		oldMax := atomic.LoadInt64(&rs.MaxRunTime)
		if duration <= oldMax {
			break
		}
		if atomic.CompareAndSwapInt64(&rs.MaxRunTime, oldMax, duration) {
			break
		}
	}
}

// GetStats returns current totals as a map
func (rs *RunStats) GetStats() map[string]interface{} {
	runCount := atomic.LoadInt64(&rs.RunCount)
	totalTime := atomic.LoadInt64(&rs.TotalRunTime)
	errors := atomic.LoadInt64(&rs.ErrorCount)

	var avgTime, errorRate float64
	if runCount > 0 {
		avgTime = float64(totalTime) / float64(runCount)
		errorRate = float64(errors) / float64(runCount) * 100
	}

	rs.mu.RLock()
	p50, p95, p99 := rs.calculatePercentiles()
	rs.mu.RUnlock()

	return map[string]interface{}{
		"total_runs":            runCount,
		"ranked":                atomic.LoadInt64(&rs.RankedCount),
		"not_found":             atomic.LoadInt64(&rs.NotFoundCount),
		"no_recommendations":    atomic.LoadInt64(&rs.NoRecommendationsCount),
		"error_count":           errors,
		"error_rate":            errorRate,
		"total_recommendations": atomic.LoadInt64(&rs.TotalRecommendations),
		"avg_run_time_ms":       avgTime,
		"min_run_time_ms":       atomic.LoadInt64(&rs.MinRunTime),
		"max_run_time_ms":       atomic.LoadInt64(&rs.MaxRunTime),
		"p50_run_time_ms":       p50,
		"p95_run_time_ms":       p95,
		"p99_run_time_ms":       p99,
		"timestamp":             time.Now().Unix(),
	}
}

// calculatePercentiles expects mu to be held
func (rs *RunStats) calculatePercentiles() (p50, p95, p99 int64) {
	if len(rs.runTimings) == 0 {
		return 0, 0, 0
	}

	timings := slices.Clone(rs.runTimings)
	slices.Sort(timings)

	n := len(timings)
	return timings[(n*50)/100], timings[(n*95)/100], timings[(n*99)/100]
}

// Reset clears all totals
func (rs *RunStats) Reset() {
	for _, p := range []*int64{
		&rs.RunCount, &rs.RankedCount, &rs.NotFoundCount, &rs.NoRecommendationsCount,
		&rs.ErrorCount, &rs.TotalRecommendations, &rs.TotalRunTime, &rs.MaxRunTime, &rs.MinRunTime,
	} {
		atomic.StoreInt64(p, 0)
	}

	rs.mu.Lock()
	rs.runTimings = rs.runTimings[:0]
	rs.next = 0
	rs.mu.Unlock()
}
