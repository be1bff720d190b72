package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunStats_RecordRun(t *testing.T) {
	rs := NewRunStats(10)

	rs.RecordRun(RunMetric{Outcome: "ranked", Recommendations: 5, Duration: 40 * time.Millisecond})
	rs.RecordRun(RunMetric{Outcome: "not_found", Duration: 10 * time.Millisecond})
	rs.RecordRun(RunMetric{Outcome: "no_recommendations", Duration: 20 * time.Millisecond})
	rs.RecordRun(RunMetric{Err: true, Duration: 30 * time.Millisecond})

	stats := rs.GetStats()
	assert.Equal(t, int64(4), stats["total_runs"])
	assert.Equal(t, int64(1), stats["ranked"])
	assert.Equal(t, int64(1), stats["not_found"])
	assert.Equal(t, int64(1), stats["no_recommendations"])
	assert.Equal(t, int64(1), stats["error_count"])
	assert.Equal(t, 25.0, stats["error_rate"])
	assert.Equal(t, int64(5), stats["total_recommendations"])
	assert.Equal(t, int64(10), stats["min_run_time_ms"])
	assert.Equal(t, int64(40), stats["max_run_time_ms"])
	assert.Equal(t, 25.0, stats["avg_run_time_ms"])
	assert.Equal(t, int64(30), stats["p50_run_time_ms"])
}

func TestRunStats_WindowKeepsRecentTimings(t *testing.T) {
	rs := NewRunStats(2)

	for _, ms := range []int{100, 1, 2} {
		rs.RecordRun(RunMetric{Outcome: "ranked", Duration: time.Duration(ms) * time.Millisecond})
	}

	stats := rs.GetStats()
	assert.Equal(t, int64(2), stats["p99_run_time_ms"])
	assert.Equal(t, int64(100), stats["max_run_time_ms"])
}

func TestRunStats_Reset(t *testing.T) {
	rs := NewRunStats(10)
	rs.RecordRun(RunMetric{Outcome: "ranked", Duration: time.Millisecond})

	rs.Reset()

	stats := rs.GetStats()
	assert.Equal(t, int64(0), stats["total_runs"])
	assert.Equal(t, int64(0), stats["p50_run_time_ms"])
}

func TestRunStats_Concurrent(t *testing.T) {
	rs := NewRunStats(50)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				rs.RecordRun(RunMetric{Outcome: "ranked", Recommendations: 1, Duration: time.Millisecond})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(200), rs.GetStats()["total_runs"])
	assert.Equal(t, int64(200), rs.GetStats()["total_recommendations"])
}
