package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics stores process counters
type Metrics struct {
	RequestsTotal  uint64
	RequestsFailed uint64
	ScansRecorded  uint64
	CodesIssued    uint64
	StartTime      time.Time
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

func IncrementRequests()      { atomic.AddUint64(&globalMetrics.RequestsTotal, 1) }
func IncrementFailed()        { atomic.AddUint64(&globalMetrics.RequestsFailed, 1) }
func IncrementScansRecorded() { atomic.AddUint64(&globalMetrics.ScansRecorded, 1) }
func IncrementCodesIssued()   { atomic.AddUint64(&globalMetrics.CodesIssued, 1) }

// CountRequests middleware tracks request totals and failures.
func CountRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		IncrementRequests()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		if wrapped.statusCode >= 500 {
			IncrementFailed()
		}
	})
}

// MetricsHandler exposes the counters as JSON.
// sessionCount is polled live from the realtime hub.
func MetricsHandler(sessionCount func() int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		out := map[string]any{
			"requests_total":     atomic.LoadUint64(&globalMetrics.RequestsTotal),
			"requests_failed":    atomic.LoadUint64(&globalMetrics.RequestsFailed),
			"scans_recorded":     atomic.LoadUint64(&globalMetrics.ScansRecorded),
			"codes_issued":       atomic.LoadUint64(&globalMetrics.CodesIssued),
			"sessions_connected": sessionCount(),
			"uptime_seconds":     int64(time.Since(globalMetrics.StartTime).Seconds()),
			"goroutines":         runtime.NumGoroutine(),
			"heap_alloc_bytes":   mem.HeapAlloc,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	}
}
