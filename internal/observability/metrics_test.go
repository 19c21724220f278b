package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/enquiries", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/api/enquiries", "GET", 200, 30*time.Millisecond)
	m.RecordError("/api/enquiries/:id", "GET", "NOT_FOUND")

	snap := m.Snapshot()
	require.Equal(t, int64(2), snap.Requests["/api/enquiries|GET|200"])
	require.Equal(t, int64(20), snap.AvgLatencyMs["/api/enquiries|GET|200"])
	require.Equal(t, int64(1), snap.Errors["/api/enquiries/:id|GET|NOT_FOUND"])

	snap.Requests["/api/enquiries|GET|200"] = 99
	require.Equal(t, int64(2), m.Snapshot().Requests["/api/enquiries|GET|200"])
}

func TestNilMetricsIgnoresRecords(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
	})
}
