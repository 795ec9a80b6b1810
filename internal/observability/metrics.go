package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	sessionsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fbvnc",
			Subsystem: "server",
			Name:      "sessions_total",
			Help:      "Viewer sessions started, by transport.",
		},
		[]string{"transport"},
	)
	sessionsEnded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fbvnc",
			Subsystem: "server",
			Name:      "session_teardowns_total",
			Help:      "Viewer sessions torn down, by transport and cause.",
		},
		[]string{"transport", "cause"},
	)
	framesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fbvnc",
			Subsystem: "stream",
			Name:      "frames_sent_total",
			Help:      "Full-frame updates transmitted.",
		},
	)
	frameBytesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fbvnc",
			Subsystem: "stream",
			Name:      "frame_bytes_sent_total",
			Help:      "Bytes of update headers and pixel data transmitted.",
		},
	)
	frameDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fbvnc",
			Subsystem: "stream",
			Name:      "frame_transmit_duration_seconds",
			Help:      "Time spent transmitting one full-frame update.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fbvnc",
			Subsystem: "ops",
			Name:      "requests_total",
			Help:      "Total ops endpoint HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fbvnc",
			Subsystem: "ops",
			Name:      "request_duration_seconds",
			Help:      "Ops endpoint HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			sessionsStarted, sessionsEnded,
			framesSent, frameBytesSent, frameDuration,
			httpRequests, httpDuration,
		)
	})
}

func RecordSessionStart(transport string) {
	RegisterMetrics()
	sessionsStarted.WithLabelValues(transport).Inc()
}

func RecordSessionEnd(transport, cause string) {
	RegisterMetrics()
	sessionsEnded.WithLabelValues(transport, cause).Inc()
}

func RecordFrame(bytes int, duration time.Duration) {
	RegisterMetrics()
	framesSent.Inc()
	frameBytesSent.Add(float64(bytes))
	frameDuration.Observe(duration.Seconds())
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}
