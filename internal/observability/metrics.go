package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type moduleMetrics struct {
	recordsWritten *prometheus.CounterVec
	recordsDropped *prometheus.CounterVec
	writeDuration  prometheus.Histogram

	sessionsStarted     prometheus.Counter
	sessionsEnded       prometheus.Counter
	sessionOpenFailures prometheus.Counter

	viewerClients    prometheus.Gauge
	viewerBroadcasts prometheus.Counter
}

var (
	metricsOnce sync.Once
	metricsInst *moduleMetrics
)

func getMetrics() *moduleMetrics {
	metricsOnce.Do(func() {
		m := &moduleMetrics{
			recordsWritten: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "chronotrace_records_written_total",
					Help: "Total trace records written by session.",
				},
				[]string{"session"},
			),
			recordsDropped: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "chronotrace_records_dropped_total",
					Help: "Total trace records dropped by reason.",
				},
				[]string{"reason"},
			),
			writeDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name: "chronotrace_record_write_duration_seconds",
					Help: "Record serialization and write duration in seconds.",
					// Write path is microsecond scale, default buckets start too high.
					Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
				},
			),
			sessionsStarted: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "chronotrace_sessions_started_total",
					Help: "Total recording sessions started.",
				},
			),
			sessionsEnded: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "chronotrace_sessions_ended_total",
					Help: "Total recording sessions ended.",
				},
			),
			sessionOpenFailures: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "chronotrace_session_open_failures_total",
					Help: "Total sessions that failed to open their output file.",
				},
			),
			viewerClients: prometheus.NewGauge(
				prometheus.GaugeOpts{
					Name: "chronotrace_viewer_clients",
					Help: "Currently connected viewer websocket clients.",
				},
			),
			viewerBroadcasts: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "chronotrace_viewer_broadcasts_total",
					Help: "Total trace reload broadcasts sent to viewer clients.",
				},
			),
		}

		prometheus.MustRegister(
			m.recordsWritten,
			m.recordsDropped,
			m.writeDuration,
			m.sessionsStarted,
			m.sessionsEnded,
			m.sessionOpenFailures,
			m.viewerClients,
			m.viewerBroadcasts,
		)

		metricsInst = m
	})

	return metricsInst
}

// EnsureRegistered initializes and registers metrics the first time it is called.
func EnsureRegistered() {
	_ = getMetrics()
}

func MetricsHandler() http.Handler {
	EnsureRegistered()
	return promhttp.Handler()
}

func RecordWrite(session string, duration time.Duration) {
	m := getMetrics()
	m.recordsWritten.WithLabelValues(session).Inc()
	m.writeDuration.Observe(duration.Seconds())
}

func RecordDrop(reason string) {
	m := getMetrics()
	m.recordsDropped.WithLabelValues(reason).Inc()
}

func RecordSessionStart() {
	m := getMetrics()
	m.sessionsStarted.Inc()
}

func RecordSessionEnd() {
	m := getMetrics()
	m.sessionsEnded.Inc()
}

func RecordSessionOpenFailure() {
	m := getMetrics()
	m.sessionOpenFailures.Inc()
}

func SetViewerClients(count int) {
	m := getMetrics()
	m.viewerClients.Set(float64(count))
}

func RecordBroadcast() {
	m := getMetrics()
	m.viewerBroadcasts.Inc()
}
