// Package metrics holds the Prometheus collectors shared by the server and
// the application services. A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
	ResultNoop  = "noop"
	ResultStale = "stale"
)

// Metrics bundles every collector on its own registry.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	TreeMutations   *prometheus.CounterVec
	RemoteSyncs     *prometheus.CounterVec
	Exports         *prometheus.CounterVec
	StorageOps      *prometheus.CounterVec
	ViewSessions    prometheus.Gauge
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		TreeMutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "giapha_tree_mutations_total",
				Help: "Family tree mutations by operation and result",
			},
			[]string{"op", "result"},
		),
		RemoteSyncs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "giapha_remote_sync_total",
				Help: "Remote document sync attempts by result",
			},
			[]string{"result"},
		),
		Exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "giapha_exports_total",
				Help: "Tree exports by format and result",
			},
			[]string{"format", "result"},
		),
		StorageOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "giapha_storage_ops_total",
				Help: "Blob store operations by driver, operation and result",
			},
			[]string{"driver", "op", "result"},
		),
		ViewSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "giapha_view_sessions",
			Help: "Open tree view sessions",
		}),
	}

	registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.TreeMutations,
		m.RemoteSyncs,
		m.Exports,
		m.StorageOps,
		m.ViewSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

// TreeMutation counts one tree mutation.
func (m *Metrics) TreeMutation(op, res string) {
	if m == nil {
		return
	}
	m.TreeMutations.WithLabelValues(op, res).Inc()
}

// RemoteSync counts one sync attempt.
func (m *Metrics) RemoteSync(res string) {
	if m == nil {
		return
	}
	m.RemoteSyncs.WithLabelValues(res).Inc()
}

// Export counts one export.
func (m *Metrics) Export(format string, err error) {
	if m == nil {
		return
	}
	m.Exports.WithLabelValues(format, result(err)).Inc()
}

// StorageOp counts one blob store call.
func (m *Metrics) StorageOp(driver, op string, err error) {
	if m == nil {
		return
	}
	m.StorageOps.WithLabelValues(driver, op, result(err)).Inc()
}

// SetViewSessions records the number of open view sessions.
func (m *Metrics) SetViewSessions(n int) {
	if m == nil {
		return
	}
	m.ViewSessions.Set(float64(n))
}
