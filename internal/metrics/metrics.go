// Package metrics exposes the Prometheus metrics of the web server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

const namespace = "crimewatch"

// Metrics uses its own registry so that parallel test servers do not collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	RequestDuration   *prometheus.HistogramVec
	WizardOperations  *prometheus.CounterVec
	ReportSubmissions *prometheus.CounterVec
	StatusUpdates     *prometheus.CounterVec
	JobRuns           *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), //nolint:exhaustruct // defaults
	)

	m := &Metrics{
		registry: registry,
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{ //nolint:exhaustruct // defaults
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "pattern", "code"}),
		WizardOperations: prometheus.NewCounterVec(prometheus.CounterOpts{ //nolint:exhaustruct // defaults
			Namespace: namespace,
			Name:      "wizard_operations_total",
			Help:      "Report wizard operations by kind and outcome.",
		}, []string{"operation", "outcome"}),
		ReportSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{ //nolint:exhaustruct // defaults
			Namespace: namespace,
			Name:      "report_submissions_total",
			Help:      "Report submissions to the backend by result.",
		}, []string{"result"}),
		StatusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{ //nolint:exhaustruct // defaults
			Namespace: namespace,
			Name:      "status_updates_total",
			Help:      "Admin status updates by new status and result.",
		}, []string{"status", "result"}),
		JobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{ //nolint:exhaustruct // defaults
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Scheduled maintenance job runs by job and result.",
		}, []string{"job", "result"}),
	}
	registry.MustRegister(m.RequestDuration, m.WizardOperations, m.ReportSubmissions, m.StatusUpdates, m.JobRuns)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}) //nolint:exhaustruct // defaults
}

// Result maps an error to the "ok" or "error" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
