package metrics_test

import (
	"errors"
	"github.com/myrjola/crimewatch/internal/metrics"
	"github.com/stretchr/testify/require"
	"net/http/httptest"
	"testing"
)

func TestMetrics(t *testing.T) {
	m := metrics.New()
	m.ReportSubmissions.WithLabelValues(metrics.Result(nil)).Inc()
	m.ReportSubmissions.WithLabelValues(metrics.Result(errors.New("boom"))).Inc()
	m.ReportSubmissions.WithLabelValues("ok").Inc()

	// Independent registries do not collide.
	_ = metrics.New()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `crimewatch_report_submissions_total{result="ok"} 2`)
	require.Contains(t, body, `crimewatch_report_submissions_total{result="error"} 1`)
	require.Contains(t, body, "go_goroutines")
}
