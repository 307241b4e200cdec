package observability_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hotspots-dev/hotspots/internal/observability"
)

func TestHandlerServesRegisteredMetrics(t *testing.T) {
	m := observability.New()
	m.FilesAnalyzedTotal.Add(3)
	m.ParseErrorsTotal.Inc()
	m.PolicyViolationsTotal.WithLabelValues("warning").Inc()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "hotspots_files_analyzed_total 3")
	require.Contains(t, body, "hotspots_parse_errors_total 1")
	require.Contains(t, body, `hotspots_policy_violations_total{severity="warning"} 1`)
}

func TestNewReturnsIndependentRegistries(t *testing.T) {
	a := observability.New()
	b := observability.New()

	a.FilesAnalyzedTotal.Add(5)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	b.Handler().ServeHTTP(rec, req)

	require.NotContains(t, rec.Body.String(), "hotspots_files_analyzed_total 5")
}
