package monitor

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// The package keeps process-wide state, so the disabled and enabled phases run in one test.
func TestRecordingLifecycle(t *testing.T) {
	require.False(t, Enabled())
	RecordRun("passed")
	require.Equal(t, 0.0, testutil.ToFloat64(runsTotal.WithLabelValues("passed")))

	reg := prometheus.NewRegistry()
	require.NoError(t, InitPrometheusMonitoring(reg))
	require.True(t, Enabled())
	require.NoError(t, InitPrometheusMonitoring(reg))

	RecordRun("passed")
	RecordRun("failed")
	RecordEndpoint("PASSED", 120)
	RecordPlanSource("fallback")
	RecordHTTPRequest("/task", 200)

	require.Equal(t, 1.0, testutil.ToFloat64(runsTotal.WithLabelValues("passed")))
	require.Equal(t, 1.0, testutil.ToFloat64(runsTotal.WithLabelValues("failed")))
	require.Equal(t, 1.0, testutil.ToFloat64(endpointResultsTotal.WithLabelValues("PASSED")))
	require.Equal(t, 1.0, testutil.ToFloat64(planSourceTotal.WithLabelValues("fallback")))
	require.Equal(t, 1.0, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/task", "200")))
	require.Equal(t, 1, testutil.CollectAndCount(endpointDuration))
}
