package monitor

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Laisky/errors/v2"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "apitest"

var (
	enabled      atomic.Bool
	registerOnce sync.Once
	registerErr  error

	runsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Test runs by outcome (passed, failed, error).",
	}, []string{"outcome"})

	endpointResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "endpoint_results_total",
		Help:      "Endpoint checks by final status.",
	}, []string{"status"})

	endpointDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "endpoint_duration_seconds",
		Help:      "Round trip time of requests against the target API.",
		Buckets:   prometheus.DefBuckets,
	})

	planSourceTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "plan_source_total",
		Help:      "Plans by the path that produced them (llm, fallback, file).",
	}, []string{"source"})

	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Requests served by the task API.",
	}, []string{"path", "code"})
)

// InitPrometheusMonitoring registers the collectors with reg and turns recording on.
// Only the first call registers; later calls return the first result.
func InitPrometheusMonitoring(reg prometheus.Registerer) error {
	registerOnce.Do(func() {
		for _, c := range []prometheus.Collector{
			runsTotal, endpointResultsTotal, endpointDuration, planSourceTotal, httpRequestsTotal,
		} {
			if err := reg.Register(c); err != nil {
				registerErr = errors.Wrap(err, "register prometheus collector")
				return
			}
		}
		enabled.Store(true)
	})
	return registerErr
}

// Enabled reports whether metrics are being recorded.
func Enabled() bool { return enabled.Load() }

func RecordRun(outcome string) {
	if !enabled.Load() {
		return
	}
	runsTotal.WithLabelValues(outcome).Inc()
}

func RecordEndpoint(status string, elapsedMs float64) {
	if !enabled.Load() {
		return
	}
	endpointResultsTotal.WithLabelValues(status).Inc()
	endpointDuration.Observe(elapsedMs / 1000)
}

func RecordPlanSource(source string) {
	if !enabled.Load() {
		return
	}
	planSourceTotal.WithLabelValues(source).Inc()
}

func RecordHTTPRequest(path string, code int) {
	if !enabled.Load() {
		return
	}
	httpRequestsTotal.WithLabelValues(path, strconv.Itoa(code)).Inc()
}
