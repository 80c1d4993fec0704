package metrics

import (
	"net/http"
	"strconv"
	"time"

	"rugpull-detector/internal/domain/entity"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rugpull"

// Collector holds the detector's Prometheus collectors
type Collector struct {
	registry      *prometheus.Registry
	detections    *prometheus.CounterVec
	findings      *prometheus.CounterVec
	stepErrors    *prometheus.CounterVec
	analysisTime  prometheus.Histogram
	requestErrors *prometheus.CounterVec
}

// NewCollector creates collectors registered on a dedicated registry
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		detections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detections_total",
			Help:      "Analyzed transactions by verdict.",
		}, []string{"detected"}),
		findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "findings_total",
			Help:      "Reported findings by risk type and severity.",
		}, []string{"type", "severity"}),
		stepErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_errors_total",
			Help:      "Analysis steps that failed, by step.",
		}, []string{"step"}),
		analysisTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time spent analyzing a single trace.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		requestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_errors_total",
			Help:      "Requests rejected before analysis, by transport.",
		}, []string{"transport"}),
	}

	c.registry.MustRegister(
		c.detections,
		c.findings,
		c.stepErrors,
		c.analysisTime,
		c.requestErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveVerdict records a verdict produced by the detector
func (c *Collector) ObserveVerdict(verdict *entity.Verdict, elapsed time.Duration) {
	c.detections.WithLabelValues(strconv.FormatBool(verdict.Detected)).Inc()
	for _, f := range verdict.Findings {
		c.findings.WithLabelValues(string(f.Type), string(f.Severity)).Inc()
	}
	for _, step := range verdict.FailedSteps {
		c.stepErrors.WithLabelValues(step).Inc()
	}
	c.analysisTime.Observe(elapsed.Seconds())
}

// RequestRejected records a request that could not be decoded
func (c *Collector) RequestRejected(transport string) {
	c.requestErrors.WithLabelValues(transport).Inc()
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns the HTTP handler serving the collected metrics
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
