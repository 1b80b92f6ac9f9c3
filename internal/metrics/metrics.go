package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the outreach service.
// All Track methods are safe on a nil receiver so callers can run without
// metrics enabled.
type Metrics struct {
	// Sequence and funnel counters
	TouchpointsCreatedTotal *prometheus.CounterVec
	TouchpointsCancelled    prometheus.Counter
	FunnelTransitionsTotal  *prometheus.CounterVec
	ResponsesTotal          *prometheus.CounterVec
	AnomalousResponsesTotal *prometheus.CounterVec
	GeneratorFailuresTotal  prometheus.Counter
	ConversionReportsTotal  *prometheus.CounterVec

	// Queue gauges
	QueuePending prometheus.Gauge
	QueueDue     prometheus.Gauge

	// API metrics
	APIRequestsTotal          *prometheus.CounterVec
	APIRequestDurationSeconds *prometheus.HistogramVec
	APIErrorsTotal            *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates a Metrics instance with all collectors registered on a
// private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		TouchpointsCreatedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outreach_touchpoints_created_total",
				Help: "Total number of touchpoints materialized by sequence initialization",
			},
			[]string{"channel"},
		),
		TouchpointsCancelled: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "outreach_touchpoints_cancelled_total",
				Help: "Total number of touchpoints cancelled after a response",
			},
		),
		FunnelTransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outreach_funnel_transitions_total",
				Help: "Total number of campaign contact status transitions",
			},
			[]string{"to"},
		),
		ResponsesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outreach_responses_total",
				Help: "Total number of responses logged",
			},
			[]string{"action"},
		),
		AnomalousResponsesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outreach_responses_anomalous_total",
				Help: "Responses whose action is handled by a fallback rule",
			},
			[]string{"action"},
		),
		GeneratorFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "outreach_generator_failures_total",
				Help: "Total number of message generation failures during personalization",
			},
		),
		ConversionReportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outreach_conversion_reports_total",
				Help: "Conversion reports sent to the project tracker",
			},
			[]string{"result"},
		),

		QueuePending: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "outreach_queue_pending",
				Help: "Touchpoints awaiting approval",
			},
		),
		QueueDue: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "outreach_queue_due",
				Help: "Approved touchpoints whose scheduled time has passed",
			},
		),

		APIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outreach_api_requests_total",
				Help: "Total number of HTTP API requests",
			},
			[]string{"method", "path", "status"},
		),
		APIRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "outreach_api_request_duration_seconds",
				Help:    "HTTP API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		APIErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outreach_api_errors_total",
				Help: "Total number of HTTP API errors",
			},
			[]string{"type"},
		),

		registry: reg,
	}

	reg.MustRegister(
		m.TouchpointsCreatedTotal,
		m.TouchpointsCancelled,
		m.FunnelTransitionsTotal,
		m.ResponsesTotal,
		m.AnomalousResponsesTotal,
		m.GeneratorFailuresTotal,
		m.ConversionReportsTotal,
		m.QueuePending,
		m.QueueDue,
		m.APIRequestsTotal,
		m.APIRequestDurationSeconds,
		m.APIErrorsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) TrackTouchpointCreated(channel string) {
	if m == nil {
		return
	}
	m.TouchpointsCreatedTotal.WithLabelValues(channel).Inc()
}

func (m *Metrics) TrackTouchpointsCancelled(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.TouchpointsCancelled.Add(float64(n))
}

func (m *Metrics) TrackTransition(to string) {
	if m == nil {
		return
	}
	m.FunnelTransitionsTotal.WithLabelValues(to).Inc()
}

func (m *Metrics) TrackResponse(action string) {
	if m == nil {
		return
	}
	m.ResponsesTotal.WithLabelValues(action).Inc()
}

func (m *Metrics) TrackAnomalousResponse(action string) {
	if m == nil {
		return
	}
	m.AnomalousResponsesTotal.WithLabelValues(action).Inc()
}

func (m *Metrics) TrackGeneratorFailure() {
	if m == nil {
		return
	}
	m.GeneratorFailuresTotal.Inc()
}

// TrackConversionReport records a report attempt; result is "ok" or "failed".
func (m *Metrics) TrackConversionReport(result string) {
	if m == nil {
		return
	}
	m.ConversionReportsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) SetQueueSizes(pending, due int) {
	if m == nil {
		return
	}
	m.QueuePending.Set(float64(pending))
	m.QueueDue.Set(float64(due))
}
