package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ServiceMetrics records request, upstream, and billing metadata.
type ServiceMetrics struct {
	requestDuration  *prometheus.HistogramVec
	upstreamDuration *prometheus.HistogramVec
	billSuccess      *prometheus.CounterVec
	billFailure      *prometheus.CounterVec
	searchSuperseded prometheus.Counter
}

// NewServiceMetrics registers the service metrics on the provided registerer.
func NewServiceMetrics(reg prometheus.Registerer) *ServiceMetrics {
	if reg == nil {
		return &ServiceMetrics{}
	}
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of handled HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
	upstreamDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_call_duration_seconds",
		Help:    "Duration of pharmacy backend calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "outcome"})
	billSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bill_submission_success",
		Help: "Bills accepted by the pharmacy backend.",
	}, []string{"payment_method"})
	billFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bill_submission_failure",
		Help: "Bill submissions rejected or failed.",
	}, []string{"payment_method"})
	searchSuperseded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "search_superseded_total",
		Help: "Search calls dropped because a newer query replaced them.",
	})
	reg.MustRegister(requestDuration, upstreamDuration, billSuccess, billFailure, searchSuperseded)
	return &ServiceMetrics{
		requestDuration:  requestDuration,
		upstreamDuration: upstreamDuration,
		billSuccess:      billSuccess,
		billFailure:      billFailure,
		searchSuperseded: searchSuperseded,
	}
}

// ObserveRequest records the duration of a handled HTTP request.
func (m *ServiceMetrics) ObserveRequest(route, method string, status int, duration time.Duration) {
	if m == nil || m.requestDuration == nil {
		return
	}
	m.requestDuration.
		WithLabelValues(normalizeLabel(route), normalizeLabel(method), strconv.Itoa(status)).
		Observe(duration.Seconds())
}

// ObserveUpstream records the duration of a pharmacy backend call.
func (m *ServiceMetrics) ObserveUpstream(operation string, failed bool, duration time.Duration) {
	if m == nil || m.upstreamDuration == nil {
		return
	}
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	m.upstreamDuration.WithLabelValues(normalizeLabel(operation), outcome).Observe(duration.Seconds())
}

// IncBillSuccess increments the accepted-bill counter.
func (m *ServiceMetrics) IncBillSuccess(paymentMethod string) {
	if m == nil || m.billSuccess == nil {
		return
	}
	m.billSuccess.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
}

// IncBillFailure increments the failed-bill counter.
func (m *ServiceMetrics) IncBillFailure(paymentMethod string) {
	if m == nil || m.billFailure == nil {
		return
	}
	m.billFailure.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
}

// IncSearchSuperseded increments the dropped-search counter.
func (m *ServiceMetrics) IncSearchSuperseded() {
	if m == nil || m.searchSuperseded == nil {
		return
	}
	m.searchSuperseded.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
