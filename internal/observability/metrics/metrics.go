package metrics

import "github.com/prometheus/client_golang/prometheus"

// UpstreamMetrics exposes counters/histograms for calls to the pharmacy
// API.
type UpstreamMetrics struct {
	requestsTotal  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	pageRenders    *prometheus.CounterVec
}

func NewUpstreamMetrics(reg prometheus.Registerer) *UpstreamMetrics {
	m := &UpstreamMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pharmacy",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total requests to the pharmacy API",
		}, []string{"method", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pharmacy",
			Subsystem: "upstream",
			Name:      "request_latency_seconds",
			Help:      "Latency of pharmacy API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		pageRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pharmacy",
			Subsystem: "gateway",
			Name:      "page_renders_total",
			Help:      "Total pages rendered by the gateway",
		}, []string{"page"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestLatency, m.pageRenders)
	return m
}

// ObserveUpstream records one upstream request outcome. The status label
// is the HTTP status code, or "error" for transport failures.
func (m *UpstreamMetrics) ObserveUpstream(method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, status).Inc()
	m.requestLatency.WithLabelValues(method).Observe(seconds)
}

// ObservePageRender counts one rendered page.
func (m *UpstreamMetrics) ObservePageRender(page string) {
	if m == nil {
		return
	}
	m.pageRenders.WithLabelValues(page).Inc()
}
