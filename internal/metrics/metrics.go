// Package metrics collects Prometheus counters for the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"skillbridge/internal/domain"
)

// Collector implements the event hooks of the profile, analysis and assistant services.
type Collector struct {
	analyses      *prometheus.CounterVec
	roadmaps      *prometheus.CounterVec
	chatMessages  *prometheus.CounterVec
	profileWrites *prometheus.CounterVec
	httpStatus    *prometheus.CounterVec
	httpLatency   prometheus.Histogram
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillbridge_analyses_total",
			Help: "Completed analysis runs.",
		}, []string{"has_resume"}),
		roadmaps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillbridge_roadmaps_total",
			Help: "Generated roadmaps by entry point.",
		}, []string{"source"}),
		chatMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillbridge_chat_messages_total",
			Help: "Stored chat messages by role.",
		}, []string{"role"}),
		profileWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillbridge_profile_writes_total",
			Help: "Profile writes by operation.",
		}, []string{"op"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillbridge_http_status_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "skillbridge_http_latency_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.analyses,
		c.roadmaps,
		c.chatMessages,
		c.profileWrites,
		c.httpStatus,
		c.httpLatency,
	)

	return c
}

func (c *Collector) RecordAnalysis(hasResume bool) {
	c.analyses.WithLabelValues(strconv.FormatBool(hasResume)).Inc()
}

func (c *Collector) RecordRoadmap(source string) {
	c.roadmaps.WithLabelValues(source).Inc()
}

func (c *Collector) RecordChatMessage(role domain.ChatRole) {
	c.chatMessages.WithLabelValues(string(role)).Inc()
}

func (c *Collector) RecordProfileWrite(op string) {
	c.profileWrites.WithLabelValues(op).Inc()
}

func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

func (c *Collector) RecordHTTPLatency(d time.Duration) {
	c.httpLatency.Observe(d.Seconds())
}

// Handler serves the registry for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
