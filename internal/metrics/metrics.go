// Package metrics collects Prometheus metrics for use-cases and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/isdelr/quill-be/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the services report use-case outcomes to.
type Recorder interface {
	RecordUseCase(usecase string, err error)
}

// Nop discards everything.
type Nop struct{}

// RecordUseCase does nothing.
func (Nop) RecordUseCase(string, error) {}

// Collector implements Recorder on Prometheus.
type Collector struct {
	registry     *prometheus.Registry
	usecases     *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		usecases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quill_usecase_total",
			Help: "Use-case invocations by outcome (ok or failure kind).",
		}, []string{"usecase", "outcome"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quill_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(c.usecases, c.httpDuration)
	return c
}

// RecordUseCase counts one invocation; failures are labelled with their kind.
func (c *Collector) RecordUseCase(usecase string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(models.KindOf(err))
	}
	c.usecases.WithLabelValues(usecase, outcome).Inc()
}

// ObserveHTTP records the latency of a finished request.
func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	c.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
