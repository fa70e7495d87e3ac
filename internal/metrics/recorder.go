// Package metrics records Prometheus metrics for the serve process.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the collectors served at /metrics.
type Recorder struct {
	registry *prometheus.Registry

	webhookRequests *prometheus.CounterVec
	pageViews       prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

// NewRecorder registers the collectors on a fresh registry, together with
// the Go runtime and process collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		webhookRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cxkit_webhook_requests_total",
				Help: "Webhook fulfillment requests by tag and response code",
			},
			[]string{"tag", "code"},
		),
		pageViews: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "cxkit_frontend_views_total",
				Help: "Views of the demo front end",
			},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cxkit_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "code"},
		),
	}
}

// ObserveWebhook counts one webhook request. It matches webhook.Handler's
// Observe hook.
func (r *Recorder) ObserveWebhook(tag string, status int) {
	r.webhookRequests.WithLabelValues(tag, strconv.Itoa(status)).Inc()
}

// IncPageView counts one front-end render.
func (r *Recorder) IncPageView() {
	r.pageViews.Inc()
}

// Instrument times every request that passes through it under route.
func (r *Recorder) Instrument(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, req)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			r.requestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
		})
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
