package plot

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// recorder collects the dashboard metrics in its own registry
type recorder struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	derives   *prometheus.HistogramVec
	rejected  *prometheus.CounterVec
	websocket prometheus.Gauge
}

func newRecorder() *recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &recorder{
		registry: registry,
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sectorview_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sectorview_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"route"},
		),
		derives: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sectorview_derive_duration_seconds",
				Help:    "Duration of one view derivation in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"transport"},
		),
		rejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sectorview_rejected_states_total",
				Help: "Control states rejected as invalid",
			},
			[]string{"transport"},
		),
		websocket: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sectorview_websocket_clients",
				Help: "Connected WebSocket clients",
			},
		),
	}
}

// observeDerive records the duration of one derive
func (r *recorder) observeDerive(transport string, start time.Time, err error) {
	if err != nil {
		r.rejected.WithLabelValues(transport).Inc()
		return
	}
	r.derives.WithLabelValues(transport).Observe(time.Since(start).Seconds())
}

// handler exposes the registry in the Prometheus text format
func (r *recorder) handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// instrument counts requests of one route. The WebSocket route is not
// wrapped, the upgrade needs the original writer.
func (r *recorder) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next(rw, req)

		r.requests.WithLabelValues(route, strconv.Itoa(rw.status)).Inc()
		r.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
