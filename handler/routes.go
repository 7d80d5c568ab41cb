package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Routes wires every endpoint into a mux wrapped with request logging.
// Metrics are registered with reg and served from gatherer.
func (h *Handler) Routes(reg prometheus.Registerer, gatherer prometheus.Gatherer) http.Handler {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "findpangram_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	reg.MustRegister(requests)

	mux := http.NewServeMux()
	handle := func(pattern, route string, fn http.HandlerFunc) {
		mux.Handle(pattern, h.logRequests(route, requests, fn))
	}
	handle("GET /{$}", "index", h.Index)
	handle("GET /create", "create", h.Create)
	handle("GET /about", "about", h.About)
	handle("GET /healthz", "healthz", h.Healthz)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (h *Handler) logRequests(route string, requests *prometheus.CounterVec, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		h.logger.Info("Request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)))
	})
}
