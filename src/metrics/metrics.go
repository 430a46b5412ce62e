package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QuoteFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "investgame_quote_fetch_total",
		Help: "Quote fetch attempts by path and result.",
	}, []string{"path", "result"})

	RefreshRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "investgame_refresh_runs_total",
		Help: "Price refresh attempts by outcome.",
	}, []string{"outcome"})

	RefreshUpdatedStocks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "investgame_refresh_updated_stocks_total",
		Help: "Stocks whose price changed during a refresh.",
	})

	Purchases = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "investgame_purchases_total",
		Help: "Purchase attempts by outcome.",
	}, []string{"outcome"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "investgame_http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "investgame_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
)

// Middleware records request totals and latencies keyed by the chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
