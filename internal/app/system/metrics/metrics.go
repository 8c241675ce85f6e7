// Package metrics exposes Prometheus collectors for the HTTP layer and for
// catalog and collection writes.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comicshelf_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "comicshelf_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	BookWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comicshelf_book_writes_total",
			Help: "Book create/replace/delete operations that committed",
		},
		[]string{"op"}, // "create", "replace", "delete"
	)

	ArtistsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "comicshelf_artists_created_total",
			Help: "Artists inserted on first reference",
		},
	)

	CollectionWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comicshelf_collection_writes_total",
			Help: "Collection entry changes by kind",
		},
		[]string{"kind"}, // "collection", "wishlist", "edit", "wishlist_remove"
	)

	ProductionWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comicshelf_production_writes_total",
			Help: "Marvel production creates and watch updates",
		},
		[]string{"op"}, // "create", "watch"
	)

	Transactions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comicshelf_transactions_total",
			Help: "Multi-document writes by outcome",
		},
		[]string{"outcome"}, // "committed", "aborted", "fallback"
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// Middleware records request count and latency. The route label is the chi
// route pattern so ids do not explode cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
