// Package queryapi serves span overlap queries over HTTP, with Prometheus
// instrumentation and liveness probing.
package queryapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spantree/spantree/pkg/spanstore"
)

// uint32Bits is the bit size passed to ParseUint for span positions.
const uint32Bits = 32

const healthStatusOK = "ok"

// Metrics instruments the query endpoints. Each server owns an independent
// registry to avoid collector conflicts across instances.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics creates the server's Prometheus registry and instruments.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spantree_queries_total",
		Help: "Number of span queries served, by endpoint and status.",
	}, []string{"endpoint", "status"})

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "spantree_query_duration_seconds",
		Help:    "Span query latency.",
		Buckets: prometheus.DefBuckets,
	})

	registry.MustRegister(requests, duration)

	return &Metrics{registry: registry, requests: requests, duration: duration}
}

// Server answers overlap and point queries against one span store.
type Server struct {
	store   *spanstore.Store
	logger  *slog.Logger
	metrics *Metrics
}

// NewServer creates a query server over store.
func NewServer(store *spanstore.Store, logger *slog.Logger) *Server {
	return &Server{store: store, logger: logger, metrics: NewMetrics()}
}

// Handler returns the server's routing handler: /overlap, /point,
// /metrics, and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /overlap", s.handleOverlap)
	mux.HandleFunc("GET /point", s.handlePoint)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	mux.Handle("GET /healthz", healthHandler())

	return mux
}

// handleOverlap answers /overlap?low=N&high=M with the overlapping spans.
func (s *Server) handleOverlap(rw http.ResponseWriter, req *http.Request) {
	const endpoint = "overlap"

	started := time.Now()

	low, ok := s.queryPosition(rw, req, endpoint, "low")
	if !ok {
		return
	}

	high, ok := s.queryPosition(rw, req, endpoint, "high")
	if !ok {
		return
	}

	if high < low {
		s.badRequest(rw, endpoint, "high before low")

		return
	}

	s.respond(rw, endpoint, started, s.store.Overlapping(low, high))
}

// handlePoint answers /point?at=N with the spans containing the point.
func (s *Server) handlePoint(rw http.ResponseWriter, req *http.Request) {
	const endpoint = "point"

	started := time.Now()

	at, ok := s.queryPosition(rw, req, endpoint, "at")
	if !ok {
		return
	}

	s.respond(rw, endpoint, started, s.store.At(at))
}

// queryPosition parses one uint32 query parameter, replying 400 when it is
// missing or malformed.
func (s *Server) queryPosition(rw http.ResponseWriter, req *http.Request, endpoint, name string) (uint32, bool) {
	raw := req.URL.Query().Get(name)

	value, err := strconv.ParseUint(raw, 10, uint32Bits)
	if err != nil {
		s.badRequest(rw, endpoint, "invalid "+name+" parameter")

		return 0, false
	}

	return uint32(value), true
}

// badRequest replies 400 and counts the rejected request.
func (s *Server) badRequest(rw http.ResponseWriter, endpoint, message string) {
	s.metrics.requests.WithLabelValues(endpoint, "bad_request").Inc()
	http.Error(rw, message, http.StatusBadRequest)
}

// respond writes the matched spans as JSON and records the request.
func (s *Server) respond(rw http.ResponseWriter, endpoint string, started time.Time, spans []spanstore.Span) {
	s.metrics.requests.WithLabelValues(endpoint, "ok").Inc()
	s.metrics.duration.Observe(time.Since(started).Seconds())

	s.logger.Debug("query served", "endpoint", endpoint, "matches", len(spans))

	if spans == nil {
		// Keep the wire shape stable: no matches is an empty array.
		spans = []spanstore.Span{}
	}

	rw.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(rw).Encode(spans); err != nil {
		s.logger.Warn("encode response", "endpoint", endpoint, "error", err)
	}
}

// healthHandler serves liveness checks: always 200 with {"status":"ok"}.
func healthHandler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		rw.WriteHeader(http.StatusOK)

		data, err := json.Marshal(map[string]string{"status": healthStatusOK})
		if err != nil {
			return
		}

		writeOrDiscard(rw, data)
	})
}

// writeOrDiscard writes data, ignoring transport errors: the probe client
// is gone either way.
func writeOrDiscard(w io.Writer, data []byte) {
	_, _ = w.Write(data)
}
