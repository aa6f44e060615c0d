// Package simserver exposes the deterministic alert simulator over real
// HTTP, so the resilient client path can be exercised against a live
// listener. Optional fault injection produces the transient failures
// the client's retry policy exists for.
package simserver

import (
	"encoding/json"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bgiacomelli/meli-compliance-monitoring/internal/metrics"
	"github.com/bgiacomelli/meli-compliance-monitoring/internal/source"
)

// Options configures the simulated upstream.
type Options struct {
	Seed         int64
	ErrorRate    float64 // probability a request answers 503
	NotFoundRate float64 // probability a detail answers 404
}

// Server is the simulated compliance upstream.
type Server struct {
	sim  *source.Simulator
	opts Options

	mu     sync.Mutex
	faults *rand.Rand
}

// New builds a server around a simulator with the given seed. With both
// fault rates at zero the server is fully deterministic.
func New(opts Options) *Server {
	return &Server{
		sim:    source.NewSimulator(opts.Seed),
		opts:   opts,
		faults: rand.New(rand.NewSource(opts.Seed)),
	}
}

// Router returns the HTTP routes of the simulated upstream.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Get("/compliance_alerts", s.handleList)
	r.Get("/compliance_alerts/{id}", s.handleDetail)
	return r
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if s.injectFault(s.opts.ErrorRate) {
		writeError(w, r, http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	status := q.Get("status")
	limit := atoiDefault(q.Get("limit"), 50)
	offset := atoiDefault(q.Get("offset"), 0)

	ids, err := s.sim.ListIDs(r.Context(), status, limit, offset)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"status": status,
		"count":  len(ids),
		"total":  s.sim.Total(limit, offset),
		"data":   ids,
	})
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	if s.injectFault(s.opts.ErrorRate) {
		writeError(w, r, http.StatusServiceUnavailable)
		return
	}
	if s.injectFault(s.opts.NotFoundRate) {
		writeError(w, r, http.StatusNotFound)
		return
	}

	id := chi.URLParam(r, "id")
	payload, err := s.sim.Detail(r.Context(), id)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, http.StatusOK, payload)
}

func (s *Server) injectFault(rate float64) bool {
	if rate <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.faults.Float64() < rate
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	metrics.SimRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(status)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WARN] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int) {
	metrics.SimRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(status)).Inc()
	if status == http.StatusNotFound {
		w.WriteHeader(status)
		return
	}
	http.Error(w, http.StatusText(status), status)
}

// requestLogger tags each request with a short ID and logs it.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()[:8]
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r)

		log.Printf("[%s] %s %s %v", requestID, r.Method, r.URL.Path, time.Since(start))
	})
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
