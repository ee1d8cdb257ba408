// Package server exposes the factorial engines over HTTP.
//
// Routes:
//
//	GET /factorial?n=<int>&algo=<serial|parallel>[&value=true]
//	GET /health
//	GET /metrics
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	apperrors "github.com/agbru/factcalc/internal/errors"
	"github.com/agbru/factcalc/internal/factorial"
	"github.com/agbru/factcalc/internal/format"
	"github.com/agbru/factcalc/internal/logging"
	"github.com/agbru/factcalc/internal/metrics"
)

const (
	// DefaultRequestTimeout bounds the time a client waits for one result.
	DefaultRequestTimeout = 2 * time.Minute
	// DefaultMaxConcurrent is the number of computations served at once.
	// The parallel engine already saturates the host on its own.
	DefaultMaxConcurrent = 2
	// DefaultAlgorithm is used when the algo parameter is absent.
	DefaultAlgorithm = factorial.ParallelKey

	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// FactorialResponse is the body returned by GET /factorial.
type FactorialResponse struct {
	N          int64   `json:"n"`
	Algorithm  string  `json:"algorithm"`
	Workers    int     `json:"workers"`
	Digits     int     `json:"digits"`
	Bits       int     `json:"bits"`
	DurationMs float64 `json:"duration_ms"`
	Value      string  `json:"value,omitempty"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server serves factorial computations backed by a CalculatorFactory.
type Server struct {
	addr           string
	factory        factorial.CalculatorFactory
	metrics        *metrics.Metrics
	logger         logging.Logger
	security       SecurityConfig
	requestTimeout time.Duration
	slots          *semaphore.Weighted
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics shares an existing metrics registry with the server.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithSecurity replaces DefaultSecurityConfig.
func WithSecurity(c SecurityConfig) Option {
	return func(s *Server) { s.security = c }
}

// WithRequestTimeout bounds how long a request waits for a free slot and
// for its result.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithMaxConcurrent sets how many computations may run at the same time.
func WithMaxConcurrent(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.slots = semaphore.NewWeighted(int64(n))
		}
	}
}

// New returns a server listening on addr once Start is called.
func New(addr string, factory factorial.CalculatorFactory, opts ...Option) *Server {
	s := &Server{
		addr:           addr,
		factory:        factory,
		metrics:        metrics.NewMetrics(),
		logger:         logging.NewNopLogger(),
		security:       DefaultSecurityConfig(),
		requestTimeout: DefaultRequestTimeout,
		slots:          semaphore.NewWeighted(DefaultMaxConcurrent),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler with the security and metrics
// middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/factorial", s.wrap(s.handleFactorial))
	mux.HandleFunc("/health", s.wrap(s.handleHealth))
	mux.HandleFunc("/metrics", s.wrap(s.handleMetrics))
	return mux
}

func (s *Server) wrap(h http.HandlerFunc) http.HandlerFunc {
	return SecurityMiddleware(s.security, s.metricsMiddleware(h))
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("HTTP server listening", logging.String("addr", s.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", s.addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("HTTP server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware tracks in-flight requests and counts responses by path
// and status code.
func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		s.metrics.ObserveRequest(r.URL.Path, rec.status)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	s.metrics.WritePrometheus(w, r)
}

func (s *Server) handleFactorial(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}

	q := r.URL.Query()
	raw := q.Get("n")
	if raw == "" {
		s.writeError(w, http.StatusBadRequest, apperrors.NewInvalidArgument("n", "parameter is required"))
		return
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, apperrors.NewInvalidArgument("n", "not an integer: %q", raw))
		return
	}
	if err := s.security.ValidateN(n); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	algo := q.Get("algo")
	if algo == "" {
		algo = DefaultAlgorithm
	}
	calc, err := s.factory.Get(algo)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	withValue, _ := strconv.ParseBool(q.Get("value"))

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()
	if err := s.slots.Acquire(ctx, 1); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, fmt.Errorf("no computation slot available: %w", err))
		return
	}
	defer s.slots.Release(1)

	workers := factorial.WorkersOf(calc)
	start := time.Now()
	result, err := calc.Calculate(ctx, n)
	elapsed := time.Since(start)
	s.metrics.ObserveComputation(calc.Name(), workers, elapsed, err)
	if err != nil {
		s.logger.Error("computation failed", err, logging.Int64("n", n), logging.String("algorithm", calc.Name()))
		s.writeError(w, statusFor(err), err)
		return
	}
	s.logger.Debug("computation served",
		logging.Int64("n", n),
		logging.String("algorithm", calc.Name()),
		logging.Int("workers", workers),
		logging.Duration("duration", elapsed))

	resp := FactorialResponse{
		N:          n,
		Algorithm:  calc.Name(),
		Workers:    workers,
		Digits:     format.DigitCount(result),
		Bits:       result.BitLen(),
		DurationMs: float64(elapsed) / float64(time.Millisecond),
	}
	if withValue {
		resp.Value = result.String()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.logger.Warn("method not allowed", logging.String("method", r.Method), logging.String("path", r.URL.Path))
	w.Header().Set("Allow", http.MethodGet)
	s.writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	s.writeJSON(w, code, ErrorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil && s.logger != nil {
		s.logger.Error("failed to encode response", err)
	}
}
