package server

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agbru/factcalc/internal/factorial"
	"github.com/agbru/factcalc/internal/metrics"
)

type failingCalculator struct{ err error }

func (failingCalculator) Name() string { return "Broken" }
func (c failingCalculator) Calculate(context.Context, int64) (*big.Int, error) {
	return nil, c.err
}

func newTestServer(t *testing.T, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	factory := factorial.NewDefaultFactory(factorial.WithWorkers(2))
	factory.Register("broken", failingCalculator{err: errors.New("worker exploded")})
	s := New("", factory, opts...)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func getJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp
}

func TestHandleFactorial(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)

	tests := []struct {
		name      string
		query     string
		algorithm string
		workers   int
		digits    int
		value     string
	}{
		{"parallel by default", "?n=20", factorial.ParallelName, 2, 19, ""},
		{"serial", "?n=20&algo=serial", factorial.SerialName, 1, 19, ""},
		{"with value", "?n=10&algo=serial&value=true", factorial.SerialName, 1, 7, "3628800"},
		{"zero", "?n=0&value=1", factorial.ParallelName, 2, 1, "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var body FactorialResponse
			resp := getJSON(t, ts.URL+"/factorial"+tt.query, &body)

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.algorithm, body.Algorithm)
			assert.Equal(t, tt.workers, body.Workers)
			assert.Equal(t, tt.digits, body.Digits)
			assert.Equal(t, tt.value, body.Value)
			assert.GreaterOrEqual(t, body.DurationMs, 0.0)
		})
	}
}

func TestHandleFactorial_Bits(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)

	var body FactorialResponse
	getJSON(t, ts.URL+"/factorial?n=100", &body)

	want, err := factorial.Serial(100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), body.N)
	assert.Equal(t, want.BitLen(), body.Bits)
	assert.Equal(t, 158, body.Digits)
}

func TestHandleFactorial_Rejects(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, WithSecurity(SecurityConfig{MaxNValue: 500}))

	tests := []struct {
		name  string
		query string
		code  int
	}{
		{"missing n", "", http.StatusBadRequest},
		{"not a number", "?n=ten", http.StatusBadRequest},
		{"negative", "?n=-5", http.StatusBadRequest},
		{"above limit", "?n=501", http.StatusBadRequest},
		{"unknown algorithm", "?n=5&algo=gamma", http.StatusBadRequest},
		{"engine failure", "?n=5&algo=broken", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var body ErrorResponse
			resp := getJSON(t, ts.URL+"/factorial"+tt.query, &body)

			assert.Equal(t, tt.code, resp.StatusCode)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestHandleFactorial_MethodNotAllowed(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/factorial?n=5", "text/plain", http.NoBody)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHandleFactorial_RecordsMetrics(t *testing.T) {
	t.Parallel()
	m := metrics.NewMetrics()
	_, ts := newTestServer(t, WithMetrics(m))

	var ok FactorialResponse
	getJSON(t, ts.URL+"/factorial?n=30&algo=serial", &ok)
	var failed ErrorResponse
	getJSON(t, ts.URL+"/factorial?n=30&algo=broken", &failed)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ComputationCounter(factorial.SerialName, "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ComputationCounter("Broken", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestCounter("/factorial", http.StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestCounter("/factorial", http.StatusInternalServerError)))
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)

	var body map[string]string
	resp := getJSON(t, ts.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestHandleFactorial_BusyServer(t *testing.T) {
	t.Parallel()
	s, ts := newTestServer(t, WithMaxConcurrent(1), WithRequestTimeout(50*time.Millisecond))
	require.NoError(t, s.slots.Acquire(context.Background(), 1))
	defer s.slots.Release(1)

	var body ErrorResponse
	resp := getJSON(t, ts.URL+"/factorial?n=5", &body)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestStart_ShutsDownOnCancel(t *testing.T) {
	t.Parallel()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	s := New(addr, factorial.NewDefaultFactory(), WithLogger(newTestLogger()))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
