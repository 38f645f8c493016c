package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unique/internal/ratelimit/metrics"
	"unique/internal/ratelimit/models"
	"unique/pkg/requestcontext"
	"unique/pkg/testutil"
)

type stubLimiter struct {
	result *models.Result
	err    error

	gotIP    string
	gotClass models.EndpointClass
	calls    int
}

func (s *stubLimiter) CheckIP(_ context.Context, ip string, class models.EndpointClass) (*models.Result, error) {
	s.calls++
	s.gotIP = ip
	s.gotClass = class
	return s.result, s.err
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestFrom(t *testing.T, ip string) *http.Request {
	req := testutil.NewRequest(t, http.MethodPost, "/token")
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, "test-agent"))
}

func TestRateLimitAllows(t *testing.T) {
	resetAt := time.Date(2026, 3, 1, 12, 1, 0, 0, time.UTC)
	limiter := &stubLimiter{result: &models.Result{Allowed: true, Limit: 30, Remaining: 29, ResetAt: resetAt}}
	m := New(limiter, newTestLogger())

	rr := testutil.DoRequest(m.RateLimit(models.ClassToken)(okHandler()), requestFrom(t, "198.51.100.7"))

	testutil.AssertStatusOK(t, rr)
	assert.Equal(t, "198.51.100.7", limiter.gotIP)
	assert.Equal(t, models.ClassToken, limiter.gotClass)
	assert.Equal(t, "30", rr.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "29", rr.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "1772366460", rr.Header().Get("X-RateLimit-Reset"))
	assert.Empty(t, rr.Header().Get("Retry-After"))
}

func TestRateLimitRejects(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(&stubLimiter{result: &models.Result{
		Allowed:    false,
		Limit:      30,
		ResetAt:    time.Now().Add(20 * time.Second),
		RetryAfter: 20,
	}}, newTestLogger(), WithMetrics(metrics.New(reg)))

	rr := testutil.DoRequest(m.RateLimit(models.ClassAuthorize)(okHandler()), requestFrom(t, "198.51.100.7"))

	testutil.AssertStatusAndError(t, rr, http.StatusTooManyRequests, "rate_limit_exceeded")
	assert.Equal(t, "20", rr.Header().Get("Retry-After"))
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))
	assert.InDelta(t, 1, promtestutil.ToFloat64(m.metrics.Rejected.WithLabelValues("authorize")), 0)
}

func TestRateLimitFailsOpen(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(&stubLimiter{err: errors.New("redis: connection refused")}, newTestLogger(),
		WithMetrics(metrics.New(reg)))

	rr := testutil.DoRequest(m.RateLimit(models.ClassToken)(okHandler()), requestFrom(t, "198.51.100.7"))

	testutil.AssertStatusOK(t, rr)
	assert.Empty(t, rr.Header().Get("X-RateLimit-Limit"))
	assert.InDelta(t, 1, promtestutil.ToFloat64(m.metrics.CheckError), 0)
}

func TestRateLimitDisabled(t *testing.T) {
	limiter := &stubLimiter{}
	m := New(limiter, newTestLogger(), WithDisabled(true))

	rr := testutil.DoRequest(m.RateLimit(models.ClassToken)(okHandler()), requestFrom(t, "198.51.100.7"))

	testutil.AssertStatusOK(t, rr)
	require.Zero(t, limiter.calls)
}
