package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/yt-summarizer/internal/infra/config"
)

func TestWithRetryReplaysTransientFailures(t *testing.T) {
	var bodies []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(data))
		if len(bodies) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	cfg := config.RetryConfig{Enabled: true, MaxAttempts: 3, BaseBackoff: time.Millisecond}

	rec := httptest.NewRecorder()
	withRetry(handler, cfg, newTestLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/tokens", strings.NewReader(`{"text":"a"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
	require.Equal(t, "3", rec.Header().Get(retryAttemptHeader))
	require.Equal(t, []string{`{"text":"a"}`, `{"text":"a"}`, `{"text":"a"}`}, bodies)
}

func TestWithRetrySkipsExcludedAndClientErrors(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path == "/api/v1/tokens" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	})
	cfg := config.RetryConfig{Enabled: true, MaxAttempts: 3, BaseBackoff: time.Millisecond, Exclude: []string{"/api/v1/summaries"}}
	h := withRetry(handler, cfg, newTestLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/summaries", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, 1, calls)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/tokens", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, 2, calls)
}

func TestWithRetryRejectsLargeBodies(t *testing.T) {
	cfg := config.RetryConfig{Enabled: true, MaxAttempts: 2, BaseBackoff: time.Millisecond}
	h := withRetry(http.NotFoundHandler(), cfg, newTestLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/tokens", strings.NewReader(strings.Repeat("a", retryBodyLimit+1))))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCORS(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.AllowedOrigins = []string{"https://app.example.com"}
	server := NewRouter(cfg, NewSummaryHandler(&stubSummarizer{}, nil, newTestLogger()), nil, newTestLogger())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/summaries", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/summaries", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
