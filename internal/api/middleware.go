package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// AdminAuthMiddleware guards the admin route group with a bearer token. An
// empty configured token disables the check, for local development.
func AdminAuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote", r.RemoteAddr,
			)
		})
	}
}

// rateWindow is a fixed-window counter per client address. Coarser than a
// sliding window but O(1) per request and good enough for an analysis API.
type rateWindow struct {
	mu      sync.Mutex
	counts  map[string]int
	started time.Time
}

// RateLimitMiddleware caps per-address request rates across one-minute
// windows, keyed by remote address.
func RateLimitMiddleware(requestsPerMinute int) func(http.Handler) http.Handler {
	rw := &rateWindow{counts: make(map[string]int), started: time.Now()}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw.mu.Lock()
			if time.Since(rw.started) >= time.Minute {
				rw.counts = make(map[string]int)
				rw.started = time.Now()
			}
			rw.counts[r.RemoteAddr]++
			over := rw.counts[r.RemoteAddr] > requestsPerMinute
			rw.mu.Unlock()

			if over {
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
