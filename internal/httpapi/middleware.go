package httpapi

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/example/studio-scheduler/internal/logging"
)

const secretHeader = "X-Scheduler-Secret"

// RequestLogger attaches a per-request logger to the context and records
// start and completion of every request.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := logging.ContextWithLogger(r.Context(), logger)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}

// RequireSchedulerSecret rejects requests whose X-Scheduler-Secret header does
// not match the configured secret.
func RequireSchedulerSecret(configured string, logger *slog.Logger) func(http.Handler) http.Handler {
	resp := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get(secretHeader)
			if presented == "" {
				resp.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSecret)
				return
			}
			if err := VerifySchedulerSecret(configured, presented); err != nil {
				resp.loggerFor(r.Context()).WarnContext(r.Context(), "scheduler secret rejected", "error", err)
				resp.writeJSON(r.Context(), w, http.StatusForbidden, errorResponse{Message: "forbidden"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
