package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/studio-scheduler/internal/logging"
	"github.com/example/studio-scheduler/internal/mail"
	"github.com/example/studio-scheduler/internal/meeting"
	"github.com/example/studio-scheduler/internal/persistence"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// ErrorKind maps sentinel and typed errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyProvisioned), errors.Is(err, persistence.ErrAlreadyProvisioned):
		return "already_provisioned"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}
	var authErr *meeting.AuthError
	if errors.As(err, &authErr) {
		return "provider_auth"
	}
	var reqErr *meeting.RequestError
	if errors.As(err, &reqErr) {
		return "provider_request"
	}
	var sendErr *mail.SendError
	if errors.As(err, &sendErr) {
		if sendErr.RateLimited {
			return "rate_limited"
		}
		return "delivery_failure"
	}

	return "unexpected"
}
