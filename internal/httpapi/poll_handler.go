package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/example/studio-scheduler/internal/application"
)

type pollService interface {
	RunOnce(ctx context.Context, forced bool) (application.PollSummary, error)
}

// PollHandler triggers poll cycles on demand.
type PollHandler struct {
	poller    pollService
	responder responder
	logger    *slog.Logger
}

func NewPollHandler(poller pollService, logger *slog.Logger) *PollHandler {
	base := defaultLogger(logger)
	return &PollHandler{poller: poller, responder: newResponder(base), logger: base}
}

func (h *PollHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "PollHandler", operation, attrs...)
}

func (h *PollHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.poller == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req pollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.log(r.Context(), "Run", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode poll request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Run", "forced", req.Forced)

	summary, err := h.poller.RunOnce(r.Context(), req.Forced)
	if err != nil {
		logger.ErrorContext(r.Context(), "poll cycle failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "poll cycle completed",
		"scanned", summary.Scanned, "provisioned", summary.Provisioned)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPollSummaryDTO(summary))
}

type pollRequest struct {
	Forced bool `json:"forced"`
}

type pollSummaryDTO struct {
	Scanned     int `json:"scanned"`
	Due         int `json:"due"`
	Provisioned int `json:"provisioned"`
	Failed      int `json:"failed"`
	Notified    int `json:"notified"`
}

func toPollSummaryDTO(summary application.PollSummary) pollSummaryDTO {
	return pollSummaryDTO{
		Scanned:     summary.Scanned,
		Due:         summary.Due,
		Provisioned: summary.Provisioned,
		Failed:      summary.Failed,
		Notified:    summary.Notified,
	}
}
