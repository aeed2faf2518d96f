package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/example/studio-scheduler/internal/metrics"
	"github.com/example/studio-scheduler/internal/persistence"
)

// PollerConfig bounds one poll cycle.
type PollerConfig struct {
	// LeadTime is how far before start a session should be provisioned.
	LeadTime time.Duration
	// Window is the tolerance around the lead time; a candidate is due when
	// its time-until-start falls inside [LeadTime-Window, LeadTime+Window].
	Window time.Duration
	// Horizon caps how far ahead the scan looks.
	Horizon time.Duration
	// CandidateTimeout bounds the work spent on a single session.
	CandidateTimeout time.Duration
}

// PollSummary reports what one poll cycle did.
type PollSummary struct {
	Scanned     int
	Due         int
	Provisioned int
	Failed      int
	Notified    int
}

// PollerService scans for upcoming unprovisioned sessions and provisions the
// ones whose zone-aware start falls inside the due window, then dispatches
// their notifications. Candidates are processed sequentially so one cycle's
// provider load stays predictable.
type PollerService struct {
	sessions      persistence.SessionRepository
	provisioner   *ProvisionService
	notifications *NotificationService
	cfg           PollerConfig
	now           func() time.Time
	logger        *slog.Logger
}

// NewPollerService wires dependencies for the due-session poller.
func NewPollerService(
	sessions persistence.SessionRepository,
	provisioner *ProvisionService,
	notifications *NotificationService,
	cfg PollerConfig,
	now func() time.Time,
	logger *slog.Logger,
) *PollerService {
	if now == nil {
		now = time.Now
	}
	return &PollerService{
		sessions:      sessions,
		provisioner:   provisioner,
		notifications: notifications,
		cfg:           cfg,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

// RunOnce executes one poll cycle. When forced is true every unprovisioned
// session inside the horizon is due, regardless of the lead-time window.
// Failures are isolated per candidate: the cycle always finishes the list.
func (s *PollerService) RunOnce(ctx context.Context, forced bool) (PollSummary, error) {
	metrics.PollRuns.Inc()
	now := s.now()
	logger := serviceLogger(ctx, s.logger, "poller", "run", "forced", forced)

	// The civil-date filter is padded by a day on both sides because a
	// session's zone can shift its instant well away from the UTC date.
	// Exact due checks happen per candidate below.
	candidates, err := s.sessions.ListSessions(ctx, persistence.SessionFilter{
		DateFrom:      now.UTC().AddDate(0, 0, -1).Format(civilDateLayout),
		DateUntil:     now.UTC().Add(s.cfg.Horizon).AddDate(0, 0, 1).Format(civilDateLayout),
		Unprovisioned: true,
	})
	if err != nil {
		return PollSummary{}, err
	}

	summary := PollSummary{Scanned: len(candidates)}
	for _, session := range candidates {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		start, err := SessionStartInstant(session)
		if err != nil {
			logger.ErrorContext(ctx, "skipping session with unreadable schedule",
				"session_id", session.ID, "error", err)
			continue
		}

		until := start.Sub(now)
		if until <= 0 || until > s.cfg.Horizon {
			continue
		}
		if !forced && !s.due(until) {
			continue
		}
		summary.Due++

		s.handleCandidate(ctx, logger, session.ID, &summary)
	}

	logger.InfoContext(ctx, "poll cycle finished",
		"scanned", summary.Scanned, "due", summary.Due,
		"provisioned", summary.Provisioned, "failed", summary.Failed,
		"notified", summary.Notified)
	return summary, nil
}

func (s *PollerService) due(until time.Duration) bool {
	return until >= s.cfg.LeadTime-s.cfg.Window && until <= s.cfg.LeadTime+s.cfg.Window
}

// handleCandidate provisions and notifies one session under its own timeout.
// Errors are counted and logged but never abort the cycle.
func (s *PollerService) handleCandidate(ctx context.Context, logger *slog.Logger, sessionID string, summary *PollSummary) {
	candidateCtx := ctx
	if s.cfg.CandidateTimeout > 0 {
		var cancel context.CancelFunc
		candidateCtx, cancel = context.WithTimeout(ctx, s.cfg.CandidateTimeout)
		defer cancel()
	}

	_, err := s.provisioner.Provision(candidateCtx, sessionID)
	switch {
	case err == nil:
		summary.Provisioned++
	case errors.Is(err, ErrAlreadyProvisioned):
		// Raced with a manual provision between the scan and the write.
		logger.InfoContext(ctx, "candidate provisioned elsewhere", "session_id", sessionID)
		return
	default:
		summary.Failed++
		logger.ErrorContext(ctx, "candidate provisioning failed",
			"session_id", sessionID, "error", err, "error_kind", ErrorKind(err))
		return
	}

	report, err := s.notifications.NotifySession(candidateCtx, sessionID)
	if err != nil {
		summary.Failed++
		logger.ErrorContext(ctx, "candidate notification failed",
			"session_id", sessionID, "error", err, "error_kind", ErrorKind(err))
		return
	}
	summary.Notified += report.Sent()
}
