package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
)

// simulatedSuccessRate is the synthetic delivery success probability of the
// offline channel.
const simulatedSuccessRate = 0.95

// SimulatedSender is the log-only delivery channel used when the primary
// channel is unreachable. Every result it produces is labeled simulated so it
// can never be mistaken for a real send.
type SimulatedSender struct {
	logger *slog.Logger
	rng    func() float64
}

// NewSimulatedSender builds the offline channel. A nil rng uses math/rand.
func NewSimulatedSender(logger *slog.Logger, rng func() float64) *SimulatedSender {
	if logger == nil {
		logger = slog.Default()
	}
	if rng == nil {
		rng = rand.Float64
	}
	return &SimulatedSender{logger: logger, rng: rng}
}

// Send logs the message instead of delivering it and reports a synthetic
// outcome.
func (s *SimulatedSender) Send(ctx context.Context, msg Message) (Result, error) {
	if s.rng() >= simulatedSuccessRate {
		err := errors.New("simulated delivery failure")
		s.logger.WarnContext(ctx, "SIMULATED email send failed",
			"to", strings.Join(msg.To, ","), "subject", msg.Subject)
		return Result{Outcome: OutcomeFailed, Detail: "simulated failure"}, err
	}

	s.logger.InfoContext(ctx, "SIMULATED email send (not delivered)",
		"to", strings.Join(msg.To, ","),
		"cc", strings.Join(msg.CC, ","),
		"subject", msg.Subject)
	return Result{Outcome: OutcomeSimulated, Detail: "offline fallback"}, nil
}

// FallbackSender sends through the primary channel and switches to the
// simulated channel only when the primary is unreachable. All other failures
// pass through untouched so the dispatcher's retry policy applies.
type FallbackSender struct {
	primary   Sender
	simulated Sender
	logger    *slog.Logger
}

// NewFallbackSender wraps primary with the simulated offline channel.
func NewFallbackSender(primary, simulated Sender, logger *slog.Logger) *FallbackSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackSender{primary: primary, simulated: simulated, logger: logger}
}

// Send attempts the primary channel first.
func (f *FallbackSender) Send(ctx context.Context, msg Message) (Result, error) {
	result, err := f.primary.Send(ctx, msg)
	if err == nil {
		return result, nil
	}

	var sendErr *SendError
	if errors.As(err, &sendErr) && sendErr.Unreachable {
		f.logger.WarnContext(ctx, "primary delivery channel unreachable, using simulated fallback",
			"error", err, "to", strings.Join(msg.To, ","))
		result, simErr := f.simulated.Send(ctx, msg)
		if simErr != nil {
			return result, fmt.Errorf("simulated fallback: %w", simErr)
		}
		return result, nil
	}

	return result, err
}
