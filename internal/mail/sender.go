// Package mail is the outbound email channel: a provider-agnostic sender
// contract, an SMTP implementation, a clearly labeled simulated fallback for
// offline operation, and the rolling-window throttle that paces every
// physical send.
package mail

import (
	"context"
	"fmt"
	"time"
)

// Outcome labels how a message left the system. Simulated deliveries are
// never reported as real sends.
type Outcome string

const (
	OutcomeSent      Outcome = "sent"
	OutcomeSimulated Outcome = "simulated"
	OutcomeFailed    Outcome = "failed"
)

// Message is one outbound email.
type Message struct {
	From    string
	To      []string
	CC      []string
	BCC     []string
	Subject string
	HTML    string
	Text    string // plain-text fallback body
}

// Result reports the outcome of a delivery attempt.
type Result struct {
	Outcome Outcome
	Detail  string
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) (Result, error)
}

// SendError is a machine-readable delivery failure.
type SendError struct {
	Code        int
	Message     string
	RateLimited bool
	// RetryAfter carries the provider's hint when it reported rate limiting.
	// Zero means no hint was supplied.
	RetryAfter time.Duration
	// Unreachable marks transport-level failures (dial refused, no route)
	// that justify switching to the simulated fallback channel.
	Unreachable bool
}

func (e *SendError) Error() string {
	switch {
	case e.Unreachable:
		return fmt.Sprintf("mail: delivery channel unreachable: %s", e.Message)
	case e.RateLimited:
		return fmt.Sprintf("mail: rate limited (code %d): %s", e.Code, e.Message)
	default:
		return fmt.Sprintf("mail: send failed (code %d): %s", e.Code, e.Message)
	}
}
