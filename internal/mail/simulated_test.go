package mail

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

type senderStub struct {
	result Result
	err    error
	calls  int
}

func (s *senderStub) Send(ctx context.Context, msg Message) (Result, error) {
	s.calls++
	return s.result, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSimulatedSender_OutcomeIsLabeled(t *testing.T) {
	sender := NewSimulatedSender(discardLogger(), func() float64 { return 0.0 })

	result, err := sender.Send(context.Background(), Message{To: []string{"a@example.com"}})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if result.Outcome != OutcomeSimulated {
		t.Errorf("expected simulated outcome, got %q", result.Outcome)
	}
}

func TestSimulatedSender_SyntheticFailure(t *testing.T) {
	sender := NewSimulatedSender(discardLogger(), func() float64 { return 0.99 })

	result, err := sender.Send(context.Background(), Message{To: []string{"a@example.com"}})
	if err == nil {
		t.Fatal("expected synthetic failure")
	}
	if result.Outcome != OutcomeFailed {
		t.Errorf("expected failed outcome, got %q", result.Outcome)
	}
}

func TestFallbackSender_SwitchesOnlyWhenUnreachable(t *testing.T) {
	t.Run("unreachable primary falls back to simulated", func(t *testing.T) {
		primary := &senderStub{err: &SendError{Message: "dial tcp: connection refused", Unreachable: true}}
		fallback := NewFallbackSender(primary,
			NewSimulatedSender(discardLogger(), func() float64 { return 0.0 }), discardLogger())

		result, err := fallback.Send(context.Background(), Message{To: []string{"a@example.com"}})
		if err != nil {
			t.Fatalf("Send: %v", err)
		}
		if result.Outcome != OutcomeSimulated {
			t.Errorf("expected simulated outcome, got %q", result.Outcome)
		}
	})

	t.Run("other failures pass through", func(t *testing.T) {
		primary := &senderStub{err: &SendError{Code: 550, Message: "mailbox unavailable"}}
		simulated := &senderStub{result: Result{Outcome: OutcomeSimulated}}
		fallback := NewFallbackSender(primary, simulated, discardLogger())

		_, err := fallback.Send(context.Background(), Message{To: []string{"a@example.com"}})
		var sendErr *SendError
		if !errors.As(err, &sendErr) || sendErr.Code != 550 {
			t.Fatalf("expected the 550 to pass through, got %v", err)
		}
		if simulated.calls != 0 {
			t.Errorf("simulated channel must not be used for non-transport failures")
		}
	})
}
