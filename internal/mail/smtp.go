package mail

import (
	"context"
	"errors"
	"net"
	"net/textproto"

	"gopkg.in/gomail.v2"
)

// SMTPConfig holds the delivery endpoint credentials.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SMTPSender delivers messages over SMTP using gomail.
type SMTPSender struct {
	dialer *gomail.Dialer
}

// NewSMTPSender builds the primary delivery channel.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)}
}

// Send delivers one message. The context is honored before dialing; gomail
// itself does not support cancellation mid-transfer.
func (s *SMTPSender) Send(ctx context.Context, msg Message) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{Outcome: OutcomeFailed, Detail: err.Error()}, err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To...)
	if len(msg.CC) > 0 {
		m.SetHeader("Cc", msg.CC...)
	}
	if len(msg.BCC) > 0 {
		m.SetHeader("Bcc", msg.BCC...)
	}
	m.SetHeader("Subject", msg.Subject)
	if msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	} else {
		m.SetBody("text/html", msg.HTML)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		sendErr := classifySMTPError(err)
		return Result{Outcome: OutcomeFailed, Detail: sendErr.Message}, sendErr
	}

	return Result{Outcome: OutcomeSent}, nil
}

// classifySMTPError maps transport and protocol failures onto SendError so
// the dispatcher can pick retry or fallback behavior.
func classifySMTPError(err error) *SendError {
	var netErr net.Error
	var opErr *net.OpError
	if errors.As(err, &opErr) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &SendError{Message: err.Error(), Unreachable: true}
	}

	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		switch protoErr.Code {
		// 421: service not available; 450-452: transient mailbox/system
		// pressure. Treated as provider rate limiting.
		case 421, 450, 451, 452:
			return &SendError{Code: protoErr.Code, Message: protoErr.Msg, RateLimited: true}
		}
		return &SendError{Code: protoErr.Code, Message: protoErr.Msg}
	}

	return &SendError{Message: err.Error()}
}
