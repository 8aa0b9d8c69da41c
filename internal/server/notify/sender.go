package notify

import (
	"context"
	"fmt"

	"github.com/kavyaresto/kavyaserve/internal/logging"
	"github.com/kavyaresto/kavyaserve/internal/server/config"
)

// Outcome is the result of a delivery attempt. Err is set only when OK is
// false.
type Outcome struct {
	OK  bool
	Err error
}

// Sender renders OTP e-mails and passes them to a single Transport chosen
// once at construction. It never returns transport failures as errors or
// panics; they come back as a failed Outcome.
type Sender struct {
	transport Transport
	from      string
	logger    logging.Logger
}

func NewSender(t Transport, from string, logger logging.Logger) *Sender {
	return &Sender{transport: t, from: from, logger: logger.With("module", "notify", "transport", t.Name())}
}

// New selects the transport from configuration, in priority order:
// SKIP_EMAIL, SMTP credentials, SendGrid API key, and finally a logging mock.
func New(cfg *config.Config, logger logging.Logger) (*Sender, error) {
	ctx := context.Background()
	from := SenderAddress(cfg.EmailFrom, cfg.EmailUser)

	var t Transport
	switch {
	case cfg.SkipEmail:
		t = NewMockTransport("disabled", logger)
		logger.Info(ctx, "email sending is disabled via SKIP_EMAIL=true")
	case cfg.EmailUser != "" && cfg.EmailPass != "":
		smtp, err := NewSMTPTransport(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass)
		if err != nil {
			return nil, err
		}
		t = smtp
		logger.Info(ctx, "email transporter: using SMTP", "host", cfg.SMTPHost, "port", cfg.SMTPPort)
	case cfg.SendGridAPIKey != "":
		t = NewSendGridTransport(cfg.SendGridAPIKey)
		logger.Info(ctx, "email transporter: using SendGrid")
	default:
		t = NewMockTransport("fallback", logger)
		logger.Warn(ctx, "email transporter: no provider configured, using mock logger")
	}

	return NewSender(t, from, logger), nil
}

// TransportName names the active transport.
func (s *Sender) TransportName() string { return s.transport.Name() }

// SendOTP e-mails code to email, greeting the recipient by name.
func (s *Sender) SendOTP(ctx context.Context, name, email, code string) (out Outcome) {
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("mail transport panic: %v", p)
			s.logger.Error(ctx, "otp email delivery failed", "to", email, "error", err)
			out = Outcome{OK: false, Err: err}
		}
	}()

	msg := NewOTPMessage(s.from, name, email, code)
	if err := s.transport.Deliver(ctx, msg); err != nil {
		s.logger.Error(ctx, "otp email delivery failed", "to", email, "error", err)
		return Outcome{OK: false, Err: err}
	}

	s.logger.Debug(ctx, "otp email sent", "to", email)
	return Outcome{OK: true}
}
