package notify

import (
	"context"

	"github.com/kavyaresto/kavyaserve/internal/logging"
)

// Transport hands a rendered message to a delivery channel.
type Transport interface {
	Name() string
	Deliver(ctx context.Context, msg Message) error
}

// MockTransport performs no network I/O. It only logs the message and
// always succeeds.
type MockTransport struct {
	name   string
	logger logging.Logger
}

func NewMockTransport(name string, logger logging.Logger) *MockTransport {
	return &MockTransport{name: name, logger: logger}
}

func (t *MockTransport) Name() string { return t.name }

func (t *MockTransport) Deliver(ctx context.Context, msg Message) error {
	t.logger.Info(ctx, "mock mail delivery",
		"transport", t.name, "to", msg.To, "from", msg.From, "subject", msg.Subject, "text", msg.Text)
	return nil
}
