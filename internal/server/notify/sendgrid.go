package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// sendgridClient is the subset of *sendgrid.Client used here.
type sendgridClient interface {
	SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*sgResponse, error)
}

// SendGridTransport delivers through the SendGrid v3 mail API.
type SendGridTransport struct {
	client sendgridClient
}

func NewSendGridTransport(apiKey string) *SendGridTransport {
	return &SendGridTransport{client: sgAdapter{c: sendgrid.NewSendClient(apiKey)}}
}

func (t *SendGridTransport) Name() string { return "sendgrid" }

func (t *SendGridTransport) Deliver(ctx context.Context, msg Message) error {
	from := sgmail.NewEmail("KavyaServe", msg.From)
	to := sgmail.NewEmail(msg.ToName, msg.To)
	email := sgmail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)

	resp, err := t.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

type sgResponse struct {
	StatusCode int
	Body       string
}

type sgAdapter struct {
	c *sendgrid.Client
}

func (a sgAdapter) SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*sgResponse, error) {
	resp, err := a.c.SendWithContext(ctx, email)
	if err != nil {
		return nil, err
	}
	return &sgResponse{StatusCode: resp.StatusCode, Body: resp.Body}, nil
}
