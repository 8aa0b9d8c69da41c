package notify

import (
	"context"
	"errors"
	"testing"

	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSendGrid struct {
	resp *sgResponse
	err  error
	got  *sgmail.SGMailV3
}

func (f *fakeSendGrid) SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*sgResponse, error) {
	f.got = email
	return f.resp, f.err
}

func TestSendGridTransport_Accepted(t *testing.T) {
	fake := &fakeSendGrid{resp: &sgResponse{StatusCode: 202}}
	tr := &SendGridTransport{client: fake}

	err := tr.Deliver(context.Background(), NewOTPMessage("from@x.com", "Ann", "ann@x.com", "123456"))
	require.NoError(t, err)

	require.NotNil(t, fake.got)
	assert.Equal(t, "from@x.com", fake.got.From.Address)
	assert.Equal(t, "Your OTP from KavyaServe", fake.got.Subject)
	require.Len(t, fake.got.Personalizations, 1)
	assert.Equal(t, "ann@x.com", fake.got.Personalizations[0].To[0].Address)
}

func TestSendGridTransport_RejectedStatus(t *testing.T) {
	tr := &SendGridTransport{client: &fakeSendGrid{resp: &sgResponse{StatusCode: 401, Body: "bad key"}}}

	err := tr.Deliver(context.Background(), NewOTPMessage("from@x.com", "Ann", "ann@x.com", "123456"))
	assert.ErrorContains(t, err, "status 401")
}

func TestSendGridTransport_ClientError(t *testing.T) {
	boom := errors.New("dial tcp: timeout")
	tr := &SendGridTransport{client: &fakeSendGrid{err: boom}}

	err := tr.Deliver(context.Background(), NewOTPMessage("from@x.com", "Ann", "ann@x.com", "123456"))
	assert.ErrorIs(t, err, boom)
}

func TestBuildMailMsg(t *testing.T) {
	m, err := buildMailMsg(NewOTPMessage("from@x.com", "Ann", "ann@x.com", "123456"))
	require.NoError(t, err)

	require.Len(t, m.GetFromString(), 1)
	assert.Contains(t, m.GetFromString()[0], "from@x.com")
	require.Len(t, m.GetToString(), 1)
	assert.Contains(t, m.GetToString()[0], "ann@x.com")
}

func TestBuildMailMsg_InvalidRecipient(t *testing.T) {
	_, err := buildMailMsg(NewOTPMessage("from@x.com", "Ann", "not an address", "123456"))
	assert.Error(t, err)
}

func TestNewSMTPTransport(t *testing.T) {
	tr, err := NewSMTPTransport("smtp.gmail.com", 587, "u@gmail.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "smtp", tr.Name())
}
