// Package notify delivers one-time codes by e-mail through whichever
// transport was selected at startup.
package notify

import (
	"fmt"
	"html"
)

const (
	defaultFrom = "no-reply@kavyaresto.com"
	otpSubject  = "Your OTP from KavyaServe"
)

// Message is a rendered e-mail ready for a Transport.
type Message struct {
	From    string
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// NewOTPMessage renders the verification e-mail carrying code.
func NewOTPMessage(from, name, email, code string) Message {
	if name == "" {
		name = "User"
	}
	safeName := html.EscapeString(name)

	return Message{
		From:    from,
		To:      email,
		ToName:  name,
		Subject: otpSubject,
		Text: fmt.Sprintf("Hello %s,\n\nYour OTP is %s. It expires in 10 minutes.\n\n"+
			"If you didn't request this, ignore this mail.", name, code),
		HTML: fmt.Sprintf("<p>Hello %s,</p><p>Your one-time verification code (OTP) is <strong>%s</strong>.</p>"+
			"<p>This code expires in 10 minutes.</p><p>If you didn't request this, please ignore this email.</p>",
			safeName, code),
	}
}

// SenderAddress picks the From address: explicit override first, then the
// SMTP login, then the built-in no-reply address.
func SenderAddress(emailFrom, emailUser string) string {
	switch {
	case emailFrom != "":
		return emailFrom
	case emailUser != "":
		return emailUser
	default:
		return defaultFrom
	}
}
