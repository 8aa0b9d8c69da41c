package auth

import (
	"fmt"
	"time"

	"github.com/kavyaresto/kavyaserve/internal/common"
)

// SessionVerifier issues session tokens and resolves them back to user ids.
type SessionVerifier struct {
	secret   []byte
	validity time.Duration
}

func NewSessionVerifier(secret string, validity time.Duration) *SessionVerifier {
	return &SessionVerifier{secret: []byte(secret), validity: validity}
}

// Issue signs a token for userID valid for the configured window.
func (v *SessionVerifier) Issue(userID string) (string, error) {
	return GenerateToken(userID, v.secret, v.validity)
}

// Authenticate returns the user id embedded in token. Any failure is
// reported as common.ErrorUnauthorized wrapping the concrete cause.
func (v *SessionVerifier) Authenticate(token string) (string, error) {
	userID, err := GetUserIDFromToken(token, v.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}
	return userID, nil
}
