// Package otp issues the six-digit codes used to confirm an e-mail address.
package otp

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
	"strconv"
	"time"
)

const (
	// TTL is how long an issued code stays usable.
	TTL = 10 * time.Minute

	minCode = 100000
	maxCode = 999999
)

// Challenge is a pending code and the instant it stops being usable.
type Challenge struct {
	Code      string
	ExpiresAt time.Time
}

// Generate returns a uniformly random code in [100000, 999999].
func Generate() string {
	n, err := rand.Int(rand.Reader, big.NewInt(maxCode-minCode+1))
	if err != nil {
		return strconv.Itoa(minCode + mrand.IntN(maxCode-minCode+1))
	}
	return strconv.FormatInt(minCode+n.Int64(), 10)
}

// New issues a fresh challenge valid for TTL from now.
func New(now time.Time) Challenge {
	return Challenge{Code: Generate(), ExpiresAt: now.Add(TTL)}
}

// Usable reports whether a challenge expiring at expiresAt may still be
// redeemed at now. The expiry instant itself is already too late.
func Usable(expiresAt, now time.Time) bool {
	return !expiresAt.IsZero() && now.Before(expiresAt)
}
