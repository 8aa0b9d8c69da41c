package rest

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/kavyaresto/kavyaserve/internal/common"
)

// sessionHandler receives the authenticated user id as an argument.
type sessionHandler func(c *fiber.Ctx, userID string) error

// requireSession checks the bearer token and calls next with the user id
// it resolves to.
func (h *Handlers) requireSession(next sessionHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(common.AuthorizationHeaderName))
		if !ok {
			return writeMessage(c, fiber.StatusUnauthorized, "No token provided")
		}

		userID, err := h.sessions.Authenticate(token)
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				return writeMessage(c, fiber.StatusUnauthorized, "Token expired")
			}
			return writeMessage(c, fiber.StatusUnauthorized, "Invalid token")
		}

		return next(c, userID)
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
