package rest

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/kavyaresto/kavyaserve/internal/common"
)

// MessageResponse is the body of every plain success or failure reply.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeMessage(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(MessageResponse{Message: msg})
}

// failure carries the operation-specific wording for the two errors whose
// message depends on the endpoint.
type failure struct {
	validation string
	internal   string
}

var sentinelResponses = []struct {
	err    error
	status int
	msg    string
}{
	{common.ErrDuplicateEmail, fiber.StatusBadRequest, "Email already registered"},
	{common.ErrorNotFound, fiber.StatusNotFound, "User not found"},
	{common.ErrAlreadyVerified, fiber.StatusBadRequest, "User already verified"},
	{common.ErrInvalidCode, fiber.StatusBadRequest, "Invalid OTP"},
	{common.ErrCodeExpired, fiber.StatusBadRequest, "OTP expired"},
	{common.ErrUnverified, fiber.StatusForbidden, "Email not verified"},
	{common.ErrInvalidCredentials, fiber.StatusBadRequest, "Invalid credentials"},
	{common.ErrEmailDelivery, fiber.StatusInternalServerError, "Failed to send OTP email"},
}

// writeError maps a service error onto a status and a safe message.
// Anything unrecognised becomes a 500 without internal detail.
func writeError(c *fiber.Ctx, err error, f failure) error {
	if errors.Is(err, common.ErrValidation) {
		return writeMessage(c, fiber.StatusBadRequest, f.validation)
	}
	for _, r := range sentinelResponses {
		if errors.Is(err, r.err) {
			return writeMessage(c, r.status, r.msg)
		}
	}
	return writeMessage(c, fiber.StatusInternalServerError, f.internal)
}
