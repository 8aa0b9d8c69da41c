package rest

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/kavyaresto/kavyaserve/internal/logging"
)

// accessLog writes one structured line per request through l.
func accessLog(l logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		l.Info(c.UserContext(), "http request",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start),
			"ip", c.IP(),
		)

		return err
	}
}
