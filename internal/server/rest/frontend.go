package rest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func frontendDir(dir string) (string, bool) {
	if dir == "" {
		return "", false
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	fi, err := os.Stat(abs)
	if err != nil || !fi.IsDir() {
		return "", false
	}
	return abs, true
}

// mountFrontend serves the SPA bundle and answers every other non-API GET
// with index.html so client-side routes survive a reload.
func mountFrontend(app *fiber.App, dist string) {
	app.Static("/", dist)

	index := filepath.Join(dist, "index.html")
	app.Get("/*", func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api") {
			return fiber.ErrNotFound
		}
		return c.SendFile(index)
	})
}
