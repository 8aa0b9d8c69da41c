// Package rest exposes the auth flow over HTTP using fiber.
package rest

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/kavyaresto/kavyaserve/internal/logging"
	"github.com/kavyaresto/kavyaserve/internal/server/config"
)

const shutdownTimeout = 5 * time.Second

type HTTPServer struct {
	address string
	app     *fiber.App
	logger  logging.Logger
}

// NewHTTPServer builds the fiber app with middleware and routes. The
// frontend bundle is served only when cfg.FrontendDist is an existing
// directory.
func NewHTTPServer(cfg *config.Config, svc AuthService, sessions SessionAuthenticator, l logging.Logger) *HTTPServer {
	l = l.With("module", "http_server")

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := "Internal server error"
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				msg = e.Message
			}
			return writeMessage(c, code, msg)
		},
	})

	app.Use(accessLog(l))
	app.Use(recover.New())
	app.Use(cors.New(corsConfig(cfg)))

	h := &Handlers{svc: svc, sessions: sessions, logger: l}
	h.Register(app)

	if dist, ok := frontendDir(cfg.FrontendDist); ok {
		mountFrontend(app, dist)
		l.Info(context.Background(), "Serving frontend static files", "dir", dist)
	} else {
		app.Get("/", func(c *fiber.Ctx) error {
			return c.SendString("Backend is running!")
		})
	}

	return &HTTPServer{address: cfg.HTTPAddr(), app: app, logger: l}
}

// App returns the underlying fiber app, mainly for tests.
func (s *HTTPServer) App() *fiber.App { return s.app }

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	return s.app.Listen(s.address)
}

// corsConfig opens CORS to everyone for "*" and otherwise allows exactly
// the listed origins, ignoring case. A malformed entry never matches and an
// empty list lets no cross-origin request through.
func corsConfig(cfg *config.Config) cors.Config {
	if cfg.AllowAllOrigins() {
		return cors.Config{AllowOrigins: "*"}
	}

	allowed := make(map[string]struct{})
	for _, o := range cfg.AllowedOrigins() {
		allowed[strings.ToLower(o)] = struct{}{}
	}

	return cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			_, ok := allowed[origin]
			return ok
		},
	}
}
