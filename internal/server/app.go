// Package server wires the backend together: configuration, the Postgres
// store and its migrations, the OTP mail sender, the auth service, the
// HTTP API and the optional gRPC health endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/kavyaresto/kavyaserve/internal/logging"
	"github.com/kavyaresto/kavyaserve/internal/server/auth"
	"github.com/kavyaresto/kavyaserve/internal/server/config"
	"github.com/kavyaresto/kavyaserve/internal/server/notify"
	"github.com/kavyaresto/kavyaserve/internal/server/repositories/repomanager"
	"github.com/kavyaresto/kavyaserve/internal/server/rest"
	"github.com/kavyaresto/kavyaserve/internal/server/services"

	gs "github.com/kavyaresto/kavyaserve/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	authService *services.AuthService
	sessions    *auth.SessionVerifier
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	sender, err := notify.New(c, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mail init error: %w", err)
	}
	logger.Info(ctx, "OTP mail transport selected", "transport", sender.TransportName())

	sessions := auth.NewSessionVerifier(c.SecretKey, c.TokenValidityDuration)
	as := services.NewAuthService(db, rm, sender, sessions, logger)

	return &App{config: c, logger: logger, db: db, authService: as, sessions: sessions}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewHTTPServer(app.config, app.authService, app.sessions, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHealthServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.GRPCHealthAddr, app.db, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until SIGINT/SIGTERM/SIGQUIT or until a server fails, then
// closes the store.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.GRPCHealthAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startHealthServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing db", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
