// Package grpc runs the optional gRPC endpoint carrying the standard
// grpc.health.v1 service, driven by periodic store pings.
package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/kavyaresto/kavyaserve/internal/dbx"
	"github.com/kavyaresto/kavyaserve/internal/logging"
)

// ServiceName is the health entry reported for the auth backend in
// addition to the overall ("") status.
const ServiceName = "kavyaserve.auth"

const (
	defaultPingInterval = 10 * time.Second
	pingTimeout         = 2 * time.Second
)

type HealthServer struct {
	address  string
	store    dbx.Pinger
	logger   logging.Logger
	interval time.Duration
	health   *health.Server
}

func NewHealthServer(a string, store dbx.Pinger, l logging.Logger) *HealthServer {
	return &HealthServer{
		address:  a,
		store:    store,
		logger:   l.With("module", "grpc_health"),
		interval: defaultPingInterval,
		health:   health.NewServer(),
	}
}

func (s *HealthServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.checkStore(ctx)

	go func() {
		t := time.NewTicker(s.interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				s.logger.Info(ctx, "Stopping gRPC health server...")
				s.health.Shutdown()
				srv.GracefulStop()
				return
			case <-t.C:
				s.checkStore(ctx)
			}
		}
	}()

	s.logger.Info(ctx, "Starting gRPC health server", "address", s.address)

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}

// checkStore pings the store and publishes the result for both the overall
// and the named service.
func (s *HealthServer) checkStore(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING

	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.store.PingContext(pctx); err != nil {
		s.logger.Warn(ctx, "store ping failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
