// Package healthcheck serves grpc.health.v1.Health and mirrors the database state
// into it so orchestrators can probe the service over gRPC or HTTP.
package healthcheck

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported next to the overall "" entry.
const ServiceName = "pos.backoffice"

type Pinger interface {
	Ping(ctx context.Context) error
}

type Checker struct {
	db       Pinger
	health   *health.Server
	log      *zap.Logger
	interval time.Duration
}

func New(db Pinger, log *zap.Logger, interval time.Duration) *Checker {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &Checker{db: db, health: hs, log: log, interval: interval}
}

// Check pings the database once and publishes the result.
func (c *Checker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	err := c.db.Ping(ctx)
	status := healthpb.HealthCheckResponse_SERVING
	if err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	c.health.SetServingStatus("", status)
	c.health.SetServingStatus(ServiceName, status)
	return err
}

// Run checks on every tick until ctx is done, then marks the service as shutting down.
func (c *Checker) Run(ctx context.Context) {
	t := time.NewTicker(c.interval)
	defer t.Stop()

	_ = c.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			c.health.Shutdown()
			return
		case <-t.C:
			if err := c.Check(ctx); err != nil && ctx.Err() == nil {
				c.log.Warn("database health check failed", zap.Error(err))
			}
		}
	}
}

// Serving reports the last published overall status.
func (c *Checker) Serving(ctx context.Context) bool {
	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{})
	return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
}

// Serve registers the health service on a new gRPC server accepting on lis.
// The returned server is already serving; stop it with GracefulStop.
func (c *Checker) Serve(lis net.Listener) *grpc.Server {
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, c.health)
	go func() {
		if err := srv.Serve(lis); err != nil {
			c.log.Error("grpc health server stopped", zap.Error(err))
		}
	}()
	return srv
}
