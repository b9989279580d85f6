package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/vegatran/GaraManager-sub003/pkg/logger"
)

// Pinger reports database reachability.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthReporter drives the health service from database pings.
type HealthReporter struct {
	server   *health.Server
	db       Pinger
	interval time.Duration
	timeout  time.Duration
}

// NewHealthReporter creates a reporter over a fresh health server. Every
// service starts as NOT_SERVING until the first successful ping.
func NewHealthReporter(db Pinger, interval time.Duration) *HealthReporter {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	server := health.NewServer()
	server.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	server.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &HealthReporter{
		server:   server,
		db:       db,
		interval: interval,
		timeout:  2 * time.Second,
	}
}

// Server exposes the underlying health server for registration.
func (h *HealthReporter) Server() *health.Server {
	return h.server
}

// Check pings the database once and publishes the result.
func (h *HealthReporter) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := h.db.PingContext(ctx); err != nil {
		logger.Warn(ctx).Err(err).Msg("Database ping failed, reporting NOT_SERVING")
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
	return status
}

// Run checks on every tick until ctx is done, then marks the server as
// shutting down.
func (h *HealthReporter) Run(ctx context.Context) {
	h.Check(ctx)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}
