// Package health tracks database reachability and reports it through the gRPC
// health service and an HTTP readiness endpoint.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/abgdnv/grocerytracker/pkg/config"
	"github.com/abgdnv/grocerytracker/pkg/web"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the gRPC health service name reported next to the server-wide "" entry.
const ServiceName = "inventory.v1.InventoryService"

// Pinger checks connectivity to a dependency. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor periodically pings the database and publishes the result.
type Monitor struct {
	pinger   Pinger
	server   *health.Server
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	ready    atomic.Bool
}

// NewMonitor creates a Monitor. The initial state is not serving until the first check succeeds.
func NewMonitor(pinger Pinger, server *health.Server, cfg config.HealthConfig, logger *slog.Logger) *Monitor {
	m := &Monitor{
		pinger:   pinger,
		server:   server,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		logger:   logger.With("component", "health"),
	}
	m.setStatus(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	return m
}

// Check pings once and updates the published status. It returns the ping error.
func (m *Monitor) Check(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.pinger.Ping(pingCtx)
	wasReady := m.ready.Swap(err == nil)
	switch {
	case err != nil && wasReady:
		m.logger.WarnContext(ctx, "Database became unreachable", "error", err)
	case err == nil && !wasReady:
		m.logger.InfoContext(ctx, "Database reachable")
	}
	if err != nil {
		m.setStatus(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	} else {
		m.setStatus(grpc_health_v1.HealthCheckResponse_SERVING)
	}
	return err
}

// Run checks immediately and then on every interval until ctx is done.
// On return every service is reported as not serving.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	_ = m.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			m.ready.Store(false)
			m.server.Shutdown()
			return nil
		case <-ticker.C:
			_ = m.Check(ctx)
		}
	}
}

// Ready reports the result of the last check.
func (m *Monitor) Ready() bool {
	return m.ready.Load()
}

// ReadinessHandler answers 200 while the database is reachable and 503 otherwise.
func (m *Monitor) ReadinessHandler(w http.ResponseWriter, _ *http.Request) {
	if m.Ready() {
		web.RespondJSON(w, m.logger, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	web.RespondJSON(w, m.logger, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
}

func (m *Monitor) setStatus(status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	m.server.SetServingStatus("", status)
	m.server.SetServingStatus(ServiceName, status)
}
