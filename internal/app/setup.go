// Package app contains the application setup for the inventory service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/grocerytracker/internal/config"
	"github.com/abgdnv/grocerytracker/internal/health"
	"github.com/abgdnv/grocerytracker/internal/service"
	"github.com/abgdnv/grocerytracker/internal/store"
	"github.com/abgdnv/grocerytracker/internal/transport/rest"
	"github.com/abgdnv/grocerytracker/pkg/messaging"
	"github.com/abgdnv/grocerytracker/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const serviceName = "inventory-service"

type Dependencies struct {
	InventoryService service.InventoryService
	Monitor          *health.Monitor
	HealthServer     *grpchealth.Server
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

// SetupDependencies wires the store, service and health monitor.
// A nil publisher disables sale events.
func SetupDependencies(dbPool *pgxpool.Pool, publisher messaging.Publisher, cfg *config.Config, logger *slog.Logger) *Dependencies {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	inventoryService := service.NewService(store.NewPgStore(dbPool), publisher, logger)
	healthServer := grpchealth.NewServer()

	return &Dependencies{
		InventoryService: inventoryService,
		Monitor:          health.NewMonitor(dbPool, healthServer, cfg.Health, logger),
		HealthServer:     healthServer,
		Logger:           logger,
	}
}

// SetupHttpHandler builds the router with middleware and every route.
// Used by E2E tests to serve the application without a listening server.
func SetupHttpHandler(deps *Dependencies, cfg *config.Config) http.Handler {
	opts := []server.RouterOption{server.WithCORS(cfg.CORS)}
	if cfg.Telemetry.Traces.Enabled {
		opts = append(opts, server.WithTracing(serviceName))
	}
	mux := server.NewChiRouter(deps.Logger, opts...)
	wireRoutes(mux, deps, cfg)
	return mux
}

func wireRoutes(mux *chi.Mux, deps *Dependencies, cfg *config.Config) {
	inventoryHandler := rest.NewHandler(deps.InventoryService, deps.Logger)
	inventoryHandler.RegisterRoutes(mux)

	mux.Get("/readyz", deps.Monitor.ReadinessHandler)
	if deps.MetricsHandler != nil {
		mux.Method(http.MethodGet, cfg.Telemetry.Metrics.Path, deps.MetricsHandler)
	}
}

// SetupHttpServer creates and configures the HTTP server.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, SetupHttpHandler(deps, cfg))
}

// SetupGrpcServer creates the gRPC server exposing the standard health service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	healthRegisterFunc := func(s *grpc.Server) {
		grpc_health_v1.RegisterHealthServer(s, deps.HealthServer)
	}
	return server.NewGRPCServer(reflectionEnabled, healthRegisterFunc)
}
