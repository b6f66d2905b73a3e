package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/grocerytracker/pkg/config"
	"github.com/abgdnv/grocerytracker/pkg/web"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewHTTPServer creates and configures a new HTTP server instance.
func NewHTTPServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Timeout.Read,
		WriteTimeout:      cfg.Timeout.Write,
		IdleTimeout:       cfg.Timeout.Idle,
		ReadHeaderTimeout: cfg.Timeout.ReadHeader,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}

// RouterOption adds optional middleware to the router built by NewChiRouter.
type RouterOption func(mux *chi.Mux)

// WithCORS restricts cross-origin access to the configured origins.
func WithCORS(cfg config.CORSConfig) RouterOption {
	return func(mux *chi.Mux) {
		mux.Use(web.CORS(cfg))
	}
}

// WithTracing wraps every request in an otelhttp server span.
func WithTracing(operation string) RouterOption {
	return func(mux *chi.Mux) {
		mux.Use(otelhttp.NewMiddleware(operation))
	}
}

// NewChiRouter creates a new Chi router with a set of
// middleware for request ID injection, structured logging, and recovery.
// Options are applied after the base middleware, in order.
func NewChiRouter(logger *slog.Logger, opts ...RouterOption) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(web.RequestIDInjector)
	mux.Use(web.StructuredLogger(logger))
	mux.Use(web.Recoverer(logger))
	for _, opt := range opts {
		opt(mux)
	}
	return mux
}
