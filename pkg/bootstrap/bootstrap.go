// Package bootstrap wires process-wide resources: the logger and the database pool.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/abgdnv/grocerytracker/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewLogger creates the service logger writing JSON to stdout at the specified level.
func NewLogger(level string) *slog.Logger {
	return logger.New(level, os.Stdout)
}

// NewDbPool creates a new database connection pool and pings it, so a misconfigured
// database fails the startup instead of the first request.
func NewDbPool(ctx context.Context, url string, connectTimeout time.Duration) (*pgxpool.Pool, error) {
	poolCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	dbPool, errPool := pgxpool.NewWithConfig(poolCtx, poolCfg)
	if errPool != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", errPool)
	}
	if err := dbPool.Ping(poolCtx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return dbPool, nil
}
