// Package postgres implements the storage.Backend interface on PostgreSQL
// by wrapping the GORM backend with a Postgres connection.
package postgres

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/keex74/ElmaReplayIO/internal/database"
	gormstorage "github.com/keex74/ElmaReplayIO/internal/storage/gorm"
)

// Backend is the GORM backend on a Postgres connection.
type Backend struct {
	*gormstorage.Backend
}

// New connects using the db.* settings.
func New(flushInterval time.Duration, manager *database.Manager, logger *slog.Logger) (*Backend, error) {
	db, err := manager.GetPostgresDB()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return &Backend{Backend: gormstorage.New(gormstorage.Dependencies{
		DB:            db,
		Setup:         manager.Setup,
		Logger:        logger,
		FlushInterval: flushInterval,
	})}, nil
}

// Close stops the writer and closes the connection pool.
func (b *Backend) Close() error {
	if err := b.Backend.Close(); err != nil {
		return err
	}
	sqlDB, err := b.DB().DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
