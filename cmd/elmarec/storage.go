package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/keex74/ElmaReplayIO/internal/config"
	"github.com/keex74/ElmaReplayIO/internal/database"
	"github.com/keex74/ElmaReplayIO/internal/influx"
	"github.com/keex74/ElmaReplayIO/internal/logging"
	"github.com/keex74/ElmaReplayIO/internal/storage"
	"github.com/keex74/ElmaReplayIO/internal/storage/memory"
	pgstorage "github.com/keex74/ElmaReplayIO/internal/storage/postgres"
	sqlitestorage "github.com/keex74/ElmaReplayIO/internal/storage/sqlite"
)

// archive is the ride archive of one command run plus the optional
// InfluxDB sink.
type archive struct {
	backend storage.Backend
	influx  *influx.Manager
}

func zeroLogger() zerolog.Logger {
	var w io.Writer
	if logFile != nil {
		w = logFile
	}
	return logging.NewZerolog(w, viper.GetString("logLevel"))
}

func openArchive(ctx context.Context) (*archive, error) {
	storageCfg := config.GetStorageConfig()

	backend, err := createStorageBackend(storageCfg)
	if err != nil {
		Logger.Error("Failed to create storage backend", "error", err)
		return nil, err
	}
	if err := backend.Init(); err != nil {
		Logger.Error("Failed to initialize storage backend", "error", err)
		return nil, err
	}
	a := &archive{backend: backend}

	if viper.GetBool("influx.enabled") {
		backupPath := filepath.Join(viper.GetString("logsDir"), "influx_backup.lp.gz")
		m := influx.NewManager(zeroLogger(), backupPath)
		if err := m.Connect(ctx); err != nil {
			Logger.Warn("InfluxDB sink disabled", "error", err)
		} else {
			a.influx = m
		}
	}
	return a, nil
}

func createStorageBackend(storageCfg config.StorageConfig) (storage.Backend, error) {
	switch storageCfg.Type {
	case "postgres":
		backend, err := pgstorage.New(storageCfg.FlushInterval, database.NewManager(zeroLogger()), Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres backend: %w", err)
		}
		Logger.Info("Postgres storage backend initialized")
		return backend, nil

	case "sqlite":
		backend, err := sqlitestorage.New(storageCfg.SQLite, storageCfg.FlushInterval, database.NewManager(zeroLogger()), Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		Logger.Info("SQLite storage backend initialized", "path", storageCfg.SQLite.Path)
		return backend, nil

	case "memory", "":
		Logger.Info("Memory storage backend initialized")
		return memory.New(storageCfg.Memory), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}

// save archives r and forwards it to InfluxDB when the sink is connected.
func (a *archive) save(r *storage.Ride) error {
	if err := a.backend.SaveRide(r); err != nil {
		return fmt.Errorf("failed to archive ride: %w", err)
	}
	if a.influx != nil {
		if err := a.influx.WriteRide(r); err != nil {
			Logger.Warn("Failed to write ride point", "level", r.Level, "error", err)
		}
	}
	return nil
}

func (a *archive) hasRides() bool {
	rides, err := a.backend.Rides("")
	return err == nil && len(rides) > 0
}

// close exports a non-empty session and releases the backends.
func (a *archive) close() error {
	var errs []error
	if exp, ok := a.backend.(storage.Exportable); ok && a.hasRides() {
		if err := exp.EndSession(); err != nil {
			errs = append(errs, fmt.Errorf("failed to export archive: %w", err))
		} else if path := exp.GetExportedFilePath(); path != "" {
			Logger.Info("Archive exported", "path", path)
		}
	}
	errs = append(errs, a.backend.Close())
	if a.influx != nil {
		errs = append(errs, a.influx.Close())
	}
	return errors.Join(errs...)
}
