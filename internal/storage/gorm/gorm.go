// Package gormstorage implements the storage.Backend interface on GORM with
// an internal queue and a background writer goroutine. It is shared by the
// sqlite and postgres backends, which only differ in how they connect.
package gormstorage

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/keex74/ElmaReplayIO/internal/model"
	"github.com/keex74/ElmaReplayIO/internal/model/convert"
	"github.com/keex74/ElmaReplayIO/internal/queue"
	"github.com/keex74/ElmaReplayIO/internal/storage"

	"gorm.io/gorm"
)

// DefaultFlushInterval is how often queued rides are written.
const DefaultFlushInterval = 2 * time.Second

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB            *gorm.DB
	Setup         func(db *gorm.DB) error // schema migration, run by Init
	Logger        *slog.Logger
	FlushInterval time.Duration
}

// Backend implements storage.Backend with queue-based batch writes.
type Backend struct {
	deps     Dependencies
	rides    *queue.Queue[model.RideRecord]
	flushMu  sync.Mutex
	stopChan chan struct{}
	done     chan struct{}
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = DefaultFlushInterval
	}
	return &Backend{
		deps:  deps,
		rides: queue.New[model.RideRecord](),
	}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init runs schema migration and starts the DB writer goroutine.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return fmt.Errorf("no database configured")
	}
	if b.deps.Setup != nil {
		if err := b.deps.Setup(b.deps.DB); err != nil {
			return fmt.Errorf("failed to setup DB: %w", err)
		}
	}

	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})
	go b.writeLoop()
	return nil
}

// Close stops the DB writer goroutine and writes whatever is still queued.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
		<-b.done
		b.stopChan = nil
	}
	return b.Flush()
}

// SaveRide converts r and queues it. IDs are assigned when the queue is
// flushed and are not reported back to r.
func (b *Backend) SaveRide(r *storage.Ride) error {
	b.rides.Push(convert.RideToRecord(*r))
	return nil
}

// Rides flushes pending writes and reads the rides of level, or all rides.
func (b *Backend) Rides(level string) ([]storage.Ride, error) {
	if err := b.Flush(); err != nil {
		return nil, err
	}

	var records []model.RideRecord
	q := b.deps.DB.Order("id")
	if level != "" {
		q = q.Where("level = ?", level)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to read rides: %w", err)
	}

	out := make([]storage.Ride, 0, len(records))
	for _, rec := range records {
		r, err := convert.RecordToRide(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Pending returns the number of queued rides.
func (b *Backend) Pending() int {
	return b.rides.Len()
}

// Flush writes all queued rides in one batch. Rides that fail to write
// are put back at the head of the queue.
func (b *Backend) Flush() error {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	if b.rides.Empty() {
		return nil
	}
	items := b.rides.Drain()
	start := time.Now()
	if err := b.deps.DB.CreateInBatches(items, 500).Error; err != nil {
		b.rides.Requeue(items)
		return fmt.Errorf("failed to write rides: %w", err)
	}
	b.deps.Logger.Debug("Wrote rides", "count", len(items), "duration", time.Since(start))
	return nil
}

// writeLoop periodically drains the queue into the DB.
func (b *Backend) writeLoop() {
	defer close(b.done)
	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.Flush(); err != nil {
				b.deps.Logger.Error("Error writing rides", "error", err)
			}
		}
	}
}
