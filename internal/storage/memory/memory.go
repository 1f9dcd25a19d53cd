// internal/storage/memory/memory.go
package memory

import (
	"sync"
	"time"

	"github.com/keex74/ElmaReplayIO/internal/config"
	"github.com/keex74/ElmaReplayIO/internal/storage"
)

// Backend keeps archived rides in memory and exports them to JSON when
// the session ends.
type Backend struct {
	cfg          config.MemoryConfig
	sessionStart time.Time
	now          func() time.Time

	rides          []storage.Ride
	idCounter      uint
	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{cfg: cfg, now: time.Now}
}

// Init starts a new session
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessionStart = b.now()
	b.rides = nil
	b.idCounter = 0
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// SaveRide stores a copy of r and assigns its ID.
func (b *Backend) SaveRide(r *storage.Ride) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	r.ID = b.idCounter
	stored := *r
	stored.AppleTimes = append([]time.Duration(nil), r.AppleTimes...)
	b.rides = append(b.rides, stored)
	return nil
}

// Rides returns the stored rides of level, or all rides.
func (b *Backend) Rides(level string) ([]storage.Ride, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]storage.Ride, 0, len(b.rides))
	for _, r := range b.rides {
		if level == "" || r.Level == level {
			out = append(out, r)
		}
	}
	return out, nil
}

// EndSession exports the session's rides.
func (b *Backend) EndSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.exportJSON()
}

// GetExportedFilePath returns the path of the last export, or "".
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
