// internal/storage/storage.go
package storage

import (
	"time"

	"github.com/keex74/ElmaReplayIO/internal/stats"
	"github.com/keex74/ElmaReplayIO/pkg/core"
)

// Ride is one archived ride: the main ride of a replay file reduced to
// what the statistics need.
type Ride struct {
	ID         uint
	Source     string
	ArchivedAt time.Time
	Level      string
	Link       uint32
	Frames     int32
	Events     int
	Duration   time.Duration
	AppleTimes []time.Duration

	// Finish is the last object-touch time; Finished is false for rides
	// that never touched an object.
	Finish   time.Duration
	Finished bool
}

// Apples returns the number of apples taken.
func (r *Ride) Apples() int {
	return len(r.AppleTimes)
}

// RideOf builds the archive record of the main ride of rep.
func RideOf(source string, at time.Time, rep *core.Replay) Ride {
	main := rep.MainRide()
	sum := stats.Summarize(main)
	return Ride{
		Source:     source,
		ArchivedAt: at.UTC(),
		Level:      sum.Level,
		Link:       sum.Link,
		Frames:     sum.Frames,
		Events:     sum.Events,
		Duration:   sum.Duration,
		AppleTimes: stats.AppleTimes(main),
		Finish:     sum.LastObjectTouch,
		Finished:   sum.HasObjectTouch,
	}
}

// Backend is the interface all ride archives must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// SaveRide archives r. Backends that write synchronously assign r.ID.
	SaveRide(r *Ride) error

	// Rides returns the archived rides of a level in archive order, or of
	// every level when level is empty.
	Rides(level string) ([]Ride, error)
}

// Exportable is an optional interface for backends that write their
// contents to a file when a session ends.
type Exportable interface {
	EndSession() error
	GetExportedFilePath() string
}
