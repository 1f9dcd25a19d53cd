// Package merge builds comparison replays from a base ride and newly
// driven rides of the same level.
package merge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/keex74/ElmaReplayIO/internal/stats"
	"github.com/keex74/ElmaReplayIO/pkg/core"
	"github.com/keex74/ElmaReplayIO/pkg/replay"
)

var (
	ErrMultiRideBase = errors.New("multi-ride replay cannot be used as base")
	ErrLevelMismatch = errors.New("replay is for a different level than the base")
)

// Session holds the base ride new rides are merged against. It is owned by
// its caller and is not safe for concurrent use.
type Session struct {
	base  core.Ride
	level string
}

// NewSession starts a session from a single-ride replay.
func NewSession(base *core.Replay) (*Session, error) {
	if base == nil || len(base.Rides) == 0 {
		return nil, core.ErrNoRides
	}
	if base.IsMulti() {
		return nil, ErrMultiRideBase
	}
	main := base.MainRide()
	return &Session{base: *main, level: main.Header.LevelName}, nil
}

// Level is the level name every merged ride must carry.
func (s *Session) Level() string {
	return s.level
}

// Base returns the base ride.
func (s *Session) Base() *core.Ride {
	return &s.base
}

// Result is a merged replay plus the apple comparison that goes with it.
type Result struct {
	Replay *core.Replay
	Apples []stats.AppleDelta
}

// Merge pairs the base ride with the main ride of next.
func (s *Session) Merge(next *core.Replay) (*Result, error) {
	if next == nil || len(next.Rides) == 0 {
		return nil, core.ErrNoRides
	}
	ride := next.MainRide()
	if ride.Header.LevelName != s.level {
		return nil, fmt.Errorf("%w: %q, base is %q", ErrLevelMismatch, ride.Header.LevelName, s.level)
	}
	return &Result{
		Replay: &core.Replay{Rides: []core.Ride{s.base, *ride}},
		Apples: stats.CompareApples(&s.base, ride),
	}, nil
}

// MergeFile decodes the replay at path and merges it.
func (s *Session) MergeFile(path string, opts replay.Options) (*Result, error) {
	next, err := replay.DecodeFile(path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read new replay: %w", err)
	}
	return s.Merge(next)
}

// WriteFile encodes rep and moves it into place at path, so readers never
// observe a partially written replay.
func WriteFile(path string, rep *core.Replay) error {
	b, err := replay.Marshal(rep)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".merge-*.rec")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write merged replay: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write merged replay: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move merged replay into place: %w", err)
	}
	return nil
}
