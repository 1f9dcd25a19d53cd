// Package levels finds the level file a replay was recorded on.
package levels

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/keex74/ElmaReplayIO/internal/cache"
	"github.com/keex74/ElmaReplayIO/pkg/core"
	"github.com/keex74/ElmaReplayIO/pkg/level"
	"github.com/keex74/ElmaReplayIO/pkg/replay"
)

// Dir returns the level directory that belongs to a replay file: the game
// keeps replays in rec/ and levels in the sibling lev/ directory.
func Dir(replayPath string) string {
	return filepath.Join(filepath.Dir(replayPath), "..", "lev")
}

// Locator resolves replay headers to levels. Lookups never fail the
// caller; a level that cannot be found or decoded yields nil.
type Locator struct {
	cache  *cache.LevelCache
	opts   level.DecodeOptions
	logger *slog.Logger
}

// NewLocator creates a locator. A nil cache disables caching and a nil
// logger discards lookup failures.
func NewLocator(c *cache.LevelCache, opts level.DecodeOptions, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Locator{cache: c, opts: opts, logger: logger}
}

// Find returns the level for h next to replayPath, or nil.
func (l *Locator) Find(h core.Header, replayPath string) *core.Level {
	key := cache.Key(h.LevelName, h.Link)
	if l.cache != nil {
		if lev, found := l.cache.Get(key); found {
			return lev
		}
	}

	dir := Dir(replayPath)
	lev, err := FindIn(dir, h, l.opts)
	if err != nil {
		l.logger.Debug("Level lookup failed", "level", h.LevelName, "link", h.Link, "dir", dir, "error", err)
	}
	// misses are retried on the next lookup
	if l.cache != nil && lev != nil {
		l.cache.Add(key, lev)
	}
	return lev
}

// Options returns replay decode options that attribute every ride of the
// file at replayPath to its level.
func (l *Locator) Options(replayPath string, mode replay.NameMode) replay.Options {
	return replay.Options{
		NameMode: mode,
		Resolve: func(h core.Header) replay.ObjectLookup {
			if lev := l.Find(h, replayPath); lev != nil {
				return lev
			}
			return nil
		},
	}
}

// FindIn scans dir for files named like the header's level, ignoring
// case, and returns the first whose link matches. A nil level with a nil
// error means no file matched.
func FindIn(dir string, h core.Header, opts level.DecodeOptions) (*core.Level, error) {
	if h.LevelName == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list level directory: %w", err)
	}

	var errs []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(e.Name(), h.LevelName) {
			continue
		}
		lev, err := level.DecodeFile(filepath.Join(dir, e.Name()), opts)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", e.Name(), err))
			continue
		}
		if lev.Link == h.Link {
			return lev, nil
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("no readable level with link %d: %s", h.Link, strings.Join(errs, "; "))
	}
	return nil, nil
}
