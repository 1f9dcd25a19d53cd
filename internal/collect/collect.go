// Package collect files newly driven replays into per-level folders.
package collect

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/keex74/ElmaReplayIO/internal/util"
	"github.com/keex74/ElmaReplayIO/pkg/core"
	"github.com/keex74/ElmaReplayIO/pkg/replay"
)

// ErrNoLevelName is returned for replays whose header names no level.
var ErrNoLevelName = errors.New("replay has no level name")

// Stem returns the level name without its extension, made safe for use
// as a directory name.
func Stem(levelName string) string {
	return util.SafeFileName(strings.TrimSuffix(levelName, filepath.Ext(levelName)))
}

// TargetPath returns <target>/<stem>/<yyyyMMdd-HHmmss-fff>_<stem>.rec.
func TargetPath(target, levelName string, at time.Time) string {
	stem := Stem(levelName)
	name := fmt.Sprintf("%s-%03d_%s.rec", at.Format("20060102-150405"), at.Nanosecond()/int(time.Millisecond), stem)
	return filepath.Join(target, stem, name)
}

// Collector copies replays into a target directory.
type Collector struct {
	target string
	opts   replay.Options
	now    func() time.Time
}

// New creates a collector writing below target.
func New(target string, opts replay.Options) *Collector {
	return &Collector{target: target, opts: opts, now: time.Now}
}

// Collect decodes src to learn its level and copies it into the level's
// folder. The decoded replay is returned with the destination path.
func (c *Collector) Collect(src string) (string, *core.Replay, error) {
	rep, err := replay.DecodeFile(src, c.opts)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read new replay: %w", err)
	}
	name := rep.MainRide().Header.LevelName
	if Stem(name) == "" {
		return "", nil, ErrNoLevelName
	}

	dst := TargetPath(c.target, name, c.now())
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", nil, fmt.Errorf("failed to create level folder: %w", err)
	}
	if err := copyFile(src, dst); err != nil {
		return "", nil, fmt.Errorf("failed to copy replay: %w", err)
	}
	return dst, rep, nil
}

// copyFile refuses to overwrite an existing destination.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
