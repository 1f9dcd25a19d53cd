// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/keex74/ElmaReplayIO/internal/logging"
	"github.com/keex74/ElmaReplayIO/internal/storage"
	"github.com/keex74/ElmaReplayIO/internal/util"
)

// ExportVersion is written to every archive export.
const ExportVersion = 1

// ArchiveExport is the root JSON structure
type ArchiveExport struct {
	Version      int         `json:"version"`
	SessionStart time.Time   `json:"sessionStart"`
	Levels       []LevelJSON `json:"levels"`
}

// LevelJSON groups the rides of one level
type LevelJSON struct {
	Name  string     `json:"name"`
	Link  uint32     `json:"link"`
	Rides []RideJSON `json:"rides"`
}

// RideJSON is one archived ride. Times are in milliseconds.
type RideJSON struct {
	ID           uint      `json:"id"`
	Source       string    `json:"source"`
	ArchivedAt   time.Time `json:"archivedAt"`
	Frames       int32     `json:"frames"`
	Events       int       `json:"events"`
	DurationMs   float64   `json:"durationMs"`
	AppleTimesMs []float64 `json:"appleTimesMs"`
	FinishMs     *float64  `json:"finishMs,omitempty"`
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// exportJSON writes the session's rides to a (gzipped) JSON file
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	timestamp := b.sessionStart.Format("20060102_150405")
	filename := util.SafeFileName(fmt.Sprintf("%s_%s.json", logging.ServiceName, timestamp))
	if b.cfg.CompressOutput {
		filename += ".gz"
	}
	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	// Ensure output directory exists
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if b.cfg.CompressOutput {
		if err := writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

// buildExport groups rides by level, in the order levels were first seen.
func (b *Backend) buildExport() ArchiveExport {
	export := ArchiveExport{
		Version:      ExportVersion,
		SessionStart: b.sessionStart.UTC(),
		Levels:       make([]LevelJSON, 0),
	}

	index := make(map[string]int)
	for _, r := range b.rides {
		key := fmt.Sprintf("%s\x00%d", r.Level, r.Link)
		i, ok := index[key]
		if !ok {
			i = len(export.Levels)
			index[key] = i
			export.Levels = append(export.Levels, LevelJSON{Name: r.Level, Link: r.Link, Rides: make([]RideJSON, 0)})
		}
		export.Levels[i].Rides = append(export.Levels[i].Rides, rideJSON(r))
	}
	return export
}

func rideJSON(r storage.Ride) RideJSON {
	out := RideJSON{
		ID:           r.ID,
		Source:       r.Source,
		ArchivedAt:   r.ArchivedAt,
		Frames:       r.Frames,
		Events:       r.Events,
		DurationMs:   millis(r.Duration),
		AppleTimesMs: make([]float64, len(r.AppleTimes)),
	}
	for i, t := range r.AppleTimes {
		out.AppleTimesMs[i] = millis(t)
	}
	if r.Finished {
		finish := millis(r.Finish)
		out.FinishMs = &finish
	}
	return out
}

func writeJSON(path string, data ArchiveExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func writeGzipJSON(path string, data ArchiveExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}
