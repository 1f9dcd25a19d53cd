package stats

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/keex74/ElmaReplayIO/pkg/core"
	"github.com/keex74/ElmaReplayIO/pkg/replay"
)

// DefaultAverage is the batch size used when none is configured.
const DefaultAverage = 10

// Sample is the main ride of one replay file in a batch.
type Sample struct {
	Path     string
	Time     time.Time
	Apples   int
	Duration time.Duration
}

// SampleOf builds the sample of a decoded replay.
func SampleOf(path string, t time.Time, rep *core.Replay) Sample {
	main := rep.MainRide()
	return Sample{Path: path, Time: t.UTC(), Apples: main.AppleCount(), Duration: main.Duration()}
}

// LoadSamples decodes every *.rec file in dir in name order. Files that
// fail to decode are reported to onError and skipped.
func LoadSamples(dir string, opts replay.Options, onError func(path string, err error)) ([]Sample, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list replays: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".rec") {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)

	samples := make([]Sample, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		rep, err := replay.DecodeFile(path, opts)
		if err == nil {
			var info os.FileInfo
			if info, err = os.Stat(path); err == nil {
				samples = append(samples, SampleOf(path, info.ModTime(), rep))
				continue
			}
		}
		if onError != nil {
			onError(path, err)
		}
	}
	return samples, nil
}

// Batch is the average over a run of consecutive samples.
type Batch struct {
	// Last is the 1-based position of the batch's final sample.
	Last     int
	Time     time.Time
	Apples   float64
	Duration time.Duration
}

func (b Batch) String() string {
	return fmt.Sprintf("%05d    %s    %g    %s", b.Last, b.Time.Format(time.DateTime), b.Apples, Seconds(b.Duration))
}

// Averages groups samples into runs of n and averages each run. A final
// shorter run is averaged over its own length. n below one selects
// DefaultAverage.
func Averages(samples []Sample, n int) []Batch {
	if n <= 0 {
		n = DefaultAverage
	}
	var out []Batch
	for start := 0; start < len(samples); start += n {
		group := samples[start:min(start+n, len(samples))]
		var apples int
		var total time.Duration
		for _, s := range group {
			apples += s.Apples
			total += s.Duration
		}
		out = append(out, Batch{
			Last:     start + len(group),
			Time:     group[len(group)-1].Time,
			Apples:   float64(apples) / float64(len(group)),
			Duration: total / time.Duration(len(group)),
		})
	}
	return out
}

// Share is how often rides ended with a given apple count.
type Share struct {
	Apples  int
	Count   int
	Percent float64
}

func (s Share) String() string {
	return fmt.Sprintf("%d    %g", s.Apples, s.Percent)
}

// Distribution returns the apple-count shares sorted by apple count.
func Distribution(samples []Sample) []Share {
	counts := make(map[int]int)
	for _, s := range samples {
		counts[s.Apples]++
	}
	out := make([]Share, 0, len(counts))
	for apples, count := range counts {
		out = append(out, Share{
			Apples:  apples,
			Count:   count,
			Percent: float64(count) / float64(len(samples)) * 100,
		})
	}
	slices.SortFunc(out, func(a, b Share) int { return a.Apples - b.Apples })
	return out
}
