// Package stats computes ride summaries and apple statistics.
package stats

import (
	"fmt"
	"time"

	"github.com/keex74/ElmaReplayIO/pkg/core"
)

// Summary describes one ride.
type Summary struct {
	Level    string
	Link     uint32
	Frames   int32
	Events   int
	Apples   int
	Duration time.Duration

	// LastObjectTouch is the time of the final object-touch event, usually
	// the flower. HasObjectTouch is false for rides without one.
	LastObjectTouch time.Duration
	HasObjectTouch  bool
}

// Summarize builds the summary of r.
func Summarize(r *core.Ride) Summary {
	s := Summary{
		Level:    r.Header.LevelName,
		Link:     r.Header.Link,
		Frames:   r.Header.FrameCount,
		Events:   len(r.Events),
		Apples:   r.AppleCount(),
		Duration: r.Duration(),
	}
	if touches := r.EventsOf(core.EventObjectTouch); len(touches) > 0 {
		s.LastObjectTouch = touches[len(touches)-1].Time
		s.HasObjectTouch = true
	}
	return s
}

// AppleTimes returns the times of the apple-take events in ride order.
func AppleTimes(r *core.Ride) []time.Duration {
	takes := r.EventsOf(core.EventAppleTake)
	out := make([]time.Duration, len(takes))
	for i, e := range takes {
		out[i] = e.Time
	}
	return out
}

// Seconds formats d as seconds with millisecond precision.
func Seconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}

// AppleDelta pairs the n-th apple of a base ride with the n-th apple of a
// new ride. Either side may be missing.
type AppleDelta struct {
	Index   int
	Base    time.Duration
	New     time.Duration
	HasBase bool
	HasNew  bool
}

// Delta returns New minus Base when both apples were taken.
func (d AppleDelta) Delta() (time.Duration, bool) {
	if !d.HasBase || !d.HasNew {
		return 0, false
	}
	return d.New - d.Base, true
}

func (d AppleDelta) String() string {
	base, next := "---", "---"
	if d.HasBase {
		base = Seconds(d.Base)
	}
	if d.HasNew {
		next = Seconds(d.New)
	}
	s := fmt.Sprintf("Apple #%03d - %s - %s", d.Index, base, next)
	if delta, ok := d.Delta(); ok {
		s += fmt.Sprintf(" - Delta: %ss", Seconds(delta))
	}
	return s
}

// CompareApples lines up the apple times of two rides. The result is as
// long as the ride with more apples.
func CompareApples(base, next *core.Ride) []AppleDelta {
	bt, nt := AppleTimes(base), AppleTimes(next)
	out := make([]AppleDelta, max(len(bt), len(nt)))
	for i := range out {
		out[i].Index = i
		if i < len(bt) {
			out[i].Base, out[i].HasBase = bt[i], true
		}
		if i < len(nt) {
			out[i].New, out[i].HasNew = nt[i], true
		}
	}
	return out
}
