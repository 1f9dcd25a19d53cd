package stats

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keex74/ElmaReplayIO/pkg/core"
	"github.com/keex74/ElmaReplayIO/pkg/replay"
)

func ride(frames int32, events ...core.Event) *core.Ride {
	return &core.Ride{
		Header: core.Header{LevelName: "QWQUU001.LEV", Link: 99, FrameCount: frames},
		Frames: make([]core.Frame, frames),
		Events: events,
	}
}

func apple(ms int) core.Event {
	return core.Event{Kind: core.EventAppleTake, Time: time.Duration(ms) * time.Millisecond}
}

func touch(ms int) core.Event {
	return core.Event{Kind: core.EventObjectTouch, Time: time.Duration(ms) * time.Millisecond}
}

func TestSummarize(t *testing.T) {
	r := ride(300, touch(1000), apple(1000), core.Event{Kind: core.EventTurn}, touch(9500))

	s := Summarize(r)

	assert.Equal(t, "QWQUU001.LEV", s.Level)
	assert.Equal(t, uint32(99), s.Link)
	assert.Equal(t, int32(300), s.Frames)
	assert.Equal(t, 4, s.Events)
	assert.Equal(t, 1, s.Apples)
	assert.Equal(t, "10.000", Seconds(s.Duration))
	assert.True(t, s.HasObjectTouch)
	assert.Equal(t, 9500*time.Millisecond, s.LastObjectTouch)
}

func TestSummarize_NoObjectTouch(t *testing.T) {
	s := Summarize(ride(0))
	assert.False(t, s.HasObjectTouch)
	assert.Zero(t, s.Duration)
	assert.Zero(t, s.Apples)
}

func TestAppleTimes(t *testing.T) {
	r := ride(0, apple(100), touch(150), apple(200))
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, AppleTimes(r))
	assert.Empty(t, AppleTimes(ride(0)))
}

func TestCompareApples(t *testing.T) {
	base := ride(0, apple(1000), apple(2500))
	next := ride(0, apple(900), apple(2600), apple(4000))

	rows := CompareApples(base, next)
	require.Len(t, rows, 3)

	tests := []struct {
		row      AppleDelta
		expected string
	}{
		{rows[0], "Apple #000 - 1.000 - 0.900 - Delta: -0.100s"},
		{rows[1], "Apple #001 - 2.500 - 2.600 - Delta: 0.100s"},
		{rows[2], "Apple #002 - --- - 4.000"},
		{AppleDelta{Index: 3, Base: time.Second, HasBase: true}, "Apple #003 - 1.000 - ---"},
		{AppleDelta{Index: 4}, "Apple #004 - --- - ---"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.row.String())
		})
	}

	d, ok := rows[0].Delta()
	assert.True(t, ok)
	assert.Equal(t, -100*time.Millisecond, d)
	_, ok = rows[2].Delta()
	assert.False(t, ok)
}

func samples(apples ...int) []Sample {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	out := make([]Sample, len(apples))
	for i, a := range apples {
		out[i] = Sample{
			Path:     filepath.Join("rec", "r.rec"),
			Time:     base.Add(time.Duration(i) * time.Minute),
			Apples:   a,
			Duration: time.Duration(a) * time.Second,
		}
	}
	return out
}

func TestAverages(t *testing.T) {
	batches := Averages(samples(1, 3, 5, 7, 10), 2)
	require.Len(t, batches, 3)

	assert.Equal(t, 2, batches[0].Last)
	assert.Equal(t, 2.0, batches[0].Apples)
	assert.Equal(t, 2*time.Second, batches[0].Duration)

	assert.Equal(t, 6.0, batches[1].Apples)
	assert.Equal(t, 5, batches[2].Last)
	assert.Equal(t, 10.0, batches[2].Apples)
	assert.Equal(t, "00005    2024-03-01 12:04:00    10    10.000", batches[2].String())
}

func TestAverages_DefaultSize(t *testing.T) {
	batches := Averages(samples(make([]int, 25)...), 0)
	require.Len(t, batches, 3)
	assert.Equal(t, []int{10, 20, 25}, []int{batches[0].Last, batches[1].Last, batches[2].Last})
	assert.Empty(t, Averages(nil, 5))
}

func TestDistribution(t *testing.T) {
	shares := Distribution(samples(3, 1, 3, 3))
	require.Len(t, shares, 2)
	assert.Equal(t, Share{Apples: 1, Count: 1, Percent: 25}, shares[0])
	assert.Equal(t, Share{Apples: 3, Count: 3, Percent: 75}, shares[1])
	assert.Equal(t, "3    75", shares[1].String())
	assert.Empty(t, Distribution(nil))
}

func TestLoadSamples(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, apples int) {
		r := ride(3)
		for i := 0; i < apples; i++ {
			r.Events = append(r.Events, apple(100*(i+1)))
		}
		require.NoError(t, replay.EncodeFile(filepath.Join(dir, name), &core.Replay{Rides: []core.Ride{*r}}))
	}
	write("b.rec", 2)
	write("a.rec", 1)
	write("c.REC", 0)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.rec"), []byte{1, 2, 3}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	var failed []string
	got, err := LoadSamples(dir, replay.Options{}, func(path string, err error) {
		failed = append(failed, filepath.Base(path))
		assert.Error(t, err)
	})
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "a.rec", filepath.Base(got[0].Path))
	assert.Equal(t, 1, got[0].Apples)
	assert.Equal(t, 2, got[1].Apples)
	assert.Equal(t, "c.REC", filepath.Base(got[2].Path))
	assert.Equal(t, 3*core.FrameDuration, got[0].Duration)
	assert.Equal(t, []string{"bad.rec"}, failed)
}

func TestLoadSamples_MissingDir(t *testing.T) {
	_, err := LoadSamples(filepath.Join(t.TempDir(), "none"), replay.Options{}, nil)
	require.Error(t, err)
}
