package merge

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

func single(level string, frames int, apples ...int) *core.Replay {
	r := core.Ride{
		Header: core.Header{LevelName: level, Link: 5, FrameCount: int32(frames)},
		Frames: make([]core.Frame, frames),
	}
	for _, ms := range apples {
		r.Events = append(r.Events, core.Event{Kind: core.EventAppleTake, Time: time.Duration(ms) * time.Millisecond})
	}
	return &core.Replay{Rides: []core.Ride{r}}
}

func TestNewSession(t *testing.T) {
	tests := []struct {
		name string
		base *core.Replay
		err  error
	}{
		{"nil", nil, core.ErrNoRides},
		{"empty", &core.Replay{}, core.ErrNoRides},
		{"multi", &core.Replay{Rides: []core.Ride{{}, {}}}, ErrMultiRideBase},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSession(tt.base)
			require.ErrorIs(t, err, tt.err)
		})
	}

	s, err := NewSession(single("QWQUU001.LEV", 2))
	require.NoError(t, err)
	assert.Equal(t, "QWQUU001.LEV", s.Level())
	assert.Equal(t, int32(2), s.Base().Header.FrameCount)
}

func TestMerge(t *testing.T) {
	s, err := NewSession(single("QWQUU001.LEV", 2, 1000, 2000))
	require.NoError(t, err)

	res, err := s.Merge(single("QWQUU001.LEV", 3, 900))
	require.NoError(t, err)

	require.Len(t, res.Replay.Rides, 2)
	assert.Equal(t, int32(2), res.Replay.Rides[0].Header.FrameCount)
	assert.Equal(t, int32(3), res.Replay.Rides[1].Header.FrameCount)
	require.Len(t, res.Apples, 2)
	d, ok := res.Apples[0].Delta()
	require.True(t, ok)
	assert.Equal(t, -100*time.Millisecond, d)
	assert.False(t, res.Apples[1].HasNew)

	again, err := s.Merge(single("QWQUU001.LEV", 1))
	require.NoError(t, err)
	assert.Equal(t, int32(2), again.Replay.Rides[0].Header.FrameCount, "base survives earlier merges")
}

func TestMerge_Rejects(t *testing.T) {
	s, err := NewSession(single("QWQUU001.LEV", 0))
	require.NoError(t, err)

	_, err = s.Merge(single("QWQUU002.LEV", 0))
	require.ErrorIs(t, err, ErrLevelMismatch)

	_, err = s.Merge(&core.Replay{})
	require.ErrorIs(t, err, core.ErrNoRides)
}

func TestMergeFileAndWrite(t *testing.T) {
	dir := t.TempDir()
	lastPath := filepath.Join(dir, "!last.rec")
	outPath := filepath.Join(dir, "!automrg.rec")
	require.NoError(t, replay.EncodeFile(lastPath, single("QWQUU001.LEV", 4, 500)))

	s, err := NewSession(single("QWQUU001.LEV", 2, 700))
	require.NoError(t, err)
	res, err := s.MergeFile(lastPath, replay.Options{})
	require.NoError(t, err)

	require.NoError(t, WriteFile(outPath, res.Replay))

	got, err := replay.DecodeFile(outPath, replay.Options{})
	require.NoError(t, err)
	require.Len(t, got.Rides, 2)
	assert.True(t, got.Rides[0].Header.MultiRide)
	assert.True(t, got.Rides[1].Header.MultiRide)
	assert.Equal(t, 1, got.Rides[1].AppleCount())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp file left behind")
}

func TestMergeFile_Unreadable(t *testing.T) {
	s, err := NewSession(single("QWQUU001.LEV", 0))
	require.NoError(t, err)
	_, err = s.MergeFile(filepath.Join(t.TempDir(), "missing.rec"), replay.Options{})
	require.Error(t, err)
}

func TestWriteFile_InvalidReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.rec")
	require.ErrorIs(t, WriteFile(path, &core.Replay{}), core.ErrNoRides)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
