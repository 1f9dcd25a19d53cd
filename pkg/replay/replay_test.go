package replay

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/keex74/ElmaReplayIO/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const headerSize = 4*5 + nameSlot + nameReserved

func sampleFrames(n int) []core.Frame {
	frames := make([]core.Frame, n)
	for i := range frames {
		frames[i] = core.Frame{
			BikePosition:       core.Pos(float32(i)*0.5, 3.25-float32(i)),
			LeftWheelPosition:  core.Pos(int16(-10-i), int16(20+i)),
			RightWheelPosition: core.Pos(int16(30), int16(-40)),
			HeadPosition:       core.Pos(int16(i), int16(-i)),
			BikeRotation:       int16(100 * i),
			LeftWheelRotation:  byte(i),
			RightWheelRotation: byte(250 - i),
			Direction:          core.Direction(i % 2),
			Throttle:           i%3 == 0,
			BackWheelSpeed:     byte(7 * i),
			CollisionStrength:  byte(i * i),
		}
	}
	return frames
}

func sampleEvents() []core.Event {
	return []core.Event{
		{Time: 120 * time.Millisecond, Kind: core.EventTurn},
		{Time: 400 * time.Millisecond, Kind: core.EventGroundTouch, Value: 3, GroundTouchStrength: 0.75},
		{Time: 1500 * time.Millisecond, Kind: core.EventObjectTouch, ObjectID: 1},
		{Time: 1500 * time.Millisecond, Kind: core.EventAppleTake, ObjectID: 1},
		{Time: 2 * time.Second, Kind: core.EventVoltRight},
		{Time: 3 * time.Second, Kind: core.EventVoltLeft},
		{Time: 4 * time.Second, Kind: core.EventObjectTouch, ObjectID: 2},
	}
}

func sampleRide(name string, frames int) core.Ride {
	return core.Ride{
		Header: core.Header{
			LevelName:  name,
			Link:       0xCAFE,
			FrameCount: int32(frames),
		},
		Frames: sampleFrames(frames),
		Events: sampleEvents(),
	}
}

func emptyRide() core.Ride {
	return core.Ride{Header: core.Header{LevelName: "QWQUU001.LEV"}}
}

func TestThrottleBits(t *testing.T) {
	tests := []struct {
		b         byte
		direction core.Direction
		throttle  bool
	}{
		{0b11, core.DirectionRight, true},
		{0b10, core.DirectionRight, false},
		{0b01, core.DirectionLeft, true},
		{0b00, core.DirectionLeft, false},
	}
	for _, tt := range tests {
		t.Run(tt.direction.String(), func(t *testing.T) {
			d, th := ThrottleState(tt.b)
			assert.Equal(t, tt.direction, d)
			assert.Equal(t, tt.throttle, th)
			assert.Equal(t, tt.b, ThrottleByte(d, th))
		})
	}

	t.Run("unused bits dropped", func(t *testing.T) {
		d, th := ThrottleState(0b1111_0011)
		assert.Equal(t, byte(0b11), ThrottleByte(d, th))
	})
}

func TestTranspose(t *testing.T) {
	frames := sampleFrames(9)
	c := columnsOf(frames)
	assert.Equal(t, 9, c.rows())
	assert.Equal(t, -frames[4].BikePosition.Y, c.bikeY[4])
	assert.Equal(t, ThrottleByte(frames[3].Direction, frames[3].Throttle), c.throttle[3])
	assert.Equal(t, frames, transpose(&c))

	empty := columnsOf(nil)
	assert.Empty(t, transpose(&empty))
}

func TestFramesWire(t *testing.T) {
	frames := sampleFrames(3)
	var buf bytes.Buffer
	require.NoError(t, EncodeFrames(&buf, frames))
	assert.Equal(t, 3*(2*4+7*2+5), buf.Len())

	// column major: the first three floats are the bike x column
	raw := buf.Bytes()
	for i := 0; i < 3; i++ {
		bits := binary.LittleEndian.Uint32(raw[4*i:])
		assert.Equal(t, frames[i].BikePosition.X, math.Float32frombits(bits))
	}

	got, err := DecodeFrames(bytes.NewReader(raw), 3)
	require.NoError(t, err)
	assert.Equal(t, frames, got)

	_, err = DecodeFrames(bytes.NewReader(raw[:len(raw)-1]), 3)
	assert.True(t, core.IsTruncated(err))

	_, err = DecodeFrames(bytes.NewReader(raw), -1)
	var fe *core.ReplayFormatError
	require.True(t, errors.As(err, &fe))
	assert.ErrorIs(t, err, core.ErrBadCount)
}

func TestHeader(t *testing.T) {
	h := core.Header{MultiRide: true, FlagTag: true, Link: 77, LevelName: "QWQUU001.LEV", FrameCount: 5}
	var buf bytes.Buffer
	require.NoError(t, EncodeHeader(&buf, h))
	require.Equal(t, headerSize, buf.Len())
	raw := buf.Bytes()

	for _, mode := range []NameMode{NameFixed, NameScan} {
		t.Run(mode.String(), func(t *testing.T) {
			r := bytes.NewReader(raw)
			got, err := DecodeHeader(r, mode)
			require.NoError(t, err)
			assert.Equal(t, h, got)
		})
	}

	t.Run("short name", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, EncodeHeader(&buf, core.Header{LevelName: "a.lev"}))
		got, err := DecodeHeader(&buf, NameFixed)
		require.NoError(t, err)
		assert.Equal(t, "a.lev", got.LevelName)
	})

	t.Run("bad version", func(t *testing.T) {
		bad := bytes.Clone(raw)
		binary.LittleEndian.PutUint32(bad[4:], 0x82)
		_, err := DecodeHeader(bytes.NewReader(bad), NameFixed)
		var rfe *core.ReplayFormatError
		require.True(t, errors.As(err, &rfe))
		assert.ErrorIs(t, err, core.ErrBadVersion)
	})

	t.Run("name too long", func(t *testing.T) {
		var buf bytes.Buffer
		err := EncodeHeader(&buf, core.Header{LevelName: "QWQUU001X.LEV"})
		var rfe *core.ReplayFormatError
		require.True(t, errors.As(err, &rfe))
		assert.ErrorIs(t, err, core.ErrNameTooLong)
		assert.Zero(t, buf.Len())
	})
}

func TestParseNameMode(t *testing.T) {
	m, err := ParseNameMode("scan")
	require.NoError(t, err)
	assert.Equal(t, NameScan, m)

	m, err = ParseNameMode("")
	require.NoError(t, err)
	assert.Equal(t, NameFixed, m)

	_, err = ParseNameMode("length")
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		rides []core.Ride
	}{
		{"single", []core.Ride{sampleRide("QWQUU001.LEV", 12)}},
		{"multi", []core.Ride{sampleRide("QWQUU001.LEV", 12), sampleRide("QWQUU001.LEV", 5)}},
		{"empty ride", []core.Ride{emptyRide()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &core.Replay{Rides: tt.rides}
			b, err := Marshal(src)
			require.NoError(t, err)

			got, err := Decode(bytes.NewReader(b), Options{})
			require.NoError(t, err)
			require.Len(t, got.Rides, len(src.Rides))
			assert.Equal(t, len(src.Rides) > 1, got.IsMulti())

			for i := range src.Rides {
				want, have := src.Rides[i], got.Rides[i]
				assert.Equal(t, len(src.Rides) > 1, have.Header.MultiRide)
				assert.Equal(t, want.Header.LevelName, have.Header.LevelName)
				assert.Equal(t, want.Header.Link, have.Header.Link)
				assert.Equal(t, want.Header.FrameCount, have.Header.FrameCount)
				assert.Equal(t, len(want.Frames), len(have.Frames))
				if len(want.Frames) > 0 {
					assert.Equal(t, want.Frames, have.Frames)
				}
				assert.Equal(t, len(want.Events), len(have.Events))
				if len(want.Events) > 0 {
					assert.Equal(t, want.Events, have.Events)
				}
				assert.Equal(t, want.AppleCount(), have.AppleCount())
			}

			again, err := Marshal(got)
			require.NoError(t, err)
			assert.Equal(t, b, again)
		})
	}
}

func TestEmptyRideLayout(t *testing.T) {
	b, err := Marshal(&core.Replay{Rides: []core.Ride{emptyRide()}})
	require.NoError(t, err)
	assert.Len(t, b, headerSize+4+4)
	assert.Equal(t, Trailer, binary.LittleEndian.Uint32(b[len(b)-4:]))

	got, err := Decode(bytes.NewReader(b), Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, got.MainRide().AppleCount())
	assert.Equal(t, time.Duration(0), got.MainRide().Duration())
}

func TestMultiFlagForced(t *testing.T) {
	ride := sampleRide("a.lev", 2)
	ride.Header.MultiRide = true
	b, err := Marshal(&core.Replay{Rides: []core.Ride{ride}})
	require.NoError(t, err)

	got, err := Decode(bytes.NewReader(b), Options{})
	require.NoError(t, err)
	assert.False(t, got.MainRide().Header.MultiRide)
}

func TestUnknownEventKind(t *testing.T) {
	ride := emptyRide()
	ride.Events = []core.Event{{Kind: core.EventTurn}}
	b, err := Marshal(&core.Replay{Rides: []core.Ride{ride}})
	require.NoError(t, err)

	kindOffset := headerSize + 4 + 8 + 2
	require.Equal(t, byte(5), b[kindOffset])

	for _, code := range []byte{2, 3, 8, 255} {
		corrupt := bytes.Clone(b)
		corrupt[kindOffset] = code
		_, err := Decode(bytes.NewReader(corrupt), Options{})
		var rfe *core.ReplayFormatError
		require.True(t, errors.As(err, &rfe), "code %d", code)
		assert.ErrorIs(t, err, core.ErrUnknownEventKind)
	}

	t.Run("encode rejects", func(t *testing.T) {
		ride.Events[0].Kind = core.EventKind(42)
		var buf bytes.Buffer
		err := Encode(&buf, &core.Replay{Rides: []core.Ride{ride}})
		assert.ErrorIs(t, err, core.ErrUnknownEventKind)
		assert.Zero(t, buf.Len())
	})
}

func TestDecodeErrors(t *testing.T) {
	two, err := Marshal(&core.Replay{Rides: []core.Ride{sampleRide("a.lev", 4), sampleRide("a.lev", 3)}})
	require.NoError(t, err)
	first, err := Marshal(&core.Replay{Rides: []core.Ride{sampleRide("a.lev", 4)}})
	require.NoError(t, err)

	t.Run("empty stream", func(t *testing.T) {
		_, err := Decode(bytes.NewReader(nil), Options{})
		var rfe *core.ReplayFormatError
		require.True(t, errors.As(err, &rfe))
		assert.ErrorIs(t, err, core.ErrNoRides)
	})

	t.Run("bad trailer", func(t *testing.T) {
		corrupt := bytes.Clone(first)
		binary.LittleEndian.PutUint32(corrupt[len(corrupt)-4:], 0x12345678)
		rep, err := Decode(bytes.NewReader(corrupt), Options{})
		assert.Nil(t, rep)
		assert.ErrorIs(t, err, core.ErrBadTrailer)
	})

	t.Run("truncated", func(t *testing.T) {
		for _, n := range []int{1, headerSize - 1, headerSize + 3, len(two) - 1, len(first) + 10} {
			_, err := Decode(bytes.NewReader(two[:n]), Options{})
			assert.True(t, core.IsTruncated(err), "cut at %d: %v", n, err)
		}
	})

	t.Run("ride boundary", func(t *testing.T) {
		rep, err := Decode(bytes.NewReader(two[:len(first)]), Options{})
		require.NoError(t, err)
		assert.Len(t, rep.Rides, 1)
	})
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		name string
		rep  *core.Replay
		want error
	}{
		{"nil", nil, core.ErrNoRides},
		{"no rides", &core.Replay{}, core.ErrNoRides},
		{"frame count", &core.Replay{Rides: []core.Ride{{Header: core.Header{FrameCount: 3}}}}, core.ErrFrameCountMismatch},
		{"long name", &core.Replay{Rides: []core.Ride{sampleRide("a.lev", 1), sampleRide("much_too_long.lev", 1)}}, core.ErrNameTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Encode(&buf, tt.rep)
			var rfe *core.ReplayFormatError
			require.True(t, errors.As(err, &rfe))
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, buf.Len())
		})
	}
}

func TestObjectAttribution(t *testing.T) {
	lev := &core.Level{Objects: []core.Object{
		{Kind: core.ObjectPlayerStart},
		{Position: core.Pos(4.0, 5.0), Kind: core.ObjectApple},
	}}
	b, err := Marshal(&core.Replay{Rides: []core.Ride{sampleRide("a.lev", 2)}})
	require.NoError(t, err)

	with, err := Decode(bytes.NewReader(b), WithLevel(lev))
	require.NoError(t, err)
	without, err := Decode(bytes.NewReader(b), WithLevel(nil))
	require.NoError(t, err)

	events := with.MainRide().Events
	require.NotNil(t, events[2].Object)
	assert.Equal(t, lev.Objects[1], *events[2].Object)
	assert.Nil(t, events[3].Object, "apple take is never attributed")
	assert.Nil(t, events[6].Object, "object 2 is not in the level")

	for i := range events {
		assert.Nil(t, without.MainRide().Events[i].Object)
		events[i].Object = nil
	}
	assert.Equal(t, without.MainRide().Events, events)
	assert.Equal(t, without.MainRide().Frames, with.MainRide().Frames)
}

func TestObjectAttribution_PerRide(t *testing.T) {
	lev := &core.Level{Objects: []core.Object{{}, {Kind: core.ObjectKiller}}}
	b, err := Marshal(&core.Replay{Rides: []core.Ride{sampleRide("a.lev", 2), sampleRide("b.lev", 2)}})
	require.NoError(t, err)

	var seen []string
	got, err := Decode(bytes.NewReader(b), Options{Resolve: func(h core.Header) ObjectLookup {
		seen = append(seen, h.LevelName)
		if h.LevelName == "a.lev" {
			return lev
		}
		return nil
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.lev", "b.lev"}, seen)
	require.NotNil(t, got.Rides[0].Events[2].Object)
	assert.Equal(t, core.ObjectKiller, got.Rides[0].Events[2].Object.Kind)
	assert.Nil(t, got.Rides[1].Events[2].Object)
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ride.rec")
	src := &core.Replay{Rides: []core.Ride{sampleRide("QWQUU001.LEV", 30)}}
	require.NoError(t, EncodeFile(path, src))

	got, err := DecodeFile(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, src.Rides[0].Frames, got.MainRide().Frames)
	assert.Equal(t, time.Duration(30)*core.FrameDuration, got.MainRide().Duration())
}
