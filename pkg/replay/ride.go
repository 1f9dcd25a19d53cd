package replay

import (
	"bytes"
	"fmt"
	"io"

	"github.com/keex74/ElmaReplayIO/internal/binio"
	"github.com/keex74/ElmaReplayIO/pkg/core"
)

// Trailer ends every ride.
const Trailer uint32 = 0x00492F75

// DecodeRide reads a single ride from r.
func DecodeRide(r io.Reader, opts Options) (*core.Ride, error) {
	return readRide(binio.NewReader(r), opts)
}

// EncodeRide writes a single ride to w with its header as given.
func EncodeRide(w io.Writer, ride *core.Ride) error {
	var buf bytes.Buffer
	if err := writeRide(&buf, ride, ride.Header.MultiRide); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// readRide runs header, frames, events and trailer in order. No partial
// ride is ever returned.
func readRide(r *binio.Reader, opts Options) (*core.Ride, error) {
	h, err := readHeader(r, opts.NameMode)
	if err != nil {
		return nil, err
	}
	frames, err := readFrames(r, int(h.FrameCount))
	if err != nil {
		return nil, err
	}
	events, err := readEvents(r, opts.lookup(h))
	if err != nil {
		return nil, err
	}

	r.Section("trailer")
	trailer := r.Uint32()
	if err := r.Err(); err != nil {
		return nil, err
	}
	if trailer != Trailer {
		return nil, replayErr("trailer", fmt.Errorf("%w: 0x%08x", core.ErrBadTrailer, trailer))
	}
	return &core.Ride{Header: h, Frames: frames, Events: events}, nil
}

// writeRide validates ride and appends it to buf. On error buf is left
// unchanged.
func writeRide(buf *bytes.Buffer, ride *core.Ride, multi bool) error {
	if int(ride.Header.FrameCount) != len(ride.Frames) {
		return replayErr("frames", fmt.Errorf("%w: header says %d, ride has %d",
			core.ErrFrameCountMismatch, ride.Header.FrameCount, len(ride.Frames)))
	}
	name, err := headerName(ride.Header.LevelName)
	if err != nil {
		return err
	}
	if err := checkEvents(ride.Events); err != nil {
		return err
	}

	h := ride.Header
	h.MultiRide = multi
	w := binio.NewWriter(buf)
	writeHeader(w, h, name)
	c := columnsOf(ride.Frames)
	writeColumns(w, &c)
	writeEvents(w, ride.Events)
	w.Uint32(Trailer)
	return w.Err()
}
