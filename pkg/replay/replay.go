package replay

import (
	"bytes"
	"io"
	"os"

	"github.com/keex74/ElmaReplayIO/internal/binio"
	"github.com/keex74/ElmaReplayIO/pkg/core"
)

// Options controls replay decoding.
type Options struct {
	NameMode NameMode

	// Objects attributes object-touch events when set. It is only read.
	Objects ObjectLookup

	// Resolve is consulted once per ride, after its header is read, when
	// Objects is nil. Returning nil leaves the ride unattributed.
	Resolve func(h core.Header) ObjectLookup
}

func (o Options) lookup(h core.Header) ObjectLookup {
	if o.Objects != nil {
		return o.Objects
	}
	if o.Resolve != nil {
		return o.Resolve(h)
	}
	return nil
}

// WithLevel returns options that attribute object touches to l's objects.
// A nil level yields options without attribution.
func WithLevel(l *core.Level) Options {
	if l == nil {
		return Options{}
	}
	return Options{Objects: l}
}

// DecodeFile opens path and decodes every ride in it.
func DecodeFile(path string, opts Options) (*core.Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, opts)
}

// Decode reads rides from r until the stream ends on a ride boundary.
func Decode(r io.Reader, opts Options) (*core.Replay, error) {
	br := binio.NewReader(r)
	rep := &core.Replay{}
	for !br.AtEOF() {
		if err := br.Err(); err != nil {
			return nil, err
		}
		ride, err := readRide(br, opts)
		if err != nil {
			return nil, err
		}
		rep.Rides = append(rep.Rides, *ride)
	}
	if err := br.Err(); err != nil {
		return nil, err
	}
	if len(rep.Rides) == 0 {
		return nil, replayErr("replay", core.ErrNoRides)
	}
	return rep, nil
}

// Marshal encodes rep into a new byte slice. The multi-ride flag of every
// header is set from the number of rides.
func Marshal(rep *core.Replay) ([]byte, error) {
	if rep == nil || len(rep.Rides) == 0 {
		return nil, replayErr("replay", core.ErrNoRides)
	}
	multi := len(rep.Rides) > 1
	var buf bytes.Buffer
	for i := range rep.Rides {
		if err := writeRide(&buf, &rep.Rides[i], multi); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Encode writes rep to w. Nothing is written when any ride is invalid.
func Encode(w io.Writer, rep *core.Replay) error {
	b, err := Marshal(rep)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// EncodeFile writes rep to path, replacing any existing file.
func EncodeFile(path string, rep *core.Replay) error {
	b, err := Marshal(rep)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
