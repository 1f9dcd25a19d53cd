package replay

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/keex74/ElmaReplayIO/internal/binio"
	"github.com/keex74/ElmaReplayIO/pkg/core"
)

// TimeScale converts a stored event time to milliseconds.
const TimeScale = 2289.37728938

// ObjectLookup resolves an event object id to a level object.
// *core.Level implements it.
type ObjectLookup interface {
	Object(id int) (core.Object, bool)
}

var (
	wireToKind = map[byte]core.EventKind{
		0: core.EventObjectTouch,
		1: core.EventGroundTouch,
		4: core.EventAppleTake,
		5: core.EventTurn,
		6: core.EventVoltRight,
		7: core.EventVoltLeft,
	}
	kindToWire = map[core.EventKind]byte{
		core.EventObjectTouch: 0,
		core.EventGroundTouch: 1,
		core.EventAppleTake:   4,
		core.EventTurn:        5,
		core.EventVoltRight:   6,
		core.EventVoltLeft:    7,
	}
)

func timeFromWire(raw float64) time.Duration {
	return time.Duration(math.Round(raw * TimeScale * float64(time.Millisecond)))
}

func timeToWire(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond) / TimeScale
}

// DecodeEvents reads an event block from r. objects may be nil.
func DecodeEvents(r io.Reader, objects ObjectLookup) ([]core.Event, error) {
	return readEvents(binio.NewReader(r), objects)
}

// EncodeEvents writes an event block to w. Nothing is written when an
// event has an unknown kind.
func EncodeEvents(w io.Writer, events []core.Event) error {
	if err := checkEvents(events); err != nil {
		return err
	}
	bw := binio.NewWriter(w)
	writeEvents(bw, events)
	return bw.Err()
}

func readEvents(r *binio.Reader, objects ObjectLookup) ([]core.Event, error) {
	r.Section("events")
	n := r.Int32()
	if err := r.Err(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, replayErr("events", core.ErrBadCount)
	}

	events := make([]core.Event, 0, min(int(n), maxPrealloc))
	for i := int32(0); i < n; i++ {
		raw := r.Float64()
		id := r.Int16()
		code := r.Uint8()
		value := r.Uint8()
		strength := r.Float32()
		if err := r.Err(); err != nil {
			return nil, err
		}
		kind, ok := wireToKind[code]
		if !ok {
			return nil, replayErr("events", fmt.Errorf("%w: code %d in event %d", core.ErrUnknownEventKind, code, i))
		}
		e := core.Event{
			Time:                timeFromWire(raw),
			Kind:                kind,
			ObjectID:            id,
			Value:               value,
			GroundTouchStrength: strength,
		}
		if kind == core.EventObjectTouch && objects != nil {
			if o, found := objects.Object(int(id)); found {
				e.Object = &o
			}
		}
		events = append(events, e)
	}
	return events, nil
}

func checkEvents(events []core.Event) error {
	for i, e := range events {
		if _, ok := kindToWire[e.Kind]; !ok {
			return replayErr("events", fmt.Errorf("%w: kind %d in event %d", core.ErrUnknownEventKind, e.Kind, i))
		}
	}
	return nil
}

func writeEvents(w *binio.Writer, events []core.Event) {
	w.Int32(int32(len(events)))
	for _, e := range events {
		w.Float64(timeToWire(e.Time))
		w.Int16(e.ObjectID)
		w.Uint8(kindToWire[e.Kind])
		w.Uint8(e.Value)
		w.Float32(e.GroundTouchStrength)
	}
}
