// pkg/core/replay.go
package core

import "time"

// FrameDuration is the wall-clock length of one recorded frame.
const FrameDuration = 33333300 * time.Nanosecond

// Header is the fixed block that opens every ride.
type Header struct {
	MultiRide  bool
	FlagTag    bool
	Link       uint32 // should match Level.Link for object attribution
	LevelName  string
	FrameCount int32
}

// Direction is the way the bike faces.
type Direction uint8

const (
	DirectionLeft Direction = iota
	DirectionRight
)

func (d Direction) String() string {
	if d == DirectionRight {
		return "right"
	}
	return "left"
}

// Frame is one physics tick. BikePosition uses the in-memory sign convention
// (Y up); the wire stores Y negated.
type Frame struct {
	BikePosition       Position[float32]
	LeftWheelPosition  Position[int16]
	RightWheelPosition Position[int16]
	HeadPosition       Position[int16]
	BikeRotation       int16
	LeftWheelRotation  byte
	RightWheelRotation byte
	Direction          Direction
	Throttle           bool
	BackWheelSpeed     byte
	CollisionStrength  byte
}

// EventKind is a discrete in-ride occurrence.
type EventKind uint8

const (
	EventObjectTouch EventKind = iota
	EventAppleTake
	EventTurn
	EventVoltRight
	EventVoltLeft
	EventGroundTouch
)

func (k EventKind) String() string {
	switch k {
	case EventObjectTouch:
		return "object-touch"
	case EventAppleTake:
		return "apple-take"
	case EventTurn:
		return "turn"
	case EventVoltRight:
		return "volt-right"
	case EventVoltLeft:
		return "volt-left"
	case EventGroundTouch:
		return "ground-touch"
	default:
		return "invalid"
	}
}

// Event is a discrete occurrence during a ride.
type Event struct {
	Time                time.Duration
	Kind                EventKind
	ObjectID            int16 // object index for object-touch and apple-take
	Value               byte
	GroundTouchStrength float32

	// Object is resolved from the level for object-touch events when a level
	// was available during decoding. It is never written back.
	Object *Object
}

// Ride is one recorded attempt.
type Ride struct {
	Header Header
	Frames []Frame
	Events []Event
}

// AppleCount returns the number of apple-take events.
func (r *Ride) AppleCount() int {
	n := 0
	for _, e := range r.Events {
		if e.Kind == EventAppleTake {
			n++
		}
	}
	return n
}

// EventsOf returns the events of kind k in ride order.
func (r *Ride) EventsOf(k EventKind) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// Duration is the ride length derived from the frame count.
func (r *Ride) Duration() time.Duration {
	return time.Duration(r.Header.FrameCount) * FrameDuration
}

// Replay is one or more rides sharing a file. A replay with more than one
// ride is a merged comparison file.
type Replay struct {
	Rides []Ride
}

// MainRide returns the first ride. It panics on an empty replay; decoders
// never return one.
func (r *Replay) MainRide() *Ride {
	return &r.Rides[0]
}

// IsMulti reports whether the replay holds more than one ride.
func (r *Replay) IsMulti() bool {
	return len(r.Rides) > 1
}
