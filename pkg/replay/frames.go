package replay

import (
	"io"

	"github.com/keex74/ElmaReplayIO/internal/binio"
	"github.com/keex74/ElmaReplayIO/pkg/core"
)

const (
	throttleBit  = 1 << 0
	directionBit = 1 << 1

	maxPrealloc = 4096
)

// ThrottleByte packs a direction and throttle state into the wire bitfield.
// Unused bits are zero.
func ThrottleByte(d core.Direction, throttle bool) byte {
	var b byte
	if throttle {
		b |= throttleBit
	}
	if d == core.DirectionRight {
		b |= directionBit
	}
	return b
}

// ThrottleState unpacks the wire bitfield.
func ThrottleState(b byte) (core.Direction, bool) {
	d := core.DirectionLeft
	if b&directionBit != 0 {
		d = core.DirectionRight
	}
	return d, b&throttleBit != 0
}

// columns is the on-wire layout of a ride's frames. Every slice has the
// same length. bikeY holds the stored, negated value.
type columns struct {
	bikeX, bikeY []float32

	leftX, leftY   []int16
	rightX, rightY []int16
	headX, headY   []int16
	rotation       []int16

	leftRotation  []byte
	rightRotation []byte
	throttle      []byte
	backSpeed     []byte
	collision     []byte
}

func (c *columns) float32s() []*[]float32 {
	return []*[]float32{&c.bikeX, &c.bikeY}
}

func (c *columns) int16s() []*[]int16 {
	return []*[]int16{&c.leftX, &c.leftY, &c.rightX, &c.rightY, &c.headX, &c.headY, &c.rotation}
}

func (c *columns) bytes() []*[]byte {
	return []*[]byte{&c.leftRotation, &c.rightRotation, &c.throttle, &c.backSpeed, &c.collision}
}

func (c *columns) rows() int {
	return len(c.bikeX)
}

func readColumn[T any](r *binio.Reader, n int, read func() T) []T {
	col := make([]T, 0, min(n, maxPrealloc))
	for i := 0; i < n && r.Err() == nil; i++ {
		col = append(col, read())
	}
	return col
}

func readColumns(r *binio.Reader, n int) (columns, error) {
	var c columns
	r.Section("frames")
	for _, col := range c.float32s() {
		*col = readColumn(r, n, r.Float32)
	}
	for _, col := range c.int16s() {
		*col = readColumn(r, n, r.Int16)
	}
	for _, col := range c.bytes() {
		*col = readColumn(r, n, r.Uint8)
	}
	return c, r.Err()
}

func writeColumns(w *binio.Writer, c *columns) {
	for _, col := range c.float32s() {
		for _, v := range *col {
			w.Float32(v)
		}
	}
	for _, col := range c.int16s() {
		for _, v := range *col {
			w.Int16(v)
		}
	}
	for _, col := range c.bytes() {
		w.Bytes(*col)
	}
}

// transpose turns columns into frame records.
func transpose(c *columns) []core.Frame {
	frames := make([]core.Frame, c.rows())
	for i := range frames {
		dir, throttle := ThrottleState(c.throttle[i])
		frames[i] = core.Frame{
			BikePosition:       core.Pos(c.bikeX[i], -c.bikeY[i]),
			LeftWheelPosition:  core.Pos(c.leftX[i], c.leftY[i]),
			RightWheelPosition: core.Pos(c.rightX[i], c.rightY[i]),
			HeadPosition:       core.Pos(c.headX[i], c.headY[i]),
			BikeRotation:       c.rotation[i],
			LeftWheelRotation:  c.leftRotation[i],
			RightWheelRotation: c.rightRotation[i],
			Direction:          dir,
			Throttle:           throttle,
			BackWheelSpeed:     c.backSpeed[i],
			CollisionStrength:  c.collision[i],
		}
	}
	return frames
}

// columnsOf is the inverse of transpose.
func columnsOf(frames []core.Frame) columns {
	n := len(frames)
	c := columns{
		bikeX: make([]float32, n), bikeY: make([]float32, n),
		leftX: make([]int16, n), leftY: make([]int16, n),
		rightX: make([]int16, n), rightY: make([]int16, n),
		headX: make([]int16, n), headY: make([]int16, n),
		rotation:      make([]int16, n),
		leftRotation:  make([]byte, n),
		rightRotation: make([]byte, n),
		throttle:      make([]byte, n),
		backSpeed:     make([]byte, n),
		collision:     make([]byte, n),
	}
	for i, f := range frames {
		c.bikeX[i], c.bikeY[i] = f.BikePosition.X, -f.BikePosition.Y
		c.leftX[i], c.leftY[i] = f.LeftWheelPosition.X, f.LeftWheelPosition.Y
		c.rightX[i], c.rightY[i] = f.RightWheelPosition.X, f.RightWheelPosition.Y
		c.headX[i], c.headY[i] = f.HeadPosition.X, f.HeadPosition.Y
		c.rotation[i] = f.BikeRotation
		c.leftRotation[i] = f.LeftWheelRotation
		c.rightRotation[i] = f.RightWheelRotation
		c.throttle[i] = ThrottleByte(f.Direction, f.Throttle)
		c.backSpeed[i] = f.BackWheelSpeed
		c.collision[i] = f.CollisionStrength
	}
	return c
}

// DecodeFrames reads frameCount frames from r.
func DecodeFrames(r io.Reader, frameCount int) ([]core.Frame, error) {
	if frameCount < 0 {
		return nil, replayErr("frames", core.ErrBadCount)
	}
	return readFrames(binio.NewReader(r), frameCount)
}

// EncodeFrames writes frames to w in column order.
func EncodeFrames(w io.Writer, frames []core.Frame) error {
	bw := binio.NewWriter(w)
	c := columnsOf(frames)
	writeColumns(bw, &c)
	return bw.Err()
}

func readFrames(r *binio.Reader, n int) ([]core.Frame, error) {
	c, err := readColumns(r, n)
	if err != nil {
		return nil, err
	}
	return transpose(&c), nil
}
