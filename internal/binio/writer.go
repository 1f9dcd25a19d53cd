package binio

import (
	"encoding/binary"
	"io"
	"math"
)

// Writer encodes little-endian values to a stream.
type Writer struct {
	w       io.Writer
	n       int64
	err     error
	scratch [8]byte
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first write error encountered.
func (w *Writer) Err() error {
	return w.err
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int64 {
	return w.n
}

// Bytes writes p verbatim.
func (w *Writer) Bytes(p []byte) {
	if w.err != nil {
		return
	}
	n, err := w.w.Write(p)
	w.n += int64(n)
	w.err = err
}

// Zero writes n zero bytes.
func (w *Writer) Zero(n int) {
	if n > 0 {
		w.Bytes(make([]byte, n))
	}
}

func (w *Writer) Uint8(v uint8) {
	w.scratch[0] = v
	w.Bytes(w.scratch[:1])
}

func (w *Writer) Int16(v int16) {
	w.Uint16(uint16(v))
}

func (w *Writer) Uint16(v uint16) {
	binary.LittleEndian.PutUint16(w.scratch[:2], v)
	w.Bytes(w.scratch[:2])
}

func (w *Writer) Int32(v int32) {
	w.Uint32(uint32(v))
}

func (w *Writer) Uint32(v uint32) {
	binary.LittleEndian.PutUint32(w.scratch[:4], v)
	w.Bytes(w.scratch[:4])
}

func (w *Writer) Float32(v float32) {
	w.Uint32(math.Float32bits(v))
}

func (w *Writer) Float64(v float64) {
	binary.LittleEndian.PutUint64(w.scratch[:8], math.Float64bits(v))
	w.Bytes(w.scratch[:8])
}

// Slot writes an already encoded string into a size-byte slot, padding with
// zeros. Callers check the length with EncodeSlot first.
func (w *Writer) Slot(encoded []byte, size int) {
	w.Bytes(encoded)
	w.Zero(size - len(encoded))
}
