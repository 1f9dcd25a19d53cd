// Package binio reads and writes the little-endian primitives shared by the
// level and replay formats.
//
// Both Reader and Writer keep the first error they hit and turn every later
// call into a no-op, so a decoder can read a whole block and check Err once.
// A short read is always reported as a *core.TruncatedInputError labelled
// with the section that was being read.
package binio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"math"

	"github.com/keex74/ElmaReplayIO/pkg/core"
)

// Reader decodes little-endian values from a buffered stream.
type Reader struct {
	r       *bufio.Reader
	offset  int64
	section string
	err     error
	scratch [8]byte
}

// NewReader wraps r. If r already is a *bufio.Reader it is used directly.
func NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{r: br, section: "stream"}
}

// Section labels subsequent reads for error reporting.
func (r *Reader) Section(name string) {
	r.section = name
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Err returns the first error encountered.
func (r *Reader) Err() error {
	return r.err
}

// Fail records err unless an earlier error is already stored.
func (r *Reader) Fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// AtEOF reports whether the stream is exhausted. It does not consume input.
func (r *Reader) AtEOF() bool {
	if r.err != nil {
		return false
	}
	_, err := r.r.Peek(1)
	if errors.Is(err, io.EOF) {
		return true
	}
	if err != nil {
		r.err = err
	}
	return false
}

func (r *Reader) fill(p []byte) bool {
	if r.err != nil {
		return false
	}
	n, err := io.ReadFull(r.r, p)
	r.offset += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			err = &core.TruncatedInputError{Section: r.section, Offset: r.offset, Err: io.ErrUnexpectedEOF}
		}
		r.err = err
		return false
	}
	return true
}

// Bytes reads exactly n bytes.
func (r *Reader) Bytes(n int) []byte {
	b := make([]byte, n)
	if !r.fill(b) {
		return nil
	}
	return b
}

// Skip discards n bytes.
func (r *Reader) Skip(n int) {
	if r.err != nil || n <= 0 {
		return
	}
	d, err := r.r.Discard(n)
	r.offset += int64(d)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = &core.TruncatedInputError{Section: r.section, Offset: r.offset, Err: io.ErrUnexpectedEOF}
		}
		r.err = err
	}
}

func (r *Reader) Uint8() uint8 {
	if !r.fill(r.scratch[:1]) {
		return 0
	}
	return r.scratch[0]
}

func (r *Reader) Int16() int16 {
	if !r.fill(r.scratch[:2]) {
		return 0
	}
	return int16(binary.LittleEndian.Uint16(r.scratch[:2]))
}

func (r *Reader) Uint16() uint16 {
	if !r.fill(r.scratch[:2]) {
		return 0
	}
	return binary.LittleEndian.Uint16(r.scratch[:2])
}

func (r *Reader) Int32() int32 {
	return int32(r.Uint32())
}

func (r *Reader) Uint32() uint32 {
	if !r.fill(r.scratch[:4]) {
		return 0
	}
	return binary.LittleEndian.Uint32(r.scratch[:4])
}

func (r *Reader) Float32() float32 {
	return math.Float32frombits(r.Uint32())
}

func (r *Reader) Float64() float64 {
	if !r.fill(r.scratch[:8]) {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(r.scratch[:8]))
}

// FixedString reads a size-byte slot and returns the text before the first
// null byte. terminated is false when the slot holds no null byte at all.
func (r *Reader) FixedString(size int) (s string, terminated bool) {
	b := r.Bytes(size)
	if b == nil {
		return "", false
	}
	return DecodeSlot(b)
}

// ScanString reads bytes up to and including a null terminator, giving up
// after limit bytes. ok is false when no terminator was found in time.
func (r *Reader) ScanString(limit int) (s string, ok bool) {
	buf := make([]byte, 0, limit)
	for len(buf) <= limit {
		c := r.Uint8()
		if r.err != nil {
			return "", false
		}
		if c == 0 {
			return DecodeText(buf), true
		}
		buf = append(buf, c)
	}
	return DecodeText(buf), false
}
