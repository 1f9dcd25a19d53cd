package binio

import (
	"bytes"

	"github.com/keex74/ElmaReplayIO/pkg/core"
	"golang.org/x/text/encoding/charmap"
)

// The game stores names as single-byte Windows-1252 text.
var codePage = charmap.Windows1252

// DecodeText converts code-page bytes to a Go string.
func DecodeText(b []byte) string {
	out, err := codePage.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

// DecodeSlot returns the text before the first null byte of a fixed slot.
func DecodeSlot(b []byte) (s string, terminated bool) {
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return DecodeText(b), false
	}
	return DecodeText(b[:i]), true
}

// EncodeSlot converts s to code-page bytes and checks that it fits a
// size-byte slot. When terminated is set one byte is kept for the null.
func EncodeSlot(s string, size int, terminated bool) ([]byte, error) {
	b, err := codePage.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, core.ErrUnencodableName
	}
	if bytes.IndexByte(b, 0) >= 0 {
		return nil, core.ErrUnencodableName
	}
	limit := size
	if terminated {
		limit--
	}
	if len(b) > limit {
		return nil, core.ErrNameTooLong
	}
	return b, nil
}
