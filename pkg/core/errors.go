// pkg/core/errors.go
package core

import (
	"errors"
	"fmt"
)

// Sentinel causes carried by the typed errors below. Match them with errors.Is.
var (
	ErrBadIdentifier      = errors.New("unsupported level identifier")
	ErrBadVersion         = errors.New("unsupported replay version")
	ErrBadTrailer         = errors.New("ride does not end with the expected marker")
	ErrBadCount           = errors.New("invalid element count")
	ErrUnknownEventKind   = errors.New("unknown event kind")
	ErrUnknownObjectKind  = errors.New("unknown object kind")
	ErrUnknownGravity     = errors.New("unknown apple gravity")
	ErrUnterminatedString = errors.New("string field is not terminated within its slot")
	ErrNameTooLong        = errors.New("name does not fit its slot")
	ErrUnencodableName    = errors.New("name contains characters outside the level code page")
	ErrNoRides            = errors.New("replay contains no rides")
	ErrFrameCountMismatch = errors.New("frame count does not match header")
)

// FormatError reports a structural mismatch in a level file: a wrong magic
// string, an unterminated string slot or an unrecognized code in strict mode.
type FormatError struct {
	Section string
	Err     error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("level format error in %s: %v", e.Section, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// ReplayFormatError reports a structural mismatch in a replay stream, or a
// ride that cannot be written without corrupting the stream.
type ReplayFormatError struct {
	Section string
	Err     error
}

func (e *ReplayFormatError) Error() string {
	return fmt.Sprintf("replay format error in %s: %v", e.Section, e.Err)
}

func (e *ReplayFormatError) Unwrap() error {
	return e.Err
}

// TruncatedInputError reports a stream that ended in the middle of a field.
// It is kept apart from the format errors so callers can tell a file that is
// still being written from a corrupt one.
type TruncatedInputError struct {
	Section string
	Offset  int64
	Err     error
}

func (e *TruncatedInputError) Error() string {
	return fmt.Sprintf("input truncated in %s at offset %d: %v", e.Section, e.Offset, e.Err)
}

func (e *TruncatedInputError) Unwrap() error {
	return e.Err
}

// IsTruncated reports whether err, or any error it wraps, is a TruncatedInputError.
func IsTruncated(err error) bool {
	var t *TruncatedInputError
	return errors.As(err, &t)
}
