// Package util provides common helpers used by the command line tools.
package util

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidRange is returned for malformed range expressions.
var ErrInvalidRange = errors.New("invalid range expression")

// Index is a position counted from the start, or from the end when FromEnd
// is set ("^1" is the last element).
type Index struct {
	Value   int
	FromEnd bool
}

// Offset resolves the index against a sequence of length n.
func (i Index) Offset(n int) int {
	if i.FromEnd {
		return n - i.Value
	}
	return i.Value
}

func (i Index) String() string {
	if i.FromEnd {
		return "^" + strconv.Itoa(i.Value)
	}
	return strconv.Itoa(i.Value)
}

// Range selects a half-open span [Start, End) of a sequence.
type Range struct {
	Start Index
	End   Index
}

// All selects a whole sequence.
var All = Range{End: Index{FromEnd: true}}

func (r Range) String() string {
	return r.Start.String() + ".." + r.End.String()
}

// Bounds resolves r against a sequence of length n.
func (r Range) Bounds(n int) (offset, length int, err error) {
	start, end := r.Start.Offset(n), r.End.Offset(n)
	if start < 0 || end > n || start > end {
		return 0, 0, fmt.Errorf("%w: %s out of bounds for length %d", ErrInvalidRange, r, n)
	}
	return start, end - start, nil
}

// ParseRange parses "a..b" where either side may be omitted and may carry
// a leading "^" to count from the end. An omitted start is 0 and an
// omitted end is the end of the sequence.
func ParseRange(s string) (Range, error) {
	from, to, ok := strings.Cut(strings.TrimSpace(s), "..")
	if !ok || strings.Contains(to, "..") {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}

	r := All
	var err error
	if from != "" {
		if r.Start, err = parseIndex(from); err != nil {
			return Range{}, err
		}
	}
	if to != "" {
		if r.End, err = parseIndex(to); err != nil {
			return Range{}, err
		}
	}
	return r, nil
}

func parseIndex(s string) (Index, error) {
	var i Index
	if rest, ok := strings.CutPrefix(s, "^"); ok {
		i.FromEnd = true
		s = rest
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return Index{}, fmt.Errorf("%w: invalid number %q", ErrInvalidRange, s)
	}
	i.Value = v
	return i, nil
}

// Slice returns the part of items selected by r.
func Slice[T any](items []T, r Range) ([]T, int, error) {
	offset, length, err := r.Bounds(len(items))
	if err != nil {
		return nil, 0, err
	}
	return items[offset : offset+length], offset, nil
}

var fileNameReplacer = strings.NewReplacer(" ", "_", ":", "_", "/", "_", `\`, "_")

// SafeFileName replaces characters that are awkward in file names.
func SafeFileName(s string) string {
	return fileNameReplacer.Replace(s)
}
