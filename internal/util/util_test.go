package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Range
	}{
		{"everything", "..", All},
		{"start only", "5..", Range{Start: Index{Value: 5}, End: Index{FromEnd: true}}},
		{"end only", "..10", Range{End: Index{Value: 10}}},
		{"both", "2..4", Range{Start: Index{Value: 2}, End: Index{Value: 4}}},
		{"last three", "^3..", Range{Start: Index{Value: 3, FromEnd: true}, End: Index{FromEnd: true}}},
		{"drop last", "..^1", Range{End: Index{Value: 1, FromEnd: true}}},
		{"spaces", " 1..2 ", Range{Start: Index{Value: 1}, End: Index{Value: 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRange(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseRange_Invalid(t *testing.T) {
	for _, in := range []string{"", "5", "a..b", "1..2..3", "-1..", "^x..", "..^"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseRange(in)
			require.ErrorIs(t, err, ErrInvalidRange)
		})
	}
}

func TestRangeBounds(t *testing.T) {
	tests := []struct {
		input          string
		n              int
		offset, length int
		wantErr        bool
	}{
		{"..", 10, 0, 10, false},
		{"..", 0, 0, 0, false},
		{"2..5", 10, 2, 3, false},
		{"^3..", 10, 7, 3, false},
		{"..^1", 10, 0, 9, false},
		{"5..5", 10, 5, 0, false},
		{"5..2", 10, 0, 0, true},
		{"..11", 10, 0, 0, true},
		{"^11..", 10, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r, err := ParseRange(tt.input)
			require.NoError(t, err)
			offset, length, err := r.Bounds(tt.n)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.offset, offset)
			assert.Equal(t, tt.length, length)
		})
	}
}

func TestRangeString(t *testing.T) {
	r, err := ParseRange("^3..7")
	require.NoError(t, err)
	assert.Equal(t, "^3..7", r.String())
	assert.Equal(t, "0..^0", All.String())
}

func TestSlice(t *testing.T) {
	items := []int{0, 1, 2, 3, 4}

	got, offset, err := Slice(items, Range{Start: Index{Value: 2, FromEnd: true}, End: Index{FromEnd: true}})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, got)
	assert.Equal(t, 3, offset)

	_, _, err = Slice(items, Range{End: Index{Value: 6}})
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestSafeFileName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "QWQUU001", "QWQUU001"},
		{"spaces", "Warm Up", "Warm_Up"},
		{"separators", `a/b\c:d`, "a_b_c_d"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SafeFileName(tt.input))
		})
	}
}
