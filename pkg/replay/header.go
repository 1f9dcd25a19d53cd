package replay

import (
	"fmt"
	"io"

	"github.com/keex74/ElmaReplayIO/internal/binio"
	"github.com/keex74/ElmaReplayIO/pkg/core"
)

// Version is the only replay version tag this package understands.
const Version uint32 = 0x83

const (
	nameSlot     = 12
	nameReserved = 4

	scanNameLimit = 32
	scanNameSkip  = 3
)

// NameMode selects how the level name in a ride header is read.
type NameMode int

const (
	// NameFixed reads a 12-byte slot followed by 4 reserved bytes.
	NameFixed NameMode = iota
	// NameScan reads up to a null byte, then skips 3 bytes. Some older
	// tools read headers this way.
	NameScan
)

// ParseNameMode maps a configuration value to a NameMode.
func ParseNameMode(s string) (NameMode, error) {
	switch s {
	case "", "fixed":
		return NameFixed, nil
	case "scan":
		return NameScan, nil
	default:
		return NameFixed, fmt.Errorf("unknown level name mode %q", s)
	}
}

func (m NameMode) String() string {
	if m == NameScan {
		return "scan"
	}
	return "fixed"
}

func replayErr(section string, err error) error {
	return &core.ReplayFormatError{Section: section, Err: err}
}

// DecodeHeader reads one ride header from r.
func DecodeHeader(r io.Reader, mode NameMode) (core.Header, error) {
	return readHeader(binio.NewReader(r), mode)
}

// EncodeHeader writes h to w. Nothing is written when the level name does
// not fit its slot.
func EncodeHeader(w io.Writer, h core.Header) error {
	name, err := headerName(h.LevelName)
	if err != nil {
		return err
	}
	bw := binio.NewWriter(w)
	writeHeader(bw, h, name)
	return bw.Err()
}

func readHeader(r *binio.Reader, mode NameMode) (core.Header, error) {
	var h core.Header
	r.Section("header")
	h.FrameCount = r.Int32()
	version := r.Uint32()
	if err := r.Err(); err != nil {
		return h, err
	}
	if version != Version {
		return h, replayErr("header", fmt.Errorf("%w: 0x%x", core.ErrBadVersion, version))
	}
	if h.FrameCount < 0 {
		return h, replayErr("header", core.ErrBadCount)
	}
	h.MultiRide = r.Int32() != 0
	h.FlagTag = r.Int32() != 0
	h.Link = r.Uint32()

	switch mode {
	case NameScan:
		name, ok := r.ScanString(scanNameLimit)
		if err := r.Err(); err != nil {
			return h, err
		}
		if !ok {
			return h, replayErr("header", core.ErrUnterminatedString)
		}
		h.LevelName = name
		r.Skip(scanNameSkip)
	default:
		h.LevelName, _ = r.FixedString(nameSlot)
		r.Skip(nameReserved)
	}
	return h, r.Err()
}

// headerName validates and encodes the level name before anything is
// written.
func headerName(name string) ([]byte, error) {
	b, err := binio.EncodeSlot(name, nameSlot, false)
	if err != nil {
		return nil, replayErr("header", err)
	}
	return b, nil
}

func writeHeader(w *binio.Writer, h core.Header, name []byte) {
	w.Int32(h.FrameCount)
	w.Uint32(Version)
	w.Int32(boolInt32(h.MultiRide))
	w.Int32(boolInt32(h.FlagTag))
	w.Uint32(h.Link)
	w.Slot(name, nameSlot)
	w.Zero(nameReserved)
}

func boolInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
