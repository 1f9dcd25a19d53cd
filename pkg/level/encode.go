package level

import (
	"bytes"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"

	"github.com/keex74/ElmaReplayIO/internal/binio"
	"github.com/keex74/ElmaReplayIO/pkg/core"
)

// EncodeOptions selects the optional sections of a level file. An omitted
// section is written as an empty count so the file stays well formed.
type EncodeOptions struct {
	Vertices bool
	Objects  bool
	Pictures bool

	// Rand supplies the padding terms of the integrity values. A time-seeded
	// source is used when nil.
	Rand *rand.Rand
}

// DefaultEncodeOptions writes every section.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{Vertices: true, Objects: true, Pictures: true}
}

// Marshal encodes l into a new byte slice.
func Marshal(l *core.Level, opts EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, l, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes l to w. Nothing is written when l cannot be encoded.
func Encode(w io.Writer, l *core.Level, opts EncodeOptions) error {
	b, err := Marshal(l, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// EncodeFile writes l to path, replacing any existing file.
func EncodeFile(path string, l *core.Level, opts EncodeOptions) error {
	b, err := Marshal(l, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

type slotValue struct {
	section string
	value   string
	size    int
}

func encodeSlots(slots []slotValue) ([][]byte, error) {
	out := make([][]byte, len(slots))
	for i, s := range slots {
		b, err := binio.EncodeSlot(s.value, s.size, true)
		if err != nil {
			return nil, formatErr(s.section, err)
		}
		out[i] = b
	}
	return out, nil
}

func encode(buf *bytes.Buffer, l *core.Level, opts EncodeOptions) error {
	if l.Top10 != nil && len(l.Top10) != core.Top10Size {
		return formatErr("top10", fmt.Errorf("block is %d bytes, want %d", len(l.Top10), core.Top10Size))
	}

	header, err := encodeSlots([]slotValue{
		{"name", l.Name, nameSize},
		{"lgr", l.LGR, lgrSize},
		{"ground", l.Ground, textureSize},
		{"sky", l.Sky, textureSize},
	})
	if err != nil {
		return err
	}

	var pictureNames [][]byte
	if opts.Pictures {
		slots := make([]slotValue, 0, 3*len(l.Pictures))
		for _, p := range l.Pictures {
			slots = append(slots,
				slotValue{"pictures", p.Name, pictureSize},
				slotValue{"pictures", p.Texture, pictureSize},
				slotValue{"pictures", p.Mask, pictureSize},
			)
		}
		if pictureNames, err = encodeSlots(slots); err != nil {
			return err
		}
	}

	rng := opts.Rand
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}

	w := binio.NewWriter(buf)
	w.Bytes([]byte(Identifier))
	w.Uint16(uint16(l.Link))
	w.Uint32(l.Link)
	for _, v := range integrity(l, opts, rng) {
		w.Float64(v)
	}
	w.Slot(header[0], nameSize)
	w.Slot(header[1], lgrSize)
	w.Slot(header[2], textureSize)
	w.Slot(header[3], textureSize)

	if opts.Vertices {
		polygons := sortedPolygons(l)
		writeCount(w, len(polygons))
		for _, p := range polygons {
			w.Int32(boolInt32(p.Grass))
			w.Int32(int32(len(p.Vertices)))
			for _, v := range p.Vertices {
				w.Float64(v.X)
				w.Float64(v.Y)
			}
		}
	} else {
		writeCount(w, 0)
	}

	if opts.Objects {
		writeCount(w, len(l.Objects))
		for _, o := range l.Objects {
			w.Float64(o.Position.X)
			w.Float64(o.Position.Y)
			w.Int32(int32(o.Kind))
			w.Int32(int32(o.Gravity))
			w.Int32(o.Animation)
		}
	} else {
		writeCount(w, 0)
	}

	if opts.Pictures {
		writeCount(w, len(l.Pictures))
		for i, p := range l.Pictures {
			w.Slot(pictureNames[3*i], pictureSize)
			w.Slot(pictureNames[3*i+1], pictureSize)
			w.Slot(pictureNames[3*i+2], pictureSize)
			w.Float64(p.Position.X)
			w.Float64(p.Position.Y)
			w.Int32(p.Distance)
			w.Int32(p.Clipping)
		}
	} else {
		writeCount(w, 0)
	}

	w.Uint32(EndOfData)
	if l.Top10 != nil {
		w.Bytes(l.Top10)
	} else {
		w.Bytes(EmptyTop10())
	}
	w.Uint32(EndOfFile)
	return w.Err()
}

func writeCount(w *binio.Writer, n int) {
	w.Float64(float64(n) + countOffset)
}

func boolInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// sortedPolygons merges solid and grass polygons back into declaration order.
func sortedPolygons(l *core.Level) []core.Polygon {
	out := make([]core.Polygon, 0, len(l.Polygons)+len(l.Grass))
	i, j := 0, 0
	for i < len(l.Polygons) || j < len(l.Grass) {
		switch {
		case j == len(l.Grass):
			out = append(out, l.Polygons[i])
			i++
		case i == len(l.Polygons):
			out = append(out, l.Grass[j])
			j++
		case l.Polygons[i].Index <= l.Grass[j].Index:
			out = append(out, l.Polygons[i])
			i++
		default:
			out = append(out, l.Grass[j])
			j++
		}
	}
	return out
}
