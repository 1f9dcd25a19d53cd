package level

import (
	"io"
	"math"
	"os"

	"github.com/keex74/ElmaReplayIO/internal/binio"
	"github.com/keex74/ElmaReplayIO/pkg/core"
)

// Wire constants.
const (
	Identifier = "POT14"

	EndOfData uint32 = 0x0067103A
	EndOfFile uint32 = 0x00845D52

	countOffset = 0.4643643

	nameSize    = 51
	lgrSize     = 16
	textureSize = 10
	pictureSize = 10

	// initial capacity limit for corrupt or hostile counts
	maxPrealloc = 1024
)

// DecodeOptions controls how strictly a level is parsed.
type DecodeOptions struct {
	// Strict rejects object kinds and gravity codes outside the known sets.
	Strict bool
}

// DecodeFile opens path and decodes it.
func DecodeFile(path string, opts DecodeOptions) (*core.Level, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, opts)
}

// Decode reads one level from r.
func Decode(r io.Reader, opts DecodeOptions) (*core.Level, error) {
	d := decoder{r: binio.NewReader(r), opts: opts}
	return d.level()
}

type decoder struct {
	r    *binio.Reader
	opts DecodeOptions
}

func formatErr(section string, err error) error {
	return &core.FormatError{Section: section, Err: err}
}

func (d *decoder) level() (*core.Level, error) {
	r := d.r
	l := &core.Level{}

	r.Section("identifier")
	id := r.Bytes(len(Identifier))
	if err := r.Err(); err != nil {
		return nil, err
	}
	if string(id) != Identifier {
		return nil, formatErr("identifier", core.ErrBadIdentifier)
	}
	r.Skip(2)

	r.Section("link")
	l.Link = r.Uint32()
	r.Section("integrity")
	for i := range l.Integrity {
		l.Integrity[i] = r.Float64()
	}

	var err error
	if l.Name, err = d.slot("name", nameSize); err != nil {
		return nil, err
	}
	if l.LGR, err = d.slot("lgr", lgrSize); err != nil {
		return nil, err
	}
	if l.Ground, err = d.slot("ground", textureSize); err != nil {
		return nil, err
	}
	if l.Sky, err = d.slot("sky", textureSize); err != nil {
		return nil, err
	}

	if err := d.polygons(l); err != nil {
		return nil, err
	}
	if err := d.objects(l); err != nil {
		return nil, err
	}
	if err := d.pictures(l); err != nil {
		return nil, err
	}

	r.Section("end of data")
	endOfData := r.Uint32()
	r.Section("top10")
	l.Top10 = r.Bytes(core.Top10Size)
	r.Section("end of file")
	endOfFile := r.Uint32()
	if err := r.Err(); err != nil {
		return nil, err
	}
	l.Intact = endOfData == EndOfData && endOfFile == EndOfFile

	updateDepth(l.Polygons)
	return l, nil
}

// slot reads a fixed-width string that must hold a terminator.
func (d *decoder) slot(section string, size int) (string, error) {
	d.r.Section(section)
	s, ok := d.r.FixedString(size)
	if err := d.r.Err(); err != nil {
		return "", err
	}
	if !ok {
		return "", formatErr(section, core.ErrUnterminatedString)
	}
	return s, nil
}

// count reads an element count stored as a double with the legacy offset.
func (d *decoder) count(section string) (int, error) {
	d.r.Section(section)
	v := d.r.Float64()
	if err := d.r.Err(); err != nil {
		return 0, err
	}
	if math.IsNaN(v) || v < 0 || v >= math.MaxInt32 {
		return 0, formatErr(section, core.ErrBadCount)
	}
	return int(math.Floor(v)), nil
}

func (d *decoder) polygons(l *core.Level) error {
	n, err := d.count("polygon count")
	if err != nil {
		return err
	}
	r := d.r
	r.Section("polygons")
	for i := 0; i < n; i++ {
		grass := r.Int32() != 0
		vc := r.Int32()
		if err := r.Err(); err != nil {
			return err
		}
		if vc < 0 {
			return formatErr("polygons", core.ErrBadCount)
		}
		vertices := make([]core.Position[float64], 0, min(int(vc), maxPrealloc))
		for j := int32(0); j < vc && r.Err() == nil; j++ {
			x := r.Float64()
			y := r.Float64()
			vertices = append(vertices, core.Pos(x, y))
		}
		if err := r.Err(); err != nil {
			return err
		}
		if len(vertices) <= 2 {
			continue
		}
		p := core.Polygon{Index: i, Vertices: vertices, Grass: grass}
		if grass {
			l.Grass = append(l.Grass, p)
		} else {
			l.Polygons = append(l.Polygons, p)
		}
	}
	return nil
}

func (d *decoder) objects(l *core.Level) error {
	n, err := d.count("object count")
	if err != nil {
		return err
	}
	r := d.r
	r.Section("objects")
	l.Objects = make([]core.Object, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		x := r.Float64()
		y := r.Float64()
		o := core.Object{
			Position:  core.Pos(x, y),
			Kind:      core.ObjectKind(r.Int32()),
			Gravity:   core.Gravity(r.Int32()),
			Animation: r.Int32(),
		}
		if err := r.Err(); err != nil {
			return err
		}
		if d.opts.Strict {
			if !o.Kind.Known() {
				return formatErr("objects", core.ErrUnknownObjectKind)
			}
			if !o.Gravity.Known() {
				return formatErr("objects", core.ErrUnknownGravity)
			}
		}
		l.Objects = append(l.Objects, o)
	}
	return nil
}

func (d *decoder) pictures(l *core.Level) error {
	n, err := d.count("picture count")
	if err != nil {
		return err
	}
	l.Pictures = make([]core.Picture, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		var p core.Picture
		if p.Name, err = d.slot("pictures", pictureSize); err != nil {
			return err
		}
		if p.Texture, err = d.slot("pictures", pictureSize); err != nil {
			return err
		}
		if p.Mask, err = d.slot("pictures", pictureSize); err != nil {
			return err
		}
		x := d.r.Float64()
		y := d.r.Float64()
		p.Position = core.Pos(x, y)
		p.Distance = d.r.Int32()
		p.Clipping = d.r.Int32()
		if err := d.r.Err(); err != nil {
			return err
		}
		l.Pictures = append(l.Pictures, p)
	}
	return nil
}
