// pkg/core/level.go
package core

import "fmt"

// Top10Size is the length of the opaque best-times block stored in every level file.
const Top10Size = 688

// ObjectKind identifies a level object. Values outside the known set are kept
// as-is so that levels with stray codes survive a decode/encode cycle.
type ObjectKind int32

const (
	ObjectUnknown     ObjectKind = 0
	ObjectFlower      ObjectKind = 1
	ObjectApple       ObjectKind = 2
	ObjectKiller      ObjectKind = 3
	ObjectPlayerStart ObjectKind = 4
)

// Known reports whether k is one of the kinds the game defines.
func (k ObjectKind) Known() bool {
	return k >= ObjectFlower && k <= ObjectPlayerStart
}

func (k ObjectKind) String() string {
	switch k {
	case ObjectFlower:
		return "flower"
	case ObjectApple:
		return "apple"
	case ObjectKiller:
		return "killer"
	case ObjectPlayerStart:
		return "start"
	default:
		return fmt.Sprintf("unknown(%d)", int32(k))
	}
}

// Gravity is the gravity change applied when an apple is taken.
type Gravity int32

const (
	GravityNone  Gravity = 0
	GravityUp    Gravity = 1
	GravityDown  Gravity = 2
	GravityLeft  Gravity = 3
	GravityRight Gravity = 4
)

// Known reports whether g is one of the directions the game defines.
func (g Gravity) Known() bool {
	return g >= GravityNone && g <= GravityRight
}

func (g Gravity) String() string {
	switch g {
	case GravityNone:
		return "none"
	case GravityUp:
		return "up"
	case GravityDown:
		return "down"
	case GravityLeft:
		return "left"
	case GravityRight:
		return "right"
	default:
		return fmt.Sprintf("unknown(%d)", int32(g))
	}
}

// Object is a flower, apple, killer or start position placed in a level.
type Object struct {
	Position  Position[float64]
	Kind      ObjectKind
	Gravity   Gravity // only meaningful for apples
	Animation int32
}

// Polygon is a closed ring of at least three vertices.
// Index is the declaration order in the file; Depth is assigned by the
// level decoder and is always zero for grass polygons.
type Polygon struct {
	Index    int
	Vertices []Position[float64]
	Grass    bool
	Depth    int
}

// AlternateFill reports whether the polygon is painted with the alternate
// color. Fill alternates with depth parity, not with absolute depth.
func (p Polygon) AlternateFill() bool {
	return p.Depth%2 != 0
}

// Picture is a background picture or texture placement.
type Picture struct {
	Name     string
	Texture  string
	Mask     string
	Position Position[float64]
	Distance int32
	Clipping int32
}

// Level is a decoded level file.
type Level struct {
	Name      string
	LGR       string
	Ground    string
	Sky       string
	Link      uint32
	Integrity [4]float64

	Polygons []Polygon // solid polygons, depth assigned
	Grass    []Polygon
	Objects  []Object
	Pictures []Picture

	// Top10 is passed through untouched; nil means "use the empty table" on save.
	Top10 []byte

	// Intact is set when both trailing markers matched on decode.
	Intact bool
}

// Bounds returns the bounding box of all solid polygon vertices.
// ok is false when the level has no solid geometry.
func (l *Level) Bounds() (min, max Position[float64], ok bool) {
	for _, p := range l.Polygons {
		for _, v := range p.Vertices {
			if !ok {
				min, max, ok = v, v, true
				continue
			}
			if v.X < min.X {
				min.X = v.X
			}
			if v.Y < min.Y {
				min.Y = v.Y
			}
			if v.X > max.X {
				max.X = v.X
			}
			if v.Y > max.Y {
				max.Y = v.Y
			}
		}
	}
	return min, max, ok
}

// Object returns the object with the given index in declaration order.
func (l *Level) Object(id int) (Object, bool) {
	if id < 0 || id >= len(l.Objects) {
		return Object{}, false
	}
	return l.Objects[id], true
}

// CountObjects returns how many objects of kind k the level holds.
func (l *Level) CountObjects(k ObjectKind) int {
	n := 0
	for _, o := range l.Objects {
		if o.Kind == k {
			n++
		}
	}
	return n
}
