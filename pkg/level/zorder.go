package level

import (
	"math"

	"github.com/keex74/ElmaReplayIO/pkg/core"
)

const (
	// rayMargin moves the ray target safely outside every polygon.
	rayMargin = 20
	epsilon   = 1e-7
)

// updateDepth assigns the paint depth of every solid polygon.
//
// A ray is cast from the first vertex of each polygon to a point below and
// left of all geometry. For every other polygon the edges the ray crosses are
// counted, and only odd counts contribute: an even count means the ray left
// the polygon as often as it entered it.
func updateDepth(polygons []core.Polygon) {
	if len(polygons) == 0 {
		return
	}

	minX, minY := math.Inf(1), math.Inf(1)
	for _, p := range polygons {
		for _, v := range p.Vertices {
			minX = math.Min(minX, v.X)
			minY = math.Min(minY, v.Y)
		}
	}
	far := core.Pos(minX-rayMargin, minY-rayMargin)

	for m := range polygons {
		start := polygons[m].Vertices[0]
		depth := 0
		for n, other := range polygons {
			if m == n {
				continue
			}
			crosses := 0
			vs := other.Vertices
			for i := 0; i < len(vs)-1; i++ {
				if intersects(start, far, vs[i], vs[i+1]) {
					crosses++
				}
			}
			if intersects(start, far, vs[0], vs[len(vs)-1]) {
				crosses++
			}
			if crosses%2 != 0 {
				depth += crosses
			}
		}
		polygons[m].Depth = depth
	}
}

// intersects is an orientation test between segment p1-q1 and segment p2-q2.
// Near-zero areas are treated as collinear and resolved on the dominant axis.
func intersects(p1, q1, p2, q2 core.Position[float64]) bool {
	x1, y1, x2, y2 := p1.X, p1.Y, q1.X, q1.Y
	x3, y3, x4, y4 := p2.X, p2.Y, q2.X, q2.Y

	cArea := area(x1, y1, x2, y2, x3, y3)
	dArea := area(x1, y1, x2, y2, x4, y4)

	if math.Abs(cArea) < epsilon {
		if onSegment(x1, y1, x2, y2, x3, y3) {
			return true
		}
		if math.Abs(dArea) > epsilon {
			return false
		}
	}

	if math.Abs(dArea) < epsilon {
		if onSegment(x1, y1, x2, y2, x4, y4) {
			return true
		}
		if math.Abs(cArea) > epsilon {
			return false
		}
		if math.Abs(x3-x1) < epsilon {
			return (y1 < y3) != (y1 < y4)
		}
		return (x1 < x3) != (x1 < x4)
	}

	if (cArea > 0) == (dArea > 0) {
		return false
	}

	aArea := area(x3, y3, x4, y4, x1, y1)
	bArea := area(x3, y3, x4, y4, x2, y2)
	return (aArea > 0) != (bArea > 0)
}

// onSegment checks whether (x, y), already known to be collinear with the
// segment, lies within it. The axis is chosen by comparing x against x1.
func onSegment(x1, y1, x2, y2, x, y float64) bool {
	if math.Abs(x-x1) < epsilon {
		return math.Min(y1, y2)-epsilon < y && y < math.Max(y1, y2)+epsilon
	}
	return math.Min(x1, x2)-epsilon < x && x < math.Max(x1, x2)+epsilon
}

// area is twice the signed area of the triangle (x1,y1) (x2,y2) (x3,y3).
func area(x1, y1, x2, y2, x3, y3 float64) float64 {
	return (x2-x1)*(y3-y1) - (x3-x1)*(y2-y1)
}
