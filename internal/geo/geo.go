// Package geo exposes level geometry as simplefeatures geometries.
//
// Level coordinates are game units with Y pointing up. Nothing here
// projects them; the geometries are only used for export and for the
// paint order of rendered levels.
package geo

import (
	"errors"
	"fmt"
	"slices"

	"github.com/keex74/ElmaReplayIO/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// ErrTooFewVertices is returned for rings and traces that cannot form a geometry.
var ErrTooFewVertices = errors.New("too few vertices")

// Ring builds the closed ring of a level polygon.
func Ring(p core.Polygon) (geom.LineString, error) {
	if len(p.Vertices) < 3 {
		return geom.LineString{}, fmt.Errorf("polygon %d: %w", p.Index, ErrTooFewVertices)
	}
	flat := make([]float64, 0, 2*len(p.Vertices)+2)
	for _, v := range p.Vertices {
		flat = append(flat, v.X, v.Y)
	}
	flat = append(flat, p.Vertices[0].X, p.Vertices[0].Y)
	return geom.NewLineString(geom.NewSequence(flat, geom.DimXY)), nil
}

// Polygon builds a single-ring polygon from a level polygon. Level polygons
// carry no holes; enclosure is expressed through depth instead.
func Polygon(p core.Polygon) (geom.Polygon, error) {
	ring, err := Ring(p)
	if err != nil {
		return geom.Polygon{}, err
	}
	return geom.NewPolygon([]geom.LineString{ring}), nil
}

// Point converts a level position.
func Point(pos core.Position[float64]) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: pos.X, Y: pos.Y},
		Type: geom.DimXY,
	})
}

// Trace builds the bike path of a ride as a line string.
func Trace(r *core.Ride) (geom.LineString, error) {
	if len(r.Frames) < 2 {
		return geom.LineString{}, fmt.Errorf("trace of %d frames: %w", len(r.Frames), ErrTooFewVertices)
	}
	flat := make([]float64, 0, 2*len(r.Frames))
	for _, f := range r.Frames {
		flat = append(flat, float64(f.BikePosition.X), float64(f.BikePosition.Y))
	}
	return geom.NewLineString(geom.NewSequence(flat, geom.DimXY)), nil
}

// Envelope returns the bounding rectangle of the solid geometry.
// ok is false for a level without solid polygons.
func Envelope(l *core.Level) (env geom.Polygon, ok bool) {
	lo, hi, ok := l.Bounds()
	if !ok {
		return geom.Polygon{}, false
	}
	flat := []float64{
		lo.X, lo.Y,
		hi.X, lo.Y,
		hi.X, hi.Y,
		lo.X, hi.Y,
		lo.X, lo.Y,
	}
	ring := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	return geom.NewPolygon([]geom.LineString{ring}), true
}

// PaintOrder returns the solid polygons sorted so that enclosing polygons
// come first. Polygons of equal depth keep their file order.
func PaintOrder(polys []core.Polygon) []core.Polygon {
	out := slices.Clone(polys)
	slices.SortStableFunc(out, func(a, b core.Polygon) int {
		return a.Depth - b.Depth
	})
	return out
}
