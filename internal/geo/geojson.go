package geo

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/keex74/ElmaReplayIO/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// Feature kinds written to the "kind" property.
const (
	KindPolygon = "polygon"
	KindGrass   = "grass"
	KindObject  = "object"
	KindTrace   = "trace"
)

// Features builds a feature collection of the level: solid polygons in
// paint order, grass polygons, objects, and one trace per ride given.
// Rides with fewer than two frames are skipped.
func Features(l *core.Level, rides ...*core.Ride) (geom.GeoJSONFeatureCollection, error) {
	var fc geom.GeoJSONFeatureCollection

	for _, p := range PaintOrder(l.Polygons) {
		poly, err := Polygon(p)
		if err != nil {
			return nil, err
		}
		fc = append(fc, geom.GeoJSONFeature{
			Geometry: poly.AsGeometry(),
			ID:       fmt.Sprintf("polygon-%d", p.Index),
			Properties: map[string]interface{}{
				"kind":      KindPolygon,
				"depth":     p.Depth,
				"alternate": p.AlternateFill(),
			},
		})
	}

	for _, p := range l.Grass {
		poly, err := Polygon(p)
		if err != nil {
			return nil, err
		}
		fc = append(fc, geom.GeoJSONFeature{
			Geometry:   poly.AsGeometry(),
			ID:         fmt.Sprintf("polygon-%d", p.Index),
			Properties: map[string]interface{}{"kind": KindGrass},
		})
	}

	for i, o := range l.Objects {
		fc = append(fc, geom.GeoJSONFeature{
			Geometry: Point(o.Position).AsGeometry(),
			ID:       fmt.Sprintf("object-%d", i),
			Properties: map[string]interface{}{
				"kind":    KindObject,
				"object":  o.Kind.String(),
				"gravity": o.Gravity.String(),
			},
		})
	}

	for i, r := range rides {
		if r == nil || len(r.Frames) < 2 {
			continue
		}
		ls, err := Trace(r)
		if err != nil {
			return nil, err
		}
		fc = append(fc, geom.GeoJSONFeature{
			Geometry: ls.AsGeometry(),
			ID:       fmt.Sprintf("trace-%d", i),
			Properties: map[string]interface{}{
				"kind":   KindTrace,
				"apples": r.AppleCount(),
				"frames": len(r.Frames),
			},
		})
	}
	return fc, nil
}

// WriteGeoJSON encodes fc to w.
func WriteGeoJSON(w io.Writer, fc geom.GeoJSONFeatureCollection) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fc); err != nil {
		return fmt.Errorf("failed to encode GeoJSON: %w", err)
	}
	return nil
}
