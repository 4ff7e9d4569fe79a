package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/geom"
)

func point(p geom.Point) orb.Point { return orb.Point{p.X, p.Y} }

// rotated returns p rotated by rot radians about c.
func rotated(p, c geom.Point, rot float64) orb.Point {
	if rot == 0 {
		return point(p)
	}
	return point(geom.Rotate(p, c, rot))
}

// Geometry converts d to planar content coordinates with its rotation
// applied. Text and icons become their anchor point.
func Geometry(d drawing.Draw) (orb.Geometry, bool) {
	b, ok := d.Bounds()
	if !ok {
		return nil, false
	}
	c := b.Center()
	switch s := d.Shape.(type) {
	case *drawing.Path:
		ls := make(orb.LineString, len(s.Points))
		for i, p := range s.Points {
			ls[i] = rotated(p, c, d.Rotation)
		}
		return ls, true
	case *drawing.Line:
		return orb.LineString{rotated(d.Origin, c, d.Rotation), rotated(s.Dest, c, d.Rotation)}, true
	case *drawing.Rect:
		ring := orb.Ring{
			rotated(geom.Pt(b.X, b.Y), c, d.Rotation),
			rotated(geom.Pt(b.X+b.W, b.Y), c, d.Rotation),
			rotated(geom.Pt(b.X+b.W, b.Y+b.H), c, d.Rotation),
			rotated(geom.Pt(b.X, b.Y+b.H), c, d.Rotation),
		}
		ring = append(ring, ring[0])
		return orb.Polygon{ring}, true
	case *drawing.Text, *drawing.Icon:
		return rotated(d.Origin, c, d.Rotation), true
	}
	return nil, false
}

// FeatureCollection converts the visible draws of b.
func FeatureCollection(b Board) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, d := range b.Draws {
		if d.Deleted || !b.Filter.Allows(d) {
			continue
		}
		g, ok := Geometry(d)
		if !ok {
			continue
		}
		f := geojson.NewFeature(g)
		f.ID = d.ID
		f.Properties["kind"] = string(d.Kind())
		f.Properties["userId"] = d.UserID
		f.Properties["color"] = d.Color()
		if d.PhaseID != "" {
			f.Properties["phase"] = d.PhaseID
		}
		if d.SlotID != "" {
			f.Properties["slot"] = d.SlotID
		}
		if d.Rotation != 0 {
			f.Properties["rotation"] = d.Rotation
		}
		switch s := d.Shape.(type) {
		case *drawing.Path:
			f.Properties["width"] = d.StrokeWidth()
		case *drawing.Line:
			f.Properties["width"] = d.StrokeWidth()
		case *drawing.Rect:
			f.Properties["filled"] = s.Filled
			f.Properties["width"] = d.StrokeWidth()
		case *drawing.Text:
			f.Properties["text"] = s.Text
			f.Properties["fontSize"] = s.Size()
		case *drawing.Icon:
			f.Properties["size"] = s.Side()
			if s.URL != "" {
				f.Properties["url"] = s.URL
			}
			if s.Glyph != "" {
				f.Properties["glyph"] = s.Glyph
			}
		}
		fc.Append(f)
	}
	return fc
}

// WriteGeoJSON encodes the draws of b as a feature collection.
func WriteGeoJSON(w io.Writer, b Board) error {
	fc := FeatureCollection(b)
	if b.Title != "" {
		fc.ExtraMembers = geojson.Properties{"name": b.Title}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fc); err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	return nil
}
