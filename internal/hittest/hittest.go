// Package hittest decides which draw, if any, lies under a content-space
// point.
package hittest

import (
	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/geom"
)

// BaseTolerance is the minimum pick distance in content units.
const BaseTolerance = 8

// Tolerance returns the pick distance for a stroke of the given width.
func Tolerance(width float64) float64 {
	if width <= 0 {
		width = drawing.DefaultLineWidth
	}
	t := width/2 + 4
	if t < BaseTolerance {
		return BaseTolerance
	}
	return t
}

// Hit reports whether p touches d.
func Hit(d drawing.Draw, p geom.Point) bool {
	if d.Deleted || d.Shape == nil {
		return false
	}
	tol := Tolerance(d.StrokeWidth())
	switch s := d.Shape.(type) {
	case *drawing.Path:
		return nearPolyline(p, s.Points, tol)
	case *drawing.Line:
		return geom.DistToSegment(p, d.Origin, s.Dest) < tol
	case *drawing.Rect:
		b, _ := d.Bounds()
		if s.Filled {
			return b.Contains(p)
		}
		return nearRectEdge(p, b, tol)
	case *drawing.Text, *drawing.Icon:
		b, _ := d.Bounds()
		return b.Contains(p)
	}
	return false
}

func nearPolyline(p geom.Point, pts []geom.Point, tol float64) bool {
	if len(pts) < 2 {
		return false
	}
	for i := 1; i < len(pts); i++ {
		if geom.DistToSegment(p, pts[i-1], pts[i]) < tol {
			return true
		}
	}
	return false
}

func nearRectEdge(p geom.Point, r geom.Rect, tol float64) bool {
	a := r.Min()
	c := r.Max()
	b := geom.Pt(c.X, a.Y)
	d := geom.Pt(a.X, c.Y)
	return geom.DistToSegment(p, a, b) < tol ||
		geom.DistToSegment(p, b, c) < tol ||
		geom.DistToSegment(p, c, d) < tol ||
		geom.DistToSegment(p, d, a) < tol
}

// Topmost returns the last draw in z-order that accept admits and p hits.
func Topmost(draws []drawing.Draw, p geom.Point, accept func(drawing.Draw) bool) (drawing.Draw, bool) {
	for i := len(draws) - 1; i >= 0; i-- {
		d := draws[i]
		if accept != nil && !accept(d) {
			continue
		}
		if Hit(d, p) {
			return d, true
		}
	}
	return drawing.Draw{}, false
}

// Interactable builds the predicate used by the select and eraser tools: the
// draw must be persisted, not deleted, owned by user or by nobody, and pass
// the visibility filter.
func Interactable(user string, f drawing.Filter) func(drawing.Draw) bool {
	return func(d drawing.Draw) bool {
		if d.Deleted || d.ID == "" {
			return false
		}
		if d.UserID != "" && d.UserID != user {
			return false
		}
		return f.Allows(d)
	}
}
