// Package selection implements the selection overlay geometry and the move,
// resize and rotate transforms applied to a selected draw.
package selection

import (
	"math"

	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/geom"
)

const (
	HandleSize      = 8
	Pad             = 4
	RotateOffset    = 24
	RotateTolerance = 10
	MinSize         = 10
	ClickThreshold  = 2
	MinFontSize     = 8
	MinIconSize     = 16
)

// Handle identifies a grab point on the selection box.
type Handle string

const (
	HandleNone   Handle = ""
	HandleNW     Handle = "nw"
	HandleN      Handle = "n"
	HandleNE     Handle = "ne"
	HandleW      Handle = "w"
	HandleE      Handle = "e"
	HandleSW     Handle = "sw"
	HandleS      Handle = "s"
	HandleSE     Handle = "se"
	HandleRotate Handle = "rotate"
)

// ResizeHandles lists the compass handles in drawing order.
var ResizeHandles = []Handle{HandleNW, HandleN, HandleNE, HandleW, HandleE, HandleSW, HandleS, HandleSE}

// Cursor returns the pointer hint for a handle.
func (h Handle) Cursor() string {
	switch h {
	case HandleNW, HandleSE:
		return "nwse-resize"
	case HandleNE, HandleSW:
		return "nesw-resize"
	case HandleN, HandleS:
		return "ns-resize"
	case HandleE, HandleW:
		return "ew-resize"
	case HandleRotate:
		return "alias"
	}
	return ""
}

// Bounds returns the padded selection box of d.
func Bounds(d drawing.Draw) (geom.Rect, bool) {
	b, ok := d.Bounds()
	if !ok {
		return geom.Rect{}, false
	}
	return b.Pad(Pad), true
}

// HandlePoint returns the position of h on the padded box r.
func HandlePoint(r geom.Rect, h Handle) geom.Point {
	mx, my := r.X+r.W/2, r.Y+r.H/2
	x2, y2 := r.X+r.W, r.Y+r.H
	switch h {
	case HandleNW:
		return geom.Pt(r.X, r.Y)
	case HandleN:
		return geom.Pt(mx, r.Y)
	case HandleNE:
		return geom.Pt(x2, r.Y)
	case HandleW:
		return geom.Pt(r.X, my)
	case HandleE:
		return geom.Pt(x2, my)
	case HandleSW:
		return geom.Pt(r.X, y2)
	case HandleS:
		return geom.Pt(mx, y2)
	case HandleSE:
		return geom.Pt(x2, y2)
	case HandleRotate:
		return geom.Pt(mx, r.Y-RotateOffset)
	}
	return r.Center()
}

func within(p, c geom.Point, tol float64) bool {
	return math.Abs(p.X-c.X) <= tol && math.Abs(p.Y-c.Y) <= tol
}

// Local maps the content point p into the unrotated frame of d, where the
// selection box and its handles are laid out. The overlay is drawn rotated
// about the center of the bounds, so hit tests must undo that rotation.
func Local(d drawing.Draw, p geom.Point) geom.Point {
	if d.Rotation == 0 {
		return p
	}
	b, ok := d.Bounds()
	if !ok {
		return p
	}
	return geom.Rotate(p, b.Center(), -d.Rotation)
}

// HandleAt returns the handle of d under p. The rotate handle wins over the
// resize handles.
func HandleAt(d drawing.Draw, p geom.Point) Handle {
	r, ok := Bounds(d)
	if !ok {
		return HandleNone
	}
	p = Local(d, p)
	if within(p, HandlePoint(r, HandleRotate), RotateTolerance) {
		return HandleRotate
	}
	for _, h := range ResizeHandles {
		if within(p, HandlePoint(r, h), HandleSize) {
			return h
		}
	}
	return HandleNone
}

func hasAny(h Handle, c byte) bool {
	for i := 0; i < len(h); i++ {
		if h[i] == c {
			return true
		}
	}
	return false
}

// ResizeRect drags handle h of the unpadded bounds orig to p and returns the
// new unpadded bounds. Only the edges named by the handle move and the padded
// size never drops below MinSize.
func ResizeRect(orig geom.Rect, h Handle, p geom.Point) geom.Rect {
	r := orig.Pad(Pad)
	x, y, w, hgt := r.X, r.Y, r.W, r.H
	if hasAny(h, 'w') {
		right := x + w
		x = p.X
		w = right - x
	}
	if hasAny(h, 'e') {
		w = p.X - x
	}
	if hasAny(h, 'n') {
		bottom := y + hgt
		y = p.Y
		hgt = bottom - y
	}
	if hasAny(h, 's') {
		hgt = p.Y - y
	}
	if w < MinSize {
		w = MinSize
	}
	if hgt < MinSize {
		hgt = MinSize
	}
	return geom.Rect{X: x + Pad, Y: y + Pad, W: w - 2*Pad, H: hgt - 2*Pad}
}

// Resize maps d from its bounds orig onto next.
func Resize(d drawing.Draw, orig, next geom.Rect) drawing.Draw {
	d = d.Clone()
	sx, sy := 1.0, 1.0
	if orig.W != 0 {
		sx = next.W / orig.W
	}
	if orig.H != 0 {
		sy = next.H / orig.H
	}
	mapPt := func(p geom.Point) geom.Point {
		return geom.Pt(next.X+(p.X-orig.X)*sx, next.Y+(p.Y-orig.Y)*sy)
	}
	switch s := d.Shape.(type) {
	case *drawing.Path:
		for i := range s.Points {
			s.Points[i] = mapPt(s.Points[i])
		}
		if len(s.Points) > 0 {
			d.Origin = s.Points[0]
		}
	case *drawing.Line:
		d.Origin = mapPt(d.Origin)
		s.Dest = mapPt(s.Dest)
	case *drawing.Rect:
		d.Origin = geom.Pt(next.X, next.Y)
		s.Dest = geom.Pt(next.X+next.W, next.Y+next.H)
		s.Width, s.Height = next.W, next.H
	case *drawing.Text:
		scale := math.Max(sx, sy)
		s.FontSize = math.Max(MinFontSize, math.Round(s.Size()*scale))
		d.Origin = geom.Pt(next.X, next.Y+next.H)
	case *drawing.Icon:
		s.Size = math.Max(MinIconSize, math.Round(math.Max(next.W, next.H)))
		d.Origin = next.Center()
	}
	return d
}

// RotateDelta returns the angle swept from start to p around center.
func RotateDelta(center, start, p geom.Point) float64 {
	a0 := math.Atan2(start.Y-center.Y, start.X-center.X)
	a1 := math.Atan2(p.Y-center.Y, p.X-center.X)
	return a1 - a0
}

// Rotate returns d with its rotation advanced by the angle swept from start to
// p around the center of its bounds.
func Rotate(d drawing.Draw, start, p geom.Point) drawing.Draw {
	b, ok := d.Bounds()
	if !ok {
		return d
	}
	d = d.Clone()
	d.Rotation += RotateDelta(b.Center(), start, p)
	return d
}

// Move returns d translated by (dx, dy).
func Move(d drawing.Draw, dx, dy float64) drawing.Draw { return d.Translate(dx, dy) }

// IsClick reports whether a drag of (dx, dy) is small enough to count as a
// click.
func IsClick(dx, dy float64) bool {
	return math.Abs(dx) < ClickThreshold && math.Abs(dy) < ClickThreshold
}
