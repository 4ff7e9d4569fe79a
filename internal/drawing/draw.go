// Package drawing defines the annotation model: a Draw with a closed set of
// shapes, their geometry and the wire codec used by the store and transport.
package drawing

import (
	"unicode/utf8"

	"github.com/example/planboard/internal/geom"
)

// Kind names a shape variant.
type Kind string

const (
	KindPath Kind = "path"
	KindLine Kind = "line"
	KindRect Kind = "rectangle"
	KindText Kind = "text"
	KindIcon Kind = "icon"
)

const (
	DefaultLineWidth = 3
	DefaultFontSize  = 16
	DefaultIconSize  = 32
	DefaultColor     = "#FF0000"

	// textAdvance approximates the advance of one character as a fraction of
	// the font size.
	textAdvance = 0.6
	// textDescent is the fraction of the font size below the baseline.
	textDescent = 0.3
)

// Draw is one annotation on a floor.
type Draw struct {
	ID       string
	UserID   string
	FloorID  string
	PhaseID  string
	SlotID   string
	Origin   geom.Point
	Rotation float64
	Deleted  bool
	Shape    Shape
}

// Shape is implemented by the five shape variants only.
type Shape interface {
	Kind() Kind
	clone() Shape
}

// Path is a freehand polyline. Points are absolute content coordinates.
type Path struct {
	Points []geom.Point
	Color  string
	Width  float64
}

// Line is a straight segment from the draw origin to Dest.
type Line struct {
	Dest  geom.Point
	Color string
	Width float64
}

// Rect is a rectangle anchored at the draw origin. Width and Height may be
// negative; when both are zero Dest defines the opposite corner.
type Rect struct {
	Dest        geom.Point
	Width       float64
	Height      float64
	Filled      bool
	Color       string
	StrokeWidth float64
}

// Text is a single line of text with its baseline at the draw origin.
type Text struct {
	Text     string
	FontSize float64
	Color    string
}

// Icon is a square marker centered on the draw origin. When the image at URL
// is unavailable the Glyph is drawn on Background instead.
type Icon struct {
	Size       float64
	URL        string
	Glyph      string
	GlyphColor string
	Background string
}

func (*Path) Kind() Kind { return KindPath }
func (*Line) Kind() Kind { return KindLine }
func (*Rect) Kind() Kind { return KindRect }
func (*Text) Kind() Kind { return KindText }
func (*Icon) Kind() Kind { return KindIcon }

func (s *Path) clone() Shape {
	c := *s
	c.Points = append([]geom.Point(nil), s.Points...)
	return &c
}

func (s *Line) clone() Shape { c := *s; return &c }
func (s *Rect) clone() Shape { c := *s; return &c }
func (s *Text) clone() Shape { c := *s; return &c }
func (s *Icon) clone() Shape { c := *s; return &c }

// Kind returns the shape kind or an empty string when no shape is set.
func (d Draw) Kind() Kind {
	if d.Shape == nil {
		return ""
	}
	return d.Shape.Kind()
}

// Clone returns a deep copy of d.
func (d Draw) Clone() Draw {
	if d.Shape != nil {
		d.Shape = d.Shape.clone()
	}
	return d
}

// Dest returns the destination point of a line or rectangle.
func (d Draw) Dest() (geom.Point, bool) {
	switch s := d.Shape.(type) {
	case *Line:
		return s.Dest, true
	case *Rect:
		return s.Dest, true
	}
	return geom.Point{}, false
}

// StrokeWidth returns the stroke width used for hit testing, falling back to
// the default for shapes without one.
func (d Draw) StrokeWidth() float64 {
	var w float64
	switch s := d.Shape.(type) {
	case *Path:
		w = s.Width
	case *Line:
		w = s.Width
	case *Rect:
		w = s.StrokeWidth
	}
	if w <= 0 {
		return DefaultLineWidth
	}
	return w
}

// Color returns the primary color of the draw.
func (d Draw) Color() string {
	var c string
	switch s := d.Shape.(type) {
	case *Path:
		c = s.Color
	case *Line:
		c = s.Color
	case *Rect:
		c = s.Color
	case *Text:
		c = s.Color
	case *Icon:
		c = s.GlyphColor
	}
	if c == "" {
		return DefaultColor
	}
	return c
}

// RectSize returns the signed width and height of a rectangle, preferring the
// stored size and falling back to the destination.
func (s *Rect) RectSize(origin geom.Point) (w, h float64) {
	if s.Width != 0 || s.Height != 0 {
		return s.Width, s.Height
	}
	return s.Dest.X - origin.X, s.Dest.Y - origin.Y
}

func fontSize(s *Text) float64 {
	if s.FontSize <= 0 {
		return DefaultFontSize
	}
	return s.FontSize
}

// Size returns the font size with the default applied.
func (s *Text) Size() float64 { return fontSize(s) }

// Side returns the icon side with the default applied.
func (s *Icon) Side() float64 {
	if s.Size <= 0 {
		return DefaultIconSize
	}
	return s.Size
}

// Bounds returns the unrotated axis aligned bounds of d. It reports false for
// deleted draws and for paths without points.
func (d Draw) Bounds() (geom.Rect, bool) {
	if d.Deleted || d.Shape == nil {
		return geom.Rect{}, false
	}
	switch s := d.Shape.(type) {
	case *Path:
		return geom.BoundOf(s.Points...)
	case *Line:
		return geom.BoundOf(d.Origin, s.Dest)
	case *Rect:
		w, h := s.RectSize(d.Origin)
		return geom.Rect{X: d.Origin.X, Y: d.Origin.Y, W: w, H: h}.Normalize(), true
	case *Text:
		fs := fontSize(s)
		n := float64(utf8.RuneCountInString(s.Text))
		return geom.Rect{X: d.Origin.X, Y: d.Origin.Y - fs, W: n * fs * textAdvance, H: fs * (1 + textDescent)}, true
	case *Icon:
		side := s.Side()
		return geom.Rect{X: d.Origin.X - side/2, Y: d.Origin.Y - side/2, W: side, H: side}, true
	}
	return geom.Rect{}, false
}

// Translate returns a copy of d moved by (dx, dy).
func (d Draw) Translate(dx, dy float64) Draw {
	d = d.Clone()
	delta := geom.Pt(dx, dy)
	d.Origin = d.Origin.Add(delta)
	switch s := d.Shape.(type) {
	case *Path:
		for i := range s.Points {
			s.Points[i] = s.Points[i].Add(delta)
		}
	case *Line:
		s.Dest = s.Dest.Add(delta)
	case *Rect:
		s.Dest = s.Dest.Add(delta)
	}
	return d
}
