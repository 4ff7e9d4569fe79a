package selection

import (
	"math"
	"testing"

	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/geom"
)

func rectDraw(x, y, w, h float64) drawing.Draw {
	return drawing.Draw{ID: "r", Origin: geom.Pt(x, y), Shape: &drawing.Rect{Width: w, Height: h, Dest: geom.Pt(x+w, y+h)}}
}

func TestHandleAt(t *testing.T) {
	d := rectDraw(100, 100, 100, 50)
	tests := []struct {
		p    geom.Point
		want Handle
	}{
		{geom.Pt(96, 96), HandleNW},
		{geom.Pt(204, 154), HandleSE},
		{geom.Pt(150, 96), HandleN},
		{geom.Pt(150, 72), HandleRotate},
		{geom.Pt(150, 81), HandleRotate},
		{geom.Pt(150, 125), HandleNone},
	}
	for _, tt := range tests {
		if got := HandleAt(d, tt.p); got != tt.want {
			t.Errorf("HandleAt(%v) = %q want %q", tt.p, got, tt.want)
		}
	}
}

func TestHandleAtRotated(t *testing.T) {
	d := rectDraw(100, 100, 200, 40)
	d.Rotation = math.Pi / 2
	tests := []struct {
		p    geom.Point
		want Handle
	}{
		{geom.Pt(248, 120), HandleRotate},
		{geom.Pt(176, 224), HandleSE},
		{geom.Pt(224, 16), HandleNW},
		{geom.Pt(200, 72), HandleNone},
	}
	for _, tt := range tests {
		if got := HandleAt(d, tt.p); got != tt.want {
			t.Errorf("HandleAt(%v) = %q want %q", tt.p, got, tt.want)
		}
	}
}

func TestStateResizeRotated(t *testing.T) {
	d := rectDraw(100, 100, 100, 50)
	d.Rotation = math.Pi
	grab := geom.Pt(96, 96)
	if h := HandleAt(d, grab); h != HandleSE {
		t.Fatalf("handle at %v = %q", grab, h)
	}
	var s State
	s.Begin(d, ModeResize, HandleSE, grab)
	got := s.Update(geom.Pt(-4, 96))
	b, ok := got.Bounds()
	if !ok || math.Abs(b.W-200) > 1e-6 || math.Abs(b.H-50) > 1e-6 {
		t.Fatalf("bounds = %v, want 200x50", b)
	}
}

func TestResizeRectEdges(t *testing.T) {
	orig := geom.Rect{X: 100, Y: 100, W: 100, H: 50}
	got := ResizeRect(orig, HandleE, geom.Pt(304, 0))
	if got != (geom.Rect{X: 100, Y: 100, W: 200, H: 50}) {
		t.Fatalf("east = %v", got)
	}
	got = ResizeRect(orig, HandleNW, geom.Pt(46, 76))
	if got != (geom.Rect{X: 50, Y: 80, W: 150, H: 70}) {
		t.Fatalf("north-west = %v", got)
	}
	got = ResizeRect(orig, HandleS, geom.Pt(0, -500))
	if got.H != MinSize-2*Pad || got.Y != orig.Y || got.W != orig.W {
		t.Fatalf("south collapse = %v", got)
	}
}

func TestResizeRoundTrip(t *testing.T) {
	d := rectDraw(100, 100, 100, 50)
	orig, _ := d.Bounds()
	for _, h := range ResizeHandles {
		start := HandlePoint(orig.Pad(Pad), h)
		target := start.Add(geom.Pt(37, 23))
		next := ResizeRect(orig, h, target)
		grown := Resize(d, orig, next)
		mid, _ := grown.Bounds()
		back := ResizeRect(mid, h, start)
		restored := Resize(grown, mid, back)
		got, _ := restored.Bounds()
		if math.Abs(got.X-orig.X) > 1e-9 || math.Abs(got.Y-orig.Y) > 1e-9 ||
			math.Abs(got.W-orig.W) > 1e-9 || math.Abs(got.H-orig.H) > 1e-9 {
			t.Errorf("%s: round trip %v -> %v", h, orig, got)
		}
	}
}

func TestResizeTextAndIcon(t *testing.T) {
	text := drawing.Draw{ID: "t", Origin: geom.Pt(0, 20), Shape: &drawing.Text{Text: "ab", FontSize: 20}}
	b, _ := text.Bounds()
	out := Resize(text, b, geom.Rect{X: 10, Y: 10, W: b.W * 2, H: b.H})
	if fs := out.Shape.(*drawing.Text).FontSize; fs != 40 {
		t.Fatalf("font size = %v", fs)
	}
	if out.Origin != geom.Pt(10, 10+b.H) {
		t.Fatalf("text origin = %v", out.Origin)
	}
	out = Resize(text, b, geom.Rect{W: 1, H: 1})
	if fs := out.Shape.(*drawing.Text).FontSize; fs != MinFontSize {
		t.Fatalf("font floor = %v", fs)
	}

	icon := drawing.Draw{ID: "i", Origin: geom.Pt(50, 50), Shape: &drawing.Icon{Size: 40}}
	ib, _ := icon.Bounds()
	out = Resize(icon, ib, geom.Rect{X: 0, Y: 0, W: 10, H: 4})
	if s := out.Shape.(*drawing.Icon).Size; s != MinIconSize {
		t.Fatalf("icon floor = %v", s)
	}
	if out.Origin != geom.Pt(5, 2) {
		t.Fatalf("icon origin = %v", out.Origin)
	}
}

func TestRotate(t *testing.T) {
	d := rectDraw(0, 0, 100, 100)
	out := Rotate(d, geom.Pt(100, 50), geom.Pt(50, 100))
	if math.Abs(out.Rotation-math.Pi/2) > 1e-9 {
		t.Fatalf("rotation = %v", out.Rotation)
	}
	if d.Rotation != 0 {
		t.Fatalf("input mutated")
	}
}

func TestStateMoveClick(t *testing.T) {
	var s State
	d := rectDraw(0, 0, 10, 10)
	s.Begin(d, ModeMove, HandleNone, geom.Pt(5, 5))
	if _, _, commit := s.End(geom.Pt(6, 6)); commit {
		t.Fatalf("a small drag should be treated as a click")
	}
	if s.SelectedID != "r" || s.Dragging() {
		t.Fatalf("click should keep selection and end the drag: %+v", s)
	}
	s.Begin(d, ModeMove, HandleNone, geom.Pt(5, 5))
	s.Update(geom.Pt(20, 5))
	before, after, commit := s.End(geom.Pt(25, 15))
	if !commit || before.Origin != geom.Pt(0, 0) || after.Origin != geom.Pt(20, 10) {
		t.Fatalf("move commit = %v %v %v", commit, before.Origin, after.Origin)
	}
}
