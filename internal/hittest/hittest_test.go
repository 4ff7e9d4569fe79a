package hittest

import (
	"testing"

	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/geom"
)

func TestTolerance(t *testing.T) {
	tests := map[float64]float64{0: 8, 3: 8, 8: 8, 10: 9, 20: 14}
	for w, want := range tests {
		if got := Tolerance(w); got != want {
			t.Errorf("Tolerance(%v) = %v want %v", w, got, want)
		}
	}
}

func TestHitShapes(t *testing.T) {
	line := drawing.Draw{ID: "l", Origin: geom.Pt(0, 0), Shape: &drawing.Line{Dest: geom.Pt(100, 0), Width: 3}}
	rect := drawing.Draw{ID: "r", Origin: geom.Pt(0, 0), Shape: &drawing.Rect{Width: 100, Height: 50}}
	filled := drawing.Draw{ID: "f", Origin: geom.Pt(0, 0), Shape: &drawing.Rect{Width: 100, Height: 50, Filled: true}}
	path := drawing.Draw{ID: "p", Shape: &drawing.Path{Points: []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 20, Y: 0}}}}
	single := drawing.Draw{ID: "s", Shape: &drawing.Path{Points: []geom.Point{{X: 0, Y: 0}}}}
	text := drawing.Draw{ID: "t", Origin: geom.Pt(0, 20), Shape: &drawing.Text{Text: "hello", FontSize: 20}}
	icon := drawing.Draw{ID: "i", Origin: geom.Pt(50, 50), Shape: &drawing.Icon{Size: 40}}

	tests := []struct {
		name string
		d    drawing.Draw
		p    geom.Point
		want bool
	}{
		{"line near", line, geom.Pt(50, 7.9), true},
		{"line at tolerance", line, geom.Pt(50, 8), false},
		{"rect edge", rect, geom.Pt(50, 3), true},
		{"rect interior", rect, geom.Pt(50, 25), false},
		{"filled interior", filled, geom.Pt(50, 25), true},
		{"path", path, geom.Pt(5, 6), true},
		{"single point path", single, geom.Pt(0, 0), false},
		{"text inside", text, geom.Pt(30, 15), true},
		{"text below", text, geom.Pt(30, 27), false},
		{"icon", icon, geom.Pt(69, 31), true},
		{"icon outside", icon, geom.Pt(71, 50), false},
	}
	for _, tt := range tests {
		if got := Hit(tt.d, tt.p); got != tt.want {
			t.Errorf("%s: Hit = %v want %v", tt.name, got, tt.want)
		}
	}
	line.Deleted = true
	if Hit(line, geom.Pt(50, 0)) {
		t.Errorf("deleted draw should never hit")
	}
}

func TestHitOutlinedRect(t *testing.T) {
	rect := drawing.Draw{ID: "r", Origin: geom.Pt(10, 10), Shape: &drawing.Rect{Dest: geom.Pt(50, 40), Width: 40, Height: 30, StrokeWidth: 3}}
	if !Hit(rect, geom.Pt(10, 25)) {
		t.Errorf("left edge should hit")
	}
	if Hit(rect, geom.Pt(30, 25)) {
		t.Errorf("interior of an outlined rect should not hit")
	}
}

func TestHitIsTranslationInvariant(t *testing.T) {
	draws := []drawing.Draw{
		{Origin: geom.Pt(0, 0), Shape: &drawing.Line{Dest: geom.Pt(30, 40)}},
		{Origin: geom.Pt(5, 5), Shape: &drawing.Rect{Width: 20, Height: 10}},
		{Origin: geom.Pt(0, 30), Shape: &drawing.Text{Text: "abc"}},
	}
	probes := []geom.Point{{X: 15, Y: 20}, {X: 5, Y: 9}, {X: 10, Y: 25}, {X: 100, Y: 100}}
	for _, d := range draws {
		moved := d.Translate(37, -12)
		for _, p := range probes {
			if Hit(d, p) != Hit(moved, p.Add(geom.Pt(37, -12))) {
				t.Errorf("%s: hit differs after translation at %v", d.Kind(), p)
			}
		}
	}
}

func TestTopmostOwnershipAndFilter(t *testing.T) {
	mine := drawing.Draw{ID: "a", UserID: "me", Origin: geom.Pt(0, 0), Shape: &drawing.Rect{Width: 10, Height: 10, Filled: true}}
	theirs := drawing.Draw{ID: "b", UserID: "other", Origin: geom.Pt(0, 0), Shape: &drawing.Rect{Width: 10, Height: 10, Filled: true}}
	draws := []drawing.Draw{mine, theirs}

	got, ok := Topmost(draws, geom.Pt(5, 5), Interactable("me", drawing.Filter{}))
	if !ok || got.ID != "a" {
		t.Fatalf("Topmost = %v %v, want mine", got.ID, ok)
	}
	got, ok = Topmost(draws, geom.Pt(5, 5), nil)
	if !ok || got.ID != "b" {
		t.Fatalf("unfiltered Topmost = %v, want topmost", got.ID)
	}
	if _, ok := Topmost(draws, geom.Pt(5, 5), Interactable("nobody", drawing.Filter{})); ok {
		t.Fatalf("foreign draws should not be interactable")
	}
	global := drawing.Draw{ID: "g", Origin: geom.Pt(0, 0), PhaseID: "p2", Shape: &drawing.Rect{Width: 10, Height: 10, Filled: true}}
	if _, ok := Topmost([]drawing.Draw{global}, geom.Pt(5, 5), Interactable("x", drawing.Filter{})); !ok {
		t.Fatalf("unowned draws are global")
	}
	if _, ok := Topmost([]drawing.Draw{global}, geom.Pt(5, 5), Interactable("x", drawing.Filter{ActivePhase: "p1"})); ok {
		t.Fatalf("phase filter should exclude")
	}
	preview := drawing.Draw{Origin: geom.Pt(0, 0), Shape: &drawing.Rect{Width: 10, Height: 10, Filled: true}}
	if _, ok := Topmost([]drawing.Draw{preview}, geom.Pt(5, 5), Interactable("x", drawing.Filter{})); ok {
		t.Fatalf("draws without id are not interactable")
	}
}
