package drawing

import (
	"encoding/json"
	"errors"
	"image/color"
	"testing"

	"github.com/example/planboard/internal/geom"
)

func TestBounds(t *testing.T) {
	tests := []struct {
		name string
		d    Draw
		want geom.Rect
		ok   bool
	}{
		{"empty path", Draw{Shape: &Path{}}, geom.Rect{}, false},
		{"path", Draw{Shape: &Path{Points: []geom.Point{{X: 5, Y: 5}, {X: 1, Y: 9}, {X: 7, Y: 2}}}}, geom.Rect{X: 1, Y: 2, W: 6, H: 7}, true},
		{"line", Draw{Origin: geom.Pt(10, 0), Shape: &Line{Dest: geom.Pt(0, 10)}}, geom.Rect{X: 0, Y: 0, W: 10, H: 10}, true},
		{"rect negative", Draw{Origin: geom.Pt(10, 10), Shape: &Rect{Width: -4, Height: -6}}, geom.Rect{X: 6, Y: 4, W: 4, H: 6}, true},
		{"rect dest", Draw{Origin: geom.Pt(10, 10), Shape: &Rect{Dest: geom.Pt(20, 30)}}, geom.Rect{X: 10, Y: 10, W: 10, H: 20}, true},
		{"text", Draw{Origin: geom.Pt(0, 20), Shape: &Text{Text: "abcd", FontSize: 10}}, geom.Rect{X: 0, Y: 10, W: 24, H: 13}, true},
		{"icon", Draw{Origin: geom.Pt(50, 50), Shape: &Icon{Size: 40}}, geom.Rect{X: 30, Y: 30, W: 40, H: 40}, true},
		{"deleted", Draw{Deleted: true, Shape: &Icon{}}, geom.Rect{}, false},
	}
	for _, tt := range tests {
		got, ok := tt.d.Bounds()
		if ok != tt.ok || got != tt.want {
			t.Errorf("%s: Bounds() = %v, %v want %v, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTranslateDoesNotAlias(t *testing.T) {
	d := Draw{Origin: geom.Pt(1, 1), Shape: &Path{Points: []geom.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}}}
	moved := d.Translate(10, 5)
	if moved.Origin != geom.Pt(11, 6) {
		t.Fatalf("origin = %v", moved.Origin)
	}
	if p := moved.Shape.(*Path).Points[1]; p != geom.Pt(12, 7) {
		t.Fatalf("point = %v", p)
	}
	if p := d.Shape.(*Path).Points[1]; p != geom.Pt(2, 2) {
		t.Fatalf("original mutated: %v", p)
	}
}

func TestWireFormat(t *testing.T) {
	d := Draw{
		ID:      "abc",
		UserID:  "u1",
		FloorID: "f1",
		Origin:  geom.Pt(1, 2),
		Shape:   &Rect{Dest: geom.Pt(5, 6), Width: 4, Height: 4, Color: "#00FF00", StrokeWidth: 2},
	}
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if raw["type"] != "rectangle" || raw["destinationX"] != 5.0 {
		t.Fatalf("unexpected wire form: %s", b)
	}

	p := Draw{Origin: geom.Pt(1, 2), Shape: &Text{Text: "hi"}}
	b, _ = json.Marshal(p)
	raw = nil
	_ = json.Unmarshal(b, &raw)
	if _, ok := raw["destinationX"]; ok {
		t.Fatalf("text should not carry a destination: %s", b)
	}
}

func TestUnknownTypeRejected(t *testing.T) {
	var d Draw
	err := json.Unmarshal([]byte(`{"type":"ellipse","originX":1,"originY":1,"data":{}}`), &d)
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("err = %v, want ErrUnknownType", err)
	}
}

func TestPatchInverse(t *testing.T) {
	before := Draw{ID: "a", Origin: geom.Pt(0, 0), Shape: &Line{Dest: geom.Pt(10, 0), Width: 3}}
	after := before.Translate(4, 4)
	after.Rotation = 0.5
	fwd := PatchFrom(before, after)
	inv := PatchFrom(after, before)
	if got := fwd.Apply(before); got.Origin != after.Origin || got.Rotation != 0.5 || got.Shape.(*Line).Dest != geom.Pt(14, 4) {
		t.Fatalf("forward = %+v", got)
	}
	back := inv.Apply(fwd.Apply(before))
	if back.Origin != before.Origin || back.Rotation != 0 || back.Shape.(*Line).Dest != geom.Pt(10, 0) {
		t.Fatalf("inverse = %+v", back)
	}
	if !PatchFrom(before, before).Empty() {
		t.Fatalf("identical draws should give an empty patch")
	}
}

func TestFilter(t *testing.T) {
	f := Filter{ActivePhase: "p1", VisibleSlots: map[string]bool{"s1": true}, HideLandscape: true}
	tests := []struct {
		d    Draw
		want bool
	}{
		{Draw{PhaseID: "p2", SlotID: "s1"}, false},
		{Draw{PhaseID: "p1", SlotID: "s1"}, true},
		{Draw{SlotID: "s2"}, false},
		{Draw{}, false},
	}
	for i, tt := range tests {
		if got := f.Allows(tt.d); got != tt.want {
			t.Errorf("%d: Allows = %v want %v", i, got, tt.want)
		}
	}
	if !(Filter{}).Allows(Draw{PhaseID: "x", SlotID: "y"}) {
		t.Fatalf("zero filter should allow everything")
	}
}

func TestParseColor(t *testing.T) {
	tests := map[string]color.RGBA{
		"#FF0000":   {255, 0, 0, 255},
		"#0f0":      {0, 255, 0, 255},
		"#11223380": {0x11, 0x22, 0x33, 0x80},
		"white":     {255, 255, 255, 255},
	}
	for in, want := range tests {
		got, err := ParseColor(in)
		if err != nil || got != want {
			t.Errorf("ParseColor(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseColor("#12"); err == nil {
		t.Errorf("expected error for short hex")
	}
	if FormatColor(color.RGBA{253, 113, 0, 255}) != "#FD7100" {
		t.Errorf("FormatColor mismatch")
	}
}
