package geom

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestTransformRoundTrip(t *testing.T) {
	origin := Pt(48, 24)
	tests := []Transform{
		{Scale: 1},
		{Scale: 2.5, OffsetX: -120, OffsetY: 33},
		{Scale: 0.1, OffsetX: 7, OffsetY: -900},
	}
	pts := []Point{{0, 0}, {12.5, -3}, {1024, 768}}
	for _, tr := range tests {
		for _, p := range pts {
			got := ToScreen(ToContent(p, origin, tr), origin, tr)
			if !near(got.X, p.X) || !near(got.Y, p.Y) {
				t.Errorf("scale %v: round trip %v -> %v", tr.Scale, p, got)
			}
		}
	}
}

func TestToContent(t *testing.T) {
	got := ToContent(Pt(110, 70), Pt(10, 20), Transform{Scale: 2, OffsetX: 50, OffsetY: 10})
	if got != Pt(25, 20) {
		t.Fatalf("ToContent = %v", got)
	}
}

func TestDistToSegment(t *testing.T) {
	tests := []struct {
		p, a, b Point
		want    float64
	}{
		{Pt(5, 3), Pt(0, 0), Pt(10, 0), 3},
		{Pt(-4, 3), Pt(0, 0), Pt(10, 0), 5},
		{Pt(13, 4), Pt(0, 0), Pt(10, 0), 5},
		{Pt(3, 4), Pt(0, 0), Pt(0, 0), 5},
	}
	for _, tt := range tests {
		if got := DistToSegment(tt.p, tt.a, tt.b); !near(got, tt.want) {
			t.Errorf("DistToSegment(%v, %v, %v) = %v, want %v", tt.p, tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRectNormalizeAndUnion(t *testing.T) {
	r := Rect{10, 10, -4, -6}.Normalize()
	if r != (Rect{6, 4, 4, 6}) {
		t.Fatalf("Normalize = %v", r)
	}
	u := r.Union(Rect{20, 0, 1, 1})
	if u != (Rect{6, 0, 15, 10}) {
		t.Fatalf("Union = %v", u)
	}
	if _, ok := BoundOf(); ok {
		t.Fatalf("BoundOf with no points should fail")
	}
	b, _ := BoundOf(Pt(3, 9), Pt(-1, 2), Pt(5, 4))
	if b != (Rect{-1, 2, 6, 7}) {
		t.Fatalf("BoundOf = %v", b)
	}
}
