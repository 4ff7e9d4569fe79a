package ephemeral

import (
	"math"
	"testing"
	"time"

	"github.com/example/planboard/internal/geom"
)

func TestThrottle(t *testing.T) {
	base := time.Unix(1000, 0)
	var th Throttle
	if !th.Allow(base) {
		t.Fatalf("first event should pass")
	}
	if th.Allow(base.Add(30 * time.Millisecond)) {
		t.Fatalf("event inside interval should be dropped")
	}
	if th.Allow(base.Add(50 * time.Millisecond)) {
		t.Fatalf("event at exactly the interval should be dropped")
	}
	if !th.Allow(base.Add(51 * time.Millisecond)) {
		t.Fatalf("event after the interval should pass")
	}
}

func TestOpacity(t *testing.T) {
	start := time.Unix(0, 0)
	s := Stroke{FadeStart: start}
	tests := []struct {
		at   time.Duration
		want float64
	}{
		{0, 1},
		{1500 * time.Millisecond, 0.5},
		{3 * time.Second, 0},
		{10 * time.Second, 0},
	}
	for _, tt := range tests {
		if got := Opacity(s, start.Add(tt.at)); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Opacity(+%v) = %v want %v", tt.at, got, tt.want)
		}
	}
	if Opacity(Stroke{}, start) != 1 {
		t.Errorf("unfaded stroke should be opaque")
	}
}

func TestFadeListGC(t *testing.T) {
	start := time.Unix(0, 0)
	var f FadeList
	f.Add(Stroke{ID: "a"}, start)
	f.Add(Stroke{ID: "b"}, start.Add(2*time.Second))
	if n := len(f.Live(start.Add(2500 * time.Millisecond))); n != 2 {
		t.Fatalf("live = %d", n)
	}
	if !f.GC(start.Add(3 * time.Second)) {
		t.Fatalf("b should remain")
	}
	if f.Len() != 1 {
		t.Fatalf("len = %d", f.Len())
	}
	if f.GC(start.Add(5 * time.Second)) {
		t.Fatalf("all strokes should be gone")
	}
}

func TestPeers(t *testing.T) {
	now := time.Unix(0, 0)
	var p Peers
	p.SetCursor(Cursor{UserID: "b", X: 1})
	p.SetCursor(Cursor{UserID: "a", X: 2})
	p.SetCursor(Cursor{UserID: "b", X: 3})
	cs := p.Cursors()
	if len(cs) != 2 || cs[0].UserID != "a" || cs[1].X != 3 {
		t.Fatalf("cursors = %+v", cs)
	}
	stroke := Stroke{ID: "s", UserID: "a", Points: []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}}
	p.SetLaser(stroke, false, now)
	if len(p.Lasers()) != 1 {
		t.Fatalf("expected in-progress laser")
	}
	p.SetLaser(stroke, true, now)
	if len(p.Lasers()) != 0 || p.Fading().Len() != 1 {
		t.Fatalf("final stroke should fade")
	}
	p.Remove("a")
	if len(p.Cursors()) != 1 {
		t.Fatalf("remove failed")
	}
}
