package transport

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/ephemeral"
	"github.com/example/planboard/internal/geom"
)

type event struct {
	kind   string
	user   string
	cursor ephemeral.Cursor
	stroke ephemeral.Stroke
	final  bool
	draw   drawing.Draw
	id     string
	patch  drawing.Patch
	ids    []string
}

type recorder struct{ events chan event }

func newRecorder() *recorder { return &recorder{events: make(chan event, 64)} }

func (r *recorder) HandleCursor(c ephemeral.Cursor) {
	r.events <- event{kind: "cursor", user: c.UserID, cursor: c}
}
func (r *recorder) HandleLaser(s ephemeral.Stroke, final bool) {
	r.events <- event{kind: "laser", user: s.UserID, stroke: s, final: final}
}
func (r *recorder) HandlePeerCreate(d drawing.Draw) { r.events <- event{kind: "create", draw: d} }
func (r *recorder) HandlePeerUpdate(id string, p drawing.Patch) {
	r.events <- event{kind: "update", id: id, patch: p}
}
func (r *recorder) HandlePeerDelete(ids []string) { r.events <- event{kind: "delete", ids: ids} }
func (r *recorder) HandleJoin(u string)           { r.events <- event{kind: "join", user: u} }
func (r *recorder) HandleLeave(u string)          { r.events <- event{kind: "leave", user: u} }

func (r *recorder) next(t *testing.T, kind string) event {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case e := <-r.events:
			if e.kind == kind {
				return e
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", kind)
			return event{}
		}
	}
}

func (r *recorder) none(t *testing.T, kind string, wait time.Duration) {
	t.Helper()
	timeout := time.After(wait)
	for {
		select {
		case e := <-r.events:
			if e.kind == kind {
				t.Fatalf("unexpected %s event: %+v", kind, e)
			}
		case <-timeout:
			return
		}
	}
}

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	r := mux.NewRouter()
	r.Handle("/ws/floors/{floorID}", hub)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv.URL
}

func dial(t *testing.T, base, floor, user string, r Receiver) *Client {
	t.Helper()
	c, err := Dial(context.Background(), base, floor, user)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	c.Listen(r)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestFloorURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"http://host:8080", "ws://host:8080/ws/floors/f%201?user=u"},
		{"https://host/app/", "wss://host/app/ws/floors/f%201?user=u"},
		{"ws://host", "ws://host/ws/floors/f%201?user=u"},
	}
	for _, tt := range tests {
		got, err := FloorURL(tt.base, "f 1", "u")
		if err != nil {
			t.Fatalf("FloorURL(%q): %v", tt.base, err)
		}
		if got != tt.want {
			t.Errorf("FloorURL(%q) = %q want %q", tt.base, got, tt.want)
		}
	}
	if _, err := FloorURL("ftp://host", "f", "u"); err == nil {
		t.Errorf("expected error for ftp scheme")
	}
}

func TestRelayExcludesSenderAndOtherFloors(t *testing.T) {
	_, base := startHub(t)
	alice := newRecorder()
	bob := newRecorder()
	carol := newRecorder()

	a := dial(t, base, "f1", "alice", alice)
	dial(t, base, "f1", "bob", bob)
	if e := alice.next(t, "join"); e.user != "bob" {
		t.Fatalf("join user = %q", e.user)
	}
	dial(t, base, "f2", "carol", carol)

	a.EmitCursor(ephemeral.Cursor{UserID: "mallory", X: 3, Y: 4, Laser: true})
	e := bob.next(t, "cursor")
	if e.user != "alice" || e.cursor.X != 3 || e.cursor.Y != 4 || !e.cursor.Laser {
		t.Fatalf("cursor event = %+v", e)
	}
	alice.none(t, "cursor", 200*time.Millisecond)
	carol.none(t, "cursor", 50*time.Millisecond)
}

func TestDrawMutationsRoundTrip(t *testing.T) {
	_, base := startHub(t)
	alice := newRecorder()
	bob := newRecorder()
	a := dial(t, base, "f1", "alice", alice)
	dial(t, base, "f1", "bob", bob)
	alice.next(t, "join")

	d := drawing.Draw{
		ID:     "d1",
		UserID: "alice",
		Origin: geom.Pt(1, 2),
		Shape:  &drawing.Line{Dest: geom.Pt(10, 20), Color: "#000000", Width: 2},
	}
	a.EmitCreated(d)
	got := bob.next(t, "create")
	if got.draw.ID != "d1" || got.draw.FloorID != "f1" || got.draw.Kind() != drawing.KindLine {
		t.Fatalf("created = %+v", got.draw)
	}

	o := geom.Pt(5, 5)
	a.EmitUpdated("d1", drawing.Patch{Origin: &o})
	up := bob.next(t, "update")
	if up.id != "d1" || up.patch.Origin == nil || *up.patch.Origin != o {
		t.Fatalf("update = %+v", up)
	}

	a.EmitDeleted([]string{"d1"})
	if del := bob.next(t, "delete"); len(del.ids) != 1 || del.ids[0] != "d1" {
		t.Fatalf("delete = %+v", del)
	}

	a.EmitLaser(ephemeral.Stroke{ID: "s", Points: []geom.Point{{X: 1, Y: 1}}}, false)
	if l := bob.next(t, "laser"); l.final || l.user != "alice" {
		t.Fatalf("laser = %+v", l)
	}
	a.EmitLaser(ephemeral.Stroke{ID: "s"}, true)
	if l := bob.next(t, "laser"); !l.final {
		t.Fatalf("laser end not final")
	}
}

func TestLeaveIsBroadcast(t *testing.T) {
	hub, base := startHub(t)
	alice := newRecorder()
	dial(t, base, "f1", "alice", alice)
	b, err := Dial(context.Background(), base, "f1", "bob")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	b.Listen(nil)
	alice.next(t, "join")
	b.Close()
	if e := alice.next(t, "leave"); e.user != "bob" {
		t.Fatalf("leave user = %q", e.user)
	}
	deadline := time.Now().Add(2 * time.Second)
	for len(hub.Connected("f1")) != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("connected = %v", hub.Connected("f1"))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDispatchRejectsUnknownType(t *testing.T) {
	if err := Dispatch(Envelope{Type: "bogus"}, newRecorder()); err == nil {
		t.Fatalf("expected error")
	}
}
