package appstate

import (
	"context"
	"image"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/planboard/assets"
	"github.com/example/planboard/internal/board"
	"github.com/example/planboard/internal/render"
	"github.com/example/planboard/internal/store"
	"github.com/example/planboard/internal/theme"
	"github.com/example/planboard/internal/tools"
	"github.com/example/planboard/internal/viewport"
)

func TestShortcutFor(t *testing.T) {
	tests := []struct {
		ev   key.Event
		want string
	}{
		{key.Event{Rune: 'z', Modifiers: key.ModControl}, actionUndo},
		{key.Event{Rune: 'Z', Modifiers: key.ModControl | key.ModShift}, actionRedo},
		{key.Event{Rune: 'y', Modifiers: key.ModControl}, actionRedo},
		{key.Event{Rune: 'J', Modifiers: key.ModShift}, actionNextFloor},
		{key.Event{Rune: 'k'}, actionPrevFloor},
		{key.Event{Rune: '+', Modifiers: key.ModShift}, actionZoomIn},
		{key.Event{Rune: '0'}, actionZoomReset},
		{key.Event{Rune: -1, Code: key.CodeDeleteForward}, actionDelete},
		{key.Event{Rune: 'l', Modifiers: key.ModControl}, actionShare},
	}
	for _, tt := range tests {
		got, ok := shortcutFor(tt.ev)
		if !ok || got != tt.want {
			t.Errorf("shortcutFor(%+v) = %q, %v; want %q", tt.ev, got, ok, tt.want)
		}
	}
	if got, ok := shortcutFor(key.Event{Rune: 'l'}); ok {
		t.Errorf("plain l mapped to %q", got)
	}
}

func TestPanKeys(t *testing.T) {
	tests := []struct {
		ev   key.Event
		want viewport.PanKey
	}{
		{key.Event{Code: key.CodeW, Rune: 'w'}, viewport.PanUp},
		{key.Event{Code: key.CodeS, Rune: 's'}, viewport.PanDown},
		{key.Event{Code: key.CodeA, Rune: 'a'}, viewport.PanLeft},
		{key.Event{Code: key.CodeD, Rune: 'd'}, viewport.PanRight},
		{key.Event{Code: key.CodeUpArrow, Rune: -1}, viewport.PanUp},
		{key.Event{Code: key.CodeRightArrow, Rune: -1, Modifiers: key.ModControl}, viewport.PanRight},
	}
	for _, tt := range tests {
		got, ok := panKeyFor(tt.ev)
		if !ok || got != tt.want {
			t.Errorf("panKeyFor(%+v) = %v, %v", tt.ev, got, ok)
		}
	}
	if _, ok := panKeyFor(key.Event{Code: key.CodeS, Rune: 's', Modifiers: key.ModControl}); ok {
		t.Errorf("ctrl+s should not pan")
	}
}

func TestToolAndEditKeys(t *testing.T) {
	if tool, ok := toolForKey(key.Event{Rune: 'P'}); !ok || tool != tools.ToolPen {
		t.Errorf("P = %v, %v", tool, ok)
	}
	if _, ok := toolForKey(key.Event{Rune: 'p', Modifiers: key.ModControl}); ok {
		t.Errorf("ctrl+p selected a tool")
	}
	if k, ok := editKey(key.Event{Code: key.CodeReturnEnter, Rune: -1}); !ok || k.Key != tools.KeyEnter {
		t.Errorf("enter = %+v", k)
	}
	if k, ok := editKey(key.Event{Rune: 'é'}); !ok || k.Rune != 'é' {
		t.Errorf("rune = %+v", k)
	}
	if _, ok := editKey(key.Event{Rune: 'v', Modifiers: key.ModControl}); ok {
		t.Errorf("ctrl+v typed a rune")
	}
}

func actions(ws []widget) map[string]widget {
	out := map[string]widget{}
	for _, w := range ws {
		out[w.action] = w
	}
	return out
}

func TestLayoutChrome(t *testing.T) {
	in := chromeInput{
		width:    800,
		height:   600,
		floors:   []store.Floor{{ID: "a", Name: "Ground"}, {ID: "b"}},
		current:  1,
		settings: tools.Settings{Tool: tools.ToolPen, Color: "#ff0000", Width: 3},
		zoom:     1,
	}
	got := actions(layoutChrome(in))
	if w, ok := got["tool:pen"]; !ok || !w.active {
		t.Fatalf("pen button = %+v, %v", w, ok)
	}
	if !got["floor:1"].active || got["floor:0"].label != "Ground" || got["floor:1"].label != "b" {
		t.Errorf("floor tabs = %+v %+v", got["floor:0"], got["floor:1"])
	}
	if !got["color:#FF0000"].active {
		t.Errorf("current color not highlighted")
	}
	if !got["width:3"].active {
		t.Errorf("current width not highlighted")
	}
	if _, ok := got["font:16"]; ok {
		t.Errorf("font sizes shown for the pen")
	}
	if w := got[actionUndo]; w.rect.Min.Y < in.height-bottomHeight {
		t.Errorf("undo shortcut outside the status bar: %v", w.rect)
	}

	in.readOnly = true
	got = actions(layoutChrome(in))
	if _, ok := got["tool:pen"]; ok {
		t.Errorf("read-only layout offers the pen")
	}
	if _, ok := got["tool:laser-line"]; !ok {
		t.Errorf("read-only layout hides the laser")
	}
	if _, ok := got[actionUndo]; ok {
		t.Errorf("read-only layout offers undo")
	}

	in.readOnly = false
	in.settings.Tool = tools.ToolIcon
	in.settings.Icon = &tools.IconRef{URL: render.BuiltinScheme + "flag"}
	got = actions(layoutChrome(in))
	for _, name := range assets.Names() {
		if _, ok := got["icon:"+name]; !ok {
			t.Errorf("icon %s missing", name)
		}
	}
	if !got["icon:flag"].active {
		t.Errorf("selected icon not highlighted")
	}
}

type sent struct{ ch chan any }

func (s sent) send(ev any) { s.ch <- ev }

func newTestLoop(t *testing.T, opts ...Option) (*loop, sent) {
	t.Helper()
	b := board.New(board.WithStore(store.NewMemory()), board.WithUserID("me"))
	t.Cleanup(b.Close)
	a := New(append([]Option{WithBoard(b)}, opts...)...)
	s := sent{ch: make(chan any, 4)}
	l := newLoop(a, render.New(render.WithIcons(nil)), s.send)
	l.resize(800, 600)
	return l, s
}

func receive(t *testing.T, s sent) any {
	t.Helper()
	select {
	case ev := <-s.ch:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatalf("no event")
	}
	return nil
}

func TestRunSettings(t *testing.T) {
	l, _ := newTestLoop(t)
	l.run("tool:rect")
	l.run("color:#00FF00")
	l.run("width:6")
	l.run("font:24")
	l.run("icon:camera")
	s := l.board.Settings()
	if s.Tool != tools.ToolRect || s.Color != "#00FF00" || s.Width != 6 || s.FontSize != 24 {
		t.Fatalf("settings = %+v", s)
	}
	if s.Icon == nil || s.Icon.URL != "builtin:camera" {
		t.Fatalf("icon = %+v", s.Icon)
	}
	l.run(actionQuit)
	if !l.quit {
		t.Fatalf("quit not recorded")
	}
}

func TestClickToolbar(t *testing.T) {
	l, _ := newTestLoop(t)
	w, ok := actions(l.widgets)["tool:line"]
	if !ok {
		t.Fatalf("no line button")
	}
	c := w.rect.Min.Add(w.rect.Size().Div(2))
	if !l.handleMouse(mouse.Event{X: float32(c.X), Y: float32(c.Y), Button: mouse.ButtonLeft, Direction: mouse.DirPress}) {
		t.Fatalf("click did not request a repaint")
	}
	if got := l.board.Settings().Tool; got != tools.ToolLine {
		t.Fatalf("tool = %v", got)
	}
}

func TestSwitchFloorWraps(t *testing.T) {
	floors := []store.Floor{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	opened := make(chan string, 1)
	open := func(_ context.Context, f store.Floor) error {
		opened <- f.ID
		return nil
	}
	l, s := newTestLoop(t, WithFloors(floors, open))

	l.run(actionPrevFloor)
	if id := <-opened; id != "c" {
		t.Fatalf("opened %q, want c", id)
	}
	ev, ok := receive(t, s).(floorEvent)
	if !ok || ev.index != 2 {
		t.Fatalf("event = %+v", ev)
	}
	if !l.loading {
		t.Fatalf("not loading before the event is handled")
	}
	l.floorLoaded(ev)
	if l.current != 2 || l.loading {
		t.Fatalf("current = %d loading = %v", l.current, l.loading)
	}
	if l.message != "floor c" {
		t.Errorf("message = %q", l.message)
	}
}

func TestShareWithoutServer(t *testing.T) {
	l, s := newTestLoop(t, WithSandbox(true))
	l.run(actionShare)
	ev, ok := receive(t, s).(messageEvent)
	if !ok || ev.text != errNoServer.Error() {
		t.Fatalf("event = %+v", ev)
	}
	if got := l.status(); got[:7] != "sandbox" {
		t.Errorf("status = %q", got)
	}
}

func TestExportPath(t *testing.T) {
	if got := exportPath("out", "Ground floor/1"); got != filepath.Join("out", "Ground_floor_1.png") {
		t.Errorf("exportPath = %q", got)
	}
	if got := exportPath("", ""); got != "floor.png" {
		t.Errorf("exportPath empty = %q", got)
	}
}

func TestDrawChrome(t *testing.T) {
	th := theme.Default()
	th.StatusBackground.R = 7
	dst := image.NewRGBA(image.Rect(0, 0, 400, 300))
	drawChrome(dst, th, paintState{width: 400, height: 300, hover: -1})
	if got := dst.RGBAAt(399, 299); got != th.StatusBackground {
		t.Errorf("status bar = %v, want %v", got, th.StatusBackground)
	}
	if got := dst.RGBAAt(1, 280-bottomHeight); got != th.ToolbarBackground {
		t.Errorf("toolbar = %v, want %v", got, th.ToolbarBackground)
	}
}
