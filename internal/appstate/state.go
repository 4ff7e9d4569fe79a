package appstate

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/planboard/internal/board"
	"github.com/example/planboard/internal/clipboard"
	"github.com/example/planboard/internal/export"
	"github.com/example/planboard/internal/geom"
	"github.com/example/planboard/internal/notify"
	"github.com/example/planboard/internal/render"
	"github.com/example/planboard/internal/store"
	"github.com/example/planboard/internal/theme"
	"github.com/example/planboard/internal/tools"
	"github.com/example/planboard/internal/viewport"
)

const (
	frameInterval   = 16 * time.Millisecond
	messageDuration = 2 * time.Second
)

var errNoServer = errors.New("sharing needs a server")

// FloorOpener loads f into the board and reconnects any transport.
type FloorOpener func(ctx context.Context, f store.Floor) error

// AppState holds the viewer configuration.
type AppState struct {
	Board     *board.Board
	Floors    []store.Floor
	Theme     *theme.Theme
	ExportDir string
	Sandbox   bool

	open     FloorOpener
	shareURL func(store.Floor) (string, error)
	notifier *notify.Notifier

	updateCh  chan struct{}
	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithBoard sets the board shown in the window.
func WithBoard(b *board.Board) Option { return func(a *AppState) { a.Board = b } }

// WithFloors sets the floors offered as tabs and how to switch between them.
func WithFloors(floors []store.Floor, open FloorOpener) Option {
	return func(a *AppState) { a.Floors, a.open = floors, open }
}

// WithTheme sets the viewer palette.
func WithTheme(t *theme.Theme) Option { return func(a *AppState) { a.Theme = t } }

// WithExportDir sets where Ctrl+S writes floor snapshots.
func WithExportDir(dir string) Option { return func(a *AppState) { a.ExportDir = dir } }

// WithSandbox marks the session as local only.
func WithSandbox(sandbox bool) Option { return func(a *AppState) { a.Sandbox = sandbox } }

// WithShareURL sets the function building the link copied by Ctrl+L.
func WithShareURL(fn func(store.Floor) (string, error)) Option {
	return func(a *AppState) { a.shareURL = fn }
}

// WithNotifier sets the desktop notifier for copy and export.
func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.notifier = n } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState with the provided options.
func New(opts ...Option) *AppState {
	a := &AppState{updateCh: make(chan struct{}, 1)}
	for _, o := range opts {
		o(a)
	}
	if a.Theme == nil {
		a.Theme = theme.Default()
	}
	return a
}

// NotifyChanged requests a repaint. It is safe to call from any goroutine
// and on a nil AppState.
func (a *AppState) NotifyChanged() {
	if a == nil || a.updateCh == nil {
		return
	}
	select {
	case a.updateCh <- struct{}{}:
	default:
	}
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

type frameEvent struct{}

type floorEvent struct {
	index int
	err   error
}

type messageEvent struct{ text string }

// Main runs the window until it is closed.
func (a *AppState) Main(s screen.Screen) {
	if a.Board == nil {
		log.Printf("viewer: no board")
		return
	}
	width, height := 1280, 800
	if f := a.Board.Floor(); f.Width > 0 && f.Height > 0 {
		width = min(f.Width+toolbarWidth, 1600)
		height = min(f.Height+tabHeight+bottomHeight, 1000)
	}
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "Planboard"})
	if err != nil {
		log.Printf("new window: %v", err)
		return
	}
	defer w.Release()
	defer a.notifyClose()

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-a.updateCh:
				w.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()

	r := render.New(render.WithTheme(a.Theme), render.WithRepaint(a.NotifyChanged))
	l := newLoop(a, r, w.Send)
	l.resize(width, height)

	var animating atomic.Bool
	go func() {
		t := time.NewTicker(frameInterval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				if animating.Load() {
					w.Send(frameEvent{})
				}
			case <-done:
				return
			}
		}
	}()

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	defer close(paintCh)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, s, w, r, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()
	stopPaint := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
	}

	for {
		repaint := false
		kick := false
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				stopPaint()
				return
			}
			if e.Crosses(lifecycle.StageFocused) == lifecycle.CrossOff {
				l.releaseKeys()
			}
		case size.Event:
			l.resize(e.WidthPx, e.HeightPx)
			repaint = true
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := l.paintState(time.Now())
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case frameEvent:
			animating.Store(l.frame(time.Now()))
			repaint = true
		case floorEvent:
			l.floorLoaded(e)
			repaint, kick = true, true
		case messageEvent:
			l.flash(e.text)
			repaint, kick = true, true
		case mouse.Event:
			repaint = l.handleMouse(e)
			kick = true
		case key.Event:
			repaint = l.handleKey(e)
			kick = true
		}
		if l.quit {
			stopPaint()
			return
		}
		// Input may start an animation; the next frame decides whether it
		// keeps running.
		if kick {
			animating.Store(true)
		}
		if repaint {
			w.Send(paint.Event{})
		}
	}
}

// loop is the event-loop state of one window. Every method runs on the
// event loop goroutine; background work reports back through send.
type loop struct {
	a        *AppState
	board    *board.Board
	renderer *render.Renderer
	send     func(any)

	width, height int
	current       int
	loading       bool

	widgets []widget
	hover   int
	pressed bool
	outside bool

	message      string
	messageUntil time.Time
	quit         bool
}

func newLoop(a *AppState, r *render.Renderer, send func(any)) *loop {
	l := &loop{a: a, board: a.Board, renderer: r, send: send, hover: -1}
	id := a.Board.Floor().ID
	for i, f := range a.Floors {
		if f.ID == id {
			l.current = i
		}
	}
	return l
}

func (l *loop) resize(w, h int) {
	l.width, l.height = w, h
	c := canvasRect(w, h)
	l.board.Resize(geom.Pt(float64(c.Min.X), float64(c.Min.Y)), float64(c.Dx()), float64(c.Dy()))
	l.relayout()
}

func (l *loop) relayout() {
	vp := l.board.Viewport()
	l.widgets = layoutChrome(chromeInput{
		width:    l.width,
		height:   l.height,
		floors:   l.a.Floors,
		current:  l.current,
		settings: l.board.Settings(),
		readOnly: l.board.ReadOnly(),
		editing:  l.board.Editing(),
		zoom:     vp.Scale,
	})
	if l.hover >= len(l.widgets) {
		l.hover = -1
	}
}

// frame advances animations and reports whether more frames are needed.
func (l *loop) frame(now time.Time) bool {
	more := l.board.Frame(now)
	return more || l.board.Editing() || now.Before(l.messageUntil)
}

func (l *loop) status() string {
	var parts []string
	switch {
	case l.a.Sandbox:
		parts = append(parts, "sandbox: changes stay on this machine")
	case l.board.ReadOnly():
		parts = append(parts, "read-only")
	}
	if l.loading {
		parts = append(parts, "loading floor")
	}
	parts = append(parts, l.board.Cursor())
	return strings.Join(parts, "  |  ")
}

func (l *loop) paintState(now time.Time) paintState {
	l.relayout()
	return paintState{
		width:        l.width,
		height:       l.height,
		scene:        l.board.Scene(now),
		widgets:      l.widgets,
		hover:        l.hover,
		status:       l.status(),
		message:      l.message,
		messageUntil: l.messageUntil,
	}
}

func (l *loop) flash(msg string) {
	log.Print(msg)
	l.message = msg
	l.messageUntil = time.Now().Add(messageDuration)
}

func (l *loop) inCanvas(x, y int) bool {
	return image.Pt(x, y).In(canvasRect(l.width, l.height))
}

func (l *loop) handleMouse(e mouse.Event) bool {
	if e.Direction == mouse.DirPress && l.message != "" && time.Now().Before(l.messageUntil) {
		l.messageUntil = time.Time{}
		return true
	}
	ev := pointerFor(e)
	x, y := int(e.X), int(e.Y)

	if e.Direction == mouse.DirStep {
		if l.inCanvas(x, y) {
			return l.board.Wheel(ev, wheelDelta(e))
		}
		return false
	}

	if !l.pressed && !l.inCanvas(x, y) {
		repaint := false
		if !l.outside {
			l.outside = true
			l.board.Leave()
			repaint = true
		}
		i := hitWidget(l.widgets, image.Pt(x, y))
		if i != l.hover {
			l.hover = i
			repaint = true
		}
		if i >= 0 && e.Direction == mouse.DirPress && e.Button == mouse.ButtonLeft {
			l.run(l.widgets[i].action)
			repaint = true
		}
		return repaint
	}
	l.outside = false
	l.hover = -1

	switch e.Direction {
	case mouse.DirPress:
		l.pressed = true
		return l.board.Down(ev)
	case mouse.DirRelease:
		l.pressed = false
		return l.board.Up(ev)
	}
	return l.board.Move(ev)
}

func (l *loop) handleKey(e key.Event) bool {
	if e.Direction == key.DirRelease {
		if k, ok := panKeyFor(e); ok {
			l.board.PanKey(k, false)
		}
		return false
	}
	if e.Direction != key.DirPress {
		return false
	}
	if l.board.Editing() {
		if e.Modifiers&key.ModControl != 0 && (e.Rune == 'v' || e.Rune == 'V') {
			l.run(actionPaste)
			return true
		}
		if k, ok := editKey(e); ok {
			return l.board.Key(k)
		}
		return false
	}
	if action, ok := shortcutFor(e); ok {
		l.run(action)
		return true
	}
	if k, ok := panKeyFor(e); ok {
		return l.board.PanKey(k, true)
	}
	if t, ok := toolForKey(e); ok {
		l.board.SetTool(t)
		return true
	}
	return false
}

func (l *loop) releaseKeys() {
	for _, k := range []viewport.PanKey{viewport.PanUp, viewport.PanDown, viewport.PanLeft, viewport.PanRight} {
		l.board.PanKey(k, false)
	}
	l.board.Leave()
}

// run performs a named toolbar, status bar or keyboard action.
func (l *loop) run(action string) {
	name, arg, _ := strings.Cut(action, ":")
	switch name {
	case "tool":
		l.board.SetTool(tools.Tool(arg))
	case "color":
		l.board.SetColor(arg)
	case "width":
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			l.board.SetWidth(v)
		}
	case "font":
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			l.board.SetFontSize(v)
		}
	case "icon":
		l.board.SetIcon(&tools.IconRef{URL: render.BuiltinScheme + arg})
	case "floor":
		if i, err := strconv.Atoi(arg); err == nil {
			l.switchFloor(i)
		}
	case actionUndo:
		l.board.Undo()
	case actionRedo:
		l.board.Redo()
	case actionDelete:
		l.board.DeleteSelected()
	case actionNextFloor:
		l.switchFloor(l.current + 1)
	case actionPrevFloor:
		l.switchFloor(l.current - 1)
	case actionZoomIn:
		l.board.Zoom(1)
	case actionZoomOut:
		l.board.Zoom(-1)
	case actionZoomReset:
		l.board.Zoom(0)
	case actionTextDone:
		l.board.Key(tools.KeyInput{Key: tools.KeyEnter})
	case actionTextCancel:
		l.board.Key(tools.KeyInput{Key: tools.KeyEscape})
	case actionPaste:
		text, err := clipboard.ReadText()
		if err != nil {
			log.Printf("paste: %v", err)
			return
		}
		for _, r := range text {
			if r == '\n' || r == '\r' {
				continue
			}
			l.board.Key(tools.KeyInput{Rune: r})
		}
	case actionCopy:
		go l.copyImage(l.exportBoard())
	case actionShare:
		go l.share(l.board.Floor())
	case actionExport:
		go l.export(l.exportBoard())
	case actionQuit:
		l.quit = true
	default:
		log.Printf("unknown action %q", action)
	}
}

// switchFloor loads floor i in the background. The board keeps showing the
// old floor until the load completes.
func (l *loop) switchFloor(i int) {
	if len(l.a.Floors) == 0 || l.loading || l.a.open == nil {
		return
	}
	i = (i%len(l.a.Floors) + len(l.a.Floors)) % len(l.a.Floors)
	if i == l.current {
		return
	}
	l.loading = true
	f := l.a.Floors[i]
	go func() {
		err := l.a.open(context.Background(), f)
		l.send(floorEvent{index: i, err: err})
	}()
}

func (l *loop) floorLoaded(e floorEvent) {
	l.loading = false
	if e.err != nil {
		l.flash(fmt.Sprintf("open floor: %v", e.err))
		return
	}
	l.current = e.index
	l.flash("floor " + floorName(l.a.Floors[e.index]))
}

func floorName(f store.Floor) string {
	if f.Name != "" {
		return f.Name
	}
	return f.ID
}

func (l *loop) exportBoard() export.Board {
	f := l.board.Floor()
	return export.Board{
		Title:  floorName(f),
		Floor:  l.board.FloorImage(),
		Width:  float64(f.Width),
		Height: float64(f.Height),
		Draws:  l.board.Draws(),
		Filter: l.board.Filter(),
	}
}

func (l *loop) copyImage(b export.Board) {
	img := export.Snapshot(l.renderer, b)
	if err := clipboard.WriteImage(img); err != nil {
		log.Printf("copy: %v", err)
		l.send(messageEvent{text: "copy failed"})
		return
	}
	if l.a.notifier != nil {
		l.a.notifier.Copy(b.Title, img)
	}
	l.send(messageEvent{text: "floor copied to clipboard"})
}

func (l *loop) share(f store.Floor) {
	if l.a.Sandbox || l.a.shareURL == nil {
		l.send(messageEvent{text: errNoServer.Error()})
		return
	}
	link, err := l.a.shareURL(f)
	if err == nil {
		err = clipboard.WriteText(link)
	}
	if err != nil {
		log.Printf("share: %v", err)
		l.send(messageEvent{text: "share failed"})
		return
	}
	l.send(messageEvent{text: "link copied: " + link})
}

func (l *loop) export(b export.Board) {
	path := exportPath(l.a.ExportDir, b.Title)
	if err := export.Save(path, l.renderer, b); err != nil {
		log.Printf("export: %v", err)
		l.send(messageEvent{text: "export failed"})
		return
	}
	if l.a.notifier != nil {
		l.a.notifier.Export(path)
	}
	l.send(messageEvent{text: "saved " + path})
}

// exportPath names the snapshot of a floor after its title.
func exportPath(dir, title string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, title)
	if name == "" {
		name = "floor"
	}
	return filepath.Join(dir, name+".png")
}
