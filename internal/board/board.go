// Package board holds one user's session on a floor: the committed draw list,
// the tool router, undo history and peer state. It executes tool effects
// against the store and transport and applies mutations received from peers.
package board

import (
	"context"
	"image"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"

	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/ephemeral"
	"github.com/example/planboard/internal/geom"
	"github.com/example/planboard/internal/history"
	"github.com/example/planboard/internal/hittest"
	"github.com/example/planboard/internal/render"
	"github.com/example/planboard/internal/selection"
	"github.com/example/planboard/internal/store"
	"github.com/example/planboard/internal/tools"
	"github.com/example/planboard/internal/viewport"
)

// TempPrefix marks ids assigned locally before the store confirms a draw.
const TempPrefix = "tmp-"

// Transport broadcasts local activity to the other participants.
type Transport interface {
	EmitCursor(c ephemeral.Cursor)
	EmitLaser(s ephemeral.Stroke, final bool)
	EmitCreated(d drawing.Draw)
	EmitUpdated(id string, p drawing.Patch)
	EmitDeleted(ids []string)
}

// Board is safe for concurrent use; every exported method takes the board
// lock. Callbacks are invoked without the lock held.
type Board struct {
	mu sync.Mutex

	ctx       context.Context
	userID    string
	store     store.Store
	transport Transport
	clock     ephemeral.Clock
	onChange  func()
	onJoin    func(userID string)

	floor      store.Floor
	floorImage image.Image
	draws      []drawing.Draw
	history    history.Stack
	peers      ephemeral.Peers
	vp         *viewport.Viewport
	sel        selection.State
	tctx       *tools.Context
	router     *tools.Router
	cursorRate ephemeral.Throttle
	// cursorTail is the newest cursor held back by cursorRate. Frame sends
	// it once the interval has passed so peers see where the pointer rests.
	cursorTail *ephemeral.Cursor

	// ids maps temporary ids to the ids the store assigned.
	ids map[string]string

	qmu     sync.Mutex
	queue   []job
	signal  chan struct{}
	pending sync.WaitGroup
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// Option configures a Board.
type Option func(*Board)

// WithUserID sets the local participant id. A random one is used otherwise.
func WithUserID(id string) Option { return func(b *Board) { b.userID = id } }

// WithStore sets the persistence collaborator. An in-memory store is used
// otherwise.
func WithStore(s store.Store) Option { return func(b *Board) { b.store = s } }

// WithTransport sets the broadcast collaborator.
func WithTransport(t Transport) Option { return func(b *Board) { b.transport = t } }

// WithReadOnly limits the session to panning, zooming and the laser.
func WithReadOnly(ro bool) Option { return func(b *Board) { b.tctx.ReadOnly = ro } }

// WithLimits sets the zoom limits.
func WithLimits(l viewport.Limits) Option {
	return func(b *Board) { b.vp = viewport.New(l); b.tctx.Viewport = b.vp }
}

// WithSettings sets the initial tool, color and sizes.
func WithSettings(s tools.Settings) Option { return func(b *Board) { b.tctx.Settings = s } }

// WithClock replaces time.Now.
func WithClock(c ephemeral.Clock) Option { return func(b *Board) { b.clock = c } }

// WithOnChange registers a function called whenever the board changes
// outside of a direct input call, such as a store confirmation or a peer
// message.
func WithOnChange(f func()) Option { return func(b *Board) { b.onChange = f } }

// WithOnPeerJoin registers a function called when a participant joins.
func WithOnPeerJoin(f func(userID string)) Option { return func(b *Board) { b.onJoin = f } }

// WithContext sets the context used for store calls.
func WithContext(ctx context.Context) Option { return func(b *Board) { b.ctx = ctx } }

// New returns a board and starts its persistence worker. Call Close when done.
func New(opts ...Option) *Board {
	b := &Board{
		ctx:     context.Background(),
		ids:     map[string]string{},
		signal:  make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		vp:      viewport.New(viewport.DefaultLimits()),
	}
	b.cursorRate.Interval = ephemeral.BroadcastInterval
	b.tctx = &tools.Context{
		Viewport:  b.vp,
		Selection: &b.sel,
		Settings:  tools.DefaultSettings(),
		Draws:     b.live,
		Sink:      sink{b},
		NewID:     uuid.NewString,
	}
	for _, o := range opts {
		o(b)
	}
	if b.userID == "" {
		b.userID = uuid.NewString()
	}
	if b.store == nil {
		b.store = store.NewMemory()
	}
	b.tctx.UserID = b.userID
	b.tctx.Now = b.now
	b.router = tools.NewRouter(b.tctx)
	go b.worker()
	return b
}

// Close waits for queued persistence and stops the worker.
func (b *Board) Close() {
	b.Flush()
	b.once.Do(func() { close(b.done) })
	<-b.stopped
}

func (b *Board) now() time.Time {
	if b.clock != nil {
		return b.clock()
	}
	return time.Now()
}

func (b *Board) changed() {
	if b.onChange != nil {
		b.onChange()
	}
}

func isTemp(id string) bool { return strings.HasPrefix(id, TempPrefix) }

// resolve maps a temporary id to its confirmed id when known.
func (b *Board) resolve(id string) string {
	if real, ok := b.ids[id]; ok {
		return real
	}
	return id
}

func (b *Board) index(id string) int {
	id = b.resolve(id)
	for i := range b.draws {
		if b.draws[i].ID == id {
			return i
		}
	}
	return -1
}

// live returns the draws that are not deleted, in z-order.
func (b *Board) live() []drawing.Draw {
	out := make([]drawing.Draw, 0, len(b.draws))
	for _, d := range b.draws {
		if !d.Deleted {
			out = append(out, d)
		}
	}
	return out
}

// UserID returns the local participant id.
func (b *Board) UserID() string { return b.userID }

// Floor returns the loaded floor.
func (b *Board) Floor() store.Floor {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.floor
}

// FloorImage returns the decoded floor image, or nil.
func (b *Board) FloorImage() image.Image {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.floorImage
}

// Filter returns the active visibility filter.
func (b *Board) Filter() drawing.Filter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tctx.Filter
}

// Draws returns copies of the live draws in z-order.
func (b *Board) Draws() []drawing.Draw {
	b.mu.Lock()
	defer b.mu.Unlock()
	live := b.live()
	for i := range live {
		live[i] = live[i].Clone()
	}
	return live
}

// Draw returns the live draw with id.
func (b *Board) Draw(id string) (drawing.Draw, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.index(id); i >= 0 && !b.draws[i].Deleted {
		return b.draws[i].Clone(), true
	}
	return drawing.Draw{}, false
}

// LoadFloor switches to floor f and loads its draws from the store. History,
// selection and peer state are discarded and the viewport is reset.
func (b *Board) LoadFloor(ctx context.Context, f store.Floor) error {
	draws, err := b.store.ListDraws(ctx, f.ID)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.floor = f
	b.floorImage = nil
	b.draws = draws
	b.history.Clear()
	b.peers.Reset()
	b.cursorTail = nil
	b.sel.Clear()
	b.router.Leave()
	b.router.Keys().Clear()
	b.tctx.FloorID = f.ID
	b.vp.SetDimensions(float64(f.Width), float64(f.Height), b.vp.ContainerW, b.vp.ContainerH)
	b.vp.Reset()
	b.vp.Center()
	b.mu.Unlock()
	b.changed()
	return nil
}

// SetFloorImage sets the decoded floor image. Its size becomes the content
// size when the floor carries none.
func (b *Board) SetFloorImage(img image.Image) {
	b.mu.Lock()
	b.floorImage = img
	if img != nil && (b.floor.Width == 0 || b.floor.Height == 0) {
		sz := img.Bounds().Size()
		b.floor.Width, b.floor.Height = sz.X, sz.Y
		b.vp.SetDimensions(float64(sz.X), float64(sz.Y), b.vp.ContainerW, b.vp.ContainerH)
		b.vp.Reset()
		b.vp.Center()
	}
	b.mu.Unlock()
	b.changed()
}

// Resize sets the canvas origin and size in window pixels.
func (b *Board) Resize(origin geom.Point, w, h float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	first := b.vp.ContainerW == 0 || b.vp.ContainerH == 0
	b.tctx.Origin = origin
	b.vp.SetContainer(w, h)
	if first {
		b.vp.Reset()
		b.vp.Center()
	}
}

// Viewport returns a copy of the current viewport.
func (b *Board) Viewport() viewport.Viewport {
	b.mu.Lock()
	defer b.mu.Unlock()
	return *b.vp
}

// Settings returns the current drawing settings.
func (b *Board) Settings() tools.Settings {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tctx.Settings
}

// ReadOnly reports whether the session is read-only.
func (b *Board) ReadOnly() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tctx.ReadOnly
}

// SetTool switches the active tool.
func (b *Board) SetTool(t tools.Tool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.router.SetTool(t)
}

// SetColor sets the stroke color for new draws.
func (b *Board) SetColor(c string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tctx.Settings.Color = c
}

// SetWidth sets the stroke width for new draws.
func (b *Board) SetWidth(w float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tctx.Settings.Width = w
}

// SetFontSize sets the font size for new text.
func (b *Board) SetFontSize(s float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tctx.Settings.FontSize = s
}

// SetIcon selects the icon placed by the icon tool.
func (b *Board) SetIcon(ref *tools.IconRef) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tctx.Settings.Icon = ref
}

// SetPhase sets the active phase. New draws are tagged with it and draws of
// other phases are hidden.
func (b *Board) SetPhase(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tctx.PhaseID = id
	b.tctx.Filter.ActivePhase = id
	b.dropHiddenSelection()
}

// SetSlot sets the operator slot new draws are tagged with.
func (b *Board) SetSlot(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tctx.SlotID = id
}

// SetVisibleSlots restricts rendering to draws of the given slots. Nil shows
// every slot.
func (b *Board) SetVisibleSlots(slots map[string]bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tctx.Filter.VisibleSlots = slots
	b.dropHiddenSelection()
}

// SetHideLandscape hides draws that carry no slot.
func (b *Board) SetHideLandscape(hide bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tctx.Filter.HideLandscape = hide
	b.dropHiddenSelection()
}

func (b *Board) dropHiddenSelection() {
	if b.sel.SelectedID == "" {
		return
	}
	if i := b.index(b.sel.SelectedID); i < 0 || !b.tctx.Filter.Allows(b.draws[i]) {
		b.sel.Clear()
	}
}

// Selected returns the selected draw id.
func (b *Board) Selected() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sel.SelectedID
}

// Down forwards a pointer press. It reports whether a repaint is needed.
func (b *Board) Down(ev tools.Pointer) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.router.Down(ev)
}

// Move forwards pointer motion.
func (b *Board) Move(ev tools.Pointer) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.router.Move(ev)
}

// Up forwards a pointer release.
func (b *Board) Up(ev tools.Pointer) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.router.Up(ev)
}

// Leave abandons gestures when the pointer leaves the canvas.
func (b *Board) Leave() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.router.Leave()
}

// Wheel zooms at the pointer.
func (b *Board) Wheel(ev tools.Pointer, deltaY float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.router.Wheel(ev, deltaY)
}

// Key forwards a key to the text editor. It reports whether it was consumed.
func (b *Board) Key(k tools.KeyInput) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.router.Key(k)
}

// Editing reports whether the text editor is open.
func (b *Board) Editing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.router.Editing()
}

// PanKey starts or stops continuous panning for a held key. It reports
// whether the frame loop needs to start.
func (b *Board) PanKey(k viewport.PanKey, pressed bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if pressed {
		return b.router.Keys().Press(k)
	}
	b.router.Keys().Release(k)
	return false
}

// Zoom steps the zoom about the canvas center. A positive dir zooms in, a
// negative one out and zero resets.
func (b *Board) Zoom(dir int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if dir == 0 {
		b.vp.Reset()
		b.vp.Center()
		return
	}
	b.vp.ZoomCenter(dir)
}

// Cursor returns the pointer hint for the current state.
func (b *Board) Cursor() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.router.Cursor()
}

// Frame advances animations. It reports whether another frame is needed.
func (b *Board) Frame(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	more := b.router.Frame(now)
	if b.peers.Fading().GC(now) {
		more = true
	}
	if b.cursorTail != nil {
		if b.cursorRate.Allow(now) {
			b.transport.EmitCursor(*b.cursorTail)
			b.cursorTail = nil
		} else {
			more = true
		}
	}
	return more
}

// DeleteSelected erases the selected draw when it belongs to the user.
func (b *Board) DeleteSelected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tctx.ReadOnly || b.sel.SelectedID == "" {
		return false
	}
	i := b.index(b.sel.SelectedID)
	if i < 0 || !hittest.Interactable(b.userID, b.tctx.Filter)(b.draws[i]) {
		return false
	}
	id := b.draws[i].ID
	b.sel.Clear()
	sink{b}.DeleteDraw(id)
	return true
}

// Undo reverts the newest local action.
func (b *Board) Undo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tctx.ReadOnly {
		return false
	}
	e, ok := b.history.Undo()
	if !ok {
		return false
	}
	switch e.Kind {
	case history.KindCreate:
		b.tombstone(e.DrawID)
		b.enqueue(job{kind: jobDelete, floorID: e.FloorID, ids: []string{e.DrawID}})
	case history.KindUpdate:
		b.applyLocal(e.DrawID, e.FloorID, e.Inverse)
	}
	return true
}

// Redo reapplies the newest undone action.
func (b *Board) Redo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tctx.ReadOnly {
		return false
	}
	e, ok := b.history.Redo()
	if !ok {
		return false
	}
	switch e.Kind {
	case history.KindCreate:
		d := e.Created.Clone()
		d.ID = b.resolve(d.ID)
		d.Deleted = false
		if e.FloorID == b.floor.ID {
			if i := b.index(d.ID); i >= 0 {
				b.draws[i] = d
			} else {
				b.draws = append(b.draws, d)
			}
		}
		b.enqueue(job{kind: jobCreate, floorID: e.FloorID, draw: d})
	case history.KindUpdate:
		b.applyLocal(e.DrawID, e.FloorID, e.Forward)
	}
	return true
}

// CanUndo reports whether Undo has anything to do.
func (b *Board) CanUndo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.history.CanUndo()
}

// CanRedo reports whether Redo has anything to do.
func (b *Board) CanRedo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.history.CanRedo()
}

func (b *Board) tombstone(id string) {
	if i := b.index(id); i >= 0 {
		b.draws[i].Deleted = true
	}
	if b.resolve(b.sel.SelectedID) == b.resolve(id) {
		b.sel.Clear()
	}
}

func (b *Board) applyLocal(id, floorID string, p drawing.Patch) {
	if p.Empty() {
		return
	}
	i := b.index(id)
	if i < 0 || b.draws[i].Deleted {
		log.Printf("undo: draw %s is gone", id)
		return
	}
	b.draws[i] = p.Apply(b.draws[i])
	if b.sel.Dragging() && b.resolve(b.sel.SelectedID) == b.draws[i].ID {
		b.sel.Cancel()
	}
	b.enqueue(job{kind: jobUpdate, floorID: floorID, id: id, patch: p})
}

// Scene snapshots the board for painting.
func (b *Board) Scene(now time.Time) render.Scene {
	b.mu.Lock()
	defer b.mu.Unlock()
	draws := make([]drawing.Draw, len(b.draws))
	for i := range b.draws {
		draws[i] = b.draws[i].Clone()
	}
	return render.Scene{
		Floor:       b.floorImage,
		ContentW:    b.vp.ContentW,
		ContentH:    b.vp.ContentH,
		Origin:      b.tctx.Origin,
		Transform:   b.vp.Transform(),
		Draws:       draws,
		UserID:      b.userID,
		Filter:      b.tctx.Filter,
		SelectedID:  b.resolve(b.sel.SelectedID),
		Preview:     b.router.Preview(now),
		Cursors:     b.peers.Cursors(),
		PeerLasers:  b.peers.Lasers(),
		PeerFading:  b.peers.Fading().Live(now),
		LaserColor:  b.tctx.Settings.Color,
		Now:         now,
		Interacting: b.router.Cursor() == "grabbing" || b.router.Keys().Active(),
	}
}

// sink receives tool effects. The board lock is already held.
type sink struct{ b *Board }

func (s sink) CreateDraw(d drawing.Draw) {
	b := s.b
	d = d.Clone()
	d.ID = TempPrefix + ksuid.New().String()
	d.FloorID = b.floor.ID
	d.UserID = b.userID
	b.draws = append(b.draws, d)
	b.history.PushCreate(d)
	b.enqueue(job{kind: jobCreate, floorID: d.FloorID, draw: d})
}

func (s sink) UpdateDraw(before, after drawing.Draw) {
	b := s.b
	i := b.index(after.ID)
	if i < 0 || b.draws[i].Deleted {
		return
	}
	id := b.draws[i].ID
	before.ID, after.ID = id, id
	p := drawing.PatchFrom(before, after)
	if p.Empty() {
		return
	}
	b.draws[i] = p.Apply(b.draws[i])
	b.history.PushUpdate(before, after)
	b.enqueue(job{kind: jobUpdate, floorID: b.floor.ID, id: id, patch: p})
}

func (s sink) DeleteDraw(id string) {
	b := s.b
	i := b.index(id)
	if i < 0 || b.draws[i].Deleted {
		return
	}
	id = b.draws[i].ID
	b.tombstone(id)
	b.enqueue(job{kind: jobDelete, floorID: b.floor.ID, ids: []string{id}})
}

func (s sink) EmitCursor(c ephemeral.Cursor) {
	b := s.b
	if b.transport == nil {
		return
	}
	if !b.cursorRate.Allow(b.now()) {
		b.cursorTail = &c
		return
	}
	b.cursorTail = nil
	b.transport.EmitCursor(c)
}

func (s sink) EmitLaser(st ephemeral.Stroke, final bool) {
	if s.b.transport == nil {
		return
	}
	s.b.transport.EmitLaser(st, final)
}
