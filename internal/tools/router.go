package tools

import (
	"time"

	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/ephemeral"
	"github.com/example/planboard/internal/geom"
	"github.com/example/planboard/internal/selection"
	"github.com/example/planboard/internal/viewport"
)

// Preview is the transient state drawn by the active layer.
type Preview struct {
	// Draw is the stroke being captured or the dragged draw.
	Draw *drawing.Draw
	// DraggingID is hidden from the committed layer while dragged.
	DraggingID string
	Laser      *ephemeral.Stroke
	LaserDot   *geom.Point
	Fading     []ephemeral.Stroke
	Text       *TextEdit
}

// Router dispatches pointer and key input to the active tool. Panning always
// takes priority, read-only sessions only reach the laser tools, and every
// move is broadcast as a cursor.
type Router struct {
	ctx *Context

	pan       PanTool
	draw      DrawTool
	text      TextTool
	sel       SelectTool
	icon      IconTool
	eraser    EraserTool
	laserDot  LaserTool
	laserLine LaserTool

	fade     ephemeral.FadeList
	keys     viewport.KeyPanner
	captured Handler
	hover    geom.Point
}

// NewRouter returns a router driving ctx.
func NewRouter(ctx *Context) *Router {
	if ctx.Selection == nil {
		ctx.Selection = &selection.State{}
	}
	if ctx.Settings.Tool == "" {
		ctx.Settings.Tool = ToolSelect
	}
	r := &Router{ctx: ctx}
	r.laserLine.Line = true
	r.laserLine.fade = &r.fade
	return r
}

// Context returns the tool context.
func (r *Router) Context() *Context { return r.ctx }

// Tool returns the active tool.
func (r *Router) Tool() Tool { return r.ctx.Settings.Tool }

func (r *Router) handler(t Tool) Handler {
	switch t {
	case ToolPen, ToolLine, ToolRect:
		return &r.draw
	case ToolText:
		return &r.text
	case ToolIcon:
		return r.icon
	case ToolEraser:
		return r.eraser
	case ToolPan:
		return &r.pan
	case ToolLaserDot:
		return &r.laserDot
	case ToolLaserLine:
		return &r.laserLine
	}
	return r.sel
}

// SetTool switches tools, discarding any gesture in progress.
func (r *Router) SetTool(t Tool) {
	if t == r.ctx.Settings.Tool {
		return
	}
	r.resetAll()
	r.text.Reset(r.ctx)
	if t != ToolSelect {
		r.ctx.Selection.Clear()
	}
	r.ctx.Settings.Tool = t
}

func (r *Router) resetAll() {
	r.pan.Reset(r.ctx)
	r.draw.Reset(r.ctx)
	r.sel.Reset(r.ctx)
	r.laserDot.Reset(r.ctx)
	r.laserLine.Reset(r.ctx)
	r.captured = nil
}

func wantsPan(t Tool, ev Pointer) bool {
	return ev.Button == ButtonMiddle || (t == ToolPan && ev.Button == ButtonLeft)
}

// Down handles a button press. It reports whether a repaint is needed.
func (r *Router) Down(ev Pointer) bool {
	t := r.ctx.Settings.Tool
	if wantsPan(t, ev) {
		r.captured = &r.pan
		return r.pan.Down(r.ctx, ev)
	}
	if ev.Button != ButtonLeft {
		return false
	}
	if r.ctx.ReadOnly && !t.Laser() {
		return false
	}
	h := r.handler(t)
	r.captured = h
	return h.Down(r.ctx, ev)
}

// Move handles pointer motion with or without a button held.
func (r *Router) Move(ev Pointer) bool {
	r.hover = r.ctx.ToContent(ev.Screen)
	if r.pan.Active() {
		return r.pan.Move(r.ctx, ev)
	}
	t := r.ctx.Settings.Tool
	if t.Laser() {
		return r.handler(t).Move(r.ctx, ev)
	}
	changed := false
	if !r.ctx.ReadOnly {
		switch {
		case t == ToolSelect && r.ctx.Selection.Dragging():
			changed = r.sel.Move(r.ctx, ev)
		case t.Drawing():
			changed = r.draw.Move(r.ctx, ev)
		}
	}
	r.ctx.emitCursor(r.hover, false)
	return changed
}

// Up handles a button release.
func (r *Router) Up(ev Pointer) bool {
	h := r.captured
	r.captured = nil
	if h == nil {
		return false
	}
	changed := h.Up(r.ctx, ev)
	if h == Handler(&r.draw) && r.draw.Created() {
		if t := r.ctx.Settings.Tool; t == ToolLine || t == ToolRect {
			r.SetTool(ToolSelect)
		}
	}
	return changed
}

// Leave resets every in-progress gesture when the pointer leaves the surface.
func (r *Router) Leave() {
	r.resetAll()
}

// Key routes a key press to the text editor. It reports whether the key was
// consumed.
func (r *Router) Key(k KeyInput) bool {
	if r.ctx.ReadOnly {
		return false
	}
	return r.text.Key(r.ctx, k)
}

// Editing reports whether the text editor is open.
func (r *Router) Editing() bool { return r.text.Editing() }

// Wheel zooms at the pointer.
func (r *Router) Wheel(ev Pointer, deltaY float64) bool {
	p := ev.Screen.Sub(r.ctx.Origin)
	before := r.ctx.Viewport.Scale
	r.ctx.Viewport.Wheel(deltaY, p.X, p.Y)
	return r.ctx.Viewport.Scale != before
}

// Keys returns the continuous pan state.
func (r *Router) Keys() *viewport.KeyPanner { return &r.keys }

// Frame advances per-frame animations: key panning and the local laser fade.
// It reports whether another frame is needed.
func (r *Router) Frame(now time.Time) bool {
	more := r.keys.Step(r.ctx.Viewport)
	if r.fade.Len() > 0 {
		if r.fade.GC(now) {
			more = true
		}
	}
	return more
}

// Preview returns the state for the active layer at now.
func (r *Router) Preview(now time.Time) Preview {
	var p Preview
	switch t := r.ctx.Settings.Tool; {
	case t.Drawing():
		if d, ok := r.draw.Preview(r.ctx); ok {
			p.Draw = &d
		}
	case t == ToolSelect:
		if d, ok := r.sel.Preview(r.ctx); ok {
			p.Draw = &d
			p.DraggingID = d.ID
		}
	case t == ToolText:
		if e, ok := r.text.Edit(r.ctx); ok {
			p.Text = &e
		}
	}
	if s, ok := r.laserLine.Stroke(); ok {
		p.Laser = &s
	}
	if r.ctx.Settings.Tool == ToolLaserDot {
		if d, ok := r.laserDot.Dot(); ok {
			p.LaserDot = &d
		}
	}
	p.Fading = r.fade.Live(now)
	return p
}

// Cursor returns the pointer hint for the current state.
func (r *Router) Cursor() string {
	if r.pan.Active() {
		return "grabbing"
	}
	t := r.ctx.Settings.Tool
	if r.ctx.ReadOnly && !t.Laser() {
		return "default"
	}
	switch t {
	case ToolPan:
		return "grab"
	case ToolSelect:
		s := r.ctx.Selection
		switch s.Mode {
		case selection.ModeMove:
			return "grabbing"
		case selection.ModeRotate:
			return selection.HandleRotate.Cursor()
		case selection.ModeResize:
			return s.Handle.Cursor()
		}
		return r.sel.hoverCursor(r.ctx, r.hover)
	case ToolEraser:
		return "pointer"
	case ToolText:
		return "text"
	}
	return "crosshair"
}
