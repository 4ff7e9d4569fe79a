// Package tools contains the pointer state machines for each annotation tool
// and the router that dispatches input events between them.
package tools

import (
	"time"

	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/ephemeral"
	"github.com/example/planboard/internal/geom"
	"github.com/example/planboard/internal/selection"
	"github.com/example/planboard/internal/viewport"
)

// Tool names an active tool.
type Tool string

const (
	ToolSelect    Tool = "select"
	ToolPen       Tool = "pen"
	ToolLine      Tool = "line"
	ToolRect      Tool = "rect"
	ToolText      Tool = "text"
	ToolIcon      Tool = "icon"
	ToolEraser    Tool = "eraser"
	ToolPan       Tool = "pan"
	ToolLaserDot  Tool = "laser-dot"
	ToolLaserLine Tool = "laser-line"
)

// All lists every tool in toolbar order.
var All = []Tool{ToolSelect, ToolPen, ToolLine, ToolRect, ToolText, ToolIcon, ToolEraser, ToolPan, ToolLaserDot, ToolLaserLine}

// Laser reports whether t is one of the laser tools.
func (t Tool) Laser() bool { return t == ToolLaserDot || t == ToolLaserLine }

// Drawing reports whether t creates draws by dragging.
func (t Tool) Drawing() bool { return t == ToolPen || t == ToolLine || t == ToolRect }

// Button is the pointer button of an event.
type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

// Pointer is a pointer event in screen coordinates.
type Pointer struct {
	Screen geom.Point
	Button Button
}

// IconRef is the catalog entry placed by the icon tool.
type IconRef struct {
	URL        string
	Glyph      string
	GlyphColor string
	Background string
}

// Settings are the user's current drawing choices.
type Settings struct {
	Tool     Tool
	Color    string
	Width    float64
	FontSize float64
	Icon     *IconRef
}

// DefaultSettings returns the stock pen configuration.
func DefaultSettings() Settings {
	return Settings{
		Tool:     ToolSelect,
		Color:    drawing.DefaultColor,
		Width:    drawing.DefaultLineWidth,
		FontSize: drawing.DefaultFontSize,
	}
}

// Sink receives the effects produced by tools.
type Sink interface {
	CreateDraw(d drawing.Draw)
	UpdateDraw(before, after drawing.Draw)
	DeleteDraw(id string)
	EmitCursor(c ephemeral.Cursor)
	EmitLaser(s ephemeral.Stroke, final bool)
}

// Context is everything a tool may read or act on. The host owns it and
// passes it to every call.
type Context struct {
	Viewport  *viewport.Viewport
	Origin    geom.Point
	Selection *selection.State
	Settings  Settings

	UserID  string
	FloorID string
	PhaseID string
	SlotID  string
	Filter  drawing.Filter

	ReadOnly bool

	Draws func() []drawing.Draw
	Sink  Sink
	Now   ephemeral.Clock
	NewID func() string
}

// ToContent maps a screen point through the current viewport.
func (c *Context) ToContent(p geom.Point) geom.Point {
	return geom.ToContent(p, c.Origin, c.Viewport.Transform())
}

func (c *Context) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *Context) draws() []drawing.Draw {
	if c.Draws == nil {
		return nil
	}
	return c.Draws()
}

func (c *Context) find(id string) (drawing.Draw, bool) {
	for _, d := range c.draws() {
		if d.ID == id {
			return d, true
		}
	}
	return drawing.Draw{}, false
}

// newDraw fills in the ownership and tagging fields for a new draw.
func (c *Context) newDraw(origin geom.Point, s drawing.Shape) drawing.Draw {
	return drawing.Draw{
		UserID:  c.UserID,
		FloorID: c.FloorID,
		PhaseID: c.PhaseID,
		SlotID:  c.SlotID,
		Origin:  origin,
		Shape:   s,
	}
}

func (c *Context) color() string {
	if c.Settings.Color == "" {
		return drawing.DefaultColor
	}
	return c.Settings.Color
}

func (c *Context) width() float64 {
	if c.Settings.Width <= 0 {
		return drawing.DefaultLineWidth
	}
	return c.Settings.Width
}

func (c *Context) emitCursor(p geom.Point, laser bool) {
	if c.Sink == nil {
		return
	}
	c.Sink.EmitCursor(ephemeral.Cursor{UserID: c.UserID, X: p.X, Y: p.Y, Laser: laser, Color: c.color()})
}

// Handler is the state machine of one tool.
type Handler interface {
	Down(c *Context, ev Pointer) bool
	Move(c *Context, ev Pointer) bool
	Up(c *Context, ev Pointer) bool
	Reset(c *Context)
}
