package tools

import (
	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/geom"
	"github.com/example/planboard/internal/hittest"
	"github.com/example/planboard/internal/selection"
)

// SelectTool selects draws and drags them through move, resize and rotate.
type SelectTool struct{}

func (SelectTool) Down(c *Context, ev Pointer) bool {
	s := c.Selection
	p := c.ToContent(ev.Screen)
	if s.SelectedID != "" {
		if d, ok := c.find(s.SelectedID); ok && !d.Deleted {
			switch h := selection.HandleAt(d, p); h {
			case selection.HandleNone:
			case selection.HandleRotate:
				s.Begin(d, selection.ModeRotate, h, p)
				return true
			default:
				s.Begin(d, selection.ModeResize, h, p)
				return true
			}
		}
	}
	if d, ok := hittest.Topmost(c.draws(), p, hittest.Interactable(c.UserID, c.Filter)); ok {
		s.Begin(d, selection.ModeMove, selection.HandleNone, p)
		return true
	}
	s.Clear()
	return true
}

func (SelectTool) Move(c *Context, ev Pointer) bool {
	if !c.Selection.Dragging() {
		return false
	}
	c.Selection.Update(c.ToContent(ev.Screen))
	return true
}

func (SelectTool) Up(c *Context, ev Pointer) bool {
	if !c.Selection.Dragging() {
		return false
	}
	before, after, commit := c.Selection.End(c.ToContent(ev.Screen))
	if commit && c.Sink != nil {
		c.Sink.UpdateDraw(before, after)
	}
	return true
}

// Reset abandons any drag but keeps the selection.
func (SelectTool) Reset(c *Context) {
	if c.Selection != nil {
		c.Selection.Cancel()
	}
}

// Preview returns the dragged draw with the transform applied.
func (SelectTool) Preview(c *Context) (drawing.Draw, bool) {
	return c.Selection.Preview()
}

// hoverCursor returns the cursor for the pointer resting at p.
func (SelectTool) hoverCursor(c *Context, p geom.Point) string {
	if id := c.Selection.SelectedID; id != "" {
		if d, ok := c.find(id); ok {
			if h := selection.HandleAt(d, p); h != selection.HandleNone {
				return h.Cursor()
			}
		}
	}
	if _, ok := hittest.Topmost(c.draws(), p, hittest.Interactable(c.UserID, c.Filter)); ok {
		return "move"
	}
	return "default"
}
