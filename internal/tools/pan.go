package tools

import "github.com/example/planboard/internal/geom"

// PanTool drags the viewport. It is driven by the middle button from any tool
// and by the left button when the pan tool is active.
type PanTool struct {
	active bool
	last   geom.Point
}

func (t *PanTool) Down(c *Context, ev Pointer) bool {
	t.active = true
	t.last = ev.Screen
	return true
}

func (t *PanTool) Move(c *Context, ev Pointer) bool {
	if !t.active {
		return false
	}
	d := ev.Screen.Sub(t.last)
	t.last = ev.Screen
	c.Viewport.PanBy(d.X, d.Y)
	return true
}

func (t *PanTool) Up(c *Context, ev Pointer) bool {
	if !t.active {
		return false
	}
	t.Move(c, ev)
	t.active = false
	return true
}

func (t *PanTool) Reset(*Context) { t.active = false }

// Active reports whether a pan drag is in progress.
func (t *PanTool) Active() bool { return t.active }
