package tools

import (
	"github.com/example/planboard/internal/ephemeral"
	"github.com/example/planboard/internal/geom"
)

// LaserTool handles both laser modes. The dot mode only broadcasts the
// cursor; the line mode also captures a stroke that fades after release.
type LaserTool struct {
	Line bool

	dot      *geom.Point
	active   bool
	stroke   ephemeral.Stroke
	throttle ephemeral.Throttle
	fade     *ephemeral.FadeList
}

func (t *LaserTool) Down(c *Context, ev Pointer) bool {
	if !t.Line {
		return false
	}
	p := c.ToContent(ev.Screen)
	t.active = true
	t.stroke = ephemeral.Stroke{UserID: c.UserID, Color: c.color(), Points: []geom.Point{p}}
	if c.NewID != nil {
		t.stroke.ID = c.NewID()
	}
	t.throttle.Reset()
	t.dot = &p
	return true
}

func (t *LaserTool) Move(c *Context, ev Pointer) bool {
	p := c.ToContent(ev.Screen)
	t.dot = &p
	c.emitCursor(p, !t.Line)
	if !t.Line || !t.active {
		return true
	}
	t.stroke.Points = append(t.stroke.Points, p)
	if t.throttle.Allow(c.now()) && c.Sink != nil {
		c.Sink.EmitLaser(t.snapshot(), false)
	}
	return true
}

func (t *LaserTool) Up(c *Context, ev Pointer) bool {
	if !t.Line || !t.active {
		return false
	}
	t.active = false
	t.stroke.Points = append(t.stroke.Points, c.ToContent(ev.Screen))
	s := t.snapshot()
	if c.Sink != nil {
		c.Sink.EmitLaser(s, true)
	}
	if len(s.Points) > 1 && t.fade != nil {
		t.fade.Add(s, c.now())
	}
	t.stroke = ephemeral.Stroke{}
	return true
}

func (t *LaserTool) Reset(*Context) {
	t.active = false
	t.dot = nil
	t.stroke = ephemeral.Stroke{}
}

func (t *LaserTool) snapshot() ephemeral.Stroke {
	s := t.stroke
	s.Points = append([]geom.Point(nil), t.stroke.Points...)
	return s
}

// Dot returns the local laser dot position.
func (t *LaserTool) Dot() (geom.Point, bool) {
	if t.dot == nil {
		return geom.Point{}, false
	}
	return *t.dot, true
}

// Stroke returns the stroke being drawn.
func (t *LaserTool) Stroke() (ephemeral.Stroke, bool) {
	if !t.active {
		return ephemeral.Stroke{}, false
	}
	return t.stroke, true
}
