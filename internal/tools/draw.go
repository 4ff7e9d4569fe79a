package tools

import (
	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/geom"
)

// DrawTool captures pen, line and rectangle strokes.
type DrawTool struct {
	kind    Tool
	active  bool
	points  []geom.Point
	start   geom.Point
	end     geom.Point
	created bool
}

func (t *DrawTool) Down(c *Context, ev Pointer) bool {
	p := c.ToContent(ev.Screen)
	t.kind = c.Settings.Tool
	t.active = true
	t.created = false
	t.start, t.end = p, p
	t.points = append(t.points[:0], p)
	return true
}

func (t *DrawTool) Move(c *Context, ev Pointer) bool {
	if !t.active {
		return false
	}
	p := c.ToContent(ev.Screen)
	if t.kind == ToolPen {
		t.points = append(t.points, p)
	}
	t.end = p
	return true
}

func (t *DrawTool) Up(c *Context, ev Pointer) bool {
	if !t.active {
		return false
	}
	if t.kind != ToolPen {
		t.end = c.ToContent(ev.Screen)
	}
	d, ok := t.build(c)
	t.Reset(c)
	if !ok {
		return true
	}
	if c.Sink != nil {
		c.Sink.CreateDraw(d)
	}
	t.created = true
	return true
}

func (t *DrawTool) Reset(*Context) {
	t.active = false
	t.points = nil
}

// Created reports whether the last Up committed a draw and clears the flag.
func (t *DrawTool) Created() bool {
	c := t.created
	t.created = false
	return c
}

func (t *DrawTool) build(c *Context) (drawing.Draw, bool) {
	switch t.kind {
	case ToolPen:
		if len(t.points) < 2 {
			return drawing.Draw{}, false
		}
		pts := append([]geom.Point(nil), t.points...)
		return c.newDraw(pts[0], &drawing.Path{Points: pts, Color: c.color(), Width: c.width()}), true
	case ToolLine:
		return c.newDraw(t.start, &drawing.Line{Dest: t.end, Color: c.color(), Width: c.width()}), true
	case ToolRect:
		return c.newDraw(t.start, &drawing.Rect{
			Dest:        t.end,
			Width:       t.end.X - t.start.X,
			Height:      t.end.Y - t.start.Y,
			Color:       c.color(),
			StrokeWidth: c.width(),
		}), true
	}
	return drawing.Draw{}, false
}

// Preview returns the draw being captured.
func (t *DrawTool) Preview(c *Context) (drawing.Draw, bool) {
	if !t.active {
		return drawing.Draw{}, false
	}
	if t.kind == ToolPen && len(t.points) < 2 {
		return c.newDraw(t.start, &drawing.Path{Points: append([]geom.Point(nil), t.points...), Color: c.color(), Width: c.width()}), true
	}
	return t.build(c)
}
