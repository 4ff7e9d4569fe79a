package tools

import (
	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/hittest"
)

// IconSize is the side of icons placed by the icon tool.
const IconSize = 40

// IconTool stamps the selected catalog icon on click.
type IconTool struct{}

func (IconTool) Down(c *Context, ev Pointer) bool {
	ref := c.Settings.Icon
	if ref == nil || (ref.URL == "" && ref.Glyph == "") {
		return false
	}
	if c.Sink != nil {
		c.Sink.CreateDraw(c.newDraw(c.ToContent(ev.Screen), &drawing.Icon{
			Size:       IconSize,
			URL:        ref.URL,
			Glyph:      ref.Glyph,
			GlyphColor: ref.GlyphColor,
			Background: ref.Background,
		}))
	}
	return true
}

func (IconTool) Move(*Context, Pointer) bool { return false }
func (IconTool) Up(*Context, Pointer) bool { return false }
func (IconTool) Reset(*Context) {}

// EraserTool deletes the topmost interactable draw under the pointer.
type EraserTool struct{}

func (EraserTool) Down(c *Context, ev Pointer) bool {
	p := c.ToContent(ev.Screen)
	d, ok := hittest.Topmost(c.draws(), p, hittest.Interactable(c.UserID, c.Filter))
	if !ok {
		return false
	}
	if c.Selection != nil && c.Selection.SelectedID == d.ID {
		c.Selection.Clear()
	}
	if c.Sink != nil {
		c.Sink.DeleteDraw(d.ID)
	}
	return true
}

func (EraserTool) Move(*Context, Pointer) bool { return false }
func (EraserTool) Up(*Context, Pointer) bool { return false }
func (EraserTool) Reset(*Context) {}
