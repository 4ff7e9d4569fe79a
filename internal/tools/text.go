package tools

import (
	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/geom"
)

// Key is a non-printing key understood by the text editor.
type Key int

const (
	KeyNone Key = iota
	KeyEnter
	KeyEscape
	KeyBackspace
)

// KeyInput is a key press. Rune is set for printable input.
type KeyInput struct {
	Key  Key
	Rune rune
}

// TextEdit is the text being typed, shown in the active layer.
type TextEdit struct {
	Anchor   geom.Point
	Text     string
	FontSize float64
	Color    string
}

// TextTool places a single line of text. It moves from idle to editing on a
// click and back to idle on commit or cancel.
type TextTool struct {
	editing bool
	anchor  geom.Point
	buf     []rune
}

func (t *TextTool) Down(c *Context, ev Pointer) bool {
	t.anchor = c.ToContent(ev.Screen)
	if !t.editing {
		t.editing = true
		t.buf = t.buf[:0]
	}
	return true
}

func (t *TextTool) Move(*Context, Pointer) bool { return false }
func (t *TextTool) Up(*Context, Pointer) bool { return false }

// Reset cancels any edit.
func (t *TextTool) Reset(*Context) {
	t.editing = false
	t.buf = nil
}

// Editing reports whether the editor is open.
func (t *TextTool) Editing() bool { return t.editing }

// Key feeds a key press to the editor. It reports whether the key was
// consumed.
func (t *TextTool) Key(c *Context, k KeyInput) bool {
	if !t.editing {
		return false
	}
	switch k.Key {
	case KeyEscape:
		t.Reset(c)
	case KeyEnter:
		t.commit(c)
	case KeyBackspace:
		if len(t.buf) > 0 {
			t.buf = t.buf[:len(t.buf)-1]
		}
	default:
		if k.Rune < ' ' {
			return false
		}
		t.buf = append(t.buf, k.Rune)
	}
	return true
}

func (t *TextTool) commit(c *Context) {
	text := string(t.buf)
	anchor := t.anchor
	t.Reset(c)
	if text == "" || c.Sink == nil {
		return
	}
	c.Sink.CreateDraw(c.newDraw(anchor, &drawing.Text{Text: text, FontSize: fontSize(c), Color: c.color()}))
}

// Edit returns the editor contents while editing.
func (t *TextTool) Edit(c *Context) (TextEdit, bool) {
	if !t.editing {
		return TextEdit{}, false
	}
	return TextEdit{Anchor: t.anchor, Text: string(t.buf), FontSize: fontSize(c), Color: c.color()}, true
}

func fontSize(c *Context) float64 {
	if c.Settings.FontSize <= 0 {
		return drawing.DefaultFontSize
	}
	return c.Settings.FontSize
}
