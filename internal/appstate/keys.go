package appstate

import (
	"unicode"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/planboard/internal/geom"
	"github.com/example/planboard/internal/tools"
	"github.com/example/planboard/internal/viewport"
)

const (
	actionUndo       = "undo"
	actionRedo       = "redo"
	actionDelete     = "delete"
	actionCopy       = "copy"
	actionShare      = "share"
	actionExport     = "export"
	actionPaste      = "paste"
	actionNextFloor  = "next-floor"
	actionPrevFloor  = "prev-floor"
	actionZoomIn     = "zoom-in"
	actionZoomOut    = "zoom-out"
	actionZoomReset  = "zoom-reset"
	actionTextDone   = "text-done"
	actionTextCancel = "text-cancel"
	actionQuit       = "quit"
)

// KeyShortcut describes a keyboard combination that triggers an action.
// Printable keys are matched by Rune, the rest by Code.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

var keyboardAction = map[KeyShortcut]string{
	{Rune: 'z', Modifiers: key.ModControl}:                 actionUndo,
	{Rune: 'z', Modifiers: key.ModControl | key.ModShift}:  actionRedo,
	{Rune: 'y', Modifiers: key.ModControl}:                 actionRedo,
	{Rune: 'c', Modifiers: key.ModControl}:                 actionCopy,
	{Rune: 'l', Modifiers: key.ModControl}:                 actionShare,
	{Rune: 's', Modifiers: key.ModControl}:                 actionExport,
	{Code: key.CodeDeleteForward}:                          actionDelete,
	{Code: key.CodeDeleteBackspace}:                        actionDelete,
	{Rune: 'j'}:                                            actionNextFloor,
	{Rune: 'k'}:                                            actionPrevFloor,
	{Rune: '+'}:                                            actionZoomIn,
	{Rune: '='}:                                            actionZoomIn,
	{Rune: '-'}:                                            actionZoomOut,
	{Rune: '0'}:                                            actionZoomReset,
	{Rune: 'q'}:                                            actionQuit,
}

// shortcutFor normalizes e and looks it up. Shift only matters together
// with Control so that '+' and 'J' match regardless of layout.
func shortcutFor(e key.Event) (string, bool) {
	mods := e.Modifiers & (key.ModControl | key.ModShift)
	if mods&key.ModControl == 0 {
		mods = 0
	}
	ks := KeyShortcut{Modifiers: mods}
	if e.Rune > 0 && unicode.IsPrint(e.Rune) {
		ks.Rune = unicode.ToLower(e.Rune)
	} else {
		ks.Code = e.Code
	}
	action, ok := keyboardAction[ks]
	return action, ok
}

var toolKeys = map[rune]tools.Tool{
	'v': tools.ToolSelect,
	'p': tools.ToolPen,
	'l': tools.ToolLine,
	'r': tools.ToolRect,
	't': tools.ToolText,
	'i': tools.ToolIcon,
	'e': tools.ToolEraser,
	'h': tools.ToolPan,
	'o': tools.ToolLaserDot,
	'g': tools.ToolLaserLine,
}

func toolForKey(e key.Event) (tools.Tool, bool) {
	if e.Modifiers&(key.ModControl|key.ModAlt|key.ModMeta) != 0 {
		return "", false
	}
	t, ok := toolKeys[unicode.ToLower(e.Rune)]
	return t, ok
}

// panKeyFor maps the arrow keys and WASD to continuous pan directions.
func panKeyFor(e key.Event) (viewport.PanKey, bool) {
	switch e.Code {
	case key.CodeUpArrow:
		return viewport.PanUp, true
	case key.CodeDownArrow:
		return viewport.PanDown, true
	case key.CodeLeftArrow:
		return viewport.PanLeft, true
	case key.CodeRightArrow:
		return viewport.PanRight, true
	}
	if e.Modifiers&(key.ModControl|key.ModAlt|key.ModMeta) != 0 {
		return 0, false
	}
	switch e.Code {
	case key.CodeW:
		return viewport.PanUp, true
	case key.CodeS:
		return viewport.PanDown, true
	case key.CodeA:
		return viewport.PanLeft, true
	case key.CodeD:
		return viewport.PanRight, true
	}
	return 0, false
}

// editKey converts a key press for the text editor.
func editKey(e key.Event) (tools.KeyInput, bool) {
	switch e.Code {
	case key.CodeReturnEnter, key.CodeKeypadEnter:
		return tools.KeyInput{Key: tools.KeyEnter}, true
	case key.CodeEscape:
		return tools.KeyInput{Key: tools.KeyEscape}, true
	case key.CodeDeleteBackspace:
		return tools.KeyInput{Key: tools.KeyBackspace}, true
	}
	if e.Modifiers&(key.ModControl|key.ModMeta) != 0 {
		return tools.KeyInput{}, false
	}
	if e.Rune > 0 && unicode.IsPrint(e.Rune) {
		return tools.KeyInput{Rune: e.Rune}, true
	}
	return tools.KeyInput{}, false
}

func pointerFor(e mouse.Event) tools.Pointer {
	p := tools.Pointer{Screen: geom.Pt(float64(e.X), float64(e.Y))}
	switch e.Button {
	case mouse.ButtonLeft:
		p.Button = tools.ButtonLeft
	case mouse.ButtonMiddle:
		p.Button = tools.ButtonMiddle
	case mouse.ButtonRight:
		p.Button = tools.ButtonRight
	}
	return p
}

// wheelDelta returns the scroll direction of a wheel step, positive for
// down.
func wheelDelta(e mouse.Event) float64 {
	switch e.Button {
	case mouse.ButtonWheelUp:
		return -1
	case mouse.ButtonWheelDown:
		return 1
	}
	return 0
}
