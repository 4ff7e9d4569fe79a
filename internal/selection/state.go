package selection

import (
	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/geom"
)

// Mode is the drag in progress on the selected draw.
type Mode int

const (
	ModeNone Mode = iota
	ModeMove
	ModeResize
	ModeRotate
)

func (m Mode) String() string {
	switch m {
	case ModeMove:
		return "move"
	case ModeResize:
		return "resize"
	case ModeRotate:
		return "rotate"
	}
	return "none"
}

// State is the current selection and the drag applied to it. A mode other
// than ModeNone always has a selected draw.
type State struct {
	SelectedID string
	Mode       Mode
	Handle     Handle

	start      geom.Point
	original   drawing.Draw
	origBounds geom.Rect
	preview    drawing.Draw
}

// Select marks id as selected with no drag in progress.
func (s *State) Select(id string) {
	*s = State{SelectedID: id}
}

// Clear drops the selection.
func (s *State) Clear() { *s = State{} }

// Dragging reports whether a drag is in progress.
func (s *State) Dragging() bool { return s.Mode != ModeNone && s.SelectedID != "" }

// Begin starts a drag of d at content point p.
func (s *State) Begin(d drawing.Draw, mode Mode, h Handle, p geom.Point) {
	b, _ := d.Bounds()
	*s = State{
		SelectedID: d.ID,
		Mode:       mode,
		Handle:     h,
		start:      p,
		original:   d.Clone(),
		origBounds: b,
		preview:    d.Clone(),
	}
}

// Update recomputes the preview for the pointer at p.
func (s *State) Update(p geom.Point) drawing.Draw {
	if !s.Dragging() {
		return s.preview
	}
	switch s.Mode {
	case ModeMove:
		s.preview = Move(s.original, p.X-s.start.X, p.Y-s.start.Y)
	case ModeResize:
		next := ResizeRect(s.origBounds, s.Handle, Local(s.original, p))
		s.preview = Resize(s.original, s.origBounds, next)
	case ModeRotate:
		s.preview = Rotate(s.original, s.start, p)
	}
	return s.preview
}

// Preview returns the transformed draw for the drag in progress.
func (s *State) Preview() (drawing.Draw, bool) {
	if !s.Dragging() {
		return drawing.Draw{}, false
	}
	return s.preview, true
}

// End finishes the drag at p. It returns the original and transformed draw and
// reports false when nothing should be committed.
func (s *State) End(p geom.Point) (before, after drawing.Draw, commit bool) {
	if !s.Dragging() {
		return drawing.Draw{}, drawing.Draw{}, false
	}
	after = s.Update(p)
	before = s.original
	commit = true
	if s.Mode == ModeMove && IsClick(p.X-s.start.X, p.Y-s.start.Y) {
		commit = false
	}
	s.Mode = ModeNone
	s.Handle = HandleNone
	return before, after, commit
}

// Cancel abandons the drag and keeps the selection.
func (s *State) Cancel() {
	if s.SelectedID == "" {
		return
	}
	s.Select(s.SelectedID)
}
