// Package history keeps the per-session undo and redo stacks of the local
// user's own mutations. Entries describe what to do; the board executes them.
package history

import (
	"github.com/example/planboard/internal/drawing"
)

// Kind distinguishes creations from transforms.
type Kind int

const (
	KindCreate Kind = iota
	KindUpdate
)

// Entry is one undoable action.
type Entry struct {
	Kind    Kind
	DrawID  string
	FloorID string

	// Created is the full draw for KindCreate; redo recreates it.
	Created drawing.Draw

	// Forward and Inverse are set for KindUpdate.
	Forward drawing.Patch
	Inverse drawing.Patch
}

// Stack holds the undo and redo lists. The zero value is ready to use.
type Stack struct {
	undo []Entry
	redo []Entry
	// Limit caps the undo list when positive; the oldest entries are dropped.
	Limit int
}

func (s *Stack) push(e Entry) {
	s.undo = append(s.undo, e)
	if s.Limit > 0 && len(s.undo) > s.Limit {
		s.undo = append([]Entry(nil), s.undo[len(s.undo)-s.Limit:]...)
	}
	s.redo = s.redo[:0]
}

// PushCreate records a newly created draw and clears the redo list.
func (s *Stack) PushCreate(d drawing.Draw) {
	s.push(Entry{Kind: KindCreate, DrawID: d.ID, FloorID: d.FloorID, Created: d.Clone()})
}

// PushUpdate records a transform from before to after and clears the redo
// list.
func (s *Stack) PushUpdate(before, after drawing.Draw) {
	s.push(Entry{
		Kind:    KindUpdate,
		DrawID:  after.ID,
		FloorID: after.FloorID,
		Forward: drawing.PatchFrom(before, after),
		Inverse: drawing.PatchFrom(after, before),
	})
}

// Undo moves the newest entry to the redo list and returns it.
func (s *Stack) Undo() (Entry, bool) {
	if len(s.undo) == 0 {
		return Entry{}, false
	}
	e := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, e)
	return e, true
}

// Redo moves the newest redo entry back to the undo list and returns it.
func (s *Stack) Redo() (Entry, bool) {
	if len(s.redo) == 0 {
		return Entry{}, false
	}
	e := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, e)
	return e, true
}

// Rename rewrites entries that refer to a temporary id once the server
// assigns the real one.
func (s *Stack) Rename(oldID, newID string) {
	for _, list := range [][]Entry{s.undo, s.redo} {
		for i := range list {
			if list[i].DrawID == oldID {
				list[i].DrawID = newID
				list[i].Created.ID = newID
			}
		}
	}
}

// Clear empties both lists.
func (s *Stack) Clear() {
	s.undo = nil
	s.redo = nil
}

func (s *Stack) CanUndo() bool { return len(s.undo) > 0 }
func (s *Stack) CanRedo() bool { return len(s.redo) > 0 }

// Len returns the sizes of the undo and redo lists.
func (s *Stack) Len() (undo, redo int) { return len(s.undo), len(s.redo) }
