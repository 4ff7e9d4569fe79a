package board

import (
	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/ephemeral"
)

// HandleCursor records a peer cursor. The local user's own echo is ignored.
func (b *Board) HandleCursor(c ephemeral.Cursor) {
	if c.UserID == b.userID {
		return
	}
	b.mu.Lock()
	b.peers.SetCursor(c)
	b.mu.Unlock()
	b.changed()
}

// HandleLaser records a peer laser stroke. A final stroke starts fading.
func (b *Board) HandleLaser(s ephemeral.Stroke, final bool) {
	if s.UserID == b.userID {
		return
	}
	b.mu.Lock()
	b.peers.SetLaser(s, final, b.now())
	b.mu.Unlock()
	b.changed()
}

// HandlePeerCreate adds a draw created elsewhere. A draw with a known id
// replaces the local copy.
func (b *Board) HandlePeerCreate(d drawing.Draw) {
	b.mu.Lock()
	if d.FloorID != "" && d.FloorID != b.floor.ID {
		b.mu.Unlock()
		return
	}
	d = d.Clone()
	d.FloorID = b.floor.ID
	d.Deleted = false
	if i := b.index(d.ID); i >= 0 {
		b.draws[i] = d
	} else {
		b.draws = append(b.draws, d)
	}
	b.mu.Unlock()
	b.changed()
}

// HandlePeerUpdate applies a patch sent by a peer.
func (b *Board) HandlePeerUpdate(id string, p drawing.Patch) {
	b.mu.Lock()
	i := b.index(id)
	if i < 0 {
		b.mu.Unlock()
		return
	}
	b.draws[i] = p.Apply(b.draws[i])
	if b.sel.Dragging() && b.sel.SelectedID == b.draws[i].ID {
		b.sel.Cancel()
	}
	b.mu.Unlock()
	b.changed()
}

// HandlePeerDelete removes draws deleted by a peer.
func (b *Board) HandlePeerDelete(ids []string) {
	b.mu.Lock()
	for _, id := range ids {
		b.tombstone(id)
	}
	b.mu.Unlock()
	b.changed()
}

// HandleJoin reports a participant joining the floor.
func (b *Board) HandleJoin(userID string) {
	if userID == b.userID || b.onJoin == nil {
		return
	}
	b.onJoin(userID)
}

// HandleLeave forgets a participant's cursor and laser.
func (b *Board) HandleLeave(userID string) {
	b.mu.Lock()
	b.peers.Remove(userID)
	b.mu.Unlock()
	b.changed()
}
