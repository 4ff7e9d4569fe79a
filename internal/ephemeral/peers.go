package ephemeral

import (
	"sort"
	"time"
)

// Peers tracks the latest cursor and laser stroke of every other participant
// on the floor. Messages overwrite whatever was there before.
type Peers struct {
	cursors map[string]Cursor
	lasers  map[string]Stroke
	fading  FadeList
}

func (p *Peers) init() {
	if p.cursors == nil {
		p.cursors = map[string]Cursor{}
		p.lasers = map[string]Stroke{}
	}
}

// SetCursor stores the latest cursor for c.UserID.
func (p *Peers) SetCursor(c Cursor) {
	p.init()
	p.cursors[c.UserID] = c
}

// SetLaser stores an in-progress stroke. A final stroke moves to the fade
// list.
func (p *Peers) SetLaser(s Stroke, final bool, now time.Time) {
	p.init()
	if !final {
		p.lasers[s.UserID] = s
		return
	}
	delete(p.lasers, s.UserID)
	if len(s.Points) > 1 {
		p.fading.Add(s, now)
	}
}

// Remove forgets a participant who left.
func (p *Peers) Remove(userID string) {
	delete(p.cursors, userID)
	delete(p.lasers, userID)
}

// Cursors returns the known cursors ordered by user id.
func (p *Peers) Cursors() []Cursor {
	out := make([]Cursor, 0, len(p.cursors))
	for _, c := range p.cursors {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// Lasers returns the in-progress strokes ordered by user id.
func (p *Peers) Lasers() []Stroke {
	out := make([]Stroke, 0, len(p.lasers))
	for _, s := range p.lasers {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// Fading returns the peer fade list.
func (p *Peers) Fading() *FadeList { return &p.fading }

// Reset clears all peer state, used on floor switch.
func (p *Peers) Reset() {
	p.cursors = nil
	p.lasers = nil
	p.fading.Clear()
}
