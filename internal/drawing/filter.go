package drawing

// Filter restricts which draws are shown and interactive. The zero value
// shows everything.
type Filter struct {
	// ActivePhase hides draws tagged with a different phase.
	ActivePhase string
	// VisibleSlots lists the operator slots that are shown. Nil shows all.
	VisibleSlots map[string]bool
	// HideLandscape hides draws without an operator slot.
	HideLandscape bool
}

// Allows reports whether d passes the filter.
func (f Filter) Allows(d Draw) bool {
	if f.ActivePhase != "" && d.PhaseID != "" && d.PhaseID != f.ActivePhase {
		return false
	}
	if d.SlotID != "" {
		if f.VisibleSlots != nil && !f.VisibleSlots[d.SlotID] {
			return false
		}
		return true
	}
	return !f.HideLandscape
}
