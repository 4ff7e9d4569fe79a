package viewport

// PanKey identifies one of the directional keys that pan continuously while
// held.
type PanKey int

const (
	PanUp PanKey = iota
	PanDown
	PanLeft
	PanRight
)

// PanSpeed is the distance in screen pixels panned per frame.
const PanSpeed = 8

// KeyPanner tracks held pan keys. While any key is held the host calls Step
// once per display frame.
type KeyPanner struct {
	held map[PanKey]bool
}

// Press records a key press. It returns true when this press starts the
// frame loop.
func (k *KeyPanner) Press(key PanKey) bool {
	if k.held == nil {
		k.held = map[PanKey]bool{}
	}
	start := len(k.held) == 0
	k.held[key] = true
	return start
}

// Release records a key release.
func (k *KeyPanner) Release(key PanKey) {
	delete(k.held, key)
}

// Clear releases every key, used when the window loses focus.
func (k *KeyPanner) Clear() {
	for key := range k.held {
		delete(k.held, key)
	}
}

// Active reports whether any pan key is held.
func (k *KeyPanner) Active() bool { return len(k.held) > 0 }

// Delta returns the per-frame pan for the held keys. Up moves the content
// down so the view travels up.
func (k *KeyPanner) Delta() (dx, dy float64) {
	if k.held[PanUp] {
		dy += PanSpeed
	}
	if k.held[PanDown] {
		dy -= PanSpeed
	}
	if k.held[PanLeft] {
		dx += PanSpeed
	}
	if k.held[PanRight] {
		dx -= PanSpeed
	}
	return dx, dy
}

// Step applies one frame of panning to v and reports whether the loop should
// continue.
func (k *KeyPanner) Step(v *Viewport) bool {
	if !k.Active() {
		return false
	}
	dx, dy := k.Delta()
	if dx != 0 || dy != 0 {
		v.PanBy(dx, dy)
	}
	return true
}
