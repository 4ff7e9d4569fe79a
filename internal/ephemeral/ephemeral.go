// Package ephemeral holds the non-persisted pointer state shared between
// participants: cursors, in-progress laser strokes and fading laser trails.
package ephemeral

import (
	"time"

	"github.com/example/planboard/internal/geom"
)

const (
	// BroadcastInterval is the minimum gap between laser stroke broadcasts.
	BroadcastInterval = 50 * time.Millisecond
	// FadeDuration is how long a finished laser stroke stays visible.
	FadeDuration = 3 * time.Second
)

// Clock is the time source; tests replace it.
type Clock func() time.Time

// Cursor is a participant's pointer position in content space.
type Cursor struct {
	UserID string  `json:"userId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Laser  bool    `json:"isLaser,omitempty"`
	Color  string  `json:"color,omitempty"`
}

// Stroke is a laser line. FadeStart is zero while the stroke is still being
// drawn.
type Stroke struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	Points    []geom.Point `json:"points"`
	Color     string       `json:"color,omitempty"`
	FadeStart time.Time    `json:"fadeStart,omitempty"`
}

// Throttle admits at most one event per Interval.
type Throttle struct {
	Interval time.Duration
	last     time.Time
}

// Allow reports whether an event at now may be sent and records it if so.
func (t *Throttle) Allow(now time.Time) bool {
	iv := t.Interval
	if iv == 0 {
		iv = BroadcastInterval
	}
	if !t.last.IsZero() && now.Sub(t.last) <= iv {
		return false
	}
	t.last = now
	return true
}

// Reset forgets the last event.
func (t *Throttle) Reset() { t.last = time.Time{} }

// Opacity returns the alpha of s at now, from 1 at FadeStart down to 0 after
// FadeDuration. Strokes without a fade start are fully opaque.
func Opacity(s Stroke, now time.Time) float64 {
	if s.FadeStart.IsZero() {
		return 1
	}
	a := 1 - float64(now.Sub(s.FadeStart))/float64(FadeDuration)
	if a < 0 {
		return 0
	}
	if a > 1 {
		return 1
	}
	return a
}

// FadeList holds finished strokes until they have faded out.
type FadeList struct {
	strokes []Stroke
}

// Add starts fading s at now.
func (f *FadeList) Add(s Stroke, now time.Time) {
	if s.FadeStart.IsZero() {
		s.FadeStart = now
	}
	f.strokes = append(f.strokes, s)
}

// Live returns the strokes still visible at now.
func (f *FadeList) Live(now time.Time) []Stroke {
	out := make([]Stroke, 0, len(f.strokes))
	for _, s := range f.strokes {
		if Opacity(s, now) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// GC drops strokes that have fully faded and reports whether any remain.
func (f *FadeList) GC(now time.Time) bool {
	kept := f.strokes[:0]
	for _, s := range f.strokes {
		if now.Sub(s.FadeStart) < FadeDuration {
			kept = append(kept, s)
		}
	}
	for i := len(kept); i < len(f.strokes); i++ {
		f.strokes[i] = Stroke{}
	}
	f.strokes = kept
	return len(f.strokes) > 0
}

// Len returns the number of strokes held.
func (f *FadeList) Len() int { return len(f.strokes) }

// Clear drops all strokes.
func (f *FadeList) Clear() { f.strokes = nil }
