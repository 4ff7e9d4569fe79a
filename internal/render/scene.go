package render

import (
	"image"
	"time"

	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/ephemeral"
	"github.com/example/planboard/internal/geom"
	"github.com/example/planboard/internal/tools"
)

// Scene is a snapshot of everything needed to paint one frame. It is built
// on the event loop and may be painted from another goroutine.
type Scene struct {
	// Floor is the background image. Nil paints the checkerboard.
	Floor    image.Image
	ContentW float64
	ContentH float64

	// Origin is the top-left of the canvas area in window pixels.
	Origin    geom.Point
	Transform geom.Transform

	Draws      []drawing.Draw
	UserID     string
	Filter     drawing.Filter
	SelectedID string

	Preview    tools.Preview
	Cursors    []ephemeral.Cursor
	PeerLasers []ephemeral.Stroke
	PeerFading []ephemeral.Stroke
	// LaserColor colors the local laser dot.
	LaserColor string

	Now time.Time
	// Interacting selects the faster image filter while panning or zooming.
	Interacting bool
}

func (s *Scene) toScreen(p geom.Point) geom.Point {
	return geom.ToScreen(p, s.Origin, s.Transform)
}

func (s *Scene) scale() float64 {
	if s.Transform.Scale <= 0 {
		return 1
	}
	return s.Transform.Scale
}

// selected returns the selected draw, preferring the drag preview.
func (s *Scene) selected() (drawing.Draw, bool) {
	if s.SelectedID == "" {
		return drawing.Draw{}, false
	}
	if s.Preview.Draw != nil && s.Preview.DraggingID == s.SelectedID {
		return *s.Preview.Draw, true
	}
	for _, d := range s.Draws {
		if d.ID == s.SelectedID && !d.Deleted && s.Filter.Allows(d) {
			return d, true
		}
	}
	return drawing.Draw{}, false
}
