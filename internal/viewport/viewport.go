// Package viewport tracks the pan and zoom of a single participant's view of
// the floor.
package viewport

import (
	"github.com/example/planboard/internal/geom"
)

const (
	DefaultZoomStep = 0.1
	DefaultZoomMin  = 0.1
	DefaultZoomMax  = 5
)

// Limits bounds the zoom level and sets the increment used by ZoomIn and
// ZoomOut.
type Limits struct {
	Step float64
	Min  float64
	Max  float64
}

// DefaultLimits returns the stock zoom configuration.
func DefaultLimits() Limits {
	return Limits{Step: DefaultZoomStep, Min: DefaultZoomMin, Max: DefaultZoomMax}
}

func (l Limits) clamp(s float64) float64 {
	if s < l.Min {
		return l.Min
	}
	if s > l.Max {
		return l.Max
	}
	return s
}

// Viewport is the scale and offset that maps content to the container.
type Viewport struct {
	Scale   float64
	OffsetX float64
	OffsetY float64

	ContainerW, ContainerH float64
	ContentW, ContentH     float64

	limits Limits
}

// New returns a viewport at scale 1 with no offset.
func New(l Limits) *Viewport {
	if l.Min <= 0 {
		l.Min = DefaultZoomMin
	}
	if l.Max < l.Min {
		l.Max = l.Min
	}
	if l.Step <= 0 {
		l.Step = DefaultZoomStep
	}
	return &Viewport{Scale: 1, limits: l}
}

// Limits returns the zoom configuration.
func (v *Viewport) Limits() Limits { return v.limits }

// Transform returns the current mapping for use with geom.ToContent.
func (v *Viewport) Transform() geom.Transform {
	return geom.Transform{Scale: v.Scale, OffsetX: v.OffsetX, OffsetY: v.OffsetY}
}

// ZoomTo sets the scale, clamped to the limits, keeping the content point
// under (px, py) fixed on screen. The pivot is relative to the container.
func (v *Viewport) ZoomTo(s, px, py float64) {
	old := v.Scale
	next := v.limits.clamp(s)
	if old == 0 {
		old = 1
	}
	ratio := next / old
	v.OffsetX = px - (px-v.OffsetX)*ratio
	v.OffsetY = py - (py-v.OffsetY)*ratio
	v.Scale = next
}

// ZoomIn zooms one step in around the pivot.
func (v *Viewport) ZoomIn(px, py float64) { v.ZoomTo(v.Scale+v.limits.Step, px, py) }

// ZoomOut zooms one step out around the pivot.
func (v *Viewport) ZoomOut(px, py float64) { v.ZoomTo(v.Scale-v.limits.Step, px, py) }

// Wheel zooms for a wheel notch. Positive deltaY scrolls down and zooms out.
func (v *Viewport) Wheel(deltaY, px, py float64) {
	switch {
	case deltaY > 0:
		v.ZoomOut(px, py)
	case deltaY < 0:
		v.ZoomIn(px, py)
	}
}

// ZoomCenter zooms in (dir > 0) or out around the container center.
func (v *Viewport) ZoomCenter(dir int) {
	cx, cy := v.ContainerW/2, v.ContainerH/2
	if dir > 0 {
		v.ZoomIn(cx, cy)
	} else {
		v.ZoomOut(cx, cy)
	}
}

// PanBy moves the content by a screen-space delta. Panning is unbounded.
func (v *Viewport) PanBy(dx, dy float64) {
	v.OffsetX += dx
	v.OffsetY += dy
}

// SetDimensions records the content and container sizes used by Center and
// Fit.
func (v *Viewport) SetDimensions(contentW, contentH, containerW, containerH float64) {
	v.ContentW, v.ContentH = contentW, contentH
	v.ContainerW, v.ContainerH = containerW, containerH
}

// SetContainer updates the container size only.
func (v *Viewport) SetContainer(w, h float64) {
	v.ContainerW, v.ContainerH = w, h
}

// Reset returns to scale 1 with no offset.
func (v *Viewport) Reset() {
	v.Scale = v.limits.clamp(1)
	v.OffsetX, v.OffsetY = 0, 0
}

// Center places the content in the middle of the container at the current
// scale. It does nothing until both sizes are known.
func (v *Viewport) Center() {
	if v.ContentW <= 0 || v.ContentH <= 0 || v.ContainerW <= 0 || v.ContainerH <= 0 {
		return
	}
	v.OffsetX = (v.ContainerW - v.ContentW*v.Scale) / 2
	v.OffsetY = (v.ContainerH - v.ContentH*v.Scale) / 2
}

// Fit scales the content to fit inside the container and centers it.
func (v *Viewport) Fit() {
	if v.ContentW <= 0 || v.ContentH <= 0 || v.ContainerW <= 0 || v.ContainerH <= 0 {
		v.Reset()
		return
	}
	s := v.ContainerW / v.ContentW
	if sy := v.ContainerH / v.ContentH; sy < s {
		s = sy
	}
	v.Scale = v.limits.clamp(s)
	v.Center()
}
