// Package render rasterizes a board Scene in three layers: the floor
// background, the committed draws with the selection overlay, and the active
// layer of previews, lasers and peer cursors.
package render

import (
	"image"

	"github.com/example/planboard/internal/theme"
)

// Renderer paints scenes. It is safe for use by one goroutine at a time.
type Renderer struct {
	theme   *theme.Theme
	icons   *IconCache
	repaint func()
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTheme sets the palette. Nil keeps the default theme.
func WithTheme(t *theme.Theme) Option {
	return func(r *Renderer) {
		if t != nil {
			r.theme = t
		}
	}
}

// WithIcons sets the icon cache. Nil disables icon images.
func WithIcons(c *IconCache) Option {
	return func(r *Renderer) { r.icons = c }
}

// WithRepaint sets the callback run when a pending icon finishes loading.
func WithRepaint(fn func()) Option {
	return func(r *Renderer) { r.repaint = fn }
}

// New returns a renderer using the default theme and the shared icon cache.
func New(opts ...Option) *Renderer {
	r := &Renderer{theme: theme.Default(), icons: SharedIcons()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Theme returns the palette in use.
func (r *Renderer) Theme() *theme.Theme { return r.theme }

// Paint draws s onto dst, replacing its contents.
func (r *Renderer) Paint(dst *image.RGBA, s *Scene) {
	r.paintBackground(dst, s)
	p := newPainter(dst)
	r.paintDraws(dst, p, s)
	r.paintActive(dst, p, s)
}
