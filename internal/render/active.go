package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/ephemeral"
	"github.com/example/planboard/internal/geom"
	"github.com/example/planboard/internal/selection"
)

const (
	cursorRadius   = 5
	laserDotRadius = 6
	laserWidth     = 3
	caretBlink     = 500 // milliseconds
)

var (
	laserDefault = color.RGBA{0xff, 0, 0, 0xff}
	cursorRing   = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

func (r *Renderer) paintActive(dst *image.RGBA, p *painter, s *Scene) {
	pv := s.Preview

	if pv.Draw != nil {
		r.paintDraw(dst, p, s, *pv.Draw, 1)
		if pv.DraggingID != "" {
			if box, ok := selection.Bounds(*pv.Draw); ok {
				b, _ := pv.Draw.Bounds()
				outline := corners(box, b.Center(), pv.Draw.Rotation)
				for i := range outline {
					outline[i] = s.toScreen(outline[i])
				}
				p.stroke(outline, 1, r.theme.Selection, true, selectionDash)
			}
		}
	}

	if pv.Laser != nil {
		r.paintLaser(dst, s, *pv.Laser, 1)
	}
	for _, st := range s.PeerLasers {
		r.paintLaser(dst, s, st, 1)
	}

	if pv.LaserDot != nil {
		r.paintLaserDot(dst, s.toScreen(*pv.LaserDot), drawing.MustColor(s.LaserColor, laserDefault))
	}

	for _, c := range s.Cursors {
		if c.UserID == s.UserID {
			continue
		}
		at := s.toScreen(geom.Pt(c.X, c.Y))
		col := drawing.MustColor(c.Color, r.theme.PeerCursor)
		if c.Laser {
			r.paintLaserDot(dst, at, col)
			continue
		}
		p.fillCircle(at, cursorRadius+1, cursorRing)
		p.fillCircle(at, cursorRadius, col)
	}

	for _, list := range [][]ephemeral.Stroke{pv.Fading, s.PeerFading} {
		for _, st := range list {
			if a := ephemeral.Opacity(st, s.Now); a > 0 {
				r.paintLaser(dst, s, st, a)
			}
		}
	}

	if pv.Text != nil {
		r.paintEditor(dst, p, s)
	}
}

// paintLaser draws a glowing stroke at opacity a.
func (r *Renderer) paintLaser(dst *image.RGBA, s *Scene, st ephemeral.Stroke, a float64) {
	if len(st.Points) == 0 {
		return
	}
	col := drawing.MustColor(st.Color, laserDefault)
	pts := make([]geom.Point, len(st.Points))
	for i, q := range st.Points {
		pts[i] = s.toScreen(q)
	}
	b, _ := geom.BoundOf(pts...)
	b = b.Pad(laserWidth)
	origin := image.Pt(int(math.Floor(b.X)), int(math.Floor(b.Y)))
	area := image.Rect(origin.X, origin.Y, int(math.Ceil(b.X+b.W)), int(math.Ceil(b.Y+b.H)))
	if !area.Inset(-laserDotRadius * 2).Overlaps(dst.Bounds()) {
		return
	}
	layer := image.NewRGBA(image.Rect(0, 0, area.Dx(), area.Dy()))
	for i := range pts {
		pts[i] = pts[i].Sub(geom.Pt(float64(origin.X), float64(origin.Y)))
	}
	newPainter(layer).stroke(pts, laserWidth, col, false, nil)
	composite(dst, layer, origin, col, a)
}

func (r *Renderer) paintLaserDot(dst *image.RGBA, at geom.Point, col color.RGBA) {
	size := 2*laserDotRadius + 2
	layer := image.NewRGBA(image.Rect(0, 0, size, size))
	newPainter(layer).fillCircle(geom.Pt(float64(size)/2, float64(size)/2), laserDotRadius, col)
	origin := image.Pt(int(math.Round(at.X))-size/2, int(math.Round(at.Y))-size/2)
	composite(dst, layer, origin, col, 1)
}

// composite glows layer and draws it with its top-left at origin.
func composite(dst, layer *image.RGBA, origin image.Point, col color.RGBA, a float64) {
	g := ApplyGlow(layer, DefaultGlowOptions(col))
	fadeImage(g.Image, a)
	at := origin.Sub(g.Offset)
	draw.Draw(dst, g.Image.Bounds().Add(at), g.Image, image.Point{}, draw.Over)
}

// paintEditor draws the text being typed and a blinking caret after it.
func (r *Renderer) paintEditor(dst *image.RGBA, p *painter, s *Scene) {
	ed := s.Preview.Text
	size := ed.FontSize
	if size <= 0 {
		size = drawing.DefaultFontSize
	}
	size *= s.scale()
	col := drawing.MustColor(ed.Color, defaultDrawCol)
	at := s.toScreen(ed.Anchor)
	DrawText(dst, at.X, at.Y, ed.Text, col, size)
	if s.Now.UnixMilli()/caretBlink%2 == 1 {
		return
	}
	w, asc, desc, err := MeasureText(ed.Text, size)
	if err != nil {
		return
	}
	x := at.X + float64(w) + 1
	p.stroke([]geom.Point{geom.Pt(x, at.Y-float64(asc)), geom.Pt(x, at.Y+float64(desc))}, 1, col, false, nil)
}
