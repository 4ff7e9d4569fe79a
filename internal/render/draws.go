package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/geom"
	"github.com/example/planboard/internal/selection"
)

const (
	// otherUserAlpha dims draws owned by other participants.
	otherUserAlpha  = 0.6
	iconCornerRatio = 0.2
	iconGlyphRatio  = 0.6
)

var (
	selectionDash  = []float64{4, 4}
	iconBackground = color.RGBA{0x33, 0x33, 0x33, 0xff}
	iconGlyphColor = color.RGBA{0xff, 0xff, 0xff, 0xff}
	defaultDrawCol = drawing.MustColor(drawing.DefaultColor, color.RGBA{0xff, 0, 0, 0xff})
)

func (r *Renderer) paintDraws(dst *image.RGBA, p *painter, s *Scene) {
	for _, d := range s.Draws {
		if d.Deleted || !s.Filter.Allows(d) {
			continue
		}
		if d.ID != "" && d.ID == s.Preview.DraggingID {
			continue
		}
		alpha := 1.0
		if s.UserID != "" && d.UserID != "" && d.UserID != s.UserID {
			alpha = otherUserAlpha
		}
		r.paintDraw(dst, p, s, d, alpha)
	}
	r.paintSelection(p, s)
}

// paintDraw draws d rotated about the center of its bounds.
func (r *Renderer) paintDraw(dst *image.RGBA, p *painter, s *Scene, d drawing.Draw, alpha float64) {
	b, ok := d.Bounds()
	if !ok {
		return
	}
	center := b.Center()
	scale := s.scale()
	screen := func(q geom.Point) geom.Point {
		return s.toScreen(geom.Rotate(q, center, d.Rotation))
	}
	col := fade(drawing.MustColor(d.Color(), defaultDrawCol), alpha)

	switch sh := d.Shape.(type) {
	case *drawing.Path:
		pts := make([]geom.Point, len(sh.Points))
		for i, q := range sh.Points {
			pts[i] = screen(q)
		}
		p.stroke(pts, d.StrokeWidth()*scale, col, false, nil)
	case *drawing.Line:
		p.stroke([]geom.Point{screen(d.Origin), screen(sh.Dest)}, d.StrokeWidth()*scale, col, false, nil)
	case *drawing.Rect:
		w, h := sh.RectSize(d.Origin)
		pts := corners(geom.Rect{X: d.Origin.X, Y: d.Origin.Y, W: w, H: h}.Normalize(), center, d.Rotation)
		for i := range pts {
			pts[i] = s.toScreen(pts[i])
		}
		if sh.Filled {
			p.fillPolygon(pts, col)
		} else {
			p.stroke(pts, d.StrokeWidth()*scale, col, true, nil)
		}
	case *drawing.Text:
		r.paintText(dst, s, d, sh, b, col)
	case *drawing.Icon:
		r.paintIcon(dst, s, d, sh, b, alpha)
	}
}

func (r *Renderer) paintText(dst *image.RGBA, s *Scene, d drawing.Draw, sh *drawing.Text, b geom.Rect, col color.Color) {
	scale := s.scale()
	size := sh.Size() * scale
	if d.Rotation == 0 {
		o := s.toScreen(d.Origin)
		DrawText(dst, o.X, o.Y, sh.Text, col, size)
		return
	}
	w, _, _, err := MeasureText(sh.Text, size)
	if err != nil {
		return
	}
	off := offscreen(math.Max(float64(w), b.W*scale), b.H*scale)
	DrawText(off, 0, (d.Origin.Y-b.Y)*scale, sh.Text, col, size)
	place(dst, off, s, b.Min(), b.Center(), d.Rotation)
}

func (r *Renderer) paintIcon(dst *image.RGBA, s *Scene, d drawing.Draw, sh *drawing.Icon, b geom.Rect, alpha float64) {
	side := sh.Side() * s.scale()
	off := offscreen(side, side)
	var img image.Image
	if sh.URL != "" && r.icons != nil {
		img = r.icons.Get(sh.URL, r.repaint)
	}
	switch {
	case img != nil:
		xdraw.CatmullRom.Scale(off, off.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	case sh.Glyph != "":
		sz := float64(off.Bounds().Dx())
		bg := drawing.MustColor(sh.Background, iconBackground)
		newPainter(off).fillPolygon(roundRect(geom.Rect{W: sz, H: sz}, sz*iconCornerRatio), bg)
		fs := sz * iconGlyphRatio
		w, asc, desc, err := MeasureText(sh.Glyph, fs)
		if err == nil {
			fg := drawing.MustColor(sh.GlyphColor, iconGlyphColor)
			DrawText(off, (sz-float64(w))/2, (sz+float64(asc-desc))/2, sh.Glyph, fg, fs)
		}
	default:
		return
	}
	fadeImage(off, alpha)
	if d.Rotation == 0 {
		at := s.toScreen(b.Min())
		pt := image.Pt(int(math.Round(at.X)), int(math.Round(at.Y)))
		draw.Draw(dst, off.Bounds().Add(pt), off, image.Point{}, draw.Over)
		return
	}
	place(dst, off, s, b.Min(), b.Center(), d.Rotation)
}

func offscreen(w, h float64) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, int(math.Max(1, math.Ceil(w))), int(math.Max(1, math.Ceil(h)))))
}

// place draws off, whose top-left pixel maps to the content point topLeft at
// the scene scale, rotated by rot about the content point center.
func place(dst *image.RGBA, off *image.RGBA, s *Scene, topLeft, center geom.Point, rot float64) {
	sin, cos := math.Sincos(rot)
	scale := s.scale()
	c := s.toScreen(center)
	dx, dy := (topLeft.X-center.X)*scale, (topLeft.Y-center.Y)*scale
	m := f64.Aff3{
		cos, -sin, c.X + dx*cos - dy*sin,
		sin, cos, c.Y + dx*sin + dy*cos,
	}
	xdraw.BiLinear.Transform(dst, m, off, off.Bounds(), xdraw.Over, nil)
}

// paintSelection draws the dashed padded box, the resize handles and the
// stem to the rotate handle of the selected draw.
func (r *Renderer) paintSelection(p *painter, s *Scene) {
	d, ok := s.selected()
	if !ok {
		return
	}
	box, ok := selection.Bounds(d)
	if !ok {
		return
	}
	b, _ := d.Bounds()
	center := b.Center()
	screen := func(q geom.Point) geom.Point {
		return s.toScreen(geom.Rotate(q, center, d.Rotation))
	}
	sel := r.theme.Selection
	fill := r.theme.HandleFill

	outline := corners(box, center, d.Rotation)
	for i := range outline {
		outline[i] = s.toScreen(outline[i])
	}
	p.stroke(outline, 1, sel, true, selectionDash)

	rot := screen(selection.HandlePoint(box, selection.HandleRotate))
	p.stroke([]geom.Point{screen(selection.HandlePoint(box, selection.HandleN)), rot}, 1, sel, false, selectionDash)

	half := float64(selection.HandleSize) / 2
	for _, h := range selection.ResizeHandles {
		c := screen(selection.HandlePoint(box, h))
		sq := corners(geom.Rect{X: c.X - half, Y: c.Y - half, W: 2 * half, H: 2 * half}, c, d.Rotation)
		p.fillPolygon(sq, fill)
		p.stroke(sq, 1, sel, true, nil)
	}
	p.fillCircle(rot, half+1, sel)
	p.fillCircle(rot, half-1, fill)
}
