package render

import (
	"image"
	"image/color"
	"math"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"

	"github.com/example/planboard/internal/geom"
)

// painter draws antialiased vector shapes onto one image.
type painter struct {
	dasher *rasterx.Dasher
	filler *rasterx.Filler
}

func newPainter(dst *image.RGBA) *painter {
	w, h := dst.Bounds().Max.X, dst.Bounds().Max.Y
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	return &painter{
		dasher: rasterx.NewDasher(w, h, scanner),
		filler: rasterx.NewFiller(w, h, scanner),
	}
}

// stroke draws a polyline. A nil dash pattern draws a solid line.
func (p *painter) stroke(pts []geom.Point, width float64, col color.Color, closed bool, dashes []float64) {
	if len(pts) == 0 || width <= 0 {
		return
	}
	if len(pts) == 1 {
		p.fillCircle(pts[0], width/2, col)
		return
	}
	d := p.dasher
	d.Clear()
	d.SetStroke(fixed.Int26_6(width*64), 0, rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.Round, dashes, 0)
	d.SetColor(col)
	d.Start(rasterx.ToFixedP(pts[0].X, pts[0].Y))
	for _, q := range pts[1:] {
		d.Line(rasterx.ToFixedP(q.X, q.Y))
	}
	d.Stop(closed)
	d.Draw()
	d.Clear()
}

func (p *painter) fillPolygon(pts []geom.Point, col color.Color) {
	if len(pts) < 3 {
		return
	}
	f := p.filler
	f.Clear()
	f.SetColor(col)
	f.Start(rasterx.ToFixedP(pts[0].X, pts[0].Y))
	for _, q := range pts[1:] {
		f.Line(rasterx.ToFixedP(q.X, q.Y))
	}
	f.Stop(true)
	f.Draw()
	f.Clear()
}

func (p *painter) fillCircle(c geom.Point, r float64, col color.Color) {
	if r <= 0 {
		return
	}
	f := p.filler
	f.Clear()
	f.SetColor(col)
	rasterx.AddCircle(c.X, c.Y, r, f)
	f.Draw()
	f.Clear()
}

// corners returns the four corners of r rotated by rot radians about center.
func corners(r geom.Rect, center geom.Point, rot float64) []geom.Point {
	pts := []geom.Point{
		geom.Pt(r.X, r.Y),
		geom.Pt(r.X+r.W, r.Y),
		geom.Pt(r.X+r.W, r.Y+r.H),
		geom.Pt(r.X, r.Y+r.H),
	}
	for i := range pts {
		pts[i] = geom.Rotate(pts[i], center, rot)
	}
	return pts
}

// roundRect approximates a rounded rectangle with quarter arcs.
func roundRect(r geom.Rect, radius float64) []geom.Point {
	radius = math.Min(radius, math.Min(r.W, r.H)/2)
	const steps = 6
	centers := []geom.Point{
		geom.Pt(r.X+r.W-radius, r.Y+radius),
		geom.Pt(r.X+r.W-radius, r.Y+r.H-radius),
		geom.Pt(r.X+radius, r.Y+r.H-radius),
		geom.Pt(r.X+radius, r.Y+radius),
	}
	pts := make([]geom.Point, 0, 4*(steps+1))
	for i, c := range centers {
		start := -math.Pi/2 + float64(i)*math.Pi/2
		for s := 0; s <= steps; s++ {
			a := start + float64(s)*(math.Pi/2)/steps
			pts = append(pts, geom.Pt(c.X+radius*math.Cos(a), c.Y+radius*math.Sin(a)))
		}
	}
	return pts
}

// fade returns c as a straight alpha color with its alpha multiplied by a.
func fade(c color.RGBA, a float64) color.NRGBA {
	a = math.Max(0, math.Min(1, a))
	return color.NRGBA{c.R, c.G, c.B, uint8(float64(c.A)*a + 0.5)}
}

// fadeImage scales every channel of the premultiplied img by a.
func fadeImage(img *image.RGBA, a float64) {
	if a >= 1 {
		return
	}
	for i := range img.Pix {
		img.Pix[i] = uint8(float64(img.Pix[i])*a + 0.5)
	}
}
