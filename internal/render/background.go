package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/example/planboard/internal/geom"
)

const checkerSize = 8

func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.RGBA) {
	rect = rect.Intersect(dst.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			c := dark
			if ((x/size)+(y/size))%2 == 0 {
				c = light
			}
			dst.SetRGBA(x, y, c)
		}
	}
}

// contentRect returns the screen rectangle covered by the content area.
func (s *Scene) contentRect() image.Rectangle {
	lo := s.toScreen(geom.Pt(0, 0))
	hi := s.toScreen(geom.Pt(s.ContentW, s.ContentH))
	return image.Rect(
		int(math.Floor(lo.X)), int(math.Floor(lo.Y)),
		int(math.Ceil(hi.X)), int(math.Ceil(hi.Y)),
	)
}

func (r *Renderer) paintBackground(dst *image.RGBA, s *Scene) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(r.theme.Background), image.Point{}, draw.Src)
	area := s.contentRect()
	if area.Empty() {
		return
	}
	drawCheckerboard(dst, area, checkerSize, r.theme.CheckerLight, r.theme.CheckerDark)
	if s.Floor == nil {
		return
	}
	var scaler xdraw.Scaler = xdraw.CatmullRom
	if s.Interacting {
		scaler = xdraw.ApproxBiLinear
	}
	scaler.Scale(dst, area, s.Floor, s.Floor.Bounds(), xdraw.Over, nil)
}
