package render

import (
	"image"
	"image/color"
	"image/draw"
)

// GlowOptions configures the halo drawn around laser strokes.
type GlowOptions struct {
	Radius  int
	Opacity float64
	Color   color.RGBA
}

// GlowResult captures the output of ApplyGlow.
type GlowResult struct {
	// Image holds the halo with the original content composited on top.
	Image *image.RGBA
	// Offset is where the original top-left corner ended up inside Image.
	Offset image.Point
}

// DefaultGlowOptions returns the halo used for laser pointers of color c.
func DefaultGlowOptions(c color.RGBA) GlowOptions {
	return GlowOptions{Radius: 6, Opacity: 0.6, Color: c}
}

// ApplyGlow surrounds the opaque pixels of img with a blurred halo. The
// result has a zero origin and is padded by the radius on every side.
func ApplyGlow(img *image.RGBA, opts GlowOptions) GlowResult {
	if img == nil {
		return GlowResult{}
	}
	if img.Bounds().Empty() || opts.Opacity <= 0 {
		return GlowResult{Image: img}
	}
	opacity := opts.Opacity
	if opacity > 1 {
		opacity = 1
	}
	radius := opts.Radius
	if radius < 0 {
		radius = 0
	}

	src := img.Bounds()
	padded := src.Inset(-radius)
	mask := image.NewGray(padded.Sub(padded.Min))
	for y := src.Min.Y; y < src.Max.Y; y++ {
		for x := src.Min.X; x < src.Max.X; x++ {
			if a := img.RGBAAt(x, y).A; a != 0 {
				mask.SetGray(x-padded.Min.X, y-padded.Min.Y, color.Gray{Y: a})
			}
		}
	}
	blurred := blurGray(mask, radius)

	dst := image.NewRGBA(mask.Bounds())
	halo := opts.Color
	halo.A = uint8(opacity*255 + 0.5)
	draw.DrawMask(dst, dst.Bounds(), image.NewUniform(fade(halo, 1)), image.Point{}, blurred, image.Point{}, draw.Over)
	shift := src.Min.Sub(padded.Min)
	draw.Draw(dst, src.Sub(src.Min).Add(shift), img, src.Min, draw.Over)
	return GlowResult{Image: dst, Offset: shift}
}

// blurGray is a separable box blur using running sums per row and column.
func blurGray(src *image.Gray, radius int) *image.Gray {
	out := image.NewGray(src.Bounds())
	if radius <= 0 {
		copy(out.Pix, src.Pix)
		return out
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	tmp := image.NewGray(src.Bounds())
	boxPass(src.Pix, tmp.Pix, w, h, 1, src.Stride, radius)
	boxPass(tmp.Pix, out.Pix, h, w, tmp.Stride, 1, radius)
	return out
}

// boxPass averages n samples spaced step apart along each of lines lines,
// which start lineStride apart.
func boxPass(src, dst []uint8, n, lines, step, lineStride, radius int) {
	prefix := make([]int, n+1)
	for l := 0; l < lines; l++ {
		base := l * lineStride
		for i := 0; i < n; i++ {
			prefix[i+1] = prefix[i] + int(src[base+i*step])
		}
		for i := 0; i < n; i++ {
			lo, hi := i-radius, i+radius
			if lo < 0 {
				lo = 0
			}
			if hi >= n {
				hi = n - 1
			}
			dst[base+i*step] = uint8((prefix[hi+1] - prefix[lo]) / (hi - lo + 1))
		}
	}
}
