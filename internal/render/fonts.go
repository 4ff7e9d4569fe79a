package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	minFaceSize = 4
	maxFaceSize = 512
)

var (
	fontOnce sync.Once
	goFont   *opentype.Font
	fontErr  error
	faces    sync.Map // map[float64]font.Face
)

func regular() (*opentype.Font, error) {
	fontOnce.Do(func() {
		goFont, fontErr = opentype.Parse(goregular.TTF)
	})
	return goFont, fontErr
}

// faceForSize returns a cached goregular face. Sizes are rounded to half
// points so that zooming does not grow the cache without bound.
func faceForSize(size float64) (font.Face, error) {
	size = math.Round(size*2) / 2
	size = math.Max(minFaceSize, math.Min(maxFaceSize, size))
	if face, ok := faces.Load(size); ok {
		return face.(font.Face), nil
	}
	f, err := regular()
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("font face: %w", err)
	}
	actual, _ := faces.LoadOrStore(size, face)
	return actual.(font.Face), nil
}

// MeasureText returns the advance width and the ascent and descent of text
// at size.
func MeasureText(text string, size float64) (width, ascent, descent int, err error) {
	face, err := faceForSize(size)
	if err != nil {
		return 0, 0, 0, err
	}
	m := face.Metrics()
	width = font.MeasureString(face, text).Ceil()
	return width, m.Ascent.Ceil(), m.Descent.Ceil(), nil
}

// DrawText renders text with its baseline starting at (x, y).
func DrawText(img draw.Image, x, y float64, text string, col color.Color, size float64) error {
	face, err := faceForSize(size)
	if err != nil {
		return err
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)},
	}
	d.DrawString(text)
	return nil
}
