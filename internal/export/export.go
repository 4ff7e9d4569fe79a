// Package export writes a floor and its draws to PNG, PDF or GeoJSON.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/geom"
	"github.com/example/planboard/internal/render"
)

// Format is an output file format.
type Format string

const (
	FormatPNG     Format = "png"
	FormatPDF     Format = "pdf"
	FormatGeoJSON Format = "geojson"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".pdf":
		return FormatPDF, nil
	case ".geojson", ".json":
		return FormatGeoJSON, nil
	}
	return "", fmt.Errorf("unsupported export format %q", filepath.Ext(path))
}

// Board is what gets exported.
type Board struct {
	Title  string
	Floor  image.Image
	Width  float64
	Height float64
	Draws  []drawing.Draw
	Filter drawing.Filter
}

// size returns the content size, falling back to the floor image and then to
// the extent of the draws.
func (b Board) size() (int, int) {
	w, h := b.Width, b.Height
	if (w <= 0 || h <= 0) && b.Floor != nil {
		w, h = float64(b.Floor.Bounds().Dx()), float64(b.Floor.Bounds().Dy())
	}
	if w <= 0 || h <= 0 {
		for _, d := range b.Draws {
			if r, ok := d.Bounds(); ok {
				w = math.Max(w, r.X+r.W)
				h = math.Max(h, r.Y+r.H)
			}
		}
	}
	return int(math.Max(1, math.Ceil(w))), int(math.Max(1, math.Ceil(h)))
}

// Snapshot renders b at one content unit per pixel without ownership
// dimming.
func Snapshot(r *render.Renderer, b Board) *image.RGBA {
	w, h := b.size()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	r.Paint(dst, &render.Scene{
		Floor:     b.Floor,
		ContentW:  float64(w),
		ContentH:  float64(h),
		Transform: geom.Transform{Scale: 1},
		Draws:     b.Draws,
		Filter:    b.Filter,
	})
	return dst
}

// WritePNG encodes the snapshot of b.
func WritePNG(w io.Writer, r *render.Renderer, b Board) error {
	if err := png.Encode(w, Snapshot(r, b)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// WritePDF places the snapshot of b on one A4 page, fitted inside the
// margins, with the title above it.
func WritePDF(w io.Writer, r *render.Renderer, b Board) error {
	img := Snapshot(r, b)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	orientation := "P"
	if img.Bounds().Dx() > img.Bounds().Dy() {
		orientation = "L"
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetTitle(b.Title, true)
	pdf.AddPage()
	left, top, right, bottom := pdf.GetMargins()
	pageW, pageH := pdf.GetPageSize()
	if b.Title != "" {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.Text(left, top+5, b.Title)
		top += 10
	}
	availW, availH := pageW-left-right, pageH-top-bottom
	iw, ih := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	scale := math.Min(availW/iw, availH/ih)
	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("board", opt, &buf)
	pdf.ImageOptions("board", left, top, iw*scale, ih*scale, false, opt, 0, "")
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// Write encodes b in format f.
func Write(w io.Writer, f Format, r *render.Renderer, b Board) error {
	switch f {
	case FormatPNG:
		return WritePNG(w, r, b)
	case FormatPDF:
		return WritePDF(w, r, b)
	case FormatGeoJSON:
		return WriteGeoJSON(w, b)
	}
	return fmt.Errorf("unsupported export format %q", f)
}

// Save writes b to path in the format named by its extension.
func Save(path string, r *render.Renderer, b Board) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(file, f, r, b); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
