package assets

import (
	"bytes"
	"image/png"
	"testing"
)

func TestNamesExcludeAppIcon(t *testing.T) {
	names := Names()
	if len(names) == 0 {
		t.Fatal("no builtin icons")
	}
	for _, n := range names {
		if n == AppIcon {
			t.Fatalf("app icon listed")
		}
	}
}

func TestIconRasterizes(t *testing.T) {
	img, err := Icon("objective", 32)
	if err != nil {
		t.Fatalf("icon: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 32 {
		t.Fatalf("bounds = %v", b)
	}
	_, _, _, a := img.At(16, 16).RGBA()
	if a == 0 {
		t.Fatalf("center pixel is transparent")
	}
	again, _ := Icon("objective", 32)
	if again != img {
		t.Errorf("icon not cached")
	}
}

func TestIconPNG(t *testing.T) {
	data, err := IconPNG(AppIcon, 48)
	if err != nil {
		t.Fatalf("png: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 48 {
		t.Fatalf("width = %d", img.Bounds().Dx())
	}
}

func TestUnknownIcon(t *testing.T) {
	if _, err := Icon("nope", 16); err == nil {
		t.Fatal("expected error")
	}
	if _, err := Icon("flag", 0); err == nil {
		t.Fatal("expected size error")
	}
}
