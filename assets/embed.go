// Package assets embeds the builtin icon set. Icons are stored as SVG and
// rasterized on demand.
package assets

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// AppIcon is the name of the application icon.
const AppIcon = "planboard"

//go:embed icons/*.svg
var embeddedIcons embed.FS

type iconKey struct {
	name string
	size int
}

var (
	mu     sync.Mutex
	images = map[iconKey]*image.RGBA{}
)

// Names lists the builtin icon names, excluding the application icon.
func Names() []string {
	entries, err := fs.ReadDir(embeddedIcons, "icons")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".svg")
		if name == AppIcon {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SVG returns a copy of the source of the named icon.
func SVG(name string) ([]byte, error) {
	data, err := embeddedIcons.ReadFile(path.Join("icons", name+".svg"))
	if err != nil {
		return nil, fmt.Errorf("icon %q not embedded", name)
	}
	return data, nil
}

// Icon returns the named icon rasterized to a size x size square. Results
// are cached; callers must not modify the returned image.
func Icon(name string, size int) (image.Image, error) {
	if size <= 0 {
		return nil, fmt.Errorf("icon %q: invalid size %d", name, size)
	}
	key := iconKey{name, size}
	mu.Lock()
	img, ok := images[key]
	mu.Unlock()
	if ok {
		return img, nil
	}
	data, err := SVG(name)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse icon %q: %w", name, err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))
	img = image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1)

	mu.Lock()
	images[key] = img
	mu.Unlock()
	return img, nil
}

// IconPNG returns the named icon encoded as PNG.
func IconPNG(name string, size int) ([]byte, error) {
	img, err := Icon(name, size)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode icon %q: %w", name, err)
	}
	return buf.Bytes(), nil
}
