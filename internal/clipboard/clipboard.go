// Package clipboard copies rendered floors and share links to the system
// clipboard and reads text back for the text tool.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"sync"
)

var (
	errNoDisplay   = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
	errUnsupported = errors.New("clipboard is not supported on this platform")
	errNoText      = errors.New("clipboard does not contain text data")
)

// backend is one system clipboard implementation.
type backend interface {
	init() error
	writePNG([]byte) error
	writeText(string) error
	readText() (string, error)
}

var (
	initOnce sync.Once
	initErr  error
	active   backend = newBackend()
)

func ensureInit() error {
	initOnce.Do(func() {
		if needsDisplay && os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			initErr = errNoDisplay
			return
		}
		initErr = active.init()
	})
	return initErr
}

// WriteImage encodes img as PNG and publishes it to the clipboard.
func WriteImage(img image.Image) error {
	if err := ensureInit(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode clipboard image: %w", err)
	}
	return active.writePNG(buf.Bytes())
}

// WriteText publishes text to the clipboard.
func WriteText(text string) error {
	if err := ensureInit(); err != nil {
		return err
	}
	return active.writeText(text)
}

// ReadText returns the UTF-8 text on the clipboard.
func ReadText() (string, error) {
	if err := ensureInit(); err != nil {
		return "", err
	}
	text, err := active.readText()
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", errNoText
	}
	return text, nil
}
