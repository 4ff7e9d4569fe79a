//go:build (linux || freebsd || openbsd || netbsd || dragonfly || darwin || windows) && cgo

package clipboard

import (
	"runtime"

	"golang.design/x/clipboard"
)

var needsDisplay = runtime.GOOS != "darwin" && runtime.GOOS != "windows"

type designBackend struct{}

func newBackend() backend { return designBackend{} }

func (designBackend) init() error { return clipboard.Init() }

func (designBackend) writePNG(data []byte) error {
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}

func (designBackend) writeText(text string) error {
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

func (designBackend) readText() (string, error) {
	return string(clipboard.Read(clipboard.FmtText)), nil
}
