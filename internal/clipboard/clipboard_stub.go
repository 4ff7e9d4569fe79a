//go:build !(linux || freebsd || openbsd || netbsd || dragonfly) && !((darwin || windows) && cgo)

package clipboard

const needsDisplay = false

type unsupported struct{}

func newBackend() backend { return unsupported{} }

func (unsupported) init() error               { return errUnsupported }
func (unsupported) writePNG([]byte) error     { return errUnsupported }
func (unsupported) writeText(string) error    { return errUnsupported }
func (unsupported) readText() (string, error) { return "", errUnsupported }
