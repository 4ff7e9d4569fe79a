package clipboard

import (
	"errors"
	"image"
	"sync"
	"testing"
)

type fakeBackend struct {
	png  []byte
	text string
}

func (f *fakeBackend) init() error                { return nil }
func (f *fakeBackend) writePNG(b []byte) error    { f.png = b; return nil }
func (f *fakeBackend) writeText(s string) error   { f.text = s; return nil }
func (f *fakeBackend) readText() (string, error)  { return f.text, nil }

func useBackend(t *testing.T, b backend) {
	t.Helper()
	prev := active
	active = b
	initOnce = sync.Once{}
	initErr = nil
	t.Cleanup(func() {
		active = prev
		initOnce = sync.Once{}
		initErr = nil
	})
}

func TestRoundTripThroughBackend(t *testing.T) {
	t.Setenv("DISPLAY", ":0")
	fake := &fakeBackend{}
	useBackend(t, fake)

	if err := WriteImage(image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatalf("WriteImage: %v", err)
	}
	if len(fake.png) < 8 || string(fake.png[1:4]) != "PNG" {
		t.Fatalf("backend got %d bytes of non-PNG data", len(fake.png))
	}
	if _, err := ReadText(); !errors.Is(err, errNoText) {
		t.Fatalf("empty ReadText err = %v", err)
	}
	if err := WriteText("http://host/floors/1"); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if got, err := ReadText(); err != nil || got != "http://host/floors/1" {
		t.Fatalf("ReadText = %q, %v", got, err)
	}
}

func TestEnsureInitWithoutDisplay(t *testing.T) {
	if !needsDisplay {
		t.Skip("backend does not use a display")
	}
	t.Setenv("DISPLAY", "")
	t.Setenv("WAYLAND_DISPLAY", "")
	useBackend(t, &fakeBackend{})

	if err := WriteText("hello world"); !errors.Is(err, errNoDisplay) {
		t.Fatalf("expected errNoDisplay, got %v", err)
	}
}
