package theme

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseOverridesDefaults(t *testing.T) {
	th, err := Parse(strings.NewReader(`
# comment
Name: Sample
Background: #102030
Selection: red
Unknown: #ffffff
not a pair
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if th.Name != "Sample" {
		t.Errorf("name = %q", th.Name)
	}
	if th.Background != (color.RGBA{0x10, 0x20, 0x30, 0xff}) {
		t.Errorf("background = %v", th.Background)
	}
	if th.Selection != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("selection = %v", th.Selection)
	}
	if th.CheckerLight != Default().CheckerLight {
		t.Errorf("unset field lost its default: %v", th.CheckerLight)
	}
}

func TestParseBadColor(t *testing.T) {
	if _, err := Parse(strings.NewReader("Background: #zz")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoaderOrder(t *testing.T) {
	cfg := t.TempDir()
	sys := t.TempDir()
	write := func(dir, name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(cfg, "mine.theme", "Name: Mine\n")
	write(sys, "mine.theme", "Name: System\n")
	write(sys, "site.theme", "Name: Site\n")
	write(cfg, "dark.theme", "Name: Shadowed\n")

	l := &Loader{ConfigDir: cfg, SystemDir: sys}
	for name, want := range map[string]string{
		"":      "Default",
		"dark":  "Dark",
		"mine":  "Mine",
		"site":  "Site",
		"light": "Light",
	} {
		th, err := l.Load(name)
		if err != nil {
			t.Fatalf("Load(%q): %v", name, err)
		}
		if th.Name != want {
			t.Errorf("Load(%q).Name = %q, want %q", name, th.Name, want)
		}
	}

	path := filepath.Join(cfg, "mine.theme")
	if th, err := l.Load(path); err != nil || th.Name != "Mine" {
		t.Fatalf("Load(path) = %v, %v", th, err)
	}
	if _, err := l.Load("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing theme err = %v", err)
	}

	got := strings.Join(l.Available(), ",")
	if got != "dark,high-contrast,light,mine,site" {
		t.Errorf("Available = %s", got)
	}
}

func TestEmbeddedNames(t *testing.T) {
	if got := strings.Join(Names(), ","); got != "dark,high-contrast,light" {
		t.Fatalf("Names = %s", got)
	}
}
