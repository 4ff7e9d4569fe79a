package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/planboard/internal/theme"
)

func TestParse(t *testing.T) {
	input := `
theme = my_custom_theme
user = alice
server = "http://planner.local:8080"
export_dir = /tmp/plans

[canvas]
zoom_step = 0.25
zoom_max = 8
stroke_color = blue
stroke_width = 5

[notify]
export = true
copy = false
peers = true

[theme.my_custom_theme]
Background = #111111
Selection: #00FF00
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Theme != "my_custom_theme" {
		t.Errorf("theme = %q", cfg.Theme)
	}
	if cfg.User != "alice" || cfg.Server != "http://planner.local:8080" || cfg.ExportDir != "/tmp/plans" {
		t.Errorf("root = %+v", cfg)
	}
	if cfg.Canvas.ZoomStep != 0.25 || cfg.Canvas.ZoomMax != 8 || cfg.Canvas.ZoomMin != 0.1 {
		t.Errorf("canvas zoom = %+v", cfg.Canvas)
	}
	if cfg.Canvas.StrokeColor != "blue" || cfg.Canvas.StrokeWidth != 5 || cfg.Canvas.FontSize != 16 {
		t.Errorf("canvas pen = %+v", cfg.Canvas)
	}
	if cfg.Notify != (Notify{Export: true, Peers: true}) {
		t.Errorf("notify = %+v", cfg.Notify)
	}

	th, ok := cfg.Themes["my_custom_theme"]
	if !ok {
		t.Fatal("Expected theme 'my_custom_theme' to be loaded")
	}
	if th.Background.R != 0x11 || th.Background.G != 0x11 || th.Background.B != 0x11 {
		t.Errorf("Unexpected Background color: %+v", th.Background)
	}
	if th.Selection.G != 0xFF || th.Selection.R != 0 {
		t.Errorf("Unexpected Selection color: %+v", th.Selection)
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		"[canvas]\nzoom_step = fast\n",
		"[canvas]\nstroke_color = nope\n",
		"[notify]\nexport = maybe\n",
		"[theme.x]\nBackground = #12\n",
	} {
		if _, err := Parse(strings.NewReader(input)); err == nil {
			t.Errorf("Parse(%q) succeeded", input)
		}
	}
}

func TestCircular(t *testing.T) {
	input := `theme = dark
database = /var/lib/planboard/board.db

[canvas]
zoom_min = 0.5
font_size = 20

[notify]
export = true
copy = true

[theme.custom]
Name = custom
Background = #000000
Foreground = #FFFFFF
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}

	cfg2, err := Parse(strings.NewReader(cfg.String()))
	if err != nil {
		t.Fatalf("Circular parse failed: %v", err)
	}

	if cfg.Theme != cfg2.Theme || cfg.Database != cfg2.Database {
		t.Errorf("root mismatch: %+v vs %+v", cfg, cfg2)
	}
	if cfg.Canvas != cfg2.Canvas {
		t.Errorf("Canvas mismatch: %+v vs %+v", cfg.Canvas, cfg2.Canvas)
	}
	if cfg.Notify != cfg2.Notify {
		t.Errorf("Notify mismatch: %+v vs %+v", cfg.Notify, cfg2.Notify)
	}

	t1 := cfg.Themes["custom"]
	t2 := cfg2.Themes["custom"]
	if t1 == nil || t2 == nil {
		t.Fatalf("Custom theme missing in one config")
	}
	if *t1 != *t2 {
		t.Errorf("theme mismatch: %+v vs %+v", t1, t2)
	}
}

func TestCanvasFallbacks(t *testing.T) {
	c := Canvas{ZoomStep: -1, ZoomMin: 2, ZoomMax: 1, StrokeColor: "bogus"}
	l := c.Limits()
	if l.Step != 0.1 || l.Min != 2 || l.Max != 5 {
		t.Errorf("limits = %+v", l)
	}
	s := c.Settings()
	if s.Color != "#FF0000" || s.Width != 3 || s.FontSize != 16 {
		t.Errorf("settings = %+v", s)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	if err := os.WriteFile(".env", []byte("PLANBOARD_SERVER=http://from-dotenv:9000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PLANBOARD_USER", "bob")
	t.Setenv("PLANBOARD_ZOOM_MAX", "3")

	cfg := New()
	cfg.User = "alice"
	if err := LoadEnv(cfg); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("PLANBOARD_SERVER") })
	if cfg.User != "bob" {
		t.Errorf("user = %q", cfg.User)
	}
	if cfg.Server != "http://from-dotenv:9000" {
		t.Errorf("server = %q", cfg.Server)
	}
	if cfg.Canvas.ZoomMax != 3 {
		t.Errorf("zoom max = %v", cfg.Canvas.ZoomMax)
	}

	t.Setenv("PLANBOARD_FONT_SIZE", "huge")
	if err := LoadEnv(New()); err == nil {
		t.Errorf("expected error for bad float")
	}
}

func TestLoaderDevModeAndSave(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	cfg := New()
	cfg.Theme = "dark"
	if err := Save(filepath.Join(dir, ".planboardrc"), cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := NewLoader("dev", "").Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Theme != "dark" {
		t.Errorf("theme = %q", got.Theme)
	}
}

func TestResolveTheme(t *testing.T) {
	cfg := New()
	cfg.Theme = "mine"
	custom := theme.Default()
	custom.Name = "mine"
	cfg.Themes["mine"] = custom
	th, err := cfg.ResolveTheme(theme.NewLoader())
	if err != nil || th != custom {
		t.Fatalf("ResolveTheme = %v, %v", th, err)
	}
	cfg.Theme = "dark"
	th, err = cfg.ResolveTheme(theme.NewLoader())
	if err != nil || th.Name != "Dark" {
		t.Fatalf("embedded theme = %v, %v", th, err)
	}
}
