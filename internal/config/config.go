// Package config reads the planboard RC file and its environment overrides.
package config

import (
	"fmt"
	"image/color"
	"reflect"
	"sort"
	"strings"

	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/theme"
	"github.com/example/planboard/internal/tools"
	"github.com/example/planboard/internal/viewport"
)

// Canvas holds the zoom and pen defaults applied when a board opens.
type Canvas struct {
	ZoomStep    float64
	ZoomMin     float64
	ZoomMax     float64
	StrokeColor string
	StrokeWidth float64
	FontSize    float64
}

// DefaultCanvas returns the stock canvas settings.
func DefaultCanvas() Canvas {
	return Canvas{
		ZoomStep:    viewport.DefaultZoomStep,
		ZoomMin:     viewport.DefaultZoomMin,
		ZoomMax:     viewport.DefaultZoomMax,
		StrokeColor: drawing.DefaultColor,
		StrokeWidth: drawing.DefaultLineWidth,
		FontSize:    drawing.DefaultFontSize,
	}
}

// Limits returns the zoom limits. Invalid values fall back to the defaults.
func (c Canvas) Limits() viewport.Limits {
	l := viewport.DefaultLimits()
	if c.ZoomStep > 0 {
		l.Step = c.ZoomStep
	}
	if c.ZoomMin > 0 {
		l.Min = c.ZoomMin
	}
	if c.ZoomMax >= l.Min {
		l.Max = c.ZoomMax
	}
	return l
}

// Settings returns the initial pen settings.
func (c Canvas) Settings() tools.Settings {
	s := tools.DefaultSettings()
	if _, err := drawing.ParseColor(c.StrokeColor); err == nil {
		s.Color = c.StrokeColor
	}
	if c.StrokeWidth > 0 {
		s.Width = c.StrokeWidth
	}
	if c.FontSize > 0 {
		s.FontSize = c.FontSize
	}
	return s
}

// Notify holds notification settings.
type Notify struct {
	Export bool
	Copy   bool
	Peers  bool
}

// Config holds the application configuration.
type Config struct {
	Theme     string
	User      string
	Server    string
	Database  string
	ExportDir string
	Jaeger    string
	Canvas    Canvas
	Notify    Notify
	Themes    map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Canvas: DefaultCanvas(),
		Themes: make(map[string]*theme.Theme),
	}
}

// ResolveTheme returns the named theme, looking at the config's own
// [theme.*] sections before the theme loader.
func (c *Config) ResolveTheme(l *theme.Loader) (*theme.Theme, error) {
	if t, ok := c.Themes[c.Theme]; ok {
		return t, nil
	}
	return l.Load(c.Theme)
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	root := []struct{ key, value string }{
		{"theme", c.Theme},
		{"user", c.User},
		{"server", c.Server},
		{"database", c.Database},
		{"export_dir", c.ExportDir},
		{"jaeger_endpoint", c.Jaeger},
	}
	for _, kv := range root {
		if kv.value != "" {
			fmt.Fprintf(&sb, "%s = %s\n", kv.key, kv.value)
		}
	}
	sb.WriteString("\n")

	sb.WriteString("[canvas]\n")
	fmt.Fprintf(&sb, "zoom_step = %v\n", c.Canvas.ZoomStep)
	fmt.Fprintf(&sb, "zoom_min = %v\n", c.Canvas.ZoomMin)
	fmt.Fprintf(&sb, "zoom_max = %v\n", c.Canvas.ZoomMax)
	fmt.Fprintf(&sb, "stroke_color = %s\n", c.Canvas.StrokeColor)
	fmt.Fprintf(&sb, "stroke_width = %v\n", c.Canvas.StrokeWidth)
	fmt.Fprintf(&sb, "font_size = %v\n", c.Canvas.FontSize)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	fmt.Fprintf(&sb, "peers = %v\n", c.Notify.Peers)
	sb.WriteString("\n")

	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		writeTheme(&sb, c.Themes[name])
		sb.WriteString("\n")
	}

	return sb.String()
}

// writeTheme lists every color field of t in declaration order.
func writeTheme(sb *strings.Builder, t *theme.Theme) {
	fmt.Fprintf(sb, "Name: %s\n", t.Name)
	val := reflect.ValueOf(t).Elem()
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		if c, ok := val.Field(i).Interface().(color.RGBA); ok {
			fmt.Fprintf(sb, "%s: %s\n", typ.Field(i).Name, drawing.FormatColor(c))
		}
	}
}
