package theme

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"reflect"
	"strings"

	"github.com/example/planboard/internal/drawing"
)

var rgbaType = reflect.TypeOf(color.RGBA{})

// Set assigns one theme key. Keys match field names case-insensitively and
// unknown keys are ignored so that newer theme files still load. Colors may
// be hex (#RGB, #RRGGBB, #RRGGBBAA) or CSS color names.
func (t *Theme) Set(key, value string) error {
	if strings.EqualFold(key, "Name") {
		t.Name = value
		return nil
	}
	v := reflect.ValueOf(t).Elem()
	f := v.FieldByNameFunc(func(name string) bool { return strings.EqualFold(name, key) })
	if !f.IsValid() || f.Type() != rgbaType {
		return nil
	}
	col, err := drawing.ParseColor(value)
	if err != nil {
		return fmt.Errorf("invalid color for key %s: %w", key, err)
	}
	f.Set(reflect.ValueOf(col))
	return nil
}

// Parse reads "Key: color" lines on top of the default theme. Blank lines,
// lines without a colon and # or // comments are skipped.
func Parse(r io.Reader) (*Theme, error) {
	t := Default()
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if err := t.Set(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
	}
	return t, sc.Err()
}
