package theme

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound reports a theme name that no search location provides.
var ErrNotFound = errors.New("theme not found")

const ext = ".theme"

// Loader resolves theme names against the embedded defaults and the user
// and system theme directories.
type Loader struct {
	ConfigDir string
	SystemDir string
}

// NewLoader returns a Loader using the standard planboard directories.
func NewLoader() *Loader {
	home, _ := os.UserHomeDir()
	return &Loader{
		ConfigDir: filepath.Join(home, ".config", "planboard", "themes"),
		SystemDir: "/usr/share/planboard/themes",
	}
}

// sources lists where a theme file name is searched, in priority order.
func (l *Loader) sources() []fs.FS {
	out := []fs.FS{mustSub(EmbeddedThemes, "defaults")}
	for _, dir := range []string{l.ConfigDir, l.SystemDir} {
		if dir != "" {
			out = append(out, os.DirFS(dir))
		}
	}
	return out
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// Load resolves name. An empty name is the default theme; a path to an
// existing file is parsed directly; anything else is looked up as a theme
// name in the embedded set, then ConfigDir, then SystemDir.
func (l *Loader) Load(name string) (*Theme, error) {
	if name == "" {
		return Default(), nil
	}
	if st, err := os.Stat(name); err == nil && !st.IsDir() {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return parseNamed(f, name)
	}

	file := name
	if !strings.HasSuffix(file, ext) {
		file += ext
	}
	if strings.ContainsAny(file, `/\`) {
		return nil, fmt.Errorf("theme %q: %w", name, ErrNotFound)
	}
	for _, src := range l.sources() {
		f, err := src.Open(file)
		if err != nil {
			continue
		}
		t, err := parseNamed(f, name)
		f.Close()
		return t, err
	}
	return nil, fmt.Errorf("theme %q: %w", name, ErrNotFound)
}

func parseNamed(r io.Reader, name string) (*Theme, error) {
	t, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("theme %q: %w", name, err)
	}
	return t, nil
}

// Available lists every theme name Load can resolve without a path.
func (l *Loader) Available() []string {
	seen := map[string]bool{}
	for _, src := range l.sources() {
		entries, err := fs.ReadDir(src, ".")
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ext) {
				seen[strings.TrimSuffix(e.Name(), ext)] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
