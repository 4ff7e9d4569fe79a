package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/example/planboard/internal/api"
	"github.com/example/planboard/internal/board"
	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/ephemeral"
	"github.com/example/planboard/internal/render"
	"github.com/example/planboard/internal/store"
	"github.com/example/planboard/internal/transport"
)

var errNoBackend = errors.New("no server or database given; use -server, -database or -sandbox")

// backend is where a session reads and writes floors.
type backend struct {
	store  store.Store
	server string
	close  func() error
}

func (b backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// openBackend picks the store for a session: an in-memory store for sandbox
// sessions, the REST API of a server, or a database opened directly.
func openBackend(server, database string, sandbox bool) (backend, error) {
	switch {
	case sandbox:
		return backend{store: store.NewMemory()}, nil
	case server != "":
		return backend{store: api.NewClient(server), server: server}, nil
	case database != "":
		g, err := store.OpenGorm(database)
		if err != nil {
			return backend{}, err
		}
		return backend{store: g, close: g.Close}, nil
	}
	return backend{}, errNoBackend
}

// pickFloor returns the index of the floor whose id or name matches want. An
// empty want selects the first floor.
func pickFloor(floors []store.Floor, want string) (int, error) {
	if len(floors) == 0 {
		return 0, errors.New("no floors")
	}
	if want == "" {
		return 0, nil
	}
	for i, f := range floors {
		if f.ID == want {
			return i, nil
		}
	}
	for i, f := range floors {
		if strings.EqualFold(f.Name, want) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("floor %q not found", want)
}

// parseShareLink splits a link of the form <server>/floors/<id> into the
// server base URL and the floor id.
func parseShareLink(link string) (server, floorID string, err error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", "", fmt.Errorf("parse link: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", "", fmt.Errorf("link %q: unsupported scheme", link)
	}
	i := strings.LastIndex(u.Path, "/floors/")
	if i < 0 {
		return "", "", fmt.Errorf("link %q has no floor", link)
	}
	floorID, err = url.PathUnescape(strings.Trim(u.Path[i+len("/floors/"):], "/"))
	if err != nil || floorID == "" {
		return "", "", fmt.Errorf("link %q has no floor", link)
	}
	u.Path = u.Path[:i]
	u.RawQuery, u.Fragment = "", ""
	return u.String(), floorID, nil
}

// shareLink is the inverse of parseShareLink.
func shareLink(server string, f store.Floor) string {
	return strings.TrimSuffix(server, "/") + "/floors/" + url.PathEscape(f.ID)
}

// floorImageURL returns where a session loads the background of f from.
func floorImageURL(b backend, f store.Floor) string {
	switch {
	case f.Image == "":
		return ""
	case strings.Contains(f.Image, "://"):
		return f.Image
	case b.server != "":
		return api.NewClient(b.server).FloorImageURL(f.ID)
	}
	return f.Image
}

func loadFloorImage(ctx context.Context, b backend, f store.Floor) (image.Image, error) {
	src := floorImageURL(b, f)
	if src == "" {
		return nil, nil
	}
	return render.DefaultFetcher{}.Fetch(ctx, src)
}

// floorSpec is a repeatable name=image flag describing a floor to register.
type floorSpec []store.Floor

func (s *floorSpec) String() string {
	names := make([]string, 0, len(*s))
	for _, f := range *s {
		names = append(names, f.Name+"="+f.Image)
	}
	return strings.Join(names, ",")
}

func (s *floorSpec) Set(v string) error {
	f, err := parseFloorSpec(v)
	if err != nil {
		return err
	}
	*s = append(*s, f)
	return nil
}

// parseFloorSpec reads "name=path" or a bare path whose base name becomes
// the floor name. The image size is read from the file header.
func parseFloorSpec(v string) (store.Floor, error) {
	name, path, ok := strings.Cut(v, "=")
	if !ok {
		path = v
		name = strings.TrimSuffix(filepath.Base(v), filepath.Ext(v))
	}
	if name == "" || path == "" {
		return store.Floor{}, fmt.Errorf("floor %q: want name=image", v)
	}
	f := store.Floor{ID: floorID(name), Name: name, Image: path}
	if strings.Contains(path, "://") {
		return f, nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return store.Floor{}, fmt.Errorf("floor %s: %w", name, err)
	}
	defer fh.Close()
	cfg, _, err := image.DecodeConfig(fh)
	if err != nil {
		return store.Floor{}, fmt.Errorf("floor %s: %w", name, err)
	}
	f.Width, f.Height = cfg.Width, cfg.Height
	return f, nil
}

func floorID(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + 'a' - 'A'
		}
		return '-'
	}, name)
}

// relay is the board's transport. It forwards to the connection of the
// current floor and drops messages while no connection is open.
type relay struct {
	mu     sync.Mutex
	client *transport.Client
}

func (r *relay) current() *transport.Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.client
}

// swap replaces the connection and closes the old one.
func (r *relay) swap(c *transport.Client) {
	r.mu.Lock()
	old := r.client
	r.client = c
	r.mu.Unlock()
	if old != nil {
		if err := old.Close(); err != nil {
			log.Printf("close floor connection: %v", err)
		}
	}
}

func (r *relay) Close() { r.swap(nil) }

func (r *relay) EmitCursor(c ephemeral.Cursor) {
	if cl := r.current(); cl != nil {
		cl.EmitCursor(c)
	}
}

func (r *relay) EmitLaser(s ephemeral.Stroke, final bool) {
	if cl := r.current(); cl != nil {
		cl.EmitLaser(s, final)
	}
}

func (r *relay) EmitCreated(d drawing.Draw) {
	if cl := r.current(); cl != nil {
		cl.EmitCreated(d)
	}
}

func (r *relay) EmitUpdated(id string, p drawing.Patch) {
	if cl := r.current(); cl != nil {
		cl.EmitUpdated(id, p)
	}
}

func (r *relay) EmitDeleted(ids []string) {
	if cl := r.current(); cl != nil {
		cl.EmitDeleted(ids)
	}
}

var _ board.Transport = (*relay)(nil)

// floorOpener loads a floor into b. With a server it first joins the floor's
// room so that no peer mutation between listing and joining is missed.
func floorOpener(b *board.Board, be backend, rl *relay, userID string) func(context.Context, store.Floor) error {
	return func(ctx context.Context, f store.Floor) error {
		if be.server != "" {
			c, err := transport.Dial(ctx, be.server, f.ID, userID)
			if err != nil {
				return err
			}
			c.Listen(b)
			rl.swap(c)
		}
		if err := b.LoadFloor(ctx, f); err != nil {
			return err
		}
		img, err := loadFloorImage(ctx, be, f)
		if err != nil {
			log.Printf("floor image %s: %v", f.ID, err)
			return nil
		}
		if img != nil {
			b.SetFloorImage(img)
		}
		return nil
	}
}
