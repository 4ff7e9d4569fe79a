package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/geom"
	"github.com/example/planboard/internal/store"
)

func newServer(t *testing.T) (*Client, *store.Memory, string) {
	t.Helper()
	mem := store.NewMemory()
	srv := httptest.NewServer(NewRouter(NewHandler(mem), nil))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/"), mem, srv.URL
}

func TestClientRoundTrip(t *testing.T) {
	c, mem, _ := newServer(t)
	ctx := context.Background()

	if err := c.PutFloor(ctx, store.Floor{ID: "f1", Name: "Ground", Width: 640, Height: 480}); err != nil {
		t.Fatalf("put floor: %v", err)
	}
	floors, err := c.ListFloors(ctx)
	if err != nil || len(floors) != 1 || floors[0].Name != "Ground" {
		t.Fatalf("floors = %+v, %v", floors, err)
	}

	created, err := c.CreateDraws(ctx, "f1", []drawing.Draw{{
		UserID: "u",
		Origin: geom.Pt(1, 1),
		Shape:  &drawing.Text{Text: "hi", FontSize: 20, Color: "#000000"},
	}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(created) != 1 || created[0].ID == "" || created[0].FloorID != "f1" {
		t.Fatalf("created = %+v", created)
	}
	id := created[0].ID

	rot := 1.5
	updated, err := c.UpdateDraw(ctx, id, drawing.Patch{Rotation: &rot})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Rotation != 1.5 {
		t.Errorf("rotation = %v", updated.Rotation)
	}

	list, err := c.ListDraws(ctx, "f1")
	if err != nil || len(list) != 1 {
		t.Fatalf("list = %+v, %v", list, err)
	}
	if txt, ok := list[0].Shape.(*drawing.Text); !ok || txt.Text != "hi" {
		t.Fatalf("shape = %+v", list[0].Shape)
	}

	if err := c.DeleteDraws(ctx, []string{id}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if left, _ := mem.ListDraws(ctx, "f1"); len(left) != 0 {
		t.Fatalf("server still has %d draws", len(left))
	}
	if list, err := c.ListDraws(ctx, "f1"); err != nil || len(list) != 0 {
		t.Fatalf("list after delete = %+v, %v", list, err)
	}
}

func TestClientNotFound(t *testing.T) {
	c, _, _ := newServer(t)
	_, err := c.UpdateDraw(context.Background(), "missing", drawing.Patch{})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateRejectsUnknownType(t *testing.T) {
	_, _, base := newServer(t)
	resp, err := http.Post(base+"/api/floors/f1/draws", "application/json",
		strings.NewReader(`[{"type":"hexagon","originX":0,"originY":0,"data":{}}]`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestFloorImage(t *testing.T) {
	c, mem, base := newServer(t)
	path := filepath.Join(t.TempDir(), "floor.png")
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	mem.PutFloor(context.Background(), store.Floor{ID: "f1", Image: path})
	mem.PutFloor(context.Background(), store.Floor{ID: "f2", Image: "https://example.com/x.png"})

	resp, err := http.Get(c.FloorImageURL("f1"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	resp, err = http.Get(base + "/api/floors/f2/image")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("remote image status = %d", resp.StatusCode)
	}
}

func TestRequestIDHeader(t *testing.T) {
	_, _, base := newServer(t)
	resp, err := http.Get(base + "/api/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("missing request id")
	}
}
