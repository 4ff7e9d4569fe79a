package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/store"
)

// Client is a store.Store backed by a remote Handler.
type Client struct {
	base string
	http *http.Client
}

// NewClient returns a client for the server at base, e.g.
// "http://localhost:8080".
func NewClient(base string) *Client {
	return &Client{
		base: strings.TrimSuffix(base, "/"),
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// Base returns the server URL.
func (c *Client) Base() string { return c.base }

// FloorImageURL returns the URL the floor's local image is served on.
func (c *Client) FloorImageURL(floorID string) string {
	return c.base + "/api/floors/" + url.PathEscape(floorID) + "/image"
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s %s: encode: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var e errorBody
		json.NewDecoder(resp.Body).Decode(&e)
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%s %s: %s: %w", method, path, e.Error, store.ErrNotFound)
		}
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, e.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}

func floorPath(id string) string { return "/api/floors/" + url.PathEscape(id) }

func (c *Client) CreateDraws(ctx context.Context, floorID string, draws []drawing.Draw) ([]drawing.Draw, error) {
	var out []drawing.Draw
	if err := c.do(ctx, http.MethodPost, floorPath(floorID)+"/draws", draws, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateDraw(ctx context.Context, id string, p drawing.Patch) (drawing.Draw, error) {
	var out drawing.Draw
	if err := c.do(ctx, http.MethodPatch, "/api/draws/"+url.PathEscape(id), p, &out); err != nil {
		return drawing.Draw{}, err
	}
	return out, nil
}

func (c *Client) DeleteDraws(ctx context.Context, ids []string) error {
	return c.do(ctx, http.MethodDelete, "/api/draws", deleteBody{IDs: ids}, nil)
}

func (c *Client) ListDraws(ctx context.Context, floorID string) ([]drawing.Draw, error) {
	var out []drawing.Draw
	if err := c.do(ctx, http.MethodGet, floorPath(floorID)+"/draws", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListFloors(ctx context.Context) ([]store.Floor, error) {
	var out []store.Floor
	if err := c.do(ctx, http.MethodGet, "/api/floors", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PutFloor(ctx context.Context, f store.Floor) error {
	if f.ID == "" {
		return fmt.Errorf("put floor: empty id")
	}
	return c.do(ctx, http.MethodPut, floorPath(f.ID), f, nil)
}

var _ store.Store = (*Client)(nil)
