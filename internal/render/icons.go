package render

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/example/planboard/assets"
)

const (
	// BuiltinScheme prefixes icon URLs served from the embedded set.
	BuiltinScheme = "builtin:"

	builtinIconSize = 128
	fetchTimeout    = 10 * time.Second
)

// Fetcher loads and decodes the image behind an icon URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (image.Image, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) (image.Image, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) (image.Image, error) { return f(ctx, url) }

// DefaultFetcher loads builtin icons, http(s) URLs and local files.
type DefaultFetcher struct {
	Client *http.Client
}

func (f DefaultFetcher) Fetch(ctx context.Context, url string) (image.Image, error) {
	switch {
	case strings.HasPrefix(url, BuiltinScheme):
		return assets.Icon(strings.TrimPrefix(url, BuiltinScheme), builtinIconSize)
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		client := f.Client
		if client == nil {
			client = http.DefaultClient
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch: %s", resp.Status)
		}
		img, _, err := image.Decode(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		return img, nil
	default:
		file, err := os.Open(strings.TrimPrefix(url, "file://"))
		if err != nil {
			return nil, err
		}
		defer file.Close()
		img, _, err := image.Decode(file)
		if err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		return img, nil
	}
}

type iconEntry struct {
	img     image.Image
	err     error
	pending bool
	repaint func()
	// done is closed once the load finishes.
	done chan struct{}
}

func newIconEntry(repaint func()) *iconEntry {
	return &iconEntry{pending: true, repaint: repaint, done: make(chan struct{})}
}

// IconCache loads icon images in the background and keeps them, or the
// failure, for the life of the process.
type IconCache struct {
	fetcher Fetcher

	mu      sync.Mutex
	entries map[string]*iconEntry
}

// NewIconCache returns an empty cache. A nil fetcher uses DefaultFetcher.
func NewIconCache(f Fetcher) *IconCache {
	if f == nil {
		f = DefaultFetcher{}
	}
	return &IconCache{fetcher: f, entries: map[string]*iconEntry{}}
}

var sharedIcons = NewIconCache(nil)

// SharedIcons returns the process wide cache.
func SharedIcons() *IconCache { return sharedIcons }

// Get returns the image for url, or nil while it is loading or after it
// failed. The first caller of a pending load registers repaint, which runs
// once when the load finishes.
func (c *IconCache) Get(url string, repaint func()) image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[url]
	if !ok {
		e = newIconEntry(repaint)
		c.entries[url] = e
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
			defer cancel()
			c.load(ctx, url, e)
		}()
		return nil
	}
	if e.pending {
		if e.repaint == nil {
			e.repaint = repaint
		}
		return nil
	}
	return e.img
}

func (c *IconCache) load(ctx context.Context, url string, e *iconEntry) {
	img, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		log.Printf("icon %s: %v", url, err)
	}
	c.mu.Lock()
	e.img, e.err, e.pending = img, err, false
	repaint := e.repaint
	e.repaint = nil
	close(e.done)
	c.mu.Unlock()
	if repaint != nil {
		repaint()
	}
}

// Preload fetches every url not yet cached and waits for the results,
// including loads already started by Get. Failures are cached like
// background loads.
func (c *IconCache) Preload(ctx context.Context, urls ...string) {
	var wg sync.WaitGroup
	var started []chan struct{}
	for _, url := range urls {
		if url == "" {
			continue
		}
		c.mu.Lock()
		e, ok := c.entries[url]
		if !ok {
			e = newIconEntry(nil)
			c.entries[url] = e
		}
		pending := e.pending
		c.mu.Unlock()
		if ok {
			if pending {
				started = append(started, e.done)
			}
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.load(ctx, url, e)
		}()
	}
	wg.Wait()
	for _, done := range started {
		select {
		case <-done:
		case <-ctx.Done():
			return
		}
	}
}

// Err returns the cached failure for url, if any.
func (c *IconCache) Err(url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[url]; ok {
		return e.err
	}
	return nil
}
