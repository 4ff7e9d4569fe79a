package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/ephemeral"
	"github.com/example/planboard/internal/geom"
	"github.com/example/planboard/internal/theme"
)

var (
	testBackground = color.RGBA{10, 20, 30, 255}
	testLight      = color.RGBA{200, 200, 200, 255}
	testDark       = color.RGBA{100, 100, 100, 255}
)

func testRenderer() *Renderer {
	th := theme.Default()
	th.Background = testBackground
	th.CheckerLight = testLight
	th.CheckerDark = testDark
	return New(WithTheme(th), WithIcons(nil))
}

func testScene(draws ...drawing.Draw) *Scene {
	return &Scene{
		ContentW:  64,
		ContentH:  64,
		Transform: geom.Transform{Scale: 1},
		Draws:     draws,
		UserID:    "me",
		Now:       time.Unix(1000, 0),
	}
}

func paint(r *Renderer, s *Scene) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, 96, 96))
	r.Paint(dst, s)
	return dst
}

func filledRect(id, user string, x, y float64) drawing.Draw {
	return drawing.Draw{
		ID:     id,
		UserID: user,
		Origin: geom.Pt(x, y),
		Shape:  &drawing.Rect{Width: 16, Height: 16, Filled: true, Color: "#0000FF"},
	}
}

func isChecker(c color.RGBA) bool { return c == testLight || c == testDark }

func near(a, b color.RGBA, tol int) bool {
	d := func(x, y uint8) bool { v := int(x) - int(y); return v <= tol && v >= -tol }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func TestBackgroundCheckerboard(t *testing.T) {
	dst := paint(testRenderer(), testScene())
	if got := dst.RGBAAt(0, 0); got != testLight {
		t.Errorf("(0,0) = %v, want light", got)
	}
	if got := dst.RGBAAt(8, 0); got != testDark {
		t.Errorf("(8,0) = %v, want dark", got)
	}
	if got := dst.RGBAAt(80, 80); got != testBackground {
		t.Errorf("outside content = %v, want background", got)
	}
}

func TestFloorImageIsScaled(t *testing.T) {
	floor := image.NewRGBA(image.Rect(0, 0, 4, 4))
	red := color.RGBA{255, 0, 0, 255}
	for i := 0; i < len(floor.Pix); i += 4 {
		copy(floor.Pix[i:], []uint8{255, 0, 0, 255})
	}
	s := testScene()
	s.Floor = floor
	s.ContentW, s.ContentH = 4, 4
	s.Transform = geom.Transform{Scale: 10, OffsetX: 5, OffsetY: 5}
	for _, interacting := range []bool{false, true} {
		s.Interacting = interacting
		dst := paint(testRenderer(), s)
		if got := dst.RGBAAt(25, 25); !near(got, red, 4) {
			t.Errorf("interacting=%v: floor pixel = %v", interacting, got)
		}
		if got := dst.RGBAAt(2, 2); got != testBackground {
			t.Errorf("interacting=%v: margin = %v", interacting, got)
		}
	}
}

func TestOtherUsersDrawsAreDimmed(t *testing.T) {
	s := testScene(filledRect("a", "me", 0, 0), filledRect("b", "peer", 32, 32))
	dst := paint(testRenderer(), s)
	if got := dst.RGBAAt(8, 8); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("own draw = %v", got)
	}
	got := dst.RGBAAt(40, 40)
	if got.B == 255 || got.R == 0 {
		t.Errorf("peer draw not dimmed: %v", got)
	}
}

func TestHiddenDrawsAreSkipped(t *testing.T) {
	deleted := filledRect("a", "me", 0, 0)
	deleted.Deleted = true
	phased := filledRect("b", "me", 32, 32)
	phased.PhaseID = "exec"
	s := testScene(deleted, phased)
	s.Filter = drawing.Filter{ActivePhase: "prep"}
	dst := paint(testRenderer(), s)
	for _, pt := range []image.Point{{8, 8}, {40, 40}} {
		if got := dst.RGBAAt(pt.X, pt.Y); !isChecker(got) {
			t.Errorf("%v = %v, want backdrop", pt, got)
		}
	}
}

func TestDraggedDrawShowsPreviewOnly(t *testing.T) {
	d := filledRect("a", "me", 0, 0)
	moved := d.Translate(32, 32)
	s := testScene(d)
	s.Preview.Draw = &moved
	s.Preview.DraggingID = "a"
	dst := paint(testRenderer(), s)
	if got := dst.RGBAAt(8, 8); !isChecker(got) {
		t.Errorf("original position = %v", got)
	}
	if got := dst.RGBAAt(40, 40); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("preview = %v", got)
	}
}

func TestSelectionOverlayUsesThemeColor(t *testing.T) {
	r := testRenderer()
	s := testScene(filledRect("a", "me", 40, 40))
	s.SelectedID = "a"
	dst := paint(r, s)
	sel := r.Theme().Selection
	// The rotate handle sits above the padded box at (48, 12).
	found := false
	for y := 4; y <= 20 && !found; y++ {
		for x := 40; x <= 56; x++ {
			if near(dst.RGBAAt(x, y), sel, 8) {
				found = true
				break
			}
		}
	}
	if !found {
		t.Fatalf("no selection colored pixel at the rotate handle")
	}
}

func TestIconFallbackGlyph(t *testing.T) {
	s := testScene(drawing.Draw{
		ID:     "i",
		UserID: "me",
		Origin: geom.Pt(32, 32),
		Shape:  &drawing.Icon{Size: 40, Glyph: "A", GlyphColor: "#FFFFFF", Background: "#00FF00"},
	})
	dst := paint(testRenderer(), s)
	if got := dst.RGBAAt(32, 15); got != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("icon background = %v", got)
	}
}

func TestRotatedTextIsDrawn(t *testing.T) {
	s := testScene(drawing.Draw{
		ID:       "t",
		UserID:   "me",
		Origin:   geom.Pt(16, 40),
		Rotation: 1.2,
		Shape:    &drawing.Text{Text: "WWWW", FontSize: 20, Color: "#000000"},
	})
	dst := paint(testRenderer(), s)
	dark := 0
	for y := 0; y < 96; y++ {
		for x := 0; x < 96; x++ {
			if c := dst.RGBAAt(x, y); c.R < 60 && c.G < 60 && c.B < 60 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Fatalf("rotated text left no ink")
	}
}

func TestPeerCursors(t *testing.T) {
	s := testScene()
	s.Cursors = []ephemeral.Cursor{
		{UserID: "peer", X: 20, Y: 20, Color: "#00FF00"},
		{UserID: "me", X: 44, Y: 44, Color: "#00FF00"},
	}
	dst := paint(testRenderer(), s)
	if got := dst.RGBAAt(20, 20); got != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("peer cursor = %v", got)
	}
	if got := dst.RGBAAt(44, 44); !isChecker(got) {
		t.Errorf("own cursor drawn: %v", got)
	}
}

func TestFadedLaserIsInvisible(t *testing.T) {
	s := testScene()
	stroke := ephemeral.Stroke{
		UserID: "peer",
		Points: []geom.Point{{X: 10, Y: 30}, {X: 50, Y: 30}},
		Color:  "#FF0000",
	}
	stroke.FadeStart = s.Now.Add(-ephemeral.FadeDuration)
	s.PeerFading = []ephemeral.Stroke{stroke}
	dst := paint(testRenderer(), s)
	if got := dst.RGBAAt(30, 30); !isChecker(got) {
		t.Errorf("expired stroke drawn: %v", got)
	}

	stroke.FadeStart = s.Now
	s.PeerFading = []ephemeral.Stroke{stroke}
	dst = paint(testRenderer(), s)
	if got := dst.RGBAAt(30, 30); got.R < 200 || got.G > 50 {
		t.Errorf("fresh stroke = %v", got)
	}
}

func TestApplyGlowPadsBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	red := color.RGBA{R: 255, A: 255}
	img.Set(5, 5, red)
	out := ApplyGlow(img, GlowOptions{Radius: 2, Opacity: 0.5, Color: red})
	if want := image.Rect(0, 0, 14, 14); !out.Image.Bounds().Eq(want) {
		t.Fatalf("bounds = %v, want %v", out.Image.Bounds(), want)
	}
	if out.Offset != image.Pt(2, 2) {
		t.Fatalf("offset = %v", out.Offset)
	}
	if got := out.Image.RGBAAt(7, 7); got != red {
		t.Errorf("source pixel = %v", got)
	}
	if out.Image.RGBAAt(8, 7).A == 0 {
		t.Errorf("no halo next to the source pixel")
	}
	if out.Image.RGBAAt(0, 0).A != 0 {
		t.Errorf("halo reached the far corner")
	}
}

func TestApplyGlowZeroOpacity(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	out := ApplyGlow(img, GlowOptions{Radius: 3})
	if out.Image != img {
		t.Fatalf("expected the input image back")
	}
}

func TestIconCacheRegistersOneRepaint(t *testing.T) {
	release := make(chan struct{})
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var fetches int32
	c := NewIconCache(FetcherFunc(func(ctx context.Context, url string) (image.Image, error) {
		atomic.AddInt32(&fetches, 1)
		<-release
		return img, nil
	}))

	var first, second int32
	done := make(chan struct{})
	var once sync.Once
	if got := c.Get("x", func() { atomic.AddInt32(&first, 1); once.Do(func() { close(done) }) }); got != nil {
		t.Fatalf("pending icon returned an image")
	}
	if got := c.Get("x", func() { atomic.AddInt32(&second, 1) }); got != nil {
		t.Fatalf("pending icon returned an image")
	}
	close(release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("repaint not called")
	}
	if got := c.Get("x", nil); got != img {
		t.Fatalf("loaded icon = %v", got)
	}
	if atomic.LoadInt32(&first) != 1 || atomic.LoadInt32(&second) != 0 {
		t.Errorf("repaints = %d, %d", first, second)
	}
	if atomic.LoadInt32(&fetches) != 1 {
		t.Errorf("fetches = %d", fetches)
	}
}

func TestIconCacheCachesFailure(t *testing.T) {
	var fetches int32
	boom := errors.New("boom")
	c := NewIconCache(FetcherFunc(func(ctx context.Context, url string) (image.Image, error) {
		atomic.AddInt32(&fetches, 1)
		return nil, boom
	}))
	c.Preload(context.Background(), "bad", "bad")
	if got := c.Get("bad", nil); got != nil {
		t.Fatalf("failed icon returned an image")
	}
	if !errors.Is(c.Err("bad"), boom) {
		t.Fatalf("err = %v", c.Err("bad"))
	}
	if n := atomic.LoadInt32(&fetches); n != 1 {
		t.Fatalf("fetches = %d", n)
	}
}

func TestPreloadWaitsForPendingGet(t *testing.T) {
	release := make(chan struct{})
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	c := NewIconCache(FetcherFunc(func(ctx context.Context, url string) (image.Image, error) {
		<-release
		return img, nil
	}))
	if got := c.Get("x", nil); got != nil {
		t.Fatalf("pending icon returned an image")
	}

	preloaded := make(chan struct{})
	go func() {
		c.Preload(context.Background(), "x")
		close(preloaded)
	}()
	select {
	case <-preloaded:
		t.Fatal("Preload returned before the pending load finished")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	select {
	case <-preloaded:
	case <-time.After(2 * time.Second):
		t.Fatal("Preload did not return")
	}
	if got := c.Get("x", nil); got != img {
		t.Fatalf("icon after preload = %v", got)
	}

	blocked := NewIconCache(FetcherFunc(func(ctx context.Context, url string) (image.Image, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}))
	blocked.Get("y", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	blocked.Preload(ctx, "y")
	if ctx.Err() == nil {
		t.Fatalf("Preload returned before its context ended")
	}
}

func TestBuiltinFetcher(t *testing.T) {
	img, err := DefaultFetcher{}.Fetch(context.Background(), BuiltinScheme+"flag")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if img.Bounds().Dx() != builtinIconSize {
		t.Fatalf("size = %d", img.Bounds().Dx())
	}
}
