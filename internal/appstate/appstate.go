// Package appstate hosts a board in a shiny window: it lays out the floor
// tabs, toolbar and status bar around the canvas, feeds pointer and key
// events to the board and paints frames on a worker goroutine.
package appstate

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"strings"
	"time"

	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/planboard/assets"
	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/render"
	"github.com/example/planboard/internal/store"
	"github.com/example/planboard/internal/theme"
	"github.com/example/planboard/internal/tools"
)

const (
	tabHeight    = 24
	bottomHeight = 24
	buttonHeight = 24
	swatchSize   = 16
	tabWidth     = 96
)

var toolbarWidth = 64

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

const messageSize = 32

// Palette lists the stroke colors offered in the toolbar.
var Palette = []string{
	"#000000", "#FFFFFF", "#FF0000", "#00FF00",
	"#0000FF", "#FFFF00", "#00FFFF", "#FF00FF",
	"#800000", "#008000", "#000080", "#808000",
	"#008080", "#800080", "#C0C0C0", "#808080",
}

// Widths lists the stroke widths offered for the drawing tools.
var Widths = []float64{1, 2, 3, 4, 6, 8}

// FontSizes lists the text sizes offered for the text tool.
var FontSizes = []float64{12, 16, 20, 24, 32}

type toolLabel struct {
	label string
	tool  tools.Tool
}

var toolLabels = []toolLabel{
	{"V:Select", tools.ToolSelect},
	{"P:Pen", tools.ToolPen},
	{"L:Line", tools.ToolLine},
	{"R:Rect", tools.ToolRect},
	{"T:Text", tools.ToolText},
	{"I:Icon", tools.ToolIcon},
	{"E:Erase", tools.ToolEraser},
	{"H:Pan", tools.ToolPan},
	{"O:Dot", tools.ToolLaserDot},
	{"G:Laser", tools.ToolLaserLine},
}

func init() {
	d := &font.Drawer{Face: basicfont.Face7x13}
	for _, lbl := range append([]string{"Planboard"}, labels()...) {
		if w := d.MeasureString(lbl).Ceil() + 8; w > toolbarWidth {
			toolbarWidth = w
		}
	}
}

func labels() []string {
	out := make([]string, len(toolLabels))
	for i, t := range toolLabels {
		out[i] = t.label
	}
	return out
}

// ButtonState describes the visual state of a widget.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
)

type widgetKind int

const (
	kindButton widgetKind = iota
	kindTab
	kindSwatch
	kindShortcut
	kindIcon
)

// widget is one laid-out piece of chrome. Layout happens on the event loop;
// the paint worker only reads the resulting values.
type widget struct {
	kind   widgetKind
	rect   image.Rectangle
	label  string
	fill   color.RGBA
	icon   image.Image
	active bool
	action string
}

func (w widget) state(hover bool) ButtonState {
	switch {
	case w.active:
		return StatePressed
	case hover:
		return StateHover
	}
	return StateDefault
}

func (w widget) draw(dst *image.RGBA, th *theme.Theme, state ButtonState) {
	bg := th.ButtonBackground
	switch state {
	case StateHover:
		bg = th.ButtonBackgroundHover
	case StatePressed:
		bg = th.ButtonBackgroundPress
	}
	switch w.kind {
	case kindSwatch:
		draw.Draw(dst, w.rect, image.NewUniform(w.fill), image.Point{}, draw.Src)
		if state == StateHover {
			draw.Draw(dst, w.rect, image.NewUniform(color.RGBA{255, 255, 255, 80}), image.Point{}, draw.Over)
		}
		if w.active {
			drawRect(dst, w.rect.Inset(-1), th.Selection, 2)
		}
		return
	case kindIcon:
		draw.Draw(dst, w.rect, image.NewUniform(bg), image.Point{}, draw.Src)
		if w.icon != nil {
			draw.Draw(dst, w.rect.Inset(2), w.icon, w.icon.Bounds().Min, draw.Over)
		}
		if w.active {
			drawRect(dst, w.rect, th.Selection, 1)
		}
		return
	}
	draw.Draw(dst, w.rect, image.NewUniform(bg), image.Point{}, draw.Src)
	if w.kind == kindShortcut {
		drawRect(dst, w.rect, th.ButtonBorder, 1)
	}
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.ButtonText), Face: basicfont.Face7x13,
		Dot: fixed.P(w.rect.Min.X+4, w.rect.Min.Y+w.rect.Dy()/2+5)}
	d.DrawString(w.label)
}

func drawRect(img *image.RGBA, rect image.Rectangle, col color.Color, thick int) {
	u := image.NewUniform(col)
	draw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+thick), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(rect.Min.X, rect.Max.Y-thick, rect.Max.X, rect.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+thick, rect.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(rect.Max.X-thick, rect.Min.Y, rect.Max.X, rect.Max.Y), u, image.Point{}, draw.Src)
}

// chromeInput is everything the chrome layout depends on.
type chromeInput struct {
	width, height int
	floors        []store.Floor
	current       int
	settings      tools.Settings
	readOnly      bool
	editing       bool
	zoom          float64
}

func canvasRect(width, height int) image.Rectangle {
	return image.Rect(toolbarWidth, tabHeight, width, height-bottomHeight)
}

// layoutChrome places the floor tabs, the toolbar and the status bar
// shortcuts.
func layoutChrome(in chromeInput) []widget {
	var out []widget

	x := toolbarWidth
	for i, f := range in.floors {
		name := f.Name
		if name == "" {
			name = f.ID
		}
		out = append(out, widget{
			kind:   kindTab,
			rect:   image.Rect(x, 0, x+tabWidth, tabHeight),
			label:  name,
			active: i == in.current,
			action: fmt.Sprintf("floor:%d", i),
		})
		x += tabWidth
	}

	y := tabHeight
	for _, t := range toolLabels {
		if in.readOnly && !t.tool.Laser() && t.tool != tools.ToolPan {
			continue
		}
		out = append(out, widget{
			kind:   kindButton,
			rect:   image.Rect(0, y, toolbarWidth, y+buttonHeight),
			label:  t.label,
			active: in.settings.Tool == t.tool,
			action: "tool:" + string(t.tool),
		})
		y += buttonHeight
	}

	y += 4
	cols := toolbarWidth / (swatchSize + 2)
	if cols < 1 {
		cols = 1
	}
	current := strings.ToUpper(in.settings.Color)
	for i, c := range Palette {
		px := 4 + (i%cols)*(swatchSize+2)
		py := y + (i/cols)*(swatchSize+2)
		out = append(out, widget{
			kind:   kindSwatch,
			rect:   image.Rect(px, py, px+swatchSize, py+swatchSize),
			fill:   drawing.MustColor(c, color.RGBA{A: 255}),
			active: c == current,
			action: "color:" + c,
		})
	}
	y += ((len(Palette)+cols-1)/cols)*(swatchSize+2) + 4

	switch t := in.settings.Tool; {
	case in.readOnly:
	case t.Drawing():
		for _, w := range Widths {
			out = append(out, widget{
				kind:   kindButton,
				rect:   image.Rect(0, y, toolbarWidth, y+swatchSize),
				label:  fmt.Sprintf("%gpx", w),
				active: w == in.settings.Width,
				action: fmt.Sprintf("width:%g", w),
			})
			y += swatchSize
		}
	case t == tools.ToolText:
		for _, s := range FontSizes {
			out = append(out, widget{
				kind:   kindButton,
				rect:   image.Rect(0, y, toolbarWidth, y+buttonHeight),
				label:  fmt.Sprintf("%gpt", s),
				active: s == in.settings.FontSize,
				action: fmt.Sprintf("font:%g", s),
			})
			y += buttonHeight
		}
	case t == tools.ToolIcon:
		const cell = 28
		iconCols := toolbarWidth / cell
		if iconCols < 1 {
			iconCols = 1
		}
		selected := ""
		if in.settings.Icon != nil {
			selected = strings.TrimPrefix(in.settings.Icon.URL, render.BuiltinScheme)
		}
		for i, name := range assets.Names() {
			img, err := assets.Icon(name, cell-4)
			if err != nil {
				log.Printf("icon %s: %v", name, err)
			}
			px := (i % iconCols) * cell
			py := y + (i/iconCols)*cell
			out = append(out, widget{
				kind:   kindIcon,
				rect:   image.Rect(px, py, px+cell, py+cell),
				label:  name,
				icon:   img,
				active: name == selected,
				action: "icon:" + name,
			})
		}
	}

	x = toolbarWidth + 4
	by := in.height - bottomHeight
	meas := &font.Drawer{Face: basicfont.Face7x13}
	for _, sc := range shortcutsFor(in) {
		w := meas.MeasureString(sc.label).Ceil()
		out = append(out, widget{
			kind:   kindShortcut,
			rect:   image.Rect(x-2, by+2, x+w+6, by+bottomHeight-2),
			label:  sc.label,
			action: sc.action,
		})
		x += w + 12
	}
	return out
}

type shortcut struct {
	label  string
	action string
}

func shortcutsFor(in chromeInput) []shortcut {
	zoom := fmt.Sprintf("+/-:zoom (%.0f%%)", in.zoom*100)
	if in.editing {
		return []shortcut{
			{"Enter:place", actionTextDone},
			{"Esc:cancel", actionTextCancel},
			{"^V:paste", actionPaste},
		}
	}
	out := []shortcut{}
	if !in.readOnly {
		out = append(out,
			shortcut{"^Z:undo", actionUndo},
			shortcut{"^Y:redo", actionRedo},
			shortcut{"Del:delete", actionDelete},
		)
	}
	out = append(out,
		shortcut{zoom, actionZoomReset},
		shortcut{"j/k:floor", actionNextFloor},
		shortcut{"^C:copy", actionCopy},
		shortcut{"^L:share", actionShare},
		shortcut{"^S:export", actionExport},
		shortcut{"Q:quit", actionQuit},
	)
	return out
}

// hitWidget returns the index of the widget under p, or -1.
func hitWidget(ws []widget, p image.Point) int {
	for i := len(ws) - 1; i >= 0; i-- {
		if p.In(ws[i].rect) {
			return i
		}
	}
	return -1
}

type paintState struct {
	width, height int
	scene         render.Scene
	widgets       []widget
	hover         int
	status        string
	message       string
	messageUntil  time.Time
}

func drawChrome(dst *image.RGBA, th *theme.Theme, st paintState) {
	draw.Draw(dst, image.Rect(0, 0, st.width, tabHeight), image.NewUniform(th.ToolbarBackground), image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(0, tabHeight, toolbarWidth, st.height-bottomHeight), image.NewUniform(th.ToolbarBackground), image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(0, st.height-bottomHeight, st.width, st.height), image.NewUniform(th.StatusBackground), image.Point{}, draw.Src)

	title := &font.Drawer{Dst: dst, Src: image.NewUniform(th.Foreground), Face: basicfont.Face7x13, Dot: fixed.P(4, 16)}
	title.DrawString("Planboard")

	for i, w := range st.widgets {
		w.draw(dst, th, w.state(i == st.hover))
	}

	if st.status != "" {
		meas := &font.Drawer{Face: basicfont.Face7x13}
		sw := meas.MeasureString(st.status).Ceil()
		d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.StatusText), Face: basicfont.Face7x13,
			Dot: fixed.P(st.width-sw-8, st.height-bottomHeight+16)}
		d.DrawString(st.status)
	}
}

func drawMessage(dst *image.RGBA, th *theme.Theme, width, height int, msg string) {
	wmsg, ascent, descent, err := render.MeasureText(msg, messageSize)
	if err != nil {
		log.Printf("message: %v", err)
		return
	}
	px := (width - wmsg) / 2
	py := (height-ascent-descent)/2 + ascent
	rect := image.Rect(px-8, py-ascent-8, px+wmsg+8, py+descent+8)
	bg := color.NRGBA{th.Background.R, th.Background.G, th.Background.B, 230}
	draw.Draw(dst, rect, image.NewUniform(bg), image.Point{}, draw.Over)
	drawRect(dst, rect, th.Foreground, 2)
	if err := render.DrawText(dst, float64(px), float64(py), msg, th.Foreground, messageSize); err != nil {
		log.Printf("message: %v", err)
	}
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, r *render.Renderer, st paintState) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()

	r.Paint(b.RGBA(), &st.scene)
	if ctx.Err() != nil {
		return
	}

	drawChrome(b.RGBA(), r.Theme(), st)
	if ctx.Err() != nil {
		return
	}

	if st.message != "" && time.Now().Before(st.messageUntil) {
		drawMessage(b.RGBA(), r.Theme(), st.width, st.height, st.message)
	}
	if ctx.Err() != nil {
		return
	}

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
