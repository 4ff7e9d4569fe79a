package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/example/planboard/internal/clipboard"
	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/export"
	"github.com/example/planboard/internal/render"
)

type renderCmd struct {
	*root
	fs        *flag.FlagSet
	server    string
	database  string
	floor     string
	output    string
	phase     string
	clipboard bool
}

func (c *renderCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *renderCmd) Program() string { return c.root.program + " render" }

func parseRenderCmd(args []string, r *root) (*renderCmd, error) {
	c := &renderCmd{root: r}
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.StringVar(&c.server, "server", r.config.Server, "server base URL")
	fs.StringVar(&c.database, "database", "", "read a database directly instead of a server")
	fs.StringVar(&c.floor, "floor", "", "floor id or name (default first floor)")
	fs.StringVar(&c.output, "o", "", "output file: .png, .pdf or .geojson")
	fs.StringVar(&c.phase, "phase", "", "only include draws of this phase")
	fs.BoolVar(&c.clipboard, "clipboard", false, "copy the image to the clipboard")
	fs.Usage = usageFunc(c)
	c.fs = fs
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, &UsageError{of: c, msg: fmt.Sprintf("unexpected argument %q", fs.Arg(0))}
	}
	if c.output == "" && !c.clipboard {
		return nil, &UsageError{of: c, msg: "nothing to do: give -o or -clipboard"}
	}
	if c.output != "" {
		if _, err := export.FormatFor(c.output); err != nil {
			return nil, &UsageError{of: c, msg: err.Error()}
		}
	}
	if c.database == "" && c.server == "" {
		c.database = r.config.Database
	}
	if c.database != "" {
		c.server = ""
	}
	return c, nil
}

// iconURLs lists the icon images draws refer to.
func iconURLs(draws []drawing.Draw) []string {
	var urls []string
	for _, d := range draws {
		if ic, ok := d.Shape.(*drawing.Icon); ok && ic.URL != "" {
			urls = append(urls, ic.URL)
		}
	}
	return urls
}

func (c *renderCmd) board(ctx context.Context, be backend) (export.Board, error) {
	floors, err := be.store.ListFloors(ctx)
	if err != nil {
		return export.Board{}, fmt.Errorf("list floors: %w", err)
	}
	i, err := pickFloor(floors, c.floor)
	if err != nil {
		return export.Board{}, err
	}
	f := floors[i]
	draws, err := be.store.ListDraws(ctx, f.ID)
	if err != nil {
		return export.Board{}, fmt.Errorf("list draws: %w", err)
	}
	img, err := loadFloorImage(ctx, be, f)
	if err != nil {
		log.Printf("floor image %s: %v", f.ID, err)
	}
	title := f.Name
	if title == "" {
		title = f.ID
	}
	return export.Board{
		Title:  title,
		Floor:  img,
		Width:  float64(f.Width),
		Height: float64(f.Height),
		Draws:  draws,
		Filter: drawing.Filter{ActivePhase: c.phase},
	}, nil
}

func (c *renderCmd) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	be, err := openBackend(c.server, c.database, false)
	if err != nil {
		return err
	}
	defer be.Close()

	b, err := c.board(ctx, be)
	if err != nil {
		return err
	}
	icons := render.SharedIcons()
	icons.Preload(ctx, iconURLs(b.Draws)...)
	r := render.New(render.WithTheme(c.activeTheme), render.WithIcons(icons))

	if c.output != "" {
		if err := export.Save(c.output, r, b); err != nil {
			return err
		}
		c.notifier.Export(c.output)
		fmt.Println(c.output)
	}
	if c.clipboard {
		img := export.Snapshot(r, b)
		if err := clipboard.WriteImage(img); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		c.notifier.Copy(b.Title, img)
	}
	return nil
}
