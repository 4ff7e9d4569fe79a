package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/example/planboard/internal/discovery"
)

type floorsCmd struct {
	*root
	fs       *flag.FlagSet
	server   string
	database string
	discover bool
	timeout  time.Duration
	add      floorSpec
}

func (c *floorsCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *floorsCmd) Program() string { return c.root.program + " floors" }

func parseFloorsCmd(args []string, r *root) (*floorsCmd, error) {
	c := &floorsCmd{root: r}
	fs := flag.NewFlagSet("floors", flag.ContinueOnError)
	fs.StringVar(&c.server, "server", r.config.Server, "server base URL")
	fs.StringVar(&c.database, "database", "", "read a database directly instead of a server")
	fs.BoolVar(&c.discover, "discover", false, "list servers on the local network instead of floors")
	fs.DurationVar(&c.timeout, "timeout", 3*time.Second, "how long to wait for network answers")
	fs.Var(&c.add, "add", "register a floor as name=image before listing; repeatable")
	fs.Usage = usageFunc(c)
	c.fs = fs
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, &UsageError{of: c, msg: fmt.Sprintf("unexpected argument %q", fs.Arg(0))}
	}
	if c.database == "" && c.server == "" {
		c.database = r.config.Database
	}
	if c.database != "" {
		c.server = ""
	}
	return c, nil
}

func (c *floorsCmd) Run() error {
	ctx := context.Background()
	if c.discover {
		return c.listServers(ctx)
	}
	be, err := openBackend(c.server, c.database, false)
	if err != nil {
		return err
	}
	defer be.Close()

	ctx, cancel := context.WithTimeout(ctx, c.timeout*10)
	defer cancel()
	for _, f := range c.add {
		if err := be.store.PutFloor(ctx, f); err != nil {
			return fmt.Errorf("register floor %s: %w", f.Name, err)
		}
	}
	floors, err := be.store.ListFloors(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSIZE\tIMAGE")
	for _, f := range floors {
		size := "-"
		if f.Width > 0 && f.Height > 0 {
			size = fmt.Sprintf("%dx%d", f.Width, f.Height)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.ID, f.Name, size, f.Image)
	}
	return w.Flush()
}

func (c *floorsCmd) listServers(ctx context.Context) error {
	servers, err := discovery.Browse(ctx, c.timeout)
	if err != nil {
		return err
	}
	if len(servers) == 0 {
		fmt.Fprintln(os.Stderr, "no servers found")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tURL\tINFO")
	for _, s := range servers {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, s.URL(), strings.Join(s.Info, " "))
	}
	return w.Flush()
}
