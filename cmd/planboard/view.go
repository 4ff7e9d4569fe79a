package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/example/planboard/internal/appstate"
	"github.com/example/planboard/internal/board"
	"github.com/example/planboard/internal/discovery"
	"github.com/example/planboard/internal/store"
)

type viewCmd struct {
	*root
	fs            *flag.FlagSet
	server        string
	database      string
	floor         string
	user          string
	readOnly      bool
	discover      bool
	sandbox       bool
	images        floorSpec
	phase         string
	slot          string
	slots         string
	hideLandscape bool
}

func (v *viewCmd) FlagSet() *flag.FlagSet { return v.fs }

func (v *viewCmd) Program() string { return v.root.program + " view" }

func parseViewCmd(args []string, r *root) (*viewCmd, error) {
	v := &viewCmd{root: r}
	fs := flag.NewFlagSet("view", flag.ContinueOnError)
	fs.StringVar(&v.server, "server", "", "server base URL")
	fs.StringVar(&v.database, "database", "", "open a database directly instead of a server")
	fs.StringVar(&v.floor, "floor", "", "floor id or name to open first")
	fs.StringVar(&v.user, "user", "", "participant id shown to others")
	fs.BoolVar(&v.readOnly, "read-only", false, "view without editing")
	fs.BoolVar(&v.discover, "discover", false, "look for a server on the local network")
	fs.BoolVar(&v.sandbox, "sandbox", false, "keep all changes in memory")
	fs.Var(&v.images, "image", "sandbox floor as name=image; repeatable")
	fs.StringVar(&v.phase, "phase", "", "active phase")
	fs.StringVar(&v.slot, "slot", "", "operator slot new draws belong to")
	fs.StringVar(&v.slots, "slots", "", "comma separated operator slots to show")
	fs.BoolVar(&v.hideLandscape, "hide-landscape", false, "hide draws that belong to no slot")
	fs.Usage = usageFunc(v)
	v.fs = fs
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	switch fs.NArg() {
	case 0:
	case 1:
		server, floor, err := parseShareLink(fs.Arg(0))
		if err != nil {
			return nil, &UsageError{of: v, msg: err.Error()}
		}
		v.server, v.floor = server, floor
	default:
		return nil, &UsageError{of: v, msg: "too many arguments"}
	}
	if v.sandbox && len(v.images) == 0 {
		return nil, &UsageError{of: v, msg: "-sandbox needs at least one -image"}
	}
	if !v.sandbox {
		if v.server == "" && v.database == "" && !v.discover {
			v.server = r.config.Server
		}
		if v.server == "" && v.database == "" && !v.discover {
			v.database = r.config.Database
		}
	}
	if v.user == "" {
		v.user = r.config.User
	}
	return v, nil
}

// visibleSlots parses the -slots list. An empty list shows every slot.
func visibleSlots(list string) map[string]bool {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	out := map[string]bool{}
	for _, s := range strings.Split(list, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out[s] = true
		}
	}
	return out
}

func (v *viewCmd) findServer(ctx context.Context) error {
	servers, err := discovery.Browse(ctx, 3*time.Second)
	if err != nil {
		return err
	}
	if len(servers) == 0 {
		return fmt.Errorf("no planboard server found on the local network")
	}
	v.server = servers[0].URL()
	log.Printf("using %s at %s", servers[0].Name, v.server)
	return nil
}

func (v *viewCmd) Run() error {
	ctx := context.Background()
	if v.discover && v.server == "" && !v.sandbox {
		if err := v.findServer(ctx); err != nil {
			return err
		}
	}
	be, err := openBackend(v.server, v.database, v.sandbox)
	if err != nil {
		return err
	}
	defer be.Close()

	for _, f := range v.images {
		if err := be.store.PutFloor(ctx, f); err != nil {
			return err
		}
	}
	floors, err := be.store.ListFloors(ctx)
	if err != nil {
		return fmt.Errorf("list floors: %w", err)
	}
	first, err := pickFloor(floors, v.floor)
	if err != nil {
		return err
	}

	var ui atomic.Pointer[appstate.AppState]
	rl := &relay{}
	defer rl.Close()
	b := board.New(
		board.WithUserID(v.user),
		board.WithStore(be.store),
		board.WithTransport(rl),
		board.WithReadOnly(v.readOnly),
		board.WithLimits(v.config.Canvas.Limits()),
		board.WithSettings(v.config.Canvas.Settings()),
		board.WithOnChange(func() { ui.Load().NotifyChanged() }),
		board.WithOnPeerJoin(v.notifier.PeerJoined),
	)
	defer b.Close()
	b.SetPhase(v.phase)
	b.SetSlot(v.slot)
	b.SetVisibleSlots(visibleSlots(v.slots))
	b.SetHideLandscape(v.hideLandscape)

	open := floorOpener(b, be, rl, b.UserID())
	if err := open(ctx, floors[first]); err != nil {
		return fmt.Errorf("open floor %s: %w", floors[first].ID, err)
	}

	opts := []appstate.Option{
		appstate.WithBoard(b),
		appstate.WithFloors(floors, open),
		appstate.WithTheme(v.activeTheme),
		appstate.WithExportDir(v.config.ExportDir),
		appstate.WithSandbox(v.sandbox),
		appstate.WithNotifier(v.notifier),
	}
	if be.server != "" {
		server := be.server
		opts = append(opts, appstate.WithShareURL(func(f store.Floor) (string, error) {
			return shareLink(server, f), nil
		}))
	}
	app := appstate.New(opts...)
	ui.Store(app)
	app.Run()
	return nil
}
