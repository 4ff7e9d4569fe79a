package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/example/planboard/internal/config"
	"github.com/example/planboard/internal/notify"
	"github.com/example/planboard/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs          *flag.FlagSet
	program     string
	notifier    *notify.Notifier
	config      *config.Config
	configPath  string
	exportAlert bool
	copyAlert   bool
	peerAlert   bool
	themeName   string
	activeTheme *theme.Theme
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	r := &root{
		fs:       flag.NewFlagSet("planboard", flag.ContinueOnError),
		program:  "planboard",
		notifier: notify.New(notify.LoadPreferences()),
		config:   config.New(),
	}
	r.fs.StringVar(&r.configPath, "config", configPathOverride, "configuration file to read")
	r.fs.StringVar(&r.themeName, "theme", "", "color theme: default, light, dark, high-contrast or a .theme file")
	r.fs.BoolVar(&r.exportAlert, "notify-export", false, "show a desktop notification after exporting a floor")
	r.fs.BoolVar(&r.copyAlert, "notify-copy", false, "show a desktop notification after copying to the clipboard")
	r.fs.BoolVar(&r.peerAlert, "notify-peers", false, "show a desktop notification when someone joins the floor")
	r.fs.Usage = usageFunc(r)
	return r
}

// loadConfig reads the config file and environment, then applies the root
// flags that were set explicitly.
func (r *root) loadConfig() {
	cfg, err := config.NewLoader(version, r.configPath).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}
	r.config = cfg

	set := map[string]bool{}
	r.fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["notify-export"] {
		r.exportAlert = cfg.Notify.Export
	}
	if !set["notify-copy"] {
		r.copyAlert = cfg.Notify.Copy
	}
	if !set["notify-peers"] {
		r.peerAlert = cfg.Notify.Peers
	}
	r.notifier.Enable(notify.EventExport, r.exportAlert)
	r.notifier.Enable(notify.EventCopy, r.copyAlert)
	r.notifier.Enable(notify.EventPeer, r.peerAlert)

	// Precedence: CLI > Env > Config > Default. LoadEnv already folded
	// PLANBOARD_THEME into cfg.Theme.
	if r.themeName != "" {
		cfg.Theme = r.themeName
	}
	t, err := cfg.ResolveTheme(theme.NewLoader())
	if err != nil {
		if cfg.Theme != "" && !strings.EqualFold(cfg.Theme, "default") {
			fmt.Fprintf(os.Stderr, "warning: failed to load theme %q: %v. using default.\n", cfg.Theme, err)
		}
		t = theme.Default()
	}
	r.activeTheme = t
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	r.loadConfig()

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "serve":
		cmd, err = parseServeCmd(subArgs, r)
	case "view":
		cmd, err = parseViewCmd(subArgs, r)
	case "render":
		cmd, err = parseRenderCmd(subArgs, r)
	case "floors":
		cmd, err = parseFloorsCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
			os.Exit(2)
		}
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
