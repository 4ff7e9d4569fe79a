package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/example/planboard/internal/config"
	"github.com/example/planboard/internal/theme"
)

type configCmd struct {
	*root
	fs *flag.FlagSet
}

func (c *configCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *configCmd) Program() string { return c.root.program + " config" }

func parseConfigCmd(args []string, r *root) (*configCmd, error) {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	c := &configCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *configCmd) Run() error {
	switch sub := c.fs.Arg(0); sub {
	case "print":
		fmt.Print(c.config.String())
		return nil
	case "save":
		return c.runSave()
	case "path":
		path := config.NewLoader(version, c.configPath).GetConfigPath()
		if path == "" {
			path = config.UserPath() + " (not created)"
		}
		fmt.Println(path)
		return nil
	case "themes":
		return c.runThemes()
	default:
		return &UsageError{of: c, msg: "unknown config command: " + sub}
	}
}

// runSave writes the effective configuration back to the file it was read
// from, or to the per-user location.
func (c *configCmd) runSave() error {
	path := config.NewLoader(version, c.configPath).GetConfigPath()
	if path == "" {
		path = config.UserPath()
	}
	if err := config.Save(path, c.config); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Configuration saved to %s\n", path)
	return nil
}

func (c *configCmd) runThemes() error {
	names := theme.NewLoader().Available()
	for name := range c.config.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	last := ""
	for _, n := range names {
		if n == last {
			continue
		}
		last = n
		mark := " "
		if n == c.config.Theme {
			mark = "*"
		}
		fmt.Printf("%s %s\n", mark, n)
	}
	return nil
}
