package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/randalmurphal/hierafacts/config"
)

// ConfigCommand groups the settings subcommands.
type ConfigCommand struct {
	Show  ConfigShowCommand  `command:"show" description:"print every setting and where it came from"`
	Get   ConfigGetCommand   `command:"get" description:"print one setting"`
	Set   ConfigSetCommand   `command:"set" description:"save a setting"`
	Unset ConfigUnsetCommand `command:"unset" description:"remove a saved setting"`
}

// ConfigShowCommand prints the resolved settings.
type ConfigShowCommand struct {
	app *app
}

// Execute implements flags.Commander.
func (c *ConfigShowCommand) Execute(_ []string) error {
	resolver := c.app.resolver()
	cfg := resolver.Resolve(nil)

	w := tabwriter.NewWriter(c.app.stdout, 0, 0, 2, ' ', 0)
	for _, key := range config.ValidKeys {
		value, source := cfg.GetWithSource(key)
		fmt.Fprintf(w, "%s\t%s\t(%s)\n", key, value, source)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if path := resolver.GlobalPath(); path != "" {
		fmt.Fprintf(c.app.stdout, "\nglobal: %s\n", path)
	}
	if path := resolver.LocalPath(); path != "" {
		fmt.Fprintf(c.app.stdout, "local:  %s\n", path)
	}
	return nil
}

// ConfigGetCommand prints one resolved setting.
type ConfigGetCommand struct {
	Args struct {
		Key string `positional-arg-name:"key" required:"yes"`
	} `positional-args:"yes"`

	app *app
}

// Execute implements flags.Commander.
func (c *ConfigGetCommand) Execute(_ []string) error {
	if !config.IsValidKey(c.Args.Key) {
		return fmt.Errorf("unknown config key: %s", c.Args.Key)
	}
	fmt.Fprintln(c.app.stdout, c.app.resolver().Resolve(nil).Get(c.Args.Key))
	return nil
}

// ConfigSetCommand saves one setting.
type ConfigSetCommand struct {
	Local bool `long:"local" description:"write .hierafacts.yaml in the git root instead of the global config"`
	Args  struct {
		Key   string `positional-arg-name:"key" required:"yes"`
		Value string `positional-arg-name:"value" required:"yes"`
	} `positional-args:"yes"`

	app *app
}

// Execute implements flags.Commander.
func (c *ConfigSetCommand) Execute(_ []string) error {
	if err := c.app.resolver().Set(c.Args.Key, c.Args.Value, c.Local); err != nil {
		return err
	}
	fmt.Fprintf(c.app.stdout, "%s = %s\n", c.Args.Key, c.Args.Value)
	return nil
}

// ConfigUnsetCommand removes one saved setting.
type ConfigUnsetCommand struct {
	Local bool `long:"local" description:"edit .hierafacts.yaml in the git root"`
	Args  struct {
		Key string `positional-arg-name:"key" required:"yes"`
	} `positional-args:"yes"`

	app *app
}

// Execute implements flags.Commander.
func (c *ConfigUnsetCommand) Execute(_ []string) error {
	return c.app.resolver().Unset(c.Args.Key, c.Local)
}

func (a *app) resolver() *config.Resolver {
	return config.NewResolver(a.resolverOpts...)
}
