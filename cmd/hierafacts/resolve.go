package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/randalmurphal/hierafacts/config"
	clierrors "github.com/randalmurphal/hierafacts/errors"
	"github.com/randalmurphal/hierafacts/facts"
	"github.com/randalmurphal/hierafacts/hiera"
)

// ResolveCommand resolves variables and prints a facts document.
type ResolveCommand struct {
	ConfigFile    string   `short:"c" long:"config" description:"hiera config file (hiera.yaml)"`
	Namespace     string   `short:"n" long:"namespace" description:"namespace joined to every variable with ::"`
	Scope         []string `short:"s" long:"scope" description:"scope variable as key=value (repeatable)"`
	ScopeFile     string   `long:"scope-file" description:"YAML file of scope variables"`
	Backend       string   `long:"backend" choice:"cli" choice:"bridge" description:"query hiera per variable (cli) or through the JSON bridge"`
	Exec          string   `long:"exec" description:"store command for the selected backend"`
	Concurrency   int      `long:"concurrency" description:"variables resolved at once"`
	FailFast      bool     `long:"fail-fast" description:"stop at the first failed variable"`
	Timeout       string   `long:"timeout" description:"time limit for the whole run (e.g. 30s)"`
	NoMergeArrays bool     `long:"no-merge-arrays" description:"return only the highest-priority array"`
	Request       string   `short:"r" long:"request" description:"YAML request file"`
	Check         bool     `long:"check" description:"validate the request without resolving"`
	Raw           bool     `long:"raw" description:"print {name: {defined, value}} instead of facts"`

	Args struct {
		Keys []string `positional-arg-name:"name[=fact]"`
	} `positional-args:"yes"`

	app    *app
	global *Options
}

// flagValues maps set flags onto config keys.
func (c *ResolveCommand) flagValues() map[string]string {
	values := map[string]string{
		config.KeyBackend:   c.Backend,
		config.KeyTimeout:   c.Timeout,
		config.KeyLogLevel:  c.global.LogLevel,
		config.KeyLogFormat: c.global.LogFormat,
	}
	if c.Concurrency != 0 {
		values[config.KeyConcurrency] = strconv.Itoa(c.Concurrency)
	}
	if c.FailFast {
		values[config.KeyFailFast] = "true"
	}
	if c.NoMergeArrays {
		values[config.KeyMergeArrays] = "false"
	}
	if c.Exec != "" {
		key := config.KeyHieraExec
		if c.Backend == config.BackendBridge {
			key = config.KeyBridgeExec
		}
		values[key] = c.Exec
	}
	return values
}

// request builds the request from the request file and the flags. Flags
// add keys and scope and override the config file.
func (c *ResolveCommand) request() (*facts.Request, error) {
	req := &facts.Request{AllowEmpty: true, Scope: map[string]string{}}
	if c.Request != "" {
		loaded, err := facts.LoadRequest(c.Request)
		if err != nil {
			return nil, err
		}
		req = loaded
	}

	if c.ConfigFile != "" {
		req.ConfigFile = c.ConfigFile
	}
	if c.ScopeFile != "" {
		req.ScopeFile = c.ScopeFile
	}
	for _, kv := range c.Scope {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: scope %q is not key=value", hiera.ErrInvalidRequest, kv)
		}
		req.Scope[key] = value
	}
	for _, arg := range c.Args.Keys {
		key, err := facts.ParseKey(arg)
		if err != nil {
			return nil, err
		}
		req.Keys = append(req.Keys, key)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := req.ExpandPaths(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(req.ConfigFile); err != nil {
		return nil, clierrors.NewConfigNotFoundError(req.ConfigFile)
	}
	return req, nil
}

// Execute implements flags.Commander.
func (c *ResolveCommand) Execute(_ []string) error {
	settings, logger, err := c.app.settings(c.flagValues())
	if err != nil {
		return err
	}

	req, err := c.request()
	if err != nil {
		return c.fail(err)
	}
	if c.Check {
		return c.print(facts.Success(nil))
	}

	opts := append(settings.HieraOptions(),
		hiera.WithNamespace(c.Namespace),
		hiera.WithLogger(logger),
		hiera.WithNotifier(newNotifier(logger, settings)),
	)

	var resolver hiera.Resolver
	switch settings.Backend {
	case config.BackendBridge:
		resolver, err = hiera.NewBridge(req.ConfigFile, append(opts,
			hiera.WithScope(req.Scope),
			hiera.WithScopeFile(req.ScopeFile),
		)...)
	default:
		var scope map[string]string
		if scope, err = facts.LoadScope(req.ScopeFile, req.Scope); err != nil {
			return c.fail(err)
		}
		resolver, err = hiera.NewSession(req.ConfigFile, append(opts, hiera.WithScope(scope))...)
	}
	if err != nil {
		return c.fail(err)
	}
	logger.Debug("resolving", "backend", settings.Backend, "config", req.ConfigFile, "keys", len(req.Keys))

	if c.Raw {
		batch, err := resolver.ResolveAll(c.app.ctx, facts.HieraNames(req.Keys))
		if batch != nil {
			if printErr := c.print(batch); printErr != nil {
				return printErr
			}
		}
		if err == nil {
			err = batch.Err()
		}
		if err != nil {
			fmt.Fprintf(c.app.stderr, "Error: %v\n", clierrors.WrapResolveError(err))
			return errReported
		}
		return nil
	}

	published, err := facts.Resolve(c.app.ctx, resolver, req.Keys)
	if err != nil {
		return c.fail(err)
	}
	return c.print(facts.Success(published))
}

// fail prints a failure document and reports the error on stderr.
func (c *ResolveCommand) fail(err error) error {
	wrapped := clierrors.WrapResolveError(err)
	fmt.Fprintf(c.app.stderr, "Error: %v\n", wrapped)
	if printErr := c.print(facts.Failure(err)); printErr != nil {
		return printErr
	}
	return errReported
}

func (c *ResolveCommand) print(v any) error {
	enc := json.NewEncoder(c.app.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
