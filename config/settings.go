package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/mattn/go-shellwords"
	"github.com/mitchellh/go-homedir"

	"github.com/randalmurphal/hierafacts/hiera"
)

// Settings is the typed form of a resolved configuration.
type Settings struct {
	HieraExec     []string
	BridgeExec    []string
	Backend       string
	Concurrency   int
	FailFast      bool
	Timeout       time.Duration
	MergeArrays   bool
	LogLevel      slog.Level
	LogFormat     string
	NotifyWebhook string
}

// Load converts resolved values into Settings. Every invalid value is
// reported, not just the first.
func Load(cfg *Resolved) (*Settings, error) {
	var (
		s    Settings
		errs *multierror.Error
		err  error
	)

	if s.HieraExec, err = ParseCommand(cfg.Get(KeyHieraExec)); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("%s: %w", KeyHieraExec, err))
	}
	if s.BridgeExec, err = ParseCommand(cfg.Get(KeyBridgeExec)); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("%s: %w", KeyBridgeExec, err))
	}

	s.Backend = cfg.Get(KeyBackend)
	if s.Backend != BackendCLI && s.Backend != BackendBridge {
		errs = multierror.Append(errs, fmt.Errorf("%s: must be %q or %q, got %q", KeyBackend, BackendCLI, BackendBridge, s.Backend))
	}

	if s.Concurrency, err = strconv.Atoi(cfg.Get(KeyConcurrency)); err != nil || s.Concurrency < 1 {
		errs = multierror.Append(errs, fmt.Errorf("%s: must be a positive integer, got %q", KeyConcurrency, cfg.Get(KeyConcurrency)))
	}
	if s.FailFast, err = strconv.ParseBool(cfg.Get(KeyFailFast)); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("%s: %w", KeyFailFast, err))
	}
	if s.Timeout, err = time.ParseDuration(cfg.Get(KeyTimeout)); err != nil || s.Timeout < 0 {
		errs = multierror.Append(errs, fmt.Errorf("%s: must be a non-negative duration, got %q", KeyTimeout, cfg.Get(KeyTimeout)))
	}
	if s.MergeArrays, err = strconv.ParseBool(cfg.Get(KeyMergeArrays)); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("%s: %w", KeyMergeArrays, err))
	}
	if err = s.LogLevel.UnmarshalText([]byte(cfg.Get(KeyLogLevel))); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("%s: %w", KeyLogLevel, err))
	}

	s.LogFormat = cfg.Get(KeyLogFormat)
	if s.LogFormat != "text" && s.LogFormat != "json" {
		errs = multierror.Append(errs, fmt.Errorf("%s: must be \"text\" or \"json\", got %q", KeyLogFormat, s.LogFormat))
	}
	s.NotifyWebhook = cfg.Get(KeyNotifyWebhook)

	if err := errs.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &s, nil
}

// ParseCommand splits a shell-style command line into argv and expands a
// leading "~" in the program path.
func ParseCommand(line string) ([]string, error) {
	argv, err := shellwords.Parse(strings.TrimSpace(line))
	if err != nil {
		return nil, err
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	if argv[0], err = homedir.Expand(argv[0]); err != nil {
		return nil, err
	}
	return argv, nil
}

// Executable returns the command for the selected backend.
func (s *Settings) Executable() []string {
	if s.Backend == BackendBridge {
		return s.BridgeExec
	}
	return s.HieraExec
}

// HieraOptions returns the resolver options these settings select.
func (s *Settings) HieraOptions() []hiera.Option {
	return []hiera.Option{
		hiera.WithExecutable(s.Executable()...),
		hiera.WithConcurrency(s.Concurrency),
		hiera.WithFailFast(s.FailFast),
		hiera.WithTimeout(s.Timeout),
		hiera.WithMergeArrays(s.MergeArrays),
	}
}

// ValidateValue checks a single value before it is saved.
func ValidateValue(key, value string) error {
	cfg := &Resolved{values: make(map[string]string), sources: make(map[string]Source)}
	for k, v := range Defaults {
		cfg.set(k, v, SourceDefault)
	}
	cfg.set(key, value, SourceFlag)
	_, err := Load(cfg)
	return err
}
