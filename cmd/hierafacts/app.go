package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jessevdk/go-flags"

	"github.com/randalmurphal/hierafacts/config"
	"github.com/randalmurphal/hierafacts/notify"
)

// errReported means the failure was already written to the output.
var errReported = errors.New("failure reported")

// app carries what every command shares.
type app struct {
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer

	// resolverOpts lets tests point the config layers at temp files.
	resolverOpts []config.ResolverOption
}

// Options are the global flags and the subcommands.
type Options struct {
	LogLevel  string `long:"log-level" description:"log level (debug, info, warn, error)"`
	LogFormat string `long:"log-format" choice:"text" choice:"json" description:"log format"`

	Resolve ResolveCommand `command:"resolve" description:"resolve hiera variables into facts"`
	Config  ConfigCommand  `command:"config" description:"show or change hierafacts settings"`
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, resolverOpts ...config.ResolverOption) int {
	a := &app{ctx: ctx, stdout: stdout, stderr: stderr, resolverOpts: resolverOpts}

	var opts Options
	opts.Resolve.app = a
	opts.Resolve.global = &opts
	opts.Config.Show.app = a
	opts.Config.Get.app = a
	opts.Config.Set.app = a
	opts.Config.Unset.app = a

	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "hierafacts"
	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, err)
			return 0
		}
		if errors.Is(err, errReported) {
			return 1
		}
		if errors.As(err, &flagsErr) {
			fmt.Fprintln(stderr, err)
			return 2
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// settings resolves the configuration layers with flag overrides.
func (a *app) settings(flagValues map[string]string) (*config.Settings, *slog.Logger, error) {
	bootstrap := slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	resolver := config.NewResolver(append([]config.ResolverOption{config.WithLogger(bootstrap)}, a.resolverOpts...)...)

	settings, err := config.Load(resolver.Resolve(flagValues))
	if err != nil {
		return nil, nil, err
	}
	return settings, newLogger(a.stderr, settings), nil
}

// newLogger writes logs to w so stdout carries only the JSON document.
func newLogger(w io.Writer, s *config.Settings) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: s.LogLevel}
	if s.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// newNotifier logs every event. When a webhook is configured it also receives
// batch outcomes and per-variable failures.
func newNotifier(logger *slog.Logger, s *config.Settings) notify.Notifier {
	notifiers := []notify.Notifier{notify.NewLogNotifier(logger)}
	if s.NotifyWebhook != "" {
		webhook := notify.NewWebhookNotifier(s.NotifyWebhook, nil).WithLogger(logger)
		notifiers = append(notifiers, notify.OnlyTypes(webhook,
			notify.EventBatchCompleted, notify.EventBatchFailed, notify.EventVarFailed))
	}
	return notify.NewMultiNotifier(notifiers...)
}
