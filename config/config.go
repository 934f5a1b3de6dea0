package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Resolver merges settings from every layer.
// Priority (highest to lowest): flags > env > local > global > defaults.
type Resolver struct {
	globalPath string
	localPath  string
	gitRoot    string
	logger     *slog.Logger

	// Warnings collects non-fatal issues found while reading config files.
	Warnings []string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithGlobalPath overrides the global config file path.
func WithGlobalPath(path string) ResolverOption {
	return func(r *Resolver) {
		r.globalPath = path
	}
}

// WithLocalPath overrides the local config file path.
func WithLocalPath(path string) ResolverOption {
	return func(r *Resolver) {
		r.localPath = path
	}
}

// WithLogger sets where warnings are logged. Defaults to slog.Default().
func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a resolver using ~/.config/hierafacts/config.yaml
// and .hierafacts.yaml in the git root of the working directory.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{logger: slog.Default()}

	if root := findGitRoot("."); root != "" {
		r.gitRoot = root
		r.localPath = filepath.Join(root, LocalConfigName)
	}
	if home, err := homedir.Dir(); err == nil {
		r.globalPath = filepath.Join(home, ".config", GlobalConfigDir, GlobalConfigFile)
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) warn(msg string, args ...any) {
	r.Warnings = append(r.Warnings, msg)
	r.logger.Warn(msg, args...)
}

// Resolved holds the merged configuration.
type Resolved struct {
	values  map[string]string
	sources map[string]Source
}

// Get returns the value for a key, or empty string if not set.
func (c *Resolved) Get(key string) string {
	return c.values[key]
}

// Source returns the source of a key's value.
func (c *Resolved) Source(key string) Source {
	return c.sources[key]
}

// GetWithSource returns both the value and its source.
func (c *Resolved) GetWithSource(key string) (string, Source) {
	return c.values[key], c.sources[key]
}

// All returns a copy of all key-value pairs.
func (c *Resolved) All() map[string]string {
	result := make(map[string]string, len(c.values))
	for k, v := range c.values {
		result[k] = v
	}
	return result
}

// Keys returns all configuration keys, sorted.
func (c *Resolved) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resolve merges every layer. Non-empty flag values override everything.
func (r *Resolver) Resolve(flags map[string]string) *Resolved {
	cfg := &Resolved{
		values:  make(map[string]string, len(Defaults)),
		sources: make(map[string]Source, len(Defaults)),
	}

	for key, value := range Defaults {
		cfg.set(key, value, SourceDefault)
	}
	r.applyFile(cfg, r.globalPath, SourceGlobal)
	r.applyFile(cfg, r.localPath, SourceLocal)
	applyEnv(cfg)

	for key, value := range flags {
		if value != "" {
			cfg.set(key, value, SourceFlag)
		}
	}
	return cfg
}

func (c *Resolved) set(key, value string, source Source) {
	c.values[key] = value
	c.sources[key] = source
}

// applyFile reads one YAML layer. A missing file is not an error; an
// unreadable one or an unknown key is a warning.
func (r *Resolver) applyFile(cfg *Resolved, path string, source Source) {
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		r.warn(fmt.Sprintf("could not parse %s: %v", path, err), "path", path)
		return
	}

	for key, value := range parsed {
		if !IsValidKey(key) {
			r.warn(fmt.Sprintf("unknown key %q in %s", key, path), "path", path, "key", key)
			continue
		}
		if strVal := toString(value); strVal != "" {
			cfg.set(key, strVal, source)
		}
	}
}

func applyEnv(cfg *Resolved) {
	for _, key := range ValidKeys {
		if value := os.Getenv(EnvName(key)); value != "" {
			cfg.set(key, value, SourceEnv)
		}
	}
}

// EnvName returns the environment variable read for key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// GitRoot returns the detected git root directory.
func (r *Resolver) GitRoot() string {
	return r.gitRoot
}

// GlobalPath returns the path to the global config file.
func (r *Resolver) GlobalPath() string {
	return r.globalPath
}

// LocalPath returns the path to the local config file.
func (r *Resolver) LocalPath() string {
	return r.localPath
}

func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int, int64, float64:
		return fmt.Sprintf("%v", val)
	default:
		return ""
	}
}

// findGitRoot finds the git root by looking for a .git directory.
func findGitRoot(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
