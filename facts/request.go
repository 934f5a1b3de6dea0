package facts

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/hierafacts/hiera"
)

// Request describes one fact lookup: which variables, against which
// hiera config and scope.
type Request struct {
	Keys       []Key
	ConfigFile string
	AllowEmpty bool
	ScopeFile  string
	Scope      map[string]string
}

// requestFile is the on-disk form. "names" and "hiera_config_file" are
// accepted as aliases.
type requestFile struct {
	Keys            []Key          `yaml:"keys"`
	Names           []Key          `yaml:"names"`
	ConfigFile      string         `yaml:"config_file"`
	HieraConfigFile string         `yaml:"hiera_config_file"`
	AllowEmpty      *bool          `yaml:"allow_empty"`
	ScopeFile       string         `yaml:"scope_file"`
	Scope           map[string]any `yaml:"scope"`
}

// ParseRequest decodes and validates a YAML request.
func ParseRequest(data []byte) (*Request, error) {
	var f requestFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", hiera.ErrInvalidRequest, err)
	}

	keys := f.Keys
	if len(f.Names) > 0 {
		if len(keys) > 0 {
			return nil, fmt.Errorf("%w: set either 'keys' or 'names', not both", hiera.ErrInvalidRequest)
		}
		keys = f.Names
	}

	configFile := f.ConfigFile
	if f.HieraConfigFile != "" {
		if configFile != "" && configFile != f.HieraConfigFile {
			return nil, fmt.Errorf("%w: 'config_file' and 'hiera_config_file' disagree", hiera.ErrInvalidRequest)
		}
		configFile = f.HieraConfigFile
	}

	scope, err := StringifyScope(f.Scope)
	if err != nil {
		return nil, err
	}

	req := &Request{
		Keys:       keys,
		ConfigFile: configFile,
		AllowEmpty: f.AllowEmpty == nil || *f.AllowEmpty,
		ScopeFile:  f.ScopeFile,
		Scope:      scope,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// LoadRequest reads a request file. "~" in path is expanded.
func LoadRequest(path string) (*Request, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand request path: %w", err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}
	return ParseRequest(data)
}

// Validate checks the request and fills in default fact names.
func (r *Request) Validate() error {
	if r.ConfigFile == "" {
		return fmt.Errorf("%w: 'config_file' is required", hiera.ErrInvalidRequest)
	}
	if len(r.Keys) == 0 && !r.AllowEmpty {
		return fmt.Errorf("%w: 'keys' was an empty list and 'allow_empty' is false", hiera.ErrInvalidRequest)
	}
	for i, k := range r.Keys {
		nk, err := k.normalized()
		if err != nil {
			return err
		}
		r.Keys[i] = nk
	}
	return nil
}

// ExpandPaths expands "~" in the config and scope file paths.
func (r *Request) ExpandPaths() error {
	var err error
	if r.ConfigFile, err = homedir.Expand(r.ConfigFile); err != nil {
		return fmt.Errorf("expand config path: %w", err)
	}
	if r.ScopeFile, err = homedir.Expand(r.ScopeFile); err != nil {
		return fmt.Errorf("expand scope file path: %w", err)
	}
	return nil
}
