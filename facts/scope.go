package facts

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/hierafacts/hiera"
)

// LoadScope reads a YAML scope file and overlays inline on it. Inline
// entries win. An empty path means no scope file.
func LoadScope(path string, inline map[string]string) (map[string]string, error) {
	scope := make(map[string]string)

	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("expand scope file path: %w", err)
		}
		data, err := os.ReadFile(expanded)
		if err != nil {
			return nil, fmt.Errorf("read scope file: %w", err)
		}

		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: scope file %s: %v", hiera.ErrInvalidRequest, path, err)
		}
		fromFile, err := StringifyScope(raw)
		if err != nil {
			return nil, fmt.Errorf("scope file %s: %w", path, err)
		}
		for k, v := range fromFile {
			scope[k] = v
		}
	}

	for k, v := range inline {
		scope[k] = v
	}
	return scope, nil
}

// StringifyScope converts decoded scope values to the strings passed on the
// store command line. Nested collections are rejected.
func StringifyScope(raw map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		s, err := scopeString(raw[k])
		if err != nil {
			return nil, fmt.Errorf("%w: scope variable %q: %v", hiera.ErrInvalidRequest, k, err)
		}
		out[k] = s
	}
	return out, nil
}

func scopeString(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("value of type %T is not a scalar", v)
	}
}
