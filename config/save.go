package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Set validates and writes one key to the global config file, or to the
// local one when local is true.
func (r *Resolver) Set(key, value string, local bool) error {
	if !IsValidKey(key) {
		return fmt.Errorf("unknown config key: %s\n\nValid keys: %s", key, strings.Join(ValidKeys, ", "))
	}
	if err := ValidateValue(key, value); err != nil {
		return err
	}

	if local {
		if r.localPath == "" {
			return fmt.Errorf("git root not found; cannot write %s", LocalConfigName)
		}
		// Local config is shared and should be readable
		return saveKey(r.localPath, key, value, 0o644)
	}
	if r.globalPath == "" {
		return fmt.Errorf("home directory not found; cannot write global config")
	}
	return saveKey(r.globalPath, key, value, 0o600)
}

// Unset removes key from the global config file, or the local one.
func (r *Resolver) Unset(key string, local bool) error {
	path := r.globalPath
	if local {
		path = r.localPath
	}
	if path == "" {
		return nil
	}

	existing, err := readFile(path)
	if err != nil || existing == nil {
		return nil // Nothing to delete
	}
	delete(existing, key)
	return writeFile(path, existing, 0o600)
}

func saveKey(path, key, value string, perm os.FileMode) error {
	existing, err := readFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if existing == nil {
		existing = make(map[string]any)
	}
	existing[key] = parseValue(value)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return writeFile(path, existing, perm)
}

// readFile loads a config file. A missing file yields a nil map.
func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var existing map[string]any
	if err := yaml.Unmarshal(data, &existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func writeFile(path string, values map[string]any, perm os.FileMode) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, perm)
}

// parseValue converts string values to appropriate types for YAML.
func parseValue(value string) any {
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	return value
}
