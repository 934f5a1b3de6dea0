package facts

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/hierafacts/hiera"
)

var factNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z_0-9]*$`)

// Key maps one hiera variable to the fact it is published as.
type Key struct {
	Hiera string `yaml:"hiera" json:"hiera"`
	Fact  string `yaml:"ansible,omitempty" json:"ansible,omitempty"`
}

// FactName returns the default fact name for a hiera variable.
func FactName(hieraName string) string {
	return strings.ReplaceAll(hieraName, ":", "_")
}

// ValidFactName reports whether name can be used as a fact identifier.
func ValidFactName(name string) bool {
	return factNamePattern.MatchString(name)
}

// ParseKey reads "hiera_name" or "hiera_name=fact_name".
func ParseKey(s string) (Key, error) {
	hieraName, fact, _ := strings.Cut(s, "=")
	return Key{Hiera: hieraName, Fact: fact}.normalized()
}

// normalized fills in the default fact name and validates both names.
func (k Key) normalized() (Key, error) {
	if k.Hiera == "" {
		return k, fmt.Errorf("%w: every key needs a hiera name", hiera.ErrInvalidRequest)
	}
	if k.Fact == "" {
		k.Fact = FactName(k.Hiera)
	}
	if !ValidFactName(k.Fact) {
		return k, fmt.Errorf("%w: fact name %q for %q does not match %s",
			hiera.ErrInvalidRequest, k.Fact, k.Hiera, factNamePattern)
	}
	return k, nil
}

// UnmarshalYAML accepts either a plain hiera name or a mapping with
// "hiera" and an optional "ansible" fact name.
func (k *Key) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		k.Hiera = node.Value
		k.Fact = ""
		return nil
	case yaml.MappingNode:
		type plain Key
		var p plain
		if err := node.Decode(&p); err != nil {
			return err
		}
		*k = Key(p)
		return nil
	default:
		return fmt.Errorf("line %d: a key must be a string or a mapping with a 'hiera' entry", node.Line)
	}
}

// HieraNames returns the hiera names of keys in order. Repeated names are
// kept; the resolver resolves each distinct name once.
func HieraNames(keys []Key) []string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.Hiera
	}
	return names
}
