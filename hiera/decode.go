package hiera

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// listForm is the sequence-mode rendering of a variable. It keeps both the
// raw element nodes (for text comparison) and their decoded values.
type listForm struct {
	nodes  []*yaml.Node
	values []any
}

func (l listForm) len() int {
	return len(l.values)
}

// elementText returns the literal text of element i when it is a scalar.
func (l listForm) elementText(i int) (string, bool) {
	if i >= len(l.nodes) {
		return "", false
	}
	n := l.nodes[i]
	if n.Kind != yaml.ScalarNode {
		return "", false
	}
	return n.Value, true
}

// elementString returns element i when it decoded to a string.
func (l listForm) elementString(i int) (string, bool) {
	if i >= len(l.values) {
		return "", false
	}
	s, ok := l.values[i].(string)
	return s, ok
}

// parseList decodes sequence-mode output. Empty output and YAML null are an
// empty list; anything but a sequence is a decode error.
func parseList(text string) (listForm, error) {
	root, err := parseNode(text)
	if err != nil {
		return listForm{}, err
	}
	if root == nil || isNull(root) {
		return listForm{}, nil
	}
	if root.Kind != yaml.SequenceNode {
		return listForm{}, fmt.Errorf("%w: sequence-mode output is not a sequence: %q", ErrDecode, text)
	}

	form := listForm{
		nodes:  root.Content,
		values: make([]any, len(root.Content)),
	}
	for i, n := range root.Content {
		var v any
		if err := n.Decode(&v); err != nil {
			return listForm{}, fmt.Errorf("%w: sequence element %d: %v", ErrDecode, i, err)
		}
		form.values[i] = normalize(v)
	}
	return form, nil
}

// parseMapping decodes mapping-mode output. Empty output is an empty mapping.
func parseMapping(text string) (map[string]any, error) {
	root, err := parseNode(text)
	if err != nil {
		return nil, err
	}
	if root == nil || isNull(root) {
		return map[string]any{}, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: mapping-mode output is not a mapping: %q", ErrDecode, text)
	}

	var v any
	if err := root.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	m, ok := normalize(v).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: mapping-mode output is not a mapping: %q", ErrDecode, text)
	}
	return m, nil
}

// decodeAny is a safe YAML decode of text into plain Go values.
func decodeAny(text string) (any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return normalize(v), nil
}

// decodeScalar decodes text known to be a scalar. When the YAML decoder
// would read it as a collection, or cannot read it at all, the text itself
// is the value. Empty text is the empty string.
func decodeScalar(text string) any {
	if text == "" {
		return ""
	}
	v, err := decodeAny(text)
	if err != nil {
		return text
	}
	switch v.(type) {
	case []any, map[string]any:
		return text
	}
	return v
}

func parseNode(text string) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}
	return doc.Content[0], nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}
