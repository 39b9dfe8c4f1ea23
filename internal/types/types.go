// =============================================================================
// scaffold - Shared Types
// =============================================================================
//
// The template context is the single piece of data that flows through every
// stage of a generation run: it is built from the template manifest, user
// defaults, replay files and command-line overrides, then used to render
// paths, file contents and hook scripts, and finally persisted for replay.
//
// ORDER MATTERS:
//   Defaults may reference earlier keys ("{{ cookiecutter.project_name }}"),
//   prompts are asked in manifest order, and replay files are written in the
//   same order so they diff cleanly. Context therefore keeps insertion order.
//
// =============================================================================

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Namespace is the name templates use to reach the context:
// {{ cookiecutter.package_name }}.
const Namespace = "cookiecutter"

// Context is an insertion-ordered key/value mapping.
// The zero value is ready to use.
type Context struct {
	keys   []string
	values map[string]any
}

// NewContext returns an empty context.
func NewContext() *Context {
	return &Context{values: make(map[string]any)}
}

// Set stores value under key. Existing keys keep their original position.
func (c *Context) Set(key string, value any) {
	if c.values == nil {
		c.values = make(map[string]any)
	}
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
}

// Get returns the value stored under key.
func (c *Context) Get(key string) (any, bool) {
	if c == nil || c.values == nil {
		return nil, false
	}
	v, ok := c.values[key]
	return v, ok
}

// Has reports whether key is present.
func (c *Context) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// String returns the value under key formatted as a string.
// Missing keys and nil values yield "".
func (c *Context) String(key string) string {
	v, ok := c.Get(key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Bool interprets the value under key as a yes/no answer.
func (c *Context) Bool(key string) bool {
	v, ok := c.Get(key)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return ParseBool(b)
	}
	return false
}

// ParseBool reports whether s is a yes answer ("y", "yes", "true", "1", "on").
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	}
	return false
}

// Keys returns the keys in insertion order.
func (c *Context) Keys() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.keys...)
}

// Len returns the number of keys.
func (c *Context) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Map returns a shallow copy of the values as a plain map.
func (c *Context) Map() map[string]any {
	out := make(map[string]any, c.Len())
	if c == nil {
		return out
	}
	for _, k := range c.keys {
		out[k] = c.values[k]
	}
	return out
}

// Clone returns a shallow copy.
func (c *Context) Clone() *Context {
	out := NewContext()
	if c == nil {
		return out
	}
	for _, k := range c.keys {
		out.Set(k, c.values[k])
	}
	return out
}

// Merge copies every key of other into c, overwriting existing values.
func (c *Context) Merge(other *Context) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		c.Set(k, other.values[k])
	}
}

// Template returns the data handed to the template engine.
func (c *Context) Template() map[string]any {
	return map[string]any{Namespace: c.Map()}
}

// MarshalJSON writes keys in insertion order.
func (c *Context) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(c.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping the document's key order.
// JSON is valid YAML, so the yaml.v3 node API supplies the ordering.
func (c *Context) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeOrdered(data)
	if err != nil {
		return err
	}
	*c = *decoded
	return nil
}

// DecodeOrdered parses a JSON or YAML mapping into a Context.
func DecodeOrdered(data []byte) (*Context, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return NewContext(), nil
	}
	return ContextFromNode(&doc)
}

// ContextFromNode converts a yaml.v3 mapping node into a Context.
// Nested values are decoded into plain Go values.
func ContextFromNode(node *yaml.Node) (*Context, error) {
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return NewContext(), nil
		}
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping at line %d", node.Line)
	}

	ctx := NewContext()
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		var value any
		if err := valueNode.Decode(&value); err != nil {
			return nil, fmt.Errorf("decode %q: %w", keyNode.Value, err)
		}
		ctx.Set(keyNode.Value, value)
	}
	return ctx, nil
}
