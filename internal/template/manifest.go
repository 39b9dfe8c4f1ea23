// =============================================================================
// scaffold - Template Manifest
// =============================================================================
//
// The manifest is the definition file at the root of a template. It lists the
// context variables with their defaults, in the order they are asked for.
//
// SUPPORTED FILES (first found wins):
//   cookiecutter.json, scaffold.yaml, scaffold.yml
//
// VALUE KINDS:
//   "text"            -> string variable, default "text"
//   ["a", "b"]        -> choice, default "a"
//   true / false      -> yes/no question
//   {"k": "v"}        -> mapping, passed through without prompting
//
// SPECIAL KEYS:
//   "_name"                private: copied into the context, never rendered
//   "__name"               computed: rendered, never prompted
//   "__prompts__"          question text per key
//   "_copy_without_render" doublestar globs copied verbatim
//   "_pre_gen_steps"       built-in steps run before rendering
//   "_post_gen_steps"      built-in steps run after rendering
//
// =============================================================================

package template

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/ginjaninja78/scaffold/internal/errors"
	"github.com/ginjaninja78/scaffold/internal/types"
)

// ManifestFiles are the definition file names, in lookup order.
var ManifestFiles = []string{"cookiecutter.json", "scaffold.yaml", "scaffold.yml"}

// Special manifest keys.
const (
	KeyPrompts           = "__prompts__"
	KeyCopyWithoutRender = "_copy_without_render"
	KeyPreGenSteps       = "_pre_gen_steps"
	KeyPostGenSteps      = "_post_gen_steps"
)

// =============================================================================
// VARIABLE STRUCTURE
// =============================================================================

// Kind classifies a manifest variable.
type Kind int

const (
	KindString Kind = iota
	KindChoice
	KindBool
	KindMap
	KindPrivate
	KindComputed
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindChoice:
		return "choice"
	case KindBool:
		return "bool"
	case KindMap:
		return "map"
	case KindPrivate:
		return "private"
	case KindComputed:
		return "computed"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Variable is one entry of the manifest.
type Variable struct {
	Name string
	Kind Kind

	// Default is the raw default: a string (possibly a template expression),
	// a bool, a map, or for choices the first option.
	Default any

	// Choices holds the options of a KindChoice variable, rendered as strings.
	Choices []string

	// Prompt is the question text; falls back to Name.
	Prompt string
}

// Promptable reports whether the user is asked for this variable.
func (v Variable) Promptable() bool {
	switch v.Kind {
	case KindString, KindChoice, KindBool:
		return true
	}
	return false
}

// =============================================================================
// MANIFEST STRUCTURE
// =============================================================================

// Manifest is the parsed definition file.
type Manifest struct {
	// File is the name of the file the manifest was read from.
	File string

	Variables []Variable

	CopyWithoutRender []string
	PreGenSteps       []string
	PostGenSteps      []string
}

// Variable returns the variable named name.
func (m *Manifest) Variable(name string) (Variable, bool) {
	for _, v := range m.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// Steps returns the pre- and post-generation steps in run order.
func (m *Manifest) Steps() []string {
	return append(append([]string(nil), m.PreGenSteps...), m.PostGenSteps...)
}

// LoadManifest finds and parses the manifest at the root of fsys.
func LoadManifest(fsys fs.FS) (*Manifest, error) {
	for _, name := range ManifestFiles {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			continue
		}
		m, err := ParseManifest(data)
		if err != nil {
			return nil, errors.Wrap(errors.EInvalidTemplate, fmt.Sprintf("failed to parse %s", name), err)
		}
		m.File = name
		return m, nil
	}
	return nil, errors.New(errors.EInvalidTemplate,
		fmt.Sprintf("no manifest found (expected one of %s)", strings.Join(ManifestFiles, ", ")))
}

// ParseManifest parses JSON or YAML manifest data, keeping key order.
func ParseManifest(data []byte) (*Manifest, error) {
	raw, err := types.DecodeOrdered(data)
	if err != nil {
		return nil, err
	}

	m := &Manifest{}
	prompts := map[string]string{}
	if p, ok := raw.Get(KeyPrompts); ok {
		pm, ok := p.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s must be a mapping", KeyPrompts)
		}
		for k, v := range pm {
			prompts[k] = fmt.Sprint(v)
		}
	}

	for _, key := range raw.Keys() {
		if key == KeyPrompts {
			continue
		}
		value, _ := raw.Get(key)

		switch key {
		case KeyCopyWithoutRender:
			if m.CopyWithoutRender, err = stringList(key, value); err != nil {
				return nil, err
			}
		case KeyPreGenSteps:
			if m.PreGenSteps, err = stringList(key, value); err != nil {
				return nil, err
			}
		case KeyPostGenSteps:
			if m.PostGenSteps, err = stringList(key, value); err != nil {
				return nil, err
			}
		}

		v, err := newVariable(key, value)
		if err != nil {
			return nil, err
		}
		v.Prompt = prompts[key]
		if v.Prompt == "" {
			v.Prompt = key
		}
		m.Variables = append(m.Variables, v)
	}
	return m, nil
}

// newVariable classifies a manifest entry.
func newVariable(key string, value any) (Variable, error) {
	v := Variable{Name: key, Default: value}

	switch {
	case strings.HasPrefix(key, "__"):
		v.Kind = KindComputed
		return v, nil
	case strings.HasPrefix(key, "_"):
		v.Kind = KindPrivate
		return v, nil
	}

	switch val := value.(type) {
	case nil:
		v.Kind = KindString
		v.Default = ""
	case string:
		v.Kind = KindString
	case bool:
		v.Kind = KindBool
	case []any:
		if len(val) == 0 {
			return v, fmt.Errorf("choice variable %q has no options", key)
		}
		v.Kind = KindChoice
		for _, c := range val {
			v.Choices = append(v.Choices, fmt.Sprint(c))
		}
		v.Default = v.Choices[0]
	case map[string]any:
		v.Kind = KindMap
	default:
		// numbers are offered as text defaults
		v.Kind = KindString
		v.Default = fmt.Sprint(val)
	}
	return v, nil
}

func stringList(key string, value any) ([]string, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be a list", key)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s entries must be strings, got %T", key, item)
		}
		out = append(out, s)
	}
	return out, nil
}
