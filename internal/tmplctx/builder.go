// =============================================================================
// scaffold - Context Builder
// =============================================================================
//
// Builds the template context for one generation run.
//
// PRECEDENCE (lowest to highest):
//   1. Manifest defaults
//   2. default_context from the user configuration
//   3. Extra context (key=value arguments, batch rows)
//   4. Answers given at the prompt
//
// Keys supplied as extra context are final and never prompted. Every other
// public variable is prompted in manifest order unless NoInput is set; its
// default is rendered against the values collected so far, so
// "{{ cookiecutter.project_name|module_name }}" sees the project name the
// user just typed.
//
// =============================================================================

package tmplctx

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ginjaninja78/scaffold/internal/errors"
	"github.com/ginjaninja78/scaffold/internal/render"
	"github.com/ginjaninja78/scaffold/internal/template"
	"github.com/ginjaninja78/scaffold/internal/types"
)

// Options controls context building.
type Options struct {
	// DefaultContext overrides manifest defaults (user configuration).
	DefaultContext map[string]string

	// Extra holds values that are final: they are never prompted.
	Extra *types.Context

	// NoInput accepts every default without prompting.
	NoInput bool

	Prompter Prompter
	Engine   *render.Engine
	Logger   *zap.Logger
}

// Build produces the context for manifest m.
func Build(ctx context.Context, m *template.Manifest, opts Options) (*types.Context, error) {
	if opts.Engine == nil {
		opts.Engine = render.NewEngine()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Prompter == nil && !opts.NoInput {
		opts.Prompter = NewSurveyPrompter()
	}

	out := types.NewContext()
	var computed []template.Variable

	for _, v := range m.Variables {
		switch v.Kind {
		case template.KindPrivate:
			out.Set(v.Name, v.Default)
			continue
		case template.KindComputed:
			computed = append(computed, v)
			// keep the manifest position; the value is filled in below
			out.Set(v.Name, v.Default)
			continue
		}

		if extra, ok := opts.Extra.Get(v.Name); ok {
			value, err := coerce(opts.Engine, v, extra, out)
			if err != nil {
				return nil, err
			}
			out.Set(v.Name, value)
			continue
		}
		if !v.Promptable() {
			out.Set(v.Name, v.Default)
			continue
		}

		value, err := resolve(ctx, v, out, opts)
		if err != nil {
			return nil, err
		}
		out.Set(v.Name, value)
	}

	for _, key := range opts.Extra.Keys() {
		if !out.Has(key) {
			value, _ := opts.Extra.Get(key)
			opts.Logger.Debug("Adding extra context key not in manifest", zap.String("key", key))
			out.Set(key, value)
		}
	}

	for _, v := range computed {
		value, err := renderValue(opts.Engine, v.Default, out)
		if err != nil {
			return nil, errors.Wrap(errors.ERenderFailed, fmt.Sprintf("failed to render computed key %s", v.Name), err)
		}
		out.Set(v.Name, value)
	}

	return out, nil
}

// resolve determines one public variable's value: default, then config
// override, then the prompt.
func resolve(ctx context.Context, v template.Variable, sofar *types.Context, opts Options) (any, error) {
	override, hasOverride := opts.DefaultContext[v.Name]

	switch v.Kind {
	case template.KindBool:
		def, _ := v.Default.(bool)
		if hasOverride {
			def = types.ParseBool(override)
		}
		if opts.NoInput {
			return def, nil
		}
		return opts.Prompter.Confirm(ctx, v.Prompt, def)

	case template.KindChoice:
		rendered, err := renderChoices(opts.Engine, v, sofar)
		if err != nil {
			return nil, err
		}
		if hasOverride {
			choice, err := matchChoice(v.Name, rendered, override, "default_context")
			if err != nil {
				return nil, err
			}
			rendered = preferChoice(rendered, choice)
		}
		if opts.NoInput {
			return rendered[0], nil
		}
		return opts.Prompter.Select(ctx, v.Prompt, rendered, rendered[0])
	}

	def := fmt.Sprint(v.Default)
	if hasOverride {
		def = override
	}
	def, err := opts.Engine.RenderString(def, sofar)
	if err != nil {
		return nil, renderErr(v.Name, err)
	}
	if opts.NoInput {
		return def, nil
	}
	return opts.Prompter.Input(ctx, v.Prompt, def)
}

// coerce converts an extra-context value to the variable's kind. Values for
// choice variables must be one of the rendered choices.
func coerce(engine *render.Engine, v template.Variable, value any, sofar *types.Context) (any, error) {
	s, ok := value.(string)
	if !ok {
		return value, nil
	}
	switch v.Kind {
	case template.KindBool:
		return types.ParseBool(s), nil
	case template.KindChoice:
		rendered, err := renderChoices(engine, v, sofar)
		if err != nil {
			return nil, err
		}
		return matchChoice(v.Name, rendered, s, "extra context")
	}
	return s, nil
}

// renderChoices renders every option of a choice variable.
func renderChoices(engine *render.Engine, v template.Variable, sofar *types.Context) ([]string, error) {
	rendered := make([]string, 0, len(v.Choices))
	for _, c := range v.Choices {
		r, err := engine.RenderString(c, sofar)
		if err != nil {
			return nil, renderErr(v.Name, err)
		}
		rendered = append(rendered, r)
	}
	return rendered, nil
}

// matchChoice returns the option equal to value, falling back to a
// case-insensitive match ("mit" -> "MIT").
//
// ERRORS:
//   - E_INVALID_CHOICE listing the options when nothing matches.
func matchChoice(key string, choices []string, value, source string) (string, error) {
	for _, c := range choices {
		if c == value {
			return c, nil
		}
	}
	for _, c := range choices {
		if strings.EqualFold(c, value) {
			return c, nil
		}
	}
	return "", errors.NewWithDetails(errors.EInvalidChoice,
		fmt.Sprintf("%s=%q from %s is not one of: %s", key, value, source, strings.Join(choices, ", ")),
		map[string]string{"key": key, "value": value})
}

// preferChoice moves value to the front of choices when it is one of them.
func preferChoice(choices []string, value string) []string {
	idx := indexOf(choices, value)
	if idx <= 0 {
		return choices
	}
	out := make([]string, 0, len(choices))
	out = append(out, choices[idx])
	out = append(out, choices[:idx]...)
	return append(out, choices[idx+1:]...)
}

// renderValue renders strings, and strings nested in lists and mappings.
func renderValue(engine *render.Engine, value any, ctx *types.Context) (any, error) {
	switch val := value.(type) {
	case string:
		return engine.RenderString(val, ctx)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			r, err := renderValue(engine, item, ctx)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			r, err := renderValue(engine, item, ctx)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	}
	return value, nil
}

func renderErr(key string, err error) error {
	return errors.Wrap(errors.ERenderFailed, fmt.Sprintf("failed to render default for %s", key), err)
}

// =============================================================================
// EXTRA CONTEXT
// =============================================================================

// ParseExtraContext parses "key=value" arguments, keeping their order.
// A later argument for the same key wins.
func ParseExtraContext(args []string) (*types.Context, error) {
	out := types.NewContext()
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.New(errors.EUsage,
				fmt.Sprintf("extra context %q must have the form key=value", arg))
		}
		out.Set(key, value)
	}
	return out, nil
}
