// =============================================================================
// scaffold - Template Filters
// =============================================================================
//
// Filters available to every template in addition to the pongo2 built-ins
// (lower, upper, title, slugify, default, ...).
//
// FILTERS:
//   module_name   "My Project"  -> "my_project"   (always a valid module name)
//   kebab         "My Project"  -> "my-project"
//   snake         "My Project"  -> "my_project"   (no keyword/digit fixes)
//   trim          "  x  "       -> "x"
//   prepend:"py-" "tools"       -> "py-tools"
//   append:"-cli" "tools"       -> "tools-cli"
//
// Filters are registered once per process; a filter that already exists
// (registered by pongo2 itself or an embedding program) is left alone.
//
// =============================================================================

package render

import (
	"strings"
	"unicode"

	"github.com/flosch/pongo2/v6"

	"github.com/ginjaninja78/scaffold/internal/validation"
)

// filters is the table of scaffold filters by name.
var filters = map[string]pongo2.FilterFunction{
	"module_name": filterModuleName,
	"kebab":       filterKebab,
	"snake":       filterSnake,
	"trim":        filterTrim,
	"prepend":     filterPrepend,
	"append":      filterAppend,
}

func registerFilters() {
	for name, fn := range filters {
		if pongo2.FilterExists(name) {
			continue
		}
		_ = pongo2.RegisterFilter(name, fn)
	}
}

func filterModuleName(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(validation.ModuleName(in.String())), nil
}

func filterKebab(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(joinWords(in.String(), "-")), nil
}

func filterSnake(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(joinWords(in.String(), "_")), nil
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

func filterPrepend(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(param.String() + in.String()), nil
}

func filterAppend(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(in.String() + param.String()), nil
}

// joinWords lowercases s and joins its letter/digit runs with sep.
func joinWords(s, sep string) string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(words, sep)
}
