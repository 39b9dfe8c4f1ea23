package validation

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ginjaninja78/scaffold/internal/errors"
	"github.com/ginjaninja78/scaffold/internal/types"
)

// referencePattern finds "cookiecutter.<key>" inside template expressions.
var referencePattern = regexp.MustCompile(types.Namespace + `\.([A-Za-z_][A-Za-z0-9_]*)`)

// ReferencedKeys returns the distinct context keys referenced by text, in
// order of first appearance. Only text inside {{ }} or {% %} counts.
func ReferencedKeys(text string) []string {
	if !strings.Contains(text, "{{") && !strings.Contains(text, "{%") {
		return nil
	}

	seen := map[string]bool{}
	var keys []string
	for _, expr := range expressions(text) {
		for _, m := range referencePattern.FindAllStringSubmatch(expr, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				keys = append(keys, m[1])
			}
		}
	}
	return keys
}

// expressions extracts the bodies of {{ ... }} and {% ... %} blocks.
func expressions(text string) []string {
	var out []string
	for _, delim := range [][2]string{{"{{", "}}"}, {"{%", "%}"}} {
		rest := text
		for {
			start := strings.Index(rest, delim[0])
			if start < 0 {
				break
			}
			rest = rest[start+len(delim[0]):]
			end := strings.Index(rest, delim[1])
			if end < 0 {
				break
			}
			out = append(out, rest[:end])
			rest = rest[end+len(delim[1]):]
		}
	}
	return out
}

// MissingKeyError collects every reference the context cannot satisfy.
// Sources maps each missing key to the first file that references it.
func MissingKeyError(missing map[string]string) error {
	if len(missing) == 0 {
		return nil
	}
	keys := make([]string, 0, len(missing))
	for k := range missing {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("template references keys missing from the context:")
	for _, k := range keys {
		b.WriteString("\n  ")
		b.WriteString(k)
		if src := missing[k]; src != "" {
			b.WriteString(" (")
			b.WriteString(src)
			b.WriteString(")")
		}
	}
	return errors.NewWithDetails(errors.EMissingKey, b.String(), missing)
}
