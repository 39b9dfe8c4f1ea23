// =============================================================================
// scaffold - Name Validation
// =============================================================================
//
// The generated project is a Python distribution, so the package name must be
// importable: it cannot be empty, cannot be a reserved word, and must match
// the identifier pattern used by the pre-generation check.
//
// DERIVATION:
//   ModuleName turns a free-form project name ("Café Röster 2") into an
//   identifier that always passes CheckModuleName ("cafe_roster_2").
//
// =============================================================================

package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ginjaninja78/scaffold/internal/errors"
)

// moduleNamePattern is the identifier rule applied to package names.
// Two characters minimum.
var moduleNamePattern = regexp.MustCompile(`^[a-zA-Z][_a-zA-Z0-9]+$`)

// pythonKeywords mirrors keyword.kwlist.
var pythonKeywords = map[string]struct{}{
	"False": {}, "None": {}, "True": {}, "and": {}, "as": {}, "assert": {},
	"async": {}, "await": {}, "break": {}, "class": {}, "continue": {},
	"def": {}, "del": {}, "elif": {}, "else": {}, "except": {}, "finally": {},
	"for": {}, "from": {}, "global": {}, "if": {}, "import": {}, "in": {},
	"is": {}, "lambda": {}, "nonlocal": {}, "not": {}, "or": {}, "pass": {},
	"raise": {}, "return": {}, "try": {}, "while": {}, "with": {}, "yield": {},
}

// IsKeyword reports whether name is a reserved Python keyword.
func IsKeyword(name string) bool {
	_, ok := pythonKeywords[name]
	return ok
}

// CheckModuleName returns E_INVALID_MODULE_NAME when name cannot be used as
// the generated package name.
func CheckModuleName(name string) error {
	if name == "" {
		return errors.New(errors.EInvalidModuleName, "Module name cannot be empty.")
	}
	if IsKeyword(name) {
		return errors.New(errors.EInvalidModuleName,
			fmt.Sprintf("module_name=%q is a Python keyword and cannot be used as a module name.", name))
	}
	if !moduleNamePattern.MatchString(name) {
		return errors.New(errors.EInvalidModuleName,
			fmt.Sprintf("module_name=%q is not a valid Python module name.", name))
	}
	return nil
}

// ModuleName derives a lowercase identifier from a project name.
//
// RULES (applied in order):
//   1. Decompose accents and drop everything outside ASCII.
//   2. Lowercase; every run of characters outside [a-z0-9] becomes "_".
//   3. Trim leading and trailing "_".
//   4. Empty -> "package"; leading digit -> "pkg_" prefix;
//      one character -> "_pkg" suffix; keyword -> "_" suffix.
func ModuleName(projectName string) string {
	ascii := toASCII(projectName)

	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(ascii) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}

	name := b.String()
	switch {
	case name == "":
		return "package"
	case name[0] >= '0' && name[0] <= '9':
		name = "pkg_" + name
	}
	if len(name) == 1 {
		name += "_pkg"
	}
	if IsKeyword(name) {
		name += "_"
	}
	return name
}

// toASCII strips diacritics ("é" -> "e") and drops any remaining non-ASCII rune.
func toASCII(s string) string {
	t := transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
