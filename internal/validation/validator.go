// =============================================================================
// scaffold - Template Validation Report
// =============================================================================
//
// "scaffold validate" checks a template without generating anything. Each
// check adds issues to a Report instead of stopping at the first failure, so
// template authors see every problem in one run.
//
// SEVERITY:
//   - error:   generation with the template's defaults would fail
//   - warning: generation works, but some choice leads to a failing step
//
// OUTPUT:
//   FormatReport renders the issues for the terminal; WriteReport saves the
//   same text next to the template for CI jobs that archive it.
//
// =============================================================================

package validation

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ginjaninja78/scaffold/internal/errors"
)

// =============================================================================
// ISSUE TYPES
// =============================================================================

// Severity ranks an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one problem found in a template.
type Issue struct {
	Severity Severity

	// Check names the check that found the issue ("manifest", "keys", ...).
	Check string

	// Path is the template file or context key involved, when there is one.
	Path string

	// Message is a human-readable description.
	Message string
}

// String formats the issue on one line.
func (i *Issue) String() string {
	where := ""
	if i.Path != "" {
		where = fmt.Sprintf(" %s:", i.Path)
	}
	return fmt.Sprintf("[%s] %s:%s %s", strings.ToUpper(string(i.Severity)), i.Check, where, i.Message)
}

// =============================================================================
// REPORT
// =============================================================================

// Report collects the issues found in one template.
type Report struct {
	// Template is the name of the checked template.
	Template string

	Issues []*Issue

	ErrorCount   int
	WarningCount int

	// KeysChecked and FilesChecked count what the checks covered.
	KeysChecked  int
	FilesChecked int

	// Steps lists the built-in steps the template runs, in order.
	Steps []string
}

// NewReport creates an empty report for a template.
func NewReport(template string) *Report {
	return &Report{Template: template}
}

// Add records an issue.
func (r *Report) Add(severity Severity, check, path, message string) {
	r.Issues = append(r.Issues, &Issue{Severity: severity, Check: check, Path: path, Message: message})
	switch severity {
	case SeverityError:
		r.ErrorCount++
	case SeverityWarning:
		r.WarningCount++
	}
}

// AddError records err as an error issue, using the coded message when err
// carries one.
func (r *Report) AddError(check, path string, err error) {
	msg := err.Error()
	if se, ok := errors.AsScaffoldError(err); ok {
		msg = se.Msg
	}
	r.Add(SeverityError, check, path, msg)
}

// Valid is true when no error was recorded. Warnings do not count.
func (r *Report) Valid() bool {
	return r.ErrorCount == 0
}

// Err returns E_INVALID_TEMPLATE when the report holds errors.
func (r *Report) Err() error {
	if r.Valid() {
		return nil
	}
	return errors.Newf(errors.EInvalidTemplate, "template %s has %d error(s)", r.Template, r.ErrorCount)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// FormatReport formats the report for display or logging. Errors are listed
// before warnings; the order within a severity is the order of discovery.
//
// PARAMETERS:
//   - r: The report to format.
//
// RETURNS:
//   - A formatted string containing a summary line and every issue.
func FormatReport(r *Report) string {
	var b strings.Builder

	if len(r.Issues) == 0 {
		fmt.Fprintf(&b, "Template %s is valid (%d keys, %d files checked).\n", r.Template, r.KeysChecked, r.FilesChecked)
		return b.String()
	}

	fmt.Fprintf(&b, "Template %s: %d error(s), %d warning(s) (%d keys, %d files checked):\n\n",
		r.Template, r.ErrorCount, r.WarningCount, r.KeysChecked, r.FilesChecked)

	issues := append([]*Issue(nil), r.Issues...)
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Severity == SeverityError && issues[j].Severity != SeverityError
	})
	for i, issue := range issues {
		fmt.Fprintf(&b, "%d. %s\n", i+1, issue.String())
	}
	return b.String()
}

// WriteReport writes the formatted report to a file.
//
// PARAMETERS:
//   - r: The report to write.
//   - filePath: The path to the output file.
//
// RETURNS:
//   - An error if writing fails.
func WriteReport(r *Report, filePath string) error {
	return os.WriteFile(filePath, []byte(FormatReport(r)), 0o644)
}
