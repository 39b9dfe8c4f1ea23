// =============================================================================
// scaffold - Error Codes
// =============================================================================
//
// Every failure that reaches the user carries a stable error code. Commands
// print the code on its own line followed by the message, so scripts driving
// scaffold can branch on the code without parsing prose.
//
// =============================================================================

package errors

import (
	"errors"
	"fmt"
	"io"
)

// Code is a stable error code string.
type Code string

const (
	EUsage         Code = "E_USAGE"
	EInvalidConfig Code = "E_INVALID_CONFIG"
	EInternal      Code = "E_INTERNAL"

	// Template resolution and loading
	ETemplateNotFound Code = "E_TEMPLATE_NOT_FOUND"
	EInvalidTemplate  Code = "E_INVALID_TEMPLATE"

	// Context validation
	EMissingKey        Code = "E_MISSING_KEY"
	EInvalidModuleName Code = "E_INVALID_MODULE_NAME"
	EInvalidLicense    Code = "E_INVALID_LICENSE"
	EInvalidPrivacy    Code = "E_INVALID_PRIVACY"
	EInvalidAgent      Code = "E_INVALID_AGENT"
	EInvalidChoice     Code = "E_INVALID_CHOICE"
	EReplayNotFound    Code = "E_REPLAY_NOT_FOUND"

	// Rendering and output
	EOutputExists Code = "E_OUTPUT_EXISTS"
	ERenderFailed Code = "E_RENDER_FAILED"

	// Hooks and external tools
	EHookFailed       Code = "E_HOOK_FAILED"
	EToolNotInstalled Code = "E_TOOL_NOT_INSTALLED"
	ECommandFailed    Code = "E_COMMAND_FAILED"

	EBatchFailed Code = "E_BATCH_FAILED"
)

// ScaffoldError is the standard error type returned across package boundaries.
type ScaffoldError struct {
	Code    Code
	Msg     string
	Cause   error
	Details map[string]string
}

// Error returns "CODE: message".
func (e *ScaffoldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *ScaffoldError) Unwrap() error {
	return e.Cause
}

// New creates a new ScaffoldError with the given code and message.
func New(code Code, msg string) error {
	return &ScaffoldError{Code: code, Msg: msg}
}

// Newf is New with a format string.
func Newf(code Code, format string, args ...any) error {
	return &ScaffoldError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// NewWithDetails creates a new ScaffoldError carrying structured context.
func NewWithDetails(code Code, msg string, details map[string]string) error {
	return &ScaffoldError{Code: code, Msg: msg, Details: copyDetails(details)}
}

// Wrap creates a new ScaffoldError wrapping an underlying error.
func Wrap(code Code, msg string, err error) error {
	return &ScaffoldError{Code: code, Msg: msg, Cause: err}
}

// WrapWithDetails wraps an underlying error and attaches details.
func WrapWithDetails(code Code, msg string, err error, details map[string]string) error {
	return &ScaffoldError{Code: code, Msg: msg, Cause: err, Details: copyDetails(details)}
}

// GetCode extracts the error code, or "" if err is not a ScaffoldError.
func GetCode(err error) Code {
	var se *ScaffoldError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// AsScaffoldError returns (*ScaffoldError, true) if err is or wraps one.
func AsScaffoldError(err error) (*ScaffoldError, bool) {
	var se *ScaffoldError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

func copyDetails(details map[string]string) map[string]string {
	if len(details) == 0 {
		return nil
	}
	cp := make(map[string]string, len(details))
	for k, v := range details {
		cp[k] = v
	}
	return cp
}

// ExitCode returns 0 for nil, 2 for E_USAGE and 1 for everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if GetCode(err) == EUsage {
		return 2
	}
	return 1
}

// Print writes the error to w in the stable format:
//
//	error_code: <CODE>
//	<message>
//	<cause, when present>
func Print(w io.Writer, err error) {
	if err == nil {
		return
	}
	var se *ScaffoldError
	if errors.As(err, &se) {
		fmt.Fprintf(w, "error_code: %s\n", se.Code)
		fmt.Fprintln(w, se.Msg)
		if se.Cause != nil {
			fmt.Fprintf(w, "cause: %v\n", se.Cause)
		}
		if stderr := se.Details["stderr"]; stderr != "" {
			fmt.Fprintln(w, stderr)
		}
		return
	}
	fmt.Fprintln(w, err.Error())
}
