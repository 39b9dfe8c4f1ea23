package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ginjaninja78/scaffold/internal/errors"
)

// GitHub repository visibility accepted by `gh repo create`.
var GitHubPrivacyOptions = []string{"private", "internal", "public"}

// Coding agents the post-generation step knows how to set up.
const (
	AgentNone   = "none"
	AgentClaude = "claude"
	AgentCodex  = "codex"
)

// IsNone reports whether a choice value means "skip": "", "None", "none".
func IsNone(value string) bool {
	v := strings.TrimSpace(value)
	return v == "" || strings.EqualFold(v, "none")
}

// CheckPrivacy validates a GitHub visibility option.
func CheckPrivacy(privacy string) error {
	for _, opt := range GitHubPrivacyOptions {
		if privacy == opt {
			return nil
		}
	}
	return errors.New(errors.EInvalidPrivacy,
		fmt.Sprintf("privacy=%q not in %v", privacy, GitHubPrivacyOptions))
}

// CheckAgent validates and normalises a coding agent name.
func CheckAgent(agent string) (string, error) {
	a := strings.ToLower(strings.TrimSpace(agent))
	switch a {
	case AgentNone, AgentClaude, AgentCodex:
		return a, nil
	case "":
		return AgentNone, nil
	}
	return "", errors.New(errors.EInvalidAgent,
		fmt.Sprintf("unsupported coding agent %q; select from: claude, codex, none", agent))
}

// ResolveLicense matches name against the available license files.
//
// RETURNS:
//   - The exact file name to use.
//   - true when the case had to be corrected ("mit" -> "MIT").
//   - E_INVALID_LICENSE listing the options when nothing matches.
func ResolveLicense(name string, available []string) (string, bool, error) {
	for _, lic := range available {
		if lic == name {
			return lic, false, nil
		}
	}
	for _, lic := range available {
		if strings.EqualFold(lic, name) {
			return lic, true, nil
		}
	}

	sorted := append([]string(nil), available...)
	sort.Strings(sorted)
	return "", false, errors.New(errors.EInvalidLicense,
		fmt.Sprintf("license=%q not available; select from:\n%s", name, strings.Join(sorted, "\n")))
}
