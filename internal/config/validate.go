package config

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/raphi011/linear/internal/errs"
)

// validateEnum checks that value (if non-empty) is one of the allowed values.
// Returns a ConfigError mentioning the field name and allowed options.
func validateEnum(value, field string, allowed []string) error {
	if value == "" {
		return nil
	}
	if !slices.Contains(allowed, value) {
		return errs.Config("invalid %s %q: must be %s", field, value, formatOptions(allowed))
	}
	return nil
}

// validateTeamKey rejects keys that cannot be Linear team keys.
func validateTeamKey(key, field string) error {
	if key == "" {
		return nil
	}
	for _, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return errs.Config("invalid %s %q: team keys contain only letters and digits", field, key)
		}
	}
	return nil
}

// formatOptions formats a list of allowed values for error messages.
// E.g., ["a", "b", "c"] -> `"a", "b", or "c"`
func formatOptions(opts []string) string {
	quoted := make([]string, len(opts))
	for i, o := range opts {
		quoted[i] = fmt.Sprintf("%q", o)
	}
	if len(quoted) <= 2 {
		return strings.Join(quoted, " or ")
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
}
