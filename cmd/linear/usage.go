package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphi011/linear/internal/errs"
)

// usageErrors turns cobra's flag parse and positional argument errors
// anywhere under root into ValidationErrors.
func usageErrors(root *cobra.Command) {
	root.SetFlagErrorFunc(invalidUsage)

	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		if c.Args != nil {
			args := c.Args
			c.Args = func(cmd *cobra.Command, a []string) error {
				if err := args(cmd, a); err != nil {
					return invalidUsage(cmd, err)
				}
				return nil
			}
		}
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(root)
}

// validateFlags runs cobra's required-flag and flag-group checks early so
// their failures carry the validation kind.
func validateFlags(cmd *cobra.Command) error {
	if err := cmd.ValidateRequiredFlags(); err != nil {
		return invalidUsage(cmd, err)
	}
	if err := cmd.ValidateFlagGroups(); err != nil {
		return invalidUsage(cmd, err)
	}
	return nil
}

func invalidUsage(cmd *cobra.Command, err error) error {
	suggestion := fmt.Sprintf("Run '%s --help' for usage", cmd.CommandPath())
	if !cmd.HasParent() && cmd.Flags().Parsed() && cmd.Flags().NArg() > 0 {
		if s := cmd.SuggestionsFor(cmd.Flags().Arg(0)); len(s) > 0 {
			suggestion = fmt.Sprintf("Did you mean %q?", s[0])
		}
	}
	return errs.WithSuggestion(errs.Invalid(err), suggestion)
}
