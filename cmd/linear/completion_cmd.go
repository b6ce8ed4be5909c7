package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/linear/internal/errs"
)

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "completions <shell>",
		Aliases:     []string{"completion"},
		Short:       "Generate completion script",
		GroupID:     GroupConfig,
		Annotations: offline(),
		ValidArgs:   []string{"bash", "zsh", "fish", "powershell"},
		Args:        cobra.ExactArgs(1),
		Example: `  # Fish
  linear completions fish > ~/.config/fish/completions/linear.fish

  # Bash
  linear completions bash > ~/.local/share/bash-completion/completions/linear

  # Zsh
  linear completions zsh > ~/.zfunc/_linear
  # Then add ~/.zfunc to fpath in .zshrc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return errs.Validation("unsupported shell: %s (supported: bash, zsh, fish, powershell)", args[0])
		},
	}

	return cmd
}
