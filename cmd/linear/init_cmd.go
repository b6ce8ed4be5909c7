package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/linear/internal/config"
	"github.com/raphi011/linear/internal/errs"
	"github.com/raphi011/linear/internal/linear"
	"github.com/raphi011/linear/internal/log"
	"github.com/raphi011/linear/internal/output"
	"github.com/raphi011/linear/internal/ui/prompt"
)

type initAnswers struct {
	apiKey string
	team   string
}

func newInitCmd() *cobra.Command {
	var (
		useKeyring bool
		force      bool
	)

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create the config file",
		GroupID:     GroupConfig,
		Annotations: offline(),
		Args:        cobra.NoArgs,
		Long: `Create the config file.

Prompts for your Linear API key and an optional default team. When stdin
is not a terminal, the key and team are read as two plain lines.

Create an API key at https://linear.app/settings/api.`,
		Example: `  linear init
  linear init --keyring
  printf '%s\nENG\n' "$KEY" | linear init --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)
			cfg := *config.FromContext(ctx)
			path := config.Path(cfg.Dir)
			interactive := isTerminal(cmd.InOrStdin())

			if _, err := os.Stat(path); err == nil && !force {
				if !interactive {
					return errs.WithSuggestion(
						errs.Validation("config already exists: %s", path),
						"Use --force to overwrite",
					)
				}
				res, err := prompt.Confirm(fmt.Sprintf("Overwrite %s?", path))
				if err != nil {
					return err
				}
				if res.Cancelled || !res.Confirmed {
					return out.Message("Kept existing config at %s", path)
				}
			}

			var (
				ans initAnswers
				err error
			)
			if interactive {
				ans, err = askInit(ctx, cfg)
			} else {
				ans, err = readInit(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}

			cfg.DefaultTeam = strings.ToUpper(ans.team)
			cfg.APIKey = ans.apiKey
			if err := cfg.Validate(); err != nil {
				return err
			}
			if useKeyring {
				if err := keyStore().SetAPIKey(ans.apiKey); err != nil {
					return fmt.Errorf("store API key in keyring: %w", err)
				}
				cfg.APIKey = ""
			} else if err := keyStore().DeleteAPIKey(); err != nil {
				// A leftover keyring entry would shadow the key in the file.
				log.FromContext(ctx).Warnf("could not remove API key from keyring: %v", err)
			}

			saved, err := config.Save(cfg)
			if err != nil {
				return err
			}
			if useKeyring {
				log.FromContext(ctx).Printf("Stored API key in the system keyring\n")
			}
			return out.Message("Saved config to %s", saved)
		},
	}

	cmd.Flags().BoolVar(&useKeyring, "keyring", false, "Store the API key in the system keyring instead of the file")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config without asking")

	return cmd
}

var errInitCancelled = fmt.Errorf("init: %w", context.Canceled)

// askInit prompts on the terminal. The default team is picked from the
// workspace's teams when the key works, and typed otherwise.
func askInit(ctx context.Context, cfg config.Config) (initAnswers, error) {
	key, err := prompt.Text("Linear API key", prompt.TextOptions{
		Placeholder: "lin_api_...",
		Password:    true,
		Required:    true,
	})
	if err != nil {
		return initAnswers{}, err
	}
	if key.Cancelled {
		return initAnswers{}, errInitCancelled
	}

	client := linear.New(key.Value, linear.WithBaseURL(cfg.APIURL), linear.WithTimeout(cfg.Timeout))
	var teams []linear.Team
	err = withSpinner(ctx, "Checking API key...", func() error {
		teams, err = client.Teams(ctx)
		return err
	})
	if err != nil {
		log.FromContext(ctx).Warnf("could not list teams: %v", err)
	}
	if len(teams) > 0 {
		choices := make([]prompt.Choice, 0, len(teams)+1)
		choices = append(choices, prompt.Choice{Value: "-", Detail: "No default team"})
		for _, t := range teams {
			choices = append(choices, prompt.Choice{Value: t.Key, Detail: t.Name})
		}
		res, err := prompt.Select("Default team", choices)
		if err != nil {
			return initAnswers{}, err
		}
		if res.Cancelled {
			return initAnswers{}, errInitCancelled
		}
		ans := initAnswers{apiKey: key.Value}
		if res.Index > 0 {
			ans.team = res.Value
		}
		return ans, nil
	}

	team, err := prompt.Text("Default team key (optional)", prompt.TextOptions{
		Placeholder: "ENG",
		Default:     cfg.DefaultTeam,
	})
	if err != nil {
		return initAnswers{}, err
	}
	if team.Cancelled {
		return initAnswers{}, errInitCancelled
	}
	return initAnswers{apiKey: key.Value, team: team.Value}, nil
}

// readInit reads the API key and an optional team key as plain lines.
func readInit(in io.Reader) (initAnswers, error) {
	sc := bufio.NewScanner(in)
	var lines []string
	for len(lines) < 2 && sc.Scan() {
		lines = append(lines, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return initAnswers{}, fmt.Errorf("read stdin: %w", err)
	}
	if len(lines) == 0 || lines[0] == "" {
		return initAnswers{}, errs.Validation("API key must not be empty")
	}
	ans := initAnswers{apiKey: lines[0]}
	if len(lines) > 1 {
		ans.team = lines[1]
	}
	return ans, nil
}
