package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/raphi011/linear/internal/cache"
	"github.com/raphi011/linear/internal/config"
	"github.com/raphi011/linear/internal/errs"
	"github.com/raphi011/linear/internal/output"
	"github.com/raphi011/linear/internal/resolve"
	"github.com/raphi011/linear/internal/ui/static"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "cache",
		Short:       "Inspect or reset the name resolution cache",
		GroupID:     GroupConfig,
		Annotations: offline(),
		Long: `Inspect or reset the name resolution cache.

Team keys and project names are cached next to config.toml so repeated
commands skip the lookup. Entries older than cache_ttl are re-fetched on
next use, and 'linear teams' / 'linear projects' refresh them in bulk.`,
	}

	cmd.AddCommand(newCacheShowCmd())
	cmd.AddCommand(newCacheClearCmd())

	return cmd
}

func newCacheShowCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:     "show",
		Short:   "List cached entries",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			store, err := cache.Load(cache.Path(cfg.Dir))
			if err != nil {
				return err
			}
			entries, err := filterEntries(store.Entries(), kind)
			if err != nil {
				return err
			}
			return printList(ctx, entries, static.CacheTable(entries, cfg.CacheTTL, time.Now()), "Cache is empty.")
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Only entries of this kind (team or project)")
	_ = cmd.RegisterFlagCompletionFunc("kind", cobra.FixedCompletions(
		[]string{string(cache.KindTeam), string(cache.KindProject)}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func newCacheClearCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "clear [name]",
		Short: "Remove cached entries",
		Long: `Remove cached entries.

Without arguments every entry is removed. With a name, only that entry
of --kind is removed, forcing a fresh lookup on next use.`,
		Args: cobra.MaximumNArgs(1),
		Example: `  linear cache clear
  linear cache clear --kind project
  linear cache clear --kind team ENG`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			store, err := cache.Load(cache.Path(cfg.Dir))
			if err != nil {
				return err
			}
			out := output.FromContext(ctx)

			if len(args) == 1 {
				if kind == "" {
					return errs.Validation("--kind is required when clearing a single entry")
				}
				k, err := cache.ParseKind(kind)
				if err != nil {
					return err
				}
				_, found := store.Get(k, resolve.NormalizeKey(k, args[0]))
				if err := resolve.New(store, nil).Invalidate(k, args[0]); err != nil {
					return err
				}
				if !found {
					return out.Message("No cached %s %q", k, args[0])
				}
				return out.Message("Cleared cached %s %q", k, args[0])
			}

			entries, err := filterEntries(store.Entries(), kind)
			if err != nil {
				return err
			}
			if kind == "" {
				store.Clear()
			} else {
				for _, e := range entries {
					store.Delete(e.Kind, e.Key)
				}
			}
			if err := store.Save(); err != nil {
				return err
			}
			return out.Message("Cleared %d cache %s", len(entries), plural(len(entries), "entry", "entries"))
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Only clear entries of this kind (team or project)")

	return cmd
}

func filterEntries(entries []cache.Entry, kind string) ([]cache.Entry, error) {
	if kind == "" {
		return entries, nil
	}
	k, err := cache.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	var out []cache.Entry
	for _, e := range entries {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out, nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
