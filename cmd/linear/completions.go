package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/linear/internal/cache"
	"github.com/raphi011/linear/internal/config"
)

// registerTeamCompletion completes --team from team keys in the cache.
func registerTeamCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("team", completeTeams)
}

// completeTeams reads the cache file directly: completion runs without
// PersistentPreRunE, so there is no session and no network access.
func completeTeams(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	dir, err := config.Dir()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	store, err := cache.Load(cache.Path(dir))
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	prefix := strings.ToUpper(toComplete)
	var keys []string
	for _, e := range store.Entries() {
		if e.Kind == cache.KindTeam && strings.HasPrefix(e.Key, prefix) {
			keys = append(keys, e.Key)
		}
	}
	return keys, cobra.ShellCompDirectiveNoFileComp
}

func completePriorities(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"urgent\tPriority 1",
		"high\tPriority 2",
		"medium\tPriority 3",
		"low\tPriority 4",
		"none\tNo priority",
	}, cobra.ShellCompDirectiveNoFileComp
}
