package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/raphi011/linear/internal/cache"
	"github.com/raphi011/linear/internal/log"
	"github.com/raphi011/linear/internal/ui/static"
)

func newTeamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "teams",
		Short:   "List teams",
		GroupID: GroupWorkspace,
		Args:    cobra.NoArgs,
		Long: `List teams visible to your API key.

The listing also refreshes the cached team key to id mapping.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := sessionFrom(ctx)
			if err != nil {
				return err
			}
			teams, err := s.client.Teams(ctx)
			if err != nil {
				return err
			}

			canonical := make(map[string]string, len(teams))
			for _, t := range teams {
				canonical[t.ID] = t.Key
			}
			reconcile(ctx, s, cache.KindTeam, canonical)

			return printList(ctx, teams, static.TeamTable(teams), "No teams found.")
		},
	}
}

func newProjectsCmd() *cobra.Command {
	var team string

	cmd := &cobra.Command{
		Use:     "projects",
		Short:   "List projects",
		GroupID: GroupWorkspace,
		Args:    cobra.NoArgs,
		Example: `  linear projects
  linear projects --team ENG`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := sessionFrom(ctx)
			if err != nil {
				return err
			}
			projects, err := s.client.Projects(ctx, s.flagTeamKey(team))
			if err != nil {
				return err
			}

			canonical := make(map[string]string, len(projects))
			for _, p := range projects {
				canonical[p.ID] = p.Name
			}
			reconcile(ctx, s, cache.KindProject, canonical)

			return printList(ctx, projects, static.ProjectTable(projects), "No projects found.")
		},
	}

	cmd.Flags().StringVarP(&team, "team", "T", "", "Only projects of this team")
	registerTeamCompletion(cmd)

	return cmd
}

func newCyclesCmd() *cobra.Command {
	var team string

	cmd := &cobra.Command{
		Use:     "cycles",
		Short:   "List cycles",
		GroupID: GroupWorkspace,
		Args:    cobra.NoArgs,
		Example: `  linear cycles --team ENG`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := sessionFrom(ctx)
			if err != nil {
				return err
			}
			cycles, err := s.client.Cycles(ctx, s.optionalTeamKey(team))
			if err != nil {
				return err
			}
			return printList(ctx, cycles, static.CycleTable(cycles), "No cycles found.")
		},
	}

	cmd.Flags().StringVarP(&team, "team", "T", "", "Team key (default: default_team)")
	registerTeamCompletion(cmd)

	return cmd
}

func newLabelsCmd() *cobra.Command {
	var team string

	cmd := &cobra.Command{
		Use:     "labels",
		Short:   "List issue labels",
		GroupID: GroupWorkspace,
		Args:    cobra.NoArgs,
		Example: `  linear labels --team ENG`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := sessionFrom(ctx)
			if err != nil {
				return err
			}
			labels, err := s.client.Labels(ctx, s.optionalTeamKey(team))
			if err != nil {
				return err
			}
			return printList(ctx, labels, static.LabelTable(labels), "No labels found.")
		},
	}

	cmd.Flags().StringVarP(&team, "team", "T", "", "Team key (default: default_team)")
	registerTeamCompletion(cmd)

	return cmd
}

// reconcile feeds an authoritative listing back into the cache. Failing
// to persist the correction does not fail the listing.
func reconcile(ctx context.Context, s *session, kind cache.Kind, canonical map[string]string) {
	if err := s.resolver.Reconcile(kind, canonical); err != nil {
		log.FromContext(ctx).Warnf("could not update cache: %v", err)
	}
}
