package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/linear/internal/errs"
	"github.com/raphi011/linear/internal/linear"
	"github.com/raphi011/linear/internal/output"
	"github.com/raphi011/linear/internal/ui/static"
)

func newIssueRelationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "relations <id>",
		Short:   "Show parent, children and linked issues",
		Args:    cobra.ExactArgs(1),
		Example: `  linear issue relations ENG-123`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := sessionFrom(ctx)
			if err != nil {
				return err
			}
			rels, err := s.client.Relations(ctx, args[0])
			if err != nil {
				return err
			}
			entries := rels.Entries()
			return printList(ctx, entries, static.RelationTable(entries), "No relations found.")
		},
	}
}

func newIssueRelateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "relate <id> <type> <other>",
		Short: "Link two issues",
		Long: `Link two issues.

Types: blocks, duplicate, related. The relation reads left to right:
"relate ENG-1 blocks ENG-2" means ENG-1 blocks ENG-2.`,
		Args: cobra.ExactArgs(3),
		Example: `  linear issue relate ENG-1 blocks ENG-2
  linear issue relate ENG-5 duplicate ENG-3`,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) != 1 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			types := make([]string, len(linear.RelationTypes))
			for i, t := range linear.RelationTypes {
				types[i] = string(t)
			}
			return types, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			typ, err := parseRelationType(args[1])
			if err != nil {
				return err
			}
			if strings.EqualFold(args[0], args[2]) {
				return errs.Validation("an issue cannot be related to itself")
			}

			s, err := sessionFrom(ctx)
			if err != nil {
				return err
			}
			id, err := s.issue(ctx, args[0])
			if err != nil {
				return err
			}
			otherID, err := s.issue(ctx, args[2])
			if err != nil {
				return err
			}
			if _, err := s.client.CreateRelation(ctx, id, otherID, typ); err != nil {
				return err
			}
			return output.FromContext(ctx).Message("%s %s %s", args[0], typ, args[2])
		},
	}
}

func newIssueUnrelateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "unrelate <id> <other>",
		Short:   "Remove the link between two issues",
		Args:    cobra.ExactArgs(2),
		Example: `  linear issue unrelate ENG-1 ENG-2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := sessionFrom(ctx)
			if err != nil {
				return err
			}
			id, err := s.issue(ctx, args[0])
			if err != nil {
				return err
			}
			rels, err := s.client.Relations(ctx, id)
			if err != nil {
				return err
			}
			rel, ok := rels.Find(args[1])
			if !ok {
				return errs.NotFound("no relation between %s and %s", args[0], args[1])
			}
			if err := s.client.DeleteRelation(ctx, rel.ID); err != nil {
				return err
			}
			return output.FromContext(ctx).Message("Removed %s relation between %s and %s", rel.Type, args[0], args[1])
		},
	}
}

func newIssueParentCmd() *cobra.Command {
	var unset bool

	cmd := &cobra.Command{
		Use:   "parent <id> [parent]",
		Short: "Set or remove an issue's parent",
		Args:  cobra.RangeArgs(1, 2),
		Example: `  linear issue parent ENG-4 ENG-3
  linear issue parent ENG-4 --unset`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			switch {
			case unset && len(args) == 2:
				return errs.Validation("pass either a parent or --unset, not both")
			case !unset && len(args) == 1:
				return errs.WithSuggestion(
					errs.Validation("no parent specified"),
					"Pass a parent issue, or --unset to remove the current one",
				)
			}

			s, err := sessionFrom(ctx)
			if err != nil {
				return err
			}
			id, err := s.issue(ctx, args[0])
			if err != nil {
				return err
			}

			out := output.FromContext(ctx)
			if unset {
				if _, err := s.client.UpdateIssue(ctx, id, linear.IssueUpdate{ClearParent: true}); err != nil {
					return err
				}
				return out.Message("Removed parent of %s", args[0])
			}

			parentID, err := s.issue(ctx, args[1])
			if err != nil {
				return err
			}
			if parentID == id {
				return errs.Validation("an issue cannot be its own parent")
			}
			if _, err := s.client.UpdateIssue(ctx, id, linear.IssueUpdate{ParentID: &parentID}); err != nil {
				return err
			}
			return out.Message("Set parent of %s to %s", args[0], args[1])
		},
	}

	cmd.Flags().BoolVar(&unset, "unset", false, "Remove the current parent")

	return cmd
}
