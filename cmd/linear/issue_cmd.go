package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/raphi011/linear/internal/errs"
	"github.com/raphi011/linear/internal/linear"
	"github.com/raphi011/linear/internal/log"
	"github.com/raphi011/linear/internal/output"
	"github.com/raphi011/linear/internal/ui/static"
)

func newIssueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "issue",
		Short:   "Work with issues",
		Aliases: []string{"i"},
		GroupID: GroupIssues,
		Long: `Work with issues.

Issues are referenced by identifier (ENG-123) or by internal id.`,
		Example: `  linear issue list --mine
  linear issue show ENG-123 --comments
  linear issue create -t "Fix login bug" --team ENG --priority high
  linear issue update ENG-123 --status "In Progress" --assignee me
  linear issue close ENG-123`,
	}

	cmd.AddCommand(newIssueListCmd("list"))
	cmd.AddCommand(newIssueShowCmd())
	cmd.AddCommand(newIssueCreateCmd())
	cmd.AddCommand(newIssueUpdateCmd())
	cmd.AddCommand(newIssueCloseCmd())
	cmd.AddCommand(newIssueCommentsCmd())
	cmd.AddCommand(newIssueCommentCmd())
	cmd.AddCommand(newIssueAttachmentsCmd())
	cmd.AddCommand(newIssueAttachCmd())
	cmd.AddCommand(newIssueUploadCmd())
	cmd.AddCommand(newIssueImagesCmd())
	cmd.AddCommand(newIssueRelationsCmd())
	cmd.AddCommand(newIssueRelateCmd())
	cmd.AddCommand(newIssueUnrelateCmd())
	cmd.AddCommand(newIssueParentCmd())

	return cmd
}

// newIssuesCmd is the top-level shortcut for "issue list".
func newIssuesCmd() *cobra.Command {
	cmd := newIssueListCmd("issues")
	cmd.GroupID = GroupIssues
	cmd.Short = "List issues (shortcut for 'issue list')"
	return cmd
}

func newIssueListCmd(use string) *cobra.Command {
	var (
		mine    bool
		team    string
		status  string
		project string
		label   string
		cycle   string
		limit   int
		all     bool
	)

	cmd := &cobra.Command{
		Use:     use,
		Short:   "List issues",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		Long: `List issues, most recently updated first.

Without --team the default_team from config is used, if set.
--all pages through every match (up to 5000 issues).`,
		Example: `  linear issues --mine
  linear issues --team ENG --status "In Progress"
  linear issues --project "Mobile App" --label bug
  linear issues --cycle 12 --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if limit <= 0 && !all {
				return errs.Validation("--limit must be positive, got %d", limit)
			}

			s, err := sessionFrom(ctx)
			if err != nil {
				return err
			}

			params := linear.ListIssuesParams{
				Status: status,
				Label:  label,
				Cycle:  cycle,
				Limit:  limit,
				All:    all,
			}
			if params.TeamID, err = s.optionalTeam(ctx, team); err != nil {
				return err
			}
			if project != "" {
				if params.ProjectID, err = s.project(ctx, project); err != nil {
					return err
				}
			}
			if mine {
				viewer, err := s.client.Viewer(ctx)
				if err != nil {
					return fmt.Errorf("look up current user: %w", err)
				}
				params.AssigneeID = viewer.ID
			}

			var issues []linear.Issue
			err = withSpinner(ctx, "Fetching issues...", func() error {
				issues, err = s.client.ListIssues(ctx, params)
				return err
			})
			if err != nil {
				return err
			}
			return printList(ctx, issues, static.IssueTable(issues), "No issues found.")
		},
	}

	cmd.Flags().BoolVar(&mine, "mine", false, "Only issues assigned to you")
	cmd.Flags().StringVarP(&team, "team", "T", "", "Team key (default: default_team)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Workflow state name (substring, case-insensitive)")
	cmd.Flags().StringVarP(&project, "project", "p", "", "Project name")
	cmd.Flags().StringVarP(&label, "label", "l", "", "Label name (substring, case-insensitive)")
	cmd.Flags().StringVarP(&cycle, "cycle", "c", "", "Cycle number or name")
	cmd.Flags().IntVarP(&limit, "limit", "n", linear.DefaultListLimit, "Maximum number of issues")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Fetch all pages")
	cmd.MarkFlagsMutuallyExclusive("limit", "all")
	registerTeamCompletion(cmd)

	return cmd
}

func newIssueShowCmd() *cobra.Command {
	var (
		comments bool
		copyURL  bool
	)

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show issue details",
		Args:  cobra.ExactArgs(1),
		Example: `  linear issue show ENG-123
  linear issue show ENG-123 --comments
  linear issue show ENG-123 --copy     # copy the issue URL`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := sessionFrom(ctx)
			if err != nil {
				return err
			}

			// issue(id:) accepts identifiers, so reads skip resolution.
			issue, err := s.client.Issue(ctx, args[0])
			if err != nil {
				return err
			}

			var list []linear.Comment
			if comments {
				if list, err = s.client.Comments(ctx, issue.ID); err != nil {
					return err
				}
			}
			if copyURL {
				copyToClipboard(ctx, issue.URL)
			}

			out := output.FromContext(ctx)
			if out.JSONMode() {
				if !comments {
					return out.JSON(issue)
				}
				if list == nil {
					list = []linear.Comment{}
				}
				return out.JSON(struct {
					*linear.Issue
					Comments []linear.Comment `json:"comments"`
				}{issue, list})
			}

			out.Print(static.IssueDetail(issue))
			if comments {
				out.Println()
				if len(list) == 0 {
					out.Println("No comments.")
				} else {
					out.Print(static.CommentTable(list, time.Now()).Render())
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&comments, "comments", false, "Also list comments")
	cmd.Flags().BoolVar(&copyURL, "copy", false, "Copy the issue URL to the clipboard")

	return cmd
}

func newIssueCreateCmd() *cobra.Command {
	var (
		title       string
		description string
		team        string
		project     string
		priority    string
		copyURL     bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an issue",
		Args:  cobra.NoArgs,
		Long: `Create an issue.

Without --team the default_team from config is used.
Priority is 0-4 or one of none, urgent, high, medium, low.`,
		Example: `  linear issue create -t "Fix login bug"
  linear issue create -t "Fix login bug" --team ENG -p "Mobile App" --priority 2
  linear issue create -t "Spike" -d "Investigate caching" --copy`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if strings.TrimSpace(title) == "" {
				return errs.Validation("--title is required")
			}
			input := linear.IssueCreateInput{Title: title, Description: description}
			if cmd.Flags().Changed("priority") {
				p, err := linear.ParsePriority(priority)
				if err != nil {
					return err
				}
				input.Priority = &p
			}

			s, err := sessionFrom(ctx)
			if err != nil {
				return err
			}
			if input.TeamID, err = s.team(ctx, team); err != nil {
				return err
			}
			if project != "" {
				if input.ProjectID, err = s.project(ctx, project); err != nil {
					return err
				}
			}

			created, err := s.client.CreateIssue(ctx, input)
			if err != nil {
				return err
			}
			if copyURL {
				copyToClipboard(ctx, created.URL)
			}
			return output.FromContext(ctx).Message("Created %s - %s", created.Identifier, created.Title)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Issue title (required)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Issue description (markdown)")
	cmd.Flags().StringVarP(&team, "team", "T", "", "Team key (default: default_team)")
	cmd.Flags().StringVarP(&project, "project", "p", "", "Project name")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority: 0-4 or none, urgent, high, medium, low")
	cmd.Flags().BoolVar(&copyURL, "copy", false, "Copy the new issue URL to the clipboard")
	registerTeamCompletion(cmd)
	_ = cmd.RegisterFlagCompletionFunc("priority", completePriorities)

	return cmd
}

func newIssueUpdateCmd() *cobra.Command {
	var (
		title       string
		description string
		status      string
		priority    string
		assignee    string
		project     string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an issue",
		Args:  cobra.ExactArgs(1),
		Long: `Update an issue. Only the given fields are changed.

--status takes a workflow state name of the issue's team.
--assignee takes a user id or "me".`,
		Example: `  linear issue update ENG-123 --status Done
  linear issue update ENG-123 --assignee me --priority urgent
  linear issue update ENG-123 --title "New title" -p "Mobile App"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flags := cmd.Flags()
			ref := args[0]

			var u linear.IssueUpdate
			if flags.Changed("title") {
				if strings.TrimSpace(title) == "" {
					return errs.Validation("--title must not be empty")
				}
				u.Title = &title
			}
			if flags.Changed("description") {
				u.Description = &description
			}
			if flags.Changed("priority") {
				p, err := linear.ParsePriority(priority)
				if err != nil {
					return err
				}
				u.Priority = &p
			}
			if !flags.Changed("status") && !flags.Changed("assignee") && !flags.Changed("project") && u.Empty() {
				return errs.WithSuggestion(
					errs.Validation("no updates specified"),
					"Pass at least one of --title, --description, --status, --priority, --assignee, --project",
				)
			}

			s, err := sessionFrom(ctx)
			if err != nil {
				return err
			}
			id, err := s.issue(ctx, ref)
			if err != nil {
				return err
			}

			if flags.Changed("status") {
				teamID, err := s.issueTeam(ctx, ref, id)
				if err != nil {
					return err
				}
				states, err := s.client.WorkflowStates(ctx, teamID)
				if err != nil {
					return err
				}
				state, err := findState(states, status)
				if err != nil {
					return err
				}
				u.StateID = &state.ID
			}
			if flags.Changed("assignee") {
				assigneeID, err := resolveAssignee(ctx, s, assignee)
				if err != nil {
					return err
				}
				u.AssigneeID = &assigneeID
			}
			if flags.Changed("project") {
				projectID, err := s.project(ctx, project)
				if err != nil {
					return err
				}
				u.ProjectID = &projectID
			}

			updated, err := s.client.UpdateIssue(ctx, id, u)
			if err != nil {
				return err
			}
			return output.FromContext(ctx).Message("Updated %s - %s", updated.Identifier, updated.Title)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description (markdown)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Workflow state name")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority: 0-4 or none, urgent, high, medium, low")
	cmd.Flags().StringVar(&assignee, "assignee", "", `User id, or "me"`)
	cmd.Flags().StringVarP(&project, "project", "p", "", "Project name")
	_ = cmd.RegisterFlagCompletionFunc("priority", completePriorities)

	return cmd
}

func newIssueCloseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close <id>",
		Short: "Move an issue to its team's completed state",
		Args:  cobra.ExactArgs(1),
		Example: `  linear issue close ENG-123`,
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
			teamID, err := s.issueTeam(ctx, args[0], id)
			if err != nil {
				return err
			}
			states, err := s.client.WorkflowStates(ctx, teamID)
			if err != nil {
				return err
			}
			done, ok := completedState(states)
			if !ok {
				return errs.NotFound("no completed workflow state in the issue's team")
			}

			updated, err := s.client.UpdateIssue(ctx, id, linear.IssueUpdate{StateID: &done.ID})
			if err != nil {
				return err
			}
			return output.FromContext(ctx).Message("Closed %s - %s", updated.Identifier, updated.Title)
		},
	}

	return cmd
}

// resolveAssignee maps "me" to the viewer's id; anything else is taken
// as a user id.
func resolveAssignee(ctx context.Context, s *session, assignee string) (string, error) {
	assignee = strings.TrimSpace(assignee)
	if assignee == "" {
		return "", errs.Validation("--assignee must not be empty")
	}
	if !strings.EqualFold(assignee, "me") {
		return assignee, nil
	}
	viewer, err := s.client.Viewer(ctx)
	if err != nil {
		return "", fmt.Errorf("look up current user: %w", err)
	}
	return viewer.ID, nil
}

func copyToClipboard(ctx context.Context, text string) {
	if text == "" {
		return
	}
	if err := clipboard.WriteAll(text); err != nil {
		log.FromContext(ctx).Warnf("could not copy to clipboard: %v", err)
		return
	}
	log.FromContext(ctx).Printf("Copied %s to clipboard\n", text)
}
