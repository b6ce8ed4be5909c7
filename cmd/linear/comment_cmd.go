package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/raphi011/linear/internal/errs"
	"github.com/raphi011/linear/internal/output"
	"github.com/raphi011/linear/internal/ui/static"
)

func newIssueCommentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "comments <id>",
		Short:   "List comments on an issue",
		Args:    cobra.ExactArgs(1),
		Example: `  linear issue comments ENG-123`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := sessionFrom(ctx)
			if err != nil {
				return err
			}
			comments, err := s.client.Comments(ctx, args[0])
			if err != nil {
				return err
			}
			return printList(ctx, comments, static.CommentTable(comments, time.Now()), "No comments found.")
		},
	}
}

func newIssueCommentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comment <id> <text>",
		Short: "Add a comment to an issue",
		Long: `Add a comment to an issue.

Pass "-" as text to read the comment body from stdin.`,
		Args: cobra.ExactArgs(2),
		Example: `  linear issue comment ENG-123 "Reproduced on staging"
  git log -1 --format=%B | linear issue comment ENG-123 -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			body := args[1]
			if body == "-" {
				var err error
				if body, err = readStdin(cmd.InOrStdin()); err != nil {
					return err
				}
			}
			if strings.TrimSpace(body) == "" {
				return errs.Validation("comment body must not be empty")
			}

			s, err := sessionFrom(ctx)
			if err != nil {
				return err
			}
			id, err := s.issue(ctx, args[0])
			if err != nil {
				return err
			}
			if _, err := s.client.CreateComment(ctx, id, body); err != nil {
				return err
			}
			return output.FromContext(ctx).Message("Added comment to %s", args[0])
		},
	}
}

// readStdin reads all of in. An interactive terminal is refused rather
// than waited on.
func readStdin(in io.Reader) (string, error) {
	if isTerminal(in) {
		return "", errs.WithSuggestion(
			errs.Validation("no input on stdin"),
			"Pipe the text in, e.g. echo 'text' | linear issue comment ENG-123 -",
		)
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// isTerminal reports whether v is a file attached to a terminal.
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
