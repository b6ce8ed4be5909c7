package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raphi011/linear/internal/errs"
	"github.com/raphi011/linear/internal/output"
	"github.com/raphi011/linear/internal/ui/static"
)

func newIssueAttachmentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "attachments <id>",
		Short:   "List attachments of an issue",
		Args:    cobra.ExactArgs(1),
		Example: `  linear issue attachments ENG-123`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := sessionFrom(ctx)
			if err != nil {
				return err
			}
			atts, err := s.client.Attachments(ctx, args[0])
			if err != nil {
				return err
			}
			return printList(ctx, atts, static.AttachmentTable(atts), "No attachments found.")
		},
	}
}

func newIssueAttachCmd() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:     "attach <id> <url>",
		Short:   "Link a URL to an issue",
		Args:    cobra.ExactArgs(2),
		Example: `  linear issue attach ENG-123 https://github.com/acme/app/pull/42 -t "Fix PR"`,
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
			att, err := s.client.LinkURL(ctx, id, args[1], title)
			if err != nil {
				return err
			}
			return output.FromContext(ctx).Message("Attached %s to %s", att.URL, args[0])
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Attachment title (default: the URL)")

	return cmd
}

func newIssueUploadCmd() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "upload <id> <path>",
		Short: "Upload a file and attach it to an issue",
		Args:  cobra.ExactArgs(2),
		Example: `  linear issue upload ENG-123 ./screenshot.png
  linear issue upload ENG-123 crash.log -t "Crash log"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := requireFile(args[1]); err != nil {
				return err
			}
			s, err := sessionFrom(ctx)
			if err != nil {
				return err
			}
			id, err := s.issue(ctx, args[0])
			if err != nil {
				return err
			}
			att, err := s.client.UploadFile(ctx, id, args[1], title)
			if err != nil {
				return err
			}
			return output.FromContext(ctx).Message("Uploaded %s to %s", att.Title, args[0])
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Attachment title (default: the file name)")

	return cmd
}

// requireFile fails unless path names a readable regular file.
func requireFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return errs.Validation("file not found: %s", path)
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return errs.Validation("%s is a directory", path)
	}
	return nil
}
