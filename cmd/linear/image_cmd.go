package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/linear/internal/errs"
	"github.com/raphi011/linear/internal/linear"
	"github.com/raphi011/linear/internal/log"
	"github.com/raphi011/linear/internal/output"
)

func newIssueImagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "Work with images embedded in an issue description",
		Args:  cobra.NoArgs,
	}
	cmd.AddCommand(newIssueImagesDownloadCmd())
	return cmd
}

// imageDownload is the outcome of one image in JSON output.
type imageDownload struct {
	Index int    `json:"index"`
	URL   string `json:"url"`
	Path  string `json:"path,omitempty"`
	Error string `json:"error,omitempty"`

	err error
}

func newIssueImagesDownloadCmd() *cobra.Command {
	var (
		dir   string
		index int
	)

	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download the images in an issue description",
		Long: `Download the images embedded in an issue description.

Files are named <issue>__<alt text>.<ext>, or <issue>__image_<n>.<ext> when
the alt text is empty or not usable as a file name. Images hosted by Linear
are fetched with your API key.`,
		Args: cobra.ExactArgs(1),
		Example: `  linear issue images download ENG-123
  linear issue images download ENG-123 -d ./screens --index 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if index < 0 {
				return errs.Validation("--index must be 1 or greater")
			}
			s, err := sessionFrom(ctx)
			if err != nil {
				return err
			}
			out := output.FromContext(ctx)

			issue, err := s.client.Issue(ctx, args[0])
			if err != nil {
				return err
			}
			if strings.TrimSpace(issue.Description) == "" {
				return out.Message("Issue %s has no description", issue.Identifier)
			}
			images := linear.ParseImages(issue.Description)
			if len(images) == 0 {
				return out.Message("No images found in %s description", issue.Identifier)
			}
			if index > 0 {
				if index > len(images) {
					return errs.Validation("image %d not found: %s has %d image(s)", index, issue.Identifier, len(images))
				}
				images = images[index-1 : index]
			}

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}

			var results []imageDownload
			err = withSpinner(ctx, "Downloading images...", func() error {
				var dlErr error
				results, dlErr = downloadImages(ctx, s.client, images, dir, issue.Identifier)
				return dlErr
			})
			if err != nil {
				return err
			}
			return reportDownloads(ctx, results)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to write images to")
	cmd.Flags().IntVarP(&index, "index", "i", 0, "Download only the n-th image (1-based)")

	return cmd
}

// downloadImages fetches every image in turn. A failed image is recorded
// and the rest still run; only cancellation stops the loop.
func downloadImages(ctx context.Context, client *linear.Client, images []linear.Image, dir, identifier string) ([]imageDownload, error) {
	results := make([]imageDownload, 0, len(images))
	for _, img := range images {
		r := imageDownload{Index: img.Index, URL: img.URL}
		path, err := client.DownloadImage(ctx, img, dir, identifier)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			r.Error, r.err = err.Error(), err
		}
		r.Path = path
		results = append(results, r)
	}
	return results, nil
}

func reportDownloads(ctx context.Context, results []imageDownload) error {
	out := output.FromContext(ctx)
	l := log.FromContext(ctx)

	var (
		failed   int
		firstErr error
	)
	for _, r := range results {
		if r.err != nil {
			failed++
			if firstErr == nil {
				firstErr = r.err
			}
		}
	}

	if out.Format() == output.FormatJSON {
		if err := out.JSON(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Error != "" {
				l.Warnf("failed to download image %d (%s): %s", r.Index, r.URL, r.Error)
				continue
			}
			out.Printf("Downloaded image %d to %s\n", r.Index, r.Path)
		}
		switch {
		case failed > 0 && failed < len(results):
			out.Printf("Downloaded %d/%d images (%d failed)\n", len(results)-failed, len(results), failed)
		case failed == 0 && len(results) > 1:
			out.Printf("Downloaded %d images\n", len(results))
		}
	}

	if failed == len(results) {
		return fmt.Errorf("no images downloaded: %w", firstErr)
	}
	return nil
}
