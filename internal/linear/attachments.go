package linear

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/raphi011/linear/internal/errs"
)

const attachmentsQuery = `
query Attachments($issueId: String!) {
  issue(id: $issueId) {
    attachments(first: 250) {
      nodes { id title subtitle url createdAt }
    }
  }
}
`

const linkURLMutation = `
mutation AttachmentLinkURL($issueId: String!, $url: String!, $title: String) {
  attachmentLinkURL(issueId: $issueId, url: $url, title: $title) {
    success
    attachment { id title subtitle url createdAt }
  }
}
`

const fileUploadMutation = `
mutation FileUpload($filename: String!, $contentType: String!, $size: Int!) {
  fileUpload(filename: $filename, contentType: $contentType, size: $size) {
    success
    uploadFile {
      uploadUrl
      assetUrl
      headers { key value }
    }
  }
}
`

const createAttachmentMutation = `
mutation AttachmentCreate($issueId: String!, $url: String!, $title: String!) {
  attachmentCreate(input: { issueId: $issueId, url: $url, title: $title }) {
    success
    attachment { id title subtitle url createdAt }
  }
}
`

// Attachments returns the attachments of an issue.
func (c *Client) Attachments(ctx context.Context, issueID string) ([]Attachment, error) {
	var data struct {
		Issue *struct {
			Attachments struct {
				Nodes []Attachment `json:"nodes"`
			} `json:"attachments"`
		} `json:"issue"`
	}
	if err := c.do(ctx, "attachments", attachmentsQuery, map[string]any{"issueId": issueID}, &data); err != nil {
		return nil, err
	}
	if data.Issue == nil {
		return nil, errs.NotFound("issue not found: %s", issueID)
	}
	return data.Issue.Attachments.Nodes, nil
}

type attachmentResult struct {
	Success    bool        `json:"success"`
	Attachment *Attachment `json:"attachment"`
}

func (r attachmentResult) get(op string) (*Attachment, error) {
	if !r.Success || r.Attachment == nil {
		return nil, errs.Rejected(http.StatusOK, op+" was not successful")
	}
	return r.Attachment, nil
}

// LinkURL attaches url to an issue. The title defaults to the URL.
func (c *Client) LinkURL(ctx context.Context, issueID, url, title string) (*Attachment, error) {
	if title == "" {
		title = url
	}
	var data struct {
		Result attachmentResult `json:"attachmentLinkURL"`
	}
	vars := map[string]any{"issueId": issueID, "url": url, "title": title}
	if err := c.do(ctx, "attachmentLinkURL", linkURLMutation, vars, &data); err != nil {
		return nil, err
	}
	return data.Result.get("attachmentLinkURL")
}

type uploadHeader struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type uploadTarget struct {
	UploadURL string         `json:"uploadUrl"`
	AssetURL  string         `json:"assetUrl"`
	Headers   []uploadHeader `json:"headers"`
}

// UploadFile uploads the file at path and attaches it to an issue.
// The title defaults to the file name.
//
// The upload takes three requests: fileUpload returns a signed URL, the
// bytes are PUT there, and attachmentCreate links the resulting asset.
func (c *Client) UploadFile(ctx context.Context, issueID, path, title string) (*Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Validation("file not found: %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	filename := filepath.Base(path)
	if title == "" {
		title = filename
	}
	contentType := ContentType(filename)

	var up struct {
		FileUpload struct {
			Success    bool          `json:"success"`
			UploadFile *uploadTarget `json:"uploadFile"`
		} `json:"fileUpload"`
	}
	vars := map[string]any{"filename": filename, "contentType": contentType, "size": len(data)}
	if err := c.do(ctx, "fileUpload", fileUploadMutation, vars, &up); err != nil {
		return nil, err
	}
	target := up.FileUpload.UploadFile
	if target == nil || target.UploadURL == "" {
		return nil, errs.Rejected(http.StatusOK, "fileUpload returned no upload URL")
	}

	if err := c.put(ctx, target, contentType, data); err != nil {
		return nil, err
	}

	var created struct {
		Result attachmentResult `json:"attachmentCreate"`
	}
	vars = map[string]any{"issueId": issueID, "url": target.AssetURL, "title": title}
	if err := c.do(ctx, "attachmentCreate", createAttachmentMutation, vars, &created); err != nil {
		return nil, err
	}
	return created.Result.get("attachmentCreate")
}

// put sends data to the signed upload URL. The API key is not sent.
func (c *Client) put(ctx context.Context, target *uploadTarget, contentType string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target.UploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Cache-Control", "public, max-age=31536000")
	for _, h := range target.Headers {
		req.Header.Set(h.Key, h.Value)
	}

	done := c.log.Request("upload")
	start := time.Now()
	resp, err := c.http.Do(req)
	done(time.Since(start))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return errs.Unavailable("file upload failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return transferError(resp, "upload")
	}
	return nil
}

// transferError maps a failed upload or download outside the GraphQL
// endpoint to an error kind.
func transferError(resp *http.Response, what string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	msg := fmt.Sprintf("%s failed (status %d)", what, resp.StatusCode)
	if detail := strings.TrimSpace(string(body)); detail != "" {
		msg += ": " + detail
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return errs.Unavailable(msg, nil)
	}
	return errs.Rejected(resp.StatusCode, msg)
}

var contentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".json": "application/json",
	".xml":  "application/xml",
	".zip":  "application/zip",
	".tar":  "application/x-tar",
	".gz":   "application/gzip",
	".csv":  "text/csv",
	".log":  "text/plain",
}

// ContentType guesses a MIME type from the file extension.
func ContentType(filename string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}
