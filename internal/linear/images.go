package linear

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/raphi011/linear/internal/errs"
	"github.com/raphi011/linear/internal/storage"
)

// Image is a markdown image embedded in an issue description.
type Image struct {
	// Index is the 1-based position of the image in the description.
	Index int    `json:"index"`
	Alt   string `json:"alt,omitempty"`
	URL   string `json:"url"`
}

var imageRe = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)

// ParseImages returns the images referenced as ![alt](url) in markdown,
// in order of appearance. A trailing link title is dropped from the URL.
func ParseImages(markdown string) []Image {
	var out []Image
	for _, m := range imageRe.FindAllStringSubmatch(markdown, -1) {
		fields := strings.Fields(m[2])
		if len(fields) == 0 {
			continue
		}
		out = append(out, Image{
			Index: len(out) + 1,
			Alt:   m[1],
			URL:   strings.Trim(fields[0], "<>"),
		})
	}
	return out
}

// maxAltName is the longest alt text used verbatim in a file name.
const maxAltName = 50

// ImageFilename names the local copy of img as <identifier>__<name>.<ext>.
// Short alt texts made of letters, digits, spaces, dashes and underscores
// become the name; anything else falls back to image_<index>. The
// extension comes from the URL path and defaults to png.
func ImageFilename(identifier string, img Image) string {
	name := fmt.Sprintf("image_%d", img.Index)
	if alt := strings.TrimSpace(img.Alt); alt != "" && len(alt) < maxAltName && plainName(alt) {
		name = strings.ReplaceAll(alt, " ", "_")
	}
	return fmt.Sprintf("%s__%s.%s", identifier, name, imageExt(img.URL))
}

func plainName(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ' ' && r != '-' && r != '_' {
			return false
		}
	}
	return true
}

func imageExt(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "png"
	}
	ext := strings.TrimPrefix(path.Ext(u.Path), ".")
	if ext == "" || len(ext) > 5 {
		return "png"
	}
	for _, r := range ext {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return "png"
		}
	}
	return strings.ToLower(ext)
}

// authorizes reports whether requests to u should carry the API key:
// Linear-hosted uploads and the configured API host do, anything else
// does not.
func (c *Client) authorizes(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())
	if host == "linear.app" || strings.HasSuffix(host, ".linear.app") {
		return true
	}
	base, err := url.Parse(c.baseURL)
	return err == nil && strings.EqualFold(base.Host, u.Host)
}

// DownloadImage fetches img and writes it into dir under ImageFilename.
// It returns the path written.
func (c *Client) DownloadImage(ctx context.Context, img Image, dir, identifier string) (string, error) {
	u, err := url.Parse(img.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", errs.Validation("invalid image URL: %s", img.URL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("create download request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if c.authorizes(u) {
		req.Header.Set("Authorization", c.apiKey)
	}

	done := c.log.Request("image")
	start := time.Now()
	resp, err := c.http.Do(req)
	done(time.Since(start))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", errs.Unavailable("image download failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return "", transferError(resp, "image download")
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errs.Unavailable("image download failed", err)
	}

	dest := filepath.Join(dir, ImageFilename(identifier, img))
	if err := storage.WriteFileAtomic(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	return dest, nil
}
