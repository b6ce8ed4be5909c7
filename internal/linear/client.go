// Package linear is a small client for the Linear GraphQL API.
//
// It covers the operations the CLI needs (issues, comments, attachments,
// relations, teams, projects, cycles, labels) and maps every failure onto
// the error kinds in package errs:
//
//   - transport errors, timeouts, HTTP 429 and 5xx: RemoteUnavailableError
//   - other HTTP 4xx and GraphQL errors: RemoteRejectedError (server message verbatim)
//   - "Entity not found" GraphQL errors and empty lookups: NotFoundError
//
// The client never retries.
package linear

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/raphi011/linear/internal/errs"
	"github.com/raphi011/linear/internal/log"
)

// DefaultBaseURL is the public Linear API host.
const DefaultBaseURL = "https://api.linear.app"

// DefaultTimeout bounds every request.
const DefaultTimeout = 30 * time.Second

// maxErrorBodySize caps how much of a failed response is read.
const maxErrorBodySize = 64 << 10

const userAgent = "linear-cli"

// Client talks to the Linear GraphQL endpoint.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	log     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another host, e.g. an httptest server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger enables request logging.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New creates a client authenticating with apiKey.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     log.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the GraphQL URL.
func (c *Client) Endpoint() string {
	return c.baseURL + "/graphql"
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// do runs one GraphQL operation and decodes data into out.
// op names the operation in logs.
func (c *Client) do(ctx context.Context, op, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(gqlRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("User-Agent", userAgent)

	done := c.log.Request(op)
	start := time.Now()
	resp, err := c.http.Do(req)
	done(time.Since(start))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return ctxErr
		}
		return errs.WithSuggestion(
			errs.Unavailable("request to Linear failed", err),
			"Check your internet connection and try again",
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	var gr gqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return errs.Unavailable("invalid response from Linear", err)
	}
	if len(gr.Errors) > 0 {
		return graphQLError(http.StatusOK, gr.Errors)
	}
	if len(gr.Data) == 0 || string(gr.Data) == "null" {
		return errs.Rejected(http.StatusOK, "empty response from API")
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(gr.Data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

// statusError maps a non-200 response to an error kind.
func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))

	var gr gqlResponse
	if json.Unmarshal(data, &gr) == nil && len(gr.Errors) > 0 {
		if resp.StatusCode >= 500 {
			return errs.Unavailable(fmt.Sprintf("Linear API error (status %d)", resp.StatusCode), errors.New(joinMessages(gr.Errors)))
		}
		return graphQLError(resp.StatusCode, gr.Errors)
	}

	msg := strings.TrimSpace(string(data))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return errs.WithSuggestion(
			errs.Unavailable(fmt.Sprintf("rate limited (status %d)", resp.StatusCode), errors.New(msg)),
			"Wait a moment and try again",
		)
	case resp.StatusCode >= 500:
		return errs.Unavailable(fmt.Sprintf("Linear API error (status %d)", resp.StatusCode), errors.New(msg))
	case resp.StatusCode == http.StatusUnauthorized:
		return errs.WithSuggestion(
			errs.Rejected(resp.StatusCode, fmt.Sprintf("API error (status %d): %s", resp.StatusCode, msg)),
			"Check LINEAR_API_KEY or run 'linear init'",
		)
	}
	return errs.Rejected(resp.StatusCode, fmt.Sprintf("API error (status %d): %s", resp.StatusCode, msg))
}

// graphQLError maps GraphQL errors to an error kind.
func graphQLError(status int, gqlErrs []gqlError) error {
	for _, e := range gqlErrs {
		code, _ := e.Extensions["code"].(string)
		if strings.EqualFold(code, "RATELIMITED") {
			return errs.WithSuggestion(
				errs.Unavailable("rate limited", errors.New(e.Message)),
				"Wait a moment and try again",
			)
		}
		if strings.HasPrefix(strings.ToLower(e.Message), "entity not found") {
			return errs.NotFound("%s", e.Message)
		}
		if strings.EqualFold(code, "AUTHENTICATION_ERROR") {
			return errs.WithSuggestion(
				errs.Rejected(status, e.Message),
				"Check LINEAR_API_KEY or run 'linear init'",
			)
		}
	}
	return errs.Rejected(status, joinMessages(gqlErrs))
}

func joinMessages(gqlErrs []gqlError) string {
	msgs := make([]string, 0, len(gqlErrs))
	for _, e := range gqlErrs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// PageInfo is the cursor state of a connection.
type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type page[T any] struct {
	Nodes    []T      `json:"nodes"`
	PageInfo PageInfo `json:"pageInfo"`
}

// collect fetches pages of the connection named field in order until the
// server reports no further pages or limit nodes are collected. An empty
// page or a cursor that does not advance also ends the walk. The query
// must declare $first: Int! and $after: String.
func collect[T any](ctx context.Context, c *Client, op, query, field string, vars map[string]any, pageSize, limit int) ([]T, error) {
	var (
		out   []T
		after string
	)
	for {
		v := make(map[string]any, len(vars)+2)
		for k, val := range vars {
			v[k] = val
		}
		v["first"] = min(pageSize, limit-len(out))
		if after != "" {
			v["after"] = after
		}

		var data map[string]page[T]
		if err := c.do(ctx, op, query, v, &data); err != nil {
			return nil, err
		}
		p := data[field]
		out = append(out, p.Nodes...)
		c.log.Debug("page fetched", "op", op, "total", len(out), "more", p.PageInfo.HasNextPage)

		if !p.PageInfo.HasNextPage || len(out) >= limit {
			break
		}
		if len(p.Nodes) == 0 || p.PageInfo.EndCursor == "" || p.PageInfo.EndCursor == after {
			c.log.Debug("pagination stalled", "op", op, "cursor", p.PageInfo.EndCursor)
			break
		}
		after = p.PageInfo.EndCursor
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
