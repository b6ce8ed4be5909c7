package linear

import (
	"context"
	"net/http"
	"strings"

	"github.com/raphi011/linear/internal/errs"
)

const commentsQuery = `
query Comments($issueId: String!) {
  issue(id: $issueId) {
    comments(first: 250) {
      nodes { id body createdAt user { id name } }
    }
  }
}
`

const createCommentMutation = `
mutation CommentCreate($issueId: String!, $body: String!) {
  commentCreate(input: { issueId: $issueId, body: $body }) {
    success
    comment { id body createdAt user { id name } }
  }
}
`

// Comments returns the comments on an issue, oldest first.
func (c *Client) Comments(ctx context.Context, issueID string) ([]Comment, error) {
	var data struct {
		Issue *struct {
			Comments struct {
				Nodes []Comment `json:"nodes"`
			} `json:"comments"`
		} `json:"issue"`
	}
	if err := c.do(ctx, "comments", commentsQuery, map[string]any{"issueId": issueID}, &data); err != nil {
		return nil, err
	}
	if data.Issue == nil {
		return nil, errs.NotFound("issue not found: %s", issueID)
	}
	return data.Issue.Comments.Nodes, nil
}

// CreateComment adds a comment to an issue.
func (c *Client) CreateComment(ctx context.Context, issueID, body string) (*Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, errs.Validation("comment body must not be empty")
	}
	var data struct {
		CommentCreate struct {
			Success bool     `json:"success"`
			Comment *Comment `json:"comment"`
		} `json:"commentCreate"`
	}
	vars := map[string]any{"issueId": issueID, "body": body}
	if err := c.do(ctx, "commentCreate", createCommentMutation, vars, &data); err != nil {
		return nil, err
	}
	if !data.CommentCreate.Success || data.CommentCreate.Comment == nil {
		return nil, errs.Rejected(http.StatusOK, "commentCreate was not successful")
	}
	return data.CommentCreate.Comment, nil
}
