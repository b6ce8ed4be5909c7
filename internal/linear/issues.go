package linear

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/raphi011/linear/internal/errs"
)

// Pagination limits for ListIssues.
const (
	DefaultListLimit = 50
	MaxPageSize      = 250
	AllPageSize      = 100
	AllLimit         = 5000
)

const issueFields = `
fragment IssueFields on Issue {
  id
  identifier
  title
  description
  priority
  url
  state { id name color type }
  assignee { id name email }
  team { id key name }
  project { id name state }
  cycle { id name number startsAt endsAt }
  labels { nodes { id name color } }
  createdAt
  updatedAt
}
`

const listIssuesQuery = `
query ListIssues($filter: IssueFilter, $first: Int!, $after: String) {
  issues(filter: $filter, first: $first, after: $after, orderBy: updatedAt) {
    nodes { ...IssueFields }
    pageInfo { hasNextPage endCursor }
  }
}
` + issueFields

const issueQuery = `
query Issue($id: String!) {
  issue(id: $id) { ...IssueFields }
}
` + issueFields

const issueIDQuery = `
query IssueID($teamKey: String!, $number: Float!) {
  issues(filter: { team: { key: { eq: $teamKey } }, number: { eq: $number } }, first: 1) {
    nodes { id }
  }
}
`

const viewerQuery = `
query Viewer {
  viewer { id name email }
}
`

const workflowStatesQuery = `
query WorkflowStates($teamId: ID!) {
  workflowStates(filter: { team: { id: { eq: $teamId } } }, first: 100) {
    nodes { id name color type position }
  }
}
`

const createIssueMutation = `
mutation IssueCreate($input: IssueCreateInput!) {
  issueCreate(input: $input) {
    success
    issue { id identifier title url }
  }
}
`

const updateIssueMutation = `
mutation IssueUpdate($id: String!, $input: IssueUpdateInput!) {
  issueUpdate(id: $id, input: $input) {
    success
    issue { id identifier title url }
  }
}
`

// ListIssuesParams filters and bounds an issue listing.
// Team and Project hold resolved ids, not names.
type ListIssuesParams struct {
	AssigneeID string
	TeamID     string
	Status     string
	ProjectID  string
	Label      string
	Cycle      string
	Limit      int
	All        bool
}

// pageBounds returns the page size and the total cap.
func (p ListIssuesParams) pageBounds() (pageSize, limit int) {
	if p.All {
		return AllPageSize, AllLimit
	}
	limit = p.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return min(limit, MaxPageSize), limit
}

// filter builds the IssueFilter input object. Unset params are omitted.
func (p ListIssuesParams) filter() map[string]any {
	f := map[string]any{}
	if p.AssigneeID != "" {
		f["assignee"] = eq("id", p.AssigneeID)
	}
	if p.TeamID != "" {
		f["team"] = eq("id", p.TeamID)
	}
	if p.Status != "" {
		f["state"] = contains("name", p.Status)
	}
	if p.ProjectID != "" {
		f["project"] = eq("id", p.ProjectID)
	}
	if p.Label != "" {
		f["labels"] = contains("name", p.Label)
	}
	if p.Cycle != "" {
		if n, err := strconv.Atoi(p.Cycle); err == nil {
			f["cycle"] = map[string]any{"number": map[string]any{"eq": n}}
		} else {
			f["cycle"] = contains("name", p.Cycle)
		}
	}
	return f
}

func eq(field string, v any) map[string]any {
	return map[string]any{field: map[string]any{"eq": v}}
}

func contains(field, v string) map[string]any {
	return map[string]any{field: map[string]any{"containsIgnoreCase": v}}
}

// ListIssues returns issues matching p, most recently updated first.
func (c *Client) ListIssues(ctx context.Context, p ListIssuesParams) ([]Issue, error) {
	pageSize, limit := p.pageBounds()
	vars := map[string]any{}
	if f := p.filter(); len(f) > 0 {
		vars["filter"] = f
	}
	return collect[Issue](ctx, c, "issues", listIssuesQuery, "issues", vars, pageSize, limit)
}

// Issue fetches one issue by internal id or identifier.
func (c *Client) Issue(ctx context.Context, id string) (*Issue, error) {
	var data struct {
		Issue *Issue `json:"issue"`
	}
	if err := c.do(ctx, "issue", issueQuery, map[string]any{"id": id}, &data); err != nil {
		if errs.Is(err, errs.KindNotFound) {
			return nil, errs.NotFound("issue not found: %s", id)
		}
		return nil, err
	}
	if data.Issue == nil {
		return nil, errs.NotFound("issue not found: %s", id)
	}
	return data.Issue, nil
}

// IssueIDByIdentifier returns the internal id of issue number in team.
func (c *Client) IssueIDByIdentifier(ctx context.Context, teamKey string, number int) (string, error) {
	var data struct {
		Issues struct {
			Nodes []struct {
				ID string `json:"id"`
			} `json:"nodes"`
		} `json:"issues"`
	}
	vars := map[string]any{"teamKey": teamKey, "number": number}
	if err := c.do(ctx, "issueID", issueIDQuery, vars, &data); err != nil {
		return "", err
	}
	if len(data.Issues.Nodes) == 0 {
		return "", errs.NotFound("issue not found: %s-%d", teamKey, number)
	}
	return data.Issues.Nodes[0].ID, nil
}

// Viewer returns the authenticated user.
func (c *Client) Viewer(ctx context.Context) (*User, error) {
	var data struct {
		Viewer User `json:"viewer"`
	}
	if err := c.do(ctx, "viewer", viewerQuery, nil, &data); err != nil {
		return nil, err
	}
	return &data.Viewer, nil
}

// WorkflowStates returns the workflow states of a team.
func (c *Client) WorkflowStates(ctx context.Context, teamID string) ([]WorkflowState, error) {
	var data struct {
		WorkflowStates struct {
			Nodes []WorkflowState `json:"nodes"`
		} `json:"workflowStates"`
	}
	if err := c.do(ctx, "workflowStates", workflowStatesQuery, map[string]any{"teamId": teamID}, &data); err != nil {
		return nil, err
	}
	return data.WorkflowStates.Nodes, nil
}

// IssueCreateInput holds the fields of a new issue. Empty optional
// fields are omitted.
type IssueCreateInput struct {
	TeamID      string
	Title       string
	Description string
	ProjectID   string
	Priority    *Priority
}

func (in IssueCreateInput) input() map[string]any {
	m := map[string]any{
		"teamId": in.TeamID,
		"title":  in.Title,
	}
	if in.Description != "" {
		m["description"] = in.Description
	}
	if in.ProjectID != "" {
		m["projectId"] = in.ProjectID
	}
	if in.Priority != nil {
		m["priority"] = int(*in.Priority)
	}
	return m
}

// CreateIssue creates an issue and returns its short form.
func (c *Client) CreateIssue(ctx context.Context, in IssueCreateInput) (*IssueRef, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, errs.Validation("title must not be empty")
	}
	if in.TeamID == "" {
		return nil, errs.Validation("team id must not be empty")
	}
	var data struct {
		IssueCreate mutationResult `json:"issueCreate"`
	}
	if err := c.do(ctx, "issueCreate", createIssueMutation, map[string]any{"input": in.input()}, &data); err != nil {
		return nil, err
	}
	return data.IssueCreate.ref("issueCreate")
}

// IssueUpdate lists the fields to change. A nil field is left untouched
// and never sent. ClearParent sends an explicit null parent.
type IssueUpdate struct {
	Title       *string
	Description *string
	StateID     *string
	Priority    *Priority
	AssigneeID  *string
	ProjectID   *string
	ParentID    *string
	ClearParent bool
}

// Empty reports whether the update changes nothing.
func (u IssueUpdate) Empty() bool {
	return len(u.Input()) == 0
}

// Input returns the IssueUpdateInput object holding only the set fields.
func (u IssueUpdate) Input() map[string]any {
	m := map[string]any{}
	set := func(key string, v *string) {
		if v != nil {
			m[key] = *v
		}
	}
	set("title", u.Title)
	set("description", u.Description)
	set("stateId", u.StateID)
	set("assigneeId", u.AssigneeID)
	set("projectId", u.ProjectID)
	set("parentId", u.ParentID)
	if u.Priority != nil {
		m["priority"] = int(*u.Priority)
	}
	if u.ClearParent {
		m["parentId"] = nil
	}
	return m
}

// UpdateIssue applies u to the issue with internal id.
func (c *Client) UpdateIssue(ctx context.Context, id string, u IssueUpdate) (*IssueRef, error) {
	input := u.Input()
	if len(input) == 0 {
		return nil, errs.Validation("no updates specified")
	}
	var data struct {
		IssueUpdate mutationResult `json:"issueUpdate"`
	}
	vars := map[string]any{"id": id, "input": input}
	if err := c.do(ctx, "issueUpdate", updateIssueMutation, vars, &data); err != nil {
		return nil, err
	}
	return data.IssueUpdate.ref("issueUpdate")
}

type mutationResult struct {
	Success bool      `json:"success"`
	Issue   *IssueRef `json:"issue"`
}

func (r mutationResult) ref(op string) (*IssueRef, error) {
	if !r.Success || r.Issue == nil {
		return nil, errs.Rejected(http.StatusOK, op+" was not successful")
	}
	return r.Issue, nil
}
