package linear

import (
	"context"

	"github.com/raphi011/linear/internal/errs"
)

const teamsQuery = `
query Teams($first: Int!, $after: String) {
  teams(first: $first, after: $after) {
    nodes { id key name }
    pageInfo { hasNextPage endCursor }
  }
}
`

const teamByKeyQuery = `
query TeamByKey($key: String!) {
  teams(filter: { key: { eq: $key } }, first: 1) {
    nodes { id key name }
  }
}
`

const projectByNameQuery = `
query ProjectByName($name: String!) {
  projects(filter: { name: { eqIgnoreCase: $name } }, first: 1) {
    nodes { id name state }
  }
}
`

const projectsQuery = `
query Projects($filter: ProjectFilter, $first: Int!, $after: String) {
  projects(filter: $filter, first: $first, after: $after) {
    nodes { id name state }
    pageInfo { hasNextPage endCursor }
  }
}
`

const cyclesQuery = `
query Cycles($filter: CycleFilter, $first: Int!, $after: String) {
  cycles(filter: $filter, first: $first, after: $after) {
    nodes { id name number startsAt endsAt }
    pageInfo { hasNextPage endCursor }
  }
}
`

const labelsQuery = `
query Labels($filter: IssueLabelFilter, $first: Int!, $after: String) {
  issueLabels(filter: $filter, first: $first, after: $after) {
    nodes { id name color description }
    pageInfo { hasNextPage endCursor }
  }
}
`

// Workspace listings are small; these bound a runaway pagination.
const (
	listPageSize = 100
	listLimit    = 1000
)

// Teams returns every team visible to the API key.
func (c *Client) Teams(ctx context.Context) ([]Team, error) {
	return collect[Team](ctx, c, "teams", teamsQuery, "teams", nil, listPageSize, listLimit)
}

// TeamByKey looks a team up by its key.
func (c *Client) TeamByKey(ctx context.Context, key string) (*Team, error) {
	var data struct {
		Teams struct {
			Nodes []Team `json:"nodes"`
		} `json:"teams"`
	}
	if err := c.do(ctx, "teamByKey", teamByKeyQuery, map[string]any{"key": key}, &data); err != nil {
		return nil, err
	}
	if len(data.Teams.Nodes) == 0 {
		return nil, errs.WithSuggestion(
			errs.NotFound("team not found: %s", key),
			"Run 'linear teams' to see available team keys",
		)
	}
	return &data.Teams.Nodes[0], nil
}

// ProjectByName looks a project up by name, ignoring case.
func (c *Client) ProjectByName(ctx context.Context, name string) (*Project, error) {
	var data struct {
		Projects struct {
			Nodes []Project `json:"nodes"`
		} `json:"projects"`
	}
	if err := c.do(ctx, "projectByName", projectByNameQuery, map[string]any{"name": name}, &data); err != nil {
		return nil, err
	}
	if len(data.Projects.Nodes) == 0 {
		return nil, errs.WithSuggestion(
			errs.NotFound("project not found: %s", name),
			"Run 'linear projects' to see available projects",
		)
	}
	return &data.Projects.Nodes[0], nil
}

// Projects lists projects, limited to those accessible to teamKey when set.
func (c *Client) Projects(ctx context.Context, teamKey string) ([]Project, error) {
	vars := map[string]any{}
	if teamKey != "" {
		vars["filter"] = map[string]any{
			"accessibleTeams": map[string]any{"some": keyFilter(teamKey)},
		}
	}
	return collect[Project](ctx, c, "projects", projectsQuery, "projects", vars, listPageSize, listLimit)
}

// Cycles lists cycles, limited to teamKey when set.
func (c *Client) Cycles(ctx context.Context, teamKey string) ([]Cycle, error) {
	return collect[Cycle](ctx, c, "cycles", cyclesQuery, "cycles", teamVars(teamKey), listPageSize, listLimit)
}

// Labels lists issue labels, limited to teamKey when set.
func (c *Client) Labels(ctx context.Context, teamKey string) ([]Label, error) {
	return collect[Label](ctx, c, "issueLabels", labelsQuery, "issueLabels", teamVars(teamKey), listPageSize, listLimit)
}

func keyFilter(key string) map[string]any {
	return map[string]any{"key": map[string]any{"eq": key}}
}

func teamVars(teamKey string) map[string]any {
	if teamKey == "" {
		return nil
	}
	return map[string]any{"filter": map[string]any{"team": keyFilter(teamKey)}}
}

// TeamID returns the id of the team with key.
func (c *Client) TeamID(ctx context.Context, key string) (string, error) {
	t, err := c.TeamByKey(ctx, key)
	if err != nil {
		return "", err
	}
	return t.ID, nil
}

// ProjectID returns the id of the project called name.
func (c *Client) ProjectID(ctx context.Context, name string) (string, error) {
	p, err := c.ProjectByName(ctx, name)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}
