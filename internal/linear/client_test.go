package linear_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphi011/linear/internal/errs"
	"github.com/raphi011/linear/internal/linear"
	"github.com/raphi011/linear/internal/linear/lineartest"
)

func newClient(t *testing.T) (*linear.Client, *lineartest.Server) {
	t.Helper()
	srv := lineartest.New(t)
	return linear.New("lin_api_test", linear.WithBaseURL(srv.URL)), srv
}

func teamNodes(teams ...linear.Team) map[string]any {
	return map[string]any{"teams": map[string]any{"nodes": teams}}
}

func TestClient_SendsAuthHeaders(t *testing.T) {
	t.Parallel()

	client, srv := newClient(t)
	srv.Reply("Viewer", map[string]any{"viewer": linear.User{ID: "user_1", Name: "Ada"}})

	u, err := client.Viewer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user_1", u.ID)

	calls := srv.Calls("Viewer")
	require.Len(t, calls, 1)
	assert.Equal(t, "lin_api_test", calls[0].Header.Get("Authorization"))
	assert.Equal(t, "application/json", calls[0].Header.Get("Content-Type"))
	assert.Equal(t, "linear-cli", calls[0].Header.Get("User-Agent"))
}

func TestClient_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		resp     lineartest.Response
		wantKind errs.Kind
		wantMsg  string
	}{
		{
			name:     "server error",
			resp:     lineartest.Response{Status: http.StatusBadGateway, Body: "upstream down"},
			wantKind: errs.KindRemoteUnavailable,
			wantMsg:  "status 502",
		},
		{
			name:     "rate limited status",
			resp:     lineartest.Response{Status: http.StatusTooManyRequests, Body: "slow down"},
			wantKind: errs.KindRemoteUnavailable,
			wantMsg:  "rate limited",
		},
		{
			name:     "unauthorized",
			resp:     lineartest.Response{Status: http.StatusUnauthorized, Body: "bad key"},
			wantKind: errs.KindRemoteRejected,
			wantMsg:  "API error (status 401): bad key",
		},
		{
			name: "forbidden with graphql message",
			resp: lineartest.Response{
				Status: http.StatusBadRequest,
				Errors: []lineartest.Error{{Message: "You do not have permission"}},
			},
			wantKind: errs.KindRemoteRejected,
			wantMsg:  "You do not have permission",
		},
		{
			name: "graphql errors joined",
			resp: lineartest.Response{
				Errors: []lineartest.Error{{Message: "first"}, {Message: "second"}},
			},
			wantKind: errs.KindRemoteRejected,
			wantMsg:  "first; second",
		},
		{
			name: "entity not found",
			resp: lineartest.Response{
				Errors: []lineartest.Error{{Message: "Entity not found: Issue"}},
			},
			wantKind: errs.KindNotFound,
			wantMsg:  "Entity not found",
		},
		{
			name: "ratelimited extension",
			resp: lineartest.Response{
				Errors: []lineartest.Error{{Message: "too many", Extensions: map[string]any{"code": "RATELIMITED"}}},
			},
			wantKind: errs.KindRemoteUnavailable,
			wantMsg:  "rate limited",
		},
		{
			name:     "missing data",
			resp:     lineartest.Response{},
			wantKind: errs.KindRemoteRejected,
			wantMsg:  "empty response from API",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, srv := newClient(t)
			srv.Handle("Viewer", func(map[string]any) lineartest.Response { return tt.resp })

			_, err := client.Viewer(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, errs.KindOf(err), "error: %v", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestClient_TransportFailureIsUnavailable(t *testing.T) {
	t.Parallel()

	srv := lineartest.New(t)
	url := srv.URL
	srv.Close()

	client := linear.New("key", linear.WithBaseURL(url))
	_, err := client.Viewer(context.Background())
	require.Error(t, err)
	assert.Equal(t, errs.KindRemoteUnavailable, errs.KindOf(err))
	assert.NotEmpty(t, errs.Suggestion(err))
}

func TestClient_TimeoutIsUnavailable(t *testing.T) {
	t.Parallel()

	client, srv := newClient(t)
	srv.Handle("Viewer", func(map[string]any) lineartest.Response {
		time.Sleep(200 * time.Millisecond)
		return lineartest.Response{Data: map[string]any{"viewer": map[string]any{"id": "u"}}}
	})
	client = linear.New("key", linear.WithBaseURL(srv.URL), linear.WithTimeout(20*time.Millisecond))

	_, err := client.Viewer(context.Background())
	require.Error(t, err)
	assert.Equal(t, errs.KindRemoteUnavailable, errs.KindOf(err))
}

func TestClient_CanceledContext(t *testing.T) {
	t.Parallel()

	client, srv := newClient(t)
	srv.Reply("Viewer", map[string]any{"viewer": map[string]any{"id": "u"}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Viewer(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, srv.Count("Viewer"))
}

func TestTeamByKey(t *testing.T) {
	t.Parallel()

	client, srv := newClient(t)
	srv.Handle("TeamByKey", func(vars map[string]any) lineartest.Response {
		if vars["key"] == "ENG" {
			return lineartest.Response{Data: teamNodes(linear.Team{ID: "team_abc123", Key: "ENG", Name: "Engineering"})}
		}
		return lineartest.Response{Data: teamNodes()}
	})

	team, err := client.TeamByKey(context.Background(), "ENG")
	require.NoError(t, err)
	assert.Equal(t, "team_abc123", team.ID)

	_, err = client.TeamByKey(context.Background(), "NOPE")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindNotFound))
	assert.Equal(t, "team not found: NOPE", err.Error())
	assert.Contains(t, errs.Suggestion(err), "linear teams")
}

func TestListIssues_Pagination(t *testing.T) {
	t.Parallel()

	page := func(n int, more bool, cursor string) lineartest.Response {
		nodes := make([]linear.Issue, n)
		for i := range nodes {
			nodes[i] = linear.Issue{ID: fmt.Sprintf("%s-%d", cursor, i), Identifier: fmt.Sprintf("ENG-%d", i)}
		}
		return lineartest.Response{Data: map[string]any{"issues": map[string]any{
			"nodes":    nodes,
			"pageInfo": map[string]any{"hasNextPage": more, "endCursor": cursor},
		}}}
	}

	tests := []struct {
		name       string
		params     linear.ListIssuesParams
		pages      []lineartest.Response
		wantCount  int
		wantFirsts []float64
	}{
		{
			name:       "default limit single page",
			params:     linear.ListIssuesParams{},
			pages:      []lineartest.Response{page(50, true, "c1")},
			wantCount:  50,
			wantFirsts: []float64{50},
		},
		{
			name:       "limit above page size",
			params:     linear.ListIssuesParams{Limit: 300},
			pages:      []lineartest.Response{page(250, true, "c1"), page(50, true, "c2")},
			wantCount:  300,
			wantFirsts: []float64{250, 50},
		},
		{
			name:       "stops when no next page",
			params:     linear.ListIssuesParams{All: true},
			pages:      []lineartest.Response{page(100, true, "c1"), page(7, false, "c2")},
			wantCount:  107,
			wantFirsts: []float64{100, 100},
		},
		{
			name:       "stops on empty cursor",
			params:     linear.ListIssuesParams{All: true},
			pages:      []lineartest.Response{page(100, true, "")},
			wantCount:  100,
			wantFirsts: []float64{100},
		},
		{
			name:       "stops on empty page",
			params:     linear.ListIssuesParams{Limit: 10},
			pages:      []lineartest.Response{page(0, true, "c1")},
			wantCount:  0,
			wantFirsts: []float64{10},
		},
		{
			name:       "stops when cursor does not advance",
			params:     linear.ListIssuesParams{Limit: 300},
			pages:      []lineartest.Response{page(250, true, "c1"), page(10, true, "c1")},
			wantCount:  260,
			wantFirsts: []float64{250, 50},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, srv := newClient(t)
			var n atomic.Int32
			srv.Handle("ListIssues", func(map[string]any) lineartest.Response {
				return tt.pages[n.Add(1)-1]
			})

			issues, err := client.ListIssues(context.Background(), tt.params)
			require.NoError(t, err)
			assert.Len(t, issues, tt.wantCount)

			calls := srv.Calls("ListIssues")
			require.Len(t, calls, len(tt.wantFirsts))
			for i, c := range calls {
				assert.Equal(t, tt.wantFirsts[i], c.Var("first"), "page %d", i)
				if i > 0 {
					assert.Equal(t, "c"+fmt.Sprint(i), c.Var("after"))
				} else {
					assert.Nil(t, c.Var("after"))
				}
			}
		})
	}
}

func TestListIssues_AllCapsAtLimit(t *testing.T) {
	t.Parallel()

	client, srv := newClient(t)
	var calls atomic.Int32
	srv.Handle("ListIssues", func(vars map[string]any) lineartest.Response {
		n := calls.Add(1)
		first := int(vars["first"].(float64))
		nodes := make([]linear.Issue, first)
		for i := range nodes {
			nodes[i] = linear.Issue{ID: "x"}
		}
		return lineartest.Response{Data: map[string]any{"issues": map[string]any{
			"nodes":    nodes,
			"pageInfo": map[string]any{"hasNextPage": true, "endCursor": fmt.Sprint("c", n)},
		}}}
	})

	issues, err := client.ListIssues(context.Background(), linear.ListIssuesParams{All: true})
	require.NoError(t, err)
	assert.Len(t, issues, linear.AllLimit)
	assert.Equal(t, int32(linear.AllLimit/linear.AllPageSize), calls.Load())
}

func TestListIssues_Filter(t *testing.T) {
	t.Parallel()

	client, srv := newClient(t)
	srv.Reply("ListIssues", map[string]any{"issues": lineartest.Nodes[linear.Issue]()})

	_, err := client.ListIssues(context.Background(), linear.ListIssuesParams{
		AssigneeID: "user_1",
		TeamID:     "team_abc123",
		Status:     "progress",
		ProjectID:  "proj_1",
		Label:      "bug",
		Cycle:      "12",
	})
	require.NoError(t, err)

	calls := srv.Calls("ListIssues")
	require.Len(t, calls, 1)
	want := map[string]any{
		"assignee": map[string]any{"id": map[string]any{"eq": "user_1"}},
		"team":     map[string]any{"id": map[string]any{"eq": "team_abc123"}},
		"state":    map[string]any{"name": map[string]any{"containsIgnoreCase": "progress"}},
		"project":  map[string]any{"id": map[string]any{"eq": "proj_1"}},
		"labels":   map[string]any{"name": map[string]any{"containsIgnoreCase": "bug"}},
		"cycle":    map[string]any{"number": map[string]any{"eq": float64(12)}},
	}
	assert.Equal(t, want, calls[0].Var("filter"))
}

func TestListIssues_CycleByName(t *testing.T) {
	t.Parallel()

	client, srv := newClient(t)
	srv.Reply("ListIssues", map[string]any{"issues": lineartest.Nodes[linear.Issue]()})

	_, err := client.ListIssues(context.Background(), linear.ListIssuesParams{Cycle: "Sprint 4"})
	require.NoError(t, err)
	assert.Equal(t,
		map[string]any{"cycle": map[string]any{"name": map[string]any{"containsIgnoreCase": "Sprint 4"}}},
		srv.Calls("ListIssues")[0].Var("filter"),
	)
}

func TestListIssues_NoFilter(t *testing.T) {
	t.Parallel()

	client, srv := newClient(t)
	srv.Reply("ListIssues", map[string]any{"issues": lineartest.Nodes[linear.Issue]()})

	_, err := client.ListIssues(context.Background(), linear.ListIssuesParams{})
	require.NoError(t, err)
	assert.Nil(t, srv.Calls("ListIssues")[0].Var("filter"))
}

func TestIssue_DecodesLabelsAndPriority(t *testing.T) {
	t.Parallel()

	client, srv := newClient(t)
	srv.Reply("Issue", map[string]any{"issue": map[string]any{
		"id":         "iss_1",
		"identifier": "ENG-123",
		"title":      "Fix login bug",
		"priority":   2.0,
		"team":       map[string]any{"id": "team_abc123", "key": "ENG", "name": "Engineering"},
		"labels":     map[string]any{"nodes": []map[string]any{{"id": "l1", "name": "bug", "color": "#f00"}}},
		"state":      map[string]any{"id": "s1", "name": "Todo", "color": "#ccc", "type": "unstarted"},
	}})

	issue, err := client.Issue(context.Background(), "iss_1")
	require.NoError(t, err)
	assert.Equal(t, linear.PriorityHigh, issue.Priority)
	assert.Equal(t, []string{"bug"}, issue.LabelNames())
	assert.Equal(t, "Todo", issue.State.Name)
}

func TestIssue_NullIsNotFound(t *testing.T) {
	t.Parallel()

	client, srv := newClient(t)
	srv.Reply("Issue", map[string]any{"issue": nil})

	_, err := client.Issue(context.Background(), "ENG-999")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindNotFound))
	assert.Equal(t, "issue not found: ENG-999", err.Error())
}

func TestIssueIDByIdentifier(t *testing.T) {
	t.Parallel()

	client, srv := newClient(t)
	srv.Handle("IssueID", func(vars map[string]any) lineartest.Response {
		if vars["teamKey"] == "ENG" && vars["number"] == float64(123) {
			return lineartest.Response{Data: map[string]any{"issues": map[string]any{"nodes": []map[string]any{{"id": "iss_123"}}}}}
		}
		return lineartest.Response{Data: map[string]any{"issues": map[string]any{"nodes": []any{}}}}
	})

	id, err := client.IssueIDByIdentifier(context.Background(), "ENG", 123)
	require.NoError(t, err)
	assert.Equal(t, "iss_123", id)

	_, err = client.IssueIDByIdentifier(context.Background(), "ENG", 9)
	require.Error(t, err)
	assert.Equal(t, "issue not found: ENG-9", err.Error())
}

func TestCreateIssue(t *testing.T) {
	t.Parallel()

	client, srv := newClient(t)
	srv.Reply("IssueCreate", map[string]any{"issueCreate": map[string]any{
		"success": true,
		"issue":   linear.IssueRef{ID: "iss_124", Identifier: "ENG-124", Title: "Fix login bug"},
	}})

	p := linear.PriorityUrgent
	ref, err := client.CreateIssue(context.Background(), linear.IssueCreateInput{
		TeamID:   "team_abc123",
		Title:    "Fix login bug",
		Priority: &p,
	})
	require.NoError(t, err)
	assert.Equal(t, "ENG-124", ref.Identifier)

	calls := srv.Calls("IssueCreate")
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]any{
		"teamId":   "team_abc123",
		"title":    "Fix login bug",
		"priority": float64(1),
	}, calls[0].Input())
}

func TestCreateIssue_RejectsEmptyTitle(t *testing.T) {
	t.Parallel()

	client, srv := newClient(t)
	_, err := client.CreateIssue(context.Background(), linear.IssueCreateInput{TeamID: "t", Title: "  "})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindValidation))
	assert.Equal(t, 0, srv.Count(""))
}

func TestUpdateIssue_SendsOnlySetFields(t *testing.T) {
	t.Parallel()

	client, srv := newClient(t)
	srv.Reply("IssueUpdate", map[string]any{"issueUpdate": map[string]any{
		"success": true,
		"issue":   linear.IssueRef{ID: "iss_123", Identifier: "ENG-123", Title: "t"},
	}})

	state := "state_done"
	_, err := client.UpdateIssue(context.Background(), "iss_123", linear.IssueUpdate{StateID: &state})
	require.NoError(t, err)

	calls := srv.Calls("IssueUpdate")
	require.Len(t, calls, 1)
	assert.Equal(t, "iss_123", calls[0].Var("id"))
	assert.Equal(t, map[string]any{"stateId": "state_done"}, calls[0].Input())
}

func TestUpdateIssue_Empty(t *testing.T) {
	t.Parallel()

	client, srv := newClient(t)
	_, err := client.UpdateIssue(context.Background(), "iss_1", linear.IssueUpdate{})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindValidation))
	assert.Equal(t, "no updates specified", err.Error())
	assert.Equal(t, 0, srv.Count(""))
}

func TestIssueUpdate_Input(t *testing.T) {
	t.Parallel()

	title := "New"
	parent := "iss_parent"
	p := linear.PriorityNone

	tests := []struct {
		name string
		u    linear.IssueUpdate
		want map[string]any
	}{
		{"empty", linear.IssueUpdate{}, map[string]any{}},
		{"title", linear.IssueUpdate{Title: &title}, map[string]any{"title": "New"}},
		{"zero priority is still set", linear.IssueUpdate{Priority: &p}, map[string]any{"priority": 0}},
		{"parent", linear.IssueUpdate{ParentID: &parent}, map[string]any{"parentId": "iss_parent"}},
		{"clear parent", linear.IssueUpdate{ClearParent: true}, map[string]any{"parentId": nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.u.Input())
			assert.Equal(t, len(tt.want) == 0, tt.u.Empty())
		})
	}
}

func TestProjects_TeamFilter(t *testing.T) {
	t.Parallel()

	client, srv := newClient(t)
	srv.Reply("Projects", map[string]any{"projects": lineartest.Nodes(linear.Project{ID: "p1", Name: "Mobile App"})})

	projects, err := client.Projects(context.Background(), "ENG")
	require.NoError(t, err)
	require.Len(t, projects, 1)

	assert.Equal(t,
		map[string]any{"accessibleTeams": map[string]any{"some": map[string]any{"key": map[string]any{"eq": "ENG"}}}},
		srv.Calls("Projects")[0].Var("filter"),
	)
}

func TestCyclesAndLabels_Unfiltered(t *testing.T) {
	t.Parallel()

	client, srv := newClient(t)
	srv.Reply("Cycles", map[string]any{"cycles": lineartest.Nodes(linear.Cycle{ID: "c1", Number: 3})})
	srv.Reply("Labels", map[string]any{"issueLabels": lineartest.Nodes(linear.Label{ID: "l1", Name: "bug"})})

	cycles, err := client.Cycles(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Cycle 3", cycles[0].DisplayName())

	labels, err := client.Labels(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "bug", labels[0].Name)

	assert.Nil(t, srv.Calls("Cycles")[0].Var("filter"))
	assert.Nil(t, srv.Calls("Labels")[0].Var("filter"))
}

func TestComments(t *testing.T) {
	t.Parallel()

	client, srv := newClient(t)
	srv.Reply("Comments", map[string]any{"issue": map[string]any{"comments": map[string]any{"nodes": []linear.Comment{
		{ID: "c1", Body: "hi", User: &linear.User{Name: "Ada"}},
		{ID: "c2", Body: "bot"},
	}}}})

	comments, err := client.Comments(context.Background(), "iss_1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "Ada", comments[0].Author())
	assert.Equal(t, "Unknown", comments[1].Author())
}

func TestCreateComment(t *testing.T) {
	t.Parallel()

	client, srv := newClient(t)
	srv.Reply("CommentCreate", map[string]any{"commentCreate": map[string]any{
		"success": true,
		"comment": linear.Comment{ID: "c1", Body: "LGTM"},
	}})

	c, err := client.CreateComment(context.Background(), "iss_1", "LGTM")
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)
	assert.Equal(t, "LGTM", srv.Calls("CommentCreate")[0].Var("body"))

	_, err = client.CreateComment(context.Background(), "iss_1", "")
	assert.True(t, errs.Is(err, errs.KindValidation))
}

func TestContextError_NotWrapped(t *testing.T) {
	t.Parallel()

	client, srv := newClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	srv.Handle("Viewer", func(map[string]any) lineartest.Response {
		cancel()
		time.Sleep(50 * time.Millisecond)
		return lineartest.Response{Data: map[string]any{"viewer": map[string]any{"id": "u"}}}
	})

	_, err := client.Viewer(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, errs.KindUnknown, errs.KindOf(err))
}

func TestTeams_StalledPagination(t *testing.T) {
	t.Parallel()

	client, srv := newClient(t)
	srv.Reply("Teams", map[string]any{"teams": map[string]any{
		"nodes":    []linear.Team{},
		"pageInfo": map[string]any{"hasNextPage": true, "endCursor": "c1"},
	}})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	teams, err := client.Teams(ctx)
	require.NoError(t, err)
	assert.Empty(t, teams)
	assert.Equal(t, 1, srv.Count("Teams"))
}
