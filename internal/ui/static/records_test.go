package static

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/raphi011/linear/internal/cache"
	"github.com/raphi011/linear/internal/linear"
)

func TestRenderTable_Empty(t *testing.T) {
	t.Parallel()

	if got := RenderTable([]string{"A"}, nil); got != "" {
		t.Errorf("RenderTable(no rows) = %q, want empty", got)
	}
}

func TestRenderTable_Aligned(t *testing.T) {
	t.Parallel()

	out := ansi.Strip(RenderTable(
		[]string{"KEY", "NAME"},
		[][]string{{"ENG", "Engineering"}, {"DESIGNOPS", "Design"}},
	))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines:\n%s", len(lines), out)
	}

	col := strings.Index(lines[0], "NAME")
	for _, line := range lines[1:] {
		if !strings.HasPrefix(line[col:], "Engineering") && !strings.HasPrefix(line[col:], "Design") {
			t.Errorf("column NAME not aligned in %q", line)
		}
	}
}

func TestIssueTable(t *testing.T) {
	t.Parallel()

	issues := []linear.Issue{
		{
			Identifier: "ENG-1",
			Title:      strings.Repeat("x", 80),
			Priority:   linear.PriorityUrgent,
			State:      &linear.WorkflowState{Name: "In Progress", Color: "#f2c94c"},
			Assignee:   &linear.User{Name: "Ada"},
		},
		{Identifier: "ENG-2", Title: "Unassigned"},
	}

	tbl := IssueTable(issues)
	if len(tbl.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(tbl.Rows))
	}

	row := tbl.Rows[0]
	if len(row) != len(tbl.Headers) {
		t.Fatalf("row has %d cells, headers %d", len(row), len(tbl.Headers))
	}
	if got := len([]rune(row[1])); got != 50 {
		t.Errorf("title cell length = %d, want 50", got)
	}
	if row[2] == "In Progress" {
		t.Error("status cell should be styled")
	}
	if ansi.Strip(row[2]) != "In Progress" {
		t.Errorf("status text = %q", ansi.Strip(row[2]))
	}
	if ansi.Strip(row[3]) != "Urgent" {
		t.Errorf("priority text = %q", ansi.Strip(row[3]))
	}
	if row[4] != "Ada" {
		t.Errorf("assignee = %q", row[4])
	}

	empty := tbl.Rows[1]
	if empty[2] != "-" || empty[4] != "" {
		t.Errorf("missing state/assignee rendered as %q / %q", empty[2], empty[4])
	}
}

func TestTable_Compact(t *testing.T) {
	t.Parallel()

	tbl := Table{
		Headers: []string{"KEY", "NAME"},
		Rows:    [][]string{{"ENG", "Engineering"}, {"OPS", "Operations"}},
	}
	want := "ENG | Engineering\nOPS | Operations\n"
	if got := tbl.Compact(); got != want {
		t.Errorf("Compact() = %q, want %q", got, want)
	}
}

func TestCommentTable(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 31, 14, 30, 0, 0, time.UTC)
	comments := []linear.Comment{
		{Body: "line one\nline two", CreatedAt: "2026-01-31T12:30:00Z", User: &linear.User{Name: "Ada"}},
		{Body: "ghost", CreatedAt: "2026-01-31T14:29:30Z"},
	}

	tbl := CommentTable(comments, now)
	want := [][]string{
		{"Ada", "line one line two", "2 hours ago"},
		{"Unknown", "ghost", "just now"},
	}
	for i, row := range tbl.Rows {
		for j, cell := range row {
			if cell != want[i][j] {
				t.Errorf("row %d col %d = %q, want %q", i, j, cell, want[i][j])
			}
		}
	}
}

func TestIssueDetail(t *testing.T) {
	t.Parallel()

	is := &linear.Issue{
		Identifier:  "ENG-7",
		Title:       "Fix login bug",
		Description: "Steps to reproduce",
		Priority:    linear.PriorityHigh,
		Team:        linear.Team{Name: "Engineering"},
		Cycle:       &linear.Cycle{Number: 4},
		CreatedAt:   "2026-01-02T03:04:05Z",
	}

	out := ansi.Strip(IssueDetail(is))
	for _, want := range []string{
		"ENG-7 - Fix login bug",
		"Steps to reproduce",
		"Team:     Engineering",
		"Priority: High",
		"Assignee: -",
		"Cycle:    Cycle 4",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("detail missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Project:") {
		t.Error("detail should omit an absent project")
	}
}

func TestCacheTable_MarksStale(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 31, 14, 30, 0, 0, time.UTC)
	entries := []cache.Entry{
		{Kind: cache.KindTeam, Key: "ENG", ID: "team_1", FetchedAt: now.Add(-time.Hour)},
		{Kind: cache.KindProject, Key: "Mobile", ID: "proj_1", FetchedAt: now.Add(-48 * time.Hour)},
	}

	tbl := CacheTable(entries, 24*time.Hour, now)
	if got := tbl.Rows[0][3]; got != "1 hour ago" {
		t.Errorf("fresh entry = %q", got)
	}
	if got := ansi.Strip(tbl.Rows[1][3]); got != "2 days ago (stale)" {
		t.Errorf("stale entry = %q", got)
	}
}
