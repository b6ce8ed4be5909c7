package static

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/raphi011/linear/internal/cache"
	"github.com/raphi011/linear/internal/format"
	"github.com/raphi011/linear/internal/linear"
	"github.com/raphi011/linear/internal/ui/styles"
)

const (
	titleWidth   = 50
	commentWidth = 60
	textWidth    = 40
	urlWidth     = 50
	noValue      = "-"
)

// PriorityCell renders a priority label in its color.
func PriorityCell(p linear.Priority) string {
	return styles.Priority(int(p)).Render(p.String())
}

// StatusCell renders a workflow state name in its color.
func StatusCell(s *linear.WorkflowState) string {
	if s == nil {
		return noValue
	}
	return styles.Status(s.Name, s.Color).Render(s.Name)
}

func orDash(s string) string {
	if s == "" {
		return noValue
	}
	return s
}

// IssueTable lists issues as ID, TITLE, STATUS, PRIORITY, ASSIGNEE.
func IssueTable(issues []linear.Issue) Table {
	t := Table{Headers: []string{"ID", "TITLE", "STATUS", "PRIORITY", "ASSIGNEE"}}
	for _, is := range issues {
		assignee := ""
		if is.Assignee != nil {
			assignee = is.Assignee.Name
		}
		t.Rows = append(t.Rows, []string{
			is.Identifier,
			format.Truncate(is.Title, titleWidth),
			StatusCell(is.State),
			PriorityCell(is.Priority),
			assignee,
		})
	}
	return t
}

// IssueDetail renders the full view of one issue.
func IssueDetail(is *linear.Issue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s\n\n", styles.Bold.Render(is.Identifier), is.Title)
	if desc := strings.TrimSpace(is.Description); desc != "" {
		b.WriteString(desc)
		b.WriteString("\n\n")
	}

	field := func(label, value string) {
		fmt.Fprintf(&b, "%-9s %s\n", label+":", value)
	}
	field("Team", is.Team.Name)
	field("Status", StatusCell(is.State))
	field("Priority", PriorityCell(is.Priority))
	assignee := noValue
	if is.Assignee != nil {
		assignee = is.Assignee.Name
	}
	field("Assignee", assignee)
	if is.Project != nil {
		field("Project", is.Project.Name)
	}
	if is.Cycle != nil {
		field("Cycle", is.Cycle.DisplayName())
	}
	if labels := is.LabelNames(); len(labels) > 0 {
		field("Labels", strings.Join(labels, ", "))
	}
	field("Created", format.Date(is.CreatedAt))
	field("Updated", format.Date(is.UpdatedAt))
	if is.URL != "" {
		field("URL", styles.MutedStyle.Render(is.URL))
	}
	return b.String()
}

// CommentTable lists comments as AUTHOR, COMMENT, WHEN.
func CommentTable(comments []linear.Comment, now time.Time) Table {
	t := Table{Headers: []string{"AUTHOR", "COMMENT", "WHEN"}}
	for _, c := range comments {
		body := strings.Join(strings.Fields(c.Body), " ")
		t.Rows = append(t.Rows, []string{
			c.Author(),
			format.Truncate(body, commentWidth),
			format.RelativeTimeFrom(c.CreatedAt, now),
		})
	}
	return t
}

// AttachmentTable lists attachments as TITLE, URL, CREATED.
func AttachmentTable(atts []linear.Attachment) Table {
	t := Table{Headers: []string{"TITLE", "URL", "CREATED"}}
	for _, a := range atts {
		t.Rows = append(t.Rows, []string{
			format.Truncate(a.Title, textWidth),
			format.Truncate(orDash(a.URL), urlWidth),
			format.DateOnly(a.CreatedAt),
		})
	}
	return t
}

// RelationTable lists parent, children and relations as TYPE, ISSUE, TITLE.
func RelationTable(entries []linear.RelationEntry) Table {
	t := Table{Headers: []string{"TYPE", "ISSUE", "TITLE"}}
	for _, e := range entries {
		t.Rows = append(t.Rows, []string{
			e.Type,
			e.Issue.Identifier,
			format.Truncate(e.Issue.Title, titleWidth),
		})
	}
	return t
}

// TeamTable lists teams as KEY, NAME, ID.
func TeamTable(teams []linear.Team) Table {
	t := Table{Headers: []string{"KEY", "NAME", "ID"}}
	for _, tm := range teams {
		t.Rows = append(t.Rows, []string{tm.Key, tm.Name, styles.MutedStyle.Render(tm.ID)})
	}
	return t
}

// ProjectTable lists projects as NAME, STATE, ID.
func ProjectTable(projects []linear.Project) Table {
	t := Table{Headers: []string{"NAME", "STATE", "ID"}}
	for _, p := range projects {
		t.Rows = append(t.Rows, []string{p.Name, orDash(p.State), styles.MutedStyle.Render(p.ID)})
	}
	return t
}

// CycleTable lists cycles as NUMBER, NAME, STARTS, ENDS.
func CycleTable(cycles []linear.Cycle) Table {
	t := Table{Headers: []string{"NUMBER", "NAME", "STARTS", "ENDS"}}
	for _, c := range cycles {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(c.Number),
			c.DisplayName(),
			format.DateOnly(c.StartsAt),
			format.DateOnly(c.EndsAt),
		})
	}
	return t
}

// LabelTable lists labels as NAME, DESCRIPTION, ID. Names take the label color.
func LabelTable(labels []linear.Label) Table {
	t := Table{Headers: []string{"NAME", "DESCRIPTION", "ID"}}
	for _, l := range labels {
		t.Rows = append(t.Rows, []string{
			styles.Status(l.Name, l.Color).Render(l.Name),
			format.Truncate(l.Description, textWidth),
			styles.MutedStyle.Render(l.ID),
		})
	}
	return t
}

// CacheTable lists resolution cache entries as KIND, KEY, ID, FETCHED.
// Entries older than ttl are marked stale.
func CacheTable(entries []cache.Entry, ttl time.Duration, now time.Time) Table {
	t := Table{Headers: []string{"KIND", "KEY", "ID", "FETCHED"}}
	for _, e := range entries {
		fetched := format.RelativeTimeFrom(e.FetchedAt.UTC().Format(time.RFC3339), now)
		if e.IsStale(ttl, now) {
			fetched = styles.WarningStyle.Render(fetched + " (stale)")
		}
		t.Rows = append(t.Rows, []string{string(e.Kind), e.Key, e.ID, fetched})
	}
	return t
}
