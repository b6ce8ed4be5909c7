package linear

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// User is a workspace member.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Team groups issues under a short key such as "ENG".
type Team struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Project is a named collection of issues.
type Project struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state,omitempty"`
}

// Cycle is a team's time-boxed iteration.
type Cycle struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Number   int    `json:"number"`
	StartsAt string `json:"startsAt"`
	EndsAt   string `json:"endsAt"`
}

// DisplayName returns the cycle name, or "Cycle N" for unnamed cycles.
func (c Cycle) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return "Cycle " + strconv.Itoa(c.Number)
}

// Label is an issue label.
type Label struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
}

// WorkflowState is one column of a team's workflow.
// Type is one of triage, backlog, unstarted, started, completed, canceled.
type WorkflowState struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Color    string  `json:"color"`
	Type     string  `json:"type,omitempty"`
	Position float64 `json:"position,omitempty"`
}

// StateCompleted is the workflow state type of finished issues.
const StateCompleted = "completed"

// Issue is a full issue record.
type Issue struct {
	ID          string         `json:"id"`
	Identifier  string         `json:"identifier"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Priority    Priority       `json:"priority"`
	URL         string         `json:"url,omitempty"`
	State       *WorkflowState `json:"state,omitempty"`
	Assignee    *User          `json:"assignee,omitempty"`
	Team        Team           `json:"team"`
	Project     *Project       `json:"project,omitempty"`
	Cycle       *Cycle         `json:"cycle,omitempty"`
	Labels      []Label        `json:"labels,omitempty"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
}

// IssueRef is the short form of an issue used in mutation results and
// relations.
type IssueRef struct {
	ID         string `json:"id"`
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	URL        string `json:"url,omitempty"`
}

// Comment is a comment on an issue.
type Comment struct {
	ID        string `json:"id"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
	User      *User  `json:"user,omitempty"`
}

// Author returns the comment author's name.
func (c Comment) Author() string {
	if c.User == nil || c.User.Name == "" {
		return "Unknown"
	}
	return c.User.Name
}

// Attachment is a link or uploaded file attached to an issue.
type Attachment struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle,omitempty"`
	URL       string `json:"url,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// UnmarshalJSON accepts labels both as a GraphQL connection
// ({"nodes": [...]}) and as a plain list.
func (i *Issue) UnmarshalJSON(data []byte) error {
	type alias Issue
	var raw struct {
		alias
		Labels json.RawMessage `json:"labels"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*i = Issue(raw.alias)

	labels := bytes.TrimSpace(raw.Labels)
	switch {
	case len(labels) == 0 || bytes.Equal(labels, []byte("null")):
		i.Labels = nil
	case labels[0] == '[':
		return json.Unmarshal(labels, &i.Labels)
	default:
		var conn struct {
			Nodes []Label `json:"nodes"`
		}
		if err := json.Unmarshal(labels, &conn); err != nil {
			return err
		}
		i.Labels = conn.Nodes
	}
	return nil
}

// LabelNames returns the names of the issue's labels.
func (i Issue) LabelNames() []string {
	names := make([]string, 0, len(i.Labels))
	for _, l := range i.Labels {
		names = append(names, l.Name)
	}
	return names
}
