package linear

import (
	"context"
	"net/http"
	"strings"

	"github.com/raphi011/linear/internal/errs"
)

// RelationType is the kind of link between two issues.
type RelationType string

const (
	RelationBlocks    RelationType = "blocks"
	RelationDuplicate RelationType = "duplicate"
	RelationRelated   RelationType = "related"
)

// RelationTypes lists the accepted relation types.
var RelationTypes = []RelationType{RelationBlocks, RelationDuplicate, RelationRelated}

// InverseLabel describes the relation as seen from the related issue.
func (t RelationType) InverseLabel() string {
	switch t {
	case RelationBlocks:
		return "blocked by"
	case RelationDuplicate:
		return "duplicate of"
	case RelationRelated:
		return "related to"
	}
	return string(t)
}

// ParseRelationType accepts one of RelationTypes, ignoring case.
func ParseRelationType(s string) (RelationType, error) {
	for _, t := range RelationTypes {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", errs.Validation("invalid relation type %q (want blocks, duplicate or related)", s)
}

// IssueRelation is a directed link from Issue to RelatedIssue.
type IssueRelation struct {
	ID           string       `json:"id"`
	Type         RelationType `json:"type"`
	Issue        IssueRef     `json:"issue"`
	RelatedIssue IssueRef     `json:"relatedIssue"`
}

// RelationEntry is one line of an issue's relation listing, seen from
// that issue.
type RelationEntry struct {
	RelationID string   `json:"relationId,omitempty"`
	Type       string   `json:"type"`
	Issue      IssueRef `json:"issue"`
}

// Relations holds the hierarchy and links of one issue.
type Relations struct {
	Issue    IssueRef        `json:"issue"`
	Parent   *IssueRef       `json:"parent,omitempty"`
	Children []IssueRef      `json:"children"`
	Links    []IssueRelation `json:"relations"`
}

// Entries flattens r into display lines: parent, children, then links.
// Incoming links use the inverse label.
func (r Relations) Entries() []RelationEntry {
	var out []RelationEntry
	if r.Parent != nil {
		out = append(out, RelationEntry{Type: "parent", Issue: *r.Parent})
	}
	for _, c := range r.Children {
		out = append(out, RelationEntry{Type: "child", Issue: c})
	}
	for _, l := range r.Links {
		if l.Issue.ID == r.Issue.ID {
			out = append(out, RelationEntry{RelationID: l.ID, Type: string(l.Type), Issue: l.RelatedIssue})
		} else {
			out = append(out, RelationEntry{RelationID: l.ID, Type: l.Type.InverseLabel(), Issue: l.Issue})
		}
	}
	return out
}

// Find returns the link between r.Issue and the issue with the given id
// or identifier, in either direction.
func (r Relations) Find(other string) (IssueRelation, bool) {
	for _, l := range r.Links {
		for _, ref := range []IssueRef{l.Issue, l.RelatedIssue} {
			if ref.ID == r.Issue.ID {
				continue
			}
			if ref.ID == other || strings.EqualFold(ref.Identifier, other) {
				return l, true
			}
		}
	}
	return IssueRelation{}, false
}

const relationsQuery = `
query Relations($id: String!) {
  issue(id: $id) {
    id
    identifier
    title
    parent { id identifier title }
    children(first: 250) { nodes { id identifier title } }
    relations(first: 250) {
      nodes {
        id
        type
        issue { id identifier title }
        relatedIssue { id identifier title }
      }
    }
    inverseRelations(first: 250) {
      nodes {
        id
        type
        issue { id identifier title }
        relatedIssue { id identifier title }
      }
    }
  }
}
`

const createRelationMutation = `
mutation IssueRelationCreate($input: IssueRelationCreateInput!) {
  issueRelationCreate(input: $input) {
    success
    issueRelation { id type issue { id identifier title } relatedIssue { id identifier title } }
  }
}
`

const deleteRelationMutation = `
mutation IssueRelationDelete($id: String!) {
  issueRelationDelete(id: $id) { success }
}
`

type relationNodes struct {
	Nodes []IssueRelation `json:"nodes"`
}

// Relations returns the parent, children and links of an issue.
func (c *Client) Relations(ctx context.Context, issueID string) (*Relations, error) {
	var data struct {
		Issue *struct {
			IssueRef
			Parent   *IssueRef `json:"parent"`
			Children struct {
				Nodes []IssueRef `json:"nodes"`
			} `json:"children"`
			Relations        relationNodes `json:"relations"`
			InverseRelations relationNodes `json:"inverseRelations"`
		} `json:"issue"`
	}
	if err := c.do(ctx, "relations", relationsQuery, map[string]any{"id": issueID}, &data); err != nil {
		return nil, err
	}
	if data.Issue == nil {
		return nil, errs.NotFound("issue not found: %s", issueID)
	}
	i := data.Issue
	r := &Relations{
		Issue:    i.IssueRef,
		Parent:   i.Parent,
		Children: i.Children.Nodes,
	}
	r.Links = append(r.Links, i.Relations.Nodes...)
	r.Links = append(r.Links, i.InverseRelations.Nodes...)
	return r, nil
}

// CreateRelation links issueID to relatedID.
func (c *Client) CreateRelation(ctx context.Context, issueID, relatedID string, t RelationType) (*IssueRelation, error) {
	var data struct {
		Result struct {
			Success  bool           `json:"success"`
			Relation *IssueRelation `json:"issueRelation"`
		} `json:"issueRelationCreate"`
	}
	vars := map[string]any{"input": map[string]any{
		"issueId":        issueID,
		"relatedIssueId": relatedID,
		"type":           string(t),
	}}
	if err := c.do(ctx, "issueRelationCreate", createRelationMutation, vars, &data); err != nil {
		return nil, err
	}
	if !data.Result.Success || data.Result.Relation == nil {
		return nil, errs.Rejected(http.StatusOK, "issueRelationCreate was not successful")
	}
	return data.Result.Relation, nil
}

// DeleteRelation removes a relation by id.
func (c *Client) DeleteRelation(ctx context.Context, id string) error {
	var data struct {
		Result struct {
			Success bool `json:"success"`
		} `json:"issueRelationDelete"`
	}
	if err := c.do(ctx, "issueRelationDelete", deleteRelationMutation, map[string]any{"id": id}, &data); err != nil {
		return err
	}
	if !data.Result.Success {
		return errs.Rejected(http.StatusOK, "issueRelationDelete was not successful")
	}
	return nil
}
