package main

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/raphi011/linear/internal/errs"
	"github.com/raphi011/linear/internal/linear"
)

// closest returns the best fuzzy match for input among candidates, or "".
func closest(input string, candidates []string) string {
	matches := fuzzy.Find(strings.ToLower(input), lowered(candidates))
	if len(matches) == 0 {
		return ""
	}
	return candidates[matches[0].Index]
}

func lowered(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}

// didYouMean attaches a "Did you mean" suggestion to err when input
// fuzzily matches a candidate, otherwise lists the candidates.
func didYouMean(err error, input string, candidates []string) error {
	if best := closest(input, candidates); best != "" {
		return errs.WithSuggestion(err, fmt.Sprintf("Did you mean %q?", best))
	}
	if len(candidates) > 0 {
		return errs.WithSuggestion(err, "Available: "+strings.Join(candidates, ", "))
	}
	return err
}

// findState picks the workflow state named name (case-insensitive).
func findState(states []linear.WorkflowState, name string) (linear.WorkflowState, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return linear.WorkflowState{}, errs.Validation("--status must not be empty")
	}
	names := make([]string, len(states))
	for i, s := range states {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
		names[i] = s.Name
	}
	return linear.WorkflowState{}, didYouMean(errs.NotFound("status not found: %s", name), name, names)
}

// completedState returns the first completed-type state in workflow order.
func completedState(states []linear.WorkflowState) (linear.WorkflowState, bool) {
	var (
		best  linear.WorkflowState
		found bool
	)
	for _, s := range states {
		if s.Type != linear.StateCompleted {
			continue
		}
		if !found || s.Position < best.Position {
			best, found = s, true
		}
	}
	return best, found
}

// parseRelationType is linear.ParseRelationType with a typo suggestion.
func parseRelationType(s string) (linear.RelationType, error) {
	t, err := linear.ParseRelationType(s)
	if err != nil {
		names := make([]string, len(linear.RelationTypes))
		for i, rt := range linear.RelationTypes {
			names[i] = string(rt)
		}
		return "", didYouMean(err, s, names)
	}
	return t, nil
}
