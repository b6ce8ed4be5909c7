package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphi011/linear/internal/errs"
	"github.com/raphi011/linear/internal/linear"
)

var workflow = []linear.WorkflowState{
	{ID: "st_backlog", Name: "Backlog", Type: "backlog", Position: 0},
	{ID: "st_todo", Name: "Todo", Type: "unstarted", Position: 1},
	{ID: "st_prog", Name: "In Progress", Type: "started", Position: 2},
	{ID: "st_done", Name: "Done", Type: linear.StateCompleted, Position: 3},
	{ID: "st_cancel", Name: "Canceled", Type: "canceled", Position: 4},
}

func TestFindState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		wantID     string
		wantKind   errs.Kind
		suggestion string
	}{
		{name: "exact", input: "Done", wantID: "st_done"},
		{name: "case-insensitive", input: "in progress", wantID: "st_prog"},
		{name: "surrounding space", input: " todo ", wantID: "st_todo"},
		{name: "typo", input: "Dne", wantKind: errs.KindNotFound, suggestion: `Did you mean "Done"?`},
		{name: "no match lists all", input: "zzz", wantKind: errs.KindNotFound,
			suggestion: "Available: Backlog, Todo, In Progress, Done, Canceled"},
		{name: "empty", input: "", wantKind: errs.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := findState(workflow, tt.input)
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, errs.KindOf(err))
				assert.Equal(t, tt.suggestion, errs.Suggestion(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestCompletedState(t *testing.T) {
	t.Parallel()

	got, ok := completedState(workflow)
	require.True(t, ok)
	assert.Equal(t, "st_done", got.ID)

	_, ok = completedState(workflow[:2])
	assert.False(t, ok)

	unordered := []linear.WorkflowState{
		{ID: "st_shipped", Name: "Shipped", Type: linear.StateCompleted, Position: 7},
		{ID: "st_todo", Name: "Todo", Type: "unstarted", Position: 1},
		{ID: "st_merged", Name: "Merged", Type: linear.StateCompleted, Position: 5},
	}
	got, ok = completedState(unordered)
	require.True(t, ok)
	assert.Equal(t, "st_merged", got.ID, "earliest completed state in workflow order")
}
