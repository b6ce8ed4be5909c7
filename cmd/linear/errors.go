package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/raphi011/linear/internal/errs"
)

type errorBody struct {
	Kind       errs.Kind `json:"kind"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion,omitempty"`
}

// printError writes err to w as "Error: ..." followed by the suggestion,
// or as {"error": {...}} in JSON mode. Errors without a kind are usage
// errors from flag parsing and get a pointer to --help.
func printError(w io.Writer, err error, asJSON bool) {
	kind := errs.KindOf(err)
	suggestion := errs.Suggestion(err)
	if kind == errs.KindUnknown && suggestion == "" && !errors.Is(err, context.Canceled) {
		suggestion = "Run 'linear --help' for usage"
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]errorBody{"error": {
			Kind:       kind,
			Message:    err.Error(),
			Suggestion: suggestion,
		}})
		return
	}

	fmt.Fprintf(w, "Error: %v\n", err)
	if suggestion != "" {
		fmt.Fprintf(w, "Suggestion: %s\n", suggestion)
	}
}
