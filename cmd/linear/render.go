package main

import (
	"context"

	"github.com/raphi011/linear/internal/log"
	"github.com/raphi011/linear/internal/output"
	"github.com/raphi011/linear/internal/ui/progress"
	"github.com/raphi011/linear/internal/ui/static"
)

// printList writes items as JSON, compact lines or a table, depending on
// the selected format. empty is printed instead of an empty table.
func printList[T any](ctx context.Context, items []T, t static.Table, empty string) error {
	out := output.FromContext(ctx)
	switch out.Format() {
	case output.FormatJSON:
		if items == nil {
			items = []T{}
		}
		return out.JSON(items)
	case output.FormatCompact:
		out.Print(t.Compact())
		return nil
	}
	if len(t.Rows) == 0 {
		out.Println(empty)
		return nil
	}
	out.Print(t.Render())
	return nil
}

// withSpinner runs fn while a spinner animates on the log output. Nothing
// is drawn when that is not a terminal, or in quiet or verbose mode.
func withSpinner(ctx context.Context, message string, fn func() error) error {
	l := log.FromContext(ctx)
	if l.Quiet() || l.Verbose() || !isTerminal(l.Writer()) {
		return fn()
	}
	sp := progress.Start(l.Writer(), message)
	defer sp.Stop()
	return fn()
}
