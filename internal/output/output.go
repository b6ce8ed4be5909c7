// Package output provides context-aware output for the linear CLI.
// Stdout is used for primary data output (tables, JSON, messages).
// Stderr (via the log package) is used for diagnostics.
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/colorprofile"

	"github.com/raphi011/linear/internal/errs"
)

type ctxKey struct{}

// Format selects how records are rendered.
type Format string

const (
	FormatTable   Format = "table"
	FormatJSON    Format = "json"
	FormatCompact Format = "compact"
)

// Formats lists the accepted --output values.
var Formats = []string{string(FormatTable), string(FormatJSON), string(FormatCompact)}

// ParseFormat validates an --output value. Empty means table.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatCompact:
		return FormatCompact, nil
	}
	return "", errs.Validation("invalid output format %q: must be table, json, or compact", s)
}

// Printer writes primary output to stdout. Styled text goes through a
// colorprofile writer that downsamples or strips ANSI sequences to what
// the terminal supports.
type Printer struct {
	w      io.Writer
	styled io.Writer
	format Format
}

// New creates a Printer. Color is detected from w and the environment;
// noColor or a non-table format strips it.
func New(w io.Writer, format Format, noColor bool) *Printer {
	profile := colorprofile.Detect(w, os.Environ())
	if noColor || format != FormatTable {
		profile = colorprofile.NoTTY
	}
	return &Printer{
		w:      w,
		styled: &colorprofile.Writer{Forward: w, Profile: profile},
		format: format,
	}
}

// WithPrinter attaches a Printer to the context.
func WithPrinter(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext retrieves the Printer from context.
// Returns a plain table Printer writing to os.Stdout if none is attached.
func FromContext(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return &Printer{w: os.Stdout, styled: os.Stdout, format: FormatTable}
}

// Format returns the selected output format.
func (p *Printer) Format() Format {
	return p.format
}

// JSONMode reports whether records should be printed as JSON.
func (p *Printer) JSONMode() bool {
	return p.format == FormatJSON
}

// Print writes output without a newline.
func (p *Printer) Print(a ...any) {
	fmt.Fprint(p.styled, a...)
}

// Printf writes formatted output.
func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.styled, format, a...)
}

// Println writes a line of output.
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.styled, a...)
}

// JSON writes v as indented JSON.
func (p *Printer) JSON(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Message prints a status line such as "Created ENG-124 - Fix login bug".
// In JSON mode it is wrapped as {"message": ...}.
func (p *Printer) Message(format string, a ...any) error {
	msg := fmt.Sprintf(format, a...)
	if p.JSONMode() {
		return p.JSON(map[string]string{"message": msg})
	}
	p.Println(msg)
	return nil
}
