// Package log provides context-aware diagnostics for the linear CLI.
//
// Everything here goes to stderr so stdout stays clean for tables and
// JSON. Quiet mode drops all of it; verbose mode adds debug lines and a
// timing line for every API request.
package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

type ctxKey struct{}

// Logger writes diagnostics.
type Logger struct {
	out     io.Writer
	verbose bool
	quiet   bool
}

// New creates a new logger. quiet wins over verbose.
func New(out io.Writer, verbose, quiet bool) *Logger {
	return &Logger{out: out, verbose: verbose && !quiet, quiet: quiet}
}

// WithLogger attaches a logger to the context.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves the logger from context.
// Returns a no-op logger if none is attached.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return Discard()
}

// Discard returns a logger that writes nothing.
func Discard() *Logger {
	return &Logger{out: io.Discard, quiet: true}
}

// Printf writes formatted output.
func (l *Logger) Printf(format string, args ...any) {
	if l.quiet {
		return
	}
	fmt.Fprintf(l.out, format, args...)
}

// Println writes a line of output.
func (l *Logger) Println(args ...any) {
	if l.quiet {
		return
	}
	fmt.Fprintln(l.out, args...)
}

// Warnf writes a "Warning: " prefixed line.
func (l *Logger) Warnf(format string, args ...any) {
	if l.quiet {
		return
	}
	fmt.Fprintf(l.out, "Warning: "+strings.TrimSuffix(format, "\n")+"\n", args...)
}

// Debug writes msg followed by key=value pairs when verbose.
func (l *Logger) Debug(msg string, kv ...any) {
	if !l.verbose {
		return
	}
	var b strings.Builder
	b.WriteString("[debug] ")
	b.WriteString(msg)
	// Only complete pairs are printed
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	fmt.Fprintln(l.out, b.String())
}

// Request logs an API operation when verbose and returns a function that
// logs its duration.
//
//	done := l.Request("issueCreate")
//	... perform request ...
//	done(time.Since(start))
func (l *Logger) Request(op string) func(time.Duration) {
	if !l.verbose {
		return func(time.Duration) {}
	}
	fmt.Fprintf(l.out, "→ %s\n", op)
	return func(d time.Duration) {
		fmt.Fprintf(l.out, "← %s (%s)\n", op, d.Round(time.Millisecond))
	}
}

// Verbose returns true if verbose mode is enabled.
func (l *Logger) Verbose() bool {
	return l.verbose
}

// Quiet returns true if quiet mode is enabled.
func (l *Logger) Quiet() bool {
	return l.quiet
}

// Writer returns the underlying writer.
func (l *Logger) Writer() io.Writer {
	return l.out
}
