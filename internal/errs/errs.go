// Package errs defines the error kinds surfaced by the linear CLI.
//
// Every failure a command can report falls into one of five kinds. Callers
// wrap them with fmt.Errorf("...: %w", err) freely; the kind survives the
// wrapping and is recovered with [KindOf] or errors.As.
//
// Each kind may carry a suggestion, a short hint shown to the user below
// the error message (for example "Run 'linear teams' to list teams").
package errs

import (
	"errors"
	"fmt"
)

// Kind names an error category. The string form is stable and appears in
// JSON error output.
type Kind string

const (
	KindConfig            Kind = "config"
	KindNotFound          Kind = "not_found"
	KindRemoteUnavailable Kind = "remote_unavailable"
	KindValidation        Kind = "validation"
	KindRemoteRejected    Kind = "remote_rejected"
	KindUnknown           Kind = "unknown"
)

type base struct {
	Msg        string
	Suggestion string
	Err        error
}

func (b *base) text() string {
	if b.Err != nil && b.Msg != "" {
		return fmt.Sprintf("%s: %v", b.Msg, b.Err)
	}
	if b.Err != nil {
		return b.Err.Error()
	}
	return b.Msg
}

// ConfigError reports a missing or invalid configuration value. It is
// raised before any network call.
type ConfigError struct{ base }

func (e *ConfigError) Error() string { return e.text() }
func (e *ConfigError) Unwrap() error { return e.Err }

// NotFoundError reports a name or identifier that does not resolve.
type NotFoundError struct{ base }

func (e *NotFoundError) Error() string { return e.text() }
func (e *NotFoundError) Unwrap() error { return e.Err }

// RemoteUnavailableError reports a transport failure, timeout, rate limit
// or server-side (5xx) failure.
type RemoteUnavailableError struct{ base }

func (e *RemoteUnavailableError) Error() string { return e.text() }
func (e *RemoteUnavailableError) Unwrap() error { return e.Err }

// ValidationError reports malformed user input.
type ValidationError struct{ base }

func (e *ValidationError) Error() string { return e.text() }
func (e *ValidationError) Unwrap() error { return e.Err }

// RemoteRejectedError reports an application-level rejection from the API.
// Msg holds the server's message verbatim.
type RemoteRejectedError struct {
	base
	Status int
}

func (e *RemoteRejectedError) Error() string { return e.text() }
func (e *RemoteRejectedError) Unwrap() error { return e.Err }

// Config returns a ConfigError with the formatted message.
func Config(format string, args ...any) *ConfigError {
	return &ConfigError{base{Msg: fmt.Sprintf(format, args...)}}
}

// NotFound returns a NotFoundError with the formatted message.
func NotFound(format string, args ...any) *NotFoundError {
	return &NotFoundError{base{Msg: fmt.Sprintf(format, args...)}}
}

// Unavailable wraps a transport-level failure.
func Unavailable(msg string, err error) *RemoteUnavailableError {
	return &RemoteUnavailableError{base{Msg: msg, Err: err}}
}

// Validation returns a ValidationError with the formatted message.
func Validation(format string, args ...any) *ValidationError {
	return &ValidationError{base{Msg: fmt.Sprintf(format, args...)}}
}

// Invalid wraps an input error raised elsewhere, such as a flag parse
// failure, as a ValidationError.
func Invalid(err error) *ValidationError {
	return &ValidationError{base{Err: err}}
}

// Rejected returns a RemoteRejectedError carrying the server's message.
func Rejected(status int, msg string) *RemoteRejectedError {
	return &RemoteRejectedError{base: base{Msg: msg}, Status: status}
}

// WithSuggestion attaches a suggestion to err if err is one of the kinds
// defined here. Other errors are returned unchanged.
func WithSuggestion(err error, suggestion string) error {
	if b := baseOf(err); b != nil {
		b.Suggestion = suggestion
	}
	return err
}

// KindOf reports the kind of the first error in err's chain that belongs
// to this package.
func KindOf(err error) Kind {
	var (
		ce *ConfigError
		ne *NotFoundError
		ue *RemoteUnavailableError
		ve *ValidationError
		re *RemoteRejectedError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ce):
		return KindConfig
	case errors.As(err, &ne):
		return KindNotFound
	case errors.As(err, &ue):
		return KindRemoteUnavailable
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &re):
		return KindRemoteRejected
	}
	return KindUnknown
}

// Is reports whether err's chain contains an error of kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Suggestion returns the suggestion attached to err's chain, if any.
func Suggestion(err error) string {
	if b := baseOf(err); b != nil {
		return b.Suggestion
	}
	return ""
}

// ExitCode maps err to a process exit code: 2 for input and configuration
// problems, 1 for everything else.
func ExitCode(err error) int {
	switch KindOf(err) {
	case "":
		return 0
	case KindValidation, KindConfig:
		return 2
	}
	return 1
}

func baseOf(err error) *base {
	var (
		ce *ConfigError
		ne *NotFoundError
		ue *RemoteUnavailableError
		ve *ValidationError
		re *RemoteRejectedError
	)
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ce):
		return &ce.base
	case errors.As(err, &ne):
		return &ne.base
	case errors.As(err, &ue):
		return &ue.base
	case errors.As(err, &ve):
		return &ve.base
	case errors.As(err, &re):
		return &re.base
	}
	return nil
}
