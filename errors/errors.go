package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the submission lifecycle the error occurred
type Phase string

const (
	PhaseParse      Phase = "parse"      // splitting code into statements
	PhasePreprocess Phase = "preprocess" // dependency auto-injection
	PhaseEvaluate   Phase = "evaluate"   // running statements against a frame
	PhaseInterrupt  Phase = "interrupt"  // cancellation handling
	PhaseDisplay    Phase = "display"    // async display updates
	PhaseSession    Phase = "session"    // session state bookkeeping
	PhaseClient     Phase = "client"     // client-facing surface
)

// Kind categorizes the error
type Kind string

const (
	KindParseError        Kind = "parse_error"
	KindIncompleteInput   Kind = "incomplete_input"
	KindEvalFailed        Kind = "eval_failed"
	KindEvalPanic         Kind = "eval_panic"
	KindInterrupted       Kind = "interrupted"
	KindUpdateUnavailable Kind = "update_unavailable"
	KindSessionExit       Kind = "session_exit"
	KindEndOfInput        Kind = "end_of_input"
	KindNotFound          Kind = "not_found"
	KindInvalidInput      Kind = "invalid_input"
	KindNotInitialized    Kind = "not_initialized"
	KindUnsupported       Kind = "unsupported"
)

// Error is the structured error type used throughout the kernel
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the context path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// ParseError creates a malformed-submission error
func ParseError(detail string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindParseError,
		Detail: detail,
	}
}

// Incomplete creates an incomplete-input error. The client should keep
// accepting lines rather than report a failure.
func Incomplete(detail string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindIncompleteInput,
		Detail: detail,
	}
}

// EvalFailed creates an evaluation-rejected error (compile or type failure)
func EvalFailed(detail string) *Error {
	return &Error{
		Phase:  PhaseEvaluate,
		Kind:   KindEvalFailed,
		Detail: detail,
	}
}

// Interrupted creates an interrupted-evaluation error
func Interrupted(detail string) *Error {
	return &Error{
		Phase:  PhaseInterrupt,
		Kind:   KindInterrupted,
		Detail: detail,
	}
}

// UpdateUnavailable creates the error for a display update attempted with no
// durable channel configured
func UpdateUnavailable(id string) *Error {
	return &Error{
		Phase:  PhaseDisplay,
		Kind:   KindUpdateUnavailable,
		Path:   []string{id},
		Detail: "no durable update channel configured",
	}
}

// SessionExit creates the fatal contract-violation error raised when
// evaluated code requests session termination
func SessionExit(code int) *Error {
	return &Error{
		Phase:  PhaseSession,
		Kind:   KindSessionExit,
		Detail: fmt.Sprintf("evaluated code requested session exit (code %d)", code),
		Value:  code,
	}
}

// EndOfInput creates the error an input source returns when no more input
// will arrive
func EndOfInput() *Error {
	return &Error{
		Phase: PhaseClient,
		Kind:  KindEndOfInput,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: what,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotInitialized creates a not-initialized error
func NotInitialized(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", what),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
