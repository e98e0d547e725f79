package kernel

import (
	"context"
)

// Frame is an evaluator-opaque unit of accumulated compiled state (imports,
// definitions, values) forming a parent/child chain across submissions.
type Frame interface {
	// ID identifies the frame for removal/replacement keyed by the evaluator.
	ID() string
}

// Statement is an evaluator-opaque parsed unit produced by Split.
type Statement any

// Evaluator is the external parser/compiler/evaluator consumed as a black
// box. Implementations perform the actual language semantics.
//
// Contract:
//   - Split reports unfinished input with an error matching
//     errors.KindIncompleteInput; any other error is a parse error.
//   - Evaluate runs statements against the given frame. The line number is
//     the session counter the evaluator uses to generate unique synthetic
//     names; the evaluator must call run.AdvanceLine exactly once per
//     executed line group. Evaluate must honor ctx cancellation at its
//     suspension points when it can.
//   - NewChildFrame must preserve classpath/import visibility lineage from
//     parent to child.
type Evaluator interface {
	Split(code string) ([]Statement, error)
	InitialFrame() (Frame, error)
	NewChildFrame(parent Frame) (Frame, error)
	Evaluate(ctx context.Context, stmts []Statement, frame Frame, line int, run *Run) Outcome
	Complete(frame Frame, code string, pos int) (int, []string)
}

// InputSource supplies input to evaluated code on demand. ReadInput blocks
// until text arrives or returns an error matching errors.KindEndOfInput when
// no more input will ever arrive.
type InputSource interface {
	ReadInput(prompt string, password bool) (string, error)
}

// OutputSink receives output captured from evaluated code.
type OutputSink interface {
	Stdout(text string)
	Stderr(text string)
}

// CommHandle is a durable communication path to the client that outlives any
// single submission's execution. Async display updates travel only through
// it.
type CommHandle interface {
	UpdateDisplay(p DisplayPayload) error
}

// Outcome is the evaluator's verdict on one submission.
type Outcome interface {
	outcome()
}

// Success reports a completed evaluation with a rendered result value
// (possibly empty).
type Success struct {
	Value string
}

// Failure reports that the evaluator rejected the code, for example a type
// or compile error. The session remains usable.
type Failure struct {
	Message string
}

// Exception reports that user code threw at runtime. Stack holds captured
// frames when available (for example from a recovered panic).
type Exception struct {
	Err   error
	Stack []string
}

// Skip reports that there was nothing to evaluate.
type Skip struct{}

// Exit reports that evaluated code requested session termination. The host
// must not permit this; it is surfaced as an unrecoverable error.
type Exit struct {
	Code int
}

func (Success) outcome()   {}
func (Failure) outcome()   {}
func (Exception) outcome() {}
func (Skip) outcome()      {}
func (Exit) outcome()      {}
