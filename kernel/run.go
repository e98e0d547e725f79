package kernel

import (
	"context"
	"io"
	"os"
	"sync"
)

// pendingVar is one variable whose value was not yet resolved when its
// submission completed.
type pendingVar struct {
	name    string
	summary string
}

// Run is the submission-scoped recorder threaded into the evaluator. It
// carries the evaluation context, the per-submission I/O endpoints, and the
// pending result variable set. A Run is created at the start of each
// submission and torn down at its end; the evaluator must not retain it.
//
// Background tasks spawned by evaluated code must not use the Run after the
// submission finishes; they interact with the kernel only through Displays.
type Run struct {
	ctx      context.Context
	session  *Session
	displays *Displays
	out      OutputSink
	in       *inputReader

	mu      sync.Mutex
	pending []pendingVar
}

// Context returns the evaluation context. It is canceled on interrupt.
func (r *Run) Context() context.Context { return r.ctx }

// Line returns the line number of this submission's first statement group.
func (r *Run) Line() int { return r.session.NextLine() }

// AdvanceLine increments the session's line counter. The evaluator calls it
// exactly once per executed line group, even across multiple statements in
// one submission.
func (r *Run) AdvanceLine() { r.session.advanceLine() }

// AddPendingVariable records a variable whose value has not resolved yet.
// The set is drained when the submission's outcome is classified.
func (r *Run) AddPendingVariable(name, summary string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, pendingVar{name: name, summary: summary})
}

// drainPending clears and returns the pending set in recording order.
func (r *Run) drainPending() []pendingVar {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.pending
	r.pending = nil
	return p
}

// Stdout writes captured output text. With no active sink the write passes
// through to the process stream untouched.
func (r *Run) Stdout(text string) {
	if r.out != nil {
		r.out.Stdout(text)
		return
	}
	io.WriteString(os.Stdout, text)
}

// Stderr writes captured error text, falling back like Stdout.
func (r *Run) Stderr(text string) {
	if r.out != nil {
		r.out.Stderr(text)
		return
	}
	io.WriteString(os.Stderr, text)
}

// Stdin returns the submission's input stream. Reads past buffered data
// block on the active input source; with no source they report EOF
// immediately.
func (r *Run) Stdin() io.Reader { return r.in }

// ReadLine requests one line of input with a prompt, for evaluators that
// surface an explicit read-line primitive to user code.
func (r *Run) ReadLine(prompt string, password bool) (string, error) {
	return r.in.ReadLine(prompt, password)
}

// Displays returns the session-durable placeholder registry. Background
// tasks spawned by evaluated code hold this to deliver later updates.
func (r *Run) Displays() *Displays { return r.displays }
