package kernel

import (
	stderrors "errors"
	"strings"

	"github.com/mpkocher/almond/errors"
)

// PayloadKind distinguishes the client-facing result shapes.
type PayloadKind int

const (
	// PayloadEmpty is a successful submission with nothing to show.
	PayloadEmpty PayloadKind = iota
	// PayloadText is a plain text result.
	PayloadText
	// PayloadDisplay is a renderable-with-identifier structure suitable for
	// later in-place replacement.
	PayloadDisplay
	// PayloadError is a formatted error or exception report.
	PayloadError
	// PayloadInterrupted is a distinguishable interrupted-evaluation report.
	PayloadInterrupted
)

// Payload is the client-facing body of one submission's result.
type Payload struct {
	Kind PayloadKind
	Text string
}

// Result is what one submission yields: exactly one payload, the
// placeholders registered during classification, and the structured error
// for unsuccessful submissions. The session remains usable after any result
// carrying a non-nil Err.
type Result struct {
	Payload  Payload
	Displays []*Display
	Err      *errors.Error
}

// classify maps the evaluator's outcome into a client-facing result,
// draining the pending result variable set. The interrupt record is
// consulted for Failure outcomes only; an interrupted evaluation that
// surfaces as a runtime exception is formatted as a plain exception. That
// matches the observed behavior of the system this core replaces and is
// kept deliberately.
func (k *Kernel) classify(out Outcome, run *Run) (*Result, error) {
	switch o := out.(type) {
	case Success:
		pending := run.drainPending()
		if len(pending) == 0 {
			if o.Value == "" {
				return &Result{Payload: Payload{Kind: PayloadEmpty}}, nil
			}
			return &Result{Payload: Payload{Kind: PayloadText, Text: o.Value}}, nil
		}
		res := &Result{Payload: Payload{Kind: PayloadDisplay, Text: o.Value}}
		for _, pv := range pending {
			d := k.displays.Register(Text("%s", pv.summary), pv.name)
			res.Displays = append(res.Displays, d)
		}
		return res, nil

	case Failure:
		if record := k.interrupts.interruptRecord(); record != nil {
			return &Result{
				Payload: Payload{Kind: PayloadInterrupted, Text: formatInterrupted(record)},
				Err:     errors.Interrupted(o.Message),
			}, nil
		}
		return &Result{
			Payload: Payload{Kind: PayloadError, Text: o.Message},
			Err:     errors.EvalFailed(o.Message),
		}, nil

	case Exception:
		text := formatException(o.Err, o.Stack)
		return &Result{
			Payload: Payload{Kind: PayloadError, Text: text},
			Err:     errors.Wrap(errors.PhaseEvaluate, errors.KindEvalPanic, o.Err, "user code threw"),
		}, nil

	case Skip:
		return &Result{Payload: Payload{Kind: PayloadEmpty}}, nil

	case Exit:
		// The host must not permit session termination this way; propagate
		// as an unrecoverable condition rather than a normal error payload.
		return nil, errors.SessionExit(o.Code)
	}

	return nil, errors.Unsupported(errors.PhaseEvaluate, "unknown outcome")
}

// formatInterrupted renders the interrupt record: an explicit marker
// followed by the captured frames, already truncated at the trampoline
// boundary when the record was taken.
func formatInterrupted(record []string) string {
	var b strings.Builder
	b.WriteString("Interrupted!")
	for _, frame := range record {
		b.WriteString("\n  ")
		b.WriteString(frame)
	}
	return b.String()
}

// formatException renders the exception chain, each cause on its own block,
// with internal frames filtered out.
func formatException(err error, stack []string) string {
	var b strings.Builder
	first := true
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		if !first {
			b.WriteString("\nCaused by: ")
		}
		first = false
		b.WriteString(e.Error())
	}
	for _, frame := range truncateAtTrampoline(stack) {
		b.WriteString("\n  at ")
		b.WriteString(frame)
	}
	return b.String()
}
