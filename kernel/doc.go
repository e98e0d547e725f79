// Package kernel implements the execution core of an interactive
// code-evaluation kernel: it accepts one code submission at a time, runs it
// against persistent session state, and returns a structured result while
// cooperating with an external parser/evaluator.
//
// # Quick Start
//
//	k, err := kernel.New(myEvaluator)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := k.Execute(ctx, "val x = 1 + 2")
//	if err != nil {
//	    log.Fatal(err) // unrecoverable contract violation
//	}
//	fmt.Println(res.Payload.Text)
//
// # Submissions
//
// Each call to Execute processes exactly one submission: the code is run
// through the dependency auto-injection preprocessor, split into statements
// by the external evaluator, evaluated against the current frame, and the
// outcome is classified into the returned Result. Session state (frames,
// the line counter, history) persists across submissions; a failed or
// interrupted submission leaves it untouched.
//
// # I/O
//
// Per-submission input and output are supplied as options:
//
//	res, err := k.Execute(ctx, code,
//	    kernel.WithInput(source),
//	    kernel.WithOutput(sink))
//
// While a submission evaluates, the process-wide standard output streams
// are redirected into the active sink so that evaluated code using
// low-level primitives is still captured, and the process stdin is replaced
// with an exhausted stream so evaluated code cannot read the host terminal.
// Input reaches evaluated code only on demand, through the Run API. All
// redirections are restored on every exit path.
//
// # Interruption
//
// Interrupt cancels the in-flight evaluation. Cancellation is cooperative:
// the evaluation context is canceled, blocked input reads unblock, and an
// evaluator that still does not return within the grace period is abandoned.
// The result of an interrupted submission carries an "Interrupted!" trace.
//
// # Async display updates
//
// Values that resolve after their submission has finished are published as
// placeholders through the Displays registry and replaced later via a
// durable CommHandle, independent of whichever submission is active.
package kernel
