// Package almond provides the execution core of an interactive
// code-evaluation kernel.
//
// The library accepts one code submission at a time from a notebook-style
// client, runs it against persistent session state, and returns a structured
// result, while the actual language semantics live in an external evaluator
// consumed as a black box.
//
// # Architecture Overview
//
// The library is organized into packages with distinct responsibilities:
//
//	almond/              Root package documentation
//	├── kernel/          Submission lifecycle: session state, I/O scoping,
//	│                    interrupts, preprocessing, async display updates,
//	│                    result classification
//	├── interp/          Reference evaluator: a small expression language
//	│                    implementing kernel.Evaluator
//	├── errors/          Structured error types (Phase/Kind)
//	└── cmd/almond-repl/ Interactive terminal client
//
// # Quick Start
//
// Create a kernel bound to an evaluator and execute submissions:
//
//	k, err := kernel.New(interp.New())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := k.Execute(ctx, "val x = 1 + 2")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Payload.Text) // x: Int = 3
//
// Session state persists: a later submission sees x. Interrupt an in-flight
// submission with k.Interrupt, and receive asynchronous display updates by
// configuring a durable channel with kernel.WithComm.
package almond
