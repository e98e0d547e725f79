// Package errors provides structured error types for the kernel library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes context: an optional path (a display id,
// a trigger name), a detail message, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEvaluate, errors.KindEvalFailed).
//		Path("cmd3").
//		Detail("type mismatch: expected int, got string").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.ParseError("unexpected token '}'")
//	err := errors.UpdateUnavailable(id)
//
// All errors implement the standard error interface and support errors.Is/As.
// Two *Error values match under errors.Is when their Phase and Kind are
// equal, so package-level sentinels compare without sharing pointers.
package errors
