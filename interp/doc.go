// Package interp is a reference evaluator for the kernel: a deliberately
// small expression language with persistent frames, used by the REPL client
// and the kernel's end-to-end tests. It implements kernel.Evaluator.
//
// The language supports immutable bindings (val x = 1 + 2), arithmetic and
// comparison over ints, floats, strings and bools, and a handful of
// builtins: print, println, readLine, sleep, fail, throw, exit, and
// after(ms, expr) which resolves a value in the background and pushes it
// through the kernel's display pipeline once ready.
//
// Each submission evaluates against a frame; child frames see everything
// their parents accumulated. Synthetic result names (res3) derive from the
// session's line counter.
package interp
