package interp

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mpkocher/almond/errors"
	"github.com/mpkocher/almond/kernel"
)

// deferredEval is the unresolved half of an after(ms, expr) call.
type deferredEval struct {
	delay time.Duration
	expr  node
}

// failError carries an evaluation rejection (Failure outcome).
type failError struct {
	msg string
}

func (e failError) Error() string { return e.msg }

// throwError carries a user-thrown exception (Exception outcome).
type throwError struct {
	err error
}

func (e throwError) Error() string { return e.err.Error() }

// exitError carries a session-exit request (Exit outcome).
type exitError struct {
	code int
}

func (e exitError) Error() string { return fmt.Sprintf("exit(%d)", e.code) }

// outcomeOf maps an evaluation error to the evaluator's verdict.
func outcomeOf(err error) kernel.Outcome {
	var throwE throwError
	if stderrors.As(err, &throwE) {
		return kernel.Exception{Err: throwE.err}
	}
	var exitE exitError
	if stderrors.As(err, &exitE) {
		return kernel.Exit{Code: exitE.code}
	}
	if stderrors.Is(err, errors.Interrupted("")) || stderrors.Is(err, context.Canceled) {
		return kernel.Failure{Message: "interrupted"}
	}
	return kernel.Failure{Message: err.Error()}
}

func (in *Interp) evalNode(ctx context.Context, n node, f *Frame, run *kernel.Run) (value, error) {
	if err := ctx.Err(); err != nil {
		return value{}, err
	}

	switch e := n.(type) {
	case litNode:
		return e.val, nil

	case identNode:
		v, ok := f.lookup(e.name)
		if !ok {
			return value{}, failError{msg: "not found: value " + e.name}
		}
		return v, nil

	case binNode:
		left, err := in.evalNode(ctx, e.left, f, run)
		if err != nil {
			return value{}, err
		}
		right, err := in.evalNode(ctx, e.right, f, run)
		if err != nil {
			return value{}, err
		}
		return applyBinary(e.op, left, right)

	case callNode:
		return in.evalCall(ctx, e, f, run)

	default:
		return value{}, failError{msg: fmt.Sprintf("cannot evaluate %T", n)}
	}
}

func applyBinary(op string, l, r value) (value, error) {
	if l.tag == tagPending || r.tag == tagPending {
		return value{}, failError{msg: "pending value not yet resolved"}
	}

	// string concatenation
	if op == "+" && (l.tag == tagStr || r.tag == tagStr) {
		return strValue(l.text() + r.text()), nil
	}

	if l.tag == tagFloat || r.tag == tagFloat {
		lf, rf, err := floatsOf(l, r, op)
		if err != nil {
			return value{}, err
		}
		return applyFloat(op, lf, rf)
	}

	if l.tag == tagInt && r.tag == tagInt {
		return applyInt(op, l.i, r.i)
	}

	if l.tag == tagBool && r.tag == tagBool {
		switch op {
		case "==":
			return boolValue(l.b == r.b), nil
		case "!=":
			return boolValue(l.b != r.b), nil
		}
	}

	if l.tag == tagStr && r.tag == tagStr {
		switch op {
		case "==":
			return boolValue(l.s == r.s), nil
		case "!=":
			return boolValue(l.s != r.s), nil
		case "<":
			return boolValue(l.s < r.s), nil
		case ">":
			return boolValue(l.s > r.s), nil
		}
	}

	return value{}, failError{msg: fmt.Sprintf("type mismatch: %s %s %s", l.typeName(), op, r.typeName())}
}

func floatsOf(l, r value, op string) (float64, float64, error) {
	toF := func(v value) (float64, error) {
		switch v.tag {
		case tagFloat:
			return v.f, nil
		case tagInt:
			return float64(v.i), nil
		default:
			return 0, failError{msg: fmt.Sprintf("type mismatch: %s in numeric %s", v.typeName(), op)}
		}
	}
	lf, err := toF(l)
	if err != nil {
		return 0, 0, err
	}
	rf, err := toF(r)
	if err != nil {
		return 0, 0, err
	}
	return lf, rf, nil
}

func applyInt(op string, l, r int64) (value, error) {
	switch op {
	case "+":
		return intValue(l + r), nil
	case "-":
		return intValue(l - r), nil
	case "*":
		return intValue(l * r), nil
	case "/":
		if r == 0 {
			return value{}, throwError{err: fmt.Errorf("arithmetic exception: division by zero")}
		}
		return intValue(l / r), nil
	case "==":
		return boolValue(l == r), nil
	case "!=":
		return boolValue(l != r), nil
	case "<":
		return boolValue(l < r), nil
	case ">":
		return boolValue(l > r), nil
	case "<=":
		return boolValue(l <= r), nil
	case ">=":
		return boolValue(l >= r), nil
	}
	return value{}, failError{msg: "unsupported operator " + op}
}

func applyFloat(op string, l, r float64) (value, error) {
	switch op {
	case "+":
		return floatValue(l + r), nil
	case "-":
		return floatValue(l - r), nil
	case "*":
		return floatValue(l * r), nil
	case "/":
		return floatValue(l / r), nil
	case "==":
		return boolValue(l == r), nil
	case "!=":
		return boolValue(l != r), nil
	case "<":
		return boolValue(l < r), nil
	case ">":
		return boolValue(l > r), nil
	case "<=":
		return boolValue(l <= r), nil
	case ">=":
		return boolValue(l >= r), nil
	}
	return value{}, failError{msg: "unsupported operator " + op}
}

func builtinNames() []string {
	return []string{"after", "exit", "fail", "print", "println", "readLine", "sleep", "throw"}
}

func (in *Interp) evalCall(ctx context.Context, call callNode, f *Frame, run *kernel.Run) (value, error) {
	// after keeps its expression unevaluated; handle before arg evaluation
	if call.name == "after" {
		if len(call.args) != 2 {
			return value{}, failError{msg: "after expects (delayMillis, expr)"}
		}
		delay, err := in.evalNode(ctx, call.args[0], f, run)
		if err != nil {
			return value{}, err
		}
		if delay.tag != tagInt {
			return value{}, failError{msg: "after: delay must be Int millis"}
		}
		v := pendingValue()
		v.def = &deferredEval{delay: time.Duration(delay.i) * time.Millisecond, expr: call.args[1]}
		return v, nil
	}

	args := make([]value, len(call.args))
	for i, a := range call.args {
		v, err := in.evalNode(ctx, a, f, run)
		if err != nil {
			return value{}, err
		}
		args[i] = v
	}

	switch call.name {
	case "print", "println":
		var b strings.Builder
		for i, a := range args {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(a.text())
		}
		if call.name == "println" {
			b.WriteString("\n")
		}
		if run == nil {
			return value{}, failError{msg: call.name + ": no output available in background task"}
		}
		run.Stdout(b.String())
		return unitValue(), nil

	case "readLine":
		if run == nil {
			return value{}, failError{msg: "readLine: no input available in background task"}
		}
		prompt := ""
		if len(args) > 0 && args[0].tag == tagStr {
			prompt = args[0].s
		}
		line, err := run.ReadLine(prompt, false)
		if err != nil {
			if stderrors.Is(err, io.EOF) {
				return value{}, failError{msg: "readLine: no more input"}
			}
			return value{}, err
		}
		return strValue(line), nil

	case "sleep":
		if len(args) != 1 || args[0].tag != tagInt {
			return value{}, failError{msg: "sleep expects millis"}
		}
		select {
		case <-ctx.Done():
			return value{}, ctx.Err()
		case <-time.After(time.Duration(args[0].i) * time.Millisecond):
			return unitValue(), nil
		}

	case "fail":
		msg := "failed"
		if len(args) > 0 {
			msg = args[0].text()
		}
		return value{}, failError{msg: msg}

	case "throw":
		msg := "exception"
		if len(args) > 0 {
			msg = args[0].text()
		}
		return value{}, throwError{err: fmt.Errorf("%s", msg)}

	case "exit":
		code := 0
		if len(args) > 0 && args[0].tag == tagInt {
			code = int(args[0].i)
		}
		return value{}, exitError{code: code}
	}

	return value{}, failError{msg: "not found: function " + call.name}
}

// schedulePending spawns the background task that resolves an after(...)
// value. The task holds only session-durable handles: the display registry
// and a snapshot of the visible bindings. Once resolved it binds the value
// back into the live frame and replaces the placeholder through the
// durable channel.
func (in *Interp) schedulePending(name string, v value, f *Frame, run *kernel.Run) {
	if v.def == nil {
		return
	}
	def := v.def
	displays := run.Displays()
	env := f.snapshot()

	go func() {
		time.Sleep(def.delay)

		resolved, err := in.evalNode(context.Background(), def.expr, env, nil)
		var data kernel.DisplayData
		if err != nil {
			data = kernel.Text("%s: failed: %v", name, err)
		} else {
			f.bind(name, resolved)
			data = kernel.Text("%s", renderBinding(name, resolved))
		}

		// Registration happens when the originating submission's outcome is
		// classified; wait for it before updating.
		deadline := time.Now().Add(10 * time.Second)
		for {
			if _, ok := displays.IDFor(name); ok {
				break
			}
			if time.Now().After(deadline) {
				Logger().Debug("pending value never registered", zap.String("name", name))
				return
			}
			time.Sleep(5 * time.Millisecond)
		}

		if err := displays.UpdateNamed(name, data, true); err != nil {
			Logger().Debug("pending update failed", zap.String("name", name), zap.Error(err))
		}
	}()
}
