package kernel

import (
	"context"
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/mpkocher/almond/errors"
)

// ExecOption configures one submission.
type ExecOption func(*execConfig)

type execConfig struct {
	in  InputSource
	out OutputSink
}

// WithInput supplies the submission's input source.
func WithInput(src InputSource) ExecOption {
	return func(c *execConfig) { c.in = src }
}

// WithOutput supplies the submission's output sink.
func WithOutput(sink OutputSink) ExecOption {
	return func(c *execConfig) { c.out = sink }
}

// Execute processes one submission: preprocess, split, evaluate against the
// current frame, classify. Recoverable problems (parse errors, evaluation
// failures, exceptions, interrupts) are reported inside the Result and
// leave session state untouched; the returned error is non-nil only for
// unrecoverable contract violations such as a session-exit request.
func (k *Kernel) Execute(ctx context.Context, code string, opts ...ExecOption) (*Result, error) {
	k.execMu.Lock()
	defer k.execMu.Unlock()

	var cfg execConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	line := k.session.NextLine()
	log := Logger()
	log.Debug("executing submission", zap.Int("line", line), zap.Int("bytes", len(code)))

	rewritten := k.auto.rewrite(code)

	stmts, err := k.eval.Split(rewritten)
	if err != nil {
		if stderrors.Is(err, errors.Incomplete("")) {
			return &Result{
				Payload: Payload{Kind: PayloadError, Text: err.Error()},
				Err:     errors.Wrap(errors.PhaseParse, errors.KindIncompleteInput, err, "incomplete submission"),
			}, nil
		}
		return &Result{
			Payload: Payload{Kind: PayloadError, Text: err.Error()},
			Err:     errors.Wrap(errors.PhaseParse, errors.KindParseError, err, "malformed submission"),
		}, nil
	}

	outcome, run := k.evaluate(ctx, stmts, cfg.in, cfg.out)

	res, err := k.classify(outcome, run)
	if err != nil {
		log.Debug("submission fatal", zap.Error(err))
		return nil, err
	}

	if res.Err == nil {
		k.session.recordHistory(code)
	}
	log.Debug("submission done",
		zap.Int("line", k.session.NextLine()),
		zap.Int("displays", len(res.Displays)),
		zap.Bool("failed", res.Err != nil))
	return res, nil
}

// evaluate activates the submission's I/O, redirects the process streams,
// and runs the evaluator under the interrupt controller. All scoping and
// redirection lives on this goroutine and is restored in defers before
// evaluate returns, even when the evaluation goroutine was abandoned after
// an interrupt.
func (k *Kernel) evaluate(parent context.Context, stmts []Statement, in InputSource, out OutputSink) (Outcome, *Run) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	run := &Run{
		ctx:      ctx,
		session:  k.session,
		displays: k.displays,
		out:      out,
		in:       newInputReader(ctx, in),
	}

	var outcome Outcome
	_ = k.io.withInput(in, func() error {
		return k.io.withOutput(out, func() error {
			return capturingStandardStreams(out, func() error {
				outcome = k.interrupts.run(ctx, cancel, func() Outcome {
					return k.eval.Evaluate(ctx, stmts, k.session.CurrentFrame(), run.Line(), run)
				})
				return nil
			})
		})
	})

	return outcome, run
}
