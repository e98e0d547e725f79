package kernel

import (
	"context"
	"io"
	"sync"

	stderrors "errors"

	"github.com/mpkocher/almond/errors"
)

// ioContext holds the active input source and output sink for the duration
// of one submission's evaluation. The references are mutated only by the
// currently-running submission and restored before the next submission
// activates, regardless of how the evaluation ends.
type ioContext struct {
	mu  sync.Mutex
	out OutputSink
	in  InputSource
}

func (c *ioContext) activeOutput() OutputSink {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out
}

func (c *ioContext) activeInput() InputSource {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.in
}

// withOutput runs body with sink as the active output and restores the prior
// value afterward, on every exit path including panics.
func (c *ioContext) withOutput(sink OutputSink, body func() error) error {
	c.mu.Lock()
	prev := c.out
	c.out = sink
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.out = prev
		c.mu.Unlock()
	}()
	return body()
}

// withInput runs body with source as the active input and restores the prior
// value afterward, on every exit path including panics.
func (c *ioContext) withInput(source InputSource, body func() error) error {
	c.mu.Lock()
	prev := c.in
	c.in = source
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.in = prev
		c.mu.Unlock()
	}()
	return body()
}

// inputReader adapts an InputSource to io.Reader. Reads serve buffered text
// first and then block on ReadInput until input arrives, the source signals
// end-of-input, or ctx is canceled. A nil source signals end-of-input
// immediately rather than blocking.
type inputReader struct {
	ctx    context.Context
	src    InputSource
	prompt string
	buf    []byte
	done   bool
}

func newInputReader(ctx context.Context, src InputSource) *inputReader {
	return &inputReader{ctx: ctx, src: src}
}

func (r *inputReader) Read(p []byte) (int, error) {
	if len(r.buf) == 0 {
		text, err := r.readMore("", false)
		if err != nil {
			return 0, err
		}
		r.buf = append([]byte(text), '\n')
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

// ReadLine requests one line of input with an explicit prompt. Buffered text
// from earlier reads is served first.
func (r *inputReader) ReadLine(prompt string, password bool) (string, error) {
	if len(r.buf) > 0 {
		line := string(r.buf)
		r.buf = nil
		// trailing newline is a transport detail, not part of the line
		if n := len(line); n > 0 && line[n-1] == '\n' {
			line = line[:n-1]
		}
		return line, nil
	}
	return r.readMore(prompt, password)
}

func (r *inputReader) readMore(prompt string, password bool) (string, error) {
	if r.done || r.src == nil {
		return "", io.EOF
	}
	// An abandoned evaluation must never pull from the source again; a line
	// it took would be stolen from the submission the client typed it for.
	if err := r.ctx.Err(); err != nil {
		r.done = true
		return "", errors.Wrap(errors.PhaseInterrupt, errors.KindInterrupted, err, "input read canceled")
	}

	type reply struct {
		text string
		err  error
	}
	ch := make(chan reply, 1)
	go func() {
		text, err := r.src.ReadInput(prompt, password)
		ch <- reply{text, err}
	}()

	select {
	case <-r.ctx.Done():
		// The pending ReadInput is abandoned; its reply goroutine exits on
		// the buffered channel.
		r.done = true
		return "", errors.Wrap(errors.PhaseInterrupt, errors.KindInterrupted, r.ctx.Err(), "input read canceled")
	case rep := <-ch:
		if rep.err != nil {
			r.done = true
			if stderrors.Is(rep.err, errors.EndOfInput()) {
				return "", io.EOF
			}
			return "", rep.err
		}
		return rep.text, nil
	}
}
