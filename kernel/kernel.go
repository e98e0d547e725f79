package kernel

import (
	stderrors "errors"
	"sync"
	"time"

	"github.com/mpkocher/almond/errors"
)

// Kernel coordinates one submission at a time against persistent session
// state. The client protocol layer is expected to serialize submissions; the
// kernel still guards itself with a mutex as defense.
type Kernel struct {
	execMu sync.Mutex

	eval       Evaluator
	session    *Session
	displays   *Displays
	interrupts *interruptController
	io         *ioContext
	auto       *autoImporter
}

// Option configures a Kernel.
type Option func(*config)

type config struct {
	comm   CommHandle
	marker string
	rules  []AutoImportRule
	grace  time.Duration
}

// WithComm installs the durable update channel async display updates travel
// through. Without one, updates fail with KindUpdateUnavailable.
func WithComm(comm CommHandle) Option {
	return func(c *config) { c.comm = comm }
}

// WithAutoImports configures the dependency auto-injection preprocessor.
// An empty marker keeps the default.
func WithAutoImports(marker string, rules []AutoImportRule) Option {
	return func(c *config) {
		if marker != "" {
			c.marker = marker
		}
		c.rules = rules
	}
}

// WithInterruptGrace sets how long an interrupted evaluation may keep
// running before its goroutine is abandoned.
func WithInterruptGrace(d time.Duration) Option {
	return func(c *config) { c.grace = d }
}

// New creates a kernel bound to an external evaluator.
func New(eval Evaluator, opts ...Option) (*Kernel, error) {
	cfg := config{marker: DefaultDependencyMarker}
	for _, opt := range opts {
		opt(&cfg)
	}

	session, err := NewSession(eval)
	if err != nil {
		return nil, err
	}

	return &Kernel{
		eval:       eval,
		session:    session,
		displays:   newDisplays(cfg.comm),
		interrupts: newInterruptController(cfg.grace),
		io:         &ioContext{},
		auto:       &autoImporter{marker: cfg.marker, rules: cfg.rules},
	}, nil
}

// Session returns the session state manager.
func (k *Kernel) Session() *Session { return k.session }

// Displays returns the session-lifetime placeholder registry.
func (k *Kernel) Displays() *Displays { return k.displays }

// CurrentLine returns the line number the next evaluation will use.
func (k *Kernel) CurrentLine() int { return k.session.NextLine() }

// Interrupt forces termination of the in-flight evaluation, if any.
func (k *Kernel) Interrupt() { k.interrupts.interrupt() }

// Completeness reports whether a submission can be executed as-is.
type Completeness int

const (
	// CodeComplete parses cleanly and can run.
	CodeComplete Completeness = iota
	// CodeIncomplete ends mid-construct; the client should keep reading.
	CodeIncomplete
	// CodeInvalid cannot parse no matter what follows.
	CodeInvalid
)

// IsComplete classifies code without running anything.
func (k *Kernel) IsComplete(code string) Completeness {
	_, err := k.eval.Split(code)
	switch {
	case err == nil:
		return CodeComplete
	case stderrors.Is(err, errors.Incomplete("")):
		return CodeIncomplete
	default:
		return CodeInvalid
	}
}

// Completion holds autocomplete candidates and the position they replace
// from.
type Completion struct {
	From       int
	Candidates []string
}

// CompleteAt returns completions at a cursor position against the current
// frame.
func (k *Kernel) CompleteAt(code string, pos int) Completion {
	from, candidates := k.eval.Complete(k.session.CurrentFrame(), code, pos)
	return Completion{From: from, Candidates: candidates}
}
