package kernel

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// evalEntryPoint is the function every evaluation goroutine runs through.
// Stack capture finds the evaluation goroutine by it.
const evalEntryPoint = "github.com/mpkocher/almond/kernel.(*interruptController).dispatch"

// trampolineBoundaries are the kernel's own dispatch entry points. Frames at
// or beyond the first boundary frame are internal plumbing and are dropped
// from client-facing traces.
var trampolineBoundaries = []string{
	evalEntryPoint,
	"github.com/mpkocher/almond/kernel.(*Kernel).evaluate",
	"github.com/mpkocher/almond/kernel.(*Kernel).Execute",
}

type interruptState int

const (
	stateIdle interruptState = iota
	stateRunning
	stateInterrupted
)

// interruptController wraps the call into the external evaluator.
//
// States: Idle -> Running -> Idle when the evaluation settles; an interrupt
// moves Running -> Interrupted until then, and the captured record tells the
// classifier how the run ended. On entering
// Running it records a cancellation trigger; Interrupt captures the
// evaluation goroutine's call stack into the interrupt record and cancels
// the evaluation context. The evaluator provides no cooperative
// checkpoints of its own, so after cancellation the controller waits a
// grace period and then abandons the evaluation goroutine, synthesizing a
// Failure outcome to keep interactive latency bounded. The abandoned
// goroutine may leave evaluator-internal state partially mutated; that is an
// accepted trade-off for a single-user interactive session.
type interruptController struct {
	mu     sync.Mutex
	state  interruptState
	cancel context.CancelFunc
	record []string
	grace  time.Duration
}

func newInterruptController(grace time.Duration) *interruptController {
	if grace <= 0 {
		grace = 100 * time.Millisecond
	}
	return &interruptController{grace: grace}
}

// run executes body on a dedicated goroutine and blocks until it completes
// or is interrupted and abandoned. ctx must be cancelable via cancel; the
// pair is the external cancellation trigger Interrupt pulls. The interrupt
// record from any prior run is cleared on entry.
func (c *interruptController) run(ctx context.Context, cancel context.CancelFunc, body func() Outcome) Outcome {
	c.mu.Lock()
	c.state = stateRunning
	c.cancel = cancel
	c.record = nil
	c.mu.Unlock()

	done := make(chan Outcome, 1)
	go c.dispatch(body, done)

	select {
	case out := <-done:
		c.finish()
		return out
	case <-ctx.Done():
		// Interrupted (or the caller's context expired). Give the evaluator
		// a grace period to notice cancellation, then abandon it.
		select {
		case out := <-done:
			c.finish()
			return out
		case <-time.After(c.grace):
			Logger().Debug("evaluation abandoned after grace period",
				zap.Duration("grace", c.grace))
			c.finish()
			return Failure{Message: "interrupted"}
		}
	}
}

// dispatch runs body on the evaluation goroutine. Its name anchors stack
// capture and trace truncation; keep it on the goroutine's call path.
func (c *interruptController) dispatch(body func() Outcome, done chan<- Outcome) {
	defer func() {
		if r := recover(); r != nil {
			done <- Exception{
				Err:   fmt.Errorf("panic: %v", r),
				Stack: currentStack(),
			}
		}
	}()
	done <- body()
}

func (c *interruptController) finish() {
	c.mu.Lock()
	c.state = stateIdle
	c.cancel = nil
	c.mu.Unlock()
}

// interrupt triggers cancellation of the in-flight evaluation. It captures
// the evaluation goroutine's stack before canceling so the interrupted
// result can report where evaluation stopped. A no-op when nothing runs.
func (c *interruptController) interrupt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateRunning || c.cancel == nil {
		return
	}
	c.record = captureEvaluationStack()
	c.state = stateInterrupted
	c.cancel()
	Logger().Debug("evaluation interrupted", zap.Int("frames", len(c.record)))
}

// interruptRecord returns the stack captured by the most recent interrupt,
// or nil. Consulted by the classifier for Failure outcomes only.
func (c *interruptController) interruptRecord() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record
}

// captureEvaluationStack snapshots all goroutine stacks and returns the
// frames of the goroutine currently inside the controller's dispatch,
// truncated at the trampoline boundary.
func captureEvaluationStack() []string {
	buf := make([]byte, 1<<20)
	n := runtime.Stack(buf, true)
	for _, block := range strings.Split(string(buf[:n]), "\n\n") {
		frames := parseFrames(block)
		if containsEvalEntry(frames) {
			return truncateAtTrampoline(frames)
		}
	}
	return nil
}

func containsEvalEntry(frames []string) bool {
	for _, f := range frames {
		if strings.HasPrefix(f, evalEntryPoint) {
			return true
		}
	}
	return false
}

// currentStack returns the calling goroutine's frames, trampoline-truncated.
// Called from a deferred recover; the recovery plumbing above the panic site
// is dropped so the trace starts in user code.
func currentStack() []string {
	buf := make([]byte, 64<<10)
	n := runtime.Stack(buf, false)
	frames := parseFrames(string(buf[:n]))
	for i, f := range frames {
		if strings.HasPrefix(f, "panic ") || strings.HasPrefix(f, "runtime.gopanic") {
			frames = frames[i+1:]
			break
		}
	}
	return truncateAtTrampoline(frames)
}

// parseFrames extracts "func (file:line)" frame strings from one goroutine
// block of runtime.Stack output.
func parseFrames(block string) []string {
	lines := strings.Split(block, "\n")
	var frames []string
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if line == "" || strings.HasPrefix(line, "goroutine ") {
			continue
		}
		if strings.HasPrefix(line, "\t") {
			continue
		}
		fn := line
		if idx := strings.LastIndex(fn, "("); idx > 0 {
			fn = fn[:idx]
		}
		loc := ""
		if i+1 < len(lines) && strings.HasPrefix(lines[i+1], "\t") {
			loc = strings.TrimSpace(lines[i+1])
			if idx := strings.Index(loc, " "); idx > 0 {
				loc = loc[:idx]
			}
		}
		if loc != "" {
			frames = append(frames, fn+" ("+loc+")")
		} else {
			frames = append(frames, fn)
		}
	}
	return frames
}

// truncateAtTrampoline drops frames at and beyond the first frame belonging
// to a known internal dispatch entry point.
func truncateAtTrampoline(frames []string) []string {
	for i, f := range frames {
		if isTrampolineFrame(f) {
			return frames[:i]
		}
	}
	return frames
}

func isTrampolineFrame(frame string) bool {
	for _, b := range trampolineBoundaries {
		if strings.HasPrefix(frame, b) {
			return true
		}
	}
	return false
}
