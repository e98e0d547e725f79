package kernel

import (
	"sync"

	"github.com/mpkocher/almond/errors"
)

// Session owns the state that persists between submissions: the ordered
// stack of program-state frames, the monotonic line counter shared with the
// evaluator, and the accumulated submission history.
//
// The head frame is always the target of the next evaluation and the frame
// list is never empty. Frames are never removed through the session;
// removal, if supported, is an evaluator responsibility keyed by frame
// identity.
type Session struct {
	mu      sync.Mutex
	eval    Evaluator
	frames  []Frame
	line    int
	history []string
}

// NewSession creates a session with the evaluator's initial frame as head.
func NewSession(eval Evaluator) (*Session, error) {
	if eval == nil {
		return nil, errors.NotInitialized(errors.PhaseSession, "evaluator")
	}
	initial, err := eval.InitialFrame()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseSession, errors.KindNotInitialized, err, "create initial frame")
	}
	return &Session{
		eval:   eval,
		frames: []Frame{initial},
	}, nil
}

// CurrentFrame returns the head frame.
func (s *Session) CurrentFrame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames[len(s.frames)-1]
}

// PushChildFrame creates a child of the head frame, pushes it, and returns
// it. The child sees everything the parent accumulated.
func (s *Session) PushChildFrame() (Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	child, err := s.eval.NewChildFrame(s.frames[len(s.frames)-1])
	if err != nil {
		return nil, errors.Wrap(errors.PhaseSession, errors.KindInvalidInput, err, "create child frame")
	}
	s.frames = append(s.frames, child)
	return child, nil
}

// Frames returns the frame stack, oldest first.
func (s *Session) Frames() []Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Frame, len(s.frames))
	copy(out, s.frames)
	return out
}

// History returns past submissions in execution order.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// NextLine returns the line number the next evaluation will use.
func (s *Session) NextLine() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.line
}

// advanceLine increments the counter. Called by the evaluator (through Run)
// exactly once per executed line group; the counter never decreases.
func (s *Session) advanceLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.line++
}

func (s *Session) recordHistory(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, code)
}
