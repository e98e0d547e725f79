package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseEvaluate,
				Kind:   KindEvalFailed,
				Path:   []string{"cmd3"},
				Detail: "type mismatch",
			},
			contains: []string{"[evaluate]", "eval_failed", "cmd3", "type mismatch"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseParse,
				Kind:  KindParseError,
			},
			contains: []string{"[parse]", "parse_error"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseDisplay,
				Kind:   KindUpdateUnavailable,
				Detail: "channel closed",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[display]", "update_unavailable", "channel closed", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEvaluate,
		Kind:  KindEvalPanic,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseParse,
		Kind:  KindIncompleteInput,
		Path:  []string{"foo"},
	}

	// Same phase and kind
	if !err.Is(&Error{Phase: PhaseParse, Kind: KindIncompleteInput}) {
		t.Error("Is should match same phase and kind")
	}

	// Different phase
	if err.Is(&Error{Phase: PhaseEvaluate, Kind: KindIncompleteInput}) {
		t.Error("Is should not match different phase")
	}

	// Different kind
	if err.Is(&Error{Phase: PhaseParse, Kind: KindParseError}) {
		t.Error("Is should not match different kind")
	}

	// Test with errors.Is
	target := &Error{Phase: PhaseParse, Kind: KindIncompleteInput}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseEvaluate, KindEvalFailed).
		Path("cmd7").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "int", "string").
		Build()

	if err.Phase != PhaseEvaluate {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseEvaluate)
	}
	if err.Kind != KindEvalFailed {
		t.Errorf("Kind = %v, want %v", err.Kind, KindEvalFailed)
	}
	if len(err.Path) != 1 || err.Path[0] != "cmd7" {
		t.Errorf("Path = %v, want [cmd7]", err.Path)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected int, got string" {
		t.Errorf("Detail = %v, want 'expected int, got string'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("ParseError", func(t *testing.T) {
		err := ParseError("unexpected token")
		if err.Kind != KindParseError || err.Phase != PhaseParse {
			t.Errorf("Phase=%v Kind=%v", err.Phase, err.Kind)
		}
	})

	t.Run("Incomplete", func(t *testing.T) {
		err := Incomplete("unexpected end of input")
		if err.Kind != KindIncompleteInput {
			t.Errorf("Kind = %v, want %v", err.Kind, KindIncompleteInput)
		}
	})

	t.Run("EvalFailed", func(t *testing.T) {
		err := EvalFailed("not found: value y")
		if err.Kind != KindEvalFailed {
			t.Errorf("Kind = %v, want %v", err.Kind, KindEvalFailed)
		}
	})

	t.Run("Interrupted", func(t *testing.T) {
		err := Interrupted("blocked on input")
		if err.Kind != KindInterrupted || err.Phase != PhaseInterrupt {
			t.Errorf("Phase=%v Kind=%v", err.Phase, err.Kind)
		}
	})

	t.Run("UpdateUnavailable", func(t *testing.T) {
		err := UpdateUnavailable("disp-1")
		if err.Kind != KindUpdateUnavailable {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUpdateUnavailable)
		}
		if len(err.Path) != 1 || err.Path[0] != "disp-1" {
			t.Errorf("Path = %v, want [disp-1]", err.Path)
		}
	})

	t.Run("SessionExit", func(t *testing.T) {
		err := SessionExit(2)
		if err.Kind != KindSessionExit {
			t.Errorf("Kind = %v, want %v", err.Kind, KindSessionExit)
		}
		if err.Value != 2 {
			t.Errorf("Value = %v, want 2", err.Value)
		}
		if !strings.Contains(err.Detail, "code 2") {
			t.Errorf("Detail = %v, should contain exit code", err.Detail)
		}
	})

	t.Run("EndOfInput", func(t *testing.T) {
		err := EndOfInput()
		if err.Kind != KindEndOfInput {
			t.Errorf("Kind = %v, want %v", err.Kind, KindEndOfInput)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseDisplay, "display id")
		if err.Kind != KindNotFound {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
		}
	})

	t.Run("InvalidInput", func(t *testing.T) {
		err := InvalidInput(PhaseClient, "empty code")
		if err.Kind != KindInvalidInput {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidInput)
		}
	})

	t.Run("NotInitialized", func(t *testing.T) {
		err := NotInitialized(PhaseSession, "session")
		if err.Kind != KindNotInitialized {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNotInitialized)
		}
		if !strings.Contains(err.Detail, "session") {
			t.Errorf("Detail = %v, should name the component", err.Detail)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseSession, "frame removal")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		cause := errors.New("io failure")
		err := Wrap(PhaseDisplay, KindUpdateUnavailable, cause, "send update")
		if !errors.Is(err, cause) {
			t.Error("wrapped error should match cause via errors.Is")
		}
	})
}
