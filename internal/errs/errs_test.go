package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("bad input"), KindValidation},
		{"not found", NotFound("missing %s", "thing"), KindNotFound},
		{"conflict", Conflict("taken"), KindConflict},
		{"expired", Expired("too late"), KindExpired},
		{"not authorized", NotAuthorized("nope"), KindNotAuthorized},
		{"dependency", Dependency(errors.New("boom"), "store"), KindDependency},
		{"untyped", errors.New("plain"), 0},
		{"nil", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("inner"))
	if !IsNotFound(err) {
		t.Errorf("expected wrapped error to keep its kind")
	}
}

func TestDependencyUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Dependency(cause, "loading wedding")
	if !errors.Is(err, cause) {
		t.Errorf("expected Dependency to unwrap to its cause")
	}
}
