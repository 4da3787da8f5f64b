package interp

import (
	"errors"
	"fmt"

	"github.com/tinyrange/cstep/internal/ast"
)

var (
	// ErrAgendaEmpty is returned by Step once there is nothing left to do.
	ErrAgendaEmpty = errors.New("agenda is empty")
	// ErrStepLimit is returned by Run when the step bound is reached first.
	ErrStepLimit = errors.New("step limit reached")
)

// UndefinedBehaviour is a program action C leaves undefined, detected and
// reported instead of silently tolerated. Err is often a *memory.Fault.
type UndefinedBehaviour struct {
	Pos ast.Pos
	Err error
}

func (e *UndefinedBehaviour) Error() string {
	return fmt.Sprintf("undefined behaviour at %d:%d: %v", e.Pos.Line, e.Pos.Col, e.Err)
}

func (e *UndefinedBehaviour) Unwrap() error { return e.Err }

// Defect is a broken evaluator invariant. Programs that passed the type
// checker never cause one.
type Defect struct {
	Msg string
}

func (e *Defect) Error() string { return "evaluator defect: " + e.Msg }

func defectf(format string, args ...interface{}) error {
	return &Defect{Msg: fmt.Sprintf(format, args...)}
}

// ubError is an undefined behaviour not yet tied to a source position.
type ubError struct{ msg string }

func (e *ubError) Error() string { return e.msg }

func ubf(format string, args ...interface{}) error {
	return &ubError{msg: fmt.Sprintf(format, args...)}
}
