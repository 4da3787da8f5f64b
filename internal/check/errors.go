package check

import (
	"fmt"

	"github.com/tinyrange/cstep/internal/ast"
)

// Error is a static type error found while checking a translation unit.
type Error struct {
	Pos ast.Pos
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("type error at %d:%d: %s", e.Pos.Line, e.Pos.Col, e.Msg)
}

func errorf(n ast.Node, format string, args ...interface{}) error {
	var pos ast.Pos
	if n != nil {
		pos = n.Position()
	}
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
