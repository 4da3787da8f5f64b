package interp

import (
	"fmt"

	"github.com/tinyrange/cstep/internal/ast"
	"github.com/tinyrange/cstep/internal/typed"
	"github.com/tinyrange/cstep/internal/types"
)

// Instr is an agenda element that applies an effect to values already on
// the stash.
type Instr interface {
	fmt.Stringer
	isInstr()
}

// UnaryOp applies +, -, ~, ! or * to the top value. A dereference in
// lvalue position leaves the pointer itself as the result.
type UnaryOp struct {
	Op     ast.UnOp
	Type   *types.Type
	LValue bool
}

// BinaryOp combines the two top values into a value of Type.
type BinaryOp struct {
	Op   ast.BinOp
	Type *types.Type
}

// Assign stores the value below the top into the object the top pointer
// designates, and leaves the stored value.
type Assign struct {
	Type *types.Type
}

// CompoundAssign is "a op= b" with the pointer to a on top of b.
type CompoundAssign struct {
	Op    ast.BinOp
	Right *types.Type
}

type IncDec struct {
	Inc     bool
	Postfix bool
}

// Cast converts the top value explicitly.
type Cast struct {
	To *types.Type
}

// ArithConv applies an implicit arithmetic conversion to the top value.
type ArithConv struct {
	To *types.Type
}

// ArraySubscript pops an index and a pointer and addresses the element.
type ArraySubscript struct {
	Elem   *types.Type
	LValue bool
}

// MemberAccess selects a member from a structure pointer or, when
// FromValue is set, from a structure value.
type MemberAccess struct {
	Member    types.Member
	FromValue bool
	LValue    bool
}

// Logical decides && and || once the left operand is known.
type Logical struct {
	Op    ast.BinOp
	Right typed.Expr
}

// ToBool normalizes the top scalar to int 0 or 1.
type ToBool struct{}

type Call struct {
	Arity int
}

type Return struct {
	HasValue bool
}

// Branch picks Then or Else from the truth of the top value. For a
// conditional expression Type is the type of the result.
type Branch struct {
	Then typed.Node
	Else typed.Node // may be nil
	Type *types.Type
}

// While re-tests a while or do-while guard.
type While struct {
	Loop typed.Stmt
}

// For re-tests a for guard.
type For struct {
	Loop *typed.For
}

// Mark sits below a function body. Reaching it means control fell off the
// end of the function.
type Mark struct {
	Fn *typed.FunctionDef
}

type BreakMark struct{}

type ContinueMark struct{}

// ExitBlock closes the innermost block scope.
type ExitBlock struct{}

type Push struct {
	Item StashItem
}

type Pop struct{}

// Exit takes main's return value as the exit code.
type Exit struct{}

func (*UnaryOp) isInstr()        {}
func (*BinaryOp) isInstr()       {}
func (*Assign) isInstr()         {}
func (*CompoundAssign) isInstr() {}
func (*IncDec) isInstr()         {}
func (*Cast) isInstr()           {}
func (*ArithConv) isInstr()      {}
func (*ArraySubscript) isInstr() {}
func (*MemberAccess) isInstr()   {}
func (*Logical) isInstr()        {}
func (*ToBool) isInstr()         {}
func (*Call) isInstr()           {}
func (*Return) isInstr()         {}
func (*Branch) isInstr()         {}
func (*While) isInstr()          {}
func (*For) isInstr()            {}
func (*Mark) isInstr()           {}
func (*BreakMark) isInstr()      {}
func (*ContinueMark) isInstr()   {}
func (*ExitBlock) isInstr()      {}
func (*Push) isInstr()           {}
func (*Pop) isInstr()            {}
func (*Exit) isInstr()           {}

func (i *UnaryOp) String() string  { return "UnaryOp(" + i.Op.String() + ")" }
func (i *BinaryOp) String() string { return "BinaryOp(" + i.Op.String() + ")" }
func (i *Assign) String() string   { return "Assign(" + i.Type.String() + ")" }
func (i *CompoundAssign) String() string {
	return "CompoundAssign(" + i.Op.String() + "=)"
}
func (i *IncDec) String() string {
	op := "--"
	if i.Inc {
		op = "++"
	}
	if i.Postfix {
		return "IncDec(x" + op + ")"
	}
	return "IncDec(" + op + "x)"
}
func (i *Cast) String() string           { return "Cast(" + i.To.String() + ")" }
func (i *ArithConv) String() string      { return "ArithConv(" + i.To.String() + ")" }
func (i *ArraySubscript) String() string { return "ArraySubscript" }
func (i *MemberAccess) String() string   { return "Member(" + i.Member.Name + ")" }
func (i *Logical) String() string        { return "Logical(" + i.Op.String() + ")" }
func (*ToBool) String() string           { return "ToBool" }
func (i *Call) String() string           { return fmt.Sprintf("Call(%d)", i.Arity) }
func (*Return) String() string           { return "Return" }
func (*Branch) String() string           { return "Branch" }
func (*While) String() string            { return "While" }
func (*For) String() string              { return "For" }
func (i *Mark) String() string           { return "Mark(" + i.Fn.Name + ")" }
func (*BreakMark) String() string        { return "BreakMark" }
func (*ContinueMark) String() string     { return "ContinueMark" }
func (*ExitBlock) String() string        { return "ExitBlock" }
func (*Push) String() string             { return "Push" }
func (*Pop) String() string              { return "Pop" }
func (*Exit) String() string             { return "Exit" }
