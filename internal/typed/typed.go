// Package typed is the checked syntax tree. It mirrors the untyped tree,
// except that every expression carries its type and lvalue-ness, names are
// resolved, and declarators are reduced to (identifier, type) pairs.
// Nodes are immutable once built.
package typed

import (
	"math/big"

	"github.com/tinyrange/cstep/internal/ast"
	"github.com/tinyrange/cstep/internal/types"
)

type Node interface{ Position() ast.Pos }

type External interface {
	Node
	isExternal()
}

type TranslationUnit struct {
	ast.Pos
	Decls []External
	Main  *FunctionDef
}

type FunctionDef struct {
	ast.Pos
	Name string
	Type *types.Type
	Body *Compound
}

// Declaration groups object declarators; typedefs and bare struct
// declarations do not survive checking.
type Declaration struct {
	ast.Pos
	List []*InitDeclarator
}

func (*FunctionDef) isExternal() {}
func (*Declaration) isExternal() {}
func (*Declaration) isStmt()     {}

type InitDeclarator struct {
	ast.Pos
	Name string
	// QualName is unique within its function: "block0::block1::x".
	QualName  string
	Type      *types.Type
	Init      Initializer // may be nil
	FileScope bool
}

type Initializer interface {
	Node
	isInitializer()
}

// InitList is a flattened brace initializer. Each item targets the
// sub-object reached by Path: array indices and member indices.
type InitList struct {
	ast.Pos
	Type  *types.Type
	Items []*InitItem
}

type InitItem struct {
	Path []int
	Type *types.Type
	Init Expr
}

func (*InitList) isInitializer() {}

// Offset resolves a path within t to a byte offset.
func Offset(t *types.Type, path []int) int {
	off := 0
	for _, i := range path {
		switch t.K {
		case types.Array:
			t = t.Elem
			off += i * t.Size()
		case types.Struct:
			m := t.Def.Members[i]
			off += m.Offset
			t = m.Type
		}
	}
	return off
}

type Stmt interface {
	Node
	isStmt()
}

type Compound struct {
	ast.Pos
	Items []Stmt
}

type ExprStmt struct {
	ast.Pos
	X Expr // nil for the empty statement
}

type Return struct {
	ast.Pos
	X Expr // may be nil
}

type Break struct{ ast.Pos }

type Continue struct{ ast.Pos }

type If struct {
	ast.Pos
	Cond Expr
	Then Stmt
	Else Stmt // may be nil
}

type While struct {
	ast.Pos
	Cond Expr
	Body Stmt
}

type DoWhile struct {
	ast.Pos
	Body Stmt
	Cond Expr
}

type For struct {
	ast.Pos
	Init Stmt // *Declaration, *ExprStmt or nil
	Cond Expr // may be nil
	Post Expr // may be nil
	Body Stmt
}

func (*Compound) isStmt() {}
func (*ExprStmt) isStmt() {}
func (*Return) isStmt()   {}
func (*Break) isStmt()    {}
func (*Continue) isStmt() {}
func (*If) isStmt()       {}
func (*While) isStmt()    {}
func (*DoWhile) isStmt()  {}
func (*For) isStmt()      {}

type Expr interface {
	Node
	Initializer
	Type() *types.Type
	LValue() bool
	isExpr()
}

// Info is embedded by every expression node.
type Info struct {
	ast.Pos
	T  *types.Type
	LV bool
}

func (i *Info) Type() *types.Type { return i.T }
func (i *Info) LValue() bool      { return i.LV }
func (*Info) isExpr()             {}
func (*Info) isInitializer()      {}

type Ident struct {
	Info
	Name string
}

type IntConst struct {
	Info
	Value *big.Int
}

type StringLit struct {
	Info
	Value string
}

type Paren struct {
	Info
	X Expr
}

type Comma struct {
	Info
	List []Expr
}

type Assign struct {
	Info
	Op    ast.AssignOp
	Left  Expr
	Right Expr
}

type Cond struct {
	Info
	Cond Expr
	Then Expr
	Else Expr
}

type Binary struct {
	Info
	Op    ast.BinOp
	Left  Expr
	Right Expr
}

// Cast converts X to T.
type Cast struct {
	Info
	X Expr
}

type Sizeof struct {
	Info
	Of *types.Type
}

type Unary struct {
	Info
	Op ast.UnOp
	X  Expr
}

type IncDec struct {
	Info
	Inc     bool
	Postfix bool
	X       Expr
}

// Index is Base[Index] with Base always the pointer operand.
type Index struct {
	Info
	Base  Expr
	Index Expr
}

type Call struct {
	Info
	Fn   Expr
	Args []Expr
}

type Member struct {
	Info
	X     Expr
	Name  string
	Arrow bool
}
