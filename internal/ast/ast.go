// Package ast is the untyped syntax tree produced by the parser. Every node
// carries the position of the token that starts it.
package ast

import "math/big"

type Pos struct {
	Line int
	Col  int
}

func (p Pos) Position() Pos { return p }

type Node interface{ Position() Pos }

type File struct {
	Pos
	Decls []ExternalDecl
}

type ExternalDecl interface {
	Node
	isExternal()
}

// FuncDef is a function definition.
type FuncDef struct {
	Pos
	Specs      *DeclSpecs
	Declarator *Declarator
	Body       *Compound
}

// Declaration is a (possibly empty) list of declarators sharing specifiers.
type Declaration struct {
	Pos
	Specs *DeclSpecs
	List  []*InitDeclarator
}

func (*FuncDef) isExternal()     {}
func (*Declaration) isExternal() {}
func (*Declaration) isStmt()     {}

type InitDeclarator struct {
	Pos
	Declarator *Declarator
	Init       Initializer // may be nil
}

// DeclSpecs holds the declaration specifiers in source order.
type DeclSpecs struct {
	Pos
	Typedef  bool
	Const    bool
	Keywords []string // void, char, short, int, long, signed, unsigned, _Bool
	Struct   *StructSpec
	Name     string // typedef name
}

type StructSpec struct {
	Pos
	Tag    string
	Fields []*Declaration // nil unless HasBody
	// HasBody distinguishes "struct T {}" from "struct T".
	HasBody bool
}

// Declarator lists its parts from the identifier outwards: for
// "int *a[3]" the parts are [Ident a, Array 3, Pointer].
type Declarator struct {
	Pos
	Parts []DeclPart
}

// Name returns the declared identifier, or "" for abstract declarators.
func (d *Declarator) Name() string {
	if d == nil {
		return ""
	}
	for _, p := range d.Parts {
		if id, ok := p.(*IdentPart); ok {
			return id.Name
		}
	}
	return ""
}

type DeclPart interface {
	Node
	isDeclPart()
}

type IdentPart struct {
	Pos
	Name string
}

type PointerPart struct {
	Pos
	Const bool
}

type ArrayPart struct {
	Pos
	Len Expr // nil when omitted
}

type FuncPart struct {
	Pos
	Params []*ParamDecl
}

func (*IdentPart) isDeclPart()   {}
func (*PointerPart) isDeclPart() {}
func (*ArrayPart) isDeclPart()   {}
func (*FuncPart) isDeclPart()    {}

type ParamDecl struct {
	Pos
	Specs      *DeclSpecs
	Declarator *Declarator // may be abstract
}

type TypeName struct {
	Pos
	Specs      *DeclSpecs
	Declarator *Declarator // abstract, may be nil
}

type Initializer interface {
	Node
	isInitializer()
}

type InitList struct {
	Pos
	Items []*InitItem
}

type InitItem struct {
	Pos
	Designators []Designator
	Init        Initializer
}

type Designator interface {
	Node
	isDesignator()
}

type IndexDesignator struct {
	Pos
	Index Expr
}

type MemberDesignator struct {
	Pos
	Name string
}

func (*InitList) isInitializer()         {}
func (*IndexDesignator) isDesignator()  {}
func (*MemberDesignator) isDesignator() {}

type Stmt interface {
	Node
	isStmt()
}

type Compound struct {
	Pos
	Items []Stmt // statements and *Declaration
}

type ExprStmt struct {
	Pos
	X Expr // nil for the empty statement
}

type ReturnStmt struct {
	Pos
	X Expr // may be nil
}

type BreakStmt struct{ Pos }

type ContinueStmt struct{ Pos }

type IfStmt struct {
	Pos
	Cond Expr
	Then Stmt
	Else Stmt // may be nil
}

type WhileStmt struct {
	Pos
	Cond Expr
	Body Stmt
}

type DoWhileStmt struct {
	Pos
	Body Stmt
	Cond Expr
}

type ForStmt struct {
	Pos
	Init Stmt // *Declaration, *ExprStmt or nil
	Cond Expr // may be nil (treated as true)
	Post Expr // may be nil
	Body Stmt
}

func (*Compound) isStmt()     {}
func (*ExprStmt) isStmt()     {}
func (*ReturnStmt) isStmt()   {}
func (*BreakStmt) isStmt()    {}
func (*ContinueStmt) isStmt() {}
func (*IfStmt) isStmt()       {}
func (*WhileStmt) isStmt()    {}
func (*DoWhileStmt) isStmt()  {}
func (*ForStmt) isStmt()      {}

// Expr is any expression. Every expression is also a scalar initializer.
type Expr interface {
	Initializer
	isExpr()
}

type Ident struct {
	Pos
	Name string
}

// IntConst keeps the literal's value together with what its spelling says
// about its type.
type IntConst struct {
	Pos
	Value    *big.Int
	Decimal  bool
	Unsigned bool
	Longs    int // number of l/L suffixes
}

type CharConst struct {
	Pos
	Value byte
}

type StringLit struct {
	Pos
	Value string
}

type ParenExpr struct {
	Pos
	X Expr
}

type CommaExpr struct {
	Pos
	List []Expr
}

type AssignExpr struct {
	Pos
	Op    AssignOp
	Left  Expr
	Right Expr
}

type CondExpr struct {
	Pos
	Cond Expr
	Then Expr
	Else Expr
}

type BinaryExpr struct {
	Pos
	Op    BinOp
	Left  Expr
	Right Expr
}

type CastExpr struct {
	Pos
	Type *TypeName
	X    Expr
}

type SizeofExpr struct {
	Pos
	X Expr
}

type SizeofType struct {
	Pos
	Type *TypeName
}

type UnaryExpr struct {
	Pos
	Op UnOp
	X  Expr
}

type IncDecExpr struct {
	Pos
	Inc     bool
	Postfix bool
	X       Expr
}

type IndexExpr struct {
	Pos
	Base  Expr
	Index Expr
}

type CallExpr struct {
	Pos
	Fn   Expr
	Args []Expr
}

type MemberExpr struct {
	Pos
	X     Expr
	Name  string
	Arrow bool
}

func (*Ident) isExpr()      {}
func (*IntConst) isExpr()   {}
func (*CharConst) isExpr()  {}
func (*StringLit) isExpr()  {}
func (*ParenExpr) isExpr()  {}
func (*CommaExpr) isExpr()  {}
func (*AssignExpr) isExpr() {}
func (*CondExpr) isExpr()   {}
func (*BinaryExpr) isExpr() {}
func (*CastExpr) isExpr()   {}
func (*SizeofExpr) isExpr() {}
func (*SizeofType) isExpr() {}
func (*UnaryExpr) isExpr()  {}
func (*IncDecExpr) isExpr() {}
func (*IndexExpr) isExpr()  {}
func (*CallExpr) isExpr()   {}
func (*MemberExpr) isExpr() {}

func (*Ident) isInitializer()      {}
func (*IntConst) isInitializer()   {}
func (*CharConst) isInitializer()  {}
func (*StringLit) isInitializer()  {}
func (*ParenExpr) isInitializer()  {}
func (*CommaExpr) isInitializer()  {}
func (*AssignExpr) isInitializer() {}
func (*CondExpr) isInitializer()   {}
func (*BinaryExpr) isInitializer() {}
func (*CastExpr) isInitializer()   {}
func (*SizeofExpr) isInitializer() {}
func (*SizeofType) isInitializer() {}
func (*UnaryExpr) isInitializer()  {}
func (*IncDecExpr) isInitializer() {}
func (*IndexExpr) isInitializer()  {}
func (*CallExpr) isInitializer()   {}
func (*MemberExpr) isInitializer() {}

type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpLAnd
	OpLOr
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
)

var binOpNames = [...]string{"+", "-", "*", "/", "%", "==", "!=", "<", "<=", ">", ">=", "&&", "||", "&", "|", "^", "<<", ">>"}

func (op BinOp) String() string { return binOpNames[op] }

// IsComparison reports whether op yields an int truth value.
func (op BinOp) IsComparison() bool { return op >= OpEq && op <= OpGe }

type UnOp int

const (
	OpAddr UnOp = iota
	OpDeref
	OpPlus
	OpNeg
	OpBitNot
	OpNot
)

var unOpNames = [...]string{"&", "*", "+", "-", "~", "!"}

func (op UnOp) String() string { return unOpNames[op] }

// AssignOp is "=" or a compound assignment; Bin is meaningful for the latter.
type AssignOp struct {
	Compound bool
	Bin      BinOp
}

func (op AssignOp) String() string {
	if !op.Compound {
		return "="
	}
	return op.Bin.String() + "="
}
