package check

import (
	"math/big"

	"github.com/tinyrange/cstep/internal/ast"
	"github.com/tinyrange/cstep/internal/typed"
	"github.com/tinyrange/cstep/internal/types"
)

func info(n ast.Node, t *types.Type, lv bool) typed.Info {
	return typed.Info{Pos: n.Position(), T: t, LV: lv}
}

// rv is the type an expression has when used as a value.
func rv(x typed.Expr) *types.Type { return types.Decay(x.Type()) }

func (c *checker) expr(e ast.Expr) (typed.Expr, error) {
	switch e := e.(type) {
	case *ast.Ident:
		sym, ok := c.env.lookup(e.Name)
		if !ok {
			return nil, errorf(e, "undeclared identifier %s", e.Name)
		}
		if sym.typedef {
			return nil, errorf(e, "unexpected type name %s", e.Name)
		}
		return &typed.Ident{Info: info(e, sym.t, !sym.t.IsFunction()), Name: e.Name}, nil
	case *ast.IntConst:
		t, err := intConstType(e)
		if err != nil {
			return nil, err
		}
		return &typed.IntConst{Info: info(e, t, false), Value: e.Value}, nil
	case *ast.CharConst:
		return &typed.IntConst{Info: info(e, types.IntT(), false), Value: big.NewInt(int64(int8(e.Value)))}, nil
	case *ast.StringLit:
		t := types.ArrayOf(types.CharT(), len(e.Value)+1)
		return &typed.StringLit{Info: info(e, t, true), Value: e.Value}, nil
	case *ast.ParenExpr:
		x, err := c.expr(e.X)
		if err != nil {
			return nil, err
		}
		return &typed.Paren{Info: info(e, x.Type(), x.LValue()), X: x}, nil
	case *ast.CommaExpr:
		out := &typed.Comma{}
		for _, sub := range e.List {
			x, err := c.expr(sub)
			if err != nil {
				return nil, err
			}
			out.List = append(out.List, x)
		}
		out.Info = info(e, rv(out.List[len(out.List)-1]), false)
		return out, nil
	case *ast.AssignExpr:
		return c.assign(e)
	case *ast.CondExpr:
		return c.cond(e)
	case *ast.BinaryExpr:
		return c.binary(e)
	case *ast.CastExpr:
		t, err := c.typeName(e.Type)
		if err != nil {
			return nil, err
		}
		x, err := c.expr(e.X)
		if err != nil {
			return nil, err
		}
		if !t.IsVoid() && (!t.IsScalar() || !rv(x).IsScalar()) {
			return nil, errorf(e, "invalid cast from %s to %s", x.Type(), t)
		}
		return &typed.Cast{Info: info(e, t, false), X: x}, nil
	case *ast.SizeofType:
		t, err := c.typeName(e.Type)
		if err != nil {
			return nil, err
		}
		return c.sizeof(e, t)
	case *ast.SizeofExpr:
		x, err := c.expr(e.X)
		if err != nil {
			return nil, err
		}
		return c.sizeof(e, x.Type())
	case *ast.UnaryExpr:
		return c.unary(e)
	case *ast.IncDecExpr:
		x, err := c.expr(e.X)
		if err != nil {
			return nil, err
		}
		if err := modifiable(e, x); err != nil {
			return nil, err
		}
		t := x.Type()
		if !t.IsArithmetic() && !(t.IsPointer() && t.Elem.IsComplete()) {
			return nil, errorf(e, "cannot increment or decrement value of type %s", t)
		}
		return &typed.IncDec{Info: info(e, t, false), Inc: e.Inc, Postfix: e.Postfix, X: x}, nil
	case *ast.IndexExpr:
		return c.index(e)
	case *ast.CallExpr:
		return c.call(e)
	case *ast.MemberExpr:
		return c.member(e)
	}
	return nil, errorf(e, "unsupported expression")
}

// intConstType picks the first type in the literal's candidate list that
// can hold its value.
func intConstType(e *ast.IntConst) (*types.Type, error) {
	var kinds []types.Kind
	switch {
	case e.Unsigned && e.Longs == 0:
		kinds = []types.Kind{types.UInt, types.ULong, types.ULongLong}
	case e.Unsigned && e.Longs == 1:
		kinds = []types.Kind{types.ULong, types.ULongLong}
	case e.Unsigned:
		kinds = []types.Kind{types.ULongLong}
	case e.Longs == 0 && e.Decimal:
		kinds = []types.Kind{types.Int, types.Long, types.LongLong}
	case e.Longs == 0:
		kinds = []types.Kind{types.Int, types.UInt, types.Long, types.ULong, types.LongLong, types.ULongLong}
	case e.Longs == 1 && e.Decimal:
		kinds = []types.Kind{types.Long, types.LongLong}
	case e.Longs == 1:
		kinds = []types.Kind{types.Long, types.ULong, types.LongLong, types.ULongLong}
	case e.Decimal:
		kinds = []types.Kind{types.LongLong}
	default:
		kinds = []types.Kind{types.LongLong, types.ULongLong}
	}
	for _, k := range kinds {
		if t := types.Basic(k); types.InRange(t, e.Value) {
			return t, nil
		}
	}
	return nil, errorf(e, "integer constant %s is too large", e.Value)
}

// isNullConst reports whether x is a null pointer constant: an integer
// constant zero, possibly parenthesized or cast to void*.
func isNullConst(x typed.Expr) bool {
	switch x := x.(type) {
	case *typed.Paren:
		return isNullConst(x.X)
	case *typed.IntConst:
		return x.Value.Sign() == 0
	case *typed.Cast:
		return x.T.IsPointer() && x.T.Elem.IsVoid() && isNullConst(x.X)
	}
	return false
}

func modifiable(n ast.Node, x typed.Expr) error {
	t := x.Type()
	if !x.LValue() || t.IsArray() || t.IsFunction() || !t.IsComplete() {
		return errorf(n, "expression is not assignable")
	}
	return nil
}

func (c *checker) sizeof(n ast.Node, t *types.Type) (typed.Expr, error) {
	if t.IsFunction() || t.IsVoid() {
		return nil, errorf(n, "invalid application of sizeof to type %s", t)
	}
	if err := t.Layout(); err != nil || !t.IsComplete() {
		return nil, errorf(n, "invalid application of sizeof to incomplete type %s", t)
	}
	return &typed.Sizeof{Info: info(n, types.UIntT(), false), Of: t}, nil
}

func (c *checker) assign(e *ast.AssignExpr) (typed.Expr, error) {
	left, err := c.expr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.expr(e.Right)
	if err != nil {
		return nil, err
	}
	if err := modifiable(e, left); err != nil {
		return nil, err
	}
	lt, rt := left.Type(), rv(right)
	if !e.Op.Compound {
		if !types.AssignCompatible(lt, rt, isNullConst(right)) {
			return nil, errorf(e, "incompatible types when assigning to type %s from type %s", lt, rt)
		}
	} else if !compoundOperands(e.Op.Bin, lt, rt) {
		return nil, errorf(e, "invalid operands to binary %s (have %s and %s)", e.Op.Bin, lt, rt)
	}
	return &typed.Assign{Info: info(e, lt, false), Op: e.Op, Left: left, Right: right}, nil
}

// compoundOperands checks "a op= b": arithmetic operands as for the binary
// operator, or a pointer adjusted by an integer.
func compoundOperands(op ast.BinOp, a, b *types.Type) bool {
	if a.IsPointer() {
		return (op == ast.OpAdd || op == ast.OpSub) && a.Elem.IsComplete() && b.IsInteger()
	}
	if !a.IsArithmetic() || !b.IsArithmetic() {
		return false
	}
	switch op {
	case ast.OpMod, ast.OpAnd, ast.OpOr, ast.OpXor, ast.OpShl, ast.OpShr:
		return a.IsInteger() && b.IsInteger()
	}
	return true
}

func (c *checker) cond(e *ast.CondExpr) (typed.Expr, error) {
	cond, err := c.condition(e.Cond)
	if err != nil {
		return nil, err
	}
	then, err := c.expr(e.Then)
	if err != nil {
		return nil, err
	}
	els, err := c.expr(e.Else)
	if err != nil {
		return nil, err
	}
	a, b := rv(then), rv(els)
	var t *types.Type
	switch {
	case a.IsArithmetic() && b.IsArithmetic():
		t = types.UsualArithmetic(a, b)
	case a.IsStruct() && b.IsStruct() && types.Compatible(a, b):
		t = a
	case a.IsVoid() && b.IsVoid():
		t = a
	case a.IsPointer() && b.IsPointer() && types.Compatible(a, b):
		t = a
	case a.IsPointer() && b.IsPointer() && (a.Elem.IsVoid() || b.Elem.IsVoid()):
		t = types.PointerTo(types.VoidT())
	case a.IsPointer() && isNullConst(els):
		t = a
	case b.IsPointer() && isNullConst(then):
		t = b
	default:
		return nil, errorf(e, "type mismatch in conditional expression (%s and %s)", a, b)
	}
	return &typed.Cond{Info: info(e, t, false), Cond: cond, Then: then, Else: els}, nil
}

func (c *checker) binary(e *ast.BinaryExpr) (typed.Expr, error) {
	left, err := c.expr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.expr(e.Right)
	if err != nil {
		return nil, err
	}
	null := isNullConst(left) || isNullConst(right)
	t, err := binaryType(e, e.Op, rv(left), rv(right), null)
	if err != nil {
		return nil, err
	}
	return &typed.Binary{Info: info(e, t, false), Op: e.Op, Left: left, Right: right}, nil
}

// binaryType applies the operand constraints of a binary operator and
// returns the result type.
func binaryType(n ast.Node, op ast.BinOp, a, b *types.Type, null bool) (*types.Type, error) {
	objPtr := func(t *types.Type) bool { return t.IsPointer() && t.Elem.IsComplete() }
	switch op {
	case ast.OpMul, ast.OpDiv:
		if a.IsArithmetic() && b.IsArithmetic() {
			return types.UsualArithmetic(a, b), nil
		}
	case ast.OpMod, ast.OpAnd, ast.OpOr, ast.OpXor:
		if a.IsInteger() && b.IsInteger() {
			return types.UsualArithmetic(a, b), nil
		}
	case ast.OpAdd:
		switch {
		case a.IsArithmetic() && b.IsArithmetic():
			return types.UsualArithmetic(a, b), nil
		case objPtr(a) && b.IsInteger():
			return a, nil
		case a.IsInteger() && objPtr(b):
			return b, nil
		}
	case ast.OpSub:
		switch {
		case a.IsArithmetic() && b.IsArithmetic():
			return types.UsualArithmetic(a, b), nil
		case objPtr(a) && b.IsInteger():
			return a, nil
		case objPtr(a) && objPtr(b) && types.Compatible(a.Elem, b.Elem):
			return types.IntT(), nil
		}
	case ast.OpShl, ast.OpShr:
		if a.IsInteger() && b.IsInteger() {
			return types.Promote(a), nil
		}
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		switch {
		case a.IsArithmetic() && b.IsArithmetic():
			return types.IntT(), nil
		case a.IsPointer() && b.IsPointer() && types.Compatible(a.Elem, b.Elem):
			return types.IntT(), nil
		}
	case ast.OpEq, ast.OpNe:
		switch {
		case a.IsArithmetic() && b.IsArithmetic():
			return types.IntT(), nil
		case a.IsPointer() && b.IsPointer() && types.AssignCompatible(a, b, false):
			return types.IntT(), nil
		case (a.IsPointer() || b.IsPointer()) && null:
			return types.IntT(), nil
		}
	case ast.OpLAnd, ast.OpLOr:
		if a.IsScalar() && b.IsScalar() {
			return types.IntT(), nil
		}
	}
	return nil, errorf(n, "invalid operands to binary %s (have %s and %s)", op, a, b)
}

func (c *checker) unary(e *ast.UnaryExpr) (typed.Expr, error) {
	x, err := c.expr(e.X)
	if err != nil {
		return nil, err
	}
	var t *types.Type
	lv := false
	switch e.Op {
	case ast.OpAddr:
		switch {
		case x.Type().IsFunction():
			t = types.PointerTo(x.Type())
		case isDeref(x):
			t = rv(x.(*typed.Unary).X)
		case x.LValue():
			t = types.PointerTo(x.Type())
		default:
			return nil, errorf(e, "cannot take the address of an rvalue of type %s", x.Type())
		}
	case ast.OpDeref:
		pt := rv(x)
		if !pt.IsPointer() {
			return nil, errorf(e, "indirection requires pointer operand (%s invalid)", x.Type())
		}
		t = pt.Elem
		lv = !t.IsFunction() && !t.IsVoid()
	case ast.OpPlus, ast.OpNeg:
		if !x.Type().IsArithmetic() {
			return nil, errorf(e, "invalid argument type %s to unary expression", x.Type())
		}
		t = types.Promote(x.Type())
	case ast.OpBitNot:
		if !x.Type().IsInteger() {
			return nil, errorf(e, "invalid argument type %s to unary expression", x.Type())
		}
		t = types.Promote(x.Type())
	case ast.OpNot:
		if !rv(x).IsScalar() {
			return nil, errorf(e, "invalid argument type %s to unary expression", x.Type())
		}
		t = types.IntT()
	}
	return &typed.Unary{Info: info(e, t, lv), Op: e.Op, X: x}, nil
}

func isDeref(x typed.Expr) bool {
	u, ok := x.(*typed.Unary)
	return ok && u.Op == ast.OpDeref
}

func (c *checker) index(e *ast.IndexExpr) (typed.Expr, error) {
	base, err := c.expr(e.Base)
	if err != nil {
		return nil, err
	}
	idx, err := c.expr(e.Index)
	if err != nil {
		return nil, err
	}
	if rv(idx).IsPointer() && rv(base).IsInteger() {
		base, idx = idx, base
	}
	bt := rv(base)
	if !bt.IsPointer() || !bt.Elem.IsComplete() {
		return nil, errorf(e, "subscripted value is not an array or pointer")
	}
	if !rv(idx).IsInteger() {
		return nil, errorf(e, "array subscript is not an integer")
	}
	return &typed.Index{Info: info(e, bt.Elem, true), Base: base, Index: idx}, nil
}

func (c *checker) call(e *ast.CallExpr) (typed.Expr, error) {
	fn, err := c.expr(e.Fn)
	if err != nil {
		return nil, err
	}
	ft := rv(fn)
	if !ft.IsPointer() || !ft.Elem.IsFunction() {
		return nil, errorf(e, "called object type %s is not a function or function pointer", fn.Type())
	}
	sig := ft.Elem
	if len(e.Args) != len(sig.Params) {
		return nil, errorf(e, "function expects %d arguments, got %d", len(sig.Params), len(e.Args))
	}
	out := &typed.Call{Info: info(e, sig.Ret, false), Fn: fn}
	for i, a := range e.Args {
		x, err := c.expr(a)
		if err != nil {
			return nil, err
		}
		pt, at := sig.Params[i].Type, rv(x)
		if pt.K == types.Any {
			if !at.IsScalar() && !at.IsStruct() {
				return nil, errorf(a, "argument %d has type %s", i+1, at)
			}
		} else if !types.AssignCompatible(pt, at, isNullConst(x)) {
			return nil, errorf(a, "incompatible type for argument %d: expected %s but got %s", i+1, pt, at)
		}
		out.Args = append(out.Args, x)
	}
	return out, nil
}

func (c *checker) member(e *ast.MemberExpr) (typed.Expr, error) {
	x, err := c.expr(e.X)
	if err != nil {
		return nil, err
	}
	st := x.Type()
	lv := x.LValue()
	if e.Arrow {
		pt := rv(x)
		if !pt.IsPointer() {
			return nil, errorf(e, "member reference type %s is not a pointer", x.Type())
		}
		st, lv = pt.Elem, true
	}
	if !st.IsStruct() {
		return nil, errorf(e, "member reference base type %s is not a structure", st)
	}
	if !st.Def.Complete {
		return nil, errorf(e, "incomplete definition of type %s", st)
	}
	m, ok := st.Member(e.Name)
	if !ok {
		return nil, errorf(e, "no member named %s in %s", e.Name, st)
	}
	return &typed.Member{Info: info(e, m.Type, lv), X: x, Name: e.Name, Arrow: e.Arrow}, nil
}
