package check

import (
	"math/big"

	"modernc.org/mathutil"

	"github.com/tinyrange/cstep/internal/ast"
	"github.com/tinyrange/cstep/internal/repr"
	"github.com/tinyrange/cstep/internal/typed"
	"github.com/tinyrange/cstep/internal/types"
)

// constInt checks e and folds it to a non-negative int, as needed for
// array lengths and designators.
func (c *checker) constInt(e ast.Expr) (int, error) {
	te, err := c.expr(e)
	if err != nil {
		return 0, err
	}
	if !te.Type().IsInteger() {
		return 0, errorf(e, "integer constant expression has type %s", te.Type())
	}
	v, err := fold(te)
	if err != nil {
		return 0, err
	}
	if v.Sign() < 0 {
		return -1, nil
	}
	if !v.IsInt64() || v.Int64() > mathutil.MaxInt {
		return 0, errorf(e, "constant %s is too large", v)
	}
	return int(v.Int64()), nil
}

// fold evaluates an integer constant expression. The result is expressed
// in the expression's own type.
func fold(e typed.Expr) (*big.Int, error) {
	switch e := e.(type) {
	case *typed.IntConst:
		return e.Value, nil
	case *typed.Paren:
		return fold(e.X)
	case *typed.Sizeof:
		if err := e.Of.Layout(); err != nil {
			return nil, errorf(e, "%v", err)
		}
		return big.NewInt(int64(e.Of.Size())), nil
	case *typed.Cast:
		if !e.T.IsInteger() {
			break
		}
		v, err := fold(e.X)
		if err != nil {
			return nil, err
		}
		return convert(e, v, e.T)
	case *typed.Unary:
		v, err := fold(e.X)
		if err != nil {
			return nil, err
		}
		r := new(big.Int)
		switch e.Op {
		case ast.OpPlus:
			r.Set(v)
		case ast.OpNeg:
			r.Neg(v)
		case ast.OpBitNot:
			r.Not(v)
		case ast.OpNot:
			r.SetInt64(truth(v.Sign() == 0))
		default:
			return nil, notConst(e)
		}
		return convert(e, r, e.T)
	case *typed.Binary:
		return foldBinary(e)
	case *typed.Cond:
		c, err := fold(e.Cond)
		if err != nil {
			return nil, err
		}
		pick := e.Then
		if c.Sign() == 0 {
			pick = e.Else
		}
		v, err := fold(pick)
		if err != nil {
			return nil, err
		}
		return convert(e, v, e.T)
	}
	return nil, notConst(e)
}

func foldBinary(e *typed.Binary) (*big.Int, error) {
	a, err := fold(e.Left)
	if err != nil {
		return nil, err
	}
	// the right operand of && and || is only needed when it decides
	switch {
	case e.Op == ast.OpLAnd && a.Sign() == 0:
		return new(big.Int), nil
	case e.Op == ast.OpLOr && a.Sign() != 0:
		return big.NewInt(1), nil
	}
	b, err := fold(e.Right)
	if err != nil {
		return nil, err
	}
	// operands are compared and computed in their common type
	common := e.T
	if e.Op.IsComparison() {
		common = types.UsualArithmetic(e.Left.Type(), e.Right.Type())
	}
	if e.Op != ast.OpShl && e.Op != ast.OpShr && e.Op != ast.OpLAnd && e.Op != ast.OpLOr {
		if a, err = convert(e, a, common); err != nil {
			return nil, err
		}
		if b, err = convert(e, b, common); err != nil {
			return nil, err
		}
	}
	k := new(big.Int)
	switch e.Op {
	case ast.OpAdd:
		k.Add(a, b)
	case ast.OpSub:
		k.Sub(a, b)
	case ast.OpMul:
		k.Mul(a, b)
	case ast.OpDiv, ast.OpMod:
		if b.Sign() == 0 {
			return nil, errorf(e, "division by zero in constant expression")
		}
		if e.Op == ast.OpDiv {
			k.Quo(a, b)
		} else {
			k.Rem(a, b)
		}
	case ast.OpAnd:
		k.And(a, b)
	case ast.OpOr:
		k.Or(a, b)
	case ast.OpXor:
		k.Xor(a, b)
	case ast.OpShl, ast.OpShr:
		if b.Sign() < 0 || b.Cmp(big.NewInt(int64(e.T.Bits()))) >= 0 {
			return nil, errorf(e, "shift count %s out of range for type %s", b, e.T)
		}
		if e.Op == ast.OpShl {
			k.Lsh(a, uint(b.Uint64()))
		} else {
			k.Rsh(a, uint(b.Uint64()))
		}
	case ast.OpEq:
		k.SetInt64(truth(a.Cmp(b) == 0))
	case ast.OpNe:
		k.SetInt64(truth(a.Cmp(b) != 0))
	case ast.OpLt:
		k.SetInt64(truth(a.Cmp(b) < 0))
	case ast.OpLe:
		k.SetInt64(truth(a.Cmp(b) <= 0))
	case ast.OpGt:
		k.SetInt64(truth(a.Cmp(b) > 0))
	case ast.OpGe:
		k.SetInt64(truth(a.Cmp(b) >= 0))
	case ast.OpLAnd, ast.OpLOr:
		k.SetInt64(truth(b.Sign() != 0))
	}
	return convert(e, k, e.T)
}

func convert(n ast.Node, v *big.Int, t *types.Type) (*big.Int, error) {
	r, err := repr.Convert(v, t)
	if err != nil {
		return nil, errorf(n, "%v in constant expression", err)
	}
	return r, nil
}

func notConst(e typed.Expr) error {
	return errorf(e, "expression is not an integer constant expression")
}

func truth(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
