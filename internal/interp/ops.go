package interp

import (
	"errors"
	"math/big"

	"github.com/tinyrange/cstep/internal/ast"
	"github.com/tinyrange/cstep/internal/repr"
	"github.com/tinyrange/cstep/internal/types"
)

// convert re-expresses o as a value of type t. Signed targets must hold
// the value exactly; unsigned and pointer targets wrap.
func (r *Runtime) convert(o *TempObject, t *types.Type) (*TempObject, error) {
	switch {
	case t.IsVoid():
		return voidTemp(), nil
	case t.IsStruct():
		if !o.Type.IsStruct() {
			return nil, defectf("cannot convert %s to %s", o.Type, t)
		}
		return &TempObject{Type: t, Bytes: o.Bytes}, nil
	case !o.Type.IsScalar():
		return nil, defectf("cannot convert %s to %s", o.Type, t)
	}
	b, err := repr.Encode(scalar(o, r.order), t, r.order)
	if err != nil {
		return nil, err
	}
	return &TempObject{Type: t, Bytes: b}, nil
}

func (r *Runtime) encode(v *big.Int, t *types.Type) (*TempObject, error) {
	b, err := repr.Encode(v, t, r.order)
	if err != nil {
		return nil, err
	}
	return &TempObject{Type: t, Bytes: b}, nil
}

func (r *Runtime) boolTemp(b bool) *TempObject {
	if b {
		return r.temp(1, types.IntT())
	}
	return r.temp(0, types.IntT())
}

// arith applies an arithmetic or bitwise operator to operands already
// converted to t. Results that do not fit a signed t are overflow.
func arith(op ast.BinOp, a, b *big.Int, t *types.Type) (*big.Int, error) {
	v := new(big.Int)
	switch op {
	case ast.OpAdd:
		v.Add(a, b)
	case ast.OpSub:
		v.Sub(a, b)
	case ast.OpMul:
		v.Mul(a, b)
	case ast.OpDiv, ast.OpMod:
		if b.Sign() == 0 {
			return nil, ubf("division by zero")
		}
		if op == ast.OpDiv {
			v.Quo(a, b)
		} else {
			v.Rem(a, b)
		}
	case ast.OpAnd:
		v.And(a, b)
	case ast.OpOr:
		v.Or(a, b)
	case ast.OpXor:
		v.Xor(a, b)
	case ast.OpShl, ast.OpShr:
		if b.Sign() < 0 || b.Cmp(big.NewInt(int64(t.Bits()))) >= 0 {
			return nil, ubf("shift count %s is out of range for type %s", b, t)
		}
		n := uint(b.Uint64())
		if op == ast.OpShr {
			v.Rsh(a, n)
			break
		}
		if a.Sign() < 0 {
			return nil, ubf("left shift of negative value %s", a)
		}
		v.Lsh(a, n)
	default:
		return nil, defectf("operator %s is not arithmetic", op)
	}
	res, err := repr.Convert(v, t)
	if err != nil {
		var re *repr.RangeError
		if errors.As(err, &re) {
			return nil, ubf("signed integer overflow: %s %s %s does not fit in %s", a, op, b, t)
		}
		return nil, err
	}
	return res, nil
}

func compare(op ast.BinOp, a, b *big.Int) bool {
	c := a.Cmp(b)
	switch op {
	case ast.OpEq:
		return c == 0
	case ast.OpNe:
		return c != 0
	case ast.OpLt:
		return c < 0
	case ast.OpLe:
		return c <= 0
	case ast.OpGt:
		return c > 0
	}
	return c >= 0
}

// offset moves pointer p by n elements.
func (r *Runtime) offset(p *TempObject, n *big.Int) (*TempObject, error) {
	size := p.Type.Elem.Size()
	if size < 1 {
		size = 1
	}
	v := new(big.Int).Mul(n, big.NewInt(int64(size)))
	v.Add(v, scalar(p, r.order))
	return r.encode(v, p.Type)
}

func (r *Runtime) binary(op ast.BinOp, lhs, rhs *TempObject, t *types.Type) (*TempObject, error) {
	a, b := scalar(lhs, r.order), scalar(rhs, r.order)
	lt, rt := lhs.Type, rhs.Type
	switch {
	case op.IsComparison():
		return r.boolTemp(compare(op, a, b)), nil
	case lt.IsPointer() && rt.IsPointer():
		size := int64(lt.Elem.Size())
		if size < 1 {
			size = 1
		}
		d := new(big.Int).Sub(a, b)
		return r.encode(d.Quo(d, big.NewInt(size)), t)
	case lt.IsPointer():
		if op == ast.OpSub {
			b.Neg(b)
		}
		return r.offset(lhs, b)
	case rt.IsPointer():
		return r.offset(rhs, a)
	}
	v, err := arith(op, a, b, t)
	if err != nil {
		return nil, err
	}
	return r.encode(v, t)
}

func (r *Runtime) unary(op ast.UnOp, o *TempObject, t *types.Type) (*TempObject, error) {
	v := scalar(o, r.order)
	switch op {
	case ast.OpPlus:
		return r.encode(v, t)
	case ast.OpNeg:
		res, err := arith(ast.OpSub, new(big.Int), v, t)
		if err != nil {
			return nil, err
		}
		return r.encode(res, t)
	case ast.OpBitNot:
		return r.encode(v.Not(v), t)
	case ast.OpNot:
		return r.boolTemp(v.Sign() == 0), nil
	}
	return nil, defectf("unexpected unary operator %s", op)
}
