// Package repr converts between arbitrary-precision integers and the
// fixed-width two's complement bytes stored in simulated memory.
package repr

import (
	"fmt"
	"math/big"

	"github.com/tinyrange/cstep/internal/types"
)

// RangeError reports a value that does not fit a signed type.
type RangeError struct {
	Value *big.Int
	Type  *types.Type
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s out of range for type %s", e.Value, e.Type)
}

// Encode stores v as a value of scalar type t. Signed types must hold v
// exactly; unsigned and pointer types wrap modulo 2^n; _Bool normalizes
// to 0 or 1.
func Encode(v *big.Int, t *types.Type, e Endianness) ([]byte, error) {
	if !t.IsScalar() {
		return nil, fmt.Errorf("cannot encode value of non-scalar type %s", t)
	}
	size := t.Size()
	u := new(big.Int)
	switch {
	case t.K == types.Bool:
		if v.Sign() != 0 {
			u.SetInt64(1)
		}
	case t.IsSigned():
		if !types.InRange(t, v) {
			return nil, &RangeError{Value: new(big.Int).Set(v), Type: t}
		}
		u.Set(v)
		if u.Sign() < 0 {
			u.Add(u, modulus(size))
		}
	default:
		u.Mod(v, modulus(size))
	}
	b := u.FillBytes(make([]byte, size))
	if e == Little {
		reverse(b)
	}
	return b, nil
}

// MustEncode is Encode for values already known to be in range.
func MustEncode(v int64, t *types.Type, e Endianness) []byte {
	b, err := Encode(big.NewInt(v), t, e)
	if err != nil {
		panic(err)
	}
	return b
}

// Decode reads bytes as a value of scalar type t.
func Decode(b []byte, t *types.Type, e Endianness) *big.Int {
	return DecodeBytes(b, t.IsSigned(), e)
}

func DecodeBytes(b []byte, signed bool, e Endianness) *big.Int {
	be := append([]byte(nil), b...)
	if e == Little {
		reverse(be)
	}
	v := new(big.Int).SetBytes(be)
	if signed && len(be) > 0 && be[0]&0x80 != 0 {
		v.Sub(v, modulus(len(be)))
	}
	return v
}

// Convert re-expresses v in type t under the same rules as Encode.
func Convert(v *big.Int, t *types.Type) (*big.Int, error) {
	b, err := Encode(v, t, Little)
	if err != nil {
		return nil, err
	}
	return Decode(b, t, Little), nil
}

func modulus(size int) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(size)*8)
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
