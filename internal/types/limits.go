package types

import "math/big"

var one = big.NewInt(1)

// Bits returns the width of a scalar type in bits.
func (t *Type) Bits() uint { return uint(t.Size()) * 8 }

// MinValue is the smallest value representable in scalar type t.
func MinValue(t *Type) *big.Int {
	if !t.IsSigned() {
		return new(big.Int)
	}
	v := new(big.Int).Lsh(one, t.Bits()-1)
	return v.Neg(v)
}

// MaxValue is the largest value representable in scalar type t.
func MaxValue(t *Type) *big.Int {
	if t.K == Bool {
		return big.NewInt(1)
	}
	bits := t.Bits()
	if t.IsSigned() {
		bits--
	}
	v := new(big.Int).Lsh(one, bits)
	return v.Sub(v, one)
}

// InRange reports whether v is representable in t.
func InRange(t *Type, v *big.Int) bool {
	return v.Cmp(MinValue(t)) >= 0 && v.Cmp(MaxValue(t)) <= 0
}

// CanRepresent reports whether every value of b is representable in a.
func CanRepresent(a, b *Type) bool {
	return MinValue(a).Cmp(MinValue(b)) <= 0 && MaxValue(a).Cmp(MaxValue(b)) >= 0
}
