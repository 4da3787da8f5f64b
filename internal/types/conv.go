package types

// Promote applies the integer promotions.
func Promote(t *Type) *Type {
	if !t.IsInteger() || t.Rank() > Basic(Int).Rank() {
		return t
	}
	if CanRepresent(IntT(), t) {
		return IntT()
	}
	return UIntT()
}

// UsualArithmetic returns the common type of two arithmetic operands.
func UsualArithmetic(a, b *Type) *Type {
	a, b = Promote(a), Promote(b)
	if a.K == b.K {
		return a
	}
	if a.IsSigned() == b.IsSigned() {
		if a.Rank() >= b.Rank() {
			return a
		}
		return b
	}
	u, s := a, b
	if a.IsSigned() {
		u, s = b, a
	}
	if u.Rank() >= s.Rank() {
		return u
	}
	if CanRepresent(s, u) {
		return s
	}
	return s.Unsigned()
}

// Decay converts array types to element pointers and function types to
// function pointers.
func Decay(t *Type) *Type {
	switch t.K {
	case Array:
		return PointerTo(t.Elem)
	case Func:
		return PointerTo(t)
	}
	return t
}

// AssignCompatible reports whether a value of type right may be assigned to
// an object of type left. nullConst marks right as a null pointer constant.
func AssignCompatible(left, right *Type, nullConst bool) bool {
	switch {
	case left.IsArithmetic() && right.IsArithmetic():
		return true
	case left.IsStruct() && right.IsStruct():
		return Compatible(left, right)
	case left.IsPointer() && right.IsPointer():
		l, r := left.Elem, right.Elem
		if Compatible(l, r) {
			return true
		}
		return (l.IsVoid() && !r.IsFunction()) || (r.IsVoid() && !l.IsFunction())
	case left.IsPointer() && nullConst:
		return true
	case left.K == Bool && right.IsPointer():
		return true
	}
	return false
}
