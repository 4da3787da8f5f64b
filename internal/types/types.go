package types

import (
	"fmt"
	"strings"

	"modernc.org/mathutil"
)

// Kind enumerates the C types the executor understands.
type Kind int

const (
	Void Kind = iota
	Bool
	Char
	SChar
	UChar
	Short
	UShort
	Int
	UInt
	Long
	ULong
	LongLong
	ULongLong
	Ptr
	Array
	Struct
	Func
	Any // only used by builtin parameters
)

const (
	PtrSize  = 4
	MaxAlign = 8

	// MaxObjectSize bounds every object so that the difference of two
	// pointers into it fits in int.
	MaxObjectSize = 1<<(8*PtrSize-1) - 1

	maxDepth = 32
)

// Type describes a C type. Values are never mutated once built; structure
// layout lives in the shared StructDef.
type Type struct {
	K      Kind
	Elem   *Type      // Ptr: referenced type, Array: element type
	Len    int        // Array; negative while the length is still unknown
	Def    *StructDef // Struct
	Ret    *Type      // Func
	Params []Param    // Func
}

type Param struct {
	Name string
	Type *Type
}

func Basic(k Kind) *Type { return &Type{K: k} }

func VoidT() *Type  { return Basic(Void) }
func BoolT() *Type  { return Basic(Bool) }
func CharT() *Type  { return Basic(Char) }
func IntT() *Type   { return Basic(Int) }
func UIntT() *Type  { return Basic(UInt) }
func ShortT() *Type { return Basic(Short) }
func AnyT() *Type   { return Basic(Any) }

func PointerTo(elem *Type) *Type { return &Type{K: Ptr, Elem: elem} }

func ArrayOf(elem *Type, n int) *Type { return &Type{K: Array, Elem: elem, Len: n} }

func StructOf(def *StructDef) *Type { return &Type{K: Struct, Def: def} }

// FuncOf builds a function type. Array and function parameters decay to
// pointers; an array return type is rejected.
func FuncOf(ret *Type, params []Param) (*Type, error) {
	if ret.K == Array {
		return nil, fmt.Errorf("function cannot return array type %s", ret)
	}
	if ret.K == Func {
		return nil, fmt.Errorf("function cannot return function type %s", ret)
	}
	ps := make([]Param, len(params))
	for i, p := range params {
		ps[i] = Param{Name: p.Name, Type: Decay(p.Type)}
	}
	return &Type{K: Func, Ret: ret, Params: ps}, nil
}

// Size returns the size in bytes for this type on our target.
func (t *Type) Size() int {
	switch t.K {
	case Bool, Char, SChar, UChar:
		return 1
	case Short, UShort:
		return 2
	case Int, UInt, Long, ULong:
		return 4
	case LongLong, ULongLong:
		return 8
	case Ptr:
		return PtrSize
	case Array:
		if t.Len < 0 {
			return 0
		}
		return t.Len * t.Elem.Size()
	case Struct:
		return t.Def.size
	default:
		return 0
	}
}

func (t *Type) Align() int {
	switch t.K {
	case Array:
		return t.Elem.Align()
	case Struct:
		if t.Def.align == 0 {
			return 1
		}
		return t.Def.align
	case Void, Func, Any:
		return 1
	default:
		return t.Size()
	}
}

func (t *Type) IsSigned() bool {
	switch t.K {
	case Char, SChar, Short, Int, Long, LongLong:
		return true
	default:
		return false
	}
}

func (t *Type) IsUnsigned() bool {
	switch t.K {
	case Bool, UChar, UShort, UInt, ULong, ULongLong:
		return true
	default:
		return false
	}
}

func (t *Type) IsInteger() bool    { return t.IsSigned() || t.IsUnsigned() }
func (t *Type) IsArithmetic() bool { return t.IsInteger() }
func (t *Type) IsScalar() bool     { return t.IsArithmetic() || t.K == Ptr }
func (t *Type) IsPointer() bool    { return t.K == Ptr }
func (t *Type) IsArray() bool      { return t.K == Array }
func (t *Type) IsStruct() bool     { return t.K == Struct }
func (t *Type) IsFunction() bool   { return t.K == Func }
func (t *Type) IsVoid() bool       { return t.K == Void }
func (t *Type) IsAggregate() bool  { return t.K == Array || t.K == Struct }

func (t *Type) IsCharacter() bool {
	return t.K == Char || t.K == SChar || t.K == UChar
}

// IsComplete reports whether objects of t have a known size.
func (t *Type) IsComplete() bool {
	switch t.K {
	case Void, Func, Any:
		return false
	case Array:
		return t.Len >= 0 && t.Elem.IsComplete()
	case Struct:
		return t.Def.Complete
	default:
		return true
	}
}

// IsObject reports whether t describes a complete object type.
func (t *Type) IsObject() bool { return t.IsComplete() }

// Rank is the integer conversion rank.
func (t *Type) Rank() int {
	switch t.K {
	case Bool:
		return 0
	case Char, SChar, UChar:
		return 1
	case Short, UShort:
		return 2
	case Int, UInt:
		return 3
	case Long, ULong:
		return 4
	case LongLong, ULongLong:
		return 5
	default:
		return -1
	}
}

// Unsigned returns the unsigned counterpart of an integer type.
func (t *Type) Unsigned() *Type {
	switch t.K {
	case Char, SChar:
		return Basic(UChar)
	case Short:
		return Basic(UShort)
	case Int:
		return Basic(UInt)
	case Long:
		return Basic(ULong)
	case LongLong:
		return Basic(ULongLong)
	default:
		return t
	}
}

// Signed returns the signed counterpart of an integer type.
func (t *Type) Signed() *Type {
	switch t.K {
	case UChar:
		return Basic(SChar)
	case UShort:
		return Basic(Short)
	case UInt:
		return Basic(Int)
	case ULong:
		return Basic(Long)
	case ULongLong:
		return Basic(LongLong)
	default:
		return t
	}
}

// Member looks up a structure member by name.
func (t *Type) Member(name string) (Member, bool) {
	if t.K != Struct {
		return Member{}, false
	}
	return t.Def.Member(name)
}

// FirstNested returns the type stored at offset zero one level down: the
// element of an array or the first member of a structure.
func (t *Type) FirstNested() (*Type, bool) {
	switch t.K {
	case Array:
		if t.Len > 0 {
			return t.Elem, true
		}
	case Struct:
		if len(t.Def.Members) > 0 {
			return t.Def.Members[0].Type, true
		}
	}
	return nil, false
}

// Layout recomputes the layout of every structure reachable from t without
// passing through a pointer.
func (t *Type) Layout() error { return layoutType(t, 0) }

var kindNames = map[Kind]string{
	Void:      "void",
	Bool:      "_Bool",
	Char:      "char",
	SChar:     "signed char",
	UChar:     "unsigned char",
	Short:     "short",
	UShort:    "unsigned short",
	Int:       "int",
	UInt:      "unsigned int",
	Long:      "long",
	ULong:     "unsigned long",
	LongLong:  "long long",
	ULongLong: "unsigned long long",
	Any:       "any",
}

func (t *Type) String() string {
	switch t.K {
	case Ptr:
		if t.Elem.K == Func {
			return t.Elem.Ret.String() + "(*)" + paramList(t.Elem.Params)
		}
		return t.Elem.String() + "*"
	case Array:
		if t.Len < 0 {
			return t.Elem.String() + "[]"
		}
		return fmt.Sprintf("%s[%d]", t.Elem, t.Len)
	case Struct:
		return "struct " + t.Def.Name()
	case Func:
		return t.Ret.String() + paramList(t.Params)
	default:
		return kindNames[t.K]
	}
}

func paramList(ps []Param) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.Type.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Compatible reports whether a and b are compatible types. Recursion is
// bounded; past the bound the types are assumed compatible.
func Compatible(a, b *Type) bool { return compatible(a, b, 0) }

func compatible(a, b *Type, depth int) bool {
	if depth > maxDepth {
		return true
	}
	if a == b {
		return true
	}
	if a.K != b.K {
		return false
	}
	switch a.K {
	case Ptr:
		return compatible(a.Elem, b.Elem, depth+1)
	case Array:
		return a.Len == b.Len && compatible(a.Elem, b.Elem, depth+1)
	case Struct:
		if a.Def == b.Def {
			return true
		}
		da, db := a.Def, b.Def
		if da.Tag != db.Tag || len(da.Members) != len(db.Members) {
			return false
		}
		for i := range da.Members {
			if da.Members[i].Name != db.Members[i].Name {
				return false
			}
			if !compatible(da.Members[i].Type, db.Members[i].Type, depth+1) {
				return false
			}
		}
		return true
	case Func:
		if !compatible(a.Ret, b.Ret, depth+1) || len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !compatible(a.Params[i].Type, b.Params[i].Type, depth+1) {
				return false
			}
		}
		return true
	}
	return true
}

// AlignUp rounds n up to a multiple of a.
func AlignUp(n, a int) int {
	if a <= 1 {
		return n
	}
	return (n + a - 1) / a * a
}

// ArraySize returns the size of n elements of elem bytes each, or false
// when that exceeds MaxObjectSize.
func ArraySize(n, elem int) (int, bool) {
	if n < 0 || elem < 0 {
		return 0, false
	}
	if elem > 0 && n > mathutil.MaxInt/elem {
		return 0, false
	}
	size := n * elem
	return size, size <= MaxObjectSize
}
