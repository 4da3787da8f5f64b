package interp

import (
	"math/big"

	"github.com/tinyrange/cstep/internal/repr"
	"github.com/tinyrange/cstep/internal/types"
)

// StashItem is a value produced by evaluation.
type StashItem interface{ isStashItem() }

// TempObject is an evaluated value. Values loaded from memory remember
// where they came from; arrays carry no bytes, only their address.
type TempObject struct {
	Type    *types.Type
	Bytes   []byte
	Addr    int
	HasAddr bool
}

// FuncDesignator names a function. It stays on the stash until an
// instruction consumes it, which sees a pointer to the function.
type FuncDesignator struct {
	Type *types.Type
	Addr int
	Name string
}

func (*TempObject) isStashItem()     {}
func (*FuncDesignator) isStashItem() {}

func voidTemp() *TempObject { return &TempObject{Type: types.VoidT()} }

// Object is a declared, addressed runtime object or function. Its bytes
// always live in memory.
type Object struct {
	Name string
	Addr int
	Type *types.Type
}

// scalar decodes a scalar temporary.
func scalar(o *TempObject, order repr.Endianness) *big.Int {
	return repr.Decode(o.Bytes, o.Type, order)
}

func truthy(o *TempObject, order repr.Endianness) bool {
	return scalar(o, order).Sign() != 0
}

func pointerTemp(elem *types.Type, addr int, order repr.Endianness) *TempObject {
	t := types.PointerTo(elem)
	b, _ := repr.Encode(big.NewInt(int64(addr)), t, order)
	return &TempObject{Type: t, Bytes: b}
}
