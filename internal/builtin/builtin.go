// Package builtin lists the functions every program can call without
// declaring them. The index of a builtin is its position in All.
package builtin

import "github.com/tinyrange/cstep/internal/types"

type Builtin struct {
	Name string
	Type *types.Type
}

func All() []Builtin {
	return []Builtin{
		{"malloc", fn(types.PointerTo(types.VoidT()), types.Param{Name: "size", Type: types.UIntT()})},
		{"free", fn(types.VoidT(), types.Param{Name: "ptr", Type: types.PointerTo(types.VoidT())})},
		{"print", fn(types.VoidT(), types.Param{Name: "value", Type: types.AnyT()})},
	}
}

func fn(ret *types.Type, params ...types.Param) *types.Type {
	t, err := types.FuncOf(ret, params)
	if err != nil {
		panic(err)
	}
	return t
}
