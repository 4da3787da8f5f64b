package interp

import (
	"fmt"

	"github.com/tinyrange/cstep/internal/builtin"
	"github.com/tinyrange/cstep/internal/types"
)

// callBuiltin runs builtin idx to completion within the current step.
func (r *Runtime) callBuiltin(idx int, args []*TempObject) error {
	all := builtin.All()
	if idx >= len(all) {
		return defectf("unknown builtin %d", idx)
	}
	b := all[idx]
	if len(args) != len(b.Type.Params) {
		return ubf("function %s takes %d arguments but was called with %d", b.Name, len(b.Type.Params), len(args))
	}
	var (
		res *TempObject
		err error
	)
	switch b.Name {
	case "malloc":
		res, err = r.malloc(args[0])
	case "free":
		res, err = r.free(args[0])
	case "print":
		res, err = r.print(args[0])
	default:
		return defectf("builtin %s has no implementation", b.Name)
	}
	if err != nil {
		return err
	}
	r.stash.Push(res)
	return nil
}

// malloc returns a block with no effective type, or null.
func (r *Runtime) malloc(size *TempObject) (*TempObject, error) {
	u, err := r.convert(size, types.UIntT())
	if err != nil {
		return nil, err
	}
	n := int(scalar(u, r.order).Int64())
	addr := r.heap.Allocate(n)
	if addr != 0 {
		if err := r.mem.Types().AddUntyped(addr, n); err != nil {
			return nil, err
		}
	}
	return pointerTemp(types.VoidT(), addr, r.order), nil
}

// free releases a heap block. Freeing null does nothing.
func (r *Runtime) free(ptr *TempObject) (*TempObject, error) {
	p, err := r.convert(ptr, types.PointerTo(types.VoidT()))
	if err != nil {
		return nil, err
	}
	addr := int(scalar(p, r.order).Int64())
	if addr == 0 {
		return voidTemp(), nil
	}
	n, err := r.heap.Free(addr)
	if err != nil {
		return nil, err
	}
	r.mem.Types().RemoveRange(addr, n)
	r.inits.Remove(addr, n)
	return voidTemp(), nil
}

func (r *Runtime) print(v *TempObject) (*TempObject, error) {
	if _, err := fmt.Fprintln(r.out, r.format(v.Type, v.Bytes)); err != nil {
		return nil, err
	}
	return voidTemp(), nil
}
