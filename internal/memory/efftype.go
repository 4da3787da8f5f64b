package memory

import (
	"sort"

	"github.com/tinyrange/cstep/internal/types"
)

// EffectiveTypes records which object type owns each registered address.
// A nil entry is a byte with no effective type yet (fresh heap memory).
type EffectiveTypes struct {
	table map[int]*types.Type
	owner map[int]int // byte -> address of the registration covering it
}

func NewEffectiveTypes() *EffectiveTypes {
	return &EffectiveTypes{table: map[int]*types.Type{}, owner: map[int]int{}}
}

// Lookup returns the type registered at exactly addr.
func (et *EffectiveTypes) Lookup(addr int) (*types.Type, bool) {
	t, ok := et.table[addr]
	return t, ok
}

// Add registers t over [addr, addr+size). Nested array elements and struct
// members at non-zero offsets get their own entries.
func (et *EffectiveTypes) Add(addr int, t *types.Type) error {
	size := t.Size()
	if size < 1 {
		size = 1
	}
	for i := 0; i < size; i++ {
		if base, ok := et.owner[addr+i]; ok {
			return fault(Overlap, addr, "object at 0x%x overlaps object of type %s at 0x%x", addr, et.table[base], base)
		}
	}
	for i := 0; i < size; i++ {
		et.owner[addr+i] = addr
	}
	et.register(addr, t, true)
	return nil
}

func (et *EffectiveTypes) register(addr int, t *types.Type, claim bool) {
	if claim {
		et.table[addr] = t
	}
	switch t.K {
	case types.Array:
		n := t.Elem.Size()
		for i := 0; i < t.Len; i++ {
			et.register(addr+i*n, t.Elem, i != 0)
		}
	case types.Struct:
		for _, m := range t.Def.Members {
			et.register(addr+m.Offset, m.Type, m.Offset != 0)
		}
	}
}

// AddUntyped registers n bytes that have no effective type yet.
func (et *EffectiveTypes) AddUntyped(addr, n int) error {
	for i := 0; i < n; i++ {
		if _, ok := et.owner[addr+i]; ok {
			return fault(Overlap, addr+i, "address 0x%x is already registered", addr+i)
		}
	}
	for i := 0; i < n; i++ {
		et.table[addr+i] = nil
		et.owner[addr+i] = addr + i
	}
	return nil
}

// Change installs t over bytes that have no effective type yet.
func (et *EffectiveTypes) Change(addr int, t *types.Type) error {
	size := t.Size()
	for i := 0; i < size; i++ {
		cur, ok := et.table[addr+i]
		if !ok || cur != nil || et.owner[addr+i] != addr+i {
			return fault(NoObject, addr+i, "no object allocated at 0x%x", addr+i)
		}
	}
	et.RemoveRange(addr, size)
	return et.Add(addr, t)
}

// Remove drops the registration starting at addr.
func (et *EffectiveTypes) Remove(addr int) error {
	t, ok := et.table[addr]
	if !ok || et.owner[addr] != addr {
		return fault(NoObject, addr, "no object allocated at 0x%x", addr)
	}
	size := 1
	if t != nil && t.Size() > 1 {
		size = t.Size()
	}
	et.RemoveRange(addr, size)
	return nil
}

// RemoveRange drops every entry within [addr, addr+n).
func (et *EffectiveTypes) RemoveRange(addr, n int) {
	for i := 0; i < n; i++ {
		delete(et.table, addr+i)
		delete(et.owner, addr+i)
	}
}

// Snapshot copies the table. Types are immutable and shared.
func (et *EffectiveTypes) Snapshot() map[int]*types.Type {
	out := make(map[int]*types.Type, len(et.table))
	for a, t := range et.table {
		out[a] = t
	}
	return out
}

// Addresses returns the registered addresses in ascending order.
func (et *EffectiveTypes) Addresses() []int {
	out := make([]int, 0, len(et.table))
	for a := range et.table {
		out = append(out, a)
	}
	sort.Ints(out)
	return out
}
