// Package memory implements the simulated address space: four disjoint
// regions, per-byte permissions, the effective-type table that enforces
// strict aliasing, the heap allocator and the initialized-byte table.
package memory

import (
	"math/big"

	"github.com/tinyrange/cstep/internal/config"
	"github.com/tinyrange/cstep/internal/repr"
	"github.com/tinyrange/cstep/internal/types"
)

// Flags are permissions attached to bytes on write.
type Flags struct {
	ReadOnly   bool
	Executable bool
}

type Memory struct {
	regions  []*Region
	readonly map[int]bool
	exec     map[int]bool
	types    *EffectiveTypes
	order    repr.Endianness
	strict   bool
}

func New(cfg config.Config) (*Memory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Memory{
		readonly: map[int]bool{},
		exec:     map[int]bool{},
		types:    NewEffectiveTypes(),
		order:    cfg.Endianness,
		strict:   !cfg.UB.SkipStrictAliasing,
	}
	for _, r := range cfg.Memory.Regions() {
		m.regions = append(m.regions, newRegion(r.Name, r.Base, r.Size))
	}
	return m, nil
}

func (m *Memory) Types() *EffectiveTypes { return m.types }

func (m *Memory) Endianness() repr.Endianness { return m.order }

// Region returns the named region (stack, heap, data or text).
func (m *Memory) Region(name string) *Region {
	for _, r := range m.regions {
		if r.Name == name {
			return r
		}
	}
	return nil
}

func (m *Memory) find(addr, n int) *Region {
	for _, r := range m.regions {
		if r.Contains(addr, n) {
			return r
		}
	}
	return nil
}

// Bytes reads n raw bytes. With execute set every byte must be executable.
func (m *Memory) Bytes(addr, n int, execute bool) ([]byte, error) {
	op := "read"
	if execute {
		op = "execute"
	}
	r := m.find(addr, n)
	if r == nil {
		return nil, segfault(op, addr)
	}
	if execute {
		for i := 0; i < n; i++ {
			if !m.exec[addr+i] {
				return nil, segfault(op, addr)
			}
		}
	}
	return append([]byte(nil), r.slice(addr, n)...), nil
}

// SetBytes writes raw bytes and then applies flags to them.
func (m *Memory) SetBytes(addr int, b []byte, f Flags) error {
	r := m.find(addr, len(b))
	if r == nil {
		return segfault("write to", addr)
	}
	for i := range b {
		if m.readonly[addr+i] {
			return segfault("write to", addr+i)
		}
	}
	copy(r.slice(addr, len(b)), b)
	for i := range b {
		if f.ReadOnly {
			m.readonly[addr+i] = true
		}
		if f.Executable {
			m.exec[addr+i] = true
		}
	}
	return nil
}

// Fill sets n bytes to v without consulting effective types.
func (m *Memory) Fill(addr, n int, v byte) error {
	b := make([]byte, n)
	for i := range b {
		b[i] = v
	}
	return m.SetBytes(addr, b, Flags{})
}

// Load reads an object of type t after checking alignment and aliasing.
func (m *Memory) Load(addr int, t *types.Type) ([]byte, error) {
	if err := m.checkAlign(addr, t); err != nil {
		return nil, err
	}
	if err := m.checkAccess(addr, t); err != nil {
		return nil, err
	}
	return m.Bytes(addr, t.Size(), false)
}

// Store writes an object of type t. The first typed write to bytes with no
// effective type installs t as their effective type.
func (m *Memory) Store(addr int, b []byte, t *types.Type, f Flags) error {
	if err := m.checkAlign(addr, t); err != nil {
		return err
	}
	if m.strict {
		if et, ok := m.types.Lookup(addr); ok && et == nil && !t.IsCharacter() {
			if err := m.types.Change(addr, t); err != nil {
				return err
			}
		} else if err := m.checkAccess(addr, t); err != nil {
			return err
		}
	}
	return m.SetBytes(addr, b, f)
}

// StoreScalar encodes v as type t and stores it.
func (m *Memory) StoreScalar(addr int, v *big.Int, t *types.Type, f Flags) error {
	b, err := repr.Encode(v, t, m.order)
	if err != nil {
		return err
	}
	return m.Store(addr, b, t, f)
}

// LoadScalar loads and decodes a scalar of type t.
func (m *Memory) LoadScalar(addr int, t *types.Type) (*big.Int, error) {
	b, err := m.Load(addr, t)
	if err != nil {
		return nil, err
	}
	return repr.Decode(b, t, m.order), nil
}

func (m *Memory) checkAlign(addr int, t *types.Type) error {
	if a := t.Align(); a > 1 && addr%a != 0 {
		return fault(Misaligned, addr, "misaligned access of type %s at 0x%x", t, addr)
	}
	return nil
}

// checkAccess applies the strict aliasing rule. Character access is always
// allowed, as is access to bytes with no effective type. Otherwise the
// effective type, or a type nested at offset zero of it at any depth, must
// match t up to signedness.
func (m *Memory) checkAccess(addr int, t *types.Type) error {
	if !m.strict || t.IsCharacter() {
		return nil
	}
	et, ok := m.types.Lookup(addr)
	if !ok {
		return fault(NoObject, addr, "no object allocated at 0x%x", addr)
	}
	if et == nil {
		return nil
	}
	for cur := et; cur != nil; {
		if matchesUpToSign(cur, t) {
			return nil
		}
		cur, _ = cur.FirstNested()
	}
	return fault(AliasingViolation, addr, "strict aliasing violated at 0x%x: effective type %s but access of type %s", addr, et, t)
}

func matchesUpToSign(et, t *types.Type) bool {
	if types.Compatible(et, t) {
		return true
	}
	if !t.IsInteger() {
		return false
	}
	return types.Compatible(et, t.Unsigned()) || types.Compatible(et, t.Signed())
}

// RegionView is a copy of one region's bytes.
type RegionView struct {
	Name  string
	Base  int
	Bytes []byte
}

func (m *Memory) Snapshot() []RegionView {
	out := make([]RegionView, len(m.regions))
	for i, r := range m.regions {
		out[i] = RegionView{Name: r.Name, Base: r.Base, Bytes: append([]byte(nil), r.data...)}
	}
	return out
}

func (m *Memory) IsReadOnly(addr int) bool   { return m.readonly[addr] }
func (m *Memory) IsExecutable(addr int) bool { return m.exec[addr] }
