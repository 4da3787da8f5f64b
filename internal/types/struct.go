package types

import (
	"fmt"

	"modernc.org/mathutil"
)

type Member struct {
	Name   string
	Type   *Type
	Offset int
}

// StructDef is the shared definition behind every struct type naming the
// same tag. It starts incomplete and is patched once its body is seen.
type StructDef struct {
	Tag      string
	Members  []Member
	Complete bool

	size  int
	align int
}

func NewStructDef(tag string) *StructDef { return &StructDef{Tag: tag} }

func (d *StructDef) Name() string {
	if d.Tag == "" {
		return "<anonymous>"
	}
	return d.Tag
}

// SetMembers completes the definition. Offsets are assigned by Layout.
func (d *StructDef) SetMembers(ms []Member) {
	d.Members = ms
	d.Complete = true
	d.size, d.align = 0, 0
}

func (d *StructDef) Member(name string) (Member, bool) {
	for _, m := range d.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

// Layout assigns member offsets and recomputes size and alignment.
func (d *StructDef) Layout() error { return d.layout(0) }

func (d *StructDef) layout(depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("struct %s cannot contain itself", d.Name())
	}
	if !d.Complete {
		return fmt.Errorf("struct %s has incomplete type", d.Name())
	}
	offset, align := 0, 1
	for i := range d.Members {
		m := &d.Members[i]
		if err := layoutType(m.Type, depth+1); err != nil {
			return err
		}
		a := m.Type.Align()
		offset = AlignUp(offset, a)
		if offset > MaxObjectSize-m.Type.Size() {
			return fmt.Errorf("struct %s is too large", d.Name())
		}
		m.Offset = offset
		offset += m.Type.Size()
		align = mathutil.Max(align, a)
	}
	d.size = mathutil.Max(AlignUp(offset, align), 1)
	d.align = align
	return nil
}

func layoutType(t *Type, depth int) error {
	switch t.K {
	case Struct:
		return t.Def.layout(depth)
	case Array:
		return layoutType(t.Elem, depth)
	}
	return nil
}
