package interp

import "github.com/tinyrange/cstep/internal/repr"

// Stash holds the values produced so far, most recent last.
type Stash struct {
	items []StashItem
	order repr.Endianness
}

func newStash(order repr.Endianness) *Stash { return &Stash{order: order} }

// Push adds an item. An addressed array decays to a pointer to its first
// element.
func (s *Stash) Push(it StashItem) {
	if v, ok := it.(*TempObject); ok && v.Type.IsArray() && v.HasAddr {
		it = pointerTemp(v.Type.Elem, v.Addr, s.order)
	}
	s.items = append(s.items, it)
}

func (s *Stash) Pop() (StashItem, error) {
	if len(s.items) == 0 {
		return nil, defectf("pop from empty stash")
	}
	it := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return it, nil
}

// PopTemp pops a value. A function designator is consumed as a pointer
// to its function.
func (s *Stash) PopTemp() (*TempObject, error) {
	it, err := s.Pop()
	if err != nil {
		return nil, err
	}
	switch v := it.(type) {
	case *TempObject:
		return v, nil
	case *FuncDesignator:
		return pointerTemp(v.Type, v.Addr, s.order), nil
	}
	return nil, defectf("expected a value on the stash, got %T", it)
}

// PopPointer pops a pointer value and returns it with its address.
func (s *Stash) PopPointer() (*TempObject, int, error) {
	o, err := s.PopTemp()
	if err != nil {
		return nil, 0, err
	}
	if !o.Type.IsPointer() {
		return nil, 0, defectf("expected a pointer on the stash, got %s", o.Type)
	}
	return o, int(scalar(o, s.order).Int64()), nil
}

func (s *Stash) Len() int { return len(s.items) }

func (s *Stash) Items() []StashItem { return s.items }
