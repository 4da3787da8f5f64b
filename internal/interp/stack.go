package interp

import (
	"modernc.org/mathutil"

	"github.com/tinyrange/cstep/internal/typed"
	"github.com/tinyrange/cstep/internal/types"
)

// Slot is where one local lives within its frame.
type Slot struct {
	Offset int
	Type   *types.Type
}

// FrameLayout gives every parameter and every block-scope object of a
// function, at any nesting depth, its own aligned slot.
type FrameLayout struct {
	Size  int
	Align int
	Slots map[string]Slot // by qualified name
}

func layoutFrame(fn *typed.FunctionDef) FrameLayout {
	fl := FrameLayout{Align: 1, Slots: map[string]Slot{}}
	add := func(name string, t *types.Type) {
		off := types.AlignUp(fl.Size, t.Align())
		fl.Slots[name] = Slot{Offset: off, Type: t}
		fl.Size = mathutil.Max(fl.Size, off+t.Size())
		fl.Align = mathutil.Max(fl.Align, t.Align())
	}
	for _, p := range fn.Type.Params {
		add(p.Name, p.Type)
	}
	var walk func(s typed.Stmt)
	walk = func(s typed.Stmt) {
		switch s := s.(type) {
		case *typed.Declaration:
			for _, d := range s.List {
				if !d.FileScope {
					add(d.QualName, d.Type)
				}
			}
		case *typed.Compound:
			for _, it := range s.Items {
				walk(it)
			}
		case *typed.If:
			walk(s.Then)
			if s.Else != nil {
				walk(s.Else)
			}
		case *typed.While:
			walk(s.Body)
		case *typed.DoWhile:
			walk(s.Body)
		case *typed.For:
			if s.Init != nil {
				walk(s.Init)
			}
			walk(s.Body)
		}
	}
	walk(fn.Body)
	return fl
}

// Stack hands out call frames from the stack region. Base and top pointers
// are kept on paired shadow stacks so a return restores them exactly.
type Stack struct {
	limit int
	sp    int
	bases []int
	tops  []int
	saved []int
}

func newStack(base, size int) *Stack {
	return &Stack{limit: base + size, sp: base}
}

// Push allocates a frame and returns its base address.
func (s *Stack) Push(fl FrameLayout) (int, error) {
	base := types.AlignUp(s.sp, fl.Align)
	top := base + fl.Size
	if top > s.limit {
		return 0, ubf("stack overflow")
	}
	s.saved = append(s.saved, s.sp)
	s.bases = append(s.bases, base)
	s.tops = append(s.tops, top)
	s.sp = top
	return base, nil
}

func (s *Stack) Pop() error {
	n := len(s.bases)
	if n == 0 {
		return defectf("no stack frame to pop")
	}
	s.sp = s.saved[n-1]
	s.saved, s.bases, s.tops = s.saved[:n-1], s.bases[:n-1], s.tops[:n-1]
	return nil
}

// FrameView describes one active call frame.
type FrameView struct {
	Function string
	Base     int
	Top      int
}
