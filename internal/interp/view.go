package interp

import "github.com/tinyrange/cstep/internal/memory"

// View is a snapshot of the whole machine for hosts that render execution.
// It shares nothing mutable with the Runtime.
type View struct {
	Agenda []AgendaEntry // bottom first
	Stash  []StashEntry  // bottom first

	Objects []ObjectView
	Frames  []FrameView

	Memory         []memory.RegionView
	Heap           map[int]int // block address to size
	HeapUsage      int
	EffectiveTypes map[int]string // "" for bytes with no effective type yet
	Initialized    []int

	Steps         int
	BlocksEntered int
	BlocksExited  int
	ExitCode      *int
}

type AgendaEntry struct {
	Desc   string
	LValue bool
}

// StashEntry is a value or, transiently, a function designator.
type StashEntry struct {
	Type    string
	Bytes   []byte
	Addr    int
	HasAddr bool
	Func    string
}

func (r *Runtime) View() *View {
	v := &View{
		Objects:        r.syms.view(),
		Memory:         r.mem.Snapshot(),
		Heap:           r.heap.Blocks(),
		HeapUsage:      r.heap.Usage(),
		EffectiveTypes: map[int]string{},
		Initialized:    r.inits.Snapshot(),
		Steps:          r.steps,
		BlocksEntered:  r.entered,
		BlocksExited:   r.exited,
	}
	for _, it := range r.agenda.Items() {
		v.Agenda = append(v.Agenda, AgendaEntry{Desc: it.String(), LValue: it.LValue})
	}
	for _, it := range r.stash.Items() {
		switch o := it.(type) {
		case *TempObject:
			v.Stash = append(v.Stash, StashEntry{
				Type:    o.Type.String(),
				Bytes:   append([]byte(nil), o.Bytes...),
				Addr:    o.Addr,
				HasAddr: o.HasAddr,
			})
		case *FuncDesignator:
			v.Stash = append(v.Stash, StashEntry{Type: o.Type.String(), Addr: o.Addr, HasAddr: true, Func: o.Name})
		}
	}
	for _, a := range r.calls {
		v.Frames = append(v.Frames, FrameView{Function: a.fn.Name, Base: a.base, Top: a.base + a.layout.Size})
	}
	for addr, t := range r.mem.Types().Snapshot() {
		if t == nil {
			v.EffectiveTypes[addr] = ""
		} else {
			v.EffectiveTypes[addr] = t.String()
		}
	}
	if r.exit != nil {
		code := *r.exit
		v.ExitCode = &code
	}
	return v
}
