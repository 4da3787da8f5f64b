package interp

// SymbolTable resolves identifiers to runtime objects: one file scope plus,
// for every active call, a stack of block scopes.
type SymbolTable struct {
	globals map[string]Object
	order   []string
	frames  []*frameScope
}

type frameScope struct {
	fn     string
	blocks []*blockScope
}

type blockScope struct {
	objs  []Object
	names map[string]Object
}

func newSymbolTable() *SymbolTable {
	return &SymbolTable{globals: map[string]Object{}}
}

func (st *SymbolTable) DeclareGlobal(o Object) {
	if _, ok := st.globals[o.Name]; !ok {
		st.order = append(st.order, o.Name)
	}
	st.globals[o.Name] = o
}

// PushFrame starts a call with its outermost block open.
func (st *SymbolTable) PushFrame(fn string) {
	st.frames = append(st.frames, &frameScope{fn: fn})
	st.PushBlock()
}

// PopFrame ends the current call, returning the objects still in scope.
func (st *SymbolTable) PopFrame() ([]Object, error) {
	if len(st.frames) == 0 {
		return nil, defectf("no call frame to pop")
	}
	f := st.frames[len(st.frames)-1]
	var objs []Object
	for _, b := range f.blocks {
		objs = append(objs, b.objs...)
	}
	st.frames = st.frames[:len(st.frames)-1]
	return objs, nil
}

func (st *SymbolTable) PushBlock() {
	f := st.top()
	if f == nil {
		return
	}
	f.blocks = append(f.blocks, &blockScope{names: map[string]Object{}})
}

// PopBlock closes the innermost block and returns its objects.
func (st *SymbolTable) PopBlock() ([]Object, error) {
	f := st.top()
	if f == nil || len(f.blocks) == 0 {
		return nil, defectf("no block to exit")
	}
	b := f.blocks[len(f.blocks)-1]
	f.blocks = f.blocks[:len(f.blocks)-1]
	return b.objs, nil
}

// Bind declares o in the innermost scope.
func (st *SymbolTable) Bind(o Object) {
	f := st.top()
	if f == nil || len(f.blocks) == 0 {
		st.DeclareGlobal(o)
		return
	}
	b := f.blocks[len(f.blocks)-1]
	b.objs = append(b.objs, o)
	b.names[o.Name] = o
}

func (st *SymbolTable) Lookup(name string) (Object, bool) {
	if f := st.top(); f != nil {
		for i := len(f.blocks) - 1; i >= 0; i-- {
			if o, ok := f.blocks[i].names[name]; ok {
				return o, true
			}
		}
	}
	o, ok := st.globals[name]
	return o, ok
}

// Depth counts the open blocks over all calls.
func (st *SymbolTable) Depth() int {
	n := 0
	for _, f := range st.frames {
		n += len(f.blocks)
	}
	return n
}

func (st *SymbolTable) top() *frameScope {
	if len(st.frames) == 0 {
		return nil
	}
	return st.frames[len(st.frames)-1]
}

// ObjectView is one declared object or function as seen by a host.
type ObjectView struct {
	Scope string // "global" or the function owning the frame
	Name  string
	Addr  int
	Type  string
}

func (st *SymbolTable) view() []ObjectView {
	var out []ObjectView
	for _, n := range st.order {
		o := st.globals[n]
		out = append(out, ObjectView{Scope: "global", Name: o.Name, Addr: o.Addr, Type: o.Type.String()})
	}
	for _, f := range st.frames {
		for _, b := range f.blocks {
			for _, o := range b.objs {
				out = append(out, ObjectView{Scope: f.fn, Name: o.Name, Addr: o.Addr, Type: o.Type.String()})
			}
		}
	}
	return out
}
