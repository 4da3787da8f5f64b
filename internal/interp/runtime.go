// Package interp executes a typed translation unit one step at a time.
// Control is explicit: an Agenda of pending nodes and instructions and a
// Stash of produced values replace host recursion, so execution can pause
// after any step and be inspected.
package interp

import (
	"errors"
	"fmt"
	"io"

	"github.com/tinyrange/cstep/internal/builtin"
	"github.com/tinyrange/cstep/internal/config"
	"github.com/tinyrange/cstep/internal/memory"
	"github.com/tinyrange/cstep/internal/repr"
	"github.com/tinyrange/cstep/internal/typed"
	"github.com/tinyrange/cstep/internal/types"
)

type Runtime struct {
	mem    *memory.Memory
	heap   *memory.Heap
	inits  *memory.InitTable
	stack  *Stack
	syms   *SymbolTable
	agenda *Agenda
	stash  *Stash
	order  repr.Endianness

	funcs   []*typed.FunctionDef
	layouts map[*typed.FunctionDef]FrameLayout
	calls   []*activation
	strings map[*typed.StringLit]int
	text    map[int]string // text slot to function name
	dataTop int
	dataEnd int
	textTop int

	out   io.Writer
	trace io.Writer

	steps   int
	entered int
	exited  int
	exit    *int
	err     error
}

// activation is one call in progress.
type activation struct {
	fn     *typed.FunctionDef
	base   int
	layout FrameLayout
}

// New prepares tu for execution. Builtin print writes to out, which may be
// nil to discard output.
func New(tu *typed.TranslationUnit, cfg config.Config, out io.Writer) (*Runtime, error) {
	if tu.Main == nil {
		return nil, errors.New("translation unit has no main function")
	}
	mem, err := memory.New(cfg)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = io.Discard
	}
	r := &Runtime{
		mem:     mem,
		heap:    memory.NewHeap(cfg.Memory.Heap.Base, cfg.Memory.Heap.Size),
		inits:   memory.NewInitTable(),
		stack:   newStack(cfg.Memory.Stack.Base, cfg.Memory.Stack.Size),
		syms:    newSymbolTable(),
		agenda:  &Agenda{},
		stash:   newStash(cfg.Endianness),
		order:   cfg.Endianness,
		layouts: map[*typed.FunctionDef]FrameLayout{},
		strings: map[*typed.StringLit]int{},
		text:    map[int]string{},
		dataTop: cfg.Memory.Data.Base,
		dataEnd: cfg.Memory.Data.End(),
		textTop: cfg.Memory.Text.Base,
		out:     out,
	}
	for _, d := range tu.Decls {
		if fd, ok := d.(*typed.FunctionDef); ok {
			r.funcs = append(r.funcs, fd)
		}
	}
	entry := &typed.Ident{Info: typed.Info{Pos: tu.Main.Pos, T: tu.Main.Type}, Name: "main"}
	r.agenda.PushInstr(tu.Main.Pos, &Exit{})
	r.agenda.PushInstr(tu.Main.Pos, &Call{Arity: 0})
	r.agenda.PushNode(entry)
	r.agenda.PushNode(tu)
	return r, nil
}

// SetTrace makes every step write one line to w. A nil w disables tracing.
func (r *Runtime) SetTrace(w io.Writer) { r.trace = w }

// Step performs one agenda element. Once a step has failed every later
// call returns the same error.
func (r *Runtime) Step() error {
	if r.err != nil {
		return r.err
	}
	it, ok := r.agenda.Pop()
	if !ok {
		return ErrAgendaEmpty
	}
	r.steps++
	if r.trace != nil {
		fmt.Fprintf(r.trace, "%d %s lvalue=%t\n", r.steps, it, it.LValue)
	}
	var err error
	if it.Instr != nil {
		err = r.exec(it)
	} else {
		err = r.eval(it)
	}
	if err != nil {
		var d *Defect
		if errors.As(err, &d) {
			r.err = d
		} else {
			r.err = &UndefinedBehaviour{Pos: it.Pos, Err: err}
		}
	}
	return r.err
}

// Run steps until the program exits. A positive maxSteps bounds the number
// of steps taken by this call.
func (r *Runtime) Run(maxSteps int) error {
	for n := 0; r.exit == nil; n++ {
		if maxSteps > 0 && n >= maxSteps {
			return ErrStepLimit
		}
		if err := r.Step(); err != nil {
			return err
		}
	}
	return nil
}

// ExitCode returns main's return value once the program has finished.
func (r *Runtime) ExitCode() (int, bool) {
	if r.exit == nil {
		return 0, false
	}
	return *r.exit, true
}

// Steps is the number of steps taken so far.
func (r *Runtime) Steps() int { return r.steps }

// Err is the error that stopped execution, if any.
func (r *Runtime) Err() error { return r.err }

func (r *Runtime) current() (*activation, error) {
	if len(r.calls) == 0 {
		return nil, defectf("no active call")
	}
	return r.calls[len(r.calls)-1], nil
}

// load reads the object of type t at addr. Arrays are not read: the
// result only records their address.
func (r *Runtime) load(addr int, t *types.Type) (*TempObject, error) {
	if addr == 0 {
		return nil, ubf("null pointer dereference")
	}
	if t.IsArray() {
		return &TempObject{Type: t, Addr: addr, HasAddr: true}, nil
	}
	b, err := r.mem.Load(addr, t)
	if err != nil {
		return nil, err
	}
	if t.IsScalar() && !r.inits.Initialized(addr, t.Size()) {
		return nil, ubf("read of uninitialized object of type %s at 0x%x", t, addr)
	}
	return &TempObject{Type: t, Bytes: b, Addr: addr, HasAddr: true}, nil
}

func (r *Runtime) store(addr int, t *types.Type, b []byte) error {
	if addr == 0 {
		return ubf("null pointer dereference")
	}
	if err := r.mem.Store(addr, b, t, memory.Flags{}); err != nil {
		return err
	}
	r.inits.Add(addr, len(b))
	return nil
}

func (r *Runtime) temp(v int64, t *types.Type) *TempObject {
	return &TempObject{Type: t, Bytes: repr.MustEncode(v, t, r.order)}
}

// declare registers a fresh object's effective type and binds its name.
func (r *Runtime) declare(name string, addr int, t *types.Type) error {
	if a := t.Align(); addr%a != 0 {
		return defectf("object %s at 0x%x is not aligned to %d", name, addr, a)
	}
	if err := r.mem.Types().Add(addr, t); err != nil {
		return err
	}
	r.syms.Bind(Object{Name: name, Addr: addr, Type: t})
	return nil
}

// release forgets objects going out of scope.
func (r *Runtime) release(objs []Object) {
	for _, o := range objs {
		n := o.Type.Size()
		if n < 1 {
			n = 1
		}
		r.mem.Types().RemoveRange(o.Addr, n)
		r.inits.Remove(o.Addr, n)
	}
}

func (r *Runtime) enterBlock() {
	r.syms.PushBlock()
	r.entered++
}

func (r *Runtime) exitBlock() error {
	objs, err := r.syms.PopBlock()
	if err != nil {
		return err
	}
	r.release(objs)
	r.exited++
	return nil
}

func (r *Runtime) allocData(t *types.Type, size int) (int, error) {
	addr := types.AlignUp(r.dataTop, t.Align())
	if addr+size > r.dataEnd {
		return 0, ubf("data segment exhausted")
	}
	r.dataTop = addr + size
	return addr, nil
}

// loadText gives every builtin and function a slot in the text segment
// holding its index; builtins are stored as -index-1.
func (r *Runtime) loadText() error {
	short := types.ShortT()
	slot := func(name string, t *types.Type, idx int) error {
		addr := types.AlignUp(r.textTop, short.Align())
		b := repr.MustEncode(int64(idx), short, r.order)
		if err := r.mem.SetBytes(addr, b, memory.Flags{ReadOnly: true, Executable: true}); err != nil {
			return err
		}
		r.textTop = addr + len(b)
		r.text[addr] = name
		r.syms.DeclareGlobal(Object{Name: name, Addr: addr, Type: t})
		return nil
	}
	for i, b := range builtin.All() {
		if err := slot(b.Name, b.Type, -i-1); err != nil {
			return err
		}
	}
	for i, fn := range r.funcs {
		if err := slot(fn.Name, fn.Type, i); err != nil {
			return err
		}
	}
	return nil
}

// stringAddr places a string literal in read-only data the first time it
// is evaluated.
func (r *Runtime) stringAddr(s *typed.StringLit) (int, error) {
	if a, ok := r.strings[s]; ok {
		return a, nil
	}
	b := append([]byte(s.Value), 0)
	addr, err := r.allocData(s.T, len(b))
	if err != nil {
		return 0, err
	}
	if err := r.mem.SetBytes(addr, b, memory.Flags{ReadOnly: true}); err != nil {
		return 0, err
	}
	if err := r.mem.Types().Add(addr, s.T); err != nil {
		return 0, err
	}
	r.inits.Add(addr, len(b))
	r.strings[s] = addr
	return addr, nil
}
