package interp

import (
	"math/big"

	"github.com/tinyrange/cstep/internal/ast"
	"github.com/tinyrange/cstep/internal/repr"
	"github.com/tinyrange/cstep/internal/typed"
	"github.com/tinyrange/cstep/internal/types"
)

// exec applies one instruction to the stash.
func (r *Runtime) exec(it Item) error {
	s := r.stash
	switch in := it.Instr.(type) {
	case *Push:
		s.Push(in.Item)
		return nil
	case *Pop:
		_, err := s.Pop()
		return err
	case *UnaryOp:
		return r.execUnary(in)
	case *BinaryOp:
		rhs, err := s.PopTemp()
		if err != nil {
			return err
		}
		lhs, err := s.PopTemp()
		if err != nil {
			return err
		}
		v, err := r.binary(in.Op, lhs, rhs, in.Type)
		if err != nil {
			return err
		}
		s.Push(v)
		return nil
	case *Assign:
		_, addr, err := s.PopPointer()
		if err != nil {
			return err
		}
		val, err := s.PopTemp()
		if err != nil {
			return err
		}
		v, err := r.assign(addr, in.Type, val)
		if err != nil {
			return err
		}
		s.Push(v)
		return nil
	case *CompoundAssign:
		return r.execCompound(in)
	case *IncDec:
		return r.execIncDec(in)
	case *Cast, *ArithConv:
		to := castTarget(in)
		o, err := s.PopTemp()
		if err != nil {
			return err
		}
		v, err := r.convert(o, to)
		if err != nil {
			return err
		}
		s.Push(v)
		return nil
	case *ArraySubscript:
		return r.execSubscript(in)
	case *MemberAccess:
		return r.execMember(in)
	case *Logical:
		o, err := s.PopTemp()
		if err != nil {
			return err
		}
		t := truthy(o, r.order)
		switch {
		case in.Op == ast.OpLAnd && !t:
			s.Push(r.boolTemp(false))
		case in.Op == ast.OpLOr && t:
			s.Push(r.boolTemp(true))
		default:
			r.agenda.PushInstr(it.Pos, &ToBool{})
			r.agenda.PushNode(in.Right)
		}
		return nil
	case *ToBool:
		o, err := s.PopTemp()
		if err != nil {
			return err
		}
		s.Push(r.boolTemp(truthy(o, r.order)))
		return nil
	case *Call:
		return r.call(it.Pos, in)
	case *Return:
		return r.ret(in)
	case *Branch:
		return r.branch(in)
	case *While:
		return r.loop(it.Pos, in)
	case *For:
		return r.forLoop(it.Pos, in)
	case *Mark:
		return r.fallOff(in)
	case *BreakMark, *ContinueMark:
		return nil
	case *ExitBlock:
		return r.exitBlock()
	case *Exit:
		o, err := s.PopTemp()
		if err != nil {
			return err
		}
		code := int(scalar(o, r.order).Int64())
		r.exit = &code
		return nil
	}
	return defectf("unknown instruction %T", it.Instr)
}

func castTarget(i Instr) *types.Type {
	if c, ok := i.(*Cast); ok {
		return c.To
	}
	return i.(*ArithConv).To
}

// assign converts val to t and stores it at addr.
func (r *Runtime) assign(addr int, t *types.Type, val *TempObject) (*TempObject, error) {
	v, err := r.convert(val, t)
	if err != nil {
		return nil, err
	}
	if len(v.Bytes) != t.Size() {
		return nil, defectf("assigning %d bytes to an object of type %s", len(v.Bytes), t)
	}
	if err := r.store(addr, t, v.Bytes); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *Runtime) execUnary(in *UnaryOp) error {
	o, err := r.stash.PopTemp()
	if err != nil {
		return err
	}
	if in.Op != ast.OpDeref {
		v, err := r.unary(in.Op, o, in.Type)
		if err != nil {
			return err
		}
		r.stash.Push(v)
		return nil
	}
	addr := int(scalar(o, r.order).Int64())
	if addr == 0 {
		return ubf("null pointer dereference")
	}
	switch {
	case in.Type.IsFunction():
		r.stash.Push(&FuncDesignator{Type: in.Type, Addr: addr, Name: r.text[addr]})
	case in.LValue:
		r.stash.Push(pointerTemp(in.Type, addr, r.order))
	case in.Type.IsVoid():
		r.stash.Push(voidTemp())
	default:
		v, err := r.load(addr, in.Type)
		if err != nil {
			return err
		}
		r.stash.Push(v)
	}
	return nil
}

// execCompound performs "a op= b" as a = (T)(a op b), evaluating a's
// address once.
func (r *Runtime) execCompound(in *CompoundAssign) error {
	ptr, addr, err := r.stash.PopPointer()
	if err != nil {
		return err
	}
	rhs, err := r.stash.PopTemp()
	if err != nil {
		return err
	}
	t := ptr.Type.Elem
	cur, err := r.load(addr, t)
	if err != nil {
		return err
	}
	var res *TempObject
	if t.IsPointer() {
		res, err = r.binary(in.Op, cur, rhs, t)
	} else {
		lt, rt := types.UsualArithmetic(t, in.Right), types.UsualArithmetic(t, in.Right)
		if in.Op == ast.OpShl || in.Op == ast.OpShr {
			lt, rt = types.Promote(t), types.Promote(in.Right)
		}
		var a, b *TempObject
		if a, err = r.convert(cur, lt); err != nil {
			return err
		}
		if b, err = r.convert(rhs, rt); err != nil {
			return err
		}
		res, err = r.binary(in.Op, a, b, lt)
	}
	if err != nil {
		return err
	}
	v, err := r.assign(addr, t, res)
	if err != nil {
		return err
	}
	r.stash.Push(v)
	return nil
}

func (r *Runtime) execIncDec(in *IncDec) error {
	ptr, addr, err := r.stash.PopPointer()
	if err != nil {
		return err
	}
	t := ptr.Type.Elem
	cur, err := r.load(addr, t)
	if err != nil {
		return err
	}
	delta := big.NewInt(1)
	if !in.Inc {
		delta.Neg(delta)
	}
	var next *TempObject
	if t.IsPointer() {
		next, err = r.offset(cur, delta)
	} else {
		pt := types.Promote(t)
		var v *big.Int
		if v, err = arith(ast.OpAdd, scalar(cur, r.order), delta, pt); err != nil {
			return err
		}
		next, err = r.encode(v, t)
	}
	if err != nil {
		return err
	}
	if err := r.store(addr, t, next.Bytes); err != nil {
		return err
	}
	if in.Postfix {
		r.stash.Push(&TempObject{Type: t, Bytes: cur.Bytes})
	} else {
		r.stash.Push(next)
	}
	return nil
}

func (r *Runtime) execSubscript(in *ArraySubscript) error {
	idx, err := r.stash.PopTemp()
	if err != nil {
		return err
	}
	base, addr, err := r.stash.PopPointer()
	if err != nil {
		return err
	}
	if addr == 0 {
		return ubf("null pointer dereference")
	}
	p, err := r.offset(base, scalar(idx, r.order))
	if err != nil {
		return err
	}
	elem := int(scalar(p, r.order).Int64())
	if in.LValue {
		r.stash.Push(pointerTemp(in.Elem, elem, r.order))
		return nil
	}
	v, err := r.load(elem, in.Elem)
	if err != nil {
		return err
	}
	r.stash.Push(v)
	return nil
}

func (r *Runtime) execMember(in *MemberAccess) error {
	m := in.Member
	var addr int
	if in.FromValue {
		o, err := r.stash.PopTemp()
		if err != nil {
			return err
		}
		if !o.HasAddr {
			if m.Type.IsArray() {
				return ubf("access to array member %s of a structure value", m.Name)
			}
			b := o.Bytes[m.Offset : m.Offset+m.Type.Size()]
			r.stash.Push(&TempObject{Type: m.Type, Bytes: append([]byte(nil), b...)})
			return nil
		}
		addr = o.Addr
	} else {
		_, a, err := r.stash.PopPointer()
		if err != nil {
			return err
		}
		addr = a
	}
	if addr == 0 {
		return ubf("null pointer dereference")
	}
	addr += m.Offset
	if in.LValue {
		r.stash.Push(pointerTemp(m.Type, addr, r.order))
		return nil
	}
	v, err := r.load(addr, m.Type)
	if err != nil {
		return err
	}
	r.stash.Push(v)
	return nil
}

func (r *Runtime) branch(in *Branch) error {
	c, err := r.stash.PopTemp()
	if err != nil {
		return err
	}
	pick := in.Else
	if truthy(c, r.order) {
		pick = in.Then
	}
	if pick == nil {
		return nil
	}
	if in.Type != nil && in.Type.IsScalar() {
		r.agenda.PushInstr(pick.Position(), &Cast{To: in.Type})
	}
	r.agenda.PushNode(pick)
	return nil
}

// loop re-tests a while or do-while guard and schedules another round.
func (r *Runtime) loop(pos ast.Pos, in *While) error {
	c, err := r.stash.PopTemp()
	if err != nil {
		return err
	}
	if !truthy(c, r.order) {
		return nil
	}
	var cond typed.Expr
	var body typed.Stmt
	switch l := in.Loop.(type) {
	case *typed.While:
		cond, body = l.Cond, l.Body
	case *typed.DoWhile:
		cond, body = l.Cond, l.Body
	default:
		return defectf("unexpected loop %T", in.Loop)
	}
	r.agenda.PushInstr(pos, in)
	r.agenda.PushNode(cond)
	r.agenda.PushInstr(pos, &ContinueMark{})
	r.agenda.PushNode(body)
	return nil
}

func (r *Runtime) forLoop(pos ast.Pos, in *For) error {
	f := in.Loop
	if f.Cond != nil {
		c, err := r.stash.PopTemp()
		if err != nil {
			return err
		}
		if !truthy(c, r.order) {
			return nil
		}
	}
	r.agenda.PushInstr(pos, in)
	if f.Cond != nil {
		r.agenda.PushNode(f.Cond)
	}
	if f.Post != nil {
		r.agenda.PushInstr(pos, &Pop{})
		r.agenda.PushNode(f.Post)
	}
	r.agenda.PushInstr(pos, &ContinueMark{})
	r.agenda.PushNode(f.Body)
	return nil
}

// call enters the function the callee pointer designates. The function
// pointer addresses a text slot holding the function's index.
func (r *Runtime) call(pos ast.Pos, in *Call) error {
	args := make([]*TempObject, in.Arity)
	for i := in.Arity - 1; i >= 0; i-- {
		a, err := r.stash.PopTemp()
		if err != nil {
			return err
		}
		args[i] = a
	}
	_, addr, err := r.stash.PopPointer()
	if err != nil {
		return err
	}
	if addr == 0 {
		return ubf("call through a null function pointer")
	}
	b, err := r.mem.Bytes(addr, types.ShortT().Size(), true)
	if err != nil {
		return err
	}
	idx := int(repr.Decode(b, types.ShortT(), r.order).Int64())
	if idx < 0 {
		return r.callBuiltin(-idx-1, args)
	}
	if idx >= len(r.funcs) {
		return defectf("text slot 0x%x holds unknown function %d", addr, idx)
	}
	fn := r.funcs[idx]
	params := fn.Type.Params
	if len(params) != len(args) {
		return ubf("function %s takes %d arguments but was called with %d", fn.Name, len(params), len(args))
	}
	layout, ok := r.layouts[fn]
	if !ok {
		layout = layoutFrame(fn)
		r.layouts[fn] = layout
	}
	base, err := r.stack.Push(layout)
	if err != nil {
		return err
	}
	r.syms.PushFrame(fn.Name)
	r.entered++
	r.calls = append(r.calls, &activation{fn: fn, base: base, layout: layout})

	r.agenda.PushInstr(fn.Body.Pos, &Mark{Fn: fn})
	r.pushStmts(fn.Body.Items)
	addrs := make([]int, len(params))
	for i, p := range params {
		addrs[i] = base + layout.Slots[p.Name].Offset
		if err := r.declare(p.Name, addrs[i], p.Type); err != nil {
			return err
		}
	}
	for i := len(params) - 1; i >= 0; i-- {
		p := params[i]
		r.agenda.PushInstr(pos, &Pop{})
		r.agenda.PushInstr(pos, &Assign{Type: p.Type})
		r.agenda.PushInstr(pos, &Push{Item: pointerTemp(p.Type, addrs[i], r.order)})
		r.agenda.PushInstr(pos, &Push{Item: args[i]})
	}
	return nil
}

func (r *Runtime) ret(in *Return) error {
	act, err := r.current()
	if err != nil {
		return err
	}
	val := voidTemp()
	if in.HasValue {
		o, err := r.stash.PopTemp()
		if err != nil {
			return err
		}
		if val, err = r.convert(o, act.fn.Type.Ret); err != nil {
			return err
		}
	}
	for {
		it, ok := r.agenda.Pop()
		if !ok {
			return defectf("return from %s found no Mark", act.fn.Name)
		}
		switch it.Instr.(type) {
		case *ExitBlock:
			if err := r.exitBlock(); err != nil {
				return err
			}
		case *Mark:
			return r.finishCall(val)
		}
	}
}

// fallOff handles control reaching the closing brace of a function.
func (r *Runtime) fallOff(in *Mark) error {
	switch {
	case in.Fn.Name == "main":
		return r.finishCall(r.temp(0, types.IntT()))
	case in.Fn.Type.Ret.IsVoid():
		return r.finishCall(voidTemp())
	}
	return ubf("control reached the end of non-void function %s", in.Fn.Name)
}

// finishCall tears down the current frame and leaves val as the call's
// result.
func (r *Runtime) finishCall(val *TempObject) error {
	objs, err := r.syms.PopFrame()
	if err != nil {
		return err
	}
	r.release(objs)
	r.exited++
	if err := r.stack.Pop(); err != nil {
		return err
	}
	r.calls = r.calls[:len(r.calls)-1]
	r.stash.Push(val)
	return nil
}
