package interp

import (
	"github.com/tinyrange/cstep/internal/ast"
	"github.com/tinyrange/cstep/internal/repr"
	"github.com/tinyrange/cstep/internal/typed"
	"github.com/tinyrange/cstep/internal/types"
)

// eval expands a tree node. Elements are pushed in reverse so that they run
// in C's evaluation order.
func (r *Runtime) eval(it Item) error {
	a := r.agenda
	switch n := it.Node.(type) {
	case *typed.TranslationUnit:
		return r.evalUnit(n)
	case *typed.Declaration:
		for i := len(n.List) - 1; i >= 0; i-- {
			a.PushNode(n.List[i])
		}
		return nil
	case *typed.InitDeclarator:
		return r.evalDeclarator(n)
	case *typed.Compound:
		r.enterBlock()
		a.PushInstr(n.Pos, &ExitBlock{})
		r.pushStmts(n.Items)
		return nil
	case *typed.ExprStmt:
		if n.X != nil {
			a.PushInstr(n.Pos, &Pop{})
			a.PushNode(n.X)
		}
		return nil
	case *typed.Return:
		a.PushInstr(n.Pos, &Return{HasValue: n.X != nil})
		if n.X != nil {
			a.PushNode(n.X)
		}
		return nil
	case *typed.Break:
		return r.unwind(func(i Instr) bool { _, ok := i.(*BreakMark); return ok })
	case *typed.Continue:
		return r.unwind(func(i Instr) bool { _, ok := i.(*ContinueMark); return ok })
	case *typed.If:
		a.PushInstr(n.Pos, &Branch{Then: n.Then, Else: elseNode(n.Else)})
		a.PushNode(n.Cond)
		return nil
	case *typed.While:
		a.PushInstr(n.Pos, &BreakMark{})
		a.PushInstr(n.Pos, &While{Loop: n})
		a.PushNode(n.Cond)
		return nil
	case *typed.DoWhile:
		a.PushInstr(n.Pos, &BreakMark{})
		a.PushInstr(n.Pos, &While{Loop: n})
		a.PushNode(n.Cond)
		a.PushInstr(n.Pos, &ContinueMark{})
		a.PushNode(n.Body)
		return nil
	case *typed.For:
		if _, ok := n.Init.(*typed.Declaration); ok {
			r.enterBlock()
			a.PushInstr(n.Pos, &ExitBlock{})
		}
		a.PushInstr(n.Pos, &BreakMark{})
		a.PushInstr(n.Pos, &For{Loop: n})
		if n.Cond != nil {
			a.PushNode(n.Cond)
		}
		if n.Init != nil {
			a.PushNode(n.Init)
		}
		return nil
	case typed.Expr:
		return r.evalExpr(n, it.LValue)
	}
	return defectf("cannot evaluate %T", it.Node)
}

// elseNode keeps a missing else branch a nil interface.
func elseNode(s typed.Stmt) typed.Node {
	if s == nil {
		return nil
	}
	return s
}

func (r *Runtime) pushStmts(items []typed.Stmt) {
	for i := len(items) - 1; i >= 0; i-- {
		r.agenda.PushNode(items[i])
	}
}

// unwind discards pending work up to the first element matching target,
// closing the block scopes it leaves.
func (r *Runtime) unwind(target func(Instr) bool) error {
	for {
		it, ok := r.agenda.Pop()
		if !ok {
			return defectf("no enclosing loop on the agenda")
		}
		switch it.Instr.(type) {
		case *ExitBlock:
			if err := r.exitBlock(); err != nil {
				return err
			}
		case *Mark:
			return defectf("loop control crossed a function boundary")
		}
		if it.Instr != nil && target(it.Instr) {
			return nil
		}
	}
}

// evalUnit lays out the text and data segments and schedules the
// initializers of file-scope objects.
func (r *Runtime) evalUnit(tu *typed.TranslationUnit) error {
	if err := r.loadText(); err != nil {
		return err
	}
	type pending struct {
		d    *typed.InitDeclarator
		addr int
	}
	var globals []pending
	for _, ext := range tu.Decls {
		decl, ok := ext.(*typed.Declaration)
		if !ok {
			continue
		}
		for _, d := range decl.List {
			if d.Type.IsFunction() {
				continue
			}
			size := d.Type.Size()
			addr, err := r.allocData(d.Type, size)
			if err != nil {
				return err
			}
			if err := r.mem.Fill(addr, size, 0); err != nil {
				return err
			}
			r.inits.Add(addr, size)
			if err := r.declare(d.Name, addr, d.Type); err != nil {
				return err
			}
			globals = append(globals, pending{d, addr})
		}
	}
	for i := len(globals) - 1; i >= 0; i-- {
		g := globals[i]
		if err := r.scheduleInit(g.d.Pos, g.addr, g.d.Type, g.d.Init); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runtime) evalDeclarator(d *typed.InitDeclarator) error {
	act, err := r.current()
	if err != nil {
		return err
	}
	slot, ok := act.layout.Slots[d.QualName]
	if !ok {
		return defectf("no frame slot for %s", d.QualName)
	}
	addr := act.base + slot.Offset
	if err := r.declare(d.Name, addr, d.Type); err != nil {
		return err
	}
	return r.scheduleInit(d.Pos, addr, d.Type, d.Init)
}

// scheduleInit queues the assignments an initializer performs. A brace
// list first zero-fills the whole object.
func (r *Runtime) scheduleInit(pos ast.Pos, addr int, t *types.Type, init typed.Initializer) error {
	switch in := init.(type) {
	case nil:
		return nil
	case *typed.InitList:
		if err := r.mem.Fill(addr, t.Size(), 0); err != nil {
			return err
		}
		r.inits.Add(addr, t.Size())
		for i := len(in.Items) - 1; i >= 0; i-- {
			item := in.Items[i]
			r.scheduleAssign(pos, addr+typed.Offset(t, item.Path), item.Type, item.Init)
		}
		return nil
	case typed.Expr:
		r.scheduleAssign(pos, addr, t, in)
		return nil
	}
	return defectf("unknown initializer %T", init)
}

// scheduleAssign queues "*addr = x" with the result discarded.
func (r *Runtime) scheduleAssign(pos ast.Pos, addr int, t *types.Type, x typed.Expr) {
	r.agenda.PushInstr(pos, &Pop{})
	r.agenda.PushInstr(pos, &Assign{Type: t})
	r.agenda.PushInstr(pos, &Push{Item: pointerTemp(t, addr, r.order)})
	r.agenda.PushNode(x)
}

func (r *Runtime) evalExpr(x typed.Expr, lv bool) error {
	if lv && !x.LValue() {
		return defectf("%T evaluated as an lvalue", x)
	}
	a := r.agenda
	pos := x.Position()
	switch x := x.(type) {
	case *typed.IntConst:
		b, err := repr.Encode(x.Value, x.T, r.order)
		if err != nil {
			return err
		}
		r.stash.Push(&TempObject{Type: x.T, Bytes: b})
	case *typed.StringLit:
		addr, err := r.stringAddr(x)
		if err != nil {
			return err
		}
		if lv {
			r.stash.Push(pointerTemp(x.T, addr, r.order))
		} else {
			r.stash.Push(&TempObject{Type: x.T, Addr: addr, HasAddr: true})
		}
	case *typed.Ident:
		o, ok := r.syms.Lookup(x.Name)
		if !ok {
			return ubf("undefined reference to %s", x.Name)
		}
		switch {
		case o.Type.IsFunction():
			r.stash.Push(&FuncDesignator{Type: o.Type, Addr: o.Addr, Name: o.Name})
		case lv:
			r.stash.Push(pointerTemp(o.Type, o.Addr, r.order))
		default:
			v, err := r.load(o.Addr, o.Type)
			if err != nil {
				return err
			}
			r.stash.Push(v)
		}
	case *typed.Paren:
		if lv {
			a.PushLValue(x.X)
		} else {
			a.PushNode(x.X)
		}
	case *typed.Comma:
		for i := len(x.List) - 1; i >= 0; i-- {
			a.PushNode(x.List[i])
			if i > 0 {
				a.PushInstr(pos, &Pop{})
			}
		}
	case *typed.Assign:
		if x.Op.Compound {
			a.PushInstr(pos, &CompoundAssign{Op: x.Op.Bin, Right: types.Decay(x.Right.Type())})
		} else {
			a.PushInstr(pos, &Assign{Type: x.Left.Type()})
		}
		a.PushLValue(x.Left)
		a.PushNode(x.Right)
	case *typed.Cond:
		a.PushInstr(pos, &Branch{Then: x.Then, Else: x.Else, Type: x.T})
		a.PushNode(x.Cond)
	case *typed.Binary:
		r.evalBinary(x)
	case *typed.Cast:
		a.PushInstr(pos, &Cast{To: x.T})
		a.PushNode(x.X)
	case *typed.Sizeof:
		r.stash.Push(r.temp(int64(x.Of.Size()), x.T))
	case *typed.Unary:
		r.evalUnary(x, lv)
	case *typed.IncDec:
		a.PushInstr(pos, &IncDec{Inc: x.Inc, Postfix: x.Postfix})
		a.PushLValue(x.X)
	case *typed.Index:
		a.PushInstr(pos, &ArraySubscript{Elem: x.T, LValue: lv})
		a.PushNode(x.Index)
		a.PushNode(x.Base)
	case *typed.Call:
		a.PushInstr(pos, &Call{Arity: len(x.Args)})
		for i := len(x.Args) - 1; i >= 0; i-- {
			a.PushNode(x.Args[i])
		}
		a.PushNode(x.Fn)
	case *typed.Member:
		return r.evalMember(x, lv)
	default:
		return defectf("cannot evaluate expression %T", x)
	}
	return nil
}

func (r *Runtime) evalBinary(x *typed.Binary) {
	a := r.agenda
	pos := x.Position()
	if x.Op == ast.OpLAnd || x.Op == ast.OpLOr {
		a.PushInstr(pos, &Logical{Op: x.Op, Right: x.Right})
		a.PushNode(x.Left)
		return
	}
	lt, rt := types.Decay(x.Left.Type()), types.Decay(x.Right.Type())
	a.PushInstr(pos, &BinaryOp{Op: x.Op, Type: x.T})
	if !lt.IsArithmetic() || !rt.IsArithmetic() {
		a.PushNode(x.Right)
		a.PushNode(x.Left)
		return
	}
	var cl, cr *types.Type
	switch {
	case x.Op == ast.OpShl || x.Op == ast.OpShr:
		cl, cr = types.Promote(lt), types.Promote(rt)
	case x.Op.IsComparison():
		cl = types.UsualArithmetic(lt, rt)
		cr = cl
	default:
		cl, cr = x.T, x.T
	}
	a.PushInstr(pos, &ArithConv{To: cr})
	a.PushNode(x.Right)
	a.PushInstr(pos, &ArithConv{To: cl})
	a.PushNode(x.Left)
}

func (r *Runtime) evalUnary(x *typed.Unary, lv bool) {
	a := r.agenda
	pos := x.Position()
	switch x.Op {
	case ast.OpAddr:
		switch inner := x.X.(type) {
		case *typed.Unary:
			if inner.Op == ast.OpDeref {
				// &*p is p without an access
				a.PushNode(inner.X)
				return
			}
		}
		if x.X.Type().IsFunction() {
			a.PushNode(x.X)
		} else {
			a.PushLValue(x.X)
		}
	case ast.OpDeref:
		a.PushInstr(pos, &UnaryOp{Op: x.Op, Type: x.T, LValue: lv})
		a.PushNode(x.X)
	case ast.OpNot:
		a.PushInstr(pos, &UnaryOp{Op: x.Op, Type: x.T})
		a.PushNode(x.X)
	default:
		a.PushInstr(pos, &UnaryOp{Op: x.Op, Type: x.T})
		a.PushInstr(pos, &ArithConv{To: x.T})
		a.PushNode(x.X)
	}
}

func (r *Runtime) evalMember(x *typed.Member, lv bool) error {
	a := r.agenda
	pos := x.Position()
	st := x.X.Type()
	if x.Arrow {
		st = types.Decay(st).Elem
	}
	m, ok := st.Member(x.Name)
	if !ok {
		return defectf("no member %s in %s", x.Name, st)
	}
	switch {
	case x.Arrow:
		a.PushInstr(pos, &MemberAccess{Member: m, LValue: lv})
		a.PushNode(x.X)
	case x.X.LValue():
		a.PushInstr(pos, &MemberAccess{Member: m, LValue: lv})
		a.PushLValue(x.X)
	default:
		a.PushInstr(pos, &MemberAccess{Member: m, FromValue: true})
		a.PushNode(x.X)
	}
	return nil
}
