package check

import (
	"math/big"

	"github.com/tinyrange/cstep/internal/ast"
	"github.com/tinyrange/cstep/internal/typed"
	"github.com/tinyrange/cstep/internal/types"
)

// initializer checks the initializer of an object of type t. An array of
// unknown length takes its length from the initializer, so the completed
// type is returned as well.
func (c *checker) initializer(t *types.Type, init ast.Initializer) (typed.Initializer, *types.Type, error) {
	list, isList := init.(*ast.InitList)
	if isList && charArray(t) && len(list.Items) == 1 && len(list.Items[0].Designators) == 0 {
		// char s[] = {"text"}
		if e, ok := list.Items[0].Init.(*ast.StringLit); ok {
			init, isList = e, false
		}
	}
	switch {
	case isList && t.IsAggregate():
		items, n, err := c.initList(t, list)
		if err != nil {
			return nil, nil, err
		}
		if t.IsArray() && t.Len < 0 {
			if n == 0 {
				return nil, nil, errorf(list, "zero-size array initializer")
			}
			if _, ok := types.ArraySize(n, t.Elem.Size()); !ok {
				return nil, nil, errorf(list, "array of %d elements of type %s is too large", n, t.Elem)
			}
			t = types.ArrayOf(t.Elem, n)
		}
		return &typed.InitList{Pos: list.Pos, Type: t, Items: items}, t, nil
	case isList:
		x, err := c.braced(t, list)
		if err != nil {
			return nil, nil, err
		}
		return x, t, nil
	}
	x, err := c.expr(init.(ast.Expr))
	if err != nil {
		return nil, nil, err
	}
	if s, ok := stringLit(x); ok && charArray(t) {
		if t.Len < 0 {
			t = types.ArrayOf(t.Elem, len(s.Value)+1)
		}
		items, err := expandString(s, t, nil)
		if err != nil {
			return nil, nil, err
		}
		return &typed.InitList{Pos: s.Pos, Type: t, Items: items}, t, nil
	}
	if t.IsArray() {
		return nil, nil, errorf(init, "array initializer must be an initializer list")
	}
	if err := checkInit(init, t, x); err != nil {
		return nil, nil, err
	}
	return x, t, nil
}

// braced checks "{ x }" used for a scalar.
func (c *checker) braced(t *types.Type, list *ast.InitList) (typed.Expr, error) {
	if len(list.Items) != 1 || len(list.Items[0].Designators) > 0 {
		return nil, errorf(list, "scalar initializer must have exactly one element")
	}
	e, ok := list.Items[0].Init.(ast.Expr)
	if !ok {
		return nil, errorf(list, "too many braces around scalar initializer")
	}
	x, err := c.expr(e)
	if err != nil {
		return nil, err
	}
	if err := checkInit(e, t, x); err != nil {
		return nil, err
	}
	return x, nil
}

func checkInit(n ast.Node, t *types.Type, x typed.Expr) error {
	if !types.AssignCompatible(t, rv(x), isNullConst(x)) {
		return errorf(n, "incompatible types when initializing type %s using type %s", t, x.Type())
	}
	return nil
}

func stringLit(x typed.Expr) (*typed.StringLit, bool) {
	for {
		p, ok := x.(*typed.Paren)
		if !ok {
			break
		}
		x = p.X
	}
	s, ok := x.(*typed.StringLit)
	return s, ok
}

func charArray(t *types.Type) bool { return t.IsArray() && t.Elem.IsCharacter() }

// expandString turns a string literal initializing a char array into one
// item per element. The terminating NUL is dropped when the array has no
// room for it.
func expandString(s *typed.StringLit, t *types.Type, at []int) ([]*typed.InitItem, error) {
	if len(s.Value) > t.Len {
		return nil, errorf(s, "initializer-string for char array is too long")
	}
	var items []*typed.InitItem
	for i := 0; i < t.Len && i <= len(s.Value); i++ {
		var v int64
		if i < len(s.Value) {
			v = int64(int8(s.Value[i]))
		}
		ch := &typed.IntConst{Info: info(s, t.Elem, false), Value: big.NewInt(v)}
		if t.Elem.K == types.UChar {
			ch.Value = big.NewInt(v & 0xff)
		}
		items = append(items, &typed.InitItem{Path: appendPath(at, i), Type: t.Elem, Init: ch})
	}
	return items, nil
}

func appendPath(p []int, i int) []int {
	out := make([]int, len(p), len(p)+1)
	copy(out, p)
	return append(out, i)
}

// initList flattens a brace initializer for aggregate t into leaf items.
// The second result is one past the highest top-level index written.
func (c *checker) initList(t *types.Type, list *ast.InitList) ([]*typed.InitItem, int, error) {
	var items []*typed.InitItem
	top := 0
	pos := []int{0}
	for _, it := range list.Items {
		var path []int
		if len(it.Designators) > 0 {
			p, err := c.designate(t, it.Designators)
			if err != nil {
				return nil, 0, err
			}
			path = p
		} else {
			if pos == nil || !inBounds(t, pos) {
				return nil, 0, errorf(it, "excess elements in initializer")
			}
			path = pos
		}
		sub := typeAt(t, path)

		switch init := it.Init.(type) {
		case *ast.InitList:
			if sub.IsAggregate() {
				inner, _, err := c.initList(sub, init)
				if err != nil {
					return nil, 0, err
				}
				for _, in := range inner {
					in.Path = append(append([]int(nil), path...), in.Path...)
				}
				items = append(items, inner...)
			} else {
				x, err := c.braced(sub, init)
				if err != nil {
					return nil, 0, err
				}
				items = append(items, &typed.InitItem{Path: path, Type: sub, Init: x})
			}
		case ast.Expr:
			x, err := c.expr(init)
			if err != nil {
				return nil, 0, err
			}
			// without braces the expression initializes the first scalar
			// (or compatible struct) at or below the designated position
			for {
				if s, ok := stringLit(x); ok && charArray(sub) {
					expanded, err := expandString(s, sub, path)
					if err != nil {
						return nil, 0, err
					}
					items = append(items, expanded...)
					break
				}
				if sub.IsAggregate() && !(sub.IsStruct() && types.Compatible(sub, rv(x))) {
					next, ok := sub.FirstNested()
					if !ok {
						return nil, 0, errorf(it, "cannot initialize empty aggregate %s", sub)
					}
					path, sub = appendPath(path, 0), next
					continue
				}
				if err := checkInit(init, sub, x); err != nil {
					return nil, 0, err
				}
				items = append(items, &typed.InitItem{Path: path, Type: sub, Init: x})
				break
			}
		}
		if path[0]+1 > top {
			top = path[0] + 1
		}
		pos = advance(t, path)
	}
	return items, top, nil
}

// designate resolves a designator chain to a path.
func (c *checker) designate(t *types.Type, ds []ast.Designator) ([]int, error) {
	var path []int
	cur := t
	for _, d := range ds {
		switch d := d.(type) {
		case *ast.IndexDesignator:
			if !cur.IsArray() {
				return nil, errorf(d, "array index in non-array initializer")
			}
			i, err := c.constInt(d.Index)
			if err != nil {
				return nil, err
			}
			if i < 0 || (cur.Len >= 0 && i >= cur.Len) {
				return nil, errorf(d, "array index %d in initializer exceeds array bounds", i)
			}
			path, cur = append(path, i), cur.Elem
		case *ast.MemberDesignator:
			if !cur.IsStruct() {
				return nil, errorf(d, "field designator %s does not refer to a struct", d.Name)
			}
			i := memberIndex(cur, d.Name)
			if i < 0 {
				return nil, errorf(d, "field designator %s does not refer to any field in %s", d.Name, cur)
			}
			path, cur = append(path, i), cur.Def.Members[i].Type
		}
	}
	return path, nil
}

func memberIndex(t *types.Type, name string) int {
	for i, m := range t.Def.Members {
		if m.Name == name {
			return i
		}
	}
	return -1
}

// typeAt returns the type of the sub-object at path.
func typeAt(t *types.Type, path []int) *types.Type {
	for _, i := range path {
		if t.IsArray() {
			t = t.Elem
		} else {
			t = t.Def.Members[i].Type
		}
	}
	return t
}

// inBounds reports whether every index of path names a sub-object. The
// outermost array may be of unknown length.
func inBounds(t *types.Type, path []int) bool {
	for depth, i := range path {
		switch {
		case t.IsArray():
			if i < 0 || (i >= t.Len && !(depth == 0 && t.Len < 0)) {
				return false
			}
			t = t.Elem
		case t.IsStruct():
			if i < 0 || i >= len(t.Def.Members) {
				return false
			}
			t = t.Def.Members[i].Type
		default:
			return false
		}
	}
	return true
}

// advance returns the position following path, moving up a level when a
// sub-aggregate is exhausted. It returns nil once t is full.
func advance(t *types.Type, path []int) []int {
	p := append([]int(nil), path...)
	for len(p) > 0 {
		p[len(p)-1]++
		if inBounds(t, p) {
			return p
		}
		p = p[:len(p)-1]
	}
	return nil
}
