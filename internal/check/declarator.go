package check

import (
	"sort"
	"strings"

	"github.com/tinyrange/cstep/internal/ast"
	"github.com/tinyrange/cstep/internal/types"
)

// specKinds maps a sorted multiset of type keywords to its type.
var specKinds = map[string]types.Kind{
	"void":                   types.Void,
	"_Bool":                  types.Bool,
	"char":                   types.Char,
	"char signed":            types.SChar,
	"char unsigned":          types.UChar,
	"short":                  types.Short,
	"int short":              types.Short,
	"short signed":           types.Short,
	"int short signed":       types.Short,
	"short unsigned":         types.UShort,
	"int short unsigned":     types.UShort,
	"int":                    types.Int,
	"signed":                 types.Int,
	"int signed":             types.Int,
	"unsigned":               types.UInt,
	"int unsigned":           types.UInt,
	"long":                   types.Long,
	"int long":               types.Long,
	"long signed":            types.Long,
	"int long signed":        types.Long,
	"long unsigned":          types.ULong,
	"int long unsigned":      types.ULong,
	"long long":              types.LongLong,
	"int long long":          types.LongLong,
	"long long signed":       types.LongLong,
	"int long long signed":   types.LongLong,
	"long long unsigned":     types.ULongLong,
	"int long long unsigned": types.ULongLong,
}

// baseType resolves declaration specifiers to a type.
func (c *checker) baseType(s *ast.DeclSpecs) (*types.Type, error) {
	n := 0
	if len(s.Keywords) > 0 {
		n++
	}
	if s.Struct != nil {
		n++
	}
	if s.Name != "" {
		n++
	}
	if n != 1 {
		return nil, errorf(s, "invalid combination of type specifiers")
	}
	switch {
	case s.Struct != nil:
		return c.structType(s.Struct)
	case s.Name != "":
		sym, ok := c.env.lookup(s.Name)
		if !ok || !sym.typedef {
			return nil, errorf(s, "unknown type name %s", s.Name)
		}
		return sym.t, nil
	}
	kws := append([]string(nil), s.Keywords...)
	sort.Strings(kws)
	k, ok := specKinds[strings.Join(kws, " ")]
	if !ok {
		return nil, errorf(s, "invalid combination of type specifiers: %s", strings.Join(s.Keywords, " "))
	}
	return types.Basic(k), nil
}

func (c *checker) structType(st *ast.StructSpec) (*types.Type, error) {
	if !st.HasBody {
		if d, ok := c.env.lookupTag(st.Tag); ok {
			return types.StructOf(d), nil
		}
		return types.StructOf(c.env.newTag(st.Tag, st.Pos)), nil
	}
	var def *types.StructDef
	if st.Tag != "" {
		if d, ok := c.env.localTag(st.Tag); ok {
			if d.Complete {
				return nil, errorf(st, "redefinition of struct %s", st.Tag)
			}
			def = d
		}
	}
	if def == nil {
		def = c.env.newTag(st.Tag, st.Pos)
	}
	var members []types.Member
	seen := map[string]bool{}
	for _, f := range st.Fields {
		if f.Specs.Typedef {
			return nil, errorf(f, "typedef in struct member")
		}
		base, err := c.baseType(f.Specs)
		if err != nil {
			return nil, err
		}
		for _, id := range f.List {
			name, t, err := c.declType(base, id.Declarator)
			if err != nil {
				return nil, err
			}
			if seen[name] {
				return nil, errorf(id, "duplicate member %s", name)
			}
			seen[name] = true
			if !memberType(t) {
				return nil, errorf(id, "member %s has incomplete type %s", name, t)
			}
			members = append(members, types.Member{Name: name, Type: t})
		}
	}
	if len(members) == 0 {
		return nil, errorf(st, "struct %s has no members", def.Name())
	}
	def.SetMembers(members)
	return types.StructOf(def), nil
}

// memberType accepts complete object types and structs whose body may
// still follow; the layout pass settles the latter.
func memberType(t *types.Type) bool {
	for t.IsArray() && t.Len >= 0 {
		t = t.Elem
	}
	return t.IsStruct() || t.IsComplete()
}

// declType applies a declarator to base, returning the declared name and
// its type. Parts run from the identifier outwards, so the outermost
// derivation is applied first.
func (c *checker) declType(base *types.Type, d *ast.Declarator) (string, *types.Type, error) {
	if d == nil {
		return "", base, nil
	}
	name, t := "", base
	for i := len(d.Parts) - 1; i >= 0; i-- {
		switch p := d.Parts[i].(type) {
		case *ast.IdentPart:
			name = p.Name
		case *ast.PointerPart:
			t = types.PointerTo(t)
		case *ast.ArrayPart:
			if t.IsFunction() {
				return "", nil, errorf(p, "array of functions is not allowed")
			}
			if t.IsVoid() || (t.IsArray() && t.Len < 0) {
				return "", nil, errorf(p, "array has incomplete element type %s", t)
			}
			n := -1
			if p.Len != nil {
				v, err := c.constInt(p.Len)
				if err != nil {
					return "", nil, err
				}
				if v <= 0 {
					return "", nil, errorf(p, "array size must be positive")
				}
				if _, ok := types.ArraySize(v, t.Size()); !ok {
					return "", nil, errorf(p, "array of %d elements of type %s is too large", v, t)
				}
				n = v
			}
			t = types.ArrayOf(t, n)
		case *ast.FuncPart:
			params, err := c.params(p)
			if err != nil {
				return "", nil, err
			}
			ft, err := types.FuncOf(t, params)
			if err != nil {
				return "", nil, errorf(p, "%v", err)
			}
			t = ft
		}
	}
	return name, t, nil
}

func (c *checker) params(fp *ast.FuncPart) ([]types.Param, error) {
	// parameter names live in a scope of their own
	c.env.enter()
	defer c.env.exit()
	var out []types.Param
	for i, pd := range fp.Params {
		base, err := c.baseType(pd.Specs)
		if err != nil {
			return nil, err
		}
		name, t, err := c.declType(base, pd.Declarator)
		if err != nil {
			return nil, err
		}
		if t.IsVoid() {
			if len(fp.Params) == 1 && name == "" && i == 0 {
				return nil, nil
			}
			return nil, errorf(pd, "parameter has void type")
		}
		if name != "" {
			if _, dup := c.env.local(name); dup {
				return nil, errorf(pd, "redefinition of parameter %s", name)
			}
			c.env.bind(name, &symbol{t: t})
		}
		out = append(out, types.Param{Name: name, Type: t})
	}
	return out, nil
}

func (c *checker) typeName(tn *ast.TypeName) (*types.Type, error) {
	base, err := c.baseType(tn.Specs)
	if err != nil {
		return nil, err
	}
	_, t, err := c.declType(base, tn.Declarator)
	return t, err
}
