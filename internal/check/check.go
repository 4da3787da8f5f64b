// Package check elaborates the untyped syntax tree into the typed tree. It
// resolves declarators to types, lays out structures, applies the C typing
// rules to every expression and rejects ill-typed programs.
package check

import (
	"fmt"
	"strings"

	"github.com/tinyrange/cstep/internal/ast"
	"github.com/tinyrange/cstep/internal/builtin"
	"github.com/tinyrange/cstep/internal/typed"
	"github.com/tinyrange/cstep/internal/types"
)

type checker struct {
	env *env
	ret *types.Type // return type of the function being checked
	// loops counts enclosing loops for break and continue
	loops int
	// path names the enclosing blocks; blocks counts the children already
	// opened at each level.
	path   []string
	blocks []int
}

// Check type-checks a parsed file.
func Check(f *ast.File) (*typed.TranslationUnit, error) {
	c := &checker{env: newEnv()}
	for _, b := range builtin.All() {
		c.env.bind(b.Name, &symbol{t: b.Type, defined: true})
	}
	c.predeclareTags(f)
	tu := &typed.TranslationUnit{Pos: f.Pos}
	for _, d := range f.Decls {
		switch d := d.(type) {
		case *ast.FuncDef:
			fd, err := c.funcDef(d)
			if err != nil {
				return nil, err
			}
			tu.Decls = append(tu.Decls, fd)
			if fd.Name == "main" {
				tu.Main = fd
			}
		case *ast.Declaration:
			decl, err := c.declaration(d)
			if err != nil {
				return nil, err
			}
			if decl != nil {
				tu.Decls = append(tu.Decls, decl)
			}
		}
	}
	for _, s := range c.env.defs {
		if !s.def.Complete {
			continue
		}
		if err := s.def.Layout(); err != nil {
			return nil, errorf(s.pos, "%v", err)
		}
	}
	if err := c.checkDefinitions(f, tu); err != nil {
		return nil, err
	}
	return tu, nil
}

// predeclareTags makes every file-scope struct tag visible before any
// declarator is elaborated, so bodies may refer to later definitions.
func (c *checker) predeclareTags(f *ast.File) {
	for _, d := range f.Decls {
		var specs *ast.DeclSpecs
		switch d := d.(type) {
		case *ast.FuncDef:
			specs = d.Specs
		case *ast.Declaration:
			specs = d.Specs
		}
		if st := specs.Struct; st != nil && st.HasBody && st.Tag != "" {
			if _, ok := c.env.localTag(st.Tag); !ok {
				c.env.newTag(st.Tag, st.Pos)
			}
		}
	}
}

func (c *checker) checkDefinitions(f *ast.File, tu *typed.TranslationUnit) error {
	// every object type must have been completed by now
	for _, d := range tu.Decls {
		decl, ok := d.(*typed.Declaration)
		if !ok {
			continue
		}
		for _, id := range decl.List {
			if !id.Type.IsFunction() && !id.Type.IsComplete() {
				return errorf(id, "variable %s has incomplete type %s", id.Name, id.Type)
			}
		}
	}
	if tu.Main == nil {
		return errorf(f, "no main function defined")
	}
	mt := tu.Main.Type
	if len(mt.Params) != 0 {
		return errorf(tu.Main, "main must take no parameters")
	}
	if !types.Compatible(mt.Ret, types.IntT()) {
		return errorf(tu.Main, "main must return int")
	}
	return nil
}

// declare binds name in the current scope, merging compatible file-scope
// function declarations.
func (c *checker) declare(n ast.Node, name string, sym *symbol) error {
	prev, ok := c.env.local(name)
	if !ok {
		c.env.bind(name, sym)
		return nil
	}
	if prev.typedef || sym.typedef || !prev.t.IsFunction() || !sym.t.IsFunction() {
		return errorf(n, "redeclaration of %s", name)
	}
	if !types.Compatible(prev.t, sym.t) {
		return errorf(n, "conflicting types for %s", name)
	}
	if prev.defined && sym.defined {
		return errorf(n, "redefinition of %s", name)
	}
	prev.defined = prev.defined || sym.defined
	return nil
}

func (c *checker) funcDef(fd *ast.FuncDef) (*typed.FunctionDef, error) {
	if fd.Specs.Typedef {
		return nil, errorf(fd, "function definition declared typedef")
	}
	base, err := c.baseType(fd.Specs)
	if err != nil {
		return nil, err
	}
	name, t, err := c.declType(base, fd.Declarator)
	if err != nil {
		return nil, err
	}
	if !t.IsFunction() {
		return nil, errorf(fd, "%s is not a function", name)
	}
	if err := c.declare(fd, name, &symbol{t: t, defined: true}); err != nil {
		return nil, err
	}
	if !t.Ret.IsVoid() && !t.Ret.IsComplete() && !t.Ret.IsStruct() {
		return nil, errorf(fd, "function %s returns incomplete type %s", name, t.Ret)
	}

	c.env.enter()
	defer c.env.exit()
	for _, p := range t.Params {
		if p.Name == "" {
			return nil, errorf(fd, "parameter name omitted in definition of %s", name)
		}
		c.env.bind(p.Name, &symbol{t: p.Type})
	}
	c.ret = t.Ret
	c.loops = 0
	c.path, c.blocks = nil, []int{0}
	items, err := c.items(fd.Body.Items)
	if err != nil {
		return nil, err
	}
	body := &typed.Compound{Pos: fd.Body.Pos, Items: items}
	return &typed.FunctionDef{Pos: fd.Pos, Name: name, Type: t, Body: body}, nil
}

// qualify prefixes name with the enclosing block path.
func (c *checker) qualify(name string) string {
	if len(c.path) == 0 {
		return name
	}
	return strings.Join(c.path, "::") + "::" + name
}

// enterBlock opens a nested block scope and names it.
func (c *checker) enterBlock() {
	n := len(c.blocks) - 1
	c.path = append(c.path, fmt.Sprintf("block%d", c.blocks[n]))
	c.blocks[n]++
	c.blocks = append(c.blocks, 0)
	c.env.enter()
}

func (c *checker) exitBlock() {
	c.env.exit()
	c.path = c.path[:len(c.path)-1]
	c.blocks = c.blocks[:len(c.blocks)-1]
}

func (c *checker) declaration(d *ast.Declaration) (*typed.Declaration, error) {
	base, err := c.baseType(d.Specs)
	if err != nil {
		return nil, err
	}
	out := &typed.Declaration{Pos: d.Pos}
	for _, id := range d.List {
		name, t, err := c.declType(base, id.Declarator)
		if err != nil {
			return nil, err
		}
		if d.Specs.Typedef {
			if err := c.declare(id, name, &symbol{t: t, typedef: true}); err != nil {
				return nil, err
			}
			continue
		}
		if t.IsFunction() {
			if !c.env.fileScope() {
				return nil, errorf(id, "function %s must be declared at file scope", name)
			}
			if id.Init != nil {
				return nil, errorf(id, "function %s cannot be initialized", name)
			}
			if err := c.declare(id, name, &symbol{t: t}); err != nil {
				return nil, err
			}
			out.List = append(out.List, &typed.InitDeclarator{Pos: id.Pos, Name: name, QualName: name, Type: t, FileScope: true})
			continue
		}
		if t.IsVoid() {
			return nil, errorf(id, "variable %s declared void", name)
		}
		var init typed.Initializer
		if id.Init != nil {
			if init, t, err = c.initializer(t, id.Init); err != nil {
				return nil, err
			}
		} else if t.IsArray() && t.Len < 0 {
			return nil, errorf(id, "array size missing in %s", name)
		}
		if !c.env.fileScope() {
			if err := t.Layout(); err != nil || !t.IsComplete() {
				return nil, errorf(id, "variable %s has incomplete type %s", name, t)
			}
		}
		if err := c.declare(id, name, &symbol{t: t}); err != nil {
			return nil, err
		}
		out.List = append(out.List, &typed.InitDeclarator{
			Pos:       id.Pos,
			Name:      name,
			QualName:  c.qualify(name),
			Type:      t,
			Init:      init,
			FileScope: c.env.fileScope(),
		})
	}
	if len(out.List) == 0 {
		return nil, nil
	}
	return out, nil
}
