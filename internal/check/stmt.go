package check

import (
	"github.com/tinyrange/cstep/internal/ast"
	"github.com/tinyrange/cstep/internal/typed"
	"github.com/tinyrange/cstep/internal/types"
)

func (c *checker) items(items []ast.Stmt) ([]typed.Stmt, error) {
	var out []typed.Stmt
	for _, it := range items {
		s, err := c.stmt(it)
		if err != nil {
			return nil, err
		}
		if s != nil {
			out = append(out, s)
		}
	}
	return out, nil
}

// stmt checks one statement. Declarations that declare no object come
// back as nil.
func (c *checker) stmt(s ast.Stmt) (typed.Stmt, error) {
	switch s := s.(type) {
	case *ast.Declaration:
		d, err := c.declaration(s)
		if err != nil || d == nil {
			return nil, err
		}
		return d, nil
	case *ast.Compound:
		c.enterBlock()
		defer c.exitBlock()
		items, err := c.items(s.Items)
		if err != nil {
			return nil, err
		}
		return &typed.Compound{Pos: s.Pos, Items: items}, nil
	case *ast.ExprStmt:
		if s.X == nil {
			return &typed.ExprStmt{Pos: s.Pos}, nil
		}
		x, err := c.expr(s.X)
		if err != nil {
			return nil, err
		}
		return &typed.ExprStmt{Pos: s.Pos, X: x}, nil
	case *ast.ReturnStmt:
		return c.returnStmt(s)
	case *ast.BreakStmt:
		if c.loops == 0 {
			return nil, errorf(s, "break statement not within a loop")
		}
		return &typed.Break{Pos: s.Pos}, nil
	case *ast.ContinueStmt:
		if c.loops == 0 {
			return nil, errorf(s, "continue statement not within a loop")
		}
		return &typed.Continue{Pos: s.Pos}, nil
	case *ast.IfStmt:
		cond, err := c.condition(s.Cond)
		if err != nil {
			return nil, err
		}
		then, err := c.stmt(s.Then)
		if err != nil {
			return nil, err
		}
		out := &typed.If{Pos: s.Pos, Cond: cond, Then: orEmpty(then, s.Then)}
		if s.Else != nil {
			els, err := c.stmt(s.Else)
			if err != nil {
				return nil, err
			}
			out.Else = orEmpty(els, s.Else)
		}
		return out, nil
	case *ast.WhileStmt:
		cond, err := c.condition(s.Cond)
		if err != nil {
			return nil, err
		}
		body, err := c.loopBody(s.Body)
		if err != nil {
			return nil, err
		}
		return &typed.While{Pos: s.Pos, Cond: cond, Body: body}, nil
	case *ast.DoWhileStmt:
		body, err := c.loopBody(s.Body)
		if err != nil {
			return nil, err
		}
		cond, err := c.condition(s.Cond)
		if err != nil {
			return nil, err
		}
		return &typed.DoWhile{Pos: s.Pos, Body: body, Cond: cond}, nil
	case *ast.ForStmt:
		return c.forStmt(s)
	}
	return nil, errorf(s, "unsupported statement")
}

// orEmpty stands in an empty statement for a declaration that vanished.
func orEmpty(s typed.Stmt, orig ast.Stmt) typed.Stmt {
	if s == nil {
		return &typed.ExprStmt{Pos: orig.Position()}
	}
	return s
}

func (c *checker) loopBody(s ast.Stmt) (typed.Stmt, error) {
	c.loops++
	defer func() { c.loops-- }()
	body, err := c.stmt(s)
	if err != nil {
		return nil, err
	}
	return orEmpty(body, s), nil
}

// condition checks a controlling expression, which must be scalar.
func (c *checker) condition(e ast.Expr) (typed.Expr, error) {
	x, err := c.expr(e)
	if err != nil {
		return nil, err
	}
	if !types.Decay(x.Type()).IsScalar() {
		return nil, errorf(e, "used type %s where scalar is required", x.Type())
	}
	return x, nil
}

func (c *checker) forStmt(s *ast.ForStmt) (typed.Stmt, error) {
	if _, ok := s.Init.(*ast.Declaration); ok {
		c.enterBlock()
		defer c.exitBlock()
	}
	out := &typed.For{Pos: s.Pos}
	if s.Init != nil {
		init, err := c.stmt(s.Init)
		if err != nil {
			return nil, err
		}
		out.Init = init
	}
	if s.Cond != nil {
		cond, err := c.condition(s.Cond)
		if err != nil {
			return nil, err
		}
		out.Cond = cond
	}
	if s.Post != nil {
		post, err := c.expr(s.Post)
		if err != nil {
			return nil, err
		}
		out.Post = post
	}
	body, err := c.loopBody(s.Body)
	if err != nil {
		return nil, err
	}
	out.Body = body
	return out, nil
}

func (c *checker) returnStmt(s *ast.ReturnStmt) (typed.Stmt, error) {
	if s.X == nil {
		if !c.ret.IsVoid() {
			return nil, errorf(s, "non-void function must return a value")
		}
		return &typed.Return{Pos: s.Pos}, nil
	}
	if c.ret.IsVoid() {
		return nil, errorf(s, "void function cannot return a value")
	}
	x, err := c.expr(s.X)
	if err != nil {
		return nil, err
	}
	if !types.AssignCompatible(c.ret, types.Decay(x.Type()), isNullConst(x)) {
		return nil, errorf(s, "incompatible types when returning type %s but %s was expected", x.Type(), c.ret)
	}
	return &typed.Return{Pos: s.Pos, X: x}, nil
}
