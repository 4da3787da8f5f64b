package parser

import (
	"github.com/tinyrange/cstep/internal/ast"
	"github.com/tinyrange/cstep/internal/lexer"
)

func (p *Parser) parseCompound() (*ast.Compound, error) {
	pos := p.pos()
	if _, err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	p.enterScope()
	defer p.exitScope()
	c := &ast.Compound{Pos: pos}
	for p.tok.Type != lexer.RBRACE && p.tok.Type != lexer.EOF {
		var item ast.Stmt
		var err error
		if p.startsDecl(p.tok) {
			item, err = p.parseDeclaration()
		} else {
			item, err = p.parseStmt()
		}
		if err != nil {
			return nil, err
		}
		c.Items = append(c.Items, item)
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	pos := p.pos()
	switch p.tok.Type {
	case lexer.LBRACE:
		return p.parseCompound()
	case lexer.SEMI:
		p.next()
		return &ast.ExprStmt{Pos: pos}, nil
	case lexer.KW_RETURN:
		p.next()
		s := &ast.ReturnStmt{Pos: pos}
		if p.tok.Type != lexer.SEMI {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			s.X = e
		}
		if _, err := p.expect(lexer.SEMI); err != nil {
			return nil, err
		}
		return s, nil
	case lexer.KW_BREAK, lexer.KW_CONTINUE:
		tt := p.tok.Type
		p.next()
		if _, err := p.expect(lexer.SEMI); err != nil {
			return nil, err
		}
		if tt == lexer.KW_BREAK {
			return &ast.BreakStmt{Pos: pos}, nil
		}
		return &ast.ContinueStmt{Pos: pos}, nil
	case lexer.KW_IF:
		p.next()
		cond, err := p.parseParenExpr()
		if err != nil {
			return nil, err
		}
		then, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		s := &ast.IfStmt{Pos: pos, Cond: cond, Then: then}
		if p.tok.Type == lexer.KW_ELSE {
			p.next()
			if s.Else, err = p.parseStmt(); err != nil {
				return nil, err
			}
		}
		return s, nil
	case lexer.KW_WHILE:
		p.next()
		cond, err := p.parseParenExpr()
		if err != nil {
			return nil, err
		}
		body, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		return &ast.WhileStmt{Pos: pos, Cond: cond, Body: body}, nil
	case lexer.KW_DO:
		p.next()
		body, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.KW_WHILE); err != nil {
			return nil, err
		}
		cond, err := p.parseParenExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.SEMI); err != nil {
			return nil, err
		}
		return &ast.DoWhileStmt{Pos: pos, Body: body, Cond: cond}, nil
	case lexer.KW_FOR:
		return p.parseFor()
	case lexer.KW_SWITCH, lexer.KW_CASE, lexer.KW_DEFAULT, lexer.KW_GOTO:
		return nil, p.unexpected()
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMI); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{Pos: pos, X: e}, nil
}

func (p *Parser) parseParenExpr() (ast.Expr, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *Parser) parseFor() (ast.Stmt, error) {
	s := &ast.ForStmt{Pos: p.pos()}
	p.next()
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	p.enterScope()
	defer p.exitScope()
	switch {
	case p.tok.Type == lexer.SEMI:
		p.next()
	case p.startsDecl(p.tok):
		d, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		s.Init = d
	default:
		pos := p.pos()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.SEMI); err != nil {
			return nil, err
		}
		s.Init = &ast.ExprStmt{Pos: pos, X: e}
	}
	if p.tok.Type != lexer.SEMI {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		s.Cond = e
	}
	if _, err := p.expect(lexer.SEMI); err != nil {
		return nil, err
	}
	if p.tok.Type != lexer.RPAREN {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		s.Post = e
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	s.Body = body
	return s, nil
}
