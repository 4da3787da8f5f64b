package parser

import (
	"github.com/tinyrange/cstep/internal/ast"
	"github.com/tinyrange/cstep/internal/lexer"
)

var specKeywords = map[lexer.TokenType]string{
	lexer.KW_VOID:     "void",
	lexer.KW_BOOL:     "_Bool",
	lexer.KW_CHAR:     "char",
	lexer.KW_SHORT:    "short",
	lexer.KW_INT:      "int",
	lexer.KW_LONG:     "long",
	lexer.KW_SIGNED:   "signed",
	lexer.KW_UNSIGNED: "unsigned",
}

func (p *Parser) parseDeclSpecs() (*ast.DeclSpecs, error) {
	s := &ast.DeclSpecs{Pos: p.pos()}
	for {
		switch tt := p.tok.Type; tt {
		case lexer.KW_TYPEDEF:
			s.Typedef = true
			p.next()
		case lexer.KW_CONST:
			s.Const = true
			p.next()
		case lexer.KW_STRUCT:
			st, err := p.parseStructSpec()
			if err != nil {
				return nil, err
			}
			s.Struct = st
		case lexer.KW_UNION, lexer.KW_ENUM, lexer.KW_DOUBLE, lexer.KW_FLOAT:
			return nil, p.unexpected()
		case lexer.IDENT:
			// a typedef name only counts when no other type was given
			if s.Name != "" || s.Struct != nil || len(s.Keywords) > 0 || !p.isTypedefName(p.tok.Lex) {
				return s, nil
			}
			s.Name = p.tok.Lex
			p.next()
		default:
			kw, ok := specKeywords[tt]
			if !ok {
				if s.Name == "" && s.Struct == nil && len(s.Keywords) == 0 {
					return nil, p.errorf("expected type specifier, got %v", p.tok)
				}
				return s, nil
			}
			s.Keywords = append(s.Keywords, kw)
			p.next()
		}
	}
}

func (p *Parser) parseStructSpec() (*ast.StructSpec, error) {
	st := &ast.StructSpec{Pos: p.pos()}
	p.next()
	if p.tok.Type == lexer.IDENT {
		st.Tag = p.tok.Lex
		p.next()
	}
	if p.tok.Type != lexer.LBRACE {
		if st.Tag == "" {
			return nil, p.errorf("expected struct tag or '{'")
		}
		return st, nil
	}
	p.next()
	st.HasBody = true
	for p.tok.Type != lexer.RBRACE {
		pos := p.pos()
		if !p.startsDecl(p.tok) {
			return nil, p.unexpected()
		}
		specs, err := p.parseDeclSpecs()
		if err != nil {
			return nil, err
		}
		field := &ast.Declaration{Pos: pos, Specs: specs}
		for {
			d, err := p.parseDeclarator(false)
			if err != nil {
				return nil, err
			}
			field.List = append(field.List, &ast.InitDeclarator{Pos: d.Pos, Declarator: d})
			if p.tok.Type != lexer.COMMA {
				break
			}
			p.next()
		}
		if p.tok.Type == lexer.COLON {
			return nil, p.errorf("bitfields are not supported")
		}
		if _, err := p.expect(lexer.SEMI); err != nil {
			return nil, err
		}
		st.Fields = append(st.Fields, field)
	}
	p.next()
	return st, nil
}

// parseDeclarator parses a declarator. Parts come out ordered from the
// identifier outwards so the type can be built by applying them from the
// last part to the first.
func (p *Parser) parseDeclarator(abstract bool) (*ast.Declarator, error) {
	d := &ast.Declarator{Pos: p.pos()}
	var ptrs []ast.DeclPart
	for p.tok.Type == lexer.STAR {
		pp := &ast.PointerPart{Pos: p.pos()}
		p.next()
		for p.tok.Type == lexer.KW_CONST {
			pp.Const = true
			p.next()
		}
		ptrs = append(ptrs, pp)
	}
	switch {
	case p.tok.Type == lexer.IDENT && !(abstract && p.isTypedefName(p.tok.Lex)):
		d.Parts = append(d.Parts, &ast.IdentPart{Pos: p.pos(), Name: p.tok.Lex})
		p.next()
	case p.tok.Type == lexer.LPAREN && p.nestedDeclarator(abstract):
		p.next()
		inner, err := p.parseDeclarator(abstract)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		d.Parts = append(d.Parts, inner.Parts...)
	case !abstract:
		return nil, p.errorf("expected identifier, got %v", p.tok)
	}
	for {
		switch p.tok.Type {
		case lexer.LBRACK:
			ap := &ast.ArrayPart{Pos: p.pos()}
			p.next()
			if p.tok.Type != lexer.RBRACK {
				n, err := p.parseCond()
				if err != nil {
					return nil, err
				}
				ap.Len = n
			}
			if _, err := p.expect(lexer.RBRACK); err != nil {
				return nil, err
			}
			d.Parts = append(d.Parts, ap)
			continue
		case lexer.LPAREN:
			fp := &ast.FuncPart{Pos: p.pos()}
			p.next()
			params, err := p.parseParams()
			if err != nil {
				return nil, err
			}
			fp.Params = params
			d.Parts = append(d.Parts, fp)
			continue
		}
		break
	}
	for i := len(ptrs) - 1; i >= 0; i-- {
		d.Parts = append(d.Parts, ptrs[i])
	}
	return d, nil
}

// nestedDeclarator decides whether the '(' at the current token opens a
// parenthesized declarator rather than a parameter list.
func (p *Parser) nestedDeclarator(abstract bool) bool {
	if !abstract {
		return true
	}
	next := p.peek()
	switch next.Type {
	case lexer.STAR, lexer.LPAREN, lexer.LBRACK:
		return true
	case lexer.IDENT:
		return !p.isTypedefName(next.Lex)
	}
	return false
}

// parseParams parses a parameter list after its '('.
func (p *Parser) parseParams() ([]*ast.ParamDecl, error) {
	var params []*ast.ParamDecl
	if p.tok.Type == lexer.RPAREN {
		p.next()
		return params, nil
	}
	for {
		pos := p.pos()
		if p.tok.Type == lexer.ELLIPSIS || !p.startsDecl(p.tok) {
			return nil, p.unexpected()
		}
		specs, err := p.parseDeclSpecs()
		if err != nil {
			return nil, err
		}
		d, err := p.parseDeclarator(true)
		if err != nil {
			return nil, err
		}
		params = append(params, &ast.ParamDecl{Pos: pos, Specs: specs, Declarator: d})
		if p.tok.Type == lexer.COMMA {
			p.next()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseTypeName() (*ast.TypeName, error) {
	pos := p.pos()
	specs, err := p.parseDeclSpecs()
	if err != nil {
		return nil, err
	}
	if specs.Typedef {
		return nil, &Error{Line: pos.Line, Col: pos.Col, Msg: "typedef in type name"}
	}
	d, err := p.parseDeclarator(true)
	if err != nil {
		return nil, err
	}
	if d.Name() != "" {
		return nil, &Error{Line: d.Line, Col: d.Col, Msg: "unexpected identifier in type name"}
	}
	return &ast.TypeName{Pos: pos, Specs: specs, Declarator: d}, nil
}

// finishDeclaration parses the rest of a declaration whose first
// declarator has already been read.
func (p *Parser) finishDeclaration(pos ast.Pos, specs *ast.DeclSpecs, first *ast.Declarator) (*ast.Declaration, error) {
	decl := &ast.Declaration{Pos: pos, Specs: specs}
	d := first
	for {
		id := &ast.InitDeclarator{Pos: d.Pos, Declarator: d}
		p.declare(d.Name(), specs.Typedef)
		if p.tok.Type == lexer.ASSIGN {
			if specs.Typedef {
				return nil, p.errorf("typedef cannot have an initializer")
			}
			p.next()
			init, err := p.parseInitializer()
			if err != nil {
				return nil, err
			}
			id.Init = init
		}
		decl.List = append(decl.List, id)
		if p.tok.Type != lexer.COMMA {
			break
		}
		p.next()
		var err error
		if d, err = p.parseDeclarator(false); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.SEMI); err != nil {
		return nil, err
	}
	return decl, nil
}

// parseDeclaration parses a block-scope declaration.
func (p *Parser) parseDeclaration() (*ast.Declaration, error) {
	pos := p.pos()
	specs, err := p.parseDeclSpecs()
	if err != nil {
		return nil, err
	}
	if p.tok.Type == lexer.SEMI {
		p.next()
		return &ast.Declaration{Pos: pos, Specs: specs}, nil
	}
	d, err := p.parseDeclarator(false)
	if err != nil {
		return nil, err
	}
	return p.finishDeclaration(pos, specs, d)
}

func (p *Parser) parseInitializer() (ast.Initializer, error) {
	if p.tok.Type != lexer.LBRACE {
		return p.parseAssign()
	}
	list := &ast.InitList{Pos: p.pos()}
	p.next()
	for p.tok.Type != lexer.RBRACE {
		item := &ast.InitItem{Pos: p.pos()}
		for p.tok.Type == lexer.LBRACK || p.tok.Type == lexer.DOT {
			dpos := p.pos()
			if p.tok.Type == lexer.LBRACK {
				p.next()
				idx, err := p.parseCond()
				if err != nil {
					return nil, err
				}
				if _, err := p.expect(lexer.RBRACK); err != nil {
					return nil, err
				}
				item.Designators = append(item.Designators, &ast.IndexDesignator{Pos: dpos, Index: idx})
				continue
			}
			p.next()
			name, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			item.Designators = append(item.Designators, &ast.MemberDesignator{Pos: dpos, Name: name.Lex})
		}
		if len(item.Designators) > 0 {
			if _, err := p.expect(lexer.ASSIGN); err != nil {
				return nil, err
			}
		}
		init, err := p.parseInitializer()
		if err != nil {
			return nil, err
		}
		item.Init = init
		list.Items = append(list.Items, item)
		if p.tok.Type != lexer.COMMA {
			break
		}
		p.next()
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return list, nil
}
