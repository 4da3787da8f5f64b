// Package parser turns C source into the untyped syntax tree.
package parser

import (
	"fmt"

	"github.com/tinyrange/cstep/internal/ast"
	"github.com/tinyrange/cstep/internal/lexer"
)

// Error is a syntax error at a source position.
type Error struct {
	Line, Col int
	Msg       string
}

func (e *Error) Error() string { return fmt.Sprintf("%s at %d:%d", e.Msg, e.Line, e.Col) }

type Parser struct {
	lx    *lexer.Lexer
	tok   lexer.Token
	ahead []lexer.Token
	// scopes maps names to whether they currently denote a typedef.
	scopes []map[string]bool
}

func ParseFile(filename, src string) (*ast.File, error) {
	p := &Parser{lx: lexer.New(src), scopes: []map[string]bool{{}}}
	p.next()
	f := &ast.File{Pos: p.pos()}
	for p.tok.Type != lexer.EOF {
		d, err := p.parseExternal()
		if err != nil {
			return nil, err
		}
		f.Decls = append(f.Decls, d)
	}
	return f, nil
}

func (p *Parser) next() {
	if len(p.ahead) > 0 {
		p.tok = p.ahead[0]
		p.ahead = p.ahead[1:]
		return
	}
	p.tok = p.lx.Next()
}

// peek returns the token after the current one.
func (p *Parser) peek() lexer.Token {
	if len(p.ahead) == 0 {
		p.ahead = append(p.ahead, p.lx.Next())
	}
	return p.ahead[0]
}

func (p *Parser) pos() ast.Pos { return ast.Pos{Line: p.tok.Line, Col: p.tok.Col} }

func (p *Parser) errorf(format string, args ...interface{}) error {
	return &Error{Line: p.tok.Line, Col: p.tok.Col, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) unexpected() error {
	switch p.tok.Type {
	case lexer.ILLEGAL:
		if p.tok.Lex == "#" {
			return p.errorf("preprocessor directives are not supported")
		}
		return p.errorf("%s", p.tok.Lex)
	case lexer.FLOAT, lexer.KW_DOUBLE, lexer.KW_FLOAT:
		return p.errorf("floating point is not supported")
	case lexer.KW_SWITCH, lexer.KW_CASE, lexer.KW_DEFAULT:
		return p.errorf("switch statements are not supported")
	case lexer.KW_GOTO:
		return p.errorf("goto is not supported")
	case lexer.KW_UNION:
		return p.errorf("unions are not supported")
	case lexer.KW_ENUM:
		return p.errorf("enums are not supported")
	case lexer.ELLIPSIS:
		return p.errorf("variadic functions are not supported")
	}
	return p.errorf("unexpected %v", p.tok)
}

func (p *Parser) expect(tt lexer.TokenType) (lexer.Token, error) {
	if p.tok.Type != tt {
		if p.tok.Type == lexer.ILLEGAL {
			return lexer.Token{}, p.unexpected()
		}
		return lexer.Token{}, p.errorf("expected %v, got %v", tt, p.tok)
	}
	t := p.tok
	p.next()
	return t, nil
}

func (p *Parser) enterScope() { p.scopes = append(p.scopes, map[string]bool{}) }

func (p *Parser) exitScope() { p.scopes = p.scopes[:len(p.scopes)-1] }

func (p *Parser) declare(name string, typedef bool) {
	if name != "" {
		p.scopes[len(p.scopes)-1][name] = typedef
	}
}

func (p *Parser) isTypedefName(name string) bool {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if td, ok := p.scopes[i][name]; ok {
			return td
		}
	}
	return false
}

// startsDecl reports whether tok can begin declaration specifiers.
func (p *Parser) startsDecl(tok lexer.Token) bool {
	switch tok.Type {
	case lexer.KW_VOID, lexer.KW_BOOL, lexer.KW_CHAR, lexer.KW_SHORT, lexer.KW_INT, lexer.KW_LONG,
		lexer.KW_SIGNED, lexer.KW_UNSIGNED, lexer.KW_CONST, lexer.KW_STRUCT, lexer.KW_TYPEDEF,
		lexer.KW_UNION, lexer.KW_ENUM, lexer.KW_DOUBLE, lexer.KW_FLOAT:
		return true
	case lexer.IDENT:
		return p.isTypedefName(tok.Lex)
	}
	return false
}

func (p *Parser) parseExternal() (ast.ExternalDecl, error) {
	pos := p.pos()
	if !p.startsDecl(p.tok) {
		return nil, p.unexpected()
	}
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
	if p.tok.Type == lexer.LBRACE {
		fp, ok := outerFunc(d)
		if !ok || specs.Typedef {
			return nil, p.errorf("unexpected '{' after declarator")
		}
		p.declare(d.Name(), false)
		p.enterScope()
		for _, prm := range fp.Params {
			p.declare(prm.Declarator.Name(), false)
		}
		body, err := p.parseCompound()
		p.exitScope()
		if err != nil {
			return nil, err
		}
		return &ast.FuncDef{Pos: pos, Specs: specs, Declarator: d, Body: body}, nil
	}
	return p.finishDeclaration(pos, specs, d)
}

// outerFunc returns the function part applied directly to the identifier.
func outerFunc(d *ast.Declarator) (*ast.FuncPart, bool) {
	if len(d.Parts) < 2 {
		return nil, false
	}
	if _, ok := d.Parts[0].(*ast.IdentPart); !ok {
		return nil, false
	}
	fp, ok := d.Parts[1].(*ast.FuncPart)
	return fp, ok
}
