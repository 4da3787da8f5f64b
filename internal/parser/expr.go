package parser

import (
	"math/big"
	"strings"

	"github.com/tinyrange/cstep/internal/ast"
	"github.com/tinyrange/cstep/internal/lexer"
)

// Expr grammar, lowest precedence first:
// expr   = assign { ',' assign }
// assign = cond [ assign-op assign ]
// cond   = binary [ '?' expr ':' cond ]
// binary = cast { binop cast }      (precedence climbing)
// cast   = '(' type-name ')' cast | unary
func (p *Parser) parseExpr() (ast.Expr, error) {
	pos := p.pos()
	e, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	if p.tok.Type != lexer.COMMA {
		return e, nil
	}
	list := []ast.Expr{e}
	for p.tok.Type == lexer.COMMA {
		p.next()
		e, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return &ast.CommaExpr{Pos: pos, List: list}, nil
}

var assignOps = map[lexer.TokenType]ast.AssignOp{
	lexer.ASSIGN:     {},
	lexer.ADD_ASSIGN: {Compound: true, Bin: ast.OpAdd},
	lexer.SUB_ASSIGN: {Compound: true, Bin: ast.OpSub},
	lexer.MUL_ASSIGN: {Compound: true, Bin: ast.OpMul},
	lexer.DIV_ASSIGN: {Compound: true, Bin: ast.OpDiv},
	lexer.MOD_ASSIGN: {Compound: true, Bin: ast.OpMod},
	lexer.AND_ASSIGN: {Compound: true, Bin: ast.OpAnd},
	lexer.OR_ASSIGN:  {Compound: true, Bin: ast.OpOr},
	lexer.XOR_ASSIGN: {Compound: true, Bin: ast.OpXor},
	lexer.SHL_ASSIGN: {Compound: true, Bin: ast.OpShl},
	lexer.SHR_ASSIGN: {Compound: true, Bin: ast.OpShr},
}

func (p *Parser) parseAssign() (ast.Expr, error) {
	left, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	op, ok := assignOps[p.tok.Type]
	if !ok {
		return left, nil
	}
	pos := p.pos()
	p.next()
	right, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	return &ast.AssignExpr{Pos: pos, Op: op, Left: left, Right: right}, nil
}

func (p *Parser) parseCond() (ast.Expr, error) {
	c, err := p.parseBinary(1)
	if err != nil {
		return nil, err
	}
	if p.tok.Type != lexer.QUESTION {
		return c, nil
	}
	pos := p.pos()
	p.next()
	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.COLON); err != nil {
		return nil, err
	}
	els, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	return &ast.CondExpr{Pos: pos, Cond: c, Then: then, Else: els}, nil
}

type binInfo struct {
	prec int
	op   ast.BinOp
}

var binOps = map[lexer.TokenType]binInfo{
	lexer.OROR:    {1, ast.OpLOr},
	lexer.ANDAND:  {2, ast.OpLAnd},
	lexer.PIPE:    {3, ast.OpOr},
	lexer.CARET:   {4, ast.OpXor},
	lexer.AMP:     {5, ast.OpAnd},
	lexer.EQEQ:    {6, ast.OpEq},
	lexer.NEQ:     {6, ast.OpNe},
	lexer.LT:      {7, ast.OpLt},
	lexer.LE:      {7, ast.OpLe},
	lexer.GT:      {7, ast.OpGt},
	lexer.GE:      {7, ast.OpGe},
	lexer.SHL:     {8, ast.OpShl},
	lexer.SHR:     {8, ast.OpShr},
	lexer.PLUS:    {9, ast.OpAdd},
	lexer.MINUS:   {9, ast.OpSub},
	lexer.STAR:    {10, ast.OpMul},
	lexer.SLASH:   {10, ast.OpDiv},
	lexer.PERCENT: {10, ast.OpMod},
}

func (p *Parser) parseBinary(minPrec int) (ast.Expr, error) {
	left, err := p.parseCast()
	if err != nil {
		return nil, err
	}
	for {
		info, ok := binOps[p.tok.Type]
		if !ok || info.prec < minPrec {
			return left, nil
		}
		pos := p.pos()
		p.next()
		right, err := p.parseBinary(info.prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Pos: pos, Op: info.op, Left: left, Right: right}
	}
}

func (p *Parser) parseCast() (ast.Expr, error) {
	if p.tok.Type == lexer.LPAREN && p.startsDecl(p.peek()) {
		pos := p.pos()
		p.next()
		tn, err := p.parseTypeName()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		if p.tok.Type == lexer.LBRACE {
			return nil, p.errorf("compound literals are not supported")
		}
		x, err := p.parseCast()
		if err != nil {
			return nil, err
		}
		return &ast.CastExpr{Pos: pos, Type: tn, X: x}, nil
	}
	return p.parseUnary()
}

var unOps = map[lexer.TokenType]ast.UnOp{
	lexer.AMP:   ast.OpAddr,
	lexer.STAR:  ast.OpDeref,
	lexer.PLUS:  ast.OpPlus,
	lexer.MINUS: ast.OpNeg,
	lexer.TILDE: ast.OpBitNot,
	lexer.BANG:  ast.OpNot,
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	pos := p.pos()
	switch p.tok.Type {
	case lexer.INC, lexer.DEC:
		inc := p.tok.Type == lexer.INC
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.IncDecExpr{Pos: pos, Inc: inc, X: x}, nil
	case lexer.KW_SIZEOF:
		p.next()
		if p.tok.Type == lexer.LPAREN && p.startsDecl(p.peek()) {
			p.next()
			tn, err := p.parseTypeName()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RPAREN); err != nil {
				return nil, err
			}
			return &ast.SizeofType{Pos: pos, Type: tn}, nil
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.SizeofExpr{Pos: pos, X: x}, nil
	}
	if op, ok := unOps[p.tok.Type]; ok {
		p.next()
		x, err := p.parseCast()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Pos: pos, Op: op, X: x}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		pos := p.pos()
		switch p.tok.Type {
		case lexer.LBRACK:
			p.next()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBRACK); err != nil {
				return nil, err
			}
			e = &ast.IndexExpr{Pos: pos, Base: e, Index: idx}
		case lexer.LPAREN:
			p.next()
			call := &ast.CallExpr{Pos: pos, Fn: e}
			for p.tok.Type != lexer.RPAREN {
				arg, err := p.parseAssign()
				if err != nil {
					return nil, err
				}
				call.Args = append(call.Args, arg)
				if p.tok.Type != lexer.COMMA {
					break
				}
				p.next()
			}
			if _, err := p.expect(lexer.RPAREN); err != nil {
				return nil, err
			}
			e = call
		case lexer.DOT, lexer.ARROW:
			arrow := p.tok.Type == lexer.ARROW
			p.next()
			name, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			e = &ast.MemberExpr{Pos: pos, X: e, Name: name.Lex, Arrow: arrow}
		case lexer.INC, lexer.DEC:
			e = &ast.IncDecExpr{Pos: pos, Inc: p.tok.Type == lexer.INC, Postfix: true, X: e}
			p.next()
		default:
			return e, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	pos := p.pos()
	switch p.tok.Type {
	case lexer.IDENT:
		id := &ast.Ident{Pos: pos, Name: p.tok.Lex}
		p.next()
		return id, nil
	case lexer.INT:
		c, err := parseIntConst(p.tok.Lex)
		if err != nil {
			return nil, p.errorf("%v", err)
		}
		c.Pos = pos
		p.next()
		return c, nil
	case lexer.CHAR:
		c := &ast.CharConst{Pos: pos, Value: p.tok.Lex[0]}
		p.next()
		return c, nil
	case lexer.STRING:
		var b strings.Builder
		for p.tok.Type == lexer.STRING {
			b.WriteString(p.tok.Lex)
			p.next()
		}
		return &ast.StringLit{Pos: pos, Value: b.String()}, nil
	case lexer.LPAREN:
		p.next()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return &ast.ParenExpr{Pos: pos, X: e}, nil
	}
	return nil, p.unexpected()
}

type constError string

func (e constError) Error() string { return string(e) }

// parseIntConst splits an integer literal into value, radix and suffix.
func parseIntConst(lex string) (*ast.IntConst, error) {
	digits := strings.TrimRightFunc(lex, func(r rune) bool {
		return r == 'u' || r == 'U' || r == 'l' || r == 'L'
	})
	suffix := strings.ToLower(lex[len(digits):])
	c := &ast.IntConst{}
	switch suffix {
	case "":
	case "u":
		c.Unsigned = true
	case "l":
		c.Longs = 1
	case "ul", "lu":
		c.Unsigned, c.Longs = true, 1
	case "ll":
		c.Longs = 2
	case "ull", "llu":
		c.Unsigned, c.Longs = true, 2
	default:
		return nil, constError("invalid integer suffix \"" + lex[len(digits):] + "\"")
	}
	base := 10
	switch {
	case strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X"):
		base, digits = 16, digits[2:]
	case len(digits) > 1 && digits[0] == '0':
		base, digits = 8, digits[1:]
	}
	c.Decimal = base == 10
	v, ok := new(big.Int).SetString(digits, base)
	if !ok || digits == "" {
		return nil, constError("invalid integer constant " + lex)
	}
	c.Value = v
	return c, nil
}
