package lexer

import (
	"strings"
	"unicode"
)

type Lexer struct {
	src  []rune
	i    int
	ch   rune
	line int
	col  int
}

func New(src string) *Lexer {
	l := &Lexer{src: []rune(src), line: 1}
	l.read()
	return l
}

func (l *Lexer) read() {
	if l.i >= len(l.src) {
		l.ch = 0
		l.i = len(l.src) + 1
		return
	}
	l.ch = l.src[l.i]
	l.i++
	if l.i > 1 && l.src[l.i-2] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *Lexer) peek() rune { return l.peekN(0) }

func (l *Lexer) peekN(n int) rune {
	if l.i+n >= len(l.src) {
		return 0
	}
	return l.src[l.i+n]
}

// operators lists every punctuator; Next matches the longest one.
var operators = map[string]TokenType{
	"(": LPAREN, ")": RPAREN, "{": LBRACE, "}": RBRACE, "[": LBRACK, "]": RBRACK,
	";": SEMI, ",": COMMA, ":": COLON, "?": QUESTION, ".": DOT, "->": ARROW, "...": ELLIPSIS,
	"=": ASSIGN, "&": AMP, "+": PLUS, "-": MINUS, "*": STAR, "/": SLASH, "%": PERCENT,
	"++": INC, "--": DEC, "<<": SHL, ">>": SHR, "&&": ANDAND, "||": OROR, "|": PIPE,
	"^": CARET, "~": TILDE, "!": BANG, "==": EQEQ, "!=": NEQ, "<": LT, "<=": LE, ">": GT, ">=": GE,
	"+=": ADD_ASSIGN, "-=": SUB_ASSIGN, "*=": MUL_ASSIGN, "/=": DIV_ASSIGN, "%=": MOD_ASSIGN,
	"&=": AND_ASSIGN, "|=": OR_ASSIGN, "^=": XOR_ASSIGN, "<<=": SHL_ASSIGN, ">>=": SHR_ASSIGN,
}

func (l *Lexer) skipSpaceAndComments() {
	for {
		for unicode.IsSpace(l.ch) {
			l.read()
		}
		if l.ch == '/' && l.peek() == '/' {
			for l.ch != 0 && l.ch != '\n' {
				l.read()
			}
			continue
		}
		if l.ch == '/' && l.peek() == '*' {
			l.read()
			l.read()
			for l.ch != 0 {
				if l.ch == '*' && l.peek() == '/' {
					l.read()
					l.read()
					break
				}
				l.read()
			}
			continue
		}
		// preprocessor lines are not supported; the parser reports them
		break
	}
}

func (l *Lexer) Next() Token {
	l.skipSpaceAndComments()
	tok := Token{Line: l.line, Col: l.col}
	ch := l.ch
	switch {
	case ch == 0:
		tok.Type = EOF
	case unicode.IsLetter(ch) || ch == '_':
		var b strings.Builder
		for unicode.IsLetter(l.ch) || unicode.IsDigit(l.ch) || l.ch == '_' {
			b.WriteRune(l.ch)
			l.read()
		}
		tok.Lex = b.String()
		if kw, ok := keywords[tok.Lex]; ok {
			tok.Type = kw
		} else {
			tok.Type = IDENT
		}
	case unicode.IsDigit(ch) || (ch == '.' && unicode.IsDigit(l.peek())):
		l.number(&tok)
	case ch == '\'':
		l.charConst(&tok)
	case ch == '"':
		l.stringLit(&tok)
	default:
		for n := 3; n >= 1; n-- {
			var b strings.Builder
			b.WriteRune(ch)
			for k := 0; k < n-1; k++ {
				b.WriteRune(l.peekN(k))
			}
			if op, ok := operators[b.String()]; ok {
				tok.Type, tok.Lex = op, b.String()
				for k := 0; k < n; k++ {
					l.read()
				}
				return tok
			}
		}
		tok.Type, tok.Lex = ILLEGAL, string(ch)
		l.read()
	}
	return tok
}

func (l *Lexer) number(tok *Token) {
	var b strings.Builder
	isFloat := false
	for unicode.IsLetter(l.ch) || unicode.IsDigit(l.ch) || l.ch == '.' {
		if l.ch == '.' {
			isFloat = true
		}
		b.WriteRune(l.ch)
		l.read()
	}
	tok.Type, tok.Lex = INT, b.String()
	if isFloat {
		tok.Type = FLOAT
	}
}

func (l *Lexer) charConst(tok *Token) {
	l.read()
	var v []byte
	for l.ch != '\'' {
		if l.ch == 0 || l.ch == '\n' {
			tok.Type, tok.Lex = ILLEGAL, "unterminated character constant"
			return
		}
		b, ok := l.escaped()
		if !ok {
			tok.Type, tok.Lex = ILLEGAL, "invalid escape sequence"
			return
		}
		v = append(v, b...)
	}
	l.read()
	if len(v) != 1 {
		tok.Type, tok.Lex = ILLEGAL, "character constant must hold exactly one character"
		return
	}
	tok.Type, tok.Lex = CHAR, string(v)
}

func (l *Lexer) stringLit(tok *Token) {
	l.read()
	var v []byte
	for l.ch != '"' {
		if l.ch == 0 || l.ch == '\n' {
			tok.Type, tok.Lex = ILLEGAL, "unterminated string literal"
			return
		}
		b, ok := l.escaped()
		if !ok {
			tok.Type, tok.Lex = ILLEGAL, "invalid escape sequence"
			return
		}
		v = append(v, b...)
	}
	l.read()
	tok.Type, tok.Lex = STRING, string(v)
}

// escaped consumes one possibly escaped character and returns its bytes.
func (l *Lexer) escaped() ([]byte, bool) {
	if l.ch != '\\' {
		r := l.ch
		l.read()
		return []byte(string(r)), true
	}
	l.read()
	c := l.ch
	l.read()
	switch c {
	case 'n':
		return []byte{'\n'}, true
	case 't':
		return []byte{'\t'}, true
	case 'r':
		return []byte{'\r'}, true
	case 'a':
		return []byte{7}, true
	case 'b':
		return []byte{8}, true
	case 'f':
		return []byte{12}, true
	case 'v':
		return []byte{11}, true
	case '\\', '\'', '"', '?':
		return []byte{byte(c)}, true
	case 'x':
		v, n := 0, 0
		for isHex(l.ch) {
			v = v*16 + hexVal(l.ch)
			n++
			l.read()
		}
		if n == 0 || v > 0xff {
			return nil, false
		}
		return []byte{byte(v)}, true
	}
	if c >= '0' && c <= '7' {
		v := int(c - '0')
		for k := 0; k < 2 && l.ch >= '0' && l.ch <= '7'; k++ {
			v = v*8 + int(l.ch-'0')
			l.read()
		}
		if v > 0xff {
			return nil, false
		}
		return []byte{byte(v)}, true
	}
	return nil, false
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func hexVal(r rune) int {
	switch {
	case r >= 'a':
		return int(r-'a') + 10
	case r >= 'A':
		return int(r-'A') + 10
	}
	return int(r - '0')
}
