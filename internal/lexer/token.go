package lexer

import "fmt"

type TokenType int

const (
	// Special
	EOF TokenType = iota
	ILLEGAL

	// Identifiers + literals
	IDENT
	INT
	FLOAT
	CHAR
	STRING

	// Keywords
	KW_VOID
	KW_BOOL
	KW_CHAR
	KW_SHORT
	KW_INT
	KW_LONG
	KW_SIGNED
	KW_UNSIGNED
	KW_CONST
	KW_DOUBLE
	KW_FLOAT
	KW_STRUCT
	KW_UNION
	KW_ENUM
	KW_TYPEDEF
	KW_SIZEOF
	KW_RETURN
	KW_IF
	KW_ELSE
	KW_WHILE
	KW_FOR
	KW_DO
	KW_BREAK
	KW_CONTINUE
	KW_SWITCH
	KW_CASE
	KW_DEFAULT
	KW_GOTO

	// Symbols
	LPAREN   // (
	RPAREN   // )
	LBRACE   // {
	RBRACE   // }
	LBRACK   // [
	RBRACK   // ]
	SEMI     // ;
	COMMA    // ,
	COLON    // :
	QUESTION // ?
	DOT      // .
	ARROW    // ->
	ELLIPSIS // ...
	ASSIGN   // =
	AMP      // &

	// Arithmetic
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	PERCENT // %
	INC     // ++
	DEC     // --

	// Shifts
	SHL // <<
	SHR // >>

	// Bitwise/logical
	ANDAND // &&
	OROR   // ||
	PIPE   // |
	CARET  // ^
	TILDE  // ~
	BANG   // !

	// Comparison
	EQEQ // ==
	NEQ  // !=
	LT   // <
	LE   // <=
	GT   // >
	GE   // >=

	// Compound assignment
	ADD_ASSIGN // +=
	SUB_ASSIGN // -=
	MUL_ASSIGN // *=
	DIV_ASSIGN // /=
	MOD_ASSIGN // %=
	AND_ASSIGN // &=
	OR_ASSIGN  // |=
	XOR_ASSIGN // ^=
	SHL_ASSIGN // <<=
	SHR_ASSIGN // >>=
)

var keywords = map[string]TokenType{
	"void":     KW_VOID,
	"_Bool":    KW_BOOL,
	"bool":     KW_BOOL,
	"char":     KW_CHAR,
	"short":    KW_SHORT,
	"int":      KW_INT,
	"long":     KW_LONG,
	"signed":   KW_SIGNED,
	"unsigned": KW_UNSIGNED,
	"const":    KW_CONST,
	"double":   KW_DOUBLE,
	"float":    KW_FLOAT,
	"struct":   KW_STRUCT,
	"union":    KW_UNION,
	"enum":     KW_ENUM,
	"typedef":  KW_TYPEDEF,
	"sizeof":   KW_SIZEOF,
	"return":   KW_RETURN,
	"if":       KW_IF,
	"else":     KW_ELSE,
	"while":    KW_WHILE,
	"for":      KW_FOR,
	"do":       KW_DO,
	"break":    KW_BREAK,
	"continue": KW_CONTINUE,
	"switch":   KW_SWITCH,
	"case":     KW_CASE,
	"default":  KW_DEFAULT,
	"goto":     KW_GOTO,
}

var names = map[TokenType]string{
	EOF: "end of file", ILLEGAL: "illegal character", IDENT: "identifier",
	INT: "integer constant", FLOAT: "floating constant", CHAR: "character constant", STRING: "string literal",
}

func (t TokenType) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	for lex, kw := range keywords {
		if kw == t && lex != "bool" {
			return "'" + lex + "'"
		}
	}
	for lex, op := range operators {
		if op == t {
			return "'" + lex + "'"
		}
	}
	return fmt.Sprintf("token(%d)", int(t))
}

type Token struct {
	Type TokenType
	Lex  string
	Line int
	Col  int
}

func (t Token) Is(op TokenType) bool { return t.Type == op }

func (t Token) String() string {
	switch t.Type {
	case IDENT, INT, CHAR, STRING, ILLEGAL:
		return fmt.Sprintf("%v %s", t.Type, t.Lex)
	}
	return t.Type.String()
}
