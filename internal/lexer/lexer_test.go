package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func collect(src string) []Token {
	l := New(src)
	var out []Token
	for {
		t := l.Next()
		out = append(out, t)
		if t.Type == EOF {
			return out
		}
	}
}

func TestOperatorsLongestMatch(t *testing.T) {
	toks := collect("a <<= b->c ... ++d >= e")
	var types []TokenType
	for _, tk := range toks {
		types = append(types, tk.Type)
	}
	require.Equal(t, []TokenType{IDENT, SHL_ASSIGN, IDENT, ARROW, IDENT, ELLIPSIS, INC, IDENT, GE, IDENT, EOF}, types)
}

func TestPositions(t *testing.T) {
	toks := collect("int\n  x; // done\n/* c */ y")
	require.Equal(t, KW_INT, toks[0].Type)
	require.Equal(t, 1, toks[0].Line)
	require.Equal(t, 1, toks[0].Col)
	require.Equal(t, "x", toks[1].Lex)
	require.Equal(t, 2, toks[1].Line)
	require.Equal(t, 3, toks[1].Col)
	require.Equal(t, "y", toks[3].Lex)
	require.Equal(t, 3, toks[3].Line)
	require.Equal(t, 9, toks[3].Col)
}

func TestLiterals(t *testing.T) {
	toks := collect(`42u 0x1F 'a' '\n' '\0' "hi\t\x41" 1.5`)
	require.Equal(t, Token{Type: INT, Lex: "42u", Line: 1, Col: 1}, toks[0])
	require.Equal(t, "0x1F", toks[1].Lex)
	require.Equal(t, CHAR, toks[2].Type)
	require.Equal(t, "a", toks[2].Lex)
	require.Equal(t, "\n", toks[3].Lex)
	require.Equal(t, "\x00", toks[4].Lex)
	require.Equal(t, STRING, toks[5].Type)
	require.Equal(t, "hi\tA", toks[5].Lex)
	require.Equal(t, FLOAT, toks[6].Type)
}

func TestIllegal(t *testing.T) {
	toks := collect("int @")
	require.Equal(t, ILLEGAL, toks[1].Type)
	toks = collect(`"open`)
	require.Equal(t, ILLEGAL, toks[0].Type)
}

func TestKeywords(t *testing.T) {
	toks := collect("unsigned long long _Bool struct sizeof switch")
	require.Equal(t, []TokenType{KW_UNSIGNED, KW_LONG, KW_LONG, KW_BOOL, KW_STRUCT, KW_SIZEOF, KW_SWITCH, EOF},
		[]TokenType{toks[0].Type, toks[1].Type, toks[2].Type, toks[3].Type, toks[4].Type, toks[5].Type, toks[6].Type, toks[7].Type})
}
