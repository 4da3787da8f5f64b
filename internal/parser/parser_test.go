package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinyrange/cstep/internal/ast"
)

func parse(t *testing.T, src string) *ast.File {
	t.Helper()
	f, err := ParseFile("test.c", src)
	require.NoError(t, err)
	return f
}

func TestFunctionDefinition(t *testing.T) {
	f := parse(t, "int f(int x, char *s) { return x; }")
	require.Len(t, f.Decls, 1)
	fd, ok := f.Decls[0].(*ast.FuncDef)
	require.True(t, ok)
	require.Equal(t, "f", fd.Declarator.Name())
	fp, ok := outerFunc(fd.Declarator)
	require.True(t, ok)
	require.Len(t, fp.Params, 2)
	require.Equal(t, "s", fp.Params[1].Declarator.Name())
	require.Len(t, fd.Body.Items, 1)
	_, ok = fd.Body.Items[0].(*ast.ReturnStmt)
	require.True(t, ok)
}

func TestDeclaratorPartOrder(t *testing.T) {
	cases := []struct {
		src  string
		want []string
	}{
		{"int *a[3];", []string{"ident", "array", "pointer"}},
		{"int (*p)[3];", []string{"ident", "pointer", "array"}},
		{"int *(*fp)(int);", []string{"ident", "pointer", "func", "pointer"}},
		{"int **const q;", []string{"ident", "pointer", "pointer"}},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			f := parse(t, c.src)
			d := f.Decls[0].(*ast.Declaration).List[0].Declarator
			var got []string
			for _, p := range d.Parts {
				switch p.(type) {
				case *ast.IdentPart:
					got = append(got, "ident")
				case *ast.PointerPart:
					got = append(got, "pointer")
				case *ast.ArrayPart:
					got = append(got, "array")
				case *ast.FuncPart:
					got = append(got, "func")
				}
			}
			require.Equal(t, c.want, got)
		})
	}
}

func TestPrecedence(t *testing.T) {
	f := parse(t, "int main() { return 2 + 3 * 4 << 1 == 28 && 1; }")
	ret := f.Decls[0].(*ast.FuncDef).Body.Items[0].(*ast.ReturnStmt)
	land, ok := ret.X.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, ast.OpLAnd, land.Op)
	eq := land.Left.(*ast.BinaryExpr)
	require.Equal(t, ast.OpEq, eq.Op)
	shl := eq.Left.(*ast.BinaryExpr)
	require.Equal(t, ast.OpShl, shl.Op)
	add := shl.Left.(*ast.BinaryExpr)
	require.Equal(t, ast.OpAdd, add.Op)
	require.Equal(t, ast.OpMul, add.Right.(*ast.BinaryExpr).Op)
}

func TestTypedefAndCast(t *testing.T) {
	f := parse(t, `
typedef struct node { int v; struct node *next; } Node;
int main() {
	Node n;
	Node *p = &n;
	int x = (int)sizeof(Node) + sizeof n;
	x += (x);
	return p->v;
}`)
	require.Len(t, f.Decls, 2)
	body := f.Decls[1].(*ast.FuncDef).Body
	require.IsType(t, &ast.Declaration{}, body.Items[0])
	x := body.Items[2].(*ast.Declaration).List[0].Init.(*ast.BinaryExpr)
	cast := x.Left.(*ast.CastExpr)
	require.IsType(t, &ast.SizeofType{}, cast.X)
	require.IsType(t, &ast.SizeofExpr{}, x.Right)
	as := body.Items[3].(*ast.ExprStmt).X.(*ast.AssignExpr)
	require.True(t, as.Op.Compound)
	require.Equal(t, ast.OpAdd, as.Op.Bin)
	require.IsType(t, &ast.ParenExpr{}, as.Right)
}

func TestInitializers(t *testing.T) {
	f := parse(t, `int a[] = {1, [3] = 4, 5}; struct P { int x, y; } p = {.y = 2};`)
	list := f.Decls[0].(*ast.Declaration).List[0].Init.(*ast.InitList)
	require.Len(t, list.Items, 3)
	require.Len(t, list.Items[1].Designators, 1)
	d := f.Decls[1].(*ast.Declaration).List[0].Init.(*ast.InitList).Items[0].Designators[0]
	require.Equal(t, "y", d.(*ast.MemberDesignator).Name)
}

func TestScalarInitializerIsExpr(t *testing.T) {
	f := parse(t, `int x = 1 + 2, *p = &x;`)
	list := f.Decls[0].(*ast.Declaration).List
	require.Len(t, list, 2)
	sum, ok := list[0].Init.(*ast.BinaryExpr)
	require.True(t, ok, "got %T", list[0].Init)
	require.Equal(t, ast.OpAdd, sum.Op)
	_, ok = list[1].Init.(ast.Expr)
	require.True(t, ok, "got %T", list[1].Init)
}

func TestIntConstants(t *testing.T) {
	cases := []struct {
		lex      string
		value    int64
		decimal  bool
		unsigned bool
		longs    int
	}{
		{"10", 10, true, false, 0},
		{"0x10u", 16, false, true, 0},
		{"017L", 15, false, false, 1},
		{"7ull", 7, true, true, 2},
		{"0", 0, true, false, 0},
	}
	for _, c := range cases {
		ic, err := parseIntConst(c.lex)
		require.NoError(t, err, c.lex)
		require.Equal(t, c.value, ic.Value.Int64(), c.lex)
		require.Equal(t, c.decimal, ic.Decimal, c.lex)
		require.Equal(t, c.unsigned, ic.Unsigned, c.lex)
		require.Equal(t, c.longs, ic.Longs, c.lex)
	}
	_, err := parseIntConst("12q")
	require.Error(t, err)
	_, err = parseIntConst("09")
	require.Error(t, err)
}

func TestStatements(t *testing.T) {
	f := parse(t, `int main() {
		for (int i = 0; i < 3; i++) { if (i) continue; else break; }
		do ; while (0);
		while (1) break;
		return "ab" "c"[0];
	}`)
	items := f.Decls[0].(*ast.FuncDef).Body.Items
	fs := items[0].(*ast.ForStmt)
	require.IsType(t, &ast.Declaration{}, fs.Init)
	require.IsType(t, &ast.DoWhileStmt{}, items[1])
	require.IsType(t, &ast.WhileStmt{}, items[2])
	idx := items[3].(*ast.ReturnStmt).X.(*ast.IndexExpr)
	require.Equal(t, "abc", idx.Base.(*ast.StringLit).Value)
}

func TestErrors(t *testing.T) {
	cases := []struct {
		src string
		msg string
	}{
		{"int main() { return 1 }", "expected ';', got '}' at 1:23"},
		{"int main() { switch (1) {} }", "switch statements are not supported"},
		{"double d;", "floating point is not supported"},
		{"#include <stdio.h>", "preprocessor directives are not supported"},
		{"union U { int a; };", "unions are not supported"},
		{"int f(int, ...);", "variadic functions are not supported"},
		{"struct S { int a : 3; };", "bitfields are not supported"},
	}
	for _, c := range cases {
		t.Run(c.msg, func(t *testing.T) {
			_, err := ParseFile("t.c", c.src)
			require.Error(t, err)
			var pe *Error
			require.True(t, errors.As(err, &pe))
			require.Contains(t, err.Error(), c.msg)
		})
	}
}
