package check

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyrange/cstep/internal/parser"
	"github.com/tinyrange/cstep/internal/typed"
	"github.com/tinyrange/cstep/internal/types"
)

func checkSrc(t *testing.T, src string) (*typed.TranslationUnit, error) {
	t.Helper()
	f, err := parser.ParseFile("test.c", src)
	require.NoError(t, err)
	return Check(f)
}

func mustCheck(t *testing.T, src string) *typed.TranslationUnit {
	t.Helper()
	tu, err := checkSrc(t, src)
	require.NoError(t, err)
	return tu
}

func fileDecl(t *testing.T, tu *typed.TranslationUnit, i int) *typed.InitDeclarator {
	t.Helper()
	d, ok := tu.Decls[i].(*typed.Declaration)
	require.True(t, ok, "decl %d is %T", i, tu.Decls[i])
	return d.List[0]
}

func TestArithmeticTypes(t *testing.T) {
	tu := mustCheck(t, `int main() { char c = 'a'; unsigned u = 1u; return c + u; }`)
	require.NotNil(t, tu.Main)
	ret := tu.Main.Body.Items[2].(*typed.Return)
	assert.Equal(t, types.UInt, ret.X.Type().K)
	c := tu.Main.Body.Items[0].(*typed.Declaration).List[0]
	assert.Equal(t, types.Char, c.Type.K)
	assert.Equal(t, types.Int, c.Init.(*typed.IntConst).Type().K)
}

func TestIntConstTypes(t *testing.T) {
	tu := mustCheck(t, `long long big = 2147483648; unsigned x = 0xFFFFFFFF; int main() { return 0; }`)
	assert.Equal(t, types.LongLong, fileDecl(t, tu, 0).Init.(*typed.IntConst).Type().K)
	assert.Equal(t, types.UInt, fileDecl(t, tu, 1).Init.(*typed.IntConst).Type().K)
}

func TestConstantArrayLength(t *testing.T) {
	tu := mustCheck(t, `int a[sizeof(int) * 2 + (3 > 2)]; int main() { return 0; }`)
	assert.Equal(t, "int[9]", fileDecl(t, tu, 0).Type.String())
}

func TestUnsizedArrays(t *testing.T) {
	tu := mustCheck(t, `
int a[] = {1, [4] = 2};
char s[] = "hi";
char r[] = {"abc"};
int main() { return 0; }`)
	assert.Equal(t, "int[5]", fileDecl(t, tu, 0).Type.String())

	s := fileDecl(t, tu, 1)
	assert.Equal(t, "char[3]", s.Type.String())
	items := s.Init.(*typed.InitList).Items
	require.Len(t, items, 3)
	assert.Equal(t, "104", items[0].Init.(*typed.IntConst).Value.String())
	assert.Equal(t, "0", items[2].Init.(*typed.IntConst).Value.String())

	assert.Equal(t, "char[4]", fileDecl(t, tu, 2).Type.String())
}

func TestBraceElision(t *testing.T) {
	tu := mustCheck(t, `
struct P { int x; int y; };
int m[2][2] = {1, 2, 3, 4};
struct P ps[2] = {{1, 2}, [1].y = 5};
int main() { return 0; }`)
	var paths [][]int
	for _, it := range fileDecl(t, tu, 0).Init.(*typed.InitList).Items {
		paths = append(paths, it.Path)
	}
	assert.Equal(t, [][]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, paths)

	items := fileDecl(t, tu, 1).Init.(*typed.InitList).Items
	require.Len(t, items, 3)
	assert.Equal(t, []int{1, 1}, items[2].Path)
	assert.Equal(t, 12, typed.Offset(fileDecl(t, tu, 1).Type, items[2].Path))
}

func collect(s typed.Stmt, out map[string]string) {
	switch s := s.(type) {
	case *typed.Declaration:
		for _, id := range s.List {
			out[id.Name] = id.QualName
		}
	case *typed.Compound:
		for _, it := range s.Items {
			collect(it, out)
		}
	case *typed.For:
		if s.Init != nil {
			collect(s.Init, out)
		}
		collect(s.Body, out)
	}
}

func TestQualifiedNames(t *testing.T) {
	tu := mustCheck(t, `
int g;
int main() {
	int a = 1;
	{ int b = 2; { int c = 3; } }
	{ int d = 4; }
	for (int i = 0; i < 1; i++) { int e = 5; }
	return 0;
}`)
	g := fileDecl(t, tu, 0)
	assert.True(t, g.FileScope)
	assert.Equal(t, "g", g.QualName)

	names := map[string]string{}
	collect(tu.Main.Body, names)
	assert.Equal(t, map[string]string{
		"a": "a",
		"b": "block0::b",
		"c": "block0::block0::c",
		"d": "block1::d",
		"i": "block2::i",
		"e": "block2::block0::e",
	}, names)
}

func TestValidPrograms(t *testing.T) {
	for _, src := range []string{
		`int f(); int f() { return 1; } int main() { return f(); }`,
		`int main() { int *p = 0; void *q = p; char *c = q; return p == 0; }`,
		`struct A { struct B *b; }; struct B { struct A a; }; int main() { struct B b; return sizeof b; }`,
		`typedef int (*op)(int, int); int add(int a, int b) { return a + b; } int main() { op f = add; return f(1, 2); }`,
		`int main() { int a[3]; int *p = a; p += 2; return p - a + 2[a]; }`,
		`void f(void) { return; } int main() { f(); return 0; }`,
		`int main() { print("hi"); free(malloc(4)); return 0; }`,
	} {
		_, err := checkSrc(t, src)
		assert.NoError(t, err, src)
	}
}

func TestErrors(t *testing.T) {
	for _, tc := range []struct {
		src string
		msg string
	}{
		{`int main() { return y; }`, "type error at 1:21: undeclared identifier y"},
		{`int main() { int *p; p = 1; return 0; }`, "incompatible types when assigning to type int* from type int"},
		{`int main() { break; return 0; }`, "break statement not within a loop"},
		{`int f(void) { return 0; }`, "no main function defined"},
		{`int f(int a) { return a; } int main() { return f(); }`, "function expects 1 arguments, got 0"},
		{`int a[2] = {1, 2, 3}; int main() { return 0; }`, "excess elements in initializer"},
		{`struct P { int x; }; int main() { struct P p; return p.y; }`, "no member named y in struct P"},
		{`int main(int argc) { return 0; }`, "main must take no parameters"},
		{`void v; int main() { return 0; }`, "variable v declared void"},
		{`int main() { int x; return *x; }`, "indirection requires pointer operand (int invalid)"},
		{`int f() { return 1; } int f() { return 2; } int main() { return 0; }`, "redefinition of f"},
		{`int a[-1]; int main() { return 0; }`, "array size must be positive"},
		{`int a[1000000000]; int main() { return 0; }`, "array of 1000000000 elements of type int is too large"},
		{`struct B { char a[2000000000]; char b[2000000000]; }; int main() { return 0; }`, "struct B is too large"},
		{`struct S { int a; struct S s; }; int main() { return 0; }`, "type error at 1:1: struct S cannot contain itself"},
		{`int main() { int x; x++ = 1; return 0; }`, "expression is not assignable"},
		{`int main() { unsigned long u; return &u; }`, "incompatible types when returning type unsigned long* but int was expected"},
	} {
		_, err := checkSrc(t, tc.src)
		require.Error(t, err, tc.src)
		var ce *Error
		assert.True(t, errors.As(err, &ce), tc.src)
		assert.Contains(t, err.Error(), tc.msg, tc.src)
	}
}
