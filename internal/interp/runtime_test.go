package interp

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tinyrange/cstep/internal/check"
	"github.com/tinyrange/cstep/internal/config"
	"github.com/tinyrange/cstep/internal/parser"
	"github.com/tinyrange/cstep/internal/repr"
)

type program struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	Exit   *int   `yaml:"exit"`
	Error  string `yaml:"error"`
	Output string `yaml:"output"`
}

func loadPrograms(t *testing.T) []program {
	t.Helper()
	data, err := os.ReadFile("testdata/programs.yaml")
	require.NoError(t, err)
	var progs []program
	require.NoError(t, yaml.Unmarshal(data, &progs))
	require.NotEmpty(t, progs)
	return progs
}

func newRuntime(t *testing.T, src string, cfg config.Config, out *bytes.Buffer) *Runtime {
	t.Helper()
	f, err := parser.ParseFile("test.c", src)
	require.NoError(t, err)
	tu, err := check.Check(f)
	require.NoError(t, err)
	var w *bytes.Buffer
	if out != nil {
		w = out
	} else {
		w = &bytes.Buffer{}
	}
	r, err := New(tu, cfg, w)
	require.NoError(t, err)
	return r
}

func TestPrograms(t *testing.T) {
	for _, p := range loadPrograms(t) {
		p := p
		t.Run(p.Name, func(t *testing.T) {
			var out bytes.Buffer
			r := newRuntime(t, p.Source, config.Default(), &out)
			err := r.Run(1000000)
			if p.Error != "" {
				require.Error(t, err)
				var ub *UndefinedBehaviour
				require.True(t, errors.As(err, &ub), "got %T: %v", err, err)
				assert.Contains(t, err.Error(), p.Error)
				_, done := r.ExitCode()
				assert.False(t, done)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, p.Exit, "fixture has neither exit nor error")
			code, done := r.ExitCode()
			require.True(t, done)
			assert.Equal(t, *p.Exit, code)
			assert.Equal(t, p.Output, out.String())
		})
	}
}

// stepAll single-steps r to completion, calling after once per step.
func stepAll(t *testing.T, r *Runtime, after func()) {
	t.Helper()
	for i := 0; i < 1000000; i++ {
		err := r.Step()
		if errors.Is(err, ErrAgendaEmpty) {
			return
		}
		require.NoError(t, err)
		after()
	}
	t.Fatal("program did not finish")
}

func TestScopeBalance(t *testing.T) {
	src := `
int sq(int x) { { int y = x; return y * y; } }
int main() {
	int s = 0;
	for (int i = 0; i < 3; i++) {
		if (i == 1) continue;
		{ int t = sq(i); s += t; }
	}
	while (1) { int k = 0; break; }
	return s;
}`
	r := newRuntime(t, src, config.Default(), nil)
	stepAll(t, r, func() {
		require.Equal(t, r.syms.Depth(), r.entered-r.exited)
	})
	code, done := r.ExitCode()
	require.True(t, done)
	assert.Equal(t, 4, code)
	assert.Equal(t, r.entered, r.exited)
	assert.Greater(t, r.entered, 0)
}

func TestObjectsAreAligned(t *testing.T) {
	src := `
struct s { char c; int i; short h; };
char g1;
int g2;
char g3;
struct s g4;
int main() {
	char a;
	long long b = 1;
	char c;
	short d = 2;
	struct s e;
	e.i = 1;
	return b + d + e.i;
}`
	r := newRuntime(t, src, config.Default(), nil)
	stepAll(t, r, func() {
		aligned := func(o Object) {
			if a := o.Type.Align(); a > 0 {
				require.Zero(t, o.Addr%a, "%s at 0x%x", o.Name, o.Addr)
			}
		}
		for _, o := range r.syms.globals {
			aligned(o)
		}
		for _, f := range r.syms.frames {
			for _, b := range f.blocks {
				for _, o := range b.objs {
					aligned(o)
				}
			}
		}
	})
	code, _ := r.ExitCode()
	assert.Equal(t, 4, code)
}

func TestViewIsDeepCopy(t *testing.T) {
	r := newRuntime(t, `int main() { int *p = malloc(8); *p = 3; return *p; }`, config.Default(), nil)
	require.NoError(t, r.Run(0))

	v := r.View()
	require.NotNil(t, v.ExitCode)
	assert.Equal(t, 3, *v.ExitCode)
	assert.Empty(t, v.Agenda)
	assert.Empty(t, v.Stash)
	assert.Empty(t, v.Frames)
	assert.Equal(t, 8, v.HeapUsage)
	addr := config.Default().Memory.Heap.Base
	assert.Equal(t, map[int]int{addr: 8}, v.Heap)
	assert.Equal(t, "int", v.EffectiveTypes[addr])
	assert.Equal(t, "", v.EffectiveTypes[addr+4])

	*v.ExitCode = 99
	v.Heap[addr] = 1
	v.Memory[1].Bytes[0] = 0xff
	v.EffectiveTypes[addr] = "char"

	w := r.View()
	assert.Equal(t, 3, *w.ExitCode)
	assert.Equal(t, 8, w.Heap[addr])
	assert.Equal(t, "heap", w.Memory[1].Name)
	assert.Equal(t, byte(3), w.Memory[1].Bytes[0])
	assert.Equal(t, "int", w.EffectiveTypes[addr])
}

func TestViewDuringCall(t *testing.T) {
	r := newRuntime(t, `int f(int x) { return x; } int main() { return f(5); }`, config.Default(), nil)
	var seen bool
	stepAll(t, r, func() {
		v := r.View()
		if len(v.Frames) == 2 {
			seen = true
			assert.Equal(t, "main", v.Frames[0].Function)
			assert.Equal(t, "f", v.Frames[1].Function)
			assert.Equal(t, v.Frames[0].Top, v.Frames[1].Base)
		}
	})
	assert.True(t, seen)
}

func TestFunctionDesignatorOnStash(t *testing.T) {
	src := `int twice(int x) { return 2 * x; } int main() { return twice(1) + (*twice)(2); }`
	r := newRuntime(t, src, config.Default(), nil)
	seen := map[string]int{}
	stepAll(t, r, func() {
		for _, e := range r.View().Stash {
			if e.Func != "" {
				seen[e.Func]++
				assert.True(t, e.HasAddr)
				assert.NotZero(t, e.Addr)
			}
		}
	})
	assert.NotZero(t, seen["twice"])
	assert.Len(t, seen, 1)
	code, _ := r.ExitCode()
	assert.Equal(t, 6, code)
}

func TestAgendaEmptyAfterExit(t *testing.T) {
	r := newRuntime(t, `int main() { return 0; }`, config.Default(), nil)
	require.NoError(t, r.Run(0))
	require.ErrorIs(t, r.Step(), ErrAgendaEmpty)
	require.ErrorIs(t, r.Step(), ErrAgendaEmpty)
	assert.NoError(t, r.Err())
}

func TestStepLimit(t *testing.T) {
	r := newRuntime(t, `int main() { while (1) { } return 0; }`, config.Default(), nil)
	require.ErrorIs(t, r.Run(500), ErrStepLimit)
	assert.Equal(t, 500, r.Steps())
	require.ErrorIs(t, r.Run(500), ErrStepLimit)
	assert.Equal(t, 1000, r.Steps())
	_, done := r.ExitCode()
	assert.False(t, done)
}

func TestErrorsAreSticky(t *testing.T) {
	r := newRuntime(t, `int main() { int *p = 0; return *p; }`, config.Default(), nil)
	err := r.Run(0)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "undefined behaviour at 1:"), err.Error())
	steps := r.Steps()
	assert.Equal(t, err, r.Step())
	assert.Equal(t, err, r.Run(0))
	assert.Equal(t, steps, r.Steps())
}

func TestTrace(t *testing.T) {
	var trace bytes.Buffer
	r := newRuntime(t, `int main() { return 1; }`, config.Default(), nil)
	r.SetTrace(&trace)
	require.NoError(t, r.Run(0))
	lines := strings.Split(strings.TrimSpace(trace.String()), "\n")
	require.Len(t, lines, r.Steps())
	assert.Equal(t, "1 TranslationUnit lvalue=false", lines[0])
	assert.Equal(t, "2 Ident lvalue=false", lines[1])
	assert.Equal(t, "3 Call(0) lvalue=false", lines[2])
	assert.Equal(t, "Exit lvalue=false", strings.SplitN(lines[len(lines)-1], " ", 2)[1])
}

func TestEndianness(t *testing.T) {
	src := `int main() { int x = 258; unsigned char *c = (unsigned char *)&x; return c[0] * 10 + c[3]; }`

	r := newRuntime(t, src, config.Default(), nil)
	require.NoError(t, r.Run(0))
	code, _ := r.ExitCode()
	assert.Equal(t, 20, code)

	cfg := config.Default()
	cfg.Endianness = repr.Big
	r = newRuntime(t, src, cfg, nil)
	require.NoError(t, r.Run(0))
	code, _ = r.ExitCode()
	assert.Equal(t, 2, code)
}

func TestSkipStrictAliasing(t *testing.T) {
	src := `int main() { int x = 1; short *s = (short *)&x; return *s; }`
	cfg := config.Default()
	cfg.UB.SkipStrictAliasing = true
	r := newRuntime(t, src, cfg, nil)
	require.NoError(t, r.Run(0))
	code, _ := r.ExitCode()
	assert.Equal(t, 1, code)
}

func TestTextSegmentIsNotWritable(t *testing.T) {
	src := `
int f() { return 1; }
int main() { char *p = (char *)f; *p = 0; return 0; }`
	r := newRuntime(t, src, config.Default(), nil)
	err := r.Run(0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "segmentation fault")
}
