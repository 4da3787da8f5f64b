package check

import (
	"github.com/tinyrange/cstep/internal/ast"
	"github.com/tinyrange/cstep/internal/types"
)

type symbol struct {
	t       *types.Type
	typedef bool
	defined bool // function with a body
}

type scope struct {
	ids  map[string]*symbol
	tags map[string]*types.StructDef
}

// env is the lexical environment: a stack of scopes, innermost last.
type env struct {
	scopes []*scope
	// defs remembers every struct definition and where it appeared so the
	// final layout pass can report errors at a sensible position.
	defs []structSite
}

type structSite struct {
	def *types.StructDef
	pos ast.Pos
}

func newEnv() *env {
	e := &env{}
	e.enter()
	return e
}

func (e *env) enter() {
	e.scopes = append(e.scopes, &scope{ids: map[string]*symbol{}, tags: map[string]*types.StructDef{}})
}

func (e *env) exit() { e.scopes = e.scopes[:len(e.scopes)-1] }

func (e *env) top() *scope { return e.scopes[len(e.scopes)-1] }

func (e *env) fileScope() bool { return len(e.scopes) == 1 }

func (e *env) lookup(name string) (*symbol, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if s, ok := e.scopes[i].ids[name]; ok {
			return s, true
		}
	}
	return nil, false
}

func (e *env) local(name string) (*symbol, bool) {
	s, ok := e.top().ids[name]
	return s, ok
}

func (e *env) bind(name string, s *symbol) { e.top().ids[name] = s }

func (e *env) lookupTag(tag string) (*types.StructDef, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if d, ok := e.scopes[i].tags[tag]; ok {
			return d, true
		}
	}
	return nil, false
}

func (e *env) localTag(tag string) (*types.StructDef, bool) {
	d, ok := e.top().tags[tag]
	return d, ok
}

// newTag creates an incomplete definition in the innermost scope.
// Anonymous definitions are tracked but never bound.
func (e *env) newTag(tag string, pos ast.Pos) *types.StructDef {
	d := types.NewStructDef(tag)
	if tag != "" {
		e.top().tags[tag] = d
	}
	e.defs = append(e.defs, structSite{def: d, pos: pos})
	return d
}
