package interp

import (
	"fmt"
	"strings"

	"github.com/tinyrange/cstep/internal/ast"
	"github.com/tinyrange/cstep/internal/typed"
)

// Item is one agenda element: a node to evaluate or an instruction to
// apply. Pos is the source position errors are reported at.
type Item struct {
	Node   typed.Node
	Instr  Instr
	LValue bool
	Pos    ast.Pos
}

func (it Item) String() string {
	if it.Instr != nil {
		return it.Instr.String()
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", it.Node), "*typed.")
}

// Agenda is the stack of pending work, next item last.
type Agenda struct {
	items []Item
}

func (a *Agenda) push(it Item) { a.items = append(a.items, it) }

// PushNode schedules n for evaluation as an rvalue.
func (a *Agenda) PushNode(n typed.Node) {
	a.push(Item{Node: n, Pos: n.Position()})
}

// PushLValue schedules n for evaluation as an lvalue.
func (a *Agenda) PushLValue(n typed.Node) {
	a.push(Item{Node: n, LValue: true, Pos: n.Position()})
}

func (a *Agenda) PushInstr(pos ast.Pos, i Instr) {
	a.push(Item{Instr: i, Pos: pos})
}

func (a *Agenda) Pop() (Item, bool) {
	if len(a.items) == 0 {
		return Item{}, false
	}
	it := a.items[len(a.items)-1]
	a.items = a.items[:len(a.items)-1]
	return it, true
}

func (a *Agenda) Empty() bool { return len(a.items) == 0 }

func (a *Agenda) Len() int { return len(a.items) }

func (a *Agenda) Items() []Item { return a.items }
