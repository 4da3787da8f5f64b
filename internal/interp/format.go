package interp

import (
	"fmt"
	"strings"

	"github.com/tinyrange/cstep/internal/repr"
	"github.com/tinyrange/cstep/internal/types"
)

// format renders a value for print: integers in decimal, pointers in hex
// and aggregates as brace lists.
func (r *Runtime) format(t *types.Type, b []byte) string {
	switch {
	case t.IsPointer():
		return fmt.Sprintf("0x%x", repr.Decode(b, t, r.order))
	case t.IsScalar():
		return repr.Decode(b, t, r.order).String()
	case t.IsStruct():
		parts := make([]string, len(t.Def.Members))
		for i, m := range t.Def.Members {
			parts[i] = r.format(m.Type, b[m.Offset:m.Offset+m.Type.Size()])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case t.IsArray() && len(b) == t.Size():
		n := t.Elem.Size()
		parts := make([]string, t.Len)
		for i := range parts {
			parts[i] = r.format(t.Elem, b[i*n:(i+1)*n])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return "<" + t.String() + ">"
}
