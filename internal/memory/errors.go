package memory

import "fmt"

type FaultKind int

const (
	SegFault FaultKind = iota
	Misaligned
	AliasingViolation
	NoObject
	InvalidFree
	Overlap
)

// Fault is an access the simulated machine refuses to perform.
type Fault struct {
	Kind FaultKind
	Addr int
	Msg  string
}

func (f *Fault) Error() string { return f.Msg }

func fault(k FaultKind, addr int, format string, args ...interface{}) *Fault {
	return &Fault{Kind: k, Addr: addr, Msg: fmt.Sprintf(format, args...)}
}

func segfault(op string, addr int) *Fault {
	return fault(SegFault, addr, "segmentation fault (tried to %s 0x%x)", op, addr)
}
