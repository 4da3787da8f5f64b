package memory

import "sort"

// InitTable tracks bytes that have definitely been written.
type InitTable struct {
	bytes map[int]bool
}

func NewInitTable() *InitTable { return &InitTable{bytes: map[int]bool{}} }

func (it *InitTable) Add(addr, n int) {
	for i := 0; i < n; i++ {
		it.bytes[addr+i] = true
	}
}

func (it *InitTable) Remove(addr, n int) {
	for i := 0; i < n; i++ {
		delete(it.bytes, addr+i)
	}
}

// Initialized reports whether every byte of [addr, addr+n) was written.
func (it *InitTable) Initialized(addr, n int) bool {
	for i := 0; i < n; i++ {
		if !it.bytes[addr+i] {
			return false
		}
	}
	return true
}

func (it *InitTable) Snapshot() []int {
	out := make([]int, 0, len(it.bytes))
	for a := range it.bytes {
		out = append(out, a)
	}
	sort.Ints(out)
	return out
}
