package memory

import (
	"sort"

	"github.com/tinyrange/cstep/internal/types"
)

// Heap is a first-fit allocator over the heap region.
type Heap struct {
	base, size int
	blocks     map[int]int
	usage      int
}

func NewHeap(base, size int) *Heap {
	return &Heap{base: base, size: size, blocks: map[int]int{}}
}

// Allocate returns the address of a fresh block of n bytes, or 0 when n is
// not positive or no gap is large enough.
func (h *Heap) Allocate(n int) int {
	if n <= 0 {
		return 0
	}
	addrs := h.addresses()
	cur := h.base
	for _, a := range addrs {
		start := h.candidate(cur)
		if a-start >= n {
			return h.take(start, n)
		}
		cur = a + h.blocks[a]
	}
	start := h.candidate(cur)
	if start+n <= h.base+h.size {
		return h.take(start, n)
	}
	return 0
}

func (h *Heap) candidate(cur int) int {
	start := types.AlignUp(cur, types.MaxAlign)
	if start == 0 {
		start = types.MaxAlign
	}
	return start
}

func (h *Heap) take(addr, n int) int {
	h.blocks[addr] = n
	h.usage += n
	return addr
}

// Free releases the block at addr and returns its size.
func (h *Heap) Free(addr int) (int, error) {
	n, ok := h.blocks[addr]
	if !ok {
		return 0, fault(InvalidFree, addr, "free on address 0x%x not returned by malloc", addr)
	}
	delete(h.blocks, addr)
	h.usage -= n
	return n, nil
}

func (h *Heap) BlockSize(addr int) (int, bool) {
	n, ok := h.blocks[addr]
	return n, ok
}

// Usage is the number of bytes in live blocks.
func (h *Heap) Usage() int { return h.usage }

func (h *Heap) Blocks() map[int]int {
	out := make(map[int]int, len(h.blocks))
	for a, n := range h.blocks {
		out[a] = n
	}
	return out
}

func (h *Heap) addresses() []int {
	out := make([]int, 0, len(h.blocks))
	for a := range h.blocks {
		out = append(out, a)
	}
	sort.Ints(out)
	return out
}
