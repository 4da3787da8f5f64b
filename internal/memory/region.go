package memory

// Region is one contiguous segment of the simulated address space.
type Region struct {
	Name string
	Base int
	data []byte
}

func newRegion(name string, base, size int) *Region {
	return &Region{Name: name, Base: base, data: make([]byte, size)}
}

func (r *Region) Size() int { return len(r.data) }

func (r *Region) End() int { return r.Base + len(r.data) }

// Contains reports whether [addr, addr+n) lies inside the region.
func (r *Region) Contains(addr, n int) bool {
	return addr >= r.Base && n >= 0 && addr+n <= r.End()
}

func (r *Region) slice(addr, n int) []byte {
	off := addr - r.Base
	return r.data[off : off+n]
}
