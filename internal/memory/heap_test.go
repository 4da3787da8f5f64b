package memory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeapFirstFit(t *testing.T) {
	h := NewHeap(1000, 64)
	a := h.Allocate(10)
	b := h.Allocate(4)
	require.Equal(t, 1000, a)
	require.Equal(t, 1016, b)
	require.Equal(t, 14, h.Usage())

	n, err := h.Free(a)
	require.NoError(t, err)
	require.Equal(t, 10, n)

	// the gap left by a is reused
	require.Equal(t, 1000, h.Allocate(8))
	require.Equal(t, 1024, h.Allocate(16))
	require.Equal(t, 0, h.Allocate(64))
}

func TestHeapRejectsBadSizes(t *testing.T) {
	h := NewHeap(1000, 64)
	require.Equal(t, 0, h.Allocate(0))
	require.Equal(t, 0, h.Allocate(-4))
}

func TestHeapInvalidFree(t *testing.T) {
	h := NewHeap(1000, 64)
	a := h.Allocate(4)
	_, err := h.Free(a)
	require.NoError(t, err)
	_, err = h.Free(a)
	requireFault(t, err, InvalidFree)
	_, err = h.Free(1234)
	requireFault(t, err, InvalidFree)
}

func TestInitTable(t *testing.T) {
	it := NewInitTable()
	it.Add(10, 4)
	require.True(t, it.Initialized(10, 4))
	require.False(t, it.Initialized(12, 4))
	it.Remove(10, 2)
	require.False(t, it.Initialized(10, 1))
	require.Equal(t, []int{12, 13}, it.Snapshot())
}
