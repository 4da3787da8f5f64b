package memory

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinyrange/cstep/internal/config"
	"github.com/tinyrange/cstep/internal/types"
)

func newMemory(t *testing.T) *Memory {
	t.Helper()
	m, err := New(config.Default())
	require.NoError(t, err)
	return m
}

func requireFault(t *testing.T, err error, kind FaultKind) {
	t.Helper()
	var f *Fault
	require.True(t, errors.As(err, &f), "expected fault, got %v", err)
	require.Equal(t, kind, f.Kind, f.Msg)
}

func TestNewRejectsOverlap(t *testing.T) {
	cfg := config.Default()
	cfg.Memory.Data.Base = cfg.Memory.Heap.Base
	_, err := New(cfg)
	require.Error(t, err)
}

func TestSegfaultOutsideRegions(t *testing.T) {
	m := newMemory(t)
	_, err := m.Bytes(0, 4, false)
	requireFault(t, err, SegFault)
	require.Equal(t, "segmentation fault (tried to read 0x0)", err.Error())

	stack := config.Default().Memory.Stack
	_, err = m.Bytes(stack.End()-2, 4, false)
	requireFault(t, err, SegFault)
}

func TestReadOnlyAndExecute(t *testing.T) {
	m := newMemory(t)
	text := config.Default().Memory.Text.Base
	require.NoError(t, m.SetBytes(text, []byte{1, 0}, Flags{ReadOnly: true, Executable: true}))
	b, err := m.Bytes(text, 2, true)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 0}, b)

	requireFault(t, m.SetBytes(text, []byte{2}, Flags{}), SegFault)

	data := config.Default().Memory.Data.Base
	_, err = m.Bytes(data, 2, true)
	requireFault(t, err, SegFault)
}

func TestRepeatedTypedWritesAreAllowed(t *testing.T) {
	m := newMemory(t)
	addr := config.Default().Memory.Stack.Base
	require.NoError(t, m.Types().Add(addr, types.IntT()))
	for i := 0; i < 3; i++ {
		require.NoError(t, m.StoreScalar(addr, big.NewInt(int64(i)), types.IntT(), Flags{}))
	}
	v, err := m.LoadScalar(addr, types.IntT())
	require.NoError(t, err)
	require.Equal(t, int64(2), v.Int64())

	// signedness variants and character access are allowed
	require.NoError(t, m.StoreScalar(addr, big.NewInt(7), types.UIntT(), Flags{}))
	_, err = m.Load(addr, types.CharT())
	require.NoError(t, err)
}

func TestFirstWriteEstablishesType(t *testing.T) {
	m := newMemory(t)
	h := NewHeap(config.Default().Memory.Heap.Base, config.Default().Memory.Heap.Size)
	p := h.Allocate(8)
	require.NotZero(t, p)
	require.NoError(t, m.Types().AddUntyped(p, 8))

	require.NoError(t, m.StoreScalar(p, big.NewInt(1), types.IntT(), Flags{}))
	require.NoError(t, m.StoreScalar(p, big.NewInt(2), types.IntT(), Flags{}))
	err := m.StoreScalar(p, big.NewInt(3), types.ShortT(), Flags{})
	requireFault(t, err, AliasingViolation)
}

func TestMisalignedAccess(t *testing.T) {
	m := newMemory(t)
	addr := config.Default().Memory.Stack.Base + 2
	_, err := m.Load(addr, types.IntT())
	requireFault(t, err, Misaligned)
}

func TestNoObject(t *testing.T) {
	m := newMemory(t)
	addr := config.Default().Memory.Stack.Base + 16
	_, err := m.Load(addr, types.IntT())
	requireFault(t, err, NoObject)
}

func TestNestedAggregateAccess(t *testing.T) {
	m := newMemory(t)
	base := config.Default().Memory.Stack.Base
	grid := types.ArrayOf(types.ArrayOf(types.IntT(), 3), 2)
	require.NoError(t, m.Types().Add(base, grid))
	for i := 0; i < 6; i++ {
		require.NoError(t, m.StoreScalar(base+4*i, big.NewInt(int64(i)), types.IntT(), Flags{}), "element %d", i)
	}
	v, err := m.LoadScalar(base, types.IntT())
	require.NoError(t, err)
	require.Equal(t, int64(0), v.Int64())
	_, err = m.Load(base, types.UIntT())
	require.NoError(t, err)
	_, err = m.Load(base, types.ShortT())
	requireFault(t, err, AliasingViolation)

	d := types.NewStructDef("S")
	d.SetMembers([]types.Member{{Name: "a", Type: types.ArrayOf(types.IntT(), 2)}})
	require.NoError(t, d.Layout())
	s := base + 32
	require.NoError(t, m.Types().Add(s, types.StructOf(d)))
	require.NoError(t, m.StoreScalar(s, big.NewInt(7), types.IntT(), Flags{}))
	v, err = m.LoadScalar(s, types.IntT())
	require.NoError(t, err)
	require.Equal(t, int64(7), v.Int64())
	err = m.StoreScalar(s, big.NewInt(7), types.ShortT(), Flags{})
	requireFault(t, err, AliasingViolation)
}

func TestSkipStrictAliasing(t *testing.T) {
	cfg := config.Default()
	cfg.UB.SkipStrictAliasing = true
	m, err := New(cfg)
	require.NoError(t, err)
	addr := cfg.Memory.Stack.Base
	require.NoError(t, m.Types().Add(addr, types.IntT()))
	require.NoError(t, m.StoreScalar(addr, big.NewInt(1), types.ShortT(), Flags{}))
}
