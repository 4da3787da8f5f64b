package memory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinyrange/cstep/internal/types"
)

func TestAddRegistersNestedEntries(t *testing.T) {
	et := NewEffectiveTypes()
	d := types.NewStructDef("P")
	d.SetMembers([]types.Member{{Name: "x", Type: types.IntT()}, {Name: "c", Type: types.CharT()}})
	require.NoError(t, d.Layout())
	arr := types.ArrayOf(types.StructOf(d), 2)
	require.NoError(t, et.Add(100, arr))

	got, ok := et.Lookup(100)
	require.True(t, ok)
	require.Equal(t, "struct P[2]", got.String())
	got, ok = et.Lookup(104)
	require.True(t, ok)
	require.Equal(t, "char", got.String())
	got, ok = et.Lookup(108)
	require.True(t, ok)
	require.Equal(t, "struct P", got.String())
	_, ok = et.Lookup(101)
	require.False(t, ok)
}

func TestAddRejectsOverlap(t *testing.T) {
	et := NewEffectiveTypes()
	require.NoError(t, et.Add(100, types.IntT()))
	err := et.Add(102, types.ShortT())
	requireFault(t, err, Overlap)
	require.NoError(t, et.Add(104, types.ShortT()))
}

func TestRemoveAndChange(t *testing.T) {
	et := NewEffectiveTypes()
	require.NoError(t, et.Add(100, types.IntT()))
	require.NoError(t, et.Remove(100))
	require.Empty(t, et.Snapshot())

	require.NoError(t, et.AddUntyped(200, 4))
	require.NoError(t, et.Change(200, types.ShortT()))
	got, _ := et.Lookup(200)
	require.Equal(t, types.Short, got.K)
	err := et.Change(200, types.IntT())
	requireFault(t, err, NoObject)
}
