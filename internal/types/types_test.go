package types

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArraySize(t *testing.T) {
	size, ok := ArraySize(3, 4)
	require.True(t, ok)
	require.Equal(t, 12, size)
	size, ok = ArraySize(MaxObjectSize, 1)
	require.True(t, ok)
	require.Equal(t, MaxObjectSize, size)
	_, ok = ArraySize(MaxObjectSize/4+1, 4)
	require.False(t, ok)
	_, ok = ArraySize(MaxObjectSize, MaxObjectSize)
	require.False(t, ok)
	_, ok = ArraySize(-1, 4)
	require.False(t, ok)
}

func TestScalarSizes(t *testing.T) {
	cases := []struct {
		k    Kind
		size int
	}{
		{Bool, 1}, {Char, 1}, {UChar, 1}, {Short, 2}, {UShort, 2},
		{Int, 4}, {UInt, 4}, {Long, 4}, {ULong, 4}, {LongLong, 8}, {ULongLong, 8},
	}
	for _, c := range cases {
		ty := Basic(c.k)
		require.Equal(t, c.size, ty.Size(), ty.String())
		require.Equal(t, c.size, ty.Align(), ty.String())
	}
	require.Equal(t, 4, PointerTo(CharT()).Size())
	require.Equal(t, 12, ArrayOf(IntT(), 3).Size())
}

func TestStructLayout(t *testing.T) {
	d := NewStructDef("S")
	d.SetMembers([]Member{
		{Name: "c", Type: CharT()},
		{Name: "i", Type: IntT()},
		{Name: "s", Type: ShortT()},
	})
	require.NoError(t, d.Layout())
	st := StructOf(d)
	require.Equal(t, 12, st.Size())
	require.Equal(t, 4, st.Align())
	m, ok := st.Member("s")
	require.True(t, ok)
	require.Equal(t, 8, m.Offset)
}

func TestStructCannotContainItself(t *testing.T) {
	d := NewStructDef("node")
	d.SetMembers([]Member{{Name: "self", Type: StructOf(d)}})
	err := d.Layout()
	require.Error(t, err)
	require.Contains(t, err.Error(), "struct node cannot contain itself")
}

func TestSelfReferenceThroughPointer(t *testing.T) {
	d := NewStructDef("node")
	d.SetMembers([]Member{
		{Name: "v", Type: IntT()},
		{Name: "next", Type: PointerTo(StructOf(d))},
	})
	require.NoError(t, d.Layout())
	require.Equal(t, 8, StructOf(d).Size())
	require.True(t, Compatible(StructOf(d), StructOf(d)))
}

func TestCompatible(t *testing.T) {
	require.True(t, Compatible(IntT(), IntT()))
	require.False(t, Compatible(IntT(), UIntT()))
	require.True(t, Compatible(PointerTo(IntT()), PointerTo(IntT())))
	require.False(t, Compatible(PointerTo(IntT()), PointerTo(CharT())))
	require.False(t, Compatible(ArrayOf(IntT(), 2), ArrayOf(IntT(), 3)))

	f1, err := FuncOf(IntT(), []Param{{Name: "a", Type: ArrayOf(IntT(), 4)}})
	require.NoError(t, err)
	f2, err := FuncOf(IntT(), []Param{{Name: "b", Type: PointerTo(IntT())}})
	require.NoError(t, err)
	require.True(t, Compatible(f1, f2))
}

func TestFuncOfRejectsArrayReturn(t *testing.T) {
	_, err := FuncOf(ArrayOf(IntT(), 2), nil)
	require.Error(t, err)
}

func TestLimits(t *testing.T) {
	require.Equal(t, "-2147483648", MinValue(IntT()).String())
	require.Equal(t, "2147483647", MaxValue(IntT()).String())
	require.Equal(t, "255", MaxValue(Basic(UChar)).String())
	require.Equal(t, "1", MaxValue(BoolT()).String())
	require.True(t, InRange(Basic(SChar), big.NewInt(-128)))
	require.False(t, InRange(Basic(SChar), big.NewInt(128)))
	require.True(t, CanRepresent(IntT(), Basic(UShort)))
	require.False(t, CanRepresent(IntT(), UIntT()))
}
