package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPromote(t *testing.T) {
	require.Equal(t, Int, Promote(CharT()).K)
	require.Equal(t, Int, Promote(Basic(UShort)).K)
	require.Equal(t, Int, Promote(BoolT()).K)
	require.Equal(t, UInt, Promote(UIntT()).K)
	require.Equal(t, LongLong, Promote(Basic(LongLong)).K)
}

func TestUsualArithmetic(t *testing.T) {
	cases := []struct {
		a, b, want Kind
	}{
		{Int, UInt, UInt},
		{Char, Char, Int},
		{UChar, Short, Int},
		{Long, UInt, ULong},
		{LongLong, UInt, LongLong},
		{ULongLong, Int, ULongLong},
		{Int, Long, Long},
	}
	for _, c := range cases {
		got := UsualArithmetic(Basic(c.a), Basic(c.b))
		require.Equal(t, c.want, got.K, "%s and %s", Basic(c.a), Basic(c.b))
	}
}

func TestAssignCompatible(t *testing.T) {
	ip, cp, vp := PointerTo(IntT()), PointerTo(CharT()), PointerTo(VoidT())
	require.True(t, AssignCompatible(IntT(), CharT(), false))
	require.True(t, AssignCompatible(ip, vp, false))
	require.True(t, AssignCompatible(vp, cp, false))
	require.False(t, AssignCompatible(ip, cp, false))
	require.False(t, AssignCompatible(ip, IntT(), false))
	require.True(t, AssignCompatible(ip, IntT(), true))
	require.True(t, AssignCompatible(BoolT(), ip, false))
	require.False(t, AssignCompatible(IntT(), ip, false))
}

func TestDecay(t *testing.T) {
	require.Equal(t, "int*", Decay(ArrayOf(IntT(), 3)).String())
	f, err := FuncOf(IntT(), nil)
	require.NoError(t, err)
	require.Equal(t, "int(*)()", Decay(f).String())
}
