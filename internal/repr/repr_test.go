package repr

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tinyrange/cstep/internal/types"
)

var scalarKinds = []types.Kind{
	types.Bool, types.Char, types.SChar, types.UChar, types.Short, types.UShort,
	types.Int, types.UInt, types.Long, types.ULong, types.LongLong, types.ULongLong,
}

func TestRoundTripAtLimits(t *testing.T) {
	for _, e := range []Endianness{Little, Big} {
		for _, k := range scalarKinds {
			ty := types.Basic(k)
			values := []*big.Int{
				types.MinValue(ty),
				types.MaxValue(ty),
				big.NewInt(0),
				new(big.Int).Rsh(types.MaxValue(ty), 1),
			}
			for _, v := range values {
				b, err := Encode(v, ty, e)
				require.NoError(t, err, "%s %s", ty, v)
				require.Len(t, b, ty.Size())
				require.Zero(t, v.Cmp(Decode(b, ty, e)), "%s %s %s", e, ty, v)
			}
		}
	}
}

func TestEndianness(t *testing.T) {
	b, err := Encode(big.NewInt(0x01020304), types.IntT(), Little)
	require.NoError(t, err)
	require.Equal(t, []byte{4, 3, 2, 1}, b)

	b, err = Encode(big.NewInt(0x01020304), types.IntT(), Big)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, b)

	b, err = Encode(big.NewInt(-2), types.ShortT(), Little)
	require.NoError(t, err)
	require.Equal(t, []byte{0xfe, 0xff}, b)
}

func TestRangePolicy(t *testing.T) {
	_, err := Encode(big.NewInt(128), types.Basic(types.SChar), Little)
	var re *RangeError
	require.ErrorAs(t, err, &re)
	require.Equal(t, "128 out of range for type signed char", err.Error())

	b, err := Encode(big.NewInt(-1), types.Basic(types.UChar), Little)
	require.NoError(t, err)
	require.Equal(t, []byte{0xff}, b)

	b, err = Encode(big.NewInt(42), types.BoolT(), Little)
	require.NoError(t, err)
	require.Equal(t, []byte{1}, b)

	v, err := Convert(big.NewInt(4294967296+7), types.UIntT())
	require.NoError(t, err)
	require.Equal(t, int64(7), v.Int64())
}

func TestEndiannessYAML(t *testing.T) {
	var cfg struct {
		E Endianness `yaml:"endianness"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("endianness: big\n"), &cfg))
	require.Equal(t, Big, cfg.E)
	require.Error(t, yaml.Unmarshal([]byte("endianness: middle\n"), &cfg))
}
