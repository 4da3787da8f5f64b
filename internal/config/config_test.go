package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinyrange/cstep/internal/repr"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	src := `
endianness: big
memory:
  stack: {base: 100, size: 50}
ub:
  skip_strict_aliasing: true
`
	c, err := Load(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, repr.Big, c.Endianness)
	require.Equal(t, Region{Base: 100, Size: 50}, c.Memory.Stack)
	require.Equal(t, Default().Memory.Heap, c.Memory.Heap)
	require.True(t, c.UB.SkipStrictAliasing)
}

func TestLoadEmpty(t *testing.T) {
	c, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	require.Equal(t, Default(), c)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		edit func(*Config)
		msg  string
	}{
		{"negative", func(c *Config) { c.Memory.Heap.Size = -1 }, "non-negative"},
		{"overlap", func(c *Config) { c.Memory.Heap.Base = c.Memory.Stack.Base + 10 }, "overlaps"},
		{"touching", func(c *Config) { c.Memory.Stack.Size = c.Memory.Heap.Base - c.Memory.Stack.Base }, "overlaps"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.edit(&c)
			err := c.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader("memroy: {}\n"))
	require.Error(t, err)
}
