// Package config holds the construction-time settings of a runtime: the
// layout of the four memory regions, integer endianness and which checks
// for undefined behaviour are enforced.
package config

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/tinyrange/cstep/internal/repr"
)

type Region struct {
	Base int `yaml:"base"`
	Size int `yaml:"size"`
}

// End is the first address past the region.
func (r Region) End() int { return r.Base + r.Size }

type Memory struct {
	Stack Region `yaml:"stack"`
	Heap  Region `yaml:"heap"`
	Data  Region `yaml:"data"`
	Text  Region `yaml:"text"`
}

type UB struct {
	// SkipStrictAliasing disables the effective-type check on accesses.
	SkipStrictAliasing bool `yaml:"skip_strict_aliasing"`
}

type Config struct {
	Memory     Memory          `yaml:"memory"`
	Endianness repr.Endianness `yaml:"endianness"`
	UB         UB              `yaml:"ub"`
}

func Default() Config {
	return Config{
		Memory: Memory{
			Stack: Region{Base: 1000000, Size: 500000},
			Heap:  Region{Base: 2000000, Size: 500000},
			Data:  Region{Base: 3000000, Size: 500000},
			Text:  Region{Base: 4000000, Size: 500000},
		},
		Endianness: repr.Little,
	}
}

// NamedRegion pairs a region with its segment name.
type NamedRegion struct {
	Name string
	Region
}

// Regions lists the regions in the order stack, heap, data, text.
func (m Memory) Regions() []NamedRegion {
	return []NamedRegion{
		{"stack", m.Stack},
		{"heap", m.Heap},
		{"data", m.Data},
		{"text", m.Text},
	}
}

// Validate rejects negative bases or sizes and overlapping regions.
func (c Config) Validate() error {
	rs := c.Memory.Regions()
	for _, r := range rs {
		if r.Base < 0 || r.Size < 0 {
			return fmt.Errorf("%s region: base and size must be non-negative", r.Name)
		}
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i].Base < rs[j].Base })
	for i := 0; i+1 < len(rs); i++ {
		a, b := rs[i], rs[i+1]
		if a.End() >= b.Base {
			return fmt.Errorf("%s region [%d, %d) overlaps %s region at %d", a.Name, a.Base, a.End(), b.Name, b.Base)
		}
	}
	return nil
}

// Load decodes a YAML document over the defaults and validates the result.
func Load(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return c, nil
}

func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return Load(f)
}
