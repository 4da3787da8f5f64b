package repr

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type Endianness int

const (
	Little Endianness = iota
	Big
)

func (e Endianness) String() string {
	if e == Big {
		return "big"
	}
	return "little"
}

func ParseEndianness(s string) (Endianness, error) {
	switch s {
	case "little":
		return Little, nil
	case "big":
		return Big, nil
	}
	return Little, fmt.Errorf("unknown endianness %q (want little or big)", s)
}

func (e *Endianness) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := ParseEndianness(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*e = v
	return nil
}

func (e Endianness) MarshalYAML() (interface{}, error) { return e.String(), nil }
