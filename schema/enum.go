package schema

import "math/bits"

// EnumValue is one named value of an Enum.
type EnumValue struct {
	Name  string `yaml:"name"`
	Value uint64 `yaml:"value"`
}

// Enum is a named enumeration. Its value names can be used as array counts and in
// dependsOn comparisons.
type Enum struct {
	Name   string      `yaml:"name"`
	Values []EnumValue `yaml:"values"`
}

// MinBits is the smallest number of bits that holds every value of the enumeration.
func (e *Enum) MinBits() int {
	var max uint64
	for _, v := range e.Values {
		if v.Value > max {
			max = v.Value
		}
	}
	if max == 0 {
		return 1
	}
	return bits.Len64(max)
}

// Lookup returns the value with name.
func (e *Enum) Lookup(name string) (uint64, bool) {
	for _, v := range e.Values {
		if v.Name == name {
			return v.Value, true
		}
	}
	return 0, false
}

// NameOf returns the name of value, or "" if value is not in the enumeration.
func (e *Enum) NameOf(value uint64) string {
	for _, v := range e.Values {
		if v.Value == value {
			return v.Name
		}
	}
	return ""
}
