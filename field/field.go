// Package field details the type descriptors used for each side of a protogen field: how a
// value is held in memory and how it is written on the wire.
package field

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bearlytools/protogen/errors"
)

// Category is the kind of data a Descriptor describes.
type Category uint8

const (
	Unknown     Category = 0 // Unknown
	Integer     Category = 1 // integer
	Float       Category = 2 // float
	Bitfield    Category = 3 // bitfield
	String      Category = 4 // string
	FixedString Category = 5 // fixedstring
	Struct      Category = 6 // struct
	Enum        Category = 7 // enum
	Null        Category = 8 // null
)

func (c Category) String() string {
	switch c {
	case Integer:
		return "integer"
	case Float:
		return "float"
	case Bitfield:
		return "bitfield"
	case String:
		return "string"
	case FixedString:
		return "fixedstring"
	case Struct:
		return "struct"
	case Enum:
		return "enum"
	case Null:
		return "null"
	}
	return "Unknown"
}

// Numeric reports if the category holds a number.
func (c Category) Numeric() bool {
	switch c {
	case Integer, Float, Bitfield, Enum:
		return true
	}
	return false
}

// Descriptor is one side of a field, either the in-memory side or the wire side.
type Descriptor struct {
	// Category is the kind of data.
	Category Category
	// Bits is the width in bits. For an Enum in memory it is the minimum number of bits
	// needed to hold every value of the enumeration. Strings use 8.
	Bits int
	// Signed is only meaningful for Integer.
	Signed bool
}

// Bytes returns the number of whole bytes the descriptor occupies when it is byte aligned.
func (d Descriptor) Bytes() int {
	return (d.Bits + 7) / 8
}

// Aligned reports if the descriptor is written on byte boundaries. Only bitfields are not.
func (d Descriptor) Aligned() bool {
	return d.Category != Bitfield
}

// String returns the token ParseToken would accept for d.
func (d Descriptor) String() string {
	switch d.Category {
	case Integer:
		if d.Signed {
			return fmt.Sprintf("int%d", d.Bits)
		}
		return fmt.Sprintf("uint%d", d.Bits)
	case Float:
		return fmt.Sprintf("float%d", d.Bits)
	case Bitfield:
		return fmt.Sprintf("bitfield%d", d.Bits)
	case Enum:
		return fmt.Sprintf("enum%d", d.Bits)
	case Null:
		return fmt.Sprintf("null%d", d.Bits)
	}
	return d.Category.String()
}

var prefixes = []struct {
	prefix string
	cat    Category
	signed bool
}{
	{"unsigned", Integer, false},
	{"bitfield", Bitfield, false},
	{"signed", Integer, true},
	{"float", Float, false},
	{"uint", Integer, false},
	{"null", Null, false},
	{"enum", Enum, false},
	{"int", Integer, true},
}

// ParseToken parses a type token such as "uint8", "signed24", "float16", "bitfield3",
// "string", "fixedstring", "double" or "null". Widths are not validated here, ResolveMemory
// and ResolveWire correct them. A token without a width is an error except for the
// categories that have no width.
func ParseToken(token string) (Descriptor, error) {
	t := strings.ToLower(strings.TrimSpace(token))

	switch t {
	case "string":
		return Descriptor{Category: String, Bits: 8}, nil
	case "fixedstring":
		return Descriptor{Category: FixedString, Bits: 8}, nil
	case "struct", "structure":
		return Descriptor{Category: Struct}, nil
	case "null":
		return Descriptor{Category: Null, Bits: 8}, nil
	case "float":
		return Descriptor{Category: Float, Bits: 32}, nil
	case "double":
		return Descriptor{Category: Float, Bits: 64}, nil
	}

	for _, p := range prefixes {
		if !strings.HasPrefix(t, p.prefix) {
			continue
		}
		n, err := strconv.Atoi(t[len(p.prefix):])
		if err != nil || n < 1 {
			return Descriptor{}, fmt.Errorf("%w: %q", errors.ErrTypeToken, token)
		}
		return Descriptor{Category: p.cat, Bits: n, Signed: p.signed}, nil
	}
	return Descriptor{}, fmt.Errorf("%w: %q", errors.ErrTypeToken, token)
}

// MustParse is ParseToken that panics on error. It is meant for tests and static tables.
func MustParse(token string) Descriptor {
	d, err := ParseToken(token)
	if err != nil {
		panic(err)
	}
	return d
}
