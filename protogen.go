// Package protogen converts values between an in-memory form and a compact, bit packed wire
// form described by a field tree.
//
// Structures are described with schema.Builder (or loaded with the config package), and
// values are converted with codec.Encode and codec.Decode. This package re-exports the
// names most callers need.
package protogen

import (
	"github.com/bearlytools/protogen/field"
	"github.com/bearlytools/protogen/schema"
)

// Category is the kind of data a field holds.
type Category = field.Category

const (
	Unknown     = field.Unknown
	Integer     = field.Integer
	Float       = field.Float
	Bitfield    = field.Bitfield
	String      = field.String
	FixedString = field.FixedString
	Struct      = field.Struct
	Enum        = field.Enum
	Null        = field.Null
)

// ByteOrder is the order multi-byte values are written in.
type ByteOrder = schema.ByteOrder

const (
	BigEndian    = schema.BigEndian
	LittleEndian = schema.LittleEndian
)

// Capabilities are the protocol wide type limits.
type Capabilities = field.Capabilities

// FieldSpec describes one field to a schema.Builder.
type FieldSpec = schema.FieldSpec
