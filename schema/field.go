package schema

import (
	"strings"

	"github.com/bearlytools/protogen/field"
	"github.com/bearlytools/protogen/internal/scaling"
)

// FieldSpec is the unresolved description of a field handed to a Builder. Numeric attributes
// that are optional are pointers, use Ptr to set them.
type FieldSpec struct {
	// Name of the field. It must be unique within its structure.
	Name string `yaml:"name"`
	// Type is the in-memory type token, see field.ParseToken. Ignored if Enum or Struct is set.
	Type string `yaml:"type"`
	// Encoded is the wire type token. Empty means the wire matches Type.
	Encoded string `yaml:"encoded"`
	// Enum names an enumeration of the Protocol. The field is held as that enumeration.
	Enum string `yaml:"enum"`
	// Struct names a structure declared earlier in the same Builder.
	Struct string `yaml:"struct"`

	// Array is a fixed element count, a literal or the name of a constant or enumeration
	// value. For strings it is the length in bytes.
	Array string `yaml:"array"`
	// VariableArray names an earlier sibling holding the element count. Array is the bound.
	VariableArray string `yaml:"variableArray"`

	// DependsOn names an earlier sibling that gates this field.
	DependsOn string `yaml:"dependsOn"`
	// Compare is an optional comparison for DependsOn, such as "== 3", "> 0" or "!= MODE_OFF".
	// Without it the field is present when the sibling is not zero.
	Compare string `yaml:"compare"`

	// Min, Max and Scaler define a linear scaling for a number written as an integer. Only
	// one of Max and Scaler should be given.
	Min    *float64 `yaml:"min"`
	Max    *float64 `yaml:"max"`
	Scaler *float64 `yaml:"scaler"`

	// Default is the value used when a decode buffer ends before this field.
	Default *float64 `yaml:"default"`
	// Constant is always written instead of the in-memory value, and must be what is read.
	Constant *float64 `yaml:"constant"`
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Op is the comparison a Dependency applies to the referenced sibling.
type Op uint8

const (
	// OpNonZero is present when the sibling is not zero.
	OpNonZero Op = iota
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
)

var opTokens = []struct {
	tok string
	op  Op
}{
	// Two character operators first.
	{"==", OpEqual},
	{"!=", OpNotEqual},
	{"<=", OpLessEqual},
	{">=", OpGreaterEqual},
	{"<", OpLess},
	{">", OpGreater},
}

func (o Op) String() string {
	switch o {
	case OpNonZero:
		return "!=0"
	}
	for _, t := range opTokens {
		if t.op == o {
			return t.tok
		}
	}
	return "?"
}

// splitCompare splits "== 3" into OpEqual and "3".
func splitCompare(s string) (Op, string, bool) {
	s = strings.TrimSpace(s)
	for _, t := range opTokens {
		if strings.HasPrefix(s, t.tok) {
			return t.op, strings.TrimSpace(s[len(t.tok):]), true
		}
	}
	return OpNonZero, "", false
}

// Dependency gates a field on the value of an earlier sibling.
type Dependency struct {
	// Field is the name of the sibling.
	Field string
	// Index is the sibling's position in Structure.Fields.
	Index int
	// Op and Value are the comparison. Value is unused for OpNonZero.
	Op    Op
	Value float64
}

// Present reports if a field with this dependency is on the wire when the sibling holds v.
func (d *Dependency) Present(v float64) bool {
	switch d.Op {
	case OpEqual:
		return v == d.Value
	case OpNotEqual:
		return v != d.Value
	case OpLess:
		return v < d.Value
	case OpLessEqual:
		return v <= d.Value
	case OpGreater:
		return v > d.Value
	case OpGreaterEqual:
		return v >= d.Value
	}
	return v != 0
}

// Count is a resolved element count.
type Count struct {
	// Expr is the count as written, kept for symbolic lengths.
	Expr Expr
	// N is the resolved count.
	N int
}

// Field is a resolved field. It is immutable once its Structure is built.
type Field struct {
	Name   string
	Memory field.Descriptor
	Wire   field.Descriptor

	// Scaling is set when a number is written as an integer or bitfield.
	Scaling *scaling.Spec
	// Array is the fixed element count, or the bound of a variable array. For strings it is
	// the length.
	Array *Count
	// VariableArray is the name of the sibling holding the element count.
	VariableArray string
	// VariableIndex is the position of VariableArray in Structure.Fields, or -1.
	VariableIndex int
	DependsOn     *Dependency
	Default       *float64
	Constant      *float64
	Struct        *Structure
	Enum          *Enum

	// Length is this field's contribution to its structure's length.
	Length EncodedLength

	// ClosesRun is set on the last bitfield of a run. The cursor is byte aligned after it.
	ClosesRun bool
	// RunBytes is the number of bytes the run closed by this field occupies.
	RunBytes int
	// RunStart is the index of the first field of this field's bitfield run, or -1.
	RunStart int
}

// IsArray reports if the field holds a list of elements.
func (f *Field) IsArray() bool {
	return f.Array != nil && !f.IsString()
}

// IsString reports if the field is a string of either kind.
func (f *Field) IsString() bool {
	return f.Memory.Category == field.String || f.Memory.Category == field.FixedString
}

// IsBitfield reports if the field is written as part of a bitfield run.
func (f *Field) IsBitfield() bool {
	return f.Wire.Category == field.Bitfield
}

// InMemory reports if the field has an in-memory value. Null in-memory fields only reserve
// space on the wire.
func (f *Field) InMemory() bool {
	return f.Memory.Category != field.Null
}

// Bound is the element count of a fixed array, the largest count of a variable array, or 1.
func (f *Field) Bound() int {
	if f.Array == nil {
		return 1
	}
	return f.Array.N
}

// ElemBytes is the number of bytes one element occupies when it is byte aligned. It is 0 for
// bitfields, strings and structures.
func (f *Field) ElemBytes() int {
	switch f.Wire.Category {
	case field.Integer, field.Float, field.Null:
		return f.Wire.Bytes()
	}
	return 0
}

// Scalar reports if the field is a single number that can be referenced by a sibling.
func (f *Field) Scalar() bool {
	if f.IsArray() {
		return false
	}
	switch f.Memory.Category {
	case field.Integer, field.Float, field.Enum:
		return true
	}
	return false
}
