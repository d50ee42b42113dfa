package codec

import (
	"fmt"
	"math"
	"reflect"

	"github.com/bearlytools/protogen/errors"
	"github.com/bearlytools/protogen/field"
	"github.com/bearlytools/protogen/schema"
)

// Value is the in-memory value of a schema.Structure.
//
// Numbers are held normalized: signed integers as int64, unsigned integers and enumerations
// as uint64, floats as float64. A float32 field only ever holds values a float32 can
// represent. Arrays are []int64, []uint64, []float64 or []*Value. Strings are string and
// nested structures *Value.
type Value struct {
	s      *schema.Structure
	fields map[string]any
}

// New returns a Value for s with every field at its default, or its zero value.
func New(s *schema.Structure) *Value {
	v := &Value{s: s, fields: make(map[string]any, len(s.Fields))}
	for _, f := range s.Fields {
		if !f.InMemory() {
			continue
		}
		v.fields[f.Name] = zero(f)
	}
	return v
}

func zero(f *schema.Field) any {
	if f.IsArray() {
		return nil
	}
	switch f.Memory.Category {
	case field.String, field.FixedString:
		return ""
	case field.Struct:
		return New(f.Struct)
	}
	d := 0.0
	if f.Default != nil {
		d = *f.Default
	}
	return memValue(f, d)
}

// memValue converts x to the normalized type of f's in-memory side. Fields with no
// in-memory side use their wire side.
func memValue(f *schema.Field, x float64) any {
	d := f.Memory
	if !f.InMemory() {
		d = f.Wire
	}
	switch d.Category {
	case field.Float:
		if d.Bits == 32 {
			return float64(float32(x))
		}
		return x
	case field.Integer:
		if d.Signed {
			return int64(x)
		}
		return uint64(x)
	}
	return uint64(x)
}

// Structure returns the structure v holds a value of.
func (v *Value) Structure() *schema.Structure {
	return v.s
}

// Get returns the value of a field in its normalized type.
func (v *Value) Get(name string) (any, bool) {
	x, ok := v.fields[name]
	return x, ok
}

// Int returns a signed integer field. It is 0 if the field does not hold one.
func (v *Value) Int(name string) int64 {
	x, _ := v.fields[name].(int64)
	return x
}

// Uint returns an unsigned integer or enumeration field.
func (v *Value) Uint(name string) uint64 {
	x, _ := v.fields[name].(uint64)
	return x
}

// Float returns a float field.
func (v *Value) Float(name string) float64 {
	x, _ := v.fields[name].(float64)
	return x
}

// Str returns a string field.
func (v *Value) Str(name string) string {
	x, _ := v.fields[name].(string)
	return x
}

// Struct returns a nested structure field.
func (v *Value) Struct(name string) *Value {
	x, _ := v.fields[name].(*Value)
	return x
}

// Ints returns a signed integer array field.
func (v *Value) Ints(name string) []int64 {
	x, _ := v.fields[name].([]int64)
	return x
}

// Uints returns an unsigned integer or enumeration array field.
func (v *Value) Uints(name string) []uint64 {
	x, _ := v.fields[name].([]uint64)
	return x
}

// Floats returns a float array field.
func (v *Value) Floats(name string) []float64 {
	x, _ := v.fields[name].([]float64)
	return x
}

// Structs returns an array of nested structures.
func (v *Value) Structs(name string) []*Value {
	x, _ := v.fields[name].([]*Value)
	return x
}

// Set sets a field. Any Go integer or float type is accepted for numbers as long as it
// fits the field; floats are not accepted for integer fields. Arrays take a slice and may
// not be longer than the field's bound. Nested structures take a *Value of the field's
// structure.
func (v *Value) Set(name string, x any) error {
	f, _ := v.s.Field(name)
	if f == nil {
		return fmt.Errorf("%w: %s has no field %q", errors.ErrValue, v.s.Name, name)
	}
	if !f.InMemory() {
		return fmt.Errorf("%w: %s.%s is reserved and has no value", errors.ErrValue, v.s.Name, name)
	}

	n, err := normalize(f, x)
	if err != nil {
		return fmt.Errorf("%w: %s.%s: %s", errors.ErrValue, v.s.Name, name, err)
	}
	v.fields[name] = n
	return nil
}

// MustSet is Set that panics on error.
func (v *Value) MustSet(name string, x any) *Value {
	if err := v.Set(name, x); err != nil {
		panic(err)
	}
	return v
}

func normalize(f *schema.Field, x any) (any, error) {
	if f.IsArray() {
		return normalizeArray(f, x)
	}

	switch f.Memory.Category {
	case field.String, field.FixedString:
		switch s := x.(type) {
		case string:
			return s, nil
		case []byte:
			return string(s), nil
		}
		return nil, fmt.Errorf("want a string, got %T", x)
	case field.Struct:
		sv, ok := x.(*Value)
		if !ok || sv == nil {
			return nil, fmt.Errorf("want *Value, got %T", x)
		}
		if sv.s != f.Struct {
			return nil, fmt.Errorf("want a %s, got a %s", f.Struct.Name, sv.s.Name)
		}
		return sv, nil
	}
	return scalar(f.Memory, x)
}

func normalizeArray(f *schema.Field, x any) (any, error) {
	rv := reflect.ValueOf(x)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("want a slice, got %T", x)
	}
	if rv.Len() > f.Bound() {
		return nil, fmt.Errorf("%d elements, at most %d allowed", rv.Len(), f.Bound())
	}

	if f.Memory.Category == field.Struct {
		out := make([]*Value, rv.Len())
		for i := range out {
			n, err := normalize(&schema.Field{Memory: f.Memory, Struct: f.Struct}, rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = n.(*Value)
		}
		return out, nil
	}

	switch elem := zeroScalar(f.Memory).(type) {
	case int64:
		return fill[int64](f.Memory, rv)
	case uint64:
		return fill[uint64](f.Memory, rv)
	case float64:
		return fill[float64](f.Memory, rv)
	default:
		return nil, fmt.Errorf("arrays of %T are not supported", elem)
	}
}

func fill[T int64 | uint64 | float64](d field.Descriptor, rv reflect.Value) ([]T, error) {
	out := make([]T, rv.Len())
	for i := range out {
		n, err := scalar(d, rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = n.(T)
	}
	return out, nil
}

func zeroScalar(d field.Descriptor) any {
	switch d.Category {
	case field.Float:
		return float64(0)
	case field.Integer:
		if d.Signed {
			return int64(0)
		}
	}
	return uint64(0)
}

// scalar normalizes a single number for the in-memory descriptor d.
func scalar(d field.Descriptor, x any) (any, error) {
	rv := reflect.ValueOf(x)

	switch d.Category {
	case field.Float:
		var f float64
		switch {
		case rv.CanInt():
			f = float64(rv.Int())
		case rv.CanUint():
			f = float64(rv.Uint())
		case rv.CanFloat():
			f = rv.Float()
		default:
			return nil, fmt.Errorf("want a number, got %T", x)
		}
		if d.Bits == 32 {
			if math.Abs(f) > math.MaxFloat32 && !math.IsInf(f, 0) {
				return nil, fmt.Errorf("%v overflows float32", f)
			}
			return float64(float32(f)), nil
		}
		return f, nil

	case field.Integer:
		if d.Signed {
			var i int64
			switch {
			case rv.CanInt():
				i = rv.Int()
			case rv.CanUint():
				if rv.Uint() > math.MaxInt64 {
					return nil, fmt.Errorf("%v overflows int%d", rv.Uint(), d.Bits)
				}
				i = int64(rv.Uint())
			default:
				return nil, fmt.Errorf("want an integer, got %T", x)
			}
			if d.Bits < 64 {
				lim := int64(1) << (d.Bits - 1)
				if i < -lim || i >= lim {
					return nil, fmt.Errorf("%d overflows int%d", i, d.Bits)
				}
			}
			return i, nil
		}
		fallthrough

	case field.Enum:
		var u uint64
		switch {
		case rv.CanUint():
			u = rv.Uint()
		case rv.CanInt():
			if rv.Int() < 0 {
				return nil, fmt.Errorf("%d is negative", rv.Int())
			}
			u = uint64(rv.Int())
		default:
			return nil, fmt.Errorf("want an integer, got %T", x)
		}
		if d.Category == field.Integer && d.Bits < 64 && u >= uint64(1)<<d.Bits {
			return nil, fmt.Errorf("%d overflows uint%d", u, d.Bits)
		}
		return u, nil
	}
	return nil, fmt.Errorf("%s fields do not hold numbers", d.Category)
}

// number returns a numeric field's value as a float64, for dependency checks and array
// counts.
func (v *Value) number(f *schema.Field) float64 {
	switch x := v.fields[f.Name].(type) {
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case float64:
		return x
	}
	return 0
}

// count returns the element count of an array field, clamped to its bound.
func (v *Value) count(f *schema.Field) int {
	if f.VariableIndex < 0 {
		return f.Bound()
	}
	return countOf(f, v.number(v.s.Fields[f.VariableIndex]))
}

// countOf clamps n, the value of f's count sibling, to f's bound.
func countOf(f *schema.Field, n float64) int {
	switch {
	case !(n > 0):
		return 0
	case n >= float64(f.Bound()):
		return f.Bound()
	}
	return int(n)
}
