// Package codec encodes and decodes Values of a schema.Structure to and from the wire.
//
// Fields are visited in order. Adjacent bitfields share a bit cursor and are packed MSB
// first; the last field of a run byte aligns the cursor. Byte aligned numbers use the
// structure's byte order. Arrays repeat their element, dependent fields are skipped when
// their condition does not hold, and a decode buffer may end anywhere in the trailing run
// of defaulted fields.
package codec

import (
	"fmt"
	"math"

	"github.com/bearlytools/protogen/errors"
	"github.com/bearlytools/protogen/field"
	"github.com/bearlytools/protogen/internal/binary"
	"github.com/bearlytools/protogen/internal/bits"
	"github.com/bearlytools/protogen/schema"
	"github.com/gostdlib/base/context"
)

// Encode returns the wire bytes of v, which must be a Value of s.
func Encode(ctx context.Context, s *schema.Structure, v *Value) ([]byte, error) {
	if err := check(ctx, s, v); err != nil {
		return nil, err
	}

	buf := scratch.Get(ctx, s.Length.MaxBytes)
	defer scratch.Put(ctx, buf)

	e := encoder{order: s.Order(), buf: buf}
	if err := e.structure(s, v); err != nil {
		return nil, errors.E(ctx, errors.CatInternal, errors.TypeBounds, err)
	}

	out := make([]byte, e.c.Byte)
	copy(out, buf)
	return out, nil
}

// EncodeTo writes the wire bytes of v into buf and returns the number of bytes written. buf
// should be at least s.Length.MaxBytes long, shorter buffers fail if the value does not fit.
func EncodeTo(ctx context.Context, s *schema.Structure, v *Value, buf []byte) (int, error) {
	if err := check(ctx, s, v); err != nil {
		return 0, err
	}

	clear(buf[:min(len(buf), s.Length.MaxBytes)])

	e := encoder{order: s.Order(), buf: buf}
	if err := e.structure(s, v); err != nil {
		return 0, errors.E(ctx, errors.CatUser, errors.TypeBounds, err)
	}
	return e.c.Byte, nil
}

func check(ctx context.Context, s *schema.Structure, v *Value) error {
	if v == nil || v.s != s {
		return errors.E(
			ctx,
			errors.CatUser,
			errors.TypeValue,
			fmt.Errorf("%w: value is not a %s", errors.ErrValue, s.Name),
		)
	}
	return nil
}

// encoder writes one structure, including any it nests. buf is zeroed before use.
type encoder struct {
	order binary.ByteOrder
	buf   []byte
	c     bits.Cursor
}

// structure writes v. Dependencies and variable counts see each sibling as a decoder reads
// it back, not as it is held in memory.
func (e *encoder) structure(s *schema.Structure, v *Value) error {
	seen := make([]float64, len(s.Fields))
	for i, f := range s.Fields {
		if f.Scalar() {
			seen[i] = asFloat(zero(f))
		}
	}

	for i, f := range s.Fields {
		if f.DependsOn != nil && !f.DependsOn.Present(seen[f.DependsOn.Index]) {
			continue
		}
		if f.Scalar() {
			seen[i] = wireNumber(f, v.fields[f.Name])
		}
		if err := e.field(f, v, seen); err != nil {
			return fmt.Errorf("%s.%s: %w", s.Name, f.Name, err)
		}
	}
	return nil
}

// count returns the number of elements written for array f.
func count(f *schema.Field, seen []float64) int {
	if f.VariableIndex < 0 {
		return f.Bound()
	}
	return countOf(f, seen[f.VariableIndex])
}

func (e *encoder) field(f *schema.Field, v *Value, seen []float64) error {
	x := v.fields[f.Name]

	switch {
	case f.Memory.Category == field.String:
		return e.str(f, x.(string))
	case f.Memory.Category == field.FixedString:
		return e.fixedStr(f, x.(string))
	case f.Struct != nil:
		if !f.IsArray() {
			return e.structure(f.Struct, x.(*Value))
		}
		elems, _ := x.([]*Value)
		n := count(f, seen)
		for i := 0; i < n; i++ {
			var ev *Value
			if i < len(elems) {
				ev = elems[i]
			} else {
				ev = New(f.Struct)
			}
			if err := e.structure(f.Struct, ev); err != nil {
				return err
			}
		}
		return nil
	case f.Wire.Category == field.Null:
		return e.skip(f.Wire.Bytes() * count(f, seen))
	}

	if f.Constant != nil {
		return e.number(f, toWire(f, memValue(f, *f.Constant)))
	}
	if !f.IsArray() {
		return e.number(f, toWire(f, x))
	}

	n := count(f, seen)
	for i := 0; i < n; i++ {
		if err := e.number(f, toWire(f, element(x, i, f))); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// element returns element i of a numeric array, or the zero value past its end.
func element(x any, i int, f *schema.Field) any {
	switch a := x.(type) {
	case []int64:
		if i < len(a) {
			return a[i]
		}
	case []uint64:
		if i < len(a) {
			return a[i]
		}
	case []float64:
		if i < len(a) {
			return a[i]
		}
	}
	return zeroScalar(f.Memory)
}

func (e *encoder) number(f *schema.Field, raw uint64) error {
	if f.IsBitfield() {
		// Bitfields are unsigned, out of range values clamp.
		var err error
		if f.Wire.Bits > bits.MaxBits {
			err = bits.EncodeLongBits(raw, f.Wire.Bits, e.buf, &e.c)
		} else {
			if raw > math.MaxUint32 {
				raw = math.MaxUint32
			}
			err = bits.EncodeBits(uint32(raw), f.Wire.Bits, e.buf, &e.c)
		}
		if err != nil {
			return err
		}
		if f.ClosesRun {
			bits.Close(&e.c)
		}
		return nil
	}

	idx := e.c.Byte
	if err := binary.EncodeUint(raw, f.Wire.Bytes(), e.order, e.buf, &idx); err != nil {
		return err
	}
	e.c.Byte = idx
	return nil
}

func (e *encoder) skip(n int) error {
	if e.c.Byte+n > len(e.buf) {
		return fmt.Errorf("%w: %d bytes at %d", errors.ErrBounds, n, e.c.Byte)
	}
	clear(e.buf[e.c.Byte : e.c.Byte+n])
	e.c.Byte += n
	return nil
}

// str writes a NUL terminated string of at most f.Bound() bytes, terminator included.
func (e *encoder) str(f *schema.Field, s string) error {
	n := 0
	for n < len(s) && n < f.Bound()-1 && s[n] != 0 {
		n++
	}
	if e.c.Byte+n+1 > len(e.buf) {
		return fmt.Errorf("%w: string of %d bytes at %d", errors.ErrBounds, n+1, e.c.Byte)
	}
	copy(e.buf[e.c.Byte:], s[:n])
	e.buf[e.c.Byte+n] = 0
	e.c.Byte += n + 1
	return nil
}

// fixedStr writes exactly f.Bound() bytes, NUL padded.
func (e *encoder) fixedStr(f *schema.Field, s string) error {
	n := f.Bound()
	if e.c.Byte+n > len(e.buf) {
		return fmt.Errorf("%w: string of %d bytes at %d", errors.ErrBounds, n, e.c.Byte)
	}
	dst := e.buf[e.c.Byte : e.c.Byte+n]
	clear(dst)
	copy(dst, s)
	e.c.Byte += n
	return nil
}
