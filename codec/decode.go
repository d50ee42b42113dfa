package codec

import (
	"bytes"
	"fmt"

	"github.com/bearlytools/protogen/errors"
	"github.com/bearlytools/protogen/field"
	"github.com/bearlytools/protogen/internal/binary"
	"github.com/bearlytools/protogen/internal/bits"
	"github.com/bearlytools/protogen/schema"
	"github.com/gostdlib/base/context"
)

// Decode reads a Value of s from the start of data. A data shorter than s.Length.MinBytes
// fails before anything is read. Decoding stops successfully if data ends before a field
// of the default suffix, which keeps its default.
func Decode(ctx context.Context, s *schema.Structure, data []byte) (*Value, error) {
	v, _, err := DecodeFrom(ctx, s, data)
	return v, err
}

// DecodeFrom is Decode that also returns the number of bytes of data that were read.
func DecodeFrom(ctx context.Context, s *schema.Structure, data []byte) (*Value, int, error) {
	if len(data) < s.Length.MinBytes {
		return nil, 0, errors.E(
			ctx,
			errors.CatUser,
			errors.TypeBufferTooShort,
			fmt.Errorf("%w: %s needs at least %d bytes, got %d", errors.ErrBufferTooShort, s.Name, s.Length.MinBytes, len(data)),
		)
	}

	d := decoder{order: s.Order(), buf: data}
	v, err := d.structure(s)
	if err != nil {
		switch {
		case errors.Is(err, errors.ErrConstantMismatch):
			return nil, 0, errors.E(ctx, errors.CatUser, errors.TypeConstantMismatch, err)
		case errors.Is(err, errors.ErrBounds):
			// The variable part of the structure ran past the end of data.
			return nil, 0, errors.E(
				ctx,
				errors.CatUser,
				errors.TypeBufferTooShort,
				fmt.Errorf("%w: %w", errors.ErrBufferTooShort, err),
			)
		}
		return nil, 0, errors.E(ctx, errors.CatInternal, errors.TypeBug, err)
	}
	return v, d.c.Byte, nil
}

type decoder struct {
	order binary.ByteOrder
	buf   []byte
	c     bits.Cursor
}

func (d *decoder) structure(s *schema.Structure) (*Value, error) {
	v := New(s)
	for i, f := range s.Fields {
		if i >= s.FirstDefault() && d.ends(s, i) {
			break
		}
		if f.DependsOn != nil && !f.DependsOn.Present(v.number(s.Fields[f.DependsOn.Index])) {
			continue
		}
		if err := d.field(f, v); err != nil {
			return nil, fmt.Errorf("%s.%s: %w", s.Name, f.Name, err)
		}
	}
	return v, nil
}

// ends reports if the buffer ends before field i of the default suffix.
func (d *decoder) ends(s *schema.Structure, i int) bool {
	f := s.Fields[i]

	need := f.ElemBytes()
	if f.IsBitfield() {
		// Runs are all or nothing.
		if f.RunStart != i {
			return false
		}
		for _, rf := range s.Fields[i:] {
			if rf.ClosesRun {
				need = rf.RunBytes
				break
			}
		}
	}
	return len(d.buf)-d.c.Byte < need
}

func (d *decoder) field(f *schema.Field, v *Value) error {
	var err error

	switch {
	case f.Memory.Category == field.String:
		v.fields[f.Name], err = d.str(f)
		return err
	case f.Memory.Category == field.FixedString:
		v.fields[f.Name], err = d.fixedStr(f)
		return err
	case f.Struct != nil:
		if !f.IsArray() {
			nv, err := d.structure(f.Struct)
			if err != nil {
				return err
			}
			v.fields[f.Name] = nv
			return nil
		}
		out := make([]*Value, v.count(f))
		for i := range out {
			if out[i], err = d.structure(f.Struct); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		v.fields[f.Name] = out
		return nil
	case f.Wire.Category == field.Null:
		return d.skip(f.Wire.Bytes() * v.count(f))
	}

	if f.Constant != nil {
		raw, err := d.number(f)
		if err != nil {
			return err
		}
		want := toWire(f, memValue(f, *f.Constant))
		if mask(raw, f.Wire.Bits) != mask(want, f.Wire.Bits) {
			return fmt.Errorf("%w: got %#x, want %#x", errors.ErrConstantMismatch, mask(raw, f.Wire.Bits), mask(want, f.Wire.Bits))
		}
		if f.InMemory() {
			v.fields[f.Name] = memValue(f, *f.Constant)
		}
		return nil
	}

	if !f.IsArray() {
		raw, err := d.number(f)
		if err != nil {
			return err
		}
		if f.InMemory() {
			v.fields[f.Name] = fromWire(f, raw)
		}
		return nil
	}

	n := v.count(f)
	switch zeroScalar(f.Memory).(type) {
	case int64:
		v.fields[f.Name], err = decodeArray[int64](d, f, n)
	case uint64:
		v.fields[f.Name], err = decodeArray[uint64](d, f, n)
	default:
		v.fields[f.Name], err = decodeArray[float64](d, f, n)
	}
	return err
}

func decodeArray[T int64 | uint64 | float64](d *decoder, f *schema.Field, n int) ([]T, error) {
	out := make([]T, n)
	for i := range out {
		raw, err := d.number(f)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = fromWire(f, raw).(T)
	}
	return out, nil
}

// number reads the raw bits of one numeric element. Signed byte aligned integers are sign
// extended.
func (d *decoder) number(f *schema.Field) (uint64, error) {
	if f.IsBitfield() {
		var (
			raw uint64
			err error
		)
		if f.Wire.Bits > bits.MaxBits {
			raw, err = bits.DecodeLongBits(f.Wire.Bits, d.buf, &d.c)
		} else {
			var r uint32
			r, err = bits.DecodeBits(f.Wire.Bits, d.buf, &d.c)
			raw = uint64(r)
		}
		if err != nil {
			return 0, err
		}
		if f.ClosesRun {
			bits.Close(&d.c)
		}
		return raw, nil
	}

	idx := d.c.Byte
	if f.Wire.Category == field.Integer && f.Wire.Signed {
		n, err := binary.DecodeInt(f.Wire.Bytes(), d.order, d.buf, &idx)
		if err != nil {
			return 0, err
		}
		d.c.Byte = idx
		return uint64(n), nil
	}
	raw, err := binary.DecodeUint(f.Wire.Bytes(), d.order, d.buf, &idx)
	if err != nil {
		return 0, err
	}
	d.c.Byte = idx
	return raw, nil
}

func (d *decoder) skip(n int) error {
	if d.c.Byte+n > len(d.buf) {
		return fmt.Errorf("%w: %d bytes at %d", errors.ErrBounds, n, d.c.Byte)
	}
	d.c.Byte += n
	return nil
}

// str reads a NUL terminated string of at most f.Bound() bytes, terminator included. A
// string that fills the bound may omit the terminator.
func (d *decoder) str(f *schema.Field) (string, error) {
	start := d.c.Byte
	for i := 0; i < f.Bound(); i++ {
		if start+i >= len(d.buf) {
			return "", fmt.Errorf("%w: unterminated string at %d", errors.ErrBounds, start)
		}
		if d.buf[start+i] == 0 {
			d.c.Byte = start + i + 1
			return string(d.buf[start : start+i]), nil
		}
	}
	d.c.Byte = start + f.Bound()
	return string(d.buf[start:d.c.Byte]), nil
}

func (d *decoder) fixedStr(f *schema.Field) (string, error) {
	n := f.Bound()
	if d.c.Byte+n > len(d.buf) {
		return "", fmt.Errorf("%w: string of %d bytes at %d", errors.ErrBounds, n, d.c.Byte)
	}
	b := d.buf[d.c.Byte : d.c.Byte+n]
	d.c.Byte += n
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b), nil
}
