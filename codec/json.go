package codec

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/bearlytools/protogen/errors"
	"github.com/bearlytools/protogen/field"
	"github.com/bearlytools/protogen/schema"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/gostdlib/base/context"
)

// jsonOptions provides options for writing Values as JSON.
type jsonOptions struct {
	UseEnumNumbers bool
}

// JSONOption provides options for MarshalJSON.
type JSONOption func(jsonOptions) (jsonOptions, error)

// WithEnumNumbers configures whether enumeration values are emitted as numbers or names.
// Values with no name are always numbers.
func WithEnumNumbers(use bool) JSONOption {
	return func(o jsonOptions) (jsonOptions, error) {
		o.UseEnumNumbers = use
		return o, nil
	}
}

// MarshalJSON renders v as a JSON object with its fields in declaration order. Reserved
// fields are left out.
func MarshalJSON(ctx context.Context, v *Value, options ...JSONOption) ([]byte, error) {
	var buf bytes.Buffer
	if err := MarshalJSONWriter(ctx, v, &buf, options...); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// MarshalJSONWriter is MarshalJSON writing to w. The object is followed by a newline.
func MarshalJSONWriter(ctx context.Context, v *Value, w io.Writer, options ...JSONOption) error {
	opts := jsonOptions{}
	for _, o := range options {
		var err error
		if opts, err = o(opts); err != nil {
			return err
		}
	}

	enc := jsontext.NewEncoder(w)
	if err := writeObject(enc, v, opts); err != nil {
		return errors.E(ctx, errors.CatInternal, errors.TypeValue, err)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (v *Value) MarshalJSON() ([]byte, error) {
	return MarshalJSON(context.Background(), v)
}

func writeObject(enc *jsontext.Encoder, v *Value, opts jsonOptions) error {
	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return err
	}
	for _, f := range v.s.Fields {
		if !f.InMemory() {
			continue
		}
		if err := enc.WriteToken(jsontext.String(f.Name)); err != nil {
			return err
		}
		if err := writeField(enc, f, v.fields[f.Name], opts); err != nil {
			return fmt.Errorf("%s.%s: %w", v.s.Name, f.Name, err)
		}
	}
	return enc.WriteToken(jsontext.EndObject)
}

func writeField(enc *jsontext.Encoder, f *schema.Field, x any, opts jsonOptions) error {
	switch n := x.(type) {
	case nil:
		if f.IsArray() {
			if err := enc.WriteToken(jsontext.BeginArray); err != nil {
				return err
			}
			return enc.WriteToken(jsontext.EndArray)
		}
		return enc.WriteToken(jsontext.Null)
	case string:
		return enc.WriteToken(jsontext.String(n))
	case *Value:
		return writeObject(enc, n, opts)
	case []*Value:
		return writeArray(enc, n, func(e *Value) error { return writeObject(enc, e, opts) })
	case []int64:
		return writeArray(enc, n, func(e int64) error { return writeNumber(enc, f, e, opts) })
	case []uint64:
		return writeArray(enc, n, func(e uint64) error { return writeNumber(enc, f, e, opts) })
	case []float64:
		return writeArray(enc, n, func(e float64) error { return writeNumber(enc, f, e, opts) })
	}
	return writeNumber(enc, f, x, opts)
}

func writeArray[T any](enc *jsontext.Encoder, elems []T, write func(T) error) error {
	if err := enc.WriteToken(jsontext.BeginArray); err != nil {
		return err
	}
	for _, e := range elems {
		if err := write(e); err != nil {
			return err
		}
	}
	return enc.WriteToken(jsontext.EndArray)
}

func writeNumber(enc *jsontext.Encoder, f *schema.Field, x any, opts jsonOptions) error {
	switch n := x.(type) {
	case int64:
		return enc.WriteToken(jsontext.Int(n))
	case uint64:
		if f.Enum != nil && !opts.UseEnumNumbers {
			if name := f.Enum.NameOf(n); name != "" {
				return enc.WriteToken(jsontext.String(name))
			}
		}
		return enc.WriteToken(jsontext.Uint(n))
	case float64:
		return enc.WriteToken(jsontext.Float(n))
	}
	return fmt.Errorf("cannot render %T", x)
}

// UnmarshalJSON reads a Value of s from a JSON object in the form MarshalJSON writes.
// Fields missing from the object keep their defaults. Enumerations may be names or
// numbers.
func UnmarshalJSON(ctx context.Context, s *schema.Structure, data []byte) (*Value, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(data))
	v, err := readObject(dec, s)
	if err != nil {
		return nil, errors.E(ctx, errors.CatUser, errors.TypeValue, fmt.Errorf("%w: %w", errors.ErrValue, err))
	}
	return v, nil
}

func readObject(dec *jsontext.Decoder, s *schema.Structure) (*Value, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		return nil, err
	}
	if tok.Kind() != '{' {
		return nil, fmt.Errorf("%s: want an object, got %s", s.Name, tok.Kind())
	}

	v := New(s)
	for dec.PeekKind() != '}' {
		tok, err := dec.ReadToken()
		if err != nil {
			return nil, err
		}
		name := tok.String()
		f, _ := s.Field(name)
		if f == nil || !f.InMemory() {
			return nil, fmt.Errorf("%s has no field %q", s.Name, name)
		}

		x, err := readField(dec, f)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", s.Name, name, err)
		}
		if x == nil {
			continue
		}
		if err := v.Set(name, x); err != nil {
			return nil, err
		}
	}
	if _, err := dec.ReadToken(); err != nil {
		return nil, err
	}
	return v, nil
}

// readField returns a value Value.Set accepts for f, or nil for a JSON null.
func readField(dec *jsontext.Decoder, f *schema.Field) (any, error) {
	if dec.PeekKind() == 'n' {
		_, err := dec.ReadToken()
		return nil, err
	}

	if f.IsArray() {
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		var out []any
		for dec.PeekKind() != ']' {
			x, err := readElem(dec, f)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", len(out), err)
			}
			out = append(out, x)
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		if f.Struct != nil {
			vals := make([]*Value, len(out))
			for i, x := range out {
				vals[i] = x.(*Value)
			}
			return vals, nil
		}
		return out, nil
	}
	return readElem(dec, f)
}

func readElem(dec *jsontext.Decoder, f *schema.Field) (any, error) {
	if f.Struct != nil {
		return readObject(dec, f.Struct)
	}

	tok, err := dec.ReadToken()
	if err != nil {
		return nil, err
	}

	switch tok.Kind() {
	case '"':
		s := tok.String()
		if f.IsString() {
			return s, nil
		}
		if f.Enum != nil {
			if n, ok := f.Enum.Lookup(s); ok {
				return n, nil
			}
			return nil, fmt.Errorf("%q is not a %s", s, f.Enum.Name)
		}
		return nil, fmt.Errorf("want a number, got %q", s)
	case '0':
		return parseNumber(f.Memory, tok.String())
	}
	return nil, fmt.Errorf("unexpected %s", tok.Kind())
}

// parseNumber parses a JSON number literal into the Go type Value.Set expects for d.
func parseNumber(d field.Descriptor, lit string) (any, error) {
	switch {
	case d.Category == field.Float:
		return strconv.ParseFloat(lit, 64)
	case d.Category == field.Integer && d.Signed:
		return strconv.ParseInt(lit, 10, 64)
	}
	return strconv.ParseUint(lit, 10, 64)
}
