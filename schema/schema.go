// Package schema resolves structure descriptions into immutable field trees and computes
// their encoded lengths.
//
// A Builder takes FieldSpecs, which are tolerant: widths that a protocol cannot represent
// are corrected and scalings that make no sense are dropped, each recorded as a
// field.Warning and logged. Broken references between fields are not tolerated and fail
// Build.
package schema

import (
	"log/slog"

	"github.com/bearlytools/protogen/errors"
	"github.com/bearlytools/protogen/field"
	"github.com/bearlytools/protogen/internal/binary"
	"github.com/gostdlib/base/context"
)

// ByteOrder is the order multi-byte values are written in.
type ByteOrder = binary.ByteOrder

const (
	BigEndian    = binary.BigEndian
	LittleEndian = binary.LittleEndian
)

// Protocol holds the settings shared by every structure in a Schema.
type Protocol struct {
	// Name of the protocol.
	Name string
	// Order is the byte order of every multi-byte field. Bitfields are always MSB first.
	Order ByteOrder
	// Caps limits the types fields resolve to.
	Caps field.Capabilities
	// Constants are named values usable as array counts.
	Constants map[string]int
	// Enums are the enumerations fields can be held as.
	Enums []*Enum
}

func (p Protocol) enum(name string) *Enum {
	for _, e := range p.Enums {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// env returns the value of every named constant, including enumeration values.
func (p Protocol) env() map[string]int {
	env := map[string]int{}
	for _, e := range p.Enums {
		for _, v := range e.Values {
			env[v.Name] = int(v.Value)
		}
	}
	// Constants win over enumeration values with the same name.
	for k, v := range p.Constants {
		env[k] = v
	}
	return env
}

type config struct {
	logger *slog.Logger
}

// Option is an optional argument to NewBuilder.
type Option func(*config)

// WithLogger sets the logger schema corrections are written to. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

type structSpec struct {
	name   string
	fields []FieldSpec
}

// Builder collects structure descriptions and resolves them with Build. Structures must be
// added before any structure that nests them.
type Builder struct {
	proto   Protocol
	cfg     config
	structs []structSpec
}

// NewBuilder creates a Builder for structures of proto.
func NewBuilder(proto Protocol, options ...Option) *Builder {
	cfg := config{logger: slog.Default()}
	for _, o := range options {
		o(&cfg)
	}
	return &Builder{proto: proto, cfg: cfg}
}

// Struct adds a structure.
func (b *Builder) Struct(name string, fields ...FieldSpec) *Builder {
	b.structs = append(b.structs, structSpec{name: name, fields: fields})
	return b
}

// Build resolves every structure added to the Builder. Errors are an errors.Error of
// errors.TypeSchema that wraps the sentinel describing what was wrong.
func (b *Builder) Build() (*Schema, error) {
	ctx := context.Background()

	s := &Schema{
		Protocol: b.proto,
		env:      b.proto.env(),
		byName:   map[string]*Structure{},
	}

	for _, spec := range b.structs {
		if _, ok := s.byName[spec.name]; ok {
			err := wrapf(errors.ErrDuplicateField, "structure %q is declared twice", spec.name)
			return nil, errors.E(ctx, errors.CatUser, errors.TypeSchema, err)
		}
		st, err := s.resolve(spec)
		if err != nil {
			return nil, errors.E(ctx, errors.CatUser, errors.TypeSchema, err)
		}
		for _, w := range st.warnings {
			b.cfg.logger.Warn("protogen schema correction",
				"protocol", b.proto.Name,
				"field", w.Field,
				"message", w.Message,
			)
		}
		s.byName[spec.name] = st
		s.structs = append(s.structs, st)
		s.warnings = append(s.warnings, st.warnings...)
	}
	return s, nil
}

// Schema is a set of resolved structures.
type Schema struct {
	Protocol Protocol

	env      map[string]int
	byName   map[string]*Structure
	structs  []*Structure
	warnings []field.Warning
}

// Structure returns the structure with name.
func (s *Schema) Structure(name string) (*Structure, bool) {
	st, ok := s.byName[name]
	return st, ok
}

// Structures returns every structure in the order they were added.
func (s *Schema) Structures() []*Structure {
	return s.structs
}

// Warnings returns every correction made while building.
func (s *Schema) Warnings() []field.Warning {
	return s.warnings
}

// Structure is a resolved structure. It is immutable and safe for concurrent use.
type Structure struct {
	Name   string
	Fields []*Field
	// Length is the encoded length of the whole structure.
	Length EncodedLength

	order ByteOrder
	// firstDefault is the index of the first field of the default suffix, or len(Fields).
	firstDefault int
	byName       map[string]int
	warnings     []field.Warning
}

// Order returns the byte order of the structure's protocol.
func (s *Structure) Order() ByteOrder {
	return s.order
}

// Field returns the field with name and its index.
func (s *Structure) Field(name string) (*Field, int) {
	i, ok := s.byName[name]
	if !ok {
		return nil, -1
	}
	return s.Fields[i], i
}

// FirstDefault returns the index of the first field that can be missing from the end of a
// decode buffer. It is len(Fields) if there is none.
func (s *Structure) FirstDefault() int {
	return s.firstDefault
}

// Warnings returns the corrections made while resolving the structure.
func (s *Structure) Warnings() []field.Warning {
	return s.warnings
}
