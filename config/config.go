// Package config loads protocol descriptions from YAML.
//
// A file names the protocol, its byte order and capability flags, and may carry the
// protocol's named constants, enumerations and structures:
//
//	name: telemetry
//	byteOrder: big
//	capabilities:
//	  support64: true
//	  supportSpecialFloat: true
//	constants:
//	  N: 4
//	structures:
//	  - name: Sample
//	    fields:
//	      - {name: seq, type: uint16}
//	      - {name: temp, type: float32, encoded: uint8, min: -40, max: 80}
//
// Keys that are left out keep the values from Default().
package config

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/bearlytools/protogen/errors"
	"github.com/bearlytools/protogen/field"
	"github.com/bearlytools/protogen/schema"
	osfs "github.com/gopherfs/fs/io/os"
	"github.com/gostdlib/base/context"
	"gopkg.in/yaml.v3"
)

// Protocol is the content of a protocol file.
type Protocol struct {
	// Name of the protocol.
	Name string `yaml:"name"`
	// ByteOrder is "big" or "little".
	// Default: big
	ByteOrder string `yaml:"byteOrder"`
	// Capabilities limit the types fields resolve to.
	// Default: everything enabled
	Capabilities field.Capabilities `yaml:"capabilities"`
	// Constants are named values usable as array counts.
	Constants map[string]int `yaml:"constants,omitempty"`
	// Enums are the protocol's enumerations.
	Enums []*schema.Enum `yaml:"enums,omitempty"`
	// Structures are built in order, a structure can only nest ones declared before it.
	Structures []Structure `yaml:"structures,omitempty"`
}

// Structure is a named list of fields.
type Structure struct {
	Name   string             `yaml:"name"`
	Fields []schema.FieldSpec `yaml:"fields"`
}

// Default returns the default configuration. These are the values a file overrides.
func Default() *Protocol {
	return &Protocol{
		ByteOrder:    "big",
		Capabilities: field.AllCapabilities(),
	}
}

// Load reads a protocol file from the OS filesystem.
func Load(ctx context.Context, path string) (*Protocol, error) {
	fsys, err := osfs.New()
	if err != nil {
		return nil, errors.E(ctx, errors.CatInternal, errors.TypeFS, fmt.Errorf("can't access OS: %w", err))
	}
	return LoadFS(ctx, fsys, path)
}

// LoadFS reads a protocol file from fsys.
func LoadFS(ctx context.Context, fsys fs.ReadFileFS, path string) (*Protocol, error) {
	b, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.E(ctx, errors.CatUser, errors.TypeFS, fmt.Errorf("reading protocol file %q: %w", path, err))
	}
	p, err := Parse(b)
	if err != nil {
		return nil, errors.E(ctx, errors.CatUser, errors.TypeParameter, fmt.Errorf("protocol file %q: %w", path, err))
	}
	return p, nil
}

// Parse decodes a protocol from YAML. Unknown keys are an error, an empty document is the
// default.
func Parse(data []byte) (*Protocol, error) {
	p := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", errors.ErrConfig, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the values that Build would otherwise have to guess at.
func (p *Protocol) Validate() error {
	if _, err := p.order(); err != nil {
		return err
	}

	seen := map[string]bool{}
	for _, e := range p.Enums {
		if e == nil || e.Name == "" {
			return fmt.Errorf("%w: enumeration without a name", errors.ErrConfig)
		}
		if seen[e.Name] {
			return fmt.Errorf("%w: enumeration %q is declared twice", errors.ErrConfig, e.Name)
		}
		seen[e.Name] = true
	}
	for i, s := range p.Structures {
		if s.Name == "" {
			return fmt.Errorf("%w: structure %d has no name", errors.ErrConfig, i)
		}
	}
	return nil
}

func (p *Protocol) order() (schema.ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(p.ByteOrder)) {
	case "", "big", "bigendian", "big_endian":
		return schema.BigEndian, nil
	case "little", "littleendian", "little_endian":
		return schema.LittleEndian, nil
	}
	return schema.BigEndian, fmt.Errorf("%w: unknown byte order %q", errors.ErrConfig, p.ByteOrder)
}

// Schema returns the schema.Protocol the file describes.
func (p *Protocol) Schema() (schema.Protocol, error) {
	order, err := p.order()
	if err != nil {
		return schema.Protocol{}, err
	}
	return schema.Protocol{
		Name:      p.Name,
		Order:     order,
		Caps:      p.Capabilities,
		Constants: p.Constants,
		Enums:     p.Enums,
	}, nil
}

// Build resolves every structure in the file.
func (p *Protocol) Build(options ...schema.Option) (*schema.Schema, error) {
	proto, err := p.Schema()
	if err != nil {
		return nil, err
	}
	b := schema.NewBuilder(proto, options...)
	for _, s := range p.Structures {
		b.Struct(s.Name, s.Fields...)
	}
	return b.Build()
}
