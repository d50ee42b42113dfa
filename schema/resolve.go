package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bearlytools/protogen/errors"
	"github.com/bearlytools/protogen/field"
	"github.com/bearlytools/protogen/internal/scaling"

	perrors "github.com/pkg/errors"
)

func wrapf(err error, format string, args ...any) error {
	return perrors.Wrapf(err, format, args...)
}

// resolver turns the FieldSpecs of one structure into Fields.
type resolver struct {
	schema *Schema
	st     *Structure
	specs  []FieldSpec
}

func (s *Schema) resolve(spec structSpec) (*Structure, error) {
	if len(spec.fields) == 0 {
		return nil, wrapf(errors.ErrEmptyStructure, "structure %q", spec.name)
	}

	st := &Structure{
		Name:   spec.name,
		order:  s.Protocol.Order,
		byName: make(map[string]int, len(spec.fields)),
	}
	r := resolver{schema: s, st: st, specs: spec.fields}

	for i := range spec.fields {
		f, err := r.field(i)
		if err != nil {
			return nil, err
		}
		st.byName[f.Name] = i
		st.Fields = append(st.Fields, f)
	}
	r.runs()
	r.defaults()
	if err := r.lengths(); err != nil {
		return nil, err
	}
	return st, nil
}

func (r *resolver) warn(name string, format string, args ...any) {
	r.st.warnings = append(
		r.st.warnings,
		field.Warning{Field: r.st.Name + "." + name, Message: fmt.Sprintf(format, args...)},
	)
}

func (r *resolver) warns(name string, ws []field.Warning) {
	for _, w := range ws {
		r.warn(name, "%s", w.Message)
	}
}

func (r *resolver) field(i int) (*Field, error) {
	sp := r.specs[i]
	caps := r.schema.Protocol.Caps

	name := strings.TrimSpace(sp.Name)
	if name == "" {
		return nil, wrapf(errors.ErrFieldName, "structure %q field %d", r.st.Name, i)
	}
	if _, ok := r.st.byName[name]; ok {
		return nil, wrapf(errors.ErrDuplicateField, "%s.%s", r.st.Name, name)
	}
	path := r.st.Name + "." + name

	f := &Field{Name: name, VariableIndex: -1, RunStart: -1}

	switch {
	case sp.Struct != "":
		nested, ok := r.schema.byName[sp.Struct]
		if !ok {
			return nil, wrapf(errors.ErrUnknownReference, "%s: structure %q is not declared before it", path, sp.Struct)
		}
		f.Struct = nested
		f.Memory = field.Descriptor{Category: field.Struct}
		f.Wire = f.Memory
	case sp.Enum != "":
		e := r.schema.Protocol.enum(sp.Enum)
		if e == nil {
			return nil, wrapf(errors.ErrUnknownReference, "%s: enumeration %q is not declared", path, sp.Enum)
		}
		f.Enum = e
		f.Memory = field.Descriptor{Category: field.Enum, Bits: e.MinBits()}
	default:
		d, err := field.ParseToken(sp.Type)
		if err != nil {
			r.warn(name, "%s, using uint8", err)
			d = field.Descriptor{Category: field.Integer, Bits: 8}
		}
		mem, ws := field.ResolveMemory(d, caps)
		r.warns(name, ws)
		f.Memory = mem
	}

	if f.Struct == nil {
		var wire field.Descriptor
		if sp.Encoded != "" {
			d, err := field.ParseToken(sp.Encoded)
			if err != nil {
				r.warn(name, "%s, using the in-memory type", err)
			} else {
				wire = d
			}
		}
		w, ws := field.ResolveWire(f.Memory, wire, caps)
		r.warns(name, ws)
		f.Wire = w
	}

	if sp.Array != "" {
		c, err := r.count(sp.Array)
		if err != nil {
			return nil, wrapf(err, "%s: array", path)
		}
		if c.N < 1 {
			r.warn(name, "array count %s is %d, ignoring it", c.Expr, c.N)
		} else {
			f.Array = &c
		}
	}
	if f.IsString() && f.Array == nil {
		r.warn(name, "string has no length, using 1")
		f.Array = &Count{Expr: Lit(1), N: 1}
	}

	if sp.VariableArray != "" {
		j, err := r.ref(i, sp.VariableArray)
		if err != nil {
			return nil, wrapf(err, "%s: variable array count %q", path, sp.VariableArray)
		}
		ref := r.st.Fields[j]
		switch {
		case !ref.Scalar() || ref.Memory.Category == field.Float:
			return nil, wrapf(errors.ErrReferenceType, "%s: variable array count %q is not an integer", path, ref.Name)
		case !f.IsArray():
			r.warn(name, "variable array count without a fixed array bound, ignoring it")
		default:
			f.VariableArray = ref.Name
			f.VariableIndex = j
		}
	}

	if sp.DependsOn != "" {
		j, err := r.ref(i, sp.DependsOn)
		if err != nil {
			return nil, wrapf(err, "%s: depends on %q", path, sp.DependsOn)
		}
		ref := r.st.Fields[j]
		if !ref.Scalar() {
			return nil, wrapf(errors.ErrReferenceType, "%s: depends on %q which is not a number", path, ref.Name)
		}
		d := &Dependency{Field: ref.Name, Index: j}
		if sp.Compare != "" {
			op, lit, ok := splitCompare(sp.Compare)
			if !ok {
				r.warn(name, "comparison %q has no operator, using not zero", sp.Compare)
			} else {
				v, err := r.literal(lit, ref)
				if err != nil {
					return nil, wrapf(err, "%s: comparison %q", path, sp.Compare)
				}
				d.Op, d.Value = op, v
			}
		}
		f.DependsOn = d
	}

	if f.IsBitfield() && (f.IsArray() || f.DependsOn != nil) {
		r.warn(name, "bitfield arrays and dependent bitfields are written as whole bytes")
		w, ws := field.ResolveWire(f.Memory, field.Descriptor{Category: field.Integer, Bits: f.Wire.Bits}, caps)
		r.warns(name, ws)
		f.Wire = w
	}

	r.scaling(f, sp)

	if sp.Constant != nil {
		switch {
		case !f.Wire.Category.Numeric() || f.IsArray():
			r.warn(name, "only single numbers can be constant, ignoring it")
		default:
			f.Constant = Ptr(*sp.Constant)
		}
	}
	if sp.Default != nil {
		switch {
		case f.Constant != nil:
			r.warn(name, "constant fields cannot have a default, ignoring it")
		case !f.Scalar():
			r.warn(name, "only single numbers can have a default, ignoring it")
		case f.DependsOn != nil:
			r.warn(name, "dependent fields cannot have a default, ignoring it")
		default:
			f.Default = Ptr(*sp.Default)
		}
	}
	return f, nil
}

func (r *resolver) scaling(f *Field, sp FieldSpec) {
	toInt := f.Wire.Category == field.Integer || f.Wire.Category == field.Bitfield
	number := f.Memory.Category == field.Integer || f.Memory.Category == field.Float
	given := sp.Max != nil || sp.Scaler != nil

	switch {
	case given && !(number && toInt):
		r.warn(f.Name, "scaling only applies to numbers written as integers, ignoring it")
		return
	case given:
		min := 0.0
		if sp.Min != nil {
			min = *sp.Min
		}
		var (
			spec scaling.Spec
			ok   bool
		)
		if sp.Scaler != nil {
			if sp.Max != nil {
				r.warn(f.Name, "both max and scaler are set, using scaler")
			}
			spec, ok = scaling.FromScaler(min, *sp.Scaler, f.Wire.Bits, f.Wire.Signed)
		} else {
			spec, ok = scaling.FromMax(min, *sp.Max, f.Wire.Bits, f.Wire.Signed)
		}
		if ok {
			f.Scaling = &spec
			return
		}
		r.warn(f.Name, "scaling has max <= min or scaler <= 0, writing the value unscaled")
	}

	if f.Memory.Category == field.Float && toInt {
		id := scaling.Identity(f.Wire.Bits, f.Wire.Signed)
		f.Scaling = &id
	}
}

// ref finds the earlier sibling name refers to.
func (r *resolver) ref(i int, name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == strings.TrimSpace(r.specs[i].Name) {
		return 0, errors.ErrSelfReference
	}
	if j, ok := r.st.byName[name]; ok {
		return j, nil
	}
	for _, sp := range r.specs[i+1:] {
		if strings.TrimSpace(sp.Name) == name {
			return 0, errors.ErrForwardReference
		}
	}
	return 0, errors.ErrUnknownReference
}

// count resolves an array count, a literal or a named constant.
func (r *resolver) count(s string) (Count, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return Count{Expr: Lit(n), N: n}, nil
	}
	n, ok := r.schema.env[s]
	if !ok {
		return Count{}, fmt.Errorf("%w: %s", errors.ErrUnknownConstant, s)
	}
	return Count{Expr: Sym(s), N: n}, nil
}

// literal resolves a comparison value: a number, a value of ref's enumeration or a named
// constant.
func (r *resolver) literal(s string, ref *Field) (float64, error) {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}
	if ref.Enum != nil {
		if v, ok := ref.Enum.Lookup(s); ok {
			return float64(v), nil
		}
	}
	if v, ok := r.schema.env[s]; ok {
		return float64(v), nil
	}
	return 0, fmt.Errorf("%w: %s", errors.ErrUnknownConstant, s)
}

// runs marks the bitfield runs. A run is a group of adjacent bitfields and is closed by its
// last field.
func (r *resolver) runs() {
	fields := r.st.Fields
	start, bits := -1, 0
	for i, f := range fields {
		if !f.IsBitfield() {
			continue
		}
		if start < 0 {
			start, bits = i, 0
		}
		bits += f.Wire.Bits
		f.RunStart = start

		if i+1 == len(fields) || !fields[i+1].IsBitfield() {
			f.ClosesRun = true
			f.RunBytes = (bits + 7) / 8
			start = -1
		}
	}
}

// defaults enforces that defaulted fields form a suffix of the structure that starts on a
// byte boundary, and records where it starts.
func (r *resolver) defaults() {
	fields := r.st.Fields

	tail := true
	for i := len(fields) - 1; i >= 0; i-- {
		f := fields[i]
		if f.Default == nil {
			tail = false
			continue
		}
		if !tail {
			r.warn(f.Name, "default is followed by a field without one, ignoring it")
			f.Default = nil
		}
	}

	first := len(fields)
	for i, f := range fields {
		if f.Default != nil {
			first = i
			break
		}
	}

	if first < len(fields) && fields[first].IsBitfield() && fields[first].RunStart != first {
		run := fields[first].RunStart
		for first < len(fields) && fields[first].IsBitfield() && fields[first].RunStart == run {
			r.warn(fields[first].Name, "default starts inside a bitfield run, ignoring it")
			fields[first].Default = nil
			first++
		}
	}
	r.st.firstDefault = first
}
