package schema

import "github.com/bearlytools/protogen/field"

// EncodedLength is the number of bytes a structure, or one field's share of it, occupies
// on the wire.
type EncodedLength struct {
	// Min counts only what is always present: no dependent fields, no defaulted fields and
	// no elements of variable arrays.
	Min Expr
	// Max counts everything at its upper bound.
	Max Expr
	// PreDefault is Max of everything before the first defaulted field.
	PreDefault Expr

	MinBytes        int
	MaxBytes        int
	PreDefaultBytes int
}

func (l *EncodedLength) resolve(env map[string]int) error {
	var err error
	if l.MinBytes, err = l.Min.Eval(env); err != nil {
		return err
	}
	if l.MaxBytes, err = l.Max.Eval(env); err != nil {
		return err
	}
	if l.PreDefaultBytes, err = l.PreDefault.Eval(env); err != nil {
		return err
	}
	return nil
}

func (r *resolver) lengths() error {
	var total EncodedLength
	for i, f := range r.st.Fields {
		l := fieldLength(f)
		if i < r.st.firstDefault {
			l.PreDefault = l.Max
			total.PreDefault = total.PreDefault.Add(l.Max)
		}
		if err := l.resolve(r.schema.env); err != nil {
			return wrapf(err, "%s.%s: length", r.st.Name, f.Name)
		}
		f.Length = l

		total.Min = total.Min.Add(l.Min)
		total.Max = total.Max.Add(l.Max)
	}
	if err := total.resolve(r.schema.env); err != nil {
		return wrapf(err, "%s: length", r.st.Name)
	}
	r.st.Length = total
	return nil
}

// fieldLength is f's share of its structure's length, without PreDefault.
func fieldLength(f *Field) EncodedLength {
	var min, max Expr

	switch {
	case f.IsBitfield():
		// The whole run is counted at the field that closes it.
		if f.ClosesRun {
			min = Lit(f.RunBytes)
			max = min
		}
	case f.Memory.Category == field.String:
		// At least the terminator.
		min = Lit(1)
		max = f.Array.Expr
	case f.Memory.Category == field.FixedString:
		min = f.Array.Expr
		max = min
	case f.Struct != nil:
		min = f.Struct.Length.Min
		max = f.Struct.Length.Max
	default:
		min = Lit(f.ElemBytes())
		max = min
	}

	if f.IsArray() {
		max = max.Mul(f.Array.Expr)
		if f.VariableIndex >= 0 {
			min = Expr{}
		} else {
			min = min.Mul(f.Array.Expr)
		}
	}
	if f.DependsOn != nil || f.Default != nil {
		min = Expr{}
	}
	return EncodedLength{Min: min, Max: max}
}
