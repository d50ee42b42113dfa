package schema

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns a hash of everything that decides the structure's wire layout. Two
// peers with the same fingerprint agree on every byte. Names are included, in-memory widths
// are not.
func (s *Structure) Fingerprint() uint64 {
	d := xxhash.New()
	s.fingerprint(d)
	return d.Sum64()
}

func (s *Structure) fingerprint(d *xxhash.Digest) {
	d.WriteString(s.Name)
	d.WriteString(s.order.String())
	for _, f := range s.Fields {
		d.WriteString("|")
		d.WriteString(f.Name)
		d.WriteString(f.Wire.String())
		if f.Scaling != nil {
			fmt.Fprintf(d, "s%v,%v", f.Scaling.Min, f.Scaling.Scaler)
		}
		if f.Array != nil {
			d.WriteString("a" + strconv.Itoa(f.Array.N))
		}
		if f.VariableIndex >= 0 {
			d.WriteString("v" + strconv.Itoa(f.VariableIndex))
		}
		if f.DependsOn != nil {
			fmt.Fprintf(d, "d%d%s%v", f.DependsOn.Index, f.DependsOn.Op, f.DependsOn.Value)
		}
		if f.Default != nil {
			fmt.Fprintf(d, "=%v", *f.Default)
		}
		if f.Constant != nil {
			fmt.Fprintf(d, "c%v", *f.Constant)
		}
		if f.Struct != nil {
			d.WriteString("{")
			f.Struct.fingerprint(d)
			d.WriteString("}")
		}
	}
}
