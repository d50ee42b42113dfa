package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bearlytools/protogen/errors"
)

// Expr is a symbolic byte count. It is a sum of terms, each an integer coefficient times a
// product of named constants, for example "2+4*N" or "3*N*M". The zero value is 0.
type Expr struct {
	terms []term
}

type term struct {
	// syms is sorted. An empty syms is the literal term.
	syms []string
	coef int
}

func (t term) key() string {
	return strings.Join(t.syms, "*")
}

// Lit returns an Expr for n.
func Lit(n int) Expr {
	if n == 0 {
		return Expr{}
	}
	return Expr{terms: []term{{coef: n}}}
}

// Sym returns an Expr for the named constant.
func Sym(name string) Expr {
	return Expr{terms: []term{{syms: []string{name}, coef: 1}}}
}

// Add returns e+o.
func (e Expr) Add(o Expr) Expr {
	m := make(map[string]term, len(e.terms)+len(o.terms))
	for _, ts := range [][]term{e.terms, o.terms} {
		for _, t := range ts {
			k := t.key()
			if ex, ok := m[k]; ok {
				ex.coef += t.coef
				m[k] = ex
				continue
			}
			m[k] = t
		}
	}
	return fromMap(m)
}

// Mul returns e*o.
func (e Expr) Mul(o Expr) Expr {
	m := map[string]term{}
	for _, a := range e.terms {
		for _, b := range o.terms {
			syms := make([]string, 0, len(a.syms)+len(b.syms))
			syms = append(syms, a.syms...)
			syms = append(syms, b.syms...)
			sort.Strings(syms)
			t := term{syms: syms, coef: a.coef * b.coef}
			k := t.key()
			if ex, ok := m[k]; ok {
				ex.coef += t.coef
				m[k] = ex
				continue
			}
			m[k] = t
		}
	}
	return fromMap(m)
}

// Scale returns e*n.
func (e Expr) Scale(n int) Expr {
	return e.Mul(Lit(n))
}

func fromMap(m map[string]term) Expr {
	terms := make([]term, 0, len(m))
	for _, t := range m {
		if t.coef != 0 {
			terms = append(terms, t)
		}
	}
	// The literal has the empty key, so it sorts first.
	sort.Slice(terms, func(i, j int) bool { return terms[i].key() < terms[j].key() })
	if len(terms) == 0 {
		return Expr{}
	}
	return Expr{terms: terms}
}

// IsZero reports if e is 0.
func (e Expr) IsZero() bool {
	return len(e.terms) == 0
}

// Literal returns the value of e if it holds no named constants.
func (e Expr) Literal() (int, bool) {
	switch len(e.terms) {
	case 0:
		return 0, true
	case 1:
		if len(e.terms[0].syms) == 0 {
			return e.terms[0].coef, true
		}
	}
	return 0, false
}

// Symbols returns the named constants e refers to, sorted.
func (e Expr) Symbols() []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range e.terms {
		for _, s := range t.syms {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Eval resolves e against env.
func (e Expr) Eval(env map[string]int) (int, error) {
	total := 0
	for _, t := range e.terms {
		v := t.coef
		for _, s := range t.syms {
			n, ok := env[s]
			if !ok {
				return 0, fmt.Errorf("%w: %s", errors.ErrUnknownConstant, s)
			}
			v *= n
		}
		total += v
	}
	return total, nil
}

// String renders e with the literal first, for example "2+4*N".
func (e Expr) String() string {
	if len(e.terms) == 0 {
		return "0"
	}

	sb := strings.Builder{}
	for i, t := range e.terms {
		if i > 0 {
			sb.WriteString("+")
		}
		switch {
		case len(t.syms) == 0:
			sb.WriteString(strconv.Itoa(t.coef))
		case t.coef == 1:
			sb.WriteString(t.key())
		default:
			sb.WriteString(strconv.Itoa(t.coef))
			sb.WriteString("*")
			sb.WriteString(t.key())
		}
	}
	return sb.String()
}
