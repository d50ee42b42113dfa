package schema

import (
	"testing"

	"github.com/bearlytools/protogen/errors"
)

func TestExprString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{name: "zero", expr: Expr{}, want: "0"},
		{name: "literal", expr: Lit(4), want: "4"},
		{name: "symbol", expr: Sym("N"), want: "N"},
		{name: "scaled symbol", expr: Sym("N").Scale(3), want: "3*N"},
		{name: "literal first", expr: Sym("N").Scale(4).Add(Lit(2)), want: "2+4*N"},
		{name: "terms merge", expr: Sym("N").Add(Sym("N")).Add(Lit(1)).Add(Lit(1)), want: "2+2*N"},
		{name: "cancel", expr: Lit(3).Add(Lit(-3)), want: "0"},
		{name: "product", expr: Lit(1).Add(Sym("N")).Mul(Sym("M")), want: "M+M*N"},
		{name: "product sorted", expr: Sym("N").Mul(Sym("M")).Scale(2), want: "2*M*N"},
		{name: "times zero", expr: Sym("N").Mul(Expr{}), want: "0"},
	}

	for _, test := range tests {
		if got := test.expr.String(); got != test.want {
			t.Errorf("TestExprString(%s): got %q, want %q", test.name, got, test.want)
		}
	}
}

func TestExprEval(t *testing.T) {
	t.Parallel()

	env := map[string]int{"N": 4, "M": 3}

	e := Lit(2).Add(Sym("N").Scale(4)).Add(Sym("N").Mul(Sym("M")))
	got, err := e.Eval(env)
	if err != nil {
		t.Fatalf("TestExprEval: got err == %s", err)
	}
	if got != 2+16+12 {
		t.Errorf("TestExprEval: got %d, want %d", got, 2+16+12)
	}

	if _, err := Sym("Q").Eval(env); !errors.Is(err, errors.ErrUnknownConstant) {
		t.Errorf("TestExprEval(unknown): got err == %v, want ErrUnknownConstant", err)
	}

	if n, ok := Lit(7).Literal(); !ok || n != 7 {
		t.Errorf("TestExprEval(Literal): got %d, %v", n, ok)
	}
	if _, ok := Sym("N").Literal(); ok {
		t.Errorf("TestExprEval(Literal symbol): got ok")
	}
	if got := e.Symbols(); len(got) != 2 || got[0] != "M" || got[1] != "N" {
		t.Errorf("TestExprEval(Symbols): got %v", got)
	}
}
