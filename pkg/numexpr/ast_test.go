package numexpr

import (
	"math"
	"testing"

	"github.com/PradeepThapa/scipy/pkg/bytecode"
)

// TestCombinators exercises programmatic expression construction, which
// must apply the same folding rules as the textual path.
func TestCombinators(t *testing.T) {
	tests := []struct {
		name     string
		build    func() Node
		expected string
	}{
		{"Add", func() Node { return Add(Var("a"), Var("b")) }, "add(a, b)"},
		{"FoldBoth", func() Node { return Add(Const(2), Const(3)) }, "5"},
		{"FoldSub", func() Node { return Sub(Const(2), Const(3)) }, "-1"},
		{"FoldMul", func() Node { return Mul(Const(2), Const(3)) }, "6"},
		{"FoldDiv", func() Node { return Div(Const(3), Const(2)) }, "1.5"},
		{"FoldNeg", func() Node { return Neg(Const(2)) }, "-2"},
		{"NegVar", func() Node { return Neg(Var("a")) }, "neg(a)"},
		{"SubConst", func() Node { return Sub(Var("a"), Const(1)) }, "add_c(a, -1)"},
		{"DivConst", func() Node { return Div(Var("a"), Const(2)) }, "mul_c(a, 0.5)"},
		{"ConstFirst", func() Node { return Sub(Const(2), Var("a")) }, "sub_c(2, a)"},
		{"Nested", func() Node { return Add(Mul(Const(2), Var("a")), Mul(Const(3), Var("b"))) },
			"add(mul_c(2, a), mul_c(3, b))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.build().String(); got != tt.expected {
				t.Errorf("got %s, want %s", got, tt.expected)
			}
		})
	}
}

// TestDivReciprocalBits pins down the div-by-constant rewrite: the constant
// must be exactly 1.0/value, which rounds differently from IEEE division
// for divisors like 3.
func TestDivReciprocalBits(t *testing.T) {
	ex := Div(Var("a"), Const(3))
	op, ok := ex.(*OpNode)
	if !ok || op.Op != bytecode.OpMulC {
		t.Fatalf("expected mul_c op, got %s", ex)
	}
	c, ok := op.Args[1].(*ConstantNode)
	if !ok {
		t.Fatalf("expected constant operand, got %s", op.Args[1])
	}
	want := 1.0 / 3.0
	if math.Float64bits(c.Value) != math.Float64bits(want) {
		t.Errorf("reciprocal: got %x, want %x", math.Float64bits(c.Value), math.Float64bits(want))
	}
}

// TestFoldingIsTotal checks that folding follows IEEE semantics rather than
// failing on edge values.
func TestFoldingIsTotal(t *testing.T) {
	if c := Div(Const(1), Const(0)).(*ConstantNode); !math.IsInf(c.Value, 1) {
		t.Errorf("1/0: got %v, want +Inf", c.Value)
	}
	if c := Div(Const(0), Const(0)).(*ConstantNode); !math.IsNaN(c.Value) {
		t.Errorf("0/0: got %v, want NaN", c.Value)
	}
	// Division by a zero constant rewrites to multiplication by +Inf.
	op := Div(Var("a"), Const(0)).(*OpNode)
	if c := op.Args[1].(*ConstantNode); !math.IsInf(c.Value, 1) {
		t.Errorf("a/0 operand: got %v, want +Inf", c.Value)
	}
}
