package bytecode

import (
	"reflect"
	"testing"
)

func TestOpcodeNames(t *testing.T) {
	tests := []struct {
		op   Opcode
		name string
	}{
		{OpCopy, "copy"},
		{OpCopyC, "copy_c"},
		{OpNeg, "neg"},
		{OpAdd, "add"},
		{OpAddC, "add_c"},
		{OpSub, "sub"},
		{OpSubC, "sub_c"},
		{OpMul, "mul"},
		{OpMulC, "mul_c"},
		{OpDiv, "div"},
		{OpDivC, "div_c"},
	}
	seen := map[Opcode]bool{}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.name {
			t.Errorf("opcode %d: got %q, want %q", byte(tt.op), got, tt.name)
		}
		if seen[tt.op] {
			t.Errorf("opcode byte %d assigned twice", byte(tt.op))
		}
		seen[tt.op] = true
	}
}

func TestConstVariant(t *testing.T) {
	pairs := map[Opcode]Opcode{
		OpCopy: OpCopyC,
		OpAdd:  OpAddC,
		OpSub:  OpSubC,
		OpMul:  OpMulC,
		OpDiv:  OpDivC,
	}
	for base, want := range pairs {
		got, ok := base.ConstVariant()
		if !ok || got != want {
			t.Errorf("%s: got %s/%v, want %s", base, got, ok, want)
		}
	}
	if _, ok := OpNeg.ConstVariant(); ok {
		t.Error("neg must not have a constant variant")
	}
}

func TestUnaryAndReadsConst(t *testing.T) {
	for _, op := range []Opcode{OpCopy, OpCopyC, OpNeg} {
		if !op.Unary() {
			t.Errorf("%s: expected unary", op)
		}
	}
	for _, op := range []Opcode{OpAdd, OpAddC, OpSubC, OpDivC} {
		if op.Unary() {
			t.Errorf("%s: expected binary", op)
		}
	}
	for _, op := range []Opcode{OpCopyC, OpAddC, OpSubC, OpMulC, OpDivC} {
		if !op.ReadsConst() {
			t.Errorf("%s: expected constant operand", op)
		}
	}
	for _, op := range []Opcode{OpCopy, OpNeg, OpAdd, OpSub, OpMul, OpDiv} {
		if op.ReadsConst() {
			t.Errorf("%s: unexpected constant operand", op)
		}
	}
}

func TestInstrEncode(t *testing.T) {
	in := Instr{Op: OpMulC, Dest: 3, A1: 2, A2: 1}
	if got := in.Encode(); got != [4]byte{byte(OpMulC), 3, 2, 1} {
		t.Errorf("Encode: got %v", got)
	}
	unary := Instr{Op: OpNeg, Dest: 0, A1: 1}
	if got := unary.Encode(); got != [4]byte{byte(OpNeg), 0, 1, 0} {
		t.Errorf("Encode unary: got %v", got)
	}
}

func TestBytesDecodeRoundTrip(t *testing.T) {
	p := &Program{
		InputNames: []string{"a", "b"},
		NTemps:     1,
		Consts:     []float64{2, 3},
		Code: []Instr{
			{Op: OpMulC, Dest: 0, A1: 1, A2: 0},
			{Op: OpMulC, Dest: 3, A1: 2, A2: 1},
			{Op: OpAdd, Dest: 0, A1: 0, A2: 3},
		},
	}
	raw := p.Bytes()
	if len(raw) != 12 {
		t.Fatalf("serialized length: got %d, want 12", len(raw))
	}
	code, err := Decode(raw)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(code, p.Code) {
		t.Errorf("round trip: got %v, want %v", code, p.Code)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Decode([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for truncated stream")
	}
	if _, err := Decode([]byte{0, 0, 0, 0}); err == nil {
		t.Error("expected error for illegal opcode 0")
	}
	if _, err := Decode([]byte{250, 0, 0, 0}); err == nil {
		t.Error("expected error for unknown opcode byte")
	}
}

func TestDisassemble(t *testing.T) {
	p := &Program{
		InputNames: []string{"a", "b"},
		NTemps:     1,
		Consts:     []float64{2, 3},
		Code: []Instr{
			{Op: OpMulC, Dest: 0, A1: 1, A2: 0},
			{Op: OpMulC, Dest: 3, A1: 2, A2: 1},
			{Op: OpAdd, Dest: 0, A1: 0, A2: 3},
		},
	}
	want := `inputs  2 r1=a r2=b
temps   1
const   c0 = 2
const   c1 = 3
        mul_c   r0, r1, c0
        mul_c   r3, r2, c1
        add     r0, r0, r3
`
	if got := Disassemble(p); got != want {
		t.Errorf("Disassemble:\n got:\n%s\nwant:\n%s", got, want)
	}
}
