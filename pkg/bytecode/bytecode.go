// Package bytecode defines the instruction format shared between the
// expression compiler and the vector virtual machine: the opcode table,
// the fixed-width 4-byte instruction encoding, and the compiled Program
// container handed across the boundary.
package bytecode

import (
	"fmt"
	"strings"
)

// Opcode identifies a VM operation. The `C` variants mark the trailing
// encoded operand as an index into the constant register file instead of
// the variable/temporary file.
type Opcode byte

const (
	OpIllegal Opcode = iota // 0 is reserved so a zeroed instruction is invalid

	OpCopy
	OpCopyC
	OpNeg
	OpAdd
	OpAddC
	OpSub
	OpSubC
	OpMul
	OpMulC
	OpDiv
	OpDivC
)

// opcodeNames is the fixed name->byte table shared with the VM. The `_c`
// suffixed names are distinct entries, never derived by arithmetic on the
// base opcode's byte value.
var opcodeNames = map[Opcode]string{
	OpCopy:  "copy",
	OpCopyC: "copy_c",
	OpNeg:   "neg",
	OpAdd:   "add",
	OpAddC:  "add_c",
	OpSub:   "sub",
	OpSubC:  "sub_c",
	OpMul:   "mul",
	OpMulC:  "mul_c",
	OpDiv:   "div",
	OpDivC:  "div_c",
}

// constVariants maps each binary/copy opcode to its constant-operand form.
var constVariants = map[Opcode]Opcode{
	OpCopy: OpCopyC,
	OpAdd:  OpAddC,
	OpSub:  OpSubC,
	OpMul:  OpMulC,
	OpDiv:  OpDivC,
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("opcode(%d)", byte(op))
}

// ConstVariant returns the `_c` form of op, or false if op has none
// (neg never takes a constant operand; a negated constant folds away).
func (op Opcode) ConstVariant() (Opcode, bool) {
	c, ok := constVariants[op]
	return c, ok
}

// Unary reports whether op takes a single operand.
func (op Opcode) Unary() bool {
	switch op {
	case OpCopy, OpCopyC, OpNeg:
		return true
	}
	return false
}

// ReadsConst reports whether op's trailing operand indexes the constant file.
func (op Opcode) ReadsConst() bool {
	switch op {
	case OpCopyC, OpAddC, OpSubC, OpMulC, OpDivC:
		return true
	}
	return false
}

// Instr is one fixed-width instruction. Unary opcodes leave A2 zero. For
// `_c` opcodes the constant-file index always occupies the trailing encoded
// operand: A2 for binary forms, A1 for copy_c.
type Instr struct {
	Op   Opcode
	Dest byte
	A1   byte
	A2   byte
}

// Encode returns the 4-byte wire form [opcode, dest, operand1, operand2].
func (in Instr) Encode() [4]byte {
	return [4]byte{byte(in.Op), in.Dest, in.A1, in.A2}
}

func (in Instr) String() string {
	if in.Op.Unary() {
		return fmt.Sprintf("%-7s r%d, %s", in.Op, in.Dest, in.operand1())
	}
	return fmt.Sprintf("%-7s r%d, %s, %s", in.Op, in.Dest, in.operand1(), in.operand2())
}

func (in Instr) operand1() string {
	if in.Op == OpCopyC {
		return fmt.Sprintf("c%d", in.A1)
	}
	return fmt.Sprintf("r%d", in.A1)
}

func (in Instr) operand2() string {
	if in.Op.ReadsConst() {
		return fmt.Sprintf("c%d", in.A2)
	}
	return fmt.Sprintf("r%d", in.A2)
}

// Program is a compiled expression: the unit the compiler emits, the cache
// stores, and the VM executes. It is immutable once built.
type Program struct {
	InputNames []string  // positional binding order for the caller
	NTemps     int       // temporary registers beyond output + inputs
	Consts     []float64 // constant register file, indexed by `_c` operands
	Code       []Instr
}

// NInputs returns the number of input registers.
func (p *Program) NInputs() int { return len(p.InputNames) }

// Bytes serializes the instruction stream, 4 bytes per instruction.
func (p *Program) Bytes() []byte {
	out := make([]byte, 0, 4*len(p.Code))
	for _, in := range p.Code {
		enc := in.Encode()
		out = append(out, enc[:]...)
	}
	return out
}

// Decode parses a serialized instruction stream produced by Bytes.
func Decode(raw []byte) ([]Instr, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("bytecode: program length %d is not a multiple of 4", len(raw))
	}
	code := make([]Instr, 0, len(raw)/4)
	for i := 0; i < len(raw); i += 4 {
		op := Opcode(raw[i])
		if _, ok := opcodeNames[op]; !ok {
			return nil, fmt.Errorf("bytecode: unknown opcode byte %d at offset %d", raw[i], i)
		}
		code = append(code, Instr{Op: op, Dest: raw[i+1], A1: raw[i+2], A2: raw[i+3]})
	}
	return code, nil
}

// Disassemble renders a readable listing of the program: register layout,
// constant pool, and one instruction per line.
func Disassemble(p *Program) string {
	var b strings.Builder
	fmt.Fprintf(&b, "inputs  %d", p.NInputs())
	for i, name := range p.InputNames {
		fmt.Fprintf(&b, " r%d=%s", i+1, name)
	}
	fmt.Fprintf(&b, "\ntemps   %d\n", p.NTemps)
	for i, v := range p.Consts {
		fmt.Fprintf(&b, "const   c%d = %v\n", i, v)
	}
	for _, in := range p.Code {
		fmt.Fprintf(&b, "        %s\n", in)
	}
	return b.String()
}

func (p *Program) String() string { return Disassemble(p) }
