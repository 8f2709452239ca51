// Package vm executes compiled expression programs elementwise over
// float64 arrays. The register file is a set of equal-length vectors:
// register 0 is the output, registers 1..n hold the input arrays, and the
// remaining registers are temporaries scratch-allocated per run. Constants
// live in a separate file and are broadcast by the `_c` opcodes.
package vm

import (
	"fmt"

	"github.com/PradeepThapa/scipy/pkg/bytecode"
)

// Run executes p over the given input arrays, which must appear in
// p.InputNames order and share one length. It returns a freshly allocated
// output array of that length; a program with no inputs produces a single
// broadcast element.
func Run(p *bytecode.Program, inputs ...[]float64) ([]float64, error) {
	if len(inputs) != p.NInputs() {
		return nil, fmt.Errorf("vm: program wants %d inputs, got %d", p.NInputs(), len(inputs))
	}

	n := 1
	if len(inputs) > 0 {
		n = len(inputs[0])
		for i, in := range inputs[1:] {
			if len(in) != n {
				return nil, fmt.Errorf("vm: input %q has length %d, want %d",
					p.InputNames[i+1], len(in), n)
			}
		}
	}

	nInputs := len(inputs)
	regs := make([][]float64, 1+nInputs+p.NTemps)
	regs[0] = make([]float64, n)
	for i, in := range inputs {
		regs[i+1] = in
	}
	for i := 1 + nInputs; i < len(regs); i++ {
		regs[i] = make([]float64, n)
	}

	for pc, in := range p.Code {
		if err := step(p, regs, nInputs, in); err != nil {
			return nil, fmt.Errorf("vm: instruction %d (%s): %w", pc, in, err)
		}
	}
	return regs[0], nil
}

func step(p *bytecode.Program, regs [][]float64, nInputs int, in bytecode.Instr) error {
	dst, err := writeReg(regs, nInputs, in.Dest)
	if err != nil {
		return err
	}

	switch in.Op {
	case bytecode.OpCopyC:
		c, err := constVal(p, in.A1)
		if err != nil {
			return err
		}
		for i := range dst {
			dst[i] = c
		}
		return nil

	case bytecode.OpCopy, bytecode.OpNeg:
		x, err := readReg(regs, in.A1)
		if err != nil {
			return err
		}
		if in.Op == bytecode.OpCopy {
			copy(dst, x)
		} else {
			for i := range dst {
				dst[i] = -x[i]
			}
		}
		return nil
	}

	// Binary forms: operand 1 is always a variable-file register; the `_c`
	// opcodes read operand 2 from the constant file. sub_c and div_c apply
	// the constant on the left, since a trailing constant was normalized
	// away to add_c / mul_c at compile time.
	x, err := readReg(regs, in.A1)
	if err != nil {
		return err
	}

	if in.Op.ReadsConst() {
		c, err := constVal(p, in.A2)
		if err != nil {
			return err
		}
		switch in.Op {
		case bytecode.OpAddC:
			for i := range dst {
				dst[i] = x[i] + c
			}
		case bytecode.OpSubC:
			for i := range dst {
				dst[i] = c - x[i]
			}
		case bytecode.OpMulC:
			for i := range dst {
				dst[i] = x[i] * c
			}
		case bytecode.OpDivC:
			for i := range dst {
				dst[i] = c / x[i]
			}
		default:
			return fmt.Errorf("unhandled opcode %s", in.Op)
		}
		return nil
	}

	y, err := readReg(regs, in.A2)
	if err != nil {
		return err
	}
	switch in.Op {
	case bytecode.OpAdd:
		for i := range dst {
			dst[i] = x[i] + y[i]
		}
	case bytecode.OpSub:
		for i := range dst {
			dst[i] = x[i] - y[i]
		}
	case bytecode.OpMul:
		for i := range dst {
			dst[i] = x[i] * y[i]
		}
	case bytecode.OpDiv:
		for i := range dst {
			dst[i] = x[i] / y[i]
		}
	default:
		return fmt.Errorf("unhandled opcode %s", in.Op)
	}
	return nil
}

// writeReg resolves a destination register. Input registers alias the
// caller's arrays and are never legal write targets.
func writeReg(regs [][]float64, nInputs int, idx byte) ([]float64, error) {
	if int(idx) >= len(regs) {
		return nil, fmt.Errorf("destination register r%d out of range", idx)
	}
	if idx != 0 && int(idx) <= nInputs {
		return nil, fmt.Errorf("destination register r%d is an input", idx)
	}
	return regs[idx], nil
}

func readReg(regs [][]float64, idx byte) ([]float64, error) {
	if int(idx) >= len(regs) {
		return nil, fmt.Errorf("register r%d out of range", idx)
	}
	return regs[idx], nil
}

func constVal(p *bytecode.Program, idx byte) (float64, error) {
	if int(idx) >= len(p.Consts) {
		return 0, fmt.Errorf("constant c%d out of range", idx)
	}
	return p.Consts[idx], nil
}
