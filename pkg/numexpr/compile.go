// Package numexpr compiles small arithmetic expressions over named array
// variables, like "2*a+3*b", into fixed-width register bytecode that the vm
// package runs elementwise. Compilation is a single pass of expression
// parsing, constant folding, value numbering, register allocation with
// temporary reuse, and instruction emission; compiled programs are cached
// per exact source string.
package numexpr

import (
	"fmt"
	"math"
	"sort"

	"github.com/PradeepThapa/scipy/pkg/bytecode"
)

// register is one slot in a register file. A single register value may be
// shared by several nodes: temporary reuse works by pointing an op at the
// same register as one of its operands, so numbering it once numbers every
// reference.
type register struct {
	n         int // assigned index; -1 until numbered
	name      string
	temporary bool
	constant  bool
	value     float64
}

func (r *register) String() string {
	switch {
	case r.temporary:
		return fmt.Sprintf("Temporary(%d)", r.n)
	case r.constant:
		return fmt.Sprintf("Constant(%d, %v)", r.n, r.value)
	case r.name != "":
		return fmt.Sprintf("Register(%d, %s)", r.n, r.name)
	default:
		return fmt.Sprintf("Register(%d)", r.n)
	}
}

// Compile parses src and compiles it to a Program. inputOrder optionally
// fixes the positional order of the input arrays; when nil or empty the
// distinct variable names are used in sorted order.
func Compile(src string, inputOrder []string) (*bytecode.Program, error) {
	ex, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return CompileExpr(ex, inputOrder)
}

// CompileExpr compiles an already-built expression tree to a Program.
func CompileExpr(root Node, inputOrder []string) (*bytecode.Program, error) {
	ex := wrapRoot(root)

	// Canonicalize variables: the first node seen for each name becomes the
	// identity every later equal-named node maps to. The walk order is fixed
	// post-order, so repeated compilations of the same input always produce
	// the same layout.
	nodeMap := map[Node]Node{}
	nameMap := map[string]*VariableNode{}
	walk(ex, func(n Node) {
		v, ok := n.(*VariableNode)
		if !ok {
			return
		}
		if canon, seen := nameMap[v.Name]; seen {
			nodeMap[v] = canon
		} else {
			nameMap[v.Name] = v
			nodeMap[v] = v
		}
	})

	used := make([]string, 0, len(nameMap))
	for name := range nameMap {
		used = append(used, name)
	}
	sort.Strings(used)

	if len(inputOrder) == 0 {
		inputOrder = used
	} else {
		inOrder := make(map[string]bool, len(inputOrder))
		for _, name := range inputOrder {
			if _, ok := nameMap[name]; !ok {
				return nil, &UnknownInputError{Name: name}
			}
			inOrder[name] = true
		}
		for _, name := range used {
			if !inOrder[name] {
				return nil, &UnusedInputError{Name: name}
			}
		}
	}
	nInputs := len(inputOrder)

	// Canonicalize constants by exact bit pattern, in first-seen order. Bit
	// keys keep 0.0 and -0.0 apart and let NaN deduplicate with itself.
	constMap := map[uint64]*ConstantNode{}
	var constList []*ConstantNode
	walk(ex, func(n Node) {
		c, ok := n.(*ConstantNode)
		if !ok {
			return
		}
		bits := math.Float64bits(c.Value)
		if canon, seen := constMap[bits]; seen {
			nodeMap[c] = canon
		} else {
			constMap[bits] = c
			constList = append(constList, c)
			nodeMap[c] = c
		}
	})

	canon := func(n Node) Node {
		if c, ok := nodeMap[n]; ok {
			return c
		}
		return n
	}

	// Assign registers: inputs are 1..nInputs in input order, constants get
	// the separate constant file 0..len-1, and every op starts on a fresh,
	// not-yet-numbered temporary.
	regs := map[Node]*register{}
	for i, name := range inputOrder {
		regs[nameMap[name]] = &register{n: i + 1, name: name}
	}
	walk(ex, func(n Node) {
		if op, ok := n.(*OpNode); ok {
			regs[op] = &register{n: -1, temporary: true}
		}
	})
	consts := make([]float64, len(constList))
	for i, c := range constList {
		regs[c] = &register{n: i, constant: true, value: c.Value}
		consts[i] = c.Value
	}

	// Temporary reuse: an op's result overwrites the first operand that
	// lives in a temporary. Sound because after canonicalization every
	// subtree has exactly one consumer.
	walk(ex, func(n Node) {
		op, ok := n.(*OpNode)
		if !ok {
			return
		}
		for _, arg := range op.Args {
			if r := regs[canon(arg)]; r != nil && r.temporary {
				regs[op] = r
				break
			}
		}
	})

	// The root writes the single output slot, register 0 of the variable
	// file. Clearing the temporary flag keeps it out of the numbering pass.
	rootReg := regs[ex]
	rootReg.n = 0
	rootReg.temporary = false

	// Number surviving temporaries lazily during emission, in the order they
	// are first referenced. A register shared through reuse is numbered once.
	nTemps := 0
	reg := func(n Node) (*register, error) {
		r := regs[canon(n)]
		if r == nil {
			return nil, internalf("node %s has no allocated register", n)
		}
		if r.temporary && r.n < 0 {
			r.n = 1 + nInputs + nTemps
			nTemps++
		}
		return r, nil
	}

	var code []bytecode.Instr
	var walkErr error
	walk(ex, func(n Node) {
		op, ok := n.(*OpNode)
		if !ok || walkErr != nil {
			return
		}
		instr, err := emit(op, reg)
		if err != nil {
			walkErr = err
			return
		}
		code = append(code, instr)
	})
	if walkErr != nil {
		return nil, walkErr
	}

	if n := 1 + nInputs + nTemps; n > 256 {
		return nil, fmt.Errorf("expression needs %d variable-file registers, limit is 256", n)
	}
	if len(consts) > 256 {
		return nil, fmt.Errorf("expression needs %d constant registers, limit is 256", len(consts))
	}

	return &bytecode.Program{
		InputNames: append([]string(nil), inputOrder...),
		NTemps:     nTemps,
		Consts:     consts,
		Code:       code,
	}, nil
}

// emit produces the instruction for one op. The destination register is
// resolved first so reuse numbering matches reference order, and for `_c`
// opcodes the constant-file register is moved into the trailing encoded
// operand slot.
func emit(op *OpNode, reg func(Node) (*register, error)) (bytecode.Instr, error) {
	dst, err := reg(op)
	if err != nil {
		return bytecode.Instr{}, err
	}

	if op.Op.Unary() {
		if len(op.Args) != 1 {
			return bytecode.Instr{}, internalf("%s op has %d operands", op.Op, len(op.Args))
		}
		a1, err := reg(op.Args[0])
		if err != nil {
			return bytecode.Instr{}, err
		}
		if a1.constant != (op.Op == bytecode.OpCopyC) {
			return bytecode.Instr{}, internalf("%s op with constant flag mismatch on %s", op.Op, a1)
		}
		return bytecode.Instr{Op: op.Op, Dest: byte(dst.n), A1: byte(a1.n)}, nil
	}

	if len(op.Args) != 2 {
		return bytecode.Instr{}, internalf("%s op has %d operands", op.Op, len(op.Args))
	}
	a1, err := reg(op.Args[0])
	if err != nil {
		return bytecode.Instr{}, err
	}
	a2, err := reg(op.Args[1])
	if err != nil {
		return bytecode.Instr{}, err
	}
	if op.Op.ReadsConst() && a1.constant {
		a1, a2 = a2, a1
	}
	if a1.constant || a2.constant != op.Op.ReadsConst() {
		return bytecode.Instr{}, internalf("%s op with operands %s, %s", op.Op, a1, a2)
	}
	return bytecode.Instr{Op: op.Op, Dest: byte(dst.n), A1: byte(a1.n), A2: byte(a2.n)}, nil
}
