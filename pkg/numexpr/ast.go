package numexpr

import (
	"fmt"
	"strings"

	"github.com/PradeepThapa/scipy/pkg/bytecode"
)

//  Expression nodes
//
// Nodes are immutable once constructed. All folding and operand-placement
// normalization happens in the constructors below, never afterwards.

// Node is implemented by every expression node.
type Node interface {
	exprNode()
	String() string
}

// VariableNode is a reference to a named input array. Two nodes with equal
// names canonicalize to a single identity during compilation.
type VariableNode struct {
	Name string
}

func (*VariableNode) exprNode()        {}
func (v *VariableNode) String() string { return v.Name }

// ConstantNode is a scalar double-precision literal. Two nodes with
// bit-equal values canonicalize to a single identity during compilation.
type ConstantNode struct {
	Value float64
}

func (*ConstantNode) exprNode()        {}
func (c *ConstantNode) String() string { return fmt.Sprintf("%v", c.Value) }

// OpNode applies an operation to one or two operands. Binary operands are
// either both array-valued, or the node carries a `_c` opcode and exactly
// one operand is a ConstantNode.
type OpNode struct {
	Op   bytecode.Opcode
	Args []Node
}

func (*OpNode) exprNode() {}
func (o *OpNode) String() string {
	parts := make([]string, len(o.Args))
	for i, a := range o.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", o.Op, strings.Join(parts, ", "))
}

// Var builds a reference to the named input array.
func Var(name string) *VariableNode { return &VariableNode{Name: name} }

// Const builds a scalar constant.
func Const(v float64) *ConstantNode { return &ConstantNode{Value: v} }

// Neg negates x. Negating a constant folds to a constant, so a `neg` op
// only ever sees an array-valued operand.
func Neg(x Node) Node {
	if c, ok := x.(*ConstantNode); ok {
		return Const(-c.Value)
	}
	return &OpNode{Op: bytecode.OpNeg, Args: []Node{x}}
}

// Add builds x + y.
func Add(x, y Node) Node { return binary(bytecode.OpAdd, x, y) }

// Sub builds x - y.
func Sub(x, y Node) Node { return binary(bytecode.OpSub, x, y) }

// Mul builds x * y.
func Mul(x, y Node) Node { return binary(bytecode.OpMul, x, y) }

// Div builds x / y.
func Div(x, y Node) Node { return binary(bytecode.OpDiv, x, y) }

func fold(op bytecode.Opcode, a, b float64) float64 {
	switch op {
	case bytecode.OpAdd:
		return a + b
	case bytecode.OpSub:
		return a - b
	case bytecode.OpMul:
		return a * b
	default:
		return a / b
	}
}

// binary applies the construction rules for the four arithmetic operators:
//
//   - both operands constant: fold to a single ConstantNode;
//   - first operand constant: switch to the `_c` opcode, operand order kept
//     (the emitter places the constant in the trailing encoded slot);
//   - second operand constant: sub rewrites to add_c with the negated
//     constant and div rewrites to mul_c with the reciprocal, halving the
//     opcode surface the VM must implement; add and mul just take the `_c`
//     tag. The reciprocal rewrite rounds differently from IEEE division in
//     the last bit for some divisors.
func binary(op bytecode.Opcode, x, y Node) Node {
	cx, xconst := x.(*ConstantNode)
	cy, yconst := y.(*ConstantNode)

	switch {
	case xconst && yconst:
		return Const(fold(op, cx.Value, cy.Value))

	case xconst:
		withC, _ := op.ConstVariant()
		return &OpNode{Op: withC, Args: []Node{x, y}}

	case yconst:
		switch op {
		case bytecode.OpSub:
			return &OpNode{Op: bytecode.OpAddC, Args: []Node{x, Const(-cy.Value)}}
		case bytecode.OpDiv:
			return &OpNode{Op: bytecode.OpMulC, Args: []Node{x, Const(1.0 / cy.Value)}}
		default:
			withC, _ := op.ConstVariant()
			return &OpNode{Op: withC, Args: []Node{x, y}}
		}

	default:
		return &OpNode{Op: op, Args: []Node{x, y}}
	}
}

// wrapRoot guarantees compilation always starts from an OpNode: a bare
// variable or constant becomes a unary copy of itself. A constant operand
// needs the copy_c form since it lives in the constant register file.
func wrapRoot(n Node) *OpNode {
	switch n := n.(type) {
	case *OpNode:
		return n
	case *ConstantNode:
		return &OpNode{Op: bytecode.OpCopyC, Args: []Node{n}}
	default:
		return &OpNode{Op: bytecode.OpCopy, Args: []Node{n}}
	}
}

// walk visits every node occurrence in deterministic post-order: operands
// before their op, left-to-right. Shared leaves are visited once per
// occurrence; callers that need canonical identities dedup themselves.
func walk(n Node, fn func(Node)) {
	if op, ok := n.(*OpNode); ok {
		for _, a := range op.Args {
			walk(a, fn)
		}
	}
	fn(n)
}
