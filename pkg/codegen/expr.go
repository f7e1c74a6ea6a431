package codegen

import (
	"strconv"

	"github.com/minilang/mlc/pkg/ast"
	"github.com/minilang/mlc/pkg/isa"
)

var arithOpcodes = map[ast.Tag]isa.Opcode{
	ast.Add: isa.OpAdd, ast.Sub: isa.OpSub, ast.Mul: isa.OpMul, ast.Div: isa.OpDiv,
}

// genArithmetic is the post-order stack evaluator of spec.md §4.2: every
// leaf pushes its value onto the emulated stack, every internal node pops
// both operands, applies the operator, and pushes the result. The caller is
// responsible for the final POP that retrieves the result.
func (g *Generator) genArithmetic(n *ast.Node) {
	switch {
	case n.Tag == ast.Number:
		val, err := strconv.ParseInt(n.Value, 10, 32)
		if err != nil {
			g.errs.add("line %d: invalid integer literal %q", n.Line, n.Value)
			return
		}
		g.emit(isa.OpLDLit, isa.RegOperand(scratchA), isa.ImmOperand(int32(val)))
		g.emit(isa.OpPush, isa.RegOperand(scratchA), nil)

	case n.Tag == ast.Name:
		g.genLoadVariable(n)

	case n.Tag.IsArithmetic():
		if len(n.Children) != 2 {
			g.errs.add("line %d: %s must have exactly 2 children, got %d", n.Line, n.Tag, len(n.Children))
			return
		}
		g.genArithmetic(n.Children[0])
		g.genArithmetic(n.Children[1])
		g.emit(isa.OpPop, isa.RegOperand(scratchB), nil) // right operand
		g.emit(isa.OpPop, isa.RegOperand(scratchA), nil) // left operand
		op := arithOpcodes[n.Tag]
		g.emit(op, isa.RegOperand(scratchA), isa.RegOperand(scratchB))
		g.emit(isa.OpPush, isa.RegOperand(scratchA), nil)

	default:
		g.errs.add("line %d: %s is not valid in an arithmetic expression", n.Line, n.Tag)
	}
}

// genLoadVariable loads a variable's value through the register cache,
// rejecting a reference to a string-flavoured variable — arithmetic on a
// string's pointer/length representation is meaningless and is exactly the
// "PrintInt of a String" failure family spec.md §4.2 names (print_int's
// operand is always an arithmetic expression, so any such type mismatch
// surfaces here, at the leaf that reads the offending variable).
func (g *Generator) genLoadVariable(n *ast.Node) {
	name := n.Value
	v, ok := g.variables[name]
	if !ok {
		g.errs.add("line %d: use of undeclared variable %q", n.Line, name)
		return
	}
	if v.isString {
		g.errs.add("line %d: cannot use string variable %q in an arithmetic expression (print_int of a String)", n.Line, name)
		return
	}

	if r, cached := g.cache.lookup(name); cached {
		g.emit(isa.OpMV, isa.RegOperand(r), isa.RegOperand(scratchA))
		g.emit(isa.OpPush, isa.RegOperand(scratchA), nil)
		return
	}

	r := g.cache.assign(name)
	g.emit(isa.OpLD, isa.RegOperand(r), isa.DataRefOperand(v.offset))
	g.emit(isa.OpMV, isa.RegOperand(r), isa.RegOperand(scratchA))
	g.emit(isa.OpPush, isa.RegOperand(scratchA), nil)
}
