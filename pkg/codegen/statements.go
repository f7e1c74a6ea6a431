package codegen

import "github.com/minilang/mlc/pkg/ast"
import "github.com/minilang/mlc/pkg/isa"

func (g *Generator) genStatement(n *ast.Node) {
	switch n.Tag {
	case ast.Let:
		g.genLet(n)
	case ast.Assign:
		g.genAssign(n)
	case ast.PrintInt:
		g.genPrintInt(n)
	case ast.PrintStr:
		g.genPrintStr(n)
	case ast.If:
		g.genIf(n)
	case ast.While:
		g.genWhile(n)
	default:
		g.errs.add("line %d: unexpected statement node %s", n.Line, n.Tag)
	}
}

func (g *Generator) genLet(n *ast.Node) {
	if len(n.Children) != 2 {
		g.errs.add("line %d: Let node must have exactly 2 children, got %d", n.Line, len(n.Children))
		return
	}
	name := n.Children[0].Value
	rvalue := n.Children[1]

	if _, exists := g.variables[name]; exists {
		g.errs.add("line %d: redeclaration of variable %q", n.Line, name)
		return
	}
	g.allocVariable(name)
	g.assignTo(name, rvalue, n.Line)
}

func (g *Generator) genAssign(n *ast.Node) {
	if len(n.Children) != 2 {
		g.errs.add("line %d: Assign node must have exactly 2 children, got %d", n.Line, len(n.Children))
		return
	}
	name := n.Children[0].Value
	rvalue := n.Children[1]

	if _, exists := g.variables[name]; !exists {
		g.errs.add("line %d: assignment to undeclared variable %q", n.Line, name)
		return
	}
	g.assignTo(name, rvalue, n.Line)
}

// assignTo lowers the three r-value shapes a Let/Assign can carry, then
// invalidates name's register-cache entry — spec.md §4.2: "On any assign,
// invalidate the register cache entry for the assigned name."
func (g *Generator) assignTo(name string, rvalue *ast.Node, line int) {
	v := g.variables[name]

	switch rvalue.Tag {
	case ast.String:
		addr := g.allocString(rvalue.Value)
		tmp := scratchA
		g.emit(isa.OpLDLit, isa.RegOperand(tmp), isa.DataRefOperand(addr))
		g.emit(isa.OpST, isa.RegOperand(tmp), isa.DataRefOperand(v.offset))
		v.isString = true

	case ast.Read:
		g.genReadLoop()
		tmp := scratchA
		g.emit(isa.OpLDLit, isa.RegOperand(tmp), isa.LabelOperand(isa.StaticMemStart))
		g.emit(isa.OpST, isa.RegOperand(tmp), isa.DataRefOperand(v.offset))
		v.isString = true

	default:
		g.genArithmetic(rvalue)
		g.emit(isa.OpPop, isa.RegOperand(scratchA), nil)
		g.emit(isa.OpST, isa.RegOperand(scratchA), isa.DataRefOperand(v.offset))
		v.isString = false
	}

	g.cache.invalidate(name)
}

// genReadLoop emits the inline zero-terminated line read (spec.md §4.2):
// zero a counter and a comparison register, point a pointer register at the
// I/O buffer, then loop reading one character at a time until a zero byte
// terminates the line, finally writing the count as the buffer's length
// prefix.
func (g *Generator) genReadLoop() {
	const port0 = 0
	counter, zero, ptr := workingA, scratchB, workingB

	g.emit(isa.OpLDLit, isa.RegOperand(counter), isa.ImmOperand(0))
	g.emit(isa.OpLDLit, isa.RegOperand(zero), isa.ImmOperand(0))
	g.emit(isa.OpLDLit, isa.RegOperand(ptr), isa.LabelOperand(isa.StaticMemStart))

	top := g.emit(isa.OpRead, isa.RegOperand(scratchA), isa.ImmOperand(port0))
	g.emit(isa.OpCmp, isa.RegOperand(scratchA), isa.RegOperand(zero))
	exitJump := g.emit(isa.OpJE, isa.ImmOperand(0), nil)
	g.emit(isa.OpInc, isa.RegOperand(counter), nil)
	g.emit(isa.OpInc, isa.RegOperand(ptr), nil)
	g.emit(isa.OpSTInd, isa.RegOperand(scratchA), isa.RegOperand(ptr))
	g.emit(isa.OpJump, isa.ImmOperand(int32(top)), nil)

	g.patch(exitJump, len(g.code))
	g.emit(isa.OpST, isa.RegOperand(counter), isa.LabelOperand(isa.StaticMemStart))
}

func (g *Generator) genPrintInt(n *ast.Node) {
	if len(n.Children) != 1 {
		g.errs.add("line %d: PrintInt must have exactly 1 child, got %d", n.Line, len(n.Children))
		return
	}
	const port0 = 0
	g.genArithmetic(n.Children[0])
	g.emit(isa.OpPop, isa.RegOperand(scratchA), nil)
	g.emit(isa.OpPrint, isa.RegOperand(scratchA), isa.ImmOperand(port0))
}

// genPrintStr resolves the variable's base-address cell, then emits the
// fixed-shape 7-instruction counted loop of spec.md §4.2 that prints each
// character of the string to port 0.
func (g *Generator) genPrintStr(n *ast.Node) {
	if len(n.Children) != 1 {
		g.errs.add("line %d: PrintStr must have exactly 1 child, got %d", n.Line, len(n.Children))
		return
	}
	arg := n.Children[0]
	const port0 = 0

	switch arg.Tag {
	case ast.String:
		// A literal argument to print_str: allocate it and print it the same
		// way a string variable would be printed, skipping the variable
		// indirection.
		addr := g.allocString(arg.Value)
		ptr, length, char, count := workingA, scratchA, scratchB, workingB

		g.emit(isa.OpLDLit, isa.RegOperand(ptr), isa.DataRefOperand(addr))
		g.emit(isa.OpLDInd, isa.RegOperand(length), isa.RegOperand(ptr))
		g.emit(isa.OpLDLit, isa.RegOperand(count), isa.ImmOperand(0))
		g.printCountedLoop(ptr, length, char, count, port0)
		return

	case ast.Name:
		name := arg.Value
		v, ok := g.variables[name]
		if !ok {
			g.errs.add("line %d: print_str of undeclared variable %q", n.Line, name)
			return
		}
		if !v.isString {
			g.errs.add("line %d: print_str of integer variable %q", n.Line, name)
			return
		}
		ptr, length, char, count := workingA, scratchA, scratchB, workingB

		g.emit(isa.OpLD, isa.RegOperand(ptr), isa.DataRefOperand(v.offset))
		g.emit(isa.OpLDInd, isa.RegOperand(length), isa.RegOperand(ptr))
		g.emit(isa.OpLDLit, isa.RegOperand(count), isa.ImmOperand(0))
		g.printCountedLoop(ptr, length, char, count, port0)
		return

	default:
		g.errs.add("line %d: print_str expects a name or a string literal, got %s", n.Line, arg.Tag)
	}
}

// printCountedLoop is the 7-instruction loop shared by both print_str
// forms: it advances ptr from the base address, printing each of length
// characters, using char as scratch and count as the loop counter.
func (g *Generator) printCountedLoop(ptr, length, char, count isa.Reg, port0 int32) {
	top := g.emit(isa.OpCmp, isa.RegOperand(count), isa.RegOperand(length))
	exitJump := g.emit(isa.OpJGE, isa.ImmOperand(0), nil)
	g.emit(isa.OpInc, isa.RegOperand(ptr), nil)
	g.emit(isa.OpLDInd, isa.RegOperand(char), isa.RegOperand(ptr))
	g.emit(isa.OpPrint, isa.RegOperand(char), isa.ImmOperand(port0))
	g.emit(isa.OpInc, isa.RegOperand(count), nil)
	g.emit(isa.OpJump, isa.ImmOperand(int32(top)), nil)

	g.patch(exitJump, len(g.code))
}

// conditionOpcodes maps a comparison tag to the jump taken when the
// condition holds, and jumpInverse maps each to the jump used to skip a
// block when the condition does not hold.
var conditionOpcodes = map[ast.Tag]isa.Opcode{
	ast.Eq: isa.OpJE, ast.Ne: isa.OpJNE,
	ast.Lt: isa.OpJL, ast.Le: isa.OpJLE,
	ast.Gt: isa.OpJG, ast.Ge: isa.OpJGE,
}

var jumpInverse = map[isa.Opcode]isa.Opcode{
	isa.OpJE: isa.OpJNE, isa.OpJNE: isa.OpJE,
	isa.OpJL: isa.OpJGE, isa.OpJGE: isa.OpJL,
	isa.OpJG: isa.OpJLE, isa.OpJLE: isa.OpJG,
}

// genCondition evaluates a comparison node into the left/right working
// registers and emits the inverted forward branch, returning its index so
// the caller can patch the target once it knows where the skip lands.
func (g *Generator) genCondition(n *ast.Node) int {
	if len(n.Children) != 2 {
		g.errs.add("line %d: comparison node must have exactly 2 children, got %d", n.Line, len(n.Children))
		return g.emit(isa.OpJump, isa.ImmOperand(0), nil)
	}

	g.genArithmetic(n.Children[0])
	g.emit(isa.OpPop, isa.RegOperand(scratchA), nil)
	g.emit(isa.OpMV, isa.RegOperand(scratchA), isa.RegOperand(workingA))

	g.genArithmetic(n.Children[1])
	g.emit(isa.OpPop, isa.RegOperand(scratchA), nil)
	g.emit(isa.OpMV, isa.RegOperand(scratchA), isa.RegOperand(workingB))

	g.emit(isa.OpCmp, isa.RegOperand(workingA), isa.RegOperand(workingB))

	taken, ok := conditionOpcodes[n.Tag]
	if !ok {
		g.errs.add("line %d: %s is not a comparison operator", n.Line, n.Tag)
		return g.emit(isa.OpJump, isa.ImmOperand(0), nil)
	}
	inverted := jumpInverse[taken]
	return g.emit(inverted, isa.ImmOperand(0), nil)
}

func (g *Generator) genIf(n *ast.Node) {
	if len(n.Children) != 2 {
		g.errs.add("line %d: If node must have exactly 2 children, got %d", n.Line, len(n.Children))
		return
	}
	g.cache.reset() // control-flow boundary
	branch := g.genCondition(n.Children[0])
	g.genBlock(n.Children[1])
	g.patch(branch, len(g.code))
	g.cache.reset() // join point: the block may not have run
}

func (g *Generator) genWhile(n *ast.Node) {
	if len(n.Children) != 2 {
		g.errs.add("line %d: While node must have exactly 2 children, got %d", n.Line, len(n.Children))
		return
	}
	g.cache.reset() // control-flow boundary
	loopHead := len(g.code)
	branch := g.genCondition(n.Children[0])
	g.genBlock(n.Children[1])
	g.emit(isa.OpJump, isa.ImmOperand(int32(loopHead)), nil)
	g.patch(branch, len(g.code))
	g.cache.reset() // loop exit: the body may not have run
}

func (g *Generator) genBlock(n *ast.Node) {
	if n.Tag != ast.Block {
		g.errs.add("line %d: expected a Block node, got %s", n.Line, n.Tag)
		return
	}
	for _, stmt := range n.Children {
		g.genStatement(stmt)
	}
}
