// Package codegen lowers the AST pkg/parser produces into the flat
// instruction list and data section pkg/isa's image format describes. It
// implements spec.md §4.2 in full: register allocation for variables,
// stack-based arithmetic evaluation, forward-patched branches for If/While,
// and the inline character-at-a-time I/O loops for strings.
package codegen

import (
	"github.com/minilang/mlc/pkg/ast"
	"github.com/minilang/mlc/pkg/isa"
)

// variable records a declared name's data-section offset and whether it
// currently holds a string (a pointer into the data section or the I/O
// buffer) or an integer value. The flavour is "run-time-irrelevant" per
// spec.md §1 — it exists purely to let the generator reject print_int/
// print_str type mismatches at generation time.
type variable struct {
	offset   int32
	isString bool
}

// Generator holds all code-generation state for one program: the growing
// instruction list, the data section awaiting the resolve pass, the flat
// symbol table, and the register cache.
type Generator struct {
	code      []isa.Instruction
	staticMem []int32
	variables map[string]*variable
	cache     *regCache
	errs      GenError
	memSize   int
}

// New creates a Generator ready to lower one program against
// isa.DefaultMemSize. Use NewSized to target a different deployment memory
// size.
func New() *Generator {
	return NewSized(isa.DefaultMemSize)
}

// NewSized creates a Generator whose data-section bounds check is against
// memSize instead of isa.DefaultMemSize — cmd/translate's --mem-size flag
// threads through here so the generated image matches the emulator it will
// run on.
func NewSized(memSize int) *Generator {
	if memSize <= 0 {
		memSize = isa.DefaultMemSize
	}
	return &Generator{
		variables: make(map[string]*variable),
		cache:     newRegCache(),
		memSize:   memSize,
	}
}

// Generate lowers root (an ast.Root node) into the final, resolved
// instruction list ready for isa.WriteCode, against isa.DefaultMemSize. On
// any generation error it returns nil and a combined error — generation
// never yields a partial image.
func Generate(root *ast.Node) ([]isa.Instruction, error) {
	g := New()
	return g.generate(root)
}

// GenerateSized is Generate, but checks the data section against memSize
// instead of isa.DefaultMemSize.
func GenerateSized(root *ast.Node, memSize int) ([]isa.Instruction, error) {
	g := NewSized(memSize)
	return g.generate(root)
}

func (g *Generator) generate(root *ast.Node) ([]isa.Instruction, error) {
	if root.Tag != ast.Root {
		g.errs.add("expected a Root node, got %s", root.Tag)
		return nil, g.errs.Err()
	}

	for _, stmt := range root.Children {
		g.genStatement(stmt)
	}
	g.emit(isa.OpHalt, nil, nil)

	if g.errs.HasErrors() {
		return nil, g.errs.Err()
	}

	g.resolve()

	if g.errs.HasErrors() {
		return nil, g.errs.Err()
	}
	return g.code, nil
}

// emit appends one instruction, recording its own address as required by
// spec.md §3's first invariant (index == position), and returns that index.
func (g *Generator) emit(op isa.Opcode, arg1, arg2 *isa.Operand) int {
	idx := len(g.code)
	g.code = append(g.code, isa.Instruction{Index: idx, Op: op, Arg1: arg1, Arg2: arg2})
	return idx
}

// patch rewrites the first argument of the instruction at idx — used to
// fill in a forward branch's target once the block it skips has been fully
// generated.
func (g *Generator) patch(idx int, target int) {
	g.code[idx].Arg1 = isa.ImmOperand(int32(target))
}

// allocVariable reserves one data cell for name, appending its initial
// value (always 0 — Let always falls through into the Assign logic that
// overwrites it before any read can observe the placeholder) to the
// pending data section.
func (g *Generator) allocVariable(name string) int32 {
	offset := int32(len(g.staticMem))
	g.staticMem = append(g.staticMem, 0)
	g.variables[name] = &variable{offset: offset}
	return offset
}

// allocString appends a length-prefixed string literal to the data section
// and returns its base offset (the offset of the length cell).
func (g *Generator) allocString(s string) int32 {
	base := int32(len(g.staticMem))
	g.staticMem = append(g.staticMem, int32(len(s)))
	for i := 0; i < len(s); i++ {
		g.staticMem = append(g.staticMem, int32(s[i]))
	}
	return base
}

// resolve performs the single post-pass spec.md §4.2 describes: it reserves
// the 32-cell I/O buffer immediately after the code, rewrites every
// OperandLabel(StaticMemStart) and OperandDataRef to a concrete
// OperandImmediate, and appends the data section as pseudo-JUMP
// instructions so every data cell still occupies one instruction word.
func (g *Generator) resolve() {
	codeEnd := len(g.code)
	staticMemStart := int32(codeEnd)
	dataStart := staticMemStart + isa.IOBufferSize

	resolveOperand := func(o *isa.Operand) {
		if o == nil {
			return
		}
		switch o.Kind {
		case isa.OperandLabel:
			if o.Label == isa.StaticMemStart {
				o.Kind = isa.OperandImmediate
				o.Imm = staticMemStart
				o.Label = ""
			}
		case isa.OperandDataRef:
			o.Kind = isa.OperandImmediate
			o.Imm += dataStart
		}
	}

	for i := range g.code {
		resolveOperand(g.code[i].Arg1)
		resolveOperand(g.code[i].Arg2)
	}

	// The 32 cells in [staticMemStart, dataStart) are the I/O buffer: filled
	// with PaddingInstruction (a well-defined zero value, matching an empty
	// string's length prefix) so every instruction's Index equals its position.
	if int(dataStart)+len(g.staticMem) > g.memSize {
		g.errs.add("program too large: data section would end at cell %d, memory holds %d cells", int(dataStart)+len(g.staticMem), g.memSize)
		return
	}

	for i := staticMemStart; i < dataStart; i++ {
		g.code = append(g.code, isa.PaddingInstruction(int(i)))
	}

	for i, v := range g.staticMem {
		g.code = append(g.code, isa.Instruction{
			Index: int(dataStart) + i,
			Op:    isa.OpJump,
			Arg1:  isa.ImmOperand(v),
		})
	}
}
