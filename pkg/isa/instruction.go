package isa

import "fmt"

// DefaultMemSize is the deployment-time memory size spec.md §4.4 names as
// the default when neither the translator nor the emulator is told
// otherwise. Both cmd/translate and cmd/emulate expose --mem-size to
// override it; the two must agree for a given image, since the code
// generator's data-section placement and the emulator's stack-pointer
// initialisation both depend on it.
const DefaultMemSize = 4096

// IOBufferSize is the number of cells reserved for the I/O scratch buffer
// addressed by the symbolic label StaticMemStart: one length cell followed
// by 31 character cells.
const IOBufferSize = 32

// StaticMemStart is the symbolic label the code generator emits in place of
// the I/O buffer's address until the resolve pass substitutes the concrete
// value.
const StaticMemStart = "static_mem_start"

// OperandKind distinguishes the four forms an instruction operand may take
// during code generation. Only OperandRegister and OperandImmediate survive
// past the resolve pass; OperandLabel and OperandDataRef operands are
// rewritten to OperandImmediate once their address is known.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandRegister
	OperandImmediate
	OperandLabel
	// OperandDataRef carries an offset relative to the data section's
	// eventual start (StaticMemStart + IOBufferSize). The resolve pass
	// rewrites it to OperandImmediate once the data section's address is
	// known; no OperandDataRef survives past resolution.
	OperandDataRef
)

// Operand is one argument of an Instruction: a register, a literal integer,
// or (only until resolved) a symbolic label or a data-section offset.
type Operand struct {
	Kind  OperandKind `json:"kind"`
	Reg   Reg         `json:"reg,omitempty"`
	Imm   int32       `json:"imm,omitempty"`
	Label string      `json:"label,omitempty"`
}

// RegOperand builds a register operand.
func RegOperand(r Reg) *Operand { return &Operand{Kind: OperandRegister, Reg: r} }

// ImmOperand builds an immediate operand.
func ImmOperand(v int32) *Operand { return &Operand{Kind: OperandImmediate, Imm: v} }

// LabelOperand builds a not-yet-resolved symbolic operand.
func LabelOperand(label string) *Operand { return &Operand{Kind: OperandLabel, Label: label} }

// DataRefOperand builds a not-yet-resolved data-section offset operand.
func DataRefOperand(offset int32) *Operand { return &Operand{Kind: OperandDataRef, Imm: offset} }

func (o *Operand) String() string {
	if o == nil {
		return ""
	}
	switch o.Kind {
	case OperandRegister:
		return o.Reg.String()
	case OperandImmediate:
		return fmt.Sprintf("%d", o.Imm)
	case OperandLabel:
		return o.Label
	case OperandDataRef:
		return fmt.Sprintf("data+%d", o.Imm)
	default:
		return "-"
	}
}

// Instruction is one instruction word: {index, opcode, arg1, arg2}. Every
// instruction occupies exactly one memory cell, and Index always equals the
// address the instruction is stored at.
type Instruction struct {
	Index int      `json:"index"`
	Op    Opcode   `json:"opcode"`
	Arg1  *Operand `json:"arg1,omitempty"`
	Arg2  *Operand `json:"arg2,omitempty"`
}

func (i Instruction) String() string {
	switch {
	case i.Arg1 != nil && i.Arg2 != nil:
		return fmt.Sprintf("%04d: %s %s, %s", i.Index, i.Op, i.Arg1, i.Arg2)
	case i.Arg1 != nil:
		return fmt.Sprintf("%04d: %s %s", i.Index, i.Op, i.Arg1)
	default:
		return fmt.Sprintf("%04d: %s", i.Index, i.Op)
	}
}

// PaddingInstruction is the zero instruction ("JUMP 0") used to backfill any
// cell not explicitly produced by the code generator, so that a
// memory-mapped load from any address within the configured memory size
// returns a well-defined word.
func PaddingInstruction(index int) Instruction {
	return Instruction{Index: index, Op: OpJump, Arg1: ImmOperand(0)}
}
