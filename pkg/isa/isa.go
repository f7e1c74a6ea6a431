// Package isa defines the instruction set of the modelled register machine:
// the opcode and register enumerations, the instruction word shape, and the
// textual record format the code generator and emulator exchange images in.
package isa

import "fmt"

// Opcode enumerates every instruction the machine understands.
type Opcode int

const (
	OpHalt Opcode = iota
	OpJump
	OpJE
	OpJNE
	OpJL
	OpJLE
	OpJG
	OpJGE
	OpCmp

	OpLD      // LD r, [addr]       absolute load
	OpLDInd   // LD r_to, (r_from)  register-indirect load
	OpLDStack // LD_STACK r, k      load cell at MEM_SIZE-k-1
	OpLDLit   // LD_LIT r, imm
	OpST      // ST r, [addr]
	OpSTInd   // ST r, (r_addr)
	OpSTStack // ST_STACK r, k
	OpMV      // MV r_src, r_dst

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpInc
	OpDec
	OpAddLit
	OpShl
	OpShr
	OpAnd
	OpOr
	OpXor
	OpNeg

	OpPush
	OpPop

	OpRead
	OpPrint
)

var opcodeNames = map[Opcode]string{
	OpHalt:    "HALT",
	OpJump:    "JUMP",
	OpJE:      "JE",
	OpJNE:     "JNE",
	OpJL:      "JL",
	OpJLE:     "JLE",
	OpJG:      "JG",
	OpJGE:     "JGE",
	OpCmp:     "CMP",
	OpLD:      "LD",
	OpLDInd:   "LD_IND",
	OpLDStack: "LD_STACK",
	OpLDLit:   "LD_LIT",
	OpST:      "ST",
	OpSTInd:   "ST_IND",
	OpSTStack: "ST_STACK",
	OpMV:      "MV",
	OpAdd:     "ADD",
	OpSub:     "SUB",
	OpMul:     "MUL",
	OpDiv:     "DIV",
	OpInc:     "INC",
	OpDec:     "DEC",
	OpAddLit:  "ADD_LIT",
	OpShl:     "SHL",
	OpShr:     "SHR",
	OpAnd:     "AND",
	OpOr:      "OR",
	OpXor:     "XOR",
	OpNeg:     "NEG",
	OpPush:    "PUSH",
	OpPop:     "POP",
	OpRead:    "READ",
	OpPrint:   "PRINT",
}

var namesToOpcode = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeNames))
	for op, name := range opcodeNames {
		m[name] = op
	}
	return m
}()

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

// ParseOpcode resolves a mnemonic into its Opcode.
func ParseOpcode(name string) (Opcode, error) {
	op, ok := namesToOpcode[name]
	if !ok {
		return 0, fmt.Errorf("isa: unknown opcode %q", name)
	}
	return op, nil
}

// IsControlFlow reports whether op is a control-flow instruction: one that
// latches pc itself rather than relying on the control unit's post-instruction
// pc+1 increment.
func (op Opcode) IsControlFlow() bool {
	switch op {
	case OpHalt, OpJump, OpJE, OpJNE, OpJL, OpJLE, OpJG, OpJGE:
		return true
	default:
		return false
	}
}

// Reg identifies one of the 16 registers, r0..r15.
type Reg int

const (
	R0 Reg = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	R11
	R12
	PC // r13, program counter
	DR // r14, bus data/address latch
	SP // r15, stack pointer
)

const NumRegisters = 16

func (r Reg) String() string {
	switch r {
	case PC:
		return "pc"
	case DR:
		return "dr"
	case SP:
		return "sp"
	default:
		return fmt.Sprintf("r%d", int(r))
	}
}

// ParseReg resolves a register mnemonic ("r0".."r12", "pc", "dr", "sp") into
// its Reg.
func ParseReg(name string) (Reg, error) {
	switch name {
	case "pc":
		return PC, nil
	case "dr":
		return DR, nil
	case "sp":
		return SP, nil
	}
	var n int
	if _, err := fmt.Sscanf(name, "r%d", &n); err != nil {
		return 0, fmt.Errorf("isa: invalid register %q", name)
	}
	if n < 0 || n >= NumRegisters {
		return 0, fmt.Errorf("isa: register out of range %q", name)
	}
	return Reg(n), nil
}
