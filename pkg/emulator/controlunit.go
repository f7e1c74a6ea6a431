package emulator

import (
	"fmt"
	"io"

	"github.com/minilang/mlc/pkg/isa"
)

// DefaultLimit is the instruction-count ceiling spec.md §4.4 names as the
// default deployment parameter.
const DefaultLimit = 100000

// tickCosts is the per-opcode tick table of spec.md §4.4, excluding the
// fetch (2 ticks, charged uniformly) and the post-instruction pc increment
// (1 tick, charged to every non-control-flow instruction).
var tickCosts = map[isa.Opcode]int{
	isa.OpLDLit:   1,
	isa.OpMV:      2,
	isa.OpLD:      2,
	isa.OpST:      3,
	isa.OpLDInd:   3,
	isa.OpSTInd:   4,
	isa.OpLDStack: 3,
	isa.OpSTStack: 3,
	isa.OpAdd:     2,
	isa.OpSub:     2,
	isa.OpMul:     2,
	isa.OpDiv:     2,
	isa.OpAnd:     2,
	isa.OpOr:      2,
	isa.OpXor:     2,
	isa.OpShl:     2,
	isa.OpShr:     2,
	isa.OpAddLit:  2,
	isa.OpInc:     2,
	isa.OpDec:     2,
	isa.OpNeg:     2,
	isa.OpCmp:     1,
	isa.OpRead:    1,
	isa.OpPrint:   2,
	isa.OpPush:    6,
	isa.OpPop:     5,
}

// Result is the outcome of running a program to termination: the port-0
// output, and the two counters cmd/emulate reports on success.
type Result struct {
	Output       string
	InstrCounter uint64
	Ticks        uint64
}

// Machine is the control unit: it drives a DataPath through the
// fetch-decode-execute cycle, charging ticks as it goes, until HALT,
// instruction-limit overrun, or input exhaustion during READ.
type Machine struct {
	dp       *DataPath
	limit    uint64
	ticks    uint64
	instrs   uint64
	warnings io.Writer
}

// NewMachine builds a machine over image (already padded to its full
// deployment memory size by isa.ReadCode), seeding port 0's input queue with
// input. limit is the instruction-count ceiling; zero selects DefaultLimit.
// warnings receives the warning lines spec.md §7 calls for on limit overrun
// and input exhaustion; a nil warnings writer discards them.
func NewMachine(image []isa.Instruction, input []byte, limit uint64, warnings io.Writer) *Machine {
	dp := newDataPath(image)
	dp.feedInput(0, input)
	if limit == 0 {
		limit = DefaultLimit
	}
	return &Machine{dp: dp, limit: limit, warnings: warnings}
}

// Reg returns the current value of register r, for inspection by tests and
// cmd/debug.
func (m *Machine) Reg(r isa.Reg) int32 {
	return m.dp.loadReg(r)
}

// StepOnce executes exactly one fetch-decode-execute cycle and reports
// whether the machine has now halted. It is the single-step primitive
// pkg/debugger drives interactively instead of calling Run.
func (m *Machine) StepOnce() (bool, error) {
	return m.step()
}

func (m *Machine) warnf(format string, args ...any) {
	if m.warnings == nil {
		return
	}
	fmt.Fprintf(m.warnings, format+"\n", args...)
}

// Run executes instructions until termination, returning the accumulated
// output and counters. The only error Run returns is a genuine runtime fault
// (division by zero); instruction-limit overrun and input exhaustion are not
// errors — they are logged warnings and a clean stop, per spec.md §7.
func (m *Machine) Run() (Result, error) {
	for {
		halted, err := m.step()
		if err != nil {
			return Result{}, err
		}
		if halted {
			break
		}
	}
	return Result{
		Output:       m.dp.outputString(0),
		InstrCounter: m.instrs,
		Ticks:        m.ticks,
	}, nil
}

// step runs one fetch-decode-execute cycle, returning true when the machine
// has reached a terminal state.
func (m *Machine) step() (bool, error) {
	m.ticks += 2 // fetch

	pc := m.dp.loadReg(isa.PC)
	m.dp.latchReg(isa.DR, pc)
	instr := m.dp.memory[m.dp.loadReg(isa.DR)]

	if m.instrs >= m.limit {
		m.warnf("instruction limit exceeded: stopped after %d instructions", m.limit)
		return true, nil
	}
	m.instrs++

	if instr.Op.IsControlFlow() {
		m.ticks++
		return m.executeControlFlow(instr)
	}

	if cost, ok := tickCosts[instr.Op]; ok {
		m.ticks += uint64(cost)
	}
	if err := m.executeOther(instr); err != nil {
		if err == errInputExhausted {
			return true, nil
		}
		return false, err
	}
	m.dp.latchReg(isa.PC, pc+1)
	m.ticks++ // post-instruction increment
	return false, nil
}

// errInputExhausted is a sentinel: READ on an empty port queue is not a
// fault, it is a clean, logged termination (spec.md §7).
var errInputExhausted = fmt.Errorf("emulator: input exhausted")

func (m *Machine) executeControlFlow(instr isa.Instruction) (bool, error) {
	pc := m.dp.loadReg(isa.PC)
	switch instr.Op {
	case isa.OpHalt:
		return true, nil
	case isa.OpJump:
		m.dp.latchReg(isa.PC, instr.Arg1.Imm)
	case isa.OpJE, isa.OpJNE, isa.OpJL, isa.OpJLE, isa.OpJG, isa.OpJGE:
		if m.branchTaken(instr.Op) {
			m.dp.latchReg(isa.PC, instr.Arg1.Imm)
		} else {
			m.dp.latchReg(isa.PC, pc+1)
		}
	default:
		return false, fmt.Errorf("emulator: unreachable control-flow opcode %s", instr.Op)
	}
	return false, nil
}

// branchTaken evaluates a conditional jump's predicate from the current
// flags, per spec.md §4.1.
func (m *Machine) branchTaken(op isa.Opcode) bool {
	f := m.dp.flags
	switch op {
	case isa.OpJE:
		return f.Zero
	case isa.OpJNE:
		return !f.Zero
	case isa.OpJL:
		return f.Neg
	case isa.OpJGE:
		return !f.Neg
	case isa.OpJG:
		return !f.Neg && !f.Zero
	case isa.OpJLE:
		return f.Neg || f.Zero
	default:
		return false
	}
}

// executeOther dispatches every non-control-flow opcode. It returns an error
// for a runtime fault (division by zero, an unimplemented opcode), and the
// errInputExhausted sentinel when READ finds the port empty, which step turns
// into a clean halt. Limit overrun is handled by step before dispatch.
func (m *Machine) executeOther(instr isa.Instruction) error {
	switch instr.Op {
	case isa.OpLDLit:
		m.dp.latchReg(instr.Arg1.Reg, instr.Arg2.Imm)

	case isa.OpMV:
		m.dp.latchReg(instr.Arg2.Reg, m.dp.loadReg(instr.Arg1.Reg))

	case isa.OpLD:
		m.dp.latchReg(isa.DR, instr.Arg2.Imm)
		m.dp.latchReg(instr.Arg1.Reg, m.dp.readCell(m.dp.loadReg(isa.DR)))

	case isa.OpST:
		m.dp.latchReg(isa.DR, instr.Arg2.Imm)
		m.dp.writeCell(m.dp.loadReg(isa.DR), m.dp.loadReg(instr.Arg1.Reg))

	case isa.OpLDInd:
		m.dp.latchReg(isa.DR, m.dp.loadReg(instr.Arg2.Reg))
		m.dp.latchReg(instr.Arg1.Reg, m.dp.readCell(m.dp.loadReg(isa.DR)))

	case isa.OpSTInd:
		m.dp.latchReg(isa.DR, m.dp.loadReg(instr.Arg2.Reg))
		m.dp.writeCell(m.dp.loadReg(isa.DR), m.dp.loadReg(instr.Arg1.Reg))

	case isa.OpLDStack:
		addr := int32(len(m.dp.memory)) - instr.Arg2.Imm - 1
		m.dp.latchReg(instr.Arg1.Reg, m.dp.readCell(addr))

	case isa.OpSTStack:
		addr := int32(len(m.dp.memory)) - instr.Arg2.Imm - 1
		m.dp.writeCell(addr, m.dp.loadReg(instr.Arg1.Reg))

	case isa.OpAdd, isa.OpSub, isa.OpMul, isa.OpAnd, isa.OpOr, isa.OpXor, isa.OpShl, isa.OpShr:
		a, b := m.dp.loadReg(instr.Arg1.Reg), m.dp.loadReg(instr.Arg2.Reg)
		result, flags := performArithmetic(instr.Op, a, b)
		m.dp.flags = flags
		m.dp.latchReg(instr.Arg1.Reg, result)

	case isa.OpDiv:
		a, b := m.dp.loadReg(instr.Arg1.Reg), m.dp.loadReg(instr.Arg2.Reg)
		if b == 0 {
			return fmt.Errorf("emulator: division by zero")
		}
		result, flags := performArithmetic(instr.Op, a, b)
		m.dp.flags = flags
		m.dp.latchReg(instr.Arg1.Reg, result)

	case isa.OpAddLit:
		a := m.dp.loadReg(instr.Arg1.Reg)
		result, flags := performArithmetic(isa.OpAddLit, a, instr.Arg2.Imm)
		m.dp.flags = flags
		m.dp.latchReg(instr.Arg1.Reg, result)

	case isa.OpInc, isa.OpDec:
		a := m.dp.loadReg(instr.Arg1.Reg)
		result, flags := performArithmetic(instr.Op, a, 0)
		m.dp.flags = flags
		m.dp.latchReg(instr.Arg1.Reg, result)

	case isa.OpNeg:
		a := m.dp.loadReg(instr.Arg1.Reg)
		result, flags := performArithmetic(isa.OpNeg, a, 0)
		m.dp.flags = flags
		m.dp.latchReg(instr.Arg1.Reg, result)

	case isa.OpCmp:
		a, b := m.dp.loadReg(instr.Arg1.Reg), m.dp.loadReg(instr.Arg2.Reg)
		_, flags := performArithmetic(isa.OpCmp, a, b)
		m.dp.flags = flags

	case isa.OpPush:
		sp := m.dp.loadReg(isa.SP)
		m.dp.writeCell(sp, m.dp.loadReg(instr.Arg1.Reg))
		m.dp.latchReg(isa.SP, sp-1)

	case isa.OpPop:
		sp := m.dp.loadReg(isa.SP) + 1
		m.dp.latchReg(isa.SP, sp)
		m.dp.latchReg(instr.Arg1.Reg, m.dp.readCell(sp))

	case isa.OpRead:
		ch, ok := m.dp.pickChar(instr.Arg2.Imm)
		if !ok {
			m.warnf("input exhausted during READ")
			return errInputExhausted
		}
		m.dp.latchReg(instr.Arg1.Reg, int32(ch))

	case isa.OpPrint:
		ch := m.dp.loadReg(instr.Arg1.Reg)
		m.dp.putChar(instr.Arg2.Imm, byte(ch))

	default:
		return fmt.Errorf("emulator: unimplemented opcode %s", instr.Op)
	}
	return nil
}
