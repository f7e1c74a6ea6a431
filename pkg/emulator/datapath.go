// Package emulator implements the tick-accurate machine spec.md §4.3/§4.4
// describes: a passive data path (registers, memory, ALU, port queues) driven
// by a control unit that runs the fetch-decode-execute cycle one instruction
// at a time.
package emulator

import "github.com/minilang/mlc/pkg/isa"

// Flags holds the three condition bits every arithmetic operation and CMP
// update. Branches consult only Zero and Neg; Carry is exposed for
// inspection but never drives control flow (spec.md §4.1).
type Flags struct {
	Zero  bool
	Neg   bool
	Carry bool
}

// portQueue is a FIFO byte queue backing one I/O port.
type portQueue struct {
	buf []byte
}

func (q *portQueue) push(b byte) {
	q.buf = append(q.buf, b)
}

// pop removes and returns the first byte in the queue. ok is false when the
// queue was already empty — the caller distinguishes this from popping an
// explicit zero byte, which is a normal, well-formed end-of-line marker.
func (q *portQueue) pop() (b byte, ok bool) {
	if len(q.buf) == 0 {
		return 0, false
	}
	b = q.buf[0]
	q.buf = q.buf[1:]
	return b, true
}

// DataPath is the passive half of the machine: it exposes register and
// memory access and arithmetic, but never advances on its own. The control
// unit (Machine) is solely responsible for sequencing.
type DataPath struct {
	regs    [isa.NumRegisters]int32
	memory  []isa.Instruction
	flags   Flags
	inputs  map[int32]*portQueue
	outputs map[int32]*portQueue
}

// newDataPath builds a data path over image, which must already be padded to
// its full deployment memory size (as isa.ReadCode guarantees). Per
// spec.md §4.3, every register starts at zero except sp, which starts at
// the last valid cell — derived from the image's own length, so a
// --mem-size other than isa.DefaultMemSize still initialises sp correctly.
func newDataPath(image []isa.Instruction) *DataPath {
	dp := &DataPath{
		memory:  image,
		inputs:  make(map[int32]*portQueue),
		outputs: make(map[int32]*portQueue),
	}
	dp.regs[isa.SP] = int32(len(image)) - 1
	return dp
}

// latchReg writes v into register r — the data path's only register-write
// primitive.
func (dp *DataPath) latchReg(r isa.Reg, v int32) {
	dp.regs[r] = v
}

// loadReg reads register r.
func (dp *DataPath) loadReg(r isa.Reg) int32 {
	return dp.regs[r]
}

// readCell reads the cell at addr as a data value. Data cells are stored as
// pseudo-JUMP instructions carrying the value in Arg1 (the same
// representation pkg/codegen's resolve pass produces for the data section),
// so reading one back out is just unwrapping that operand.
func (dp *DataPath) readCell(addr int32) int32 {
	cell := dp.memory[addr]
	if cell.Arg1 == nil {
		return 0
	}
	return cell.Arg1.Imm
}

// writeCell overwrites the cell at addr with a new data value, preserving
// the one-word-per-cell image shape.
func (dp *DataPath) writeCell(addr int32, v int32) {
	dp.memory[addr] = isa.Instruction{Index: int(addr), Op: isa.OpJump, Arg1: isa.ImmOperand(v)}
}

// pickChar pops the first character of port's input queue. ok is false when
// the queue is empty — true input exhaustion, as opposed to reading a
// well-formed zero terminator byte actually present in the stream.
func (dp *DataPath) pickChar(port int32) (ch byte, ok bool) {
	q, exists := dp.inputs[port]
	if !exists {
		return 0, false
	}
	return q.pop()
}

// putChar appends ch to port's output queue.
func (dp *DataPath) putChar(port int32, ch byte) {
	q, exists := dp.outputs[port]
	if !exists {
		q = &portQueue{}
		dp.outputs[port] = q
	}
	q.push(ch)
}

// feedInput seeds port's input queue with data, in order.
func (dp *DataPath) feedInput(port int32, data []byte) {
	q := &portQueue{buf: append([]byte(nil), data...)}
	dp.inputs[port] = q
}

// outputString returns the accumulated bytes written to port as a string.
func (dp *DataPath) outputString(port int32) string {
	q, exists := dp.outputs[port]
	if !exists {
		return ""
	}
	return string(q.buf)
}

// performArithmetic is the ALU: it computes op(a, b) and the resulting flag
// set without touching any register — the caller latches the result and
// flags itself. spec.md §4.1: addition/subtraction wrap on 32-bit signed
// overflow and additionally set carry; every other operation only updates
// zero/neg.
func performArithmetic(op isa.Opcode, a, b int32) (result int32, flags Flags) {
	switch op {
	case isa.OpAdd, isa.OpAddLit:
		wide := int64(a) + int64(b)
		result = int32(wide)
		flags.Carry = wide != int64(result)
	case isa.OpSub, isa.OpCmp:
		wide := int64(a) - int64(b)
		result = int32(wide)
		flags.Carry = wide != int64(result)
	case isa.OpMul:
		result = a * b
	case isa.OpDiv:
		result = a / b // truncates toward zero, per spec.md §9's open question
	case isa.OpAnd:
		result = a & b
	case isa.OpOr:
		result = a | b
	case isa.OpXor:
		result = a ^ b
	case isa.OpShl:
		result = a << uint(b&31)
	case isa.OpShr:
		result = a >> uint(b&31)
	case isa.OpNeg:
		result = -a
	case isa.OpInc:
		result = a + 1
	case isa.OpDec:
		result = a - 1
	default:
		result = a
	}
	flags.Zero = result == 0
	flags.Neg = result < 0
	return result, flags
}
