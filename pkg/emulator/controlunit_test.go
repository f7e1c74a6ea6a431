package emulator

import (
	"testing"

	"github.com/minilang/mlc/pkg/isa"
)

func padded(code []isa.Instruction) []isa.Instruction {
	image := make([]isa.Instruction, isa.DefaultMemSize)
	for i := range image {
		image[i] = isa.PaddingInstruction(i)
	}
	for _, instr := range code {
		image[instr.Index] = instr
	}
	return image
}

func TestRunHaltsImmediately(t *testing.T) {
	image := padded([]isa.Instruction{{Index: 0, Op: isa.OpHalt}})
	m := NewMachine(image, nil, 0, nil)
	result, err := m.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.InstrCounter != 1 {
		t.Fatalf("expected 1 instruction executed, got %d", result.InstrCounter)
	}
	if result.Ticks != 3 {
		t.Fatalf("expected 3 ticks (2 fetch + 1 dispatch) for a single HALT, got %d", result.Ticks)
	}
}

func TestRunLdLitPrint(t *testing.T) {
	code := []isa.Instruction{
		{Index: 0, Op: isa.OpLDLit, Arg1: isa.RegOperand(isa.R1), Arg2: isa.ImmOperand(65)},
		{Index: 1, Op: isa.OpPrint, Arg1: isa.RegOperand(isa.R1), Arg2: isa.ImmOperand(0)},
		{Index: 2, Op: isa.OpHalt},
	}
	m := NewMachine(padded(code), nil, 0, nil)
	result, err := m.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Output != "A" {
		t.Fatalf("expected output %q, got %q", "A", result.Output)
	}
}

func TestRunJumpSkipsDeadCode(t *testing.T) {
	code := []isa.Instruction{
		{Index: 0, Op: isa.OpJump, Arg1: isa.ImmOperand(2)},
		{Index: 1, Op: isa.OpLDLit, Arg1: isa.RegOperand(isa.R1), Arg2: isa.ImmOperand(99)}, // skipped
		{Index: 2, Op: isa.OpHalt},
	}
	m := NewMachine(padded(code), nil, 0, nil)
	if _, err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.dp.loadReg(isa.R1) != 0 {
		t.Fatalf("expected r1 to remain 0, jumped instruction executed")
	}
}

func TestRunConditionalBranch(t *testing.T) {
	code := []isa.Instruction{
		{Index: 0, Op: isa.OpLDLit, Arg1: isa.RegOperand(isa.R1), Arg2: isa.ImmOperand(5)},
		{Index: 1, Op: isa.OpLDLit, Arg1: isa.RegOperand(isa.R2), Arg2: isa.ImmOperand(5)},
		{Index: 2, Op: isa.OpCmp, Arg1: isa.RegOperand(isa.R1), Arg2: isa.RegOperand(isa.R2)},
		{Index: 3, Op: isa.OpJNE, Arg1: isa.ImmOperand(6)},
		{Index: 4, Op: isa.OpLDLit, Arg1: isa.RegOperand(isa.R3), Arg2: isa.ImmOperand(1)},
		{Index: 5, Op: isa.OpJump, Arg1: isa.ImmOperand(6)},
		{Index: 6, Op: isa.OpHalt},
	}
	m := NewMachine(padded(code), nil, 0, nil)
	if _, err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.dp.loadReg(isa.R3) != 1 {
		t.Fatalf("expected equal branch taken, r3 = %d", m.dp.loadReg(isa.R3))
	}
}

func TestRunDivisionByZeroErrors(t *testing.T) {
	code := []isa.Instruction{
		{Index: 0, Op: isa.OpLDLit, Arg1: isa.RegOperand(isa.R1), Arg2: isa.ImmOperand(1)},
		{Index: 1, Op: isa.OpLDLit, Arg1: isa.RegOperand(isa.R2), Arg2: isa.ImmOperand(0)},
		{Index: 2, Op: isa.OpDiv, Arg1: isa.RegOperand(isa.R1), Arg2: isa.RegOperand(isa.R2)},
		{Index: 3, Op: isa.OpHalt},
	}
	m := NewMachine(padded(code), nil, 0, nil)
	if _, err := m.Run(); err == nil {
		t.Fatal("expected a division-by-zero error")
	}
}

func TestRunInputExhaustionTerminatesCleanly(t *testing.T) {
	code := []isa.Instruction{
		{Index: 0, Op: isa.OpRead, Arg1: isa.RegOperand(isa.R1), Arg2: isa.ImmOperand(0)},
		{Index: 1, Op: isa.OpHalt},
	}
	m := NewMachine(padded(code), nil, 0, nil) // empty input
	result, err := m.Run()
	if err != nil {
		t.Fatalf("expected a clean termination, got error: %v", err)
	}
	if result.InstrCounter != 1 {
		t.Fatalf("expected exactly the READ to have executed, got %d instructions", result.InstrCounter)
	}
}

func TestRunInstructionLimitStopsCleanly(t *testing.T) {
	code := []isa.Instruction{
		{Index: 0, Op: isa.OpJump, Arg1: isa.ImmOperand(0)}, // infinite loop
	}
	m := NewMachine(padded(code), nil, 5, nil)
	result, err := m.Run()
	if err != nil {
		t.Fatalf("expected a clean termination, got error: %v", err)
	}
	if result.InstrCounter != 5 {
		t.Fatalf("expected exactly the limit's worth of instructions, got %d", result.InstrCounter)
	}
}

func TestRunPushPopRoundTrip(t *testing.T) {
	code := []isa.Instruction{
		{Index: 0, Op: isa.OpLDLit, Arg1: isa.RegOperand(isa.R1), Arg2: isa.ImmOperand(42)},
		{Index: 1, Op: isa.OpPush, Arg1: isa.RegOperand(isa.R1)},
		{Index: 2, Op: isa.OpLDLit, Arg1: isa.RegOperand(isa.R1), Arg2: isa.ImmOperand(0)},
		{Index: 3, Op: isa.OpPop, Arg1: isa.RegOperand(isa.R2)},
		{Index: 4, Op: isa.OpHalt},
	}
	m := NewMachine(padded(code), nil, 0, nil)
	if _, err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.dp.loadReg(isa.R2) != 42 {
		t.Fatalf("expected r2 = 42 after push/pop round trip, got %d", m.dp.loadReg(isa.R2))
	}
	if m.dp.loadReg(isa.SP) != isa.DefaultMemSize-1 {
		t.Fatalf("expected sp back at its initial value after a balanced push/pop, got %d", m.dp.loadReg(isa.SP))
	}
}
