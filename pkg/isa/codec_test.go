package isa

import (
	"reflect"
	"testing"
)

func TestReadCodeWriteCodeRoundTrip(t *testing.T) {
	program := []Instruction{
		{Index: 0, Op: OpLDLit, Arg1: RegOperand(R9), Arg2: ImmOperand(42)},
		{Index: 1, Op: OpPush, Arg1: RegOperand(R9)},
		{Index: 2, Op: OpJump, Arg1: ImmOperand(0)},
		{Index: 3, Op: OpHalt},
	}

	data, err := WriteCode(program)
	if err != nil {
		t.Fatalf("WriteCode: %v", err)
	}

	image, err := ReadCode(data, 0)
	if err != nil {
		t.Fatalf("ReadCode: %v", err)
	}

	if len(image) != DefaultMemSize {
		t.Fatalf("expected image of length %d, got %d", DefaultMemSize, len(image))
	}

	for _, want := range program {
		got := image[want.Index]
		if got.Op != want.Op {
			t.Errorf("index %d: opcode = %s, want %s", want.Index, got.Op, want.Op)
		}
	}

	for i := len(program); i < DefaultMemSize; i++ {
		if !reflect.DeepEqual(image[i], PaddingInstruction(i)) {
			t.Fatalf("index %d: expected padding instruction, got %+v", i, image[i])
		}
	}
}

func TestReadCodeRespectsCustomMemSize(t *testing.T) {
	program := []Instruction{
		{Index: 0, Op: OpLDLit, Arg1: RegOperand(R1), Arg2: ImmOperand(7)},
		{Index: 1, Op: OpHalt},
	}

	data, err := WriteCode(program)
	if err != nil {
		t.Fatalf("WriteCode: %v", err)
	}

	image, err := ReadCode(data, 64)
	if err != nil {
		t.Fatalf("ReadCode: %v", err)
	}
	if len(image) != 64 {
		t.Fatalf("expected image of length 64, got %d", len(image))
	}

	if _, err := ReadCode([]byte(`[{"index":100,"opcode":"HALT"}]`), 64); err == nil {
		t.Fatal("expected error for index out of range of the custom mem size")
	}
}

func TestOpcodeRoundTrip(t *testing.T) {
	for op := OpHalt; op <= OpPrint; op++ {
		name := op.String()
		parsed, err := ParseOpcode(name)
		if err != nil {
			t.Fatalf("ParseOpcode(%q): %v", name, err)
		}
		if parsed != op {
			t.Errorf("ParseOpcode(%q) = %v, want %v", name, parsed, op)
		}
	}
}

func TestRegRoundTrip(t *testing.T) {
	for r := R0; r <= SP; r++ {
		name := r.String()
		parsed, err := ParseReg(name)
		if err != nil {
			t.Fatalf("ParseReg(%q): %v", name, err)
		}
		if parsed != r {
			t.Errorf("ParseReg(%q) = %v, want %v", name, parsed, r)
		}
	}
}

func TestReadCodeRejectsOutOfRangeIndex(t *testing.T) {
	data := []byte(`[{"index":99999,"opcode":"HALT"}]`)
	if _, err := ReadCode(data, 0); err == nil {
		t.Fatal("expected error for out-of-range index")
	}
}
