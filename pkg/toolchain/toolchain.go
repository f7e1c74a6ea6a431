// Package toolchain wires the four pipeline stages — lex, parse, generate,
// emulate — into the two operations cmd/translate and cmd/emulate expose,
// and that cmd/debug steps through one instruction at a time.
package toolchain

import (
	"fmt"
	"io"

	"github.com/minilang/mlc/pkg/codegen"
	"github.com/minilang/mlc/pkg/isa"
	"github.com/minilang/mlc/pkg/emulator"
	"github.com/minilang/mlc/pkg/parser"
)

// Translate lowers source text into the resolved, sparse instruction list
// pkg/isa.WriteCode serialises — only the cells the generator actually
// produced, not yet padded to memSize. memSize <= 0 selects
// isa.DefaultMemSize; it governs only the data-section bounds check here,
// since LoadImage performs the actual padding.
func Translate(source string, memSize int) ([]isa.Instruction, error) {
	root, err := parser.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	code, err := codegen.GenerateSized(root, memSize)
	if err != nil {
		return nil, fmt.Errorf("generation error: %w", err)
	}
	return code, nil
}

// LoadImage serialises a sparse instruction list and reads it back, which is
// how the generator's output becomes the memSize-padded image the emulator
// requires — the same round trip an image file goes through on disk.
// memSize <= 0 selects isa.DefaultMemSize.
func LoadImage(code []isa.Instruction, memSize int) ([]isa.Instruction, error) {
	data, err := isa.WriteCode(code)
	if err != nil {
		return nil, fmt.Errorf("encoding error: %w", err)
	}
	return isa.ReadCode(data, memSize)
}

// Emulate runs image to termination against input on port 0, returning the
// accumulated port-0 output and the two counters cmd/emulate reports.
func Emulate(image []isa.Instruction, input []byte, limit uint64, warnings io.Writer) (emulator.Result, error) {
	m := emulator.NewMachine(image, input, limit, warnings)
	return m.Run()
}
