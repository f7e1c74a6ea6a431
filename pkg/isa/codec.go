package isa

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON renders an Opcode as its mnemonic, so a serialised instruction
// reads as {"index":3,"opcode":"JUMP","arg1":{"imm":0}} rather than a bare
// integer tag.
func (op Opcode) MarshalJSON() ([]byte, error) {
	return json.Marshal(op.String())
}

// UnmarshalJSON resolves a mnemonic back into its Opcode.
func (op *Opcode) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseOpcode(name)
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}

// operandWire is the on-disk shape of an Operand: exactly one of Reg, Imm,
// Label, DataRef is present, matching which OperandKind it carries.
type operandWire struct {
	Reg     string `json:"reg,omitempty"`
	Imm     *int32 `json:"imm,omitempty"`
	Label   string `json:"label,omitempty"`
	DataRef *int32 `json:"dataref,omitempty"`
}

// MarshalJSON renders an Operand as whichever single field its kind carries.
func (o *Operand) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var w operandWire
	switch o.Kind {
	case OperandRegister:
		w.Reg = o.Reg.String()
	case OperandImmediate:
		v := o.Imm
		w.Imm = &v
	case OperandLabel:
		w.Label = o.Label
	case OperandDataRef:
		v := o.Imm
		w.DataRef = &v
	}
	return json.Marshal(w)
}

// UnmarshalJSON reconstructs an Operand from whichever single field is
// present on the wire.
func (o *Operand) UnmarshalJSON(data []byte) error {
	var w operandWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch {
	case w.Reg != "":
		r, err := ParseReg(w.Reg)
		if err != nil {
			return err
		}
		o.Kind = OperandRegister
		o.Reg = r
	case w.Imm != nil:
		o.Kind = OperandImmediate
		o.Imm = *w.Imm
	case w.Label != "":
		o.Kind = OperandLabel
		o.Label = w.Label
	case w.DataRef != nil:
		o.Kind = OperandDataRef
		o.Imm = *w.DataRef
	default:
		o.Kind = OperandNone
	}
	return nil
}

// WriteCode serialises a program's instructions to the textual record
// format: a JSON array of {index, opcode, arg1, arg2} objects, stable field
// order, one record per populated instruction. Trailing padding cells are
// not written; ReadCode reconstructs them.
func WriteCode(program []Instruction) ([]byte, error) {
	return json.MarshalIndent(program, "", "  ")
}

// ReadCode parses the textual record format produced by WriteCode and
// returns a full memSize-length image, padding every cell the records don't
// cover with PaddingInstruction. memSize <= 0 selects DefaultMemSize.
func ReadCode(data []byte, memSize int) ([]Instruction, error) {
	if memSize <= 0 {
		memSize = DefaultMemSize
	}

	var records []Instruction
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("isa: malformed instruction record stream: %w", err)
	}

	image := make([]Instruction, memSize)
	for i := range image {
		image[i] = PaddingInstruction(i)
	}

	for _, rec := range records {
		if rec.Index < 0 || rec.Index >= memSize {
			return nil, fmt.Errorf("isa: instruction index %d out of range [0,%d)", rec.Index, memSize)
		}
		image[rec.Index] = rec
	}

	return image, nil
}
