// Package disasm formats CHIP-8 instruction words as assembly text.
// Instructions are identified using the retrogolib CHIP-8 opcode table.
package disasm

import (
	"fmt"
	"io"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// opcodeSize is the size of CHIP-8 instructions in bytes.
const opcodeSize = 2

// Lookup returns the retrogolib instruction matching the opcode,
// or nil if the opcode is not a known instruction.
func Lookup(opcode uint16) *chip8.Instruction {
	firstNibble := (opcode & 0xF000) >> 12
	for _, op := range chip8.Opcodes[int(firstNibble)] {
		if op.Info.Mask&opcode == op.Info.Value {
			return op.Instruction
		}
	}
	return nil
}

// Instruction returns the assembly text of a single opcode.
// Unknown opcodes are returned as a data word and false.
func Instruction(opcode uint16) (string, bool) {
	ins := Lookup(opcode)
	if ins == nil {
		return fmt.Sprintf(".word $%04X", opcode), false
	}

	if params := formatInstruction(ins.Name, opcode); params != "" {
		return fmt.Sprintf("%s %s", ins.Name, params), true
	}
	return ins.Name, true
}

// Listing writes a linear disassembly of the ROM, as loaded at the given
// base address, one instruction word per line. A trailing odd byte is
// written as a data byte.
func Listing(w io.Writer, rom []byte, base uint16) error {
	for offset := 0; offset < len(rom); offset += opcodeSize {
		address := base + uint16(offset)

		if offset+1 >= len(rom) {
			if _, err := fmt.Fprintf(w, "$%04X  %02X       .byte $%02X\n", address, rom[offset], rom[offset]); err != nil {
				return fmt.Errorf("writing data byte: %w", err)
			}
			break
		}

		opcode := uint16(rom[offset])<<8 | uint16(rom[offset+1])
		text, _ := Instruction(opcode)
		if _, err := fmt.Fprintf(w, "$%04X  %02X %02X    %s\n", address, rom[offset], rom[offset+1], text); err != nil {
			return fmt.Errorf("writing instruction: %w", err)
		}
	}
	return nil
}
