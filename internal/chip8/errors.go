package chip8

import (
	"errors"
	"fmt"
)

var (
	// ErrMemoryFault is matched by all *MemoryFault errors.
	ErrMemoryFault = errors.New("memory fault")
	// ErrStackFault is matched by all *StackFault errors.
	ErrStackFault = errors.New("stack fault")
	// ErrInvalidOpcode is matched by all *InvalidOpcode errors.
	ErrInvalidOpcode = errors.New("invalid opcode")
	// ErrAlreadyLoaded is returned when a ROM is loaded twice without a reset.
	ErrAlreadyLoaded = errors.New("rom already loaded")
	// ErrHalted is returned by Tick after a fatal fault until the machine is reset.
	ErrHalted = errors.New("machine halted")
)

// Region names the address space an out of bounds access targeted.
type Region string

// Addressable regions of the machine.
const (
	RegionMemory Region = "memory"
	RegionKeypad Region = "keypad"
)

// MemoryFault is an access outside of the memory or keypad bounds.
type MemoryFault struct {
	Region  Region
	Address int // offending address or key index
	Length  int // number of bytes accessed
}

func (e *MemoryFault) Error() string {
	if e.Region == RegionKeypad {
		return fmt.Sprintf("memory fault: key index %d out of range", e.Address)
	}
	return fmt.Sprintf("memory fault: access of %d bytes at $%04X exceeds memory size $%04X",
		e.Length, e.Address, MemorySize)
}

// Is reports whether target is ErrMemoryFault.
func (e *MemoryFault) Is(target error) bool {
	return target == ErrMemoryFault
}

// StackFault is a call stack overflow or underflow.
type StackFault struct {
	Overflow bool   // true for a push on a full stack, false for a pop on an empty one
	Address  uint16 // address of the faulting instruction
}

func (e *StackFault) Error() string {
	if e.Overflow {
		return fmt.Sprintf("stack fault: overflow at $%04X", e.Address)
	}
	return fmt.Sprintf("stack fault: underflow at $%04X", e.Address)
}

// Is reports whether target is ErrStackFault.
func (e *StackFault) Is(target error) bool {
	return target == ErrStackFault
}

// InvalidOpcode is an instruction word that does not decode to any
// supported instruction.
type InvalidOpcode struct {
	Opcode  uint16
	Address uint16 // address the opcode was fetched from
}

func (e *InvalidOpcode) Error() string {
	return fmt.Sprintf("invalid opcode $%04X at $%04X", e.Opcode, e.Address)
}

// Is reports whether target is ErrInvalidOpcode.
func (e *InvalidOpcode) Is(target error) bool {
	return target == ErrInvalidOpcode
}
