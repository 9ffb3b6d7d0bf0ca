// Package chip8 implements the CHIP-8 interpreter core.
//
// # Machine Overview
//
// The Machine owns the complete interpreter state:
//   - 4KB of flat memory, the built-in font at 0x000-0x04F
//   - 16 general purpose 8-bit registers V0-VF, VF doubling as flag output
//   - a 16-bit index register I and a 16 level call stack
//   - a 64x32 monochrome display and a 16 key keypad
//   - a delay timer and a sound timer, both decremented at 60 Hz
//
// # Memory Layout
//
//	0x000-0x04F: Built-in hexadecimal font (16 glyphs, 5 bytes each)
//	0x050-0x1FF: Unused interpreter area
//	0x200-0xFFF: Program space (3584 bytes)
//
// # Execution Model
//
// The Machine performs no pacing and no I/O. The host calls Tick to execute
// exactly one instruction and TickTimers at a fixed 60 Hz rate, forwards key
// state with Keypress and reads the pixel buffer with Display:
//
//	m := chip8.New(chip8.WithBuzzer(beep))
//	if err := m.Load(rom); err != nil {
//		return fmt.Errorf("loading rom: %w", err)
//	}
//	for running {
//		if err := m.Tick(); err != nil {
//			return err
//		}
//	}
//
// The wait for key instruction FX0A does not block. When no key is pressed it
// rewinds the program counter so that the next Tick executes it again.
//
// # Faults
//
// Out of bounds memory or keypad access, call stack overflow or underflow and
// unknown opcodes are fatal. Tick returns them as *MemoryFault, *StackFault or
// *InvalidOpcode and the machine stays halted until Reset.
package chip8
