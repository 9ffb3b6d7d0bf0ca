package chip8

import (
	"math/rand/v2"
)

// Machine dimensions.
const (
	// MemorySize is the size of the flat address space.
	MemorySize = 4096
	// ProgramStart is the address ROMs are loaded to and execution starts at.
	ProgramStart = 0x200
	// MaxROMSize is the largest ROM that fits between ProgramStart and the end of memory.
	MaxROMSize = MemorySize - ProgramStart

	// RegisterCount is the number of V registers, VF included.
	RegisterCount = 16
	// StackDepth is the maximum nesting of subroutine calls.
	StackDepth = 16
	// KeyCount is the number of keys of the hexadecimal keypad.
	KeyCount = 16

	// DisplayWidth is the horizontal display resolution in pixels.
	DisplayWidth = 64
	// DisplayHeight is the vertical display resolution in pixels.
	DisplayHeight = 32
)

// flagRegister is VF, written by arithmetic, shift and draw instructions.
const flagRegister = 0xF

// Display is a row-major 64x32 pixel buffer, true is a lit pixel.
type Display [DisplayWidth * DisplayHeight]bool

// Pixel returns the state of the pixel at the given coordinates.
// Coordinates wrap around the display edges.
func (d *Display) Pixel(x, y int) bool {
	x = ((x % DisplayWidth) + DisplayWidth) % DisplayWidth
	y = ((y % DisplayHeight) + DisplayHeight) % DisplayHeight
	return d[y*DisplayWidth+x]
}

// state contains everything a program can observe or change.
// It is kept comparable so that a reset machine can be compared against a fresh one.
type state struct {
	pc     uint16
	memory [MemorySize]byte
	v      [RegisterCount]byte
	i      uint16
	sp     uint8
	stack  [StackDepth]uint16
	keys   [KeyCount]bool
	delay  byte
	sound  byte
	screen Display
}

// Machine is a CHIP-8 interpreter. It is not safe for concurrent use.
type Machine struct {
	state

	loaded  bool
	fault   error
	current uint16 // address of the instruction executed last

	buzzer func()
	random func() byte
}

// Option configures a Machine.
type Option func(*Machine)

// WithBuzzer sets the function that is called when the sound timer expires.
func WithBuzzer(fn func()) Option {
	return func(m *Machine) {
		m.buzzer = fn
	}
}

// WithRandom sets the source of random bytes used by the CXNN instruction.
func WithRandom(fn func() byte) Option {
	return func(m *Machine) {
		m.random = fn
	}
}

// WithSeed uses a deterministic random source seeded with the given value
// for the CXNN instruction.
func WithSeed(seed uint64) Option {
	rng := rand.New(rand.NewPCG(seed, seed))
	return WithRandom(func() byte {
		return byte(rng.UintN(256))
	})
}

// New returns a new machine in its initial state.
func New(opts ...Option) *Machine {
	m := &Machine{
		random: func() byte {
			return byte(rand.UintN(256))
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.Reset()
	return m
}

// Reset discards all program state and returns the machine to its initial
// state: cleared memory with the font at address 0, program counter at
// ProgramStart. A new ROM can be loaded afterwards.
func (m *Machine) Reset() {
	m.state = state{pc: ProgramStart}
	copy(m.memory[:], font[:])
	m.loaded = false
	m.fault = nil
	m.current = ProgramStart
}

// Load copies the ROM into memory at ProgramStart. It can only be called
// once between resets and must be called before the first Tick.
func (m *Machine) Load(rom []byte) error {
	if m.loaded {
		return ErrAlreadyLoaded
	}
	if len(rom) > MaxROMSize {
		return &MemoryFault{
			Region:  RegionMemory,
			Address: ProgramStart,
			Length:  len(rom),
		}
	}

	copy(m.memory[ProgramStart:], rom)
	m.loaded = true
	return nil
}

// Keypress sets the pressed state of a keypad key.
func (m *Machine) Keypress(key int, pressed bool) error {
	if key < 0 || key >= KeyCount {
		return &MemoryFault{Region: RegionKeypad, Address: key, Length: 1}
	}
	m.keys[key] = pressed
	return nil
}

// Display returns a copy of the current pixel buffer.
func (m *Machine) Display() Display {
	return m.screen
}

// ProgramCounter returns the address of the next instruction to execute.
func (m *Machine) ProgramCounter() uint16 {
	return m.pc
}

// Register returns the value of register Vn. It panics if n is not in 0-15.
func (m *Machine) Register(n int) byte {
	return m.v[n]
}

// IndexRegister returns the value of the I register.
func (m *Machine) IndexRegister() uint16 {
	return m.i
}

// DelayTimer returns the current delay timer value.
func (m *Machine) DelayTimer() byte {
	return m.delay
}

// SoundTimer returns the current sound timer value.
func (m *Machine) SoundTimer() byte {
	return m.sound
}

// InstructionAddress returns the address of the instruction that was
// executed last, or that faulted.
func (m *Machine) InstructionAddress() uint16 {
	return m.current
}

// Opcode returns the instruction word stored at the given address.
func (m *Machine) Opcode(address uint16) (uint16, error) {
	if err := checkMemory(address, 2); err != nil {
		return 0, err
	}
	return uint16(m.memory[address])<<8 | uint16(m.memory[address+1]), nil
}

// Halted returns the fault that stopped the machine, or nil if it is running.
func (m *Machine) Halted() error {
	return m.fault
}

// checkMemory verifies that length bytes starting at address are within memory.
func checkMemory(address uint16, length int) error {
	if int(address)+length > MemorySize {
		return &MemoryFault{
			Region:  RegionMemory,
			Address: int(address),
			Length:  length,
		}
	}
	return nil
}
