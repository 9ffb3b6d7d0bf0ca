package chip8

import (
	"fmt"
)

// instruction is a decoded opcode.
type instruction struct {
	opcode  uint16
	address uint16 // address the opcode was fetched from
}

func (ins instruction) family() uint16 { return ins.opcode >> 12 }
func (ins instruction) x() int         { return int(ins.opcode>>8) & 0xF }
func (ins instruction) y() int         { return int(ins.opcode>>4) & 0xF }
func (ins instruction) n() uint16      { return ins.opcode & 0x000F }
func (ins instruction) nn() byte       { return byte(ins.opcode) }
func (ins instruction) nnn() uint16    { return ins.opcode & 0x0FFF }

// handler executes all instructions of one opcode family.
type handler func(m *Machine, ins instruction) error

// handlers is indexed by the most significant nibble of the opcode.
var handlers = [16]handler{
	0x0: (*Machine).execSystem,
	0x1: (*Machine).execJump,
	0x2: (*Machine).execCall,
	0x3: (*Machine).execSkipEqualImmediate,
	0x4: (*Machine).execSkipNotEqualImmediate,
	0x5: (*Machine).execSkipEqualRegister,
	0x6: (*Machine).execLoadImmediate,
	0x7: (*Machine).execAddImmediate,
	0x8: (*Machine).execArithmetic,
	0x9: (*Machine).execSkipNotEqualRegister,
	0xA: (*Machine).execLoadIndex,
	0xB: (*Machine).execJumpOffset,
	0xC: (*Machine).execRandom,
	0xD: (*Machine).execDraw,
	0xE: (*Machine).execKeySkip,
	0xF: (*Machine).execMisc,
}

// Tick fetches, decodes and executes a single instruction.
// A returned error is fatal, the machine stays halted until Reset.
func (m *Machine) Tick() error {
	if m.fault != nil {
		return fmt.Errorf("%w: %w", ErrHalted, m.fault)
	}

	ins, err := m.fetch()
	if err == nil {
		err = handlers[ins.family()](m, ins)
	}
	if err != nil {
		m.fault = err
		return err
	}
	return nil
}

// fetch reads the big-endian opcode at the program counter and advances the
// program counter by 2.
func (m *Machine) fetch() (instruction, error) {
	m.current = m.pc
	opcode, err := m.Opcode(m.pc)
	if err != nil {
		return instruction{}, err
	}
	ins := instruction{
		opcode:  opcode,
		address: m.pc,
	}
	m.pc += 2
	return ins, nil
}

func (m *Machine) invalid(ins instruction) error {
	return &InvalidOpcode{
		Opcode:  ins.opcode,
		Address: ins.address,
	}
}

func (m *Machine) skipIf(cond bool) {
	if cond {
		m.pc += 2
	}
}

func (m *Machine) push(ins instruction) error {
	if m.sp >= StackDepth {
		return &StackFault{Overflow: true, Address: ins.address}
	}
	m.stack[m.sp] = m.pc
	m.sp++
	return nil
}

func (m *Machine) pop(ins instruction) (uint16, error) {
	if m.sp == 0 {
		return 0, &StackFault{Overflow: false, Address: ins.address}
	}
	m.sp--
	return m.stack[m.sp], nil
}

// execSystem handles 0000 (nop), 00E0 (cls) and 00EE (ret).
func (m *Machine) execSystem(ins instruction) error {
	switch ins.opcode {
	case 0x0000:
		return nil

	case 0x00E0:
		m.screen = Display{}
		return nil

	case 0x00EE:
		address, err := m.pop(ins)
		if err != nil {
			return err
		}
		m.pc = address
		return nil

	default:
		return m.invalid(ins)
	}
}

// execJump handles 1NNN.
func (m *Machine) execJump(ins instruction) error {
	m.pc = ins.nnn()
	return nil
}

// execCall handles 2NNN, the return address is the already advanced program counter.
func (m *Machine) execCall(ins instruction) error {
	if err := m.push(ins); err != nil {
		return err
	}
	m.pc = ins.nnn()
	return nil
}

// execSkipEqualImmediate handles 3XNN.
func (m *Machine) execSkipEqualImmediate(ins instruction) error {
	m.skipIf(m.v[ins.x()] == ins.nn())
	return nil
}

// execSkipNotEqualImmediate handles 4XNN.
func (m *Machine) execSkipNotEqualImmediate(ins instruction) error {
	m.skipIf(m.v[ins.x()] != ins.nn())
	return nil
}

// execSkipEqualRegister handles 5XY0.
func (m *Machine) execSkipEqualRegister(ins instruction) error {
	if ins.n() != 0 {
		return m.invalid(ins)
	}
	m.skipIf(m.v[ins.x()] == m.v[ins.y()])
	return nil
}

// execLoadImmediate handles 6XNN.
func (m *Machine) execLoadImmediate(ins instruction) error {
	m.v[ins.x()] = ins.nn()
	return nil
}

// execAddImmediate handles 7XNN, VF is not affected.
func (m *Machine) execAddImmediate(ins instruction) error {
	m.v[ins.x()] += ins.nn()
	return nil
}

// execArithmetic handles the 8XYN register to register operations.
// The flag is written after the result so that VF as destination ends up
// holding the flag.
func (m *Machine) execArithmetic(ins instruction) error {
	x, y := ins.x(), ins.y()
	vx, vy := m.v[x], m.v[y]

	switch ins.n() {
	case 0x0:
		m.v[x] = vy

	case 0x1:
		m.v[x] = vx | vy

	case 0x2:
		m.v[x] = vx & vy

	case 0x3:
		m.v[x] = vx ^ vy

	case 0x4:
		sum := uint16(vx) + uint16(vy)
		m.v[x] = byte(sum)
		m.v[flagRegister] = boolToByte(sum > 0xFF)

	case 0x5:
		m.v[x] = vx - vy
		m.v[flagRegister] = boolToByte(vx >= vy)

	case 0x6:
		m.v[x] = vx >> 1
		m.v[flagRegister] = vx & 0x01

	case 0x7:
		m.v[x] = vy - vx
		m.v[flagRegister] = boolToByte(vy >= vx)

	case 0xE:
		m.v[x] = vx << 1
		m.v[flagRegister] = vx >> 7

	default:
		return m.invalid(ins)
	}
	return nil
}

// execSkipNotEqualRegister handles 9XY0.
func (m *Machine) execSkipNotEqualRegister(ins instruction) error {
	if ins.n() != 0 {
		return m.invalid(ins)
	}
	m.skipIf(m.v[ins.x()] != m.v[ins.y()])
	return nil
}

// execLoadIndex handles ANNN.
func (m *Machine) execLoadIndex(ins instruction) error {
	m.i = ins.nnn()
	return nil
}

// execJumpOffset handles BNNN.
func (m *Machine) execJumpOffset(ins instruction) error {
	m.pc = uint16(m.v[0]) + ins.nnn()
	return nil
}

// execRandom handles CXNN.
func (m *Machine) execRandom(ins instruction) error {
	m.v[ins.x()] = m.random() & ins.nn()
	return nil
}

// execDraw handles DXYN.
func (m *Machine) execDraw(ins instruction) error {
	return m.drawSprite(m.v[ins.x()], m.v[ins.y()], int(ins.n()))
}

// execKeySkip handles EX9E and EXA1.
func (m *Machine) execKeySkip(ins instruction) error {
	var wantPressed bool
	switch ins.nn() {
	case 0x9E:
		wantPressed = true
	case 0xA1:
		wantPressed = false
	default:
		return m.invalid(ins)
	}

	key := int(m.v[ins.x()])
	if key >= KeyCount {
		return &MemoryFault{Region: RegionKeypad, Address: key, Length: 1}
	}
	m.skipIf(m.keys[key] == wantPressed)
	return nil
}

// execMisc handles the FXNN timer, keypad, index and memory transfer instructions.
func (m *Machine) execMisc(ins instruction) error {
	x := ins.x()

	switch ins.nn() {
	case 0x07:
		m.v[x] = m.delay

	case 0x0A:
		m.waitForKey(x)

	case 0x15:
		m.delay = m.v[x]

	case 0x18:
		m.sound = m.v[x]

	case 0x1E:
		m.i += uint16(m.v[x])

	case 0x29:
		m.i = uint16(m.v[x]) * glyphSize

	case 0x33:
		if err := checkMemory(m.i, 3); err != nil {
			return err
		}
		value := m.v[x]
		m.memory[m.i] = value / 100
		m.memory[m.i+1] = value / 10 % 10
		m.memory[m.i+2] = value % 10

	case 0x55:
		if err := checkMemory(m.i, x+1); err != nil {
			return err
		}
		copy(m.memory[m.i:], m.v[:x+1])

	case 0x65:
		if err := checkMemory(m.i, x+1); err != nil {
			return err
		}
		copy(m.v[:x+1], m.memory[m.i:])

	default:
		return m.invalid(ins)
	}
	return nil
}

// waitForKey stores the lowest pressed key in Vx. Without a pressed key the
// program counter is rewound so that the instruction executes again on the
// next tick.
func (m *Machine) waitForKey(x int) {
	for key, pressed := range m.keys {
		if pressed {
			m.v[x] = byte(key)
			return
		}
	}
	m.pc -= 2
}

func boolToByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
