package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestTick_ControlFlow(t *testing.T) {
	t.Run("nop", func(t *testing.T) {
		m := newMachine(t, 0x0000)
		run(t, m, 1)
		assert.Equal(t, uint16(0x202), m.ProgramCounter())
	})

	t.Run("jump", func(t *testing.T) {
		m := newMachine(t, 0x1ABC)
		run(t, m, 1)
		assert.Equal(t, uint16(0xABC), m.ProgramCounter())
	})

	t.Run("jump with offset", func(t *testing.T) {
		m := newMachine(t, 0x6010, 0xB300)
		run(t, m, 2)
		assert.Equal(t, uint16(0x310), m.ProgramCounter())
	})

	t.Run("call and return", func(t *testing.T) {
		m := newMachine(t,
			0x2206, // call $206
			0x0000,
			0x0000,
			0x00EE, // ret
		)
		run(t, m, 1)
		assert.Equal(t, uint16(0x206), m.ProgramCounter())
		assert.Equal(t, uint8(1), m.sp)
		assert.Equal(t, uint16(0x202), m.stack[0])

		run(t, m, 1)
		assert.Equal(t, uint16(0x202), m.ProgramCounter())
		assert.Equal(t, uint8(0), m.sp)
	})
}

func TestTick_StackFault(t *testing.T) {
	t.Run("overflow", func(t *testing.T) {
		m := newMachine(t, 0x2200) // call itself forever
		run(t, m, StackDepth)
		assert.Equal(t, uint8(StackDepth), m.sp)

		err := m.Tick()
		assert.True(t, errors.Is(err, ErrStackFault))
		assert.Equal(t, uint8(StackDepth), m.sp)

		var fault *StackFault
		assert.True(t, errors.As(err, &fault))
		assert.True(t, fault.Overflow)
		assert.Equal(t, uint16(0x200), fault.Address)
	})

	t.Run("underflow", func(t *testing.T) {
		m := newMachine(t, 0x00EE)
		err := m.Tick()
		assert.True(t, errors.Is(err, ErrStackFault))
		assert.ErrorContains(t, err, "underflow")
		assert.Equal(t, uint8(0), m.sp)
	})
}

func TestTick_Skips(t *testing.T) {
	tests := []struct {
		name    string
		program []uint16
		skipped bool
	}{
		{"3XNN equal", []uint16{0x6142, 0x3142}, true},
		{"3XNN not equal", []uint16{0x6142, 0x3143}, false},
		{"4XNN not equal", []uint16{0x6142, 0x4143}, true},
		{"4XNN equal", []uint16{0x6142, 0x4142}, false},
		{"5XY0 equal", []uint16{0x6107, 0x6207, 0x5120}, true},
		{"5XY0 not equal", []uint16{0x6107, 0x6208, 0x5120}, false},
		{"9XY0 not equal", []uint16{0x6107, 0x6208, 0x9120}, true},
		{"9XY0 equal", []uint16{0x6107, 0x6207, 0x9120}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMachine(t, tt.program...)
			run(t, m, len(tt.program))

			next := uint16(ProgramStart + 2*len(tt.program))
			if tt.skipped {
				next += 2
			}
			assert.Equal(t, next, m.ProgramCounter())
		})
	}
}

func TestTick_Registers(t *testing.T) {
	tests := []struct {
		name    string
		program []uint16
		x       int
		want    byte
		flag    byte
	}{
		{"6XNN load", []uint16{0x6A5E}, 0xA, 0x5E, 0},
		{"7XNN add wraps without flag", []uint16{0x63FF, 0x7302}, 3, 0x01, 0},
		{"8XY0 copy", []uint16{0x6211, 0x8120}, 1, 0x11, 0},
		{"8XY1 or", []uint16{0x61F0, 0x620F, 0x8121}, 1, 0xFF, 0},
		{"8XY2 and", []uint16{0x61F3, 0x623F, 0x8122}, 1, 0x33, 0},
		{"8XY3 xor", []uint16{0x61FF, 0x620F, 0x8123}, 1, 0xF0, 0},
		{"8XY4 overflow", []uint16{0x61FA, 0x620A, 0x8124}, 1, 4, 1},
		{"8XY4 no overflow", []uint16{0x6101, 0x6202, 0x8124}, 1, 3, 0},
		{"8XY5 borrow", []uint16{0x6105, 0x620A, 0x8125}, 1, 251, 0},
		{"8XY5 no borrow", []uint16{0x610A, 0x620A, 0x8125}, 1, 0, 1},
		{"8XY6 shift right", []uint16{0x6105, 0x8106}, 1, 0x02, 1},
		{"8XY6 ignores Y", []uint16{0x6104, 0x62FF, 0x8126}, 1, 0x02, 0},
		{"8XY7 borrow", []uint16{0x610A, 0x6205, 0x8127}, 1, 251, 0},
		{"8XY7 no borrow", []uint16{0x6105, 0x620A, 0x8127}, 1, 5, 1},
		{"8XYE shift left", []uint16{0x6181, 0x810E}, 1, 0x02, 1},
		{"8XYE no carry", []uint16{0x6141, 0x810E}, 1, 0x82, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMachine(t, tt.program...)
			run(t, m, len(tt.program))

			assert.Equal(t, tt.want, m.Register(tt.x))
			assert.Equal(t, tt.flag, m.Register(flagRegister))
		})
	}
}

func TestTick_FlagRegisterAsOperand(t *testing.T) {
	// The flag write happens last, it overwrites the result stored in VF.
	m := newMachine(t, 0x6FFF, 0x6101, 0x8F14)
	run(t, m, 3)
	assert.Equal(t, byte(1), m.Register(flagRegister))

	// 7XNN never touches the flag.
	m = newMachine(t, 0x6F07, 0x61FF, 0x7102)
	run(t, m, 3)
	assert.Equal(t, byte(7), m.Register(flagRegister))
}

func TestTick_Index(t *testing.T) {
	t.Run("ANNN", func(t *testing.T) {
		m := newMachine(t, 0xA123)
		run(t, m, 1)
		assert.Equal(t, uint16(0x123), m.IndexRegister())
	})

	t.Run("FX1E wraps", func(t *testing.T) {
		m := newMachine(t, 0x6110, 0xF11E)
		m.i = 0xFFF8
		run(t, m, 2)
		assert.Equal(t, uint16(0x0008), m.IndexRegister())
		assert.Equal(t, byte(0), m.Register(flagRegister))
	})

	t.Run("FX29 glyph address", func(t *testing.T) {
		m := newMachine(t, 0x650B, 0xF529)
		run(t, m, 2)
		assert.Equal(t, uint16(0x0B*5), m.IndexRegister())
	})
}

func TestTick_Random(t *testing.T) {
	m := New(WithRandom(func() byte { return 0xAB }))
	assert.NoError(t, m.Load([]byte{0xC3, 0x0F}))
	run(t, m, 1)
	assert.Equal(t, byte(0x0B), m.Register(3))
}

func TestTick_Seeded(t *testing.T) {
	program := []byte{0xC0, 0xFF, 0xC1, 0xFF, 0xC2, 0xFF}

	a := New(WithSeed(42))
	b := New(WithSeed(42))
	assert.NoError(t, a.Load(program))
	assert.NoError(t, b.Load(program))
	run(t, a, 3)
	run(t, b, 3)

	assert.Equal(t, a.v, b.v)
}

func TestTick_BCD(t *testing.T) {
	tests := []struct {
		value byte
		want  [3]byte
	}{
		{255, [3]byte{2, 5, 5}},
		{128, [3]byte{1, 2, 8}},
		{42, [3]byte{0, 4, 2}},
		{7, [3]byte{0, 0, 7}},
		{0, [3]byte{0, 0, 0}},
	}

	for _, tt := range tests {
		m := newMachine(t, 0x6000|uint16(tt.value), 0xA300, 0xF033)
		run(t, m, 3)
		assert.Equal(t, tt.want[:], m.memory[0x300:0x303])
		assert.Equal(t, uint16(0x300), m.IndexRegister())
	}
}

func TestTick_StoreLoadRegisters(t *testing.T) {
	m := newMachine(t,
		0x6001, 0x6102, 0x6203, 0x6304,
		0xA400, // ld I, $400
		0xF255, // ld [I], V2
		0xA401, // ld I, $401
		0xF365, // ld V3, [I]
	)
	run(t, m, 6)
	assert.Equal(t, []byte{1, 2, 3, 0}, m.memory[0x400:0x404])
	assert.Equal(t, uint16(0x400), m.IndexRegister())

	run(t, m, 2)
	assert.Equal(t, [4]byte{2, 3, 0, 0}, [4]byte(m.v[:4]))
	assert.Equal(t, uint16(0x401), m.IndexRegister())
}

func TestTick_Timers(t *testing.T) {
	m := newMachine(t, 0x6A3C, 0xFA15, 0xFA18, 0xFB07)
	run(t, m, 3)
	assert.Equal(t, byte(0x3C), m.DelayTimer())
	assert.Equal(t, byte(0x3C), m.SoundTimer())

	m.TickTimers()
	run(t, m, 1)
	assert.Equal(t, byte(0x3B), m.Register(0xB))
}

func TestTick_KeySkips(t *testing.T) {
	tests := []struct {
		name    string
		opcode  uint16
		pressed bool
		skipped bool
	}{
		{"EX9E pressed", 0xE59E, true, true},
		{"EX9E released", 0xE59E, false, false},
		{"EXA1 pressed", 0xE5A1, true, false},
		{"EXA1 released", 0xE5A1, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMachine(t, 0x650C, tt.opcode)
			assert.NoError(t, m.Keypress(0xC, tt.pressed))
			run(t, m, 2)

			next := uint16(0x204)
			if tt.skipped {
				next += 2
			}
			assert.Equal(t, next, m.ProgramCounter())
		})
	}

	t.Run("key index out of range", func(t *testing.T) {
		m := newMachine(t, 0x6510, 0xE59E)
		run(t, m, 1)
		err := m.Tick()
		assert.True(t, errors.Is(err, ErrMemoryFault))

		var fault *MemoryFault
		assert.True(t, errors.As(err, &fault))
		assert.Equal(t, RegionKeypad, fault.Region)
		assert.Equal(t, 0x10, fault.Address)
	})
}

func TestTick_WaitForKey(t *testing.T) {
	m := newMachine(t, 0xF30A, 0x0000)

	for range 10 {
		run(t, m, 1)
		assert.Equal(t, uint16(ProgramStart), m.ProgramCounter())
	}

	assert.NoError(t, m.Keypress(0x9, true))
	assert.NoError(t, m.Keypress(0x4, true))
	run(t, m, 1)
	assert.Equal(t, uint16(0x202), m.ProgramCounter())
	assert.Equal(t, byte(0x4), m.Register(3))
}

func TestTick_MemoryFaults(t *testing.T) {
	tests := []struct {
		name    string
		program []uint16
		index   uint16
	}{
		{"BCD past end", []uint16{0xF033}, 0xFFE},
		{"store past end", []uint16{0xF155}, 0xFFF},
		{"load past end", []uint16{0xF265}, 0xFFE},
		{"sprite past end", []uint16{0xD002}, 0xFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMachine(t, tt.program...)
			m.i = tt.index
			before := m.state

			err := m.Tick()
			assert.True(t, errors.Is(err, ErrMemoryFault))

			// Nothing but the program counter may change.
			before.pc += 2
			assert.True(t, before == m.state)
		})
	}

	t.Run("fetch past end", func(t *testing.T) {
		m := newMachine(t, 0x1FFF)
		run(t, m, 1)
		err := m.Tick()
		assert.True(t, errors.Is(err, ErrMemoryFault))
		assert.Equal(t, uint16(0xFFF), m.ProgramCounter())
	})
}

func TestTick_InvalidOpcode(t *testing.T) {
	for _, opcode := range []uint16{0x0123, 0x00E1, 0x5121, 0x8128, 0x812F, 0x9121, 0xE19F, 0xF100, 0xF1FF} {
		m := newMachine(t, opcode)
		err := m.Tick()
		assert.True(t, errors.Is(err, ErrInvalidOpcode))

		var fault *InvalidOpcode
		assert.True(t, errors.As(err, &fault))
		assert.Equal(t, opcode, fault.Opcode)
		assert.Equal(t, uint16(ProgramStart), fault.Address)
	}
}

func TestTick_HaltedAfterFault(t *testing.T) {
	m := newMachine(t, 0xFFFF, 0x0000)
	err := m.Tick()
	assert.True(t, errors.Is(err, ErrInvalidOpcode))
	pc := m.ProgramCounter()

	err = m.Tick()
	assert.True(t, errors.Is(err, ErrHalted))
	assert.True(t, errors.Is(err, ErrInvalidOpcode))
	assert.Equal(t, pc, m.ProgramCounter())
}

func TestTick_ClearScreen(t *testing.T) {
	m := newMachine(t, 0xD005, 0x00E0)
	run(t, m, 1)
	assert.True(t, m.Display() != Display{})

	run(t, m, 1)
	assert.Equal(t, Display{}, m.Display())
}
