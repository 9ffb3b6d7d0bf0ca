package chip8

// spriteWidth is the fixed width of a sprite row in pixels.
const spriteWidth = 8

// drawSprite XORs a sprite of height rows read from memory at I onto the
// display at the given origin. Pixels that fall off an edge wrap around to the
// opposite edge. VF is set to 1 if any lit pixel was turned off.
func (m *Machine) drawSprite(originX, originY byte, height int) error {
	if err := checkMemory(m.i, height); err != nil {
		return err
	}

	collision := false
	for row := range height {
		data := m.memory[int(m.i)+row]
		y := (int(originY) + row) % DisplayHeight

		for col := range spriteWidth {
			if data&(0x80>>col) == 0 {
				continue
			}
			x := (int(originX) + col) % DisplayWidth
			idx := y*DisplayWidth + x

			if m.screen[idx] {
				collision = true
			}
			m.screen[idx] = !m.screen[idx]
		}
	}

	m.v[flagRegister] = boolToByte(collision)
	return nil
}
