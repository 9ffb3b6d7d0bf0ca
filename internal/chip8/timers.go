package chip8

// TickTimers decrements the delay and sound timers by one if they are not
// zero yet. It is meant to be called at 60 Hz independently of the
// instruction rate. The buzzer is signaled when the sound timer expires.
func (m *Machine) TickTimers() {
	if m.delay > 0 {
		m.delay--
	}

	if m.sound > 0 {
		if m.sound == 1 && m.buzzer != nil {
			m.buzzer()
		}
		m.sound--
	}
}
