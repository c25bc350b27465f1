package ocho

func (m *Machine) clearScreen() {
	m.screen = [ScreenWidth * ScreenHeight]bool{}
}

// drawSprite XORs an 8-pixel-wide, rows-tall sprite read from memory at I
// onto the framebuffer with its origin at (ox, oy). The most significant bit
// of each sprite byte is the leftmost pixel. Coordinates wrap around both
// screen axes. Returns whether any lit pixel was turned off.
func (m *Machine) drawSprite(ox, oy, rows byte) (bool, error) {
	collision := false

	for row := byte(0); row < rows; row++ {
		addr := m.I + uint16(row)
		if addr >= MemorySize {
			return collision, ErrMemoryFault{Addr: addr, Pc: m.Pc}
		}

		line := m.Memory[addr]
		py := (int(oy) + int(row)) % ScreenHeight

		for bit := 0; bit < 8; bit++ {
			if line&(0x80>>bit) == 0 {
				continue
			}

			px := (int(ox) + bit) % ScreenWidth
			t := py*ScreenWidth + px

			if m.screen[t] {
				collision = true
			}
			m.screen[t] = !m.screen[t]
		}
	}

	return collision, nil
}
