package ocho

import "crypto/rand"

// execute performs exactly one instruction's semantics against the machine
// state. Dispatch is on the leading nibble first, then on the discriminating
// trailing bits for the 0, 8, E and F families. Words that match no pattern
// return ErrOpCodeUnknown carrying the raw word.
func (m *Machine) execute(opCode uint16) error {
	x := (opCode & 0x0F00) >> 8
	y := (opCode & 0x00F0) >> 4
	n := byte(opCode & 0x000F)
	kk := byte(opCode & 0x00FF)
	nnn := opCode & 0x0FFF

	switch opCode & 0xF000 {
	case 0x0000:
		switch opCode {
		case 0x0000:
			// NOP :: Do nothing.

		case 0x00E0:
			// CLS :: Clear the display.
			m.clearScreen()

		case 0x00EE:
			// RET :: Return from a subroutine.
			if m.Sp == 0 {
				return ErrStackUnderflow
			}
			m.Sp--
			m.Pc = m.Stack[m.Sp]

		default:
			// SYS nnn was only meaningful on the original hardware and no
			// modern program relies on it; anything else here is a corrupt
			// or unsupported word.
			return ErrOpCodeUnknown{OpCode: opCode, Pc: m.Pc}
		}

	case 0x1000:
		// JP addr :: Jump to location nnn.
		m.Pc = nnn

	case 0x2000:
		// CALL addr :: Call subroutine at nnn.
		if m.Sp >= StackDepth {
			return ErrStackOverflow
		}
		m.Stack[m.Sp] = m.Pc
		m.Sp++

		m.Pc = nnn

	case 0x3000:
		// SE Vx, byte :: Skip next instruction if Vx = kk.
		if m.V[x] == kk {
			m.Pc += 2
		}

	case 0x4000:
		// SNE Vx, byte :: Skip next instruction if Vx != kk.
		if m.V[x] != kk {
			m.Pc += 2
		}

	case 0x5000:
		// SE Vx, Vy :: Skip next instruction if Vx = Vy.
		if n != 0 {
			return ErrOpCodeUnknown{OpCode: opCode, Pc: m.Pc}
		}
		if m.V[x] == m.V[y] {
			m.Pc += 2
		}

	case 0x6000:
		// LD Vx, byte :: Set Vx = kk.
		m.V[x] = kk

	case 0x7000:
		// ADD Vx, byte :: Set Vx = Vx + kk. Wraps, never touches VF.
		m.V[x] = m.V[x] + kk

	case 0x8000:
		// Inter-register operations

		switch n {
		case 0x0:
			// LD Vx, Vy :: Set Vx = Vy.
			m.V[x] = m.V[y]

		case 0x1:
			// OR Vx, Vy :: Set Vx = Vx OR Vy.
			m.V[x] |= m.V[y]

		case 0x2:
			// AND Vx, Vy :: Set Vx = Vx AND Vy.
			m.V[x] &= m.V[y]

		case 0x3:
			// XOR Vx, Vy :: Set Vx = Vx XOR Vy.
			m.V[x] ^= m.V[y]

		case 0x4:
			// ADD Vx, Vy :: Set Vx = Vx + Vy, set VF = carry.
			r := uint16(m.V[x]) + uint16(m.V[y])
			m.V[x] = byte(r & 0x00FF)
			m.V[0xF] = byte(r >> 8)

		case 0x5:
			// SUB Vx, Vy :: Set Vx = Vx - Vy, set VF = NOT borrow.
			carry := m.V[x] >= m.V[y]
			m.V[x] = m.V[x] - m.V[y]
			m.V[0xF] = bool2byte(carry)

		case 0x6:
			// SHR Vx :: Set Vx = Vx SHR 1, VF = the bit shifted out.
			carry := m.V[x] & 0b00000001
			m.V[x] = m.V[x] >> 1
			m.V[0xF] = carry

		case 0x7:
			// SUBN Vx, Vy :: Set Vx = Vy - Vx, set VF = NOT borrow.
			carry := m.V[y] >= m.V[x]
			m.V[x] = m.V[y] - m.V[x]
			m.V[0xF] = bool2byte(carry)

		case 0xE:
			// SHL Vx :: Set Vx = Vx SHL 1, VF = the bit shifted out.
			carry := (m.V[x] & 0b10000000) >> 7
			m.V[x] = m.V[x] << 1
			m.V[0xF] = carry

		default:
			return ErrOpCodeUnknown{OpCode: opCode, Pc: m.Pc}
		}

	case 0x9000:
		// SNE Vx, Vy :: Skip next instruction if Vx != Vy.
		if n != 0 {
			return ErrOpCodeUnknown{OpCode: opCode, Pc: m.Pc}
		}
		if m.V[x] != m.V[y] {
			m.Pc += 2
		}

	case 0xA000:
		// LD I, addr :: Set I = nnn.
		m.I = nnn

	case 0xB000:
		// JP V0, addr :: Jump to location nnn + V0.
		m.Pc = uint16(m.V[0]) + nnn

	case 0xC000:
		// RND Vx, byte :: Set Vx = random byte AND kk.
		buff := [1]byte{}
		if _, err := rand.Read(buff[:]); err != nil {
			return err
		}

		m.V[x] = buff[0] & kk

	case 0xD000:
		// DRW Vx, Vy, nibble :: Display n-byte sprite starting at memory
		// location I at (Vx, Vy), set VF = collision. The flag covers the
		// whole draw, not individual rows.
		collision, err := m.drawSprite(m.V[x], m.V[y], n)
		if err != nil {
			return err
		}
		m.V[0xF] = bool2byte(collision)

	case 0xE000:
		// Skip if ...

		switch kk {
		case 0x9E:
			// SKP Vx :: Skip next instruction if key with the value of Vx is pressed.
			if m.isKeyDown(m.V[x]) {
				m.Pc += 2
			}
		case 0xA1:
			// SKNP Vx :: Skip next instruction if key with the value of Vx is not pressed.
			if !m.isKeyDown(m.V[x]) {
				m.Pc += 2
			}
		default:
			return ErrOpCodeUnknown{OpCode: opCode, Pc: m.Pc}
		}

	case 0xF000:
		// other operations

		switch kk {
		case 0x07:
			// LD Vx, DT :: Set Vx = delay timer value.
			m.V[x] = m.Dt

		case 0x0A:
			// LD Vx, K :: Wait for a key press, store the value of the key in Vx.
			// Scans keys 0..F in ascending order. If none is down, the
			// program counter is rewound so the same instruction is fetched
			// again next cycle; the machine never blocks inside a Tick.
			pressed := false
			for k := byte(0); k < NumKeys; k++ {
				if m.Keys[k] {
					m.V[x] = k
					pressed = true
					break
				}
			}
			if !pressed {
				m.Pc -= 2
			}

		case 0x15:
			// LD DT, Vx :: Set delay timer = Vx.
			m.Dt = m.V[x]

		case 0x18:
			// LD ST, Vx :: Set sound timer = Vx.
			m.St = m.V[x]

		case 0x1E:
			// ADD I, Vx :: Set I = I + Vx, wrapping.
			m.I = m.I + uint16(m.V[x])

		case 0x29:
			// LD F, Vx :: Set I = location of sprite for digit Vx.
			m.I = uint16(m.V[x]) * 5

		case 0x33:
			// LD B, Vx :: Store BCD representation of Vx in memory locations I, I+1, and I+2.
			if int(m.I)+2 >= MemorySize {
				return ErrMemoryFault{Addr: m.I + 2, Pc: m.Pc}
			}
			v := m.V[x]
			m.Memory[m.I+0] = v / 100
			m.Memory[m.I+1] = (v / 10) % 10
			m.Memory[m.I+2] = v % 10

		case 0x55:
			// LD [I], Vx :: Store registers V0 through Vx in memory starting at location I.
			if int(m.I)+int(x) >= MemorySize {
				return ErrMemoryFault{Addr: m.I + x, Pc: m.Pc}
			}
			for i := uint16(0); i <= x; i++ {
				m.Memory[m.I+i] = m.V[i]
			}

		case 0x65:
			// LD Vx, [I] :: Read registers V0 through Vx from memory starting at location I.
			if int(m.I)+int(x) >= MemorySize {
				return ErrMemoryFault{Addr: m.I + x, Pc: m.Pc}
			}
			for i := uint16(0); i <= x; i++ {
				m.V[i] = m.Memory[m.I+i]
			}

		default:
			return ErrOpCodeUnknown{OpCode: opCode, Pc: m.Pc}
		}

	default:
		return ErrOpCodeUnknown{OpCode: opCode, Pc: m.Pc}
	}

	return nil
}
