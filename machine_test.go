package ocho_test

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"

	"github.com/avaldes/ocho"
)

// run loads a program and executes n cycles, failing on any execution fault
func run(t *testing.T, m *ocho.Machine, program []byte, n int) {
	t.Helper()

	assert.NoError(t, m.Load(program))
	for i := 0; i < n; i++ {
		assert.NoError(t, m.Tick())
	}
}

var fontSet = []byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

func TestFontSetLocation(t *testing.T) {
	m := ocho.NewMachine()

	for c := 0; c < 16; c++ {
		for i := 0; i < 5; i++ {
			assert.Equal(t, fontSet[c*5+i], m.Memory[c*5+i])
		}
	}

	// the layout must survive a reset
	m.Memory[0] = 0xAB
	m.Reset()
	for c := 0; c < 16; c++ {
		for i := 0; i < 5; i++ {
			assert.Equal(t, fontSet[c*5+i], m.Memory[c*5+i])
		}
	}
}

func TestAddImmediateWrapsWithoutFlag(t *testing.T) {
	m := ocho.NewMachine()

	run(t, m, []byte{
		// VF = 1 so we can tell the add never touches it
		0x6F, 0x01,
		// V0 = 255
		0x60, 0xFF,
		// V0 += 2, wraps to 1
		0x70, 0x02,
	}, 3)

	assert.Equal(t, byte(1), m.V[0])
	assert.Equal(t, byte(1), m.V[0xF])
}

func TestAddRegistersCarry(t *testing.T) {
	tests := []struct {
		a, b  byte
		sum   byte
		carry byte
	}{
		{0, 255, 255, 0},
		{255, 1, 0, 1},
		{128, 128, 0, 1},
	}

	for _, tt := range tests {
		m := ocho.NewMachine()
		m.V[0] = tt.a
		m.V[1] = tt.b

		run(t, m, []byte{0x80, 0x14}, 1)

		assert.Equal(t, tt.sum, m.V[0])
		assert.Equal(t, tt.carry, m.V[0xF])
	}
}

func TestSubRegistersBorrow(t *testing.T) {
	tests := []struct {
		a, b byte
		diff byte
		flag byte
	}{
		{0, 255, 1, 0},
		{255, 1, 254, 1},
		{128, 128, 0, 1},
	}

	for _, tt := range tests {
		m := ocho.NewMachine()
		m.V[0] = tt.a
		m.V[1] = tt.b

		run(t, m, []byte{0x80, 0x15}, 1)

		assert.Equal(t, tt.diff, m.V[0])
		assert.Equal(t, tt.flag, m.V[0xF])
	}
}

func TestSubnRegistersBorrow(t *testing.T) {
	tests := []struct {
		a, b byte
		diff byte
		flag byte
	}{
		{255, 0, 1, 0},
		{1, 255, 254, 1},
		{128, 128, 0, 1},
	}

	for _, tt := range tests {
		m := ocho.NewMachine()
		m.V[0] = tt.a
		m.V[1] = tt.b

		run(t, m, []byte{0x80, 0x17}, 1)

		assert.Equal(t, tt.diff, m.V[0])
		assert.Equal(t, tt.flag, m.V[0xF])
	}
}

func TestShiftRightCapturesPreShiftBit(t *testing.T) {
	m := ocho.NewMachine()
	m.V[0] = 0b10000001

	run(t, m, []byte{0x80, 0x06}, 1)

	assert.Equal(t, byte(0b01000000), m.V[0])
	assert.Equal(t, byte(1), m.V[0xF])

	m = ocho.NewMachine()
	m.V[0] = 0b00000010

	run(t, m, []byte{0x80, 0x06}, 1)

	assert.Equal(t, byte(0b00000001), m.V[0])
	assert.Equal(t, byte(0), m.V[0xF])
}

func TestShiftLeftCapturesPreShiftBit(t *testing.T) {
	m := ocho.NewMachine()
	m.V[0] = 0b10000001

	run(t, m, []byte{0x80, 0x0E}, 1)

	assert.Equal(t, byte(0b00000010), m.V[0])
	assert.Equal(t, byte(1), m.V[0xF])

	m = ocho.NewMachine()
	m.V[0] = 0b01000000

	run(t, m, []byte{0x80, 0x0E}, 1)

	assert.Equal(t, byte(0b10000000), m.V[0])
	assert.Equal(t, byte(0), m.V[0xF])
}

// TestDrawCollision draws the same sprite twice at the same spot: the second
// draw unsets every pixel of the first, sets the collision flag and leaves
// the framebuffer empty.
func TestDrawCollision(t *testing.T) {
	m := ocho.NewMachine()

	// I = 0 points at the glyph for 0; draw it twice at (V0, V0) = (0, 0)
	run(t, m, []byte{0xA0, 0x00, 0xD0, 0x05}, 2)

	assert.Equal(t, byte(0), m.V[0xF])

	lit := 0
	for _, px := range m.Display() {
		if px {
			lit++
		}
	}
	assert.True(t, lit > 0)

	m.Pc = 0x202
	assert.NoError(t, m.Tick())

	assert.Equal(t, byte(1), m.V[0xF])
	for _, px := range m.Display() {
		assert.False(t, px)
	}
}

// TestSpriteWrapsAroundScreen draws a one-row sprite at x=63: the leftmost
// sprite pixel lands on the last column and the rest wrap to the start of
// the same row.
func TestSpriteWrapsAroundScreen(t *testing.T) {
	m := ocho.NewMachine()

	// VA = 63, VB = 0, I = 0 (first font byte is 0xF0), draw 1 row
	run(t, m, []byte{0x6A, 0x3F, 0x6B, 0x00, 0xA0, 0x00, 0xDA, 0xB1}, 4)

	frame := m.Display()

	// 0xF0 lights 4 pixels: one at x=63 and three wrapped to x=0..2
	assert.True(t, frame[63])
	assert.True(t, frame[0])
	assert.True(t, frame[1])
	assert.True(t, frame[2])
	for x := 3; x < 63; x++ {
		assert.False(t, frame[x])
	}
	// nothing spilled into the next row
	for x := 0; x < ocho.ScreenWidth; x++ {
		assert.False(t, frame[ocho.ScreenWidth+x])
	}
}

func TestStackRoundTrip(t *testing.T) {
	m := ocho.NewMachine()

	run(t, m, []byte{
		// call the subroutine at 0x204
		0x22, 0x04,
		// filler, never executed
		0x00, 0x00,
		// return
		0x00, 0xEE,
	}, 1)

	assert.Equal(t, uint16(0x204), m.Pc)
	assert.Equal(t, byte(1), m.Sp)

	assert.NoError(t, m.Tick())

	// back at the instruction following the call
	assert.Equal(t, uint16(0x202), m.Pc)
	assert.Equal(t, byte(0), m.Sp)
}

// TestWaitForKey exercises the FX0A re-fetch idiom: with no key down the
// program counter rewinds so repeated ticks stay on the same instruction;
// once a key is pressed the lowest index wins and execution moves on.
func TestWaitForKey(t *testing.T) {
	m := ocho.NewMachine()
	m.V[1] = 0xEE

	assert.NoError(t, m.Load([]byte{0xF1, 0x0A}))

	for i := 0; i < 3; i++ {
		assert.NoError(t, m.Tick())
		assert.Equal(t, uint16(0x200), m.Pc)
		assert.Equal(t, byte(0xEE), m.V[1])
	}

	m.Keypress(0x7, true)
	m.Keypress(0x3, true)

	assert.NoError(t, m.Tick())

	assert.Equal(t, uint16(0x202), m.Pc)
	assert.Equal(t, byte(0x3), m.V[1])
}

func TestSkipIfKey(t *testing.T) {
	m := ocho.NewMachine()
	m.V[0] = 0x5

	// SKP V0 with the key up: no skip
	run(t, m, []byte{0xE0, 0x9E, 0xE0, 0xA1}, 1)
	assert.Equal(t, uint16(0x202), m.Pc)

	// SKNP V0 with the key up: skip
	assert.NoError(t, m.Tick())
	assert.Equal(t, uint16(0x206), m.Pc)

	m = ocho.NewMachine()
	m.V[0] = 0x5
	m.Keypress(0x5, true)

	// SKP V0 with the key down: skip
	run(t, m, []byte{0xE0, 0x9E}, 1)
	assert.Equal(t, uint16(0x204), m.Pc)
}

func TestSkipInstructions(t *testing.T) {
	tests := []struct {
		name   string
		opCode []byte
		v0, v1 byte
		skips  bool
	}{
		{"SE Vx byte taken", []byte{0x30, 0x42}, 0x42, 0, true},
		{"SE Vx byte not taken", []byte{0x30, 0x42}, 0x41, 0, false},
		{"SNE Vx byte taken", []byte{0x40, 0x42}, 0x41, 0, true},
		{"SNE Vx byte not taken", []byte{0x40, 0x42}, 0x42, 0, false},
		{"SE Vx Vy taken", []byte{0x50, 0x10}, 0x13, 0x13, true},
		{"SE Vx Vy not taken", []byte{0x50, 0x10}, 0x13, 0x14, false},
		{"SNE Vx Vy taken", []byte{0x90, 0x10}, 0x13, 0x14, true},
		{"SNE Vx Vy not taken", []byte{0x90, 0x10}, 0x13, 0x13, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ocho.NewMachine()
			m.V[0] = tt.v0
			m.V[1] = tt.v1

			run(t, m, tt.opCode, 1)

			want := uint16(0x202)
			if tt.skips {
				want = 0x204
			}
			assert.Equal(t, want, m.Pc)
		})
	}
}

func TestJumpWithOffset(t *testing.T) {
	m := ocho.NewMachine()
	m.V[0] = 0x04

	run(t, m, []byte{0xB3, 0x00}, 1)

	assert.Equal(t, uint16(0x304), m.Pc)
}

func TestRandomIsMasked(t *testing.T) {
	for i := 0; i < 32; i++ {
		m := ocho.NewMachine()
		m.V[0] = 0xFF

		run(t, m, []byte{0xC0, 0x0F}, 1)

		assert.Equal(t, byte(0), m.V[0]&0xF0)
	}
}

func TestBcd(t *testing.T) {
	m := ocho.NewMachine()

	run(t, m, []byte{
		// V0 = 254
		0x60, 0xFE,
		// I = 0x300
		0xA3, 0x00,
		// BCD of V0 into memory[I..I+2]
		0xF0, 0x33,
	}, 3)

	assert.Equal(t, byte(2), m.Memory[0x300])
	assert.Equal(t, byte(5), m.Memory[0x301])
	assert.Equal(t, byte(4), m.Memory[0x302])
}

func TestStoreAndLoadRegisterBlock(t *testing.T) {
	m := ocho.NewMachine()
	m.V[0] = 0x11
	m.V[1] = 0x22
	m.V[2] = 0x33

	run(t, m, []byte{
		// I = 0x300
		0xA3, 0x00,
		// store V0..V2
		0xF2, 0x55,
		// clobber the registers
		0x60, 0x00,
		0x61, 0x00,
		0x62, 0x00,
		// load V0..V2 back
		0xF2, 0x65,
	}, 6)

	assert.Equal(t, byte(0x11), m.V[0])
	assert.Equal(t, byte(0x22), m.V[1])
	assert.Equal(t, byte(0x33), m.V[2])
	assert.Equal(t, byte(0x11), m.Memory[0x300])
	assert.Equal(t, byte(0x22), m.Memory[0x301])
	assert.Equal(t, byte(0x33), m.Memory[0x302])
}

func TestFontGlyphAddress(t *testing.T) {
	m := ocho.NewMachine()
	m.V[0] = 0xA

	run(t, m, []byte{0xF0, 0x29}, 1)

	assert.Equal(t, uint16(50), m.I)
}

func TestIndexAddWraps(t *testing.T) {
	m := ocho.NewMachine()
	m.V[0] = 0x04
	m.I = 0xFFFE

	run(t, m, []byte{0xF0, 0x1E}, 1)

	assert.Equal(t, uint16(0x0002), m.I)
}

func TestDelayTimerReadWrite(t *testing.T) {
	m := ocho.NewMachine()
	m.V[0] = 42

	run(t, m, []byte{
		// DT = V0
		0xF0, 0x15,
		// V1 = DT
		0xF1, 0x07,
	}, 2)

	assert.Equal(t, byte(42), m.Dt)
	assert.Equal(t, byte(42), m.V[1])
	assert.True(t, m.IsDelayTimerActive())
}

func TestTimersNeverGoBelowZero(t *testing.T) {
	m := ocho.NewMachine()
	m.Dt = 2
	m.St = 1

	m.TickTimers()
	assert.Equal(t, byte(1), m.Dt)
	assert.Equal(t, byte(0), m.St)
	assert.True(t, m.IsDelayTimerActive())
	assert.False(t, m.IsSoundTimerActive())

	m.TickTimers()
	assert.Equal(t, byte(0), m.Dt)
	assert.Equal(t, byte(0), m.St)
	assert.False(t, m.IsDelayTimerActive())

	m.TickTimers()
	assert.Equal(t, byte(0), m.Dt)
	assert.Equal(t, byte(0), m.St)
}

func TestUnknownOpCode(t *testing.T) {
	m := ocho.NewMachine()
	assert.NoError(t, m.Load([]byte{0xFF, 0xFF}))

	err := m.Tick()
	assert.Error(t, err)

	var opErr ocho.ErrOpCodeUnknown
	assert.True(t, errors.As(err, &opErr))
	assert.Equal(t, uint16(0xFFFF), opErr.OpCode)
	assert.Equal(t, uint16(0x202), opErr.Pc)
}

func TestStackUnderflow(t *testing.T) {
	m := ocho.NewMachine()
	assert.NoError(t, m.Load([]byte{0x00, 0xEE}))

	err := m.Tick()
	assert.True(t, errors.Is(err, ocho.ErrStackUnderflow))
}

func TestStackOverflow(t *testing.T) {
	m := ocho.NewMachine()
	// a subroutine that calls itself never returns and fills the stack
	assert.NoError(t, m.Load([]byte{0x22, 0x00}))

	for i := 0; i < ocho.StackDepth; i++ {
		assert.NoError(t, m.Tick())
	}

	err := m.Tick()
	assert.True(t, errors.Is(err, ocho.ErrStackOverflow))
}

func TestResetRestoresInitialState(t *testing.T) {
	m := ocho.NewMachine()

	run(t, m, []byte{
		0x60, 0x05,
		0xA3, 0x00,
		0xD0, 0x05,
		0xF0, 0x15,
	}, 4)

	m.Reset()

	assert.Equal(t, uint16(0x200), m.Pc)
	assert.Equal(t, byte(0), m.V[0])
	assert.Equal(t, uint16(0), m.I)
	assert.Equal(t, byte(0), m.Dt)
	assert.Equal(t, byte(0), m.Memory[0x200])
	for _, px := range m.Display() {
		assert.False(t, px)
	}
}

// TestEndToEnd runs the register-set / index-set / block-store / clear /
// jump sequence as one program and checks the combined effects.
func TestEndToEnd(t *testing.T) {
	m := ocho.NewMachine()

	run(t, m, []byte{
		// V0 = 5
		0x60, 0x05,
		// I = 0
		0xA0, 0x00,
		// store V0 at memory[0]
		0xF0, 0x55,
		// clear the screen
		0x00, 0xE0,
		// jump back to the start
		0x12, 0x00,
	}, 5)

	assert.Equal(t, byte(5), m.V[0])
	assert.Equal(t, uint16(0), m.I)
	assert.Equal(t, byte(5), m.Memory[0])
	assert.Equal(t, uint16(0x200), m.Pc)
	for _, px := range m.Display() {
		assert.False(t, px)
	}
}
