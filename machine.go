// Package ocho emulates the CHIP-8 virtual machine: a 4KiB address space,
// sixteen 8-bit registers, a 64x32 monochrome framebuffer, a 16-key pad and
// two countdown timers, driven by a host loop through a small fetch-decode-
// execute API.
package ocho

const (
	// ScreenWidth and ScreenHeight are the dimensions of the framebuffer in
	// pixels.
	ScreenWidth  = 64
	ScreenHeight = 32

	// NumKeys is the number of logical keys on the hexadecimal keypad.
	NumKeys = 16

	// StackDepth is the number of return addresses the call stack can hold.
	StackDepth = 16
)

// Machine is the CHIP-8 interpreter core. It owns all emulated state: the
// 4KiB memory, the sixteen V registers, the index register, the call stack,
// the framebuffer, the key states and both countdown timers.
//
// The host drives it through Load, Tick, TickTimers and Keypress; the core
// never blocks and imposes no timing of its own.
type Machine struct {
	Memory *Memory
	// V 8-bit registers; V[0xF] doubles as the carry/borrow/collision flag
	V [16]byte
	// I 16-bit register (12-bit usable)
	I uint16
	// Delay timer register
	Dt byte
	// Sound timer register
	St byte
	// Program counter
	Pc uint16
	// Stack pointer
	Sp byte
	// Stack of return addresses
	Stack [StackDepth]uint16
	// Keys holds the pressed state of the hexadecimal keypad
	Keys [NumKeys]bool

	screen [ScreenWidth * ScreenHeight]bool
}

// NewMachine creates a machine in its initial state: font set loaded,
// program counter at 0x200, everything else zeroed.
func NewMachine() *Machine {
	return &Machine{
		Memory: NewMemory(),
		Pc:     startOfProgram,
	}
}

// Reset restores the machine to its just-constructed state. The font set is
// reloaded; memory, registers, stack, keys, timers and the framebuffer are
// zeroed.
func (m *Machine) Reset() {
	*m = Machine{
		Memory: NewMemory(),
		Pc:     startOfProgram,
	}
}

// Load copies the program into memory starting at 0x200. Programs larger
// than the available space (4096 - 512 bytes) are rejected.
func (m *Machine) Load(program []byte) error {
	return m.Memory.LoadProgram(program)
}

// Keypress sets the pressed state of key k. Indexes outside the keypad are
// ignored.
func (m *Machine) Keypress(k byte, pressed bool) {
	if k >= NumKeys {
		return
	}

	m.Keys[k] = pressed
}

// Display returns the framebuffer: ScreenWidth*ScreenHeight pixels in
// row-major order, index = x + ScreenWidth*y. The slice aliases machine
// state and must not be modified by the caller.
func (m *Machine) Display() []bool {
	return m.screen[:]
}

// Tick executes exactly one fetch-decode-execute cycle.
func (m *Machine) Tick() error {
	opCode, err := m.fetch()
	if err != nil {
		return err
	}

	return m.execute(opCode)
}

// fetch reads the big-endian word at Pc and advances Pc by 2. Skips computed
// during execute are therefore relative to the already-advanced counter.
func (m *Machine) fetch() (uint16, error) {
	if int(m.Pc)+1 >= MemorySize {
		return 0, ErrMemoryFault{Addr: m.Pc, Pc: m.Pc}
	}

	var opCode uint16
	opCode |= uint16(m.Memory[m.Pc+0]) << 8
	opCode |= uint16(m.Memory[m.Pc+1]) << 0
	m.Pc += 2

	return opCode, nil
}

// TickTimers decrements the delay and sound timers independently by 1 if
// each is nonzero. Timers never reload; they stay at zero until a program
// sets them again. The caller decides the cadence, typically once per
// rendered frame.
func (m *Machine) TickTimers() {
	if m.Dt > 0 {
		m.Dt--
	}

	if m.St > 0 {
		m.St--
	}
}

// IsSoundTimerActive reports whether the host should be emitting a tone.
func (m Machine) IsSoundTimerActive() bool {
	return m.St > 0
}

// IsDelayTimerActive reports whether the delay timer is still counting down.
func (m Machine) IsDelayTimerActive() bool {
	return m.Dt > 0
}

func (m Machine) isKeyDown(k byte) bool {
	return k < NumKeys && m.Keys[k]
}

func bool2byte(b bool) byte {
	if b {
		return 1
	}

	return 0
}
