package ocho

import (
	"fmt"
	"strings"
)

const startOfProgram = 0x200

// MemorySize is the full addressable space of the machine.
const MemorySize = 4096

// Memory is the 4096-byte address space. Addresses 0x000-0x1FF are reserved
// for the interpreter; the font set lives at 0x000-0x04F and programs are
// loaded starting at 0x200.
type Memory [MemorySize]byte

// NewMemory creates an empty memory of 4096 bytes with the font set loaded
func NewMemory() *Memory {
	m := Memory([MemorySize]byte{})
	loadFontSetInto(&m)

	return &m
}

func (mem Memory) Clone() *Memory {
	m := Memory([MemorySize]byte{})
	copy(m[:], mem[:])

	return &m
}

func (mem Memory) String() string {
	sb := strings.Builder{}

	sb.WriteString("[ ")
	for _, b := range mem[:startOfProgram] {
		sb.WriteString(fmt.Sprintf("%X ", b))
	}
	sb.WriteString("]\n")
	sb.WriteString("[ ")
	for _, b := range mem[startOfProgram:] {
		sb.WriteString(fmt.Sprintf("%X ", b))
	}
	sb.WriteString("]")

	return sb.String()
}

// LoadProgram copies the program into memory starting at 0x200
func (mem *Memory) LoadProgram(program []byte) error {
	if len(program) > MemorySize-startOfProgram {
		return ErrProgramDoesNotFitIntoMemory
	}

	copy(mem[startOfProgram:], program)

	return nil
}

// loadFontSetInto writes the 16 hexadecimal glyphs at 0x000-0x04F. Glyph c
// occupies the 5 bytes starting at address c*5.
func loadFontSetInto(mem *Memory) {
	copy(mem[:], []byte{
		// 0
		0xF0, 0x90, 0x90, 0x90, 0xF0,
		// 1
		0x20, 0x60, 0x20, 0x20, 0x70,
		// 2
		0xF0, 0x10, 0xF0, 0x80, 0xF0,
		// 3
		0xF0, 0x10, 0xF0, 0x10, 0xF0,
		// 4
		0x90, 0x90, 0xF0, 0x10, 0x10,
		// 5
		0xF0, 0x80, 0xF0, 0x10, 0xF0,
		// 6
		0xF0, 0x80, 0xF0, 0x90, 0xF0,
		// 7
		0xF0, 0x10, 0x20, 0x40, 0x40,
		// 8
		0xF0, 0x90, 0xF0, 0x90, 0xF0,
		// 9
		0xF0, 0x90, 0xF0, 0x10, 0xF0,
		// A
		0xF0, 0x90, 0xF0, 0x90, 0x90,
		// B
		0xE0, 0x90, 0xE0, 0x90, 0xE0,
		// C
		0xF0, 0x80, 0x80, 0x80, 0xF0,
		// D
		0xE0, 0x90, 0x90, 0x90, 0xE0,
		// E
		0xF0, 0x80, 0xF0, 0x80, 0xF0,
		// F
		0xF0, 0x80, 0xF0, 0x80, 0x80})
}
