package ocho

import (
	"errors"
	"fmt"
)

var ErrProgramDoesNotFitIntoMemory = errors.New("the program does not fit into memory")

var ErrStackUnderflow = errors.New("stack underflow: try to pop an empty stack")
var ErrStackOverflow = errors.New("stack overflow: try to push to a full stack")

// ErrOpCodeUnknown is returned when dispatch cannot match a fetched word. It
// is fatal: the machine state is left as it was after the fetch.
type ErrOpCodeUnknown struct {
	OpCode uint16
	Pc     uint16
}

func (err ErrOpCodeUnknown) Error() string {
	return fmt.Sprintf("unknown opcode=%04X at PC=%d", err.OpCode, err.Pc)
}

// ErrMemoryFault is returned when address arithmetic runs past the 4KiB
// memory space (fetch, sprite read, BCD or register-block transfers).
type ErrMemoryFault struct {
	Addr uint16
	Pc   uint16
}

func (err ErrMemoryFault) Error() string {
	return fmt.Sprintf("memory fault: address=%03X out of range at PC=%d", err.Addr, err.Pc)
}
