package cpu

import (
	"errors"
	"fmt"
)

var (
	// ErrStackOverflow is returned when a CALL would nest deeper than StackDepth.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow is returned by RET on an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")
	// ErrHalted is wrapped by Step once a fatal fault has stopped the CPU.
	ErrHalted = errors.New("cpu halted")
)

// InvalidOpcodeError reports an instruction word that matches no known pattern.
type InvalidOpcodeError struct {
	Opcode Opcode
	PC     uint16
}

func (e *InvalidOpcodeError) Error() string {
	return fmt.Sprintf("invalid opcode 0x%04X at 0x%03X", uint16(e.Opcode), e.PC)
}

// MemoryAccessError reports an access that would leave the 4K address space.
type MemoryAccessError struct {
	Op   string
	Addr int
	Len  int
}

func (e *MemoryAccessError) Error() string {
	return fmt.Sprintf("%s of %d bytes at 0x%04X exceeds memory (0x%03X)", e.Op, e.Len, e.Addr, MemorySize-1)
}

// ProgramLoadError reports a program image that could not be read or does
// not fit above ProgramStart.
type ProgramLoadError struct {
	Size int
	Err  error
}

func (e *ProgramLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("loading program: %v", e.Err)
	}
	return fmt.Sprintf("loading program: image of %d bytes exceeds maximum of %d", e.Size, MaxProgramSize)
}

func (e *ProgramLoadError) Unwrap() error {
	return e.Err
}
