// Package cpu implements the CHIP-8 virtual machine: memory, registers,
// the call stack, timers, keypad, framebuffer and the fetch-decode-execute
// step. The package provides no synchronisation; a CPU must be driven by a
// single owner.
package cpu

import (
	"fmt"
	"io"
)

const (
	// MemorySize is the size of the flat address space.
	MemorySize = 4096
	// ProgramStart is where program images are loaded and execution begins.
	ProgramStart uint16 = 0x200
	// MaxProgramSize is the largest image that fits above ProgramStart.
	MaxProgramSize = MemorySize - int(ProgramStart)
	// StackDepth is the maximum subroutine nesting.
	StackDepth = 16
	// NumRegisters is the number of V registers.
	NumRegisters = 16
	// NumKeys is the number of keypad keys.
	NumKeys = 16
	// RegF is the flag register written by arithmetic and draw instructions.
	RegF = 0xF
)

// CPU is the complete CHIP-8 machine state.
type CPU struct {
	Memory [MemorySize]byte

	// V holds the general registers V0-VF. VF doubles as the flag output.
	V  [NumRegisters]uint8
	I  uint16
	PC uint16

	Stack [StackDepth]uint16
	// SP is the number of return addresses currently on Stack.
	SP uint8

	Delay uint8
	Sound uint8

	Keys [NumKeys]bool

	Display Display

	// Random feeds CXKK. If nil, a clock-seeded MathRandom is created on
	// first use.
	Random RandomSource

	fault error
}

// NewCPU creates a CPU with the font installed and PC at ProgramStart.
func NewCPU() *CPU {
	c := &CPU{}
	c.Reset()
	return c
}

// Reset returns the CPU to its power-on state, clearing memory, registers,
// timers, keys, the framebuffer and any recorded fault. Random is kept.
func (c *CPU) Reset() {
	rnd := c.Random
	*c = CPU{Random: rnd}
	copy(c.Memory[FontBase:], fontGlyphs[:])
	c.PC = ProgramStart
}

func (c *CPU) randomSource() RandomSource {
	if c.Random == nil {
		c.Random = NewMathRandom(0)
	}
	return c.Random
}

// LoadProgram copies a program image to ProgramStart.
func (c *CPU) LoadProgram(program []byte) error {
	if len(program) > MaxProgramSize {
		return &ProgramLoadError{Size: len(program)}
	}
	copy(c.Memory[ProgramStart:], program)
	return nil
}

// LoadProgramFrom reads a program image from r and loads it. At most one
// byte more than MaxProgramSize is read so oversize images are detected
// without consuming an unbounded stream.
func (c *CPU) LoadProgramFrom(r io.Reader) error {
	program, err := io.ReadAll(io.LimitReader(r, int64(MaxProgramSize)+1))
	if err != nil {
		return &ProgramLoadError{Size: len(program), Err: err}
	}
	return c.LoadProgram(program)
}

// Fault returns the fatal error that halted the CPU, or nil.
func (c *CPU) Fault() error {
	return c.fault
}

// Halted reports whether a fatal error has stopped execution.
func (c *CPU) Halted() bool {
	return c.fault != nil
}

func (c *CPU) halt(err error) error {
	c.fault = err
	return err
}

// NextOpcode returns the instruction word at PC without executing it.
func (c *CPU) NextOpcode() (Opcode, error) {
	if int(c.PC)+1 >= MemorySize {
		return 0, &MemoryAccessError{Op: "fetch", Addr: int(c.PC), Len: 2}
	}
	return Opcode(uint16(c.Memory[c.PC])<<8 | uint16(c.Memory[c.PC+1])), nil
}

// Step fetches, decodes and executes exactly one instruction. It reports
// whether the framebuffer was mutated so the host knows to redraw.
//
// A failing step commits no state change: PC and all other state are left
// as they were before the step, and the error is recorded as the CPU's
// fault. Later calls return ErrHalted wrapping that fault until Reset.
func (c *CPU) Step() (bool, error) {
	if c.fault != nil {
		return false, fmt.Errorf("%w: %w", ErrHalted, c.fault)
	}

	pc := c.PC
	op, err := c.NextOpcode()
	if err != nil {
		return false, c.halt(err)
	}
	ins := lookup(op)
	if ins == nil {
		return false, c.halt(&InvalidOpcodeError{Opcode: op, PC: pc})
	}

	c.PC = pc + 2
	drew, err := ins.Execute(c, op)
	if err != nil {
		c.PC = pc
		return false, c.halt(err)
	}
	return drew, nil
}

// Run executes up to n instructions, stopping at the first error. It
// reports whether any of them mutated the framebuffer.
func (c *CPU) Run(n int) (bool, error) {
	drew := false
	for i := 0; i < n; i++ {
		d, err := c.Step()
		if err != nil {
			return drew, err
		}
		drew = drew || d
	}
	return drew, nil
}

// Tick advances both timers by one period: each is decremented if above
// zero. Hosts call it at the timer cadence (60 Hz), independently of Step.
func (c *CPU) Tick() {
	if c.Delay > 0 {
		c.Delay--
	}
	if c.Sound > 0 {
		c.Sound--
	}
}

// Sounding reports whether the sound timer is active.
func (c *CPU) Sounding() bool {
	return c.Sound > 0
}

// SetKey records the pressed state of keypad key k (0x0-0xF). Keys outside
// the keypad are ignored.
func (c *CPU) SetKey(k uint8, pressed bool) {
	if int(k) < NumKeys {
		c.Keys[k] = pressed
	}
}

// firstPressed returns the lowest pressed key.
func (c *CPU) firstPressed() (uint8, bool) {
	for k, pressed := range c.Keys {
		if pressed {
			return uint8(k), true
		}
	}
	return 0, false
}

// checkRange verifies that n bytes starting at addr lie inside memory.
func checkRange(op string, addr uint16, n int) error {
	if int(addr)+n > MemorySize {
		return &MemoryAccessError{Op: op, Addr: int(addr), Len: n}
	}
	return nil
}
