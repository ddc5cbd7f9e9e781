// Package machine wraps a CPU for use by interactive hosts. It owns the
// instruction and timer pacers, serialises access from input and render
// goroutines, and logs faults.
package machine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/retroenv/retrogolib/log"

	"gochip8/pkg/clock"
	"gochip8/pkg/cpu"
	"gochip8/pkg/utils"
)

// Config holds the settings a Machine needs from the host.
type Config struct {
	ClockHz int
	TimerHz int
	Random  cpu.RandomSource
	Trace   bool // log every executed instruction at debug level
}

// Machine is a CPU plus the pacing needed to run it in real time. All
// methods are safe for concurrent use.
type Machine struct {
	logger *log.Logger
	trace  bool

	mu    sync.Mutex
	cpu   *cpu.CPU
	steps *clock.Pacer
	ticks *clock.Pacer
	image []byte // last loaded program, replayed by Reset

	dirty bool // framebuffer changed since the last Frame call
}

// New creates a machine with an empty program.
func New(logger *log.Logger, cfg Config) (*Machine, error) {
	steps, err := clock.New(cfg.ClockHz)
	if err != nil {
		return nil, fmt.Errorf("creating instruction pacer: %w", err)
	}
	ticks, err := clock.New(cfg.TimerHz)
	if err != nil {
		return nil, fmt.Errorf("creating timer pacer: %w", err)
	}

	c := cpu.NewCPU()
	c.Random = cfg.Random

	return &Machine{
		logger: logger,
		trace:  cfg.Trace,
		cpu:    c,
		steps:  steps,
		ticks:  ticks,
		dirty:  true,
	}, nil
}

// Load resets the CPU and installs a program image. A rejected image leaves
// the running program untouched.
func (m *Machine) Load(program []byte) error {
	if len(program) > cpu.MaxProgramSize {
		return &cpu.ProgramLoadError{Size: len(program)}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.cpu.Reset()
	if err := m.cpu.LoadProgram(program); err != nil {
		return err
	}
	m.image = append(m.image[:0], program...)
	m.dirty = true
	m.logger.Info("Program loaded", log.Int("size", len(program)))
	return nil
}

// LoadFile reads a program image from disk and loads it.
func (m *Machine) LoadFile(path string) error {
	program, err := utils.ReadProgram(path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return m.Load(program)
}

// Reset restarts the last loaded program from power-on state.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cpu.Reset()
	_ = m.cpu.LoadProgram(m.image)
	m.steps.Reset()
	m.ticks.Reset()
	m.dirty = true
	m.logger.Debug("Machine reset")
}

// Step executes a single instruction.
func (m *Machine) Step() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step()
}

func (m *Machine) step() error {
	if m.trace {
		m.traceNext()
	}
	drew, err := m.cpu.Step()
	if drew {
		m.dirty = true
	}
	if err != nil && !errors.Is(err, cpu.ErrHalted) {
		m.logger.Error("Execution halted", log.Err(err))
	}
	return err
}

func (m *Machine) traceNext() {
	op, err := m.cpu.NextOpcode()
	if err != nil {
		return
	}
	name, ok := cpu.Decode(op)
	if !ok {
		name = "???"
	}
	m.logger.Debug("Step",
		log.Hex("pc", m.cpu.PC),
		log.Hex("opcode", uint16(op)),
		log.String("instruction", name))
}

// Tick advances the delay and sound timers by one period.
func (m *Machine) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cpu.Tick()
}

// Advance runs however many instructions and timer ticks are due after
// elapsed wall time. Timer ticks are interleaved with instructions so a
// program polling the delay timer sees it fall during a long batch.
// It returns the first execution error.
func (m *Machine) Advance(elapsed time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cpu.Halted() {
		return m.step()
	}

	steps := m.steps.Advance(elapsed)
	ticks := m.ticks.Advance(elapsed)
	done := 0
	for i := 0; i < steps; i++ {
		if err := m.step(); err != nil {
			return err
		}
		for due := (i + 1) * ticks / steps; done < due; done++ {
			m.cpu.Tick()
		}
	}
	for ; done < ticks; done++ {
		m.cpu.Tick()
	}
	return nil
}

// Run drives the machine from a ticker until ctx is cancelled or the CPU
// faults.
func (m *Machine) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now
			if err := m.Advance(elapsed); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// Press marks keypad key k as held.
func (m *Machine) Press(k uint8) {
	m.setKey(k, true)
}

// Release marks keypad key k as up.
func (m *Machine) Release(k uint8) {
	m.setKey(k, false)
}

func (m *Machine) setKey(k uint8, pressed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cpu.SetKey(k, pressed)
}

// Frame returns a copy of the framebuffer and whether it changed since the
// previous call.
func (m *Machine) Frame() (cpu.Display, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	changed := m.dirty
	m.dirty = false
	return m.cpu.Display, changed
}

// Sounding reports whether the beeper should be on.
func (m *Machine) Sounding() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cpu.Sounding()
}

// Fault returns the error that halted the CPU, or nil.
func (m *Machine) Fault() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cpu.Fault()
}

// Inspect calls fn with the CPU while holding the machine lock. fn must not
// retain the pointer.
func (m *Machine) Inspect(fn func(c *cpu.CPU)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.cpu)
}
