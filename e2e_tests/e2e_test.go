package e2etests

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/retroenv/retrogolib/log"

	"gochip8/pkg/asm"
	"gochip8/pkg/cpu"
	"gochip8/pkg/machine"
	"gochip8/pkg/textview"
)

// newMachine assembles source and loads it into a machine.
func newMachine(t *testing.T, source string) *machine.Machine {
	t.Helper()

	program, _, err := asm.Assemble(source)
	if err != nil {
		t.Fatalf("Assembly failed: %v", err)
	}

	m, err := machine.New(log.NewTestLogger(t), machine.Config{ClockHz: 600, TimerHz: 60})
	if err != nil {
		t.Fatalf("Creating machine failed: %v", err)
	}
	if err := m.Load(program); err != nil {
		t.Fatalf("Loading program failed: %v", err)
	}
	return m
}

func stepN(t *testing.T, m *machine.Machine, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := m.Step(); err != nil {
			t.Fatalf("Step %d failed: %v", i, err)
		}
	}
}

// digits draws the font glyphs for ds side by side starting at (x, y).
func digits(x, y uint8, ds ...uint8) cpu.Display {
	var d cpu.Display
	for _, digit := range ds {
		d.DrawSprite(x, y, cpu.Glyph(digit))
		x += 5
	}
	return d
}

func compareFrames(t *testing.T, want, got cpu.Display) {
	t.Helper()
	if diff := cmp.Diff(textview.Render(&want, "\n"), textview.Render(&got, "\n")); diff != "" {
		t.Errorf("framebuffer mismatch (-want +got):\n%s", diff)
	}
}

func TestBCDSubroutine(t *testing.T) {
	m := newMachine(t, `
        LD V6, 137
        CALL show
    halt:
        JP halt

    ; show draws V6 as three decimal digits at (8, 4)
    show:
        LD I, scratch
        LD B, V6
        LD V2, [I]
        LD V3, 8
        LD V4, 4
        LD F, V0
        DRW V3, V4, 5
        ADD V3, 5
        LD F, V1
        DRW V3, V4, 5
        ADD V3, 5
        LD F, V2
        DRW V3, V4, 5
        RET

    scratch:
        .BYTE 0, 0, 0
    `)

	stepN(t, m, 2+16+1)

	m.Inspect(func(c *cpu.CPU) {
		if c.PC != 0x204 {
			t.Errorf("expected PC=0x204 after return, got 0x%03X", c.PC)
		}
		if c.SP != 0 {
			t.Errorf("expected empty stack, got SP=%d", c.SP)
		}
		if c.V[cpu.RegF] != 0 {
			t.Errorf("expected no collision, got VF=%d", c.V[cpu.RegF])
		}
	})

	frame, changed := m.Frame()
	if !changed {
		t.Error("expected the frame to be reported as changed")
	}
	compareFrames(t, digits(8, 4, 1, 3, 7), frame)
}

func TestWaitForKeyThenDraw(t *testing.T) {
	m := newMachine(t, `
        LD V0, K
        LD F, V0
        LD V1, 0
        DRW V1, V1, 5
    done:
        JP done
    `)

	// No key held: FX0A stalls on itself.
	stepN(t, m, 10)
	m.Inspect(func(c *cpu.CPU) {
		if c.PC != 0x200 {
			t.Errorf("expected PC to stay on FX0A, got 0x%03X", c.PC)
		}
	})

	m.Press(0x7)
	m.Press(0xB)
	stepN(t, m, 5)
	m.Release(0x7)
	m.Release(0xB)

	frame, _ := m.Frame()
	compareFrames(t, digits(0, 0, 0x7), frame)
}

func TestDelayTimerLoop(t *testing.T) {
	m := newMachine(t, `
        LD V0, 6
        LD DT, V0
    wait:
        LD V1, DT
        SE V1, 0
        JP wait
        LD V2, 0xAA
    done:
        JP done
    `)

	// 200ms at 600 Hz is 120 steps and 12 timer ticks, enough to drain DT
	// and leave the loop.
	if err := m.Advance(200 * time.Millisecond); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	m.Inspect(func(c *cpu.CPU) {
		if c.Delay != 0 {
			t.Errorf("expected delay timer drained, got %d", c.Delay)
		}
		if c.V[2] != 0xAA {
			t.Errorf("expected loop exit to set V2=0xAA, got 0x%02X", c.V[2])
		}
	})
}

func TestSpriteCollisionErases(t *testing.T) {
	m := newMachine(t, `
        LD I, block
        LD V0, 62
        LD V1, 30
        DRW V0, V1, 4
        LD V5, VF
        DRW V0, V1, 4
    done:
        JP done

    block:
        .BYTE 0xF0, 0xF0, 0xF0, 0xF0
    `)

	stepN(t, m, 5)
	frame, _ := m.Frame()
	// The block straddles the right and bottom edges and wraps to the
	// opposite corners.
	for _, p := range [][2]int{{62, 30}, {63, 31}, {0, 0}, {1, 1}, {0, 30}, {62, 0}} {
		if !frame.Pixel(p[0], p[1]) {
			t.Errorf("expected pixel (%d,%d) lit", p[0], p[1])
		}
	}

	stepN(t, m, 1)
	frame, _ = m.Frame()
	if frame.Lit() != 0 {
		t.Errorf("expected second draw to erase the block, %d pixels still lit", frame.Lit())
	}
	m.Inspect(func(c *cpu.CPU) {
		if c.V[5] != 0 {
			t.Errorf("expected first draw without collision, got V5=%d", c.V[5])
		}
		if c.V[cpu.RegF] != 1 {
			t.Errorf("expected collision on second draw, got VF=%d", c.V[cpu.RegF])
		}
	})
}
