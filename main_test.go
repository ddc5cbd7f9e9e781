package main

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/log"

	"gochip8/pkg/cpu"
	"gochip8/pkg/options"
)

func writeProgram(t *testing.T, words ...uint16) string {
	t.Helper()
	var program []byte
	for _, w := range words {
		program = append(program, byte(w>>8), byte(w))
	}
	path := filepath.Join(t.TempDir(), "prog.ch8")
	if err := os.WriteFile(path, program, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunDrawsDigitAndDumpsState(t *testing.T) {
	path := writeProgram(t,
		0x6005, // LD V0, 5
		0xF029, // LD F, V0
		0x6100, // LD V1, 0
		0xD115, // DRW V1, V1, 5
		0x1208, // JP 0x208
	)
	shot := filepath.Join(t.TempDir(), "shot.png")

	opts := options.New()
	opts.Input = path
	opts.Scale = 2
	var out bytes.Buffer
	err := run(log.NewTestLogger(t), opts, runFlags{steps: 20, screenshot: shot}, &out)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "PC=0x208 I=0x019") {
		t.Errorf("unexpected state dump:\n%s", text)
	}
	if !strings.Contains(text, "VF=0x00") {
		t.Errorf("expected no collision in dump:\n%s", text)
	}
	// Glyph 5 rows 0 and 1 are 0xF0 and 0x80.
	if !strings.HasPrefix(text, "█▀▀▀ ") {
		t.Errorf("expected lit top row in text view:\n%s", text)
	}

	f, err := os.Open(shot)
	if err != nil {
		t.Fatalf("screenshot not written: %v", err)
	}
	defer func() { _ = f.Close() }()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("screenshot is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != cpu.DisplayWidth*2 || b.Dy() != cpu.DisplayHeight*2 {
		t.Errorf("unexpected screenshot size %v", b)
	}
}

func TestRunTicksTimersFromStepCount(t *testing.T) {
	path := writeProgram(t,
		0x60FF, // LD V0, 0xFF
		0xF015, // LD DT, V0
		0x1204, // JP 0x204
	)
	opts := options.New()
	opts.Input = path
	opts.ClockHz = 100
	opts.TimerHz = 10

	var out bytes.Buffer
	if err := run(log.NewTestLogger(t), opts, runFlags{steps: 102, noDisplay: true}, &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	// 102 steps at 10 steps per tick is 10 ticks, the first of which lands
	// after the timer was loaded.
	if !strings.Contains(out.String(), "DT=0xF5") {
		t.Errorf("unexpected delay timer:\n%s", out.String())
	}
}

func TestRunReportsFault(t *testing.T) {
	path := writeProgram(t, 0x00EE) // RET with empty stack
	opts := options.New()
	opts.Input = path

	var out bytes.Buffer
	err := run(log.NewTestLogger(t), opts, runFlags{steps: 5, noDisplay: true}, &out)
	if !errors.Is(err, cpu.ErrStackUnderflow) {
		t.Fatalf("expected stack underflow, got %v", err)
	}
	if !strings.Contains(out.String(), "PC=0x200") {
		t.Errorf("expected PC left on the faulting instruction:\n%s", out.String())
	}
}
