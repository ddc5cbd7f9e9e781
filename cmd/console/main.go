//go:build linux || darwin || freebsd

// Package main implements the terminal CHIP-8 host. The framebuffer is drawn
// with half-block characters and keys are read from the terminal in raw mode.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/term/termios"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/sys/unix"

	"gochip8/pkg/cli"
	"gochip8/pkg/config"
	"gochip8/pkg/cpu"
	"gochip8/pkg/machine"
	"gochip8/pkg/options"
	"gochip8/pkg/textview"
)

const (
	keyEscape = 0x1b
	keyCtrlC  = 0x03
	// bell rings the terminal when the sound timer starts.
	bell = "\a"
)

// rawTerminal switches a terminal into raw mode and back.
type rawTerminal struct {
	input   *os.File
	canAttr unix.Termios
	rawAttr unix.Termios
}

func openRaw(input *os.File) (*rawTerminal, error) {
	rt := &rawTerminal{input: input}
	if err := termios.Tcgetattr(input.Fd(), &rt.canAttr); err != nil {
		return nil, fmt.Errorf("reading terminal attributes: %w", err)
	}
	rt.rawAttr = rt.canAttr
	termios.Cfmakeraw(&rt.rawAttr)
	if err := termios.Tcsetattr(input.Fd(), termios.TCIFLUSH, &rt.rawAttr); err != nil {
		return nil, fmt.Errorf("entering raw mode: %w", err)
	}
	return rt, nil
}

func (rt *rawTerminal) Restore() {
	_ = termios.Tcsetattr(rt.input.Fd(), termios.TCIFLUSH, &rt.canAttr)
}

// readKeys forwards bytes read from input until ctx is done or input fails.
// A blocked Read cannot observe ctx, so after cancellation the goroutine
// lingers until the next byte or EOF and then exits without forwarding it.
// The console host only cancels on exit, where that is harmless.
func readKeys(ctx context.Context, input io.Reader, out chan<- byte) {
	buf := make([]byte, 16)
	for {
		n, err := input.Read(buf)
		if err != nil || ctx.Err() != nil {
			return
		}
		for _, b := range buf[:n] {
			select {
			case out <- b:
			case <-ctx.Done():
				return
			}
		}
	}
}

func main() {
	var hold time.Duration
	opts, err := cli.ParseFlags("gochip8-console", os.Args[1:], func(flags *flag.FlagSet) {
		flags.DurationVar(&hold, "hold", DefaultHold, "how long a key stays down after it is typed")
	})
	if err != nil {
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			usageErr.ShowUsage(os.Stderr)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	if err := run(logger, opts, hold); err != nil {
		logger.Error("Console host stopped", log.Err(err))
		os.Exit(1)
	}
}

func run(logger *log.Logger, opts options.Options, hold time.Duration) error {
	km, err := opts.Keymap()
	if err != nil {
		return err
	}

	rnd := cpu.RandomSource(nil)
	if opts.Seed != 0 {
		rnd = cpu.NewMathRandom(opts.Seed)
	}
	m, err := machine.New(logger, machine.Config{
		ClockHz: opts.ClockHz,
		TimerHz: opts.TimerHz,
		Random:  rnd,
		Trace:   opts.Debug,
	})
	if err != nil {
		return err
	}
	if err := m.LoadFile(opts.Input); err != nil {
		return err
	}

	rt, err := openRaw(os.Stdin)
	if err != nil {
		return err
	}
	fmt.Print(textview.HideCursor + textview.ClearScreen)
	defer func() {
		rt.Restore()
		fmt.Print(textview.ShowCursor + "\r\n")
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	keys := make(chan byte, 64)
	go readKeys(ctx, os.Stdin, keys)

	held := newHeldKeys(hold)
	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	last := time.Now()
	wasSounding := false
	for now := range ticker.C {
	drain:
		for {
			select {
			case b := <-keys:
				if b == keyEscape || b == keyCtrlC {
					return nil
				}
				if k, ok := km.Lookup(rune(b)); ok {
					held.press(k, now)
					m.Press(k)
				}
			default:
				break drain
			}
		}
		for _, k := range held.expire(now) {
			m.Release(k)
		}

		if err := m.Advance(now.Sub(last)); err != nil {
			return err
		}
		last = now

		if frame, changed := m.Frame(); changed {
			fmt.Print(textview.Home + textview.Render(&frame, "\r\n"))
		}
		sounding := m.Sounding()
		if sounding && !wasSounding {
			fmt.Print(bell)
		}
		wasSounding = sounding
	}
	return nil
}
