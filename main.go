//go:build !js

// Package main implements the headless CHIP-8 runner. It executes a program
// for a fixed number of instructions without a window and prints the final
// framebuffer and register state.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"

	"gochip8/pkg/cli"
	"gochip8/pkg/config"
	"gochip8/pkg/cpu"
	"gochip8/pkg/machine"
	"gochip8/pkg/options"
	"gochip8/pkg/textview"
)

var (
	version = "0.1.0"
	commit  = ""
	date    = ""
)

// DefaultSteps is the instruction budget when -steps is not given.
const DefaultSteps = 10000

type runFlags struct {
	steps      int
	screenshot string
	noDisplay  bool
}

func main() {
	var host runFlags
	opts, err := cli.ParseFlags("gochip8", os.Args[1:], func(flags *flag.FlagSet) {
		flags.IntVar(&host.steps, "steps", DefaultSteps, "number of instructions to execute")
		flags.StringVar(&host.screenshot, "screenshot", "", "write the final framebuffer to this PNG file")
		flags.BoolVar(&host.noDisplay, "nodisplay", false, "do not print the final framebuffer")
	})
	if err != nil {
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			printBanner(opts)
			usageErr.ShowUsage(os.Stderr)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if !opts.Quiet {
		printBanner(opts)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	if err := run(logger, opts, host, os.Stdout); err != nil {
		logger.Error("Run failed", log.Err(err))
		os.Exit(1)
	}
}

func printBanner(opts options.Options) {
	if !opts.Quiet {
		fmt.Println("[-------------------------------]")
		fmt.Println("[ gochip8 - CHIP-8 interpreter  ]")
		fmt.Printf("[-------------------------------]\n\n")
		fmt.Printf("version: %s\n\n", buildinfo.Version(version, commit, date))
	}
}

// run executes the program headless. Timer ticks are derived from the
// instruction count so the timers fall at TimerHz relative to ClockHz
// without any wall-clock waiting.
func run(logger *log.Logger, opts options.Options, host runFlags, w io.Writer) error {
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

	runErr := execute(m, host.steps, opts.ClockHz, opts.TimerHz)

	frame, _ := m.Frame()
	if !host.noDisplay {
		fmt.Fprint(w, textview.Render(&frame, "\n"))
	}
	m.Inspect(func(c *cpu.CPU) {
		printState(w, c)
	})

	if host.screenshot != "" {
		on, off, err := opts.Colors()
		if err != nil {
			return err
		}
		if err := frame.SaveScreenshot(host.screenshot, on, off, opts.Scale); err != nil {
			return fmt.Errorf("saving screenshot: %w", err)
		}
		logger.Info("Screenshot saved", log.String("file", host.screenshot))
	}
	return runErr
}

// execute steps the machine n times, ticking the timers every
// clockHz/timerHz instructions.
func execute(m *machine.Machine, n, clockHz, timerHz int) error {
	budget := 0
	for range n {
		if err := m.Step(); err != nil {
			return err
		}
		budget += timerHz
		for budget >= clockHz {
			budget -= clockHz
			m.Tick()
		}
	}
	return nil
}

func printState(w io.Writer, c *cpu.CPU) {
	fmt.Fprintf(w, "PC=0x%03X I=0x%03X SP=%d DT=0x%02X ST=0x%02X\n", c.PC, c.I, c.SP, c.Delay, c.Sound)
	for i, v := range c.V {
		sep := " "
		if i%8 == 7 {
			sep = "\n"
		}
		fmt.Fprintf(w, "V%X=0x%02X%s", i, v, sep)
	}
}
