// Package cli handles command line parsing shared by all hosts.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"gochip8/pkg/options"
)

// ParseFlags parses args (without the program name) into Options. extra may
// register host-specific flags on the same flag set before parsing.
func ParseFlags(name string, args []string, extra func(*flag.FlagSet)) (options.Options, error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	opts := options.New()
	readOptionFlags(flags, &opts)
	if extra != nil {
		extra(flags)
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, &UsageError{flags: flags}
		}
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}

	rest := flags.Args()
	switch len(rest) {
	case 0:
		return opts, &UsageError{flags: flags, msg: "no program file given"}
	case 1:
		opts.Input = rest[0]
	default:
		return opts, &UsageError{flags: flags, msg: fmt.Sprintf("expected one program file, got %d arguments", len(rest))}
	}

	if err := opts.Validate(); err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}
	return opts, nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Options) {
	flags.IntVar(&opts.ClockHz, "clock", opts.ClockHz, "instructions executed per second")
	flags.IntVar(&opts.TimerHz, "timer", opts.TimerHz, "delay and sound timer ticks per second")
	flags.Int64Var(&opts.Seed, "seed", 0, "random seed for the RND instruction (0 seeds from the clock)")
	flags.StringVar(&opts.Keys, "keys", opts.Keys, "16 physical keys in row-major order mapped onto the keypad 123C/456D/789E/A0BF")
	flags.StringVar(&opts.Foreground, "fg", opts.Foreground, "colour of lit pixels as hex RGB")
	flags.StringVar(&opts.Background, "bg", opts.Background, "colour of dark pixels as hex RGB")
	flags.IntVar(&opts.Scale, "scale", opts.Scale, "window and screenshot scale factor")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debug logging and instruction tracing")
	flags.BoolVar(&opts.Quiet, "q", false, "only log errors")
}

// UsageError represents an error that should show usage information.
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	if e.msg == "" {
		return "usage requested"
	}
	return e.msg
}

// ShowUsage writes the error message, if any, and the flag defaults to w.
func (e *UsageError) ShowUsage(w io.Writer) {
	if e.msg != "" {
		fmt.Fprintf(w, "error: %s\n\n", e.msg)
	}
	fmt.Fprintf(w, "usage: %s [options] <program file>\n\n", e.flags.Name())
	e.flags.SetOutput(w)
	e.flags.PrintDefaults()
}
