// Package options contains the settings shared by all hosts.
package options

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gochip8/pkg/keymap"
)

// Defaults for Options.
const (
	DefaultClockHz = 700
	DefaultTimerHz = 60
	DefaultScale   = 10
	DefaultFg      = "ffffff"
	DefaultBg      = "000000"
)

// Options configures a machine and the host that drives it.
type Options struct {
	Input string // program image path

	ClockHz int // instruction steps per second
	TimerHz int // delay/sound timer ticks per second
	Seed    int64
	Keys    string // 16 physical symbols, see keymap.Parse

	Foreground string // lit cell colour, hex RGB
	Background string // dark cell colour, hex RGB
	Scale      int

	Debug bool
	Quiet bool
}

// New returns Options populated with defaults.
func New() Options {
	return Options{
		ClockHz:    DefaultClockHz,
		TimerHz:    DefaultTimerHz,
		Keys:       keymap.DefaultLayout,
		Foreground: DefaultFg,
		Background: DefaultBg,
		Scale:      DefaultScale,
	}
}

// Validate checks ranges and that the colours and key layout parse.
func (o Options) Validate() error {
	var errs []error
	if o.ClockHz <= 0 {
		errs = append(errs, fmt.Errorf("clock rate must be positive, got %d", o.ClockHz))
	}
	if o.TimerHz <= 0 {
		errs = append(errs, fmt.Errorf("timer rate must be positive, got %d", o.TimerHz))
	}
	if o.Scale <= 0 {
		errs = append(errs, fmt.Errorf("scale must be positive, got %d", o.Scale))
	}
	if _, err := keymap.Parse(o.Keys); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseColor(o.Foreground); err != nil {
		errs = append(errs, fmt.Errorf("foreground: %w", err))
	}
	if _, err := ParseColor(o.Background); err != nil {
		errs = append(errs, fmt.Errorf("background: %w", err))
	}
	return errors.Join(errs...)
}

// Keymap returns the parsed key layout.
func (o Options) Keymap() (*keymap.Keymap, error) {
	return keymap.Parse(o.Keys)
}

// Colors returns the parsed lit and dark colours.
func (o Options) Colors() (on, off color.RGBA, err error) {
	if on, err = ParseColor(o.Foreground); err != nil {
		return on, off, err
	}
	off, err = ParseColor(o.Background)
	return on, off, err
}

// ParseColor parses "rrggbb" or "#rrggbb" into an opaque colour.
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("colour %q is not 6 hex digits", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parsing colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, nil
}
