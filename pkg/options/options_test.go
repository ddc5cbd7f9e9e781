package options

import (
	"image/color"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDefaultsValidate(t *testing.T) {
	opts := New()
	assert.NoError(t, opts.Validate())

	on, off, err := opts.Colors()
	assert.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}, on)
	assert.Equal(t, color.RGBA{A: 0xFF}, off)

	km, err := opts.Keymap()
	assert.NoError(t, err)
	assert.Equal(t, "1234qwerasdfzxcv", km.String())
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"clock", func(o *Options) { o.ClockHz = 0 }},
		{"timer", func(o *Options) { o.TimerHz = -60 }},
		{"scale", func(o *Options) { o.Scale = 0 }},
		{"keys", func(o *Options) { o.Keys = "abc" }},
		{"foreground", func(o *Options) { o.Foreground = "zzzzzz" }},
		{"background", func(o *Options) { o.Background = "#12345" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := New()
			tt.mutate(&opts)
			if err := opts.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#33ff66")
	assert.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x33, G: 0xFF, B: 0x66, A: 0xFF}, c)

	c, err = ParseColor("0A0B0C")
	assert.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x0A, G: 0x0B, B: 0x0C, A: 0xFF}, c)
}
