// Package beep generates the buzzer tone played while the sound timer runs.
package beep

import (
	"sync/atomic"
)

const (
	// DefaultFrequency is the buzzer pitch in Hz.
	DefaultFrequency = 440
	// DefaultVolume is the square-wave amplitude as a fraction of full scale.
	DefaultVolume = 0.15

	bytesPerFrame = 4 // 16-bit little-endian, two channels
)

// Tone is an endless square-wave PCM stream (signed 16-bit little-endian
// stereo) that emits silence while gated off. Read is safe to call from an
// audio goroutine while another goroutine toggles the gate.
type Tone struct {
	sampleRate int
	frequency  int
	amplitude  int16

	pos int64
	on  atomic.Bool
}

// NewTone returns a gated-off tone for the given output sample rate.
func NewTone(sampleRate, frequency int, volume float64) *Tone {
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	return &Tone{
		sampleRate: sampleRate,
		frequency:  frequency,
		amplitude:  int16(volume * 32767),
	}
}

// SetOn opens or closes the gate.
func (t *Tone) SetOn(on bool) {
	t.on.Store(on)
}

// On reports whether the gate is open.
func (t *Tone) On() bool {
	return t.on.Load()
}

// Read fills p with whole stereo frames and never returns an error.
func (t *Tone) Read(p []byte) (int, error) {
	n := len(p) / bytesPerFrame * bytesPerFrame
	on := t.on.Load()
	halfPeriod := int64(t.sampleRate / (2 * t.frequency))
	if halfPeriod < 1 {
		halfPeriod = 1
	}

	for i := 0; i < n; i += bytesPerFrame {
		var s int16
		if on {
			s = t.amplitude
			if (t.pos/halfPeriod)%2 == 1 {
				s = -t.amplitude
			}
		}
		p[i] = byte(s)
		p[i+1] = byte(uint16(s) >> 8)
		p[i+2] = p[i]
		p[i+3] = p[i+1]
		t.pos++
	}
	return n, nil
}
