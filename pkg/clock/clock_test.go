package clock

import (
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"
)

func TestNew(t *testing.T) {
	p, err := New(60)
	assert.NoError(t, err)
	assert.Equal(t, time.Second/60, p.Period())

	for _, hz := range []int{0, -1, int(time.Second) + 1} {
		if _, err := New(hz); err == nil {
			t.Errorf("New(%d): expected error", hz)
		}
	}
}

func TestAdvanceCarriesRemainder(t *testing.T) {
	p, err := New(100) // 10ms period
	assert.NoError(t, err)

	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{4 * time.Millisecond, 0},
		{4 * time.Millisecond, 0},
		{4 * time.Millisecond, 1}, // 12ms accumulated
		{28 * time.Millisecond, 3},
		{0, 0},
		{-5 * time.Millisecond, 0},
	}
	for i, tc := range tests {
		if got := p.Advance(tc.elapsed); got != tc.want {
			t.Errorf("step %d: Advance(%v) = %d; want %d", i, tc.elapsed, got, tc.want)
		}
	}
}

func TestAdvanceBacklogBound(t *testing.T) {
	p, err := New(1000)
	assert.NoError(t, err)
	assert.Equal(t, 250, p.Advance(10*time.Second))

	p.SetMaxBacklog(0)
	assert.Equal(t, 10000, p.Advance(10*time.Second))

	p.Advance(500 * time.Microsecond)
	p.Reset()
	assert.Equal(t, 0, p.Advance(600*time.Microsecond))
}

func TestIndependentCadences(t *testing.T) {
	steps, err := New(700)
	assert.NoError(t, err)
	ticks, err := New(60)
	assert.NoError(t, err)

	totalSteps, totalTicks := 0, 0
	frame := time.Second / 60
	for i := 0; i < 60; i++ {
		totalSteps += steps.Advance(frame)
		totalTicks += ticks.Advance(frame)
	}
	// Integer periods lose a little to truncation; both stay within one event.
	if totalSteps < 699 || totalSteps > 700 {
		t.Errorf("steps over one second: got %d, want ~700", totalSteps)
	}
	if totalTicks < 59 || totalTicks > 60 {
		t.Errorf("ticks over one second: got %d, want ~60", totalTicks)
	}
}
