// Package clock converts elapsed wall time into whole numbers of events at a
// fixed rate. Hosts use one Pacer for instruction steps and another for timer
// ticks so the two cadences stay independent.
package clock

import (
	"fmt"
	"time"
)

// DefaultMaxBacklog bounds how much lag a Pacer will catch up on at once.
const DefaultMaxBacklog = 250 * time.Millisecond

// Pacer accumulates elapsed time and releases events at a fixed rate.
type Pacer struct {
	period     time.Duration
	maxBacklog time.Duration
	accum      time.Duration
}

// New returns a Pacer emitting hz events per second.
func New(hz int) (*Pacer, error) {
	if hz <= 0 || time.Duration(hz) > time.Second {
		return nil, fmt.Errorf("invalid pacer rate %d Hz", hz)
	}
	return &Pacer{
		period:     time.Second / time.Duration(hz),
		maxBacklog: DefaultMaxBacklog,
	}, nil
}

// Period returns the interval between events.
func (p *Pacer) Period() time.Duration {
	return p.period
}

// SetMaxBacklog changes the catch-up bound. Zero or negative disables it.
func (p *Pacer) SetMaxBacklog(d time.Duration) {
	p.maxBacklog = d
}

// Advance adds elapsed time and returns how many events are now due. The
// remainder carries over to the next call. When the host stalls for longer
// than the backlog bound the excess is dropped rather than replayed.
func (p *Pacer) Advance(elapsed time.Duration) int {
	if elapsed < 0 {
		elapsed = 0
	}
	p.accum += elapsed
	if p.maxBacklog > 0 && p.accum > p.maxBacklog {
		p.accum = p.maxBacklog
	}
	n := int(p.accum / p.period)
	p.accum -= time.Duration(n) * p.period
	return n
}

// Reset drops any accumulated time.
func (p *Pacer) Reset() {
	p.accum = 0
}
