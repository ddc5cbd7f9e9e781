//go:build linux || darwin || freebsd

package main

import "time"

// DefaultHold is how long a typed key is reported as pressed. Terminals send
// no release events, so a key is released once no repeat arrives in time.
const DefaultHold = 150 * time.Millisecond

// heldKeys tracks synthetic key releases.
type heldKeys struct {
	hold  time.Duration
	until map[uint8]time.Time
}

func newHeldKeys(hold time.Duration) *heldKeys {
	return &heldKeys{hold: hold, until: make(map[uint8]time.Time)}
}

// press marks k held until now plus the hold time.
func (h *heldKeys) press(k uint8, now time.Time) {
	h.until[k] = now.Add(h.hold)
}

// expire returns, in ascending order, the keys whose hold ended at or before
// now and forgets them.
func (h *heldKeys) expire(now time.Time) []uint8 {
	var released []uint8
	for k := uint8(0); k < 16; k++ {
		t, ok := h.until[k]
		if ok && !now.Before(t) {
			released = append(released, k)
			delete(h.until, k)
		}
	}
	return released
}
