package cpu

import (
	"math/rand"
	"time"
)

// RandomSource supplies the uniformly distributed bytes consumed by CXKK.
type RandomSource interface {
	Byte() uint8
}

// MathRandom is a RandomSource backed by math/rand.
type MathRandom struct {
	rnd *rand.Rand
}

// NewMathRandom returns a source seeded with seed, or from the clock if seed
// is zero.
func NewMathRandom(seed int64) *MathRandom {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &MathRandom{rnd: rand.New(rand.NewSource(seed))}
}

func (m *MathRandom) Byte() uint8 {
	return uint8(m.rnd.Intn(256))
}
