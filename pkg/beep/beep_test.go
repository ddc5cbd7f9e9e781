package beep

import (
	"encoding/binary"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func samples(t *testing.T, buf []byte) []int16 {
	t.Helper()
	out := make([]int16, 0, len(buf)/bytesPerFrame)
	for i := 0; i+bytesPerFrame <= len(buf); i += bytesPerFrame {
		left := int16(binary.LittleEndian.Uint16(buf[i:]))
		right := int16(binary.LittleEndian.Uint16(buf[i+2:]))
		if left != right {
			t.Fatalf("frame %d: channels differ (%d vs %d)", i/bytesPerFrame, left, right)
		}
		out = append(out, left)
	}
	return out
}

func TestToneSilentWhenGatedOff(t *testing.T) {
	tone := NewTone(8000, 1000, 0.5)
	buf := make([]byte, 64)
	n, err := tone.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, 64, n)
	for i, s := range samples(t, buf) {
		if s != 0 {
			t.Fatalf("sample %d: expected silence, got %d", i, s)
		}
	}
}

func TestToneSquareWave(t *testing.T) {
	// 8000 Hz / 1000 Hz: four samples high, four samples low.
	volume := 0.5
	tone := NewTone(8000, 1000, volume)
	tone.SetOn(true)
	assert.True(t, tone.On())

	buf := make([]byte, 16*bytesPerFrame)
	_, err := tone.Read(buf)
	assert.NoError(t, err)

	amp := int16(volume * 32767)
	for i, s := range samples(t, buf) {
		want := amp
		if (i/4)%2 == 1 {
			want = -amp
		}
		if s != want {
			t.Errorf("sample %d: expected %d, got %d", i, want, s)
		}
	}
}

func TestToneReadsWholeFrames(t *testing.T) {
	tone := NewTone(44100, DefaultFrequency, DefaultVolume)
	n, err := tone.Read(make([]byte, 10))
	assert.NoError(t, err)
	assert.Equal(t, 8, n)
}

func TestToneClampsVolume(t *testing.T) {
	assert.Equal(t, int16(32767), NewTone(8000, 440, 3).amplitude)
	assert.Equal(t, int16(0), NewTone(8000, 440, -1).amplitude)
}
