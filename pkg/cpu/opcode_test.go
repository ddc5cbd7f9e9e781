package cpu

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestOpcodeFields(t *testing.T) {
	op := Opcode(0xD7A3)
	assert.Equal(t, uint8(0xD), op.Family())
	assert.Equal(t, uint8(0x7), op.X())
	assert.Equal(t, uint8(0xA), op.Y())
	assert.Equal(t, uint8(0xA3), op.KK())
	assert.Equal(t, uint16(0x7A3), op.Addr())
	assert.Equal(t, uint8(0x3), op.N())
}

func TestEncodeInstruction(t *testing.T) {
	tests := []struct {
		got  Opcode
		want Opcode
	}{
		{EncodeInstruction(0x8, 1, 2, 0x4), 0x8124},
		{EncodeInstruction(0xD, 0xF, 0xE, 0xF), 0xDFEF},
		{EncodeImmediate(0x6, 0xA, 0x42), 0x6A42},
		{EncodeImmediate(0xF, 3, 0x33), 0xF333},
		{EncodeAddress(0x2, 0x345), 0x2345},
		{EncodeAddress(0x1, 0xF200), 0x1200},
	}
	for _, tc := range tests {
		if tc.got != tc.want {
			t.Errorf("expected 0x%04X, got 0x%04X", uint16(tc.want), uint16(tc.got))
		}
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		op   Opcode
		name string
		ok   bool
	}{
		{0x00E0, "CLS", true},
		{0x00EE, "RET", true},
		{0x0000, "", false},
		{0x1ABC, "JP", true},
		{0x2ABC, "CALL", true},
		{0x3012, "SE", true},
		{0x4012, "SNE", true},
		{0x5120, "SE", true},
		{0x5121, "", false},
		{0x6012, "LD", true},
		{0x7012, "ADD", true},
		{0x8120, "LD", true},
		{0x8121, "OR", true},
		{0x8122, "AND", true},
		{0x8123, "XOR", true},
		{0x8124, "ADD", true},
		{0x8125, "SUB", true},
		{0x8126, "SHR", true},
		{0x8127, "SUBN", true},
		{0x8128, "", false},
		{0x812E, "SHL", true},
		{0x9120, "SNE", true},
		{0x9121, "", false},
		{0xA123, "LD I", true},
		{0xB123, "JP V0", true},
		{0xC1FF, "RND", true},
		{0xD125, "DRW", true},
		{0xE19E, "SKP", true},
		{0xE1A1, "SKNP", true},
		{0xE1A2, "", false},
		{0xF107, "LD DT", true},
		{0xF10A, "LD K", true},
		{0xF115, "SET DT", true},
		{0xF118, "SET ST", true},
		{0xF11E, "ADD I", true},
		{0xF129, "LD F", true},
		{0xF133, "LD B", true},
		{0xF155, "LD [I]", true},
		{0xF165, "LD V, [I]", true},
		{0xF166, "", false},
	}
	for _, tc := range tests {
		name, ok := Decode(tc.op)
		if ok != tc.ok || name != tc.name {
			t.Errorf("Decode(0x%04X) = (%q, %v); want (%q, %v)", uint16(tc.op), name, ok, tc.name, tc.ok)
		}
	}
}

// TestDecodeCoversAllWords checks that exactly the documented patterns are
// accepted across the full 16-bit space.
func TestDecodeCoversAllWords(t *testing.T) {
	valid := 0
	for w := 0; w <= 0xFFFF; w++ {
		if _, ok := Decode(Opcode(w)); ok {
			valid++
		}
	}
	// 2 (00E0, 00EE) + 0x1000 each for 1,2,3,4,6,7,A,B,C,D
	// + 0x100 each for 5XY0 and 9XY0 + 9 ALU ops × 0x100
	// + 2 × 0x10 for E and 9 × 0x10 for F.
	want := 2 + 10*0x1000 + 2*0x100 + 9*0x100 + 2*0x10 + 9*0x10
	assert.Equal(t, want, valid)
}
