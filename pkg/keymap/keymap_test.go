package keymap

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/retroenv/retrogolib/assert"
)

func TestDefaultReferenceLayout(t *testing.T) {
	km := Default()

	// Physical (row, col) → logical key, as laid out on the keypad.
	want := map[rune]uint8{
		'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
		'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
		'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
		'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
	}
	for symbol, key := range want {
		got, ok := km.Lookup(symbol)
		if !ok || got != key {
			t.Errorf("Lookup(%q) = (0x%X, %v); want (0x%X, true)", symbol, got, ok, key)
		}
		if r := km.Symbol(key); r != symbol {
			t.Errorf("Symbol(0x%X) = %q; want %q", key, r, symbol)
		}
	}
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	km := Default()
	key, ok := km.Lookup('Q')
	assert.True(t, ok)
	assert.Equal(t, uint8(0x4), key)

	_, ok = km.Lookup('p')
	assert.False(t, ok)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		layout  string
		wantErr bool
	}{
		{"default", DefaultLayout, false},
		{"numpad", "789/456*123-0.+\n", false},
		{"upper case", "1234QWERASDFZXCV", false},
		{"too short", "1234", true},
		{"too long", DefaultLayout + "b", true},
		{"duplicate", "1234qwerasdfzxcc", true},
		{"duplicate mixed case", "1234qwerasdfzxcQ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.layout)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse(%q) error = %v, wantErr %v", tt.layout, err, tt.wantErr)
			}
		})
	}
}

func TestBindingsAndString(t *testing.T) {
	km, err := Parse("ABCDEFGHIJKLMNOP")
	assert.NoError(t, err)
	assert.Equal(t, "abcdefghijklmnop", km.String())

	bindings := km.Bindings()
	assert.Len(t, bindings, 16)
	want := []Binding{
		{'n', 0x0}, {'a', 0x1}, {'b', 0x2}, {'c', 0x3},
		{'e', 0x4}, {'f', 0x5}, {'g', 0x6}, {'i', 0x7},
		{'j', 0x8}, {'k', 0x9}, {'m', 0xA}, {'o', 0xB},
		{'d', 0xC}, {'h', 0xD}, {'l', 0xE}, {'p', 0xF},
	}
	if diff := cmp.Diff(want, bindings); diff != "" {
		t.Errorf("Bindings: (-want, +got)\n%s", diff)
	}
}
