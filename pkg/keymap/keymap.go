// Package keymap maps physical key symbols to the 16 logical keypad keys.
//
// A layout is described by 16 physical symbols in row-major order over a
// 4×4 grid. The logical key at each grid position is fixed by the keypad's
// own arrangement:
//
//	1 2 3 C
//	4 5 6 D
//	7 8 9 E
//	A 0 B F
package keymap

import (
	"fmt"
	"unicode"
)

// DefaultLayout places the keypad on the left-hand block of a QWERTY keyboard.
const DefaultLayout = "1234qwerasdfzxcv"

// padOrder is the logical key at each physical grid position.
var padOrder = [16]uint8{
	0x1, 0x2, 0x3, 0xC,
	0x4, 0x5, 0x6, 0xD,
	0x7, 0x8, 0x9, 0xE,
	0xA, 0x0, 0xB, 0xF,
}

// Binding pairs a physical symbol with its logical key.
type Binding struct {
	Symbol rune
	Key    uint8
}

// Keymap is an immutable physical-to-logical lookup table.
type Keymap struct {
	bySymbol map[rune]uint8
	byKey    [16]rune
}

// Default returns the keymap for DefaultLayout.
func Default() *Keymap {
	km, err := Parse(DefaultLayout)
	if err != nil {
		panic(err)
	}
	return km
}

// Parse builds a keymap from 16 distinct symbols in row-major grid order.
// Letters are matched case-insensitively.
func Parse(layout string) (*Keymap, error) {
	symbols := []rune(layout)
	if len(symbols) != len(padOrder) {
		return nil, fmt.Errorf("keymap layout %q has %d symbols, expected %d", layout, len(symbols), len(padOrder))
	}

	km := &Keymap{bySymbol: make(map[rune]uint8, len(padOrder))}
	for pos, r := range symbols {
		r = unicode.ToLower(r)
		if _, dup := km.bySymbol[r]; dup {
			return nil, fmt.Errorf("keymap layout %q repeats symbol %q", layout, r)
		}
		key := padOrder[pos]
		km.bySymbol[r] = key
		km.byKey[key] = r
	}
	return km, nil
}

// Lookup returns the logical key bound to symbol.
func (km *Keymap) Lookup(symbol rune) (uint8, bool) {
	key, ok := km.bySymbol[unicode.ToLower(symbol)]
	return key, ok
}

// Symbol returns the physical symbol bound to logical key k.
func (km *Keymap) Symbol(k uint8) rune {
	return km.byKey[k&0x0F]
}

// Bindings lists every binding ordered by logical key.
func (km *Keymap) Bindings() []Binding {
	bindings := make([]Binding, 0, len(km.byKey))
	for k, r := range km.byKey {
		bindings = append(bindings, Binding{Symbol: r, Key: uint8(k)})
	}
	return bindings
}

// String returns the layout in row-major grid order.
func (km *Keymap) String() string {
	symbols := make([]rune, len(padOrder))
	for pos, key := range padOrder {
		symbols[pos] = km.byKey[key]
	}
	return string(symbols)
}
