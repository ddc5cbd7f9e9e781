package cpu

// Handlers validate everything that can fail before they mutate state, so a
// returned error leaves the CPU untouched apart from PC, which Step restores.

func (c *CPU) skipIf(cond bool) {
	if cond {
		c.PC += 2
	}
}

// 00E0
func opClear(c *CPU, _ Opcode) (bool, error) {
	c.Display.Clear()
	return true, nil
}

// 00EE
func opReturn(c *CPU, _ Opcode) (bool, error) {
	if c.SP == 0 {
		return false, ErrStackUnderflow
	}
	c.SP--
	c.PC = c.Stack[c.SP]
	return false, nil
}

// 1NNN
func opJump(c *CPU, op Opcode) (bool, error) {
	c.PC = op.Addr()
	return false, nil
}

// 2NNN
func opCall(c *CPU, op Opcode) (bool, error) {
	if int(c.SP) >= StackDepth {
		return false, ErrStackOverflow
	}
	c.Stack[c.SP] = c.PC
	c.SP++
	c.PC = op.Addr()
	return false, nil
}

// 3XKK
func opSkipEqualImm(c *CPU, op Opcode) (bool, error) {
	c.skipIf(c.V[op.X()] == op.KK())
	return false, nil
}

// 4XKK
func opSkipNotEqualImm(c *CPU, op Opcode) (bool, error) {
	c.skipIf(c.V[op.X()] != op.KK())
	return false, nil
}

// 5XY0
func opSkipEqualReg(c *CPU, op Opcode) (bool, error) {
	c.skipIf(c.V[op.X()] == c.V[op.Y()])
	return false, nil
}

// 6XKK
func opLoadImm(c *CPU, op Opcode) (bool, error) {
	c.V[op.X()] = op.KK()
	return false, nil
}

// 7XKK: no carry flag.
func opAddImm(c *CPU, op Opcode) (bool, error) {
	c.V[op.X()] += op.KK()
	return false, nil
}

// 8XY0
func opMove(c *CPU, op Opcode) (bool, error) {
	c.V[op.X()] = c.V[op.Y()]
	return false, nil
}

// 8XY1
func opOr(c *CPU, op Opcode) (bool, error) {
	c.V[op.X()] |= c.V[op.Y()]
	return false, nil
}

// 8XY2
func opAnd(c *CPU, op Opcode) (bool, error) {
	c.V[op.X()] &= c.V[op.Y()]
	return false, nil
}

// 8XY3
func opXor(c *CPU, op Opcode) (bool, error) {
	c.V[op.X()] ^= c.V[op.Y()]
	return false, nil
}

// 8XY4: VF = carry, written after the sum.
func opAddReg(c *CPU, op Opcode) (bool, error) {
	sum := uint16(c.V[op.X()]) + uint16(c.V[op.Y()])
	c.V[op.X()] = uint8(sum)
	c.V[RegF] = boolToFlag(sum > 0xFF)
	return false, nil
}

// 8XY5: VF = not borrow, written after the difference.
func opSub(c *CPU, op Opcode) (bool, error) {
	x, y := c.V[op.X()], c.V[op.Y()]
	c.V[op.X()] = x - y
	c.V[RegF] = boolToFlag(x >= y)
	return false, nil
}

// 8XY6 shifts V[X], not V[Y]. VF is written first.
func opShiftRight(c *CPU, op Opcode) (bool, error) {
	x := c.V[op.X()]
	c.V[RegF] = x & 0x01
	c.V[op.X()] = x >> 1
	return false, nil
}

// 8XY7: VF = not borrow, written after the difference.
func opSubN(c *CPU, op Opcode) (bool, error) {
	x, y := c.V[op.X()], c.V[op.Y()]
	c.V[op.X()] = y - x
	c.V[RegF] = boolToFlag(y >= x)
	return false, nil
}

// 8XYE shifts V[X], not V[Y]. VF is written first.
func opShiftLeft(c *CPU, op Opcode) (bool, error) {
	x := c.V[op.X()]
	c.V[RegF] = x >> 7
	c.V[op.X()] = x << 1
	return false, nil
}

// 9XY0
func opSkipNotEqualReg(c *CPU, op Opcode) (bool, error) {
	c.skipIf(c.V[op.X()] != c.V[op.Y()])
	return false, nil
}

// ANNN
func opLoadIndex(c *CPU, op Opcode) (bool, error) {
	c.I = op.Addr()
	return false, nil
}

// BNNN
func opJumpOffset(c *CPU, op Opcode) (bool, error) {
	c.PC = op.Addr() + uint16(c.V[0])
	return false, nil
}

// CXKK
func opRandom(c *CPU, op Opcode) (bool, error) {
	c.V[op.X()] = c.randomSource().Byte() & op.KK()
	return false, nil
}

// DXYN: draws even when nothing visible changes.
func opDraw(c *CPU, op Opcode) (bool, error) {
	n := int(op.N())
	if err := checkRange("sprite read", c.I, n); err != nil {
		return false, err
	}
	sprite := c.Memory[c.I : int(c.I)+n]
	collision := c.Display.DrawSprite(c.V[op.X()], c.V[op.Y()], sprite)
	c.V[RegF] = boolToFlag(collision)
	return true, nil
}

// EX9E: key indices above 0xF are never pressed.
func opSkipPressed(c *CPU, op Opcode) (bool, error) {
	c.skipIf(c.keyPressed(c.V[op.X()]))
	return false, nil
}

// EXA1
func opSkipNotPressed(c *CPU, op Opcode) (bool, error) {
	c.skipIf(!c.keyPressed(c.V[op.X()]))
	return false, nil
}

func (c *CPU) keyPressed(k uint8) bool {
	return int(k) < NumKeys && c.Keys[k]
}

// FX07
func opGetDelay(c *CPU, op Opcode) (bool, error) {
	c.V[op.X()] = c.Delay
	return false, nil
}

// FX0A stalls by rewinding PC onto itself until a key is down. The host
// keeps stepping, ticking timers and delivering input meanwhile.
func opWaitKey(c *CPU, op Opcode) (bool, error) {
	k, ok := c.firstPressed()
	if !ok {
		c.PC -= 2
		return false, nil
	}
	c.V[op.X()] = k
	return false, nil
}

// FX15
func opSetDelay(c *CPU, op Opcode) (bool, error) {
	c.Delay = c.V[op.X()]
	return false, nil
}

// FX18
func opSetSound(c *CPU, op Opcode) (bool, error) {
	c.Sound = c.V[op.X()]
	return false, nil
}

// FX1E: no overflow flag.
func opAddIndex(c *CPU, op Opcode) (bool, error) {
	c.I += uint16(c.V[op.X()])
	return false, nil
}

// FX29
func opFontChar(c *CPU, op Opcode) (bool, error) {
	c.I = FontBase + uint16(c.V[op.X()])*GlyphSize
	return false, nil
}

// FX33
func opBCD(c *CPU, op Opcode) (bool, error) {
	if err := checkRange("bcd write", c.I, 3); err != nil {
		return false, err
	}
	v := c.V[op.X()]
	c.Memory[c.I] = v / 100
	c.Memory[c.I+1] = v / 10 % 10
	c.Memory[c.I+2] = v % 10
	return false, nil
}

// FX55 stores V0..VX inclusive. I is left unchanged.
func opStoreRegs(c *CPU, op Opcode) (bool, error) {
	n := int(op.X()) + 1
	if err := checkRange("register store", c.I, n); err != nil {
		return false, err
	}
	copy(c.Memory[c.I:int(c.I)+n], c.V[:n])
	return false, nil
}

// FX65 loads V0..VX inclusive. I is left unchanged.
func opLoadRegs(c *CPU, op Opcode) (bool, error) {
	n := int(op.X()) + 1
	if err := checkRange("register load", c.I, n); err != nil {
		return false, err
	}
	copy(c.V[:n], c.Memory[c.I:int(c.I)+n])
	return false, nil
}

func boolToFlag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
