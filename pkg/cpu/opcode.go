package cpu

// Opcode is a raw 16-bit instruction word. Its accessors extract the fixed
// operand fields without any validation.
type Opcode uint16

// X returns the register index in bits 8-11.
func (o Opcode) X() uint8 { return uint8(o>>8) & 0x0F }

// Y returns the register index in bits 4-7.
func (o Opcode) Y() uint8 { return uint8(o>>4) & 0x0F }

// KK returns the immediate byte in bits 0-7.
func (o Opcode) KK() uint8 { return uint8(o) }

// Addr returns the 12-bit address in bits 0-11.
func (o Opcode) Addr() uint16 { return uint16(o) & 0x0FFF }

// N returns the low nibble, the sprite height of DXYN.
func (o Opcode) N() uint8 { return uint8(o) & 0x0F }

// Family returns the high nibble that selects the instruction group.
func (o Opcode) Family() uint8 { return uint8(o >> 12) }

// handlerFunc executes one decoded instruction against the CPU. It returns
// whether the framebuffer was mutated.
type handlerFunc func(c *CPU, op Opcode) (bool, error)

// instruction couples a mnemonic with its handler.
type instruction struct {
	Name    string
	Execute handlerFunc
}

// Decode classifies op and returns its mnemonic. ok is false for words that
// match no instruction pattern.
func Decode(op Opcode) (name string, ok bool) {
	ins := lookup(op)
	if ins == nil {
		return "", false
	}
	return ins.Name, true
}

// EncodeInstruction assembles an instruction word from a family nibble and
// its X, Y and low-byte fields. It is used by tests and tooling that build
// programs in memory.
func EncodeInstruction(family, x, y, n uint8) Opcode {
	return Opcode(uint16(family&0x0F)<<12 | uint16(x&0x0F)<<8 | uint16(y&0x0F)<<4 | uint16(n&0x0F))
}

// EncodeImmediate assembles a family/X/KK instruction word such as 6XKK.
func EncodeImmediate(family, x, kk uint8) Opcode {
	return Opcode(uint16(family&0x0F)<<12 | uint16(x&0x0F)<<8 | uint16(kk))
}

// EncodeAddress assembles a family/ADDR instruction word such as 1NNN.
func EncodeAddress(family uint8, addr uint16) Opcode {
	return Opcode(uint16(family&0x0F)<<12 | addr&0x0FFF)
}

var (
	insCLS  = &instruction{"CLS", opClear}
	insRET  = &instruction{"RET", opReturn}
	insJP   = &instruction{"JP", opJump}
	insCALL = &instruction{"CALL", opCall}
	insSEB  = &instruction{"SE", opSkipEqualImm}
	insSNEB = &instruction{"SNE", opSkipNotEqualImm}
	insSER  = &instruction{"SE", opSkipEqualReg}
	insLDB  = &instruction{"LD", opLoadImm}
	insADDB = &instruction{"ADD", opAddImm}
	insSNER = &instruction{"SNE", opSkipNotEqualReg}
	insLDI  = &instruction{"LD I", opLoadIndex}
	insJPV0 = &instruction{"JP V0", opJumpOffset}
	insRND  = &instruction{"RND", opRandom}
	insDRW  = &instruction{"DRW", opDraw}
)

// aluTable is indexed by the low nibble of 8XYN.
var aluTable = [16]*instruction{
	0x0: {"LD", opMove},
	0x1: {"OR", opOr},
	0x2: {"AND", opAnd},
	0x3: {"XOR", opXor},
	0x4: {"ADD", opAddReg},
	0x5: {"SUB", opSub},
	0x6: {"SHR", opShiftRight},
	0x7: {"SUBN", opSubN},
	0xE: {"SHL", opShiftLeft},
}

// keyTable is indexed by the low byte of EXKK.
var keyTable = map[uint8]*instruction{
	0x9E: {"SKP", opSkipPressed},
	0xA1: {"SKNP", opSkipNotPressed},
}

// miscTable is indexed by the low byte of FXKK.
var miscTable = map[uint8]*instruction{
	0x07: {"LD DT", opGetDelay},
	0x0A: {"LD K", opWaitKey},
	0x15: {"SET DT", opSetDelay},
	0x18: {"SET ST", opSetSound},
	0x1E: {"ADD I", opAddIndex},
	0x29: {"LD F", opFontChar},
	0x33: {"LD B", opBCD},
	0x55: {"LD [I]", opStoreRegs},
	0x65: {"LD V, [I]", opLoadRegs},
}

// lookup returns the instruction for op, or nil if op is invalid.
func lookup(op Opcode) *instruction {
	switch op.Family() {
	case 0x0:
		switch op {
		case 0x00E0:
			return insCLS
		case 0x00EE:
			return insRET
		}
		return nil
	case 0x1:
		return insJP
	case 0x2:
		return insCALL
	case 0x3:
		return insSEB
	case 0x4:
		return insSNEB
	case 0x5:
		if op.N() != 0 {
			return nil
		}
		return insSER
	case 0x6:
		return insLDB
	case 0x7:
		return insADDB
	case 0x8:
		return aluTable[op.N()]
	case 0x9:
		if op.N() != 0 {
			return nil
		}
		return insSNER
	case 0xA:
		return insLDI
	case 0xB:
		return insJPV0
	case 0xC:
		return insRND
	case 0xD:
		return insDRW
	case 0xE:
		return keyTable[op.KK()]
	default:
		return miscTable[op.KK()]
	}
}
