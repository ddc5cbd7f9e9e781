// Package asm assembles CHIP-8 source text in the conventional mnemonic
// syntax (CLS, LD V0, 0x12, DRW V0, V1, 5, ...) into a program image that
// loads at cpu.ProgramStart.
package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"gochip8/pkg/cpu"
)

// Instruction families.
const (
	famJP    = 0x1
	famCALL  = 0x2
	famSEI   = 0x3
	famSNEI  = 0x4
	famSER   = 0x5
	famLDI   = 0x6
	famADDI  = 0x7
	famALU   = 0x8
	famSNER  = 0x9
	famLDIdx = 0xA
	famJPV0  = 0xB
	famRND   = 0xC
	famDRW   = 0xD
	famKey   = 0xE
	famMisc  = 0xF
)

var zeroOperandOps = map[string]cpu.Opcode{
	"CLS": 0x00E0,
	"RET": 0x00EE,
}

// aluOps are the 8XYN register-register operations, keyed to N.
var aluOps = map[string]uint8{
	"OR":   0x1,
	"AND":  0x2,
	"XOR":  0x3,
	"SUB":  0x5,
	"SHR":  0x6,
	"SUBN": 0x7,
	"SHL":  0xE,
}

var keyOps = map[string]uint8{
	"SKP":  0x9E,
	"SKNP": 0xA1,
}

var knownMnemonics = map[string]bool{
	"JP": true, "CALL": true, "SE": true, "SNE": true, "LD": true,
	"ADD": true, "RND": true, "DRW": true,
}

type Assembler struct {
	labels map[string]uint16
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels: make(map[string]uint16),
	}
}

// Assemble returns the program image and a map from image offset to the
// source line that produced it.
func Assemble(code string) ([]byte, map[uint16]int, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) ([]byte, map[uint16]int, error) {
	lines := strings.Split(code, "\n")

	if err := a.pass1(lines); err != nil {
		return nil, nil, err
	}

	return a.pass2(lines)
}

// pass1 assigns addresses to labels.
func (a *Assembler) pass1(lines []string) error {
	address := uint32(cpu.ProgramStart)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return err
		}

		for _, lbl := range p.labels {
			key := normalizeLabel(lbl)
			if _, exists := a.labels[key]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", lbl, lineNo)
			}
			a.labels[key] = uint16(address)
		}

		if p.mnemonic == "" {
			continue
		}

		switch p.mnemonic {
		case ".ORG":
			target, err := parseNumber(p.operands[0], cpu.MemorySize-1)
			if err != nil {
				return fmt.Errorf("invalid .ORG value on line %d: %w", lineNo, err)
			}
			if uint32(target) < address {
				return fmt.Errorf("cannot move origin backward on line %d", lineNo)
			}
			address = uint32(target)
			continue

		case ".BYTE":
			if len(p.operands) == 0 {
				return fmt.Errorf(".BYTE expects at least one operand on line %d", lineNo)
			}
			address += uint32(len(p.operands))

		case ".WORD":
			if len(p.operands) != 1 {
				return fmt.Errorf(".WORD expects exactly one operand on line %d", lineNo)
			}
			address += 2

		default:
			if !isInstruction(p.mnemonic) {
				return fmt.Errorf("unknown instruction on line %d: %s", lineNo, p.mnemonic)
			}
			address += 2
		}

		if address > cpu.MemorySize {
			return fmt.Errorf("program too large near line %d", lineNo)
		}
	}

	return nil
}

// pass2 emits bytes with every label resolved.
func (a *Assembler) pass2(lines []string) ([]byte, map[uint16]int, error) {
	program := make([]byte, 0)
	sourceMap := make(map[uint16]int)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, nil, err
		}

		if p.mnemonic == "" {
			continue
		}

		ops := p.operands

		switch p.mnemonic {
		case ".ORG":
			target, _ := parseNumber(ops[0], cpu.MemorySize-1)
			padding := int(target) - int(cpu.ProgramStart) - len(program)
			if padding > 0 {
				program = append(program, make([]byte, padding)...)
			}
			continue

		case ".BYTE":
			sourceMap[uint16(len(program))] = lineNo
			for _, op := range ops {
				val, err := a.parseValue(op, 0xFF, lineNo)
				if err != nil {
					return nil, nil, err
				}
				program = append(program, byte(val))
			}
			continue

		case ".WORD":
			sourceMap[uint16(len(program))] = lineNo
			val, err := a.parseValue(ops[0], 0xFFFF, lineNo)
			if err != nil {
				return nil, nil, err
			}
			program = append(program, byte(val>>8), byte(val))
			continue
		}

		sourceMap[uint16(len(program))] = lineNo
		instr, err := a.encode(p.mnemonic, ops, lineNo)
		if err != nil {
			return nil, nil, err
		}
		program = append(program, byte(instr>>8), byte(instr))
	}

	return program, sourceMap, nil
}

// encode assembles one instruction.
func (a *Assembler) encode(mnemonic string, ops []string, lineNo int) (cpu.Opcode, error) {
	if opcode, ok := zeroOperandOps[mnemonic]; ok {
		if len(ops) != 0 {
			return 0, fmt.Errorf("%s expects 0 operands on line %d", mnemonic, lineNo)
		}
		return opcode, nil
	}

	if n, ok := aluOps[mnemonic]; ok {
		// SHR and SHL accept a single register; VY is ignored by the machine.
		if (n == 0x6 || n == 0xE) && len(ops) == 1 {
			ops = append(ops, "V0")
		}
		x, y, err := twoRegisters(mnemonic, ops, lineNo)
		if err != nil {
			return 0, err
		}
		return cpu.EncodeInstruction(famALU, x, y, n), nil
	}

	if kk, ok := keyOps[mnemonic]; ok {
		if len(ops) != 1 {
			return 0, fmt.Errorf("%s expects 1 operand on line %d", mnemonic, lineNo)
		}
		x, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		return cpu.EncodeImmediate(famKey, x, kk), nil
	}

	switch mnemonic {
	case "JP":
		switch {
		case len(ops) == 1:
			addr, err := a.parseAddress(ops[0], lineNo)
			return cpu.EncodeAddress(famJP, addr), err
		case len(ops) == 2 && strings.EqualFold(ops[0], "V0"):
			addr, err := a.parseAddress(ops[1], lineNo)
			return cpu.EncodeAddress(famJPV0, addr), err
		}
		return 0, fmt.Errorf("JP expects an address or V0, address on line %d", lineNo)

	case "CALL":
		if len(ops) != 1 {
			return 0, fmt.Errorf("CALL expects 1 operand on line %d", lineNo)
		}
		addr, err := a.parseAddress(ops[0], lineNo)
		return cpu.EncodeAddress(famCALL, addr), err

	case "SE":
		return a.compare(mnemonic, ops, famSEI, famSER, lineNo)

	case "SNE":
		return a.compare(mnemonic, ops, famSNEI, famSNER, lineNo)

	case "ADD":
		if len(ops) != 2 {
			return 0, fmt.Errorf("ADD expects 2 operands on line %d", lineNo)
		}
		if strings.EqualFold(ops[0], "I") {
			x, err := parseRegister(ops[1], lineNo)
			return cpu.EncodeImmediate(famMisc, x, 0x1E), err
		}
		x, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		if y, ok := registerIndex(ops[1]); ok {
			return cpu.EncodeInstruction(famALU, x, y, 0x4), nil
		}
		kk, err := a.parseValue(ops[1], 0xFF, lineNo)
		return cpu.EncodeImmediate(famADDI, x, uint8(kk)), err

	case "RND":
		if len(ops) != 2 {
			return 0, fmt.Errorf("RND expects 2 operands on line %d", lineNo)
		}
		x, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		kk, err := a.parseValue(ops[1], 0xFF, lineNo)
		return cpu.EncodeImmediate(famRND, x, uint8(kk)), err

	case "DRW":
		if len(ops) != 3 {
			return 0, fmt.Errorf("DRW expects 3 operands on line %d", lineNo)
		}
		x, y, err := twoRegisters(mnemonic, ops[:2], lineNo)
		if err != nil {
			return 0, err
		}
		n, err := a.parseValue(ops[2], 0xF, lineNo)
		return cpu.EncodeInstruction(famDRW, x, y, uint8(n)), err

	case "LD":
		if len(ops) != 2 {
			return 0, fmt.Errorf("LD expects 2 operands on line %d", lineNo)
		}
		return a.load(ops[0], ops[1], lineNo)
	}

	return 0, fmt.Errorf("unknown instruction on line %d: %s", lineNo, mnemonic)
}

// compare encodes SE/SNE against either an immediate byte or a register.
func (a *Assembler) compare(mnemonic string, ops []string, immFamily, regFamily uint8, lineNo int) (cpu.Opcode, error) {
	if len(ops) != 2 {
		return 0, fmt.Errorf("%s expects 2 operands on line %d", mnemonic, lineNo)
	}
	x, err := parseRegister(ops[0], lineNo)
	if err != nil {
		return 0, err
	}
	if y, ok := registerIndex(ops[1]); ok {
		return cpu.EncodeInstruction(regFamily, x, y, 0), nil
	}
	kk, err := a.parseValue(ops[1], 0xFF, lineNo)
	return cpu.EncodeImmediate(immFamily, x, uint8(kk)), err
}

// load encodes the many forms of LD.
func (a *Assembler) load(dst, src string, lineNo int) (cpu.Opcode, error) {
	switch strings.ToUpper(dst) {
	case "I":
		addr, err := a.parseAddress(src, lineNo)
		return cpu.EncodeAddress(famLDIdx, addr), err
	case "DT":
		x, err := parseRegister(src, lineNo)
		return cpu.EncodeImmediate(famMisc, x, 0x15), err
	case "ST":
		x, err := parseRegister(src, lineNo)
		return cpu.EncodeImmediate(famMisc, x, 0x18), err
	case "F":
		x, err := parseRegister(src, lineNo)
		return cpu.EncodeImmediate(famMisc, x, 0x29), err
	case "B":
		x, err := parseRegister(src, lineNo)
		return cpu.EncodeImmediate(famMisc, x, 0x33), err
	case "[I]":
		x, err := parseRegister(src, lineNo)
		return cpu.EncodeImmediate(famMisc, x, 0x55), err
	}

	x, err := parseRegister(dst, lineNo)
	if err != nil {
		return 0, err
	}
	switch strings.ToUpper(src) {
	case "DT":
		return cpu.EncodeImmediate(famMisc, x, 0x07), nil
	case "K":
		return cpu.EncodeImmediate(famMisc, x, 0x0A), nil
	case "[I]":
		return cpu.EncodeImmediate(famMisc, x, 0x65), nil
	}
	if y, ok := registerIndex(src); ok {
		return cpu.EncodeInstruction(famALU, x, y, 0x0), nil
	}
	kk, err := a.parseValue(src, 0xFF, lineNo)
	return cpu.EncodeImmediate(famLDI, x, uint8(kk)), err
}

func twoRegisters(mnemonic string, ops []string, lineNo int) (x, y uint8, err error) {
	if len(ops) != 2 {
		return 0, 0, fmt.Errorf("%s expects 2 registers on line %d", mnemonic, lineNo)
	}
	if x, err = parseRegister(ops[0], lineNo); err != nil {
		return 0, 0, err
	}
	if y, err = parseRegister(ops[1], lineNo); err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}

		beforeColon := strings.TrimSpace(line[:colon])
		if strings.ContainsAny(beforeColon, " \t") {
			break
		}

		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}

		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	fields := strings.Fields(normalizeInstructionText(line))
	if len(fields) == 0 {
		return p, nil
	}

	p.mnemonic = strings.ToUpper(fields[0])
	if len(fields) > 1 {
		p.operands = fields[1:]
	}

	if p.mnemonic == ".ORG" && len(p.operands) != 1 {
		return p, fmt.Errorf(".ORG expects exactly one operand on line %d", lineNo)
	}

	return p, nil
}

func stripComments(line string) string {
	semicolon := strings.Index(line, ";")
	doubleSlash := strings.Index(line, "//")

	cut := -1
	if semicolon >= 0 {
		cut = semicolon
	}
	if doubleSlash >= 0 && (cut == -1 || doubleSlash < cut) {
		cut = doubleSlash
	}
	if cut >= 0 {
		return line[:cut]
	}
	return line
}

func normalizeInstructionText(line string) string {
	return strings.ReplaceAll(line, ",", " ")
}

// registerIndex parses V0-VF.
func registerIndex(token string) (uint8, bool) {
	if len(token) != 2 || (token[0] != 'V' && token[0] != 'v') {
		return 0, false
	}
	n, err := strconv.ParseUint(token[1:], 16, 8)
	if err != nil {
		return 0, false
	}
	return uint8(n), true
}

func parseRegister(token string, lineNo int) (uint8, error) {
	if x, ok := registerIndex(token); ok {
		return x, nil
	}
	return 0, fmt.Errorf("invalid register '%s' on line %d", token, lineNo)
}

// parseNumber accepts decimal, 0x hex, 0b binary and #hex literals.
func parseNumber(token string, maxValue uint64) (uint64, error) {
	s := token
	base := 0
	if strings.HasPrefix(s, "#") {
		s, base = s[1:], 16
	}
	value, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, err
	}
	if value > maxValue {
		return 0, fmt.Errorf("value %s exceeds 0x%X", token, maxValue)
	}
	return value, nil
}

// parseValue resolves a numeric literal or a label.
func (a *Assembler) parseValue(token string, maxValue uint64, lineNo int) (uint16, error) {
	if value, err := parseNumber(token, maxValue); err == nil {
		return uint16(value), nil
	} else if _, numErr := strconv.ParseUint(strings.TrimPrefix(token, "#"), 0, 64); numErr == nil {
		return 0, fmt.Errorf("immediate out of range on line %d: %s", lineNo, token)
	}

	if addr, ok := a.labels[normalizeLabel(token)]; ok {
		if uint64(addr) > maxValue {
			return 0, fmt.Errorf("label '%s' does not fit operand on line %d", token, lineNo)
		}
		return addr, nil
	}

	if isIdentifier(token) {
		return 0, fmt.Errorf("undefined label '%s' on line %d", token, lineNo)
	}

	return 0, fmt.Errorf("invalid immediate '%s' on line %d", token, lineNo)
}

func (a *Assembler) parseAddress(token string, lineNo int) (uint16, error) {
	return a.parseValue(token, 0xFFF, lineNo)
}

func isInstruction(mnemonic string) bool {
	if _, ok := zeroOperandOps[mnemonic]; ok {
		return true
	}
	if _, ok := aluOps[mnemonic]; ok {
		return true
	}
	if _, ok := keyOps[mnemonic]; ok {
		return true
	}
	return knownMnemonics[mnemonic]
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

func normalizeLabel(label string) string {
	return strings.ToUpper(label)
}
