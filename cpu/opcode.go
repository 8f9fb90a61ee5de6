package cpu

import (
	"fmt"
)

// Opcode is the top four bits of an instruction word.
type Opcode uint8

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_BR   = Opcode(0b0000) // BR
	OP_ADD  = Opcode(0b0001) // ADD
	OP_LD   = Opcode(0b0010) // LD
	OP_ST   = Opcode(0b0011) // ST
	OP_JSR  = Opcode(0b0100) // JSR
	OP_AND  = Opcode(0b0101) // AND
	OP_LDR  = Opcode(0b0110) // LDR
	OP_STR  = Opcode(0b0111) // STR
	OP_RTI  = Opcode(0b1000) // RTI
	OP_NOT  = Opcode(0b1001) // NOT
	OP_LDI  = Opcode(0b1010) // LDI
	OP_STI  = Opcode(0b1011) // STI
	OP_JMP  = Opcode(0b1100) // JMP
	OP_RES  = Opcode(0b1101) // RES
	OP_LEA  = Opcode(0b1110) // LEA
	OP_TRAP = Opcode(0b1111) // TRAP
)

// Code is a raw instruction word.
type Code Word

// Opcode returns the opcode field of the instruction word.
func (code Code) Opcode() Opcode {
	return Opcode((code >> 12) & 0xf)
}

// reg returns the 3-bit register field at bit position pos.
func (code Code) reg(pos int) Register {
	return Register((code >> pos) & 0x7)
}

// bit returns true if the bit at position pos is set.
func (code Code) bit(pos int) bool {
	return (code>>pos)&1 != 0
}

// signed returns the low 'width' bits of the word, sign extended.
func (code Code) signed(width int) Word {
	return signExtend(Word(code), width)
}

// signExtend sign extends the low 'width' bits of value to a full word.
func signExtend(value Word, width int) Word {
	value &= (1 << width) - 1
	if (value>>(width-1))&1 != 0 {
		value |= Word(0xffff) << width
	}
	return value
}

// Argument is the second operand of ADD and AND: either a Register or an
// Immediate.
type Argument interface {
	String() string
	argument()
}

// Immediate is a sign-extended 5-bit immediate operand.
type Immediate Word

func (Immediate) argument() {}

func (imm Immediate) String() string {
	return fmt.Sprintf("#%d", int16(imm))
}

// Instruction is a decoded instruction word. Each opcode has its own
// variant, carrying only the fields its encoding defines.
type Instruction interface {
	// Opcode returns the opcode of the instruction.
	Opcode() Opcode
	// Code returns the encoded instruction word.
	Code() Code
	// String returns the assembly language form of the instruction.
	String() string

	instruction()
}

type Add struct {
	Dr, Sr1 Register
	Arg     Argument
}

type And struct {
	Dr, Sr1 Register
	Arg     Argument
}

// Br branches when any selected flag is set in COND.
type Br struct {
	N, Z, P  bool
	PcOffset Word
}

type Jmp struct {
	BaseR Register
}

type Jsr struct {
	PcOffset Word
}

type Jsrr struct {
	BaseR Register
}

type Ld struct {
	Dr       Register
	PcOffset Word
}

// Ldi loads through a pointer stored at PC + PcOffset.
type Ldi struct {
	Dr       Register
	PcOffset Word
}

type Ldr struct {
	Dr, BaseR Register
	Offset    Word
}

// Lea loads the effective address itself, not the memory it points to.
type Lea struct {
	Dr       Register
	PcOffset Word
}

type Not struct {
	Dr, Sr Register
}

type Rti struct{}

type St struct {
	Sr       Register
	PcOffset Word
}

// Sti stores through a pointer stored at PC + PcOffset.
type Sti struct {
	Sr       Register
	PcOffset Word
}

type Str struct {
	Sr, BaseR Register
	Offset    Word
}

type Trap struct {
	Vector TrapVector
}

func (Add) instruction()  {}
func (And) instruction()  {}
func (Br) instruction()   {}
func (Jmp) instruction()  {}
func (Jsr) instruction()  {}
func (Jsrr) instruction() {}
func (Ld) instruction()   {}
func (Ldi) instruction()  {}
func (Ldr) instruction()  {}
func (Lea) instruction()  {}
func (Not) instruction()  {}
func (Rti) instruction()  {}
func (St) instruction()   {}
func (Sti) instruction()  {}
func (Str) instruction()  {}
func (Trap) instruction() {}

func (Add) Opcode() Opcode  { return OP_ADD }
func (And) Opcode() Opcode  { return OP_AND }
func (Br) Opcode() Opcode   { return OP_BR }
func (Jmp) Opcode() Opcode  { return OP_JMP }
func (Jsr) Opcode() Opcode  { return OP_JSR }
func (Jsrr) Opcode() Opcode { return OP_JSR }
func (Ld) Opcode() Opcode   { return OP_LD }
func (Ldi) Opcode() Opcode  { return OP_LDI }
func (Ldr) Opcode() Opcode  { return OP_LDR }
func (Lea) Opcode() Opcode  { return OP_LEA }
func (Not) Opcode() Opcode  { return OP_NOT }
func (Rti) Opcode() Opcode  { return OP_RTI }
func (St) Opcode() Opcode   { return OP_ST }
func (Sti) Opcode() Opcode  { return OP_STI }
func (Str) Opcode() Opcode  { return OP_STR }
func (Trap) Opcode() Opcode { return OP_TRAP }

// makeCode packs an opcode with its operand bits.
func makeCode(op Opcode, bits Word) Code {
	return Code(Word(op)<<12 | (bits & 0x0fff))
}

// makeArith encodes the shared ADD/AND layout.
func makeArith(op Opcode, dr, sr1 Register, arg Argument) Code {
	bits := Word(dr&7)<<9 | Word(sr1&7)<<6
	switch arg := arg.(type) {
	case Register:
		bits |= Word(arg & 7)
	case Immediate:
		bits |= 1<<5 | (Word(arg) & 0x1f)
	default:
		panic("unknown argument")
	}
	return makeCode(op, bits)
}

// makePcRelative encodes the shared LD/LDI/LEA/ST/STI layout.
func makePcRelative(op Opcode, reg Register, offset Word) Code {
	return makeCode(op, Word(reg&7)<<9|(offset&0x1ff))
}

// makeBaseOffset encodes the shared LDR/STR layout.
func makeBaseOffset(op Opcode, reg, base Register, offset Word) Code {
	return makeCode(op, Word(reg&7)<<9|Word(base&7)<<6|(offset&0x3f))
}

func (ins Add) Code() Code { return makeArith(OP_ADD, ins.Dr, ins.Sr1, ins.Arg) }
func (ins And) Code() Code { return makeArith(OP_AND, ins.Dr, ins.Sr1, ins.Arg) }

func (ins Br) Code() Code {
	var bits Word
	if ins.N {
		bits |= 1 << 11
	}
	if ins.Z {
		bits |= 1 << 10
	}
	if ins.P {
		bits |= 1 << 9
	}
	return makeCode(OP_BR, bits|(ins.PcOffset&0x1ff))
}

func (ins Jmp) Code() Code  { return makeCode(OP_JMP, Word(ins.BaseR&7)<<6) }
func (ins Jsr) Code() Code  { return makeCode(OP_JSR, 1<<11|(ins.PcOffset&0x7ff)) }
func (ins Jsrr) Code() Code { return makeCode(OP_JSR, Word(ins.BaseR&7)<<6) }
func (ins Ld) Code() Code   { return makePcRelative(OP_LD, ins.Dr, ins.PcOffset) }
func (ins Ldi) Code() Code  { return makePcRelative(OP_LDI, ins.Dr, ins.PcOffset) }
func (ins Ldr) Code() Code  { return makeBaseOffset(OP_LDR, ins.Dr, ins.BaseR, ins.Offset) }
func (ins Lea) Code() Code  { return makePcRelative(OP_LEA, ins.Dr, ins.PcOffset) }
func (ins Not) Code() Code  { return makeCode(OP_NOT, Word(ins.Dr&7)<<9|Word(ins.Sr&7)<<6|0x3f) }
func (ins Rti) Code() Code  { return makeCode(OP_RTI, 0) }
func (ins St) Code() Code   { return makePcRelative(OP_ST, ins.Sr, ins.PcOffset) }
func (ins Sti) Code() Code  { return makePcRelative(OP_STI, ins.Sr, ins.PcOffset) }
func (ins Str) Code() Code  { return makeBaseOffset(OP_STR, ins.Sr, ins.BaseR, ins.Offset) }
func (ins Trap) Code() Code { return makeCode(OP_TRAP, Word(ins.Vector)) }

// offsetString formats a sign-extended offset.
func offsetString(offset Word) string {
	return fmt.Sprintf("#%d", int16(offset))
}

func (ins Add) String() string {
	return fmt.Sprintf("ADD %v, %v, %v", ins.Dr, ins.Sr1, ins.Arg)
}

func (ins And) String() string {
	return fmt.Sprintf("AND %v, %v, %v", ins.Dr, ins.Sr1, ins.Arg)
}

func (ins Br) String() string {
	op := "BR"
	if ins.N {
		op += "n"
	}
	if ins.Z {
		op += "z"
	}
	if ins.P {
		op += "p"
	}
	return fmt.Sprintf("%v %v", op, offsetString(ins.PcOffset))
}

func (ins Jmp) String() string {
	if ins.BaseR == REG_R7 {
		return "RET"
	}
	return fmt.Sprintf("JMP %v", ins.BaseR)
}

func (ins Jsr) String() string  { return fmt.Sprintf("JSR %v", offsetString(ins.PcOffset)) }
func (ins Jsrr) String() string { return fmt.Sprintf("JSRR %v", ins.BaseR) }
func (ins Ld) String() string   { return fmt.Sprintf("LD %v, %v", ins.Dr, offsetString(ins.PcOffset)) }
func (ins Ldi) String() string  { return fmt.Sprintf("LDI %v, %v", ins.Dr, offsetString(ins.PcOffset)) }
func (ins Lea) String() string  { return fmt.Sprintf("LEA %v, %v", ins.Dr, offsetString(ins.PcOffset)) }
func (ins Not) String() string  { return fmt.Sprintf("NOT %v, %v", ins.Dr, ins.Sr) }
func (ins Rti) String() string  { return "RTI" }
func (ins St) String() string   { return fmt.Sprintf("ST %v, %v", ins.Sr, offsetString(ins.PcOffset)) }
func (ins Sti) String() string  { return fmt.Sprintf("STI %v, %v", ins.Sr, offsetString(ins.PcOffset)) }
func (ins Trap) String() string { return fmt.Sprintf("TRAP %v", ins.Vector) }

func (ins Ldr) String() string {
	return fmt.Sprintf("LDR %v, %v, %v", ins.Dr, ins.BaseR, offsetString(ins.Offset))
}

func (ins Str) String() string {
	return fmt.Sprintf("STR %v, %v, %v", ins.Sr, ins.BaseR, offsetString(ins.Offset))
}

// Decode decodes an instruction word.
//
// Bits that an encoding defines as fixed must hold their fixed value, so
// that every decoded Instruction encodes back to the same word.
func Decode(code Code) (ins Instruction, err error) {
	switch code.Opcode() {
	case OP_ADD, OP_AND:
		dr, sr1 := code.reg(9), code.reg(6)
		var arg Argument
		if code.bit(5) {
			arg = Immediate(code.signed(5))
		} else {
			if code&0x18 != 0 {
				err = ErrOpcode(code)
				return
			}
			arg = code.reg(0)
		}
		if code.Opcode() == OP_ADD {
			ins = Add{Dr: dr, Sr1: sr1, Arg: arg}
		} else {
			ins = And{Dr: dr, Sr1: sr1, Arg: arg}
		}
	case OP_BR:
		ins = Br{N: code.bit(11), Z: code.bit(10), P: code.bit(9), PcOffset: code.signed(9)}
	case OP_JMP:
		if code&0x0e3f != 0 {
			err = ErrOpcode(code)
			return
		}
		ins = Jmp{BaseR: code.reg(6)}
	case OP_JSR:
		if code.bit(11) {
			ins = Jsr{PcOffset: code.signed(11)}
		} else {
			if code&0x063f != 0 {
				err = ErrOpcode(code)
				return
			}
			ins = Jsrr{BaseR: code.reg(6)}
		}
	case OP_LD:
		ins = Ld{Dr: code.reg(9), PcOffset: code.signed(9)}
	case OP_LDI:
		ins = Ldi{Dr: code.reg(9), PcOffset: code.signed(9)}
	case OP_LDR:
		ins = Ldr{Dr: code.reg(9), BaseR: code.reg(6), Offset: code.signed(6)}
	case OP_LEA:
		ins = Lea{Dr: code.reg(9), PcOffset: code.signed(9)}
	case OP_NOT:
		if code&0x3f != 0x3f {
			err = ErrOpcode(code)
			return
		}
		ins = Not{Dr: code.reg(9), Sr: code.reg(6)}
	case OP_RTI:
		if code&0x0fff != 0 {
			err = ErrOpcode(code)
			return
		}
		ins = Rti{}
	case OP_ST:
		ins = St{Sr: code.reg(9), PcOffset: code.signed(9)}
	case OP_STI:
		ins = Sti{Sr: code.reg(9), PcOffset: code.signed(9)}
	case OP_STR:
		ins = Str{Sr: code.reg(9), BaseR: code.reg(6), Offset: code.signed(6)}
	case OP_TRAP:
		if code&0x0f00 != 0 {
			err = ErrOpcode(code)
			return
		}
		ins = Trap{Vector: TrapVector(code & 0xff)}
	default:
		err = ErrOpcode(code)
	}

	return
}

// String returns the assembly language form of the word, or a .FILL
// directive if the word does not decode.
func (code Code) String() string {
	ins, err := Decode(code)
	if err != nil {
		return fmt.Sprintf(".FILL x%04X", Word(code))
	}
	return ins.String()
}
