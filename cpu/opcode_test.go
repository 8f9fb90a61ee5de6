package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		code Code
		ins  Instruction
		text string
	}){
		{0x1042, Add{Dr: REG_R0, Sr1: REG_R1, Arg: REG_R2}, "ADD R0, R1, R2"},
		{0x127f, Add{Dr: REG_R1, Sr1: REG_R1, Arg: Immediate(0xffff)}, "ADD R1, R1, #-1"},
		{0x1a6f, Add{Dr: REG_R5, Sr1: REG_R1, Arg: Immediate(15)}, "ADD R5, R1, #15"},
		{0x54a0, And{Dr: REG_R2, Sr1: REG_R2, Arg: Immediate(0)}, "AND R2, R2, #0"},
		{0x5b07, And{Dr: REG_R5, Sr1: REG_R4, Arg: REG_R7}, "AND R5, R4, R7"},
		{0x0402, Br{Z: true, PcOffset: 2}, "BRz #2"},
		{0x09fd, Br{N: true, PcOffset: 0xfffd}, "BRn #-3"},
		{0x0fff, Br{N: true, Z: true, P: true, PcOffset: 0xffff}, "BRnzp #-1"},
		{0x0000, Br{}, "BR #0"},
		{0xc0c0, Jmp{BaseR: REG_R3}, "JMP R3"},
		{0xc1c0, Jmp{BaseR: REG_R7}, "RET"},
		{0x480a, Jsr{PcOffset: 10}, "JSR #10"},
		{0x4c00, Jsr{PcOffset: 0xfc00}, "JSR #-1024"},
		{0x4080, Jsrr{BaseR: REG_R2}, "JSRR R2"},
		{0x2005, Ld{Dr: REG_R0, PcOffset: 5}, "LD R0, #5"},
		{0xa202, Ldi{Dr: REG_R1, PcOffset: 2}, "LDI R1, #2"},
		{0x64ff, Ldr{Dr: REG_R2, BaseR: REG_R3, Offset: 0xffff}, "LDR R2, R3, #-1"},
		{0xe9ff, Lea{Dr: REG_R4, PcOffset: 0xffff}, "LEA R4, #-1"},
		{0x973f, Not{Dr: REG_R3, Sr: REG_R4}, "NOT R3, R4"},
		{0x8000, Rti{}, "RTI"},
		{0x3a01, St{Sr: REG_R5, PcOffset: 1}, "ST R5, #1"},
		{0xbd00, Sti{Sr: REG_R6, PcOffset: 0xff00}, "STI R6, #-256"},
		{0x7e03, Str{Sr: REG_R7, BaseR: REG_R0, Offset: 3}, "STR R7, R0, #3"},
		{0x7e20, Str{Sr: REG_R7, BaseR: REG_R0, Offset: 0xffe0}, "STR R7, R0, #-32"},
		{0xf025, Trap{Vector: TRAP_HALT}, "TRAP HALT"},
		{0xf0ff, Trap{Vector: 0xff}, "TRAP xFF"},
	}

	for _, entry := range table {
		ins, err := Decode(entry.code)
		assert.NoError(err, entry.text)
		assert.Equal(entry.ins, ins, entry.text)
		if ins == nil {
			continue
		}
		assert.Equal(entry.code, ins.Code(), entry.text)
		assert.Equal(entry.text, ins.String())
		assert.Equal(entry.text, entry.code.String())
		assert.Equal(entry.code.Opcode(), ins.Opcode(), entry.text)
	}
}

func TestDecode_Invalid(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		code Code
	}){
		{"reserved", 0xd000},
		{"reserved_bits", 0xdfff},
		{"add_reg_bits", 0x1048},
		{"and_reg_bits", 0x5050},
		{"jmp_dr_bits", 0xc2c0},
		{"jmp_low_bits", 0xc0c1},
		{"jsrr_bits", 0x4280},
		{"jsrr_low_bits", 0x40a0},
		{"not_low_bits", 0x973e},
		{"rti_bits", 0x8001},
		{"trap_bits", 0xf125},
	}

	for _, entry := range table {
		ins, err := Decode(entry.code)
		assert.Nil(ins, entry.name)
		assert.ErrorIs(err, ErrDecode, entry.name)

		var eo ErrOpcode
		assert.True(errors.As(err, &eo), entry.name)
		assert.Equal(entry.code, Code(eo), entry.name)

		assert.Contains(entry.code.String(), ".FILL", entry.name)
	}
}

func TestDecode_AllWords(t *testing.T) {
	assert := assert.New(t)

	valid := 0
	for word := range 0x10000 {
		code := Code(word)
		ins, err := Decode(code)
		if err != nil {
			assert.ErrorIs(err, ErrDecode)
			continue
		}
		valid++
		if code != ins.Code() {
			assert.Equal(code, ins.Code(), "%04x %v", word, ins)
		}
	}

	// Every opcode but RES decodes something.
	assert.Less(valid, 0x10000-0x1000)
	assert.Greater(valid, 0x1000)
}

func TestEncode_RoundTrip(t *testing.T) {
	assert := assert.New(t)

	var table []Instruction

	for reg := REG_R0; reg <= REG_R7; reg++ {
		for imm := -16; imm < 16; imm++ {
			table = append(table,
				Add{Dr: reg, Sr1: REG_R7 - reg, Arg: Immediate(Word(imm))},
				And{Dr: REG_R7 - reg, Sr1: reg, Arg: Immediate(Word(imm))},
			)
		}
		for offset := -32; offset < 32; offset++ {
			table = append(table,
				Ldr{Dr: reg, BaseR: REG_R7 - reg, Offset: Word(offset)},
				Str{Sr: reg, BaseR: REG_R7 - reg, Offset: Word(offset)},
			)
		}
		for offset := -256; offset < 256; offset += 17 {
			table = append(table,
				Ld{Dr: reg, PcOffset: Word(offset)},
				Ldi{Dr: reg, PcOffset: Word(offset)},
				Lea{Dr: reg, PcOffset: Word(offset)},
				St{Sr: reg, PcOffset: Word(offset)},
				Sti{Sr: reg, PcOffset: Word(offset)},
			)
		}
		table = append(table,
			Add{Dr: reg, Sr1: reg, Arg: REG_R7 - reg},
			And{Dr: reg, Sr1: reg, Arg: REG_R7 - reg},
			Not{Dr: reg, Sr: REG_R7 - reg},
			Jmp{BaseR: reg},
			Jsrr{BaseR: reg},
		)
	}

	for offset := -1024; offset < 1024; offset += 33 {
		table = append(table, Jsr{PcOffset: Word(offset)})
	}

	for cond := range 8 {
		for offset := -256; offset < 256; offset += 31 {
			table = append(table, Br{N: cond&4 != 0, Z: cond&2 != 0, P: cond&1 != 0, PcOffset: Word(offset)})
		}
	}

	for vector := range 256 {
		table = append(table, Trap{Vector: TrapVector(vector)})
	}

	table = append(table, Rti{})

	for _, ins := range table {
		again, err := Decode(ins.Code())
		assert.NoError(err, ins.String())
		assert.Equal(ins, again, ins.String())
	}
}

func TestSignExtend(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(Word(0x000f), signExtend(0x0f, 5))
	assert.Equal(Word(0xfff0), signExtend(0x10, 5))
	assert.Equal(Word(0xffff), signExtend(0x1f, 5))
	assert.Equal(Word(0x00ff), signExtend(0x0ff, 9))
	assert.Equal(Word(0xff00), signExtend(0x100, 9))
	assert.Equal(Word(0x03ff), signExtend(0x3ff, 11))
	assert.Equal(Word(0xfc00), signExtend(0x400, 11))
	assert.Equal(Word(0x0001), signExtend(0xffc1, 6))
}

func TestOpcode_String(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("BR", OP_BR.String())
	assert.Equal("TRAP", OP_TRAP.String())
	assert.Equal("RES", OP_RES.String())
	assert.Equal("Opcode(16)", Opcode(16).String())
	assert.Equal("COND", REG_COND.String())
	assert.Equal("Register(10)", Register(10).String())
}
