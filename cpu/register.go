package cpu

import (
	"fmt"
)

// Word is the native 16-bit unit of storage. Arithmetic on words wraps.
type Word = uint16

// Register identifies one of the addressable register slots.
type Register uint8

//go:generate go tool stringer -linecomment -type=Register
const (
	REG_R0   = Register(0) // R0
	REG_R1   = Register(1) // R1
	REG_R2   = Register(2) // R2
	REG_R3   = Register(3) // R3
	REG_R4   = Register(4) // R4
	REG_R5   = Register(5) // R5
	REG_R6   = Register(6) // R6
	REG_R7   = Register(7) // R7
	REG_PC   = Register(8) // PC
	REG_COND = Register(9) // COND
)

// REGISTER_COUNT is the number of register slots, including PC and COND.
const REGISTER_COUNT = 10

// Condition flags held in REG_COND.
const (
	COND_P = Word(1 << 0) // Positive
	COND_Z = Word(1 << 1) // Zero
	COND_N = Word(1 << 2) // Negative
)

// PC_RESET is the program counter value after a reset.
const PC_RESET = Word(0x3000)

var _cpu_defines = map[string]string{
	"PC_RESET": fmt.Sprintf("%#x", PC_RESET),
	"COND_P":   fmt.Sprintf("%#x", COND_P),
	"COND_Z":   fmt.Sprintf("%#x", COND_Z),
	"COND_N":   fmt.Sprintf("%#x", COND_N),
}

// General returns true if the register is one of R0-R7.
func (reg Register) General() bool {
	return reg <= REG_R7
}

func (Register) argument() {}

// condOf returns the single condition flag describing value as signed.
func condOf(value Word) Word {
	switch {
	case value == 0:
		return COND_Z
	case value&0x8000 != 0:
		return COND_N
	default:
		return COND_P
	}
}

// condString formats a condition register value as its flag letters.
func condString(cond Word) (text string) {
	for _, flag := range []struct {
		bit    Word
		letter string
	}{{COND_N, "n"}, {COND_Z, "z"}, {COND_P, "p"}} {
		if cond&flag.bit != 0 {
			text += flag.letter
		} else {
			text += "-"
		}
	}

	return
}
