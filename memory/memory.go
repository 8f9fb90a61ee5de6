// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package memory provides the register file and word addressed memory
// backing a cpu.Cpu.
package memory

import (
	"iter"
	"log"
	"math/bits"

	"github.com/ezrec/lc3/cpu"
)

// SIZE is the number of words in the address space.
const SIZE = 1 << 16

// Memory is the register file and 64K words of memory of one machine.
type Memory struct {
	Verbose  bool
	Register [cpu.REGISTER_COUNT]cpu.Word
	Cell     [SIZE]cpu.Word

	BitsFlipped int // Bits changed by writes since reset.
}

var _ cpu.Storage = (*Memory)(nil)

// NewMemory creates a new, zeroed, memory.
func NewMemory() (mem *Memory) {
	mem = &Memory{}

	return
}

// Reset zeros all registers and memory cells.
func (mem *Memory) Reset() {
	clear(mem.Register[:])
	clear(mem.Cell[:])
	mem.BitsFlipped = 0
}

// ReadReg reads a register.
func (mem *Memory) ReadReg(reg cpu.Register) cpu.Word {
	return mem.Register[reg]
}

// WriteReg writes a register.
func (mem *Memory) WriteReg(reg cpu.Register, value cpu.Word) {
	mem.BitsFlipped += bits.OnesCount16(mem.Register[reg] ^ value)
	mem.Register[reg] = value
}

// ReadMem reads a memory cell.
func (mem *Memory) ReadMem(addr cpu.Word) cpu.Word {
	return mem.Cell[addr]
}

// WriteMem writes a memory cell.
func (mem *Memory) WriteMem(addr cpu.Word, value cpu.Word) {
	if mem.Verbose {
		log.Printf("memory: [%04x] %04x -> %04x", addr, mem.Cell[addr], value)
	}
	mem.BitsFlipped += bits.OnesCount16(mem.Cell[addr] ^ value)
	mem.Cell[addr] = value
}

// ReadTerminated collects the low byte of each word starting at addr,
// stopping before the first zero word. The scan wraps at the end of memory
// and gives up after one full pass.
func (mem *Memory) ReadTerminated(addr cpu.Word) (data []byte) {
	for range SIZE {
		word := mem.Cell[addr]
		if word == 0 {
			break
		}
		data = append(data, byte(word))
		addr++
	}

	return
}

// Load copies words into memory starting at origin, wrapping at the end
// of memory.
func (mem *Memory) Load(origin cpu.Word, words []cpu.Word) {
	addr := origin
	for _, word := range words {
		mem.Cell[addr] = word
		addr++
	}
}

// Cells returns an iterator over the non-zero memory cells.
func (mem *Memory) Cells() iter.Seq2[cpu.Word, cpu.Word] {
	return func(yield func(addr cpu.Word, value cpu.Word) bool) {
		for n, value := range mem.Cell {
			if value == 0 {
				continue
			}
			if !yield(cpu.Word(n), value) {
				return
			}
		}
	}
}
