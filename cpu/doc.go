// Package cpu implements the processor and assembler for a 16-bit LC-3
// style machine.
//
// The CPU has eight 16-bit general-purpose registers (R0-R7), a program
// counter (PC), and a condition register (COND) holding exactly one of the
// N, Z or P flags. Memory is a flat space of 65536 words. Instructions are
// one word each, with the opcode in the top four bits; all PC-relative
// addressing is computed from the address following the instruction.
//
// The CPU does not own its state. Registers and memory are reached through
// the Storage capability, and the character services of the TRAP
// instruction through the Console capability.
//
// The assembler provides a line-oriented assembly language for the
// instruction set, supporting labels, macros, equates, and compile-time
// expression evaluation.
package cpu
