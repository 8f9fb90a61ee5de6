package cpu

import (
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
)

// Storage is the register file and memory of a CPU.
// Addresses wrap around the 16-bit address space.
type Storage interface {
	ReadReg(reg Register) Word
	WriteReg(reg Register, value Word)
	ReadMem(addr Word) Word
	WriteMem(addr Word, value Word)
	// ReadTerminated returns the low byte of each word from addr up to,
	// but not including, the first zero word.
	ReadTerminated(addr Word) []byte
}

// Console is the character I/O used by the TRAP service routines.
// ReadByte blocks until a character is available.
type Console interface {
	io.ByteReader
	io.ByteWriter
	io.Writer
}

// Cpu is the simulation context for the processor.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Storage Storage // Registers and memory.
	Console Console // Trap character I/O.

	Ticks int // Instructions retired since reset.
}

// NewCpu creates a new CPU on a storage and console.
func NewCpu(storage Storage, console Console) (cpu *Cpu) {
	cpu = &Cpu{
		Storage: storage,
		Console: console,
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	st := cpu.Storage
	for reg := REG_R0; reg < REGISTER_COUNT; reg++ {
		var strval string
		val := st.ReadReg(reg)
		switch reg {
		case REG_COND:
			strval = condString(val)
		case REG_PC:
			strval = fmt.Sprintf("x%04X %v", val, Code(st.ReadMem(val)))
		default:
			strval = fmt.Sprintf("x%04X % 6d", val, int16(val))
		}
		text += fmt.Sprintf("% 5s: %v\n", reg.String(), strval)
	}

	return
}

// Reset the CPU state.
// - Sets PC to PC_RESET.
// - Sets the condition register to Z.
// - Zeros statistics counters.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Storage.WriteReg(REG_PC, PC_RESET)
	cpu.Storage.WriteReg(REG_COND, COND_Z)
	cpu.Ticks = 0
}

// Fetch decodes the instruction at PC.
func (cpu *Cpu) Fetch() (ins Instruction, err error) {
	pc := cpu.Storage.ReadReg(REG_PC)
	return Decode(Code(cpu.Storage.ReadMem(pc)))
}

// Tick executes a single instruction.
// Returns done when the instruction halted the CPU.
//
// A word that does not decode leaves all registers unchanged.
func (cpu *Cpu) Tick() (done bool, err error) {
	st := cpu.Storage

	pc := st.ReadReg(REG_PC)
	ins, err := cpu.Fetch()
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("%04x: %v", pc, ins)
	}

	st.WriteReg(REG_PC, pc+1)

	done, err = cpu.Execute(ins)
	if err != nil {
		return
	}

	cpu.Ticks++

	return
}

// Execute applies the effect of a decoded instruction.
// PC must already point past the instruction.
func (cpu *Cpu) Execute(ins Instruction) (done bool, err error) {
	st := cpu.Storage
	pc := st.ReadReg(REG_PC)

	switch ins := ins.(type) {
	case Add:
		cpu.setResult(ins.Dr, st.ReadReg(ins.Sr1)+cpu.getValue(ins.Arg))
	case And:
		cpu.setResult(ins.Dr, st.ReadReg(ins.Sr1)&cpu.getValue(ins.Arg))
	case Br:
		cond := st.ReadReg(REG_COND)
		if (ins.N && cond&COND_N != 0) || (ins.Z && cond&COND_Z != 0) || (ins.P && cond&COND_P != 0) {
			st.WriteReg(REG_PC, pc+ins.PcOffset)
		}
	case Jmp:
		st.WriteReg(REG_PC, st.ReadReg(ins.BaseR))
	case Jsr:
		st.WriteReg(REG_R7, pc)
		st.WriteReg(REG_PC, pc+ins.PcOffset)
	case Jsrr:
		st.WriteReg(REG_R7, pc)
		st.WriteReg(REG_PC, st.ReadReg(ins.BaseR))
	case Ld:
		cpu.setResult(ins.Dr, st.ReadMem(pc+ins.PcOffset))
	case Ldi:
		cpu.setResult(ins.Dr, st.ReadMem(st.ReadMem(pc+ins.PcOffset)))
	case Ldr:
		cpu.setResult(ins.Dr, st.ReadMem(st.ReadReg(ins.BaseR)+ins.Offset))
	case Lea:
		cpu.setResult(ins.Dr, pc+ins.PcOffset)
	case Not:
		cpu.setResult(ins.Dr, ^st.ReadReg(ins.Sr))
	case St:
		st.WriteMem(pc+ins.PcOffset, st.ReadReg(ins.Sr))
	case Sti:
		st.WriteMem(st.ReadMem(pc+ins.PcOffset), st.ReadReg(ins.Sr))
	case Str:
		st.WriteMem(st.ReadReg(ins.BaseR)+ins.Offset, st.ReadReg(ins.Sr))
	case Trap:
		st.WriteReg(REG_R7, pc)
		done, err = cpu.Trap(ins.Vector)
	case Rti:
		// No supervisor mode to return to.
		err = ErrUnsupportedOpcode(OP_RTI)
	default:
		panic("unknown instruction")
	}

	return
}

// getValue gets the value of an ADD or AND argument.
func (cpu *Cpu) getValue(arg Argument) Word {
	switch arg := arg.(type) {
	case Register:
		return cpu.Storage.ReadReg(arg)
	case Immediate:
		return Word(arg)
	}

	panic("unknown argument")
}

// setResult writes a register and sets the condition flag for the value.
func (cpu *Cpu) setResult(dr Register, value Word) {
	cpu.Storage.WriteReg(dr, value)
	cpu.Storage.WriteReg(REG_COND, condOf(value))
}

// Run ticks the CPU until it halts or fails.
func Run(cpu *Cpu) (err error) {
	for {
		var done bool
		done, err = cpu.Tick()
		if err != nil || done {
			return
		}
	}
}
