package cpu

import (
	"fmt"
	"log"
)

// TrapVector selects a service routine of the TRAP instruction.
type TrapVector uint8

const (
	TRAP_GETC = TrapVector(0x20) // Read one character into R0.
	TRAP_OUT  = TrapVector(0x21) // Write the character in R0.
	TRAP_PUTS = TrapVector(0x22) // Write the zero terminated string at R0.
	TRAP_HALT = TrapVector(0x25) // Halt the CPU.
)

var trapNames = map[TrapVector]string{
	TRAP_GETC: "GETC",
	TRAP_OUT:  "OUT",
	TRAP_PUTS: "PUTS",
	TRAP_HALT: "HALT",
}

func (tv TrapVector) String() string {
	name, ok := trapNames[tv]
	if ok {
		return name
	}
	return fmt.Sprintf("x%02X", uint8(tv))
}

// Trap runs the service routine for a trap vector.
// Returns done when the vector halts the CPU.
func (cpu *Cpu) Trap(vector TrapVector) (done bool, err error) {
	st := cpu.Storage

	switch vector {
	case TRAP_GETC:
		var ch byte
		ch, err = cpu.Console.ReadByte()
		if err != nil {
			break
		}
		st.WriteReg(REG_R0, Word(ch))
	case TRAP_OUT:
		err = cpu.Console.WriteByte(byte(st.ReadReg(REG_R0)))
	case TRAP_PUTS:
		_, err = cpu.Console.Write(st.ReadTerminated(st.ReadReg(REG_R0)))
	case TRAP_HALT:
		if cpu.Verbose {
			log.Printf("cpu: halt")
		}
		done = true
	default:
		return false, ErrTrapVector(vector)
	}

	if err != nil {
		err = &ErrTrapIo{Vector: vector, Err: err}
	}

	return
}
