// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/lc3/cpu"
	"github.com/ezrec/lc3/internal"
	"github.com/ezrec/lc3/io"
	"github.com/ezrec/lc3/memory"
)

var _emulator_defines = map[string]string{
	"MEMORY_SIZE": fmt.Sprintf("%#x", memory.SIZE),
}

// Emulator state. CPU + Memory + Console.
type Emulator struct {
	Verbose     bool         // If set, enables verbose logging.
	Unsupported Policy       // Handling of unsupported operations.
	Program     *cpu.Program // Reference to the currently running program listing.
	Images      []*io.Image  // Object images loaded at reset, before Program.

	Memory  *memory.Memory // Registers and memory.
	Cpu     *cpu.Cpu       // Reference to the CPU simulation.
	Console *io.Console    // Console for the TRAP routines.
}

// NewEmulator creates a new emulator on a console.
func NewEmulator(console *io.Console) (emu *Emulator) {
	if console == nil {
		console = io.NewConsole(nil, nil)
	}

	emu = &Emulator{
		Unsupported: POLICY_FATAL,
		Program:     &cpu.Program{Origin: cpu.PC_RESET},
		Memory:      memory.NewMemory(),
		Console:     console,
	}

	emu.Cpu = cpu.NewCpu(emu.Memory, emu.Console)
	emu.Cpu.Reset()

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// LoadImage adds an object image, and loads it into memory.
func (emu *Emulator) LoadImage(img *io.Image) {
	emu.Images = append(emu.Images, img)
	emu.Memory.Load(img.Origin, img.Data)
}

// LoadProgram sets the program listing, and loads it into memory.
func (emu *Emulator) LoadProgram(prog *cpu.Program) {
	emu.Program = prog
	emu.Memory.Load(prog.Origin, prog.Binary())
}

// Reset the emulator state.
// Memory is cleared, the images and program are reloaded, and the CPU
// is reset to PC_RESET.
func (emu *Emulator) Reset() {
	emu.Memory.Reset()

	for _, img := range emu.Images {
		emu.Memory.Load(img.Origin, img.Data)
	}
	if emu.Program != nil {
		emu.Memory.Load(emu.Program.Origin, emu.Program.Binary())
	}

	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()

	// Reset power stats.
	emu.Memory.BitsFlipped = 0
}

// Ticks returns the total instructions retired since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Power returns the total register bits flipped since a reset.
func (emu *Emulator) Power() int {
	return emu.Memory.BitsFlipped
}

// Pc returns the current program counter.
func (emu *Emulator) Pc() cpu.Word {
	return emu.Memory.ReadReg(cpu.REG_PC)
}

// Code returns the current instruction code.
func (emu *Emulator) Code() cpu.Code {
	return cpu.Code(emu.Memory.Cell[emu.Pc()])
}

// LineNo returns the current line number for the executing statement,
// or 0 if the PC is outside of the program.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(emu.Pc())
	if dbg.Statement == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single instruction of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Pc()
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Address: pc, LineNo: lineno, Err: err}
		}
	}()

	done, err = emu.Cpu.Tick()
	if err != nil && emu.Unsupported == POLICY_SKIP && errors.Is(err, cpu.ErrUnsupported) {
		log.Printf("%04x: %v (skipped)", pc, err)
		err = nil
	}

	return
}

// Run ticks the emulator until it halts, fails, or the context is done.
// The context is checked between instructions.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	for {
		err = ctx.Err()
		if err != nil {
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}
}
