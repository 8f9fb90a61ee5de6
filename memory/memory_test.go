// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package memory

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/lc3/cpu"
	"github.com/ezrec/lc3/io"
)

func TestMemory(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory()

	mem.WriteReg(cpu.REG_R3, 0x1234)
	mem.WriteReg(cpu.REG_PC, 0x3000)
	mem.WriteMem(0xffff, 0xbeef)

	assert.Equal(cpu.Word(0x1234), mem.ReadReg(cpu.REG_R3))
	assert.Equal(cpu.Word(0x3000), mem.ReadReg(cpu.REG_PC))
	assert.Equal(cpu.Word(0xbeef), mem.ReadMem(0xffff))
	assert.Equal(cpu.Word(0), mem.ReadMem(0x0000))

	mem.Reset()
	assert.Equal(cpu.Word(0), mem.ReadReg(cpu.REG_R3))
	assert.Equal(cpu.Word(0), mem.ReadMem(0xffff))
	assert.Equal(0, mem.BitsFlipped)
}

func TestMemory_BitsFlipped(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory()

	mem.WriteMem(0x10, 0x000f)
	assert.Equal(4, mem.BitsFlipped)
	mem.WriteMem(0x10, 0x000e)
	assert.Equal(5, mem.BitsFlipped)
	mem.WriteReg(cpu.REG_R0, 0xffff)
	assert.Equal(21, mem.BitsFlipped)
}

func TestMemory_ReadTerminated(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		addr   cpu.Word
		cells  []cpu.Word
		output string
	}){
		{"hi", 0x4000, []cpu.Word{72, 105, 0, 99}, "Hi"},
		{"empty", 0x4000, []cpu.Word{0, 65}, ""},
		{"low_byte", 0x4000, []cpu.Word{0x1241, 0x0042, 0}, "AB"},
		{"wraps", 0xfffe, []cpu.Word{'a', 'b', 'c', 0}, "abc"},
	}

	for _, entry := range table {
		mem := NewMemory()
		mem.Load(entry.addr, entry.cells)
		assert.Equal(entry.output, string(mem.ReadTerminated(entry.addr)), entry.name)
	}
}

func TestMemory_ReadTerminated_Unterminated(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory()
	for n := range mem.Cell {
		mem.Cell[n] = 'x'
	}

	data := mem.ReadTerminated(0x1234)
	assert.Len(data, SIZE)
}

func TestMemory_Load(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory()
	mem.Load(0xffff, []cpu.Word{1, 2, 3})

	assert.Equal(cpu.Word(1), mem.ReadMem(0xffff))
	assert.Equal(cpu.Word(2), mem.ReadMem(0x0000))
	assert.Equal(cpu.Word(3), mem.ReadMem(0x0001))

	var addrs []cpu.Word
	for addr := range mem.Cells() {
		addrs = append(addrs, addr)
	}
	assert.Equal([]cpu.Word{0x0000, 0x0001, 0xffff}, addrs)
}

func TestMemory_Cpu(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory()
	mem.Load(cpu.PC_RESET, []cpu.Word{0x1042, 0xf022, 0xf025})
	mem.Load(0x4000, []cpu.Word{72, 105, 0, 99})

	var out bytes.Buffer
	con := io.NewConsole(nil, &out)
	core := cpu.NewCpu(mem, con)
	core.Reset()

	mem.WriteReg(cpu.REG_R1, 0x1000)
	mem.WriteReg(cpu.REG_R2, 0x3000)

	assert.NoError(cpu.Run(core))
	assert.Equal(cpu.Word(0x4000), mem.ReadReg(cpu.REG_R0))
	assert.Equal(cpu.COND_P, mem.ReadReg(cpu.REG_COND))
	assert.Equal("Hi", out.String())
	assert.Equal(3, core.Ticks)
}
