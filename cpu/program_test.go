package cpu

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/lc3/io"
)

func TestProgram_Debug(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Origin: 0x3000,
		Statements: []Statement{
			{LineNo: 1, Address: 0x3000, Words: []string{"ADD", "R0", "R1", "R2"},
				Codes: []Code{Add{Dr: REG_R0, Sr1: REG_R1, Arg: REG_R2}.Code()}},
			{LineNo: 2, Address: 0x3001, Words: []string{".STRINGZ", `"Hi"`},
				Codes: []Code{'H', 'i', 0}},
			{LineNo: 3, Address: 0x3004, Words: []string{"HALT"},
				Codes: []Code{Trap{Vector: TRAP_HALT}.Code()}},
		},
	}

	dbg := prog.Debug(0x3000)
	assert.NotNil(dbg.Statement)
	assert.Equal(1, dbg.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(0x3003)
	assert.NotNil(dbg.Statement)
	assert.Equal(2, dbg.LineNo)
	assert.Equal(2, dbg.Index)

	dbg = prog.Debug(0x3004)
	assert.NotNil(dbg.Statement)
	assert.Equal(3, dbg.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(0x3005)
	assert.Nil(dbg.Statement)
	assert.Equal(0, dbg.Index)

	// Below the origin wraps far out of range.
	dbg = prog.Debug(0x2fff)
	assert.Nil(dbg.Statement)
}

func TestProgram_Binary(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{}
	assert.Nil(prog.Binary())

	prog = assemble(t,
		".ORIG x4000",
		"ADD R0, R1, R2",
		".BLKW 2 #-1",
		"HALT",
	)

	assert.Equal([]Word{0x1042, 0xffff, 0xffff, 0xf025}, prog.Binary())

	var addrs []Word
	var codes []Code
	for addr, code := range prog.Codes() {
		addrs = append(addrs, addr)
		codes = append(codes, code)
	}
	assert.Equal([]Word{0x4000, 0x4001, 0x4002, 0x4003}, addrs)
	assert.Equal([]Code{0x1042, 0xffff, 0xffff, 0xf025}, codes)

	// Early stop.
	count := 0
	for range prog.Codes() {
		count++
		break
	}
	assert.Equal(1, count)
}

func TestProgram_Image(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		".ORIG x3000",
		"LEA R0, MSG",
		"PUTS",
		"HALT",
		`MSG .STRINGZ "ok"`,
	)

	image := prog.Image()
	assert.Equal(uint16(0x3000), image.Origin)
	assert.Equal([]uint16{0xe002, 0xf022, 0xf025, 'o', 'k', 0}, image.Data)

	var buf bytes.Buffer
	_, err := image.WriteTo(&buf)
	assert.NoError(err)

	again, err := io.ReadImage(&buf)
	assert.NoError(err)
	assert.Equal(image, again)
}
