package io

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failWriter struct {
	err error
}

func (fw *failWriter) Write(data []byte) (int, error) {
	return 0, fw.err
}

type shortWriter struct{}

func (sw *shortWriter) Write(data []byte) (int, error) {
	return len(data) / 2, nil
}

func TestConsole_ReadByte(t *testing.T) {
	assert := assert.New(t)

	con := NewConsole(strings.NewReader("ab"), &bytes.Buffer{})

	ch, err := con.ReadByte()
	assert.NoError(err)
	assert.Equal(byte('a'), ch)

	ch, err = con.ReadByte()
	assert.NoError(err)
	assert.Equal(byte('b'), ch)

	_, err = con.ReadByte()
	assert.ErrorIs(err, io.EOF)

	var econ *ErrConsole
	assert.True(errors.As(err, &econ))
	assert.Equal("read", econ.Op)
}

func TestConsole_ReadByte_InputReplaced(t *testing.T) {
	assert := assert.New(t)

	con := NewConsole(strings.NewReader("x"), &bytes.Buffer{})

	ch, err := con.ReadByte()
	assert.NoError(err)
	assert.Equal(byte('x'), ch)

	con.Input = strings.NewReader("y")
	ch, err = con.ReadByte()
	assert.NoError(err)
	assert.Equal(byte('y'), ch)
}

func TestConsole_ReadByte_NoInput(t *testing.T) {
	assert := assert.New(t)

	con := &Console{}
	_, err := con.ReadByte()
	assert.ErrorIs(err, io.EOF)
}

func TestConsole_Echo(t *testing.T) {
	assert := assert.New(t)

	output := &bytes.Buffer{}
	con := NewConsole(strings.NewReader("q"), output)
	con.Echo = true

	ch, err := con.ReadByte()
	assert.NoError(err)
	assert.Equal(byte('q'), ch)
	assert.Equal("q", output.String())
}

func TestConsole_Write(t *testing.T) {
	assert := assert.New(t)

	output := &bytes.Buffer{}
	con := NewConsole(nil, output)

	assert.NoError(con.WriteByte('H'))
	n, err := con.Write([]byte("ello"))
	assert.NoError(err)
	assert.Equal(4, n)
	assert.Equal("Hello", output.String())
}

func TestConsole_Write_Errors(t *testing.T) {
	assert := assert.New(t)

	broken := errors.New("broken pipe")

	con := NewConsole(nil, &failWriter{err: broken})
	err := con.WriteByte('x')
	assert.ErrorIs(err, broken)

	con = NewConsole(nil, &shortWriter{})
	_, err = con.Write([]byte("abcd"))
	assert.ErrorIs(err, io.ErrShortWrite)

	con = NewConsole(nil, nil)
	err = con.WriteByte('x')
	assert.ErrorIs(err, io.ErrClosedPipe)
}
