// Package io provides the character and image I/O of the LC-3 emulator.
// It includes the byte stream Console used by the TRAP service routines,
// a raw-mode Terminal for interactive input, and the object image format.
package io

import (
	"bufio"
	"io"
)

// Console provides blocking byte I/O over a reader and a writer.
// Every failure is reported wrapped in ErrConsole.
type Console struct {
	Input  io.Reader
	Output io.Writer

	// Echo, when set, writes every byte read back to Output.
	Echo bool

	reader *bufio.Reader
	input  io.Reader
}

// NewConsole creates a new console.
func NewConsole(input io.Reader, output io.Writer) (con *Console) {
	con = &Console{
		Input:  input,
		Output: output,
	}

	return
}

// ReadByte blocks until one byte of input is available.
func (con *Console) ReadByte() (ch byte, err error) {
	if con.Input == nil {
		err = &ErrConsole{Op: "read", Err: io.EOF}
		return
	}

	// Rewrap when the input has been replaced.
	if con.reader == nil || con.input != con.Input {
		con.reader = bufio.NewReaderSize(con.Input, 16)
		con.input = con.Input
	}

	ch, err = con.reader.ReadByte()
	if err != nil {
		err = &ErrConsole{Op: "read", Err: err}
		return
	}

	if con.Echo {
		err = con.WriteByte(ch)
	}

	return
}

// WriteByte writes one byte of output.
func (con *Console) WriteByte(ch byte) (err error) {
	_, err = con.Write([]byte{ch})
	return
}

// Write writes all of data as a single output operation.
func (con *Console) Write(data []byte) (n int, err error) {
	if con.Output == nil {
		err = &ErrConsole{Op: "write", Err: io.ErrClosedPipe}
		return
	}

	n, err = con.Output.Write(data)
	if err == nil && n < len(data) {
		err = io.ErrShortWrite
	}
	if err != nil {
		err = &ErrConsole{Op: "write", Err: err}
	}

	return
}
