package io

import (
	"bytes"
	"io"
	"os"

	"golang.org/x/term"
)

// Terminal adapts a raw-mode terminal to the Console byte streams.
//
// Raw mode disables the line discipline, so Terminal does the translation
// itself: Enter (CR) reads as LF, Backspace (DEL) reads as BS, and LF
// writes as CR LF.
type Terminal struct {
	In  io.Reader
	Out io.Writer

	fd       int
	oldState *term.State
}

// NewTerminal wraps an input and output stream without changing any
// terminal modes.
func NewTerminal(in io.Reader, out io.Writer) (tm *Terminal) {
	tm = &Terminal{
		In:  in,
		Out: out,
		fd:  -1,
	}

	return
}

// MakeRaw puts the terminal on 'in' into raw mode, and returns a Terminal
// that reads from 'in' and writes to 'out'. Restore must be called to
// return the terminal to its prior state.
func MakeRaw(in *os.File, out io.Writer) (tm *Terminal, err error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		err = ErrNotTerminal
		return
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return
	}

	tm = NewTerminal(in, out)
	tm.fd = fd
	tm.oldState = state

	return
}

// Restore returns the terminal to the mode it had before MakeRaw.
func (tm *Terminal) Restore() (err error) {
	if tm.oldState == nil {
		return
	}

	err = term.Restore(tm.fd, tm.oldState)
	tm.oldState = nil

	return
}

// Read reads input bytes, translating terminal key codes.
func (tm *Terminal) Read(data []byte) (n int, err error) {
	n, err = tm.In.Read(data)
	for i, ch := range data[:n] {
		switch ch {
		case '\r':
			data[i] = '\n'
		case 0x7f:
			data[i] = 0x08
		}
	}

	return
}

// Write writes output bytes, expanding LF to CR LF.
func (tm *Terminal) Write(data []byte) (n int, err error) {
	if bytes.IndexByte(data, '\n') < 0 {
		return tm.Out.Write(data)
	}

	_, err = tm.Out.Write(bytes.ReplaceAll(data, []byte{'\n'}, []byte{'\r', '\n'}))
	if err == nil {
		n = len(data)
	}

	return
}
