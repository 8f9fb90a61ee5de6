package io

import (
	"errors"

	"github.com/ezrec/lc3/translate"
)

var f = translate.From

var (
	// Image errors
	ErrImageEmpty     = errors.New(f("image empty"))
	ErrImageTruncated = errors.New(f("image truncated"))
	ErrImageTooLarge  = errors.New(f("image larger than memory"))

	// Terminal errors
	ErrNotTerminal = errors.New(f("not a terminal"))
)

// ErrConsole is a failure of a console read or write.
type ErrConsole struct {
	Op  string
	Err error
}

func (err *ErrConsole) Error() string {
	return f("console %v: %v", err.Op, err.Err)
}

func (err *ErrConsole) Unwrap() error {
	return err.Err
}
