package emulator

import (
	"errors"

	"github.com/ezrec/lc3/cpu"
	"github.com/ezrec/lc3/translate"
)

var f = translate.From

var (
	ErrConfigKey = errors.New(f("unknown configuration key"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Address cpu.Word
	LineNo  int
	Err     error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return f("x%04X: %v", err.Address, err.Err)
	}
	return f("x%04X: line %d %v", err.Address, err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ErrPolicy is an unknown unsupported operation policy name.
type ErrPolicy string

func (err ErrPolicy) Error() string {
	return f("unknown policy '%v'", string(err))
}
