package cpu

import (
	"errors"

	"github.com/ezrec/lc3/translate"
)

var f = translate.From

var (
	// Tick errors
	ErrDecode      = errors.New(f("decode"))
	ErrIo          = errors.New(f("io"))
	ErrUnsupported = errors.New(f("unsupported operation"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrOrigDuplicate      = errors.New(f(".ORIG duplicated or after code"))
	ErrStringSyntax       = errors.New(f(".STRINGZ syntax"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
	ErrImmediateRange     = errors.New(f("immediate out of range"))
	ErrTrapRange          = errors.New(f("trap vector out of range"))
)

// ErrOpcode is the failure to decode an instruction word.
type ErrOpcode Code

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0x%04x %v", uint16(eo), Code(eo).Opcode().String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	if err == ErrDecode {
		return true
	}
	_, ok = err.(ErrOpcode)
	return
}

// ErrTrapVector is a TRAP to a vector with no service routine.
type ErrTrapVector TrapVector

func (et ErrTrapVector) Error() string {
	return f("unsupported trap vector 0x%02x", uint8(et))
}

func (et ErrTrapVector) Is(err error) bool {
	return err == ErrUnsupported
}

// ErrUnsupportedOpcode is a decoded instruction the CPU does not execute.
type ErrUnsupportedOpcode Opcode

func (eu ErrUnsupportedOpcode) Error() string {
	return f("unsupported opcode %v", Opcode(eu).String())
}

func (eu ErrUnsupportedOpcode) Is(err error) bool {
	return err == ErrUnsupported
}

// ErrTrapIo is a console failure during a trap service routine.
type ErrTrapIo struct {
	Vector TrapVector
	Err    error
}

func (err *ErrTrapIo) Error() string {
	return f("trap %v: %v", err.Vector.String(), err.Err)
}

func (err *ErrTrapIo) Unwrap() []error {
	return []error{ErrIo, err.Err}
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrOffsetRange is a label too far away for the offset field.
type ErrOffsetRange struct {
	Label  string
	Offset int
	Width  int
}

func (err ErrOffsetRange) Error() string {
	return f("label %v offset %d does not fit in %d bits", err.Label, err.Offset, err.Width)
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
