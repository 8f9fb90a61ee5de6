package cpu

import (
	"iter"

	"github.com/ezrec/lc3/io"
)

// Statement is a line of assembled code with its source location and
// generated words.
type Statement struct {
	LineNo    int
	Address   Word
	Words     []string
	Codes     []Code
	LinkLabel string
	LinkWidth int // Offset field width for LinkLabel, 0 for an absolute address.
}

// Program is an assembled block of words, loaded starting at Origin.
type Program struct {
	Origin     Word
	Statements []Statement
	Labels     map[string]Word
}

type Debug struct {
	*Statement
	Index int
}

// Debug finds the statement that generated the word at an address.
func (prog *Program) Debug(addr Word) (dbg Debug) {
	for n, st := range prog.Statements {
		index := int(addr - st.Address)
		if index < len(st.Codes) {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Index:     index,
			}
			break
		}
	}

	return
}

// Binary returns the program words, in address order from Origin.
func (prog *Program) Binary() (bins []Word) {
	for _, code := range prog.Codes() {
		bins = append(bins, Word(code))
	}

	return
}

// Image returns the program as an object image.
func (prog *Program) Image() *io.Image {
	return &io.Image{
		Origin: prog.Origin,
		Data:   prog.Binary(),
	}
}

// Codes returns an iterator over the address and code of every word.
func (prog *Program) Codes() iter.Seq2[Word, Code] {
	return func(yield func(addr Word, code Code) bool) {
		for _, st := range prog.Statements {
			for n, code := range st.Codes {
				if !yield(st.Address+Word(n), code) {
					return
				}
			}
		}
	}
}
