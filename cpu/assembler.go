// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/lc3/internal"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

var _trap_defines = map[string]string{
	"TRAP_GETC": fmt.Sprintf("%#x", TRAP_GETC),
	"TRAP_OUT":  fmt.Sprintf("%#x", TRAP_OUT),
	"TRAP_PUTS": fmt.Sprintf("%#x", TRAP_PUTS),
	"TRAP_HALT": fmt.Sprintf("%#x", TRAP_HALT),
}

// Assembler is a single pass macro assembler for LC-3 assembly language.
type Assembler struct {
	Verbose   bool        // If set, verbosely logs the assembler actions.
	Statement []Statement // List of generated statements.

	predefine map[string]string   // Predefines
	Label     map[string]Word     // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	origin    Word // Address of the first statement.
	originSet bool // Set once .ORIG or the first statement is seen.
	ended     bool // Set after .END

	expansions int // Count of macro expansions.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// regMap is a map of register names.
var regMap = map[string]Register{
	"R0": REG_R0,
	"R1": REG_R1,
	"R2": REG_R2,
	"R3": REG_R3,
	"R4": REG_R4,
	"R5": REG_R5,
	"R6": REG_R6,
	"R7": REG_R7,
}

// trapMap maps the trap alias mnemonics.
var trapMap = map[string]TrapVector{
	"GETC": TRAP_GETC,
	"OUT":  TRAP_OUT,
	"PUTS": TRAP_PUTS,
	"HALT": TRAP_HALT,
}

// pcRelativeMap maps the PC-relative load/store mnemonics.
var pcRelativeMap = map[string]Opcode{
	"LD":  OP_LD,
	"LDI": OP_LDI,
	"LEA": OP_LEA,
	"ST":  OP_ST,
	"STI": OP_STI,
}

// mnemonics are the instruction words that can not be labels.
var mnemonics = []string{
	"ADD", "AND", "NOT", "JMP", "RET", "JSR", "JSRR",
	"LD", "LDI", "LDR", "LEA", "ST", "STI", "STR", "TRAP", "RTI",
	"GETC", "OUT", "PUTS", "HALT",
}

var (
	brRegexp     = regexp.MustCompile(`^BR(N?)(Z?)(P?)$`)
	labelRegexp  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	charRegexp   = regexp.MustCompile(`'\\?[^']'`)
	parenRegexp  = regexp.MustCompile(`\$\([^\$]*\)`)
	isSeparator  = func(r rune) bool { return r == ' ' || r == '\t' || r == ',' }
	wordSplitter = func(line string) []string { return strings.FieldsFunc(line, isSeparator) }
)

// isMnemonic returns true if the word is an instruction mnemonic.
func isMnemonic(word string) bool {
	upper := strings.ToUpper(word)
	return slices.Contains(mnemonics, upper) || brRegexp.MatchString(upper)
}

// isLabel returns true if the word can name a label.
func (asm *Assembler) isLabel(word string) bool {
	if !labelRegexp.MatchString(word) || isMnemonic(word) {
		return false
	}
	_, is_reg := regMap[strings.ToUpper(word)]
	return !is_reg
}

// valueOf returns the value of a simple word.
//
// Numbers are '#' decimal, 'x' hexadecimal, 'b' binary, or Go integer literals.
// A leading '~' inverts the 16-bit value.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}
	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
		if len(word) == 0 {
			err = ErrParseNumber("~")
			return
		}
	}
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(strings.Trim(word, "'"))
		return
	}

	text := word
	base := 0
	switch word[0] {
	case '#':
		text = word[1:]
		base = 10
	case 'x', 'X':
		text = word[1:]
		base = 16
	case 'b', 'B':
		text = word[1:]
		base = 2
	}

	value, err = strconv.ParseInt(text, base, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if invert {
		value = int64(^Word(value))
	}

	return
}

// signedOf parses a number that must fit in a signed field 'width' bits wide.
func (asm *Assembler) signedOf(word string, width int) (value Word, err error) {
	v64, err := asm.valueOf(word)
	if err != nil {
		return
	}

	limit := int64(1) << (width - 1)
	if v64 < -limit || v64 >= limit {
		err = ErrImmediateRange
		return
	}

	value = Word(v64)
	return
}

// wordOf parses a number that must fit in a word, either signed or unsigned.
func (asm *Assembler) wordOf(word string) (value Word, err error) {
	v64, err := asm.valueOf(word)
	if err != nil {
		return
	}

	if v64 < -0x8000 || v64 > 0xffff {
		err = ErrImmediateRange
		return
	}

	value = Word(v64)
	return
}

// registerOf parses a register name.
func (asm *Assembler) registerOf(word string) (reg Register, err error) {
	reg, ok := regMap[strings.ToUpper(word)]
	if !ok {
		err = ErrRegisterInvalid
	}
	return
}

// argumentOf parses the register or 5-bit immediate operand of ADD and AND.
func (asm *Assembler) argumentOf(word string) (arg Argument, err error) {
	reg, err := asm.registerOf(word)
	if err == nil {
		arg = reg
		return
	}

	imm, err := asm.signedOf(word, 5)
	if err != nil {
		return
	}

	arg = Immediate(imm)
	return
}

// offsetOf parses a PC-relative operand. A number is used as the offset
// directly; a label is returned for linking.
func (asm *Assembler) offsetOf(word string, width int) (offset Word, label string, err error) {
	_, err = asm.valueOf(word)
	if err == nil {
		offset, err = asm.signedOf(word, width)
		return
	}

	if !asm.isLabel(word) {
		return
	}

	err = nil
	label = word
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v64 int64
		v64, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	// Labels defined so far are addresses.
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(int(addr))
	}
	err = nil
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// stripComment removes a ';' comment that is not inside a string or
// character literal.
func stripComment(text string) string {
	quoted := false
	for n := 0; n < len(text); n++ {
		switch text[n] {
		case '\\':
			if quoted {
				n++
			}
		case '"':
			quoted = !quoted
		case '\'':
			if quoted {
				continue
			}
			switch {
			case n+2 < len(text) && text[n+2] == '\'':
				n += 2
			case n+3 < len(text) && text[n+1] == '\\' && text[n+3] == '\'':
				n += 3
			}
		case ';':
			if !quoted {
				return text[:n]
			}
		}
	}

	return text
}

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// A string literal is a single word, and is not evaluated.
	line, str, has_str := strings.Cut(line, `"`)

	// Do 'x' evaluations
	line = charRegexp.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "e":
				str = "\033"
			case "0":
				str = "\000"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = parenRegexp.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = wordSplitter(line)
	if has_str {
		words = append(words, `"`+str)
	}

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if strings.ToUpper(words[0]) == ".EQU" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		if len(word) == 0 {
			continue
		}

		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for bare := true; len(words) > 0; bare = false {
		label, is_colon := strings.CutSuffix(words[0], ":")
		if !is_colon {
			// The first word, if not an opcode, is also a label.
			_, is_macro := asm.Macro[words[0]]
			if !bare || is_macro || !asm.isLabel(words[0]) {
				break
			}
		}
		if !asm.isLabel(label) {
			err = ErrInstructionInvalid
			return
		}

		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		asm.Label[label] = asm.currentAddress()
		words = words[1:]
	}

	if len(words) == 0 {
		return
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		// '@' makes labels local to this expansion.
		asm.expansions++
		local := fmt.Sprintf("%v_%v_", name, asm.expansions)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentAddress gets the address of the next statement.
func (asm *Assembler) currentAddress() Word {
	if len(asm.Statement) == 0 {
		return asm.origin
	}

	last := asm.Statement[len(asm.Statement)-1]

	return last.Address + Word(len(last.Codes))
}

// Parse parses an input stream into a Program containing statements.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = make(map[string]Word, 16)
	asm.Statement = asm.Statement[:0]
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Collect(internal.IterSeq2Concat(
		maps.All(sysEquate),
		maps.All(_cpu_defines),
		maps.All(_trap_defines),
		maps.All(asm.predefine),
	))
	asm.origin = PC_RESET
	asm.originSet = false
	asm.ended = false
	asm.expansions = 0

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		line = strings.TrimSpace(stripComment(text))
		words := wordSplitter(line)

		// .macro NAME arg...
		if len(words) > 0 && strings.ToUpper(words[0]) == ".MACRO" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && strings.ToUpper(words[0]) == ".ENDM" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		if asm.ended {
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	if err = scanner.Err(); err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for n := range asm.Statement {
		st := &asm.Statement[n]

		if len(st.LinkLabel) == 0 {
			continue
		}

		lineno = st.LineNo
		line = strings.Join(st.Words, " ")

		label := st.LinkLabel
		addr, ok := asm.Label[label]
		if !ok {
			err = ErrLabelMissing(label)
			return
		}
		if len(st.Codes) < 1 {
			log.Fatalf("Unable to link label '%s' to line %d: %v", label, st.LineNo, st.Words)
		}
		linked := &st.Codes[0]
		if st.LinkWidth == 0 {
			*linked = Code(addr)
			continue
		}
		offset := int(int16(addr - (st.Address + 1)))
		limit := 1 << (st.LinkWidth - 1)
		if offset < -limit || offset >= limit {
			err = ErrOffsetRange{Label: label, Offset: offset, Width: st.LinkWidth}
			return
		}
		*linked |= Code(Word(offset) & (1<<st.LinkWidth - 1))
	}

	prog = &Program{
		Origin:     asm.origin,
		Statements: slices.Clone(asm.Statement),
		Labels:     maps.Clone(asm.Label),
	}

	return
}

// needArgs checks the operand count of a statement.
func needArgs(args []string, count int) (err error) {
	switch {
	case len(args) < count:
		err = ErrOpcodeValueMissing
	case len(args) > count:
		err = ErrOpcodeExtraArgs
	}
	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []Code
	var label string
	var width int

	// no-op
	if len(words) == 0 || asm.ended {
		return
	}

	initial_words := words

	defer func() {
		if len(codes) == 0 {
			return
		}
		asm.originSet = true
		statement := Statement{LineNo: lineno, Address: asm.currentAddress(), Words: initial_words, Codes: codes,
			LinkLabel: label, LinkWidth: width}
		asm.Statement = append(asm.Statement, statement)
	}()

	op := strings.ToUpper(words[0])
	args := words[1:]

	switch op {
	case ".ORIG":
		if err = needArgs(args, 1); err != nil {
			return
		}
		if asm.originSet {
			err = ErrOrigDuplicate
			return
		}
		var origin Word
		origin, err = asm.wordOf(args[0])
		if err != nil {
			return
		}
		asm.origin = origin
		asm.originSet = true
	case ".END":
		if err = needArgs(args, 0); err != nil {
			return
		}
		asm.ended = true
	case ".FILL":
		if err = needArgs(args, 1); err != nil {
			return
		}
		var value Word
		value, err = asm.wordOf(args[0])
		if err != nil {
			if !asm.isLabel(args[0]) {
				return
			}
			err = nil
			label = args[0]
		}
		codes = append(codes, Code(value))
	case ".BLKW":
		if len(args) < 1 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(args) > 2 {
			err = ErrOpcodeExtraArgs
			return
		}
		var count int64
		count, err = asm.valueOf(args[0])
		if err != nil {
			return
		}
		if count < 0 || count > 0x10000 {
			err = ErrImmediateRange
			return
		}
		var fill Word
		if len(args) == 2 {
			fill, err = asm.wordOf(args[1])
			if err != nil {
				return
			}
		}
		for range count {
			codes = append(codes, Code(fill))
		}
	case ".STRINGZ":
		if err = needArgs(args, 1); err != nil {
			return
		}
		var text string
		text, err = strconv.Unquote(args[0])
		if err != nil {
			err = ErrStringSyntax
			return
		}
		for _, ch := range []byte(text) {
			codes = append(codes, Code(ch))
		}
		codes = append(codes, 0)
	case "ADD", "AND":
		if err = needArgs(args, 3); err != nil {
			return
		}
		var dr, sr1 Register
		var arg Argument
		if dr, err = asm.registerOf(args[0]); err != nil {
			return
		}
		if sr1, err = asm.registerOf(args[1]); err != nil {
			return
		}
		if arg, err = asm.argumentOf(args[2]); err != nil {
			return
		}
		if op == "ADD" {
			codes = append(codes, Add{Dr: dr, Sr1: sr1, Arg: arg}.Code())
		} else {
			codes = append(codes, And{Dr: dr, Sr1: sr1, Arg: arg}.Code())
		}
	case "NOT":
		if err = needArgs(args, 2); err != nil {
			return
		}
		var dr, sr Register
		if dr, err = asm.registerOf(args[0]); err != nil {
			return
		}
		if sr, err = asm.registerOf(args[1]); err != nil {
			return
		}
		codes = append(codes, Not{Dr: dr, Sr: sr}.Code())
	case "JMP", "JSRR":
		if err = needArgs(args, 1); err != nil {
			return
		}
		var base Register
		if base, err = asm.registerOf(args[0]); err != nil {
			return
		}
		if op == "JMP" {
			codes = append(codes, Jmp{BaseR: base}.Code())
		} else {
			codes = append(codes, Jsrr{BaseR: base}.Code())
		}
	case "RET":
		if err = needArgs(args, 0); err != nil {
			return
		}
		codes = append(codes, Jmp{BaseR: REG_R7}.Code())
	case "JSR":
		if err = needArgs(args, 1); err != nil {
			return
		}
		var offset Word
		width = 11
		if offset, label, err = asm.offsetOf(args[0], width); err != nil {
			return
		}
		codes = append(codes, Jsr{PcOffset: offset}.Code())
	case "LD", "LDI", "LEA", "ST", "STI":
		if err = needArgs(args, 2); err != nil {
			return
		}
		var reg Register
		var offset Word
		if reg, err = asm.registerOf(args[0]); err != nil {
			return
		}
		width = 9
		if offset, label, err = asm.offsetOf(args[1], width); err != nil {
			return
		}
		codes = append(codes, makePcRelative(pcRelativeMap[op], reg, offset))
	case "LDR", "STR":
		if err = needArgs(args, 3); err != nil {
			return
		}
		var reg, base Register
		var offset Word
		if reg, err = asm.registerOf(args[0]); err != nil {
			return
		}
		if base, err = asm.registerOf(args[1]); err != nil {
			return
		}
		if offset, err = asm.signedOf(args[2], 6); err != nil {
			return
		}
		if op == "LDR" {
			codes = append(codes, Ldr{Dr: reg, BaseR: base, Offset: offset}.Code())
		} else {
			codes = append(codes, Str{Sr: reg, BaseR: base, Offset: offset}.Code())
		}
	case "TRAP":
		if err = needArgs(args, 1); err != nil {
			return
		}
		var vector int64
		if vector, err = asm.valueOf(args[0]); err != nil {
			return
		}
		if vector < 0 || vector > 0xff {
			err = ErrTrapRange
			return
		}
		codes = append(codes, Trap{Vector: TrapVector(vector)}.Code())
	case "GETC", "OUT", "PUTS", "HALT":
		if err = needArgs(args, 0); err != nil {
			return
		}
		codes = append(codes, Trap{Vector: trapMap[op]}.Code())
	case "RTI":
		if err = needArgs(args, 0); err != nil {
			return
		}
		codes = append(codes, Rti{}.Code())
	default:
		cond := brRegexp.FindStringSubmatch(op)
		if cond == nil {
			err = ErrInstructionInvalid
			return
		}
		if err = needArgs(args, 1); err != nil {
			return
		}
		br := Br{N: cond[1] != "", Z: cond[2] != "", P: cond[3] != ""}
		if !br.N && !br.Z && !br.P {
			// Plain BR is unconditional.
			br.N, br.Z, br.P = true, true, true
		}
		width = 9
		if br.PcOffset, label, err = asm.offsetOf(args[0], width); err != nil {
			return
		}
		codes = append(codes, br.Code())
	}

	return
}
