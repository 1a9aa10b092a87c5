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
)

// Predefined system equates.
// CODE_SIZE and DATA_SIZE are the default geometry; Predefine overrides them.
var sysEquate = map[string]string{
	"LINENO":    "0",
	"CODE_SIZE": fmt.Sprintf("%d", MEM_SIZE),
	"DATA_SIZE": fmt.Sprintf("%d", MEM_SIZE),
	"NUM_REGS":  fmt.Sprintf("%d", NUM_REGS),
	"WORD_SIZE": fmt.Sprintf("%d", WORD_SIZE),
}

var (
	reParen = regexp.MustCompile(`\$\([^\$]*\)`)
	reReg   = regexp.MustCompile(`^r([0-9]|1[0-5])$`)
	reIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// opMap maps instruction mnemonics to opcodes.
var opMap = func() map[string]CodeOp {
	ops := make(map[string]CodeOp, 16)
	for op := OP_NOP; op <= OP_HALT; op++ {
		ops[op.String()] = op
	}
	return ops
}()

// Assembler is a single pass assembler for the vncpu instruction set.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of labels to code addresses.
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple word.
// Values must fit in 32 bits, signed or unsigned.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	invert := false
	if len(word) > 1 && word[0] == '~' {
		invert = true
		word = word[1:]
	}

	value, err = strconv.ParseInt(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if value > 0xffffffff || value < -int64(0x80000000) {
		err = ErrImmediateRange
		return
	}

	if invert {
		value = int64(^uint32(value))
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v int64
		v, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt64(v)
	}
	for label, addr := range asm.Label {
		pred[label] = starlark.MakeInt(addr)
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
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

// parseLine expands a single line into words, handling equates and labels.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil && err == nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(line)
	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
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
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentAddr()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	return
}

// currentAddr gets the code address of the next opcode.
func (asm *Assembler) currentAddr() int {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Addr + WORD_SIZE
}

// getReg gets the register index for a word.
func (asm *Assembler) getReg(word string) (reg CodeReg, err error) {
	match := reReg.FindStringSubmatch(word)
	if match == nil {
		err = ErrRegisterInvalid
		return
	}

	n, _ := strconv.Atoi(match[1])
	reg = CodeReg(n)
	return
}

// getDir gets a 16-bit address, or the label to link it to.
func (asm *Assembler) getDir(word string) (dir uint16, label string, err error) {
	value, err := asm.valueOf(word)
	if err != nil {
		if reIdent.MatchString(word) {
			label = word
			err = nil
		}
		return
	}

	if value < 0 || value > 0xffff {
		err = ErrImmediateRange
		return
	}

	dir = uint16(value)
	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var code Word
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	defer func() {
		if err != nil {
			return
		}
		opcode := Opcode{LineNo: lineno, Addr: asm.currentAddr(), Words: words, Code: code, LinkLabel: label}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	// .word VALUE
	if words[0] == ".word" {
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(words) > 2 {
			err = ErrOpcodeExtraArgs
			return
		}
		var value int64
		value, err = asm.valueOf(words[1])
		if err != nil {
			return
		}
		code = Word(int32(uint32(value)))
		return
	}

	op, ok := opMap[strings.ToLower(words[0])]
	if !ok {
		err = ErrInstructionInvalid
		return
	}

	args := words[1:]
	need := map[CodeForm]int{
		FORM_NONE:   0,
		FORM_RN:     1,
		FORM_RN_RM:  2,
		FORM_RN_DIR: 2,
		FORM_DIR:    1,
	}[op.Form()]
	if len(args) < need {
		err = ErrOpcodeValueMissing
		return
	}
	if len(args) > need {
		err = ErrOpcodeExtraArgs
		return
	}

	inst := Instruction{Op: op}
	switch op.Form() {
	case FORM_RN:
		inst.Rn, err = asm.getReg(args[0])
	case FORM_RN_RM:
		inst.Rn, err = asm.getReg(args[0])
		if err == nil {
			inst.Rm, err = asm.getReg(args[1])
		}
	case FORM_RN_DIR:
		inst.Rn, err = asm.getReg(args[0])
		if err == nil {
			inst.Dir, label, err = asm.getDir(args[1])
		}
	case FORM_DIR:
		inst.Dir, label, err = asm.getDir(args[0])
	}
	if err != nil {
		return
	}

	code = inst.Encode()
	return
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		line, _, _ = strings.Cut(text, ";")
		line = strings.TrimSpace(line)

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		lineno = op.LineNo
		line = strings.Join(op.Words, " ")

		addr, ok := asm.Label[op.LinkLabel]
		if !ok {
			err = ErrLabelMissing(op.LinkLabel)
			return
		}
		if addr > 0xffff {
			err = ErrImmediateRange
			return
		}

		inst := Decode(op.Code)
		inst.Dir = uint16(addr)
		op.Code = inst.Encode()
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}
