package cpu

import (
	"fmt"
	"iter"
	"strings"
)

// Opcode represents a line of assembled code with its source location and generated word.
type Opcode struct {
	LineNo    int
	Addr      int // Byte address in code memory.
	Words     []string
	Code      Word
	LinkLabel string
}

// Program is an assembled program.
type Program struct {
	Opcodes []Opcode
}

// Debug returns the opcode assembled at a code address, or nil.
func (prog *Program) Debug(addr int) *Opcode {
	for n, op := range prog.Opcodes {
		if op.Addr == addr {
			return &prog.Opcodes[n]
		}
	}

	return nil
}

// Codes iterates over the code address and word of each opcode.
func (prog *Program) Codes() iter.Seq2[int, Word] {
	return func(yield func(addr int, code Word) bool) {
		for _, op := range prog.Opcodes {
			if !yield(op.Addr, op.Code) {
				return
			}
		}
	}
}

// Binary returns the flat word image of the program, starting at address 0.
// Gaps between opcodes are zero filled.
func (prog *Program) Binary() (words []Word) {
	for addr, code := range prog.Codes() {
		index := addr / WORD_SIZE
		for len(words) <= index {
			words = append(words, 0)
		}
		words[index] = code
	}

	return
}

// Listing returns a human readable listing of the program.
func (prog *Program) Listing() string {
	var text strings.Builder

	for _, op := range prog.Opcodes {
		fmt.Fprintf(&text, "%04x: %08X  %-16v ; %d: %v\n",
			op.Addr, uint32(op.Code), Decode(op.Code), op.LineNo, strings.Join(op.Words, " "))
	}

	return text.String()
}
