// Package cpu implements the processor and assembler for the vncpu system.
//
// The CPU is a strictly sequential von Neumann machine: a program counter,
// eight 32-bit general-purpose registers (r0-r7), an ALU whose last result
// drives the jz and jn branches, and two disjoint byte addressed memories,
// one for code and one for data.
//
// Every instruction is a single 32-bit word:
//
//	31    28 27    24 23    20 19    16 15                0
//	| opcode |   rn   |   rm   | unused |        dir        |
//
// The assembler provides a small assembly language for the instruction set,
// supporting labels, equates, raw data words, and compile-time expression
// evaluation.
package cpu
