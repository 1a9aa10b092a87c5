package cpu

import (
	"fmt"
)

// Word is a 32-bit two's complement value: register contents, memory
// cells and raw instruction encodings.
type Word int32

// CodeOp is an instruction opcode.
type CodeOp int

//go:generate go tool stringer -linecomment -type=CodeOp
const (
	OP_NOP  = CodeOp(0x0) // nop
	OP_ADD  = CodeOp(0x1) // add
	OP_SUB  = CodeOp(0x2) // sub
	OP_AND  = CodeOp(0x3) // and
	OP_OR   = CodeOp(0x4) // or
	OP_XOR  = CodeOp(0x5) // xor
	OP_NOT  = CodeOp(0x6) // not
	OP_MOV  = CodeOp(0x7) // mov
	OP_LDR  = CodeOp(0x8) // ldr
	OP_STR  = CodeOp(0x9) // str
	OP_JMP  = CodeOp(0xa) // jmp
	OP_JZ   = CodeOp(0xb) // jz
	OP_JN   = CodeOp(0xc) // jn
	OP_IN   = CodeOp(0xd) // in
	OP_OUT  = CodeOp(0xe) // out
	OP_HALT = CodeOp(0xf) // halt
)

// Instruction field masks.
const (
	OP_MASK  = uint32(0xf000_0000) // Opcode, bits 31-28.
	RN_MASK  = uint32(0x0f00_0000) // First register, bits 27-24.
	RM_MASK  = uint32(0x00f0_0000) // Second register, bits 23-20.
	DIR_MASK = uint32(0x0000_ffff) // Address or immediate, bits 15-0.
)

// CodeForm describes which operand fields an opcode consumes.
type CodeForm int

const (
	FORM_NONE   = CodeForm(0) // No operands.
	FORM_RN     = CodeForm(1) // Rn only.
	FORM_RN_RM  = CodeForm(2) // Rn and Rm.
	FORM_RN_DIR = CodeForm(3) // Rn and a data memory address.
	FORM_DIR    = CodeForm(4) // A code memory address.
)

// Form returns the operand form of the opcode.
func (op CodeOp) Form() CodeForm {
	switch op {
	case OP_ADD, OP_SUB, OP_AND, OP_OR, OP_XOR, OP_MOV:
		return FORM_RN_RM
	case OP_NOT, OP_IN, OP_OUT:
		return FORM_RN
	case OP_LDR, OP_STR:
		return FORM_RN_DIR
	case OP_JMP, OP_JZ, OP_JN:
		return FORM_DIR
	}

	return FORM_NONE
}

// CodeReg is a register index as decoded from an instruction.
// Only r0-r7 exist; the 4-bit fields can name up to r15.
type CodeReg int

// Valid returns true if the register exists in the register file.
func (reg CodeReg) Valid() bool {
	return reg >= 0 && reg < NUM_REGS
}

func (reg CodeReg) String() string {
	return fmt.Sprintf("r%d", int(reg))
}

// Instruction is a decoded instruction word.
type Instruction struct {
	Op  CodeOp
	Rn  CodeReg
	Rm  CodeReg
	Dir uint16
}

// Decode splits an instruction word into its fields.
// Bits 19-16 are reserved and ignored.
func Decode(word Word) (inst Instruction) {
	bits := uint32(word)
	inst.Op = CodeOp((bits & OP_MASK) >> 28)
	inst.Rn = CodeReg((bits & RN_MASK) >> 24)
	inst.Rm = CodeReg((bits & RM_MASK) >> 20)
	inst.Dir = uint16(bits & DIR_MASK)
	return
}

// Encode packs the instruction into a word. Fields are truncated to their
// encoded widths and the reserved bits are zero.
func (inst Instruction) Encode() Word {
	bits := (uint32(inst.Op) << 28) & OP_MASK
	bits |= (uint32(inst.Rn) << 24) & RN_MASK
	bits |= (uint32(inst.Rm) << 20) & RM_MASK
	bits |= uint32(inst.Dir) & DIR_MASK
	return Word(int32(bits))
}

// MakeCode creates an encoded instruction word.
func MakeCode(op CodeOp, rn, rm CodeReg, dir uint16) Word {
	return Instruction{Op: op, Rn: rn, Rm: rm, Dir: dir}.Encode()
}

// MakeCodeReg creates a register form instruction, such as 'add r0 r1' or 'out r2'.
func MakeCodeReg(op CodeOp, regs ...CodeReg) Word {
	var rn, rm CodeReg
	if len(regs) > 0 {
		rn = regs[0]
	}
	if len(regs) > 1 {
		rm = regs[1]
	}
	return MakeCode(op, rn, rm, 0)
}

// MakeCodeDir creates an address form instruction, such as 'ldr r0 0x10' or 'jz 8'.
func MakeCodeDir(op CodeOp, rn CodeReg, dir uint16) Word {
	return MakeCode(op, rn, 0, dir)
}

// String returns the assembly language representation of this instruction.
func (inst Instruction) String() (out string) {
	switch inst.Op.Form() {
	case FORM_RN:
		out = fmt.Sprintf("%v %v", inst.Op, inst.Rn)
	case FORM_RN_RM:
		out = fmt.Sprintf("%v %v %v", inst.Op, inst.Rn, inst.Rm)
	case FORM_RN_DIR:
		out = fmt.Sprintf("%v %v 0x%04x", inst.Op, inst.Rn, inst.Dir)
	case FORM_DIR:
		out = fmt.Sprintf("%v 0x%04x", inst.Op, inst.Dir)
	default:
		out = inst.Op.String()
	}

	return
}
