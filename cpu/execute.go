package cpu

import (
	"errors"
)

var (
	ErrOperandRn = errors.New(f("rn"))
	ErrOperandRm = errors.New(f("rm"))
)

// Execute executes a single decoded instruction.
// A failing instruction leaves the registers, memories and ALU untouched.
func (cpu *Cpu) Execute(inst Instruction) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(inst), err)
		}
	}()

	switch inst.Op {
	case OP_NOP:
		cpu.Alu = 0
	case OP_ADD, OP_SUB, OP_AND, OP_OR, OP_XOR:
		err = cpu.execAlu(inst.Op, inst.Rn, inst.Rm)
	case OP_NOT:
		err = cpu.execNot(inst.Rn)
	case OP_MOV:
		err = cpu.execMov(inst.Rn, inst.Rm)
	case OP_LDR:
		err = cpu.execLoad(inst.Rn, int(inst.Dir))
	case OP_STR:
		err = cpu.execStore(inst.Rn, int(inst.Dir))
	case OP_JMP:
		err = cpu.execJump(int(inst.Dir))
	case OP_JZ:
		err = cpu.execBranch(int(inst.Dir), func(alu Word) bool { return alu == 0 })
	case OP_JN:
		err = cpu.execBranch(int(inst.Dir), func(alu Word) bool { return alu < 0 })
	case OP_IN:
		err = cpu.execIn(inst.Rn)
	case OP_OUT:
		err = cpu.execOut(inst.Rn)
	case OP_HALT:
		cpu.Alu = 0
		cpu.Halted = true
	default:
		err = ErrUnknownOpcode
	}

	return
}

// checkRn validates the first register operand.
func checkRn(rn CodeReg) error {
	if !rn.Valid() {
		return errors.Join(ErrInvalidOperand, ErrOperandRn)
	}
	return nil
}

// checkRm validates the second register operand.
func checkRm(rm CodeReg) error {
	if !rm.Valid() {
		return errors.Join(ErrInvalidOperand, ErrOperandRm)
	}
	return nil
}

// execAlu performs a two register ALU operation into rn.
func (cpu *Cpu) execAlu(op CodeOp, rn, rm CodeReg) (err error) {
	if err = checkRn(rn); err != nil {
		return
	}
	if err = checkRm(rm); err != nil {
		return
	}

	cpu.Alu = doAlu(op, cpu.Register[rn], cpu.Register[rm])
	cpu.Register[rn] = cpu.Alu
	return
}

func (cpu *Cpu) execNot(rn CodeReg) (err error) {
	if err = checkRn(rn); err != nil {
		return
	}

	cpu.Alu = ^cpu.Register[rn]
	cpu.Register[rn] = cpu.Alu
	return
}

func (cpu *Cpu) execMov(rn, rm CodeReg) (err error) {
	if err = checkRn(rn); err != nil {
		return
	}
	if err = checkRm(rm); err != nil {
		return
	}

	cpu.Alu = cpu.Register[rm]
	cpu.Register[rn] = cpu.Alu
	return
}

func (cpu *Cpu) execLoad(rn CodeReg, addr int) (err error) {
	if err = checkRn(rn); err != nil {
		return
	}

	value, err := cpu.Data.ReadWord(addr)
	if err != nil {
		return
	}

	cpu.Alu = value
	cpu.Register[rn] = value
	return
}

func (cpu *Cpu) execStore(rn CodeReg, addr int) (err error) {
	if err = checkRn(rn); err != nil {
		return
	}

	err = cpu.Data.WriteWord(addr, cpu.Register[rn])
	if err != nil {
		return
	}

	cpu.Alu = cpu.Register[rn]
	return
}

func (cpu *Cpu) execJump(addr int) (err error) {
	if !cpu.Code.Valid(addr) {
		err = ErrOutOfBounds
		return
	}

	cpu.Alu = Word(addr)
	cpu.Pc = addr
	return
}

// execBranch validates the target before testing the condition, so an
// out of range target faults even when the branch is not taken.
func (cpu *Cpu) execBranch(addr int, taken func(alu Word) bool) (err error) {
	if !cpu.Code.Valid(addr) {
		err = ErrOutOfBounds
		return
	}

	if taken(cpu.Alu) {
		cpu.Pc = addr
	}
	return
}

func (cpu *Cpu) execIn(rn CodeReg) (err error) {
	if err = checkRn(rn); err != nil {
		return
	}
	if cpu.Input == nil {
		err = ErrChannelInvalid
		return
	}

	value, err := cpu.Input.Receive()
	if err != nil {
		err = errors.Join(ErrMalformedInput, err)
		return
	}

	cpu.Alu = Word(value)
	cpu.Register[rn] = cpu.Alu
	return
}

func (cpu *Cpu) execOut(rn CodeReg) (err error) {
	if err = checkRn(rn); err != nil {
		return
	}
	if cpu.Output == nil {
		err = ErrChannelInvalid
		return
	}

	err = cpu.Output.Send(int32(cpu.Register[rn]))
	if err != nil {
		return
	}

	cpu.Alu = cpu.Register[rn]
	return
}

// doAlu performs the requested ALU action, and returns the output value.
// Arithmetic wraps at 32 bits.
func doAlu(op CodeOp, input Word, value Word) (output Word) {
	switch op {
	case OP_ADD:
		output = input + value
	case OP_SUB:
		output = input - value
	case OP_AND:
		output = input & value
	case OP_OR:
		output = input | value
	case OP_XOR:
		output = input ^ value
	}

	return
}
