package cpu

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func FuzzExecute(f *testing.F) {
	for op := range CodeOp(16) {
		f.Add(uint32(op)<<28, int32(0), true)
		f.Add(uint32(op)<<28|0x0120_0010, int32(-1), false)
		f.Add(uint32(op)<<28|0x0980_ffff, int32(1), true)
	}

	f.Fuzz(func(t *testing.T, bits uint32, alu int32, has_input bool) {
		assert := assert.New(t)

		inst := Decode(word(bits))
		assert.True(inst.Op >= OP_NOP && inst.Op <= OP_HALT)
		assert.Equal(word(bits&^0x000f_0000), inst.Encode())

		cpu, output := newTestCpu()
		if has_input {
			cpu.Input.Send(0x1234)
		}
		cpu.Pc = 0x10
		cpu.Alu = Word(alu)
		for n := range cpu.Register {
			cpu.Register[n] = Word(0x50607080 + n)
		}
		for n := range cpu.Data.Data {
			cpu.Data.Data[n] = byte(0xc0 | n)
		}

		pre_reg := cpu.Register
		pre_data := slices.Clone(cpu.Data.Data)

		err := cpu.Execute(inst)

		code_str := fmt.Sprintf("0x%08x (%v) alu:%v input:%v\ncpu:%v", bits, inst, alu, has_input, cpu.String())

		if err != nil {
			// Failed instructions have no side effects.
			assert.Equal(pre_reg, cpu.Register, code_str)
			assert.Equal(pre_data, cpu.Data.Data, code_str)
			assert.Equal(Word(alu), cpu.Alu, code_str)
			assert.Equal(0x10, cpu.Pc, code_str)
			assert.False(cpu.Halted, code_str)
			assert.Nil(output.Values(), code_str)

			switch {
			case errors.Is(err, ErrInvalidOperand):
				bad_rn := inst.Op.Form() != FORM_DIR && !inst.Rn.Valid()
				bad_rm := inst.Op.Form() == FORM_RN_RM && !inst.Rm.Valid()
				assert.True(bad_rn || bad_rm, code_str)
			case errors.Is(err, ErrOutOfBounds):
				switch inst.Op.Form() {
				case FORM_RN_DIR:
					assert.False(cpu.Data.Valid(int(inst.Dir)), code_str)
				case FORM_DIR:
					assert.False(cpu.Code.Valid(int(inst.Dir)), code_str)
				default:
					assert.NoError(err, code_str)
				}
			case errors.Is(err, ErrMalformedInput):
				assert.Equal(OP_IN, inst.Op, code_str)
				assert.False(has_input, code_str)
			default:
				assert.NoError(err, code_str)
			}
			return
		}

		// Successful instructions only touch their operands.
		for n := range cpu.Register {
			if inst.Op.Form() != FORM_DIR && inst.Op != OP_OUT && inst.Op != OP_STR && CodeReg(n) == inst.Rn {
				continue
			}
			assert.Equal(pre_reg[n], cpu.Register[n], code_str)
		}

		switch inst.Op {
		case OP_NOP:
			assert.Equal(Word(0), cpu.Alu, code_str)
		case OP_HALT:
			assert.Equal(Word(0), cpu.Alu, code_str)
			assert.True(cpu.Halted, code_str)
		case OP_JMP:
			assert.Equal(int(inst.Dir), cpu.Pc, code_str)
		case OP_JZ:
			if alu == 0 {
				assert.Equal(int(inst.Dir), cpu.Pc, code_str)
			} else {
				assert.Equal(0x10, cpu.Pc, code_str)
			}
			assert.Equal(Word(alu), cpu.Alu, code_str)
		case OP_JN:
			if alu < 0 {
				assert.Equal(int(inst.Dir), cpu.Pc, code_str)
			} else {
				assert.Equal(0x10, cpu.Pc, code_str)
			}
			assert.Equal(Word(alu), cpu.Alu, code_str)
		case OP_IN:
			assert.Equal(Word(0x1234), cpu.Register[inst.Rn], code_str)
		case OP_OUT:
			assert.Equal([]int32{int32(pre_reg[inst.Rn])}, output.Values(), code_str)
		case OP_STR:
			value, _ := cpu.Data.ReadWord(int(inst.Dir))
			assert.Equal(pre_reg[inst.Rn], value, code_str)
		default:
			assert.Equal(cpu.Register[inst.Rn], cpu.Alu, code_str)
		}

		if inst.Op.Form() != FORM_DIR {
			assert.Equal(0x10, cpu.Pc, code_str)
		}
		if inst.Op != OP_STR {
			assert.Equal(pre_data, cpu.Data.Data, code_str)
		}
	})
}
