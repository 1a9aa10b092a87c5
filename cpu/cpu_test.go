package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/vncpu/io"
)

// word converts raw instruction bits to a Word.
func word(bits uint32) Word {
	return Word(int32(bits))
}

// newTestCpu creates a CPU with queued input values and a captured output.
func newTestCpu(inputs ...int32) (cpu *Cpu, output *io.Temporary) {
	cpu = NewCpu(MEM_SIZE, MEM_SIZE)

	input := &io.Temporary{Capacity: 8}
	input.Rewind()
	for _, value := range inputs {
		input.Send(value)
	}

	output = &io.Temporary{Capacity: 8}
	output.Rewind()

	cpu.Input = input
	cpu.Output = output
	return
}

func TestCpu(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(MEM_SIZE, 64)

	assert.False(cpu.Verbose)
	assert.Equal(MEM_SIZE, cpu.Code.Capacity())
	assert.Equal(64, cpu.Data.Capacity())
	assert.Equal(STATE_RUNNING, cpu.State())

	defines := map[string]string{}
	for key, value := range cpu.Defines() {
		defines[key] = value
	}
	assert.Equal("32", defines["CODE_SIZE"])
	assert.Equal("64", defines["DATA_SIZE"])
	assert.Equal("8", defines["NUM_REGS"])
	assert.Equal("4", defines["WORD_SIZE"])
}

func TestCpuLoad(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name     string
		codeSize int
		words    int
		err      error
	}){
		{"empty", MEM_SIZE, 0, nil},
		{"one", MEM_SIZE, 1, nil},
		{"full", MEM_SIZE, 8, nil},
		{"over", MEM_SIZE, 9, ErrCapacityExceeded},
		{"large_full", 64, 16, nil},
		{"large_over", 64, 17, ErrCapacityExceeded},
	}

	for _, entry := range table {
		cpu := NewCpu(entry.codeSize, MEM_SIZE)
		cpu.Pc = 12

		words := make([]Word, entry.words)
		for n := range words {
			words[n] = Word(-1 - n)
		}

		start, err := cpu.Load(words)
		assert.Equal(entry.err, err, entry.name)
		if err != nil {
			// Code memory untouched, cycle not started.
			assert.Equal(make([]byte, entry.codeSize), cpu.Code.Data, entry.name)
			assert.Equal(12, cpu.Pc, entry.name)
			continue
		}

		assert.Equal(0, start, entry.name)
		assert.Equal(0, cpu.Pc, entry.name)
		for n, expected := range words {
			value, err := cpu.Code.ReadWord(n * WORD_SIZE)
			assert.NoError(err, entry.name)
			assert.Equal(expected, value, entry.name)
		}
	}
}

func TestCpuRunAddInputs(t *testing.T) {
	assert := assert.New(t)

	cpu, output := newTestCpu(3, 4)

	program := []Word{
		MakeCodeReg(OP_IN, 0),
		MakeCodeReg(OP_IN, 1),
		MakeCodeReg(OP_ADD, 0, 1),
		MakeCodeReg(OP_OUT, 0),
		MakeCodeReg(OP_HALT),
	}

	_, err := cpu.Load(program)
	assert.NoError(err)

	err = cpu.Run()
	assert.NoError(err)

	assert.Equal([]int32{7}, output.Values())
	assert.Equal(STATE_HALTED, cpu.State())
	assert.True(cpu.Halted)
	assert.Equal(Word(7), cpu.Register[0])
	assert.Equal(Word(4), cpu.Register[1])
	assert.Equal(Word(0), cpu.Alu)
	assert.Equal(20, cpu.Pc)
	assert.Equal(word(0xf000_0000), cpu.Mbr)
	assert.Equal(5, cpu.Ticks)
	assert.Nil(cpu.Fault)
}

func TestCpuRunHaltOnly(t *testing.T) {
	assert := assert.New(t)

	cpu, output := newTestCpu()

	_, err := cpu.Load([]Word{MakeCodeReg(OP_HALT)})
	assert.NoError(err)

	assert.NoError(cpu.Run())

	assert.Nil(output.Values())
	assert.True(cpu.Halted)
	assert.Equal([NUM_REGS]Word{}, cpu.Register)
	assert.Equal(Word(0), cpu.Alu)
	assert.Equal(4, cpu.Pc)

	// A halted cpu stays halted.
	assert.Equal(ErrHalted, cpu.Tick())
	assert.Equal(4, cpu.Pc)
	assert.Equal(1, cpu.Ticks)
	assert.NoError(cpu.Run())
}

func TestCpuRunJumpOutOfRange(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(5)

	program := []Word{
		MakeCodeReg(OP_IN, 1),
		MakeCodeDir(OP_JMP, 0, 0x40),
		MakeCodeReg(OP_HALT),
	}

	_, err := cpu.Load(program)
	assert.NoError(err)

	err = cpu.Run()
	assert.ErrorIs(err, ErrOutOfBounds)
	assert.ErrorIs(err, ErrOpcode{})
	assert.True(strings.Contains(err.Error(), "jmp 0x0040"), err.Error())

	assert.Equal(STATE_FAULTED, cpu.State())
	assert.False(cpu.Halted)
	assert.Equal([NUM_REGS]Word{0, 5}, cpu.Register)
	assert.Equal(Word(5), cpu.Alu)
	assert.Equal(8, cpu.Pc)

	report := cpu.Report()
	assert.Equal(STATE_FAULTED, report.State)
	assert.Equal(err, report.Fault)
	assert.Equal(cpu.Register, report.Register)
	assert.Equal(MakeCodeDir(OP_JMP, 0, 0x40), report.Mbr)

	// A faulted cpu keeps its fault.
	assert.Equal(err, cpu.Tick())
	assert.Equal(8, cpu.Pc)
}

func TestCpuRunMalformedInput(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(MEM_SIZE, MEM_SIZE)
	cpu.Input = &io.Tape{Input: strings.NewReader("abc\n")}

	_, err := cpu.Load([]Word{MakeCodeReg(OP_IN, 2), MakeCodeReg(OP_HALT)})
	assert.NoError(err)

	cpu.Register[2] = 9
	cpu.Alu = -3

	err = cpu.Run()
	assert.ErrorIs(err, ErrMalformedInput)
	var perr io.ErrParseInteger
	assert.True(errors.As(err, &perr))

	assert.Equal(STATE_FAULTED, cpu.State())
	assert.Equal(Word(9), cpu.Register[2])
	assert.Equal(Word(-3), cpu.Alu)
}

func TestCpuRunEndOfInput(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(1)

	_, err := cpu.Load([]Word{MakeCodeReg(OP_IN, 0), MakeCodeReg(OP_IN, 1), MakeCodeReg(OP_HALT)})
	assert.NoError(err)

	err = cpu.Run()
	assert.ErrorIs(err, ErrMalformedInput)
	assert.ErrorIs(err, io.ErrChannelEmpty)
	assert.Equal(Word(1), cpu.Register[0])
	assert.Equal(8, cpu.Pc)
}

func TestCpuRunOffEnd(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu()

	// Zeroed code memory decodes as nop.
	_, err := cpu.Load([]Word{MakeCodeReg(OP_NOP)})
	assert.NoError(err)

	err = cpu.Run()
	assert.ErrorIs(err, ErrFetch)
	assert.ErrorIs(err, ErrOutOfBounds)
	assert.Equal(MEM_SIZE/WORD_SIZE, cpu.Ticks)
	assert.Equal(MEM_SIZE, cpu.Pc)
	assert.Equal(STATE_FAULTED, cpu.State())
}

func TestCpuTickAdvancesBeforeJump(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu()

	program := []Word{
		MakeCodeDir(OP_JMP, 0, 12),
		MakeCodeReg(OP_HALT),
		MakeCodeReg(OP_HALT),
		MakeCodeDir(OP_JZ, 0, 4),
	}
	_, err := cpu.Load(program)
	assert.NoError(err)

	assert.NoError(cpu.Tick())
	assert.Equal(12, cpu.Pc)
	assert.Equal(Word(12), cpu.Alu)

	// Alu is 12, so the branch is not taken: pc is the advanced value.
	assert.NoError(cpu.Tick())
	assert.Equal(16, cpu.Pc)

	cpu.Pc = 12
	cpu.Alu = 0
	assert.NoError(cpu.Tick())
	assert.Equal(4, cpu.Pc)
}

func TestCpuReset(t *testing.T) {
	assert := assert.New(t)

	cpu, output := newTestCpu(1, 2)

	_, err := cpu.Load([]Word{MakeCodeReg(OP_IN, 0), MakeCodeReg(OP_OUT, 0), MakeCodeDir(OP_STR, 0, 0), MakeCodeReg(OP_HALT)})
	assert.NoError(err)
	assert.NoError(cpu.Run())
	assert.Equal([]int32{1}, output.Values())

	cpu.Reset()

	assert.Equal(STATE_RUNNING, cpu.State())
	assert.Equal([NUM_REGS]Word{}, cpu.Register)
	assert.Equal(make([]byte, MEM_SIZE), cpu.Code.Data)
	assert.Equal(make([]byte, MEM_SIZE), cpu.Data.Data)
	assert.Equal(0, cpu.Pc)
	assert.Equal(0, cpu.Ticks)
	assert.Equal(Word(0), cpu.Mbr)
	assert.Nil(output.Values())
}

func TestCpuReportString(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(7)
	_, err := cpu.Load([]Word{MakeCodeReg(OP_IN, 0), MakeCodeReg(OP_HALT)})
	assert.NoError(err)
	assert.NoError(cpu.Run())

	text := cpu.String()
	assert.Contains(text, "state: halted\n")
	assert.Contains(text, "  alu: 0\n")
	assert.Contains(text, " halt: true\n")
	assert.Contains(text, "  mbr: F000_0000\n")
	assert.Contains(text, "   pc: 8\n")
	assert.Contains(text, "   ir: halt\n")
	assert.Contains(text, "   r0: 7\n")
	assert.Contains(text, "   r7: 0\n")
	assert.NotContains(text, "fault")
}

func TestCpuLoadAfterStop(t *testing.T) {
	assert := assert.New(t)

	cpu, output := newTestCpu(5)

	_, err := cpu.Load([]Word{MakeCodeReg(OP_HALT), MakeCodeReg(OP_HALT), MakeCodeReg(OP_HALT), MakeCodeReg(OP_HALT)})
	assert.NoError(err)
	assert.NoError(cpu.Run())
	assert.Equal(STATE_HALTED, cpu.State())

	_, err = cpu.Load([]Word{MakeCodeReg(OP_IN, 0), MakeCodeReg(OP_OUT, 0)})
	assert.NoError(err)
	assert.Equal(STATE_RUNNING, cpu.State())
	assert.Equal(0, cpu.Ticks)
	assert.Equal(Word(0), cpu.Mbr)

	// Old code past the new program is gone, so the cycle runs off the end.
	err = cpu.Run()
	assert.ErrorIs(err, ErrFetch)
	assert.Equal([]int32{5}, output.Values())
	assert.Equal(MEM_SIZE/WORD_SIZE, cpu.Ticks)

	// Loading clears the fault too.
	_, err = cpu.Load([]Word{MakeCodeReg(OP_HALT)})
	assert.NoError(err)
	assert.Nil(cpu.Fault)
	assert.Equal(STATE_RUNNING, cpu.State())
	assert.NoError(cpu.Run())
	assert.True(cpu.Halted)
	assert.Equal(Word(5), cpu.Register[0])
}
