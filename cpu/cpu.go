package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"

	"github.com/ezrec/vncpu/internal"
	"github.com/ezrec/vncpu/io"
)

// Channel is an I/O channel interface.
type Channel io.Channel

const (
	MEM_SIZE  = 32 // Default capacity of the code and data memories, in bytes.
	NUM_REGS  = 8  // Number of general purpose registers.
	WORD_SIZE = 4  // Bytes per word.
)

// State is the control unit state.
type State int

//go:generate go tool stringer -linecomment -type=State
const (
	STATE_RUNNING = State(0) // running
	STATE_HALTED  = State(1) // halted
	STATE_FAULTED = State(2) // faulted
)

// Cpu is the simulation context for the processor: the control unit,
// ALU, register file and the two memories.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Code *Memory // System memory, holds the program.
	Data *Memory // Data memory, accessed by ldr and str.

	Pc       int            // Byte address of the next instruction.
	Alu      Word           // Result of the last ALU operation.
	Halted   bool           // Set by the halt instruction.
	Mbr      Word           // Last fetched instruction word.
	Ir       Instruction    // Last decoded instruction.
	Register [NUM_REGS]Word // Register file.
	Fault    error          // Error that stopped the cycle, if any.

	Ticks int // Instructions fetched since reset.

	Input  Channel // Source for the in instruction.
	Output Channel // Sink for the out instruction.
}

// NewCpu creates a new CPU with specifically sized code and data memories.
func NewCpu(codeSize, dataSize int) (cpu *Cpu) {
	cpu = &Cpu{
		Code: NewMemory(codeSize),
		Data: NewMemory(dataSize),
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return internal.Sorted(map[string]string{
		"NUM_REGS":  fmt.Sprintf("%d", NUM_REGS),
		"WORD_SIZE": fmt.Sprintf("%d", WORD_SIZE),
		"CODE_SIZE": fmt.Sprintf("%d", cpu.Code.Capacity()),
		"DATA_SIZE": fmt.Sprintf("%d", cpu.Data.Capacity()),
	})
}

// Reset the CPU state.
// - Clears the registers, ALU, halt flag and fault.
// - Zeros both memories and the statistics counter.
// - Rewinds the I/O channels.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	cpu.Code.Reset()
	cpu.Data.Reset()
	cpu.Pc = 0
	cpu.Alu = 0
	cpu.Halted = false
	cpu.Mbr = 0
	cpu.Ir = Instruction{}
	cpu.Fault = nil
	cpu.Ticks = 0

	for _, channel := range []Channel{cpu.Input, cpu.Output} {
		if channel != nil {
			channel.Rewind()
		}
	}
}

// Load replaces code memory with the program from address 0, and readies
// the control unit for its first cycle there. Registers and data memory
// are kept. Nothing is changed if the program does not fit.
func (cpu *Cpu) Load(words []Word) (start int, err error) {
	if len(words)*WORD_SIZE > cpu.Code.Capacity() {
		err = ErrCapacityExceeded
		return
	}

	cpu.Code.Reset()
	cpu.Alu = 0
	cpu.Halted = false
	cpu.Mbr = 0
	cpu.Ir = Instruction{}
	cpu.Fault = nil
	cpu.Ticks = 0

	for n, word := range words {
		err = cpu.Code.WriteWord(start+n*WORD_SIZE, word)
		if err != nil {
			return
		}
	}

	cpu.Pc = start

	if cpu.Verbose {
		log.Printf("cpu: loaded %d words at %#x", len(words), start)
	}

	return
}

// State returns the control unit state.
func (cpu *Cpu) State() State {
	switch {
	case cpu.Fault != nil:
		return STATE_FAULTED
	case cpu.Halted:
		return STATE_HALTED
	}

	return STATE_RUNNING
}

// Tick executes a single instruction cycle.
// Any error is terminal, and is kept in Fault.
func (cpu *Cpu) Tick() (err error) {
	switch cpu.State() {
	case STATE_HALTED:
		return ErrHalted
	case STATE_FAULTED:
		return cpu.Fault
	}

	defer func() {
		if err != nil {
			cpu.Fault = err
			if cpu.Verbose {
				log.Printf("cpu: fault: %v", err)
			}
		}
	}()

	word, err := cpu.Code.ReadWord(cpu.Pc)
	if err != nil {
		err = errors.Join(ErrFetch, err)
		return
	}

	cpu.Mbr = word
	cpu.Ir = Decode(word)
	cpu.Ticks++

	if cpu.Verbose {
		log.Printf("%03x: %v", cpu.Pc, cpu.Ir)
	}

	// Advance before dispatch; jumps overwrite the advanced value.
	cpu.Pc += WORD_SIZE

	err = cpu.Execute(cpu.Ir)
	return
}

// Run ticks the CPU until it halts or faults.
func (cpu *Cpu) Run() (err error) {
	for cpu.State() == STATE_RUNNING {
		err = cpu.Tick()
		if err != nil {
			return
		}
	}

	return cpu.Fault
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() string {
	return cpu.Report().String()
}
