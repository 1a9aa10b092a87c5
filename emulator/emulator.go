// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"io"
	"iter"
	"log"

	"github.com/ezrec/vncpu/cpu"
	"github.com/ezrec/vncpu/internal"
	vio "github.com/ezrec/vncpu/io"
)

// Emulator state. CPU + program listing + tape IO channel.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently loaded program listing.

	Tape vio.Tape // Tape IO channel, used for both in and out.

	MaxTicks int // If non-zero, Run stops with ErrTickLimit after this many ticks.

	loaded bool
}

// NewEmulator creates a new emulator with the default memory sizes.
func NewEmulator() (emu *Emulator) {
	return NewEmulatorSize(cpu.MEM_SIZE, cpu.MEM_SIZE)
}

// NewEmulatorSize creates a new emulator with specific code and data memory sizes.
func NewEmulatorSize(codeSize, dataSize int) (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(codeSize, dataSize),
		Program: &cpu.Program{},
	}

	emu.Cpu.Input = &emu.Tape
	emu.Cpu.Output = &emu.Tape

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	emulator_defines := map[string]string{
		"CODE_END": fmt.Sprintf("%v", emu.Cpu.Code.Capacity()-cpu.WORD_SIZE),
		"DATA_END": fmt.Sprintf("%v", emu.Cpu.Data.Capacity()-cpu.WORD_SIZE),
	}

	return internal.Concat2(internal.Sorted(emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Assemble parses assembly text into the emulator's program.
// The emulator defines are available to the source as equates.
func (emu *Emulator) Assemble(input io.Reader) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err := asm.Parse(input)
	if err != nil {
		return
	}

	emu.Program = prog
	emu.loaded = false

	return
}

// Reset the cpu, and load the program into code memory.
// If the program does not fit, the cycle is never started.
func (emu *Emulator) Reset() (err error) {
	emu.loaded = false
	emu.Cpu.Verbose = emu.Verbose

	emu.Cpu.Reset()

	_, err = emu.Cpu.Load(emu.Program.Binary())
	if err != nil {
		if emu.Verbose {
			log.Printf("emulator: load: %v", err)
		}
		return
	}

	emu.loaded = true

	return
}

// LineNo returns the source line number of the next opcode to execute,
// or 0 if the program counter is not at an assembled opcode.
func (emu *Emulator) LineNo() int {
	op := emu.Program.Debug(emu.Cpu.Pc)
	if op == nil {
		return 0
	}

	return op.LineNo
}

// Tick performs a single tick of the emulator.
// done is set once the cpu has halted or faulted.
func (emu *Emulator) Tick() (done bool, err error) {
	if !emu.loaded {
		done = true
		err = ErrNotLoaded
		return
	}

	if emu.Cpu.State() == cpu.STATE_HALTED {
		done = true
		return
	}

	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Cpu.Pc
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: pc, LineNo: lineno, Err: err}
		}
	}()

	err = emu.Cpu.Tick()
	done = emu.Cpu.State() != cpu.STATE_RUNNING

	return
}

// Run ticks the emulator until the cpu halts or faults, and returns the
// final machine report.
func (emu *Emulator) Run() (report cpu.Report, err error) {
	var done bool
	for !done {
		if emu.MaxTicks > 0 && emu.Cpu.Ticks >= emu.MaxTicks {
			err = ErrTickLimit
			break
		}
		done, err = emu.Tick()
		if err != nil {
			break
		}
	}

	report = emu.Cpu.Report()
	return
}
