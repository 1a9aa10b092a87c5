package cpu

import (
	"fmt"
)

// Report is a snapshot of the machine state, taken when the cycle stops.
type Report struct {
	State    State
	Alu      Word
	Halted   bool
	Mbr      Word
	Pc       int
	Ir       Instruction
	Register [NUM_REGS]Word
	Ticks    int
	Fault    error
}

// Report returns a snapshot of the current machine state.
func (cpu *Cpu) Report() Report {
	return Report{
		State:    cpu.State(),
		Alu:      cpu.Alu,
		Halted:   cpu.Halted,
		Mbr:      cpu.Mbr,
		Pc:       cpu.Pc,
		Ir:       cpu.Ir,
		Register: cpu.Register,
		Ticks:    cpu.Ticks,
		Fault:    cpu.Fault,
	}
}

// String formats the report, one field per line.
func (rpt Report) String() (text string) {
	line := func(name string, value any) {
		text += fmt.Sprintf("% 5s: %v\n", name, value)
	}

	line("state", rpt.State)
	line("alu", rpt.Alu)
	line("halt", rpt.Halted)
	line("mbr", fmt.Sprintf("%04X_%04X", uint32(rpt.Mbr)>>16, uint32(rpt.Mbr)&0xffff))
	line("pc", rpt.Pc)
	line("ir", rpt.Ir)
	for n, reg := range rpt.Register {
		line(fmt.Sprintf("r%d", n), reg)
	}
	line("ticks", rpt.Ticks)
	if rpt.Fault != nil {
		line("fault", rpt.Fault)
	}

	return
}
