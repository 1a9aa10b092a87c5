package cpu

import (
	"errors"

	"github.com/ezrec/vncpu/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrOutOfBounds      = errors.New(f("address out of bounds"))
	ErrInvalidOperand   = errors.New(f("register operand invalid"))
	ErrCapacityExceeded = errors.New(f("program exceeds code memory"))
	ErrMalformedInput   = errors.New(f("malformed input"))
	ErrUnknownOpcode    = errors.New(f("unknown opcode"))
	ErrHalted           = errors.New(f("cpu halted"))
	ErrFetch            = errors.New(f("instruction fetch"))
	ErrChannelInvalid   = errors.New(f("channel invalid"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
	ErrImmediateRange     = errors.New(f("immediate out of range"))
)

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrOpcode names the instruction that failed to execute.
type ErrOpcode Instruction

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0x%08x %v", uint32(Instruction(eo).Encode()), Instruction(eo).String())
}

// Is matches any ErrOpcode, whatever the instruction. Use errors.As to
// inspect the failing instruction.
func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
