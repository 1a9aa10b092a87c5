package emulator

import (
	"errors"

	"github.com/ezrec/vncpu/translate"
)

var f = translate.From

var (
	ErrNotLoaded = errors.New(f("program not loaded"))
	ErrTickLimit = errors.New(f("tick limit reached"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Pc     int
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d (pc 0x%02x) %v", err.LineNo, err.Pc, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
