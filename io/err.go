package io

import (
	"errors"

	"github.com/ezrec/vncpu/translate"
)

var f = translate.From

var (
	// Channel errors
	ErrChannelFull   = errors.New(f("channel full"))
	ErrChannelEmpty  = errors.New(f("channel empty"))
	ErrChannelClosed = errors.New(f("channel closed"))
)

// ErrParseInteger is an input token that is not a 32-bit decimal integer.
type ErrParseInteger string

func (err ErrParseInteger) Error() string {
	return f("'%v' is not an integer", string(err))
}
