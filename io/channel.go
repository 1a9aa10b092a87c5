// Package io provides the I/O channels for the vncpu emulator.
// Channels carry whole 32-bit words: a Tape adapts a text stream of
// decimal integers, and a Temporary is an in-memory FIFO.
package io

// Channel defines the interface for all I/O channels.
type Channel interface {
	// Rewind resets the channel to its initial state.
	Rewind()
	// Receive reads the next value from the channel.
	Receive() (value int32, err error)
	// Send writes a single value to the channel.
	Send(value int32) error
}
