package io

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// Tape provides sequential I/O of decimal integers.
// Input is split on any whitespace; output is one value per line.
type Tape struct {
	Input  io.Reader
	Output io.Writer

	scanner *bufio.Scanner
}

var _ Channel = (*Tape)(nil)

// Rewind drops any buffered input. The underlying streams are not seeked.
func (tc *Tape) Rewind() {
	tc.scanner = nil
}

// Receive reads and parses the next token from the input stream.
// io.EOF is returned at the end of input.
func (tc *Tape) Receive() (value int32, err error) {
	if tc.Input == nil {
		err = ErrChannelClosed
		return
	}

	if tc.scanner == nil {
		tc.scanner = bufio.NewScanner(tc.Input)
		tc.scanner.Split(bufio.ScanWords)
	}

	if !tc.scanner.Scan() {
		err = tc.scanner.Err()
		if err == nil {
			err = io.EOF
		}
		return
	}

	token := tc.scanner.Text()
	v64, err := strconv.ParseInt(token, 10, 32)
	if err != nil {
		err = ErrParseInteger(token)
		return
	}

	value = int32(v64)
	return
}

// Send writes a value to the output stream, followed by a newline.
func (tc *Tape) Send(value int32) (err error) {
	if tc.Output == nil {
		err = ErrChannelClosed
		return
	}

	_, err = fmt.Fprintf(tc.Output, "%d\n", value)
	return
}
