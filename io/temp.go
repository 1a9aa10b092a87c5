package io

// Temporary implements a circular buffer of words.
// It operates as a FIFO queue with a fixed capacity and separate read/write positions.
type Temporary struct {
	Capacity int // Capacity in words.

	ReadIndex  int
	WriteIndex int
	Size       int
	Data       []int32
}

var _ Channel = (*Temporary)(nil)

// Rewind resets the temporary storage to empty, resetting indices and
// reinitializing the data buffer.
func (temp *Temporary) Rewind() {
	temp.ReadIndex = 0
	temp.WriteIndex = 0
	temp.Size = 0
	temp.Data = make([]int32, temp.Capacity)
}

// Receive pops the oldest value from the buffer.
// Returns ErrChannelEmpty if there is nothing to read.
func (temp *Temporary) Receive() (value int32, err error) {
	if temp.Size == 0 {
		err = ErrChannelEmpty
		return
	}

	value = temp.Data[temp.ReadIndex]
	temp.ReadIndex++
	if temp.ReadIndex == temp.Capacity {
		temp.ReadIndex = 0
	}
	temp.Size--

	return
}

// Send writes a value to the buffer at the current write position.
// Returns ErrChannelFull if the buffer has reached capacity.
func (temp *Temporary) Send(value int32) (err error) {
	if temp.Size >= temp.Capacity || len(temp.Data) != temp.Capacity {
		err = ErrChannelFull
		return
	}

	temp.Data[temp.WriteIndex] = value

	temp.WriteIndex++
	if temp.WriteIndex == temp.Capacity {
		temp.WriteIndex = 0
	}
	temp.Size++

	return
}

// Values returns the buffered values, oldest first, without consuming them.
func (temp *Temporary) Values() (values []int32) {
	for n := range temp.Size {
		values = append(values, temp.Data[(temp.ReadIndex+n)%temp.Capacity])
	}

	return
}
