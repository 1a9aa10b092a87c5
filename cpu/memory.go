package cpu

// Memory is a flat, byte addressable store accessed in little-endian words.
type Memory struct {
	Data []byte
}

// NewMemory creates a zeroed memory of size bytes.
func NewMemory(size int) (mem *Memory) {
	mem = &Memory{
		Data: make([]byte, size),
	}

	return
}

// Capacity returns the size of the memory in bytes.
func (mem *Memory) Capacity() int {
	return len(mem.Data)
}

// Valid returns true if a whole word can be accessed at addr.
// Alignment is not required.
func (mem *Memory) Valid(addr int) bool {
	return addr >= 0 && addr <= len(mem.Data)-WORD_SIZE
}

// Reset zeros the memory.
func (mem *Memory) Reset() {
	clear(mem.Data)
}

// ReadWord reads the word at addr, least significant byte first.
func (mem *Memory) ReadWord(addr int) (value Word, err error) {
	if !mem.Valid(addr) {
		err = ErrOutOfBounds
		return
	}

	var bits uint32
	for n := range WORD_SIZE {
		bits |= uint32(mem.Data[addr+n]) << (8 * n)
	}

	// Reinterpret the raw bits as two's complement.
	value = Word(int32(bits))
	return
}

// WriteWord writes value at addr, least significant byte first.
// On failure the memory is unchanged.
func (mem *Memory) WriteWord(addr int, value Word) (err error) {
	if !mem.Valid(addr) {
		err = ErrOutOfBounds
		return
	}

	// Negative values wrap into the unsigned range.
	bits := uint32(int32(value))
	for n := range WORD_SIZE {
		mem.Data[addr+n] = byte(bits >> (8 * n))
	}

	return
}
