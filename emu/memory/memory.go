/*
 * KS10 - Low level memory
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package memory

// Memory holds the physical 36 bit words of the machine. Words are kept
// right justified in a uint64, the upper bits are always zero.
type Memory struct {
	mem  []uint64
	size uint32
}

const (
	FMASK   uint64 = 0o777777777777 // Full word mask.
	MaxSize int    = 1024           // Largest memory in K words.
)

// Create memory of k K words.
func New(k int) *Memory {
	m := &Memory{}
	m.SetSize(k)
	return m
}

// Set size in K words. Contents are preserved when possible.
func (m *Memory) SetSize(k int) {
	if k > MaxSize {
		k = MaxSize
	}
	if k < 0 {
		k = 0
	}
	size := uint32(k * 1024)
	mem := make([]uint64, size)
	copy(mem, m.mem)
	m.mem = mem
	m.size = size
}

// Return size of memory in words.
func (m *Memory) GetSize() uint32 {
	return m.size
}

// Check if address out of range.
func (m *Memory) CheckAddr(addr uint32) bool {
	return addr < m.size
}

// Get memory value without NXM reporting, zero beyond end of memory.
func (m *Memory) GetMemory(addr uint32) uint64 {
	if addr >= m.size {
		return 0
	}
	return m.mem[addr]
}

// Set memory to a value without NXM reporting.
func (m *Memory) SetMemory(addr uint32, data uint64) {
	if addr < m.size {
		m.mem[addr] = data & FMASK
	}
}

// Get a word from memory, nxm is true if the word does not exist.
func (m *Memory) GetWord(addr uint32) (value uint64, nxm bool) {
	if addr >= m.size {
		return 0, true
	}
	return m.mem[addr], false
}

// Put a word to memory, returns true if the word does not exist.
func (m *Memory) PutWord(addr uint32, data uint64) bool {
	if addr >= m.size {
		return true
	}
	m.mem[addr] = data & FMASK
	return false
}

// Clear all of memory.
func (m *Memory) Clear() {
	clear(m.mem)
}
