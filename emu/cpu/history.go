/*
 * KS10 - CPU instruction history
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

package cpu

// One executed instruction.
type HistEntry struct {
	PC    uint32 // Address of instruction
	EA    uint32 // Effective address
	Inst  uint64 // Instruction word
	AC    uint64 // Accumulator before execution
	Flags uint32 // Flags before execution
}

// History is a circular buffer of the last instructions executed.
type History struct {
	ent  []HistEntry
	next int
	full bool
}

// Create history of n entries.
func NewHistory(n int) *History {
	return &History{ent: make([]HistEntry, n)}
}

func (h *History) add(pc, ea uint32, inst, ac uint64, flags uint32) {
	h.ent[h.next] = HistEntry{PC: pc, EA: ea, Inst: inst, AC: ac, Flags: flags}
	h.next++
	if h.next == len(h.ent) {
		h.next = 0
		h.full = true
	}
}

// Return entries oldest first.
func (h *History) Entries() []HistEntry {
	if !h.full {
		return append([]HistEntry(nil), h.ent[:h.next]...)
	}
	list := make([]HistEntry, 0, len(h.ent))
	list = append(list, h.ent[h.next:]...)
	return append(list, h.ent[:h.next]...)
}

// Clear history.
func (h *History) Clear() {
	h.next = 0
	h.full = false
}

// Size of history.
func (h *History) Len() int {
	return len(h.ent)
}
