/*
 * KS10 - CPU boolean, half word and test instructions
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

// Boolean functions indexed by bits 3-6 of opcode. a is AC, b is memory.
var boolFunc = [16]func(a, b uint64) uint64{
	func(_, _ uint64) uint64 { return 0 },        // SETZ
	func(a, b uint64) uint64 { return a & b },    // AND
	func(a, b uint64) uint64 { return ^a & b },   // ANDCA
	func(_, b uint64) uint64 { return b },        // SETM
	func(a, b uint64) uint64 { return a &^ b },   // ANDCM
	func(a, _ uint64) uint64 { return a },        // SETA
	func(a, b uint64) uint64 { return a ^ b },    // XOR
	func(a, b uint64) uint64 { return a | b },    // IOR
	func(a, b uint64) uint64 { return ^a &^ b },  // ANDCB
	func(a, b uint64) uint64 { return ^(a ^ b) }, // EQV
	func(a, _ uint64) uint64 { return ^a },       // SETCA
	func(a, b uint64) uint64 { return ^a | b },   // ORCA
	func(_, b uint64) uint64 { return ^b },       // SETCM
	func(a, b uint64) uint64 { return a | ^b },   // ORCM
	func(a, b uint64) uint64 { return ^a | ^b },  // ORCB
	func(_, _ uint64) uint64 { return FMASK },    // SETO
}

// Boolean functions that use the memory operand.
const boolUsesMem = 0b0111101111011110

// Boolean instructions 400-477.
func (c *CPU) opBool(s *stepInfo) {
	fn := (s.opcode >> 2) & 0o17
	prev := s.prev(pxData)
	var b uint64
	if boolUsesMem&(1<<fn) != 0 {
		switch s.opcode & 3 {
		case 0:
			b = c.Read(s.ea, prev)
		case 1:
			b = uint64(s.ea)
		default:
			b = c.ReadM(s.ea, prev)
		}
	}
	c.result(s, boolFunc[fn](c.getAC(s.ac), b)&FMASK)
}

// Half word fill modes.
const (
	fillNone = iota // Other half unchanged
	fillZero        // Other half zero
	fillOnes        // Other half ones
	fillExt         // Other half sign extended
)

// Half word instructions 500-577.
//
//	bit 040  destination is right half
//	bit 004  source half is swapped
//	bits 030 fill of other half
//	bits 003 mode: basic, immediate, memory, self
func (c *CPU) opHalf(s *stepInfo) {
	right := s.opcode&0o40 != 0
	swapped := s.opcode&0o4 != 0
	fill := (s.opcode >> 3) & 3
	mode := s.opcode & 3
	prev := s.prev(pxData)

	var src, dst uint64
	switch mode {
	case 0:
		src = c.Read(s.ea, prev)
		dst = c.getAC(s.ac)
	case 1:
		src = uint64(s.ea)
		dst = c.getAC(s.ac)
	case 2:
		src = c.getAC(s.ac)
		if fill == fillNone {
			dst = c.ReadM(s.ea, prev)
		}
	case 3:
		src = c.ReadM(s.ea, prev)
		dst = src
	}

	// Pick source half.
	var half uint64
	if right != swapped {
		half = src & RMASK
	} else {
		half = (src >> 18) & RMASK
	}

	var other uint64
	switch fill {
	case fillNone:
		if right {
			other = dst & LMASK
		} else {
			other = dst & RMASK
		}
	case fillOnes:
		other = RMASK
	case fillExt:
		if half&RSIGN != 0 {
			other = RMASK
		}
	}
	if right && fill != fillNone {
		other <<= 18
	}

	var r uint64
	if right {
		r = other | half
	} else {
		r = half<<18 | other
	}

	switch mode {
	case 0, 1:
		c.setAC(s.ac, r)
	case 2:
		c.Write(s.ea, r, prev)
	case 3:
		c.Write(s.ea, r, prev)
		if s.ac != 0 {
			c.setAC(s.ac, r)
		}
	}
}

// Test instructions 600-677.
//
//	bit 001  mask swapped (L, S)
//	bit 010  mask from memory (D, S)
//	bits 006 skip: never, if zero, always, if not zero
//	bits 060 modify: none, zero, complement, ones
func (c *CPU) opTest(s *stepInfo) {
	var mask uint64
	if s.opcode&0o10 != 0 {
		mask = c.Read(s.ea, s.prev(pxData))
	} else {
		mask = uint64(s.ea)
	}
	if s.opcode&1 != 0 {
		mask = swap(mask)
	}

	ac := c.getAC(s.ac)
	switch (s.opcode >> 1) & 3 {
	case 1:
		if ac&mask == 0 {
			s.skip()
		}
	case 2:
		s.skip()
	case 3:
		if ac&mask != 0 {
			s.skip()
		}
	}

	switch (s.opcode >> 4) & 3 {
	case 1:
		c.setAC(s.ac, ac&^mask)
	case 2:
		c.setAC(s.ac, ac^mask)
	case 3:
		c.setAC(s.ac, ac|mask)
	}
}
