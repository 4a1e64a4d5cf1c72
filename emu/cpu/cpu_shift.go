/*
 * KS10 - CPU shift instructions
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

import (
	"math/bits"
)

// Shift count from effective address, bit 18 is the sign.
func shiftCount(ea uint32) int {
	n := int(ea & 0o377)
	if ea&0o400000 != 0 {
		n -= 0o400
	}
	return n
}

// Logical shift of 72 bit quantity hi,lo. Positive is left.
func shift72(hi, lo uint64, n int) (uint64, uint64) {
	switch {
	case n >= 72 || n <= -72:
		return 0, 0
	case n >= 36:
		return (lo << (n - 36)) & FMASK, 0
	case n > 0:
		return ((hi << n) | (lo >> (36 - n))) & FMASK, (lo << n) & FMASK
	case n == 0:
		return hi, lo
	case n > -36:
		return hi >> -n, ((lo >> -n) | (hi << (36 + n))) & FMASK
	default:
		return 0, hi >> (-n - 36)
	}
}

// Logical shift of 70 bit magnitude held as two 35 bit words.
func shift70(hi, lo uint64, n int) (uint64, uint64) {
	switch {
	case n >= 70 || n <= -70:
		return 0, 0
	case n >= 35:
		return (lo << (n - 35)) & CMASK, 0
	case n > 0:
		return ((hi << n) | (lo >> (35 - n))) & CMASK, (lo << n) & CMASK
	case n == 0:
		return hi, lo
	case n > -35:
		return hi >> -n, ((lo >> -n) | (hi << (35 + n))) & CMASK
	default:
		return 0, hi >> (-n - 35)
	}
}

// ASH.
func (c *CPU) opASH(s *stepInfo) {
	n := shiftCount(s.ea)
	v := c.getAC(s.ac)
	sign := v & SMASK
	switch {
	case n > 0:
		if n > 35 {
			n = 35
		}
		// Bits shifted out must all match the sign.
		out := (v & CMASK) >> (35 - n)
		want := uint64(0)
		if sign != 0 {
			want = (1 << n) - 1
		}
		if out != want {
			c.overflow()
		}
		v = sign | (v<<n)&CMASK
	case n < 0:
		if n < -35 {
			n = -35
		}
		v = uint64(sext(v)>>-n) & FMASK
	}
	c.setAC(s.ac, v)
}

// ROT.
func (c *CPU) opROT(s *stepInfo) {
	n := ((shiftCount(s.ea) % 36) + 36) % 36
	v := c.getAC(s.ac)
	c.setAC(s.ac, ((v<<n)|(v>>(36-n)))&FMASK)
}

// LSH.
func (c *CPU) opLSH(s *stepInfo) {
	n := shiftCount(s.ea)
	v := c.getAC(s.ac)
	switch {
	case n >= 36 || n <= -36:
		v = 0
	case n > 0:
		v = (v << n) & FMASK
	case n < 0:
		v >>= -n
	}
	c.setAC(s.ac, v)
}

// JFFO.
func (c *CPU) opJFFO(s *stepInfo) {
	v := c.getAC(s.ac)
	if v == 0 {
		c.setAC(s.ac+1, 0)
		return
	}
	c.setAC(s.ac+1, uint64(bits.LeadingZeros64(v)-28))
	s.nextPC = s.ea
}

// ASHC.
func (c *CPU) opASHC(s *stepInfo) {
	n := shiftCount(s.ea)
	hi := c.getAC(s.ac)
	lo := c.getAC(s.ac + 1)
	if n == 0 {
		return
	}
	sign := hi & SMASK
	mh, ml := hi&CMASK, lo&CMASK
	if n > 0 {
		if n > 70 {
			n = 70
		}
		oh, ol := shift70(mh, ml, n-70)
		var wh, wl uint64
		if sign != 0 {
			wh, wl = shift70(CMASK, CMASK, n-70)
		}
		if oh != wh || ol != wl {
			c.overflow()
		}
		mh, ml = shift70(mh, ml, n)
	} else {
		if n < -71 {
			n = -71
		}
		mh, ml = shift70(mh, ml, n)
		if sign != 0 {
			fh, fl := shift70(CMASK, CMASK, n)
			mh |= ^fh & CMASK
			ml |= ^fl & CMASK
		}
	}
	c.setAC(s.ac, sign|mh)
	c.setAC(s.ac+1, sign|ml)
}

// ROTC.
func (c *CPU) opROTC(s *stepInfo) {
	n := ((shiftCount(s.ea) % 72) + 72) % 72
	hi := c.getAC(s.ac)
	lo := c.getAC(s.ac + 1)
	h1, l1 := shift72(hi, lo, n)
	h2, l2 := shift72(hi, lo, n-72)
	c.setAC(s.ac, h1|h2)
	c.setAC(s.ac+1, l1|l2)
}

// LSHC.
func (c *CPU) opLSHC(s *stepInfo) {
	hi, lo := shift72(c.getAC(s.ac), c.getAC(s.ac+1), shiftCount(s.ea))
	c.setAC(s.ac, hi)
	c.setAC(s.ac+1, lo)
}
