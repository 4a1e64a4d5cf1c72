/*
 * KS10 - CPU multiply, divide and double word
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
	"math/big"
	"math/bits"
)

// Magnitude and sign of word.
func magnitude(v uint64) (uint64, bool) {
	if v&SMASK != 0 {
		return neg(v), true
	}
	return v, false
}

// Negate double word, low word has no sign.
func dneg(hi, lo uint64) (uint64, uint64) {
	lo = (^lo + 1) & CMASK
	if lo == 0 {
		hi = (^hi + 1) & FMASK
	} else {
		hi = ^hi & FMASK
	}
	return hi, lo
}

// Set no divide flags.
func (c *CPU) noDivide() {
	c.flags |= NODIV | OVR | TRP1
}

// Single word product, low order bits with sign of product.
func (c *CPU) imul(a, b uint64) uint64 {
	ma, na := magnitude(a)
	mb, nb := magnitude(b)
	hi, lo := bits.Mul64(ma, mb)
	negative := na != nb && (hi|lo) != 0
	limit := CMASK
	if negative {
		limit = SMASK
	}
	if hi != 0 || lo > limit {
		c.overflow()
	}
	if negative {
		return (^lo+1)&CMASK | SMASK
	}
	return lo & CMASK
}

// Double word product of two words.
func (c *CPU) mul(a, b uint64) (uint64, uint64) {
	if a == SMASK && b == SMASK {
		c.overflow()
		return SMASK, SMASK
	}
	ma, na := magnitude(a)
	mb, nb := magnitude(b)
	h, l := bits.Mul64(ma, mb)
	lo := l & CMASK
	hi := (l>>35 | h<<29) & CMASK
	if na != nb && (hi|lo) != 0 {
		hi, lo = dneg(hi, lo)
	}
	return hi, lo | hi&SMASK
}

// Single word divide, returns quotient and remainder.
func (c *CPU) idiv(a, b uint64) (uint64, uint64, bool) {
	if b == 0 || (a == SMASK && b == FMASK) {
		c.noDivide()
		return 0, 0, false
	}
	x, y := sext(a), sext(b)
	return uint64(x/y) & FMASK, uint64(x%y) & FMASK, true
}

// Divide double word by word.
func (c *CPU) div(hi, lo, d uint64) (uint64, uint64, bool) {
	md, nd := magnitude(d)
	nn := hi&SMASK != 0
	lo &= CMASK
	if nn {
		hi, lo = dneg(hi, lo)
	}
	if md == 0 || hi >= md {
		c.noDivide()
		return 0, 0, false
	}
	q, r := bits.Div64(hi>>29, hi<<35|lo, md)
	if nn != nd {
		q = neg(q)
	}
	if nn {
		r = neg(r)
	}
	return q & FMASK, r & FMASK, true
}

// Add double words.
func (c *CPU) dadd(ah, al, bh, bl uint64) (uint64, uint64) {
	lo := (al & CMASK) + (bl & CMASK)
	hi := c.addc(ah, bh, lo>>35)
	return hi, lo&CMASK | hi&SMASK
}

// Subtract double words.
func (c *CPU) dsub(ah, al, bh, bl uint64) (uint64, uint64) {
	lo := (al & CMASK) + (^bl & CMASK) + 1
	hi := c.addc(ah, ^bh&FMASK, lo>>35)
	return hi, lo&CMASK | hi&SMASK
}

// Convert words holding 35 bits each, with sign of first, to big integer.
func toBig(words ...uint64) *big.Int {
	n := new(big.Int)
	negative := words[0]&SMASK != 0
	for i, w := range words {
		if i == 0 {
			w &= CMASK
		}
		n.Lsh(n, 35)
		n.Or(n, new(big.Int).SetUint64(w&CMASK))
	}
	if negative {
		bitsLen := uint(35 * len(words))
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), bitsLen))
	}
	return n
}

// Convert big integer to count words of 35 bits, sign in every word.
func fromBig(n *big.Int, count int) []uint64 {
	m := new(big.Int).Set(n)
	negative := m.Sign() < 0
	if negative {
		m.Add(m, new(big.Int).Lsh(big.NewInt(1), uint(35*count)))
	}
	words := make([]uint64, count)
	mask := new(big.Int).SetUint64(CMASK)
	for i := count - 1; i >= 0; i-- {
		words[i] = new(big.Int).And(m, mask).Uint64()
		m.Rsh(m, 35)
		if negative {
			words[i] |= SMASK
		}
	}
	return words
}

// Multiply double words giving quad word.
func (c *CPU) dmul(ah, al, bh, bl uint64) []uint64 {
	if ah == SMASK && al&CMASK == 0 && bh == SMASK && bl&CMASK == 0 {
		c.overflow()
		return []uint64{SMASK, SMASK, SMASK, SMASK}
	}
	p := new(big.Int).Mul(toBig(ah, al), toBig(bh, bl))
	return fromBig(p, 4)
}

// Divide quad word by double word.
func (c *CPU) ddiv(n []uint64, dh, dl uint64) ([]uint64, bool) {
	num := toBig(n...)
	den := toBig(dh, dl)
	high := toBig(n[0], n[1])
	if den.Sign() == 0 || new(big.Int).Abs(high).Cmp(new(big.Int).Abs(den)) >= 0 {
		c.noDivide()
		return nil, false
	}
	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	qw := fromBig(q, 2)
	rw := fromBig(r, 2)
	return []uint64{qw[0], qw[1], rw[0], rw[1]}, true
}

// DADD.
func (c *CPU) opDADD(s *stepInfo) {
	bh := c.Read(s.ea, s.prev(pxData))
	bl := c.Read(s.ea+1, s.prev(pxData))
	hi, lo := c.dadd(c.getAC(s.ac), c.getAC(s.ac+1), bh, bl)
	c.setAC(s.ac, hi)
	c.setAC(s.ac+1, lo)
}

// DSUB.
func (c *CPU) opDSUB(s *stepInfo) {
	bh := c.Read(s.ea, s.prev(pxData))
	bl := c.Read(s.ea+1, s.prev(pxData))
	hi, lo := c.dsub(c.getAC(s.ac), c.getAC(s.ac+1), bh, bl)
	c.setAC(s.ac, hi)
	c.setAC(s.ac+1, lo)
}

// DMUL.
func (c *CPU) opDMUL(s *stepInfo) {
	bh := c.Read(s.ea, s.prev(pxData))
	bl := c.Read(s.ea+1, s.prev(pxData))
	r := c.dmul(c.getAC(s.ac), c.getAC(s.ac+1), bh, bl)
	for i, w := range r {
		c.setAC(s.ac+i, w)
	}
}

// DDIV.
func (c *CPU) opDDIV(s *stepInfo) {
	dh := c.Read(s.ea, s.prev(pxData))
	dl := c.Read(s.ea+1, s.prev(pxData))
	n := []uint64{c.getAC(s.ac), c.getAC(s.ac + 1), c.getAC(s.ac + 2), c.getAC(s.ac + 3)}
	r, ok := c.ddiv(n, dh, dl)
	if !ok {
		return
	}
	for i, w := range r {
		c.setAC(s.ac+i, w)
	}
}

// DMOVE.
func (c *CPU) opDMOVE(s *stepInfo) {
	hi := c.Read(s.ea, s.prev(pxData))
	lo := c.Read(s.ea+1, s.prev(pxData))
	c.setAC(s.ac, hi)
	c.setAC(s.ac+1, lo)
}

// DMOVN.
func (c *CPU) opDMOVN(s *stepInfo) {
	hi := c.Read(s.ea, s.prev(pxData))
	lo := c.Read(s.ea+1, s.prev(pxData))
	hi, lo = dneg(hi, lo&CMASK)
	c.setAC(s.ac, hi)
	c.setAC(s.ac+1, lo)
}

// DMOVEM. Both words are checked before either is stored.
func (c *CPU) opDMOVEM(s *stepInfo) {
	c.dstore(s, c.getAC(s.ac), c.getAC(s.ac+1))
}

// DMOVNM.
func (c *CPU) opDMOVNM(s *stepInfo) {
	hi, lo := dneg(c.getAC(s.ac), c.getAC(s.ac+1)&CMASK)
	c.dstore(s, hi, lo)
}

// Store double word at E.
func (c *CPU) dstore(s *stepInfo, hi, lo uint64) {
	prev := s.prev(pxData)
	if c.AccViol(s.ea+1, prev, true) {
		c.ReadM(s.ea+1, prev)
	}
	c.Write(s.ea, hi, prev)
	c.Write(s.ea+1, lo, prev)
}
