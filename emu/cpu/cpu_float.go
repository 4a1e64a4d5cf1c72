/*
 * KS10 - CPU floating point
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

	op "github.com/rcornwell/KS10/emu/opcodemap"
)

// Floating point value mant * 2^exp.
type fpVal struct {
	mant *big.Int
	exp  int
}

const (
	fracSingle = 27          // Fraction bits of single precision
	fracDouble = 62          // Fraction bits of double precision
	fracMask   = 0o777777777 // Fraction field of high word
)

// Floating point function selected by bits 3-4 of opcode.
const (
	fpAdd = iota
	fpSub
	fpMul
	fpDiv
)

// Unpack one or two word floating point number.
func unpackFloat(words ...uint64) fpVal {
	hi := words[0]
	negative := hi&SMASK != 0
	e := int(hi>>27) & 0o377
	if negative {
		e ^= 0o377
	}
	m := new(big.Int).SetUint64(hi & fracMask)
	n := fracSingle
	if len(words) > 1 {
		m.Lsh(m, 35)
		m.Or(m, new(big.Int).SetUint64(words[1]&CMASK))
		n = fracDouble
	}
	if negative {
		m.Sub(m, new(big.Int).Lsh(big.NewInt(1), uint(n)))
	}
	return fpVal{mant: m, exp: e - 128 - n}
}

// Normalize and pack value into count words, setting exponent flags.
func (c *CPU) packFloat(v fpVal, count int, round bool) []uint64 {
	words := make([]uint64, count)
	if v.mant.Sign() == 0 {
		return words
	}
	n := fracSingle
	if count > 1 {
		n = fracDouble
	}
	negative := v.mant.Sign() < 0
	mag := new(big.Int).Abs(v.mant)
	e := v.exp
	shift := mag.BitLen() - n
	switch {
	case shift > 0:
		rem := new(big.Int).And(mag, new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(shift)), big.NewInt(1)))
		mag.Rsh(mag, uint(shift))
		e += shift
		if round {
			half := new(big.Int).Lsh(big.NewInt(1), uint(shift-1))
			cmp := rem.Cmp(half)
			if cmp > 0 || (cmp == 0 && !negative) {
				mag.Add(mag, big.NewInt(1))
			}
		} else if negative && rem.Sign() != 0 {
			mag.Add(mag, big.NewInt(1))
		}
		if mag.BitLen() > n {
			mag.Rsh(mag, 1)
			e++
		}
	case shift < 0:
		mag.Lsh(mag, uint(-shift))
		e += shift
	}
	exp := e + n + 128
	switch {
	case exp > 0o377:
		c.flags |= OVR | FOV | TRP1
	case exp < 0:
		c.flags |= OVR | FOV | FXU | TRP1
	}
	exp &= 0o377
	f := mag.Uint64()
	if count == 1 {
		words[0] = uint64(exp)<<27 | f
		if negative {
			words[0] = neg(words[0])
		}
		return words
	}
	hi := uint64(exp)<<27 | f>>35
	lo := f & CMASK
	if negative {
		hi, lo = dneg(hi, lo)
	}
	words[0], words[1] = hi, lo
	return words
}

// Perform floating point function, false on divide check.
func (c *CPU) floatOp(fn int, a, b fpVal) (fpVal, bool) {
	switch fn {
	case fpAdd, fpSub:
		bm := b.mant
		if fn == fpSub {
			bm = new(big.Int).Neg(bm)
		}
		e := min(a.exp, b.exp)
		x := new(big.Int).Lsh(a.mant, uint(a.exp-e))
		y := new(big.Int).Lsh(bm, uint(b.exp-e))
		return fpVal{mant: x.Add(x, y), exp: e}, true
	case fpMul:
		return fpVal{mant: new(big.Int).Mul(a.mant, b.mant), exp: a.exp + b.exp}, true
	}
	if b.mant.Sign() == 0 {
		c.flags |= OVR | FOV | NODIV | TRP1
		return fpVal{}, false
	}
	if a.mant.Sign() == 0 {
		return fpVal{mant: new(big.Int), exp: 0}, true
	}
	x := new(big.Int).Abs(a.mant)
	y := new(big.Int).Abs(b.mant)
	k := fracDouble + 2 + y.BitLen() - x.BitLen()
	if k < 0 {
		k = 0
	}
	x.Lsh(x, uint(k))
	q, r := new(big.Int).QuoRem(x, y, new(big.Int))
	if r.Sign() != 0 {
		// Sticky bit so rounding sees the remainder.
		q.Lsh(q, 1)
		q.Or(q, big.NewInt(1))
		k++
	}
	if a.mant.Sign() != b.mant.Sign() {
		q.Neg(q)
	}
	return fpVal{mant: q, exp: a.exp - b.exp - k}, true
}

// FAD, FSB, FMP, FDV and their R, RI, M, B forms.
func (c *CPU) opFloat(s *stepInfo) {
	mode := s.opcode & 7
	if mode == 1 {
		// Long forms are not part of the KS10.
		c.muuo(s)
		return
	}
	prev := s.prev(pxData)
	var b uint64
	switch mode {
	case 0, 4:
		b = c.Read(s.ea, prev)
	case 5:
		b = uint64(s.ea) << 18
	default:
		b = c.ReadM(s.ea, prev)
	}
	v, ok := c.floatOp((s.opcode>>3)&3, unpackFloat(c.getAC(s.ac)), unpackFloat(b))
	if !ok {
		return
	}
	r := c.packFloat(v, 1, mode >= 4)[0]
	switch mode {
	case 0, 4, 5:
		c.setAC(s.ac, r)
	case 2, 6:
		c.Write(s.ea, r, prev)
	case 3, 7:
		c.Write(s.ea, r, prev)
		c.setAC(s.ac, r)
	}
}

// DFAD, DFSB, DFMP, DFDV.
func (c *CPU) opDFloat(s *stepInfo) {
	bh := c.Read(s.ea, s.prev(pxData))
	bl := c.Read(s.ea+1, s.prev(pxData))
	a := unpackFloat(c.getAC(s.ac), c.getAC(s.ac+1))
	v, ok := c.floatOp(s.opcode&3, a, unpackFloat(bh, bl))
	if !ok {
		return
	}
	r := c.packFloat(v, 2, true)
	c.setAC(s.ac, r[0])
	c.setAC(s.ac+1, r[1])
}

// FSC.
func (c *CPU) opFSC(s *stepInfo) {
	v := unpackFloat(c.getAC(s.ac))
	v.exp += int(sext18(uint64(s.ea)))
	c.setAC(s.ac, c.packFloat(v, 1, false)[0])
}

// Convert floating value to integer, false if it does not fit.
func floatToInt(v fpVal, round bool) (uint64, bool) {
	m := new(big.Int).Set(v.mant)
	switch {
	case v.exp >= 0:
		m.Lsh(m, uint(v.exp))
	case round:
		m.Add(m, new(big.Int).Lsh(big.NewInt(1), uint(-v.exp-1)))
		m.Rsh(m, uint(-v.exp))
	default:
		m.Quo(m, new(big.Int).Lsh(big.NewInt(1), uint(-v.exp)))
	}
	if m.BitLen() > 35 {
		return 0, false
	}
	return uint64(m.Int64()) & FMASK, true
}

// FIX and FIXR.
func (c *CPU) opFIX(s *stepInfo) {
	v := unpackFloat(c.Read(s.ea, s.prev(pxData)))
	r, ok := floatToInt(v, s.opcode == op.OpFIXR)
	if !ok {
		c.overflow()
		return
	}
	c.setAC(s.ac, r)
}

// FLTR.
func (c *CPU) opFLTR(s *stepInfo) {
	v := sext(c.Read(s.ea, s.prev(pxData)))
	c.setAC(s.ac, c.packFloat(fpVal{mant: big.NewInt(v), exp: 0}, 1, true)[0])
}
