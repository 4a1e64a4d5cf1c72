/*
 * KS10 - CPU EXTEND instructions
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
)

// Extended instruction codes.
const (
	xCMPSL  = 0o01
	xCMPSE  = 0o02
	xCMPSLE = 0o03
	xEDIT   = 0o04
	xCMPSGE = 0o05
	xCMPSN  = 0o06
	xCMPSG  = 0o07
	xCVTDBO = 0o10
	xCVTDBT = 0o11
	xCVTBDO = 0o12
	xCVTBDT = 0o13
	xMOVSO  = 0o14
	xMOVST  = 0o15
	xMOVSLJ = 0o16
	xMOVSRJ = 0o17
)

// String flags held in length accumulators.
const (
	xtS   uint64 = 0o400000000000 // Significance
	xtN   uint64 = 0o200000000000 // Non-zero
	xtM   uint64 = 0o100000000000 // Minus
	xtL          = xtS            // CVTBD leading zeros
	xtLen uint64 = 0o000777777777 // String length
)

// EDIT pattern operations.
const (
	edStop   = 0o000 // End of pattern
	edSelect = 0o001 // Translate source byte
	edSigSt  = 0o002 // Start significance
	edFldSep = 0o003 // Field separator
	edExchMD = 0o004 // Exchange mark and destination
	edMsg    = 0o100 // Message character
	edSkpM   = 0o500 // Skip if minus
	edSkpN   = 0o600 // Skip if non-zero
	edSkpA   = 0o700 // Skip always

	edPBNShift        = 30             // Pattern byte number in AC
	edPBN      uint64 = 0o030000000000 // Pattern byte number field
)

// Operands of an extended instruction.
type extInst struct {
	*stepInfo
	e0 uint32 // Address of extended instruction
	e1 uint32 // Effective address of extended instruction
}

// EXTEND.
func (c *CPU) opEXTEND(s *stepInfo) {
	xinst := c.Read(s.ea, s.prev(pxData))
	x := &extInst{stepInfo: s, e0: s.ea}
	var t stepInfo
	x.e1 = c.calcEA(&t, xinst, s.prev(pxEA))
	switch xop := int(xinst>>27) & 0o777; xop {
	case xCMPSL, xCMPSE, xCMPSLE, xCMPSGE, xCMPSN, xCMPSG:
		c.cmps(x, xop)
	case xEDIT:
		c.edit(x)
	case xCVTDBO, xCVTDBT:
		c.cvtdb(x, xop == xCVTDBT)
	case xCVTBDO, xCVTBDT:
		c.cvtbd(x, xop == xCVTBDT)
	case xMOVSO, xMOVST, xMOVSLJ, xMOVSRJ:
		c.movs(x, xop)
	default:
		c.muuo(s)
	}
}

// Next byte through pointer in accumulator, pointer is not updated.
func (c *CPU) peekByte(x *extInst, ac int) (uint64, uint64) {
	bp := incBP(c.getAC(ac))
	return c.loadByte(x.stepInfo, bp), bp
}

// Store byte through incremented pointer, returns new pointer.
func (c *CPU) pokeByte(x *extInst, bp, b uint64) uint64 {
	bp = incBP(bp)
	c.storeByte(x.stepInfo, bp, b)
	return bp
}

// Translate byte through table at E1. Returns false when the table
// entry asks to terminate.
func (c *CPU) xlate(x *extInst, b uint64, flags *uint64) (uint64, bool) {
	w := c.Read((x.e1+uint32(b>>1))&AMASK, x.prev(pxData))
	if b&1 == 0 {
		w >>= 18
	}
	w &= RMASK
	switch (w >> 15) & 7 {
	case 1:
		return 0, false
	case 2:
		*flags &^= xtM
	case 3:
		*flags |= xtM
	case 4:
		*flags |= xtS | xtN
	case 5:
		*flags |= xtN
		return 0, false
	case 6:
		*flags = (*flags | xtS | xtN) &^ xtM
	case 7:
		*flags |= xtS | xtN | xtM
	}
	return w & 0o7777, true
}

// CMPSx, compare strings padding the shorter one with its fill.
func (c *CPU) cmps(x *extInst, xop int) {
	l1 := c.getAC(x.ac)
	l2 := c.getAC(x.ac + 3)
	if (l1|l2)&^xtLen != 0 {
		c.muuo(x.stepInfo)
		return
	}
	f1 := c.Read(x.e0+1, x.prev(pxData))
	f2 := c.Read(x.e0+2, x.prev(pxData))
	var a, b uint64
	for l1 != 0 || l2 != 0 {
		var bp1, bp2 uint64
		a, b = f1, f2
		if l1 != 0 {
			a, bp1 = c.peekByte(x, x.ac+1)
		}
		if l2 != 0 {
			b, bp2 = c.peekByte(x, x.ac+4)
		}
		if l1 != 0 {
			l1--
			c.setAC(x.ac+1, bp1)
			c.setAC(x.ac, l1)
		}
		if l2 != 0 {
			l2--
			c.setAC(x.ac+4, bp2)
			c.setAC(x.ac+3, l2)
		}
		if a != b {
			break
		}
		c.checkInterrupt()
	}
	var ok bool
	switch xop {
	case xCMPSL:
		ok = a < b
	case xCMPSE:
		ok = a == b
	case xCMPSLE:
		ok = a <= b
	case xCMPSGE:
		ok = a >= b
	case xCMPSN:
		ok = a != b
	case xCMPSG:
		ok = a > b
	}
	if ok {
		x.skip()
	}
}

// MOVSO, MOVST, MOVSLJ and MOVSRJ.
func (c *CPU) movs(x *extInst, xop int) {
	src := c.getAC(x.ac)
	dst := c.getAC(x.ac + 3)
	if dst&^xtLen != 0 || (xop != xMOVST && src&^xtLen != 0) {
		c.muuo(x.stepInfo)
		return
	}
	fill := c.Read(x.e0+1, x.prev(pxData))
	flags := src &^ xtLen
	src &= xtLen
	if xop == xMOVSRJ {
		for src > dst {
			src--
			c.setAC(x.ac+1, incBP(c.getAC(x.ac+1)))
			c.setAC(x.ac, src)
		}
		for dst > src {
			c.setAC(x.ac+4, c.pokeByte(x, c.getAC(x.ac+4), fill))
			dst--
			c.setAC(x.ac+3, dst)
		}
	}
	_, dsz := bpFields(c.getAC(x.ac + 4))
	offset := uint64(sext18(uint64(x.e1)))
	for dst != 0 {
		if src == 0 {
			c.setAC(x.ac+4, c.pokeByte(x, c.getAC(x.ac+4), fill))
			dst--
			c.setAC(x.ac+3, dst)
			continue
		}
		b, bp := c.peekByte(x, x.ac+1)
		switch xop {
		case xMOVSO:
			b = (b + offset) & FMASK
			if b&^byteMask(dsz) != 0 {
				return
			}
		case xMOVST:
			var ok bool
			b, ok = c.xlate(x, b, &flags)
			if !ok {
				c.setAC(x.ac+1, bp)
				c.setAC(x.ac, flags|(src-1))
				return
			}
		}
		c.setAC(x.ac+4, c.pokeByte(x, c.getAC(x.ac+4), b))
		src--
		dst--
		c.setAC(x.ac+1, bp)
		c.setAC(x.ac, flags|src)
		c.setAC(x.ac+3, dst)
		c.checkInterrupt()
	}
	if src == 0 {
		x.skip()
	}
}

// CVTDBO and CVTDBT, decimal string to double word binary.
func (c *CPU) cvtdb(x *extInst, table bool) {
	src := c.getAC(x.ac)
	if !table && src&^xtLen != 0 {
		c.muuo(x.stepInfo)
		return
	}
	flags := src &^ xtLen
	src &= xtLen
	offset := uint64(sext18(uint64(x.e1)))
	ten := big.NewInt(10)
	for src != 0 {
		b, bp := c.peekByte(x, x.ac+1)
		ok := true
		if table {
			b, ok = c.xlate(x, b, &flags)
		} else {
			b = (b + offset) & FMASK
		}
		src--
		c.setAC(x.ac+1, bp)
		c.setAC(x.ac, flags|src)
		if !ok || b > 9 {
			return
		}
		v := toBig(c.getAC(x.ac+3), c.getAC(x.ac+4))
		v.Mul(v, ten)
		v.Add(v, big.NewInt(int64(b)))
		if v.BitLen() > 70 {
			c.overflow()
		}
		r := fromBig(v, 2)
		c.setAC(x.ac+3, r[0])
		c.setAC(x.ac+4, r[1])
		c.checkInterrupt()
	}
	if flags&xtM != 0 {
		r := fromBig(new(big.Int).Neg(toBig(c.getAC(x.ac+3), c.getAC(x.ac+4))), 2)
		c.setAC(x.ac+3, r[0])
		c.setAC(x.ac+4, r[1])
	}
	x.skip()
}

// CVTBDO and CVTBDT, double word binary to decimal string.
// Every destination word is probed first so a page fail leaves the
// accumulators untouched.
func (c *CPU) cvtbd(x *extInst, table bool) {
	dst := c.getAC(x.ac + 3)
	flags := dst &^ xtLen
	dst &= xtLen
	v := toBig(c.getAC(x.ac), c.getAC(x.ac+1))
	if v.Sign() < 0 {
		flags |= xtM
		v.Neg(v)
	}
	if v.Sign() != 0 {
		flags |= xtN
	}
	digits := v.String()
	if flags&xtL != 0 {
		for uint64(len(digits)) < dst {
			digits = "0" + digits
		}
	}
	if uint64(len(digits)) > dst {
		c.setAC(x.ac+3, flags|dst)
		return
	}
	bp := c.getAC(x.ac + 4)
	for range digits {
		bp = incBP(bp)
		c.ReadM(c.byteEA(x.stepInfo, bp), x.prev(pxBData))
	}
	bp = c.getAC(x.ac + 4)
	for _, d := range digits {
		b := uint64(d - '0')
		if table {
			b = c.Read((x.e1+uint32(b))&AMASK, x.prev(pxData)) & RMASK
		} else {
			b = (b + uint64(sext18(uint64(x.e1)))) & FMASK
		}
		bp = c.pokeByte(x, bp, b)
	}
	c.setAC(x.ac, 0)
	c.setAC(x.ac+1, 0)
	c.setAC(x.ac+3, flags|(dst-uint64(len(digits))))
	c.setAC(x.ac+4, bp)
	x.skip()
}

// EDIT, format source string under control of a pattern.
func (c *CPU) edit(x *extInst) {
	fill := c.Read(x.e0+1, x.prev(pxData))
	float := c.Read(x.e0+2, x.prev(pxData))
	for {
		pat := c.getAC(x.ac)
		pbn := int(pat&edPBN) >> edPBNShift
		pw := c.Read(uint32(pat&RMASK), x.prev(pxData))
		op := int(pw>>(27-9*pbn)) & 0o777
		flags := pat & (xtS | xtN | xtM)
		dp := c.getAC(x.ac + 4)
		sp := c.getAC(x.ac + 1)
		skip := 0
		switch {
		case op == edStop:
			c.setAC(x.ac, advancePattern(pat, 1))
			x.skip()
			return
		case op == edSelect:
			b, bp := c.peekByte(x, x.ac+1)
			wasSig := flags&xtS != 0
			t, ok := c.xlate(x, b, &flags)
			if !ok {
				c.setAC(x.ac+1, bp)
				c.setAC(x.ac, pat&^(xtS|xtN|xtM)|flags)
				return
			}
			sp = bp
			switch {
			case flags&xtS == 0:
				if fill != 0 {
					dp = c.pokeByte(x, dp, fill)
				}
			case !wasSig:
				dp = c.startSig(x, dp, float)
				dp = c.pokeByte(x, dp, t)
			default:
				dp = c.pokeByte(x, dp, t)
			}
		case op == edSigSt:
			if flags&xtS == 0 {
				dp = c.startSig(x, dp, float)
				flags |= xtS
			}
		case op == edFldSep:
			flags = 0
		case op == edExchMD:
			ma := uint32(c.getAC(x.ac+3) & RMASK)
			mark := c.ReadM(ma, x.prev(pxData))
			c.Write(ma, dp, x.prev(pxData))
			dp = mark
		case op >= edMsg && op < edMsg+0o100:
			switch {
			case flags&xtS != 0:
				m := c.Read(x.e0+3+uint32(op-edMsg), x.prev(pxData))
				dp = c.pokeByte(x, dp, m)
			case fill != 0:
				dp = c.pokeByte(x, dp, fill)
			}
		case op >= edSkpM && op < edSkpN:
			if flags&xtM != 0 {
				skip = op - edSkpM + 1
			}
		case op >= edSkpN && op < edSkpA:
			if flags&xtN != 0 {
				skip = op - edSkpN + 1
			}
		case op >= edSkpA:
			skip = op - edSkpA + 1
		}
		c.setAC(x.ac+1, sp)
		c.setAC(x.ac+4, dp)
		c.setAC(x.ac, advancePattern(pat&^(xtS|xtN|xtM)|flags, 1+skip))
		c.checkInterrupt()
	}
}

// Mark destination and store float character when significance starts.
func (c *CPU) startSig(x *extInst, dp, float uint64) uint64 {
	c.Write(uint32(c.getAC(x.ac+3)&RMASK), dp, x.prev(pxData))
	if float != 0 {
		dp = c.pokeByte(x, dp, float)
	}
	return dp
}

// Advance pattern pointer by n bytes.
func advancePattern(pat uint64, n int) uint64 {
	pbn := int(pat&edPBN)>>edPBNShift + n
	addr := (pat + uint64(pbn/4)) & RMASK
	return pat&^(edPBN|RMASK) | uint64(pbn%4)<<edPBNShift | addr
}
