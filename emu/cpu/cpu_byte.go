/*
 * KS10 - CPU byte instructions
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

// Byte pointer fields.
const (
	bpPos   = 30             // Position shift
	bpSize  = 24             // Size shift
	bpPMask = 0o770000000000 // Position field
	bpField = 0o77           // Field mask
)

// Return position and size of byte pointer.
func bpFields(bp uint64) (int, int) {
	return int(bp>>bpPos) & bpField, int(bp>>bpSize) & bpField
}

// Increment byte pointer.
func incBP(bp uint64) uint64 {
	p, sz := bpFields(bp)
	p -= sz
	if p < 0 {
		p = (36 - sz) & bpField
		bp = bp&LMASK | (bp+1)&RMASK
	}
	return bp&^bpPMask | uint64(p)<<bpPos
}

// Mask of size bits.
func byteMask(sz int) uint64 {
	if sz >= 36 {
		return FMASK
	}
	return (1 << sz) - 1
}

// Extract byte from word.
func getByte(w uint64, p, sz int) uint64 {
	if p >= 36 {
		return 0
	}
	return (w >> p) & byteMask(sz)
}

// Deposit byte in word.
func putByte(w, b uint64, p, sz int) uint64 {
	if p >= 36 {
		return w
	}
	m := (byteMask(sz) << p) & FMASK
	return (w &^ m) | ((b << p) & m)
}

// Effective address of byte pointer.
func (c *CPU) byteEA(s *stepInfo, bp uint64) uint32 {
	var t stepInfo
	return c.calcEA(&t, bp, s.prev(pxBPtr))
}

// Load byte through pointer.
func (c *CPU) loadByte(s *stepInfo, bp uint64) uint64 {
	p, sz := bpFields(bp)
	w := c.Read(c.byteEA(s, bp), s.prev(pxBData))
	return getByte(w, p, sz)
}

// Store byte through pointer.
func (c *CPU) storeByte(s *stepInfo, bp, b uint64) {
	p, sz := bpFields(bp)
	ea := c.byteEA(s, bp)
	w := c.ReadM(ea, s.prev(pxBData))
	c.Write(ea, putByte(w, b, p, sz), s.prev(pxBData))
}

// Increment pointer at E unless first part is done.
func (c *CPU) incPointer(s *stepInfo) uint64 {
	if c.flags&FPD != 0 {
		return c.Read(s.ea, s.prev(pxData))
	}
	bp := incBP(c.ReadM(s.ea, s.prev(pxData)))
	c.Write(s.ea, bp, s.prev(pxData))
	c.flags |= FPD
	return bp
}

// IBP and ADJBP.
func (c *CPU) opIBP(s *stepInfo) {
	if s.ac == 0 {
		bp := c.ReadM(s.ea, s.prev(pxData))
		c.Write(s.ea, incBP(bp), s.prev(pxData))
		return
	}
	c.adjbp(s)
}

// Adjust byte pointer by AC bytes.
func (c *CPU) adjbp(s *stepInfo) {
	bp := c.Read(s.ea, s.prev(pxData))
	p, sz := bpFields(bp)
	if sz == 0 {
		c.setAC(s.ac, bp)
		return
	}
	left := (36 - p) / sz
	perWord := left + p/sz
	if perWord == 0 {
		c.flags |= OVR | TRP1 | NODIV
		return
	}
	newByte := int64(left) + sext(c.getAC(s.ac))
	wordAdj := newByte / int64(perWord)
	byteAdj := newByte % int64(perWord)
	if byteAdj <= 0 {
		byteAdj += int64(perWord)
		wordAdj--
	}
	p = (36 - int(byteAdj)*sz) - ((36 - p) % sz)
	rh := uint64(int64(bp&RMASK)+wordAdj) & RMASK
	c.setAC(s.ac, (bp&LMASK&^bpPMask)|uint64(p&bpField)<<bpPos|rh)
}

// ILDB.
func (c *CPU) opILDB(s *stepInfo) {
	bp := c.incPointer(s)
	c.setAC(s.ac, c.loadByte(s, bp))
	c.flags &^= FPD
}

// LDB.
func (c *CPU) opLDB(s *stepInfo) {
	bp := c.Read(s.ea, s.prev(pxData))
	c.setAC(s.ac, c.loadByte(s, bp))
}

// IDPB.
func (c *CPU) opIDPB(s *stepInfo) {
	bp := c.incPointer(s)
	c.storeByte(s, bp, c.getAC(s.ac))
	c.flags &^= FPD
}

// DPB.
func (c *CPU) opDPB(s *stepInfo) {
	bp := c.Read(s.ea, s.prev(pxData))
	c.storeByte(s, bp, c.getAC(s.ac))
}
