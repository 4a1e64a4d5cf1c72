/*
 * KS10 - CPU standard instructions
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
	"github.com/rcornwell/KS10/emu/pager"
)

// Sign extend 36 bit word.
func sext(v uint64) int64 {
	return int64(v<<28) >> 28
}

// Sign extend 18 bit half word.
func sext18(v uint64) int64 {
	return int64(v<<46) >> 46
}

// Swap halves of word.
func swap(v uint64) uint64 {
	return ((v << 18) | (v >> 18)) & FMASK
}

// Negate word.
func neg(v uint64) uint64 {
	return (^v + 1) & FMASK
}

// Skip next instruction.
func (s *stepInfo) skip() {
	s.nextPC = (s.nextPC + 1) & AMASK
}

// Add with carry in, setting carry and overflow flags.
func (c *CPU) addc(a, b, cin uint64) uint64 {
	r := a + b + cin
	cry0 := r&C1 != 0
	cry1 := ((a&CMASK)+(b&CMASK)+cin)&SMASK != 0
	if cry0 {
		c.flags |= CRY0
	}
	if cry1 {
		c.flags |= CRY1
	}
	if cry0 != cry1 {
		c.overflow()
	}
	return r & FMASK
}

// Add two words setting flags.
func (c *CPU) add(a, b uint64) uint64 {
	return c.addc(a, b, 0)
}

// Subtract b from a setting flags.
func (c *CPU) sub(a, b uint64) uint64 {
	return c.addc(a, ^b&FMASK, 1)
}

// Test condition field of compare and skip instructions.
func testCond(op int, a, b uint64) bool {
	x, y := sext(a), sext(b)
	switch op & 7 {
	case 1:
		return x < y
	case 2:
		return x == y
	case 3:
		return x <= y
	case 4:
		return true
	case 5:
		return x >= y
	case 6:
		return x != y
	case 7:
		return x > y
	}
	return false
}

// Move family with transform f: basic, immediate, memory and self.
func (c *CPU) move(s *stepInfo, f func(uint64) uint64) {
	prev := s.prev(pxData)
	switch s.opcode & 3 {
	case 0:
		c.setAC(s.ac, f(c.Read(s.ea, prev)))
	case 1:
		c.setAC(s.ac, f(uint64(s.ea)))
	case 2:
		c.Write(s.ea, f(c.getAC(s.ac)), prev)
	case 3:
		v := f(c.ReadM(s.ea, prev))
		c.Write(s.ea, v, prev)
		if s.ac != 0 {
			c.setAC(s.ac, v)
		}
	}
}

// Fetch second operand of arithmetic instruction.
func (c *CPU) operand(s *stepInfo) uint64 {
	switch s.opcode & 3 {
	case 0:
		return c.Read(s.ea, s.prev(pxData))
	case 1:
		return uint64(s.ea)
	default:
		return c.ReadM(s.ea, s.prev(pxData))
	}
}

// Store single word result of arithmetic instruction.
func (c *CPU) result(s *stepInfo, v uint64) {
	switch s.opcode & 3 {
	case 0, 1:
		c.setAC(s.ac, v)
	case 2:
		c.Write(s.ea, v, s.prev(pxData))
	case 3:
		c.Write(s.ea, v, s.prev(pxData))
		c.setAC(s.ac, v)
	}
}

// MOVE, MOVEI, MOVEM, MOVES.
func (c *CPU) opMOVE(s *stepInfo) {
	c.move(s, func(v uint64) uint64 { return v })
}

// MOVS, MOVSI, MOVSM, MOVSS.
func (c *CPU) opMOVS(s *stepInfo) {
	c.move(s, swap)
}

// MOVN, MOVNI, MOVNM, MOVNS.
func (c *CPU) opMOVN(s *stepInfo) {
	c.move(s, func(v uint64) uint64 { return c.sub(0, v) })
}

// MOVM, MOVMI, MOVMM, MOVMS.
func (c *CPU) opMOVM(s *stepInfo) {
	c.move(s, func(v uint64) uint64 {
		if v&SMASK != 0 {
			return c.sub(0, v)
		}
		return v
	})
}

// ADD, ADDI, ADDM, ADDB.
func (c *CPU) opADD(s *stepInfo) {
	b := c.operand(s)
	c.result(s, c.add(c.getAC(s.ac), b))
}

// SUB, SUBI, SUBM, SUBB.
func (c *CPU) opSUB(s *stepInfo) {
	b := c.operand(s)
	c.result(s, c.sub(c.getAC(s.ac), b))
}

// IMUL, IMULI, IMULM, IMULB.
func (c *CPU) opIMUL(s *stepInfo) {
	b := c.operand(s)
	c.result(s, c.imul(c.getAC(s.ac), b))
}

// MUL, MULI, MULM, MULB.
func (c *CPU) opMUL(s *stepInfo) {
	b := c.operand(s)
	hi, lo := c.mul(c.getAC(s.ac), b)
	if s.opcode&2 != 0 {
		c.Write(s.ea, hi, s.prev(pxData))
		if s.opcode&1 == 0 {
			return
		}
	}
	c.setAC(s.ac, hi)
	c.setAC(s.ac+1, lo)
}

// IDIV, IDIVI, IDIVM, IDIVB.
func (c *CPU) opIDIV(s *stepInfo) {
	b := c.operand(s)
	q, r, ok := c.idiv(c.getAC(s.ac), b)
	if !ok {
		return
	}
	if s.opcode&2 != 0 {
		c.Write(s.ea, q, s.prev(pxData))
		if s.opcode&1 == 0 {
			return
		}
	}
	c.setAC(s.ac, q)
	c.setAC(s.ac+1, r)
}

// DIV, DIVI, DIVM, DIVB.
func (c *CPU) opDIV(s *stepInfo) {
	b := c.operand(s)
	q, r, ok := c.div(c.getAC(s.ac), c.getAC(s.ac+1), b)
	if !ok {
		return
	}
	if s.opcode&2 != 0 {
		c.Write(s.ea, q, s.prev(pxData))
		if s.opcode&1 == 0 {
			return
		}
	}
	c.setAC(s.ac, q)
	c.setAC(s.ac+1, r)
}

// EXCH.
func (c *CPU) opEXCH(s *stepInfo) {
	v := c.ReadM(s.ea, s.prev(pxData))
	c.Write(s.ea, c.getAC(s.ac), s.prev(pxData))
	c.setAC(s.ac, v)
}

// BLT. The AC holds the progress so the transfer can restart after
// a page fail or interrupt.
func (c *CPU) opBLT(s *stepInfo) {
	c.blt(s, nil)
}

// Block transfer, converting each word if conv is not nil.
func (c *CPU) blt(s *stepInfo, conv func(uint64) uint64) {
	first := uint32(c.getAC(s.ac)) & AMASK
	for {
		ac := c.getAC(s.ac)
		src := uint32(ac>>18) & AMASK
		dst := uint32(ac) & AMASK
		v := c.Read(src, s.prev(pxData))
		if conv != nil {
			v = conv(v)
		}
		c.Write(dst, v, s.prev(pxBData))
		next := uint64((src+1)&AMASK)<<18 | uint64((dst+1)&AMASK)
		if dst >= s.ea {
			// AC is left alone if it was in the destination.
			if uint32(s.ac) < first || uint32(s.ac) > s.ea {
				c.setAC(s.ac, next)
			}
			return
		}
		c.setAC(s.ac, next)
		c.checkInterrupt()
	}
}

// AOBJP.
func (c *CPU) opAOBJP(s *stepInfo) {
	v := (c.getAC(s.ac) + 0o1000001) & FMASK
	c.setAC(s.ac, v)
	if v&SMASK == 0 {
		s.nextPC = s.ea
	}
}

// AOBJN.
func (c *CPU) opAOBJN(s *stepInfo) {
	v := (c.getAC(s.ac) + 0o1000001) & FMASK
	c.setAC(s.ac, v)
	if v&SMASK != 0 {
		s.nextPC = s.ea
	}
}

// JRST function validity.
const (
	jrstAny  = iota // Any mode
	jrstExec        // Executive mode only
	jrstIO          // Executive or user I/O
	jrstITS         // ITS only
	jrstBad         // Not implemented
)

var jrstMode = [16]int{
	jrstAny, jrstAny, jrstAny, jrstBad, jrstExec, jrstAny, jrstIO, jrstExec,
	jrstIO, jrstBad, jrstIO, jrstBad, jrstAny, jrstITS, jrstBad, jrstBad,
}

// JRST and its variants.
func (c *CPU) opJRST(s *stepInfo) {
	user := c.flags&USER != 0
	switch jrstMode[s.ac] {
	case jrstBad:
		c.muuo(s)
		return
	case jrstExec:
		if user {
			c.muuo(s)
			return
		}
	case jrstIO:
		if user && c.flags&USERIO == 0 {
			c.muuo(s)
			return
		}
	case jrstITS:
		if !c.cfg.ITS {
			c.muuo(s)
			return
		}
	}

	switch s.ac {
	case 0, 1: // JRST, PORTAL
		s.nextPC = s.ea
	case 2: // JRSTF
		c.setNewFlags(s.eaWord, true)
		s.nextPC = s.ea
	case 4: // HALT
		c.PC = s.ea
		panic(abort(StopHalt))
	case 5: // XJRSTF
		c.xjrstf(s, s.ea, true)
	case 6: // XJEN
		c.pi.Dismiss()
		c.xjrstf(s, s.ea, true)
	case 7: // XPCW
		c.Write(s.ea, uint64(c.saveFlags())<<23, false)
		c.Write(s.ea+1, uint64(s.nextPC), false)
		c.xjrstf(s, s.ea+2, false)
	case 0o10: // dismiss and jump
		c.pi.Dismiss()
		s.nextPC = s.ea
	case 0o12: // JEN
		c.pi.Dismiss()
		c.setNewFlags(s.eaWord, true)
		s.nextPC = s.ea
	case 0o14: // SFM
		c.Write(s.ea, uint64(c.flags)<<23, s.prev(pxData))
	case 0o15: // XJRST
		s.nextPC = uint32(c.Read(s.ea, false)) & AMASK
	}
}

// Load flags from ea and PC from ea+1.
func (c *CPU) xjrstf(s *stepInfo, ea uint32, jrst bool) {
	f := c.Read(ea, false)
	pc := c.Read(ea+1, false)
	c.setNewFlags(f, jrst)
	s.nextPC = uint32(pc) & AMASK
}

// JFCL.
func (c *CPU) opJFCL(s *stepInfo) {
	mask := uint32(s.ac) << 9
	if c.flags&mask != 0 {
		c.flags &^= mask
		s.nextPC = s.ea
	}
}

// XCT and PXCT.
func (c *CPU) opXCT(s *stepInfo) {
	if s.depth > 0 {
		c.checkInterrupt()
	}
	if c.cfg.XCTLimit != 0 && s.depth >= c.cfg.XCTLimit {
		panic(abort(StopXCT))
	}
	s.depth++
	if s.ac != 0 && c.flags&USER == 0 {
		s.xct = s.ac
	}
	s.inst = c.Read(s.ea, false)
	s.again = true
}

// MAP.
func (c *CPU) opMAP(s *stepInfo) {
	if c.cfg.ITS {
		c.muuo(s)
		return
	}
	c.setAC(s.ac, c.pager.MapWord(s.ea, c.tableFor(s.prev(pxData))))
}

// Increment stack pointer, set trap 2 when count reaches zero.
func (c *CPU) push(ac uint64) uint64 {
	ac = (ac + 0o1000001) & FMASK
	if ac&LMASK == 0 {
		c.flags |= TRP2
	}
	return ac
}

// Decrement stack pointer, set trap 2 when count passes zero.
func (c *CPU) pop(ac uint64) uint64 {
	ac = (ac + 0o777776777777) & FMASK
	if ac&LMASK == LMASK {
		c.flags |= TRP2
	}
	return ac
}

// PUSHJ. The stack word is written before the pointer changes.
func (c *CPU) opPUSHJ(s *stepInfo) {
	sp := (c.getAC(s.ac) + 0o1000001) & FMASK
	c.Write(uint32(sp)&AMASK, c.pcWord(s.nextPC), s.prev(pxBData))
	c.setAC(s.ac, c.push(c.getAC(s.ac)))
	c.clearJumpFlags()
	s.nextPC = s.ea
}

// PUSH.
func (c *CPU) opPUSH(s *stepInfo) {
	v := c.Read(s.ea, s.prev(pxData))
	sp := (c.getAC(s.ac) + 0o1000001) & FMASK
	c.Write(uint32(sp)&AMASK, v, s.prev(pxBData))
	c.setAC(s.ac, c.push(c.getAC(s.ac)))
}

// POP. E is written before the pointer changes.
func (c *CPU) opPOP(s *stepInfo) {
	v := c.Read(uint32(c.getAC(s.ac))&AMASK, s.prev(pxBData))
	c.Write(s.ea, v, s.prev(pxData))
	c.setAC(s.ac, c.pop(c.getAC(s.ac)))
}

// POPJ.
func (c *CPU) opPOPJ(s *stepInfo) {
	v := c.Read(uint32(c.getAC(s.ac))&AMASK, s.prev(pxBData))
	c.setAC(s.ac, c.pop(c.getAC(s.ac)))
	s.nextPC = uint32(v) & AMASK
}

// ADJSP.
func (c *CPU) opADJSP(s *stepInfo) {
	ac := c.getAC(s.ac)
	adj := sext18(uint64(s.ea))
	lh := (ac >> 18) & RMASK
	nlh := uint64(int64(lh)+adj) & RMASK
	nrh := uint64(int64(ac&RMASK)+adj) & RMASK
	if adj > 0 && lh&RSIGN != 0 && nlh&RSIGN == 0 {
		c.flags |= TRP2
	}
	if adj < 0 && lh&RSIGN == 0 && nlh&RSIGN != 0 {
		c.flags |= TRP2
	}
	c.setAC(s.ac, nlh<<18|nrh)
}

// JSR.
func (c *CPU) opJSR(s *stepInfo) {
	c.Write(s.ea, c.pcWord(s.nextPC), s.prev(pxData))
	c.clearJumpFlags()
	s.nextPC = (s.ea + 1) & AMASK
}

// JSP.
func (c *CPU) opJSP(s *stepInfo) {
	c.setAC(s.ac, c.pcWord(s.nextPC))
	c.clearJumpFlags()
	s.nextPC = s.ea
}

// JSA.
func (c *CPU) opJSA(s *stepInfo) {
	c.Write(s.ea, c.getAC(s.ac), s.prev(pxData))
	c.setAC(s.ac, uint64(s.ea)<<18|uint64(s.nextPC))
	s.nextPC = (s.ea + 1) & AMASK
}

// JRA.
func (c *CPU) opJRA(s *stepInfo) {
	c.setAC(s.ac, c.Read(uint32(c.getAC(s.ac)>>18)&AMASK, s.prev(pxData)))
	s.nextPC = s.ea
}

// CAI: compare AC with immediate.
func (c *CPU) opCAI(s *stepInfo) {
	if testCond(s.opcode, c.getAC(s.ac), uint64(s.ea)) {
		s.skip()
	}
}

// CAM: compare AC with memory.
func (c *CPU) opCAM(s *stepInfo) {
	v := c.Read(s.ea, s.prev(pxData))
	if testCond(s.opcode, c.getAC(s.ac), v) {
		s.skip()
	}
}

// JUMP: jump if AC matches condition.
func (c *CPU) opJUMP(s *stepInfo) {
	if testCond(s.opcode, c.getAC(s.ac), 0) {
		s.nextPC = s.ea
	}
}

// SKIP: skip if memory matches condition.
func (c *CPU) opSKIP(s *stepInfo) {
	v := c.Read(s.ea, s.prev(pxData))
	if s.ac != 0 {
		c.setAC(s.ac, v)
	}
	if testCond(s.opcode, v, 0) {
		s.skip()
	}
}

// AOJ and SOJ.
func (c *CPU) opAOJ(s *stepInfo) {
	inc := uint64(1)
	if s.opcode&0o40 != 0 {
		inc = FMASK
	}
	v := c.add(c.getAC(s.ac), inc)
	c.setAC(s.ac, v)
	if testCond(s.opcode, v, 0) {
		s.nextPC = s.ea
	}
}

// AOS and SOS.
func (c *CPU) opAOS(s *stepInfo) {
	inc := uint64(1)
	if s.opcode&0o40 != 0 {
		inc = FMASK
	}
	v := c.add(c.ReadM(s.ea, s.prev(pxData)), inc)
	c.Write(s.ea, v, s.prev(pxData))
	if s.ac != 0 {
		c.setAC(s.ac, v)
	}
	if testCond(s.opcode, v, 0) {
		s.skip()
	}
}

// Opcode 000, illegal or monitor UUO.
func (c *CPU) opUUO(s *stepInfo) {
	if c.cfg.StopIllegal {
		panic(abort(StopIllegal))
	}
	c.muuo(s)
}

// Local UUO: save instruction in 40 and execute 41.
func (c *CPU) opLUUO(s *stepInfo) {
	if c.flags&USER == 0 && c.pager.Discipline() == pager.TOPS20 {
		c.muuo(s)
		return
	}
	c.Write(cellLUUO, uint64(s.opcode)<<27|uint64(s.ac)<<23|uint64(s.ea), false)
	s.inst = c.Read(cellLUUOXC, false)
	s.again = true
}

// Unassigned instruction.
func (c *CPU) opMUUO(s *stepInfo) {
	c.muuo(s)
}
