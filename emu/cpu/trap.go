/*
 * KS10 - CPU traps
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
	"github.com/rcornwell/KS10/util/debug"
)

// Load new flags from bits 0-12 of word. When a JRST in user mode
// loads flags it can't leave user mode or gain user I/O.
func (c *CPU) setNewFlags(word uint64, jrst bool) {
	nf := uint32(word>>23) & 0o17777
	if jrst && c.flags&USER != 0 {
		nf |= USER
		if c.flags&USERIO == 0 {
			nf &^= USERIO
		}
	}
	if c.cfg.ITS && nf&ONEP != 0 {
		c.onePShadow = true
		nf &^= ONEP
	}
	c.flags = nf
}

// Return flags to save in a PC word. A pending 1-proceed is saved
// with them and is no longer pending.
func (c *CPU) saveFlags() uint32 {
	f := c.flags
	if c.cfg.ITS && (c.onePArm || c.onePShadow) {
		f |= ONEP
	}
	c.onePArm = false
	c.onePShadow = false
	return f
}

// Return PC word with current flags.
func (c *CPU) pcWord(pc uint32) uint64 {
	return uint64(c.flags)<<23 | uint64(pc&AMASK)
}

// Clear flags changed by jump to subroutine.
func (c *CPU) clearJumpFlags() {
	c.flags &^= FPD | AFI | TRP1 | TRP2
}

// Set overflow and trap 1.
func (c *CPU) overflow() {
	c.flags |= OVR | TRP1
}

// Process context word, as read by RDUBR.
func (c *CPU) ubrWord() uint64 {
	return ubrSelAC | ubrSelPG | uint64(c.cur)<<ubrCurSh | uint64(c.prev)<<ubrPrevSh |
		uint64(c.pager.UBR())
}

// Save state and take page fail trap.
func (c *CPU) pageFailTrap() {
	upt := c.pager.UPT()
	off := uptPF
	if c.cfg.ITS {
		off = uptITSPF
	}
	saved := c.saveFlags()
	c.writePhys(upt+off, c.pager.Fault)
	c.writePhys(upt+off+1, uint64(saved)<<23|uint64(c.PC))
	nw := c.readPhys(upt + off + 2)
	c.setNewFlags(nw, false)
	if saved&USER != 0 {
		c.flags |= PCU
	}
	c.PC = uint32(nw & RMASK)
}

// Monitor UUO. Saves the instruction and PC in the UPT and loads a new
// PC word selected by mode.
func (c *CPU) muuo(s *stepInfo) {
	upt := c.pager.UPT()
	saved := c.saveFlags()
	debug.Debugf("CPU", debugMsk, debugTrap, "MUUO %03o %02o,%06o PC %06o", s.opcode, s.ac, s.ea, s.pc)
	if c.pager.Discipline() == pager.TOPS20 {
		c.WriteP(upt+uptMUUO, uint64(saved)<<23|uint64(s.opcode<<4|s.ac)<<5)
		c.WriteP(upt+uptMUUO+1, uint64(s.nextPC))
		c.WriteP(upt+uptMUUO+2, uint64(s.ea))
		c.WriteP(upt+uptMUUO+3, c.ubrWord())
	} else {
		c.WriteP(upt+uptMUUO, uint64(s.opcode)<<27|uint64(s.ac)<<23|uint64(s.ea))
		c.WriteP(upt+uptMUUO+1, uint64(saved)<<23|uint64(s.nextPC))
		c.WriteP(upt+uptMUUO+2, c.ubrWord())
	}
	idx := uint32(0)
	if saved&USER != 0 {
		idx |= 4
	}
	if s.trap {
		idx |= 1
	}
	nw := c.ReadP(upt + uptMUUOPC + idx)
	c.setNewFlags(nw, false)
	if saved&USER != 0 {
		c.flags |= PCU
	}
	s.nextPC = uint32(nw & RMASK)
}

// ITS 1-proceed trap, taken after the instruction completes.
func (c *CPU) oneProceed() {
	upt := c.pager.UPT()
	debug.Debugf("CPU", debugMsk, debugTrap, "1-proceed PC %06o", c.PC)
	c.writePhys(upt+uptOneP, c.pcWord(c.PC))
	nw := c.readPhys(upt + uptOneP + 1)
	c.setNewFlags(nw, false)
	c.PC = uint32(nw & RMASK)
}
