/*
 * KS10 - CPU system and I/O instructions
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

// Internal device functions, selected by AC field.
const (
	ioAPRID  = 0o00
	ioWRAPR  = 0o04
	ioRDAPR  = 0o05
	ioCZAPR  = 0o06
	ioCOAPR  = 0o07
	ioWRPI   = 0o14
	ioRDPI   = 0o15
	ioCZPI   = 0o16
	ioCOPI   = 0o17
	ioRDUBR  = 0o01
	ioCLRPT  = 0o02
	ioWRUBR  = 0o03
	ioWREBR  = 0o04
	ioRDEBR  = 0o05
	ioRDSPB  = 0o00
	ioRDCSB  = 0o01
	ioRDPUR  = 0o02
	ioRDCSTM = 0o03
	ioRDTIM  = 0o04
	ioRDINT  = 0o05
	ioRDHSB  = 0o06
	ioWRSPB  = 0o10
	ioWRCSB  = 0o11
	ioWRPUR  = 0o12
	ioWRCSTM = 0o13
	ioWRTIM  = 0o14
	ioWRINT  = 0o15
	ioWRHSB  = 0o16
)

// Opcodes of I/O instructions with 22 bit addresses.
func (c *CPU) ioAddress(op int) bool {
	if c.cfg.ITS {
		return false
	}
	return (op >= 0o710 && op <= 0o715) || (op >= 0o720 && op <= 0o725)
}

// Return true if I/O instructions are not allowed.
func (c *CPU) ioPrivileged() bool {
	return c.flags&USER != 0 && c.flags&USERIO == 0
}

// Internal device dispatch for 700, 701 and 702, indexed by AC field.
// Empty entries are MUUOs.
func (c *CPU) createIOTables() {
	c.io700 = [16]func(*stepInfo){
		ioAPRID: c.opAPRID,
		ioWRAPR: c.opWRAPR,
		ioRDAPR: c.opRDAPR,
		ioCZAPR: c.opCZAPR,
		ioCOAPR: c.opCOAPR,
		ioWRPI:  c.opWRPI,
		ioRDPI:  c.opRDPI,
		ioCZPI:  c.opCZPI,
		ioCOPI:  c.opCOPI,
	}
	c.io701 = [16]func(*stepInfo){
		ioRDUBR: c.opRDUBR,
		ioCLRPT: c.opCLRPT,
		ioWRUBR: c.opWRUBR,
		ioWREBR: c.opWREBR,
		ioRDEBR: c.opRDEBR,
	}
	c.io702 = [16]func(*stepInfo){
		ioRDSPB:  c.opRDSPB,
		ioRDCSB:  c.opRDCSB,
		ioRDPUR:  c.opRDPUR,
		ioRDCSTM: c.opRDCSTM,
		ioRDTIM:  c.opRDTIM,
		ioRDINT:  c.opRDINT,
		ioRDHSB:  c.opRDHSB,
		ioWRSPB:  c.opWRSPB,
		ioWRCSB:  c.opWRCSB,
		ioWRPUR:  c.opWRPUR,
		ioWRCSTM: c.opWRCSTM,
		ioWRTIM:  c.opWRTIM,
		ioWRINT:  c.opWRINT,
		ioWRHSB:  c.opWRHSB,
	}
	if !c.cfg.ITS {
		return
	}

	// ITS clears page pairs and replaces the TOPS-20 registers by the DBRs.
	c.io701[ioCLRPT] = c.opCLRPTPair
	for i := range 4 {
		c.io702[ioRDSPB+i] = c.opRDDBR
		c.io702[ioWRSPB+i] = c.opWRDBR
	}
}

// Dispatch internal device function through table.
func (c *CPU) ioDispatch(s *stepInfo, table *[16]func(*stepInfo)) {
	if c.ioPrivileged() {
		c.muuo(s)
		return
	}
	fn := table[s.ac]
	if fn == nil {
		c.muuo(s)
		return
	}
	fn(s)
}

// Opcode 700, APR and PI.
func (c *CPU) op700(s *stepInfo) {
	c.ioDispatch(s, &c.io700)
}

// Opcode 701, pager control.
func (c *CPU) op701(s *stepInfo) {
	c.ioDispatch(s, &c.io701)
}

// Opcode 702, process registers, timers and halt status.
func (c *CPU) op702(s *stepInfo) {
	c.ioDispatch(s, &c.io702)
}

// APRID.
func (c *CPU) opAPRID(s *stepInfo) {
	ver := uint64(microVersion)
	if c.cfg.ITS {
		ver = itsVersion
	}
	c.Write(s.ea, ver<<18|uint64(c.cfg.Serial)&0o77777, s.prev(pxData))
}

func (c *CPU) opWRAPR(s *stepInfo) {
	c.apr.Write(s.ea)
}

func (c *CPU) opRDAPR(s *stepInfo) {
	c.Write(s.ea, c.apr.Read(), s.prev(pxData))
}

func (c *CPU) opCZAPR(s *stepInfo) {
	if c.apr.Read()&uint64(s.ea) == 0 {
		s.skip()
	}
}

func (c *CPU) opCOAPR(s *stepInfo) {
	if c.apr.Read()&uint64(s.ea) != 0 {
		s.skip()
	}
}

func (c *CPU) opWRPI(s *stepInfo) {
	c.pi.Write(s.ea)
}

func (c *CPU) opRDPI(s *stepInfo) {
	c.Write(s.ea, c.pi.Read(), s.prev(pxData))
}

func (c *CPU) opCZPI(s *stepInfo) {
	if c.pi.Read()&uint64(s.ea) == 0 {
		s.skip()
	}
}

func (c *CPU) opCOPI(s *stepInfo) {
	if c.pi.Read()&uint64(s.ea) != 0 {
		s.skip()
	}
}

func (c *CPU) opRDUBR(s *stepInfo) {
	c.Write(s.ea, c.ubrWord(), s.prev(pxData))
}

// CLRPT, invalidate one page.
func (c *CPU) opCLRPT(s *stepInfo) {
	c.pager.Invalidate(s.ea >> 9)
}

// ITS CLRPT, invalidate both halves of a page pair.
func (c *CPU) opCLRPTPair(s *stepInfo) {
	page := (s.ea >> 9) &^ 1
	c.pager.Invalidate(page)
	c.pager.Invalidate(page | 1)
}

// WRUBR, select AC blocks and user base.
func (c *CPU) opWRUBR(s *stepInfo) {
	w := c.Read(s.ea, s.prev(pxData))
	if w&ubrSelAC != 0 {
		c.cur = int(w>>ubrCurSh) & 7
		c.prev = int(w>>ubrPrevSh) & 7
	}
	if w&ubrSelPG != 0 {
		c.pager.SetUBR(uint32(w))
	}
}

func (c *CPU) opWREBR(s *stepInfo) {
	c.pager.SetEBR(s.ea)
}

func (c *CPU) opRDEBR(s *stepInfo) {
	c.Write(s.ea, uint64(c.pager.EBR()), s.prev(pxData))
}

func (c *CPU) opRDSPB(s *stepInfo) {
	c.Write(s.ea, uint64(c.pager.SPB()), s.prev(pxData))
}

func (c *CPU) opRDCSB(s *stepInfo) {
	c.Write(s.ea, uint64(c.pager.CSB()), s.prev(pxData))
}

func (c *CPU) opRDPUR(s *stepInfo) {
	c.Write(s.ea, c.pager.PUR(), s.prev(pxData))
}

func (c *CPU) opRDCSTM(s *stepInfo) {
	c.Write(s.ea, c.pager.CSTM(), s.prev(pxData))
}

// RDTIM, both words are checked before either is stored.
func (c *CPU) opRDTIM(s *stepInfo) {
	prev := s.prev(pxData)
	c.ReadM(s.ea+1, prev)
	c.Write(s.ea, (c.timebase>>35)&CMASK, prev)
	c.Write(s.ea+1, c.timebase&CMASK, prev)
}

func (c *CPU) opRDINT(s *stepInfo) {
	c.Write(s.ea, c.interval, s.prev(pxData))
}

func (c *CPU) opRDHSB(s *stepInfo) {
	c.Write(s.ea, uint64(c.hsb), s.prev(pxData))
}

func (c *CPU) opWRSPB(s *stepInfo) {
	c.pager.SetSPB(uint32(c.Read(s.ea, s.prev(pxData))))
}

func (c *CPU) opWRCSB(s *stepInfo) {
	c.pager.SetCSB(uint32(c.Read(s.ea, s.prev(pxData))))
}

func (c *CPU) opWRPUR(s *stepInfo) {
	c.pager.SetPUR(c.Read(s.ea, s.prev(pxData)))
}

func (c *CPU) opWRCSTM(s *stepInfo) {
	c.pager.SetCSTM(c.Read(s.ea, s.prev(pxData)))
}

func (c *CPU) opWRTIM(s *stepInfo) {
	prev := s.prev(pxData)
	hi := c.Read(s.ea, prev)
	lo := c.Read(s.ea+1, prev)
	c.timebase = (hi&CMASK)<<35 | lo&CMASK
}

func (c *CPU) opWRINT(s *stepInfo) {
	c.interval = c.Read(s.ea, s.prev(pxData))
	c.intCount = c.interval
}

func (c *CPU) opWRHSB(s *stepInfo) {
	c.hsb = uint32(c.Read(s.ea, s.prev(pxData)))
}

// ITS read DBR, AC field selects register.
func (c *CPU) opRDDBR(s *stepInfo) {
	c.Write(s.ea, uint64(c.pager.DBR(s.ac-ioRDSPB)), s.prev(pxData))
}

// ITS write DBR.
func (c *CPU) opWRDBR(s *stepInfo) {
	c.pager.SetDBR(s.ac-ioWRSPB, uint32(c.Read(s.ea, s.prev(pxData))))
}

// UMOVE, fetch word from previous context.
func (c *CPU) opUMOVE(s *stepInfo) {
	if c.ioPrivileged() {
		c.muuo(s)
		return
	}
	c.setAC(s.ac, c.Read(s.ea, true))
}

// UMOVEM, store AC in previous context.
func (c *CPU) opUMOVEM(s *stepInfo) {
	if c.ioPrivileged() {
		c.muuo(s)
		return
	}
	c.Write(s.ea, c.getAC(s.ac), true)
}

// Raise I/O page fail for address.
func (c *CPU) ioFail(addr uint32) {
	c.pager.Fault = pager.PFHard | pager.PFIO | uint64(addr&IOMASK)
	if c.flags&USER != 0 {
		c.pager.Fault |= pager.PFUser
	}
	debug.Debugf("CPU", debugMsk, debugIO, "I/O fail %08o", addr)
	panic(abortPageFail)
}

// Read Unibus register.
func (c *CPU) readIO(addr uint32) uint64 {
	v, err := c.bus.Read(addr)
	if err != nil {
		c.ioFail(addr)
	}
	debug.Debugf("CPU", debugMsk, debugIO, "Read %08o %06o", addr, v)
	return uint64(v)
}

// Write Unibus register.
func (c *CPU) writeIO(addr uint32, v uint64, byteOp bool) {
	debug.Debugf("CPU", debugMsk, debugIO, "Write %08o %06o", addr, v)
	if err := c.bus.Write(addr, uint32(v&RMASK), byteOp); err != nil {
		c.ioFail(addr)
	}
}

// Read byte from Unibus.
func (c *CPU) readIOByte(addr uint32) uint64 {
	v := c.readIO(addr &^ 1)
	if addr&1 != 0 {
		v >>= 8
	}
	return v & 0o377
}

// I/O instructions 710-715 and 720-725.
func (c *CPU) opIO(s *stepInfo) {
	if c.ioPrivileged() {
		c.muuo(s)
		return
	}
	if c.cfg.ITS {
		c.itsIO(s)
		return
	}
	addr := s.ea
	ac := c.getAC(s.ac)
	byteOp := s.opcode >= 0o720
	read := func() uint64 {
		if byteOp {
			return c.readIOByte(addr)
		}
		return c.readIO(addr)
	}
	switch s.opcode & 7 {
	case 0: // TIOE
		if read()&ac == 0 {
			s.skip()
		}
	case 1: // TION
		if read()&ac != 0 {
			s.skip()
		}
	case 2: // RDIO
		c.setAC(s.ac, read())
	case 3: // WRIO
		c.writeIO(addr, ac, byteOp)
	case 4: // BSIO
		c.writeIO(addr, read()|ac, byteOp)
	case 5: // BCIO
		c.writeIO(addr, read()&^ac, byteOp)
	}
}

// ITS I/O instructions. The immediate forms address adapter 1 or 3
// directly, the others take the I/O address from E.
func (c *CPU) itsIO(s *stepInfo) {
	byteOp := s.opcode >= 0o720
	var addr uint32
	switch s.opcode & 7 {
	case 0, 4:
		addr = 1<<18 | s.ea
	case 1, 5:
		addr = 3<<18 | s.ea
	default:
		addr = uint32(c.Read(s.ea, s.prev(pxData))) & IOMASK
	}
	switch s.opcode & 7 {
	case 0, 1, 2: // IORDI, IORDQ, IORD
		if byteOp {
			c.setAC(s.ac, c.readIOByte(addr))
		} else {
			c.setAC(s.ac, c.readIO(addr))
		}
	default: // IOWR, IOWRI, IOWRQ
		v := c.getAC(s.ac)
		if byteOp {
			v &= 0o377
		}
		c.writeIO(addr, v, byteOp)
	}
}

// Convert four PDP-10 bytes to Unibus halfword layout.
func byteToUnibus(w uint64) uint64 {
	b0 := (w >> 28) & 0o377
	b1 := (w >> 20) & 0o377
	b2 := (w >> 12) & 0o377
	b3 := (w >> 4) & 0o377
	return (b1<<8|b0)<<18 | b3<<8 | b2
}

// Convert Unibus halfword layout to four PDP-10 bytes.
func unibusToByte(w uint64) uint64 {
	b0 := (w >> 18) & 0o377
	b1 := (w >> 26) & 0o377
	b2 := w & 0o377
	b3 := (w >> 8) & 0o377
	return b0<<28 | b1<<20 | b2<<12 | b3<<4
}

// BLTBU.
func (c *CPU) opBLTBU(s *stepInfo) {
	c.blt(s, byteToUnibus)
}

// BLTUB.
func (c *CPU) opBLTUB(s *stepInfo) {
	c.blt(s, unibusToByte)
}
