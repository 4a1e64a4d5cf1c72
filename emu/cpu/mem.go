/*
 * KS10 - CPU memory access
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
	"errors"

	"github.com/rcornwell/KS10/emu/apr"
	"github.com/rcornwell/KS10/emu/pager"
)

var ErrNXM = errors.New("non-existent memory")

// Return AC block for context.
func (c *CPU) block(prev bool) int {
	if prev {
		return c.prev
	}
	return c.cur
}

// Return page table for context.
func (c *CPU) tableFor(prev bool) pager.Table {
	if prev {
		if c.flags&PCU != 0 {
			return pager.UserTable
		}
		return pager.ExecTable
	}
	if c.flags&USER != 0 {
		return pager.UserTable
	}
	return pager.ExecTable
}

// Get accumulator in current block.
func (c *CPU) getAC(n int) uint64 {
	return c.acs[c.cur][n&0o17]
}

// Set accumulator in current block.
func (c *CPU) setAC(n int, v uint64) {
	c.acs[c.cur][n&0o17] = v & FMASK
}

// Translate or abort.
func (c *CPU) translate(ea uint32, tbl pager.Table, acc pager.Access) uint32 {
	pa, err := c.pager.Map(ea, tbl, acc)
	switch {
	case err == nil:
		return pa
	case errors.Is(err, pager.ErrInterrupt):
		panic(abortInterrupt)
	case errors.Is(err, pager.ErrIndirect):
		panic(abort(StopIndirect))
	case errors.Is(err, pager.ErrNXM):
		c.apr.SetFlag(apr.NXM)
	}
	panic(abortPageFail)
}

// Non-existent memory referenced. Only aborts when paging is on.
func (c *CPU) nxm(pa uint32) {
	c.apr.SetFlag(apr.NXM)
	if c.pager.Enabled() {
		c.pager.Fault = pager.PFNXM | uint64(pa)
		if c.flags&USER != 0 {
			c.pager.Fault |= pager.PFUser
		}
		panic(abortPageFail)
	}
}

// Physical read that never aborts.
func (c *CPU) readPhys(pa uint32) uint64 {
	v, bad := c.mem.GetWord(pa)
	if bad {
		c.apr.SetFlag(apr.NXM)
	}
	return v
}

// Physical write that never aborts.
func (c *CPU) writePhys(pa uint32, v uint64) {
	if c.mem.PutWord(pa, v&FMASK) {
		c.apr.SetFlag(apr.NXM)
	}
}

// Read word at virtual address.
func (c *CPU) Read(ea uint32, prev bool) uint64 {
	ea &= AMASK
	if ea < 16 {
		return c.acs[c.block(prev)][ea]
	}
	return c.ReadP(c.translate(ea, c.tableFor(prev), pager.Read))
}

// Read word with intent to write it back.
func (c *CPU) ReadM(ea uint32, prev bool) uint64 {
	ea &= AMASK
	if ea < 16 {
		return c.acs[c.block(prev)][ea]
	}
	return c.ReadP(c.translate(ea, c.tableFor(prev), pager.Write))
}

// Read word in executive space.
func (c *CPU) ReadE(ea uint32) uint64 {
	ea &= AMASK
	if ea < 16 {
		return c.acs[c.cur][ea]
	}
	return c.ReadP(c.translate(ea, pager.ExecTable, pager.Read))
}

// Read physical word.
func (c *CPU) ReadP(pa uint32) uint64 {
	v, bad := c.mem.GetWord(pa)
	if bad {
		c.nxm(pa)
	}
	return v
}

// Write word to virtual address.
func (c *CPU) Write(ea uint32, v uint64, prev bool) {
	ea &= AMASK
	if ea < 16 {
		c.acs[c.block(prev)][ea] = v & FMASK
		return
	}
	c.WriteP(c.translate(ea, c.tableFor(prev), pager.Write), v)
}

// Write word in executive space.
func (c *CPU) WriteE(ea uint32, v uint64) {
	ea &= AMASK
	if ea < 16 {
		c.acs[c.cur][ea] = v & FMASK
		return
	}
	c.WriteP(c.translate(ea, pager.ExecTable, pager.Write), v)
}

// Write physical word.
func (c *CPU) WriteP(pa uint32, v uint64) {
	if c.mem.PutWord(pa, v&FMASK) {
		c.nxm(pa)
	}
}

// Return true if access to ea would fail. Nothing is changed.
func (c *CPU) AccViol(ea uint32, prev bool, write bool) bool {
	ea &= AMASK
	if ea < 16 {
		return false
	}
	acc := pager.Console
	if write {
		acc = pager.Probe
	}
	_, err := c.pager.Map(ea, c.tableFor(prev), acc)
	return err != nil
}

// Translate address for console, independent of the running program.
func (c *CPU) Conmap(va uint32, user bool) (uint32, bool) {
	tbl := pager.ExecTable
	if user {
		tbl = pager.UserTable
	}
	pa, err := c.pager.Map(va, tbl, pager.Console)
	return pa, err == nil
}

// Return accumulator n of block.
func (c *CPU) GetAC(block, n int) uint64 {
	return c.acs[block&7][n&0o17]
}

// Set accumulator n of block.
func (c *CPU) SetAC(block, n int, v uint64) {
	c.acs[block&7][n&0o17] = v & FMASK
}

// Return current and previous AC block.
func (c *CPU) Blocks() (int, int) {
	return c.cur, c.prev
}

// Examine word. Virtual addresses go through conmap in the current mode.
func (c *CPU) Examine(addr uint32, virtual bool) (uint64, error) {
	if virtual {
		addr &= AMASK
		if addr < 16 {
			return c.acs[c.cur][addr], nil
		}
		pa, ok := c.Conmap(addr, c.flags&USER != 0)
		if !ok {
			return 0, pager.ErrPageFail
		}
		addr = pa
	}
	v, bad := c.mem.GetWord(addr)
	if bad {
		return 0, ErrNXM
	}
	return v, nil
}

// Deposit word. Virtual addresses go through conmap in the current mode.
func (c *CPU) Deposit(addr uint32, v uint64, virtual bool) error {
	if virtual {
		addr &= AMASK
		if addr < 16 {
			c.acs[c.cur][addr] = v & FMASK
			return nil
		}
		pa, ok := c.Conmap(addr, c.flags&USER != 0)
		if !ok {
			return pager.ErrPageFail
		}
		addr = pa
	}
	if c.mem.PutWord(addr, v&FMASK) {
		return ErrNXM
	}
	return nil
}
