/*
 * KS10 - Arithmetic processor system flags
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

package apr

import (
	"github.com/rcornwell/KS10/emu/pi"
)

// WRAPR function bits.
const (
	Enable  uint32 = 0o100000 // Enable selected flags
	Disable uint32 = 0o040000 // Disable selected flags
	ClrFlg  uint32 = 0o020000 // Clear selected flags
	SetFlg  uint32 = 0o010000 // Set selected flags
	LvlMask uint32 = 0o000007 // PI level assignment
	IRQ     uint32 = 0o000010 // Interrupt requested (RDAPR)
)

// APR flags.
const (
	Spare    uint32 = 0o04000 // Unassigned flag
	IntCon   uint32 = 0o02000 // Interrupt the front end
	PowerF   uint32 = 0o01000 // Power failure
	NXM      uint32 = 0o00400 // Non-existent memory
	HardMem  uint32 = 0o00200 // Hard memory error
	CorrMem  uint32 = 0o00100 // Corrected memory error
	Interval uint32 = 0o00040 // Interval timer done
	ConInt   uint32 = 0o00020 // Console interrupt
	Flags    uint32 = 0o07760 // All flag bits
)

// APR holds the processor condition flags and their PI level.
type APR struct {
	pi      *pi.PI
	enabled uint32 // Flags allowed to interrupt
	flags   uint32 // Flags currently set
	level   int    // PI level for interrupts
}

// Create APR attached to PI system.
func New(p *pi.PI) *APR {
	return &APR{pi: p}
}

// Reset to power on state.
func (a *APR) Reset() {
	a.enabled = 0
	a.flags = 0
	a.level = 0
	a.update()
}

// Recompute the request to the PI system.
func (a *APR) update() {
	if a.level != 0 && a.flags&a.enabled != 0 {
		a.pi.SetAPR(pi.LevelBit(a.level))
	} else {
		a.pi.SetAPR(0)
	}
}

// Process WRAPR.
func (a *APR) Write(data uint32) {
	bits := data & Flags
	if data&Enable != 0 {
		a.enabled |= bits
	}
	if data&Disable != 0 {
		a.enabled &^= bits
	}
	if data&ClrFlg != 0 {
		a.flags &^= bits
	}
	if data&SetFlg != 0 {
		a.flags |= bits
	}
	a.level = int(data & LvlMask)
	a.update()
}

// Process RDAPR.
func (a *APR) Read() uint64 {
	val := uint64(a.enabled)<<18 | uint64(a.flags) | uint64(a.level)
	if a.flags&a.enabled != 0 {
		val |= uint64(IRQ)
	}
	return val
}

// Set a flag from hardware.
func (a *APR) SetFlag(flag uint32) {
	a.flags |= flag & Flags
	a.update()
}

// Clear a flag from hardware.
func (a *APR) ClearFlag(flag uint32) {
	a.flags &^= flag & Flags
	a.update()
}

// Test if flag set.
func (a *APR) Flag(flag uint32) bool {
	return a.flags&flag != 0
}

// Return PI level of APR.
func (a *APR) Level() int {
	return a.level
}
