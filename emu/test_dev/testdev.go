/*
 * KS10 - Unibus test device
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

package testdev

import (
	"github.com/rcornwell/KS10/emu/device"
	"github.com/rcornwell/KS10/emu/event"
)

// Registers, relative to base.
const (
	RegCSR  uint32 = 0 // Control and status
	RegData uint32 = 2 // Data buffer
	RegCnt  uint32 = 4 // Completed operation count
)

// CSR bits.
const (
	CSRGo    uint32 = 0o000001 // Start operation
	CSRIE    uint32 = 0o000100 // Interrupt enable
	CSRDone  uint32 = 0o000200 // Operation done
	CSRError uint32 = 0o100000 // Error, bad function
	CSRFunc  uint32 = 0o000016 // Function code
)

// Functions.
const (
	FuncEcho uint32 = 0o00 // Data returned unchanged
	FuncInc  uint32 = 0o02 // Data incremented
	FuncComp uint32 = 0o04 // Data complemented
)

// TestDev is a simple Unibus device: GO runs function on the data buffer
// after Delay cycles, sets DONE and interrupts if enabled.
type TestDev struct {
	Base   uint32 // Unibus address of CSR
	Vector uint32 // Interrupt vector
	BR     int    // Bus request level
	Delay  int    // Cycles for operation
	csr    uint32
	data   uint32
	count  uint32
	uba    *device.Adapter
	events *event.Queue
}

// Create test device and register it on adapter.
func New(uba *device.Adapter, events *event.Queue, base, vector uint32, br int) (*TestDev, error) {
	d := &TestDev{Base: base, Vector: vector, BR: br, Delay: 10, uba: uba, events: events}
	if err := uba.Register(base, 6, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Register present.
func (d *TestDev) TestIO(addr uint32) bool {
	return addr-d.Base <= RegCnt+1
}

// Read a register.
func (d *TestDev) ReadIO(addr uint32) (uint32, error) {
	switch (addr - d.Base) &^ 1 {
	case RegCSR:
		return d.csr, nil
	case RegData:
		// Reading data acknowledges done.
		d.csr &^= CSRDone
		d.uba.ClearIRQ(d)
		return d.data, nil
	case RegCnt:
		return d.count, nil
	}
	return 0, device.ErrNoDev
}

// Write a register.
func (d *TestDev) WriteIO(addr uint32, data uint32, byteOp bool) error {
	switch (addr - d.Base) &^ 1 {
	case RegCSR:
		if byteOp {
			if addr&1 != 0 {
				data = (d.csr & 0o377) | (data&0o377)<<8
			} else {
				data = (d.csr & 0o177400) | (data & 0o377)
			}
		}
		d.csr = (d.csr &^ (CSRIE | CSRFunc)) | (data & (CSRIE | CSRFunc))
		switch {
		case data&CSRGo != 0:
			d.csr &^= CSRDone | CSRError
			d.uba.ClearIRQ(d)
			d.events.AddEvent(d, d.callback, d.Delay, int(data&CSRFunc))
		case d.csr&(CSRDone|CSRIE) == CSRDone|CSRIE:
			d.uba.RequestIRQ(d, d.BR, d.Vector)
		case d.csr&CSRIE == 0:
			d.uba.ClearIRQ(d)
		}
	case RegData:
		if byteOp {
			if addr&1 != 0 {
				data = (d.data & 0o377) | (data&0o377)<<8
			} else {
				data = (d.data & 0o177400) | (data & 0o377)
			}
		}
		d.data = data & 0o177777
	case RegCnt:
		d.count = 0
	}
	return nil
}

// Reset device.
func (d *TestDev) ResetIO() {
	d.csr = 0
	d.data = 0
	d.events.CancelEvent(d, int(FuncEcho))
	d.events.CancelEvent(d, int(FuncInc))
	d.events.CancelEvent(d, int(FuncComp))
}

// Operation complete.
func (d *TestDev) callback(fn int) {
	switch uint32(fn) {
	case FuncEcho:
	case FuncInc:
		d.data = (d.data + 1) & 0o177777
	case FuncComp:
		d.data = ^d.data & 0o177777
	default:
		d.csr |= CSRError
	}
	d.count++
	d.csr |= CSRDone
	if d.csr&CSRIE != 0 {
		d.uba.RequestIRQ(d, d.BR, d.Vector)
	}
}
