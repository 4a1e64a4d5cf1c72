/*
 * KS10 - Unibus adapters and device registers
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

package device

import (
	"errors"
	"sort"

	"github.com/rcornwell/KS10/emu/pi"
)

// Register is the view a Unibus device gives to the I/O instructions.
// Data is right justified, 16 bits for most devices, 18 for adapter registers.
type Register interface {
	ReadIO(addr uint32) (uint32, error)
	WriteIO(addr uint32, data uint32, byteOp bool) error
	TestIO(addr uint32) bool // Register exists at address
	ResetIO()
}

var ErrNoDev = errors.New("no device at address")

// Adapter status register bits.
const (
	StatTimeout uint32 = 0o400000 // Unibus timeout
	StatBadMem  uint32 = 0o200000 // Bad memory data
	StatParity  uint32 = 0o100000 // Bus parity error
	StatNXD     uint32 = 0o040000 // Non-existent device
	StatHigh    uint32 = 0o004000 // High level interrupt pending
	StatLow     uint32 = 0o002000 // Low level interrupt pending
	StatPower   uint32 = 0o001000 // Power low
	StatDXF     uint32 = 0o000200 // Disable transfer on error
	StatInit    uint32 = 0o000100 // Initialize adapter
	StatPIH     uint32 = 0o000070 // High PI level
	StatPIL     uint32 = 0o000007 // Low PI level

	StatusAddr uint32 = 0o763100 // Adapter status register
	MaintAddr  uint32 = 0o763101 // Maintenance register
	MapAddr    uint32 = 0o763000 // Paging RAM
	MapSize    uint32 = 0o100    // Paging RAM entries
	AddrMask   uint32 = 0o777777 // Unibus address in I/O address
	CtlShift          = 18       // Adapter number in I/O address
)

type regRange struct {
	base   uint32
	length uint32
	dev    Register
}

type irq struct {
	dev    Register
	br     int
	vector uint32
}

// Adapter is one Unibus adapter with its devices.
type Adapter struct {
	num    int
	status uint32
	pmap   [MapSize]uint32
	ranges []regRange
	irqs   []irq
	bus    *Bus
}

// Bus holds the Unibus adapters of the machine.
type Bus struct {
	adapters [16]*Adapter
	pi       *pi.PI
}

// Create bus feeding requests to PI system.
func NewBus(p *pi.PI) *Bus {
	return &Bus{pi: p}
}

// Add adapter number ctl, returns existing one if present.
func (b *Bus) AddAdapter(ctl int) *Adapter {
	ctl &= 0o17
	if b.adapters[ctl] == nil {
		b.adapters[ctl] = &Adapter{num: ctl, bus: b}
	}
	return b.adapters[ctl]
}

// Return adapter ctl or nil.
func (b *Bus) Adapter(ctl int) *Adapter {
	return b.adapters[ctl&0o17]
}

// Register device at base for length addresses.
func (a *Adapter) Register(base, length uint32, dev Register) error {
	base &= AddrMask
	for _, r := range a.ranges {
		if base < r.base+r.length && r.base < base+length {
			return errors.New("device address conflict")
		}
	}
	a.ranges = append(a.ranges, regRange{base: base, length: length, dev: dev})
	sort.Slice(a.ranges, func(i, j int) bool { return a.ranges[i].base < a.ranges[j].base })
	return nil
}

// Find device for address.
func (a *Adapter) find(addr uint32) Register {
	for _, r := range a.ranges {
		if addr >= r.base && addr < r.base+r.length {
			if r.dev.TestIO(addr) {
				return r.dev
			}
			return nil
		}
	}
	return nil
}

// Split I/O address into adapter and register.
func (b *Bus) decode(addr uint32) (*Adapter, uint32) {
	return b.adapters[(addr>>CtlShift)&0o17], addr & AddrMask
}

// Read register at 22 bit I/O address.
func (b *Bus) Read(addr uint32) (uint32, error) {
	a, reg := b.decode(addr)
	if a == nil {
		return 0, ErrNoDev
	}
	switch {
	case reg == StatusAddr:
		return a.status, nil
	case reg == MaintAddr:
		return 0, nil
	case reg >= MapAddr && reg < MapAddr+MapSize:
		return a.pmap[reg-MapAddr], nil
	}
	dev := a.find(reg)
	if dev == nil {
		a.status |= StatNXD
		return 0, ErrNoDev
	}
	return dev.ReadIO(reg)
}

// Write register at 22 bit I/O address.
func (b *Bus) Write(addr uint32, data uint32, byteOp bool) error {
	a, reg := b.decode(addr)
	if a == nil {
		return ErrNoDev
	}
	switch {
	case reg == StatusAddr:
		a.writeStatus(data)
		return nil
	case reg == MaintAddr:
		return nil
	case reg >= MapAddr && reg < MapAddr+MapSize:
		a.pmap[reg-MapAddr] = data & AddrMask
		return nil
	}
	dev := a.find(reg)
	if dev == nil {
		a.status |= StatNXD
		return ErrNoDev
	}
	return dev.WriteIO(reg, data, byteOp)
}

// Write adapter status register.
func (a *Adapter) writeStatus(data uint32) {
	// Error bits are cleared by writing ones.
	a.status &^= data & (StatTimeout | StatBadMem | StatParity | StatNXD)
	a.status = (a.status &^ (StatDXF | StatPIH | StatPIL)) | (data & (StatDXF | StatPIH | StatPIL))
	if data&StatInit != 0 {
		a.Reset()
	}
	a.bus.evaluate()
}

// Reset adapter and its devices.
func (a *Adapter) Reset() {
	a.status &= StatPIH | StatPIL
	a.irqs = nil
	for _, r := range a.ranges {
		r.dev.ResetIO()
	}
}

// Reset every adapter.
func (b *Bus) Reset() {
	for _, a := range b.adapters {
		if a != nil {
			a.status = 0
			a.pmap = [MapSize]uint32{}
			a.Reset()
		}
	}
	b.evaluate()
}

// Map a Unibus address through the paging RAM to a physical word address.
func (a *Adapter) MapAddr(ubaddr uint32) (uint32, bool) {
	entry := a.pmap[(ubaddr>>11)&(MapSize-1)]
	if entry&MapValid == 0 {
		return 0, false
	}
	return (entry&MapPage)<<9 | (ubaddr>>2)&0o777, true
}

// Paging RAM entry bits.
const (
	MapValid uint32 = 0o040000 // Entry valid
	MapPage  uint32 = 0o003777 // Physical page
)

// Level assigned to a bus request.
func (a *Adapter) level(br int) int {
	if br >= 6 {
		return int((a.status & StatPIH) >> 3)
	}
	return int(a.status & StatPIL)
}

// Post interrupt from dev at bus request level br.
func (a *Adapter) RequestIRQ(dev Register, br int, vector uint32) {
	for i := range a.irqs {
		if a.irqs[i].dev == dev {
			a.irqs[i].br = br
			a.irqs[i].vector = vector
			a.bus.evaluate()
			return
		}
	}
	a.irqs = append(a.irqs, irq{dev: dev, br: br, vector: vector})
	a.bus.evaluate()
}

// Remove interrupt posted by dev.
func (a *Adapter) ClearIRQ(dev Register) {
	for i := range a.irqs {
		if a.irqs[i].dev == dev {
			a.irqs = append(a.irqs[:i], a.irqs[i+1:]...)
			break
		}
	}
	a.bus.evaluate()
}

// Recompute I/O requests for PI system.
func (b *Bus) evaluate() {
	var mask uint8
	for _, a := range b.adapters {
		if a == nil {
			continue
		}
		a.status &^= StatHigh | StatLow
		for _, r := range a.irqs {
			if r.br >= 6 {
				a.status |= StatHigh
			} else {
				a.status |= StatLow
			}
			mask |= pi.LevelBit(a.level(r.br))
		}
	}
	if b.pi != nil {
		b.pi.SetIO(mask)
	}
}

// Acknowledge highest priority request for level, returns adapter and vector.
func (b *Bus) Vector(level int) (int, uint32, bool) {
	for _, a := range b.adapters {
		if a == nil {
			continue
		}
		best := -1
		for i, r := range a.irqs {
			if a.level(r.br) != level {
				continue
			}
			if best < 0 || r.br > a.irqs[best].br {
				best = i
			}
		}
		if best >= 0 {
			vec := a.irqs[best].vector
			a.irqs = append(a.irqs[:best], a.irqs[best+1:]...)
			b.evaluate()
			return a.num, vec, true
		}
	}
	return 0, 0, false
}
