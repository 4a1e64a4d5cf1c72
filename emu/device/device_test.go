/*
 * KS10 - Unibus adapter tests
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
	"testing"

	"github.com/matryer/is"
	"github.com/rcornwell/KS10/emu/pi"
)

type fakeReg struct {
	regs  [4]uint32
	reset bool
}

func (f *fakeReg) ReadIO(addr uint32) (uint32, error) {
	return f.regs[(addr>>1)&3], nil
}

func (f *fakeReg) WriteIO(addr uint32, data uint32, _ bool) error {
	f.regs[(addr>>1)&3] = data
	return nil
}

func (f *fakeReg) TestIO(addr uint32) bool {
	return addr&1 == 0
}

func (f *fakeReg) ResetIO() {
	f.reset = true
}

func setup() (*Bus, *Adapter, *fakeReg, *pi.PI) {
	p := pi.New()
	p.Write(pi.SysOn | pi.LevelOn | 0o177)
	b := NewBus(p)
	a := b.AddAdapter(3)
	f := &fakeReg{}
	_ = a.Register(0o776700, 8, f)
	return b, a, f, p
}

// Registers are reached through adapter number and address.
func TestReadWrite(t *testing.T) {
	is := is.New(t)
	b, _, f, _ := setup()
	is.NoErr(b.Write(3<<CtlShift|0o776702, 0o1234, false))
	is.Equal(f.regs[1], uint32(0o1234))
	v, err := b.Read(3<<CtlShift | 0o776702)
	is.NoErr(err)
	is.Equal(v, uint32(0o1234))
}

// Missing devices and adapters report errors.
func TestNoDevice(t *testing.T) {
	is := is.New(t)
	b, a, _, _ := setup()
	_, err := b.Read(1<<CtlShift | 0o776700)
	is.Equal(err, ErrNoDev)
	_, err = b.Read(3<<CtlShift | 0o776000)
	is.Equal(err, ErrNoDev)
	is.True(a.status&StatNXD != 0)
	// Register hole inside device range.
	_, err = b.Read(3<<CtlShift | 0o776701)
	is.Equal(err, ErrNoDev)
	// Clear error by writing one.
	is.NoErr(b.Write(3<<CtlShift|StatusAddr, StatNXD, false))
	is.Equal(a.status&StatNXD, uint32(0))
}

// Overlapping registration is refused.
func TestConflict(t *testing.T) {
	_, a, _, _ := setup()
	if err := a.Register(0o776704, 2, &fakeReg{}); err == nil {
		t.Errorf("Overlapping device was registered")
	}
}

// Bus requests map to PI levels from status register.
func TestInterruptLevels(t *testing.T) {
	is := is.New(t)
	b, a, f, p := setup()
	is.NoErr(b.Write(3<<CtlShift|StatusAddr, 2<<3|5, false))
	a.RequestIRQ(f, 5, 0o300)
	is.Equal(p.Pending(), 5)
	is.True(a.status&StatLow != 0)
	f2 := &fakeReg{}
	_ = a.Register(0o777000, 2, f2)
	a.RequestIRQ(f2, 7, 0o340)
	is.Equal(p.Pending(), 2)
	ctl, vec, ok := b.Vector(2)
	is.True(ok)
	is.Equal(ctl, 3)
	is.Equal(vec, uint32(0o340))
	is.Equal(p.Pending(), 5)
	_, _, ok = b.Vector(2)
	is.True(!ok)
	a.ClearIRQ(f)
	is.Equal(p.Pending(), 0)
}

// Init bit resets devices.
func TestAdapterInit(t *testing.T) {
	is := is.New(t)
	b, _, f, _ := setup()
	is.NoErr(b.Write(3<<CtlShift|StatusAddr, StatInit|0o11, false))
	is.True(f.reset)
	v, err := b.Read(3<<CtlShift | StatusAddr)
	is.NoErr(err)
	is.Equal(v, uint32(0o11))
}

// Paging RAM maps Unibus addresses.
func TestPagingRAM(t *testing.T) {
	is := is.New(t)
	b, a, _, _ := setup()
	is.NoErr(b.Write(3<<CtlShift|MapAddr+1, MapValid|0o123, false))
	pa, ok := a.MapAddr(0o4000 + 0o10)
	is.True(ok)
	is.Equal(pa, uint32(0o123<<9|2))
	_, ok = a.MapAddr(0)
	is.True(!ok)
}
