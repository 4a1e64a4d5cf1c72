/*
 * KS10 - Pager tests
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

package pager

import (
	"testing"

	"github.com/matryer/is"
	"github.com/rcornwell/KS10/emu/memory"
)

const (
	eptPage uint32 = 0o10
	uptPage uint32 = 0o11
)

func setup(ebr uint32) (*Pager, *memory.Memory) {
	mem := memory.New(256)
	p := New(mem)
	p.SetEBR(ebr | eptPage)
	p.SetUBR(uptPage)
	return p, mem
}

// Paging off is an identity map.
func TestPagingOff(t *testing.T) {
	is := is.New(t)
	p, _ := setup(0)
	pa, err := p.Map(0o123456, UserTable, Write)
	is.NoErr(err)
	is.Equal(pa, uint32(0o123456))
}

// TOPS-10 entry round trip.
func TestT10RoundTrip(t *testing.T) {
	is := is.New(t)
	p, mem := setup(EBRPgOn)
	// User page 100 is left half of UPT word 40.
	mem.SetMemory(uptPage<<9+0o40, (t10Access|t10Write|0o200)<<18)
	pa, err := p.Map(0o100123, UserTable, Read)
	is.NoErr(err)
	is.Equal(pa, uint32(0o200123))
	is.True(p.Entry(UserTable, 0o100).Writable())

	// Exec page 401 is right half of EPT word 200.
	mem.SetMemory(eptPage<<9+0o200, t10Access|0o321)
	pte, err := p.Translate(0o401000, ExecTable, Read)
	is.NoErr(err)
	is.Equal(pte.Page(), uint32(0o321))

	// Exec page 341 comes from UPT word 400.
	mem.SetMemory(uptPage<<9+0o400, t10Access|0o45)
	pte, err = p.Translate(0o341777, ExecTable, Read)
	is.NoErr(err)
	is.Equal(pte.Page(), uint32(0o45))

	// Exec page 2 comes from EPT word 601.
	mem.SetMemory(eptPage<<9+0o601, (t10Access|0o77)<<18)
	pte, err = p.Translate(0o2000, ExecTable, Read)
	is.NoErr(err)
	is.Equal(pte.Page(), uint32(0o77))
}

// Write protected TOPS-10 page faults only on write.
func TestT10WriteProtect(t *testing.T) {
	is := is.New(t)
	p, mem := setup(EBRPgOn)
	mem.SetMemory(uptPage<<9+0o40, (t10Access|0o200)<<18)
	_, err := p.Translate(0o100000, UserTable, Read)
	is.NoErr(err)
	_, err = p.Translate(0o100005, UserTable, Write)
	is.Equal(err, ErrPageFail)
	want := PFUser | PFWriteRef | PFPaged | PFAccess | 0o100005
	if p.Fault != want {
		t.Errorf("Page fail word not correct got: %012o expected: %012o", p.Fault, want)
	}
	// Grant write and retry.
	mem.SetMemory(uptPage<<9+0o40, (t10Access|t10Write|0o200)<<18)
	pte, err := p.Translate(0o100005, UserTable, Write)
	is.NoErr(err)
	is.True(pte.Writable())
	is.True(p.Entry(UserTable, 0o100).Writable())
}

// Inaccessible page faults on read.
func TestT10NoAccess(t *testing.T) {
	is := is.New(t)
	p, _ := setup(EBRPgOn)
	_, err := p.Translate(0o400000, ExecTable, Read)
	is.Equal(err, ErrPageFail)
	is.Equal(p.Fault, PFPaged|0o400000)
}

// Console lookups never change state.
func TestConsoleNoSideEffects(t *testing.T) {
	is := is.New(t)
	p, mem := setup(EBRPgOn)
	mem.SetMemory(uptPage<<9+0o40, (t10Access|t10Write|0o200)<<18)
	p.Fault = 0o1234
	pte, err := p.Translate(0o100000, UserTable, Console)
	is.NoErr(err)
	is.Equal(pte.Page(), uint32(0o200))
	is.Equal(p.Entry(UserTable, 0o100), PTE(0))
	_, err = p.Translate(0o200000, UserTable, Console)
	is.Equal(err, ErrPageFail)
	is.Equal(p.Fault, uint64(0o1234))
}

// Invalidate drops cached entries.
func TestInvalidate(t *testing.T) {
	is := is.New(t)
	p, mem := setup(EBRPgOn)
	mem.SetMemory(uptPage<<9+0o40, (t10Access|0o200)<<18)
	_, err := p.Translate(0o100000, UserTable, Read)
	is.NoErr(err)
	is.True(p.Entry(UserTable, 0o100) != 0)
	p.Invalidate(0o100)
	is.Equal(p.Entry(UserTable, 0o100), PTE(0))
	mem.SetMemory(uptPage<<9+0o40, (t10Access|0o300)<<18)
	pte, err := p.Translate(0o100000, UserTable, Read)
	is.NoErr(err)
	is.Equal(pte.Page(), uint32(0o300))
}

// Page table in non-existent memory.
func TestT10NXM(t *testing.T) {
	is := is.New(t)
	mem := memory.New(4)
	p := New(mem)
	p.SetEBR(EBRPgOn | 0o100)
	_, err := p.Translate(0o1000, ExecTable, Read)
	is.Equal(err, ErrNXM)
	is.Equal(p.Fault&PFNXM, PFNXM)
}

func immediate(page uint32) uint64 {
	return uint64(t20Immediate)<<t20Type | t20Write | uint64(page)
}

// TOPS-20 immediate pointers without a CST.
func TestT20RoundTrip(t *testing.T) {
	is := is.New(t)
	p, mem := setup(EBRPgOn | EBRT20)
	mem.SetMemory(uptPage<<9+t20SectOff, immediate(0o20))
	mem.SetMemory(0o20000+0o100, immediate(0o300))
	pa, err := p.Map(0o100017, UserTable, Read)
	is.NoErr(err)
	is.Equal(pa, uint32(0o300017))
	is.True(p.Entry(UserTable, 0o100).Writable())

	// Write protected page.
	mem.SetMemory(0o20000+0o101, immediate(0o301)&^t20Write)
	_, err = p.Translate(0o101000, UserTable, Read)
	is.NoErr(err)
	_, err = p.Translate(0o101000, UserTable, Write)
	is.Equal(err, ErrPageFail)
	is.Equal(p.Fault, PFUser|PFWriteRef|PFPaged|PFAccess|0o101000)
}

// Shared and indirect pointers through the SPT.
func TestT20SharedIndirect(t *testing.T) {
	is := is.New(t)
	p, mem := setup(EBRPgOn | EBRT20)
	p.SetSPB(0o30000)
	mem.SetMemory(eptPage<<9+t20SectOff, uint64(t20Shared)<<t20Type|t20Write|5)
	mem.SetMemory(0o30000+5, 0o21) // Page table at page 21
	// Page 3 indirect through SPT 6, index 7 of page 22.
	mem.SetMemory(0o21000+3, uint64(t20Indirect)<<t20Type|t20Write|7<<18|6)
	mem.SetMemory(0o30000+6, 0o22)
	mem.SetMemory(0o22000+7, immediate(0o333))
	pte, err := p.Translate(0o3000, ExecTable, Write)
	is.NoErr(err)
	is.Equal(pte.Page(), uint32(0o333))

	// Limit indirect chain to zero levels.
	p.InvalidateAll()
	p.IndLimit = 1
	mem.SetMemory(0o22000+7, uint64(t20Indirect)<<t20Type|t20Write|7<<18|6)
	_, err = p.Translate(0o3000, ExecTable, Read)
	is.Equal(err, ErrIndirect)

	// Pending interrupt stops long chains.
	p.IndLimit = 0
	p.EventCheck = func() bool { return true }
	_, err = p.Translate(0o3000, ExecTable, Read)
	is.Equal(err, ErrInterrupt)
}

// Console translation never polls for interrupts.
func TestT20ConsoleIndirect(t *testing.T) {
	is := is.New(t)
	p, mem := setup(EBRPgOn | EBRT20)
	p.SetSPB(0o30000)
	mem.SetMemory(eptPage<<9+t20SectOff, uint64(t20Shared)<<t20Type|t20Write|5)
	mem.SetMemory(0o30000+5, 0o21)
	// Page 3 indirect through SPT 6 then SPT 10.
	mem.SetMemory(0o21000+3, uint64(t20Indirect)<<t20Type|t20Write|7<<18|6)
	mem.SetMemory(0o30000+6, 0o22)
	mem.SetMemory(0o22000+7, uint64(t20Indirect)<<t20Type|t20Write|2<<18|0o10)
	mem.SetMemory(0o30000+0o10, 0o23)
	mem.SetMemory(0o23000+2, immediate(0o333))
	calls := 0
	p.EventCheck = func() bool {
		calls++
		return true
	}
	pa, err := p.Map(0o3000, ExecTable, Console)
	is.NoErr(err)
	is.Equal(pa, uint32(0o333000))
	is.Equal(calls, 0)

	p.InvalidateAll()
	_, err = p.Map(0o3000, ExecTable, Read)
	is.Equal(err, ErrInterrupt)
	is.Equal(calls, 1)
}

// Core status table ageing and modified bit.
func TestT20CST(t *testing.T) {
	is := is.New(t)
	p, mem := setup(EBRPgOn | EBRT20)
	p.SetCSB(0o40000)
	p.SetCSTM(0o777777777777)
	p.SetPUR(0o10)
	mem.SetMemory(uptPage<<9+t20SectOff, immediate(0o20))
	mem.SetMemory(0o20000+0o100, immediate(0o300))
	mem.SetMemory(0o40000+0o20, 0o100000000000)
	mem.SetMemory(0o40000+0o300, 0o100000000000)

	// Read leaves page read only until modified.
	pte, err := p.Translate(0o100000, UserTable, Read)
	is.NoErr(err)
	is.True(!pte.Writable())
	is.Equal(mem.GetMemory(0o40000+0o300), uint64(0o100000000010))

	// Write sets modified bit.
	pte, err = p.Translate(0o100000, UserTable, Write)
	is.NoErr(err)
	is.True(pte.Writable())
	is.Equal(mem.GetMemory(0o40000+0o300), uint64(0o100000000011))

	// Age of zero faults.
	mem.SetMemory(0o20000+0o101, immediate(0o301))
	mem.SetMemory(0o40000+0o301, 0)
	_, err = p.Translate(0o101000, UserTable, Read)
	is.Equal(err, ErrPageFail)
}

// One ITS entry fills two cache slots.
func TestITSTwoSlots(t *testing.T) {
	is := is.New(t)
	p, mem := setup(EBRPgOn)
	p.SetITS(true)
	p.SetDBR(0, 0o30000)
	// ITS page 5 is right half of word 2.
	mem.SetMemory(0o30000+2, uint64(itsRW)<<16|itsAge|0o123)
	pte, err := p.Translate(0o12000, UserTable, Write)
	is.NoErr(err)
	is.Equal(pte.Page(), uint32(0o246))
	is.Equal(p.Entry(UserTable, 0o12), PTEWrite|PTEValid|0o246)
	is.Equal(p.Entry(UserTable, 0o13), PTEWrite|PTEValid|0o247)
	is.Equal(mem.GetMemory(0o30000+2), uint64(itsRW)<<16|0o123)

	// Read only page from the high half.
	p.SetDBR(1, 0o31000)
	mem.SetMemory(0o31000, uint64(itsRead)<<34|0o44<<18)
	pte, err = p.Translate(0o401000, UserTable, Read)
	is.NoErr(err)
	is.Equal(pte.Page(), uint32(0o111))
	_, err = p.Translate(0o400000, UserTable, Write)
	is.Equal(err, ErrPageFail)
	is.Equal(p.Fault, PFUser|PFWriteRef|PFPaged|uint64(itsRead)<<PFITSAcc|0o400000)
}

// MAP instruction result.
func TestMapWord(t *testing.T) {
	p, mem := setup(EBRPgOn)
	mem.SetMemory(uptPage<<9+0o40, (t10Access|t10Write|0o200)<<18)
	got := p.MapWord(0o100123, UserTable)
	want := PFUser | PFAccess | PFWritable | PFPaged | 0o200123
	if got != want {
		t.Errorf("MAP not correct got: %012o expected: %012o", got, want)
	}
	got = p.MapWord(0o200000, UserTable)
	want = PFUser | PFPaged | 0o200000
	if got != want {
		t.Errorf("MAP fail not correct got: %012o expected: %012o", got, want)
	}
}
