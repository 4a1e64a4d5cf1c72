/*
 * KS10 - Pager, virtual to physical translation
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
	"errors"

	"github.com/rcornwell/KS10/emu/memory"
	"github.com/rcornwell/KS10/util/debug"
)

const (
	// Debug options.
	debugFail = 1 << iota
	debugFill
)

var debugOption = map[string]int{
	"FAIL": debugFail,
	"FILL": debugFill,
}

var debugMsk int

// Enable debug options.
func Debug(opt string) error {
	flag, ok := debugOption[opt]
	if !ok {
		return errors.New("PAGER debug option invalid: " + opt)
	}
	debugMsk |= flag
	return nil
}

// Access type of a translation.
type Access int

const (
	Read    Access = iota // Normal read
	Write                 // Write or read with intent to write
	Map                   // MAP instruction, no trap
	Console               // Console examine, no side effects
	Probe                 // Write check, no side effects
)

// Access intends to write.
func (a Access) writing() bool {
	return a == Write || a == Probe
}

// Access must not change pager state.
func (a Access) quiet() bool {
	return a == Console || a == Probe
}

// Table selects the executive or user page table.
type Table int

const (
	ExecTable Table = iota
	UserTable
)

// Discipline of page table walk.
type Discipline int

const (
	TOPS10 Discipline = iota
	TOPS20
	ITS
)

var (
	ErrPageFail  = errors.New("page fail")
	ErrInterrupt = errors.New("interrupt pending")
	ErrIndirect  = errors.New("nested indirect limit exceeded")
	ErrNXM       = errors.New("non-existent memory")
)

// PTE is the expanded page table entry. Zero is invalid, negative is writable.
type PTE int32

const (
	PTEWrite PTE = -1 << 31 // Page is writable
	PTEValid PTE = 1 << 30  // Entry is valid
	PTEPage  PTE = 0o3777   // Physical page number
)

// Writable reports if the entry allows writes.
func (p PTE) Writable() bool {
	return p < 0
}

// Page returns the physical page number.
func (p PTE) Page() uint32 {
	return uint32(p & PTEPage)
}

const (
	RMASK    uint64 = 0o777777
	PageSize uint32 = 0o1000 // Words per page
	PageMask uint32 = 0o777  // Offset in page
	Pages    int    = 512    // Pages in 18 bit address space

	// EBR bits.
	EBRT20  uint32 = 0o20000 // TOPS-20 paging
	EBRPgOn uint32 = 0o10000 // Paging enabled
	EBRPage uint32 = 0o03777 // Page number of EPT

	// Page fail word bits.
	PFUser     uint64 = 0o400000000000 // User mode reference
	PFHard     uint64 = 0o200000000000 // Hard failure
	PFAccess   uint64 = 0o100000000000 // Page accessible
	PFWritable uint64 = 0o040000000000 // Page writable
	PFSoft     uint64 = 0o020000000000 // Software bit
	PFWriteRef uint64 = 0o010000000000 // Write reference
	PFPaged    uint64 = 0o004000000000 // Paged reference
	PFIO       uint64 = 0o001000000000 // I/O reference
	PFNXM      uint64 = 0o360000000000 // Non-existent memory code
	PFITSAcc   int    = 28             // ITS access class position
)

// Cached TOPS-20 section pointer result.
type section struct {
	valid    bool
	page     uint32
	writable bool
}

// Pager holds the page tables and base registers.
type Pager struct {
	mem  *memory.Memory
	its  bool
	ebr  uint32    // Executive base register
	ubr  uint32    // User base page number
	spb  uint32    // Shared pointer table base
	csb  uint32    // Core status table base
	cstm uint64    // Core status table mask
	pur  uint64    // Process use register
	dbr  [4]uint32 // ITS descriptor base registers

	exec [Pages]PTE // Executive expanded page table
	user [Pages]PTE // User expanded page table
	phys [Pages]PTE // Identity map when paging is off
	sect [2]section

	Fault      uint64      // Last page fail word
	EventCheck func() bool // Returns true if interrupt pending
	IndLimit   int         // Limit on indirect pointers, 0 no limit
}

// Create a pager over memory.
func New(mem *memory.Memory) *Pager {
	p := &Pager{mem: mem}
	for i := range p.phys {
		p.phys[i] = PTEWrite | PTEValid | PTE(i)
	}
	return p
}

// Reset pager registers and tables.
func (p *Pager) Reset() {
	p.ebr = 0
	p.ubr = 0
	p.spb = 0
	p.csb = 0
	p.cstm = 0
	p.pur = 0
	p.dbr = [4]uint32{}
	p.Fault = 0
	p.InvalidateAll()
}

// Select ITS microcode.
func (p *Pager) SetITS(its bool) {
	p.its = its
	p.InvalidateAll()
}

// Return current paging discipline.
func (p *Pager) Discipline() Discipline {
	switch {
	case p.its:
		return ITS
	case p.ebr&EBRT20 != 0:
		return TOPS20
	default:
		return TOPS10
	}
}

// Return true if paging is enabled.
func (p *Pager) Enabled() bool {
	return p.ebr&EBRPgOn != 0
}

func (p *Pager) EBR() uint32 {
	return p.ebr
}

// Load EBR, all translations are discarded.
func (p *Pager) SetEBR(ebr uint32) {
	p.ebr = ebr & (EBRT20 | EBRPgOn | EBRPage)
	p.InvalidateAll()
}

// Return EPT physical address.
func (p *Pager) EPT() uint32 {
	return (p.ebr & EBRPage) << 9
}

func (p *Pager) UBR() uint32 {
	return p.ubr
}

// Load user base page, all translations are discarded.
func (p *Pager) SetUBR(page uint32) {
	p.ubr = page & EBRPage
	p.InvalidateAll()
}

// Return UPT physical address.
func (p *Pager) UPT() uint32 {
	return p.ubr << 9
}

func (p *Pager) SPB() uint32            { return p.spb }
func (p *Pager) SetSPB(v uint32)        { p.spb = v; p.InvalidateAll() }
func (p *Pager) CSB() uint32            { return p.csb }
func (p *Pager) SetCSB(v uint32)        { p.csb = v; p.InvalidateAll() }
func (p *Pager) CSTM() uint64           { return p.cstm }
func (p *Pager) SetCSTM(v uint64)       { p.cstm = v }
func (p *Pager) PUR() uint64            { return p.pur }
func (p *Pager) SetPUR(v uint64)        { p.pur = v }
func (p *Pager) DBR(n int) uint32       { return p.dbr[n&3] }
func (p *Pager) SetDBR(n int, v uint32) { p.dbr[n&3] = v; p.InvalidateAll() }

// Drop one page from both tables.
func (p *Pager) Invalidate(page uint32) {
	page &= uint32(Pages - 1)
	p.exec[page] = 0
	p.user[page] = 0
}

// Drop all translations.
func (p *Pager) InvalidateAll() {
	p.exec = [Pages]PTE{}
	p.user = [Pages]PTE{}
	p.sect = [2]section{}
}

// Return cached entry for page, used by console and tests.
func (p *Pager) Entry(tbl Table, page uint32) PTE {
	return p.table(tbl)[page&uint32(Pages-1)]
}

// Return the table in use for tbl.
func (p *Pager) table(tbl Table) *[Pages]PTE {
	if !p.Enabled() {
		return &p.phys
	}
	if tbl == UserTable {
		return &p.user
	}
	return &p.exec
}

// Translate virtual address into expanded page table entry.
func (p *Pager) Translate(va uint32, tbl Table, acc Access) (PTE, error) {
	va &= uint32(RMASK)
	t := p.table(tbl)
	pte := t[va>>9]
	if pte != 0 && (!acc.writing() || pte.Writable()) {
		return pte, nil
	}
	if !p.Enabled() {
		return pte, nil
	}
	switch p.Discipline() {
	case ITS:
		return p.fillITS(va, tbl, acc)
	case TOPS20:
		return p.fillT20(va, tbl, acc)
	default:
		return p.fillT10(va, tbl, acc)
	}
}

// Translate virtual address to physical address.
func (p *Pager) Map(va uint32, tbl Table, acc Access) (uint32, error) {
	pte, err := p.Translate(va, tbl, acc)
	if err != nil {
		return 0, err
	}
	return pte.Page()<<9 | (va & PageMask), nil
}

// Compute result of MAP instruction.
func (p *Pager) MapWord(va uint32, tbl Table) uint64 {
	va &= uint32(RMASK)
	var val uint64
	if tbl == UserTable {
		val = PFUser
	}
	if !p.Enabled() {
		return val | PFAccess | PFWritable | uint64(va)
	}
	pte, err := p.Translate(va, tbl, Map)
	if err != nil {
		return p.Fault
	}
	val |= PFAccess | PFPaged | uint64(pte.Page())<<9 | uint64(va&PageMask)
	if pte.Writable() {
		val |= PFWritable
	}
	return val
}

// Read physical memory bypassing translation.
func (p *Pager) ReadPhys(pa uint32) (uint64, bool) {
	return p.mem.GetWord(pa)
}

// Write physical memory bypassing translation.
func (p *Pager) WritePhys(pa uint32, data uint64) bool {
	return p.mem.PutWord(pa, data)
}

// Base page fail word for reference.
func pfBase(va uint32, tbl Table, acc Access) uint64 {
	pfw := PFPaged | uint64(va)
	if tbl == UserTable {
		pfw |= PFUser
	}
	if acc.writing() {
		pfw |= PFWriteRef
	}
	return pfw
}

// Record page fail and return error.
func (p *Pager) fail(pfw uint64, acc Access) (PTE, error) {
	if !acc.quiet() {
		debug.Debugf("PAGER", debugMsk, debugFail, "Fail %012o", pfw)
		p.Fault = pfw
	}
	return 0, ErrPageFail
}

// Read page table word, report NXM as a hard fault.
func (p *Pager) readTable(pa uint32, tbl Table, acc Access) (uint64, error) {
	data, nxm := p.mem.GetWord(pa)
	if nxm {
		if !acc.quiet() {
			p.Fault = PFNXM | uint64(pa)
			if tbl == UserTable {
				p.Fault |= PFUser
			}
		}
		return 0, ErrNXM
	}
	return data, nil
}

// Write back page table word.
func (p *Pager) writeTable(pa uint32, data uint64, acc Access) {
	if !acc.quiet() {
		p.mem.PutWord(pa, data)
	}
}

// Save expanded entry unless console access.
func (p *Pager) store(tbl Table, page uint32, pte PTE, acc Access) {
	if !acc.quiet() {
		debug.Debugf("PAGER", debugMsk, debugFill, "Fill %d page %03o PTE %o", tbl, page, pte)
		p.table(tbl)[page&uint32(Pages-1)] = pte
	}
}

// Extract even/odd half of page table word.
func half(word uint64, odd bool) uint64 {
	if odd {
		return word & RMASK
	}
	return (word >> 18) & RMASK
}
