/*
 * KS10 - ITS page table walk
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

// ITS half word page table entry.
const (
	itsAccess uint64 = 0o600000 // Access class
	itsAge    uint64 = 0o100000 // Age bit
	itsPage   uint64 = 0o000777 // Physical ITS page
	itsNone          = 0        // No access
	itsRead          = 1        // Read only
	itsRWF           = 2        // Read write first
	itsRW            = 3        // Read write
)

// Select descriptor base register for ITS page.
func (p *Pager) itsDBR(page uint32, tbl Table) uint32 {
	high := page&0o200 != 0
	switch {
	case tbl == UserTable && !high:
		return p.dbr[0]
	case tbl == UserTable:
		return p.dbr[1]
	case high:
		return p.dbr[2]
	default:
		return p.dbr[3]
	}
}

// Fill entry from ITS page tables. An ITS page covers two cache slots.
func (p *Pager) fillITS(va uint32, tbl Table, acc Access) (PTE, error) {
	page := va >> 10
	addr := p.itsDBR(page, tbl) + ((page & 0o177) >> 1)
	word, err := p.readTable(addr, tbl, acc)
	if err != nil {
		return 0, err
	}
	odd := page&1 != 0
	pte := half(word, odd)
	class := int((pte & itsAccess) >> 16)
	if class == itsNone || (acc.writing() && class == itsRead) {
		return p.fail(pfBase(va, tbl, acc)|uint64(class)<<PFITSAcc, acc)
	}
	if pte&itsAge != 0 {
		if odd {
			word &^= itsAge
		} else {
			word &^= itsAge << 18
		}
		p.writeTable(addr, word, acc)
	}
	xpte := PTEValid
	if class >= itsRWF {
		xpte |= PTEWrite
	}
	base := PTE(pte&itsPage) << 1
	vpn := page << 1
	p.store(tbl, vpn, xpte|base, acc)
	p.store(tbl, vpn+1, xpte|(base+1), acc)
	if va&PageSize != 0 {
		return xpte | (base + 1), nil
	}
	return xpte | base, nil
}
