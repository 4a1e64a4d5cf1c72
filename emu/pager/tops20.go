/*
 * KS10 - TOPS-20 page table walk
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

// TOPS-20 pointer fields.
const (
	t20Type    uint64 = 33             // Pointer type position
	t20Write   uint64 = 0o020000000000 // Writable
	t20Public  uint64 = 0o040000000000 // Public
	t20Cache   uint64 = 0o004000000000 // Cacheable
	t20Medium  uint64 = 0o000077000000 // Storage medium, zero is in core
	t20Index   uint64 = 0o000777000000 // Indirect page index
	t20Page    uint64 = 0o000000003777 // Page number
	t20SectOff uint32 = 0o540          // Section pointer offset in EPT/UPT
	cstAge     uint64 = 0o770000000000 // Age field of CST entry
	cstModify  uint64 = 0o000000000001 // Page modified
)

// Pointer types.
const (
	t20NoAccess = iota
	t20Immediate
	t20Shared
	t20Indirect
)

// Check medium of a pointer or SPT entry.
func inCore(word uint64) bool {
	return word&t20Medium == 0
}

// Update core status table for page, returns modified state.
func (p *Pager) t20CST(page uint32, write bool, tbl Table, acc Access, pfw uint64) (bool, error) {
	if p.csb == 0 {
		return true, nil
	}
	addr := p.csb + page
	cst, err := p.readTable(addr, tbl, acc)
	if err != nil {
		return false, err
	}
	if cst&cstAge == 0 {
		_, err = p.fail(pfw, acc)
		return false, err
	}
	cst = (cst & p.cstm) | p.pur
	if write {
		cst |= cstModify
	}
	p.writeTable(addr, cst, acc)
	return cst&cstModify != 0, nil
}

// Resolve a section or page pointer to a physical page.
func (p *Pager) t20Pointer(ptr uint64, tbl Table, acc Access, pfw uint64) (uint32, bool, error) {
	writable := true
	for depth := 0; ; depth++ {
		writable = writable && ptr&t20Write != 0
		switch int(ptr>>t20Type) & 7 {
		case t20Immediate:
			if !inCore(ptr) {
				_, err := p.fail(pfw, acc)
				return 0, false, err
			}
			return uint32(ptr & t20Page), writable, nil

		case t20Shared:
			spt, err := p.readTable(p.spb+uint32(ptr&RMASK), tbl, acc)
			if err != nil {
				return 0, false, err
			}
			if !inCore(spt) {
				_, err := p.fail(pfw, acc)
				return 0, false, err
			}
			return uint32(spt & t20Page), writable, nil

		case t20Indirect:
			if p.IndLimit != 0 && depth >= p.IndLimit {
				return 0, false, ErrIndirect
			}
			if depth > 0 && !acc.quiet() && p.EventCheck != nil && p.EventCheck() {
				return 0, false, ErrInterrupt
			}
			spt, err := p.readTable(p.spb+uint32(ptr&RMASK), tbl, acc)
			if err != nil {
				return 0, false, err
			}
			if !inCore(spt) {
				_, err := p.fail(pfw, acc)
				return 0, false, err
			}
			page := uint32(spt & t20Page)
			if _, err := p.t20CST(page, false, tbl, acc, pfw); err != nil {
				return 0, false, err
			}
			idx := uint32((ptr & t20Index) >> 18)
			ptr, err = p.readTable(page<<9|idx, tbl, acc)
			if err != nil {
				return 0, false, err
			}

		default:
			_, err := p.fail(pfw, acc)
			return 0, false, err
		}
	}
}

// Fill entry from TOPS-20 page tables.
func (p *Pager) fillT20(va uint32, tbl Table, acc Access) (PTE, error) {
	vpn := va >> 9
	pfw := pfBase(va, tbl, acc)

	// Section pointer, only section zero exists.
	sect := p.sect[tbl]
	if !sect.valid {
		base := p.EPT()
		if tbl == UserTable {
			base = p.UPT()
		}
		ptr, err := p.readTable(base+t20SectOff, tbl, acc)
		if err != nil {
			return 0, err
		}
		page, writable, err := p.t20Pointer(ptr, tbl, acc, pfw)
		if err != nil {
			return 0, err
		}
		sect = section{valid: true, page: page, writable: writable}
		if !acc.quiet() {
			p.sect[tbl] = sect
		}
	}

	// Page table page.
	if _, err := p.t20CST(sect.page, false, tbl, acc, pfw); err != nil {
		return 0, err
	}
	ptr, err := p.readTable(sect.page<<9|(vpn&PageMask), tbl, acc)
	if err != nil {
		return 0, err
	}
	page, writable, err := p.t20Pointer(ptr, tbl, acc, pfw)
	if err != nil {
		return 0, err
	}
	writable = writable && sect.writable
	if acc.writing() && !writable {
		return p.fail(pfw|PFAccess, acc)
	}

	// Data page.
	modified, err := p.t20CST(page, acc.writing(), tbl, acc, pfw)
	if err != nil {
		return 0, err
	}
	xpte := PTEValid | PTE(page)
	if writable && modified {
		xpte |= PTEWrite
	}
	p.store(tbl, vpn, xpte, acc)
	return xpte, nil
}
