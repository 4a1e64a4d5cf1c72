/*
 * KS10 - TOPS-10 page table walk
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

// TOPS-10 half word page table entry.
const (
	t10Access uint64 = 0o400000 // Page accessible
	t10Public uint64 = 0o200000 // Public page
	t10Write  uint64 = 0o100000 // Page writable
	t10Soft   uint64 = 0o040000 // Software bit
	t10Cache  uint64 = 0o020000 // Cacheable
	t10Page   uint64 = 0o003777 // Physical page
)

// Locate page table word for vpn.
func (p *Pager) t10Addr(vpn uint32, tbl Table) uint32 {
	switch {
	case tbl == UserTable:
		return p.UPT() + (vpn >> 1)
	case vpn < 0o340:
		return p.EPT() + 0o600 + (vpn >> 1)
	case vpn < 0o400:
		return p.UPT() + 0o400 + ((vpn - 0o340) >> 1)
	default:
		return p.EPT() + 0o200 + ((vpn - 0o400) >> 1)
	}
}

// Fill entry from TOPS-10 page tables.
func (p *Pager) fillT10(va uint32, tbl Table, acc Access) (PTE, error) {
	vpn := va >> 9
	word, err := p.readTable(p.t10Addr(vpn, tbl), tbl, acc)
	if err != nil {
		return 0, err
	}
	pte := half(word, vpn&1 != 0)
	writable := pte&t10Write != 0
	if pte&t10Access == 0 || (acc.writing() && !writable) {
		pfw := pfBase(va, tbl, acc)
		if pte&t10Access != 0 {
			pfw |= PFAccess
			if writable {
				pfw |= PFWritable
			}
			if pte&t10Soft != 0 {
				pfw |= PFSoft
			}
		}
		return p.fail(pfw, acc)
	}
	xpte := PTEValid | PTE(pte&t10Page)
	if writable {
		xpte |= PTEWrite
	}
	p.store(tbl, vpn, xpte, acc)
	return xpte, nil
}
