/*
 * KS10 - Priority interrupt tests
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

package pi

import (
	"testing"

	"github.com/matryer/is"
)

// Reference level chooser.
func lowestSet(mask uint8) int {
	for lvl := 1; lvl <= 7; lvl++ {
		if mask&LevelBit(lvl) != 0 {
			return lvl
		}
	}
	return 0
}

// Every combination of enabled levels, requests and one active level.
func TestPriorityOrder(t *testing.T) {
	p := New()
	for enabled := range 128 {
		for req := range 128 {
			for act := 0; act <= 7; act++ {
				p.Reset()
				p.Write(SysOn | LevelOn | uint32(enabled))
				p.active = LevelBit(act)
				p.Write(ReqSet | uint32(req))
				want := lowestSet(uint8(enabled & req))
				if act != 0 && act <= want {
					want = 0
				}
				if got := p.Pending(); got != want {
					t.Fatalf("Pending not correct en: %03o req: %03o act: %d got: %d expected: %d",
						enabled, req, act, got, want)
				}
			}
		}
	}
}

// No interrupt while PI system is off.
func TestSystemOff(t *testing.T) {
	is := is.New(t)
	p := New()
	p.Write(LevelOn | 0o177)
	p.SetIO(LevelBit(2))
	is.Equal(p.Pending(), 0)
	p.Write(SysOn)
	is.Equal(p.Pending(), 2)
	p.Write(SysOff)
	is.Equal(p.Pending(), 0)
}

// Level 3 and 5 requested, dismiss 3 and get 5.
func TestDismissSequence(t *testing.T) {
	is := is.New(t)
	p := New()
	lvls := uint32(LevelBit(3) | LevelBit(5))
	p.Write(SysOn | LevelOn | lvls)
	p.Write(ReqSet | lvls)
	is.Equal(p.Evaluate(), 3)
	p.Activate(3)
	is.Equal(p.Pending(), 0) // 3 in progress blocks 3 and 5
	p.Write(DropReq | uint32(LevelBit(3)))
	is.Equal(p.Pending(), 0) // 5 is lower priority than active 3
	p.Dismiss()
	is.Equal(p.Evaluate(), 5)
}

// Program requests on a disabled level do not interrupt.
func TestProgramRequestMasked(t *testing.T) {
	is := is.New(t)
	p := New()
	p.Write(SysOn | LevelOn | uint32(LevelBit(4)))
	p.Write(ReqSet | uint32(LevelBit(2)))
	is.Equal(p.Pending(), 0)
	p.Write(LevelOn | uint32(LevelBit(2)))
	is.Equal(p.Pending(), 2)
}

// A higher level can interrupt a lower active one.
func TestPreempt(t *testing.T) {
	is := is.New(t)
	p := New()
	p.Write(SysOn | LevelOn | 0o177)
	p.SetIO(LevelBit(6))
	is.Equal(p.Pending(), 6)
	p.Activate(6)
	is.Equal(p.Pending(), 0)
	p.SetAPR(LevelBit(1))
	is.Equal(p.Pending(), 1)
	p.Activate(1)
	p.SetAPR(0)
	p.Dismiss() // Dismiss 1, 6 still active
	is.Equal(p.Pending(), 0)
	_, active, _ := p.Masks()
	is.Equal(active, LevelBit(6))
}

// RDPI returns the state set by WRPI.
func TestReadPI(t *testing.T) {
	p := New()
	p.Write(SysOn | LevelOn | 0o014)
	p.Write(ReqSet | 0o004)
	p.Activate(5)
	want := uint64(0o004)<<18 | uint64(LevelBit(5))<<8 | uint64(SysOn) | 0o014
	if got := p.Read(); got != want {
		t.Errorf("RDPI not correct got: %012o expected: %012o", got, want)
	}
	p.Write(Clear)
	if got := p.Read(); got != 0 {
		t.Errorf("RDPI after clear got: %012o expected: 0", got)
	}
}
