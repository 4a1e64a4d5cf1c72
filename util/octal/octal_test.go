/*
 * KS10 - 36 bit word formatting tests
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

package octal

import "testing"

func TestFormat(t *testing.T) {
	w := uint64(0o123456701234)
	if s := Word(w); s != "123456701234" {
		t.Errorf("Word got: %s expected: 123456701234", s)
	}
	if s := Halves(w); s != "123456,,701234" {
		t.Errorf("Halves got: %s expected: 123456,,701234", s)
	}
	if s := Word(1); s != "000000000001" {
		t.Errorf("Word got: %s expected: 000000000001", s)
	}
}

func TestASCII(t *testing.T) {
	w, err := PackASCII("HELLO")
	if err != nil {
		t.Fatal(err)
	}
	if w != 0o442131446236 {
		t.Errorf("PackASCII got: %012o expected: %012o", w, uint64(0o442131446236))
	}
	if s := ASCII(w); s != "HELLO" {
		t.Errorf("ASCII got: %s expected: HELLO", s)
	}
	w, _ = PackASCII("A\r")
	if s := ASCII(w); s != "A...." {
		t.Errorf("ASCII got: %s expected: A....", s)
	}
	if _, err := PackASCII("TOOLONG"); err == nil {
		t.Errorf("PackASCII accepted six characters")
	}
}

func TestSIXBIT(t *testing.T) {
	// "DSK   " in SIXBIT.
	if s := SIXBIT(0o446353000000); s != "DSK   " {
		t.Errorf("SIXBIT got: %q expected: %q", s, "DSK   ")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
		ok   bool
	}{
		{"0", 0, true},
		{"777777777777", 0o777777777777, true},
		{"1,,2", 0o000001000002, true},
		{" 400000,,0 ", 0o400000000000, true},
		{"-1", 0o777777777777, true},
		{"-2", 0o777777777776, true},
		{"1000000000000", 0, false},
		{"8", 0, false},
		{"1,,1000000", 0, false},
		{"", 0, false},
	}
	for _, test := range tests {
		got, err := Parse(test.in)
		if (err == nil) != test.ok {
			t.Errorf("Parse %q error: %v expected ok: %t", test.in, err, test.ok)
			continue
		}
		if got != test.want {
			t.Errorf("Parse %q got: %012o expected: %012o", test.in, got, test.want)
		}
	}
}
