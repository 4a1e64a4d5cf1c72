/*
 * KS10 - 36 bit word formatting
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

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	wordMask uint64 = 0o777777777777
	halfMask uint64 = 0o777777
)

// Full word as 12 octal digits.
func Word(w uint64) string {
	return fmt.Sprintf("%012o", w&wordMask)
}

// Word as left,,right.
func Halves(w uint64) string {
	return fmt.Sprintf("%06o,,%06o", (w>>18)&halfMask, w&halfMask)
}

// Five 7 bit characters, unprintable shown as '.'.
func ASCII(w uint64) string {
	var b strings.Builder
	for i := range 5 {
		ch := byte((w >> (29 - 7*i)) & 0o177)
		if ch < ' ' || ch == 0o177 {
			ch = '.'
		}
		b.WriteByte(ch)
	}
	return b.String()
}

// Six 6 bit characters.
func SIXBIT(w uint64) string {
	var b strings.Builder
	for i := range 6 {
		b.WriteByte(byte((w>>(30-6*i))&0o77) + ' ')
	}
	return b.String()
}

// Pack up to five characters into a word, left justified.
func PackASCII(s string) (uint64, error) {
	if len(s) > 5 {
		return 0, errors.New("more than five characters: " + s)
	}
	w := uint64(0)
	for i := range 5 {
		ch := uint64(0)
		if i < len(s) {
			if s[i] > 0o177 {
				return 0, fmt.Errorf("not ascii: %q", s[i])
			}
			ch = uint64(s[i])
		}
		w = w<<7 | ch
	}
	return w << 1, nil
}

// Parse an octal word. Accepts "n", "-n" and "left,,right".
func Parse(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if l, r, ok := strings.Cut(s, ",,"); ok {
		left, err := parseHalf(l)
		if err != nil {
			return 0, err
		}
		right, err := parseHalf(r)
		if err != nil {
			return 0, err
		}
		return left<<18 | right, nil
	}
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	v, err := strconv.ParseUint(s, 8, 36)
	if err != nil {
		return 0, fmt.Errorf("invalid octal number: %s", s)
	}
	if neg {
		v = (^v + 1) & wordMask
	}
	return v, nil
}

// Parse an 18 bit octal value.
func parseHalf(s string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 8, 18)
	if err != nil {
		return 0, fmt.Errorf("invalid half word: %s", s)
	}
	return v, nil
}
