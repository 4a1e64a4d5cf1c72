/*
 * KS10 - Instruction assembler
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

package assemble

import (
	"errors"
	"strings"
	"unicode"

	op "github.com/rcornwell/KS10/emu/opcodemap"
)

const (
	indBit   = 0o20000000 // Indirect bit of instruction
	addrMax  = 0o1000000  // Largest address plus one
	fieldMax = 0o20       // Largest AC or index plus one
)

// Assemble line of the form "NAME AC,@E(X)". Extended instruction
// names produce the second word of an EXTEND.
func Assemble(line string, its bool) (uint64, error) {
	var opName string
	var next byte
	var inst uint64
	opName, line = getName(line) // Get opcode.
	opName = strings.ToUpper(opName)
	if opName == "CONSZ" || opName == "CONSO" {
		var dev string
		dev, line = getDevice(line)
		opName += " " + strings.ToUpper(dev)
	}
	sym, ok := op.Lookup(opName, its)
	switch {
	case ok:
		inst = uint64(sym.Opcode) << 27
	default:
		code, ext := op.LookupExt(opName)
		if !ext {
			return 0, errors.New("undefined opcode " + opName)
		}
		inst = uint64(code) << 27
		sym.FixedAC = true
	}
	if sym.FixedAC {
		inst |= uint64(sym.AC) << 23
	}

	line = skipSpace(line)
	if strings.HasPrefix(line, ",") {
		if !strings.Contains(opName, " ") {
			return 0, errors.New("invalid format for " + opName)
		}
		line = line[1:]
	}
	// AC field is present if a comma comes before the address.
	if comma := strings.IndexByte(line, ','); comma >= 0 && !strings.Contains(opName, " ") {
		if sym.FixedAC {
			return 0, errors.New("invalid format for " + opName)
		}
		var ac int
		ac, line = getOctal(line, fieldMax)
		if ac < 0 {
			return 0, errors.New("register values out of range " + opName)
		}
		next, line = getNext(line)
		if next != ',' {
			return 0, errors.New("invalid format for " + opName)
		}
		inst |= uint64(ac) << 23
	}

	addr, err := getAddr(line)
	if err != "" {
		return 0, errors.New(err + opName)
	}
	return inst | addr, nil
}

// Parse "@E(X)", all parts optional.
func getAddr(line string) (uint64, string) {
	var next byte
	var addr uint64
	line = skipSpace(line)
	if line == "" {
		return 0, ""
	}
	if line[0] == '@' {
		addr |= indBit
		line = line[1:]
	}
	line = skipSpace(line)
	if line != "" && line[0] != '(' {
		var e int
		e, line = getOctal(line, addrMax)
		if e < 0 {
			return 0, "address out of range "
		}
		addr |= uint64(e)
	}
	next, line = getNext(line)
	if next == '(' {
		var x int
		x, line = getOctal(line, fieldMax)
		if x < 0 {
			return 0, "index register out of range for "
		}
		next, line = getNext(line)
		if next != ')' {
			return 0, "invalid format for "
		}
		addr |= uint64(x) << 18
		next, line = getNext(line)
	}
	if next != 0 {
		return 0, "Extra data after instruction "
	}
	if skipSpace(line) != "" {
		return 0, "Extra data after instruction "
	}
	return addr, ""
}

// Skip forward over line until none whitespace character found.
func skipSpace(str string) string {
	for i := range str {
		if !unicode.IsSpace(rune(str[i])) {
			return str[i:]
		}
	}
	return ""
}

// Get next name.
func getName(str string) (string, string) {
	str = skipSpace(str)
	for i := range str {
		if unicode.IsSpace(rune(str[i])) {
			return str[:i], str[i+1:]
		}
	}
	return str, ""
}

// Get device name, ends at comma or space.
func getDevice(str string) (string, string) {
	str = skipSpace(str)
	for i := range str {
		if str[i] == ',' || unicode.IsSpace(rune(str[i])) {
			return str[:i], str[i:]
		}
	}
	return str, ""
}

// Get next non blank character.
func getNext(str string) (byte, string) {
	if str == "" {
		return 0, ""
	}
	for i := range str {
		if !unicode.IsSpace(rune(str[i])) {
			return str[i], str[i+1:]
		}
	}
	return 0, ""
}

// Get octal number.
// Return -1 if too big or not a number.
func getOctal(str string, max int) (int, string) {
	str = skipSpace(str)
	if str == "" {
		return -1, ""
	}
	num := 0
	l := 0
	for _, by := range str {
		if by < '0' || by > '7' {
			break
		}
		num = (num * 8) + int(by-'0')
		l++
		if num >= max {
			return -1, str[l:]
		}
	}
	if l == 0 {
		return -1, str
	}
	return num, str[l:]
}
