/*
 * KS10 - Instruction disassembler
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

package disassemble

import (
	"fmt"
	"strings"

	op "github.com/rcornwell/KS10/emu/opcodemap"
)

const (
	indBit   = 0o20000000 // Indirect bit of instruction
	addrMask = 0o777777   // Address field
)

// Fields of an instruction word.
func fields(word uint64) (int, int, bool, int, uint32) {
	opc := int(word>>27) & 0o777
	ac := int(word>>23) & 0o17
	ind := word&indBit != 0
	x := int(word>>18) & 0o17
	return opc, ac, ind, x, uint32(word & addrMask)
}

// Format effective address part "@E(X)".
func address(ind bool, x int, e uint32) string {
	addr := ""
	if ind {
		addr = "@"
	}
	addr += fmt.Sprintf("%o", e)
	if x != 0 {
		addr += fmt.Sprintf("(%o)", x)
	}
	return addr
}

// Make opcode align.
func pad(name string) string {
	if len(name) >= 7 {
		return name + " "
	}
	return (name + "       ")[:7]
}

// Convert instruction word to "NAME AC,@E(X)".
func Disassemble(word uint64, its bool) string {
	opc, ac, ind, x, e := fields(word)
	name, fixed := op.Name(opc, ac, its)
	if name == "" {
		return undefined(word)
	}
	inst := pad(name)
	switch {
	case strings.Contains(name, " "):
		// Device test forms carry the device name.
		inst = name + ","
	case !fixed && ac != 0:
		inst += fmt.Sprintf("%o,", ac)
	}
	return inst + address(ind, x, e)
}

// Convert second word of EXTEND instruction.
func DisassembleExt(word uint64) string {
	code, _, ind, x, e := fields(word)
	name := op.ExtName(code)
	if name == "" {
		return undefined(word)
	}
	return pad(name) + address(ind, x, e)
}

// Undefined instructions are shown as octal fields.
func undefined(word uint64) string {
	opc, ac, ind, x, e := fields(word)
	return fmt.Sprintf("%03o %o,", opc, ac) + address(ind, x, e)
}
