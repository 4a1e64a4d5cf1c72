/*
 * KS10 - CPU opcodes for assembly and disassembly
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

package opcodemap

import "fmt"

const (
	// Opcode definitions.
	OpZ      = 0o000 // Always illegal
	OpLUUO   = 0o001 // First local UUO
	OpMUUO   = 0o040 // First monitor UUO
	OpADJSP  = 0o105
	OpDFAD   = 0o110
	OpDFSB   = 0o111
	OpDFMP   = 0o112
	OpDFDV   = 0o113
	OpDADD   = 0o114
	OpDSUB   = 0o115
	OpDMUL   = 0o116
	OpDDIV   = 0o117
	OpDMOVE  = 0o120
	OpDMOVN  = 0o121
	OpFIX    = 0o122
	OpEXTEND = 0o123
	OpDMOVEM = 0o124
	OpDMOVNM = 0o125
	OpFIXR   = 0o126
	OpFLTR   = 0o127
	OpUFA    = 0o130 // Not on KS10
	OpDFN    = 0o131 // Not on KS10
	OpFSC    = 0o132
	OpIBP    = 0o133 // ADJBP with non zero AC
	OpILDB   = 0o134
	OpLDB    = 0o135
	OpIDPB   = 0o136
	OpDPB    = 0o137
	OpFAD    = 0o140 // Floating point groups of 8
	OpFSB    = 0o150
	OpFMP    = 0o160
	OpFDV    = 0o170
	OpMOVE   = 0o200 // Move groups of 4
	OpMOVS   = 0o204
	OpMOVN   = 0o210
	OpMOVM   = 0o214
	OpIMUL   = 0o220
	OpMUL    = 0o224
	OpIDIV   = 0o230
	OpDIV    = 0o234
	OpASH    = 0o240
	OpROT    = 0o241
	OpLSH    = 0o242
	OpJFFO   = 0o243
	OpASHC   = 0o244
	OpROTC   = 0o245
	OpLSHC   = 0o246
	OpEXCH   = 0o250
	OpBLT    = 0o251
	OpAOBJP  = 0o252
	OpAOBJN  = 0o253
	OpJRST   = 0o254
	OpJFCL   = 0o255
	OpXCT    = 0o256
	OpMAP    = 0o257
	OpPUSHJ  = 0o260
	OpPUSH   = 0o261
	OpPOP    = 0o262
	OpPOPJ   = 0o263
	OpJSR    = 0o264
	OpJSP    = 0o265
	OpJSA    = 0o266
	OpJRA    = 0o267
	OpADD    = 0o270
	OpSUB    = 0o274
	OpCAI    = 0o300 // Compare, jump and skip groups of 8
	OpCAM    = 0o310
	OpJUMP   = 0o320
	OpSKIP   = 0o330
	OpAOJ    = 0o340
	OpAOS    = 0o350
	OpSOJ    = 0o360
	OpSOS    = 0o370
	OpSETZ   = 0o400 // Boolean group
	OpHLL    = 0o500 // Half word group
	OpTRN    = 0o600 // Test group
	OpAPR    = 0o700 // APR and PI, AC selects function
	OpPAG    = 0o701 // Pager, AC selects function
	OpTIM    = 0o702 // Timers and process registers, AC selects function
	OpUMOVE  = 0o704 // Previous context move
	OpUMOVEM = 0o705
	OpTIOE   = 0o710 // Unibus I/O
	OpTION   = 0o711
	OpRDIO   = 0o712
	OpWRIO   = 0o713
	OpBSIO   = 0o714
	OpBCIO   = 0o715
	OpBLTBU  = 0o716
	OpBLTUB  = 0o717
	OpTIOEB  = 0o720
	OpTIONB  = 0o721
	OpRDIOB  = 0o722
	OpWRIOB  = 0o723
	OpBSIOB  = 0o724
	OpBCIOB  = 0o725
)

// Names of the extended instructions, indexed by function code.
var extNames = [0o20]string{
	"", "CMPSL", "CMPSE", "CMPSLE", "EDIT", "CMPSGE", "CMPSN", "CMPSG",
	"CVTDBO", "CVTDBT", "CVTBDO", "CVTBDT", "MOVSO", "MOVST", "MOVSLJ", "MOVSRJ",
}

// Monitor calls 040-077.
var muuoNames = [0o40]string{
	"CALL", "INIT", "", "", "", "", "", "CALLI",
	"OPEN", "TTCALL", "", "", "", "RENAME", "IN", "OUT",
	"SETSTS", "STATO", "GETSTS", "STATZ", "INBUF", "OUTBUF", "INPUT", "OUTPUT",
	"CLOSE", "RELEAS", "MTAPE", "UGETF", "USETI", "USETO", "LOOKUP", "ENTER",
}

// Single opcodes 100-137, 240-277 and 704-727.
var singleNames = map[int]string{
	0o100: "UJEN", OpADJSP: "ADJSP",
	OpDFAD: "DFAD", OpDFSB: "DFSB", OpDFMP: "DFMP", OpDFDV: "DFDV",
	OpDADD: "DADD", OpDSUB: "DSUB", OpDMUL: "DMUL", OpDDIV: "DDIV",
	OpDMOVE: "DMOVE", OpDMOVN: "DMOVN", OpFIX: "FIX", OpEXTEND: "EXTEND",
	OpDMOVEM: "DMOVEM", OpDMOVNM: "DMOVNM", OpFIXR: "FIXR", OpFLTR: "FLTR",
	OpUFA: "UFA", OpDFN: "DFN", OpFSC: "FSC", OpIBP: "IBP",
	OpILDB: "ILDB", OpLDB: "LDB", OpIDPB: "IDPB", OpDPB: "DPB",
	OpASH: "ASH", OpROT: "ROT", OpLSH: "LSH", OpJFFO: "JFFO",
	OpASHC: "ASHC", OpROTC: "ROTC", OpLSHC: "LSHC",
	OpEXCH: "EXCH", OpBLT: "BLT", OpAOBJP: "AOBJP", OpAOBJN: "AOBJN",
	OpJRST: "JRST", OpJFCL: "JFCL", OpXCT: "XCT", OpMAP: "MAP",
	OpPUSHJ: "PUSHJ", OpPUSH: "PUSH", OpPOP: "POP", OpPOPJ: "POPJ",
	OpJSR: "JSR", OpJSP: "JSP", OpJSA: "JSA", OpJRA: "JRA",
	OpTIOE: "TIOE", OpTION: "TION", OpRDIO: "RDIO", OpWRIO: "WRIO",
	OpBSIO: "BSIO", OpBCIO: "BCIO", OpBLTBU: "BLTBU", OpBLTUB: "BLTUB",
	OpTIOEB: "TIOEB", OpTIONB: "TIONB", OpRDIOB: "RDIOB", OpWRIOB: "WRIOB",
	OpBSIOB: "BSIOB", OpBCIOB: "BCIOB", OpUMOVE: "UMOVE", OpUMOVEM: "UMOVEM",
}

// ITS replaces the Unibus instructions.
var itsNames = map[int]string{
	OpTIOE: "IORDI", OpTION: "IORDQ", OpRDIO: "IORD", OpWRIO: "IOWR",
	OpBSIO: "IOWRI", OpBCIO: "IOWRQ",
	OpTIOEB: "IORDBI", OpTIONB: "IORDBQ", OpRDIOB: "IORDB", OpWRIOB: "IOWRB",
	OpBSIOB: "IOWRBI", OpBCIOB: "IOWRBQ",
}

// Opcodes whose AC field selects the instruction.
var acNames = map[int][0o20]string{
	OpJRST: {"", "PORTAL", "JRSTF", "", "HALT", "XJRSTF", "XJEN", "XPCW",
		"", "", "JEN", "", "SFM"},
	OpJFCL: {"", "JFOV", "JCRY1", "", "JCRY0", "", "JCRY", "",
		"JOV"},
	OpAPR: {"APRID", "", "", "", "WRAPR", "RDAPR", "CONSZ APR", "CONSO APR",
		"", "", "", "", "WRPI", "RDPI", "CONSZ PI", "CONSO PI"},
	OpPAG: {"", "RDUBR", "CLRPT", "WRUBR", "WREBR", "RDEBR"},
	OpTIM: {"RDSPB", "RDCSB", "RDPUR", "RDCSTM", "RDTIM", "RDINT", "RDHSB", "",
		"WRSPB", "WRCSB", "WRPUR", "WRCSTM", "WRTIM", "WRINT", "WRHSB"},
}

// ITS AC selected names that differ.
var itsACNames = map[int][0o20]string{
	OpTIM: {"SDBR1", "SDBR2", "SDBR3", "SDBR4", "RDTIM", "RDINT", "RDHSB", "",
		"LDBR1", "LDBR2", "LDBR3", "LDBR4", "WRTIM", "WRINT", "WRHSB"},
}

// Base names of the regular instruction groups.
var (
	names [0o1000]string

	fpModes   = [8]string{"", "L", "M", "B", "R", "RI", "RM", "RB"}
	moveModes = [4]string{"", "I", "M", "S"}
	arthModes = [4]string{"", "I", "M", "B"}
	condNames = [8]string{"", "L", "E", "LE", "A", "GE", "N", "G"}
	boolNames = [16]string{"SETZ", "AND", "ANDCA", "SETM", "ANDCM", "SETA", "XOR", "IOR",
		"ANDCB", "EQV", "SETCA", "ORCA", "SETCM", "ORCM", "ORCB", "SETO"}
	halfFill = [4]string{"", "Z", "O", "E"}
	testMod  = [4]string{"N", "Z", "C", "O"}
	testSkip = [4]string{"", "E", "A", "N"}
)

// Symbol to instruction lookup.
type Symbol struct {
	Opcode  int  // Opcode number
	AC      int  // AC field when fixed by name
	FixedAC bool // Name selects the AC field
}

var (
	decSymbols = map[string]Symbol{}
	itsSymbols = map[string]Symbol{}
	extSymbols = map[string]int{}
)

func init() {
	names[OpZ] = "Z"
	for i := 1; i < 0o40; i++ {
		names[i] = fmt.Sprintf("LUUO%02o", i)
	}
	for i, n := range muuoNames {
		names[OpMUUO+i] = n
	}
	for op, n := range singleNames {
		names[op] = n
	}
	for i, base := range []string{"FAD", "FSB", "FMP", "FDV"} {
		for m, s := range fpModes {
			names[OpFAD+i*0o10+m] = base + s
		}
	}
	for i, base := range []string{"MOVE", "MOVS", "MOVN", "MOVM"} {
		for m, s := range moveModes {
			names[OpMOVE+i*4+m] = base + s
		}
	}
	for i, base := range []string{"IMUL", "MUL", "IDIV", "DIV"} {
		for m, s := range arthModes {
			names[OpIMUL+i*4+m] = base + s
		}
	}
	for m, s := range arthModes {
		names[OpADD+m] = "ADD" + s
		names[OpSUB+m] = "SUB" + s
	}
	for i, base := range []string{"CAI", "CAM", "JUMP", "SKIP", "AOJ", "AOS", "SOJ", "SOS"} {
		for c, s := range condNames {
			names[OpCAI+i*0o10+c] = base + s
		}
	}
	for i, base := range boolNames {
		for m, s := range arthModes {
			names[OpSETZ+i*4+m] = base + s
		}
	}
	for i := range 0o20 {
		op := OpHLL + i*4
		dst, other := "L", "R"
		if op&0o40 != 0 {
			dst, other = "R", "L"
		}
		src := dst
		if op&4 != 0 {
			src = other
		}
		for m, s := range moveModes {
			names[op+m] = "H" + src + dst + halfFill[(op>>3)&3] + s
		}
	}
	for i := range 0o100 {
		op := OpTRN + i
		src := "R"
		switch op & 0o11 {
		case 0o01:
			src = "L"
		case 0o10:
			src = "D"
		case 0o11:
			src = "S"
		}
		names[op] = "T" + src + testMod[(op>>4)&3] + testSkip[(op>>1)&3]
	}

	for op, n := range names {
		if n != "" {
			decSymbols[n] = Symbol{Opcode: op}
		}
	}
	for op, tbl := range acNames {
		for ac, n := range tbl {
			if n != "" {
				decSymbols[n] = Symbol{Opcode: op, AC: ac, FixedAC: true}
			}
		}
	}
	for n, s := range decSymbols {
		itsSymbols[n] = s
	}
	for op, n := range itsNames {
		delete(itsSymbols, names[op])
		itsSymbols[n] = Symbol{Opcode: op}
	}
	for op, tbl := range itsACNames {
		for ac, n := range tbl {
			if n != "" {
				delete(itsSymbols, acNames[op][ac])
				itsSymbols[n] = Symbol{Opcode: op, AC: ac, FixedAC: true}
			}
		}
	}
	for code, n := range extNames {
		if n != "" {
			extSymbols[n] = code
		}
	}
}

// Return mnemonic of instruction. The bool is true when the name
// includes the AC field. Undefined instructions return empty name.
func Name(op, ac int, its bool) (string, bool) {
	op &= 0o777
	ac &= 0o17
	if its {
		if tbl, ok := itsACNames[op]; ok && tbl[ac] != "" {
			return tbl[ac], true
		}
		if n, ok := itsNames[op]; ok {
			return n, false
		}
	}
	if tbl, ok := acNames[op]; ok {
		if tbl[ac] != "" {
			return tbl[ac], true
		}
		// Device functions without a name are undefined.
		if op >= OpAPR {
			return "", false
		}
	}
	return names[op], false
}

// Return name of extended instruction function code.
func ExtName(code int) string {
	if code < 0 || code >= len(extNames) {
		return ""
	}
	return extNames[code]
}

// Look up instruction mnemonic.
func Lookup(name string, its bool) (Symbol, bool) {
	if its {
		s, ok := itsSymbols[name]
		return s, ok
	}
	s, ok := decSymbols[name]
	return s, ok
}

// Look up extended instruction mnemonic.
func LookupExt(name string) (int, bool) {
	code, ok := extSymbols[name]
	return code, ok
}
