/*
 * KS10 - CPU dispatch table
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

package cpu

// Build dispatch table, indexed by opcode.
func (c *CPU) createTable() {
	c.table = [512]func(*stepInfo){
		c.opUUO, c.opLUUO, c.opLUUO, c.opLUUO, c.opLUUO, c.opLUUO, c.opLUUO, c.opLUUO, // 000
		c.opLUUO, c.opLUUO, c.opLUUO, c.opLUUO, c.opLUUO, c.opLUUO, c.opLUUO, c.opLUUO, // 010
		c.opLUUO, c.opLUUO, c.opLUUO, c.opLUUO, c.opLUUO, c.opLUUO, c.opLUUO, c.opLUUO, // 020
		c.opLUUO, c.opLUUO, c.opLUUO, c.opLUUO, c.opLUUO, c.opLUUO, c.opLUUO, c.opLUUO, // 030
		c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, // 040
		c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, // 050
		c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, // 060
		c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, // 070
		c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opADJSP, c.opMUUO, c.opMUUO, // 100
		c.opDFloat, c.opDFloat, c.opDFloat, c.opDFloat, c.opDADD, c.opDSUB, c.opDMUL, c.opDDIV, // 110
		c.opDMOVE, c.opDMOVN, c.opFIX, c.opEXTEND, c.opDMOVEM, c.opDMOVNM, c.opFIX, c.opFLTR, // 120
		c.opMUUO, c.opMUUO, c.opFSC, c.opIBP, c.opILDB, c.opLDB, c.opIDPB, c.opDPB, // 130
		c.opFloat, c.opFloat, c.opFloat, c.opFloat, c.opFloat, c.opFloat, c.opFloat, c.opFloat, // 140
		c.opFloat, c.opFloat, c.opFloat, c.opFloat, c.opFloat, c.opFloat, c.opFloat, c.opFloat, // 150
		c.opFloat, c.opFloat, c.opFloat, c.opFloat, c.opFloat, c.opFloat, c.opFloat, c.opFloat, // 160
		c.opFloat, c.opFloat, c.opFloat, c.opFloat, c.opFloat, c.opFloat, c.opFloat, c.opFloat, // 170
		c.opMOVE, c.opMOVE, c.opMOVE, c.opMOVE, c.opMOVS, c.opMOVS, c.opMOVS, c.opMOVS, // 200
		c.opMOVN, c.opMOVN, c.opMOVN, c.opMOVN, c.opMOVM, c.opMOVM, c.opMOVM, c.opMOVM, // 210
		c.opIMUL, c.opIMUL, c.opIMUL, c.opIMUL, c.opMUL, c.opMUL, c.opMUL, c.opMUL, // 220
		c.opIDIV, c.opIDIV, c.opIDIV, c.opIDIV, c.opDIV, c.opDIV, c.opDIV, c.opDIV, // 230
		c.opASH, c.opROT, c.opLSH, c.opJFFO, c.opASHC, c.opROTC, c.opLSHC, c.opMUUO, // 240
		c.opEXCH, c.opBLT, c.opAOBJP, c.opAOBJN, c.opJRST, c.opJFCL, c.opXCT, c.opMAP, // 250
		c.opPUSHJ, c.opPUSH, c.opPOP, c.opPOPJ, c.opJSR, c.opJSP, c.opJSA, c.opJRA, // 260
		c.opADD, c.opADD, c.opADD, c.opADD, c.opSUB, c.opSUB, c.opSUB, c.opSUB, // 270
		c.opCAI, c.opCAI, c.opCAI, c.opCAI, c.opCAI, c.opCAI, c.opCAI, c.opCAI, // 300
		c.opCAM, c.opCAM, c.opCAM, c.opCAM, c.opCAM, c.opCAM, c.opCAM, c.opCAM, // 310
		c.opJUMP, c.opJUMP, c.opJUMP, c.opJUMP, c.opJUMP, c.opJUMP, c.opJUMP, c.opJUMP, // 320
		c.opSKIP, c.opSKIP, c.opSKIP, c.opSKIP, c.opSKIP, c.opSKIP, c.opSKIP, c.opSKIP, // 330
		c.opAOJ, c.opAOJ, c.opAOJ, c.opAOJ, c.opAOJ, c.opAOJ, c.opAOJ, c.opAOJ, // 340
		c.opAOS, c.opAOS, c.opAOS, c.opAOS, c.opAOS, c.opAOS, c.opAOS, c.opAOS, // 350
		c.opAOJ, c.opAOJ, c.opAOJ, c.opAOJ, c.opAOJ, c.opAOJ, c.opAOJ, c.opAOJ, // 360
		c.opAOS, c.opAOS, c.opAOS, c.opAOS, c.opAOS, c.opAOS, c.opAOS, c.opAOS, // 370
		c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, // 400
		c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, // 410
		c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, // 420
		c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, // 430
		c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, // 440
		c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, // 450
		c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, // 460
		c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, c.opBool, // 470
		c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, // 500
		c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, // 510
		c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, // 520
		c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, // 530
		c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, // 540
		c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, // 550
		c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, // 560
		c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, c.opHalf, // 570
		c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, // 600
		c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, // 610
		c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, // 620
		c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, // 630
		c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, // 640
		c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, // 650
		c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, // 660
		c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, c.opTest, // 670
		c.op700, c.op701, c.op702, c.opMUUO, c.opUMOVE, c.opUMOVEM, c.opMUUO, c.opMUUO, // 700
		c.opIO, c.opIO, c.opIO, c.opIO, c.opIO, c.opIO, c.opBLTBU, c.opBLTUB, // 710
		c.opIO, c.opIO, c.opIO, c.opIO, c.opIO, c.opIO, c.opMUUO, c.opMUUO, // 720
		c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, // 730
		c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, // 740
		c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, // 750
		c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, // 760
		c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, c.opMUUO, // 770
	}
	c.createIOTables()
}
