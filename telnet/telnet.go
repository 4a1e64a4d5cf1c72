/*
 * KS10 - Telnet protocol handler
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

package telnet

import (
	"errors"
	"fmt"
	"net"

	"github.com/rcornwell/KS10/emu/master"
	"github.com/rcornwell/KS10/util/debug"
)

// Telnet protocol constants.
const (
	tnIAC  byte = 255 // protocol delim
	tnDONT byte = 254 // dont
	tnDO   byte = 253 // do
	tnWONT byte = 252 // wont
	tnWILL byte = 251 // will
	tnSB   byte = 250 // Sub negotiations begin
	tnGA   byte = 249 // Go ahead
	tnIP   byte = 244 // Interrupt process
	tnBRK  byte = 243 // break
	tnSE   byte = 240 // Sub negotiations end
	tnIS   byte = 0
	tnSend byte = 1

	// Telnet line states.

	tnStateData  int = 1 + iota // normal
	tnStateIAC                  // IAC seen
	tnStateWILL                 // WILL seen
	tnStateDO                   // DO seen
	tnStateDONT                 // DONT seen
	tnStateWONT                 // WONT seen
	tnStateSKIP                 // skip next cmd
	tnStateSB                   // Start of SB expect type
	tnStateSE                   // Waiting for SE
	tnStateSBIS                 // Waiting for IS
	tnStateSTerm                // Grab terminal type
	tnStateCR                   // CR seen, drop following NUL

	// Telnet options.
	tnOptionBinary byte = 0  // Binary data transfer
	tnOptionEcho   byte = 1  // Echo
	tnOptionSGA    byte = 3  // Send Go Ahead
	tnOptionTerm   byte = 24 // Request Terminal Type
	tnOptionEOR    byte = 25 // Handle end of record
	tnOptionNAWS   byte = 31 // Negotiate about terminal size
	tnOptionLINE   byte = 34 // line mode
	tnOptionENV    byte = 39 // Environment

	// Telnet flags.
	tnFlagDo   uint8 = 0x01 // Do received
	tnFlagDont uint8 = 0x02 // Don't received
	tnFlagWill uint8 = 0x04 // Will received
	tnFlagWont uint8 = 0x08 // Wont received
)

const (
	// Debug options.
	debugOption = 1 << iota // Option negotiation.
	debugData               // Data received.
	debugConn               // Connections.
)

var debugOptions = map[string]int{
	"OPTION": debugOption,
	"DATA":   debugData,
	"CONN":   debugConn,
}

var debugMsk int

// Enable debug options.
func Debug(opt string) error {
	flag, ok := debugOptions[opt]
	if !ok {
		return errors.New("TELNET debug option invalid: " + opt)
	}
	debugMsk |= flag
	return nil
}

// Interface for receiving telnet messages.
type Telnet interface {
	Connect(conn net.Conn)
	ReceiveChar(data []byte)
	Disconnect()
}

var initString = []byte{
	tnIAC, tnWONT, tnOptionLINE,
	tnIAC, tnWILL, tnOptionEcho,
	tnIAC, tnWILL, tnOptionSGA,
	tnIAC, tnWILL, tnOptionBinary,
	tnIAC, tnDO, tnOptionTerm,
}

// Convert option number to string.
func optName(opt byte) string {
	switch opt {
	case tnOptionBinary:
		return "bin"
	case tnOptionEcho:
		return "echo"
	case tnOptionSGA:
		return "sga"
	case tnOptionTerm:
		return "term"
	case tnOptionEOR:
		return "eor"
	case tnOptionNAWS:
		return "naws"
	case tnOptionLINE:
		return "line"
	case tnOptionENV:
		return "env"
	}
	return "unknown"
}

type tnState struct {
	optionState [256]uint8 // Current state of telnet session
	sbtype      byte       // Type of SB being received
	state       int        // Current line State
	termType    []byte     // Terminal type reported by client
	name        string     // Terminal connected to
	port        string     // Port connection arrived on
	conn        net.Conn   // Client connection.
	master      chan master.Packet
}

// Send a response to client, and record what we sent.
func (state *tnState) sendOption(setState, option byte) {
	data := []byte{tnIAC, setState, option}
	_, _ = state.conn.Write(data)
	switch setState {
	case tnWILL:
		state.optionState[option] |= tnFlagWill
	case tnWONT:
		state.optionState[option] |= tnFlagWont
	case tnDO:
		state.optionState[option] |= tnFlagDo
	case tnDONT:
		state.optionState[option] |= tnFlagDont
	}
}

// Handle DO request.
func (state *tnState) handleDO(input byte) {
	switch input {
	case tnOptionSGA, tnOptionEcho:
		// Already offered in init string.
		state.optionState[input] |= tnFlagDo
	case tnOptionBinary:
		if (state.optionState[input] & tnFlagDo) == 0 {
			state.sendOption(tnDO, input)
		}
	default:
		if (state.optionState[input] & tnFlagWont) == 0 {
			state.sendOption(tnWONT, input)
		}
	}
}

// Handle WILL request.
func (state *tnState) handleWILL(input byte) {
	switch input {
	case tnOptionTerm:
		if (state.optionState[input] & tnFlagWill) == 0 {
			state.optionState[input] |= tnFlagWill
			send := []byte{tnIAC, tnSB, tnOptionTerm, tnSend, tnIAC, tnSE}
			_, _ = state.conn.Write(send)
		}
	case tnOptionSGA:
		if (state.optionState[input] & tnFlagWill) == 0 {
			state.optionState[input] |= tnFlagWill
			state.sendOption(tnDO, input)
		}
	case tnOptionEcho:
		// We echo, client must not.
		if (state.optionState[input] & tnFlagWill) == 0 {
			state.optionState[input] |= tnFlagWill
			state.sendOption(tnDONT, input)
		}
	case tnOptionBinary:
		state.optionState[input] |= tnFlagWill
	default:
		if (state.optionState[input] & tnFlagDont) == 0 {
			state.sendOption(tnDONT, input)
		}
	}
}

// Process a block of input, return data characters for the terminal.
func (state *tnState) process(buffer []byte) []byte {
	out := []byte{}
	for _, input := range buffer {
		switch state.state {
		case tnStateData, tnStateCR:
			if input == tnIAC {
				state.state = tnStateIAC
				continue
			}
			if state.state == tnStateCR && input == 0 {
				state.state = tnStateData
				continue
			}
			state.state = tnStateData
			if input == '\r' {
				state.state = tnStateCR
			}
			out = append(out, input)

		case tnStateIAC:
			switch input {
			case tnIAC:
				out = append(out, input)
				state.state = tnStateData
			case tnBRK, tnIP, tnGA:
				state.state = tnStateData
			case tnWILL:
				state.state = tnStateWILL
			case tnWONT:
				state.state = tnStateWONT
			case tnDO:
				state.state = tnStateDO
			case tnDONT:
				state.state = tnStateDONT
			case tnSB:
				state.state = tnStateSB
			default:
				state.state = tnStateSKIP
			}

		case tnStateWILL:
			debug.Debugf("TELNET", debugMsk, debugOption, "Will %s", optName(input))
			state.handleWILL(input)
			state.state = tnStateData

		case tnStateWONT:
			debug.Debugf("TELNET", debugMsk, debugOption, "Wont %s", optName(input))
			if (state.optionState[input] & tnFlagWont) == 0 {
				state.sendOption(tnWONT, input)
			}
			state.state = tnStateData

		case tnStateDO:
			debug.Debugf("TELNET", debugMsk, debugOption, "Do %s", optName(input))
			state.handleDO(input)
			state.state = tnStateData

		case tnStateDONT:
			debug.Debugf("TELNET", debugMsk, debugOption, "Dont %s", optName(input))
			state.state = tnStateData

		case tnStateSKIP:
			state.state = tnStateData

		case tnStateSB:
			state.sbtype = input
			state.state = tnStateSBIS

		case tnStateSBIS:
			if state.sbtype == tnOptionTerm && input == tnIS {
				state.termType = state.termType[:0]
				state.state = tnStateSTerm
			} else {
				state.state = tnStateSE
			}

		case tnStateSTerm:
			if input == tnIAC {
				state.state = tnStateSE
				debug.Debugf("TELNET", debugMsk, debugOption, "Terminal type %s", string(state.termType))
			} else {
				state.termType = append(state.termType, input)
			}

		case tnStateSE:
			if input == tnSE {
				state.state = tnStateData
			}
		}
	}
	return out
}

// Handle client connection.
func handleClient(conn net.Conn, port string, master chan master.Packet) {
	defer conn.Close()

	state := tnState{conn: conn, state: tnStateData, port: port, master: master}
	if !state.findTerminal() {
		fmt.Fprintf(conn, "No free terminal on port %s\r\n", port)
		return
	}
	debug.Debugf("TELNET", debugMsk, debugConn, "%s connected to %s", conn.RemoteAddr(), state.name)
	_, _ = state.conn.Write(initString)
	state.SendConnect()
	defer state.SendDisconnect()

	buffer := make([]byte, 1024)
	for {
		num, err := state.conn.Read(buffer)
		if err != nil {
			debug.Debugf("TELNET", debugMsk, debugConn, "%s read: %s", state.name, err.Error())
			return
		}
		out := state.process(buffer[:num])
		if len(out) != 0 {
			debug.Debugf("TELNET", debugMsk, debugData, "%s data: %q", state.name, out)
			state.SendReceiveChar(out)
		}
	}
}
