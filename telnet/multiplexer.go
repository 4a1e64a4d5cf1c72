/*
 * KS10 - Telnet terminal multiplexer
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
	"strconv"
	"sync"

	config "github.com/rcornwell/KS10/config/configparser"
	"github.com/rcornwell/KS10/emu/master"
	"github.com/rcornwell/KS10/util/debug"
)

// Data held in map of available connections.
type termMap struct {
	dev   Telnet // Device pointer
	name  string // Terminal name
	port  string // Port device is listening on.
	inUse bool   // Device is in use.
}

var mapLock sync.Mutex

var terminals = map[string]*termMap{}

var ports = map[string][]*termMap{}

var defaultPort string

// Send connection message.
func (state *tnState) SendConnect() {
	packet := master.Packet{Name: state.name, Msg: master.TelConnect, Conn: state.conn}
	state.master <- packet
}

// Send disconnect message.
func (state *tnState) SendDisconnect() {
	packet := master.Packet{Name: state.name, Msg: master.TelDisconnect}
	state.master <- packet
	debug.Debugf("TELNET", debugMsk, debugConn, "%s disconnected", state.name)
	mapLock.Lock()
	if term, ok := terminals[state.name]; ok {
		term.inUse = false
	}
	mapLock.Unlock()
	state.name = ""
}

// Send receive strings.
func (state *tnState) SendReceiveChar(data []byte) {
	packet := master.Packet{Name: state.name, Msg: master.TelReceive, Data: data}
	state.master <- packet
}

// Register a terminal, empty port uses the default port.
func RegisterTerminal(dev Telnet, name string, port string) (string, error) {
	mapLock.Lock()
	defer mapLock.Unlock()

	if _, ok := terminals[name]; ok {
		return "", errors.New("duplicate terminal: " + name)
	}
	if port == "" {
		port = defaultPort
	}
	if port == "" {
		return "", errors.New("no port specified and no default port")
	}

	term := &termMap{dev: dev, name: name, port: port}
	terminals[name] = term
	ports[port] = append(ports[port], term)
	debug.Debugf("TELNET", debugMsk, debugConn, "Registering %s on port: %s", name, port)
	return port, nil
}

// Return device registered under name, nil if none.
func GetTerminal(name string) Telnet {
	mapLock.Lock()
	defer mapLock.Unlock()
	term, ok := terminals[name]
	if !ok {
		return nil
	}
	return term.dev
}

// Remove all terminals and ports.
func clearTerminals() {
	mapLock.Lock()
	defer mapLock.Unlock()
	terminals = map[string]*termMap{}
	ports = map[string][]*termMap{}
	defaultPort = ""
}

// Find terminal to connect to.
func (state *tnState) findTerminal() bool {
	mapLock.Lock()
	defer mapLock.Unlock()
	pm, ok := ports[state.port]
	if !ok {
		debug.Debugf("TELNET", debugMsk, debugConn, "Connection from unregistered port: %s", state.port)
		return false
	}

	for _, term := range pm {
		if term.inUse {
			continue
		}
		state.name = term.name
		term.inUse = true
		return true
	}
	return false
}

// register a device on initialize.
func init() {
	config.RegisterOption("PORT", setPort)
}

// Set default port.
func setPort(_ uint32, port string, _ []config.Option) error {
	_, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return fmt.Errorf("port requires number: %s", port)
	}
	mapLock.Lock()
	defer mapLock.Unlock()
	if defaultPort != "" {
		return errors.New("can't have more then one default port")
	}
	defaultPort = port
	return nil
}
