/*
 * KS10 - Telnet listener
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
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/rcornwell/KS10/emu/master"
)

type Server struct {
	wg         sync.WaitGroup
	listener   net.Listener
	port       string
	shutdown   chan struct{}
	connection chan net.Conn
	master     chan master.Packet
}

var servers []*Server

// Open new listener.
func newServer(address string) (*Server, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on address %s: %w", address, err)
	}

	return &Server{
		listener:   listener,
		shutdown:   make(chan struct{}),
		connection: make(chan net.Conn),
	}, nil
}

// Accept a connection.
func (s *Server) acceptConnections() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return
			default:
				continue
			}
		}
		select {
		case s.connection <- conn:
		case <-s.shutdown:
			conn.Close()
			return
		}
	}
}

// Start processing for a new connection.
func (s *Server) handleConnections() {
	defer s.wg.Done()

	for {
		select {
		case <-s.shutdown:
			return
		case conn := <-s.connection:
			slog.Info("Connection", "from", conn.RemoteAddr().String(), "port", s.port)
			go handleClient(conn, s.port, s.master)
		}
	}
}

// Start a server for each registered port.
func Start(master chan master.Packet) error {
	mapLock.Lock()
	defer mapLock.Unlock()
	for portNum := range ports {
		s, err := newServer(":" + portNum)
		if err != nil {
			return err
		}
		s.port = portNum
		s.master = master
		slog.Info("Server started", "address", s.listener.Addr().String())

		s.wg.Add(2)
		go s.acceptConnections()
		go s.handleConnections()
		servers = append(servers, s)
	}
	return nil
}

// Stop running servers.
func Stop() {
	for _, s := range servers {
		slog.Info("Shutdown port", "port", s.port)
		close(s.shutdown)
		s.listener.Close()

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			slog.Warn("Timed out waiting for connections to finish.")
		}
	}
	servers = nil
}
