/*
 * KS10 - Command interface for devices
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

package command

import (
	"errors"
	"slices"
	"strings"
	"sync"
)

// List of options to pass to set or show function
type CmdOption struct {
	Name     string // Name of option.
	EqualOpt string // Value of string after =.
	Value    uint64 // Numeric value.
}

// List of option types.
const (
	OptionSwitch = 1 + iota
	OptionFile
	OptionNumber
	OptionOctal
	OptionName
	OptionList
)

const (
	ValidSet = 1 << iota
	ValidShow
)

type Options struct {
	Name        string   // Name of option.
	OptionType  int      // Type of argument.
	OptionValid int      // Option valid for command type.
	OptionList  []string // List of valid options for this options.
}

type Command interface {
	Options(opt string) []Options               // Return list of supported options.
	Set(unset bool, options []*CmdOption) error // Do set/ unset command.
	Show(options []*CmdOption) (string, error)  // Do show command.
}

var (
	lock    sync.Mutex
	devices = map[string]Command{}
)

// Register a device that accepts commands.
func Register(name string, dev Command) {
	lock.Lock()
	defer lock.Unlock()
	devices[strings.ToLower(name)] = dev
}

// Find a device by name.
func Lookup(name string) (Command, error) {
	lock.Lock()
	defer lock.Unlock()
	dev, ok := devices[strings.ToLower(name)]
	if !ok {
		return nil, errors.New("device not found: " + name)
	}
	return dev, nil
}

// Return sorted names of registered devices.
func Names() []string {
	lock.Lock()
	defer lock.Unlock()
	names := make([]string, 0, len(devices))
	for name := range devices {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
