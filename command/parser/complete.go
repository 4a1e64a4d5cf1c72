/*
 * KS10 - Command line completion
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

package parser

import (
	"slices"
	"strings"
	"unicode"

	"github.com/rcornwell/KS10/command/command"
)

// Called to complete a command line, during line editing.
func CompleteCmd(commandLine string) []string {
	line := cmdLine{line: commandLine}
	name := line.getWord(false)

	// We have a command, let it try and complete it.
	if !line.isEOL() && unicode.IsSpace(rune(line.peek())) {
		match := matchList(name)
		if len(match) != 1 || match[0].Complete == nil {
			return nil
		}
		return match[0].Complete(&line)
	}

	var matches []string
	for _, m := range cmdList {
		if strings.HasPrefix(m.Name, name) {
			matches = append(matches, m.Name+" ")
		}
	}
	slices.Sort(matches)
	return matches
}

// Complete a device name, then its options.
func (line *cmdLine) completeDevice(cmdType int) []string {
	line.skipSpace()
	leading := line.line[:line.pos]
	save := line.pos
	name := line.getWord(false)

	// Device complete, move on to options.
	if name != "" && line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		device, err := command.Lookup(name)
		if err != nil {
			return nil
		}
		return line.completeOption(device, cmdType)
	}
	line.pos = save

	var matches []string
	for _, dev := range command.Names() {
		if !strings.HasPrefix(dev, name) {
			continue
		}
		device, err := command.Lookup(dev)
		if err != nil || !hasOptions(device, cmdType) {
			continue
		}
		matches = append(matches, leading+dev+" ")
	}
	return matches
}

// Check if device has any options for command type.
func hasOptions(device command.Command, cmdType int) bool {
	for _, opt := range device.Options("") {
		if opt.OptionValid&cmdType != 0 {
			return true
		}
	}
	return false
}

// Complete last option on line.
func (line *cmdLine) completeOption(device command.Command, cmdType int) []string {
	// Find start of last word.
	start := strings.LastIndexFunc(line.line, unicode.IsSpace) + 1
	leading := line.line[:start]
	word := strings.ToLower(line.line[start:])
	if strings.Contains(word, "=") {
		return nil
	}

	var matches []string
	for _, opt := range device.Options("") {
		if opt.OptionValid&cmdType == 0 {
			continue
		}
		if !strings.HasPrefix(opt.Name, word) {
			continue
		}
		if opt.OptionType == command.OptionSwitch {
			matches = append(matches, leading+opt.Name+" ")
		} else {
			matches = append(matches, leading+opt.Name+"=")
		}
	}
	slices.Sort(matches)
	return matches
}
