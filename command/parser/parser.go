/*
 * KS10 - Console command parser
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
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/rcornwell/KS10/command/command"
	"github.com/rcornwell/KS10/emu/core"
	"github.com/rcornwell/KS10/util/octal"
)

type cmd struct {
	Name     string // Command name.
	Min      int    // Minimum match size.
	Process  func(*cmdLine, *core.Core) (bool, error)
	Complete func(*cmdLine) []string
}

type cmdLine struct {
	line string // Current command.
	pos  int    // Position in line.
}

// Where command output goes.
var out io.Writer = os.Stdout

// Execute the command line given, returns true when the simulator should quit.
func ProcessCommand(commandLine string, core *core.Core) (bool, error) {
	line := cmdLine{line: commandLine}
	command := line.getWord(false)
	if command == "" {
		if !line.isEOL() {
			return false, errors.New("command must be a word")
		}
		return false, nil
	}

	match := matchList(command)
	if len(match) == 0 {
		return false, errors.New("command not found: " + command)
	}

	if len(match) > 1 {
		return false, errors.New("unique command not found: " + command)
	}

	line.skipSpace()
	return match[0].Process(&line, core)
}

// Check if command matches at least to minimum length.
func matchCommand(match cmd, command string) bool {
	if len(command) < match.Min || len(command) > len(match.Name) {
		return false
	}
	return strings.HasPrefix(match.Name, command)
}

// Check if command matches one of the commands.
func matchList(command string) []cmd {
	var match []cmd
	for _, m := range cmdList {
		if matchCommand(m, command) {
			match = append(match, m)
		}
	}
	return match
}

// Match list of options.
func matchOption(option string, optList []command.Options, cmdType int) command.Options {
	for _, opt := range optList {
		if (opt.OptionValid & cmdType) == 0 {
			continue
		}
		if strings.EqualFold(opt.Name, option) {
			return opt
		}
	}
	return command.Options{OptionType: -1}
}

// Skip forward over line until none whitespace character found.
func (line *cmdLine) skipSpace() {
	for line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
}

// Check if at end of line.
func (line *cmdLine) isEOL() bool {
	if line.pos >= len(line.line) {
		return true
	}
	return line.line[line.pos] == '#'
}

// Return current character and advance to next.
func (line *cmdLine) getCurrent() byte {
	if line.isEOL() {
		return 0
	}
	by := line.line[line.pos]
	line.pos++
	return by
}

// Peek at current character.
func (line *cmdLine) peek() byte {
	if line.isEOL() {
		return 0
	}
	return line.line[line.pos]
}

// Return rest of line, less comment.
func (line *cmdLine) rest() string {
	line.skipSpace()
	start := line.pos
	for !line.isEOL() {
		line.pos++
	}
	return strings.TrimSpace(line.line[start:line.pos])
}

// Return next token delimited by space or end of line.
func (line *cmdLine) getToken() string {
	line.skipSpace()
	start := line.pos
	for !line.isEOL() && !unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
	return line.line[start:line.pos]
}

// Parse string that is "string" or just string.
func (line *cmdLine) parseQuoteString() (string, bool) {
	line.skipSpace()
	if line.peek() != '"' {
		value := line.getToken()
		return value, value != ""
	}
	line.pos++
	var value strings.Builder
	for line.pos < len(line.line) {
		by := line.line[line.pos]
		line.pos++
		if by != '"' {
			value.WriteByte(by)
			continue
		}
		// "" inside a quoted string is a single quote.
		if line.pos < len(line.line) && line.line[line.pos] == '"' {
			value.WriteByte(by)
			line.pos++
			continue
		}
		return value.String(), true
	}
	return "", false
}

// Parse a decimal number.
func (line *cmdLine) getNumber() (uint64, error) {
	tok := line.getToken()
	v, err := strconv.ParseUint(tok, 10, 36)
	if err != nil {
		return 0, errors.New("not a number: " + tok)
	}
	return v, nil
}

// Parse an octal number.
func (line *cmdLine) getOctal() (uint64, error) {
	tok := line.getToken()
	if tok == "" {
		return 0, errors.New("octal number required")
	}
	return octal.Parse(tok)
}

// Parse option name, stopping at space or = when equal is set.
// Returns empty string if the next token is not a word.
func (line *cmdLine) getWord(equal bool) string {
	line.skipSpace()
	start := line.pos
	for !line.isEOL() {
		by := line.line[line.pos]
		if unicode.IsSpace(rune(by)) || (equal && by == '=') {
			break
		}
		if !unicode.IsLetter(rune(by)) && (line.pos == start || !unicode.IsDigit(rune(by))) {
			line.pos = start
			return ""
		}
		line.pos++
	}
	return strings.ToLower(line.line[start:line.pos])
}

// Get an option.
func (line *cmdLine) getOption(opts []command.Options, cmdType int) (*command.CmdOption, error) {
	name := line.getWord(true)
	if name == "" {
		if !line.isEOL() {
			return nil, errors.New("invalid option: " + line.getToken())
		}
		return nil, nil
	}

	opt := command.CmdOption{Name: name}
	match := matchOption(name, opts, cmdType)
	if match.OptionType == -1 {
		return nil, errors.New("unknown option: " + name)
	}

	if match.OptionType == command.OptionSwitch {
		if line.peek() == '=' {
			return nil, errors.New("switch option can't have arguments: " + name)
		}
		return &opt, nil
	}

	// Options that take values.
	if line.getCurrent() != '=' {
		return nil, errors.New("option requires value: " + name)
	}
	switch match.OptionType {
	case command.OptionFile:
		file, ok := line.parseQuoteString()
		if !ok {
			return nil, errors.New("file name not valid: " + name)
		}
		opt.EqualOpt = file
	case command.OptionNumber:
		num, err := line.getNumber()
		if err != nil {
			return nil, errors.New("option must be followed by number: " + name)
		}
		opt.Value = num
	case command.OptionOctal:
		num, err := line.getOctal()
		if err != nil {
			return nil, errors.New("option must be followed by octal number: " + name)
		}
		opt.Value = num
	case command.OptionName:
		opt.EqualOpt = line.getToken()
		if opt.EqualOpt == "" {
			return nil, errors.New("option must be followed by name: " + name)
		}
	case command.OptionList:
		opt.EqualOpt = strings.ToLower(line.getToken())
		for _, mod := range match.OptionList {
			if strings.ToLower(mod) == opt.EqualOpt {
				return &opt, nil
			}
		}
		return nil, errors.New("option not valid for type: " + name)
	default:
		return nil, errors.New("invalid option type: " + name)
	}
	return &opt, nil
}

// Scan options and return a list of options.
func (line *cmdLine) getOptions(device command.Command, cmdType int) ([]*command.CmdOption, error) {
	optlist := []*command.CmdOption{}
	opts := device.Options("")
	for {
		opt, err := line.getOption(opts, cmdType)
		if err != nil {
			return optlist, err
		}
		if opt == nil {
			break
		}
		optlist = append(optlist, opt)
	}
	return optlist, nil
}

// Return command interface to named device.
func (line *cmdLine) getDevice() (command.Command, string, error) {
	name := line.getWord(false)
	if name == "" {
		return nil, "", errors.New("device name required")
	}
	dev, err := command.Lookup(name)
	return dev, name, err
}
