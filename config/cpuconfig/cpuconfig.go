/*
 * KS10 - Processor configuration options
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

package cpuconfig

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	config "github.com/rcornwell/KS10/config/configparser"
	"github.com/rcornwell/KS10/emu/cpu"
	"github.com/rcornwell/KS10/emu/memory"
)

// Settings before any configuration is read.
var defaultConfig = cpu.Config{
	MemSize: 512,
	Serial:  4097,
}

var current = defaultConfig

// register options on initialize.
func init() {
	config.RegisterOption("MEMORY", setMemory)
	config.RegisterOption("PAGING", setPaging)
	config.RegisterModel("CPU", config.TypeOptions, setCPU)
}

// Return processor configuration.
func Config() cpu.Config {
	return current
}

// Restore defaults.
func Reset() {
	current = defaultConfig
}

// Parse decimal size with optional K or M suffix, result in K words.
func parseSize(value string) (int, error) {
	value = strings.ToUpper(value)
	mult := 1
	switch {
	case strings.HasSuffix(value, "K"):
		value = value[:len(value)-1]
	case strings.HasSuffix(value, "M"):
		value = value[:len(value)-1]
		mult = 1024
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid memory size: %s", value)
	}
	return n * mult, nil
}

// MEMORY <size>.
func setMemory(_ uint32, value string, _ []config.Option) error {
	size, err := parseSize(value)
	if err != nil {
		return err
	}
	if size <= 0 || size > memory.MaxSize {
		return fmt.Errorf("memory size must be between 1K and %dK: %s", memory.MaxSize, value)
	}
	current.MemSize = size
	return nil
}

// PAGING ITS|DEC.
func setPaging(_ uint32, value string, _ []config.Option) error {
	switch strings.ToUpper(value) {
	case "ITS":
		current.ITS = true
	case "DEC", "TOPS10", "TOPS20":
		current.ITS = false
	default:
		return errors.New("paging must be ITS or DEC: " + value)
	}
	return nil
}

// Decimal value of NAME=n option.
func optNumber(opt config.Option) (int, error) {
	if opt.EqualOpt == "" || len(opt.Value) != 0 {
		return 0, fmt.Errorf("CPU option %s requires =number", opt.Name)
	}
	n, err := strconv.Atoi(opt.EqualOpt)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("CPU option %s invalid number: %s", opt.Name, opt.EqualOpt)
	}
	return n, nil
}

// CPU KS10 option...
func setCPU(_ uint32, model string, options []config.Option) error {
	if !strings.EqualFold(model, "KS10") {
		return errors.New("CPU model must be KS10: " + model)
	}
	for _, opt := range options {
		name := strings.ToUpper(opt.Name)
		if name == "STOPILLEGAL" {
			if opt.EqualOpt != "" {
				return errors.New("STOPILLEGAL does not take a value")
			}
			current.StopIllegal = true
			continue
		}
		n, err := optNumber(opt)
		if err != nil {
			return err
		}
		switch name {
		case "INDLIMIT":
			current.IndLimit = n
		case "XCTLIMIT":
			current.XCTLimit = n
		case "HISTORY":
			current.History = n
		case "SERIAL":
			if n > 0o777777 {
				return fmt.Errorf("serial number too large: %d", n)
			}
			current.Serial = n
		default:
			return errors.New("CPU option invalid: " + opt.Name)
		}
	}
	return nil
}
