/*
 * KS10 - Debug option configuration tests
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

package debugconfig

import (
	"testing"

	config "github.com/rcornwell/KS10/config/configparser"
)

func TestSetDebug(t *testing.T) {
	second := "TRAP"
	tests := []struct {
		module  string
		options []config.Option
		ok      bool
	}{
		{"cpu", []config.Option{{Name: "inst", Value: []*string{&second}}}, true},
		{"PAGER", []config.Option{{Name: "FAIL"}, {Name: "FILL"}}, true},
		{"CTY", []config.Option{{Name: "LINE"}}, true},
		{"TELNET", []config.Option{{Name: "CONN"}}, true},
		{"DISK", []config.Option{{Name: "CMD"}}, false},
		{"CPU", []config.Option{{Name: "BOGUS"}}, false},
		{"CPU", []config.Option{{Name: "INST", EqualOpt: "1"}}, false},
	}
	for _, test := range tests {
		err := setDebug(config.NoAddr, test.module, test.options)
		if (err == nil) != test.ok {
			t.Errorf("Debug %s error: %v expected ok: %t", test.module, err, test.ok)
		}
	}
}
