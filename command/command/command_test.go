/*
 * KS10 - Command device registry test
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
	"testing"

	"github.com/matryer/is"
)

type testDev struct {
	name string
}

func (d *testDev) Options(_ string) []Options {
	return []Options{{Name: "opt", OptionType: OptionSwitch, OptionValid: ValidShow}}
}

func (d *testDev) Set(_ bool, _ []*CmdOption) error {
	return nil
}

func (d *testDev) Show(_ []*CmdOption) (string, error) {
	return d.name, nil
}

func TestRegister(t *testing.T) {
	is := is.New(t)
	Register("TTY", &testDev{name: "tty"})
	Register("Lpt", &testDev{name: "lpt"})

	dev, err := Lookup("tty")
	is.NoErr(err)
	str, err := dev.Show(nil)
	is.NoErr(err)
	is.Equal(str, "tty")

	dev, err = Lookup("LPT")
	is.NoErr(err)
	str, _ = dev.Show(nil)
	is.Equal(str, "lpt")

	_, err = Lookup("dsk")
	is.True(err != nil)

	is.Equal(Names(), []string{"lpt", "tty"})

	// Registering again replaces device.
	Register("tty", &testDev{name: "new"})
	dev, _ = Lookup("TTY")
	str, _ = dev.Show(nil)
	is.Equal(str, "new")
}
