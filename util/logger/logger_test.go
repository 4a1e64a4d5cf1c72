/*
 * KS10 - Log handler tests
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

package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func newTest(level slog.Level, debug bool) (*slog.Logger, *bytes.Buffer, *bytes.Buffer) {
	var file, stderr bytes.Buffer
	h := NewHandler(&file, &slog.HandlerOptions{Level: level}, debug)
	h.errOut = &stderr
	return slog.New(h), &file, &stderr
}

// Records go to the file, warnings also to stderr.
func TestHandle(t *testing.T) {
	is := is.New(t)
	log, file, stderr := newTest(slog.LevelDebug, false)

	log.Info("CPU stopped", "reason", "HALT instruction", "pc", "001000")
	line := file.String()
	is.True(strings.HasSuffix(line, " INFO: CPU stopped reason=HALT instruction pc=001000\n"))
	is.Equal(stderr.Len(), 0)

	log.Warn("timeout")
	is.True(strings.HasSuffix(stderr.String(), " WARN: timeout\n"))
}

// Level filters records.
func TestLevel(t *testing.T) {
	is := is.New(t)
	log, file, _ := newTest(slog.LevelInfo, false)

	log.Debug("hidden")
	is.Equal(file.Len(), 0)
	log.Info("shown")
	is.True(file.Len() != 0)
}

// Debug echoes everything to stderr.
func TestDebugEcho(t *testing.T) {
	is := is.New(t)
	log, _, stderr := newTest(slog.LevelDebug, true)

	log.Debug("trace")
	is.True(strings.HasSuffix(stderr.String(), " DEBUG: trace\n"))
}

// Attributes and groups are carried by derived loggers.
func TestWithAttrs(t *testing.T) {
	is := is.New(t)
	log, file, _ := newTest(slog.LevelDebug, false)

	log.With("dev", "CTY").WithGroup("tel").Info("connect", "port", 2020)
	is.True(strings.HasSuffix(file.String(), " INFO: connect dev=CTY tel.port=2020\n"))
}
