/*
 * KS10 - Main process
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

package main

import (
	"io"
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"
	reader "github.com/rcornwell/KS10/command/reader"
	config "github.com/rcornwell/KS10/config/configparser"
	"github.com/rcornwell/KS10/config/cpuconfig"
	core "github.com/rcornwell/KS10/emu/core"
	master "github.com/rcornwell/KS10/emu/master"
	"github.com/rcornwell/KS10/emu/timer"
	telnet "github.com/rcornwell/KS10/telnet"
	logger "github.com/rcornwell/KS10/util/logger"

	_ "github.com/rcornwell/KS10/config/debugconfig"
)

func main() {
	optConfig := getopt.StringLong("config", 'c', "KS10.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.BoolLong("debug", 'd', "Log debug to console")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var logFile io.Writer
	if *optLogFile != "" {
		file, err := os.Create(*optLogFile)
		if err != nil {
			slog.Error("Unable to create log file", "file", *optLogFile, "error", err.Error())
			os.Exit(1)
		}
		defer file.Close()
		logFile = file
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	Logger := slog.New(logger.NewHandler(logFile, &slog.HandlerOptions{Level: programLevel}, *optDebug))
	slog.SetDefault(Logger)

	Logger.Info("KS10 Started")
	if _, err := os.Stat(*optConfig); os.IsNotExist(err) {
		Logger.Error("Configuration file can't be found", "file", *optConfig)
		os.Exit(1)
	}

	if err := config.LoadConfigFile(*optConfig); err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}

	masterChannel := make(chan master.Packet, 16)

	cpu, err := core.NewCPU(masterChannel, cpuconfig.Config())
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}

	// Time base follows the wall clock.
	clock := timer.NewTimer(masterChannel)
	cpu.ExternalClock(true)
	clock.Start()

	if err = telnet.Start(masterChannel); err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}

	go cpu.Start()

	msg := make(chan string, 1)
	go func() {
		reader.ConsoleReader(cpu)
		msg <- ""
	}()

	// Wait on shutdown option
	<-msg

	clock.Shutdown()
	cpu.Stop()
	telnet.Stop()
	Logger.Info("Servers stopped.")
}
