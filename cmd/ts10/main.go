/*
 * TS10 - Main process.
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
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	config "github.com/rcornwell/ts10/config/configparser"
	"github.com/rcornwell/ts10/console"
	pdp10cpu "github.com/rcornwell/ts10/cpu/pdp10"
	vaxcpu "github.com/rcornwell/ts10/cpu/vax"
	"github.com/rcornwell/ts10/event"
	"github.com/rcornwell/ts10/iobus"
	"github.com/rcornwell/ts10/irq"
	"github.com/rcornwell/ts10/memory"
	"github.com/rcornwell/ts10/mmu"
	"github.com/rcornwell/ts10/system"
	core "github.com/rcornwell/ts10/system/core"
	bootsys "github.com/rcornwell/ts10/system/boot"
	"github.com/rcornwell/ts10/util/logger"

	_ "github.com/rcornwell/ts10/config/debugconfig"
)

// machineConfig accumulates the handful of config-file settings main
// needs before it can wire a CPU, memory, and bus together; populated
// by RegisterModel callbacks as LoadConfigFile scans the file, matching
// the teacher's "register first, load second, build third" ordering in
// its own main.go (syschannel.InitializeChannels before LoadConfigFile,
// syschannel.ResetChannels after).
type machineConfig struct {
	arch       string
	memWords   uint32
	consoleTCP string
	diskFile   string
	tapeFile   string
}

func registerMachineModels(mc *machineConfig) {
	config.RegisterModel("CPU", func(_ uint32, opts []config.Option) error {
		if v, ok := config.Lookup(opts, "arch"); ok {
			mc.arch = v
		}
		return nil
	})
	config.RegisterModel("MEMORY", func(_ uint32, opts []config.Option) error {
		if v, ok, err := config.Uint(opts, "size", 32); err != nil {
			return err
		} else if ok {
			mc.memWords = uint32(v)
		}
		return nil
	})
	config.RegisterModel("CONSOLE", func(_ uint32, opts []config.Option) error {
		if v, ok := config.Lookup(opts, "addr"); ok {
			mc.consoleTCP = v
		}
		return nil
	})
	config.RegisterModel("DISK", func(_ uint32, opts []config.Option) error {
		if v, ok := config.Lookup(opts, "file"); ok {
			mc.diskFile = v
		}
		return nil
	})
	config.RegisterModel("TAPE", func(_ uint32, opts []config.Option) error {
		if v, ok := config.Lookup(opts, "file"); ok {
			mc.tapeFile = v
		}
		return nil
	})
}

const (
	defaultArch       = "pdp10"
	defaultMemWords   = 1 << 18
	defaultConsoleTCP = ":2323"
)

func main() {
	optConfig := getopt.StringLong("config", 'c', "ts10.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if optLogFile != nil && *optLogFile != "" {
		file, _ = os.Create(*optLogFile)
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	debugOff := false
	log := slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel, AddSource: false}, &debugOff))
	slog.SetDefault(log)

	log.Info("TS10 started")

	mc := &machineConfig{arch: defaultArch, memWords: defaultMemWords, consoleTCP: defaultConsoleTCP}
	registerMachineModels(mc)

	if _, err := os.Stat(*optConfig); err == nil {
		if err := config.LoadConfigFile(*optConfig); err != nil {
			log.Error("config load failed", "error", err)
			os.Exit(1)
		}
	} else {
		log.Warn("no configuration file found, running with defaults", "path", *optConfig)
	}

	mem := memory.NewLinearStore(mc.memWords, 512)

	var cpuCore *core.Core
	var cons *console.Console
	switch mc.arch {
	case "vax":
		cpuCore, cons = buildVAX(mem, mc)
	default:
		cpuCore, cons = buildPDP10(mem, mc)
	}

	ln, err := console.Listen(mc.consoleTCP, cons)
	if err != nil {
		log.Error("console listen failed", "error", err)
		os.Exit(1)
	}
	defer ln.Close()

	go cpuCore.Start()

	repl := &system.Repl{Master: cpuCore.Master, Mem: mem}
	go repl.Run()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down")
	cpuCore.Stop()
	cons.Shutdown()
}

// Console RX/TX interrupt vectors (0200/0204 octal, chosen for this
// wiring; the dl11 package's own defaults are 060/064) and the
// conventional DL11-compatible console CSR base address (0177560
// octal), shared by the KS10 and MicroVAX-II front-end line.
const (
	consoleRXVector uint32 = 0o200
	consoleTXVector uint32 = 0o204
	consoleCSRAddr  uint32 = 0o177560
	consoleBR       int    = 4
)

func buildPDP10(mem memory.Store, mc *machineConfig) (*core.Core, *console.Console) {
	pager := mmu.NewPDP10Pager(mem)
	ctl := &irq.PDP10Controller{}
	cpu := pdp10cpu.NewCPU(pager, ctl)

	uba := iobus.NewUnibusAdapter(mem)
	uba.SetFaultSink(cpu)
	cons := console.New(&uba.Bus, consoleRXVector, consoleTXVector)
	uba.SetMap(cons, consoleCSRAddr, 8, consoleRXVector, consoleBR)

	events := &event.Queue{}
	boot := func(unit uint32) (uint32, error) {
		return bootPDP10(mem, mc)
	}
	return core.New(cpu, events, []core.Ticker{cons}, boot, 0), cons
}

func buildVAX(mem memory.Store, mc *machineConfig) (*core.Core, *console.Console) {
	pager := mmu.NewVAXPager(mem)
	ctl := &irq.Controller{}
	cpu := vaxcpu.NewCPU(pager, ctl)

	qba := iobus.NewQbusAdapter(mem)
	qba.SetFaultSink(cpu)
	cons := console.New(&qba.Bus, consoleRXVector, consoleTXVector)
	qba.SetMap(cons, consoleCSRAddr, 8, consoleRXVector, consoleBR)

	events := &event.Queue{}
	boot := func(unit uint32) (uint32, error) {
		return bootVAX(mem, mc)
	}
	return core.New(cpu, events, []core.Ticker{cons}, boot, 0), cons
}

func bootPDP10(mem memory.Store, mc *machineConfig) (uint32, error) {
	if mc.tapeFile != "" {
		return bootsys.LoadTape(mem, mc.tapeFile, 0o1000)
	}
	if mc.diskFile != "" {
		disk, err := bootsys.OpenDisk(mc.diskFile)
		if err != nil {
			return 0, err
		}
		return bootsys.LoadDisk(mem, disk)
	}
	return 0, fmt.Errorf("boot: no disk or tape device configured")
}

func bootVAX(mem memory.Store, mc *machineConfig) (uint32, error) {
	return bootPDP10(mem, mc)
}
