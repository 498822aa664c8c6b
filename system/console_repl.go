/*
 * TS10 - Operator console command line.
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

package system

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/rcornwell/ts10/util/hex"
)

// ExamineStore is the narrow memory interface the operator's
// examine/deposit commands need, satisfied by memory.Store.
type ExamineStore interface {
	Read(addr uint32) (uint64, error)
	Write(addr uint32, value uint64) error
}

// Repl is the operator command front end (§6 SUPPLEMENTED FEATURES:
// boot/halt/examine/deposit/continue), grounded on the teacher's
// command/reader.ConsoleReader + command/parser.ProcessCommand pair:
// the same liner prompt/history/completer loop, collapsed onto a small
// fixed command table instead of a matchList'd command registry, since
// this operator surface only needs the five commands above rather than
// S/370's attach/detach/set/show/ipl device-management set.
type Repl struct {
	Master chan Packet
	Mem    ExamineStore
}

var replCommands = []string{"boot", "halt", "continue", "examine", "deposit", "quit"}

// Run reads operator commands from stdin until "quit" or the prompt is
// aborted (Ctrl-D/Ctrl-C), matching ConsoleReader's loop shape.
func (r *Repl) Run() {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(partial string) []string {
		var matches []string
		for _, c := range replCommands {
			if strings.HasPrefix(c, partial) {
				matches = append(matches, c)
			}
		}
		return matches
	})

	for {
		command, err := line.Prompt("ts10> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return
			}
			slog.Error("console repl: error reading line", "error", err)
			return
		}
		line.AppendHistory(command)
		quit, err := r.dispatch(command)
		if err != nil {
			fmt.Println("Error: " + err.Error())
		}
		if quit {
			return
		}
	}
}

func (r *Repl) dispatch(commandLine string) (quit bool, err error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return false, nil
	}
	args := fields[1:]
	switch fields[0] {
	case "boot":
		return false, r.boot(args)
	case "halt":
		r.Master <- Packet{Msg: Stop}
		return false, nil
	case "continue":
		r.Master <- Packet{Msg: Start}
		return false, nil
	case "examine":
		return false, r.examine(args)
	case "deposit":
		return false, r.deposit(args)
	case "quit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command: %s", fields[0])
	}
}

func (r *Repl) boot(args []string) error {
	var unit uint64
	var err error
	if len(args) > 0 {
		if unit, err = strconv.ParseUint(args[0], 0, 32); err != nil {
			return fmt.Errorf("boot: bad unit %q: %w", args[0], err)
		}
	}
	r.Master <- Packet{Msg: Boot, Unit: uint32(unit)}
	return nil
}

func (r *Repl) examine(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: examine <addr>")
	}
	addr, err := strconv.ParseUint(args[0], 0, 32)
	if err != nil {
		return fmt.Errorf("examine: bad address %q: %w", args[0], err)
	}
	v, err := r.Mem.Read(uint32(addr))
	if err != nil {
		return err
	}
	var out strings.Builder
	fmt.Fprintf(&out, "%012o: ", addr)
	hex.FormatOctal36(&out, v)
	fmt.Println(out.String())
	return nil
}

func (r *Repl) deposit(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: deposit <addr> <value>")
	}
	addr, err := strconv.ParseUint(args[0], 0, 32)
	if err != nil {
		return fmt.Errorf("deposit: bad address %q: %w", args[0], err)
	}
	value, err := strconv.ParseUint(args[1], 0, 64)
	if err != nil {
		return fmt.Errorf("deposit: bad value %q: %w", args[1], err)
	}
	return r.Mem.Write(uint32(addr), value)
}
