/*
 * TS10 - Debug flag registry and conditional logging.
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

// Package debug holds per-module debug-flag state, settable from a
// config file's "debug" line, and writes conditional trace lines to an
// optional debug file. Simplified from the teacher's util/debug, which
// routed through a separate per-channel/per-device Debug(flag string)
// method on every component; this subset has far fewer component
// kinds (cpu/vax, cpu/pdp10, iobus, console), so one flat
// module-name-to-flag-set registry replaces the per-component
// dispatch.
package debug

import (
	"fmt"
	"os"
	"strings"
)

var (
	logFile *os.File
	flags   = map[string]map[string]bool{}
)

// Enable turns on flag (case-insensitive) for module, so later calls
// to Active(module, flag) and Logf(module, flag, ...) take effect.
func Enable(module, flag string) {
	module, flag = strings.ToUpper(module), strings.ToUpper(flag)
	set, ok := flags[module]
	if !ok {
		set = map[string]bool{}
		flags[module] = set
	}
	set[flag] = true
}

// Active reports whether flag is enabled for module.
func Active(module, flag string) bool {
	set, ok := flags[strings.ToUpper(module)]
	if !ok {
		return false
	}
	return set[strings.ToUpper(flag)]
}

// Logf writes a conditional trace line to the debug file (if one was
// configured via "debugfile") when flag is active for module.
func Logf(module, flag, format string, args ...any) {
	if !Active(module, flag) || logFile == nil {
		return
	}
	fmt.Fprintf(logFile, module+" "+flag+": "+format+"\n", args...)
}

// SetFile opens fileName as the destination for every Logf call.
func SetFile(fileName string) error {
	if logFile != nil {
		return fmt.Errorf("a debug file is already open: %s", logFile.Name())
	}
	f, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("unable to create debug file %s: %w", fileName, err)
	}
	logFile = f
	return nil
}
