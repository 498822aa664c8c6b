/*
 * TS10 - Debug options configuration.
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

// Package debugconfig wires the "debug"/"debugfile" config lines to
// util/debug, self-registering with configparser from init() the same
// way the teacher's debugconfig does. Unlike the teacher's fixed
// channel/cpu/tape set, any module name is accepted: each key=value
// option enables its flags under that key (case-insensitive).
package debugconfig

import (
	"strings"

	config "github.com/rcornwell/ts10/config/configparser"
	"github.com/rcornwell/ts10/util/debug"
)

func init() {
	config.RegisterModel("DEBUG", setDebug)
	config.RegisterModel("DEBUGFILE", setDebugFile)
}

// setDebug handles lines of the form "debug <module>=<flag>[,<flag>...]
// ...", e.g. "debug cpu=trace,irq console=rx,tx".
func setDebug(_ uint32, options []config.Option) error {
	for _, opt := range options {
		for _, flag := range strings.Split(opt.Value, ",") {
			if flag != "" {
				debug.Enable(opt.Key, flag)
			}
		}
	}
	return nil
}

// setDebugFile handles "debugfile file=trace.log".
func setDebugFile(_ uint32, options []config.Option) error {
	name, ok := config.Lookup(options, "file")
	if !ok {
		return nil
	}
	return debug.SetFile(name)
}
