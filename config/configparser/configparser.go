/*
 * TS10 - Configuration file parser.
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

// Package configparser reads the system configuration file (§6): one
// model line per CPU/device/subsystem, an optional leading bus address,
// and key=value options. Generalized from the teacher's own
// configparser, which tokenized S/370 channel device lines character
// by character down to quoted comma-lists; a Unibus/Qbus peripheral
// line never needs that (no comma-separated multi-value options in
// any §6 device), so this version keeps the same
// register-a-model-in-init / dispatch-by-keyword shape but tokenizes
// with strings.Fields instead of a hand-rolled scanner.
package configparser

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Option is one key=value (or bare key) token from a config line.
type Option struct {
	Key   string
	Value string
}

// ModelFunc builds and wires one CPU/device/subsystem instance from
// its config line. addr is 0 when the line carried no leading address
// field (e.g. "cpu arch=vax").
type ModelFunc func(addr uint32, options []Option) error

var models = map[string]ModelFunc{}

// RegisterModel associates a model keyword (matched case-insensitively)
// with the function that builds it; called from each owning package's
// init(), the same self-registration shape the teacher's
// RegisterModel/RegisterSwitch/RegisterOption trio uses, collapsed to
// one function since every §6 model line takes the same addr+options
// shape.
func RegisterModel(name string, fn ModelFunc) {
	models[strings.ToUpper(name)] = fn
}

// LoadConfigFile reads cfgPath line by line, skipping blanks and
// '#'-comments, dispatching each model line to its registered
// ModelFunc.
func LoadConfigFile(cfgPath string) error {
	file, err := os.Open(cfgPath)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line, _, _ := strings.Cut(scanner.Text(), "#")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := parseLine(line); err != nil {
			return fmt.Errorf("line %d: %w", lineNumber, err)
		}
	}
	return scanner.Err()
}

func parseLine(line string) error {
	fields := strings.Fields(line)
	name := strings.ToUpper(fields[0])
	model, ok := models[name]
	if !ok {
		return fmt.Errorf("unknown model %q", fields[0])
	}

	rest := fields[1:]
	var addr uint32
	if len(rest) > 0 && !strings.Contains(rest[0], "=") {
		v, err := strconv.ParseUint(rest[0], 0, 32)
		if err != nil {
			return fmt.Errorf("%s: bad address %q: %w", name, rest[0], err)
		}
		addr = uint32(v)
		rest = rest[1:]
	}

	options := make([]Option, 0, len(rest))
	for _, field := range rest {
		key, value, _ := strings.Cut(field, "=")
		options = append(options, Option{Key: strings.ToUpper(key), Value: value})
	}
	return model(addr, options)
}

// Lookup returns the value of the first option matching key
// (case-insensitive) and whether it was present.
func Lookup(options []Option, key string) (string, bool) {
	key = strings.ToUpper(key)
	for _, o := range options {
		if o.Key == key {
			return o.Value, true
		}
	}
	return "", false
}

// Uint parses an option's value as an unsigned integer, accepting the
// "0x"/"0"/bare-decimal prefixes strconv.ParseUint(..., 0, bits) does
// — the natural radix for octal Unibus/Qbus vectors alongside hex
// addresses in the same config line.
func Uint(options []Option, key string, bits int) (uint64, bool, error) {
	v, ok := Lookup(options, key)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.ParseUint(v, 0, bits)
	if err != nil {
		return 0, true, fmt.Errorf("option %s=%q: %w", key, v, err)
	}
	return n, true, nil
}
