/*
 * TS10 - local raw-mode terminal bridge for the operator console.
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

// LocalTerminal puts stdin into raw mode and bridges it to the console's
// TCP bridge, so a developer can drive a running console directly from
// the terminal that launched it instead of opening a second telnet
// session. Raw mode means no local line editing or echo, matching a
// real hardwired console terminal rather than a shell.
package console

import (
	"fmt"
	"io"
	"net"
	"os"

	"golang.org/x/term"
)

// LocalTerminal attaches the calling process's own stdin/stdout to a
// console TCP bridge over a loopback connection, after putting stdin
// into raw mode so keystrokes pass through unbuffered and unechoed,
// exactly as a physical terminal wired to a UART would.
type LocalTerminal struct {
	conn     net.Conn
	oldState *term.State
}

// DialLocalTerminal connects to a console TCP bridge at addr (normally
// one started by Listen in this same process) and arms raw mode on
// stdin. Call Close to restore the terminal and close the connection.
func DialLocalTerminal(addr string) (*LocalTerminal, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("console: dial local terminal: %w", err)
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		conn.Close()
		return nil, fmt.Errorf("console: stdin is not a terminal")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("console: enter raw mode: %w", err)
	}

	return &LocalTerminal{conn: conn, oldState: oldState}, nil
}

// Run copies stdin to the console connection and the console connection
// to stdout until either side closes, matching a hardwired terminal's
// full-duplex byte stream. It returns once the connection is closed, by
// either end.
func (lt *LocalTerminal) Run() error {
	errCh := make(chan error, 2)
	go func() {
		_, err := io.Copy(lt.conn, os.Stdin)
		errCh <- err
	}()
	go func() {
		_, err := io.Copy(os.Stdout, lt.conn)
		errCh <- err
	}()
	return <-errCh
}

// Close restores stdin's original terminal mode and closes the
// connection. Safe to call once, after Run returns or from a signal
// handler interrupting Run.
func (lt *LocalTerminal) Close() error {
	_ = term.Restore(int(os.Stdin.Fd()), lt.oldState)
	return lt.conn.Close()
}
