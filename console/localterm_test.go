package console

import (
	"net"
	"testing"
)

// DialLocalTerminal requires stdin to be an interactive terminal before
// it will arm raw mode; under `go test` stdin is never a terminal, so
// this exercises that guard deterministically without needing a real
// TTY or faking one.
func TestDialLocalTerminalRequiresATerminal(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	if _, err := DialLocalTerminal(ln.Addr().String()); err == nil {
		t.Fatalf("expected an error dialing without an interactive stdin")
	}
}
