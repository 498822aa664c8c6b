package dz11

import (
	"testing"

	"github.com/rcornwell/ts10/iobus"
)

type irqStub struct{ sent []string }

func (s *irqStub) SendInterrupt(dev iobus.MMIODevice) { s.sent = append(s.sent, dev.Name()) }

func TestTickScansLinesRoundRobin(t *testing.T) {
	irq := &irqStub{}
	m := New("dz0", irq, DefaultRXVec, DefaultTXVec)
	m.WriteRegister(offCSR, csrMasterScanEn|csrRxInterEn)

	m.mu.Lock()
	m.lines[3].inQueue = append(m.lines[3].inQueue, 'Q')
	m.mu.Unlock()
	m.Tick()

	v := m.ReadRegister(offRBUF)
	if v&rbufDataValid == 0 {
		t.Fatalf("RBUF.valid not set")
	}
	if byte(v) != 'Q' {
		t.Errorf("got data byte %q want 'Q'", byte(v))
	}
	if (v>>8)&0x7 != 3 {
		t.Errorf("got line %d want 3", (v>>8)&0x7)
	}
	if len(irq.sent) != 1 {
		t.Errorf("expected one interrupt, got %d", len(irq.sent))
	}
}

func TestTickWithScanDisabledDoesNothing(t *testing.T) {
	m := New("dz0", &irqStub{}, DefaultRXVec, DefaultTXVec)
	m.mu.Lock()
	m.lines[0].inQueue = append(m.lines[0].inQueue, 'X')
	m.mu.Unlock()
	m.Tick()
	if m.ReadRegister(offRBUF)&rbufDataValid != 0 {
		t.Errorf("expected no RBUF delivery while scan is disabled")
	}
}
