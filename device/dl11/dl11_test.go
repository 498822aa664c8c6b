package dl11

import (
	"testing"

	"github.com/rcornwell/ts10/iobus"
)

type irqStub struct{ sent []string }

func (s *irqStub) SendInterrupt(dev iobus.MMIODevice) { s.sent = append(s.sent, dev.Name()) }

func TestLineTickDeliversRBUF(t *testing.T) {
	irq := &irqStub{}
	l := New("stuff", irq, DefaultRXVec, DefaultTXVec)
	l.WriteRegister(offRCSR, csrInterruptEn)

	l.mu.Lock()
	l.inQueue = append(l.inQueue, 'Z')
	l.mu.Unlock()
	l.Tick()

	if l.ReadRegister(offRCSR)&csrReady == 0 {
		t.Fatalf("RCSR.RDY not set")
	}
	if v := l.ReadRegister(offRBUF); v != 'Z' {
		t.Errorf("got %#x want 'Z'", v)
	}
	if len(irq.sent) != 1 {
		t.Errorf("expected one interrupt, got %d", len(irq.sent))
	}
}

func TestLineOverrunSetsError(t *testing.T) {
	irq := &irqStub{}
	l := New("stuff", irq, DefaultRXVec, DefaultTXVec)
	l.mu.Lock()
	l.inQueue = append(l.inQueue, 'A', 'B')
	l.mu.Unlock()
	l.Tick()
	l.Tick()
	if l.ReadRegister(offRBUF)&rbufError == 0 {
		t.Errorf("expected RBUF error bit on overrun")
	}
}
