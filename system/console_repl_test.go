package system

import "testing"

type fakeStore struct {
	words map[uint32]uint64
}

func newFakeStore() *fakeStore { return &fakeStore{words: map[uint32]uint64{}} }

func (f *fakeStore) Read(addr uint32) (uint64, error) { return f.words[addr], nil }
func (f *fakeStore) Write(addr uint32, value uint64) error {
	f.words[addr] = value
	return nil
}

func TestDispatchBootSendsPacketWithUnit(t *testing.T) {
	master := make(chan Packet, 1)
	r := &Repl{Master: master, Mem: newFakeStore()}

	if _, err := r.dispatch("boot 1"); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	got := <-master
	if got.Msg != Boot || got.Unit != 1 {
		t.Errorf("got %+v, want Boot unit 1", got)
	}
}

func TestDispatchHaltAndContinueSendStartStop(t *testing.T) {
	master := make(chan Packet, 1)
	r := &Repl{Master: master, Mem: newFakeStore()}

	if _, err := r.dispatch("halt"); err != nil {
		t.Fatalf("dispatch halt: %v", err)
	}
	if got := <-master; got.Msg != Stop {
		t.Errorf("got %+v, want Stop", got)
	}

	if _, err := r.dispatch("continue"); err != nil {
		t.Fatalf("dispatch continue: %v", err)
	}
	if got := <-master; got.Msg != Start {
		t.Errorf("got %+v, want Start", got)
	}
}

func TestDispatchDepositThenExamine(t *testing.T) {
	master := make(chan Packet, 1)
	mem := newFakeStore()
	r := &Repl{Master: master, Mem: mem}

	if _, err := r.dispatch("deposit 0100 0123456"); err != nil {
		t.Fatalf("dispatch deposit: %v", err)
	}
	if mem.words[0o100] != 0o123456 {
		t.Errorf("word at 0100 = %#o, want 0123456", mem.words[0o100])
	}

	if _, err := r.dispatch("examine 0100"); err != nil {
		t.Fatalf("dispatch examine: %v", err)
	}
}

func TestDispatchQuitReturnsTrue(t *testing.T) {
	r := &Repl{Master: make(chan Packet, 1), Mem: newFakeStore()}
	quit, err := r.dispatch("quit")
	if err != nil || !quit {
		t.Errorf("quit=%v err=%v, want true/nil", quit, err)
	}
}

func TestDispatchUnknownCommandErrors(t *testing.T) {
	r := &Repl{Master: make(chan Packet, 1), Mem: newFakeStore()}
	if _, err := r.dispatch("frobnicate"); err == nil {
		t.Errorf("expected an error for an unknown command")
	}
}
