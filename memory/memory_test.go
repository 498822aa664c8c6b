package memory

import "testing"

func TestReadWriteRoundTrip(t *testing.T) {
	m := NewLinearStore(4096, 512)
	if err := m.Write(0x100, 0x11223344); err != nil {
		t.Fatalf("write: %v", err)
	}
	v, err := m.Read(0x100)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if v != 0x11223344 {
		t.Errorf("got %#x want %#x", v, 0x11223344)
	}
}

func TestOutOfRangeIsNXM(t *testing.T) {
	m := NewLinearStore(16, 16)
	_, err := m.Read(100)
	if err == nil {
		t.Fatalf("expected NXM error")
	}
	var nxm *NXM
	if !asNXM(err, &nxm) {
		t.Errorf("error is not *NXM: %v", err)
	}
}

func asNXM(err error, target **NXM) bool {
	if n, ok := err.(*NXM); ok {
		*target = n
		return true
	}
	return false
}

// §8 invariant 6 / S5: DMA write then read over the same addresses round-trips.
func TestWriteBlockReadBlockRoundTrip(t *testing.T) {
	m := NewLinearStore(4096, 512)
	data := []byte{0x11, 0x22, 0x33, 0x44}
	if err := m.WriteBlock(0, data); err != nil {
		t.Fatalf("writeblock: %v", err)
	}
	got, err := m.ReadBlock(0, 4)
	if err != nil {
		t.Fatalf("readblock: %v", err)
	}
	for i := range data {
		if got[i] != data[i] {
			t.Errorf("byte %d got %#x want %#x", i, got[i], data[i])
		}
	}
}

func TestROMWritesDrop(t *testing.T) {
	m := NewLinearStore(4096, 512)
	m.LoadROM(0, []byte{0xde, 0xad})
	_ = m.Write(0, 0x12345678)
	v, _ := m.Read(0)
	if v != 0xde {
		t.Errorf("ROM write should have been dropped, got %#x", v)
	}
}
