package boot

import (
	"os"
	"testing"
)

type memStore struct {
	words map[uint32]uint64
}

func newMemStore() *memStore { return &memStore{words: map[uint32]uint64{}} }

func (m *memStore) Write(addr uint32, value uint64) error {
	m.words[addr] = value
	return nil
}

func pack36(w uint64) []byte {
	b := make([]byte, 5)
	for i := 4; i >= 0; i-- {
		b[i] = byte(w)
		w >>= 8
	}
	return b
}

func writeImage(t *testing.T, blocks [][]uint64) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "ts10disk")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer f.Close()
	for _, blk := range blocks {
		full := make([]uint64, blockSize)
		copy(full, blk)
		for _, w := range full {
			if _, err := f.Write(pack36(w)); err != nil {
				t.Fatalf("write: %v", err)
			}
		}
	}
	return f.Name()
}

func TestLoadDiskFollowsFE_BT8080ToPreBootLoader(t *testing.T) {
	home := make([]uint64, blockSize)
	home[feBT8080] = 2 // pre-boot loader starts at block 2

	loader0 := make([]uint64, blockSize)
	loader0[0] = 0o123456_765432

	path := writeImage(t, [][]uint64{home, make([]uint64, blockSize), loader0, {}, {}, {}})
	disk, err := OpenDisk(path)
	if err != nil {
		t.Fatalf("OpenDisk: %v", err)
	}

	mem := newMemStore()
	entry, err := LoadDisk(mem, disk)
	if err != nil {
		t.Fatalf("LoadDisk: %v", err)
	}
	if entry != defaultDiskLoadAddr {
		t.Errorf("entry = %#o, want %#o", entry, uint32(defaultDiskLoadAddr))
	}
	if got := mem.words[defaultDiskLoadAddr]; got != 0o123456_765432 {
		t.Errorf("loaded word = %#o, want %#o", got, uint64(0o123456_765432))
	}
}

func TestLoadDiskRejectsUnbootableImage(t *testing.T) {
	home := make([]uint64, blockSize) // FE_BT_8080 left zero: not bootable
	path := writeImage(t, [][]uint64{home})
	disk, err := OpenDisk(path)
	if err != nil {
		t.Fatalf("OpenDisk: %v", err)
	}
	if _, err := LoadDisk(newMemStore(), disk); err == nil {
		t.Errorf("expected an error for a non-bootable image")
	}
}

func TestLoadTapeUnpacksWordsFromOffset(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "ts10tape")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	f.Write(pack36(0o1))
	f.Write(pack36(0o2))
	f.Close()

	mem := newMemStore()
	entry, err := LoadTape(mem, f.Name(), 0o1000)
	if err != nil {
		t.Fatalf("LoadTape: %v", err)
	}
	if entry != 0o1000 {
		t.Errorf("entry = %#o, want 01000", entry)
	}
	if mem.words[0o1000] != 1 || mem.words[0o1001] != 2 {
		t.Errorf("words = %#o,%#o, want 1,2", mem.words[0o1000], mem.words[0o1001])
	}
}
